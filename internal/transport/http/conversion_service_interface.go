package http

import (
	"context"
	"io"

	"github.com/dev-loop1/partial-week-converter/internal/services"
	api "github.com/dev-loop1/partial-week-converter/pkg/contracts/api/v1"
)

// ConversionServiceInterface defines the conversion operations used by the handlers.
type ConversionServiceInterface interface {
	Convert(ctx context.Context, req api.DisaggregateRequest, r io.Reader) (*services.ConversionResult, error)
}
