package infrastructure

import (
	"context"

	"github.com/google/uuid"
)

// EnsureTraceID returns ctx carrying a trace ID, adding a random one when ctx has none.
// Commands that run outside an HTTP request use it to correlate the logs of one conversion.
func EnsureTraceID(ctx context.Context) context.Context {
	if GetTraceID(ctx) != "" {
		return ctx
	}
	return WithTraceID(ctx, uuid.NewString())
}
