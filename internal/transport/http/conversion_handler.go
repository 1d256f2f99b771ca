package http

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	apierrors "github.com/dev-loop1/partial-week-converter/internal/errors"
	"github.com/dev-loop1/partial-week-converter/internal/services"
	api "github.com/dev-loop1/partial-week-converter/pkg/contracts/api/v1"
)

// Summary headers sent with every converted download.
const (
	HeaderRowsIn  = "X-Rows-In"
	HeaderRowsOut = "X-Rows-Out"
	HeaderSplit   = "X-Rows-Split"
	HeaderFormat  = "X-Output-Format"
)

// multipartMemory is the part of an upload kept in memory; the rest spills to temp files.
const multipartMemory = 8 << 20

//go:embed templates/index.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// FormConfig prefills the upload form.
type FormConfig struct {
	DateColumn     string
	ValueColumn    string
	Format         string
	MaxUploadBytes int64
}

type formFields struct {
	File        string
	DateColumn  string
	ValueColumn string
	Format      string
}

type formPage struct {
	Error       string
	DateColumn  string
	ValueColumn string
	Format      string
	MaxUploadMB int64
	Fields      formFields
}

// ConversionHandler serves the upload form and the conversion endpoints.
type ConversionHandler struct {
	service      ConversionServiceInterface
	errorHandler *apierrors.ErrorHandler
	form         FormConfig
	logger       *slog.Logger
}

// NewConversionHandler creates a new conversion handler
func NewConversionHandler(service ConversionServiceInterface, errorHandler *apierrors.ErrorHandler, form FormConfig, logger *slog.Logger) *ConversionHandler {
	if form.Format == "" {
		form.Format = "xlsx"
	}
	return &ConversionHandler{
		service:      service,
		errorHandler: errorHandler,
		form:         form,
		logger:       logger.With(slog.String("handler", "conversion")),
	}
}

// Index handles GET /
func (h *ConversionHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, h.page("", api.DisaggregateRequest{}))
}

// Process handles POST /process. Failures re-render the form with the message.
func (h *ConversionHandler) Process(w http.ResponseWriter, r *http.Request) {
	req, result, err := h.convertUpload(r)
	if err != nil {
		problem := h.errorHandler.ErrorToProblem(err, r)
		h.logger.WarnContext(r.Context(), "conversion form rejected",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("error", err.Error()),
			slog.Int("status", problem.Status))

		h.renderForm(w, r, problem.Status, h.page(problem.Detail, req))
		return
	}
	h.writeAttachment(w, r, result)
}

// Disaggregate handles POST /api/v1/disaggregate. Failures are RFC 7807 problems.
func (h *ConversionHandler) Disaggregate(w http.ResponseWriter, r *http.Request) {
	_, result, err := h.convertUpload(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.writeAttachment(w, r, result)
}

func (h *ConversionHandler) convertUpload(r *http.Request) (api.DisaggregateRequest, *services.ConversionResult, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return api.DisaggregateRequest{}, nil, uploadError(err)
	}
	defer r.MultipartForm.RemoveAll()

	req := api.DisaggregateRequest{
		DateColumn:  strings.TrimSpace(r.FormValue(api.FieldDateColumn)),
		ValueColumn: strings.TrimSpace(r.FormValue(api.FieldValueColumn)),
		Format:      strings.ToLower(strings.TrimSpace(r.FormValue(api.FieldFormat))),
		Sheet:       r.FormValue(api.FieldSheet),
	}

	file, header, err := r.FormFile(api.FieldFile)
	if err != nil {
		return req, nil, uploadError(err)
	}
	defer file.Close()

	req.Filename = uploadFilename(header)
	if req.Filename == "" {
		return req, nil, apierrors.New(http.StatusBadRequest, apierrors.CodeMissingFile,
			"No file selected. Please select a file to upload.")
	}
	if header.Size == 0 {
		return req, nil, apierrors.New(http.StatusBadRequest, apierrors.CodeMissingFile,
			"The uploaded file is empty.")
	}

	result, err := h.service.Convert(r.Context(), req, file)
	return req, result, err
}

func uploadError(err error) error {
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytesErr):
		return err
	case errors.Is(err, http.ErrMissingFile):
		return apierrors.New(http.StatusBadRequest, apierrors.CodeMissingFile,
			"No file part in the request. Please select a file.")
	case errors.Is(err, http.ErrNotMultipart):
		return apierrors.ErrUnsupportedMediaType
	default:
		return apierrors.InvalidRequestWithError(err)
	}
}

// uploadFilename keeps only the base name, including for browsers that send Windows paths.
func uploadFilename(header *multipart.FileHeader) string {
	name := strings.TrimSpace(strings.ReplaceAll(header.Filename, `\`, "/"))
	if name == "" {
		return ""
	}
	base := path.Base(name)
	if base == "." || base == "/" {
		return ""
	}
	return base
}

func (h *ConversionHandler) writeAttachment(w http.ResponseWriter, r *http.Request, result *services.ConversionResult) {
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": result.Filename})

	header := w.Header()
	header.Set("Content-Type", result.ContentType)
	header.Set("Content-Disposition", disposition)
	header.Set("Content-Length", strconv.Itoa(len(result.Body)))
	header.Set(HeaderFormat, string(result.Format))
	header.Set(HeaderRowsIn, strconv.Itoa(result.Stats.InputRows))
	header.Set(HeaderRowsOut, strconv.Itoa(result.Stats.OutputRows))
	header.Set(HeaderSplit, strconv.Itoa(result.Stats.SplitRows))
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(result.Body); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to write download",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("filename", result.Filename),
			slog.String("error", err.Error()))
	}
}

func (h *ConversionHandler) page(message string, req api.DisaggregateRequest) formPage {
	p := formPage{
		Error:       message,
		DateColumn:  h.form.DateColumn,
		ValueColumn: h.form.ValueColumn,
		Format:      h.form.Format,
		MaxUploadMB: h.form.MaxUploadBytes >> 20,
		Fields: formFields{
			File:        api.FieldFile,
			DateColumn:  api.FieldDateColumn,
			ValueColumn: api.FieldValueColumn,
			Format:      api.FieldFormat,
		},
	}
	if req.DateColumn != "" {
		p.DateColumn = req.DateColumn
	}
	if req.ValueColumn != "" {
		p.ValueColumn = req.ValueColumn
	}
	if req.Format == "xlsx" || req.Format == "csv" {
		p.Format = req.Format
	}
	return p
}

func (h *ConversionHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, p formPage) {
	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, p); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
