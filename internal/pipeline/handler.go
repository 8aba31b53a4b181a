package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/docroute/docroute/internal/pdftext"
	"github.com/docroute/docroute/pkg/handlers"
	"github.com/docroute/docroute/pkg/routes"
)

// Handler provides HTTP endpoints for document processing.
type Handler struct {
	pipe          *Pipeline
	extractor     *pdftext.Extractor
	logger        *slog.Logger
	maxUploadSize int64
}

// NewHandler creates a Handler with the given pipeline, PDF extractor,
// logger, and upload size limit.
func NewHandler(
	pipe *Pipeline,
	extractor *pdftext.Extractor,
	logger *slog.Logger,
	maxUploadSize int64,
) *Handler {
	return &Handler{
		pipe:          pipe,
		extractor:     extractor,
		logger:        logger.With("handler", "process"),
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for processing endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/process",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Process},
			{Method: "POST", Pattern: "/batch", Handler: h.Batch},
			{Method: "POST", Pattern: "/upload", Handler: h.Upload},
		},
	}
}

// BatchRequest is the body accepted by the batch endpoint.
type BatchRequest struct {
	Documents []Input `json:"documents"`
}

// Process runs a single document through the pipeline.
func (h *Handler) Process(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	normalize(&in)

	env, err := h.pipe.Process(r.Context(), in)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, env)
}

// Batch runs multiple documents through the pipeline concurrently and
// returns their envelopes in submission order.
func (h *Handler) Batch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	if len(req.Documents) == 0 {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrEmptyContent)
		return
	}
	for i := range req.Documents {
		normalize(&req.Documents[i])
	}

	results, err := h.pipe.ProcessBatch(r.Context(), req.Documents)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, map[string]any{"results": results})
}

// Upload accepts a multipart file upload. PDF files are converted to text
// before processing; anything else must be valid UTF-8 text.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidUpload)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidUpload)
		return
	}

	in := Input{Source: header.Filename}

	if strings.HasSuffix(strings.ToLower(header.Filename), ".pdf") {
		doc, err := h.extractor.Extract(data)
		if err != nil {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("extract pdf text: %w", err))
			return
		}
		in.Content = doc.Text
		in.FormatHint = "pdf"
	} else {
		if !utf8.Valid(data) {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidUpload)
			return
		}
		in.Content = string(data)
	}

	env, err := h.pipe.Process(r.Context(), in)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, env)
}

// normalize trims content and clears the "auto" hint sentinel accepted for
// compatibility with clients that always send a document_type.
func normalize(in *Input) {
	in.Content = strings.TrimSpace(in.Content)
	if strings.EqualFold(in.FormatHint, "auto") {
		in.FormatHint = ""
	}
}
