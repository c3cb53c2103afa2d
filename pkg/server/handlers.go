package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/gridlay/pkg/buildinfo"
	"github.com/matzehuels/gridlay/pkg/document"
	errs "github.com/matzehuels/gridlay/pkg/errors"
	"github.com/matzehuels/gridlay/pkg/pipeline"
)

// contentTypes maps output formats to response media types.
var contentTypes = map[string]string{
	pipeline.FormatText: "text/plain; charset=utf-8",
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatJSON: "application/json",
	pipeline.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatTree: "image/svg+xml",
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// DocumentSummary is one entry of the document list.
type DocumentSummary struct {
	Name      string `json:"name"`
	ID        string `json:"id"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
		buildinfo.Info
	}{"ok", buildinfo.Get()})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	doc, err := s.readDocument(w, r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.render(w, r, doc)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	recs, err := s.store.List(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}
	out := make([]DocumentSummary, 0, len(recs))
	for _, rec := range recs {
		out = append(out, DocumentSummary{
			Name:      rec.Name,
			ID:        rec.ID,
			CreatedAt: rec.CreatedAt.Format(time.RFC3339),
			UpdatedAt: rec.UpdatedAt.Format(time.RFC3339),
		})
	}
	s.respondJSON(w, http.StatusOK, out)
}

func (s *Server) handlePutDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.readDocument(w, r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	rec, err := s.store.Put(r.Context(), chi.URLParam(r, "name"), doc)
	if err != nil {
		s.respondError(w, err)
		return
	}
	status := http.StatusOK
	if rec.CreatedAt.Equal(rec.UpdatedAt) {
		status = http.StatusCreated
	}
	s.respondJSON(w, status, rec)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		s.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRenderDocument(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.render(w, r, &rec.Document)
}

// render runs the pipeline for one format and writes the artifact.
func (s *Server) render(w http.ResponseWriter, r *http.Request, doc *document.Document) {
	q := r.URL.Query()
	format := q.Get("format")
	if format == "" {
		format = pipeline.FormatJSON
	}
	opts := pipeline.Options{
		Root:    q.Get("root"),
		Formats: []string{format},
		Refresh: q.Get("refresh") == "true",
		Logger:  s.logger,
	}

	res, err := s.runner.Execute(r.Context(), doc, opts)
	if err != nil {
		s.respondError(w, err)
		return
	}

	cacheStatus := "miss"
	if res.CacheInfo.RenderHit {
		cacheStatus = "hit"
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("ETag", `"`+res.DocumentHash+`"`)
	w.Header().Set("X-Gridlay-Cache", cacheStatus)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(res.Artifacts[format]); err != nil {
		s.logger.Warn("write response", "err", err)
	}
}

// readDocument decodes and validates the request body.
func (s *Server) readDocument(w http.ResponseWriter, r *http.Request) (*document.Document, error) {
	format, err := documentFormat(r)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, errs.New(errs.ErrCodeInvalidInput, "request body exceeds %d bytes", tooLarge.Limit)
		}
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "read request body")
	}
	doc, err := document.Parse(data, format)
	if err != nil {
		return nil, err
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

// documentFormat picks the body encoding from ?doc_format= or Content-Type.
func documentFormat(r *http.Request) (document.Format, error) {
	if f := r.URL.Query().Get("doc_format"); f != "" {
		return document.ParseFormat(f)
	}
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return document.FormatJSON, nil
	}
	switch mt {
	case "application/toml":
		return document.FormatTOML, nil
	case "application/yaml", "application/x-yaml", "text/yaml":
		return document.FormatYAML, nil
	}
	return document.FormatJSON, nil
}

// statusFor maps error codes to HTTP status codes.
func statusFor(err error) int {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable
	}
	switch errs.GetCode(err) {
	case errs.ErrCodeInvalidInput, errs.ErrCodeInvalidFormat, errs.ErrCodeInvalidDocument:
		return http.StatusBadRequest
	case errs.ErrCodeInvalidShape, errs.ErrCodeInvalidTemplate, errs.ErrCodeUndefinedLeafSize,
		errs.ErrCodeNodeNotFound, errs.ErrCodeNodeKindMismatch, errs.ErrCodeCycleDetected:
		return http.StatusUnprocessableEntity
	case errs.ErrCodeNotFound:
		return http.StatusNotFound
	case errs.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	code := string(errs.GetCode(err))
	msg := errs.UserMessage(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
		code, msg = string(errs.ErrCodeInternal), "internal error"
	}
	if code == "" {
		code = http.StatusText(status)
	}
	s.respondJSON(w, status, ErrorResponse{Code: code, Message: msg})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("encode response", "err", err)
	}
}
