package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/custodia-labs/ragpipe/internal/core/domain"
)

// maxUploadBytes caps file uploads at 50MB
const maxUploadBytes = 50 << 20

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// IngestRequest is the body of POST /api/ingest
type IngestRequest struct {
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata"`
}

// QueryRequest is the body of POST /api/query
type QueryRequest struct {
	Question string `json:"question"`
	K        int    `json:"k"`
}

// DocumentsResponse is the body of GET /api/documents
type DocumentsResponse struct {
	Documents []*domain.IngestRecord `json:"documents"`
	Total     int                    `json:"total"`
}

// Health endpoints

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady reports readiness of the vector index and, when configured,
// the provenance database
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.index.HealthCheck(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "vector index unreachable")
		return
	}
	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "database unreachable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// Pipeline endpoints

// handleIngest ingests raw text from a JSON body
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.ingestService.IngestText(r.Context(), req.Text, req.Metadata)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleIngestFile ingests an uploaded file. The "file" form field carries
// the content; ?ocr=true routes PDFs through the vision transcription path.
func (s *Server) handleIngestFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form or file too large")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	mimeType := header.Header.Get("Content-Type")
	input := &domain.FileInput{
		Content:  content,
		MimeType: mimeType,
		UseOCR:   r.URL.Query().Get("ocr") == "true",
		Metadata: map[string]any{
			"source":   header.Filename,
			"size":     header.Size,
			"mimetype": mimeType,
		},
	}

	result, err := s.ingestService.IngestFile(r.Context(), input)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleQuery answers a question against the ingested corpus
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.queryService.Answer(r.Context(), req.Question, req.K)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleListDocuments lists the ingest provenance log, newest first
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	records, err := s.docService.List(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	total, err := s.docService.Count(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if records == nil {
		records = []*domain.IngestRecord{}
	}
	writeJSON(w, http.StatusOK, DocumentsResponse{Documents: records, Total: total})
}

// Helper functions

// writeServiceError maps domain errors to HTTP status codes. Caller
// mistakes are 400s, dependency failures are 502s, everything else is 500.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrEmptyInput),
		errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidQuestion),
		errors.Is(err, domain.ErrInvalidParams),
		errors.Is(err, domain.ErrExtractionEmpty),
		errors.Is(err, domain.ErrUnsupportedType):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrStoreInit),
		errors.Is(err, domain.ErrStoreWrite),
		errors.Is(err, domain.ErrCompletion),
		errors.Is(err, domain.ErrRender),
		errors.Is(err, domain.ErrTranscription):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
