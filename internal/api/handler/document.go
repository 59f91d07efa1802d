package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"askpdf/internal/api/middleware"
	"askpdf/internal/api/response"
	"askpdf/internal/domain"

	"github.com/rs/zerolog/log"
)

// SessionCreator builds a session from an uploaded document on disk.
type SessionCreator interface {
	Create(ctx context.Context, owner, path, name string) (*domain.Session, error)
}

// DocumentHandler handles PDF upload
type DocumentHandler struct {
	sessions SessionCreator
	maxBytes int64
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(sessions SessionCreator, maxUploadMB int) *DocumentHandler {
	return &DocumentHandler{
		sessions: sessions,
		maxBytes: int64(maxUploadMB) << 20,
	}
}

// Upload accepts a multipart PDF in the "document" field, processes it into
// a new session and responds with the session id and chunk count. Upload is
// synchronous: chunking and indexing complete before the response.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		response.BadRequest(w, "file too large or malformed upload")
		return
	}

	file, header, err := r.FormFile("document")
	if err != nil {
		response.BadRequest(w, "missing 'document' file field")
		return
	}
	defer file.Close()

	if !isPDF(header.Header.Get("Content-Type"), header.Filename) {
		response.BadRequest(w, "Invalid file type. Only PDFs allowed.")
		return
	}

	// The document is staged to a temp file for the extractor and removed
	// whether processing succeeds or fails.
	tmp, err := os.CreateTemp("", "askpdf-*.pdf")
	if err != nil {
		response.InternalError(w, "Failed to process PDF.")
		return
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		response.InternalError(w, "Failed to process PDF.")
		return
	}
	tmp.Close()

	owner := middleware.GetOwner(r.Context())
	session, err := h.sessions.Create(r.Context(), owner, tmpPath, header.Filename)
	if err != nil {
		writeUploadError(w, err)
		return
	}

	response.OK(w, map[string]any{
		"message":   "PDF uploaded and processed.",
		"sessionId": session.ID,
		"chunks":    session.ChunkCount,
	})
}

func writeUploadError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionLimit):
		response.Forbidden(w, "Maximum number of concurrent sessions reached.")
	case errors.Is(err, domain.ErrDocumentTooLarge):
		response.BadRequest(w, "File too large to process")
	case errors.Is(err, domain.ErrInvalidInput):
		response.BadRequest(w, "Invalid document.")
	default:
		log.Error().Err(err).Msg("upload failed")
		response.InternalError(w, "Failed to process PDF.")
	}
}

func isPDF(contentType, filename string) bool {
	if strings.EqualFold(contentType, "application/pdf") {
		return true
	}
	return strings.EqualFold(filepath.Ext(filename), ".pdf")
}
