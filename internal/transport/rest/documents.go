package rest

import (
	"io"
	"log"
	"net/http"
	"time"

	"caseflow/internal/transport/auth"

	"github.com/go-chi/chi/v5"
)

const maxDocumentSize = 32 << 20 // 32 MB

func (h *Handler) uploadDocument(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.GetActor(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	if err := r.ParseMultipartForm(maxDocumentSize); err != nil {
		ErrorBadRequest(w, "expected multipart form with a file field")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		ErrorBadRequest(w, "file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxDocumentSize))
	if err != nil {
		log.Printf("[HTTP] read upload error: %v", err)
		ErrorInternal(w, "failed to read file")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	caseID := chi.URLParam(r, "case_id")
	objectKey, err := h.storage.Upload(r.Context(), caseID, header.Filename, contentType, data)
	if err != nil {
		log.Printf("[HTTP] upload document error: %v", err)
		ErrorInternal(w, "failed to store file")
		return
	}

	doc, err := h.cases.AttachDocument(r.Context(), actor, caseID, header.Filename, objectKey, contentType, int64(len(data)))
	if err != nil {
		ErrorFromDomain(w, err)
		return
	}

	SuccessCreated(w, "document uploaded", newDocumentResponse(doc, ""))
}

func (h *Handler) listDocuments(w http.ResponseWriter, r *http.Request) {
	c, err := h.cases.Get(r.Context(), chi.URLParam(r, "case_id"))
	if err != nil {
		ErrorFromDomain(w, err)
		return
	}

	out := make([]DocumentResponse, 0, len(c.Documents))
	for i := range c.Documents {
		url, err := h.storage.PresignedURL(r.Context(), c.Documents[i].ObjectKey, 15*time.Minute)
		if err != nil {
			log.Printf("[HTTP] presign %s error: %v", c.Documents[i].ObjectKey, err)
			url = ""
		}
		out = append(out, newDocumentResponse(&c.Documents[i], url))
	}
	Success(w, "ok", out)
}
