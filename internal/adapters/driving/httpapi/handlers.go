package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/all-black-493/supportly/internal/core/domain"
	"github.com/all-black-493/supportly/internal/core/ports/driving"
	"github.com/all-black-493/supportly/internal/logger"
)

// multipartOverhead is allowed on top of MaxUploadBytes for form fields
// and part headers.
const multipartOverhead = 1 << 20

type entryJSON struct {
	ID          string            `json:"id"`
	Filename    string            `json:"filename"`
	Title       string            `json:"title"`
	ContentHash string            `json:"content_hash"`
	MIMEType    string            `json:"mime_type"`
	Size        int64             `json:"size"`
	Chunks      int               `json:"chunks"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

func toEntryJSON(e *domain.Entry) entryJSON {
	return entryJSON{
		ID:          e.ID,
		Filename:    e.Key,
		Title:       e.Title,
		ContentHash: e.ContentHash,
		MIMEType:    e.MIMEType,
		Size:        e.Size,
		Chunks:      e.ChunkCount,
		Metadata:    e.Metadata,
		CreatedAt:   e.CreatedAt,
	}
}

type uploadResponse struct {
	EntryID string `json:"entry_id"`
	URL     string `json:"url"`
	Created bool   `json:"created"`
}

type queryRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

type queryResult struct {
	Entry    entryJSON `json:"entry"`
	Score    float64   `json:"score"`
	Snippets []string  `json:"snippets"`
	URL      string    `json:"url,omitempty"`
}

type queryResponse struct {
	Results []queryResult `json:"results"`
	Count   int           `json:"count"`
}

// handleUpload accepts a multipart form with a "file" part and optional
// "category" and "mime_type" fields. A new entry answers 201, an existing
// one 200.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if s.cfg.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+multipartOverhead)
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, badRequest(err, "parse multipart form"))
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, badRequest(err, "form field \"file\""))
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, badRequest(err, "read upload"))
		return
	}

	result, err := s.ports.Ingestion.AddDocument(r.Context(), tenantFrom(r), driving.UploadRequest{
		Filename: header.Filename,
		MIMEType: r.FormValue("mime_type"),
		Content:  content,
		Category: r.FormValue("category"),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	writeJSON(w, status, uploadResponse{EntryID: result.EntryID, URL: result.URL, Created: result.Created})
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := s.ports.Lifecycle.ListEntries(r.Context(), tenantFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]entryJSON, len(entries))
	for i := range entries {
		out[i] = toEntryJSON(&entries[i])
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := s.ports.Lifecycle.GetEntry(r.Context(), tenantFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryJSON(entry))
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	if err := s.ports.Lifecycle.DeleteEntry(r.Context(), tenantFrom(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, badRequest(err, "decode query"))
		return
	}

	results, err := s.ports.Retrieval.Retrieve(r.Context(), tenantFrom(r), req.Query, req.TopK)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := queryResponse{Results: make([]queryResult, len(results)), Count: len(results)}
	for i := range results {
		resp.Results[i] = queryResult{
			Entry:    toEntryJSON(&results[i].Entry),
			Score:    results[i].Score,
			Snippets: results[i].Snippets,
			URL:      results[i].URL,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleFile streams an uploaded file. Blobs of other namespaces are
// reported as missing.
func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	tenant := tenantFrom(r)
	storageID := chi.URLParam(r, "storageId")

	rc, info, err := s.ports.Blobs.Open(r.Context(), storageID)
	if err != nil {
		writeError(w, err)
		return
	}
	defer rc.Close()

	if info.Namespace != tenant.Namespace {
		logger.Warn("http: %s requested blob %s of another namespace", tenant.Namespace, storageID)
		writeError(w, fmt.Errorf("blob %s: %w", storageID, domain.ErrNotFound))
		return
	}

	if info.ContentType != "" {
		w.Header().Set("Content-Type", info.ContentType)
	}
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		logger.Debug("http: stream blob %s: %v", storageID, err)
	}
}

func badRequest(err error, what string) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, what, err)
}
