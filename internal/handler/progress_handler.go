package handler

import (
	"encoding/json"
	"net/http"
	"path/filepath"

	"studentrecords/internal/logger"
	"studentrecords/internal/service"
)

const progressComponent = "ProgressHandler"

// ProgressService reports CSV import progress.
type ProgressService interface {
	GetFileProgress(fileName string) *service.ProgressInfo
	GetAllFileProgress() []*service.ProgressInfo
	RegisterProgressListener(ch chan *service.ProgressInfo)
	UnregisterProgressListener(ch chan *service.ProgressInfo)
}

type ProgressHandler struct {
	importService ProgressService
	log           logger.Logger
}

func NewProgressHandler(importService ProgressService, log logger.Logger) *ProgressHandler {
	return &ProgressHandler{importService: importService, log: log}
}

// GetFileProgress returns the progress for a specific file
func (h *ProgressHandler) GetFileProgress(w http.ResponseWriter, r *http.Request) {
	fileName := r.URL.Query().Get("fileName")
	if fileName == "" {
		http.Error(w, "fileName parameter is required", http.StatusBadRequest)
		return
	}

	progress := h.importService.GetFileProgress(filepath.Base(fileName))
	if progress == nil {
		http.Error(w, "File not found or not being processed", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, progress)
}

// GetAllProgress returns the progress for all files being processed
func (h *ProgressHandler) GetAllProgress(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.importService.GetAllFileProgress())
}

// SSEProgress streams progress updates to the client using Server-Sent Events (SSE)
func (h *ProgressHandler) SSEProgress(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	// Buffered so a broadcast never has to wait on this client's writes.
	progressChan := make(chan *service.ProgressInfo, 16)
	h.importService.RegisterProgressListener(progressChan)
	defer h.importService.UnregisterProgressListener(progressChan)

	for {
		select {
		case progress := <-progressChan:
			data, err := json.Marshal(progress)
			if err != nil {
				h.log.Error(progressComponent, "failed to encode progress", err, nil)
				continue
			}
			if _, err := w.Write([]byte("data: " + string(data) + "\n\n")); err != nil {
				h.log.Warning(progressComponent, "error writing SSE data", map[string]interface{}{"error": err.Error()})
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			h.log.Debug(progressComponent, "client disconnected", nil)
			return
		}
	}
}
