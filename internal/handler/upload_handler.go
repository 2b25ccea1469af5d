package handler

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"studentrecords/internal/logger"
)

const uploadComponent = "UploadHandler"

// Importer loads a saved CSV file into the record store.
type Importer interface {
	ProcessCSV(ctx context.Context, filePath string) error
}

type UploadHandler struct {
	importService Importer
	uploadDir     string
	log           logger.Logger
	wg            sync.WaitGroup
}

func NewUploadHandler(importService Importer, uploadDir string, log logger.Logger) *UploadHandler {
	return &UploadHandler{importService: importService, uploadDir: uploadDir, log: log}
}

// UploadCSV saves every file of the "files" form field and imports each in
// the background. It answers 202 with the names that were accepted, or 400
// when none could be saved.
func (h *UploadHandler) UploadCSV(w http.ResponseWriter, r *http.Request) {
	if err := os.MkdirAll(h.uploadDir, 0755); err != nil {
		http.Error(w, "Failed to create uploads directory", http.StatusInternalServerError)
		return
	}

	err := r.ParseMultipartForm(100 << 20) // 100MB
	if err != nil {
		http.Error(w, "File too large or bad request", http.StatusRequestEntityTooLarge)
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		http.Error(w, "No files uploaded", http.StatusBadRequest)
		return
	}

	ctx := context.WithoutCancel(r.Context())
	fileNames := make([]string, 0, len(files))

	for _, fh := range files {
		savePath, err := h.save(fh)
		if err != nil {
			h.log.Error(uploadComponent, "failed to save upload", err, map[string]interface{}{"file": fh.Filename})
			continue
		}
		fileNames = append(fileNames, filepath.Base(savePath))

		h.wg.Add(1)
		go func(filePath string) {
			defer h.wg.Done()
			if err := h.importService.ProcessCSV(ctx, filePath); err != nil {
				h.log.Error(uploadComponent, "import failed", err, map[string]interface{}{"file": filePath})
			}
		}(savePath)
	}

	if len(fileNames) == 0 {
		http.Error(w, "No valid files uploaded", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"message": "Files uploaded successfully and processing started",
		"files":   fileNames,
	})
}

// Wait blocks until every import started by UploadCSV has finished.
func (h *UploadHandler) Wait() {
	h.wg.Wait()
}

func (h *UploadHandler) save(fh *multipart.FileHeader) (string, error) {
	name := filepath.Base(fh.Filename)
	switch name {
	case ".", "..", string(filepath.Separator):
		return "", errors.Errorf("invalid file name %q", fh.Filename)
	}

	file, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	savePath := filepath.Join(h.uploadDir, name)
	outFile, err := os.Create(savePath)
	if err != nil {
		return "", err
	}
	defer outFile.Close()

	if _, err := io.Copy(outFile, file); err != nil {
		return "", err
	}
	return savePath, outFile.Close()
}
