package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"pdf-presenter/internal/models"
	"pdf-presenter/internal/pdf"
	"pdf-presenter/internal/pdfpc"
)

// ResolveHandler turns an uploaded PDF and optional .pdfpc file into the
// per-slide model
type ResolveHandler struct {
	engine         pdf.Engine
	maxUploadBytes int64
	logger         *logrus.Logger
}

// NewResolveHandler creates a new resolve handler
func NewResolveHandler(engine pdf.Engine, maxUploadBytes int64, logger *logrus.Logger) *ResolveHandler {
	return &ResolveHandler{
		engine:         engine,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// Resolve handles a multipart upload of "file" (PDF) and "config" (.pdfpc)
// POST /api/resolve
func (h *ResolveHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		h.logger.WithError(err).Debug("Parse form failed")
		maxMB := h.maxUploadBytes / (1024 * 1024)
		http.Error(w, fmt.Sprintf("file too large (max %dMB) or invalid form", maxMB), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
		http.Error(w, "only PDF files are allowed", http.StatusBadRequest)
		return
	}

	var cfg *models.PdfpcConfig
	configFile, _, err := r.FormFile("config")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		http.Error(w, "invalid config upload", http.StatusBadRequest)
		return
	default:
		defer configFile.Close()
		data, err := io.ReadAll(configFile)
		if err != nil {
			http.Error(w, "invalid config upload", http.StatusBadRequest)
			return
		}
		cfg, err = pdfpc.Parse(data)
		if err != nil {
			h.logger.WithError(err).WithField("file", header.Filename).Info("Rejected config")
			http.Error(w, pdfpc.ErrInvalidConfig.Error(), http.StatusBadRequest)
			return
		}
	}

	doc, err := h.engine.Inspect(r.Context(), file)
	if err != nil {
		h.logger.WithError(err).WithField("file", header.Filename).Info("Rejected PDF")
		http.Error(w, "file is not a readable PDF", http.StatusUnprocessableEntity)
		return
	}

	resolved := pdfpc.Resolve(cfg, doc.Labels)

	h.logger.WithFields(logrus.Fields{
		"file":          header.Filename,
		"pages":         doc.PageCount,
		"slides":        len(resolved.Pages),
		"totalOverlays": resolved.TotalOverlays,
	}).Info("Resolved presentation")

	writeJSON(w, http.StatusOK, resolved)
}
