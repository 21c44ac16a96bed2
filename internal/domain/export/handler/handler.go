// Package handler exposes the export pipeline over HTTP.
package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/FACorreiaa/po-export/internal/domain/export/service"
	"github.com/FACorreiaa/po-export/internal/domain/storemap"
	"github.com/FACorreiaa/po-export/pkg/storage"
)

// HealthChecker reports whether the external extraction dependency is usable.
type HealthChecker interface {
	Available() bool
}

// Handler serves the export API.
type Handler struct {
	service   *service.ExportService
	store     storage.Storage
	health    HealthChecker
	maxUpload int64
	logger    *slog.Logger
}

// New creates the export handler.
func New(svc *service.ExportService, store storage.Storage, health HealthChecker, maxUpload int64, logger *slog.Logger) *Handler {
	return &Handler{
		service:   svc,
		store:     store,
		health:    health,
		maxUpload: maxUpload,
		logger:    logger,
	}
}

// Routes mounts the export endpoints on a chi router.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/v1/exports", h.CreateExport)
	r.Get("/v1/exports/{fileID}", h.DownloadExport)
	r.Get("/healthz", h.Health)
}

// CreateExport converts one or more uploaded PDFs into a single CSV. The
// multipart form carries the PDFs under "pdf" and an optional mapping table
// under "store_map". The response body is the CSV; X-Export-Id carries the
// artifact id for later re-download.
func (h *Handler) CreateExport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.error(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", h.maxUpload))
			return
		}
		h.error(w, http.StatusBadRequest, "malformed multipart body")
		return
	}
	defer r.MultipartForm.RemoveAll()

	docs, err := h.readDocuments(r)
	if err != nil {
		h.error(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(docs) == 0 {
		h.error(w, http.StatusBadRequest, "no PDF files in request, expected multipart field \"pdf\"")
		return
	}

	table, err := h.readStoreMap(r)
	if err != nil {
		h.error(w, http.StatusBadRequest, fmt.Sprintf("store_map: %v", err))
		return
	}

	result, err := h.service.Export(r.Context(), docs, table)
	if err != nil {
		if service.IsExtractionError(err) {
			h.error(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		h.logger.Error("export failed", slog.Any("error", err))
		h.error(w, http.StatusInternalServerError, "export failed")
		return
	}

	csvData, err := result.CSV()
	if err != nil {
		h.logger.Error("csv serialization failed", slog.Any("error", err))
		h.error(w, http.StatusInternalServerError, "export failed")
		return
	}

	name := exportFileName(docs)
	info, err := h.store.Store(r.Context(), name, "text/csv", bytes.NewReader(csvData))
	if err != nil {
		// Storage is best-effort: the client still gets its CSV.
		h.logger.Warn("failed to persist export artifact", slog.Any("error", err))
	} else {
		w.Header().Set("X-Export-Id", info.ID.String())
	}

	for _, s := range result.Summaries {
		h.logger.Info("document exported",
			slog.String("file", s.FileName),
			slog.String("vendor", s.Vendor),
			slog.Int("rows", s.Rows),
			slog.Int("dropped", s.Dropped),
			slog.Int("unresolved", s.Unresolved),
		)
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(csvData)
}

// DownloadExport re-serves a previously generated CSV by its artifact id.
func (h *Handler) DownloadExport(w http.ResponseWriter, r *http.Request) {
	fileID, err := uuid.Parse(chi.URLParam(r, "fileID"))
	if err != nil {
		h.error(w, http.StatusBadRequest, "invalid export id")
		return
	}

	f, info, err := h.store.Open(r.Context(), fileID)
	if err != nil {
		h.error(w, http.StatusNotFound, "export not found")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", info.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", info.Name))
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, f)
}

// Health reports liveness plus whether pdftotext is reachable.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	body := map[string]string{"status": "ok"}

	if h.health != nil && !h.health.Available() {
		status = http.StatusServiceUnavailable
		body["status"] = "degraded"
		body["detail"] = "pdftotext binary not found"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (h *Handler) readDocuments(r *http.Request) ([]service.Document, error) {
	var docs []service.Document
	for _, fh := range r.MultipartForm.File["pdf"] {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open upload %s", fh.Filename)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read upload %s", fh.Filename)
		}
		docs = append(docs, service.Document{FileName: fh.Filename, Data: data})
	}
	return docs, nil
}

func (h *Handler) readStoreMap(r *http.Request) ([]storemap.Entry, error) {
	files := r.MultipartForm.File["store_map"]
	if len(files) == 0 {
		return nil, nil
	}

	fh := files[0]
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s", fh.Filename)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s", fh.Filename)
	}

	return storemap.Load(fh.Filename, data)
}

func (h *Handler) error(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// exportFileName derives the artifact name from the first upload:
// "order_1234.pdf" becomes "order_1234.csv"; multi-file requests get a
// timestamped merged name.
func exportFileName(docs []service.Document) string {
	if len(docs) == 1 {
		base := docs[0].FileName
		if i := strings.LastIndex(base, "."); i > 0 {
			base = base[:i]
		}
		return base + ".csv"
	}
	return fmt.Sprintf("orders_merged_%s.csv", time.Now().Format("20060102_150405"))
}
