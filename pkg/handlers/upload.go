package handlers

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/PranavZagade/Lumora/pkg/apperrors"
	"github.com/PranavZagade/Lumora/pkg/dataset"
	"github.com/PranavZagade/Lumora/pkg/models"
)

// MaxUploadBytes caps uploaded file size at 50MB.
const MaxUploadBytes = 50 << 20

// UploadResponse is returned after a successful dataset upload.
type UploadResponse struct {
	Success   bool                   `json:"success"`
	DatasetID string                 `json:"dataset_id"`
	Dataset   *models.DatasetProfile `json:"dataset"`
	Message   string                 `json:"message"`
}

// UploadHandler handles dataset upload, profile retrieval, and
// deletion.
type UploadHandler struct {
	storage  *dataset.Storage
	profiler *dataset.Profiler
	logger   *zap.Logger
}

// NewUploadHandler creates an UploadHandler.
func NewUploadHandler(storage *dataset.Storage, profiler *dataset.Profiler, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{storage: storage, profiler: profiler, logger: logger.Named("upload")}
}

// RegisterRoutes registers the upload handler's routes on the given mux.
func (h *UploadHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/upload", h.Upload)
	mux.HandleFunc("GET /api/upload/{dataset_id}/profile", h.Profile)
	mux.HandleFunc("DELETE /api/upload/{dataset_id}", h.Delete)
}

// Upload handles POST /api/upload requests. Accepts a multipart CSV
// under the "file" field and responds with the dataset id and profile.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_upload", "A CSV file is required under the 'file' field")
		return
	}
	defer file.Close()

	filename := header.Filename
	if filename == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_upload", "No filename provided")
		return
	}
	if !strings.EqualFold(filepath.Ext(filename), ".csv") {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_upload", "Invalid file type. Allowed: .csv")
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_upload", "File too large. Maximum size is 50MB")
		return
	}

	datasetID := dataset.NewID()
	csvPath, err := h.storage.SaveFile(datasetID, filename, content)
	if err != nil {
		h.logger.Error("failed to store upload", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "storage_failed", "Could not store the uploaded file")
		return
	}

	profile, err := h.profiler.Profile(r.Context(), csvPath, datasetID, filename)
	if err != nil {
		h.logger.Error("failed to profile upload",
			zap.String("dataset_id", datasetID),
			zap.Error(err))
		_, _ = h.storage.DeleteSession(datasetID)
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_dataset", "Could not read the file as a CSV dataset")
		return
	}

	if err := h.storage.SaveJSON(datasetID, "profile", profile); err != nil {
		h.logger.Error("failed to store profile", zap.Error(err))
		_, _ = h.storage.DeleteSession(datasetID)
		_ = ErrorResponse(w, http.StatusInternalServerError, "storage_failed", "Could not store the dataset profile")
		return
	}

	h.logger.Info("dataset uploaded",
		zap.String("dataset_id", datasetID),
		zap.String("filename", filename),
		zap.Int64("total_rows", profile.TotalRows))

	_ = WriteJSON(w, http.StatusOK, UploadResponse{
		Success:   true,
		DatasetID: datasetID,
		Dataset:   profile,
		Message:   "Successfully uploaded " + filename,
	})
}

// Profile handles GET /api/upload/{dataset_id}/profile requests.
func (h *UploadHandler) Profile(w http.ResponseWriter, r *http.Request) {
	datasetID := r.PathValue("dataset_id")

	var profile models.DatasetProfile
	if err := h.storage.ReadJSON(datasetID, "profile", &profile); err != nil {
		writeDatasetError(w, err)
		return
	}
	_ = WriteJSON(w, http.StatusOK, &profile)
}

// Delete handles DELETE /api/upload/{dataset_id} requests.
func (h *UploadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	datasetID := r.PathValue("dataset_id")

	deleted, err := h.storage.DeleteSession(datasetID)
	if err != nil {
		h.logger.Error("failed to delete dataset",
			zap.String("dataset_id", datasetID),
			zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "storage_failed", "Could not delete the dataset")
		return
	}
	if !deleted {
		_ = ErrorResponse(w, http.StatusNotFound, "dataset_not_found", "Dataset not found")
		return
	}
	_ = WriteJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Dataset deleted"})
}

// writeDatasetError maps storage sentinels to HTTP responses.
func writeDatasetError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperrors.ErrDatasetNotFound):
		_ = ErrorResponse(w, http.StatusNotFound, "dataset_not_found", "Dataset not found")
	case errors.Is(err, apperrors.ErrSessionExpired):
		_ = ErrorResponse(w, http.StatusGone, "session_expired", "This dataset session has expired. Please upload the file again.")
	default:
		_ = ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Something went wrong. Please try again.")
	}
}
