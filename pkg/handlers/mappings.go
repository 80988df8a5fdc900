package handlers

import (
	"encoding/json"
	"net/http"
	"slices"

	"go.uber.org/zap"

	"github.com/PranavZagade/Lumora/pkg/dataset"
	"github.com/PranavZagade/Lumora/pkg/models"
)

type mappingRequest struct {
	Concept    string `json:"concept"`
	ColumnName string `json:"column_name"`
}

// MappingsHandler stores and serves semantic concept-to-column
// mappings per dataset.
type MappingsHandler struct {
	storage *dataset.Storage
	logger  *zap.Logger
}

// NewMappingsHandler creates a MappingsHandler.
func NewMappingsHandler(storage *dataset.Storage, logger *zap.Logger) *MappingsHandler {
	return &MappingsHandler{storage: storage, logger: logger.Named("mappings")}
}

// RegisterRoutes registers the mappings handler's routes on the given mux.
func (h *MappingsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/mappings/{dataset_id}", h.Get)
	mux.HandleFunc("POST /api/mappings/{dataset_id}", h.Save)
}

// Get handles GET /api/mappings/{dataset_id} requests.
func (h *MappingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	datasetID := r.PathValue("dataset_id")

	var profile models.DatasetProfile
	if err := h.storage.ReadJSON(datasetID, "profile", &profile); err != nil {
		writeDatasetError(w, err)
		return
	}

	mappings := map[string]string{}
	_ = h.storage.ReadJSON(datasetID, "mappings", &mappings)

	_ = WriteJSON(w, http.StatusOK, map[string]any{
		"dataset_id": datasetID,
		"mappings":   mappings,
	})
}

// Save handles POST /api/mappings/{dataset_id} requests. The mapped
// column must exist in the dataset profile.
func (h *MappingsHandler) Save(w http.ResponseWriter, r *http.Request) {
	datasetID := r.PathValue("dataset_id")

	var req mappingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Concept == "" || req.ColumnName == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Both 'concept' and 'column_name' are required")
		return
	}

	var profile models.DatasetProfile
	if err := h.storage.ReadJSON(datasetID, "profile", &profile); err != nil {
		writeDatasetError(w, err)
		return
	}

	if !slices.Contains(profile.ColumnNames(), req.ColumnName) {
		_ = ErrorResponse(w, http.StatusBadRequest, "unknown_column", "Column '"+req.ColumnName+"' not found in dataset")
		return
	}

	mappings := map[string]string{}
	_ = h.storage.ReadJSON(datasetID, "mappings", &mappings)
	mappings[req.Concept] = req.ColumnName

	if err := h.storage.SaveJSON(datasetID, "mappings", mappings); err != nil {
		h.logger.Error("failed to save mapping", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "storage_failed", "Could not save the mapping")
		return
	}

	_ = WriteJSON(w, http.StatusOK, map[string]any{
		"dataset_id":  datasetID,
		"concept":     req.Concept,
		"column_name": req.ColumnName,
		"success":     true,
	})
}
