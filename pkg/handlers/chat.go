package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/PranavZagade/Lumora/pkg/apperrors"
	"github.com/PranavZagade/Lumora/pkg/services"
)

// User-safe messages per failure kind. Raw SQL, engine internals, and
// validator rule names stay in the logs.
var kindMessages = map[apperrors.Kind]string{
	apperrors.KindValidationRejected: "I couldn't safely run a query for that question. Please try rephrasing it.",
	apperrors.KindGenerationFailed:   "I couldn't process your question right now. Please try again in a moment.",
	apperrors.KindTimeout:            "That question took too long to compute. Try narrowing it down.",
	apperrors.KindExecutionFailed:    "I couldn't compute an answer for that question. Please try rephrasing it.",
	apperrors.KindInvariantViolated:  "I couldn't verify the result of that question, so I'm not showing it. Please try a different question.",
}

type askRequest struct {
	Question string `json:"question"`
}

// ChatHandler answers questions against uploaded datasets.
type ChatHandler struct {
	ask    *services.AskService
	logger *zap.Logger
}

// NewChatHandler creates a ChatHandler.
func NewChatHandler(ask *services.AskService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{ask: ask, logger: logger.Named("chat")}
}

// RegisterRoutes registers the chat handler's routes on the given mux.
func (h *ChatHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/chat/{dataset_id}/ask", h.Ask)
}

// Ask handles POST /api/chat/{dataset_id}/ask requests. Pipeline
// failures come back as chat-style clarifications rather than bare
// HTTP errors; only a missing or expired dataset is an HTTP error.
func (h *ChatHandler) Ask(w http.ResponseWriter, r *http.Request) {
	datasetID := r.PathValue("dataset_id")

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Question == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Question is required")
		return
	}

	resp, err := h.ask.Ask(r.Context(), datasetID, req.Question)
	if err != nil {
		if errors.Is(err, apperrors.ErrDatasetNotFound) || errors.Is(err, apperrors.ErrSessionExpired) {
			writeDatasetError(w, err)
			return
		}

		kind := apperrors.KindOf(err)
		message, known := kindMessages[kind]
		if !known {
			h.logger.Error("unclassified ask failure",
				zap.String("dataset_id", datasetID),
				zap.Error(err))
			_ = ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Something went wrong. Please try again.")
			return
		}

		h.logger.Warn("ask failed",
			zap.String("dataset_id", datasetID),
			zap.String("kind", string(kind)),
			zap.Error(err))
		_ = WriteJSON(w, http.StatusOK, &services.AskResponse{
			DatasetID:          datasetID,
			Question:           req.Question,
			Answer:             message,
			NeedsClarification: true,
		})
		return
	}

	_ = WriteJSON(w, http.StatusOK, resp)
}
