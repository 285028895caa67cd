package http

import (
	"encoding/json"
	"net/http"

	"github.com/agenticfraud/fraud-pipeline/internal/analyzer"
	"github.com/agenticfraud/fraud-pipeline/internal/decision"
	"github.com/agenticfraud/fraud-pipeline/internal/domain"
)

// Handler serves the three boundary endpoints spec.md §6 assigns to this
// service's HTTP control plane.
type Handler struct {
	stage *decision.Stage
}

func NewHandler(stage *decision.Stage) *Handler {
	return &Handler{stage: stage}
}

// analyze invokes the coordinator directly against an empty streaming
// context (no velocity/profile join available outside the stream
// topology), matching SPEC_FULL.md's "direct coordinator invocation"
// boundary behavior.
func (h *Handler) analyze(w http.ResponseWriter, r *http.Request) {
	var event domain.Event
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid json body")
		return
	}
	if err := event.Validate(); err != nil {
		status, code, msg := mapDomainError(err)
		writeError(w, status, code, msg)
		return
	}

	result, err := h.stage.Handle(r.Context(), domain.EnrichedEvent{Event: event})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, result)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) agentsInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, analyzer.Catalog())
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
