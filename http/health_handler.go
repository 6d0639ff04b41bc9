package http

import (
	"net/http"

	"loan-advisor/repository"
	"loan-advisor/service"
)

type HealthHandler struct {
	dataset   *repository.LoanDataset
	narrative *service.NarrativeService
}

func NewHealthHandler(dataset *repository.LoanDataset, narrative *service.NarrativeService) *HealthHandler {
	return &HealthHandler{dataset: dataset, narrative: narrative}
}

type healthResponse struct {
	Status        string `json:"status"`
	NarrativeMode string `json:"narrative_mode"`
	Backend       string `json:"backend"`
	DatasetLoaded bool   `json:"dataset_loaded"`
	Records       int    `json:"records"`
}

// Healthz reports liveness. A missing dataset degrades features but does not
// make the process unhealthy.
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	records, loaded := h.dataset.Size()
	writeJSON(w, http.StatusOK, healthResponse{
		Status:        "ok",
		NarrativeMode: h.narrative.Mode(),
		Backend:       h.narrative.Backend(),
		DatasetLoaded: loaded,
		Records:       records,
	})
}
