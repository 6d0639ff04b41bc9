package http

import (
	"fmt"
	"net/http"
	"strconv"

	"loan-advisor/domain"
	"loan-advisor/logger"
	"loan-advisor/repository"
	"loan-advisor/service"
)

type DatasetHandler struct {
	dataset           *repository.LoanDataset
	stats             *service.StatisticsService
	defaultSampleSize int
	logger            logger.Logger
}

func NewDatasetHandler(dataset *repository.LoanDataset, stats *service.StatisticsService, defaultSampleSize int, log logger.Logger) *DatasetHandler {
	return &DatasetHandler{
		dataset:           dataset,
		stats:             stats,
		defaultSampleSize: defaultSampleSize,
		logger:            log,
	}
}

type statsResponse struct {
	domain.ApprovalStats
	ApprovalRateDisplay string `json:"approval_rate_display"`
}

func (h *DatasetHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	stats, err := h.stats.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{
		ApprovalStats:       stats,
		ApprovalRateDisplay: fmt.Sprintf("%.1f%%", stats.ApprovalRate),
	})
}

type sampleResponse struct {
	Count   int                 `json:"count"`
	Records []domain.LoanRecord `json:"records"`
}

func (h *DatasetHandler) Sample(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	n := h.defaultSampleSize
	if raw := r.URL.Query().Get("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, fmt.Errorf("%w: n must be an integer", domain.ErrInvalidArgument))
			return
		}
		n = parsed
	}

	records, err := h.dataset.Sample(n)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sampleResponse{Count: len(records), Records: records})
}

type reloadResponse struct {
	Source      string `json:"source"`
	Records     int    `json:"records"`
	Fingerprint string `json:"fingerprint"`
}

// Reload re-reads the source. A failed reload keeps serving the old snapshot.
func (h *DatasetHandler) Reload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	records, err := h.dataset.Load(r.Context())
	if err != nil {
		h.logger.Error("Dataset reload failed", map[string]interface{}{
			"source": h.dataset.SourceName(),
			"error":  err,
		})
		writeError(w, err)
		return
	}

	h.logger.Info("Dataset reloaded", map[string]interface{}{
		"source":  h.dataset.SourceName(),
		"records": len(records),
	})
	writeJSON(w, http.StatusOK, reloadResponse{
		Source:      h.dataset.SourceName(),
		Records:     len(records),
		Fingerprint: h.dataset.Fingerprint(),
	})
}
