package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"app/internal/api/v1/dto"
	"app/internal/middleware"
	"app/internal/model"
	"app/internal/service"

	"github.com/rs/zerolog"
)

// ChurnHandler handles churn scoring and dashboard endpoints.
type ChurnHandler struct {
	scoringSvc   service.ScoringService
	dashboardSvc service.DashboardService
	logger       zerolog.Logger
}

// NewChurnHandler creates a new ChurnHandler.
func NewChurnHandler(scoringSvc service.ScoringService, dashboardSvc service.DashboardService, logger zerolog.Logger) *ChurnHandler {
	return &ChurnHandler{scoringSvc: scoringSvc, dashboardSvc: dashboardSvc, logger: logger}
}

// RegisterRoutes mounts the churn endpoints.
func (h *ChurnHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("/churn/run", authMw(http.HandlerFunc(h.run)))
	mux.Handle("/churn/dashboard", authMw(http.HandlerFunc(h.dashboard)))
	mux.Handle("/churn/high-risk", authMw(http.HandlerFunc(h.highRisk)))
}

// run godoc
// @Summary Re-run churn scoring
// @Description Scores every customer of the authenticated tenant and appends a new prediction snapshot per customer.
// @Tags churn
// @Produce json
// @Success 200 {object} dto.ScoringRunResponseDTO
// @Failure 401 {string} string "Unauthorized: tenant not found in context"
// @Failure 500 {string} string "Scoring run failed"
// @Router /churn/run [post]
func (h *ChurnHandler) run(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	tenantID, ok := r.Context().Value(middleware.TenantContextKey).(int64)
	if !ok || tenantID == 0 {
		http.Error(w, "Unauthorized: tenant not found in context", http.StatusUnauthorized)
		return
	}
	run, err := h.scoringSvc.Rescore(r.Context(), tenantID)
	if err != nil {
		h.logger.Error().Err(err).Int64("tenant_id", tenantID).Msg("Scoring run failed")
		http.Error(w, "Scoring run failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(dto.ScoringRunResponseDTO{
		Scored:      run.Scored,
		Failed:      run.Failed,
		CompletedAt: run.CompletedAt,
	})
}

// dashboard godoc
// @Summary Churn dashboard
// @Description Returns the latest prediction per customer with revenue-at-risk and distribution aggregates.
// @Tags churn
// @Produce json
// @Success 200 {object} dto.DashboardResponseDTO
// @Failure 401 {string} string "Unauthorized: tenant not found in context"
// @Failure 500 {string} string "Failed to load dashboard"
// @Router /churn/dashboard [get]
func (h *ChurnHandler) dashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	tenantID, ok := r.Context().Value(middleware.TenantContextKey).(int64)
	if !ok || tenantID == 0 {
		http.Error(w, "Unauthorized: tenant not found in context", http.StatusUnauthorized)
		return
	}
	summary, err := h.dashboardSvc.Summary(r.Context(), tenantID)
	if err != nil {
		h.logger.Error().Err(err).Int64("tenant_id", tenantID).Msg("Failed to load dashboard")
		http.Error(w, "Failed to load dashboard: "+err.Error(), http.StatusInternalServerError)
		return
	}
	resp := dto.DashboardResponseDTO{
		TotalRevenueAtRisk: summary.TotalRevenueAtRisk,
		HasEarlyWarnings:   summary.HasEarlyWarnings,
		LevelCounts:        summary.LevelCounts,
		TrendCounts:        summary.TrendCounts,
		Predictions:        toPredictionDTOs(summary.Predictions),
		LastUpdated:        time.Now(),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// highRisk godoc
// @Summary High-risk customers
// @Description Returns the latest high-risk prediction per customer, ordered by revenue at risk.
// @Tags churn
// @Produce json
// @Success 200 {array} dto.PredictionDTO
// @Failure 401 {string} string "Unauthorized: tenant not found in context"
// @Failure 500 {string} string "Failed to load high-risk predictions"
// @Router /churn/high-risk [get]
func (h *ChurnHandler) highRisk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	tenantID, ok := r.Context().Value(middleware.TenantContextKey).(int64)
	if !ok || tenantID == 0 {
		http.Error(w, "Unauthorized: tenant not found in context", http.StatusUnauthorized)
		return
	}
	predictions, err := h.dashboardSvc.HighRisk(r.Context(), tenantID)
	if err != nil {
		h.logger.Error().Err(err).Int64("tenant_id", tenantID).Msg("Failed to load high-risk predictions")
		http.Error(w, "Failed to load high-risk predictions: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toPredictionDTOs(predictions))
}

func toPredictionDTOs(predictions []model.PredictionWithCustomer) []dto.PredictionDTO {
	out := make([]dto.PredictionDTO, 0, len(predictions))
	for _, p := range predictions {
		out = append(out, dto.PredictionDTO{
			CustomerID:         p.CustomerID,
			CustomerExternalID: p.CustomerExternalID,
			CustomerEmail:      p.CustomerEmail,
			RiskScore:          p.RiskScore,
			RiskLevel:          p.RiskLevel,
			Reasons:            p.Reasons,
			RevenueAtRisk:      p.RevenueAtRisk,
			RecommendedAction:  p.RecommendedAction,
			RiskTrend:          p.RiskTrend,
			EarlyWarning:       p.EarlyWarning,
			DaysInRisk:         p.DaysInRisk,
			CreatedAt:          p.CreatedAt,
		})
	}
	return out
}
