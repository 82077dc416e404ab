package handler

import (
	"encoding/json"
	"net/http"

	"app/internal/api/v1/dto"
	"app/internal/middleware"
	"app/internal/repository"

	"github.com/rs/zerolog"
)

// CustomerHandler handles customer listing endpoints.
type CustomerHandler struct {
	customerRepo repository.CustomerRepository
	logger       zerolog.Logger
}

// NewCustomerHandler creates a new CustomerHandler.
func NewCustomerHandler(customerRepo repository.CustomerRepository, logger zerolog.Logger) *CustomerHandler {
	return &CustomerHandler{customerRepo: customerRepo, logger: logger}
}

// RegisterRoutes mounts customer routes.
func (h *CustomerHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("/customers", authMw(http.HandlerFunc(h.list)))
}

// list godoc
// @Summary List customers
// @Description Lists all customers of the authenticated tenant.
// @Tags customers
// @Produce json
// @Success 200 {array} dto.CustomerDTO
// @Failure 401 {string} string "Unauthorized: tenant not found in context"
// @Failure 500 {string} string "Failed to list customers"
// @Router /customers [get]
func (h *CustomerHandler) list(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	tenantID, ok := r.Context().Value(middleware.TenantContextKey).(int64)
	if !ok || tenantID == 0 {
		http.Error(w, "Unauthorized: tenant not found in context", http.StatusUnauthorized)
		return
	}
	customers, err := h.customerRepo.ListByTenant(r.Context(), tenantID)
	if err != nil {
		h.logger.Error().Err(err).Int64("tenant_id", tenantID).Msg("Failed to list customers")
		http.Error(w, "Failed to list customers: "+err.Error(), http.StatusInternalServerError)
		return
	}
	out := make([]dto.CustomerDTO, 0, len(customers))
	for _, c := range customers {
		out = append(out, dto.CustomerDTO{
			ID:                c.ID,
			ExternalID:        c.ExternalID,
			Email:             c.Email,
			SignupDate:        c.SignupDate,
			LastActiveDate:    c.LastActiveDate,
			SubscriptionType:  c.SubscriptionType,
			MonthlySpend:      c.MonthlySpend,
			FeatureUsageScore: c.FeatureUsageScore,
			Churned:           c.Churned,
			UploadedAt:        c.UploadedAt,
		})
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}
