package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"app/internal/api/v1/dto"
	"app/internal/ingest"
	"app/internal/middleware"
	"app/internal/repository"
	"app/internal/service"

	"github.com/rs/zerolog"
)

// UploadHandler handles customer CSV uploads.
type UploadHandler struct {
	ingestSvc  service.IngestService
	scoringSvc service.ScoringService
	maxBytes   int64
	logger     zerolog.Logger
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(ingestSvc service.IngestService, scoringSvc service.ScoringService, maxBytes int64, logger zerolog.Logger) *UploadHandler {
	return &UploadHandler{ingestSvc: ingestSvc, scoringSvc: scoringSvc, maxBytes: maxBytes, logger: logger}
}

// RegisterRoutes mounts the upload endpoint.
func (h *UploadHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("/customers/upload", authMw(http.HandlerFunc(h.upload)))
}

// upload godoc
// @Summary Upload a customer CSV
// @Description Ingests a CSV of customers for the authenticated tenant, upserts each row and re-runs churn scoring.
// @Tags customers
// @Accept mpfd
// @Produce json
// @Param file formData file true "CSV file with customer rows"
// @Success 200 {object} dto.UploadResponseDTO
// @Failure 400 {object} dto.UploadErrorDTO "Missing required columns or unreadable file"
// @Failure 401 {string} string "Unauthorized: tenant not found in context"
// @Failure 413 {string} string "Upload exceeds size or row limits"
// @Failure 429 {string} string "Upload quota exceeded for the tenant's plan"
// @Router /customers/upload [post]
func (h *UploadHandler) upload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	tenantID, ok := r.Context().Value(middleware.TenantContextKey).(int64)
	if !ok || tenantID == 0 {
		http.Error(w, "Unauthorized: tenant not found in context", http.StatusUnauthorized)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		http.Error(w, "Upload too large or malformed: "+err.Error(), http.StatusRequestEntityTooLarge)
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Missing form file \"file\": "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "Failed to read upload: "+err.Error(), http.StatusBadRequest)
		return
	}

	summary, err := h.ingestSvc.IngestCSV(r.Context(), tenantID, data)
	if err != nil {
		h.writeIngestError(w, err)
		return
	}

	// A successful upload always refreshes the tenant's predictions.
	run, err := h.scoringSvc.Rescore(r.Context(), tenantID)
	if err != nil {
		h.logger.Error().Err(err).Int64("tenant_id", tenantID).Msg("Rescore after upload failed")
		http.Error(w, "Customers imported but scoring failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	resp := dto.UploadResponseDTO{
		Accepted: summary.Accepted,
		Skipped:  summary.Skipped,
		Scored:   run.Scored,
		Failed:   run.Failed,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (h *UploadHandler) writeIngestError(w http.ResponseWriter, err error) {
	var missing *ingest.MissingColumnsError
	switch {
	case errors.As(err, &missing):
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(dto.UploadErrorDTO{
			Error:          missing.Error(),
			MissingColumns: missing.Columns,
		})
	case errors.Is(err, ingest.ErrTooManyRows):
		http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
	case errors.Is(err, repository.ErrUploadLimitExceeded):
		http.Error(w, "Upload quota exceeded for your plan", http.StatusTooManyRequests)
	default:
		h.logger.Error().Err(err).Msg("Failed to ingest upload")
		http.Error(w, "Failed to ingest upload: "+err.Error(), http.StatusInternalServerError)
	}
}
