package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"app/internal/config"
	"app/internal/ingest"
	"app/internal/model"
	"app/internal/repository"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Uploads allowed per quota window by plan tier. Zero means unlimited.
var planUploadLimits = map[string]int{
	model.PlanFree:       10,
	model.PlanPro:        100,
	model.PlanEnterprise: 0,
}

// IngestSummary reports what an upload did: rows upserted, rows skipped for
// a blank key. The caller is always told what was dropped and why.
type IngestSummary struct {
	Accepted int `json:"accepted"`
	Skipped  int `json:"skipped"`
}

// IngestService turns an uploaded CSV into per-tenant customer rows.
type IngestService interface {
	// IngestCSV normalizes the upload and upserts every accepted row for the
	// tenant. A missing required column aborts with *ingest.MissingColumnsError
	// before any row is written; repository.ErrUploadLimitExceeded is returned
	// when the tenant's plan quota is used up.
	IngestCSV(ctx context.Context, tenantID int64, data []byte) (*IngestSummary, error)
}

type ingestService struct {
	customerRepo repository.CustomerRepository
	tenantRepo   repository.TenantRepository
	usageRepo    repository.UsageRepository
	s3Client     *s3.Client
	validate     *validator.Validate
	bucketName   string
	maxRows      int
	quotaDays    int
	logger       zerolog.Logger
}

// NewIngestService creates a new IngestService. s3Client may be nil, in
// which case raw uploads are not archived.
func NewIngestService(
	customerRepo repository.CustomerRepository,
	tenantRepo repository.TenantRepository,
	usageRepo repository.UsageRepository,
	s3Client *s3.Client,
	validate *validator.Validate,
	cfg *config.Config,
	logger zerolog.Logger,
) IngestService {
	return &ingestService{
		customerRepo: customerRepo,
		tenantRepo:   tenantRepo,
		usageRepo:    usageRepo,
		s3Client:     s3Client,
		validate:     validate,
		bucketName:   cfg.S3Bucket,
		maxRows:      cfg.MaxUploadRows,
		quotaDays:    cfg.UploadQuotaDays,
		logger:       logger.With().Str("service", "IngestService").Logger(),
	}
}

func (s *ingestService) IngestCSV(ctx context.Context, tenantID int64, data []byte) (*IngestSummary, error) {
	tenant, err := s.tenantRepo.GetTenantByID(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("resolve tenant %d: %w", tenantID, err)
	}
	if tenant == nil {
		return nil, fmt.Errorf("tenant %d not found", tenantID)
	}

	// Enforce the plan quota before doing any parsing work.
	end := time.Now()
	start := end.AddDate(0, 0, -s.quotaDays)
	if err := s.usageRepo.CheckAndRecordUpload(ctx, tenantID, start, end, planUploadLimits[tenant.Plan]); err != nil {
		return nil, err
	}

	result, err := ingest.Normalize(bytes.NewReader(data), s.maxRows)
	if err != nil {
		return nil, err
	}

	for _, row := range result.Rows {
		customer := &model.Customer{
			TenantID:          tenantID,
			ExternalID:        row.ExternalID,
			Email:             s.validEmail(row.Email),
			SignupDate:        row.SignupDate,
			LastActiveDate:    row.LastActiveDate,
			SubscriptionType:  row.SubscriptionType,
			MonthlySpend:      row.MonthlySpend,
			FeatureUsageScore: row.FeatureUsageScore,
			Churned:           row.Churned,
		}
		if _, err := s.customerRepo.Upsert(ctx, customer); err != nil {
			return nil, fmt.Errorf("upsert row %q: %w", row.ExternalID, err)
		}
	}

	s.archiveUpload(ctx, tenantID, data)

	return &IngestSummary{Accepted: result.Accepted, Skipped: result.Skipped}, nil
}

// validEmail drops addresses that fail validation. Malformed values are
// tolerated as unknown, never rejected.
func (s *ingestService) validEmail(email *string) *string {
	if email == nil {
		return nil
	}
	if err := s.validate.Var(*email, "email"); err != nil {
		return nil
	}
	return email
}

// archiveUpload keeps the raw file for audit. Best effort: a storage failure
// never fails an ingest that already committed.
func (s *ingestService) archiveUpload(ctx context.Context, tenantID int64, data []byte) {
	if s.s3Client == nil {
		return
	}
	key := fmt.Sprintf("uploads/tenant-%d/%d.csv", tenantID, time.Now().UnixNano())
	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Failed to archive raw upload")
		return
	}
	s.logger.Info().Str("key", key).Msg("Raw upload archived")
}
