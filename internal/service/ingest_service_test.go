package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"app/internal/config"
	"app/internal/ingest"
	"app/internal/model"
	"app/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type fakeTenantRepo struct {
	tenant *model.Tenant
	err    error
}

func (f *fakeTenantRepo) GetTenantByID(_ context.Context, tenantID int64) (*model.Tenant, error) {
	return f.tenant, f.err
}

func (f *fakeTenantRepo) GetTenantBySlug(_ context.Context, slug string) (*model.Tenant, error) {
	return f.tenant, f.err
}

type fakeUsageRepo struct {
	err       error
	lastLimit int
	callCount int
}

func (f *fakeUsageRepo) CheckAndRecordUpload(_ context.Context, tenantID int64, start, end time.Time, maxUploads int) error {
	f.callCount++
	f.lastLimit = maxUploads
	return f.err
}

func (f *fakeUsageRepo) CountUploadsInTimeRange(_ context.Context, tenantID int64, start, end time.Time) (int, error) {
	return 0, nil
}

func newTestIngestService(customers *fakeCustomerRepo, tenants *fakeTenantRepo, usage *fakeUsageRepo) IngestService {
	cfg := &config.Config{MaxUploadRows: 100, UploadQuotaDays: 30}
	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewIngestService(customers, tenants, usage, nil, validate, cfg, zerolog.Nop())
}

func proTenant() *fakeTenantRepo {
	return &fakeTenantRepo{tenant: &model.Tenant{ID: 7, Slug: "acme", Plan: model.PlanPro}}
}

func TestIngestCSVUpsertsRows(t *testing.T) {
	customers := &fakeCustomerRepo{}
	svc := newTestIngestService(customers, proTenant(), &fakeUsageRepo{})

	csv := "external_id,email,monthly_spend\n" +
		"c-1,a@b.com,10\n" +
		",missing-key@b.com,5\n" +
		"c-2,not-an-email,20\n"
	summary, err := svc.IngestCSV(context.Background(), 7, []byte(csv))
	if err != nil {
		t.Fatalf("IngestCSV failed: %v", err)
	}
	if summary.Accepted != 2 || summary.Skipped != 1 {
		t.Fatalf("summary = %+v, want 2 accepted 1 skipped", summary)
	}
	if len(customers.upserted) != 2 {
		t.Fatalf("upserted = %d, want 2", len(customers.upserted))
	}

	first := customers.upserted[0]
	if first.TenantID != 7 || first.ExternalID != "c-1" {
		t.Errorf("first upsert = %+v, want tenant 7 c-1", first)
	}
	if first.Email == nil || *first.Email != "a@b.com" {
		t.Errorf("first email = %v, want a@b.com", first.Email)
	}
	// A malformed address is stored as unknown, the row itself survives.
	if customers.upserted[1].Email != nil {
		t.Errorf("malformed email = %v, want nil", *customers.upserted[1].Email)
	}
}

func TestIngestCSVMissingColumnAbortsBeforeWrites(t *testing.T) {
	customers := &fakeCustomerRepo{}
	svc := newTestIngestService(customers, proTenant(), &fakeUsageRepo{})

	_, err := svc.IngestCSV(context.Background(), 7, []byte("email\na@b.com\n"))
	var missing *ingest.MissingColumnsError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingColumnsError, got %v", err)
	}
	if len(customers.upserted) != 0 {
		t.Errorf("upserted = %d, want 0 on aborted upload", len(customers.upserted))
	}
}

func TestIngestCSVQuotaExceeded(t *testing.T) {
	customers := &fakeCustomerRepo{}
	usage := &fakeUsageRepo{err: repository.ErrUploadLimitExceeded}
	svc := newTestIngestService(customers, proTenant(), usage)

	_, err := svc.IngestCSV(context.Background(), 7, []byte("external_id\nc-1\n"))
	if !errors.Is(err, repository.ErrUploadLimitExceeded) {
		t.Fatalf("expected ErrUploadLimitExceeded, got %v", err)
	}
	if len(customers.upserted) != 0 {
		t.Errorf("upserted = %d, want 0 when over quota", len(customers.upserted))
	}
}

func TestIngestCSVPlanLimits(t *testing.T) {
	tests := []struct {
		plan      string
		wantLimit int
	}{
		{model.PlanFree, 10},
		{model.PlanPro, 100},
		{model.PlanEnterprise, 0},
	}
	for _, tt := range tests {
		usage := &fakeUsageRepo{}
		tenants := &fakeTenantRepo{tenant: &model.Tenant{ID: 7, Slug: "acme", Plan: tt.plan}}
		svc := newTestIngestService(&fakeCustomerRepo{}, tenants, usage)

		if _, err := svc.IngestCSV(context.Background(), 7, []byte("external_id\nc-1\n")); err != nil {
			t.Fatalf("plan %s: IngestCSV failed: %v", tt.plan, err)
		}
		if usage.callCount != 1 {
			t.Errorf("plan %s: quota checks = %d, want 1", tt.plan, usage.callCount)
		}
		if usage.lastLimit != tt.wantLimit {
			t.Errorf("plan %s: quota limit = %d, want %d", tt.plan, usage.lastLimit, tt.wantLimit)
		}
	}
}

func TestIngestCSVUnknownTenant(t *testing.T) {
	svc := newTestIngestService(&fakeCustomerRepo{}, &fakeTenantRepo{}, &fakeUsageRepo{})

	if _, err := svc.IngestCSV(context.Background(), 7, []byte("external_id\nc-1\n")); err == nil {
		t.Fatal("expected error for unknown tenant")
	}
}

func TestIngestCSVFullReplaceSemantics(t *testing.T) {
	customers := &fakeCustomerRepo{}
	svc := newTestIngestService(customers, proTenant(), &fakeUsageRepo{})

	// Re-uploading the same external_id with fewer fields clears the rest.
	if _, err := svc.IngestCSV(context.Background(), 7, []byte("external_id,email\nc-1,a@b.com\n")); err != nil {
		t.Fatalf("first upload failed: %v", err)
	}
	if _, err := svc.IngestCSV(context.Background(), 7, []byte("external_id\nc-1\n")); err != nil {
		t.Fatalf("second upload failed: %v", err)
	}

	second := customers.upserted[1]
	if second.ExternalID != "c-1" {
		t.Fatalf("second upsert = %+v, want c-1", second)
	}
	if second.Email != nil {
		t.Errorf("re-upload without email must pass nil, got %v", *second.Email)
	}
}
