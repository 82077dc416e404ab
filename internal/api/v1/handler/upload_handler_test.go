package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"app/internal/api/v1/dto"
	"app/internal/ingest"
	"app/internal/middleware"
	"app/internal/model"
	"app/internal/repository"
	"app/internal/service"

	"github.com/rs/zerolog"
)

type stubIngestService struct {
	summary *service.IngestSummary
	err     error
}

func (s *stubIngestService) IngestCSV(_ context.Context, tenantID int64, data []byte) (*service.IngestSummary, error) {
	return s.summary, s.err
}

type stubScoringService struct {
	summary *model.ScoringRunSummary
	err     error
}

func (s *stubScoringService) Rescore(_ context.Context, tenantID int64) (*model.ScoringRunSummary, error) {
	return s.summary, s.err
}

func multipartUpload(t *testing.T, csv string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "customers.csv")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(csv)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	writer.Close()
	return &body, writer.FormDataContentType()
}

func uploadRequest(t *testing.T, tenantID int64, csv string) *http.Request {
	t.Helper()
	body, contentType := multipartUpload(t, csv)
	req := httptest.NewRequest(http.MethodPost, "/customers/upload", body)
	req.Header.Set("Content-Type", contentType)
	if tenantID != 0 {
		req = req.WithContext(context.WithValue(req.Context(), middleware.TenantContextKey, tenantID))
	}
	return req
}

func TestUploadSuccess(t *testing.T) {
	h := NewUploadHandler(
		&stubIngestService{summary: &service.IngestSummary{Accepted: 3, Skipped: 1}},
		&stubScoringService{summary: &model.ScoringRunSummary{TenantID: 7, Scored: 3, CompletedAt: time.Now()}},
		1<<20,
		zerolog.Nop(),
	)

	rec := httptest.NewRecorder()
	h.upload(rec, uploadRequest(t, 7, "external_id\nc-1\n"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var resp dto.UploadResponseDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Accepted != 3 || resp.Skipped != 1 || resp.Scored != 3 || resp.Failed != 0 {
		t.Errorf("response = %+v, want accepted 3 skipped 1 scored 3", resp)
	}
}

func TestUploadWithoutTenantIsUnauthorized(t *testing.T) {
	h := NewUploadHandler(&stubIngestService{}, &stubScoringService{}, 1<<20, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.upload(rec, uploadRequest(t, 0, "external_id\nc-1\n"))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestUploadErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"missing columns", &ingest.MissingColumnsError{Columns: []string{"external_id"}}, http.StatusBadRequest},
		{"too many rows", ingest.ErrTooManyRows, http.StatusRequestEntityTooLarge},
		{"quota exceeded", repository.ErrUploadLimitExceeded, http.StatusTooManyRequests},
		{"unexpected", context.DeadlineExceeded, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewUploadHandler(&stubIngestService{err: tt.err}, &stubScoringService{}, 1<<20, zerolog.Nop())

			rec := httptest.NewRecorder()
			h.upload(rec, uploadRequest(t, 7, "external_id\nc-1\n"))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestUploadMissingColumnsBody(t *testing.T) {
	h := NewUploadHandler(
		&stubIngestService{err: &ingest.MissingColumnsError{Columns: []string{"external_id"}}},
		&stubScoringService{},
		1<<20,
		zerolog.Nop(),
	)

	rec := httptest.NewRecorder()
	h.upload(rec, uploadRequest(t, 7, "email\na@b.com\n"))

	var resp dto.UploadErrorDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if len(resp.MissingColumns) != 1 || resp.MissingColumns[0] != "external_id" {
		t.Errorf("missing columns = %v, want [external_id]", resp.MissingColumns)
	}
}

func TestUploadMissingFormFile(t *testing.T) {
	h := NewUploadHandler(&stubIngestService{}, &stubScoringService{}, 1<<20, zerolog.Nop())

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	writer.WriteField("note", "no file here")
	writer.Close()
	req := httptest.NewRequest(http.MethodPost, "/customers/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req = req.WithContext(context.WithValue(req.Context(), middleware.TenantContextKey, int64(7)))

	rec := httptest.NewRecorder()
	h.upload(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestUploadScoringFailureAfterImport(t *testing.T) {
	h := NewUploadHandler(
		&stubIngestService{summary: &service.IngestSummary{Accepted: 1}},
		&stubScoringService{err: context.DeadlineExceeded},
		1<<20,
		zerolog.Nop(),
	)

	rec := httptest.NewRecorder()
	h.upload(rec, uploadRequest(t, 7, "external_id\nc-1\n"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}
