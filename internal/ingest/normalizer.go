package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Recognized CSV columns. Unrecognized columns are ignored.
const (
	colExternalID        = "external_id"
	colEmail             = "email"
	colSignupDate        = "signup_date"
	colLastActiveDate    = "last_active_date"
	colSubscriptionType  = "subscription_type"
	colMonthlySpend      = "monthly_spend"
	colFeatureUsageScore = "feature_usage_score"
	colChurned           = "churned"
)

const dateLayout = "2006-01-02"

// ErrTooManyRows is returned when an upload exceeds the configured row cap.
var ErrTooManyRows = errors.New("upload exceeds row limit")

// MissingColumnsError aborts an upload whose header lacks required columns.
// No rows are processed when this is returned.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Columns, ", "))
}

// Row is one normalized customer record from an upload. Optional fields are
// nil when the cell was blank or unparsable; parse failures are tolerated,
// never escalated.
type Row struct {
	ExternalID        string
	Email             *string
	SignupDate        *time.Time
	LastActiveDate    *time.Time
	SubscriptionType  *string
	MonthlySpend      *float64
	FeatureUsageScore *float64
	Churned           bool
}

// Result carries the normalized rows plus ingestion counters. Skipped counts
// rows dropped for a blank external_id; those are soft skips, not errors.
type Result struct {
	Rows     []Row
	Accepted int
	Skipped  int
}

// Normalize parses a CSV upload into validated rows.
//
// Header names are matched after trimming whitespace, stripping a leading
// byte-order mark and lowercasing, so "External_ID" and "\ufeffexternal_id "
// both resolve to external_id. maxRows bounds the number of data rows; 0
// means no bound.
func Normalize(r io.Reader, maxRows int) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, &MissingColumnsError{Columns: []string{colExternalID}}
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	// Map recognized columns to their position in the file.
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[normalizeHeader(name)] = i
	}
	if _, ok := index[colExternalID]; !ok {
		return nil, &MissingColumnsError{Columns: []string{colExternalID}}
	}

	result := &Result{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		if maxRows > 0 && result.Accepted+result.Skipped >= maxRows {
			return nil, fmt.Errorf("%w (max %d)", ErrTooManyRows, maxRows)
		}

		externalID := strings.TrimSpace(cell(record, index, colExternalID))
		if externalID == "" {
			result.Skipped++
			continue
		}

		result.Rows = append(result.Rows, Row{
			ExternalID:        externalID,
			Email:             optionalString(cell(record, index, colEmail)),
			SignupDate:        parseDate(cell(record, index, colSignupDate)),
			LastActiveDate:    parseDate(cell(record, index, colLastActiveDate)),
			SubscriptionType:  optionalString(cell(record, index, colSubscriptionType)),
			MonthlySpend:      parseFloat(cell(record, index, colMonthlySpend)),
			FeatureUsageScore: parseFloat(cell(record, index, colFeatureUsageScore)),
			Churned:           parseBool(cell(record, index, colChurned)),
		})
		result.Accepted++
	}

	return result, nil
}

func normalizeHeader(name string) string {
	name = strings.TrimPrefix(name, "\uFEFF")
	return strings.ToLower(strings.TrimSpace(name))
}

func cell(record []string, index map[string]int, column string) string {
	i, ok := index[column]
	if !ok || i >= len(record) {
		return ""
	}
	return record[i]
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

// parseDate accepts YYYY-MM-DD only; anything else is treated as unknown.
func parseDate(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil
	}
	return &t
}

func parseFloat(value string) *float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return nil
	}
	return &f
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes":
		return true
	}
	return false
}
