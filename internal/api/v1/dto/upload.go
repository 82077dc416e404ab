package dto

// UploadResponseDTO reports an upload's outcome: rows upserted, rows skipped
// for a blank external_id, and the counts of the scoring run it triggered.
type UploadResponseDTO struct {
	Accepted int `json:"accepted"`
	Skipped  int `json:"skipped"`
	Scored   int `json:"scored"`
	Failed   int `json:"failed"`
}

// UploadErrorDTO is returned when an upload is rejected outright, e.g. for
// missing required columns; no rows were committed.
type UploadErrorDTO struct {
	Error          string   `json:"error"`
	MissingColumns []string `json:"missing_columns,omitempty"`
}
