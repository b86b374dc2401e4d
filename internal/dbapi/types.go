package dbapi

import (
	"strings"
	"time"
)

// TableSummary is one entry of GET /db/tables.
type TableSummary struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Count       int64  `json:"count"`
}

// TableRecords is the body of GET /db/table/{name}.
type TableRecords struct {
	Table   string   `json:"table"`
	Count   int64    `json:"count"`
	Records []Record `json:"records"`
}

// FileRecord is one uploaded presentation as listed by GET /db/files.
type FileRecord struct {
	ID               int64  `json:"id"`
	Filename         string `json:"filename,omitempty"`
	OriginalFilename string `json:"original_filename"`
	UploadedAt       string `json:"uploaded_at"`
	SlideCount       int    `json:"slide_count"`
	URLCount         int    `json:"url_count"`
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// UploadedTime parses UploadedAt. Timestamps without a zone are taken as UTC.
func (f FileRecord) UploadedTime() (time.Time, bool) {
	s := strings.TrimSpace(f.UploadedAt)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// UploadResult is the body of a successful POST /db/upload.
type UploadResult struct {
	Message    string `json:"message,omitempty"`
	FileID     int64  `json:"file_id,omitempty"`
	SlideCount int    `json:"slide_count"`
	URLCount   int    `json:"url_count"`
}

// DeleteResult is the body of a successful DELETE /db/files/{id}.
type DeleteResult struct {
	Message       string `json:"message,omitempty"`
	SlidesDeleted int    `json:"slides_deleted"`
	URLCount      int    `json:"url_count"`
}

// ClearResult is the body of a successful POST /db/clear. FilesDeleted is
// zero when the backend omits it.
type ClearResult struct {
	Message       string `json:"message,omitempty"`
	FilesDeleted  int    `json:"files_deleted"`
	SlidesDeleted int    `json:"slides_deleted"`
	URLsDeleted   int    `json:"urls_deleted"`
}

// Health is the body of GET /api/health.
type Health struct {
	Status   string `json:"status"`
	Service  string `json:"service,omitempty"`
	Database string `json:"database,omitempty"`
}

// errorBody is the error envelope used by every endpoint.
type errorBody struct {
	Error   string `json:"error"`
	Success *bool  `json:"success,omitempty"`
}
