package runs

import (
	"time"

	"resume-screener/internal/aggregate"
	"resume-screener/internal/report"
	"resume-screener/internal/screening"
)

// FileStatus records what happened to one uploaded file.
type FileStatus string

const (
	FileAnalyzed FileStatus = "analyzed"
	FileSkipped  FileStatus = "skipped"
)

// File is the per-upload outcome of a run.
type File struct {
	Name         string     `json:"name"`
	Status       FileStatus `json:"status"`
	Reason       string     `json:"reason,omitempty"`
	SizeBytes    int64      `json:"sizeBytes"`
	StorageKey   string     `json:"storageKey,omitempty"`
	ExtractedKey string     `json:"extractedKey,omitempty"`
}

// Run is one persisted screening request and its results, owned by a client.
type Run struct {
	ID             string
	ClientID       string
	Industry       string
	JobDescription string
	Options        screening.Options
	Results        []report.Report
	Stats          aggregate.Stats
	Files          []File
	DurationMs     float64
	CreatedAt      time.Time
}

// Upload is a résumé file received by the API.
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}
