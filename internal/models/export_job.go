package models

import "time"

// ExportFormat selects the rendered agenda format.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportJobStatus tracks async agenda export progress.
type ExportJobStatus string

const (
	ExportJobQueued    ExportJobStatus = "queued"
	ExportJobRunning   ExportJobStatus = "running"
	ExportJobCompleted ExportJobStatus = "completed"
	ExportJobFailed    ExportJobStatus = "failed"
)

// ExportJobParams is what the caller asked to export.
type ExportJobParams struct {
	ClientID string       `json:"clientId"`
	DateID   string       `json:"dateId"`
	StaffID  string       `json:"staffId,omitempty"`
	Format   ExportFormat `json:"format"`
}

// ExportJob is a queued agenda export request. Jobs live in memory for
// the lifetime of the process; exports are short-lived artifacts.
type ExportJob struct {
	ID          string          `json:"id"`
	ClientID    string          `json:"client_id"`
	Status      ExportJobStatus `json:"status"`
	Params      ExportJobParams `json:"params"`
	FilePath    string          `json:"-"`
	Error       string          `json:"error,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}
