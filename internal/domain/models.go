package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// FieldSpec describes one expected field of the data workbook.
type FieldSpec struct {
	Name          string        `json:"name"`
	Applicability Applicability `json:"applicability"`
	Type          FieldType     `json:"type"`
}

// Issue is a single validation finding. Row is nil for column- or sheet-level conditions.
type Issue struct {
	Sheet   string    `json:"sheet"`
	Field   string    `json:"field,omitempty"`
	Row     *int      `json:"row,omitempty"`
	Kind    IssueKind `json:"kind"`
	Message string    `json:"message"`
	Value   string    `json:"value,omitempty"`
	// Values carries the offending identifier keys of a DuplicateCombination issue.
	Values []string `json:"values,omitempty"`
}

// HasRow reports whether the issue points at a single row.
func (i Issue) HasRow() bool { return i.Row != nil }

// RowIndex returns the issue's row or -1 when absent.
func (i Issue) RowIndex() int {
	if i.Row == nil {
		return -1
	}
	return *i.Row
}

// IssueGroup summarizes the issues sharing sheet, field and kind.
type IssueGroup struct {
	Sheet   string    `json:"sheet"`
	Field   string    `json:"field,omitempty"`
	Kind    IssueKind `json:"kind"`
	Count   int       `json:"count"`
	Example string    `json:"example"`
}

// SheetSummary records how a single data sheet fared in a run.
type SheetSummary struct {
	Name   string `json:"name"`
	Rows   int    `json:"rows"`
	Issues int    `json:"issues"`
}

// ValidationRun is the persisted record of one validation run.
type ValidationRun struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	Country      Country         `db:"country" json:"country"`
	Language     Language        `db:"language" json:"language"`
	KeyFileName  string          `db:"key_file_name" json:"key_file_name"`
	DataFileName string          `db:"data_file_name" json:"data_file_name"`
	Status       RunStatus       `db:"status" json:"status"`
	SheetCount   int             `db:"sheet_count" json:"sheet_count"`
	IssueCount   int             `db:"issue_count" json:"issue_count"`
	GroupCount   int             `db:"group_count" json:"group_count"`
	Groups       json.RawMessage `db:"groups" json:"groups"`
	Sheets       json.RawMessage `db:"sheets" json:"sheets"`
	ReportKey    string          `db:"report_key" json:"report_key,omitempty"`
	Error        string          `db:"error" json:"error,omitempty"`
	StartedAt    time.Time       `db:"started_at" json:"started_at"`
	FinishedAt   time.Time       `db:"finished_at" json:"finished_at"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

// RunResult is everything a validation run hands to its collaborators.
type RunResult struct {
	Run       ValidationRun  `json:"run"`
	Clean     bool           `json:"clean"`
	Sheets    []SheetSummary `json:"sheets"`
	Groups    []IssueGroup   `json:"groups"`
	Issues    []Issue        `json:"issues"`
	ReportURL string         `json:"report_url,omitempty"`
	Report    []byte         `json:"-"`
}
