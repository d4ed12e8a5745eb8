package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"surveydq/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// issueColumns defines the CSV header row of the issue listing.
var issueColumns = []string{
	"Sheet",
	"Field",
	"Row",
	"Issue",
	"Value",
	"Message",
}

// Writer wraps csv.Writer for exporting issues as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(issueColumns)
}

// WriteIssues converts issues to CSV rows and writes them.
func (w *Writer) WriteIssues(issues []domain.Issue) error {
	for i := range issues {
		if err := w.csv.Write(issueToRow(&issues[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// WriteCSV writes a BOM, the header and every issue to out.
func WriteCSV(out io.Writer, issues []domain.Issue) error {
	if _, err := out.Write(BOM); err != nil {
		return err
	}
	w := NewWriter(out)
	if err := w.WriteHeader(); err != nil {
		return err
	}
	if err := w.WriteIssues(issues); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// issueToRow converts a single issue to a row. Row numbers are spreadsheet
// rows (header is row 1); sheet- and column-level issues leave it empty.
func issueToRow(iss *domain.Issue) []string {
	row := make([]string, len(issueColumns))
	row[0] = iss.Sheet
	row[1] = iss.Field
	if iss.HasRow() {
		row[2] = strconv.Itoa(SpreadsheetRow(*iss.Row))
	}
	row[3] = iss.Kind.Label()
	row[4] = iss.Value
	if len(iss.Values) > 0 {
		row[4] = strings.Join(iss.Values, ", ")
	}
	row[5] = iss.Message
	return row
}

// SpreadsheetRow converts a zero-based data row index into the row number a
// reviewer sees in the source workbook.
func SpreadsheetRow(i int) int { return i + 2 }

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a file name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	if s == "" {
		s = "report"
	}
	return s
}

// BuildFilename returns a sanitized filename for Content-Disposition header.
// Format: dq_{sanitized_data_file_name}_{YYYY-MM-DD}.{ext}
func BuildFilename(dataFileName, ext string) string {
	base := strings.TrimSuffix(dataFileName, filepath.Ext(dataFileName))
	date := time.Now().Format("2006-01-02")
	return fmt.Sprintf("dq_%s_%s.%s", SanitizeFilename(base), date, ext)
}
