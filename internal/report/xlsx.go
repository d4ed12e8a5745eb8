package report

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"surveydq/internal/domain"
	"surveydq/internal/i18n"
)

// Sheet names of the rendered workbook.
const (
	SummarySheet = "Summary"
	GroupsSheet  = "Groups"
	IssuesSheet  = "Issues"
)

// sheetWriter appends rows to one worksheet.
type sheetWriter struct {
	f     *excelize.File
	sheet string
	row   int
}

func (w *sheetWriter) write(values ...any) error {
	w.row++
	cell, err := excelize.CoordinatesToCellName(1, w.row)
	if err != nil {
		return err
	}
	return w.f.SetSheetRow(w.sheet, cell, &values)
}

func (w *sheetWriter) skip() { w.row++ }

func (w *sheetWriter) style(id int, lastCol int) error {
	from, _ := excelize.CoordinatesToCellName(1, w.row)
	to, _ := excelize.CoordinatesToCellName(lastCol, w.row)
	return w.f.SetCellStyle(w.sheet, from, to, id)
}

// RenderXLSX builds the reviewer workbook: a Summary sheet with one line per
// group under each data sheet, a Groups table and the full Issues listing.
func RenderXLSX(res *domain.RunResult, messages i18n.Catalog, lang domain.Language) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return nil, fmt.Errorf("naming summary sheet: %w", err)
	}
	for _, s := range []string{GroupsSheet, IssuesSheet} {
		if _, err := f.NewSheet(s); err != nil {
			return nil, fmt.Errorf("creating sheet %s: %w", s, err)
		}
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("creating style: %w", err)
	}
	title, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 16}})
	if err != nil {
		return nil, fmt.Errorf("creating style: %w", err)
	}

	if err := writeSummary(f, res, messages, lang, bold, title); err != nil {
		return nil, fmt.Errorf("writing summary: %w", err)
	}
	if err := writeGroups(f, res.Groups, bold); err != nil {
		return nil, fmt.Errorf("writing groups: %w", err)
	}
	if err := writeIssues(f, res.Issues, bold); err != nil {
		return nil, fmt.Errorf("writing issues: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serializing workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSummary(f *excelize.File, res *domain.RunResult, messages i18n.Catalog, lang domain.Language, bold, title int) error {
	w := &sheetWriter{f: f, sheet: SummarySheet}
	if err := w.write(messages.Render(i18n.MsgReportTitle, lang)); err != nil {
		return err
	}
	if err := w.style(title, 1); err != nil {
		return err
	}

	run := res.Run
	meta := [][2]any{
		{"Country", string(run.Country)},
		{"Language", string(run.Language)},
		{"Key workbook", run.KeyFileName},
		{"Data workbook", run.DataFileName},
		{"Generated", run.FinishedAt.UTC().Format(time.RFC3339)},
	}
	for _, m := range meta {
		if err := w.write(m[0], m[1]); err != nil {
			return err
		}
	}
	w.skip()

	if len(res.Groups) == 0 {
		return w.write(messages.Render(i18n.MsgNoIssues, lang))
	}
	for _, sg := range BySheet(res.Groups) {
		if err := w.write(sg.Sheet); err != nil {
			return err
		}
		if err := w.style(bold, 1); err != nil {
			return err
		}
		for _, g := range sg.Groups {
			if err := w.write(SummaryLine(g)); err != nil {
				return err
			}
		}
		w.skip()
	}
	return f.SetColWidth(SummarySheet, "A", "A", 100)
}

func writeGroups(f *excelize.File, groups []domain.IssueGroup, bold int) error {
	w := &sheetWriter{f: f, sheet: GroupsSheet}
	if err := w.write("Sheet", "Field", "Issue", "Count", "Example"); err != nil {
		return err
	}
	if err := w.style(bold, 5); err != nil {
		return err
	}
	for _, g := range groups {
		if err := w.write(g.Sheet, g.Field, g.Kind.Label(), g.Count, g.Example); err != nil {
			return err
		}
	}
	return f.SetColWidth(GroupsSheet, "E", "E", 80)
}

func writeIssues(f *excelize.File, issues []domain.Issue, bold int) error {
	w := &sheetWriter{f: f, sheet: IssuesSheet}
	header := make([]any, len(issueColumns))
	for i, c := range issueColumns {
		header[i] = c
	}
	if err := w.write(header...); err != nil {
		return err
	}
	if err := w.style(bold, len(issueColumns)); err != nil {
		return err
	}
	for i := range issues {
		row := issueToRow(&issues[i])
		values := make([]any, len(row))
		for j, v := range row {
			values[j] = v
		}
		if issues[i].HasRow() {
			values[2] = SpreadsheetRow(*issues[i].Row)
		}
		if err := w.write(values...); err != nil {
			return err
		}
	}
	return f.SetColWidth(IssuesSheet, "F", "F", 80)
}
