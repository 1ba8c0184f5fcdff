// Package export renders complaints as an XLSX workbook.
package export

import (
	"bytes"
	"civicdesk/backend/internal/config"
	"civicdesk/backend/internal/models"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	ComplaintsSheet = "Complaints"
	StatsSheet      = "Stats"
	ContentType     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ComplaintHeader is the first row of the complaints sheet.
var ComplaintHeader = []string{
	"ID", "Title", "Category", "Status", "Priority", "Description",
	"Email", "Phone", "Submitted By", "Assigned To", "Department",
	"Longitude", "Latitude", "Resolution", "Created At", "Updated At",
}

var columnWidths = []float64{38, 30, 20, 14, 10, 50, 28, 16, 38, 38, 38, 12, 12, 40, 20, 20}

// Filename returns the attachment name for an export taken at t.
func Filename(t time.Time) string {
	return "complaints-" + t.UTC().Format("20060102-150405") + ".xlsx"
}

// Complaints builds a workbook with one row per complaint plus a sheet of
// counts per status.
func Complaints(complaints []models.Complaint, stats map[string]int64) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(ComplaintsSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to delete default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeRow(f, ComplaintsSheet, 1, toAny(ComplaintHeader)); err != nil {
		return nil, err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(ComplaintHeader))
	if err := f.SetCellStyle(ComplaintsSheet, "A1", lastCol+"1", headerStyle); err != nil {
		return nil, fmt.Errorf("failed to set header style: %w", err)
	}
	for i, w := range columnWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(ComplaintsSheet, col, col, w); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}
	if err := f.SetPanes(ComplaintsSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return nil, fmt.Errorf("failed to freeze header: %w", err)
	}

	for i, c := range complaints {
		if err := writeRow(f, ComplaintsSheet, i+2, complaintRow(c)); err != nil {
			return nil, err
		}
	}

	if _, err := f.NewSheet(StatsSheet); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := writeRow(f, StatsSheet, 1, []any{"Status", "Count"}); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(StatsSheet, "A1", "B1", headerStyle); err != nil {
		return nil, fmt.Errorf("failed to set header style: %w", err)
	}
	for i, status := range statusOrder(stats) {
		if err := writeRow(f, StatsSheet, i+2, []any{status, stats[status]}); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("failed to convert coordinates: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}

func complaintRow(c models.Complaint) []any {
	var lng, lat any = "", ""
	if !c.Location.IsZero() {
		lng, lat = *c.Location.Longitude, *c.Location.Latitude
	}
	return []any{
		c.ID, c.Title, c.Category, c.Status, c.Priority, c.Description,
		c.Email, c.Phone, deref(c.SubmittedBy), deref(c.AssignedTo), deref(c.DepartmentID),
		lng, lat, c.Resolution,
		c.CreatedAt.UTC().Format(time.RFC3339), c.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func statusOrder(stats map[string]int64) []string {
	out := make([]string, 0, len(stats))
	for _, s := range config.Statuses {
		if _, ok := stats[s]; ok {
			out = append(out, s)
		}
	}
	var rest []string
	for s := range stats {
		if !contains(config.Statuses, s) {
			rest = append(rest, s)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
