package signup

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"github.com/neiist-dev/activities-backend/internal/activity"
)

// Exporter renders an event's signup list for organizers.
type Exporter struct {
	Repo     *Repository
	Activity *activity.Repository
}

func NewExporter(repo *Repository, activityRepo *activity.Repository) *Exporter {
	return &Exporter{Repo: repo, Activity: activityRepo}
}

func (e *Exporter) fetch(eventID string) (*activity.Event, []Row, error) {
	event, err := e.Activity.GetEventByID(eventID)
	if err != nil {
		return nil, nil, err
	}
	rows, err := e.Repo.ListForEvent(eventID)
	if err != nil {
		return nil, nil, err
	}
	return event, rows, nil
}

// ExportXLSX generates an Excel sheet of the event's signups.
func (e *Exporter) ExportXLSX(eventID string) ([]byte, error) {
	event, rows, err := e.fetch(eventID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Signups"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"IST ID", "Name", "Email", "Signed Up At"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for i, row := range rows {
		values := []interface{}{row.MemberID, row.Name, row.Email, row.SignedUpAt.Format("2006-01-02 15:04")}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	f.SetCellValue(sheet, "F1", "Activity")
	f.SetCellValue(sheet, "G1", event.Title)
	f.SetCellValue(sheet, "F2", "Total")
	f.SetCellValue(sheet, "G2", len(rows))

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportPDF generates a printable signup list.
func (e *Exporter) ExportPDF(eventID string) ([]byte, error) {
	event, rows, err := e.fetch(eventID)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 10, fmt.Sprintf("Signups - %s", event.Title))
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 8, fmt.Sprintf("Starts: %s    Total signups: %d",
		event.StartsAt.Format("2006-01-02 15:04"), len(rows)))
	pdf.Ln(12)

	widths := []float64{25, 60, 70, 35}
	titles := []string{"IST ID", "Name", "Email", "Signed Up At"}
	pdf.SetFont("Arial", "B", 10)
	for i, t := range titles {
		pdf.CellFormat(widths[i], 8, t, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range rows {
		pdf.CellFormat(widths[0], 7, row.MemberID, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, row.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 7, row.Email, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[3], 7, row.SignedUpAt.Format("2006-01-02 15:04"), "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
