package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"pawsit/internal/domain"
	"pawsit/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// Exporter writes booking reports as XLSX files.
type Exporter struct {
	store  domain.Store
	path   string
	logger *zerolog.Logger
}

func NewExporter(store domain.Store, path string, logger *zerolog.Logger) *Exporter {
	return &Exporter{store: store, path: path, logger: logger}
}

// ExportBookings writes every booking overlapping [startDate, endDate]
// into a dated XLSX file and returns its path.
func (e *Exporter) ExportBookings(ctx context.Context, startDate, endDate time.Time) (string, error) {
	if err := os.MkdirAll(e.path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %v", err)
	}

	bookings, err := e.store.GetBookingsByDateRange(ctx, startDate, endDate)
	if err != nil {
		return "", fmt.Errorf("error getting bookings: %v", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Bookings"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("Period: %s - %s",
		startDate.Format("02.01.2006"), endDate.Format("02.01.2006")))

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.MergeCell(sheetName, "A1", "J1")
	_ = f.SetCellStyle(sheetName, "A1", "A1", titleStyle)

	headers := []string{
		"ID", "Owner ID", "Sitter ID", "Service ID", "Start", "End",
		"Total Cost", "Status", "Reason", "Created At",
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(sheetName, cell, header)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for i, booking := range bookings {
		row := i + 3
		_ = f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), booking.ID)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), booking.OwnerID)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), booking.SitterID)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), booking.ServiceID)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), booking.StartDate.Format("02.01.2006"))
		_ = f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), booking.EndDate.Format("02.01.2006"))
		_ = f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), booking.TotalCost)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), booking.Status)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("I%d", row), booking.StatusReason)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("J%d", row), booking.CreatedAt.Format("02.01.2006 15:04"))

		if styleID, err := statusStyle(f, booking.Status); err == nil {
			_ = f.SetCellStyle(sheetName, fmt.Sprintf("H%d", row), fmt.Sprintf("H%d", row), styleID)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "D", 12)
	_ = f.SetColWidth(sheetName, "E", "F", 14)
	_ = f.SetColWidth(sheetName, "G", "H", 12)
	_ = f.SetColWidth(sheetName, "I", "I", 30)
	_ = f.SetColWidth(sheetName, "J", "J", 18)

	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("bookings_%s_to_%s.xlsx",
		startDate.Format("2006-01-02"),
		endDate.Format("2006-01-02"))
	filePath := filepath.Join(e.path, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %v", err)
	}

	e.logger.Info().Str("file_path", filePath).Int("bookings", len(bookings)).Msg("Excel file created")
	return filePath, nil
}

func statusStyle(f *excelize.File, status string) (int, error) {
	var color string
	switch status {
	case models.StatusAccepted, models.StatusCompleted:
		color = "#C6EFCE"
	case models.StatusPending:
		color = "#FFEB9C"
	case models.StatusCancelled, models.StatusDeclined:
		color = "#FFC7CE"
	default:
		color = "#FFFFFF"
	}

	return f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
}
