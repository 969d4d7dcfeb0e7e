package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"labdash/internal/models"
)

const sheetName = "Data Aktivitas"

var header = []string{"No", "UID Kartu", "Lab", "Pemilik", "Masuk", "Keluar", "Durasi", "Status"}

var columnWidths = []float64{5, 20, 20, 25, 20, 20, 15, 15}

// Filename carries the report date so repeated downloads do not
// overwrite each other on the operator's machine.
func Filename(format string, now time.Time) string {
	return fmt.Sprintf("laporan_aktivitas_%s.%s", now.Format("2006-01-02"), format)
}

func WriteCSV(w io.Writer, records []models.ActivityRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for i := range records {
		if err := cw.Write(reportRow(i, &records[i])); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteXLSX(w io.Writer, records []models.ActivityRecord) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	for col, width := range columnWidths {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheetName, name, name, width); err != nil {
			return err
		}
	}

	if err := writeSheetRow(f, 1, header); err != nil {
		return err
	}
	for i := range records {
		if err := writeSheetRow(f, i+2, reportRow(i, &records[i])); err != nil {
			return err
		}
	}

	return f.Write(w)
}

func writeSheetRow(f *excelize.File, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return f.SetSheetRow(sheetName, cell, &cells)
}

func reportRow(index int, r *models.ActivityRecord) []string {
	return []string{
		strconv.Itoa(index + 1),
		formatCardUID(r.CardUID),
		orDash(r.RoomName),
		ownerLabel(r),
		formatTimestamp(r.CheckInAt),
		checkOutLabel(r),
		durationLabel(r),
		statusLabel(r),
	}
}

// ownerLabel picks the session owner: a resolved username wins, then a
// class name, then the dash placeholder. A record never meaningfully
// carries both.
func ownerLabel(r *models.ActivityRecord) string {
	if r.Username != "" {
		return "User: " + r.Username
	}
	if r.ClassName != "" {
		return "Kelas: " + r.ClassName
	}
	return "-"
}

func statusLabel(r *models.ActivityRecord) string {
	if r.IsCheckedOut() {
		return "CHECK OUT"
	}
	return "CHECK IN"
}

func checkOutLabel(r *models.ActivityRecord) string {
	if !r.IsCheckedOut() {
		return "-"
	}
	return formatTimestamp(r.CheckOutAt)
}

func durationLabel(r *models.ActivityRecord) string {
	minutes, ok := r.DurationMinutes()
	if !ok {
		return "-"
	}
	whole := int(minutes)
	if whole < 60 {
		return fmt.Sprintf("%d Menit", whole)
	}
	return fmt.Sprintf("%d Jam %d Menit", whole/60, whole%60)
}

func formatTimestamp(value string) string {
	t, ok := models.ParseTimestamp(value)
	if !ok {
		return "-"
	}
	return t.Format("02/01/2006 15:04")
}

func formatCardUID(uid string) string {
	if uid == "" {
		return "-"
	}
	return strings.Join(strings.Split(uid, ":"), " : ")
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
