package orderlog

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Orders"

var header = []string{"Order ID", "Date", "Customer Name", "Phone Number", "Location", "Items"}

// Row is one finalized order to append to the tabular store.
type Row struct {
	OrderID      string
	Date         time.Time
	CustomerName string
	Phone        string
	Location     string
	Items        []string
}

// ExcelLog appends one row per finalized order to an xlsx workbook,
// creating it with a styled header row on first use. Appends are
// append-only; there is no update or delete path.
type ExcelLog struct {
	path string
	mu   sync.Mutex
}

func NewExcelLog(path string) (*ExcelLog, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("orders file path is empty")
	}
	return &ExcelLog{path: path}, nil
}

// Append writes the row and returns the workbook path.
func (l *ExcelLog) Append(row Row) (string, error) {
	if strings.TrimSpace(row.OrderID) == "" {
		return "", errors.New("order id is empty")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, nextRow, err := l.open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	cell, err := excelize.CoordinatesToCellName(1, nextRow)
	if err != nil {
		return "", fmt.Errorf("resolve row coordinates: %w", err)
	}

	date := row.Date
	if date.IsZero() {
		date = time.Now()
	}
	values := []any{
		row.OrderID,
		date.Format("2006-01-02 15:04:05"),
		row.CustomerName,
		row.Phone,
		row.Location,
		strings.Join(row.Items, ", "),
	}
	if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
		return "", fmt.Errorf("append order row: %w", err)
	}

	if err := f.SaveAs(l.path); err != nil {
		return "", fmt.Errorf("save orders workbook: %w", err)
	}
	return l.path, nil
}

// open loads the workbook or creates it with the header row, returning the
// file and the 1-based index of the next free row.
func (l *ExcelLog) open() (*excelize.File, int, error) {
	if _, err := os.Stat(l.path); err == nil {
		f, err := excelize.OpenFile(l.path)
		if err != nil {
			return nil, 0, fmt.Errorf("open orders workbook: %w", err)
		}
		rows, err := f.GetRows(sheetName)
		if err != nil {
			f.Close()
			return nil, 0, fmt.Errorf("read orders sheet: %w", err)
		}
		return f, len(rows) + 1, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, 0, fmt.Errorf("stat orders workbook: %w", err)
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		f.Close()
		return nil, 0, fmt.Errorf("name orders sheet: %w", err)
	}

	vals := make([]any, len(header))
	for i, h := range header {
		vals[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &vals); err != nil {
		f.Close()
		return nil, 0, fmt.Errorf("write header row: %w", err)
	}

	styleID, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
	})
	if err == nil {
		lastCell, _ := excelize.CoordinatesToCellName(len(header), 1)
		_ = f.SetCellStyle(sheetName, "A1", lastCell, styleID)
	}

	widths := []float64{12, 20, 20, 20, 20, 30}
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(sheetName, col, col, w)
	}

	return f, 2, nil
}
