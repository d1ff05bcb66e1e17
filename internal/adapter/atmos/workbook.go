package atmos

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/extrame/xls"
	"github.com/user/atmos-energy/internal/usage"
	"github.com/xuri/excelize/v2"
)

// Daily usage exports put the metered value in the second column and the
// read date in the fourth. The first row is a header.
const (
	valueColumn = 1
	dateColumn  = 3
)

var (
	xlsxMagic = []byte("PK\x03\x04")
	xlsMagic  = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// The BIFF reader renders date-formatted numeric cells as RFC 3339.
var dayLayouts = []string{"01/02/2006", "1/2/2006", "2006-01-02", time.RFC3339}

// ParseWorkbook decodes a usage export into readings in sheet order. Rows
// without a usable date and value are skipped; a workbook that yields no
// readings at all is an error.
func ParseWorkbook(data []byte) ([]usage.Reading, error) {
	rows, err := workbookRows(data)
	if err != nil {
		return nil, err
	}

	readings := make([]usage.Reading, 0, len(rows))
	for _, row := range rows {
		r, ok := parseRow(row)
		if !ok {
			continue
		}
		readings = append(readings, r)
	}

	if len(readings) == 0 {
		return nil, fmt.Errorf("%w: no usage rows among %d sheet rows", ErrParse, len(rows))
	}
	return readings, nil
}

// workbookRows returns the first sheet as text cells. The portal has served
// both legacy BIFF and OOXML workbooks, so the format is sniffed rather than
// trusted from the content type.
func workbookRows(data []byte) ([][]string, error) {
	switch {
	case bytes.HasPrefix(data, xlsxMagic):
		return xlsxRows(data)
	case bytes.HasPrefix(data, xlsMagic):
		return xlsRows(data)
	default:
		return nil, fmt.Errorf("%w: unrecognized workbook format", ErrParse)
	}
}

func xlsxRows(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrParse)
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: reading sheet %q: %w", ErrParse, sheet, err)
	}
	return rows, nil
}

func xlsRows(data []byte) (rows [][]string, err error) {
	// The BIFF reader panics on truncated streams.
	defer func() {
		if r := recover(); r != nil {
			rows = nil
			err = fmt.Errorf("%w: corrupt workbook: %v", ErrParse, r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	if wb == nil {
		return nil, fmt.Errorf("%w: no workbook stream", ErrParse)
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrParse)
	}

	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			continue
		}
		cells := make([]string, 0, dateColumn+1)
		for col := 0; col <= dateColumn; col++ {
			cells = append(cells, xlsCell(row, col))
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

// xlsCell reads one cell as text. Numeric cells go through the workbook's
// format table, and the reader panics on a built-in format it has no entry
// for; such a cell reads as empty so only its row is dropped.
func xlsCell(row *xls.Row, col int) (text string) {
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()
	return row.Col(col)
}

func parseRow(cells []string) (usage.Reading, bool) {
	if len(cells) <= dateColumn {
		return usage.Reading{}, false
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(cells[valueColumn]), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return usage.Reading{}, false
	}

	day, ok := parseDay(cells[dateColumn])
	if !ok {
		return usage.Reading{}, false
	}

	return usage.Reading{Timestamp: day.Unix(), Value: value}, true
}

// parseDay reads a date cell as UTC midnight of the day it names. Text dates
// are the norm; OOXML cells that kept a date number format come back as
// serials.
func parseDay(cell string) (time.Time, bool) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return time.Time{}, false
	}

	for _, layout := range dayLayouts {
		if t, err := time.ParseInLocation(layout, cell, time.UTC); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}

	serial, err := strconv.ParseFloat(cell, 64)
	if err != nil || serial < 1 {
		return time.Time{}, false
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
}
