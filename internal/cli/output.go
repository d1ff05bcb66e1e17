package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/user/atmos-energy/internal/usage"
	"github.com/xuri/excelize/v2"
)

const timestampLayout = "2006-01-02T15:04:05"

var csvHeader = []string{"timestamp", "value"}

func PrintJSON(w io.Writer, data interface{}) error {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal data to JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func PrintTable(w io.Writer, readings []usage.Reading) error {
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.ASCIIBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			return cellStyle
		}).
		Headers("TIMESTAMP", "VALUE")

	for _, r := range readings {
		t.Row(formatTimestamp(r.Timestamp), formatValue(r.Value))
	}

	_, err := fmt.Fprintf(w, "%s\n%d readings\n", t, len(readings))
	return err
}

// WriteOutput picks the file format from the extension of path.
func WriteOutput(path string, readings []usage.Reading) error {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return WriteXLSX(path, readings)
	}
	return WriteCSV(path, readings)
}

// WriteCSV writes readings with a timestamp,value header, creating parent
// directories as needed.
func WriteCSV(path string, readings []usage.Reading) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range readings {
		if err := writer.Write([]string{formatTimestamp(r.Timestamp), formatValue(r.Value)}); err != nil {
			return err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	return file.Close()
}

func WriteXLSX(path string, readings []usage.Reading) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "usage"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return err
	}

	header := []interface{}{"Timestamp", "Value"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, r := range readings {
		line := []interface{}{formatTimestamp(r.Timestamp), r.Value}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &line); err != nil {
			return err
		}
	}

	return f.SaveAs(path)
}

func formatTimestamp(ts int64) string {
	return time.Unix(ts, 0).Local().Format(timestampLayout)
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
