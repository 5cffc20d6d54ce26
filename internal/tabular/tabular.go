// Package tabular liest und schreibt Tabellen als CSV oder Excel-Arbeitsmappe.
package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Table ist eine Tabelle aus Kopfzeile und Datenzeilen
type Table struct {
	Header []string
	Rows   [][]string
}

// Format bezeichnet ein unterstütztes Dateiformat
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FormatFromName leitet das Format aus der Dateiendung ab; unbekannte Endungen gelten als CSV
func FormatFromName(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX
	default:
		return FormatCSV
	}
}

// ParseFormat liest den Formatnamen aus einem Query-Parameter
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unbekanntes Format: %q", s)
}

// ContentType gibt den MIME-Typ für Downloads zurück
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// ReadCSV liest eine CSV-Datei; die erste Zeile ist die Kopfzeile
func ReadCSV(r io.Reader) (Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Zeilen dürfen kürzer sein als die Kopfzeile
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("CSV konnte nicht gelesen werden: %w", err)
	}
	return fromRecords(records), nil
}

// WriteCSV schreibt die Tabelle als CSV mit Kopfzeile
func WriteCSV(w io.Writer, t Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Header); err != nil {
		return err
	}
	if err := writer.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("CSV konnte nicht geschrieben werden: %w", err)
	}
	return nil
}

// ReadXLSX liest ein Arbeitsblatt aus einer Excel-Arbeitsmappe.
// Ist sheet leer, wird das erste Blatt verwendet.
func ReadXLSX(r io.Reader, sheet string) (Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Table{}, fmt.Errorf("Arbeitsmappe konnte nicht geöffnet werden: %w", err)
	}
	defer f.Close()
	return readSheet(f, sheet)
}

// ReadXLSXFile liest ein Arbeitsblatt aus einer Datei auf der Platte
func ReadXLSXFile(path, sheet string) (Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return Table{}, fmt.Errorf("Arbeitsmappe konnte nicht geöffnet werden: %w", err)
	}
	defer f.Close()
	return readSheet(f, sheet)
}

func readSheet(f *excelize.File, sheet string) (Table, error) {
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return Table{}, fmt.Errorf("Arbeitsblatt %q nicht gefunden", sheet)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return Table{}, fmt.Errorf("Zeilen konnten nicht gelesen werden: %w", err)
	}
	return fromRecords(rows), nil
}

// NewWorkbook baut eine Arbeitsmappe mit genau einem Blatt, das die Tabelle enthält
func NewWorkbook(t Table, sheet string) (*excelize.File, error) {
	if sheet == "" {
		sheet = "Sheet1"
	}
	f := excelize.NewFile()
	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			f.Close()
			return nil, err
		}
	}

	all := append([][]string{t.Header}, t.Rows...)
	for i, row := range all {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			f.Close()
			return nil, err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			f.Close()
			return nil, fmt.Errorf("Zeile %d konnte nicht geschrieben werden: %w", i+1, err)
		}
	}
	return f, nil
}

// WriteXLSX schreibt die Tabelle als Arbeitsmappe in w
func WriteXLSX(w io.Writer, t Table, sheet string) error {
	f, err := NewWorkbook(t, sheet)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteTo(w)
	return err
}

func fromRecords(records [][]string) Table {
	if len(records) == 0 {
		return Table{}
	}
	t := Table{Header: records[0]}
	for _, row := range records[1:] {
		if isBlank(row) {
			continue
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
