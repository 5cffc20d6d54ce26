package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"studytracker/internal/catalog"
	"studytracker/internal/tabular"
)

// DefaultWorksheet ist der Name des Tabellenblatts in bestehenden Arbeitsmappen
const DefaultWorksheet = "Página1"

// SheetBackend speichert den Katalog in einem benannten Blatt einer Excel-Arbeitsmappe
type SheetBackend struct {
	path  string
	sheet string
}

// NewSheetBackend erstellt ein Backend für die Arbeitsmappe unter path
func NewSheetBackend(path, sheet string) *SheetBackend {
	if sheet == "" {
		sheet = DefaultWorksheet
	}
	return &SheetBackend{path: path, sheet: sheet}
}

func (b *SheetBackend) Name() string { return "sheet" }

// Load liest das Blatt vollständig. Eine fehlende Datei oder ein leeres Blatt
// ergibt ErrNoSnapshot, fehlende Pflichtspalten einen *catalog.ImportError.
func (b *SheetBackend) Load(ctx context.Context) (catalog.Catalog, error) {
	if err := ctx.Err(); err != nil {
		return catalog.Catalog{}, err
	}
	if _, err := os.Stat(b.path); errors.Is(err, os.ErrNotExist) {
		return catalog.Catalog{}, ErrNoSnapshot
	}

	t, err := tabular.ReadXLSXFile(b.path, b.sheet)
	if err != nil {
		return catalog.Catalog{}, catalog.NewImportError("Arbeitsblatt nicht lesbar", err)
	}
	if len(t.Header) == 0 || len(t.Rows) == 0 {
		return catalog.Catalog{}, ErrNoSnapshot
	}
	return catalog.Load(t)
}

// Save schreibt die Arbeitsmappe in eine temporäre Datei und benennt sie danach um,
// damit nie eine halb geschriebene Mappe liegen bleibt
func (b *SheetBackend) Save(ctx context.Context, c catalog.Catalog) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := tabular.NewWorkbook(catalog.ToTable(c), b.sheet)
	if err != nil {
		return fmt.Errorf("Arbeitsmappe konnte nicht erstellt werden: %w", err)
	}
	defer f.Close()

	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("Verzeichnis konnte nicht erstellt werden: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".studytracker-*.xlsx")
	if err != nil {
		return fmt.Errorf("temporäre Datei konnte nicht erstellt werden: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := f.WriteTo(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("Arbeitsmappe konnte nicht geschrieben werden: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, b.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("Arbeitsmappe konnte nicht ersetzt werden: %w", err)
	}
	return nil
}

func (b *SheetBackend) Close() error { return nil }
