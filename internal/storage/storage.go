package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"studytracker/internal/catalog"
	"studytracker/internal/config"
	"studytracker/internal/models"
)

var (
	// ErrNoSnapshot meldet, dass das Backend keinen verwendbaren Katalog enthält
	ErrNoSnapshot = errors.New("no stored catalog")

	// ErrNoBackend meldet, dass keine Persistenz konfiguriert ist
	ErrNoBackend = errors.New("no persistence backend configured")
)

// Backend liest und schreibt den Katalog immer vollständig
type Backend interface {
	// Name identifiziert das Backend in Logs und Statusantworten
	Name() string

	// Load liest den gespeicherten Katalog; ErrNoSnapshot, wenn nichts Brauchbares vorliegt
	Load(ctx context.Context) (catalog.Catalog, error)

	// Save ersetzt den gespeicherten Katalog vollständig oder gar nicht
	Save(ctx context.Context, c catalog.Catalog) error

	Close() error
}

// History wird von Backends implementiert, die frühere Speicherstände protokollieren
type History interface {
	Snapshots(ctx context.Context, limit int) ([]models.Snapshot, error)
}

// Open erstellt das in cfg gewählte Backend
func Open(cfg *config.Config) (Backend, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "none":
		return NopBackend{}, nil
	case "sheet", "xlsx":
		return NewSheetBackend(cfg.WorkbookPath, cfg.Worksheet), nil
	case "sqlite":
		return NewSQLStore("sqlite", cfg.DatabasePath)
	case "postgres":
		return NewSQLStore("postgres", cfg.DatabaseDSN)
	}
	return nil, fmt.Errorf("unbekanntes Backend: %q", cfg.Backend)
}

// NopBackend speichert nichts; Daten verlassen die Sitzung nur über den Export
type NopBackend struct{}

func (NopBackend) Name() string { return "none" }

func (NopBackend) Load(context.Context) (catalog.Catalog, error) {
	return catalog.Catalog{}, ErrNoSnapshot
}

func (NopBackend) Save(context.Context, catalog.Catalog) error {
	return ErrNoBackend
}

func (NopBackend) Close() error { return nil }
