// Package session besitzt den Katalog einer laufenden Sitzung und führt jede
// Interaktion vollständig aus, bevor die nächste angenommen wird.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"studytracker/internal/catalog"
	"studytracker/internal/metrics"
	"studytracker/internal/models"
	"studytracker/internal/pdf"
	"studytracker/internal/reconcile"
	"studytracker/internal/storage"
	"studytracker/internal/tabular"
)

// Event wird nach jeder Änderung am Katalog veröffentlicht
type Event struct {
	Type     string         `json:"type"`
	Rows     int            `json:"rows"`
	Filter   string         `json:"filter,omitempty"`
	Overview models.Summary `json:"overview"`
	Message  string         `json:"message,omitempty"`
}

// Event-Typen
const (
	EventMerged   = "merged"
	EventImported = "imported"
	EventReset    = "reset"
	EventSaved    = "saved"
	EventSeeded   = "seeded"
)

// Publisher verteilt Events an verbundene Oberflächen
type Publisher interface {
	Publish(Event)
}

// SyllabusReader erkennt die Struktur Fach → Themen in einem hochgeladenen Lehrplan
type SyllabusReader interface {
	ReadSyllabus(r io.Reader, filename string) (*models.Syllabus, catalog.SeedMapping, error)
}

// Session hält Store, Backend und Publisher. Jede Methode hält die Sperre
// für die gesamte Interaktion, es gibt also genau einen Schreiber.
type Session struct {
	mu        sync.Mutex
	store     *catalog.Store
	backend   storage.Backend
	publisher Publisher
	syllabi   SyllabusReader
	log       zerolog.Logger
	warning   string
	sheet     string
}

// Option konfiguriert eine Session
type Option func(*Session)

// WithPublisher setzt den Empfänger für Änderungs-Events
func WithPublisher(p Publisher) Option {
	return func(s *Session) { s.publisher = p }
}

// WithLogger setzt den Logger
func WithLogger(l zerolog.Logger) Option {
	return func(s *Session) { s.log = l }
}

// WithExportSheet setzt den Blattnamen für den Excel-Export
func WithExportSheet(name string) Option {
	return func(s *Session) { s.sheet = name }
}

// WithSyllabusReader ersetzt den PDF-Parser für ImportSyllabus
func WithSyllabusReader(r SyllabusReader) Option {
	return func(s *Session) { s.syllabi = r }
}

// New erstellt eine Session mit frisch aufgebautem Katalog aus seed
func New(seed catalog.SeedMapping, backend storage.Backend, opts ...Option) *Session {
	if backend == nil {
		backend = storage.NopBackend{}
	}
	s := &Session{
		store:   catalog.NewStore(seed),
		backend: backend,
		syllabi: pdf.NewParser(),
		log:     zerolog.Nop(),
		sheet:   storage.DefaultWorksheet,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open lädt den gespeicherten Katalog aus dem Backend. Ist nichts gespeichert
// oder schlägt das Lesen fehl, bleibt der Lehrplan-Katalog stehen; ein Lesefehler
// wird als Warnung gemerkt und zurückgegeben, ist aber nie fatal.
func (s *Session) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.backend.Load(ctx)
	switch {
	case errors.Is(err, storage.ErrNoSnapshot):
		s.log.Info().Str("backend", s.backend.Name()).Msg("kein gespeicherter Katalog, verwende Lehrplan")
		return nil
	case err != nil:
		s.warning = fmt.Sprintf("Gespeicherter Katalog nicht lesbar, Lehrplan geladen: %v", err)
		s.log.Warn().Err(err).Str("backend", s.backend.Name()).Msg("Katalog konnte nicht geladen werden")
		return err
	}

	s.store.Replace(c)
	s.log.Info().Str("backend", s.backend.Name()).Msg("Katalog geladen: " + catalog.Describe(c))
	return nil
}

// BackendName gibt den Namen des Persistenz-Backends zurück
func (s *Session) BackendName() string {
	return s.backend.Name()
}

// Warning gibt die letzte sichtbare Warnung zurück (leer, wenn keine)
func (s *Session) Warning() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.warning
}

// Subjects liefert die Optionen des Fach-Auswahlfelds
func (s *Session) Subjects() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Subjects()
}

// Query liefert die Zeilen der gefilterten Ansicht
func (s *Session) Query(filter models.Filter) []models.TopicRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Query(filter)
}

// Catalog gibt eine Kopie des vollständigen Katalogs zurück
func (s *Session) Catalog() catalog.Catalog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Snapshot()
}

// Dashboard berechnet die Kennzahlen der gefilterten Ansicht
func (s *Session) Dashboard(filter models.Filter) models.Dashboard {
	s.mu.Lock()
	defer s.mu.Unlock()
	return metrics.Dashboard(filter, s.store.Query(models.Filter{}))
}

// ApplyEdits führt die Bearbeitung der gefilterten Ansicht in den Katalog zurück.
// Bei einem Fehler bleibt der gehaltene Katalog unverändert.
func (s *Session) ApplyEdits(filter models.Filter, edited []models.TopicRecord) ([]models.TopicRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged, err := reconcile.Merge(s.store.Snapshot(), filter, edited)
	if err != nil {
		s.log.Warn().Err(err).Str("filter", filter.String()).Int("rows", len(edited)).Msg("Bearbeitung abgelehnt")
		return nil, err
	}
	s.store.Replace(merged)
	s.log.Info().Str("op", EventMerged).Str("filter", filter.String()).Int("rows", len(edited)).Msg("Bearbeitung übernommen")
	s.publish(EventMerged, filter, "")
	return s.store.Query(filter), nil
}

// Import ersetzt den Katalog durch eine hochgeladene Tabelle (CSV oder XLSX).
// Schlägt das Lesen fehl, bleibt der bisherige Katalog erhalten.
func (s *Session) Import(filename string, r io.Reader) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		t   tabular.Table
		err error
	)
	switch tabular.FormatFromName(filename) {
	case tabular.FormatXLSX:
		t, err = tabular.ReadXLSX(r, "")
	default:
		t, err = tabular.ReadCSV(r)
	}
	if err != nil {
		err = catalog.NewImportError(filename, err)
		s.log.Warn().Err(err).Str("file", filename).Msg("Import fehlgeschlagen")
		return 0, err
	}

	c, err := catalog.Load(t)
	if err != nil {
		s.log.Warn().Err(err).Str("file", filename).Msg("Import fehlgeschlagen")
		return 0, err
	}
	s.store.Replace(c)
	s.warning = ""
	s.log.Info().Str("op", EventImported).Str("file", filename).Int("rows", c.Len()).Msg("Katalog importiert")
	s.publish(EventImported, models.Filter{}, filename)
	return c.Len(), nil
}

// ImportSyllabus baut den Katalog aus einem Lehrplan-PDF neu auf.
// Der erkannte Lehrplan ersetzt auch die Grundlage für spätere Resets.
func (s *Session) ImportSyllabus(filename string, r io.Reader) (catalog.SeedMapping, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, seed, err := s.syllabi.ReadSyllabus(r, filename)
	if err != nil {
		s.log.Warn().Err(err).Str("file", filename).Msg("Lehrplan nicht erkannt")
		return catalog.SeedMapping{}, catalog.NewImportError(filename, err)
	}

	s.store.SetSeed(seed)
	s.store.Reset()
	s.log.Info().Str("op", EventSeeded).Str("file", filename).Int("pages", doc.PageCount).
		Int("rows", s.store.Len()).Msg("Lehrplan übernommen")
	s.publish(EventSeeded, models.Filter{}, filename)
	return seed, nil
}

// Export schreibt den vollständigen Katalog im gewünschten Format
func (s *Session) Export(w io.Writer, format tabular.Format) error {
	s.mu.Lock()
	t := catalog.ToTable(s.store.Snapshot())
	s.mu.Unlock()

	if format == tabular.FormatXLSX {
		return tabular.WriteXLSX(w, t, s.sheet)
	}
	return tabular.WriteCSV(w, t)
}

// Save schreibt den Katalog vollständig ins Backend. Bei einem Fehler bleibt der
// Katalog im Speicher, damit nichts verloren geht.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.store.Snapshot()
	c.Recompute()
	if err := s.backend.Save(ctx, c); err != nil {
		s.log.Error().Err(err).Str("backend", s.backend.Name()).Msg("Speichern fehlgeschlagen")
		return fmt.Errorf("Speichern in %s fehlgeschlagen: %w", s.backend.Name(), err)
	}
	s.log.Info().Str("op", EventSaved).Str("backend", s.backend.Name()).Int("rows", c.Len()).Msg("Katalog gespeichert")
	s.publish(EventSaved, models.Filter{}, "")
	return nil
}

// Reset baut den Katalog neu aus dem Lehrplan auf
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.store.Reset()
	s.warning = ""
	s.log.Info().Str("op", EventReset).Int("rows", s.store.Len()).Msg("Katalog zurückgesetzt")
	s.publish(EventReset, models.Filter{}, "")
}

// Snapshots listet die Speicherstände, falls das Backend sie protokolliert
func (s *Session) Snapshots(ctx context.Context, limit int) ([]models.Snapshot, error) {
	h, ok := s.backend.(storage.History)
	if !ok {
		return []models.Snapshot{}, nil
	}
	return h.Snapshots(ctx, limit)
}

// Close schließt das Backend
func (s *Session) Close() error {
	return s.backend.Close()
}

// publish muss mit gehaltener Sperre aufgerufen werden
func (s *Session) publish(eventType string, filter models.Filter, message string) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(Event{
		Type:     eventType,
		Rows:     s.store.Len(),
		Filter:   filter.String(),
		Overview: metrics.Summarize(s.store.Query(models.Filter{})),
		Message:  message,
	})
}
