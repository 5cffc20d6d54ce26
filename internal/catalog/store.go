package catalog

import (
	"studytracker/internal/models"
)

// Store hält den maßgeblichen Katalog einer Sitzung.
// Store ist nicht nebenläufig abgesichert; die Sitzung serialisiert alle Zugriffe.
type Store struct {
	seed    SeedMapping
	current Catalog
}

// NewStore erstellt einen Store, der aus seed aufgebaut ist
func NewStore(seed SeedMapping) *Store {
	s := &Store{seed: seed}
	s.Reset()
	return s
}

// Seed gibt den Lehrplan zurück, aus dem Reset den Katalog aufbaut
func (s *Store) Seed() SeedMapping {
	return s.seed
}

// SetSeed tauscht den Lehrplan aus, ohne den Katalog zu verändern
func (s *Store) SetSeed(seed SeedMapping) {
	s.seed = seed
}

// Replace tauscht den gehaltenen Katalog vollständig aus
func (s *Store) Replace(c Catalog) {
	c = c.Clone()
	c.Recompute()
	s.current = c
}

// Reset baut den Katalog neu aus dem Lehrplan auf
func (s *Store) Reset() {
	s.current = s.seed.Build()
}

// Snapshot gibt eine Kopie des aktuellen Katalogs zurück
func (s *Store) Snapshot() Catalog {
	return s.current.Clone()
}

// Query liefert die Zeilen für den Filter in Katalogreihenfolge
func (s *Store) Query(filter models.Filter) []models.TopicRecord {
	return s.current.Query(filter)
}

// Subjects gibt die Fächer des aktuellen Katalogs zurück
func (s *Store) Subjects() []string {
	return s.current.Subjects()
}

// Len ist die Zeilenzahl des aktuellen Katalogs
func (s *Store) Len() int {
	return s.current.Len()
}
