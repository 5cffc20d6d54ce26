package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"studytracker/internal/models"
)

//go:embed seed.yaml
var defaultSeedYAML []byte

const defaultLessonLabel = "Lesson"

// SeedSubject ist ein Fach des Lehrplans. Entweder Topics oder Lessons ist gesetzt;
// Lessons erzeugt nummerierte Themen ("Lesson 00" bis "Lesson NN").
type SeedSubject struct {
	Name    string   `yaml:"name" json:"name"`
	Topics  []string `yaml:"topics,omitempty" json:"topics,omitempty"`
	Lessons int      `yaml:"lessons,omitempty" json:"lessons,omitempty"`
}

// SeedMapping ist die feste Struktur Fach → Themen, aus der der Katalog entsteht
type SeedMapping struct {
	LessonLabel string        `yaml:"lesson_label,omitempty" json:"lesson_label,omitempty"`
	Subjects    []SeedSubject `yaml:"subjects" json:"subjects"`
}

// DefaultSeed gibt den eingebetteten Lehrplan zurück
func DefaultSeed() SeedMapping {
	m, err := ParseSeed(defaultSeedYAML)
	if err != nil {
		panic(fmt.Sprintf("eingebetteter Lehrplan ist ungültig: %v", err))
	}
	return m
}

// LoadSeedFile liest einen Lehrplan aus einer YAML-Datei
func LoadSeedFile(path string) (SeedMapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SeedMapping{}, fmt.Errorf("Lehrplan konnte nicht gelesen werden: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed dekodiert und prüft einen Lehrplan im YAML-Format
func ParseSeed(data []byte) (SeedMapping, error) {
	var m SeedMapping
	if err := yaml.Unmarshal(data, &m); err != nil {
		return SeedMapping{}, fmt.Errorf("Lehrplan ist kein gültiges YAML: %w", err)
	}
	if err := m.Validate(); err != nil {
		return SeedMapping{}, err
	}
	return m, nil
}

// Validate prüft, dass jedes Fach einen Namen und genau eine Themenquelle hat
func (m SeedMapping) Validate() error {
	if len(m.Subjects) == 0 {
		return fmt.Errorf("Lehrplan enthält keine Fächer")
	}
	for i, s := range m.Subjects {
		if strings.TrimSpace(s.Name) == "" {
			return fmt.Errorf("Fach %d hat keinen Namen", i+1)
		}
		if len(s.Topics) > 0 && s.Lessons > 0 {
			return fmt.Errorf("Fach %q: topics und lessons schließen sich aus", s.Name)
		}
		if s.Lessons < 0 {
			return fmt.Errorf("Fach %q: negative Anzahl lessons", s.Name)
		}
		for j, topic := range s.Topics {
			if strings.TrimSpace(topic) == "" {
				return fmt.Errorf("Fach %q: Thema %d ist leer", s.Name, j+1)
			}
		}
	}
	return nil
}

// TopicCount ist die Summe der Themen aller Fächer
func (m SeedMapping) TopicCount() int {
	n := 0
	for _, s := range m.Subjects {
		n += len(s.topicLabels(m.label()))
	}
	return n
}

// Build erzeugt den Katalog. Jede Zeile beginnt mit null Wiederholungen und
// Status "Not Started"; gleiche Eingabe ergibt immer dieselbe Zeilenfolge.
func (m SeedMapping) Build() Catalog {
	label := m.label()
	records := make([]models.TopicRecord, 0, m.TopicCount())
	for _, s := range m.Subjects {
		for _, topic := range s.topicLabels(label) {
			records = append(records, models.TopicRecord{
				Subject: s.Name,
				Topic:   topic,
				Status:  models.StatusNotStarted,
			})
		}
	}
	return Catalog{Records: records}
}

// Seed baut den Katalog aus dem eingebetteten Lehrplan
func Seed() Catalog {
	return DefaultSeed().Build()
}

func (m SeedMapping) label() string {
	if strings.TrimSpace(m.LessonLabel) == "" {
		return defaultLessonLabel
	}
	return m.LessonLabel
}

func (s SeedSubject) topicLabels(label string) []string {
	if s.Lessons == 0 {
		return s.Topics
	}
	labels := make([]string, s.Lessons)
	for i := range labels {
		labels[i] = fmt.Sprintf("%s %02d", label, i)
	}
	return labels
}
