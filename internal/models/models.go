package models

import (
	"fmt"
	"strings"
	"time"
)

// Status ist der Bearbeitungsstand eines Themas
type Status string

const (
	StatusNotStarted  Status = "Not Started"
	StatusStudying    Status = "Studying"
	StatusSummaryDone Status = "Summary Done"
	StatusCompleted   Status = "Completed"
)

// statusLabels bildet alle akzeptierten Schreibweisen (klein geschrieben) auf den Status ab.
// Die portugiesischen Bezeichnungen stammen aus den ursprünglichen Tabellen.
var statusLabels = map[string]Status{
	"not started":  StatusNotStarted,
	"not_started":  StatusNotStarted,
	"não iniciado": StatusNotStarted,
	"nao iniciado": StatusNotStarted,
	"studying":     StatusStudying,
	"em estudo":    StatusStudying,
	"summary done": StatusSummaryDone,
	"resumo feito": StatusSummaryDone,
	"completed":    StatusCompleted,
	"finalizado":   StatusCompleted,
}

// AllStatuses gibt alle gültigen Status in Anzeigereihenfolge zurück
func AllStatuses() []Status {
	return []Status{StatusNotStarted, StatusStudying, StatusSummaryDone, StatusCompleted}
}

// ParseStatus liest einen Status ohne Beachtung der Groß-/Kleinschreibung.
// Ein leerer Wert ergibt StatusNotStarted.
func ParseStatus(s string) (Status, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return StatusNotStarted, nil
	}
	if st, ok := statusLabels[key]; ok {
		return st, nil
	}
	return StatusNotStarted, fmt.Errorf("ungültiger Status: %q", s)
}

// Valid meldet, ob s einer der vier bekannten Status ist
func (s Status) Valid() bool {
	switch s {
	case StatusNotStarted, StatusStudying, StatusSummaryDone, StatusCompleted:
		return true
	}
	return false
}

// UnmarshalText normalisiert eingehende Werte über ParseStatus,
// damit JSON dieselben Bezeichnungen akzeptiert wie der Tabellenimport.
func (s *Status) UnmarshalText(b []byte) error {
	st, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = st
	return nil
}

func (s Status) IsCompleted() bool {
	return s == StatusCompleted
}

// TopicRecord ist eine Zeile des Katalogs: ein Thema innerhalb eines Fachs
type TopicRecord struct {
	Subject        string            `json:"subject"`
	Topic          string            `json:"topic"`
	Status         Status            `json:"status"`
	ReviewCount    int               `json:"review_count"`
	CorrectAnswers int               `json:"correct_answers"`
	TotalQuestions int               `json:"total_questions"`
	AccuracyPct    float64           `json:"accuracy_pct"`
	Extra          map[string]string `json:"extra,omitempty"`
}

// Completed ist das boolesche Abschluss-Flag des Themas
func (r TopicRecord) Completed() bool {
	return r.Status.IsCompleted()
}

// Recompute setzt alle abgeleiteten Felder neu
func (r *TopicRecord) Recompute() {
	r.AccuracyPct = Accuracy(r.CorrectAnswers, r.TotalQuestions)
}

// Accuracy berechnet die Trefferquote in Prozent; ohne Fragen ist sie 0
func Accuracy(correct, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(correct) / float64(total) * 100
}

// AllSubjects ist der Filterwert für "keine Einschränkung"
const AllSubjects = "ALL"

// Filter wählt entweder alle Zeilen oder die Zeilen eines Fachs
type Filter struct {
	Subject string
}

// allLabels sind die exakten Auswahlwerte für "alle Fächer".
// Andere Schreibweisen ("all", "Todas") sind gewöhnliche Fachnamen.
var allLabels = map[string]bool{"": true, AllSubjects: true, "TODAS": true}

// ParseFilter liest den Wert des Fach-Auswahlfelds. Leer, "ALL" und "TODAS" bedeuten alle Fächer.
func ParseFilter(s string) Filter {
	s = strings.TrimSpace(s)
	if allLabels[s] {
		return Filter{}
	}
	return Filter{Subject: s}
}

func (f Filter) IsAll() bool {
	return f.Subject == ""
}

// Matches prüft exakte Gleichheit auf dem Fach
func (f Filter) Matches(r TopicRecord) bool {
	return f.IsAll() || r.Subject == f.Subject
}

func (f Filter) String() string {
	if f.IsAll() {
		return AllSubjects
	}
	return f.Subject
}

// Summary enthält die Kennzahlen über eine Zeilenmenge
type Summary struct {
	TotalCount      int     `json:"total_count"`
	CompletionCount int     `json:"completion_count"`
	CompletionPct   float64 `json:"completion_pct"`
	StudyingCount   int     `json:"studying_count"`
	ReviewTotal     int     `json:"review_total"`
	CorrectTotal    int     `json:"correct_total"`
	QuestionTotal   int     `json:"question_total"`
	AccuracyPct     float64 `json:"accuracy_pct"`
}

// SubjectAggregate fasst ein Fach für die Diagramme zusammen
type SubjectAggregate struct {
	Subject         string  `json:"subject"`
	TopicCount      int     `json:"topic_count"`
	CompletionCount int     `json:"completion_count"`
	CompletionPct   float64 `json:"completion_pct"`
	ReviewTotal     int     `json:"review_total"`
}

// Dashboard ist die Antwort für die Übersicht
type Dashboard struct {
	Filter   string             `json:"filter"`
	Summary  Summary            `json:"summary"`
	Subjects []SubjectAggregate `json:"subjects"`
}

// Snapshot beschreibt eine gespeicherte Version des Katalogs
type Snapshot struct {
	ID       string    `json:"id" db:"id"`
	SavedAt  time.Time `json:"saved_at" db:"saved_at"`
	RowCount int       `json:"row_count" db:"row_count"`
}

// Syllabus ist der aus einem PDF gelesene Rohtext eines Lehrplans
type Syllabus struct {
	Name      string    `json:"name"`
	Content   string    `json:"content,omitempty"`
	PageCount int       `json:"page_count"`
	ParsedAt  time.Time `json:"parsed_at"`
}
