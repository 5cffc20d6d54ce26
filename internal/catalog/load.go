package catalog

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"studytracker/internal/models"
	"studytracker/internal/tabular"
)

// Spaltennamen der Export- und Importdateien
const (
	ColSubject        = "subject"
	ColTopic          = "topic"
	ColStatus         = "status"
	ColCompleted      = "completed"
	ColReviewCount    = "review_count"
	ColCorrectAnswers = "correct_answers"
	ColTotalQuestions = "total_questions"
	ColAccuracyPct    = "accuracy_pct"
)

// Columns ist die Kopfzeile eines exportierten Katalogs ohne Zusatzspalten
var Columns = []string{
	ColSubject, ColTopic, ColStatus, ColCompleted,
	ColReviewCount, ColCorrectAnswers, ColTotalQuestions, ColAccuracyPct,
}

// columnAliases bildet normalisierte Spaltennamen auf die kanonischen Namen ab.
// Die portugiesischen Namen stammen aus den bestehenden Tabellenblättern.
var columnAliases = map[string]string{
	"subject":         ColSubject,
	"disciplina":      ColSubject,
	"materia":         ColSubject,
	"matéria":         ColSubject,
	"topic":           ColTopic,
	"tópico":          ColTopic,
	"topico":          ColTopic,
	"status":          ColStatus,
	"completed":       ColCompleted,
	"done":            ColCompleted,
	"concluido":       ColCompleted,
	"concluído":       ColCompleted,
	"review_count":    ColReviewCount,
	"reviews":         ColReviewCount,
	"revisões":        ColReviewCount,
	"revisoes":        ColReviewCount,
	"correct_answers": ColCorrectAnswers,
	"acertos":         ColCorrectAnswers,
	"total_questions": ColTotalQuestions,
	"questões totais": ColTotalQuestions,
	"questoes totais": ColTotalQuestions,
	"accuracy_pct":    ColAccuracyPct,
	"% acerto":        ColAccuracyPct,
}

// ErrImport ist der Sentinel für alle Importfehler
var ErrImport = errors.New("import failed")

// ImportError beschreibt, warum eine Tabelle nicht als Katalog gelesen werden konnte
type ImportError struct {
	Reason  string
	Missing []string
	Err     error
}

func (e *ImportError) Error() string {
	msg := "Import fehlgeschlagen: " + e.Reason
	if len(e.Missing) > 0 {
		msg += " (fehlende Spalten: " + strings.Join(e.Missing, ", ") + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

// Is implementiert errors.Is für ErrImport
func (e *ImportError) Is(target error) bool {
	return target == ErrImport
}

// NewImportError erstellt einen ImportError mit optionaler Ursache
func NewImportError(reason string, err error) *ImportError {
	return &ImportError{Reason: reason, Err: err}
}

// Load liest eine Tabelle in das Katalogschema. Fehlen die Spalten subject
// oder topic oder ist eine der beiden Zellen in einer Zeile leer, wird ein
// *ImportError zurückgegeben. Unlesbare Zahlen werden zu 0, das Abschluss-Flag
// akzeptiert "true"/"false" in beliebiger Schreibweise.
// Unbekannte Spalten werden unverändert durchgereicht, ebenso eine zweite
// Spalte, die auf einen schon belegten kanonischen Namen abbildet.
func Load(t tabular.Table) (Catalog, error) {
	if len(t.Header) == 0 {
		return Catalog{}, &ImportError{Reason: "Tabelle ist leer", Missing: []string{ColSubject, ColTopic}}
	}

	index := make(map[string]int)
	var extras []string
	extraIndex := make(map[string]int)
	for i, name := range t.Header {
		if canonical, ok := columnAliases[normalizeColumn(name)]; ok {
			if _, taken := index[canonical]; !taken {
				index[canonical] = i
				continue
			}
		}
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if name == "" {
			continue
		}
		if _, dup := extraIndex[name]; !dup {
			extraIndex[name] = i
			extras = append(extras, name)
		}
	}

	var missing []string
	for _, col := range []string{ColSubject, ColTopic} {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return Catalog{}, &ImportError{Reason: "Pflichtspalten fehlen", Missing: missing}
	}

	c := Catalog{
		Records:      make([]models.TopicRecord, 0, len(t.Rows)),
		ExtraColumns: extras,
	}
	for n, row := range t.Rows {
		cell := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		r := models.TopicRecord{
			Subject:        cell(ColSubject),
			Topic:          cell(ColTopic),
			ReviewCount:    parseCount(cell(ColReviewCount)),
			CorrectAnswers: parseCount(cell(ColCorrectAnswers)),
			TotalQuestions: parseCount(cell(ColTotalQuestions)),
		}
		for _, col := range []string{ColSubject, ColTopic} {
			if cell(col) == "" {
				return Catalog{}, &ImportError{Reason: fmt.Sprintf("Datenzeile %d: %s ist leer", n+1, col)}
			}
		}
		r.Status = resolveStatus(cell(ColStatus), cell(ColCompleted))

		if len(extras) > 0 {
			r.Extra = make(map[string]string, len(extras))
			for _, name := range extras {
				if i := extraIndex[name]; i < len(row) {
					r.Extra[name] = row[i]
				} else {
					r.Extra[name] = ""
				}
			}
		}
		r.Recompute()
		c.Records = append(c.Records, r)
	}
	return c, nil
}

// ToTable serialisiert den Katalog für Export und Tabellenblatt
func ToTable(c Catalog) tabular.Table {
	t := tabular.Table{
		Header: append(append([]string(nil), Columns...), c.ExtraColumns...),
		Rows:   make([][]string, 0, len(c.Records)),
	}
	for _, r := range c.Records {
		row := []string{
			r.Subject,
			r.Topic,
			string(r.Status),
			strconv.FormatBool(r.Completed()),
			strconv.Itoa(r.ReviewCount),
			strconv.Itoa(r.CorrectAnswers),
			strconv.Itoa(r.TotalQuestions),
			strconv.FormatFloat(models.Accuracy(r.CorrectAnswers, r.TotalQuestions), 'f', -1, 64),
		}
		for _, name := range c.ExtraColumns {
			row = append(row, r.Extra[name])
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// resolveStatus kombiniert Status- und Abschlussspalte.
// Die Abschlussspalte entscheidet über "abgeschlossen", die Statusspalte über die Zwischenstufen.
func resolveStatus(statusCell, completedCell string) models.Status {
	status, err := models.ParseStatus(statusCell)
	if err != nil {
		// Ein boolescher Wert in der Statusspalte ist ein Abschluss-Flag
		if done, ok := parseBool(statusCell); ok && done {
			status = models.StatusCompleted
		} else {
			status = models.StatusNotStarted
		}
	}
	if completedCell == "" {
		return status
	}
	done, _ := parseBool(completedCell)
	switch {
	case done:
		return models.StatusCompleted
	case status == models.StatusCompleted:
		return models.StatusNotStarted
	}
	return status
}

// parseBool akzeptiert true/false, 1/0, yes/no und sim/não ohne Beachtung der Schreibweise
func parseBool(s string) (value bool, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "1", "yes", "y", "sim", "x":
		return true, true
	case "false", "f", "0", "no", "n", "não", "nao":
		return false, true
	}
	return false, false
}

// parseCount liest eine nicht-negative Ganzzahl; alles andere wird 0
func parseCount(s string) int {
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0
		}
		return n
	}
	// Tabellenprogramme schreiben Zahlen gern als "3.0"
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f > math.MaxInt32 {
		return 0
	}
	return int(f)
}

func normalizeColumn(name string) string {
	name = strings.TrimPrefix(name, "\ufeff")
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// Describe gibt eine kurze Zusammenfassung für Logs zurück
func Describe(c Catalog) string {
	return fmt.Sprintf("%d Themen in %d Fächern", c.Len(), len(c.Subjects()))
}
