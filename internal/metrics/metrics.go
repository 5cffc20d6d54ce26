// Package metrics berechnet die Kennzahlen der Übersicht. Alle Werte werden bei
// jedem Lesen neu aus den Zeilen berechnet und nirgends gespeichert.
package metrics

import (
	"studytracker/internal/models"
)

// Summarize berechnet Fortschritt, Wiederholungen und Trefferquote über records
func Summarize(records []models.TopicRecord) models.Summary {
	var s models.Summary
	s.TotalCount = len(records)
	for _, r := range records {
		if r.Completed() {
			s.CompletionCount++
		}
		if r.Status == models.StatusStudying {
			s.StudyingCount++
		}
		s.ReviewTotal += r.ReviewCount
		s.CorrectTotal += r.CorrectAnswers
		s.QuestionTotal += r.TotalQuestions
	}
	s.CompletionPct = CompletionPct(s.CompletionCount, s.TotalCount)
	s.AccuracyPct = models.Accuracy(s.CorrectTotal, s.QuestionTotal)
	return s
}

// CompletionPct ist completed/total*100, bei total == 0 ist das Ergebnis 0
func CompletionPct(completed, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(completed) / float64(total) * 100
}

// BySubject gruppiert nach Fach in der Reihenfolge des ersten Auftretens
func BySubject(records []models.TopicRecord) []models.SubjectAggregate {
	index := make(map[string]int)
	var out []models.SubjectAggregate
	for _, r := range records {
		i, ok := index[r.Subject]
		if !ok {
			i = len(out)
			index[r.Subject] = i
			out = append(out, models.SubjectAggregate{Subject: r.Subject})
		}
		agg := &out[i]
		agg.TopicCount++
		agg.ReviewTotal += r.ReviewCount
		if r.Completed() {
			agg.CompletionCount++
		}
	}
	for i := range out {
		out[i].CompletionPct = CompletionPct(out[i].CompletionCount, out[i].TopicCount)
	}
	return out
}

// Dashboard baut die Übersicht für eine gefilterte Ansicht
func Dashboard(filter models.Filter, records []models.TopicRecord) models.Dashboard {
	view := make([]models.TopicRecord, 0, len(records))
	for _, r := range records {
		if filter.Matches(r) {
			view = append(view, r)
		}
	}
	return models.Dashboard{
		Filter:   filter.String(),
		Summary:  Summarize(view),
		Subjects: BySubject(view),
	}
}
