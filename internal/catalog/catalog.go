// Package catalog hält den Themenkatalog einer Sitzung: Aufbau aus dem Lehrplan,
// Import aus Tabellen und Abfragen nach Fach.
package catalog

import (
	"studytracker/internal/models"
)

// Catalog ist die geordnete Menge aller Themen einer Sitzung.
// ExtraColumns hält die Namen zusätzlicher Importspalten in Dateireihenfolge.
type Catalog struct {
	Records      []models.TopicRecord `json:"records"`
	ExtraColumns []string             `json:"extra_columns,omitempty"`
}

// Len gibt die Anzahl der Zeilen zurück
func (c Catalog) Len() int {
	return len(c.Records)
}

// Clone erstellt eine tiefe Kopie, damit Aufrufer den gehaltenen Katalog nicht verändern
func (c Catalog) Clone() Catalog {
	out := Catalog{
		Records: make([]models.TopicRecord, len(c.Records)),
	}
	if c.ExtraColumns != nil {
		out.ExtraColumns = append([]string(nil), c.ExtraColumns...)
	}
	for i, r := range c.Records {
		out.Records[i] = cloneRecord(r)
	}
	return out
}

// Query liefert alle Zeilen oder die Zeilen eines Fachs in Katalogreihenfolge
func (c Catalog) Query(filter models.Filter) []models.TopicRecord {
	out := make([]models.TopicRecord, 0, len(c.Records))
	for _, r := range c.Records {
		if filter.Matches(r) {
			out = append(out, cloneRecord(r))
		}
	}
	return out
}

// Count zählt die Zeilen, die der Filter auswählt
func (c Catalog) Count(filter models.Filter) int {
	n := 0
	for _, r := range c.Records {
		if filter.Matches(r) {
			n++
		}
	}
	return n
}

// Subjects gibt die Fächer in der Reihenfolge ihres ersten Auftretens zurück
func (c Catalog) Subjects() []string {
	seen := make(map[string]bool)
	var subjects []string
	for _, r := range c.Records {
		if !seen[r.Subject] {
			seen[r.Subject] = true
			subjects = append(subjects, r.Subject)
		}
	}
	return subjects
}

// Recompute setzt die abgeleiteten Felder aller Zeilen neu
func (c Catalog) Recompute() {
	for i := range c.Records {
		c.Records[i].Recompute()
	}
}

func cloneRecord(r models.TopicRecord) models.TopicRecord {
	if r.Extra != nil {
		extra := make(map[string]string, len(r.Extra))
		for k, v := range r.Extra {
			extra[k] = v
		}
		r.Extra = extra
	}
	return r
}
