// Package reconcile führt Bearbeitungen einer gefilterten Ansicht in den vollständigen Katalog zurück.
package reconcile

import (
	"errors"
	"fmt"

	"studytracker/internal/catalog"
	"studytracker/internal/models"
)

var (
	// ErrRowCountMismatch meldet, dass die Bearbeitung Zeilen hinzugefügt oder entfernt hat
	ErrRowCountMismatch = errors.New("row count mismatch")

	// ErrMalformedEdit meldet eine strukturell ungültige bearbeitete Zeile
	ErrMalformedEdit = errors.New("malformed edit")
)

// Merge faltet edited in full zurück.
//
// Ohne Filter ist edited der neue Katalog in seiner Reihenfolge. Mit Fach-Filter
// besteht das Ergebnis aus allen Zeilen anderer Fächer (Reihenfolge und Werte
// unverändert), gefolgt von edited. Die Zeilen des bearbeiteten Fachs wandern
// dadurch ans Ende des Katalogs.
//
// In beiden Fällen muss edited genau so viele Zeilen haben wie die Ansicht vor
// der Bearbeitung. Anschließend werden die abgeleiteten Felder aller Zeilen neu
// berechnet. Bei einem Fehler bleibt full unverändert und wird zurückgegeben.
func Merge(full catalog.Catalog, filter models.Filter, edited []models.TopicRecord) (catalog.Catalog, error) {
	if want := full.Count(filter); len(edited) != want {
		return full, fmt.Errorf("%w: filter %s erwartet %d Zeilen, erhalten %d",
			ErrRowCountMismatch, filter, want, len(edited))
	}
	for i, r := range edited {
		if err := checkRecord(r); err != nil {
			return full, fmt.Errorf("%w: Zeile %d: %v", ErrMalformedEdit, i+1, err)
		}
	}

	merged := catalog.Catalog{
		Records: make([]models.TopicRecord, 0, full.Len()),
	}
	if full.ExtraColumns != nil {
		merged.ExtraColumns = append([]string(nil), full.ExtraColumns...)
	}

	if !filter.IsAll() {
		for _, r := range full.Records {
			if r.Subject != filter.Subject {
				merged.Records = append(merged.Records, r)
			}
		}
	}
	merged.Records = append(merged.Records, edited...)

	// full kann ohne abgeleitete Felder aufgebaut worden sein
	merged = merged.Clone()
	merged.Recompute()
	return merged, nil
}

func checkRecord(r models.TopicRecord) error {
	switch {
	case r.Subject == "":
		return errors.New("subject fehlt")
	case r.Topic == "":
		return errors.New("topic fehlt")
	case !r.Status.Valid():
		return fmt.Errorf("unbekannter Status %q", r.Status)
	}
	return nil
}
