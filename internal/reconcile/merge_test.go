package reconcile

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studytracker/internal/catalog"
	"studytracker/internal/models"
	"studytracker/internal/tabular"
)

func TestMergeAllIsIdentity(t *testing.T) {
	full := catalog.Seed()

	merged, err := Merge(full, models.Filter{}, full.Query(models.Filter{}))
	require.NoError(t, err)
	if diff := cmp.Diff(full, merged); diff != "" {
		t.Errorf("Merge(ALL, unverändert) (-want +got):\n%s", diff)
	}
}

func TestMergeAcceptsEveryImportedCatalog(t *testing.T) {
	table, err := tabular.ReadCSV(strings.NewReader("subject,topic,status\nTI,SQL,Studying\nRLM,Conjuntos,\nTI,Big Data,Finalizado\n"))
	require.NoError(t, err)
	full, err := catalog.Load(table)
	require.NoError(t, err)

	merged, err := Merge(full, models.Filter{}, full.Query(models.Filter{}))
	require.NoError(t, err)
	assert.Equal(t, full, merged)

	ti := models.ParseFilter("TI")
	merged, err = Merge(full, ti, full.Query(ti))
	require.NoError(t, err)
	assert.Equal(t, []string{"RLM", "TI"}, merged.Subjects())

	// Zeilen, die Merge ablehnen würde, kommen gar nicht erst in den Katalog
	table, err = tabular.ReadCSV(strings.NewReader("subject,topic,status\nTI,SQL,Studying\n,Orphan,Studying\nTI,,Completed\n"))
	require.NoError(t, err)
	_, err = catalog.Load(table)
	require.ErrorIs(t, err, catalog.ErrImport)
}

func TestMergeAllTakesEditedOrder(t *testing.T) {
	full := catalog.Seed()
	edited := full.Query(models.Filter{})
	edited[0], edited[1] = edited[1], edited[0]
	edited[0].Status = models.StatusStudying

	merged, err := Merge(full, models.Filter{}, edited)
	require.NoError(t, err)
	assert.Equal(t, "Competência Tributária", merged.Records[0].Topic)
	assert.Equal(t, models.StatusStudying, merged.Records[0].Status)
	assert.Equal(t, "Sistema Tributário Nacional", merged.Records[1].Topic)
}

func TestMergeSubjectRelocatesToEnd(t *testing.T) {
	full := catalog.Seed()
	filter := models.ParseFilter("RLM")

	edited := full.Query(filter)
	require.Len(t, edited, 8)
	edited[2].Status = models.StatusCompleted
	edited[2].ReviewCount = 4

	merged, err := Merge(full, filter, edited)
	require.NoError(t, err)
	require.Equal(t, full.Len(), merged.Len())

	// Die anderen Fächer behalten Reihenfolge und Werte
	var others []models.TopicRecord
	for _, r := range full.Records {
		if r.Subject != "RLM" {
			others = append(others, r)
		}
	}
	if diff := cmp.Diff(others, merged.Records[:48]); diff != "" {
		t.Errorf("andere Fächer verändert (-want +got):\n%s", diff)
	}

	tail := merged.Records[48:]
	for _, r := range tail {
		assert.Equal(t, "RLM", r.Subject)
	}
	assert.Equal(t, "Equivalências", tail[2].Topic)
	assert.True(t, tail[2].Completed())
	assert.Equal(t, 4, tail[2].ReviewCount)

	assert.Equal(t, "TI", merged.Subjects()[5])
	assert.Equal(t, "RLM", merged.Subjects()[6])
}

func TestMergeRowCountMismatch(t *testing.T) {
	full := catalog.Seed()
	before := full.Clone()

	tests := []struct {
		name   string
		filter models.Filter
		edited []models.TopicRecord
	}{
		{"ALL mit Zeile weniger", models.Filter{}, full.Query(models.Filter{})[1:]},
		{"Fach mit Zeile mehr", models.ParseFilter("TI"), append(full.Query(models.ParseFilter("TI")),
			models.TopicRecord{Subject: "TI", Topic: "Redes", Status: models.StatusNotStarted})},
		{"unbekanntes Fach", models.ParseFilter("Física"), full.Query(models.ParseFilter("TI"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged, err := Merge(full, tt.filter, tt.edited)
			require.ErrorIs(t, err, ErrRowCountMismatch)
			if diff := cmp.Diff(before, merged); diff != "" {
				t.Errorf("Katalog verändert (-want +got):\n%s", diff)
			}
		})
	}
	if diff := cmp.Diff(before, full); diff != "" {
		t.Errorf("Eingabe verändert (-want +got):\n%s", diff)
	}
}

func TestMergeMalformedEdit(t *testing.T) {
	full := catalog.Seed()
	filter := models.ParseFilter("Direito Civil")

	tests := map[string]func(r *models.TopicRecord){
		"ohne subject":       func(r *models.TopicRecord) { r.Subject = "" },
		"ohne topic":         func(r *models.TopicRecord) { r.Topic = "" },
		"unbekannter Status": func(r *models.TopicRecord) { r.Status = "Done" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			edited := full.Query(filter)
			mutate(&edited[0])

			merged, err := Merge(full, filter, edited)
			require.ErrorIs(t, err, ErrMalformedEdit)
			assert.Equal(t, full.Len(), merged.Len())
			assert.Equal(t, "Direito Tributário", merged.Records[0].Subject)
		})
	}
}

func TestMergeRecomputesEveryRow(t *testing.T) {
	full := catalog.Seed()
	// Eine veraltete Quote in einem nicht bearbeiteten Fach
	full.Records[0].CorrectAnswers = 1
	full.Records[0].TotalQuestions = 4
	full.Records[0].AccuracyPct = 99

	filter := models.ParseFilter("TI")
	edited := full.Query(filter)
	edited[0].CorrectAnswers = 7
	edited[0].TotalQuestions = 10
	edited[0].AccuracyPct = 0

	merged, err := Merge(full, filter, edited)
	require.NoError(t, err)

	for _, r := range merged.Records {
		assert.Equal(t, models.Accuracy(r.CorrectAnswers, r.TotalQuestions), r.AccuracyPct, r.Topic)
	}
	assert.InDelta(t, 25.0, merged.Records[0].AccuracyPct, 1e-9)
	assert.InDelta(t, 70.0, merged.Records[48].AccuracyPct, 1e-9)
}

func TestMergeDoesNotAliasInput(t *testing.T) {
	full := catalog.Seed()
	edited := full.Query(models.Filter{})

	merged, err := Merge(full, models.Filter{}, edited)
	require.NoError(t, err)

	edited[0].Topic = "verändert"
	assert.Equal(t, "Sistema Tributário Nacional", merged.Records[0].Topic)
}
