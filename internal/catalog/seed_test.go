package catalog

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studytracker/internal/models"
)

func TestSeed(t *testing.T) {
	c := Seed()

	require.Equal(t, 56, c.Len())
	assert.Equal(t, []string{
		"Direito Tributário",
		"Direito Constitucional",
		"Direito Administrativo",
		"RLM",
		"Direito Civil",
		"Contabilidade Geral",
		"TI",
	}, c.Subjects())

	for _, r := range c.Records {
		assert.Equal(t, models.StatusNotStarted, r.Status)
		assert.False(t, r.Completed())
		assert.Zero(t, r.ReviewCount)
		assert.Zero(t, r.CorrectAnswers)
		assert.Zero(t, r.TotalQuestions)
		assert.Zero(t, r.AccuracyPct)
	}

	assert.Equal(t, "Sistema Tributário Nacional", c.Records[0].Topic)
	assert.Equal(t, "Python/R Análise", c.Records[55].Topic)
}

func TestSeedIsDeterministic(t *testing.T) {
	if diff := cmp.Diff(Seed(), Seed()); diff != "" {
		t.Fatalf("Seed() unterscheidet sich zwischen Aufrufen (-erster +zweiter):\n%s", diff)
	}
}

func TestParseSeedLessons(t *testing.T) {
	m, err := ParseSeed([]byte(`
lesson_label: Aula
subjects:
  - name: Direito Civil
    lessons: 3
  - name: TI
    topics: [SQL, Big Data]
`))
	require.NoError(t, err)
	assert.Equal(t, 5, m.TopicCount())

	c := m.Build()
	topics := make([]string, 0, c.Len())
	for _, r := range c.Records {
		topics = append(topics, r.Topic)
	}
	assert.Equal(t, []string{"Aula 00", "Aula 01", "Aula 02", "SQL", "Big Data"}, topics)
}

func TestParseSeedDefaultLessonLabel(t *testing.T) {
	m, err := ParseSeed([]byte("subjects:\n  - name: RLM\n    lessons: 2\n"))
	require.NoError(t, err)
	c := m.Build()
	require.Equal(t, 2, c.Len())
	assert.Equal(t, "Lesson 01", c.Records[1].Topic)
}

func TestParseSeedInvalid(t *testing.T) {
	tests := map[string]string{
		"keine Fächer":     "subjects: []\n",
		"ohne Namen":       "subjects:\n  - topics: [A]\n",
		"beides gesetzt":   "subjects:\n  - name: X\n    topics: [A]\n    lessons: 2\n",
		"negative lessons": "subjects:\n  - name: X\n    lessons: -1\n",
		"leeres Thema":     "subjects:\n  - name: X\n    topics: [A, \"  \"]\n",
		"kein YAML":        "subjects: [",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseSeed([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestStoreReplaceAndReset(t *testing.T) {
	s := NewStore(DefaultSeed())
	require.Equal(t, 56, s.Len())

	s.Replace(Catalog{Records: []models.TopicRecord{
		{Subject: "RLM", Topic: "Conjuntos", Status: models.StatusStudying, CorrectAnswers: 7, TotalQuestions: 10},
	}})
	require.Equal(t, 1, s.Len())
	assert.InDelta(t, 70.0, s.Query(models.Filter{})[0].AccuracyPct, 1e-9)

	// Snapshot ist eine Kopie
	snap := s.Snapshot()
	snap.Records[0].Topic = "verändert"
	assert.Equal(t, "Conjuntos", s.Query(models.Filter{})[0].Topic)

	s.Reset()
	assert.Equal(t, 56, s.Len())
	assert.Len(t, s.Query(models.ParseFilter("TI")), 8)
}
