package pdf

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const syllabusText = `
CONHECIMENTOS ESPECÍFICOS
DIREITO TRIBUTÁRIO:
1. Sistema Tributário Nacional.
2. Competência tributária;
3. Limitações constitucionais ao poder
de tributar.
RLM
1) Lógica proposicional
2) Conjuntos
Contabilidade Geral:
- Escrituração
• Balanço Patrimonial
`

func TestOutline(t *testing.T) {
	m, err := NewParser().Outline(syllabusText)
	require.NoError(t, err)
	require.Len(t, m.Subjects, 3)

	assert.Equal(t, "Direito Tributário", m.Subjects[0].Name)
	assert.Equal(t, []string{
		"Sistema Tributário Nacional",
		"Competência tributária",
		"Limitações constitucionais ao poder de tributar.",
	}, m.Subjects[0].Topics)

	assert.Equal(t, "RLM", m.Subjects[1].Name)
	assert.Equal(t, []string{"Lógica proposicional", "Conjuntos"}, m.Subjects[1].Topics)

	assert.Equal(t, "Contabilidade Geral", m.Subjects[2].Name)
	assert.Equal(t, []string{"Escrituração", "Balanço Patrimonial"}, m.Subjects[2].Topics)

	assert.Equal(t, 7, m.TopicCount())
}

func TestOutlineWithoutStructure(t *testing.T) {
	_, err := NewParser().Outline("Edital de abertura\nnada a listar aqui\n")
	assert.Error(t, err)
}

func TestParseFromReaderRejectsNonPDF(t *testing.T) {
	_, err := NewParser().ParseFromReader(strings.NewReader("kein pdf"), "edital.pdf")
	assert.Error(t, err)
}

func TestReadSyllabusRejectsNonPDF(t *testing.T) {
	doc, _, err := NewParser().ReadSyllabus(strings.NewReader("kein pdf"), "edital.pdf")
	assert.Error(t, err)
	assert.Nil(t, doc)
}

func TestSeedFromFile(t *testing.T) {
	dir := t.TempDir()
	p := NewParser()

	yamlPath := filepath.Join(dir, "lehrplan.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("subjects:\n  - name: RLM\n    topics: [Conjuntos, Lógica]\n"), 0644))
	m, err := p.SeedFromFile(yamlPath)
	require.NoError(t, err)
	require.Len(t, m.Subjects, 1)
	assert.Equal(t, []string{"Conjuntos", "Lógica"}, m.Subjects[0].Topics)

	// Dateien mit Endung .pdf gehen über ParseFile
	fakePDF := filepath.Join(dir, "edital.PDF")
	require.NoError(t, os.WriteFile(fakePDF, []byte("subjects:\n  - name: RLM\n    topics: [Conjuntos]\n"), 0644))
	_, err = p.SeedFromFile(fakePDF)
	assert.Error(t, err)

	_, err = p.SeedFromFile(filepath.Join(dir, "fehlt.pdf"))
	assert.Error(t, err)
}

func TestListItem(t *testing.T) {
	tests := []struct {
		line string
		want string
		ok   bool
	}{
		{"1. Conjuntos", "Conjuntos", true},
		{"1.2 Probabilidade;", "Probabilidade", true},
		{"3) SQL", "SQL", true},
		{"- Big Data", "Big Data", true},
		{"Texto corrido", "", false},
		{"2020", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, ok := listItem(tt.line)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
