package tabular

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() Table {
	return Table{
		Header: []string{"subject", "topic", "status"},
		Rows: [][]string{
			{"RLM", "Conjuntos", "Studying"},
			{"TI", "SQL, avançado", "Completed"},
		},
	}
}

func TestCSVRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleTable()))

	got, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, sampleTable(), got)
}

func TestReadCSVSkipsBlankRowsAndAcceptsShortRows(t *testing.T) {
	got, err := ReadCSV(strings.NewReader("subject,topic,status\n,,\nRLM,Conjuntos\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"subject", "topic", "status"}, got.Header)
	assert.Equal(t, [][]string{{"RLM", "Conjuntos"}}, got.Rows)
}

func TestReadCSVEmpty(t *testing.T) {
	got, err := ReadCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, got.Header)
	assert.Empty(t, got.Rows)
}

func TestXLSXRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleTable(), "Página1"))

	got, err := ReadXLSX(bytes.NewReader(buf.Bytes()), "Página1")
	require.NoError(t, err)
	assert.Equal(t, sampleTable(), got)

	// Ohne Blattnamen wird das erste Blatt gelesen
	got, err = ReadXLSX(bytes.NewReader(buf.Bytes()), "")
	require.NoError(t, err)
	assert.Equal(t, sampleTable(), got)
}

func TestReadXLSXUnknownSheet(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleTable(), "Página1"))

	_, err := ReadXLSX(&buf, "Página2")
	assert.Error(t, err)
}

func TestFormats(t *testing.T) {
	assert.Equal(t, FormatXLSX, FormatFromName("tracker.XLSX"))
	assert.Equal(t, FormatCSV, FormatFromName("tracker.csv"))
	assert.Equal(t, FormatCSV, FormatFromName("tracker"))

	f, err := ParseFormat("excel")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	_, err = ParseFormat("ods")
	assert.Error(t, err)

	assert.Contains(t, FormatCSV.ContentType(), "text/csv")
}
