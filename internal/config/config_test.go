package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir wechselt für die Dauer des Tests ins Verzeichnis dir
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(old) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load(viper.New(), "config.json")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFileAndEnv(t *testing.T) {
	chdir(t, t.TempDir())
	require.NoError(t, os.WriteFile("config.yaml", []byte(`
server_port: "9090"
backend: sheet
workbook_path: dados/progresso.xlsx
log_level: debug
`), 0644))
	t.Setenv("STUDYTRACKER_SERVER_PORT", "7070")
	t.Setenv("STUDYTRACKER_WORKSHEET", "Planilha")

	cfg, err := Load(viper.New(), "config.yaml")
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.ServerPort)
	assert.Equal(t, "sheet", cfg.Backend)
	assert.Equal(t, "dados/progresso.xlsx", cfg.WorkbookPath)
	assert.Equal(t, "Planilha", cfg.Worksheet)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "data/tracker.db", cfg.DatabasePath)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("STUDYTRACKER_BACKEND=sqlite\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("STUDYTRACKER_BACKEND") })

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Backend)
}

func TestLoadInvalidFile(t *testing.T) {
	chdir(t, t.TempDir())
	require.NoError(t, os.WriteFile("config.json", []byte("{kaputt"), 0644))

	_, err := Load(viper.New(), "config.json")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"Standard", func(c *Config) {}, false},
		{"sheet ohne Pfad", func(c *Config) { c.Backend = "sheet"; c.WorkbookPath = "" }, true},
		{"sqlite ohne Pfad", func(c *Config) { c.Backend = "sqlite"; c.DatabasePath = "" }, true},
		{"postgres ohne DSN", func(c *Config) { c.Backend = "postgres" }, true},
		{"postgres mit DSN", func(c *Config) { c.Backend = "postgres"; c.DatabaseDSN = "postgres://localhost/tracker" }, false},
		{"unbekanntes Backend", func(c *Config) { c.Backend = "mongo" }, true},
		{"leerer Port", func(c *Config) { c.ServerPort = "" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
