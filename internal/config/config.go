package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix ist das Präfix der Umgebungsvariablen, z.B. STUDYTRACKER_BACKEND
const EnvPrefix = "STUDYTRACKER"

// Config enthält alle Konfigurationseinstellungen
type Config struct {
	// Server-Einstellungen
	ServerPort string `mapstructure:"server_port" json:"server_port"`
	StaticDir  string `mapstructure:"static_dir" json:"static_dir"`

	// Persistenz: none, sheet, sqlite oder postgres
	Backend      string `mapstructure:"backend" json:"backend"`
	WorkbookPath string `mapstructure:"workbook_path" json:"workbook_path"`
	Worksheet    string `mapstructure:"worksheet" json:"worksheet"`
	DatabasePath string `mapstructure:"database_path" json:"database_path"`
	DatabaseDSN  string `mapstructure:"database_dsn" json:"-"`

	// Lehrplan als YAML oder PDF; leer bedeutet der eingebettete Standard
	SeedPath string `mapstructure:"seed_path" json:"seed_path"`

	// Logging
	LogLevel  string `mapstructure:"log_level" json:"log_level"`
	LogFormat string `mapstructure:"log_format" json:"log_format"`
}

// Default gibt die Standardkonfiguration zurück
func Default() *Config {
	return &Config{
		ServerPort:   "8080",
		StaticDir:    "./web/static",
		Backend:      "none",
		WorkbookPath: "data/tracker.xlsx",
		Worksheet:    "Página1",
		DatabasePath: "data/tracker.db",
		LogLevel:     "info",
		LogFormat:    "auto",
	}
}

// SetDefaults trägt die Standardwerte in v ein, damit Umgebungsvariablen alle Schlüssel kennen
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("server_port", d.ServerPort)
	v.SetDefault("static_dir", d.StaticDir)
	v.SetDefault("backend", d.Backend)
	v.SetDefault("workbook_path", d.WorkbookPath)
	v.SetDefault("worksheet", d.Worksheet)
	v.SetDefault("database_path", d.DatabasePath)
	v.SetDefault("database_dsn", d.DatabaseDSN)
	v.SetDefault("seed_path", d.SeedPath)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
}

// Load lädt die Konfiguration: Standardwerte, dann die Datei unter path (JSON oder YAML,
// optional), dann .env und Umgebungsvariablen mit Präfix STUDYTRACKER_.
func Load(v *viper.Viper, path string) (*Config, error) {
	_ = godotenv.Load() // .env ist optional

	if v == nil {
		v = viper.New()
	}
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !isMissingFile(err) {
				return nil, fmt.Errorf("Konfiguration %s konnte nicht gelesen werden: %w", path, err)
			}
		}
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("Konfiguration ist ungültig: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate prüft die Kombination aus Backend und Pfaden
func (c *Config) Validate() error {
	switch strings.ToLower(c.Backend) {
	case "", "none":
	case "sheet", "xlsx":
		if c.WorkbookPath == "" {
			return errors.New("backend sheet benötigt workbook_path")
		}
	case "sqlite":
		if c.DatabasePath == "" {
			return errors.New("backend sqlite benötigt database_path")
		}
	case "postgres":
		if c.DatabaseDSN == "" {
			return errors.New("backend postgres benötigt database_dsn")
		}
	default:
		return fmt.Errorf("unbekanntes Backend: %q", c.Backend)
	}
	if c.ServerPort == "" {
		return errors.New("server_port darf nicht leer sein")
	}
	return nil
}

func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
