// Package logging richtet den zerolog-Logger des Servers ein.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New erstellt einen Logger für level (trace…error) und format (console, json oder auto).
// Bei "auto" wird auf einem Terminal lesbar, sonst als JSON geschrieben.
func New(out io.Writer, level, format string) zerolog.Logger {
	if out == nil {
		out = os.Stderr
	}

	var w io.Writer = out
	switch resolveFormat(out, format) {
	case "console":
		w = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.Kitchen,
			NoColor:    os.Getenv("NO_COLOR") != "",
		}
	}

	lvl := ParseLevel(level)
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// ParseLevel liest ein Log-Level; Unbekanntes ergibt Info
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "warning":
		return zerolog.WarnLevel
	case "off", "none":
		return zerolog.Disabled
	}
	l, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return l
}

func resolveFormat(out io.Writer, format string) string {
	format = strings.ToLower(format)
	if format != "auto" && format != "" {
		if format == "pretty" {
			return "console"
		}
		return format
	}
	if f, ok := out.(*os.File); ok {
		if info, err := f.Stat(); err == nil && info.Mode()&os.ModeCharDevice != 0 {
			return "console"
		}
	}
	return "json"
}
