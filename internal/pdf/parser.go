package pdf

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/ledongthuc/pdf"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"studytracker/internal/catalog"
	"studytracker/internal/models"
)

// Parser extrahiert den Text eines Lehrplans (Edital) aus PDF-Dokumenten
type Parser struct {
	titleCase cases.Caser
}

// NewParser erstellt einen neuen PDF-Parser
func NewParser() *Parser {
	return &Parser{titleCase: cases.Title(language.BrazilianPortuguese)}
}

// ParseFile parst eine einzelne PDF-Datei
func (p *Parser) ParseFile(filePath string) (*models.Syllabus, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("fehler beim Öffnen der PDF: %w", err)
	}
	defer f.Close()

	return &models.Syllabus{
		Name:      filepath.Base(filePath),
		Content:   extractText(r),
		PageCount: r.NumPage(),
		ParsedAt:  time.Now(),
	}, nil
}

// ParseFromReader parst PDF aus einem io.Reader (für Uploads)
func (p *Parser) ParseFromReader(reader io.Reader, filename string) (*models.Syllabus, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("fehler beim Lesen der PDF: %w", err)
	}

	return &models.Syllabus{
		Name:      filename,
		Content:   extractText(r),
		PageCount: r.NumPage(),
		ParsedAt:  time.Now(),
	}, nil
}

// ReadSyllabus parst ein hochgeladenes Lehrplan-PDF und erkennt dessen Struktur
func (p *Parser) ReadSyllabus(reader io.Reader, filename string) (*models.Syllabus, catalog.SeedMapping, error) {
	doc, err := p.ParseFromReader(reader, filename)
	if err != nil {
		return nil, catalog.SeedMapping{}, err
	}
	seed, err := p.Outline(doc.Content)
	if err != nil {
		return doc, catalog.SeedMapping{}, err
	}
	return doc, seed, nil
}

// SeedFromFile lädt den Lehrplan für den Start. PDF-Dateien werden über
// Outline gelesen, alles andere als YAML-Lehrplan.
func (p *Parser) SeedFromFile(path string) (catalog.SeedMapping, error) {
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return catalog.LoadSeedFile(path)
	}
	doc, err := p.ParseFile(path)
	if err != nil {
		return catalog.SeedMapping{}, err
	}
	return p.Outline(doc.Content)
}

func extractText(r *pdf.Reader) string {
	var content strings.Builder
	for pageNum := 1; pageNum <= r.NumPage(); pageNum++ {
		page := r.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		content.WriteString(text)
		content.WriteString("\n")
	}
	return content.String()
}

// Outline baut aus dem Text eines Lehrplans die Struktur Fach → Themen.
//
// Überschriften sind Zeilen in Großbuchstaben oder Zeilen, die mit ":" enden.
// Themen sind nummerierte Punkte ("1.", "1.2", "3)") oder Aufzählungen ("-", "•")
// unter einer Überschrift; andere Zeilen setzen das vorherige Thema fort.
func (p *Parser) Outline(content string) (catalog.SeedMapping, error) {
	var m catalog.SeedMapping
	var current *catalog.SeedSubject

	flush := func() {
		if current != nil && len(current.Topics) > 0 {
			m.Subjects = append(m.Subjects, *current)
		}
		current = nil
	}

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if topic, ok := listItem(trimmed); ok {
			if current != nil && topic != "" {
				current.Topics = append(current.Topics, topic)
			}
			continue
		}

		if isHeading(trimmed) {
			flush()
			current = &catalog.SeedSubject{Name: p.subjectName(trimmed)}
			continue
		}

		// Fortsetzung eines umbrochenen Themas
		if current != nil && len(current.Topics) > 0 {
			last := len(current.Topics) - 1
			current.Topics[last] += " " + trimmed
		}
	}
	flush()

	if err := m.Validate(); err != nil {
		return catalog.SeedMapping{}, fmt.Errorf("kein Lehrplan erkannt: %w", err)
	}
	return m, nil
}

// subjectName normalisiert eine Überschrift; kurze Abkürzungen wie "RLM" bleiben erhalten
func (p *Parser) subjectName(heading string) string {
	heading = strings.TrimSpace(strings.TrimSuffix(heading, ":"))
	if len([]rune(heading)) <= 4 && !strings.Contains(heading, " ") {
		return heading
	}
	if isUpper(heading) {
		return p.titleCase.String(strings.ToLower(heading))
	}
	return heading
}

func isHeading(line string) bool {
	if strings.HasSuffix(line, ":") && len(line) > 1 && len(line) < 80 {
		return true
	}
	return len(line) < 80 && len(line) > 1 && isUpper(line)
}

// isUpper meldet, ob line Buchstaben enthält und alle davon groß sind
func isUpper(line string) bool {
	letters := 0
	for _, r := range line {
		if unicode.IsLetter(r) {
			letters++
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return letters > 0
}

// listItem erkennt Muster wie "1.", "1.1", "2)", "-" oder "•" am Zeilenanfang
// und gibt den Text dahinter zurück
func listItem(line string) (string, bool) {
	for _, bullet := range []string{"- ", "• ", "* ", "– "} {
		if strings.HasPrefix(line, bullet) {
			return strings.TrimSpace(line[len(bullet):]), true
		}
	}

	digits := 0
	for i, r := range line {
		switch {
		case r >= '0' && r <= '9':
			digits++
			continue
		case digits > 0 && (r == '.' || r == ')'):
			continue
		case digits > 0 && r == ' ' && i > 0:
			return cleanTopic(line[i:]), true
		}
		break
	}
	return "", false
}

func cleanTopic(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, ";")
	s = strings.TrimSuffix(s, ".")
	return strings.TrimSpace(s)
}
