package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"studytracker/internal/catalog"
	"studytracker/internal/models"
)

// SQLStore speichert den Katalog in einer SQL-Datenbank (SQLite oder PostgreSQL).
// Jede Speicherung ersetzt alle Zeilen in einer Transaktion und protokolliert einen Snapshot.
type SQLStore struct {
	db *sqlx.DB
}

// recordRow ist eine Zeile der Tabelle topic_records
type recordRow struct {
	Position       int            `db:"position"`
	Subject        string         `db:"subject"`
	Topic          string         `db:"topic"`
	Status         string         `db:"status"`
	ReviewCount    int            `db:"review_count"`
	CorrectAnswers int            `db:"correct_answers"`
	TotalQuestions int            `db:"total_questions"`
	AccuracyPct    float64        `db:"accuracy_pct"`
	Extra          sql.NullString `db:"extra"`
}

// NewSQLStore öffnet die Datenbank und legt das Schema an.
// driver ist "sqlite" (source = Dateipfad) oder "postgres" (source = DSN).
func NewSQLStore(driver, source string) (*SQLStore, error) {
	if driver == "sqlite" && source != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(source), 0755); err != nil {
			return nil, fmt.Errorf("Datenverzeichnis konnte nicht erstellt werden: %w", err)
		}
	}

	db, err := sqlx.Connect(driver, source)
	if err != nil {
		return nil, fmt.Errorf("Datenbankverbindung fehlgeschlagen: %w", err)
	}
	if driver == "sqlite" {
		db.SetMaxOpenConns(1) // SQLite erlaubt nur einen Schreiber
	}

	store := &SQLStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLStore) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS topic_records (
			position INTEGER PRIMARY KEY,
			subject TEXT NOT NULL,
			topic TEXT NOT NULL,
			status TEXT NOT NULL,
			review_count INTEGER NOT NULL DEFAULT 0,
			correct_answers INTEGER NOT NULL DEFAULT 0,
			total_questions INTEGER NOT NULL DEFAULT 0,
			accuracy_pct DOUBLE PRECISION NOT NULL DEFAULT 0,
			extra TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS catalog_snapshots (
			id TEXT PRIMARY KEY,
			saved_at TIMESTAMP NOT NULL,
			row_count INTEGER NOT NULL,
			extra_columns TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_saved ON catalog_snapshots(saved_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("Schema konnte nicht angelegt werden: %w", err)
		}
	}
	return nil
}

func (s *SQLStore) Name() string {
	return s.db.DriverName()
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Load liest alle Zeilen in gespeicherter Reihenfolge
func (s *SQLStore) Load(ctx context.Context) (catalog.Catalog, error) {
	var rows []recordRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT position, subject, topic, status, review_count, correct_answers,
		       total_questions, accuracy_pct, extra
		FROM topic_records ORDER BY position
	`)
	if err != nil {
		return catalog.Catalog{}, fmt.Errorf("Katalog konnte nicht geladen werden: %w", err)
	}
	if len(rows) == 0 {
		return catalog.Catalog{}, ErrNoSnapshot
	}

	extras, err := s.latestExtraColumns(ctx)
	if err != nil {
		return catalog.Catalog{}, err
	}

	c := catalog.Catalog{
		Records:      make([]models.TopicRecord, 0, len(rows)),
		ExtraColumns: extras,
	}
	for _, row := range rows {
		status, err := models.ParseStatus(row.Status)
		if err != nil {
			return catalog.Catalog{}, catalog.NewImportError(fmt.Sprintf("Zeile %d", row.Position), err)
		}
		r := models.TopicRecord{
			Subject:        row.Subject,
			Topic:          row.Topic,
			Status:         status,
			ReviewCount:    row.ReviewCount,
			CorrectAnswers: row.CorrectAnswers,
			TotalQuestions: row.TotalQuestions,
		}
		if row.Extra.Valid && row.Extra.String != "" {
			if err := json.Unmarshal([]byte(row.Extra.String), &r.Extra); err != nil {
				return catalog.Catalog{}, catalog.NewImportError(fmt.Sprintf("Zusatzspalten in Zeile %d", row.Position), err)
			}
		}
		r.Recompute()
		c.Records = append(c.Records, r)
	}
	return c, nil
}

func (s *SQLStore) latestExtraColumns(ctx context.Context) ([]string, error) {
	var raw sql.NullString
	err := s.db.GetContext(ctx, &raw, `
		SELECT extra_columns FROM catalog_snapshots ORDER BY saved_at DESC LIMIT 1
	`)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && (!raw.Valid || raw.String == "")) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Snapshot konnte nicht gelesen werden: %w", err)
	}
	var cols []string
	if err := json.Unmarshal([]byte(raw.String), &cols); err != nil {
		return nil, fmt.Errorf("Zusatzspalten sind beschädigt: %w", err)
	}
	return cols, nil
}

// Save ersetzt alle Zeilen in einer Transaktion
func (s *SQLStore) Save(ctx context.Context, c catalog.Catalog) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("Transaktion konnte nicht gestartet werden: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM topic_records`); err != nil {
		return fmt.Errorf("alte Zeilen konnten nicht gelöscht werden: %w", err)
	}

	insert := tx.Rebind(`
		INSERT INTO topic_records (position, subject, topic, status, review_count,
			correct_answers, total_questions, accuracy_pct, extra)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	for i, r := range c.Records {
		var extra sql.NullString
		if len(r.Extra) > 0 {
			data, err := json.Marshal(r.Extra)
			if err != nil {
				return err
			}
			extra = sql.NullString{String: string(data), Valid: true}
		}
		_, err := tx.ExecContext(ctx, insert,
			i, r.Subject, r.Topic, string(r.Status), r.ReviewCount,
			r.CorrectAnswers, r.TotalQuestions, models.Accuracy(r.CorrectAnswers, r.TotalQuestions), extra)
		if err != nil {
			return fmt.Errorf("Zeile %d konnte nicht gespeichert werden: %w", i+1, err)
		}
	}

	var extraCols sql.NullString
	if len(c.ExtraColumns) > 0 {
		data, _ := json.Marshal(c.ExtraColumns)
		extraCols = sql.NullString{String: string(data), Valid: true}
	}
	_, err = tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO catalog_snapshots (id, saved_at, row_count, extra_columns) VALUES (?, ?, ?, ?)
	`), uuid.NewString(), time.Now().UTC(), c.Len(), extraCols)
	if err != nil {
		return fmt.Errorf("Snapshot konnte nicht protokolliert werden: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("Transaktion konnte nicht abgeschlossen werden: %w", err)
	}
	return nil
}

// Snapshots listet die letzten Speicherstände, neueste zuerst
func (s *SQLStore) Snapshots(ctx context.Context, limit int) ([]models.Snapshot, error) {
	if limit <= 0 {
		limit = 20
	}
	snapshots := []models.Snapshot{}
	err := s.db.SelectContext(ctx, &snapshots, s.db.Rebind(`
		SELECT id, saved_at, row_count FROM catalog_snapshots ORDER BY saved_at DESC LIMIT ?
	`), limit)
	if err != nil {
		return nil, fmt.Errorf("Snapshots konnten nicht gelesen werden: %w", err)
	}
	return snapshots, nil
}
