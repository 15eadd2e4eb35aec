// Package history persists completed measurement reports so past runs of the
// same page can be listed and compared. The measurement engine itself stays
// stateless; only final reports land here.
package history

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/tys-adventure/nsc-carbon-footprint-calculator/internal/logging"
	"github.com/tys-adventure/nsc-carbon-footprint-calculator/internal/model"
	"github.com/tys-adventure/nsc-carbon-footprint-calculator/internal/report"
)

//go:embed schema.sql
var schemaFS embed.FS

var ErrNotFound = errors.New("measurement not found")

// Config holds construction options for the Store.
type Config struct {
	// Path is the SQLite database file. Parent directories are created.
	Path string
}

// Entry is one persisted measurement report.
type Entry struct {
	ID            string    `json:"id"`
	URL           string    `json:"url"`
	Mode          string    `json:"mode"`
	Downgraded    bool      `json:"downgraded"`
	FirstBytes    int64     `json:"first_bytes"`
	ReturnBytes   int64     `json:"return_bytes"`
	FirstCO2      float64   `json:"first_co2_g"`
	ReturnCO2     float64   `json:"return_co2_g"`
	FirstGrade    string    `json:"first_grade"`
	ReturnGrade   string    `json:"return_grade"`
	AssetManifest string    `json:"asset_manifest,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Store keeps measurement reports in a SQLite database.
type Store struct {
	db     *sql.DB
	logger logging.Logger
}

// NewStore opens (or creates) the database at cfg.Path and applies the schema.
func NewStore(cfg Config, logger logging.Logger) (*Store, error) {
	if cfg.Path == "" {
		return nil, errors.New("history: empty database path")
	}
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply history schema: %w", err)
	}

	l := logging.OrDiscard(logger).With(logging.Field{Key: "component", Value: "history"})
	l.Info("history store opened", logging.Field{Key: "path", Value: cfg.Path})

	return &Store{db: db, logger: l}, nil
}

func applySchema(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read schema.sql: %w", err)
	}
	if _, err := db.Exec(string(schemaSQL)); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

// Save persists a report together with the first-visit asset manifest and
// returns the stored entry.
func (s *Store) Save(ctx context.Context, rep *report.Report, res *model.MeasurementResult) (*Entry, error) {
	if rep == nil {
		return nil, errors.New("history: nil report")
	}

	entry := &Entry{
		ID:            uuid.New().String(),
		URL:           rep.URL,
		Mode:          string(rep.Mode),
		Downgraded:    rep.Downgraded,
		FirstBytes:    rep.FirstVisit.Bytes,
		ReturnBytes:   rep.ReturnVisit.Bytes,
		FirstCO2:      rep.FirstVisit.CO2Grams,
		ReturnCO2:     rep.ReturnVisit.CO2Grams,
		FirstGrade:    rep.FirstVisit.Grade,
		ReturnGrade:   rep.ReturnVisit.Grade,
		AssetManifest: manifestOf(res),
		CreatedAt:     rep.GeneratedAt,
	}

	_, err := s.db.ExecContext(ctx, `INSERT INTO measurements
		(id, url, mode, downgraded, first_bytes, return_bytes, first_co2_g, return_co2_g, first_grade, return_grade, asset_manifest, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.URL, entry.Mode, boolToInt(entry.Downgraded),
		entry.FirstBytes, entry.ReturnBytes, entry.FirstCO2, entry.ReturnCO2,
		entry.FirstGrade, entry.ReturnGrade, entry.AssetManifest, entry.CreatedAt.Unix())
	if err != nil {
		return nil, fmt.Errorf("insert measurement: %w", err)
	}

	return entry, nil
}

// Get returns one entry by ID, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, url, mode, downgraded, first_bytes, return_bytes,
		first_co2_g, return_co2_g, first_grade, return_grade, asset_manifest, created_at
		FROM measurements WHERE id = ?`, id)
	return scanEntry(row)
}

// List returns the most recent entries, optionally filtered by exact URL.
func (s *Store) List(ctx context.Context, url string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT id, url, mode, downgraded, first_bytes, return_bytes,
		first_co2_g, return_co2_g, first_grade, return_grade, asset_manifest, created_at
		FROM measurements`
	args := []any{}
	if url != "" {
		query += ` WHERE url = ?`
		args = append(args, url)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list measurements: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*Entry, error) {
	var e Entry
	var downgraded int
	var createdAt int64
	err := row.Scan(&e.ID, &e.URL, &e.Mode, &downgraded, &e.FirstBytes, &e.ReturnBytes,
		&e.FirstCO2, &e.ReturnCO2, &e.FirstGrade, &e.ReturnGrade, &e.AssetManifest, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan measurement: %w", err)
	}
	e.Downgraded = downgraded != 0
	e.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &e, nil
}

// manifestOf renders the first-visit resource list as one URL per line, the
// shape the comparison diff works on.
func manifestOf(res *model.MeasurementResult) string {
	if res == nil {
		return ""
	}
	var b strings.Builder
	for _, r := range res.FirstVisit.Resources {
		b.WriteString(r.URL)
		b.WriteString("\n")
	}
	return b.String()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
