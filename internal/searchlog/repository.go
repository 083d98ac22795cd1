// Package searchlog records magic searches in a sqlite database.
package searchlog

import (
	"fmt"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	uuid "github.com/satori/go.uuid"

	_ "github.com/mattn/go-sqlite3" // repository assumes sqlite

	"github.com/hailam/chessmagic/internal/magic"
)

// Run is one table build.
type Run struct {
	ID         string    `db:"id"`
	Class      string    `db:"class"`
	Bits       int       `db:"bits"`
	Seed       string    `db:"seed"`
	Candidates string    `db:"candidates"`
	Workers    int       `db:"workers"`
	Trials     int64     `db:"trials"`
	DurationMS int64     `db:"duration_ms"`
	CreatedAt  time.Time `db:"created_at"`
}

// Square is the search result of one square within a run. Magic is stored
// as hex since sqlite integers are signed.
type Square struct {
	RunID        string `db:"run_id"`
	Square       string `db:"square"`
	Magic        string `db:"magic"`
	Trials       int64  `db:"trials"`
	MaskBits     int    `db:"mask_bits"`
	Combinations int    `db:"combinations"`
	Distinct     int    `db:"distinct_attacks"`
	DurationUS   int64  `db:"duration_us"`
}

// Summary aggregates runs by class and width.
type Summary struct {
	Class     string  `db:"class"`
	Bits      int     `db:"bits"`
	Runs      int     `db:"runs"`
	AvgTrials float64 `db:"avg_trials"`
	MaxTrials int64   `db:"max_trials"`
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewV4().String()
}

// FromStats converts build statistics into rows.
func FromStats(runID string, cfg magic.Config, st *magic.Stats) (*Run, []*Square) {
	run := &Run{
		ID:         runID,
		Class:      st.Class.String(),
		Bits:       int(st.Bits),
		Seed:       strconv.FormatUint(cfg.Seed, 10),
		Candidates: cfg.Candidates.String(),
		Workers:    cfg.Workers,
		Trials:     int64(st.Trials),
		DurationMS: st.Duration.Milliseconds(),
		CreatedAt:  time.Now().UTC(),
	}
	squares := make([]*Square, 0, len(st.Squares))
	for _, s := range st.Squares {
		squares = append(squares, &Square{
			RunID:        runID,
			Square:       s.Square.String(),
			Magic:        fmt.Sprintf("%#016x", s.Magic),
			Trials:       int64(s.Trials),
			MaskBits:     s.MaskBits,
			Combinations: s.Combinations,
			Distinct:     s.Distinct,
			DurationUS:   s.Duration.Microseconds(),
		})
	}
	return run, squares
}

// Repository is a search log backed by a sqlite file.
type Repository struct {
	db *sqlx.DB
}

// Open opens or creates the log at path.
func Open(path string) (*Repository, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	for _, s := range []struct{ name, stmt string }{
		{"runs", createRunTable},
		{"squares", createSquareTable},
		{"class_summary", createClassSummary},
	} {
		if _, err := db.Exec(s.stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("create %s: %w", s.name, err)
		}
	}
	return &Repository{db: db}, nil
}

// InsertRun stores a run and its squares in one transaction.
func (r *Repository) InsertRun(run *Run, squares []*Square) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.NamedExec(insertRun, run); err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}
	for _, sq := range squares {
		if _, err := tx.NamedExec(insertSquare, sq); err != nil {
			return fmt.Errorf("insert square %s/%s: %w", run.ID, sq.Square, err)
		}
	}
	return tx.Commit()
}

// Record stores the statistics of a build under a fresh run id and returns
// the id.
func (r *Repository) Record(cfg magic.Config, st *magic.Stats) (string, error) {
	id := NewRunID()
	run, squares := FromStats(id, cfg, st)
	return id, r.InsertRun(run, squares)
}

// Runs returns the most recent runs, newest first.
func (r *Repository) Runs(limit int) ([]Run, error) {
	var runs []Run
	if err := r.db.Select(&runs, selectRuns, limit); err != nil {
		return nil, err
	}
	return runs, nil
}

// Squares returns the squares of a run, hardest first.
func (r *Repository) Squares(runID string) ([]Square, error) {
	var squares []Square
	if err := r.db.Select(&squares, selectSquares, runID); err != nil {
		return nil, err
	}
	return squares, nil
}

// Summary returns per class and width aggregates over all runs.
func (r *Repository) Summary() ([]Summary, error) {
	var out []Summary
	if err := r.db.Select(&out, selectSummary); err != nil {
		return nil, err
	}
	return out, nil
}

// Close closes the database.
func (r *Repository) Close() error {
	return r.db.Close()
}
