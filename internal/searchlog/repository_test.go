package searchlog

import (
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/hailam/chessmagic/internal/board"
	"github.com/hailam/chessmagic/internal/magic"
)

func openTemp(t *testing.T) *Repository {
	t.Helper()
	r, err := Open(filepath.Join(t.TempDir(), "searches.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func fakeStats(class magic.Class, trials int) *magic.Stats {
	st := &magic.Stats{Class: class, Bits: 9, Duration: 1500 * time.Millisecond}
	for sq := board.A1; sq <= board.H8; sq++ {
		st.Squares[sq] = magic.SquareStats{
			Square:       sq,
			Magic:        0x8000000000000001 | uint64(sq)<<8,
			Trials:       trials + int(sq),
			MaskBits:     6,
			Combinations: 64,
			Distinct:     20,
			Duration:     time.Millisecond,
		}
		st.Trials += trials + int(sq)
	}
	return st
}

func TestFromStats(t *testing.T) {
	cfg := magic.DefaultConfig()
	cfg.Seed = 1<<63 + 5
	run, squares := FromStats("abc", cfg, fakeStats(magic.Bishop, 10))

	if run.ID != "abc" || run.Class != "bishop" || run.Bits != 9 || run.DurationMS != 1500 {
		t.Errorf("run = %+v", run)
	}
	if seed, err := strconv.ParseUint(run.Seed, 10, 64); err != nil || seed != cfg.Seed {
		t.Errorf("seed %q does not round trip", run.Seed)
	}
	if len(squares) != 64 {
		t.Fatalf("%d squares, want 64", len(squares))
	}
	if squares[board.H8].Square != "h8" || !strings.HasPrefix(squares[0].Magic, "0x8000") {
		t.Errorf("square row = %+v", squares[board.H8])
	}
}

func TestInsertAndQuery(t *testing.T) {
	r := openTemp(t)
	cfg := magic.DefaultConfig()

	first, err := r.Record(cfg, fakeStats(magic.Rook, 100))
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	second, err := r.Record(cfg, fakeStats(magic.Rook, 300))
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if first == second {
		t.Fatal("run ids repeated")
	}
	if _, err := r.Record(cfg, fakeStats(magic.Bishop, 7)); err != nil {
		t.Fatal(err)
	}

	runs, err := r.Runs(2)
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("Runs(2) returned %d", len(runs))
	}

	squares, err := r.Squares(second)
	if err != nil {
		t.Fatalf("Squares: %v", err)
	}
	if len(squares) != 64 {
		t.Fatalf("Squares returned %d rows", len(squares))
	}
	if squares[0].Square != "h8" || squares[0].Trials != 363 {
		t.Errorf("hardest square = %+v, want h8 with 363 trials", squares[0])
	}

	summary, err := r.Summary()
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if len(summary) != 2 {
		t.Fatalf("Summary returned %d groups", len(summary))
	}
	for _, s := range summary {
		if s.Class == "rook" && s.Runs != 2 {
			t.Errorf("rook summary = %+v", s)
		}
	}
}

func TestInsertDuplicateRolledBack(t *testing.T) {
	r := openTemp(t)
	run, squares := FromStats("dup", magic.DefaultConfig(), fakeStats(magic.Rook, 1))
	if err := r.InsertRun(run, squares); err != nil {
		t.Fatal(err)
	}
	if err := r.InsertRun(run, squares); err == nil {
		t.Fatal("duplicate run accepted")
	}
	squaresBack, err := r.Squares("dup")
	if err != nil {
		t.Fatal(err)
	}
	if len(squaresBack) != 64 {
		t.Errorf("duplicate insert left %d squares", len(squaresBack))
	}
}
