package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/hailam/chessmagic/internal/attacks"
	"github.com/hailam/chessmagic/internal/board"
	"github.com/hailam/chessmagic/internal/magic"
	"github.com/hailam/chessmagic/internal/searchlog"
)

var (
	attacksOnce sync.Once
	shared      *attacks.Attacks
	sharedErr   error
)

func newAttacks(t *testing.T) *attacks.Attacks {
	t.Helper()
	attacksOnce.Do(func() {
		shared, sharedErr = attacks.New(context.Background(), magic.DefaultConfig())
	})
	if sharedErr != nil {
		t.Fatalf("attacks.New: %v", sharedErr)
	}
	return shared
}

type fakeRuns struct {
	runs []searchlog.Run
	err  error
}

func (f *fakeRuns) Runs(limit int) ([]searchlog.Run, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.runs) {
		return f.runs[:limit], nil
	}
	return f.runs, nil
}

func get(t *testing.T, h http.Handler, url string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", url, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAttacks(t *testing.T) {
	a := newAttacks(t)
	h := New(a).Handler()

	rec := get(t, h, "/attacks/rook/a1?occupied=b3,c3,d4")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	var out AttacksResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	want := a.Rook(board.A1, board.SquaresBB(board.B3, board.C3, board.D4))
	if out.Attacks != want.Hex() || len(out.Squares) != 14 {
		t.Errorf("rook a1 = %+v, want %s", out, want.Hex())
	}
}

func TestAttacksVisible(t *testing.T) {
	a := newAttacks(t)
	h := New(a).Handler()

	friends := board.SquaresBB(board.A1, board.B3)
	rec := get(t, h, "/attacks/queen/A1?friends="+friends.Hex()+"&enemies=c3,d4")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}
	var out AttacksResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	want := a.Visible(attacks.Queen, board.A1, friends, board.SquaresBB(board.C3, board.D4))
	if out.Attacks != want.Hex() {
		t.Errorf("queen a1 = %s, want %s", out.Attacks, want.Hex())
	}
	if !strings.Contains(strings.Join(out.Squares, ","), "c3") {
		t.Errorf("enemy c3 missing from %v", out.Squares)
	}
	if out.Friends != friends.Hex() {
		t.Errorf("friends echoed as %s", out.Friends)
	}
}

func TestAttacksErrors(t *testing.T) {
	h := New(newAttacks(t)).Handler()
	tests := []struct {
		url  string
		code int
	}{
		{"/attacks/knight/a1", http.StatusNotFound},
		{"/attacks/rook/i9", http.StatusBadRequest},
		{"/attacks/rook/a1?occupied=0xnothex", http.StatusBadRequest},
		{"/attacks/rook/a1?friends=z1", http.StatusBadRequest},
		{"/magics/queen", http.StatusNotFound},
		{"/nowhere", http.StatusNotFound},
	}
	for _, tc := range tests {
		if rec := get(t, h, tc.url); rec.Code != tc.code {
			t.Errorf("GET %s = %d, want %d", tc.url, rec.Code, tc.code)
		}
	}
}

func TestMagics(t *testing.T) {
	a := newAttacks(t)
	h := New(a).Handler()

	rec := get(t, h, "/magics/bishop")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var out MagicsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.Class != "bishop" || out.Bits != 10 || len(out.Magics) != 64 {
		t.Errorf("magics = %+v", out)
	}
	first, err := board.ParseBitboard(out.Magics[0])
	if err != nil || uint64(first) != a.Table(magic.Bishop).Magics()[0] {
		t.Errorf("magic a1 = %s, %v", out.Magics[0], err)
	}
}

func TestRuns(t *testing.T) {
	a := newAttacks(t)

	if rec := get(t, New(a).Handler(), "/runs"); rec.Code != http.StatusNotFound {
		t.Errorf("runs without a log = %d, want 404", rec.Code)
	}

	runs := &fakeRuns{runs: []searchlog.Run{{ID: "a"}, {ID: "b"}, {ID: "c"}}}
	h := New(a, WithRuns(runs)).Handler()
	rec := get(t, h, "/runs?limit=2")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var out []searchlog.Run
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 || out[0].ID != "a" {
		t.Errorf("runs = %+v", out)
	}

	if rec := get(t, h, "/runs?limit=-1"); rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit = %d", rec.Code)
	}
	runs.err = errors.New("disk on fire")
	if rec := get(t, h, "/runs"); rec.Code != http.StatusInternalServerError {
		t.Errorf("failing log = %d", rec.Code)
	}
}

func TestAccessLogAndCORS(t *testing.T) {
	var logBuf bytes.Buffer
	h := New(newAttacks(t), WithAccessLog(&logBuf)).Handler()

	req := httptest.NewRequest("GET", "/healthz", nil)
	req.Header.Set("Origin", "http://example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || rec.Body.String() != "ok\n" {
		t.Errorf("healthz = %d %q", rec.Code, rec.Body)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got == "" {
		t.Error("CORS header missing")
	}
	if !strings.Contains(logBuf.String(), "GET /healthz") {
		t.Errorf("access log = %q", logBuf.String())
	}
}
