// Package server exposes attack queries over HTTP.
package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-logr/logr"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/hailam/chessmagic/internal/attacks"
	"github.com/hailam/chessmagic/internal/board"
	"github.com/hailam/chessmagic/internal/magic"
	"github.com/hailam/chessmagic/internal/searchlog"
)

// RunLister lists recorded searches.
type RunLister interface {
	Runs(limit int) ([]searchlog.Run, error)
}

// Server answers attack queries from a shared, read-only Attacks value.
type Server struct {
	attacks   *attacks.Attacks
	runs      RunLister
	log       logr.Logger
	accessLog io.Writer
	router    *mux.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the error logger.
func WithLogger(log logr.Logger) Option {
	return func(s *Server) { s.log = log }
}

// WithAccessLog writes an Apache style access log to w.
func WithAccessLog(w io.Writer) Option {
	return func(s *Server) { s.accessLog = w }
}

// WithRuns enables GET /runs.
func WithRuns(runs RunLister) Option {
	return func(s *Server) { s.runs = runs }
}

// New returns a server over a.
func New(a *attacks.Attacks, opts ...Option) *Server {
	s := &Server{attacks: a, log: logr.Discard()}
	for _, opt := range opts {
		opt(s)
	}

	router := mux.NewRouter()
	router.Handle("/attacks/{piece}/{square}", s.attacksHandler()).Methods("GET")
	router.Handle("/magics/{class}", s.magicsHandler()).Methods("GET")
	if s.runs != nil {
		router.Handle("/runs", s.runsHandler()).Methods("GET")
	}
	router.Handle("/healthz", s.healthHandler()).Methods("GET")
	s.router = router
	return s
}

// Handler returns the routed handler wrapped with CORS and, if configured,
// access logging.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.router
	if s.accessLog != nil {
		h = handlers.LoggingHandler(s.accessLog, h)
	}
	return handlers.CORS(
		handlers.AllowedHeaders([]string{"X-Requested-With", "Content-Type"}),
		handlers.AllowedMethods([]string{"GET", "HEAD", "OPTIONS"}),
		handlers.AllowedOrigins([]string{"*"}),
	)(h)
}

// AttacksResponse is the body of GET /attacks.
type AttacksResponse struct {
	Piece    string   `json:"piece"`
	Square   string   `json:"square"`
	Occupied string   `json:"occupied"`
	Friends  string   `json:"friends,omitempty"`
	Enemies  string   `json:"enemies,omitempty"`
	Attacks  string   `json:"attacks"`
	Squares  []string `json:"squares"`
}

// MagicsResponse is the body of GET /magics.
type MagicsResponse struct {
	Class  string   `json:"class"`
	Bits   uint     `json:"bits"`
	Bytes  uint64   `json:"bytes"`
	Magics []string `json:"magics"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// attacksHandler serves raw attacks for ?occupied=, or moves for
// ?friends=&enemies=. Boards are hex literals or square lists.
func (s *Server) attacksHandler() http.Handler {
	return http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		vars := mux.Vars(req)
		piece, err := attacks.ParseSlider(vars["piece"])
		if err != nil {
			s.fail(res, http.StatusNotFound, err)
			return
		}
		sq, err := board.ParseSquare(vars["square"])
		if err != nil {
			s.fail(res, http.StatusBadRequest, err)
			return
		}

		q := req.URL.Query()
		boards := make(map[string]board.Bitboard)
		for _, key := range []string{"occupied", "friends", "enemies"} {
			bb, err := board.ParseBitboard(q.Get(key))
			if err != nil {
				s.fail(res, http.StatusBadRequest, fmt.Errorf("%s: %w", key, err))
				return
			}
			boards[key] = bb
		}

		out := AttacksResponse{Piece: piece.String(), Square: sq.String()}
		var result board.Bitboard
		if q.Has("friends") || q.Has("enemies") {
			friends, enemies := boards["friends"], boards["enemies"]
			result = s.attacks.Visible(piece, sq, friends, enemies)
			out.Friends = friends.Hex()
			out.Enemies = enemies.Hex()
			out.Occupied = (friends | enemies).Hex()
		} else {
			result = s.attacks.Sliding(piece, sq, boards["occupied"])
			out.Occupied = boards["occupied"].Hex()
		}
		out.Attacks = result.Hex()
		out.Squares = make([]string, 0, result.BitCount())
		for _, t := range result.Squares() {
			out.Squares = append(out.Squares, t.String())
		}
		s.reply(res, http.StatusOK, out)
	})
}

func (s *Server) magicsHandler() http.Handler {
	return http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		class, err := magic.ParseClass(mux.Vars(req)["class"])
		if err != nil {
			s.fail(res, http.StatusNotFound, err)
			return
		}
		table := s.attacks.Table(class)
		out := MagicsResponse{Class: class.String(), Bits: table.Bits, Bytes: table.Bytes()}
		for _, m := range table.Magics() {
			out.Magics = append(out.Magics, fmt.Sprintf("%#016x", m))
		}
		s.reply(res, http.StatusOK, out)
	})
}

func (s *Server) runsHandler() http.Handler {
	return http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		limit := 20
		if v := req.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				s.fail(res, http.StatusBadRequest, fmt.Errorf("bad limit %q", v))
				return
			}
			limit = n
		}
		runs, err := s.runs.Runs(limit)
		if err != nil {
			s.fail(res, http.StatusInternalServerError, err)
			return
		}
		if runs == nil {
			runs = []searchlog.Run{}
		}
		s.reply(res, http.StatusOK, runs)
	})
}

func (s *Server) healthHandler() http.Handler {
	return http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		res.Write([]byte("ok\n"))
	})
}

func (s *Server) reply(res http.ResponseWriter, status int, body interface{}) {
	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(status)
	if err := json.NewEncoder(res).Encode(body); err != nil {
		s.log.Error(err, "writing response")
	}
}

func (s *Server) fail(res http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.log.Error(err, "request failed")
	}
	s.reply(res, status, errorResponse{Error: err.Error()})
}
