package magic

import (
	"context"
	"errors"
	"fmt"
	"math/bits"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"

	"github.com/hailam/chessmagic/internal/board"
)

var (
	// ErrSearchExhausted is returned when no magic was found for a square
	// within Config.MaxTrials candidates.
	ErrSearchExhausted = errors.New("magic search exhausted")
	// ErrInvalidMagic is returned by Restore for a constant that does not
	// hash a square's occupancies without conflict.
	ErrInvalidMagic = errors.New("invalid magic")
)

// How many trials run between context checks.
const cancelCheckInterval = 4096

// SquareStats describes the search for one square.
type SquareStats struct {
	Square       board.Square
	Magic        uint64
	Trials       int
	MaskBits     int
	Combinations int
	// Distinct is the number of different attack sets, the lower bound on
	// used slots.
	Distinct int
	Duration time.Duration
}

// Stats describes a whole table build.
type Stats struct {
	Class    Class
	Bits     uint
	Squares  [64]SquareStats
	Trials   int
	Duration time.Duration
}

// Builder searches magic constants and builds tables. A Builder carries no
// state between builds and may be used from several goroutines.
type Builder struct {
	cfg  Config
	rays *board.RayTable
	log  logr.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger used for search progress.
func WithLogger(log logr.Logger) Option {
	return func(b *Builder) {
		b.log = log
	}
}

// NewBuilder validates cfg and returns a builder over rays.
func NewBuilder(rays *board.RayTable, cfg Config, opts ...Option) (*Builder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	b := &Builder{
		cfg:  cfg,
		rays: rays,
		log:  logr.Discard(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Config returns the builder's configuration.
func (b *Builder) Config() Config {
	return b.cfg
}

// Build searches a magic constant for every square of class and returns the
// finished table. Squares are searched Config.Workers at a time; the first
// failure cancels the rest.
func (b *Builder) Build(ctx context.Context, class Class) (*Table, *Stats, error) {
	start := time.Now()
	h, err := NewHasher(b.rays, class, b.cfg.IndexBits(class))
	if err != nil {
		return nil, nil, err
	}

	t := &Table{Class: class, Bits: h.Bits()}
	st := &Stats{Class: class, Bits: h.Bits()}

	grp, ctx := errgroup.WithContext(ctx)
	grp.SetLimit(b.cfg.Workers)
	for sq := board.A1; sq <= board.H8; sq++ {
		grp.Go(func() error {
			entry, sqStats, err := b.buildSquare(ctx, h, sq)
			if err != nil {
				return err
			}
			t.Entries[sq] = entry
			st.Squares[sq] = sqStats
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, nil, err
	}

	for _, s := range st.Squares {
		st.Trials += s.Trials
	}
	st.Duration = time.Since(start)

	b.log.Info("magic table built",
		"class", class.String(),
		"bits", h.Bits(),
		"trials", st.Trials,
		"size", humanize.IBytes(t.Bytes()),
		"elapsed", st.Duration.Round(time.Millisecond).String())
	return t, st, nil
}

// BuildSquare searches the magic of a single square.
func (b *Builder) BuildSquare(ctx context.Context, class Class, sq board.Square) (Entry, SquareStats, error) {
	if err := sq.Validate(); err != nil {
		return Entry{}, SquareStats{}, err
	}
	h, err := NewHasher(b.rays, class, b.cfg.IndexBits(class))
	if err != nil {
		return Entry{}, SquareStats{}, err
	}
	return b.buildSquare(ctx, h, sq)
}

func (b *Builder) buildSquare(ctx context.Context, h *Hasher, sq board.Square) (Entry, SquareStats, error) {
	start := time.Now()
	class := h.Class()
	src, err := b.cfg.newSource(class, sq)
	if err != nil {
		return Entry{}, SquareStats{}, err
	}

	s, err := newSearch(b.rays, h, sq)
	if err != nil {
		return Entry{}, SquareStats{}, err
	}

	for trial := 1; trial <= b.cfg.MaxTrials; trial++ {
		if trial%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return Entry{}, SquareStats{}, err
			}
		}

		magic := src.Next()
		if !s.plausible(magic) || !s.try(magic) {
			continue
		}

		stats := SquareStats{
			Square:       sq,
			Magic:        magic,
			Trials:       trial,
			MaskBits:     h.Mask(sq).BitCount(),
			Combinations: len(s.occupancies),
			Distinct:     s.distinct(),
			Duration:     time.Since(start),
		}
		b.log.V(1).Info("magic found",
			"class", class.String(),
			"square", sq.String(),
			"magic", fmt.Sprintf("%#016x", magic),
			"trials", trial)
		return s.entry(magic), stats, nil
	}

	b.log.V(1).Info("magic search gave up", "class", class.String(), "square", sq.String(), "trials", b.cfg.MaxTrials)
	return Entry{}, SquareStats{}, fmt.Errorf("%w: %s on %v after %d trials with %d index bits",
		ErrSearchExhausted, class, sq, b.cfg.MaxTrials, h.Bits())
}

// Restore rebuilds a table from known magic constants, checking each one.
func (b *Builder) Restore(class Class, magics [64]uint64) (*Table, error) {
	h, err := NewHasher(b.rays, class, b.cfg.IndexBits(class))
	if err != nil {
		return nil, err
	}

	t := &Table{Class: class, Bits: h.Bits()}
	for sq := board.A1; sq <= board.H8; sq++ {
		s, err := newSearch(b.rays, h, sq)
		if err != nil {
			return nil, err
		}
		magic := magics[sq]
		if magic == 0 || !s.try(magic) {
			return nil, fmt.Errorf("%w: %s on %v: %#016x", ErrInvalidMagic, class, sq, magic)
		}
		t.Entries[sq] = s.entry(magic)
	}
	b.log.V(1).Info("magic table restored", "class", class.String(), "bits", h.Bits())
	return t, nil
}

// search is the scratch state for one square. Slots are marked with the
// current epoch instead of being cleared between candidates.
type search struct {
	hasher      *Hasher
	sq          board.Square
	occupancies []board.Bitboard
	reference   []board.Bitboard
	store       []board.Bitboard
	epoch       []uint32
	stamp       uint32
}

func newSearch(rays *board.RayTable, h *Hasher, sq board.Square) (*search, error) {
	occupancies, err := Combinations(h.Relevant(sq))
	if err != nil {
		return nil, fmt.Errorf("%s on %v: %w", h.Class(), sq, err)
	}
	dirs := h.Class().Directions()
	reference := make([]board.Bitboard, len(occupancies))
	for i, occ := range occupancies {
		reference[i] = board.SlidingAttacks(sq, dirs, rays, occ)
	}

	size := 1 << h.Bits()
	return &search{
		hasher:      h,
		sq:          sq,
		occupancies: occupancies,
		reference:   reference,
		store:       make([]board.Bitboard, size),
		epoch:       make([]uint32, size),
	}, nil
}

// plausible rejects multipliers that leave the top byte of the hashed mask
// nearly empty; they almost never give a usable index.
func (s *search) plausible(magic uint64) bool {
	if s.hasher.Bits() < 8 {
		return true
	}
	mask := uint64(s.hasher.Mask(s.sq))
	return bits.OnesCount64((mask*magic)>>56) >= 6
}

// try reports whether magic places every occupancy without a conflicting
// collision. Occupancies with the same attack set may share a slot.
func (s *search) try(magic uint64) bool {
	s.stamp++
	if s.stamp == 0 {
		clear(s.epoch)
		s.stamp = 1
	}
	for i, occ := range s.occupancies {
		idx := s.hasher.Index(occ, magic, s.sq)
		if s.epoch[idx] == s.stamp {
			if s.store[idx] != s.reference[i] {
				return false
			}
			continue
		}
		s.epoch[idx] = s.stamp
		s.store[idx] = s.reference[i]
	}
	return true
}

// entry copies the slots written by the last successful try.
func (s *search) entry(magic uint64) Entry {
	attacks := make([]board.Bitboard, len(s.store))
	for i := range attacks {
		if s.epoch[i] == s.stamp {
			attacks[i] = s.store[i]
		}
	}
	return Entry{
		Magic:   magic,
		Mask:    s.hasher.Mask(s.sq),
		Shift:   uint8(64 - s.hasher.Bits()),
		Attacks: attacks,
	}
}

func (s *search) distinct() int {
	seen := make(map[board.Bitboard]struct{}, len(s.reference))
	for _, a := range s.reference {
		seen[a] = struct{}{}
	}
	return len(seen)
}
