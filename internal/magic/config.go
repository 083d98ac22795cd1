package magic

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid magic config")

// Index width limits. 20 bits is 8MiB of attack sets per square.
const (
	MinIndexBits = 1
	MaxIndexBits = 20
)

// CandidateKind selects how candidate magic constants are drawn.
type CandidateKind uint8

const (
	// CandidateSparse draws odd 64-bit values with few set bits.
	CandidateSparse CandidateKind = iota
	// CandidatePrime draws sparse probable primes of a fixed bit length.
	CandidatePrime
)

func (k CandidateKind) String() string {
	switch k {
	case CandidateSparse:
		return "sparse"
	case CandidatePrime:
		return "prime"
	}
	return fmt.Sprintf("candidates(%d)", uint8(k))
}

// ParseCandidateKind parses "sparse" or "prime".
func ParseCandidateKind(s string) (CandidateKind, error) {
	switch strings.ToLower(s) {
	case "sparse":
		return CandidateSparse, nil
	case "prime":
		return CandidatePrime, nil
	}
	return 0, fmt.Errorf("%w: unknown candidate kind %q", ErrInvalidConfig, s)
}

// Config controls the magic search.
type Config struct {
	// RookBits and BishopBits are the hash index widths per class.
	RookBits   uint
	BishopBits uint

	// MaxTrials caps the candidates drawn for a single square.
	MaxTrials int

	// Seed makes the search reproducible. Each square derives its own
	// stream from it, so results do not depend on Workers.
	Seed uint64

	// Workers is the number of squares searched concurrently.
	Workers int

	Candidates CandidateKind
	// PrimeBits is the bit length of prime candidates (2-64).
	PrimeBits uint
}

// DefaultConfig returns the settings used when nothing is configured.
// Each class gets one index bit more than its largest mask, which keeps the
// search to a few thousand trials per square for any seed.
func DefaultConfig() Config {
	return Config{
		RookBits:   13,
		BishopBits: 10,
		MaxTrials:  1_000_000,
		Seed:       1,
		Workers:    1,
		Candidates: CandidateSparse,
		PrimeBits:  64,
	}
}

// IndexBits returns the configured index width for a class.
func (c Config) IndexBits(class Class) uint {
	if class == Bishop {
		return c.BishopBits
	}
	return c.RookBits
}

// Validate checks every field and reports the first problem.
func (c Config) Validate() error {
	for _, class := range Classes {
		bits := c.IndexBits(class)
		if bits < MinIndexBits || bits > MaxIndexBits {
			return fmt.Errorf("%w: %s index bits %d outside [%d, %d]",
				ErrInvalidConfig, class, bits, MinIndexBits, MaxIndexBits)
		}
	}
	if c.MaxTrials <= 0 {
		return fmt.Errorf("%w: max trials must be positive, got %d", ErrInvalidConfig, c.MaxTrials)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidConfig, c.Workers)
	}
	switch c.Candidates {
	case CandidateSparse:
	case CandidatePrime:
		if c.PrimeBits < MinPrimeBits || c.PrimeBits > MaxPrimeBits {
			return fmt.Errorf("%w: prime bits %d outside [%d, %d]",
				ErrInvalidConfig, c.PrimeBits, MinPrimeBits, MaxPrimeBits)
		}
	default:
		return fmt.Errorf("%w: unknown candidate kind %d", ErrInvalidConfig, c.Candidates)
	}
	return nil
}
