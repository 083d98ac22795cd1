package magic

import (
	"fmt"
	"math/big"
	"math/rand/v2"

	"github.com/hailam/chessmagic/internal/board"
)

// Prime candidate bit length limits.
const (
	MinPrimeBits = 2
	MaxPrimeBits = 64
)

// CandidateSource yields candidate magic constants. Every value is odd and
// therefore nonzero.
type CandidateSource interface {
	Next() uint64
}

type sparseSource struct {
	rng *rand.Rand
}

// NewSparseSource returns a source of odd values with roughly an eighth of
// their bits set. Sparse multipliers spread occupancy bits into the top of
// the product far more often than uniform ones do.
func NewSparseSource(seed uint64) CandidateSource {
	return &sparseSource{rng: newRand(seed)}
}

func (s *sparseSource) Next() uint64 {
	return s.rng.Uint64()&s.rng.Uint64()&s.rng.Uint64() | 1
}

type primeSource struct {
	rng  *rand.Rand
	bits uint
}

// NewPrimeSource returns a source of sparse probable primes of exactly bits
// bits.
func NewPrimeSource(seed uint64, bits uint) (CandidateSource, error) {
	if bits < MinPrimeBits || bits > MaxPrimeBits {
		return nil, fmt.Errorf("%w: prime bits %d outside [%d, %d]",
			ErrInvalidConfig, bits, MinPrimeBits, MaxPrimeBits)
	}
	return &primeSource{rng: newRand(seed), bits: bits}, nil
}

func (s *primeSource) Next() uint64 {
	return SparsePrime(s.rng, s.bits)
}

// SparsePrime returns an odd probable prime p with 2^(bits-1) <= p < 2^bits.
// Below the top bit, p is drawn like a sparse candidate, so it hashes as
// well as one. bits must be within [MinPrimeBits, MaxPrimeBits].
func SparsePrime(rng *rand.Rand, bits uint) uint64 {
	top := uint64(1) << (bits - 1)
	below := top - 1
	p := new(big.Int)
	for {
		candidate := top | rng.Uint64()&rng.Uint64()&rng.Uint64()&below | 1
		// ProbablyPrime(0) runs Baillie-PSW, which is exact below 2^64.
		if p.SetUint64(candidate).ProbablyPrime(0) {
			return candidate
		}
	}
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// squareSeed derives an independent stream per class and square.
func squareSeed(seed uint64, class Class, sq board.Square) uint64 {
	x := seed ^ (uint64(class)<<8|uint64(sq)+1)*0xbf58476d1ce4e5b9
	x ^= x >> 31
	x *= 0x94d049bb133111eb
	x ^= x >> 29
	return x
}

func (c Config) newSource(class Class, sq board.Square) (CandidateSource, error) {
	seed := squareSeed(c.Seed, class, sq)
	switch c.Candidates {
	case CandidatePrime:
		return NewPrimeSource(seed, c.PrimeBits)
	default:
		return NewSparseSource(seed), nil
	}
}
