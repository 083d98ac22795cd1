// Package opt holds flags and setup shared by the chessmagic subcommands.
package opt

import (
	"context"
	"flag"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/hailam/chessmagic/internal/attacks"
	"github.com/hailam/chessmagic/internal/magic"
	"github.com/hailam/chessmagic/internal/storage"
)

// Env is passed from main to every subcommand.
type Env struct {
	Log logr.Logger
}

// FromArgs extracts the Env passed to subcommands.Execute.
func FromArgs(args []interface{}) *Env {
	for _, a := range args {
		if env, ok := a.(*Env); ok {
			return env
		}
	}
	return &Env{Log: logr.Discard()}
}

// Search holds the magic search flags.
type Search struct {
	RookBits   uint
	BishopBits uint
	MaxTrials  int
	Seed       uint64
	Workers    int
	Candidates string
	PrimeBits  uint
	Cached     bool
}

func (o *Search) AddFlags(flags *flag.FlagSet) {
	def := magic.DefaultConfig()
	flags.UintVar(&o.RookBits, "rook-bits", def.RookBits, "index bits of the rook table")
	flags.UintVar(&o.BishopBits, "bishop-bits", def.BishopBits, "index bits of the bishop table")
	flags.IntVar(&o.MaxTrials, "max-trials", def.MaxTrials, "candidates tried per square before giving up")
	flags.Uint64Var(&o.Seed, "seed", def.Seed, "search seed")
	flags.IntVar(&o.Workers, "workers", def.Workers, "squares searched in parallel")
	flags.StringVar(&o.Candidates, "candidates", def.Candidates.String(), "candidate generator: sparse or prime")
	flags.UintVar(&o.PrimeBits, "prime-bits", def.PrimeBits, "width of prime candidates")
	flags.BoolVar(&o.Cached, "cached", false, "restore magics from the local cache, searching only on a miss")
}

// BuildConfig converts the flags into a validated magic.Config.
func (o *Search) BuildConfig() (magic.Config, error) {
	kind, err := magic.ParseCandidateKind(o.Candidates)
	if err != nil {
		return magic.Config{}, err
	}
	cfg := magic.Config{
		RookBits:   o.RookBits,
		BishopBits: o.BishopBits,
		MaxTrials:  o.MaxTrials,
		Seed:       o.Seed,
		Workers:    o.Workers,
		Candidates: kind,
		PrimeBits:  o.PrimeBits,
	}
	return cfg, cfg.Validate()
}

// Attacks builds the attack tables, or restores them from the cache when
// -cached is set.
func (o *Search) Attacks(ctx context.Context, env *Env) (*attacks.Attacks, error) {
	cfg, err := o.BuildConfig()
	if err != nil {
		return nil, err
	}
	if !o.Cached {
		return attacks.New(ctx, cfg, magic.WithLogger(env.Log))
	}

	store, err := storage.NewStorage(storage.WithLogger(env.Log))
	if err != nil {
		return nil, fmt.Errorf("open magic cache: %w", err)
	}
	defer store.Close()
	return attacks.Load(ctx, cfg, store, env.Log)
}
