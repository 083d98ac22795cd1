package verify

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/subcommands"

	"github.com/hailam/chessmagic/cmd/internal/opt"
	"github.com/hailam/chessmagic/internal/attacks"
	"github.com/hailam/chessmagic/internal/board"
)

type Command struct {
	search opt.Search
	random int
}

func (*Command) Name() string     { return "verify" }
func (*Command) Synopsis() string { return "Check magic lookups against ray marching" }
func (*Command) Usage() string {
	return `verify [flags]

Checks every relevant occupancy of both tables, then random positions with
friends and enemies.
`
}

func (c *Command) SetFlags(flags *flag.FlagSet) {
	c.search.AddFlags(flags)
	flags.IntVar(&c.random, "random", 100000, "random positions to compare per slider")
}

// Random compares table lookups against ray marching on n random positions
// per slider and returns the first mismatch.
func Random(a *attacks.Attacks, n int, seed uint64) error {
	rng := rand.New(rand.NewPCG(seed, seed^0x5851f42d4c957f2d))
	for i := 0; i < n; i++ {
		sq := board.Square(rng.IntN(64))
		occ := board.Bitboard(rng.Uint64() & rng.Uint64())
		friends := occ & board.Bitboard(rng.Uint64())
		enemies := occ &^ friends
		for _, s := range attacks.Sliders {
			fast := a.Visible(s, sq, friends, enemies)
			slow := a.Slow(s, sq, friends, enemies)
			if fast != slow {
				return fmt.Errorf("%s on %s with friends %s enemies %s: table %s, rays %s",
					s, sq, friends.Hex(), enemies.Hex(), fast.Hex(), slow.Hex())
			}
		}
	}
	return nil
}

func (c *Command) Execute(ctx context.Context, flag *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	env := opt.FromArgs(args)
	a, err := c.search.Attacks(ctx, env)
	if err != nil {
		log.Printf("verify: %v", err)
		return subcommands.ExitFailure
	}

	start := time.Now()
	if err := a.Verify(); err != nil {
		log.Printf("verify: %v", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("tables ok in %s\n", time.Since(start).Round(time.Millisecond))

	start = time.Now()
	if err := Random(a, c.random, c.search.Seed); err != nil {
		log.Printf("verify: %v", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("%s random positions ok in %s\n",
		humanize.Comma(int64(c.random*len(attacks.Sliders))),
		time.Since(start).Round(time.Millisecond))
	return subcommands.ExitSuccess
}
