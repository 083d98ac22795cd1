package runs

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/subcommands"

	"github.com/hailam/chessmagic/internal/searchlog"
	"github.com/hailam/chessmagic/internal/storage"
)

type Command struct {
	logDB   string
	limit   int
	run     string
	summary bool
}

func (*Command) Name() string     { return "runs" }
func (*Command) Synopsis() string { return "List recorded magic searches" }
func (*Command) Usage() string {
	return `runs [-limit N] [-run ID] [-summary]
`
}

func (c *Command) SetFlags(flags *flag.FlagSet) {
	flags.StringVar(&c.logDB, "log-db", "", "search log database (default: the data directory's)")
	flags.IntVar(&c.limit, "limit", 20, "number of runs to list")
	flags.StringVar(&c.run, "run", "", "show the squares of one run")
	flags.BoolVar(&c.summary, "summary", false, "aggregate runs by class and width")
}

func (c *Command) Execute(ctx context.Context, flag *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	path := c.logDB
	if path == "" {
		var err error
		if path, err = storage.GetSearchLogPath(); err != nil {
			log.Printf("runs: %v", err)
			return subcommands.ExitFailure
		}
	}
	repo, err := searchlog.Open(path)
	if err != nil {
		log.Printf("runs: %v", err)
		return subcommands.ExitFailure
	}
	defer repo.Close()

	switch {
	case c.run != "":
		squares, err := repo.Squares(c.run)
		if err != nil {
			log.Printf("runs: %v", err)
			return subcommands.ExitFailure
		}
		if len(squares) == 0 {
			log.Printf("runs: no run %q", c.run)
			return subcommands.ExitFailure
		}
		PrintSquares(os.Stdout, squares)
	case c.summary:
		summary, err := repo.Summary()
		if err != nil {
			log.Printf("runs: %v", err)
			return subcommands.ExitFailure
		}
		for _, s := range summary {
			fmt.Printf("%-7s %2d bits %4d runs  avg %s  max %s trials\n",
				s.Class, s.Bits, s.Runs, humanize.Comma(int64(s.AvgTrials)), humanize.Comma(s.MaxTrials))
		}
	default:
		runs, err := repo.Runs(c.limit)
		if err != nil {
			log.Printf("runs: %v", err)
			return subcommands.ExitFailure
		}
		PrintRuns(os.Stdout, runs)
	}
	return subcommands.ExitSuccess
}

// PrintRuns writes one line per run.
func PrintRuns(w io.Writer, runs []searchlog.Run) {
	for _, r := range runs {
		fmt.Fprintf(w, "%s  %-6s %2d bits  seed %-20s %-6s %12s trials  %8s  %s\n",
			r.ID, r.Class, r.Bits, r.Seed, r.Candidates,
			humanize.Comma(r.Trials),
			time.Duration(r.DurationMS)*time.Millisecond,
			humanize.Time(r.CreatedAt))
	}
}

// PrintSquares writes one line per square.
func PrintSquares(w io.Writer, squares []searchlog.Square) {
	for _, s := range squares {
		fmt.Fprintf(w, "%-3s %s %2d bits %10s trials %5d distinct\n",
			s.Square, s.Magic, s.MaskBits, humanize.Comma(s.Trials), s.Distinct)
	}
}
