package search

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

	"github.com/hailam/chessmagic/cmd/internal/opt"
	"github.com/hailam/chessmagic/internal/board"
	"github.com/hailam/chessmagic/internal/magic"
	"github.com/hailam/chessmagic/internal/searchlog"
	"github.com/hailam/chessmagic/internal/storage"
)

type Command struct {
	search opt.Search
	save   bool
	record bool
	logDB  string
	format string
	only   string
}

func (*Command) Name() string     { return "search" }
func (*Command) Synopsis() string { return "Search magic numbers for rook and bishop tables" }
func (*Command) Usage() string {
	return `search [flags]

Searches a magic constant for every square and prints them.
`
}

func (c *Command) SetFlags(flags *flag.FlagSet) {
	c.search.AddFlags(flags)
	flags.BoolVar(&c.save, "save", false, "store the magics in the local cache")
	flags.BoolVar(&c.record, "record", false, "record the run in the search log")
	flags.StringVar(&c.logDB, "log-db", "", "search log database (implies -record)")
	flags.StringVar(&c.format, "format", "table", "output format: table or go")
	flags.StringVar(&c.only, "class", "", "search only this class (rook or bishop)")
}

func (c *Command) Execute(ctx context.Context, flag *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	env := opt.FromArgs(args)
	cfg, err := c.search.BuildConfig()
	if err != nil {
		log.Printf("search: %v", err)
		return subcommands.ExitUsageError
	}
	if c.format != "table" && c.format != "go" {
		log.Printf("search: unknown format %q", c.format)
		return subcommands.ExitUsageError
	}

	classes := magic.Classes
	if c.only != "" {
		class, err := magic.ParseClass(c.only)
		if err != nil {
			log.Printf("search: %v", err)
			return subcommands.ExitUsageError
		}
		classes = []magic.Class{class}
	}

	b, err := magic.NewBuilder(board.NewRayTable(), cfg, magic.WithLogger(env.Log))
	if err != nil {
		log.Printf("search: %v", err)
		return subcommands.ExitUsageError
	}

	var store *storage.Storage
	if c.save {
		store, err = storage.NewStorage(storage.WithLogger(env.Log))
		if err != nil {
			log.Printf("open magic cache: %v", err)
			return subcommands.ExitFailure
		}
		defer store.Close()
	}

	var repo *searchlog.Repository
	if c.record || c.logDB != "" {
		path := c.logDB
		if path == "" {
			if path, err = storage.GetSearchLogPath(); err != nil {
				log.Printf("search log: %v", err)
				return subcommands.ExitFailure
			}
		}
		if repo, err = searchlog.Open(path); err != nil {
			log.Printf("open search log: %v", err)
			return subcommands.ExitFailure
		}
		defer repo.Close()
	}

	for _, class := range classes {
		table, stats, err := b.Build(ctx, class)
		if err != nil {
			log.Printf("search %s: %v", class, err)
			return subcommands.ExitFailure
		}

		runID := ""
		if repo != nil {
			if runID, err = repo.Record(cfg, stats); err != nil {
				log.Printf("record %s run: %v", class, err)
				return subcommands.ExitFailure
			}
		}
		if store != nil {
			rec := &storage.MagicRecord{
				Class:  class.String(),
				Bits:   table.Bits,
				Seed:   cfg.Seed,
				RunID:  runID,
				Magics: table.Magics(),
			}
			if err := store.SaveRecord(rec); err != nil {
				log.Printf("save %s magics: %v", class, err)
				return subcommands.ExitFailure
			}
		}

		if c.format == "go" {
			PrintGo(os.Stdout, table)
		} else {
			PrintTable(os.Stdout, table, stats)
		}
		if runID != "" {
			fmt.Printf("run %s\n", runID)
		}
	}
	return subcommands.ExitSuccess
}

// PrintTable writes one line per square followed by a summary.
func PrintTable(w io.Writer, table *magic.Table, stats *magic.Stats) {
	fmt.Fprintf(w, "%s magics, %d index bits\n", table.Class, table.Bits)
	fmt.Fprintf(w, "%-4s %-18s %5s %10s %8s\n", "sq", "magic", "mask", "trials", "distinct")
	for sq := board.A1; sq <= board.H8; sq++ {
		s := stats.Squares[sq]
		fmt.Fprintf(w, "%-4s %#016x %5d %10d %8d\n", sq, s.Magic, s.MaskBits, s.Trials, s.Distinct)
	}
	fmt.Fprintf(w, "total %s trials in %s, table %s\n\n",
		humanize.Comma(int64(stats.Trials)),
		stats.Duration.Round(time.Millisecond),
		humanize.IBytes(table.Bytes()))
}

// PrintGo writes the magics as a Go array literal.
func PrintGo(w io.Writer, table *magic.Table) {
	fmt.Fprintf(w, "var %sMagics = [64]uint64{\n", table.Class)
	for i, m := range table.Magics() {
		if i%4 == 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprintf(w, "%#016x,", m)
		if i%4 == 3 {
			fmt.Fprintln(w)
		} else {
			fmt.Fprint(w, " ")
		}
	}
	fmt.Fprintln(w, "}")
}
