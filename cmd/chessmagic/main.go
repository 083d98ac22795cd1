package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"runtime/pprof"
	"syscall"

	"github.com/go-logr/stdr"
	"github.com/google/subcommands"

	"github.com/hailam/chessmagic/cmd/internal/opt"
	"github.com/hailam/chessmagic/cmd/internal/query"
	"github.com/hailam/chessmagic/cmd/internal/runs"
	"github.com/hailam/chessmagic/cmd/internal/search"
	"github.com/hailam/chessmagic/cmd/internal/serve"
	"github.com/hailam/chessmagic/cmd/internal/verify"
	"github.com/hailam/chessmagic/internal/storage"
)

var (
	verbosity  = flag.Int("v", 0, "log verbosity")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	dataDir    = flag.String("data-dir", "", "data directory (default: $"+storage.DataDirEnv+" or the platform's)")
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")

	subcommands.Register(&search.Command{}, "")
	subcommands.Register(&query.Command{}, "")
	subcommands.Register(&verify.Command{}, "")
	subcommands.Register(&serve.Command{}, "")
	subcommands.Register(&runs.Command{}, "")

	flag.Parse()
	os.Exit(run())
}

func run() int {
	if *dataDir != "" {
		os.Setenv(storage.DataDirEnv, *dataDir)
	}

	// Start CPU profiling if requested (via flag or environment variable)
	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
		log.Printf("CPU profiling enabled, writing to %s", profilePath)
	}

	stdr.SetVerbosity(*verbosity)
	env := &opt.Env{
		Log: stdr.New(log.New(os.Stderr, "", log.LstdFlags)).WithName("chessmagic"),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return int(subcommands.Execute(ctx, env))
}
