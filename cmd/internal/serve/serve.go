package serve

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/google/subcommands"

	"github.com/hailam/chessmagic/cmd/internal/opt"
	"github.com/hailam/chessmagic/internal/searchlog"
	"github.com/hailam/chessmagic/internal/server"
	"github.com/hailam/chessmagic/internal/storage"
)

type Command struct {
	search    opt.Search
	addr      string
	logDB     string
	accessLog bool
}

func (*Command) Name() string     { return "serve" }
func (*Command) Synopsis() string { return "Serve attack queries over HTTP" }
func (*Command) Usage() string {
	return `serve [flags]

GET /attacks/{piece}/{square}?occupied=...|friends=...&enemies=...
GET /magics/{class}
GET /runs
`
}

func (c *Command) SetFlags(flags *flag.FlagSet) {
	c.search.AddFlags(flags)
	flags.StringVar(&c.addr, "addr", ":8080", "listen address")
	flags.StringVar(&c.logDB, "log-db", "", "search log database for /runs (default: the data directory's)")
	flags.BoolVar(&c.accessLog, "access-log", true, "log requests to stderr")
}

// options returns the server options for c. The returned func closes the
// search log, if one was opened. /runs is left out when the log cannot be
// opened.
func (c *Command) options(env *opt.Env) ([]server.Option, func()) {
	opts := []server.Option{server.WithLogger(env.Log.WithName("server"))}
	if c.accessLog {
		opts = append(opts, server.WithAccessLog(os.Stderr))
	}

	path := c.logDB
	if path == "" {
		var err error
		path, err = storage.GetSearchLogPath()
		if err != nil {
			log.Printf("serve: search log unavailable: %v", err)
			return opts, func() {}
		}
	}
	repo, err := searchlog.Open(path)
	if err != nil {
		log.Printf("serve: search log unavailable: %v", err)
		return opts, func() {}
	}
	opts = append(opts, server.WithRuns(repo))
	return opts, func() { repo.Close() }
}

func (c *Command) Execute(ctx context.Context, flag *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	env := opt.FromArgs(args)
	a, err := c.search.Attacks(ctx, env)
	if err != nil {
		log.Printf("serve: %v", err)
		return subcommands.ExitFailure
	}

	opts, closeRuns := c.options(env)
	defer closeRuns()

	srv := &http.Server{
		Addr:              c.addr,
		Handler:           server.New(a, opts...).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdown)
	}()

	log.Printf("Listening on %s", c.addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("serve: %v", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
