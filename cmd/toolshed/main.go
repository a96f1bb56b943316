package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/erazemk/toolshed/internal/config"
)

const usage = `Usage: toolshed <command> [flags] [args]

Commands:
  serve                   run the browser UI (default)
  backend                 run an in-memory development backend
  login <user> <pass>     sign in and store the session
  logout                  clear the stored session
  whoami                  show the signed-in user
  tools [search]          list the catalog
  reserve <tool-id> [date]
                          reserve a tool (date defaults to today)
  reservations            list your reservations
  cancel <reservation-id> cancel a reservation that is not checked out
  checkout <reservation-id>
                          check out a reserved tool (see -h for the form flags)
  return <reservation-id> request the return of a checked out tool
                          (-condition, -reason, -damages, -feedback, -cleaning,
                          -used-for, -missing, -safety, -maintenance, -notes,
                          -detailed)
  returns                 admin: list pending returns
  approve <reservation-id>
                          admin: approve a pending return
  reject <reservation-id> admin: reject a pending return

Common flags:
  -d, -db <path>          local state file (default: $TOOLSHED_DB or toolshed.sqlite3)
  -u, -api <url>          backend base URL (default: $TOOLSHED_API_URL)
  -l, -log <path>         log file path (default: no file, stdout/stderr only)
  -v, -verbose            log at debug level
`

// globalFlags registers the flags every command accepts. Flags override the
// values loaded from the environment.
func globalFlags(fs *flag.FlagSet, cfg *config.Config, verbose *bool) {
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "")
	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "")

	fs.StringVar(&cfg.APIURL, "api", cfg.APIURL, "")
	fs.StringVar(&cfg.APIURL, "u", cfg.APIURL, "")

	fs.StringVar(&cfg.LogPath, "log", cfg.LogPath, "")
	fs.StringVar(&cfg.LogPath, "l", cfg.LogPath, "")

	fs.BoolVar(verbose, "verbose", false, "")
	fs.BoolVar(verbose, "v", false, "")
}

type command struct {
	// flags registers command specific flags.
	flags func(fs *flag.FlagSet, cfg *config.Config)
	run   func(cfg *config.Config, args []string) error
}

var commands = map[string]command{
	"serve":        {flags: serveFlags, run: runServe},
	"backend":      {flags: backendFlags, run: runBackend},
	"login":        {run: runLogin},
	"logout":       {run: runLogout},
	"whoami":       {run: runWhoami},
	"tools":        {run: runTools},
	"reserve":      {run: runReserve},
	"reservations": {run: runReservations},
	"cancel":       {run: runCancel},
	"checkout":     {flags: checkoutFlags, run: runCheckout},
	"return":       {flags: returnFlags, run: runReturn},
	"returns":      {run: runPendingReturns},
	"approve":      {run: runApprove},
	"reject":       {run: runReject},
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	name := "serve"
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		name, args = args[0], args[1:]
	}
	if name == "help" {
		fmt.Fprint(os.Stdout, usage)
		return 0
	}

	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", name)
		fmt.Fprint(os.Stderr, usage)
		return 1
	}

	cfg := config.Load()
	fs := flag.NewFlagSet("toolshed "+name, flag.ContinueOnError)
	fs.Usage = func() { fmt.Fprint(os.Stdout, usage) }

	var verbose bool
	globalFlags(fs, cfg, &verbose)
	if cmd.flags != nil {
		cmd.flags(fs, cfg)
	}

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 1
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	closeLog, err := setupLogger(cfg.LogPath, level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer closeLog()

	start := time.Now()
	if err := cmd.run(cfg, fs.Args()); err != nil {
		slog.Error("command failed", "command", name, "error", err, "duration", time.Since(start).Round(time.Millisecond))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}
