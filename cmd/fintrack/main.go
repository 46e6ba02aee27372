// Command fintrack is a personal finance tracker: savings goals, loans,
// scheduled transactions and a ledger kept in a local data directory.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"fintrack/internal/config"
	"fintrack/internal/services/records"
	"fintrack/internal/services/storage"
	"fintrack/internal/services/tracker"
	"fintrack/internal/version"
)

// clock is the time source of the tracker; tests pin it
var clock = time.Now

// app holds the dependencies of one CLI invocation
type app struct {
	cfg     *config.Config
	log     *logrus.Logger
	store   *storage.FileStore
	tracker *tracker.Tracker

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

type command struct {
	usage string
	run   func(a *app, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"goal":      {"goal add|list|project|contribute|update|delete", (*app).goalCmd},
		"loan":      {"loan add|list|emi|schedule|repay|delete", (*app).loanCmd},
		"calc":      {"calc --amount N --rate PCT --years N", (*app).calcCmd},
		"scheduled": {"scheduled add|list|due|log|rrule|delete", (*app).scheduledCmd},
		"txn":       {"txn add|list|delete", (*app).txnCmd},
		"summary":   {"summary [--compare previous|year --from DATE --to DATE]", (*app).summaryCmd},
		"prefs":     {"prefs show|set", (*app).prefsCmd},
		"import":    {"import FILE.csv", (*app).importCmd},
		"export":    {"export [FILE.csv]", (*app).exportCmd},
		"watch":     {"watch [--schedule SPEC]", (*app).watchCmd},
		"ask":       {"ask QUESTION...", (*app).askCmd},
		"rates":     {"rates [--from CODE --to CODE --amount N]", (*app).ratesCmd},
		"encrypt":   {"encrypt", (*app).encryptCmd},
		"decrypt":   {"decrypt", (*app).decryptCmd},
	}
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes one command and returns the process exit code
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		printUsage(stdout)
		return 0
	}
	if args[0] == "version" {
		info := version.Get()
		fmt.Fprintln(stdout, info)
		if w := info.Warning(); w != "" {
			fmt.Fprintln(stderr, w)
		}
		return 0
	}

	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n", args[0])
		printUsage(stderr)
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	a, err := newApp(cfg, stdin, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if err := cmd.run(a, args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		a.log.WithError(err).WithField("command", args[0]).Debug("Command failed")
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// newApp opens the data directory, unlocking it when it is encrypted
func newApp(cfg *config.Config, stdin io.Reader, stdout, stderr io.Writer) (*app, error) {
	log := cfg.NewLogger()
	log.SetOutput(stderr)

	store, err := storage.New(cfg.DataDirectory)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:    cfg,
		log:    log,
		store:  store,
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
	}

	if store.IsEncrypted() {
		password, err := a.password("Password: ")
		if err != nil {
			return nil, err
		}
		if err := store.Unlock(password); err != nil {
			return nil, fmt.Errorf("failed to unlock data directory: %w", err)
		}
		log.WithField("data_dir", cfg.DataDirectory).Debug("Storage unlocked")
	}

	a.tracker = tracker.New(records.NewRepository(store, cfg.User), log)
	a.tracker.Now = clock
	return a, nil
}

// password returns FINTRACK_PASSWORD or prompts for one on the terminal
func (a *app) password(prompt string) (string, error) {
	if a.cfg.Password != "" {
		return a.cfg.Password, nil
	}

	f, ok := a.stdin.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return "", fmt.Errorf("data directory is encrypted: set %sPASSWORD or run from a terminal", config.EnvPrefix)
	}

	fmt.Fprint(a.stderr, prompt)
	b, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(a.stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: fintrack <command> [arguments]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")

	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s\n", commands[name].usage)
	}
	fmt.Fprintln(w, "  version")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Configuration is read from .env and %s* environment variables.\n", config.EnvPrefix)
}
