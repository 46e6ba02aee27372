package main

import (
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"fintrack/internal/models"
)

// dateFlag parses YYYY-MM-DD values; unset stays the zero date
type dateFlag struct {
	date models.Date
}

func (d *dateFlag) String() string {
	if d.date.IsZero() {
		return ""
	}
	return d.date.String()
}

func (d *dateFlag) Set(s string) error {
	date, err := models.ParseDate(s)
	if err != nil {
		return err
	}
	d.date = date
	return nil
}

func (a *app) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

// withID takes a leading id argument and parses the flags after it
func withID(fs *flag.FlagSet, args []string) (string, error) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return "", fmt.Errorf("%s: missing id", fs.Name())
	}
	if err := fs.Parse(args[1:]); err != nil {
		return "", err
	}
	if fs.NArg() > 0 {
		return "", fmt.Errorf("%s: unexpected arguments %v", fs.Name(), fs.Args())
	}
	return args[0], nil
}

// parseNoArgs parses flags and rejects positional arguments
func parseNoArgs(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%s: unexpected arguments %v", fs.Name(), fs.Args())
	}
	return nil
}

// visited reports which flags were given on the command line
func visited(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

// subcommand splits "noun verb args..." into the verb and its args
func subcommand(noun string, args []string, verbs ...string) (string, []string, error) {
	if len(args) == 0 {
		return "", nil, fmt.Errorf("usage: fintrack %s %s", noun, strings.Join(verbs, "|"))
	}
	for _, v := range verbs {
		if args[0] == v {
			return v, args[1:], nil
		}
	}
	return "", nil, fmt.Errorf("unknown %s command %q (want %s)", noun, args[0], strings.Join(verbs, "|"))
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}
