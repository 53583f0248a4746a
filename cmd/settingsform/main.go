package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/goliatone/go-settingsform"
	"github.com/goliatone/go-settingsform/pkg/schema"
)

type command struct {
	summary string
	run     func(ctx context.Context, args []string, stdout, stderr io.Writer) error
}

var commands = map[string]command{
	"serve":    {summary: "host the settings page over HTTP", run: runServe},
	"edit":     {summary: "edit the configuration in the terminal", run: runEdit},
	"generate": {summary: "write a standalone HTML rendering", run: runGenerate},
	"lint":     {summary: "check a schema for unusable declarations", run: runLint},
	"openapi":  {summary: "describe the configuration resource as OpenAPI", run: runOpenAPI},
}

// errUsage marks errors already reported through a flag set's usage output.
var errUsage = errors.New("usage")

func main() {
	log.SetFlags(0)
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}
	name := os.Args[1]
	if name == "-h" || name == "--help" || name == "help" {
		usage(os.Stdout)
		return
	}
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", name)
		usage(os.Stderr)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.run(ctx, os.Args[2:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Fatalf("%s: %v", name, err)
	}
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "Usage: settingsform <command> [flags]\n\nCommands:\n")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-9s %s\n", name, commands[name].summary)
	}
}

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("settingsform "+name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return errUsage
	}
	return nil
}

// loadSchema reads a schema from a file path or an http(s) URL.
func loadSchema(ctx context.Context, location string) (*schema.Schema, error) {
	return settingsform.LoadSchema(ctx, location, schema.WithHTTP(10*time.Second))
}
