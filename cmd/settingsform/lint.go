package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/goliatone/go-settingsform/pkg/validation"
)

var errFindings = errors.New("lint found errors")

// runLint reports findings for each schema named on the command line and
// fails when any of them is an error. Warnings alone pass unless --strict.
func runLint(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("lint", stderr)
	asJSON := fs.Bool("json", false, "print findings as JSON")
	strict := fs.Bool("strict", false, "treat warnings as errors")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	paths := fs.Args()
	if len(paths) == 0 {
		paths = []string{"schema.json"}
	}

	report := make(map[string][]validation.Finding, len(paths))
	failed := false
	for _, path := range paths {
		sch, err := loadSchema(ctx, path)
		if err != nil {
			return fmt.Errorf("lint %s: %w", path, err)
		}
		findings := validation.Lint(sch)
		report[path] = findings
		if validation.HasErrors(findings) || (*strict && len(findings) > 0) {
			failed = true
		}
		if *asJSON {
			continue
		}
		for _, f := range findings {
			fmt.Fprintf(stdout, "%s: %s\n", path, f)
		}
	}

	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	}
	if failed {
		return errFindings
	}
	return nil
}
