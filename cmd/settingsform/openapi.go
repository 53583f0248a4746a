package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/goliatone/go-settingsform/pkg/openapi"
)

func runOpenAPI(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("openapi", stderr)
	schemaPath := fs.String("schema", "schema.json", "schema file or URL")
	format := fs.String("format", "json", "output format: json or yaml")
	configPath := fs.String("config-path", "/config", "path of the configuration resource")
	serverURL := fs.String("server", "", "server URL recorded in the document")
	version := fs.String("api-version", "", "info.version of the document")
	output := fs.String("out", "", "output file (stdout if empty)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	sch, err := loadSchema(ctx, *schemaPath)
	if err != nil {
		return err
	}
	doc, err := openapi.Describe(ctx, sch,
		openapi.WithConfigPath(*configPath),
		openapi.WithServerURL(*serverURL),
		openapi.WithAPIVersion(*version),
	)
	if err != nil {
		return err
	}
	raw, err := openapi.Marshal(doc, openapi.Format(*format))
	if err != nil {
		return err
	}

	if *output == "" {
		_, err := stdout.Write(raw)
		return err
	}
	if err := os.WriteFile(*output, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", *output, err)
	}
	return nil
}
