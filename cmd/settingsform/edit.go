package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-settingsform/internal/logging"
	"github.com/goliatone/go-settingsform/pkg/configclient"
	"github.com/goliatone/go-settingsform/pkg/configstore"
	"github.com/goliatone/go-settingsform/pkg/document"
	"github.com/goliatone/go-settingsform/pkg/form"
	"github.com/goliatone/go-settingsform/pkg/renderers/tui"
)

// runEdit edits either a running device (--url) or a local configuration
// file (--config) through terminal prompts.
func runEdit(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("edit", stderr)
	schemaPath := fs.String("schema", "schema.json", "schema file or URL")
	baseURL := fs.String("url", "", "base URL of the device serving /config")
	configFile := fs.String("config", "config.json", "configuration file edited when --url is empty")
	level := fs.String("log-level", "warn", "log level")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	logger, err := logging.New(logging.Options{Level: *level, Console: stderr})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	sch, err := loadSchema(ctx, *schemaPath)
	if err != nil {
		return err
	}

	driver := tui.NewSurveyDriver()
	options := []form.Option{
		form.WithLogger(logger),
		form.WithConfirmer(tui.NewConfirmer(driver)),
	}
	if *baseURL != "" {
		client, err := configclient.New(*baseURL, configclient.WithLogger(logger))
		if err != nil {
			return err
		}
		options = append(options, form.WithConfigService(client), form.WithActionClient(client))
	} else {
		store, err := configstore.NewFileStore(*configFile)
		if err != nil {
			return err
		}
		options = append(options, form.WithConfigService(configstore.Service{Store: store}))
	}

	session, err := form.New(sch, options...)
	if err != nil {
		return err
	}
	defer session.Close()

	if err := session.Load(ctx); err != nil {
		fmt.Fprintf(stderr, "starting from defaults: %v\n", err)
	}

	before := session.Collect()

	editor, err := tui.NewEditor(session, tui.WithPromptDriver(driver))
	if err != nil {
		return err
	}
	if err := editor.Run(ctx); err != nil && !errors.Is(err, tui.ErrAborted) {
		return err
	}

	for _, key := range changedKeys(before, session.Collect()) {
		fmt.Fprintf(stdout, "changed: %s\n", key)
	}
	return nil
}

// changedKeys lists the dotted paths whose values differ between two
// documents, sorted.
func changedKeys(before, after document.Document) []string {
	beforeKeys, beforeValues := document.Flatten(before)
	afterKeys, afterValues := document.Flatten(after)

	seen := make(map[string]bool, len(afterKeys))
	var changed []string
	for _, key := range afterKeys {
		seen[key] = true
		old, ok := beforeValues[key]
		if !ok || !cmp.Equal(old, afterValues[key]) {
			changed = append(changed, key)
		}
	}
	for _, key := range beforeKeys {
		if !seen[key] {
			changed = append(changed, key)
		}
	}
	sort.Strings(changed)
	return changed
}
