// Package configstore persists the configuration document behind the
// /config resource. A FileStore keeps one JSON or YAML file, a SQLStore keeps
// an append-only revision history in SQLite, and a MemoryStore serves tests
// and demos.
package configstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-settingsform/pkg/document"
	"github.com/goliatone/go-settingsform/pkg/form"
)

// Store reads and replaces the held document.
type Store interface {
	Get(ctx context.Context) (document.Document, error)
	Put(ctx context.Context, doc document.Document) error
}

// Driver names a Store implementation.
type Driver string

const (
	DriverFile   Driver = "file"
	DriverSQLite Driver = "sqlite"
	DriverMemory Driver = "memory"
)

// ErrUnknownDriver is returned by Open for an unsupported driver.
var ErrUnknownDriver = errors.New("configstore: unknown driver")

// Open builds the store for driver. path is the file or database location;
// the memory driver ignores it.
func Open(ctx context.Context, driver Driver, path string) (Store, error) {
	switch Driver(strings.ToLower(string(driver))) {
	case DriverFile, "":
		return NewFileStore(path)
	case DriverSQLite:
		return OpenSQLStore(ctx, path)
	case DriverMemory:
		return NewMemoryStore(nil), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

// normalize round-trips a decoded value through JSON so every store returns
// the same shapes: nested map[string]any, []any and float64 numbers.
func normalize(value any) (document.Document, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var doc document.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		doc = document.Document{}
	}
	return doc, nil
}

// Service adapts a Store to form.ConfigService so a session hosted next to
// the store skips the HTTP round trip.
type Service struct {
	Store Store
}

var _ form.ConfigService = Service{}

// Fetch implements form.ConfigService.
func (s Service) Fetch(ctx context.Context) (document.Document, error) {
	return s.Store.Get(ctx)
}

// Submit implements form.ConfigService.
func (s Service) Submit(ctx context.Context, doc document.Document) error {
	return s.Store.Put(ctx, doc)
}
