package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/goliatone/go-settingsform"
	"github.com/goliatone/go-settingsform/pkg/form"
	"github.com/goliatone/go-settingsform/pkg/render"
)

const snapshotRendererName = "view-snapshot"

// snapshotRenderer serialises the assembled view instead of drawing it, so
// renderer authors can see exactly what a template receives.
type snapshotRenderer struct {
	path string
}

func (r *snapshotRenderer) Name() string {
	return snapshotRendererName
}

func (r *snapshotRenderer) ContentType() string {
	return "application/json"
}

func (r *snapshotRenderer) Render(_ context.Context, view form.View, _ render.RenderOptions) ([]byte, error) {
	payload, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(r.path, payload, 0o644); err != nil {
		return nil, err
	}
	return payload, nil
}

func main() {
	var (
		schemaPath = flag.String("schema", "examples/fixtures/esp32.json", "settings schema path")
		configPath = flag.String("values", "", "optional JSON document applied before the snapshot")
		validate   = flag.Bool("validate", true, "validate every field before the snapshot")
		outputPath = flag.String("output", "examples/fixtures/esp32.view.json", "output path for the serialised view")
	)
	flag.Parse()

	ctx := context.Background()

	registry := render.NewRegistry()
	registry.MustRegister(&snapshotRenderer{path: *outputPath})

	sch, err := settingsform.LoadSchema(ctx, *schemaPath)
	if err != nil {
		log.Fatalf("load schema: %v", err)
	}
	session, err := settingsform.NewSession(sch)
	if err != nil {
		log.Fatalf("session: %v", err)
	}
	defer session.Close()

	if *configPath != "" {
		raw, err := os.ReadFile(*configPath)
		if err != nil {
			log.Fatalf("read values: %v", err)
		}
		var doc settingsform.Document
		if err := json.Unmarshal(raw, &doc); err != nil {
			log.Fatalf("decode values: %v", err)
		}
		if err := session.Apply(doc); err != nil {
			log.Fatalf("apply values: %v", err)
		}
	}
	if *validate {
		session.ValidateAll()
	}

	if _, err := registry.MustGet(snapshotRendererName).Render(ctx, session.View(), render.RenderOptions{}); err != nil {
		log.Fatalf("snapshot: %v", err)
	}
	fmt.Printf("View snapshot written to %s\n", *outputPath)
}
