package settingsform_test

import (
	"context"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goliatone/go-settingsform"
	"github.com/goliatone/go-settingsform/pkg/document"
	"github.com/goliatone/go-settingsform/pkg/renderers/html"
	"github.com/goliatone/go-settingsform/pkg/testsupport"
)

func TestLoadSchema_File(t *testing.T) {
	path := testsupport.WriteSchemaFile(t, t.TempDir(), "schema.json", testsupport.DeviceSchema)
	sch, err := settingsform.LoadSchema(context.Background(), path)
	if err != nil {
		t.Fatalf("load schema: %v", err)
	}
	if sch.DisplayTitle() != "Device" || len(sch.Pages) != 2 {
		t.Fatalf("unexpected schema %q with %d pages", sch.DisplayTitle(), len(sch.Pages))
	}
}

func TestLoadSchema_URL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(testsupport.DeviceSchema))
	}))
	defer srv.Close()

	sch, err := settingsform.LoadSchema(context.Background(), srv.URL+"/schema.json")
	if err != nil {
		t.Fatalf("load schema: %v", err)
	}
	if len(sch.Fields()) != 7 {
		t.Fatalf("expected 7 fields, got %d", len(sch.Fields()))
	}
}

func TestGenerateHTML(t *testing.T) {
	sch := testsupport.MustSchema(t, testsupport.DeviceSchema)
	values := document.Document{"wifi": map[string]any{"ssid": "home"}, "mqtt": map[string]any{"port": float64(8883)}}

	out, err := settingsform.GenerateHTML(context.Background(), sch, values, settingsform.RenderOptions{Standalone: true})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	page := string(out)
	for _, want := range []string{`value="home"`, `value="8883"`, "<h1>Device</h1>"} {
		if !strings.Contains(page, want) {
			t.Fatalf("expected %q in page", want)
		}
	}
}

func TestEmbeddedFS(t *testing.T) {
	if _, err := fs.ReadFile(settingsform.EmbeddedTemplates(), "templates/page.tpl"); err != nil {
		t.Fatalf("page template: %v", err)
	}
	data, err := fs.ReadFile(settingsform.AssetsFS(), html.StylesheetName)
	if err != nil {
		t.Fatalf("stylesheet: %v", err)
	}
	if !strings.Contains(string(data), "--accent") {
		t.Fatalf("stylesheet does not use the accent token")
	}
}
