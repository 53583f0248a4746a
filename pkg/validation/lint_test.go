package validation_test

import (
	"strings"
	"testing"

	"github.com/goliatone/go-settingsform/pkg/schema"
	"github.com/goliatone/go-settingsform/pkg/validation"
)

func TestLint(t *testing.T) {
	s := schema.MustParse([]byte(`{
  "pages": [
    {"id": "a", "sections": [{"fields": [
      {"name": "net.port", "type": "number", "min": 1, "default": 0},
      {"name": "net.host", "validator": "hostname", "pattern": "(["},
      {"name": "net.mode", "type": "select"}
    ]}]},
    {"id": "a", "sections": [{"fields": [
      {"name": "net.port", "type": "color"}
    ]}]}
  ]
}`))

	findings := validation.Lint(s)
	if !validation.HasErrors(findings) {
		t.Fatalf("expected errors, got %v", findings)
	}

	want := []string{
		"pages[0].sections[0].fields[0].default",
		"pages[0].sections[0].fields[1].validator",
		"pages[0].sections[0].fields[1].pattern",
		"pages[0].sections[0].fields[2].options",
		"pages[1].id",
		"pages[1].sections[0].fields[0].name",
		"pages[1].sections[0].fields[0].type",
	}
	got := make(map[string]validation.Finding, len(findings))
	for _, f := range findings {
		got[f.Path] = f
	}
	for _, path := range want {
		if _, ok := got[path]; !ok {
			t.Fatalf("missing finding for %s in %v", path, findings)
		}
	}
	if len(findings) != len(want) {
		t.Fatalf("expected %d findings, got %d: %v", len(want), len(findings), findings)
	}
	if !strings.Contains(got["pages[1].sections[0].fields[0].name"].Message, "pages[0].sections[0].fields[0]") {
		t.Fatalf("duplicate finding should point at the first definition: %v", got["pages[1].sections[0].fields[0].name"])
	}
}

func TestLint_Clean(t *testing.T) {
	s := schema.MustParse([]byte(`{"pages": [{"id": "a", "sections": [{"fields": [
      {"name": "wifi.ssid", "required": true, "default": "home"},
      {"name": "wifi.on", "type": "checkbox", "default": false}
    ]}]}]}`))
	if findings := validation.Lint(s); len(findings) != 0 {
		t.Fatalf("expected no findings, got %v", findings)
	}
}
