package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-settingsform/pkg/document"
	"github.com/goliatone/go-settingsform/pkg/testsupport"
)

func TestGenerate_Standalone(t *testing.T) {
	dir := t.TempDir()
	schemaPath := testsupport.WriteSchemaFile(t, dir, "schema.json", testsupport.DeviceSchema)
	configPath := filepath.Join(dir, "config.json")
	if err := os.WriteFile(configPath, []byte(`{"wifi":{"ssid":"home"}}`), 0o644); err != nil {
		t.Fatalf("seed config: %v", err)
	}

	var stdout, stderr bytes.Buffer
	err := runGenerate(context.Background(), []string{
		"--schema", schemaPath, "--config", configPath, "--accent", "#123456",
	}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("generate: %v (%s)", err, stderr.String())
	}

	page := stdout.String()
	for _, want := range []string{"<!DOCTYPE html>", "<style>", `value="home"`, "--accent: #123456;"} {
		if !strings.Contains(page, want) {
			t.Fatalf("expected %q in generated page", want)
		}
	}
	if strings.Contains(page, `rel="stylesheet"`) {
		t.Fatalf("standalone page should not link the stylesheet")
	}
	if strings.Contains(page, "Configuration loaded") {
		t.Fatalf("the prefill notice should not be rendered")
	}
}

func TestGenerate_WritesFile(t *testing.T) {
	dir := t.TempDir()
	schemaPath := testsupport.WriteSchemaFile(t, dir, "schema.json", testsupport.DeviceSchema)
	out := filepath.Join(dir, "index.html")

	var stdout, stderr bytes.Buffer
	if err := runGenerate(context.Background(), []string{"--schema", schemaPath, "--out", out}, &stdout, &stderr); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if stdout.Len() != 0 {
		t.Fatalf("expected nothing on stdout, got %q", stdout.String())
	}
	raw, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !bytes.Contains(raw, []byte("<h1>Device</h1>")) {
		t.Fatalf("unexpected output file contents")
	}
}

func TestLint(t *testing.T) {
	dir := t.TempDir()
	clean := testsupport.WriteSchemaFile(t, dir, "clean.json", testsupport.DeviceSchema)
	broken := testsupport.WriteSchemaFile(t, dir, "broken.json", `{
  "title": "Broken",
  "pages": [{"id": "p", "sections": [{"fields": [
    {"name": "a", "type": "slider"},
    {"name": "b", "type": "number", "min": 10, "default": 2},
    {"name": "b"}
  ]}]}]
}`)

	var stdout, stderr bytes.Buffer
	if err := runLint(context.Background(), []string{clean}, &stdout, &stderr); err != nil {
		t.Fatalf("clean schema: %v\n%s", err, stdout.String())
	}
	if stdout.Len() != 0 {
		t.Fatalf("expected no findings, got %q", stdout.String())
	}

	stdout.Reset()
	err := runLint(context.Background(), []string{broken}, &stdout, &stderr)
	if !errors.Is(err, errFindings) {
		t.Fatalf("expected lint failure, got %v", err)
	}
	for _, want := range []string{"unknown type", "fails its own constraints", "duplicate field name"} {
		if !strings.Contains(stdout.String(), want) {
			t.Fatalf("expected %q in findings:\n%s", want, stdout.String())
		}
	}
}

func TestLint_StrictAndJSON(t *testing.T) {
	dir := t.TempDir()
	warn := testsupport.WriteSchemaFile(t, dir, "warn.json", `{
  "pages": [{"id": "p", "sections": [{"fields": [{"name": "a", "validator": "checksum"}]}]}]
}`)

	var stdout, stderr bytes.Buffer
	if err := runLint(context.Background(), []string{"--json", warn}, &stdout, &stderr); err != nil {
		t.Fatalf("warnings alone should pass: %v", err)
	}
	if !strings.Contains(stdout.String(), `"severity": "warning"`) {
		t.Fatalf("unexpected json report:\n%s", stdout.String())
	}
	if err := runLint(context.Background(), []string{"--strict", warn}, &stdout, &stderr); !errors.Is(err, errFindings) {
		t.Fatalf("strict lint should fail on warnings, got %v", err)
	}
}

func TestOpenAPI(t *testing.T) {
	dir := t.TempDir()
	schemaPath := testsupport.WriteSchemaFile(t, dir, "schema.json", testsupport.DeviceSchema)

	var stdout, stderr bytes.Buffer
	if err := runOpenAPI(context.Background(), []string{"--schema", schemaPath, "--format", "yaml", "--config-path", "settings"}, &stdout, &stderr); err != nil {
		t.Fatalf("openapi: %v", err)
	}
	for _, want := range []string{"openapi: 3.0.3", "/settings:", "/reboot:"} {
		if !strings.Contains(stdout.String(), want) {
			t.Fatalf("expected %q in document:\n%s", want, stdout.String())
		}
	}

	if err := runOpenAPI(context.Background(), []string{"--schema", schemaPath, "--format", "toml"}, &stdout, &stderr); err == nil {
		t.Fatalf("expected an error for an unknown format")
	}
}

func TestFlags(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if err := runLint(context.Background(), []string{"--nope"}, &stdout, &stderr); !errors.Is(err, errUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if err := runGenerate(context.Background(), []string{"--schema", filepath.Join(t.TempDir(), "absent.json")}, &stdout, &stderr); err == nil {
		t.Fatalf("expected an error for a missing schema")
	}
}

func TestUsage(t *testing.T) {
	var buf bytes.Buffer
	usage(&buf)
	for name := range commands {
		if !strings.Contains(buf.String(), "  "+name) {
			t.Fatalf("usage does not list %q:\n%s", name, buf.String())
		}
	}
}

func TestChangedKeys(t *testing.T) {
	before := document.Document{
		"wifi": map[string]any{"ssid": "home", "enabled": true},
		"mqtt": map[string]any{"port": float64(1883), "host": "broker"},
	}
	after := document.Document{
		"wifi": map[string]any{"ssid": "office", "enabled": true},
		"mqtt": map[string]any{"port": float64(8883)},
		"ota":  map[string]any{"url": "http://fw"},
	}

	want := []string{"mqtt.host", "mqtt.port", "ota.url", "wifi.ssid"}
	if diff := cmp.Diff(want, changedKeys(before, after)); diff != "" {
		t.Fatalf("changed keys mismatch (-want +got):\n%s", diff)
	}
	if got := changedKeys(before, before); len(got) != 0 {
		t.Fatalf("expected no changes, got %v", got)
	}
}
