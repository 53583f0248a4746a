package openapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-settingsform/pkg/openapi"
	"github.com/goliatone/go-settingsform/pkg/testsupport"
)

func TestDescribe_Configuration(t *testing.T) {
	s := testsupport.MustSchema(t, testsupport.DeviceSchema)

	doc, err := openapi.Describe(context.Background(), s)
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	if doc.Info.Title != "Device" || doc.OpenAPI != openapi.Version {
		t.Fatalf("unexpected info %+v", doc.Info)
	}

	shape := doc.Components.Schemas[openapi.ConfigurationSchema].Value
	if diff := cmp.Diff([]string{"mqtt", "wifi"}, shape.Required); diff != "" {
		t.Fatalf("root required mismatch (-want +got):\n%s", diff)
	}

	wifi := shape.Properties["wifi"].Value
	if diff := cmp.Diff([]string{"enabled", "psk", "ssid"}, wifi.Required); diff != "" {
		t.Fatalf("wifi required mismatch (-want +got):\n%s", diff)
	}
	ssid := wifi.Properties["ssid"].Value
	if !ssid.Type.Is("string") || ssid.Title != "SSID" {
		t.Fatalf("unexpected ssid schema %+v", ssid)
	}
	if ssid.Description != "Network name" {
		t.Fatalf("help should be reduced to text, got %q", ssid.Description)
	}
	psk := wifi.Properties["psk"].Value
	if psk.Format != "password" || psk.MinLength != 8 {
		t.Fatalf("unexpected psk schema %+v", psk)
	}
	enabled := wifi.Properties["enabled"].Value
	if !enabled.Type.Is("boolean") || enabled.Default != true {
		t.Fatalf("unexpected enabled schema %+v", enabled)
	}

	mqtt := shape.Properties["mqtt"].Value
	port := mqtt.Properties["port"].Value
	if !port.Type.Is("number") || !port.Nullable || *port.Min != 1 || *port.Max != 65535 {
		t.Fatalf("unexpected port schema %+v", port)
	}
	if port.Extensions[openapi.ExtKind] != "number" {
		t.Fatalf("kind extension missing: %v", port.Extensions)
	}
	broker := mqtt.Properties["broker"].Value
	if broker.Extensions[openapi.ExtValidator] != "ip_port" {
		t.Fatalf("validator extension missing: %v", broker.Extensions)
	}
	mode := mqtt.Properties["mode"].Value
	if diff := cmp.Diff([]any{"tcp", "tls"}, mode.Enum); diff != "" {
		t.Fatalf("enum mismatch (-want +got):\n%s", diff)
	}
	notes := mqtt.Properties["notes"].Value
	if notes.MaxLength == nil || *notes.MaxLength != 64 {
		t.Fatalf("unexpected notes schema %+v", notes)
	}
}

func TestDescribe_Paths(t *testing.T) {
	s := testsupport.MustSchema(t, testsupport.DeviceSchema)

	doc, err := openapi.Describe(context.Background(), s, openapi.WithConfigPath("settings"), openapi.WithServerURL("http://device.local"))
	if err != nil {
		t.Fatalf("describe: %v", err)
	}

	config := doc.Paths.Value("/settings")
	if config == nil || config.Get == nil || config.Post == nil {
		t.Fatalf("configuration path missing: %+v", doc.Paths.Map())
	}
	if config.Post.RequestBody == nil || config.Post.Responses.Status(http.StatusNoContent) == nil {
		t.Fatalf("post should take a body and answer 204")
	}

	reboot := doc.Paths.Value("/reboot")
	if reboot == nil || reboot.Post == nil {
		t.Fatalf("button endpoint missing: %+v", doc.Paths.Map())
	}
	if reboot.Post.OperationID != "button_net_0" || reboot.Post.Summary != "Reboot" {
		t.Fatalf("unexpected button operation %+v", reboot.Post)
	}
	if !strings.Contains(reboot.Post.Description, "Reboot now?") {
		t.Fatalf("confirmation prompt not described: %q", reboot.Post.Description)
	}
	if len(doc.Servers) != 1 || doc.Servers[0].URL != "http://device.local" {
		t.Fatalf("unexpected servers %+v", doc.Servers)
	}
}

func TestDescribe_SkipsAbsoluteAndDuplicateEndpoints(t *testing.T) {
	s := testsupport.MustSchema(t, `{
  "pages": [{"id": "p", "buttons": [
    {"label": "Remote", "endpoint": "https://example.com/x", "method": "POST"},
    {"label": "First", "endpoint": "/dup", "method": "post", "includeForm": true},
    {"label": "Second", "endpoint": "/dup", "method": "POST"},
    {"label": "Ping", "endpoint": "ping?x=1"}
  ]}]
}`)

	doc, err := openapi.Describe(context.Background(), s)
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	if doc.Paths.Value("/x") != nil {
		t.Fatalf("absolute endpoints must be skipped")
	}
	dup := doc.Paths.Value("/dup")
	if dup == nil || dup.Post.Summary != "First" {
		t.Fatalf("first declared button should win: %+v", dup)
	}
	if dup.Post.RequestBody.Value.Content.Get("application/json").Schema.Ref == "" {
		t.Fatalf("includeForm should reference the configuration schema")
	}
	ping := doc.Paths.Value("/ping")
	if ping == nil || ping.Get == nil || ping.Get.OperationID != "button_p_3" {
		t.Fatalf("relative endpoint should be rooted: %+v", doc.Paths.Map())
	}
}

func TestConfiguration_ScalarReplacedByObject(t *testing.T) {
	s := testsupport.MustSchema(t, `{
  "pages": [{"id": "p", "sections": [{"fields": [
    {"name": "a", "type": "number"},
    {"name": "a.b"}
  ]}]}]
}`)
	shape := openapi.Configuration(s)
	a := shape.Properties["a"].Value
	if !a.Type.Is("object") || a.Properties["b"] == nil {
		t.Fatalf("later nested field should replace the scalar: %+v", a)
	}
}

func TestDescribe_NilSchema(t *testing.T) {
	if _, err := openapi.Describe(context.Background(), nil); !errors.Is(err, openapi.ErrNilSchema) {
		t.Fatalf("expected ErrNilSchema, got %v", err)
	}
}

func TestMarshal(t *testing.T) {
	doc, err := openapi.Describe(context.Background(), testsupport.MustSchema(t, testsupport.DeviceSchema))
	if err != nil {
		t.Fatalf("describe: %v", err)
	}

	raw, err := openapi.Marshal(doc, openapi.FormatJSON)
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if decoded["openapi"] != openapi.Version {
		t.Fatalf("unexpected json payload %s", raw)
	}
	if !strings.Contains(string(raw), `"$ref": "#/components/schemas/Configuration"`) {
		t.Fatalf("expected schema references in %s", raw)
	}

	raw, err = openapi.Marshal(doc, openapi.FormatYAML)
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	decoded = nil
	if err := yaml.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("decode yaml: %v", err)
	}
	if decoded["openapi"] != openapi.Version {
		t.Fatalf("unexpected yaml payload %s", raw)
	}

	if _, err := openapi.Marshal(doc, "toml"); err == nil {
		t.Fatalf("expected an error for an unknown format")
	}
}

func TestDescribe_RequestBodyOnlyForPost(t *testing.T) {
	s := testsupport.MustSchema(t, `{
  "pages": [{"id": "p", "buttons": [
    {"label": "Replace", "endpoint": "/slot", "method": "PUT", "includeForm": true},
    {"label": "Store", "endpoint": "/slot", "method": "POST", "payload": {"slot": 1}}
  ]}]
}`)

	doc, err := openapi.Describe(context.Background(), s)
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	slot := doc.Paths.Value("/slot")
	if slot == nil || slot.Put == nil || slot.Post == nil {
		t.Fatalf("expected PUT and POST on /slot: %+v", slot)
	}
	if slot.Put.RequestBody != nil {
		t.Fatalf("PUT buttons send no body")
	}
	if slot.Post.RequestBody == nil {
		t.Fatalf("POST payload should be described")
	}
}
