package schema_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-settingsform/pkg/schema"
)

const networkSchemaJSON = `{
  "title": "Gateway",
  "theme": {"accent": "#22a6b3"},
  "pages": [
    {
      "id": "net",
      "title": "Network",
      "sections": [
        {
          "legend": "Wi-Fi",
          "fields": [
            {"name": "wifi.ssid", "label": "SSID", "required": true, "maxlength": 32},
            {"name": "wifi.mode", "type": "select", "options": ["sta", {"value": "ap", "label": "Access point"}], "default": "sta"},
            {"name": "wifi.enabled", "type": "switch", "default": true}
          ]
        }
      ],
      "buttons": [
        {"label": "Reboot", "endpoint": "/reboot", "method": "POST", "confirm": "Reboot now?"}
      ]
    }
  ]
}`

func TestParse_JSON(t *testing.T) {
	s, err := schema.Parse([]byte(networkSchemaJSON), "net.json")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if s.DisplayTitle() != "Gateway" {
		t.Fatalf("unexpected title %q", s.DisplayTitle())
	}
	if s.Theme == nil || s.Theme.Accent != "#22a6b3" {
		t.Fatalf("theme not decoded: %+v", s.Theme)
	}

	fields := s.Fields()
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Name)
	}
	if diff := cmp.Diff([]string{"wifi.ssid", "wifi.mode", "wifi.enabled"}, names); diff != "" {
		t.Fatalf("field order mismatch (-want +got):\n%s", diff)
	}

	wantOptions := []schema.Option{
		{Value: "sta", Label: "sta"},
		{Value: "ap", Label: "Access point"},
	}
	if diff := cmp.Diff(wantOptions, fields[1].Options); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}

	if fields[0].HasDefault {
		t.Fatalf("ssid should not report a default")
	}
	if !fields[1].HasDefault || fields[1].Default != "sta" {
		t.Fatalf("mode default not decoded: %+v", fields[1])
	}
	if fields[0].MaxLength == nil || *fields[0].MaxLength != 32 {
		t.Fatalf("maxlength not decoded")
	}
	if fields[2].Kind() != schema.KindSwitch || !fields[2].Kind().IsBoolean() {
		t.Fatalf("switch kind not recognised: %q", fields[2].Kind())
	}
	if fields[0].Kind() != schema.KindText {
		t.Fatalf("empty type should default to text, got %q", fields[0].Kind())
	}

	page, ok := s.Page("net")
	if !ok || len(page.Buttons) != 1 || page.Buttons[0].Behaviour() != schema.ButtonCustom {
		t.Fatalf("page buttons not decoded: %+v", page.Buttons)
	}
}

func TestParse_YAML(t *testing.T) {
	raw := `
pages:
  - id: mqtt
    sections:
      - fields:
          - name: mqtt.broker
            validator: ip_port
            required: true
          - name: mqtt.qos
            type: number
            min: 0
            max: 2
            default: 1
defaultButtons:
  - kind: save
  - kind: load
    label: Reload
`
	s, err := schema.Parse([]byte(raw), "mqtt.yaml")
	if err != nil {
		t.Fatalf("parse yaml: %v", err)
	}
	fields := s.Fields()
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}
	if fields[0].Validator != schema.ValidatorIPPort {
		t.Fatalf("validator not decoded: %q", fields[0].Validator)
	}
	if fields[1].Min == nil || *fields[1].Min != 0 || fields[1].Max == nil || *fields[1].Max != 2 {
		t.Fatalf("bounds not decoded: %+v", fields[1])
	}
	if fields[1].Default != float64(1) {
		t.Fatalf("default should decode as a JSON number, got %#v", fields[1].Default)
	}
	buttons := s.Buttons()
	if len(buttons) != 2 || buttons[0].DisplayLabel() != "Save" || buttons[1].DisplayLabel() != "Reload" {
		t.Fatalf("unexpected buttons: %+v", buttons)
	}
}

func TestSchema_DefaultButtons(t *testing.T) {
	s := schema.MustParse([]byte(`{"pages": []}`))
	want := []schema.ButtonSpec{{Label: "Save All", Kind: schema.ButtonSave}}
	if diff := cmp.Diff(want, s.Buttons()); diff != "" {
		t.Fatalf("default buttons mismatch (-want +got):\n%s", diff)
	}

	empty := schema.MustParse([]byte(`{"pages": [], "defaultButtons": []}`))
	if len(empty.Buttons()) != 0 {
		t.Fatalf("explicit empty button list must be kept")
	}
}

func TestParse_Malformed(t *testing.T) {
	cases := map[string]string{
		"empty":      "   ",
		"not object": `["pages"]`,
		"bad yaml":   "pages: [unterminated",
		"bad types":  `{"pages": 5}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := schema.Parse([]byte(raw), name); err == nil {
				t.Fatalf("expected error for %s", name)
			}
		})
	}

	if _, err := schema.Parse(nil, "nil"); !errors.Is(err, schema.ErrEmptySchema) {
		t.Fatalf("expected ErrEmptySchema, got %v", err)
	}
}

func TestParse_StructuralIssues(t *testing.T) {
	raw := `{
  "pages": [
    {"title": "No id", "sections": [{"fields": [{"label": "nameless"}]}]},
    {"id": "ok", "buttons": [{"label": "Call"}]}
  ]
}`
	_, err := schema.Parse([]byte(raw), "broken.json")
	var verr *schema.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	got := make(map[string]string, len(verr.Issues))
	for _, issue := range verr.Issues {
		got[issue.Path] = issue.Message
	}
	want := map[string]string{
		"pages[0].id":                       "is required",
		"pages[0].sections[0].fields[0].name": "is required",
		"pages[1].buttons[0].endpoint":        "is required for custom buttons",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("issues mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(err.Error(), "broken.json") {
		t.Fatalf("error should name the source: %v", err)
	}
}

func TestParse_PageButtonsAreActions(t *testing.T) {
	s := schema.MustParse([]byte(`{"pages": [{"id": "sys", "buttons": [
  {"kind": "save", "endpoint": "/other", "method": "POST"}
]}]}`))
	page, _ := s.Page("sys")
	if got := page.Buttons[0]; got.Behaviour() != schema.ButtonCustom || got.DisplayLabel() != "Action" || got.Endpoint != "/other" {
		t.Fatalf("page button should be an endpoint call: %+v", got)
	}

	_, err := schema.Parse([]byte(`{"pages": [{"id": "sys", "buttons": [{"kind": "load"}]}]}`), "test")
	var verr *schema.ValidationError
	if !errors.As(err, &verr) || len(verr.Issues) != 1 || verr.Issues[0].Path != "pages[0].buttons[0].endpoint" {
		t.Fatalf("page button without endpoint should be rejected, got %v", err)
	}
}

func TestFieldID(t *testing.T) {
	cases := map[string]string{
		"wifi.ssid":      "fld_wifi_ssid",
		"mqtt.broker-ip": "fld_mqtt_broker_ip",
		"plain_name":     "fld_plain_name",
		"név":            "fld_n_v",
	}
	for in, want := range cases {
		if got := schema.FieldID(in); got != want {
			t.Fatalf("FieldID(%q) = %q, want %q", in, got, want)
		}
	}
	if got := schema.ErrorID("wifi.ssid"); got != "fld_wifi_ssid_err" {
		t.Fatalf("unexpected error id %q", got)
	}
}

func TestParseSource(t *testing.T) {
	src, err := schema.ParseSource("https://device.local/schema.json")
	if err != nil || src.Kind() != schema.SourceKindURL {
		t.Fatalf("expected url source, got %v %v", src, err)
	}
	src, err = schema.ParseSource("./conf/schema.json")
	if err != nil || src.Kind() != schema.SourceKindFile || src.Location() != "conf/schema.json" {
		t.Fatalf("expected cleaned file source, got %v %v", src, err)
	}
	if _, err := schema.ParseSource("  "); err == nil {
		t.Fatalf("expected error for blank source")
	}
}
