package validation_test

import (
	"testing"

	"github.com/goliatone/go-settingsform/pkg/schema"
	"github.com/goliatone/go-settingsform/pkg/validation"
)

func TestNamedRules(t *testing.T) {
	cases := []struct {
		rule  schema.ValidatorName
		value string
		want  string
	}{
		{schema.ValidatorMAC, "AA:BB:CC:DD:EE:FF", ""},
		{schema.ValidatorMAC, "aa:bb:cc:dd:ee:0f", ""},
		{schema.ValidatorMAC, "AA:BB:CC:DD:EE", validation.MsgInvalidMAC},
		{schema.ValidatorMAC, "AA-BB-CC-DD-EE-FF", validation.MsgInvalidMAC},

		{schema.ValidatorPort, "8080", ""},
		{schema.ValidatorPort, "1", ""},
		{schema.ValidatorPort, "65535", ""},
		{schema.ValidatorPort, "70000", validation.MsgInvalidPort},
		{schema.ValidatorPort, "0", validation.MsgInvalidPort},
		{schema.ValidatorPort, "80.5", validation.MsgInvalidPort},
		{schema.ValidatorPort, "http", validation.MsgInvalidPort},
		{schema.ValidatorPort, "", validation.MsgRequired},

		{schema.ValidatorIP, "192.168.1.10", ""},
		{schema.ValidatorIP, "255.255.255.255", ""},
		{schema.ValidatorIP, "256.1.1.1", validation.MsgInvalidIPv4},
		{schema.ValidatorIP, "01.2.3.4", validation.MsgInvalidIPv4},
		{schema.ValidatorIP, "1.2.3", validation.MsgInvalidIPv4},

		{schema.ValidatorIPPort, "10.0.0.5:443", ""},
		{schema.ValidatorIPPort, "999.0.0.1:443", validation.MsgInvalidIPv4},
		{schema.ValidatorIPPort, "999.0.0.1:99999", validation.MsgInvalidIPv4},
		{schema.ValidatorIPPort, "10.0.0.5:70000", validation.MsgInvalidPort},
		{schema.ValidatorIPPort, "10.0.0.5:", validation.MsgInvalidPort},
		{schema.ValidatorIPPort, "10.0.0.5", validation.MsgInvalidPort},

		{schema.ValidatorURL, "https://host/path", ""},
		{schema.ValidatorURL, "http://10.0.0.1:8080", ""},
		{schema.ValidatorURL, "ftp://host", validation.MsgURLScheme},
		{schema.ValidatorURL, "host/path", validation.MsgInvalidURL},
		{schema.ValidatorURL, "http://", validation.MsgInvalidURL},
	}

	for _, tc := range cases {
		rule, ok := validation.RuleFor(tc.rule)
		if !ok {
			t.Fatalf("rule %q not registered", tc.rule)
		}
		if got := rule(tc.value); got != tc.want {
			t.Fatalf("%s(%q) = %q, want %q", tc.rule, tc.value, got, tc.want)
		}
	}
}

func TestNamedRules_ThroughEvaluate(t *testing.T) {
	def := schema.FieldDefinition{Name: "mqtt.broker", Validator: schema.ValidatorIPPort}
	if res := validation.Evaluate(def, "999.0.0.1:443"); res.OK || res.Message != validation.MsgInvalidIPv4 {
		t.Fatalf("unexpected result %+v", res)
	}
	if res := validation.Evaluate(def, "10.0.0.5:443"); !res.OK {
		t.Fatalf("unexpected failure %+v", res)
	}

	port := schema.FieldDefinition{Name: "port", Type: schema.KindNumber, Validator: schema.ValidatorPort}
	if res := validation.Evaluate(port, float64(8080)); !res.OK {
		t.Fatalf("numeric port should pass: %+v", res)
	}
}

func TestRuleFor_Unknown(t *testing.T) {
	if _, ok := validation.RuleFor("hostname"); ok {
		t.Fatalf("unknown rule should not resolve")
	}
	for _, name := range schema.ValidatorNames() {
		if _, ok := validation.RuleFor(name); !ok {
			t.Fatalf("built-in rule %q missing from dispatch table", name)
		}
	}
}
