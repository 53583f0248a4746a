package validation

import (
	"math"
	"net/url"
	"regexp"
	"strings"

	"github.com/goliatone/go-settingsform/pkg/schema"
)

// Messages produced by the named rules.
const (
	MsgInvalidMAC  = "Invalid MAC (AA:BB:CC:DD:EE:FF)"
	MsgInvalidPort = "Port must be 1–65535"
	MsgInvalidIPv4 = "Invalid IPv4 address"
	MsgInvalidURL  = "Invalid URL"
	MsgURLScheme   = "Use http or https"
)

// Rule checks a stringified value and returns a failure message, or "" when
// the value passes.
type Rule func(value string) string

var (
	macPattern  = regexp.MustCompile(`^([0-9A-Fa-f]{2}:){5}[0-9A-Fa-f]{2}$`)
	ipv4Pattern = regexp.MustCompile(`^(?:(?:25[0-5]|2[0-4]\d|1\d\d|[1-9]?\d)\.){3}(?:25[0-5]|2[0-4]\d|1\d\d|[1-9]?\d)$`)
)

var rules = map[schema.ValidatorName]Rule{
	schema.ValidatorMAC:    checkMAC,
	schema.ValidatorPort:   checkPort,
	schema.ValidatorIP:     checkIPv4,
	schema.ValidatorIPPort: checkIPPort,
	schema.ValidatorURL:    checkURL,
}

func lookupRule(name schema.ValidatorName) (Rule, bool) {
	if name == "" {
		return nil, false
	}
	rule, ok := rules[name]
	return rule, ok
}

// RuleFor exposes a named rule, for hosts that validate outside a field.
func RuleFor(name schema.ValidatorName) (Rule, bool) {
	return lookupRule(name)
}

func checkMAC(value string) string {
	if macPattern.MatchString(value) {
		return ""
	}
	return MsgInvalidMAC
}

// checkPort demands a value even on optional fields.
func checkPort(value string) string {
	if value == "" {
		return MsgRequired
	}
	if !isPort(value) {
		return MsgInvalidPort
	}
	return ""
}

func checkIPv4(value string) string {
	if ipv4Pattern.MatchString(value) {
		return ""
	}
	return MsgInvalidIPv4
}

func checkIPPort(value string) string {
	host, port := value, ""
	if idx := strings.LastIndex(value, ":"); idx >= 0 {
		host, port = value[:idx], value[idx+1:]
	}
	if msg := checkIPv4(host); msg != "" {
		return msg
	}
	if port == "" || !isPort(port) {
		return MsgInvalidPort
	}
	return ""
}

func checkURL(value string) string {
	u, err := url.Parse(strings.TrimSpace(value))
	if err != nil || u.Scheme == "" {
		return MsgInvalidURL
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return MsgURLScheme
	}
	if u.Host == "" {
		return MsgInvalidURL
	}
	return ""
}

// isPort accepts integral values in [1, 65535], including forms such as
// "80.0" that parse to an integer.
func isPort(value string) bool {
	n, ok := ParseNumber(value)
	if !ok || n != math.Trunc(n) {
		return false
	}
	return n >= 1 && n <= 65535
}
