package validation

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/goliatone/go-settingsform/pkg/schema"
)

// Messages shared by the engine and the named rules.
const (
	MsgRequired      = "This field is required"
	MsgInvalidFormat = "Invalid format"
	MsgNotANumber    = "Must be a number"
)

// Result is the outcome of evaluating one field.
type Result struct {
	OK      bool
	Message string
}

// Valid is the passing result.
var Valid = Result{OK: true}

// Fail builds a failing result.
func Fail(message string) Result {
	return Result{OK: false, Message: message}
}

// Evaluate runs the field's rules against value. Supported value types are
// nil (absent), bool, string, and the numeric kinds decoded from documents.
func Evaluate(def schema.FieldDefinition, value any) Result {
	empty := isEmpty(value)
	kind := def.Kind()

	if def.Required {
		if kind.IsBoolean() {
			if b, ok := value.(bool); !ok || !b {
				return Fail(MsgRequired)
			}
		} else if empty {
			return Fail(MsgRequired)
		}
	}

	if empty {
		return Valid
	}

	if rule, ok := lookupRule(def.Validator); ok {
		if msg := rule(stringify(value)); msg != "" {
			return Fail(msg)
		}
	}

	if def.Pattern != "" {
		if re := compilePattern(def.Pattern); re != nil && !re.MatchString(stringify(value)) {
			return Fail(MsgInvalidFormat)
		}
	}

	if kind == schema.KindNumber {
		n, ok := toNumber(value)
		if !ok {
			return Fail(MsgNotANumber)
		}
		if def.Min != nil && n < *def.Min {
			return Fail("Min " + formatNumber(*def.Min))
		}
		if def.Max != nil && n > *def.Max {
			return Fail("Max " + formatNumber(*def.Max))
		}
		return Valid
	}

	if s, ok := value.(string); ok {
		length := utf8.RuneCountInString(s)
		if def.MinLength != nil && length < *def.MinLength {
			return Fail(fmt.Sprintf("Min length %d", *def.MinLength))
		}
		if def.MaxLength != nil && length > *def.MaxLength {
			return Fail(fmt.Sprintf("Max length %d", *def.MaxLength))
		}
	}
	return Valid
}

func isEmpty(value any) bool {
	switch typed := value.(type) {
	case nil:
		return true
	case string:
		return typed == ""
	default:
		return false
	}
}

// ParseNumber converts user input to a finite number. Surrounding whitespace
// is ignored; NaN and infinities are rejected.
func ParseNumber(raw string) (float64, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

func toNumber(value any) (float64, bool) {
	switch typed := value.(type) {
	case float64:
		return typed, !math.IsNaN(typed) && !math.IsInf(typed, 0)
	case float32:
		return toNumber(float64(typed))
	case int:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case int32:
		return float64(typed), true
	case uint64:
		return float64(typed), true
	case string:
		return ParseNumber(typed)
	default:
		return 0, false
	}
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

func stringify(value any) string {
	switch typed := value.(type) {
	case string:
		return typed
	case float64:
		return formatNumber(typed)
	case bool:
		return strconv.FormatBool(typed)
	default:
		return fmt.Sprint(typed)
	}
}

var patternCache sync.Map // string -> *regexp.Regexp (nil for invalid)

// compilePattern returns nil for patterns that do not compile; an invalid
// pattern is no constraint.
func compilePattern(pattern string) *regexp.Regexp {
	if cached, ok := patternCache.Load(pattern); ok {
		re, _ := cached.(*regexp.Regexp)
		return re
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		re = nil
	}
	patternCache.Store(pattern, re)
	return re
}
