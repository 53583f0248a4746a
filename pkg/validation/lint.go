package validation

import (
	"fmt"
	"regexp"

	"github.com/goliatone/go-settingsform/pkg/schema"
)

// Severity ranks lint findings.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Finding is one lint observation about a schema.
type Finding struct {
	Severity Severity `json:"severity"`
	Path     string   `json:"path"`
	Message  string   `json:"message"`
}

func (f Finding) String() string {
	return fmt.Sprintf("%s: %s: %s", f.Severity, f.Path, f.Message)
}

// Lint reports problems the core tolerates at runtime but a schema author
// should fix: duplicate page ids and field names (the last bound control
// wins), unknown kinds and validators, patterns that do not compile, and
// defaults that fail their own constraints.
func Lint(s *schema.Schema) []Finding {
	if s == nil {
		return nil
	}
	var findings []Finding
	pages := make(map[string]string)
	fields := make(map[string]string)

	for pi, page := range s.Pages {
		pagePath := fmt.Sprintf("pages[%d]", pi)
		if first, dup := pages[page.ID]; dup {
			findings = append(findings, Finding{SeverityError, pagePath + ".id", fmt.Sprintf("duplicate page id %q (first at %s)", page.ID, first)})
		} else {
			pages[page.ID] = pagePath
		}

		for si, section := range page.Sections {
			for fi, def := range section.Fields {
				path := fmt.Sprintf("%s.sections[%d].fields[%d]", pagePath, si, fi)
				if first, dup := fields[def.Name]; dup {
					findings = append(findings, Finding{SeverityError, path + ".name", fmt.Sprintf("duplicate field name %q (first at %s)", def.Name, first)})
				} else {
					fields[def.Name] = path
				}
				findings = append(findings, lintField(path, def)...)
			}
		}
	}
	return findings
}

// HasErrors reports whether any finding is an error.
func HasErrors(findings []Finding) bool {
	for _, f := range findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}

func lintField(path string, def schema.FieldDefinition) []Finding {
	var out []Finding
	if !def.Type.Known() {
		out = append(out, Finding{SeverityWarning, path + ".type", fmt.Sprintf("unknown type %q, rendered as text", def.Type)})
	}
	if def.Validator != "" && !def.Validator.Known() {
		out = append(out, Finding{SeverityWarning, path + ".validator", fmt.Sprintf("unknown validator %q is ignored", def.Validator)})
	}
	if def.Pattern != "" {
		if _, err := regexp.Compile(def.Pattern); err != nil {
			out = append(out, Finding{SeverityWarning, path + ".pattern", fmt.Sprintf("pattern does not compile and is ignored: %v", err)})
		}
	}
	if def.Kind() == schema.KindSelect && len(def.Options) == 0 {
		out = append(out, Finding{SeverityWarning, path + ".options", "select field has no options"})
	}
	if def.HasDefault {
		if res := Evaluate(def, def.Default); !res.OK {
			out = append(out, Finding{SeverityError, path + ".default", fmt.Sprintf("default %v fails its own constraints: %s", def.Default, res.Message)})
		}
	}
	return out
}
