package tui

// Theme holds the prefixes the editor puts in front of outcome lines.
type Theme struct {
	InfoPrefix    string
	SuccessPrefix string
	ErrorPrefix   string
}

// DefaultTheme marks outcomes with plain ASCII.
var DefaultTheme = Theme{
	InfoPrefix:    "",
	SuccessPrefix: "[ok] ",
	ErrorPrefix:   "[!] ",
}

// Option configures the editor.
type Option func(*Editor)

// WithPromptDriver overrides the prompt driver used by the editor.
func WithPromptDriver(driver PromptDriver) Option {
	return func(e *Editor) {
		if driver != nil {
			e.driver = driver
		}
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(e *Editor) {
		e.theme = theme
	}
}

// WithRenderer replaces the text renderer used for page summaries.
func WithRenderer(r *Renderer) Option {
	return func(e *Editor) {
		if r != nil {
			e.text = r
		}
	}
}
