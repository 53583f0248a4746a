package render

import (
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-settingsform/pkg/appearance"
)

// RenderOptions describe per-request data that renderers can use to customise
// their output without touching the session.
type RenderOptions struct {
	// Action is the URL the page posts back to. Empty means "/".
	Action string
	// ThemeAction is the URL of the appearance toggle. Empty hides it.
	ThemeAction string
	// Theme carries the resolved tokens for the stored preference. Renderers
	// fall back to the settings theme defaults when nil.
	Theme *theme.RendererConfig
	// Preference is the stored appearance choice. When Unset, renderers emit
	// Palette under a prefers-color-scheme query instead of a fixed variant.
	Preference appearance.Preference
	Palette    *appearance.Palette
	// Hidden fields are emitted verbatim inside the posted form.
	Hidden []HiddenField
	// Pending asks the user to confirm a button before it runs.
	Pending *PendingConfirm
	// Standalone inlines the stylesheet instead of linking the asset URL.
	Standalone bool
}

// PendingConfirm is a button waiting for the user's answer.
type PendingConfirm struct {
	Key    string
	Prompt string
}
