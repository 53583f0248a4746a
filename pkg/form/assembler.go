package form

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-settingsform/pkg/schema"
)

// View is a snapshot of the session for a host to render.
type View struct {
	SessionID   string
	Title       string
	Accent      string
	ActivePage  string
	Pages       []PageView
	Buttons     []ButtonView
	SaveEnabled bool
	Focus       string
	Notice      *Notification
}

// PageView is one tab with its sections and page-level buttons.
type PageView struct {
	ID       string
	DOMID    string
	Title    string
	Active   bool
	Sections []SectionView
	Buttons  []ButtonView
}

// SectionView groups controls under an optional legend.
type SectionView struct {
	Legend string
	Fields []ControlView
}

// ControlView is the rendered state of one control and its error region.
type ControlView struct {
	Name        string
	ID          string
	ErrorID     string
	Page        string
	Kind        schema.FieldKind
	Label       string
	Help        string
	Placeholder string
	Required    bool
	Options     []schema.Option
	Min         *float64
	Max         *float64
	MinLength   *int
	MaxLength   *int

	Value   string
	Checked bool

	Marker       Marker
	Error        string
	ErrorVisible bool
	Hint         string
	Focused      bool
}

// ButtonView is one action button.
type ButtonView struct {
	Ref      ButtonRef
	Key      string
	Label    string
	Kind     schema.ButtonKind
	Method   string
	Endpoint string
	Confirm  string
	Disabled bool
}

// ButtonRef addresses a button: Page is empty for the form-level set.
type ButtonRef struct {
	Page  string
	Index int
}

// Key encodes the reference as "default:<i>" or "page:<id>:<i>".
func (r ButtonRef) Key() string {
	if r.Page == "" {
		return "default:" + strconv.Itoa(r.Index)
	}
	return "page:" + r.Page + ":" + strconv.Itoa(r.Index)
}

// ParseButtonRef decodes a key produced by ButtonRef.Key.
func ParseButtonRef(key string) (ButtonRef, error) {
	switch {
	case strings.HasPrefix(key, "default:"):
		idx, err := strconv.Atoi(strings.TrimPrefix(key, "default:"))
		if err != nil || idx < 0 {
			return ButtonRef{}, fmt.Errorf("%w: %q", ErrUnknownButton, key)
		}
		return ButtonRef{Index: idx}, nil
	case strings.HasPrefix(key, "page:"):
		rest := strings.TrimPrefix(key, "page:")
		cut := strings.LastIndex(rest, ":")
		if cut <= 0 {
			return ButtonRef{}, fmt.Errorf("%w: %q", ErrUnknownButton, key)
		}
		idx, err := strconv.Atoi(rest[cut+1:])
		if err != nil || idx < 0 {
			return ButtonRef{}, fmt.Errorf("%w: %q", ErrUnknownButton, key)
		}
		return ButtonRef{Page: rest[:cut], Index: idx}, nil
	default:
		return ButtonRef{}, fmt.Errorf("%w: %q", ErrUnknownButton, key)
	}
}

// View assembles pages, sections and fields strictly in schema order, page
// buttons after a page's sections, and the form-level buttons last.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := View{
		SessionID:   s.id,
		Title:       s.schema.DisplayTitle(),
		SaveEnabled: s.gate,
		Focus:       s.focus,
		Notice:      s.notice,
	}
	if s.schema.Theme != nil {
		view.Accent = s.schema.Theme.Accent
	}

	next := 0
	for pi, page := range s.schema.Pages {
		pv := PageView{
			ID:     page.ID,
			DOMID:  schema.PageID(page.ID),
			Title:  page.DisplayTitle(),
			Active: pi == s.active,
		}
		if pv.Active {
			view.ActivePage = page.ID
		}
		for _, section := range page.Sections {
			sv := SectionView{Legend: section.Legend}
			for range section.Fields {
				c := s.controls[next]
				next++
				sv.Fields = append(sv.Fields, c.view(s.focus != "" && s.byName[s.focus] == c))
			}
			pv.Sections = append(pv.Sections, sv)
		}
		for bi, button := range page.Buttons {
			pv.Buttons = append(pv.Buttons, s.buttonViewLocked(ButtonRef{Page: page.ID, Index: bi}, button))
		}
		view.Pages = append(view.Pages, pv)
	}

	for bi, button := range s.schema.Buttons() {
		view.Buttons = append(view.Buttons, s.buttonViewLocked(ButtonRef{Index: bi}, button))
	}
	return view
}

func (s *Session) buttonViewLocked(ref ButtonRef, button schema.ButtonSpec) ButtonView {
	if ref.Page != "" {
		button = button.AsAction()
	}
	kind := button.Behaviour()
	return ButtonView{
		Ref:      ref,
		Key:      ref.Key(),
		Label:    button.DisplayLabel(),
		Kind:     kind,
		Method:   requestMethod(button),
		Endpoint: button.Endpoint,
		Confirm:  button.Confirm,
		Disabled: kind == schema.ButtonSave && !s.gate,
	}
}

// ShowPage makes the page with id the visible one. It neither validates nor
// resets any control.
func (s *Session) ShowPage(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	for i, page := range s.schema.Pages {
		if page.ID == id {
			s.active = i
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownPage, id)
}

// ActivePage returns the id of the visible page, or "" for a schema without
// pages.
func (s *Session) ActivePage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active < len(s.schema.Pages) {
		return s.schema.Pages[s.active].ID
	}
	return ""
}

// SaveEnabled reports the current save-gate.
func (s *Session) SaveEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gate
}

// Focused returns the field that last received attention from a gated save.
func (s *Session) Focused() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.focus
}

// Field returns the view of one control.
func (s *Session) Field(name string) (ControlView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byName[name]
	if !ok {
		return ControlView{}, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return c.view(s.focus == name), nil
}

// Button resolves a reference to its definition.
func (s *Session) Button(ref ButtonRef) (schema.ButtonSpec, error) {
	var buttons []schema.ButtonSpec
	if ref.Page == "" {
		buttons = s.schema.Buttons()
	} else {
		page, ok := s.schema.Page(ref.Page)
		if !ok {
			return schema.ButtonSpec{}, fmt.Errorf("%w: %s", ErrUnknownButton, ref.Key())
		}
		buttons = page.Buttons
	}
	if ref.Index < 0 || ref.Index >= len(buttons) {
		return schema.ButtonSpec{}, fmt.Errorf("%w: %s", ErrUnknownButton, ref.Key())
	}
	if ref.Page != "" {
		return buttons[ref.Index].AsAction(), nil
	}
	return buttons[ref.Index], nil
}
