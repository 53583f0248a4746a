package form

import (
	"go.uber.org/zap"

	"github.com/goliatone/go-settingsform/pkg/schema"
)

// bind creates one control per field in schema order. With colliding names
// the last bound control answers events.
func (s *Session) bind() {
	for _, page := range s.schema.Pages {
		for _, section := range page.Sections {
			for _, def := range section.Fields {
				c := newControl(def, page.ID)
				if c.kind.IsTextual() {
					target := c
					c.debounce = NewDebouncer(s.delay, s.scheduler, func() {
						s.debounced(target)
					})
				}
				s.controls = append(s.controls, c)
				s.byName[def.Name] = c
			}
		}
	}
}

// Input records a keystroke edit. Text-like fields validate after the quiet
// period; other non-toggle fields validate immediately.
func (s *Session) Input(name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.lookupLocked(name)
	if err != nil {
		return err
	}
	if c.kind.IsBoolean() {
		return ErrKindMismatch
	}
	c.value = value
	if c.debounce != nil {
		c.debounce.Call()
		return nil
	}
	s.validateFieldLocked(c)
	return nil
}

// Change commits a value and validates immediately. Toggle fields read the
// value as a submitted checkbox state.
func (s *Session) Change(name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.lookupLocked(name)
	if err != nil {
		return err
	}
	if c.kind.IsBoolean() {
		c.checked = ParseBool(value)
	} else {
		c.value = value
	}
	s.validateFieldLocked(c)
	return nil
}

// Blur validates the current value immediately.
func (s *Session) Blur(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.lookupLocked(name)
	if err != nil {
		return err
	}
	s.validateFieldLocked(c)
	return nil
}

// Toggle sets a checkbox or switch.
func (s *Session) Toggle(name string, checked bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.lookupLocked(name)
	if err != nil {
		return err
	}
	if !c.kind.IsBoolean() {
		return ErrKindMismatch
	}
	c.checked = checked
	s.validateFieldLocked(c)
	return nil
}

// Select picks an option of a select field. The value is not checked
// against the option list.
func (s *Session) Select(name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.lookupLocked(name)
	if err != nil {
		return err
	}
	if c.kind != schema.KindSelect {
		return ErrKindMismatch
	}
	c.value = value
	s.validateFieldLocked(c)
	return nil
}

func (s *Session) debounced(c *control) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.validateFieldLocked(c)
}

// validateFieldLocked cancels a pending debounced run for the field,
// validates it, then recomputes the save-gate.
func (s *Session) validateFieldLocked(c *control) {
	if c.debounce != nil {
		c.debounce.Cancel()
	}
	res := c.validate()
	s.logger.Debug("field validated",
		zap.String("session", s.id),
		zap.String("field", c.def.Name),
		zap.Bool("ok", res.OK),
	)
	s.emit(Event{Type: EventValidate, Field: c.def.Name, OK: res.OK})
	s.recomputeGateLocked()
}

// recomputeGateLocked enables save actions iff every field passes. It
// refreshes every control's error state as a side effect.
func (s *Session) recomputeGateLocked() bool {
	s.gate = s.validateAllLocked()
	return s.gate
}

func (s *Session) validateAllLocked() bool {
	ok := true
	for _, c := range s.controls {
		if res := c.validate(); !res.OK {
			ok = false
		}
	}
	return ok
}
