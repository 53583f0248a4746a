package form

import "github.com/goliatone/go-settingsform/pkg/document"

// Collect reads every bound control into a new document: booleans for
// toggles, a finite number or nil for number fields, the raw string
// otherwise.
func (s *Session) Collect() document.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collectLocked()
}

func (s *Session) collectLocked() document.Document {
	out := document.Document{}
	for _, c := range s.controls {
		document.Write(out, c.def.Name, c.collected())
	}
	return out
}

// Apply sets every control whose path is present in doc, leaves the others
// untouched, then validates the whole form and recomputes the save-gate.
func (s *Session) Apply(doc document.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.applyLocked(doc)
	return nil
}

func (s *Session) applyLocked(doc document.Document) {
	for _, c := range s.controls {
		value, ok := document.Read(doc, c.def.Name)
		if !ok {
			continue
		}
		if c.debounce != nil {
			c.debounce.Cancel()
		}
		c.set(value)
	}
	s.recomputeGateLocked()
}
