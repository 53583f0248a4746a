package form

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-settingsform/pkg/document"
	"github.com/goliatone/go-settingsform/pkg/schema"
)

// Notification messages.
const (
	MsgSaved      = "Configuration saved"
	MsgSaveFailed = "Save failed"
	MsgLoaded     = "Configuration loaded"
	MsgLoadFailed = "Could not load defaults"
)

// ConfigService is the external configuration resource.
type ConfigService interface {
	Fetch(ctx context.Context) (document.Document, error)
	Submit(ctx context.Context, doc document.Document) error
}

// ActionRequest is one custom button call. A nil Body sends no body.
type ActionRequest struct {
	Method   string
	Endpoint string
	Body     any
}

// ActionClient performs custom button calls.
type ActionClient interface {
	Call(ctx context.Context, req ActionRequest) error
}

// NoticeLevel classifies a notification.
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeFailure NoticeLevel = "failure"
)

// Notification is a transient outcome message.
type Notification struct {
	Level   NoticeLevel
	Message string
}

// Notifier receives notifications as they happen.
type Notifier interface {
	Notify(Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

// Notify implements Notifier.
func (fn NotifierFunc) Notify(n Notification) { fn(n) }

// Confirmer asks the user to confirm a prompt.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmerFunc adapts a function to Confirmer.
type ConfirmerFunc func(ctx context.Context, prompt string) (bool, error)

// Confirm implements Confirmer.
func (fn ConfirmerFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return fn(ctx, prompt)
}

// EventType names what an Event observed.
type EventType string

const (
	EventValidate EventType = "validate"
	EventSave     EventType = "save"
	EventLoad     EventType = "load"
	EventAction   EventType = "action"
)

// Event is reported to the hook installed with WithEventHook.
type Event struct {
	Type     EventType
	Field    string
	Button   string
	OK       bool
	Err      error
	Duration time.Duration
}

// ValidateAll validates every field in schema order, refreshing each
// control, and returns true only if all pass. The save-gate follows the
// result.
func (s *Session) ValidateAll() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recomputeGateLocked()
}

// Save submits the collected document when the whole form is valid. On an
// invalid form no request is made, the first failing field in schema order
// receives focus (its page becomes visible) and ErrInvalid is returned.
// Network failures are reported as a notification and returned.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if !s.recomputeGateLocked() {
		first := s.firstInvalidLocked()
		s.mu.Unlock()
		s.logger.Info("save blocked by invalid field",
			zap.String("session", s.id),
			zap.String("field", first),
		)
		s.emit(Event{Type: EventSave, Field: first, Err: ErrInvalid})
		return ErrInvalid
	}
	doc := s.collectLocked()
	s.mu.Unlock()

	if s.service == nil {
		s.notify(Notification{Level: NoticeFailure, Message: MsgSaveFailed})
		return ErrNoService
	}

	start := time.Now()
	err := s.service.Submit(ctx, doc)
	s.emit(Event{Type: EventSave, OK: err == nil, Err: err, Duration: time.Since(start)})
	if err != nil {
		s.logger.Warn("save failed", zap.String("session", s.id), zap.Error(err))
		s.notify(Notification{Level: NoticeFailure, Message: MsgSaveFailed})
		return fmt.Errorf("form: save: %w", err)
	}
	s.logger.Info("configuration saved", zap.String("session", s.id))
	s.notify(Notification{Level: NoticeSuccess, Message: MsgSaved})
	return nil
}

// firstInvalidLocked focuses the first failing control and shows its page.
func (s *Session) firstInvalidLocked() string {
	for _, c := range s.controls {
		if c.marker != MarkerInvalid {
			continue
		}
		s.focus = c.def.Name
		for i, page := range s.schema.Pages {
			if page.ID == c.page {
				s.active = i
				break
			}
		}
		return c.def.Name
	}
	return ""
}

// Load fetches the current document and applies it. A failed fetch leaves
// the form untouched.
func (s *Session) Load(ctx context.Context) error {
	if s.service == nil {
		s.notify(Notification{Level: NoticeFailure, Message: MsgLoadFailed})
		return ErrNoService
	}

	start := time.Now()
	doc, err := s.service.Fetch(ctx)
	s.emit(Event{Type: EventLoad, OK: err == nil, Err: err, Duration: time.Since(start)})
	if err != nil {
		s.logger.Warn("load failed", zap.String("session", s.id), zap.Error(err))
		s.notify(Notification{Level: NoticeFailure, Message: MsgLoadFailed})
		return fmt.Errorf("form: load: %w", err)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.applyLocked(doc)
	s.mu.Unlock()

	s.logger.Info("configuration loaded", zap.String("session", s.id))
	s.notify(Notification{Level: NoticeSuccess, Message: MsgLoaded})
	return nil
}

// Press runs the button at ref. Default buttons dispatch on their kind; page
// buttons always call their endpoint.
func (s *Session) Press(ctx context.Context, ref ButtonRef) error {
	button, err := s.Button(ref)
	if err != nil {
		return err
	}
	switch button.Behaviour() {
	case schema.ButtonSave:
		return s.Save(ctx)
	case schema.ButtonLoad:
		return s.Load(ctx)
	default:
		return s.Invoke(ctx, button)
	}
}

// Invoke calls a custom endpoint. A confirmation prompt runs first when the
// button declares one. Only POST carries a body: the collected document when
// IncludeForm is set, or the fixed payload otherwise.
func (s *Session) Invoke(ctx context.Context, button schema.ButtonSpec) error {
	label := button.DisplayLabel()

	if button.Confirm != "" {
		ok, err := s.confirm(ctx, button.Confirm)
		if err != nil {
			return fmt.Errorf("form: confirm %q: %w", label, err)
		}
		if !ok {
			s.logger.Debug("action declined", zap.String("session", s.id), zap.String("endpoint", button.Endpoint))
			return ErrDeclined
		}
	}

	if s.actions == nil {
		s.notify(Notification{Level: NoticeFailure, Message: label + " failed"})
		return ErrNoActionClient
	}

	req := ActionRequest{Method: requestMethod(button), Endpoint: button.Endpoint}
	if req.Method == http.MethodPost {
		switch {
		case button.IncludeForm:
			s.mu.Lock()
			req.Body = s.collectLocked()
			s.mu.Unlock()
		case button.Payload != nil:
			req.Body = button.Payload
		}
	}

	start := time.Now()
	err := s.actions.Call(ctx, req)
	s.emit(Event{Type: EventAction, Button: label, OK: err == nil, Err: err, Duration: time.Since(start)})
	if err != nil {
		s.logger.Warn("action failed",
			zap.String("session", s.id),
			zap.String("endpoint", req.Endpoint),
			zap.String("method", req.Method),
			zap.Error(err),
		)
		s.notify(Notification{Level: NoticeFailure, Message: label + " failed"})
		return fmt.Errorf("form: action %q: %w", label, err)
	}
	s.notify(Notification{Level: NoticeSuccess, Message: label + " done"})
	return nil
}

func (s *Session) confirm(ctx context.Context, prompt string) (bool, error) {
	if s.confirmer == nil {
		return false, nil
	}
	return s.confirmer.Confirm(ctx, prompt)
}

// TakeNotice returns the latest notification and clears it.
func (s *Session) TakeNotice() *Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.notice
	s.notice = nil
	return n
}

func (s *Session) notify(n Notification) {
	s.mu.Lock()
	s.notice = &n
	s.mu.Unlock()
	if s.notifier != nil {
		s.notifier.Notify(n)
	}
}

func requestMethod(button schema.ButtonSpec) string {
	method := strings.ToUpper(strings.TrimSpace(button.Method))
	if method == "" {
		return http.MethodGet
	}
	return method
}
