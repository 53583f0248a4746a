package form

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-settingsform/pkg/schema"
)

// Session is the editing context of one schema against one held document.
// It is created from a loaded schema and torn down with Close.
type Session struct {
	id     string
	schema *schema.Schema
	logger *zap.Logger

	service   ConfigService
	actions   ActionClient
	notifier  Notifier
	confirmer Confirmer
	hook      func(Event)
	scheduler Scheduler
	delay     time.Duration

	mu       sync.Mutex
	closed   bool
	controls []*control
	byName   map[string]*control
	active   int
	gate     bool
	focus    string
	notice   *Notification
}

// Option configures a Session.
type Option func(*Session)

// WithLogger attaches a structured logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithConfigService sets the service used by Load and Save.
func WithConfigService(service ConfigService) Option {
	return func(s *Session) {
		s.service = service
	}
}

// WithActionClient sets the client used by custom buttons.
func WithActionClient(client ActionClient) Option {
	return func(s *Session) {
		s.actions = client
	}
}

// WithNotifier forwards notifications to n in addition to the session's own
// notice slot.
func WithNotifier(n Notifier) Option {
	return func(s *Session) {
		s.notifier = n
	}
}

// WithConfirmer sets the prompt used before buttons that ask for
// confirmation. Without one, such buttons are declined.
func WithConfirmer(c Confirmer) Option {
	return func(s *Session) {
		s.confirmer = c
	}
}

// WithEventHook observes validations and requests. The hook may run with the
// session lock held and must not call back into the session.
func WithEventHook(fn func(Event)) Option {
	return func(s *Session) {
		s.hook = fn
	}
}

// WithScheduler replaces the timer source of debounced validation.
func WithScheduler(scheduler Scheduler) Option {
	return func(s *Session) {
		if scheduler != nil {
			s.scheduler = scheduler
		}
	}
}

// WithDebounce overrides the keystroke quiet period.
func WithDebounce(delay time.Duration) Option {
	return func(s *Session) {
		if delay > 0 {
			s.delay = delay
		}
	}
}

// New binds every field of s and runs the initial validation pass that
// computes the save-gate.
func New(s *schema.Schema, options ...Option) (*Session, error) {
	if s == nil {
		return nil, ErrNilSchema
	}

	session := &Session{
		id:        uuid.NewString(),
		schema:    s,
		logger:    zap.NewNop(),
		scheduler: realScheduler{},
		delay:     DefaultDebounce,
		byName:    make(map[string]*control),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(session)
	}

	session.bind()

	session.mu.Lock()
	session.recomputeGateLocked()
	session.mu.Unlock()

	session.logger.Debug("session created",
		zap.String("session", session.id),
		zap.Int("pages", len(s.Pages)),
		zap.Int("fields", len(session.controls)),
	)
	return session, nil
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Schema returns the schema the session was created from. It must not be
// mutated.
func (s *Session) Schema() *schema.Schema {
	return s.schema
}

// Close cancels pending debounced validations. Handlers return ErrClosed
// afterwards.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for _, c := range s.controls {
		if c.debounce != nil {
			c.debounce.Cancel()
		}
	}
	s.logger.Debug("session closed", zap.String("session", s.id))
}

func (s *Session) lookupLocked(name string) (*control, error) {
	if s.closed {
		return nil, ErrClosed
	}
	c, ok := s.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return c, nil
}

func (s *Session) emit(evt Event) {
	if s.hook != nil {
		s.hook(evt)
	}
}
