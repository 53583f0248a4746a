// Package server hosts a settings schema over HTTP without client-side
// scripting. Each browser works against a server-held form session whose id
// travels in a hidden field; every post applies the submitted values through
// the binder, runs the requested action and answers with the re-rendered
// page. The configuration resource itself is served from a configstore.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-settingsform/internal/metrics"
	"github.com/goliatone/go-settingsform/pkg/appearance"
	"github.com/goliatone/go-settingsform/pkg/configstore"
	"github.com/goliatone/go-settingsform/pkg/form"
	"github.com/goliatone/go-settingsform/pkg/render"
	"github.com/goliatone/go-settingsform/pkg/renderers/html"
	"github.com/goliatone/go-settingsform/pkg/renderers/tui"
	"github.com/goliatone/go-settingsform/pkg/schema"
)

const (
	// DefaultMaxSessions bounds the sessions held at once; the least
	// recently used one is dropped beyond it.
	DefaultMaxSessions = 64
	// ToggleThemePath receives the appearance toggle.
	ToggleThemePath = "/appearance/toggle"

	shutdownTimeout = 5 * time.Second
)

// ErrNilSchema is returned by New without a schema.
var ErrNilSchema = errors.New("server: schema is required")

// Server serves one schema.
type Server struct {
	schema      *schema.Schema
	store       configstore.Store
	service     form.ConfigService
	actions     form.ActionClient
	prefs       appearance.Store
	registry    *render.Registry
	logger      *zap.Logger
	configPath  string
	maxSessions int
	initialLoad bool
	sessionOpts []form.Option
	now         func() time.Time

	mu       sync.Mutex
	sessions map[string]*hosted
}

type hosted struct {
	session *form.Session
	seen    time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithLogger attaches a structured logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStore serves the configuration resource from store. Sessions load and
// save through it unless WithConfigService overrides that.
func WithStore(store configstore.Store) Option {
	return func(s *Server) {
		if store != nil {
			s.store = store
		}
	}
}

// WithConfigService makes sessions load and save through service instead of
// the local store, for a host that fronts a remote device.
func WithConfigService(service form.ConfigService) Option {
	return func(s *Server) {
		s.service = service
	}
}

// WithActionClient sets the client custom buttons call through.
func WithActionClient(client form.ActionClient) Option {
	return func(s *Server) {
		s.actions = client
	}
}

// WithAppearanceStore persists the light/dark preference.
func WithAppearanceStore(store appearance.Store) Option {
	return func(s *Server) {
		if store != nil {
			s.prefs = store
		}
	}
}

// WithRegistry replaces the renderers the host negotiates between.
func WithRegistry(registry *render.Registry) Option {
	return func(s *Server) {
		if registry != nil {
			s.registry = registry
		}
	}
}

// WithConfigPath changes the configuration resource path (default "/config").
func WithConfigPath(path string) Option {
	return func(s *Server) {
		path = strings.TrimSpace(path)
		if path == "" {
			return
		}
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		s.configPath = path
	}
}

// WithMaxSessions bounds the sessions held at once.
func WithMaxSessions(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxSessions = n
		}
	}
}

// WithInitialLoad controls whether a new session fetches the stored
// configuration before its first render (default true).
func WithInitialLoad(enabled bool) Option {
	return func(s *Server) {
		s.initialLoad = enabled
	}
}

// WithSessionOptions appends options to every session the host creates.
func WithSessionOptions(options ...form.Option) Option {
	return func(s *Server) {
		s.sessionOpts = append(s.sessionOpts, options...)
	}
}

// New builds a host for sch. Without options it keeps the configuration in
// memory and renders HTML or plain text.
func New(sch *schema.Schema, options ...Option) (*Server, error) {
	if sch == nil {
		return nil, ErrNilSchema
	}
	s := &Server{
		schema:      sch,
		prefs:       &appearance.MemoryStore{},
		logger:      zap.NewNop(),
		configPath:  "/config",
		maxSessions: DefaultMaxSessions,
		initialLoad: true,
		now:         time.Now,
		sessions:    make(map[string]*hosted),
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	if s.store == nil {
		s.store = configstore.NewMemoryStore(nil)
	}
	if s.service == nil {
		s.service = configstore.Service{Store: s.store}
	}
	if s.registry == nil {
		registry, err := DefaultRegistry()
		if err != nil {
			return nil, err
		}
		s.registry = registry
	}
	return s, nil
}

// DefaultRegistry holds the HTML renderer and the plain-text renderer.
func DefaultRegistry() (*render.Registry, error) {
	registry := render.NewRegistry()
	page, err := html.New()
	if err != nil {
		return nil, fmt.Errorf("server: html renderer: %w", err)
	}
	if err := registry.Register(page); err != nil {
		return nil, err
	}
	if err := registry.Register(tui.NewRenderer()); err != nil {
		return nil, err
	}
	return registry, nil
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: listen %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	s.Close()
	s.logger.Info("stopped")
	return nil
}

// Close drops every held session.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, h := range s.sessions {
		h.session.Close()
		delete(s.sessions, id)
		metrics.ActiveSessions.Dec()
	}
}

// session returns the held session for id, or a fresh one when id is empty
// or unknown.
func (s *Server) session(ctx context.Context, id string) (*form.Session, error) {
	s.mu.Lock()
	if h, ok := s.sessions[id]; ok && id != "" {
		h.seen = s.now()
		s.mu.Unlock()
		return h.session, nil
	}
	s.mu.Unlock()

	options := []form.Option{
		form.WithLogger(s.logger),
		form.WithConfigService(s.service),
		form.WithConfirmer(contextConfirmer()),
		form.WithEventHook(metrics.Observe),
	}
	if s.actions != nil {
		options = append(options, form.WithActionClient(s.actions))
	}
	options = append(options, s.sessionOpts...)

	session, err := form.New(s.schema, options...)
	if err != nil {
		return nil, err
	}
	if s.initialLoad {
		if err := session.Load(ctx); err != nil {
			s.logger.Warn("initial load failed", zap.String("session", session.ID()), zap.Error(err))
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID()] = &hosted{session: session, seen: s.now()}
	metrics.ActiveSessions.Inc()
	s.evictLocked()
	return session, nil
}

func (s *Server) evictLocked() {
	for len(s.sessions) > s.maxSessions {
		var oldestID string
		var oldest time.Time
		for id, h := range s.sessions {
			if oldestID == "" || h.seen.Before(oldest) {
				oldestID, oldest = id, h.seen
			}
		}
		s.sessions[oldestID].session.Close()
		delete(s.sessions, oldestID)
		metrics.ActiveSessions.Dec()
		s.logger.Debug("session evicted", zap.String("session", oldestID))
	}
}

// Sessions reports how many sessions are held.
func (s *Server) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

type confirmedKey struct{}

func withConfirmed(ctx context.Context) context.Context {
	return context.WithValue(ctx, confirmedKey{}, true)
}

// contextConfirmer answers yes only for requests that carried the user's
// confirmation; the prompt itself is rendered as a page banner.
func contextConfirmer() form.Confirmer {
	return form.ConfirmerFunc(func(ctx context.Context, _ string) (bool, error) {
		ok, _ := ctx.Value(confirmedKey{}).(bool)
		return ok, nil
	})
}
