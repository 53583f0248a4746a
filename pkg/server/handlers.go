package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/goliatone/go-settingsform/pkg/appearance"
	"github.com/goliatone/go-settingsform/pkg/document"
	"github.com/goliatone/go-settingsform/pkg/form"
	"github.com/goliatone/go-settingsform/pkg/openapi"
	"github.com/goliatone/go-settingsform/pkg/render"
	"github.com/goliatone/go-settingsform/pkg/renderers/html"
	"github.com/goliatone/go-settingsform/pkg/schema"
)

const maxBody = 1 << 20

// Handler returns the routes of the host.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handlePage)
	r.Post("/", s.handleSubmit)
	r.Post(ToggleThemePath, s.handleToggleTheme)

	r.Get(s.configPath, s.handleGetConfig)
	r.Post(s.configPath, s.handlePostConfig)

	r.Get("/schema.json", s.handleSchema)
	r.Get("/openapi.json", s.handleOpenAPI(openapi.FormatJSON))
	r.Get("/openapi.yaml", s.handleOpenAPI(openapi.FormatYAML))

	r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServerFS(html.AssetsFS())))
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	session, err := s.session(r.Context(), r.URL.Query().Get("session"))
	if err != nil {
		s.fail(w, "create session", err)
		return
	}
	if page := r.URL.Query().Get("page"); page != "" {
		if err := session.ShowPage(page); err != nil {
			s.logger.Debug("show page", zap.String("page", page), zap.Error(err))
		}
	}
	s.respond(w, r, session, nil)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	sub, err := parseSubmission(w, r)
	if err != nil {
		http.Error(w, "malformed form", http.StatusBadRequest)
		return
	}
	session, err := s.session(r.Context(), sub.Session)
	if err != nil {
		s.fail(w, "create session", err)
		return
	}
	s.applyValues(session, sub)
	pending := s.runAction(r.Context(), session, sub)
	s.respond(w, r, session, pending)
}

// handleToggleTheme keeps the user's unsaved edits, then advances the stored
// preference and re-renders.
func (s *Server) handleToggleTheme(w http.ResponseWriter, r *http.Request) {
	sub, err := parseSubmission(w, r)
	if err != nil {
		http.Error(w, "malformed form", http.StatusBadRequest)
		return
	}
	session, err := s.session(r.Context(), sub.Session)
	if err != nil {
		s.fail(w, "create session", err)
		return
	}
	s.applyValues(session, sub)

	pref, err := appearance.Toggle(r.Context(), s.prefs)
	if err != nil {
		s.logger.Warn("toggle appearance", zap.Error(err))
	} else {
		s.logger.Debug("appearance toggled", zap.String("preference", pref.String()))
	}
	s.respond(w, r, session, nil)
}

func parseSubmission(w http.ResponseWriter, r *http.Request) (render.Submission, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := r.ParseForm(); err != nil {
		return render.Submission{}, err
	}
	return render.ParseSubmission(r.PostForm), nil
}

// applyValues feeds posted values to the binder in schema order and restores
// the visible page. Unknown names are ignored.
func (s *Server) applyValues(session *form.Session, sub render.Submission) {
	for _, def := range session.Schema().Fields() {
		value, ok := sub.Values[def.Name]
		if !ok {
			continue
		}
		var err error
		switch kind := def.Kind(); {
		case kind.IsBoolean():
			err = session.Toggle(def.Name, form.ParseBool(value))
		case kind == schema.KindSelect:
			err = session.Select(def.Name, value)
		default:
			err = session.Change(def.Name, value)
		}
		if err != nil {
			s.logger.Debug("apply value", zap.String("field", def.Name), zap.Error(err))
		}
	}

	page := sub.Show
	if page == "" {
		page = sub.Page
	}
	if page != "" {
		if err := session.ShowPage(page); err != nil {
			s.logger.Debug("show page", zap.String("page", page), zap.Error(err))
		}
	}
}

// runAction performs the requested action. A button that asks for
// confirmation is not run; its prompt comes back as pending instead.
func (s *Server) runAction(ctx context.Context, session *form.Session, sub render.Submission) *render.PendingConfirm {
	var err error
	switch {
	case sub.Confirmed != "":
		err = s.press(withConfirmed(ctx), session, sub.Confirmed)
	case sub.Button != "":
		ref, parseErr := form.ParseButtonRef(sub.Button)
		if parseErr != nil {
			err = parseErr
			break
		}
		button, lookupErr := session.Button(ref)
		if lookupErr != nil {
			err = lookupErr
			break
		}
		if button.Behaviour() == schema.ButtonCustom && button.Confirm != "" {
			return &render.PendingConfirm{Key: ref.Key(), Prompt: button.Confirm}
		}
		err = session.Press(ctx, ref)
	case sub.Action == render.ActionSave:
		err = session.Save(ctx)
	case sub.Action == render.ActionLoad:
		err = session.Load(ctx)
	default:
		session.ValidateAll()
	}
	if err != nil && !errors.Is(err, form.ErrInvalid) {
		s.logger.Debug("action", zap.String("session", session.ID()), zap.Error(err))
	}
	return nil
}

func (s *Server) press(ctx context.Context, session *form.Session, key string) error {
	ref, err := form.ParseButtonRef(key)
	if err != nil {
		return err
	}
	return session.Press(ctx, ref)
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, session *form.Session, pending *render.PendingConfirm) {
	renderer, err := s.negotiate(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotAcceptable)
		return
	}

	pref, err := s.prefs.Load(r.Context())
	if err != nil {
		s.logger.Warn("load appearance", zap.Error(err))
		pref = appearance.Unset
	}

	view := session.View()
	out, err := renderer.Render(r.Context(), view, render.RenderOptions{
		Action:      "/",
		ThemeAction: ToggleThemePath,
		Preference:  pref,
		Hidden: []render.HiddenField{
			render.SessionField(view.SessionID),
			render.PageField(view.ActivePage),
		},
		Pending: pending,
	})
	if err != nil {
		s.fail(w, "render", err)
		return
	}
	session.TakeNotice()

	w.Header().Set("Content-Type", renderer.ContentType())
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(out)
}

// negotiate picks a renderer from the format query parameter, then the
// Accept header: browsers get HTML, other clients the text rendering.
func (s *Server) negotiate(r *http.Request) (render.Renderer, error) {
	if format := r.URL.Query().Get("format"); format != "" {
		return s.registry.Get(format)
	}
	accept := r.Header.Get("Accept")
	if accept == "" || strings.Contains(accept, "text/html") || !s.registry.Has("text") {
		return s.registry.Get("html")
	}
	return s.registry.Get("text")
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.Get(r.Context())
	if err != nil {
		s.fail(w, "read configuration", err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handlePostConfig(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		http.Error(w, "cannot read body", http.StatusBadRequest)
		return
	}
	var doc document.Document
	if err := json.Unmarshal(raw, &doc); err != nil || doc == nil {
		http.Error(w, "body must be a JSON object", http.StatusBadRequest)
		return
	}
	if err := s.store.Put(r.Context(), doc); err != nil {
		s.fail(w, "write configuration", err)
		return
	}
	s.logger.Info("configuration stored", zap.Int("keys", len(doc)))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSchema(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.schema)
}

func (s *Server) handleOpenAPI(format openapi.Format) http.HandlerFunc {
	contentType := "application/json"
	if format == openapi.FormatYAML {
		contentType = "application/yaml"
	}
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := openapi.Describe(r.Context(), s.schema, openapi.WithConfigPath(s.configPath))
		if err != nil {
			s.fail(w, "describe", err)
			return
		}
		raw, err := openapi.Marshal(doc, format)
		if err != nil {
			s.fail(w, "encode openapi", err)
			return
		}
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write(raw)
	}
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	s.logger.Error(op+" failed", zap.Error(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(value)
}
