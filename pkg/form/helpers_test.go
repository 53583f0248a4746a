package form_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-settingsform/pkg/document"
	"github.com/goliatone/go-settingsform/pkg/form"
	"github.com/goliatone/go-settingsform/pkg/schema"
)

const deviceSchema = `{
  "title": "Device",
  "theme": {"accent": "#ff8800"},
  "pages": [
    {
      "id": "net",
      "title": "Network",
      "sections": [
        {"legend": "Wi-Fi", "fields": [
          {"name": "wifi.ssid", "label": "SSID", "required": true},
          {"name": "wifi.psk", "type": "password", "minlength": 8},
          {"name": "wifi.enabled", "type": "switch", "default": true}
        ]}
      ],
      "buttons": [
        {"label": "Reboot", "kind": "custom", "endpoint": "/reboot", "method": "POST", "confirm": "Reboot now?"},
        {"label": "Push", "endpoint": "/push", "method": "post", "includeForm": true},
        {"label": "Scan", "endpoint": "/scan", "method": "POST", "payload": {"band": "2.4"}},
        {"label": "Ping", "endpoint": "/ping", "payload": {"ignored": true}}
      ]
    },
    {
      "id": "mqtt",
      "sections": [
        {"fields": [
          {"name": "mqtt.port", "type": "number", "min": 1, "max": 65535, "default": 1883},
          {"name": "mqtt.broker", "validator": "ip_port"},
          {"name": "mqtt.mode", "type": "select", "options": ["tcp", {"value": "tls", "label": "TLS"}]}
        ]}
      ]
    }
  ],
  "defaultButtons": [
    {"label": "Save All", "kind": "save"},
    {"kind": "load"}
  ]
}`

func mustSchema(t *testing.T, raw string) *schema.Schema {
	t.Helper()
	s, err := schema.Parse([]byte(raw), "test")
	if err != nil {
		t.Fatalf("parse schema: %v", err)
	}
	return s
}

func newSession(t *testing.T, opts ...form.Option) (*form.Session, *manualClock) {
	t.Helper()
	clock := &manualClock{}
	opts = append([]form.Option{form.WithScheduler(clock)}, opts...)
	session, err := form.New(mustSchema(t, deviceSchema), opts...)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	t.Cleanup(session.Close)
	return session, clock
}

// manualClock fires timers only when advanced.
type manualClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*manualTimer
}

type manualTimer struct {
	clock   *manualClock
	at      time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) form.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	timer := &manualTimer{clock: c, at: c.now + d, fn: f}
	c.timers = append(c.timers, timer)
	return timer
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []*manualTimer
	for _, timer := range c.timers {
		if !timer.stopped && !timer.fired && timer.at <= c.now {
			timer.fired = true
			due = append(due, timer)
		}
	}
	c.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool { return due[i].at < due[j].at })
	for _, timer := range due {
		timer.fn()
	}
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

type stubService struct {
	mu        sync.Mutex
	doc       document.Document
	fetchErr  error
	submitErr error
	submitted []document.Document
}

func (s *stubService) Fetch(context.Context) (document.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	return document.Clone(s.doc), nil
}

func (s *stubService) Submit(_ context.Context, doc document.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitted = append(s.submitted, doc)
	return s.submitErr
}

type stubActions struct {
	calls []form.ActionRequest
	err   error
}

func (a *stubActions) Call(_ context.Context, req form.ActionRequest) error {
	a.calls = append(a.calls, req)
	return a.err
}

var errOffline = errors.New("offline")
