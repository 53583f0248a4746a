package html_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-settingsform/pkg/appearance"
	"github.com/goliatone/go-settingsform/pkg/form"
	"github.com/goliatone/go-settingsform/pkg/render"
	"github.com/goliatone/go-settingsform/pkg/renderers/html"
	"github.com/goliatone/go-settingsform/pkg/testsupport"
)

func renderPage(t *testing.T, session *form.Session, opts render.RenderOptions) string {
	t.Helper()
	r, err := html.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	out, err := r.Render(context.Background(), session.View(), opts)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return string(out)
}

func assertContains(t *testing.T, page string, fragments ...string) {
	t.Helper()
	for _, fragment := range fragments {
		if !strings.Contains(page, fragment) {
			t.Fatalf("expected page to contain %q\n%s", fragment, page)
		}
	}
}

func assertMissing(t *testing.T, page string, fragments ...string) {
	t.Helper()
	for _, fragment := range fragments {
		if strings.Contains(page, fragment) {
			t.Fatalf("expected page not to contain %q", fragment)
		}
	}
}

func TestRender_InitialPage(t *testing.T) {
	session := testsupport.MustSession(t)
	page := renderPage(t, session, render.RenderOptions{
		Hidden: render.SortedHiddenFields(render.MergeHiddenFields(nil,
			render.SessionField(session.ID()),
			render.PageField(session.ActivePage()),
		)),
		ThemeAction: "/appearance/toggle",
	})

	assertContains(t, page,
		"<title>Device</title>",
		`<input type="hidden" name="_session" value="`+session.ID()+`">`,
		`<input type="hidden" name="_page" value="net">`,
		`name="_show" value="net" aria-controls="page_net" aria-selected="true"`,
		`<section id="page_mqtt" class="page" role="tabpanel" hidden>`,
		`<legend>Wi-Fi</legend>`,
		`id="fld_wifi_ssid" name="wifi.ssid" value="" required aria-required="true" placeholder="my-network" aria-describedby="fld_wifi_ssid_err" aria-invalid="true" title="This field is required"`,
		`<div id="fld_wifi_ssid_err" class="error" role="alert">This field is required</div>`,
		`<div id="fld_wifi_psk_err" class="error" role="alert" hidden></div>`,
		`<input type="password" id="fld_wifi_psk"`,
		`<input type="hidden" name="wifi.enabled" value="false">`,
		`role="switch" id="fld_wifi_enabled" name="wifi.enabled" value="true" checked`,
		`<input type="number" id="fld_mqtt_port" name="mqtt.port" value="1883" step="any" min="1" max="65535"`,
		`<option value="tcp" selected>tcp</option>`,
		`<option value="tls">TLS</option>`,
		`<textarea id="fld_mqtt_notes" name="mqtt.notes" rows="3" maxlength="64"`,
		`<p class="help">Network <b>name</b></p>`,
		`name="_button" value="page:net:0" data-confirm="Reboot now?">Reboot</button>`,
		`name="_action" value="save" disabled>Save All</button>`,
		`name="_action" value="load">Reload</button>`,
		`name="_action" value="validate">Check</button>`,
		`formaction="/appearance/toggle" title="Theme: auto"`,
		`<link rel="stylesheet" href="/assets/settings.css">`,
		"--accent: #ff8800;",
		"@media (prefers-color-scheme: dark)",
		"--bg: #12151b;",
	)
	assertMissing(t, page, "<script>", "alert(1)", `class="toast`, "autofocus")
}

func TestRender_SaveEnabledAfterEdit(t *testing.T) {
	session := testsupport.MustSession(t)
	if err := session.Change("wifi.ssid", "home"); err != nil {
		t.Fatalf("change: %v", err)
	}
	page := renderPage(t, session, render.RenderOptions{})

	assertContains(t, page,
		`class="field field-text is-valid"`,
		`name="_action" value="save">Save All</button>`,
		`<form class="settings" method="post" action="/" novalidate>`,
	)
	assertMissing(t, page, `value="save" disabled`, "theme-toggle\" formaction")
}

func TestRender_DarkPreference(t *testing.T) {
	session := testsupport.MustSession(t)
	page := renderPage(t, session, render.RenderOptions{Preference: appearance.Dark})

	assertContains(t, page, `<html lang="en" data-theme="dark">`, "--bg: #12151b;", "--accent: #ff8800;")
	assertMissing(t, page, "prefers-color-scheme")
}

func TestRender_StandaloneInlinesStylesheet(t *testing.T) {
	session := testsupport.MustSession(t)
	page := renderPage(t, session, render.RenderOptions{Standalone: true, Preference: appearance.Light})

	assertContains(t, page, ".settings { max-width: 720px;", `data-theme="light"`)
	assertMissing(t, page, `<link rel="stylesheet"`)
}

func TestRender_NoticeFocusAndConfirm(t *testing.T) {
	session := testsupport.MustSession(t)
	if err := session.Save(context.Background()); !errors.Is(err, form.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	page := renderPage(t, session, render.RenderOptions{
		Pending: &render.PendingConfirm{Key: "page:net:0", Prompt: "Reboot now?"},
	})
	assertContains(t, page,
		`title="This field is required" autofocus`,
		`<p id="confirm-prompt">Reboot now?</p>`,
		`name="_confirmed" value="page:net:0">Confirm</button>`,
	)

	if err := session.Change("wifi.ssid", "home"); err != nil {
		t.Fatalf("change: %v", err)
	}
	if err := session.Save(context.Background()); !errors.Is(err, form.ErrNoService) {
		t.Fatalf("expected ErrNoService, got %v", err)
	}
	page = renderPage(t, session, render.RenderOptions{})
	assertContains(t, page, `<div class="toast toast-failure" role="status" aria-live="polite">Save failed</div>`)
}

func TestRender_EscapesValues(t *testing.T) {
	session := testsupport.MustSession(t)
	if err := session.Change("wifi.ssid", `"><script>x</script>`); err != nil {
		t.Fatalf("change: %v", err)
	}
	page := renderPage(t, session, render.RenderOptions{})
	assertContains(t, page, `value="&quot;&gt;&lt;script&gt;x&lt;/script&gt;"`)
	assertMissing(t, page, "<script>x</script>")
}

func TestRender_CustomTemplates(t *testing.T) {
	files := fstest.MapFS{
		"templates/page.tpl": {Data: []byte("{{ title }}:{% for page in pages %}{{ page.id }};{% endfor %}")},
	}
	r, err := html.New(html.WithTemplatesFS(files))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	session := testsupport.MustSession(t)
	out, err := r.Render(context.Background(), session.View(), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if string(out) != "Device:net;mqtt;" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestRender_CanceledContext(t *testing.T) {
	r, err := html.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Render(ctx, form.View{}, render.RenderOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestHelpers(t *testing.T) {
	if html.Stylesheet() == "" {
		t.Fatalf("embedded stylesheet missing")
	}
	r, _ := html.New()
	if r.Name() != "html" || !strings.HasPrefix(r.ContentType(), "text/html") {
		t.Fatalf("unexpected identity %q %q", r.Name(), r.ContentType())
	}
	if got := html.HelpPolicy().Sanitize(`<a href="https://x.test" onclick="y">doc</a>`); !strings.Contains(got, "nofollow") || strings.Contains(got, "onclick") {
		t.Fatalf("unexpected sanitised link %q", got)
	}
}
