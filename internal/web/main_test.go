package web

import (
	"context"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoSettings-Admin/GoSettings-Admin/internal/auth"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/registry"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/web/handler"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/web/webtest"
)

func TestNewRequiresDependencies(t *testing.T) {
	_, err := New(nil)
	require.ErrorIs(t, err, handler.ErrMissingDependency)

	_, err = New(&handler.Dependencies{})
	require.ErrorIs(t, err, handler.ErrMissingDependency)
}

func TestPublicEndpoints(t *testing.T) {
	deps := webtest.NewDependencies(t, nil)

	s, err := New(deps)
	require.NoError(t, err)

	resp := webtest.Do(t, s.App, http.MethodGet, CheckAlivePath, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", webtest.Body(t, resp))

	resp = webtest.Do(t, s.App, http.MethodGet, MetricsPath, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, webtest.Body(t, resp), "go_goroutines")

	resp = webtest.Do(t, s.App, http.MethodGet, "/static/css/app.css", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = webtest.Do(t, s.App, http.MethodGet, "/login", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, webtest.Body(t, resp), `name="password"`)

	s.alive.Store(false)

	resp = webtest.Do(t, s.App, http.MethodGet, CheckAlivePath, nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestRoutingAndTemplates(t *testing.T) {
	deps := webtest.NewDependencies(t, nil)

	s, err := New(deps)
	require.NoError(t, err)

	resp := webtest.Do(t, s.App, http.MethodGet, "/", nil, "")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get(fiber.HeaderLocation))

	resp = webtest.Do(t, s.App, http.MethodGet, "/admin/settings/keys", nil, "")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login?destination=%2Fadmin%2Fsettings%2Fkeys", resp.Header.Get(fiber.HeaderLocation))

	sessionID := webtest.Login(t, deps, "admin", auth.PermAdminSettingsKeys, auth.PermSettingsContent)

	resp = webtest.Do(t, s.App, http.MethodGet, "/", nil, sessionID)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, handler.HomePath, resp.Header.Get(fiber.HeaderLocation))

	body := webtest.Body(t, webtest.Do(t, s.App, http.MethodGet, "/admin/settings/keys", nil, sessionID))
	assert.Contains(t, body, "No settings keys have been registered yet.")
	assert.Contains(t, body, `href="/settings/content"`, "menu entry for editors")

	require.NoError(t, deps.Registry.Upsert(context.Background(), registry.Definition{
		Key: "footer", Label: "Footer", Bundle: "text", Desc: "Footer text",
	}))

	pages := map[string]string{
		"/admin/settings/keys":             "<code>footer</code>",
		"/admin/settings/keys/new":         `data-exists-url="/admin/settings/keys/exists"`,
		"/admin/settings/keys/footer/edit": "disabled",
		"/settings/content":                "Footer text",
		"/settings/content/1/edit":         `name="body"`,
		"/settings/content/1/translations": "Not translated",
		"/settings/content/99/edit":        "Settings record not found",
	}

	for target, want := range pages {
		body = webtest.Body(t, webtest.Do(t, s.App, http.MethodGet, target, nil, sessionID))
		assert.Contains(t, body, want, target)
	}
}
