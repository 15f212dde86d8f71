package auth

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoSettings-Admin/GoSettings-Admin/internal/web/handler"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/web/session"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/web/webtest"
)

func TestMiddleware(t *testing.T) {
	deps := webtest.NewDependencies(t, nil)
	sessionID := webtest.Login(t, deps, "alice")

	app := fiber.New()
	app.Use(Middleware)

	ok := func(c *fiber.Ctx) error {
		username, _ := c.Locals(LocalsUsername).(string)
		return c.SendString("ok " + username)
	}
	app.Get("/login", ok)
	app.Get("/logout", ok)
	app.Get("/static/app.css", ok)
	app.Get("/settings/content", ok)
	app.Post("/settings/content/1/edit", ok)

	tests := []struct {
		name      string
		method    string
		target    string
		sessionID string
		status    int
		location  string
		body      string
	}{
		{"static is public", http.MethodGet, "/static/app.css", "", http.StatusOK, "", "ok "},
		{"logout is public", http.MethodGet, "/logout", "", http.StatusOK, "", "ok "},
		{"login without session", http.MethodGet, "/login", "", http.StatusOK, "", "ok "},
		{"login with stale session", http.MethodGet, "/login", "stale", http.StatusOK, "", "ok "},
		{"login with session", http.MethodGet, "/login", sessionID, http.StatusFound, handler.HomePath, ""},
		{
			"page without session", http.MethodGet, "/settings/content?x=1", "",
			http.StatusFound, "/login?destination=%2Fsettings%2Fcontent%3Fx%3D1", "",
		},
		{"post without session", http.MethodPost, "/settings/content/1/edit", "", http.StatusFound, "/login", ""},
		{"page with stale session", http.MethodGet, "/settings/content", "stale", http.StatusFound, "/login?destination=%2Fsettings%2Fcontent", ""},
		{"page with session", http.MethodGet, "/settings/content", sessionID, http.StatusOK, "", "ok alice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := webtest.Do(t, app, tt.method, tt.target, nil, tt.sessionID)
			require.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.location, resp.Header.Get(fiber.HeaderLocation))

			if tt.body != "" {
				assert.Equal(t, tt.body, webtest.Body(t, resp))
			}
		})
	}
}

func TestMiddlewareRejectsSessionWithoutUser(t *testing.T) {
	webtest.NewDependencies(t, nil)
	require.NoError(t, (&session.Data{}).Write("anonymous", 0))

	app := fiber.New()
	app.Use(Middleware)
	app.Get("/settings/content", func(c *fiber.Ctx) error { return c.SendString("ok") })

	resp := webtest.Do(t, app, http.MethodGet, "/settings/content", nil, "anonymous")
	require.Equal(t, http.StatusFound, resp.StatusCode)
}
