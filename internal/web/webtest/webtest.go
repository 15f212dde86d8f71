// Package webtest holds helpers shared by the handler tests.
package webtest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/storage/memory/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/GoSettings-Admin/GoSettings-Admin/internal/auth"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/config"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/db/controller/record"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/db/controller/setting"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/db/models"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/registry"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/web/flash"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/web/handler"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/web/session"
)

// NoOpViews is a fiber view engine writing the template name followed by the
// JSON encoded view data, so tests can assert on both.
type NoOpViews struct{}

// Load implements fiber.Views.
func (NoOpViews) Load() error { return nil }

// Render implements fiber.Views.
func (NoOpViews) Render(w io.Writer, name string, data any, _ ...string) error {
	_, _ = io.WriteString(w, name+"\n")

	raw, err := json.Marshal(data)
	if err != nil {
		_, _ = fmt.Fprintf(w, "%v", data)
		return nil //nolint:nilerr
	}

	_, _ = w.Write(raw)

	return nil
}

// Config returns a configuration with the basic, text and link bundles and translation enabled.
func Config() *config.Config {
	return &config.Config{
		Webserver: config.Webserver{
			URL:     "http://localhost",
			Port:    3000,
			Session: config.Session{ExpiryTime: time.Minute},
		},
		Settings: config.Settings{
			ConfigName: registry.DefaultConfigName,
			Translation: config.Translation{
				Enabled:         true,
				DefaultLanguage: "en",
				Languages:       []string{"de", "nl"},
			},
			Bundles: config.Bundles{
				"basic": {Label: "Basic", Fields: []config.Field{
					{Name: "value", Label: "Value", Type: config.FieldTextfield, Required: true},
				}},
				"text": {Label: "Text", Fields: []config.Field{
					{Name: "title", Label: "Title", Type: config.FieldTextfield},
					{Name: "body", Label: "Body", Type: config.FieldTextarea},
				}},
				"link": {Label: "Link", Fields: []config.Field{
					{Name: "link", Label: "Link", Type: config.FieldLink, Required: true},
				}},
			},
		},
	}
}

// NewDB opens a migrated in-memory database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to open sqlite in-memory db")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(models.All()...), "failed to migrate")

	return db
}

// NewDependencies wires handler dependencies on a fresh database and session store.
func NewDependencies(t *testing.T, cfg *config.Config) *handler.Dependencies {
	t.Helper()

	if cfg == nil {
		cfg = Config()
	}

	session.Init(memory.New())

	db := NewDB(t)
	records := record.NewStore(db, cfg.Settings.Translation.DefaultLanguage)

	return &handler.Dependencies{
		Config:   cfg,
		DB:       db,
		Auth:     auth.NewService(db),
		Registry: registry.New(cfg.Settings.ConfigName, setting.NewStore(db), records),
		Records:  records,
	}
}

// NewApp returns a fiber app rendering with NoOpViews and serving flash messages.
func NewApp() *fiber.App {
	app := fiber.New(fiber.Config{Views: NoOpViews{}, PassLocalsToViews: true})
	app.Use(flash.Middleware)

	return app
}

// Login creates an active user whose role grants permissions and returns a valid session id.
func Login(t *testing.T, deps *handler.Dependencies, username string, permissions ...string) string {
	t.Helper()

	role, err := deps.Auth.EnsureRole("role_"+username, "", permissions)
	require.NoError(t, err)

	user, err := auth.NewLocalProvider(deps.DB).CreateUser(username, "", "secret", role.ID)
	require.NoError(t, err)

	sessionID, err := session.GenerateSessionID()
	require.NoError(t, err)
	require.NoError(t, (&session.Data{User: *user}).Write(sessionID, time.Minute))

	return sessionID
}

// Do performs a request against app. A non-nil form is sent url encoded.
func Do(t *testing.T, app *fiber.App, method, target string, form url.Values, sessionID string) *http.Response {
	t.Helper()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	}

	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: sessionID})
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	t.Cleanup(func() { _ = resp.Body.Close() })

	return resp
}

// Body reads the response body.
func Body(t *testing.T, resp *http.Response) string {
	t.Helper()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return string(raw)
}
