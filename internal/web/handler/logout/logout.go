// Package logout ends the session of the current user.
package logout

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/GoSettings-Admin/GoSettings-Admin/internal/config"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/web/handler"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/web/handler/login"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/web/session"
)

// Path is the logout route.
const Path = handler.RootPath + "logout"

// Service is the logout handler service.
type Service struct {
	handler.Service
	cfg *config.Config
}

// Handler is the logout handler.
var Handler = Service{} //nolint:gochecknoglobals

// Init initializes the logout handler.
func (s *Service) Init(app *fiber.App, deps *handler.Dependencies) error {
	if app == nil || deps == nil || deps.Config == nil {
		return handler.ErrMissingDependency
	}

	s.cfg = deps.Config

	// logout route (outside auth middleware protection)
	app.Get(Path, s.Logout)
	app.Post(Path, s.Logout)

	return nil
}

// Logout handles user logout by clearing the session.
func (s *Service) Logout(c *fiber.Ctx) error {
	if sessionID := c.Cookies(session.CookieName); sessionID != "" {
		if err := session.Delete(sessionID); err != nil {
			log.Error().Err(err).Msg("failed to delete session")
		}
	}

	// Clear the session cookie
	c.Cookie(&fiber.Cookie{
		Name:     session.CookieName,
		Value:    "",
		MaxAge:   -1,
		Secure:   !s.cfg.DevMode,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return c.Redirect(login.Path)
}
