package login

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/GoSettings-Admin/GoSettings-Admin/internal/auth"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/config"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/db/models"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/web/handler"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/web/session"
)

const (
	// Path is the path to the login page.
	Path = "/login"

	// Template is the login page template.
	Template = "login"
)

// Service is the login handler service.
type Service struct {
	handler.Service
	cfg       *config.Config
	local     *auth.LocalProvider
	validator *validator.Validate
}

// Handler is the login handler.
var Handler = Service{} //nolint:gochecknoglobals

type form struct {
	Username string `form:"username" json:"username" validate:"required,max=255"`
	Password string `form:"password" json:"password" validate:"required"`
}

// Init initializes the login handler.
func (s *Service) Init(app *fiber.App, deps *handler.Dependencies) error {
	if app == nil {
		return handler.ErrMissingDependency
	}

	if err := deps.Validate(); err != nil {
		return err
	}

	s.cfg = deps.Config
	s.local = auth.NewLocalProvider(deps.DB)
	s.validator = validator.New()

	// register routes
	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RouterRootPath, s.Get)
		router.Post(handler.RouterRootPath, s.Post)
	})

	return nil
}

// Get handles the login page rendering.
func (s *Service) Get(c *fiber.Ctx) error {
	return s.render(c, nil)
}

// Post handles the login form submission.
func (s *Service) Post(c *fiber.Ctx) error {
	in := new(form)

	if err := c.BodyParser(in); err != nil {
		return s.render(c, ErrInvalidFormData)
	}

	if err := s.validator.Struct(in); err != nil {
		return s.render(c, ErrInvalidFormData)
	}

	user, err := s.authenticate(in.Username, in.Password)
	if err != nil {
		log.Warn().Err(err).Str("username", in.Username).Str("ip", c.IP()).Msg("login failed")

		return s.render(c, err)
	}

	sessionID, err := session.GenerateSessionID()
	if err != nil {
		log.Error().Err(err).Msg("failed to generate session ID")

		return s.render(c, ErrInternalServerError)
	}

	userSession := &session.Data{
		User: *user,
	}

	if err = userSession.Write(sessionID, s.cfg.Webserver.Session.ExpiryTime); err != nil {
		log.Error().Err(err).Msg("failed to write session")

		return s.render(c, ErrInternalServerError)
	}

	// set login cookie
	cookieSettings := &fiber.Cookie{
		Name:     session.CookieName,
		Value:    sessionID,
		MaxAge:   int(s.cfg.Webserver.Session.ExpiryTime.Seconds()),
		Secure:   true,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	}

	if s.cfg.DevMode {
		cookieSettings.Secure = false
	}

	c.Cookie(cookieSettings)

	log.Info().Str("username", user.Username).Msg("user logged in")

	return c.Redirect(handler.Destination(c, handler.HomePath))
}

// authenticate maps provider errors to the messages shown on the login page.
func (s *Service) authenticate(username, password string) (*models.User, error) {
	user, err := s.local.Authenticate(username, password)

	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, auth.ErrUserNotFound), errors.Is(err, auth.ErrInvalidPassword):
		return nil, ErrInvalidCredentials
	case errors.Is(err, auth.ErrUserAccountDisabled):
		return nil, ErrAccountDisabled
	default:
		log.Error().Err(err).Msg("local authentication failed")

		return nil, ErrInternalServerError
	}
}

func (s *Service) render(c *fiber.Ctx, err error) error {
	data := fiber.Map{
		"Title":       s.cfg.Title,
		"Destination": handler.Destination(c, ""),
	}

	if err != nil {
		data["error"] = err.Error()
	}

	return c.Render(Template, data)
}
