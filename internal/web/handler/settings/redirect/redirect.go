// Package redirect resolves a settings key to the edit page of its record.
package redirect

import (
	"errors"
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/GoSettings-Admin/GoSettings-Admin/internal/auth"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/db/controller/record"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/registry"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/web/flash"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/web/handler"
)

const (
	// Path is the base path of the redirect route.
	Path = handler.RootPath + "settings/redirect"

	// AnchorQuery is the fragment appended to the edit page.
	AnchorQuery = "anchor"

	fallback = handler.HomePath
)

// Service resolves settings keys.
type Service struct {
	handler.Service
	registry *registry.Registry
	records  *record.Store
}

// Handler is the exported instance.
var Handler = Service{} //nolint:gochecknoglobals

// Init registers routes.
func (s *Service) Init(app *fiber.App, deps *handler.Dependencies) error {
	if app == nil {
		return handler.ErrMissingDependency
	}

	if err := deps.Validate(); err != nil {
		return err
	}

	s.registry = deps.Registry
	s.records = deps.Records

	app.Get(Path+"/:key", auth.RequirePermission(deps.Auth, auth.PermSettingsContent), s.Redirect)

	return nil
}

// Redirect sends the editor to the record of key. Unknown keys, and keys whose
// record is missing, go back to the destination with a notice. Store failures are 500s.
func (s *Service) Redirect(c *fiber.Ctx) error {
	key := c.Params("key")
	destination := handler.Destination(c, fallback)

	_, found, err := s.registry.ReadOne(c.UserContext(), key)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to read settings key")

		return fiber.NewError(fiber.StatusInternalServerError, "Failed to load settings key "+key)
	}

	if !found {
		return s.unknown(c, key, destination)
	}

	rec, err := s.records.FirstByKey(c.UserContext(), key)
	if err != nil {
		if errors.Is(err, record.ErrRecordNotFound) {
			log.Warn().Str("key", key).Msg("registered settings key has no record")

			return s.unknown(c, key, destination)
		}

		log.Error().Err(err).Str("key", key).Msg("failed to load settings record")

		return fiber.NewError(fiber.StatusInternalServerError, "Failed to load settings record of "+key)
	}

	target := handler.HomePath + "/" + strconv.FormatUint(rec.ID, 10) + "/edit?" +
		url.Values{handler.DestinationQuery: {destination}}.Encode()

	if anchor := c.Query(AnchorQuery); anchor != "" {
		target += "#" + url.PathEscape(anchor)
	}

	return c.Redirect(target)
}

func (s *Service) unknown(c *fiber.Ctx, key, destination string) error {
	flash.Add(c, flash.LevelError, "Unknown settings key: "+key)

	return c.Redirect(destination)
}
