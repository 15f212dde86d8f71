// Package keys provides the admin handlers managing settings key definitions.
package keys

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/GoSettings-Admin/GoSettings-Admin/internal/auth"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/config"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/registry"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/web/flash"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/web/handler"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/web/navigation"
)

const (
	// Path is the base path for key management.
	Path = handler.RootPath + "admin/settings/keys"

	// TemplateList is the template listing all keys.
	TemplateList = "admin/settings/keys/list"
	// TemplateForm is the template for adding or editing a key.
	TemplateForm = "admin/settings/keys/form"
	// TemplateDelete is the delete confirmation template.
	TemplateDelete = "admin/settings/keys/delete"

	navSection = "admin"
	navPage    = "settings-keys"
)

// ErrKeyExists is reported when a new key collides with a registered one.
var ErrKeyExists = errors.New("the machine-readable name is already in use, it must be unique")

// Service provides CRUD operations for settings keys.
type Service struct {
	handler.Service
	cfg       *config.Config
	registry  *registry.Registry
	validator *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{} //nolint:gochecknoglobals

// keyForm is the submitted add/edit form.
type keyForm struct {
	Key    string `form:"key"    json:"key"    validate:"required,max=64,settingskey"`
	Label  string `form:"label"  json:"label"  validate:"required,max=64"`
	Bundle string `form:"bundle" json:"bundle" validate:"required"`
	Desc   string `form:"desc"   json:"desc"   validate:"required,max=255"`
}

// Init registers routes.
func (s *Service) Init(app *fiber.App, deps *handler.Dependencies) error {
	if app == nil {
		return handler.ErrMissingDependency
	}

	if err := deps.Validate(); err != nil {
		return err
	}

	s.cfg = deps.Config
	s.registry = deps.Registry
	s.validator = validator.New()

	if err := registry.RegisterValidations(s.validator); err != nil {
		return err
	}

	perm := auth.RequirePermission(deps.Auth, auth.PermAdminSettingsKeys)

	app.Get(Path, perm, s.List)
	app.Get(Path+"/new", perm, s.New)
	app.Get(Path+"/exists", perm, s.Exists)
	app.Post(Path, perm, s.Create)
	app.Get(Path+"/:key/edit", perm, s.Edit)
	app.Post(Path+"/:key", perm, s.Update)
	app.Get(Path+"/:key/delete", perm, s.ConfirmDelete)
	app.Post(Path+"/:key/delete", perm, s.Delete)

	return nil
}

func (s *Service) nav(title, page string) *navigation.Context {
	nav := navigation.NewContext(title, navSection, navPage).
		AddBreadcrumb("Home", handler.HomePath, false).
		AddBreadcrumb("Admin", "#", false)

	if page == "" {
		return nav.AddBreadcrumb("Settings keys", Path, true)
	}

	return nav.AddBreadcrumb("Settings keys", Path, false).AddBreadcrumb(title, page, true)
}

// List shows all registered keys in storage order.
func (s *Service) List(c *fiber.Ctx) error {
	nav := s.nav("Settings keys", "")

	keys, err := s.registry.ReadAll(c.UserContext())
	if err != nil {
		log.Error().Err(err).Msg("failed to read settings keys")

		return c.Status(fiber.StatusInternalServerError).Render(TemplateList, fiber.Map{
			"Navigation": nav,
			"Error":      "Failed to load settings keys",
		}, handler.BaseLayout)
	}

	return c.Render(TemplateList, fiber.Map{
		"Navigation": nav,
		"Keys":       keys.All(),
		"Bundles":    s.cfg.Settings.Bundles,
	}, handler.BaseLayout)
}

// New shows the empty add form.
func (s *Service) New(c *fiber.Ctx) error {
	return s.renderForm(c, fiber.StatusOK, keyForm{}, true, nil, "")
}

// Edit shows the form for an existing key. The key itself can not be changed.
func (s *Service) Edit(c *fiber.Ctx) error {
	key := c.Params("key")

	def, found, err := s.registry.ReadOne(c.UserContext(), key)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to read settings key")

		return s.renderForm(c, fiber.StatusInternalServerError, keyForm{Key: key}, false, nil, "Failed to load settings key")
	}

	if !found {
		flash.Add(c, flash.LevelError, "Unknown settings key: "+key)

		return c.Redirect(Path)
	}

	return s.renderForm(c, fiber.StatusOK, fromDefinition(def), false, nil, "")
}

// Exists answers the machine name check of the add form.
func (s *Service) Exists(c *fiber.Ctx) error {
	key := c.Query("key")

	_, found, err := s.registry.ReadOne(c.UserContext(), key)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to check settings key")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to check key"})
	}

	return c.JSON(fiber.Map{
		"key":    key,
		"exists": found,
		"valid":  registry.ValidKey(key),
	})
}

// Create adds a new key.
func (s *Service) Create(c *fiber.Ctx) error {
	var in keyForm
	if err := c.BodyParser(&in); err != nil {
		return s.renderForm(c, fiber.StatusBadRequest, in, true, nil, "Invalid form data")
	}

	if fieldErrors := s.validate(in); len(fieldErrors) > 0 {
		return s.renderForm(c, fiber.StatusBadRequest, in, true, fieldErrors, "Please correct the highlighted errors")
	}

	_, found, err := s.registry.ReadOne(c.UserContext(), in.Key)
	if err != nil {
		log.Error().Err(err).Str("key", in.Key).Msg("failed to check settings key")

		return s.renderForm(c, fiber.StatusInternalServerError, in, true, nil, "Failed to save settings key")
	}

	if found {
		return s.renderForm(c, fiber.StatusBadRequest, in, true,
			map[string]string{"key": ErrKeyExists.Error()}, "Please correct the highlighted errors")
	}

	return s.save(c, in, true, "added")
}

// Update replaces the label, bundle and description of an existing key.
func (s *Service) Update(c *fiber.Ctx) error {
	key := c.Params("key")

	_, found, err := s.registry.ReadOne(c.UserContext(), key)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to read settings key")

		return s.renderForm(c, fiber.StatusInternalServerError, keyForm{Key: key}, false, nil, "Failed to save settings key")
	}

	if !found {
		flash.Add(c, flash.LevelError, "Unknown settings key: "+key)

		return c.Redirect(Path)
	}

	var in keyForm
	if err = c.BodyParser(&in); err != nil {
		return s.renderForm(c, fiber.StatusBadRequest, keyForm{Key: key}, false, nil, "Invalid form data")
	}

	in.Key = key

	if fieldErrors := s.validate(in); len(fieldErrors) > 0 {
		return s.renderForm(c, fiber.StatusBadRequest, in, false, fieldErrors, "Please correct the highlighted errors")
	}

	return s.save(c, in, false, "updated")
}

func (s *Service) save(c *fiber.Ctx, in keyForm, isCreate bool, verb string) error {
	def := registry.Definition{Key: in.Key, Label: in.Label, Bundle: in.Bundle, Desc: in.Desc}

	if err := s.registry.Upsert(c.UserContext(), def); err != nil {
		log.Error().Err(err).Str("key", in.Key).Msg("failed to save settings key")

		return s.renderForm(c, fiber.StatusInternalServerError, in, isCreate, nil, "Failed to save settings key")
	}

	log.Info().Str("key", def.Key).Str("bundle", def.Bundle).Msg("settings key " + verb)
	flash.Add(c, flash.LevelSuccess, "Settings key "+def.Key+" has been "+verb+".")

	return c.Redirect(handler.Destination(c, Path))
}

// ConfirmDelete asks before removing a key.
func (s *Service) ConfirmDelete(c *fiber.Ctx) error {
	key := c.Params("key")

	def, found, err := s.registry.ReadOne(c.UserContext(), key)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to read settings key")

		return c.Status(fiber.StatusInternalServerError).Render(TemplateDelete, fiber.Map{
			"Navigation": s.nav("Delete "+key, Path+"/"+key+"/delete"),
			"Error":      "Failed to load settings key",
		}, handler.BaseLayout)
	}

	if !found {
		flash.Add(c, flash.LevelError, "Unknown settings key: "+key)

		return c.Redirect(Path)
	}

	return c.Render(TemplateDelete, fiber.Map{
		"Navigation":  s.nav("Delete "+key, Path+"/"+key+"/delete"),
		"Key":         def,
		"Destination": handler.Destination(c, Path),
	}, handler.BaseLayout)
}

// Delete removes a key from the registry. Its content record is kept.
func (s *Service) Delete(c *fiber.Ctx) error {
	key := c.Params("key")

	if err := s.registry.Delete(c.UserContext(), key); err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to delete settings key")

		return c.Status(fiber.StatusInternalServerError).Render(TemplateDelete, fiber.Map{
			"Navigation": s.nav("Delete "+key, Path+"/"+key+"/delete"),
			"Error":      "Failed to delete settings key",
		}, handler.BaseLayout)
	}

	log.Info().Str("key", key).Msg("settings key deleted")
	flash.Add(c, flash.LevelSuccess, "Settings key "+key+" has been deleted.")

	return c.Redirect(handler.Destination(c, Path))
}

// validate returns a message per invalid form field.
func (s *Service) validate(in keyForm) map[string]string {
	out := map[string]string{}

	if err := s.validator.Struct(in); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			out["form"] = err.Error()
			return out
		}

		for _, fe := range validationErrors {
			out[fieldName(fe.Field())] = message(fe)
		}
	}

	if _, ok := out["bundle"]; !ok && !s.cfg.Settings.Bundles.Has(in.Bundle) {
		out["bundle"] = "Unknown bundle " + in.Bundle
	}

	return out
}

func (s *Service) renderForm(
	c *fiber.Ctx,
	status int,
	in keyForm,
	isCreate bool,
	fieldErrors map[string]string,
	errMsg string,
) error {
	title, page := "Add settings key", Path+"/new"
	if !isCreate {
		title, page = "Edit "+in.Key, Path+"/"+in.Key+"/edit"
	}

	data := fiber.Map{
		"Navigation":  s.nav(title, page),
		"Form":        in,
		"IsCreate":    isCreate,
		"Bundles":     s.cfg.Settings.Bundles,
		"BundleNames": s.cfg.Settings.Bundles.Names(),
		"FieldErrors": fieldErrors,
		"Destination": handler.Destination(c, Path),
	}

	if errMsg != "" {
		data["Error"] = errMsg
	}

	return c.Status(status).Render(TemplateForm, data, handler.BaseLayout)
}

func fromDefinition(d registry.Definition) keyForm {
	return keyForm{Key: d.Key, Label: d.Label, Bundle: d.Bundle, Desc: d.Desc}
}

func fieldName(structField string) string {
	switch structField {
	case "Key":
		return "key"
	case "Label":
		return "label"
	case "Bundle":
		return "bundle"
	default:
		return "desc"
	}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " field is required."
	case "max":
		return fe.Field() + " cannot be longer than " + fe.Param() + " characters."
	case registry.ValidationTagKey:
		return "The machine-readable name must contain only lowercase letters, numbers, and underscores."
	default:
		return fe.Field() + " is invalid."
	}
}
