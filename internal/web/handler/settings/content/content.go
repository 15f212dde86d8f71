// Package content provides the editor pages listing and editing settings records.
package content

import (
	"errors"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/GoSettings-Admin/GoSettings-Admin/internal/auth"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/config"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/db/controller/record"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/db/models"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/registry"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/web/flash"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/web/handler"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/web/navigation"
)

const (
	// Path is the content overview.
	Path = handler.HomePath

	// TemplateList is the content overview template.
	TemplateList = "settings/content/list"
	// TemplateEdit is the record edit form.
	TemplateEdit = "settings/content/edit"
	// TemplateTranslations lists the languages of a record.
	TemplateTranslations = "settings/content/translations"
	// TemplateError renders a not found or failure page.
	TemplateError = "settings/content/error"

	// LangQuery selects the language to edit.
	LangQuery = "lang"

	navSection = "settings"
	navPage    = "content"

	maxTextfieldLength = 255
)

// ErrUnknownBundle is reported for records whose bundle is not configured anymore.
var ErrUnknownBundle = errors.New("the bundle of this record is not configured")

// Row is one line of the content overview.
type Row struct {
	ID           uint64
	Key          string
	Label        string
	Desc         string
	Bundle       string
	Languages    []string
	EditURL      string
	TranslateURL string
}

// FieldView is a bundle field prepared for the edit form.
type FieldView struct {
	Name     string
	Label    string
	Type     string
	Required bool
	Value    string
	URL      string
	Title    string
	Error    string
}

// LanguageView is the translation status of a record in one language.
type LanguageView struct {
	Langcode   string
	IsDefault  bool
	Translated bool
	EditURL    string
}

// Service provides the content pages.
type Service struct {
	handler.Service
	cfg       *config.Config
	registry  *registry.Registry
	records   *record.Store
	validator *validator.Validate
	translate bool
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

	s.cfg = deps.Config
	s.registry = deps.Registry
	s.records = deps.Records
	s.validator = validator.New()
	s.translate = deps.Config.Settings.Translation.Enabled

	perm := auth.RequirePermission(deps.Auth, auth.PermSettingsContent)

	app.Get(Path, perm, s.List)
	app.Get(Path+"/:id/edit", perm, s.Edit)
	app.Post(Path+"/:id/edit", perm, s.Save)

	if s.translate {
		app.Get(Path+"/:id/translations", perm, s.Translations)
	}

	return nil
}

// TranslationEnabled reports whether the translate operation is offered.
func (s *Service) TranslationEnabled() bool {
	return s.translate
}

// List shows every record whose key is registered.
func (s *Service) List(c *fiber.Ctx) error {
	nav := navigation.NewContext("Settings", navSection, navPage).
		AddBreadcrumb("Home", handler.HomePath, false).
		AddBreadcrumb("Settings", Path, true)

	rows, err := s.rows(c)
	if err != nil {
		log.Error().Err(err).Msg("failed to build settings overview")

		return c.Status(fiber.StatusInternalServerError).Render(TemplateList, fiber.Map{
			"Navigation": nav,
			"Error":      "Failed to load settings",
		}, handler.BaseLayout)
	}

	return c.Render(TemplateList, fiber.Map{
		"Navigation": nav,
		"Rows":       rows,
		"Translate":  s.translate,
	}, handler.BaseLayout)
}

func (s *Service) rows(c *fiber.Ctx) ([]Row, error) {
	keys, err := s.registry.ReadAll(c.UserContext())
	if err != nil {
		return nil, err
	}

	records, err := s.records.List(c.UserContext())
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(records))

	for i := range records {
		rec := &records[i]

		def, ok := keys.Get(rec.SettingsKey)
		if !ok {
			continue
		}

		row := Row{
			ID:        rec.ID,
			Key:       rec.SettingsKey,
			Label:     def.Label,
			Desc:      def.Desc,
			Bundle:    rec.Type,
			Languages: rec.Langcodes(),
			EditURL:   recordPath(rec.ID, "edit") + "?" + handler.DestinationQuery + "=" + Path,
		}

		if s.translate {
			row.TranslateURL = recordPath(rec.ID, "translations") + "?" + handler.DestinationQuery + "=" + Path
		}

		rows = append(rows, row)
	}

	return rows, nil
}

// Edit shows the values of a record in one language.
// Without a lang query the best match for the Accept-Language header is used.
func (s *Service) Edit(c *fiber.Ctx) error {
	rec, bundle, ok, err := s.load(c)
	if !ok {
		return err
	}

	langcode, ok := s.langcode(c, rec)
	if !ok {
		return s.renderError(c, fiber.StatusBadRequest, "Unsupported language "+c.Query(LangQuery))
	}

	values := record.DecodeValues(rec.Translation(langcode))
	isNew := rec.Translation(langcode) == nil

	if isNew {
		// a new translation starts from the original values
		values = record.DecodeValues(rec.Translation(rec.DefaultLangcode))
	}

	return s.renderEdit(c, fiber.StatusOK, rec, bundle, langcode, isNew, fieldViews(bundle.Fields, values), "")
}

// Save stores the submitted values for one language.
func (s *Service) Save(c *fiber.Ctx) error {
	rec, bundle, ok, err := s.load(c)
	if !ok {
		return err
	}

	langcode, ok := s.langcode(c, rec)
	if !ok {
		return s.renderError(c, fiber.StatusBadRequest, "Unsupported language "+c.Query(LangQuery))
	}

	values, views, valid := s.readForm(c, bundle.Fields)
	if !valid {
		return s.renderEdit(c, fiber.StatusBadRequest, rec, bundle, langcode,
			rec.Translation(langcode) == nil, views, "Please correct the highlighted errors")
	}

	if err = s.records.SaveValues(c.UserContext(), rec.ID, langcode, values); err != nil {
		log.Error().Err(err).Uint64("record", rec.ID).Str("langcode", langcode).Msg("failed to save settings record")

		return s.renderEdit(c, fiber.StatusInternalServerError, rec, bundle, langcode,
			rec.Translation(langcode) == nil, views, "Failed to save settings")
	}

	log.Info().Uint64("record", rec.ID).Str("key", rec.SettingsKey).Str("langcode", langcode).Msg("settings saved")
	flash.Add(c, flash.LevelSuccess, "Settings "+s.label(c, rec)+" have been saved.")

	return c.Redirect(handler.Destination(c, Path))
}

// Translations lists the configured languages of a record and whether they are translated.
func (s *Service) Translations(c *fiber.Ctx) error {
	rec, _, ok, err := s.load(c)
	if !ok {
		return err
	}

	languages := make([]LanguageView, 0, len(s.cfg.Settings.Translation.Languages)+1)
	for _, langcode := range s.languages(rec) {
		languages = append(languages, LanguageView{
			Langcode:   langcode,
			IsDefault:  langcode == rec.DefaultLangcode,
			Translated: rec.Translation(langcode) != nil,
			EditURL:    recordPath(rec.ID, "edit") + "?" + LangQuery + "=" + langcode,
		})
	}

	label := s.label(c, rec)

	return c.Render(TemplateTranslations, fiber.Map{
		"Navigation":  s.nav("Translations of "+label, recordPath(rec.ID, "translations")),
		"Record":      rec,
		"Label":       label,
		"Languages":   languages,
		"Destination": handler.Destination(c, Path),
	}, handler.BaseLayout)
}

// load reads the record named by the id parameter. When ok is false the response
// has been written and err is the result to return from the handler.
func (s *Service) load(c *fiber.Ctx) (*models.SettingRecord, config.Bundle, bool, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return nil, config.Bundle{}, false, s.renderError(c, fiber.StatusNotFound, "Settings record not found")
	}

	rec, err := s.records.Get(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, record.ErrRecordNotFound) {
			return nil, config.Bundle{}, false, s.renderError(c, fiber.StatusNotFound, "Settings record not found")
		}

		log.Error().Err(err).Uint64("record", id).Msg("failed to load settings record")

		return nil, config.Bundle{}, false, s.renderError(c, fiber.StatusInternalServerError, "Failed to load settings record")
	}

	bundle, ok := s.cfg.Settings.Bundles[rec.Type]
	if !ok {
		log.Error().Err(ErrUnknownBundle).Uint64("record", id).Str("bundle", rec.Type).Msg("cannot edit settings record")

		return nil, config.Bundle{}, false, s.renderError(c, fiber.StatusInternalServerError, ErrUnknownBundle.Error())
	}

	return rec, bundle, true, nil
}

// languages lists the languages a record can be edited in.
func (s *Service) languages(rec *models.SettingRecord) []string {
	if !s.translate {
		return []string{rec.DefaultLangcode}
	}

	out := []string{rec.DefaultLangcode}

	for _, l := range s.cfg.Settings.Translation.AllLanguages() {
		if !slices.Contains(out, l) {
			out = append(out, l)
		}
	}

	return out
}

func (s *Service) langcode(c *fiber.Ctx, rec *models.SettingRecord) (string, bool) {
	langcode := c.Query(LangQuery)
	if langcode == "" {
		if !s.translate {
			return rec.DefaultLangcode, true
		}

		return record.ResolveTranslation(rec, record.PreferredLanguages(c.Get(fiber.HeaderAcceptLanguage))...).Langcode, true
	}

	return langcode, slices.Contains(s.languages(rec), langcode)
}

// label returns the registry label of the record's key, or the key itself.
func (s *Service) label(c *fiber.Ctx, rec *models.SettingRecord) string {
	def, found, err := s.registry.ReadOne(c.UserContext(), rec.SettingsKey)
	if err != nil || !found {
		return rec.SettingsKey
	}

	return def.Label
}

// readForm collects the posted values of fields. Link fields are posted as
// name[url] and name[title].
func (s *Service) readForm(c *fiber.Ctx, fields []config.Field) (record.Values, []FieldView, bool) {
	values := make(record.Values, len(fields))
	views := make([]FieldView, 0, len(fields))
	valid := true

	for _, f := range fields {
		view := FieldView{Name: f.Name, Label: f.Label, Type: f.Type, Required: f.Required}

		switch f.Type {
		case config.FieldLink:
			view.URL = strings.TrimSpace(c.FormValue(f.Name + "[url]"))
			view.Title = strings.TrimSpace(c.FormValue(f.Name + "[title]"))
			view.Error = s.checkLink(f, view.URL)
			values[f.Name] = map[string]any{"url": view.URL, "title": view.Title}
		case config.FieldTextfield:
			view.Value = strings.TrimSpace(c.FormValue(f.Name))
			view.Error = s.checkText(f, view.Value, "max="+strconv.Itoa(maxTextfieldLength))
			values[f.Name] = view.Value
		default:
			view.Value = c.FormValue(f.Name)
			view.Error = s.checkText(f, strings.TrimSpace(view.Value), "")
			values[f.Name] = view.Value
		}

		if view.Error != "" {
			valid = false
		}

		views = append(views, view)
	}

	return values, views, valid
}

func (s *Service) checkText(f config.Field, value, tag string) string {
	if value == "" {
		if f.Required {
			return f.Label + " field is required."
		}

		return ""
	}

	if tag != "" && s.validator.Var(value, tag) != nil {
		return f.Label + " cannot be longer than " + strconv.Itoa(maxTextfieldLength) + " characters."
	}

	return ""
}

func (s *Service) checkLink(f config.Field, url string) string {
	if url == "" {
		if f.Required {
			return f.Label + " field is required."
		}

		return ""
	}

	if handler.SafeDestination(url, "") == url {
		return ""
	}

	if s.validator.Var(url, "http_url") != nil {
		return f.Label + " must be an internal path starting with / or an external http(s) URL."
	}

	return ""
}

func (s *Service) renderEdit(
	c *fiber.Ctx,
	status int,
	rec *models.SettingRecord,
	bundle config.Bundle,
	langcode string,
	isNew bool,
	fields []FieldView,
	errMsg string,
) error {
	label := s.label(c, rec)
	query := url.Values{LangQuery: {langcode}}
	if dest := c.Query(handler.DestinationQuery); dest != "" {
		query.Set(handler.DestinationQuery, handler.SafeDestination(dest, Path))
	}

	action := recordPath(rec.ID, "edit") + "?" + query.Encode()

	data := fiber.Map{
		"Navigation":       s.nav("Edit "+label, recordPath(rec.ID, "edit")),
		"Record":           rec,
		"Label":            label,
		"Bundle":           bundle,
		"Fields":           fields,
		"Langcode":         langcode,
		"IsNewTranslation": isNew,
		"Translate":        s.translate,
		"Action":           action,
		"Destination":      handler.Destination(c, Path),
	}

	if errMsg != "" {
		data["Error"] = errMsg
	}

	return c.Status(status).Render(TemplateEdit, data, handler.BaseLayout)
}

func (s *Service) renderError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).Render(TemplateError, fiber.Map{
		"Navigation": s.nav("Settings", Path),
		"Error":      msg,
	}, handler.BaseLayout)
}

func (s *Service) nav(title, page string) *navigation.Context {
	return navigation.NewContext(title, navSection, navPage).
		AddBreadcrumb("Home", handler.HomePath, false).
		AddBreadcrumb("Settings", Path, false).
		AddBreadcrumb(title, page, true)
}

// fieldViews prepares stored values for the edit form.
func fieldViews(fields []config.Field, values record.Values) []FieldView {
	filled := record.Fill(values, fields)
	views := make([]FieldView, 0, len(fields))

	for _, f := range fields {
		view := FieldView{Name: f.Name, Label: f.Label, Type: f.Type, Required: f.Required}

		switch v := filled[f.Name].(type) {
		case record.Link:
			view.URL, view.Title = v.URL, v.Title
		case string:
			view.Value = v
		}

		views = append(views, view)
	}

	return views
}

func recordPath(id uint64, op string) string {
	return Path + "/" + strconv.FormatUint(id, 10) + "/" + op
}
