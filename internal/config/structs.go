package config

import (
	"slices"
	"time"

	"github.com/GoSettings-Admin/GoSettings-Admin/internal/logger"
)

// Field types supported by bundles.
const (
	FieldTextfield = "textfield"
	FieldTextarea  = "textarea"
	FieldLink      = "link"
)

// Session settings.
type Session struct {
	ExpiryTime time.Duration
}

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Webserver Webserver
	Settings  Settings
}

// Webserver implement webserver settings.
type Webserver struct {
	BrowseStatic   bool    // enable static file browsing (for development purposes only)
	DisableRecover bool    // disable recover middleware
	Port           int     // listening port for the webserver
	ShutDownTime   int     // wait time for shutdown
	URL            string  // base url for the webserver
	Session        Session // session settings
}

// Settings configures the key registry and the content records behind it.
type Settings struct {
	// ConfigName is the name of the aggregate holding all key definitions.
	ConfigName  string
	Bundles     Bundles
	Translation Translation
}

// Translation configures the languages records can be translated into.
type Translation struct {
	// Enabled offers the translate operation in the content overview.
	Enabled         bool
	DefaultLanguage string
	Languages       []string
}

// Bundles maps a bundle name to its shape.
type Bundles map[string]Bundle

// Bundle describes the fields a settings record of this type carries.
type Bundle struct {
	Label  string
	Fields []Field
}

// Field is a single value editors can fill in.
type Field struct {
	Name     string
	Label    string
	Type     string // textfield, textarea or link
	Required bool
}

// Names returns the bundle names sorted alphabetically.
func (b Bundles) Names() []string {
	names := make([]string, 0, len(b))
	for name := range b {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// Has reports whether a bundle with this name is configured.
func (b Bundles) Has(name string) bool {
	_, ok := b[name]

	return ok
}

// AllLanguages returns the default language followed by the other configured languages.
func (t Translation) AllLanguages() []string {
	out := []string{t.DefaultLanguage}

	for _, l := range t.Languages {
		if !slices.Contains(out, l) {
			out = append(out, l)
		}
	}

	return out
}
