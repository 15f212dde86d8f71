// Package config handles input from etc/*.toml files
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

const (
	// EnvConfigJSON names the environment variable holding a JSON config override.
	EnvConfigJSON = "GOSETTINGS_ADMIN_CONFIG_JSON"

	defaultShutDownTime    = 5
	defaultSessionExpiry   = 24 * time.Hour
	defaultDefaultLanguage = "en"
)

// ReadConfig from config file.
func ReadConfig(path string) (Config, error) {
	var (
		c             Config
		JSONConfigEnv string
		err           error
	)

	// Read main configuration
	if path == "" {
		path = "./etc/"
	}

	if _, err = toml.DecodeFile(path+"main.toml", &c); err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	// override it from env
	JSONConfigEnv = os.Getenv(EnvConfigJSON)

	if JSONConfigEnv != "" {
		c, err = decodeAndMergeConfig(c, JSONConfigEnv)
		if err != nil {
			return c, err
		}
	}

	return c, validate(&c)
}

func decodeAndMergeConfig(c Config, configAsJSON string) (Config, error) {
	err := json.Unmarshal([]byte(configAsJSON), &c)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to read json config override")
	}

	return c, nil
}

// DumpConfig config as TOML String.
func DumpConfig(c *Config) (string, error) {
	var buffer bytes.Buffer
	t := toml.NewEncoder(&buffer)

	if err := t.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// DumpConfigJSON config as JSON String.
func DumpConfigJSON(c *Config) (string, error) {
	var buffer bytes.Buffer
	j := json.NewEncoder(&buffer)
	j.SetIndent("", "  ")

	if err := j.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// validate the config and fill in defaults.
func validate(c *Config) error {
	invalidErrMessage := "invalid config"

	if c.Webserver.Port == 0 {
		return errors.Wrap(ErrWebServerPortCanNotBeZero, invalidErrMessage)
	}

	if c.Webserver.URL == "" {
		return errors.Wrap(ErrEmptyURL, invalidErrMessage)
	}

	switch c.DB.GormEngine {
	case "":
		c.DB.GormEngine = EngineMySQL
	case EngineMySQL, EnginePostgres, EngineSQLite:
	default:
		return errors.Wrap(ErrUnsupportedGormEngine, c.DB.GormEngine)
	}

	for name, bundle := range c.Settings.Bundles {
		for _, f := range bundle.Fields {
			if f.Name == "" {
				return errors.Wrap(ErrEmptyFieldName, fmt.Sprintf("bundle %s", name))
			}

			switch f.Type {
			case FieldTextfield, FieldTextarea, FieldLink:
			default:
				return errors.Wrap(ErrUnknownFieldType, fmt.Sprintf("bundle %s field %s: %q", name, f.Name, f.Type))
			}
		}
	}

	if c.Webserver.ShutDownTime == 0 {
		c.Webserver.ShutDownTime = defaultShutDownTime
	}

	if c.Webserver.Session.ExpiryTime == 0 {
		c.Webserver.Session.ExpiryTime = defaultSessionExpiry
	}

	if c.Settings.Translation.DefaultLanguage == "" {
		c.Settings.Translation.DefaultLanguage = defaultDefaultLanguage
	}

	return nil
}
