// Package app implements the command line interface of gosettings-admin.
package app

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/GoSettings-Admin/GoSettings-Admin/internal/config"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/logger"
)

const (
	// EnvPrefix prefixes environment variables overriding flags, e.g. GOSETTINGS_ADMIN_CONFIG_PATH.
	EnvPrefix = "GOSETTINGS_ADMIN"

	configPathKey     = "config_path"
	defaultConfigPath = "./etc/"
)

var (
	cfg config.Config

	rootCmd = newRootCmd()
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gosettings-admin",
		Short: "GoSettings-Admin manages site settings keys and their content",
		Long: `GoSettings-Admin is a web-based administration tool for site settings.
Administrators register settings keys, editors fill in and translate the
content stored behind every key.`,
		Args:          cobra.OnlyValidArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return loadConfig()
		},
	}

	cmd.PersistentFlags().String("config", defaultConfigPath, "Directory containing main.toml")

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	_ = viper.BindPFlag(configPathKey, cmd.PersistentFlags().Lookup("config"))

	cmd.AddCommand(newStartCmd(), newKeysCmd(), newReconcileCmd())

	return cmd
}

// loadConfig reads main.toml from the configured directory and initializes logging.
func loadConfig() error {
	path := viper.GetString(configPathKey)
	if path != "" && !strings.HasSuffix(path, "/") {
		path += "/"
	}

	var err error
	if cfg, err = config.ReadConfig(path); err != nil {
		return err //nolint:wrapcheck
	}

	return logger.Init(cfg.Log) //nolint:wrapcheck
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
