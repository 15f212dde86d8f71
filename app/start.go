package app

import (
	"github.com/spf13/cobra"

	"github.com/GoSettings-Admin/GoSettings-Admin/internal/daemon"
)

func newStartCmd() *cobra.Command {
	var (
		devMode      bool
		browseStatic bool
	)

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the GoSettings-Admin web service",
		PreRun: func(_ *cobra.Command, _ []string) {
			if devMode {
				cfg.DevMode = true
			}

			if browseStatic {
				cfg.Webserver.BrowseStatic = true
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := daemon.New(&cfg)
			if err != nil {
				return err
			}

			return d.Start(cmd.Context())
		},
	}

	cmd.Flags().BoolVar(&devMode, "dev", false, "Enable dev mode")
	cmd.Flags().BoolVar(
		&browseStatic,
		"browse",
		false,
		"Enable static file browsing (for development purposes only)",
	)

	return cmd
}
