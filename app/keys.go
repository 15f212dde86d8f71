package app

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/GoSettings-Admin/GoSettings-Admin/internal/configimport"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/daemon"
)

// openCore connects to the configured database without starting the web service.
func openCore() (*daemon.Core, error) {
	db, err := daemon.OpenDB(cfg.DB)
	if err != nil {
		return nil, err
	}

	core, err := daemon.NewCore(&cfg, db)
	if err != nil {
		if sqlDB, errDB := db.DB(); errDB == nil {
			_ = sqlDB.Close()
		}

		return nil, err
	}

	return core, nil
}

// closeCore closes the database of a core opened by openCore.
func closeCore(core *daemon.Core) {
	if err := core.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close database")
	}
}

func newKeysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "List, import and export settings key definitions",
	}

	cmd.AddCommand(newKeysListCmd(), newKeysImportCmd(), newKeysExportCmd())

	return cmd
}

func newKeysListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered settings keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			core, err := openCore()
			if err != nil {
				return err
			}
			defer closeCore(core)

			keys, err := core.Registry.ReadAll(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0) //nolint:mnd
			_, _ = fmt.Fprintln(w, "KEY\tLABEL\tBUNDLE\tDESCRIPTION")

			for _, def := range keys.All() {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", def.Key, def.Label, def.Bundle, def.Desc)
			}

			return w.Flush()
		},
	}
}

func newKeysImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the settings keys with a YAML document and create missing records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			core, err := openCore()
			if err != nil {
				return err
			}
			defer closeCore(core)

			f, err := os.Open(args[0])
			if err != nil {
				return err //nolint:wrapcheck
			}
			defer f.Close()

			n, err := core.Importer.Import(cmd.Context(), f)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "imported %d settings keys\n", n)

			return nil
		},
	}
}

func newKeysExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the settings keys as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			core, err := openCore()
			if err != nil {
				return err
			}
			defer closeCore(core)

			var w io.Writer = cmd.OutOrStdout()

			if output != "" && output != "-" {
				f, errCreate := os.Create(output)
				if errCreate != nil {
					return errCreate //nolint:wrapcheck
				}
				defer f.Close()

				w = f
			}

			return configimport.Export(cmd.Context(), core.Registry.Name(), core.Settings, w)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "-", "Output file, - for stdout")

	return cmd
}
