package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/JonMunkholm/bestcontent/internal/core"
	"github.com/JonMunkholm/bestcontent/internal/database"
	"github.com/spf13/cobra"
)

func newDumpCommand(ctx *commandContext) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:       "dump {" + strings.Join(database.ExportNames(), "|") + "}",
		Short:     "Export a raw table from the source database",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: database.ExportNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.config
			if err := cfg.RequireDatabase(); err != nil {
				return err
			}
			export, _ := database.LookupExport(args[0])

			pool, err := database.Connect(cmd.Context(), cfg.Database)
			if err != nil {
				return &core.SourceUnavailableError{Query: export.Name, Err: err}
			}
			defer pool.Close()

			exporter := database.NewExporter(database.PoolSource{Pool: pool}, cfg.Database.QueryTimeout)

			return ctx.withStatusServer(cmd.Context(), func() error {
				result, err := exporter.Dump(cmd.Context(), export, out)
				if err != nil {
					return err
				}

				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Export", "Rows", "Bytes", "Duration", "Output"},
					[][]string{{
						result.Name,
						fmt.Sprint(result.Rows),
						fmt.Sprint(result.Bytes),
						result.Duration.Round(time.Millisecond).String(),
						result.Path,
					}},
					[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Destination CSV path")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}
