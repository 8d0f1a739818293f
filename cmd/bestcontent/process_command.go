package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/JonMunkholm/bestcontent/internal/core"
	"github.com/spf13/cobra"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var (
		in        string
		out       string
		chunkSize int
		workers   int
		restart   bool
	)

	cmd := &cobra.Command{
		Use:       "process {" + strings.Join(shapeKeys(), "|") + "}",
		Short:     "Transform a raw table into a processed content table",
		Long:      "Transform a raw table into a processed content table.\n\nWith --restart an existing output is continued after its last complete row instead of being replaced.",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: shapeKeys(),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.config
			shape := args[0]

			opts := core.Options{
				ChunkSize: chunkSize,
				Workers:   workers,
				Restart:   restart,
			}
			flags := cmd.Flags()
			if !flags.Changed("chunk-size") {
				opts.ChunkSize = cfg.Pipeline.AbstractChunkSize
				if shape == "fulltexts" {
					opts.ChunkSize = cfg.Pipeline.FulltextChunkSize
				}
			}
			if !flags.Changed("workers") {
				opts.Workers = cfg.Pipeline.Workers
			}
			if !flags.Changed("restart") {
				opts.Restart = cfg.Pipeline.Restart
			}
			if opts.ChunkSize <= 0 {
				return fmt.Errorf("--chunk-size must be positive, got %d", opts.ChunkSize)
			}
			if opts.Workers < 1 {
				return fmt.Errorf("--workers must be at least 1, got %d", opts.Workers)
			}

			return ctx.withStatusServer(cmd.Context(), func() error {
				result, err := ctx.processor().Run(cmd.Context(), shape, in, out, opts)
				if err != nil {
					return err
				}

				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Shape", "Skipped", "Chunks", "Rows written", "Duration", "Output"},
					[][]string{{
						result.Shape,
						fmt.Sprint(result.SkippedRows),
						fmt.Sprint(result.Chunks),
						fmt.Sprint(result.RowsWritten),
						result.Duration.Round(time.Millisecond).String(),
						result.Output,
					}},
					[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft},
				))
				return nil
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&in, "in", "i", "", "Raw table to read")
	flags.StringVarP(&out, "out", "o", "", "Processed table to write")
	flags.IntVar(&chunkSize, "chunk-size", 0, "Rows per chunk (default depends on the shape)")
	flags.IntVarP(&workers, "workers", "w", 1, "Worker goroutines for fulltext extraction")
	flags.BoolVar(&restart, "restart", false, "Resume an existing output instead of replacing it")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func newShapesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shapes",
		Short: "List the raw table shapes that can be processed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var rows [][]string
			for _, def := range core.Shapes() {
				mode := "inline"
				if def.Parallel {
					mode = "parallel"
				}
				rows = append(rows, []string{
					def.Key,
					def.Label,
					strings.Join(def.Layout.Columns, ", "),
					fmt.Sprint(def.DefaultChunkSize),
					mode,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Shape", "Description", "Columns", "Chunk size", "Transform"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}
}

func shapeKeys() []string {
	shapes := core.Shapes()
	keys := make([]string, len(shapes))
	for i, def := range shapes {
		keys[i] = def.Key
	}
	return keys
}
