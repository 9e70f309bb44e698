package cmd

import (
	"fmt"
	"time"

	"github.com/agentic-research/runekit/internal/site"
	"github.com/agentic-research/runekit/internal/store"
	"github.com/spf13/cobra"
)

var (
	buildWorkers int
	buildStrict  bool
)

var buildCmd = &cobra.Command{
	Use:   "build [content] [output.db]",
	Short: "Compose every page of a content tree into a SQLite database",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if len(args) > 0 {
			cfg.Content = args[0]
		}
		if len(args) > 1 {
			cfg.Output = args[1]
		}
		if cmd.Flags().Changed("workers") {
			cfg.Workers = buildWorkers
		}

		p, err := newPipeline(cfg)
		if err != nil {
			return err
		}

		start := time.Now()
		builder := site.NewBuilder(p.tree, p.registry, p.resolver,
			site.WithWorkers(cfg.Workers),
			site.WithRoutes(p.routes),
			site.WithLogger(logger.Named("site")))
		pages, err := builder.Build(cmd.Context())
		if err != nil {
			return fmt.Errorf("build: %w", err)
		}

		w, err := store.NewWriter(cfg.Output, logger.Named("store"))
		if err != nil {
			return err
		}
		failed, diags := 0, 0
		for _, page := range pages {
			if err := w.AddPage(page); err != nil {
				_ = w.Close()
				return err
			}
			diags += len(page.Diagnostics)
			if page.Err != nil {
				failed++
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", page.URL, page.Err)
			}
		}
		if err := w.Close(); err != nil {
			return fmt.Errorf("close store: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Built %d pages (%d failed, %d diagnostics) into %s in %v\n",
			len(pages), failed, diags, cfg.Output, time.Since(start).Round(time.Millisecond))
		if buildStrict && failed > 0 {
			return fmt.Errorf("%d pages failed", failed)
		}
		return nil
	},
}

func init() {
	buildCmd.Flags().IntVarP(&buildWorkers, "workers", "w", 0, "Parallel page workers (0 = GOMAXPROCS)")
	buildCmd.Flags().BoolVar(&buildStrict, "strict", false, "Fail when any page fails to compose")
	rootCmd.AddCommand(buildCmd)
}
