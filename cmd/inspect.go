package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/agentic-research/runekit/internal/store"
	"github.com/spf13/cobra"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [dir]",
	Short: "Print the flattened layout of a content directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		p, err := newPipeline(cfg)
		if err != nil {
			return err
		}
		l, err := p.resolver.Resolve(args[0])
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), l)
	},
}

var routeCmd = &cobra.Command{
	Use:   "route [url...]",
	Short: "Show which layout block each URL is routed to",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		routes, err := cfg.RouteTable()
		if err != nil {
			return err
		}
		for _, url := range args {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", url, routes.Match(url))
		}
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show [output.db] [url]",
	Short: "Print a composed page from a built database",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := store.Open(args[0])
		if err != nil {
			return err
		}
		defer func() { _ = r.Close() }()

		if len(args) == 1 {
			urls, err := r.URLs()
			if err != nil {
				return err
			}
			for _, u := range urls {
				fmt.Fprintln(cmd.OutOrStdout(), u)
			}
			return nil
		}
		rec, err := r.Page(args[1])
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), rec)
	},
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	rootCmd.AddCommand(resolveCmd, routeCmd, showCmd)
}
