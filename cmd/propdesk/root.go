package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"propdesk/internal/config"
)

type loader func() (config.Config, error)

func newRootCmd(load loader, out io.Writer) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:           "propdesk",
		Short:         "Proposal management workspace",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(out)
	cmd.PersistentFlags().BoolVar(&strict, "strict", false, "Block a second theory of change per proposition")

	withApp := func(run func(c *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
		return func(c *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if strict {
				cfg.StrictTheory = true
			}
			a, err := newApp(c.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()
			return run(c, a, args)
		}
	}

	cmd.AddCommand(
		newServeCmd(withApp),
		newDashboardCmd(withApp),
		newArchiveCmd(withApp),
		newSuggestCmd(withApp),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(c *cobra.Command, _ []string) {
				fmt.Fprintf(c.OutOrStdout(), "propdesk %s\n", version)
			},
		},
	)
	return cmd
}

type appRunner func(run func(c *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
