package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"propdesk/internal/assist"
)

func newDashboardCmd(withApp appRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Print the portfolio summary as JSON",
		Args:  cobra.NoArgs,
		RunE: withApp(func(c *cobra.Command, a *app, _ []string) error {
			return printJSON(c.OutOrStdout(), a.svc.Dashboard())
		}),
	}
}

func newArchiveCmd(withApp appRunner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Export, list and restore snapshot archives",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "export",
			Short: "Write the current snapshot to the blob store",
			Args:  cobra.NoArgs,
			RunE: withApp(func(c *cobra.Command, a *app, _ []string) error {
				entry, err := a.archiver.Export(c.Context())
				if err != nil {
					return err
				}
				return printJSON(c.OutOrStdout(), entry)
			}),
		},
		&cobra.Command{
			Use:   "list",
			Short: "List archives, newest first",
			Args:  cobra.NoArgs,
			RunE: withApp(func(c *cobra.Command, a *app, _ []string) error {
				entries, err := a.archiver.List(c.Context())
				if err != nil {
					return err
				}
				for _, e := range entries {
					fmt.Fprintf(c.OutOrStdout(), "%s\t%d bytes\t%d records\n", e.Key, e.Size, e.Records)
				}
				return nil
			}),
		},
		&cobra.Command{
			Use:   "restore [key]",
			Short: "Import an archive; the newest one when no key is given",
			Args:  cobra.MaximumNArgs(1),
			RunE: withApp(func(c *cobra.Command, a *app, args []string) error {
				key := ""
				if len(args) == 1 {
					key = args[0]
				}
				report, err := a.archiver.Restore(c.Context(), key)
				if err != nil {
					return err
				}
				return printJSON(c.OutOrStdout(), map[string]any{
					"records": a.svc.Snapshot().Total(),
					"repair":  report,
				})
			}),
		},
	)
	return cmd
}

func newSuggestCmd(withApp appRunner) *cobra.Command {
	var (
		formPath string
		previous string
	)
	cmd := &cobra.Command{
		Use:   "suggest <field>",
		Short: "Ask the assistant for a field value",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(c *cobra.Command, a *app, args []string) error {
			form := map[string]any{}
			if formPath != "" {
				raw, err := os.ReadFile(formPath) // #nosec G304 -- operator supplied path
				if err != nil {
					return fmt.Errorf("read form: %w", err)
				}
				if err := json.Unmarshal(raw, &form); err != nil {
					return fmt.Errorf("parse form: %w", err)
				}
			}
			if previous != "" {
				form[assist.KeyCurrentValue] = previous
			}
			value, err := assist.Resolve(c.Context(), a.assist, args[0], form, previous)
			fmt.Fprintln(c.OutOrStdout(), value)
			return err
		}),
	}
	cmd.Flags().StringVar(&formPath, "form", "", "JSON file with the form values")
	cmd.Flags().StringVar(&previous, "previous", "", "Current field value, kept on failure")
	return cmd
}
