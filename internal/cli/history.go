package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"shipdesk/senderterm/internal/utils"
)

func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "history [id]",
		Short: "Show recorded address changes",
		Long: `Show the audit log of successful address changes, newest last.
With an id, only changes to that address are shown.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id := ""
			if len(args) == 1 {
				id = args[0]
			}
			return runHistory(cmd, rootOpts, id)
		},
	}
}

func runHistory(cmd *cobra.Command, opts *RootOptions, id string) error {
	s, err := openSession(opts, "")
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to start", err)
	}
	defer s.Close()

	logs, err := s.auditor.History(id)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to read history", err)
	}

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), logs)
	}

	if len(logs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No changes recorded")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tACTION\tADDRESS\tDETAILS")
	for _, entry := range logs {
		target := entry.AddressID
		if target == "" {
			target = "-"
		}
		details := ""
		if len(entry.Details) > 0 {
			details = fmt.Sprint(entry.Details)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", utils.FormatTimeAgo(entry.Timestamp), entry.Action, target, details)
	}
	return tw.Flush()
}
