package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"shipdesk/senderterm/internal/addressbook"
	"shipdesk/senderterm/internal/utils"
)

type ListOptions struct {
	*RootOptions
	Search string
	All    bool
}

func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved sender addresses",
		Long: `List saved sender addresses in store order.

Only the first page is shown unless --all is given, the same as the
interactive screen before "show more".

Example:
  senderterm list --search riyadh --all`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Search, "search", "s", "", "only addresses matching this text")
	cmd.Flags().BoolVarP(&opts.All, "all", "a", false, "show every match, not just the first page")

	return cmd
}

func runList(cmd *cobra.Command, opts *ListOptions) error {
	s, err := openSession(opts.RootOptions, "")
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to start", err)
	}
	defer s.Close()

	if err := s.engine.Do(cmd.Context(), s.engine.Refresh()); err != nil {
		return storeFailure("failed to load addresses", err)
	}

	s.engine.SetSearchTerm(opts.Search)
	if opts.All {
		s.engine.ToggleExpanded()
	}
	snap := s.engine.Snapshot()

	if err := writeAddresses(cmd.OutOrStdout(), opts.Format, snap.Displayed); err != nil {
		return err
	}

	if opts.Format == "text" {
		summary := utils.FormatCount(len(snap.Displayed), snap.FilteredCount, "address")
		if snap.HasMore && !opts.All {
			summary += fmt.Sprintf(" (%d more, use --all)", snap.FilteredCount-addressbook.PageSize)
		}
		fmt.Fprintln(cmd.ErrOrStderr(), summary)
	}
	return nil
}
