package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"shipdesk/senderterm/internal/addressbook"
	"shipdesk/senderterm/internal/models"
)

type RemoveOptions struct {
	*RootOptions
	Yes bool
}

func NewRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RemoveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"rm", "delete"},
		Short:   "Delete a saved sender address",
		Long: `Delete a saved sender address. Asks for confirmation unless --yes is given.

Example:
  senderterm remove 64f1c0a2 --yes`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemove(cmd, opts, args[0])
		},
	}

	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "do not ask for confirmation")

	return cmd
}

func runRemove(cmd *cobra.Command, opts *RemoveOptions, id string) error {
	s, err := openSession(opts.RootOptions, "")
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to start", err)
	}
	defer s.Close()

	if err := s.engine.Do(cmd.Context(), s.engine.Refresh()); err != nil {
		return storeFailure("failed to load addresses", err)
	}

	target := models.StoreIdentity(id)
	record := models.FindByID(s.engine.Records(), target)
	if record == nil {
		return storeFailure("failed to delete address", addressbook.NewNotFoundError(id))
	}

	if err := s.engine.RequestDelete(target); err != nil {
		return storeFailure("failed to delete address", err)
	}

	if !opts.Yes && !confirm(cmd, fmt.Sprintf("Delete '%s' (%s)? [y/N] ", record.DisplayName, record.City)) {
		s.engine.CancelDelete()
		fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
		return nil
	}

	call, err := s.engine.ConfirmDelete()
	if err != nil {
		return storeFailure("failed to delete address", err)
	}
	if err := s.engine.Do(cmd.Context(), call); err != nil {
		return storeFailure("failed to delete address", err)
	}

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), map[string]string{"status": "ok", "deleted": id})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", record.DisplayName)
	return nil
}

func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprint(cmd.OutOrStdout(), prompt)

	answer, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}
