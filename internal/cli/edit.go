package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"shipdesk/senderterm/internal/addressbook"
	"shipdesk/senderterm/internal/models"
)

type EditOptions struct {
	*RootOptions
	Name    string
	Address string
	Phone   string
	City    string
	Country string
}

func NewEditCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EditOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a saved sender address",
		Long: `Change a saved sender address. Only the flags given are changed.

Example:
  senderterm edit 64f1c0a2 --city Jeddah`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "sender name")
	cmd.Flags().StringVar(&opts.Address, "address", "", "street address")
	cmd.Flags().StringVar(&opts.Phone, "phone", "", "mobile number")
	cmd.Flags().StringVar(&opts.City, "city", "", "city")
	cmd.Flags().StringVar(&opts.Country, "country", "", "country")

	return cmd
}

// changedFields turns the flags that were set into a partial update. Required
// fields may not be cleared.
func changedFields(cmd *cobra.Command, opts *EditOptions) (models.AddressFields, error) {
	var fields models.AddressFields

	set := func(flag string, value string, dst **string, required bool) error {
		if !cmd.Flags().Changed(flag) {
			return nil
		}
		v := strings.TrimSpace(value)
		if required && v == "" {
			return NewExitError(ExitCommandError, fmt.Sprintf("--%s cannot be empty", flag))
		}
		*dst = &v
		return nil
	}

	if err := set("name", opts.Name, &fields.Alias, true); err != nil {
		return fields, err
	}
	if err := set("address", opts.Address, &fields.Location, true); err != nil {
		return fields, err
	}
	if err := set("phone", opts.Phone, &fields.Phone, true); err != nil {
		return fields, err
	}
	if err := set("city", opts.City, &fields.City, true); err != nil {
		return fields, err
	}
	if err := set("country", opts.Country, &fields.Country, false); err != nil {
		return fields, err
	}

	if fields.IsEmpty() {
		return fields, NewExitError(ExitCommandError, "nothing to change: pass at least one of --name, --address, --phone, --city, --country")
	}
	return fields, nil
}

func runEdit(cmd *cobra.Command, opts *EditOptions, id string) error {
	fields, err := changedFields(cmd, opts)
	if err != nil {
		return err
	}

	s, err := openSession(opts.RootOptions, "")
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to start", err)
	}
	defer s.Close()

	if err := s.engine.Do(cmd.Context(), s.engine.Refresh()); err != nil {
		return storeFailure("failed to load addresses", err)
	}

	record := models.FindByID(s.engine.Records(), models.StoreIdentity(id))
	if record == nil {
		return storeFailure("failed to edit address", addressbook.NewNotFoundError(id))
	}
	if err := s.engine.OpenEdit(*record); err != nil {
		return storeFailure("failed to edit address", err)
	}

	call, err := s.engine.SubmitEdit(fields)
	if err != nil {
		return storeFailure("failed to edit address", err)
	}
	if err := s.engine.Do(cmd.Context(), call); err != nil {
		return storeFailure("failed to edit address", err)
	}

	updated := models.FindByID(s.engine.Records(), record.ID)
	if updated == nil {
		return nil
	}
	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), toView(*updated))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated %s: %s, %s, %s\n", updated.DisplayName, updated.Phone, updated.City, updated.StreetAddress)
	return nil
}
