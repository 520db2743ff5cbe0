package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"shipdesk/senderterm/internal/models"
)

var validate = validator.New()

// flag name for each required draft field
var draftFlags = map[string]string{
	"Alias":    "name",
	"Location": "address",
	"Phone":    "phone",
	"City":     "city",
}

type AddOptions struct {
	*RootOptions
	Draft models.AddressDraft
}

func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AddOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Save a new sender address",
		Long: `Save a new sender address to the address book.

Example:
  senderterm add --name "Main warehouse" --address "Industrial Area 2" --phone 0500000000 --city Riyadh`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Draft.Alias, "name", "", "sender name (required)")
	cmd.Flags().StringVar(&opts.Draft.Location, "address", "", "street address (required)")
	cmd.Flags().StringVar(&opts.Draft.Phone, "phone", "", "mobile number (required)")
	cmd.Flags().StringVar(&opts.Draft.City, "city", "", "city (required)")
	cmd.Flags().StringVar(&opts.Draft.Country, "country", "", "country (default "+models.DefaultCountry+")")

	return cmd
}

// checkDraft runs the required-field checks and names the missing flags.
func checkDraft(draft models.AddressDraft) error {
	err := validate.Struct(draft)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	missing := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if flag, ok := draftFlags[fe.Field()]; ok {
			missing = append(missing, "--"+flag)
		}
	}
	return NewExitError(ExitCommandError, "missing required flags: "+strings.Join(missing, ", "))
}

func runAdd(cmd *cobra.Command, opts *AddOptions) error {
	draft := opts.Draft.Normalize()
	if err := checkDraft(draft); err != nil {
		return err
	}

	s, err := openSession(opts.RootOptions, "")
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to start", err)
	}
	defer s.Close()

	call, err := s.engine.SubmitCreate(draft)
	if err != nil {
		return storeFailure("failed to add address", err)
	}
	if err := s.engine.Do(cmd.Context(), call); err != nil {
		return storeFailure("failed to add address", err)
	}

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), map[string]string{"status": "ok", "name": draft.Alias})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", draft.Alias, draft.City)
	return nil
}
