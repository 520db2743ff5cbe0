package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"shipdesk/senderterm/internal/addressbook"
	"shipdesk/senderterm/internal/models"
)

const (
	ExitSuccess      = 0
	ExitFailure      = 1 // the address service refused or failed the request
	ExitCommandError = 2 // bad flags, config or arguments
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error. Store errors map to
// ExitFailure; anything else that is not an ExitError does too.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// storeFailure wraps a store error with its user-facing message.
func storeFailure(action string, err error) error {
	var storeErr *addressbook.StoreError
	if errors.As(err, &storeErr) {
		return WrapExitError(ExitFailure, action+": "+storeErr.UserMessage(), err)
	}
	return WrapExitError(ExitFailure, action, err)
}

// addressView is the JSON shape of a record.
type addressView struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	City    string `json:"city"`
	Address string `json:"address"`
	Email   string `json:"email"`
	Country string `json:"country,omitempty"`
}

func toView(r models.AddressRecord) addressView {
	return addressView{
		ID:      r.ID.String(),
		Name:    r.DisplayName,
		Phone:   r.Phone,
		City:    r.City,
		Address: r.StreetAddress,
		Email:   r.Email,
		Country: r.Country,
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeAddresses(w io.Writer, format string, records []models.AddressRecord) error {
	if format == "json" {
		views := make([]addressView, 0, len(records))
		for _, r := range records {
			views = append(views, toView(r))
		}
		return writeJSON(w, views)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tMOBILE\tCITY\tADDRESS")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.DisplayName, r.Phone, r.City, r.StreetAddress)
	}
	return tw.Flush()
}
