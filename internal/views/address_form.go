package views

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-playground/validator/v10"

	"shipdesk/senderterm/internal/models"
	"shipdesk/senderterm/internal/utils"
)

type FormMode int

const (
	FormCreate FormMode = iota
	FormEdit
)

type AddressFormField int

const (
	FieldAlias AddressFormField = iota
	FieldLocation
	FieldPhone
	FieldCity
	FieldCountry
	FieldSubmit
)

var formLabels = map[AddressFormField]string{
	FieldAlias:    "Name",
	FieldLocation: "Address",
	FieldPhone:    "Mobile",
	FieldCity:     "City",
	FieldCountry:  "Country",
}

// struct field name on AddressDraft -> form field
var draftFields = map[string]AddressFormField{
	"Alias":    FieldAlias,
	"Location": FieldLocation,
	"Phone":    FieldPhone,
	"City":     FieldCity,
	"Country":  FieldCountry,
}

var validate = validator.New()

type AddressForm struct {
	mode   FormMode
	inputs [FieldSubmit]textinput.Model

	currentField AddressFormField
	errors       map[AddressFormField]string
	submitErr    error
	submitting   bool
}

func newAddressInput(placeholder string, limit int) textinput.Model {
	input := textinput.New()
	input.Placeholder = placeholder
	input.CharLimit = limit
	input.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(utils.Colours.Blue))
	input.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(utils.Colours.Text))
	return input
}

// NewAddressForm builds a form prefilled from draft.
func NewAddressForm(mode FormMode, draft models.AddressDraft) *AddressForm {
	f := &AddressForm{
		mode:   mode,
		errors: make(map[AddressFormField]string),
	}

	f.inputs[FieldAlias] = newAddressInput("Sender name", 60)
	f.inputs[FieldLocation] = newAddressInput("Street, district", 200)
	f.inputs[FieldPhone] = newAddressInput("05xxxxxxxx", 20)
	f.inputs[FieldCity] = newAddressInput("City", 60)
	f.inputs[FieldCountry] = newAddressInput(models.DefaultCountry, 60)

	f.inputs[FieldAlias].SetValue(draft.Alias)
	f.inputs[FieldLocation].SetValue(draft.Location)
	f.inputs[FieldPhone].SetValue(draft.Phone)
	f.inputs[FieldCity].SetValue(draft.City)
	country := draft.Country
	if country == "" {
		country = models.DefaultCountry
	}
	f.inputs[FieldCountry].SetValue(country)

	f.focusCurrentField()
	return f
}

func (f *AddressForm) Mode() FormMode {
	return f.mode
}

// Draft returns the form contents, trimmed and with the default country.
func (f *AddressForm) Draft() models.AddressDraft {
	return models.AddressDraft{
		Alias:    f.inputs[FieldAlias].Value(),
		Location: f.inputs[FieldLocation].Value(),
		Phone:    f.inputs[FieldPhone].Value(),
		City:     f.inputs[FieldCity].Value(),
		Country:  f.inputs[FieldCountry].Value(),
	}.Normalize()
}

// Validate runs the required-field checks and records per-field messages.
func (f *AddressForm) Validate() bool {
	f.errors = make(map[AddressFormField]string)

	err := validate.Struct(f.Draft())
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		f.submitErr = err
		return false
	}
	for _, fe := range verrs {
		field, ok := draftFields[fe.Field()]
		if !ok {
			continue
		}
		f.errors[field] = formLabels[field] + " is required"
	}
	return false
}

func (f *AddressForm) FieldError(field AddressFormField) string {
	return f.errors[field]
}

func (f *AddressForm) SetSubmitting(submitting bool) {
	f.submitting = submitting
}

func (f *AddressForm) SetSubmitError(err error) {
	f.submitErr = err
	f.submitting = false
}

func (f *AddressForm) nextField() {
	if f.currentField < FieldSubmit {
		f.currentField++
	}
}

func (f *AddressForm) prevField() {
	if f.currentField > FieldAlias {
		f.currentField--
	}
}

func (f *AddressForm) focusCurrentField() tea.Cmd {
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
	if f.currentField < FieldSubmit {
		return f.inputs[f.currentField].Focus()
	}
	return nil
}

func (f *AddressForm) updateField(msg tea.Msg) tea.Cmd {
	if f.currentField >= FieldSubmit {
		return nil
	}
	var cmd tea.Cmd
	f.inputs[f.currentField], cmd = f.inputs[f.currentField].Update(msg)
	if _, had := f.errors[f.currentField]; had {
		delete(f.errors, f.currentField)
	}
	return cmd
}

func (f *AddressForm) View(width int) string {
	var content strings.Builder

	title := "Add sender address"
	if f.mode == FormEdit {
		title = "Edit sender address"
	}
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(utils.Colours.Mauve)).
		Padding(0, 1)
	content.WriteString(headerStyle.Render(title))
	content.WriteString("\n\n")

	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(utils.Colours.Subtext1)).Width(10)
	activeLabel := labelStyle.Foreground(lipgloss.Color(utils.Colours.Blue)).Bold(true)
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(utils.Colours.Red)).PaddingLeft(12)

	for field := FieldAlias; field < FieldSubmit; field++ {
		label := labelStyle
		if field == f.currentField {
			label = activeLabel
		}
		content.WriteString("  " + label.Render(formLabels[field]) + f.inputs[field].View() + "\n")
		if msg := f.errors[field]; msg != "" {
			content.WriteString(errStyle.Render(msg) + "\n")
		}
	}
	content.WriteString("\n")

	buttonText := "[ Save ]"
	if f.submitting {
		buttonText = "[ Saving... ]"
	}
	button := lipgloss.NewStyle().Foreground(lipgloss.Color(utils.Colours.Overlay1)).Padding(0, 2)
	if f.currentField == FieldSubmit {
		button = button.Foreground(lipgloss.Color(utils.Colours.Green)).Bold(true)
	}
	content.WriteString(button.Render(buttonText))

	if f.submitErr != nil {
		content.WriteString("\n\n")
		content.WriteString(lipgloss.NewStyle().
			Foreground(lipgloss.Color(utils.Colours.Red)).
			Padding(0, 2).
			Render("✗ " + errorText(f.submitErr)))
	}

	content.WriteString("\n\n")
	content.WriteString(lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Overlay1)).
		Padding(0, 1).
		Render("[Tab] Next [Shift+Tab] Back [Enter] Save on button [Esc] Cancel"))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(utils.Colours.Mauve)).
		Width(max(width-4, 40)).
		Render(content.String())
}
