package views

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"shipdesk/senderterm/internal/addressbook"
	"shipdesk/senderterm/internal/models"
	"shipdesk/senderterm/internal/utils"
)

// SenderSection lists saved sender addresses and lets the user pick one for the
// shipment, search them, and add, edit or delete them.
type SenderSection struct {
	ctx    context.Context
	engine *addressbook.Engine
	log    zerolog.Logger

	searchInput textinput.Model
	spinner     spinner.Model
	cursor      int
	form        *AddressForm

	err    error
	notice string
	width  int
}

func NewSenderSection(ctx context.Context, engine *addressbook.Engine, logger zerolog.Logger) *SenderSection {
	searchInput := textinput.New()
	searchInput.Placeholder = "Search name, mobile, city, address or email..."
	searchInput.CharLimit = 80
	searchInput.Prompt = "/ "
	searchInput.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(utils.Colours.Blue))

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(utils.Colours.Mauve))

	return &SenderSection{
		ctx:         ctx,
		engine:      engine,
		log:         logger,
		searchInput: searchInput,
		spinner:     s,
		width:       80,
	}
}

func (m *SenderSection) Init() tea.Cmd {
	return tea.Batch(m.refresh(), m.spinner.Tick)
}

func (m *SenderSection) SetWidth(width int) {
	m.width = width
}

// CapturesInput reports whether keystrokes are going into a text field.
func (m *SenderSection) CapturesInput() bool {
	return m.searchInput.Focused() || m.form != nil
}

func (m *SenderSection) refresh() tea.Cmd {
	return runCall(m.ctx, m.engine.Refresh())
}

func (m *SenderSection) busy() bool {
	snap := m.engine.Snapshot()
	return snap.Loading || snap.Busy.Creating || snap.Busy.Updating || snap.Busy.Deleting
}

func (m *SenderSection) Update(msg tea.Msg) (*SenderSection, tea.Cmd) {
	switch msg := msg.(type) {
	case CallCompletedMsg:
		return m, m.handleResult(msg.Result)

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch {
		case m.form != nil:
			return m, m.updateForm(msg)
		case m.engine.Snapshot().Deletion.ConfirmationOpen:
			return m, m.updateConfirm(msg)
		case m.searchInput.Focused():
			return m, m.updateSearch(msg)
		default:
			return m, m.updateList(msg)
		}
	}

	return m, nil
}

func (m *SenderSection) updateList(msg tea.KeyMsg) tea.Cmd {
	snap := m.engine.Snapshot()
	m.notice = ""

	switch msg.String() {
	case "/":
		m.err = nil
		return m.searchInput.Focus()

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(snap.Displayed)-1 {
			m.cursor++
		}

	case "enter", " ":
		if rec, ok := m.cursorRecord(snap); ok {
			m.engine.ToggleSelect(rec)
		}

	case "m":
		if snap.HasMore {
			m.engine.ToggleExpanded()
			m.clampCursor()
		}

	case "r":
		m.err = nil
		return tea.Batch(m.refresh(), m.spinner.Tick)

	case "a":
		m.err = nil
		m.form = NewAddressForm(FormCreate, models.AddressDraft{})
		return m.form.focusCurrentField()

	case "e":
		rec, ok := m.cursorRecord(snap)
		if !ok {
			return nil
		}
		if err := m.engine.OpenEdit(rec); err != nil {
			m.err = err
			return nil
		}
		m.err = nil
		m.form = NewAddressForm(FormEdit, rec.Draft())
		return m.form.focusCurrentField()

	case "d", "delete":
		rec, ok := m.cursorRecord(snap)
		if !ok {
			return nil
		}
		if err := m.engine.RequestDelete(rec.ID); err != nil {
			m.err = err
			return nil
		}
		m.err = nil
	}

	return nil
}

func (m *SenderSection) updateSearch(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "enter":
		m.searchInput.Blur()
		return nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.engine.SetSearchTerm(m.searchInput.Value())
	m.clampCursor()
	return cmd
}

func (m *SenderSection) updateConfirm(msg tea.KeyMsg) tea.Cmd {
	// both choices are disabled while the delete is running
	if m.engine.Busy(addressbook.OpDelete) {
		return nil
	}

	switch msg.String() {
	case "y", "Y", "enter":
		call, err := m.engine.ConfirmDelete()
		if err != nil {
			m.err = err
			if addressbook.IsNotFound(err) {
				m.engine.CancelDelete()
				return m.refresh()
			}
			return nil
		}
		m.err = nil
		return tea.Batch(runCall(m.ctx, call), m.spinner.Tick)

	case "n", "N", "esc":
		m.engine.CancelDelete()
	}

	return nil
}

func (m *SenderSection) updateForm(msg tea.KeyMsg) tea.Cmd {
	if m.form.submitting {
		return nil
	}

	switch msg.String() {
	case "esc":
		m.closeForm()
		return nil

	case "tab", "down":
		m.form.nextField()
		return m.form.focusCurrentField()

	case "shift+tab", "up":
		m.form.prevField()
		return m.form.focusCurrentField()

	case "enter":
		if m.form.currentField == FieldSubmit {
			return m.submitForm()
		}
		m.form.nextField()
		return m.form.focusCurrentField()
	}

	return m.form.updateField(msg)
}

func (m *SenderSection) submitForm() tea.Cmd {
	if !m.form.Validate() {
		return nil
	}

	draft := m.form.Draft()
	var (
		call *addressbook.Call
		err  error
	)
	if m.form.Mode() == FormEdit {
		call, err = m.engine.SubmitEdit(draft.Fields())
	} else {
		call, err = m.engine.SubmitCreate(draft)
	}
	if err != nil {
		m.form.SetSubmitError(err)
		if addressbook.IsNotFound(err) {
			return m.refresh()
		}
		return nil
	}

	m.form.SetSubmitting(true)
	return tea.Batch(runCall(m.ctx, call), m.spinner.Tick)
}

func (m *SenderSection) closeForm() {
	if m.form != nil && m.form.Mode() == FormEdit {
		m.engine.CloseEdit()
	}
	m.form = nil
}

func (m *SenderSection) handleResult(res addressbook.Result) tea.Cmd {
	next, err := m.engine.Complete(res)
	cmds := []tea.Cmd{runCall(m.ctx, next)}

	switch res.Call.Kind {
	case addressbook.OpFetch:
		if err != nil {
			m.err = err
		}
		m.clampCursor()

	case addressbook.OpCreate:
		if err != nil {
			if m.form != nil && m.form.Mode() == FormCreate {
				m.form.SetSubmitError(err)
			} else {
				m.err = err
			}
			break
		}
		if m.form != nil && m.form.Mode() == FormCreate {
			m.form = nil
		}
		m.notice = "Address added"
		cmds = append(cmds, m.refresh())

	case addressbook.OpUpdate:
		if err != nil {
			if m.form != nil && m.form.Mode() == FormEdit {
				m.form.SetSubmitError(err)
			} else {
				m.err = err
			}
			if addressbook.IsNotFound(err) {
				cmds = append(cmds, m.refresh())
			}
			break
		}
		if m.form != nil && m.form.Mode() == FormEdit && !m.engine.Snapshot().Edit.Open {
			m.form = nil
		}
		m.notice = "Address updated"

	case addressbook.OpDelete:
		if err != nil {
			m.err = err
			if addressbook.IsNotFound(err) {
				m.engine.CancelDelete()
				cmds = append(cmds, m.refresh())
			}
			break
		}
		m.notice = "Address deleted"
		m.clampCursor()
	}

	if err != nil {
		m.log.Debug().Err(err).Str("call", res.Call.String()).Msg("call failed")
	}
	return tea.Batch(cmds...)
}

func (m *SenderSection) cursorRecord(snap addressbook.Snapshot) (models.AddressRecord, bool) {
	if m.cursor < 0 || m.cursor >= len(snap.Displayed) {
		return models.AddressRecord{}, false
	}
	return snap.Displayed[m.cursor], true
}

func (m *SenderSection) clampCursor() {
	n := len(m.engine.Snapshot().Displayed)
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// errorText prefers the store's user-facing wording.
func errorText(err error) string {
	var storeErr *addressbook.StoreError
	if errors.As(err, &storeErr) {
		return storeErr.UserMessage()
	}
	switch {
	case errors.Is(err, addressbook.ErrBusy):
		return "Please wait for the current operation to finish."
	case errors.Is(err, addressbook.ErrUnassignedIdentity):
		return "This address is still being saved. Refresh and try again."
	}
	return err.Error()
}

func (m *SenderSection) View() string {
	snap := m.engine.Snapshot()

	if m.form != nil {
		return m.form.View(m.width)
	}

	var content strings.Builder
	content.WriteString(m.renderHeader(snap))
	content.WriteString("\n")
	content.WriteString(m.searchInput.View())
	content.WriteString("\n\n")

	switch {
	case !snap.Loaded && snap.Loading:
		content.WriteString(utils.MutedStyle.Render(m.spinner.View() + " Loading addresses..."))
	case snap.Loaded && snap.TotalCount == 0:
		content.WriteString(utils.MutedStyle.Render("No saved addresses. Press [a] to add one."))
	case snap.FilteredCount == 0:
		content.WriteString(utils.MutedStyle.Render("No addresses match your search."))
	default:
		content.WriteString(m.renderCards(snap))
	}
	content.WriteString("\n")

	if snap.HasMore {
		label := fmt.Sprintf("[m] Show more (%d more)", snap.FilteredCount-addressbook.PageSize)
		if snap.Filter.Expanded {
			label = "[m] Show less"
		}
		content.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(utils.Colours.Blue)).Padding(0, 1).Render(label))
		content.WriteString("\n")
	}

	if snap.Deletion.ConfirmationOpen {
		content.WriteString("\n")
		content.WriteString(m.renderDeleteConfirm(snap))
		content.WriteString("\n")
	}

	if m.err != nil {
		content.WriteString(utils.ErrorStyle.Render("✗ " + errorText(m.err)))
		content.WriteString("\n")
	} else if m.notice != "" {
		content.WriteString(utils.NoticeStyle.Render("✓ " + m.notice))
		content.WriteString("\n")
	}

	content.WriteString(utils.MutedStyle.Padding(0, 1).Render(
		"[↑/↓] Move [Enter] Use sender [/] Search [a] Add [e] Edit [d] Delete [r] Refresh"))

	return content.String()
}

func (m *SenderSection) renderHeader(snap addressbook.Snapshot) string {
	title := utils.HeaderStyle.Render("Sender address")

	meta := utils.FormatCount(len(snap.Displayed), snap.FilteredCount, "address")
	if snap.OwnerEmail != "" {
		meta = snap.OwnerEmail + " · " + meta
	}
	if snap.Loading && snap.Loaded {
		meta = m.spinner.View() + " " + meta
	}

	return lipgloss.JoinHorizontal(lipgloss.Center, title, utils.MutedStyle.Render(meta))
}

func (m *SenderSection) renderCards(snap addressbook.Snapshot) string {
	columns := 1
	if m.width >= 100 {
		columns = 2
	}
	if m.width >= 150 {
		columns = 3
	}
	cardWidth := max(m.width/columns-4, 30)

	var rows []string
	var row []string
	for i, rec := range snap.Displayed {
		row = append(row, m.renderCard(rec, i == m.cursor, rec.ID == snap.Selected, snap, cardWidth))
		if len(row) == columns {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m *SenderSection) renderCard(rec models.AddressRecord, atCursor, selected bool, snap addressbook.Snapshot, width int) string {
	style := utils.CardStyle
	switch {
	case selected:
		style = utils.SelectedCardStyle
	case atCursor:
		style = utils.CursorCardStyle
	}

	inner := width - 4
	name := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(utils.Colours.Text)).
		Render(utils.TruncateString(rec.DisplayName, inner))
	if selected {
		name += lipgloss.NewStyle().Foreground(lipgloss.Color(utils.Colours.Green)).Render(" ✓")
	}

	detail := lipgloss.NewStyle().Foreground(lipgloss.Color(utils.Colours.Subtext1))
	lines := []string{
		name,
		detail.Render("☎ " + utils.TruncateString(rec.Phone, inner-2)),
		detail.Render("⌂ " + utils.TruncateString(rec.City+" · "+rec.StreetAddress, inner-2)),
		utils.MutedStyle.Render(utils.TruncateString(rec.Email, inner)),
	}
	if rec.ID.Assigned() {
		lines = append(lines, utils.MutedStyle.Render("#"+utils.FormatIdentity(rec.ID.Key())))
	}

	if snap.Deletion.ConfirmationOpen && snap.Deletion.Target == rec.ID {
		lines = append(lines, lipgloss.NewStyle().Foreground(lipgloss.Color(utils.Colours.Red)).Render("pending delete"))
	} else if snap.Edit.Open && snap.Edit.Target != nil && snap.Edit.Target.ID == rec.ID {
		lines = append(lines, lipgloss.NewStyle().Foreground(lipgloss.Color(utils.Colours.Yellow)).Render("editing"))
	}

	return style.Width(width).Render(strings.Join(lines, "\n"))
}

func (m *SenderSection) renderDeleteConfirm(snap addressbook.Snapshot) string {
	name := snap.Deletion.Target.String()
	if rec := models.FindByID(m.engine.Records(), snap.Deletion.Target); rec != nil {
		name = rec.DisplayName
	}

	var content strings.Builder
	content.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(utils.Colours.Red)).
		Render("Delete address"))
	content.WriteString("\n\n")
	content.WriteString(fmt.Sprintf("Are you sure you want to delete '%s'?\n", name))
	content.WriteString("This action cannot be undone.\n\n")

	if snap.Busy.Deleting {
		content.WriteString(m.spinner.View() + " Deleting...")
	} else {
		content.WriteString(utils.MutedStyle.Render("[Y] Yes, delete [N] Cancel"))
	}

	return utils.ModalStyle.Render(content.String())
}
