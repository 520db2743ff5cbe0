package views

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"shipdesk/senderterm/internal/addressbook"
	"shipdesk/senderterm/internal/models"
	"shipdesk/senderterm/internal/utils"
)

var shipperLabels = [4]string{"Full name", "Mobile", "City", "Address"}

// AppModel is the shipment creation screen: the shipper block of the shipment
// form on top, the sender address book below.
type AppModel struct {
	width  int
	height int

	shipment *models.ShipmentForm
	sender   *SenderSection
	log      zerolog.Logger

	err error
}

func NewAppModel(ctx context.Context, engine *addressbook.Engine, shipment *models.ShipmentForm, logger zerolog.Logger) *AppModel {
	return &AppModel{
		shipment: shipment,
		sender:   NewSenderSection(ctx, engine, logger),
		log:      logger,
	}
}

func (m *AppModel) Init() tea.Cmd {
	return m.sender.Init()
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.sender.SetWidth(msg.Width - 2)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			if !m.sender.CapturesInput() {
				return m, tea.Quit
			}
		}

	case ErrorMsg:
		m.err = msg.Err
		m.log.Error().Err(msg.Err).Msg("unhandled error")
		return m, nil
	}

	var cmd tea.Cmd
	m.sender, cmd = m.sender.Update(msg)
	return m, cmd
}

func (m *AppModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderShipment(),
		"",
		m.sender.View(),
	)

	if m.err != nil {
		errorStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color(utils.Colours.Red)).
			Bold(true).
			Padding(1)
		content += "\n" + errorStyle.Render(fmt.Sprintf("Error: %s", m.err.Error()))
	}

	return lipgloss.NewStyle().
		Width(m.width).
		MaxHeight(m.height).
		Render(content)
}

func (m *AppModel) renderShipment() string {
	var content strings.Builder
	content.WriteString(utils.HeaderStyle.Render("New shipment · Shipper"))
	content.WriteString("\n")

	label := lipgloss.NewStyle().Foreground(lipgloss.Color(utils.Colours.Subtext0)).Width(12)
	value := lipgloss.NewStyle().Foreground(lipgloss.Color(utils.Colours.Text))

	if !m.shipment.HasShipper() {
		content.WriteString(utils.MutedStyle.Render("  Choose a sender address below to fill in the shipper."))
	} else {
		for i, v := range m.shipment.Shipper() {
			content.WriteString("  " + label.Render(shipperLabels[i]) + value.Render(v) + "\n")
		}
	}

	return utils.PanelStyle.Width(max(m.width-4, 40)).Render(strings.TrimRight(content.String(), "\n"))
}
