package utils

import "github.com/charmbracelet/lipgloss"

// ColourScheme is the Catppuccin Mocha subset the views draw with.
type ColourScheme struct {
	Mauve    string
	Red      string
	Peach    string
	Yellow   string
	Green    string
	Teal     string
	Blue     string
	Text     string
	Subtext1 string
	Subtext0 string
	Overlay1 string
	Overlay0 string
	Surface1 string
	Surface0 string
	Base     string
}

var Colours = ColourScheme{
	Mauve:    "#cba6f7",
	Red:      "#f38ba8",
	Peach:    "#fab387",
	Yellow:   "#f9e2af",
	Green:    "#a6e3a1",
	Teal:     "#94e2d5",
	Blue:     "#89b4fa",
	Text:     "#cdd6f4",
	Subtext1: "#bac2de",
	Subtext0: "#a6adc8",
	Overlay1: "#7f849c",
	Overlay0: "#6c7086",
	Surface1: "#45475a",
	Surface0: "#313244",
	Base:     "#1e1e2e",
}

func colour(hex string) lipgloss.Color {
	return lipgloss.Color(hex)
}

// Shared styles for the sender section and shipment panel.
var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colour(Colours.Mauve)).
			Padding(0, 1)

	MutedStyle = lipgloss.NewStyle().
			Foreground(colour(Colours.Overlay1))

	ErrorStyle = lipgloss.NewStyle().
			Foreground(colour(Colours.Red)).
			Padding(0, 1)

	NoticeStyle = lipgloss.NewStyle().
			Foreground(colour(Colours.Green)).
			Padding(0, 1)

	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colour(Colours.Surface1)).
			Padding(0, 1)

	SelectedCardStyle = CardStyle.
				BorderForeground(colour(Colours.Green)).
				Background(colour(Colours.Surface0))

	CursorCardStyle = CardStyle.
			BorderForeground(colour(Colours.Blue))

	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(colour(Colours.Red)).
			Padding(1, 2)

	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colour(Colours.Overlay0)).
			Padding(0, 1)
)
