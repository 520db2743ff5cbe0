package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"shipdesk/senderterm/internal/views"
)

// runTUI opens the interactive shipment screen. Logs go to a file under the data
// directory so they do not draw over the alt screen.
func runTUI(cmd *cobra.Command, opts *RootOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to start", err)
	}

	s, err := openSession(opts, cfg.LogFilePath())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to start", err)
	}
	defer s.Close()

	app := views.NewAppModel(cmd.Context(), s.engine, s.shipment, s.log)
	p := tea.NewProgram(app,
		tea.WithAltScreen(),
		tea.WithContext(cmd.Context()),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)

	if _, err := p.Run(); err != nil {
		return WrapExitError(ExitFailure, "error running application", err)
	}

	s.log.Info().Msg("session closed")
	return nil
}
