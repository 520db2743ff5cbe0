package views

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"shipdesk/senderterm/internal/addressbook"
)

// CallCompletedMsg carries a finished store call back to the update loop.
type CallCompletedMsg struct {
	Result addressbook.Result
}

type ErrorMsg struct {
	Err error
}

// runCall executes call off the update loop. A nil call yields a nil command.
func runCall(ctx context.Context, call *addressbook.Call) tea.Cmd {
	if call == nil {
		return nil
	}
	return func() tea.Msg {
		return CallCompletedMsg{Result: call.Execute(ctx)}
	}
}
