package addressbook

import (
	"shipdesk/senderterm/internal/models"
)

type GateState int

const (
	GateIdle GateState = iota
	GateAwaitingConfirmation
)

// Gate makes a delete wait for explicit confirmation. Only one target can be
// pending; each request starts a new session so late results can be told apart.
type Gate struct {
	state   GateState
	target  models.Identity
	session uint64
}

func (g *Gate) State() GateState {
	return g.state
}

func (g *Gate) Awaiting() bool {
	return g.state == GateAwaitingConfirmation
}

func (g *Gate) Target() models.Identity {
	return g.target
}

func (g *Gate) Session() uint64 {
	return g.session
}

// Request opens the confirmation for id, replacing any pending target.
func (g *Gate) Request(id models.Identity) {
	g.session++
	g.state = GateAwaitingConfirmation
	g.target = id
}

// Cancel discards the pending target. No-op when idle.
func (g *Gate) Cancel() {
	if g.state == GateIdle {
		return
	}
	g.reset()
}

// Confirm returns the pending target and session, or ok=false when idle. The gate
// stays open until Resolve is called with the matching session.
func (g *Gate) Confirm() (target models.Identity, session uint64, ok bool) {
	if g.state != GateAwaitingConfirmation {
		return models.Identity{}, 0, false
	}
	return g.target, g.session, true
}

// Resolve closes the gate after a successful delete, if session is still current.
func (g *Gate) Resolve(session uint64) bool {
	if g.state != GateAwaitingConfirmation || g.session != session {
		return false
	}
	g.reset()
	return true
}

func (g *Gate) reset() {
	g.state = GateIdle
	g.target = models.Identity{}
}

func (g *Gate) Pending() PendingDeletion {
	return PendingDeletion{Target: g.target, ConfirmationOpen: g.Awaiting()}
}
