package addressbook

import (
	"shipdesk/senderterm/internal/audit"
	"shipdesk/senderterm/internal/models"
)

// Coordinator starts mutations against the store. At most one call of each kind
// is in flight at a time.
type Coordinator struct {
	store Store
	busy  map[OpKind]bool
}

func NewCoordinator(store Store) *Coordinator {
	return &Coordinator{
		store: store,
		busy:  make(map[OpKind]bool),
	}
}

func (c *Coordinator) Busy(kind OpKind) bool {
	return c.busy[kind]
}

func (c *Coordinator) BeginCreate(draft models.AddressDraft) (*Call, error) {
	if c.busy[OpCreate] {
		return nil, ErrBusy
	}
	c.busy[OpCreate] = true
	return &Call{Kind: OpCreate, draft: draft, store: c.store}, nil
}

func (c *Coordinator) BeginUpdate(canonical []models.AddressRecord, target models.Identity, fields models.AddressFields, session uint64) (*Call, error) {
	if c.busy[OpUpdate] {
		return nil, ErrBusy
	}
	if err := checkTarget(canonical, target); err != nil {
		return nil, err
	}
	c.busy[OpUpdate] = true
	return &Call{Kind: OpUpdate, Target: target, fields: fields, session: session, store: c.store}, nil
}

func (c *Coordinator) BeginDelete(canonical []models.AddressRecord, target models.Identity, session uint64) (*Call, error) {
	if c.busy[OpDelete] {
		return nil, ErrBusy
	}
	if err := checkTarget(canonical, target); err != nil {
		return nil, err
	}
	c.busy[OpDelete] = true
	return &Call{Kind: OpDelete, Target: target, session: session, store: c.store}, nil
}

func (c *Coordinator) finish(kind OpKind) {
	delete(c.busy, kind)
}

func checkTarget(canonical []models.AddressRecord, target models.Identity) error {
	if !target.Assigned() {
		return ErrUnassignedIdentity
	}
	if models.FindByID(canonical, target) == nil {
		return NewNotFoundError(target.Key())
	}
	return nil
}

func (e *Engine) completeCreate(res Result) (*Call, error) {
	e.coord.finish(OpCreate)

	if res.Err != nil {
		e.log.Warn().Err(res.Err).Msg("create address failed")
		return nil, res.Err
	}

	e.log.Info().Str("alias", res.Call.draft.Alias).Msg("address created")
	e.audit(audit.AuditActionCreate, "", map[string]interface{}{
		"alias": res.Call.draft.Alias,
		"city":  res.Call.draft.City,
	})

	// The caller refreshes; the store is the only source of the new identity.
	return nil, nil
}

func (e *Engine) completeUpdate(res Result) (*Call, error) {
	e.coord.finish(OpUpdate)
	id := res.Call.Target

	if res.Err != nil {
		e.log.Warn().Err(res.Err).Str("address", id.String()).Msg("update address failed")
		return nil, res.Err
	}

	e.log.Info().Str("address", id.String()).Msg("address updated")
	e.audit(audit.AuditActionUpdate, id.Key(), nil)

	if e.editOpen && e.editSession == res.Call.session && e.editTarget != nil && e.editTarget.ID == id {
		e.closeEdit()
	} else {
		e.log.Debug().Str("address", id.String()).Msg("edit session changed, leaving it open")
	}

	return e.Refresh(), nil
}

func (e *Engine) completeDelete(res Result) (*Call, error) {
	e.coord.finish(OpDelete)
	id := res.Call.Target

	if res.Err != nil {
		e.log.Warn().Err(res.Err).Str("address", id.String()).Msg("delete address failed")
		return nil, res.Err
	}

	e.log.Info().Str("address", id.String()).Msg("address deleted")
	e.audit(audit.AuditActionDelete, id.Key(), nil)

	if !e.gate.Resolve(res.Call.session) {
		e.log.Debug().Str("address", id.String()).Msg("confirmation changed, leaving it open")
	}

	return e.Refresh(), nil
}

func (e *Engine) audit(action audit.AuditAction, id string, details map[string]interface{}) {
	if e.auditor == nil {
		return
	}
	if err := e.auditor.LogAddressAction(action, id, details); err != nil {
		e.log.Warn().Err(err).Str("action", string(action)).Msg("audit log failed")
	}
}
