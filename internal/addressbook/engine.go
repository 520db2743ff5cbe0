package addressbook

import (
	"context"

	"github.com/rs/zerolog"

	"shipdesk/senderterm/internal/models"
)

// Engine mirrors the store's address collection and keeps selection, filter,
// edit and delete state consistent with it.
//
// Engine is not safe for concurrent use. All methods must be called from the
// goroutine that owns it; only Call.Execute runs elsewhere.
type Engine struct {
	store   Store
	log     zerolog.Logger
	auditor Auditor

	records []models.AddressRecord
	owner   string
	loaded  bool

	filter    FilterState
	selection *Selection
	gate      Gate
	coord     *Coordinator

	editTarget  *models.AddressRecord
	editSession uint64
	editOpen    bool

	fetchSeq     uint64
	completedSeq uint64
	fetching     int
}

func NewEngine(store Store, form FormWriter) *Engine {
	return &Engine{
		store:     store,
		log:       zerolog.Nop(),
		records:   []models.AddressRecord{},
		selection: NewSelection(form),
		coord:     NewCoordinator(store),
	}
}

func (e *Engine) SetLogger(logger zerolog.Logger) {
	e.log = logger.With().Str("component", "addressbook").Logger()
}

func (e *Engine) SetAuditor(auditor Auditor) {
	e.auditor = auditor
}

// Refresh starts a fetch of the whole collection.
func (e *Engine) Refresh() *Call {
	e.fetchSeq++
	e.fetching++
	return &Call{Kind: OpFetch, seq: e.fetchSeq, store: e.store}
}

// Complete applies the result of a call. It returns a follow-up call to run (a
// refresh after a successful update or delete) and the call's error, unchanged.
func (e *Engine) Complete(res Result) (*Call, error) {
	switch res.Call.Kind {
	case OpFetch:
		return nil, e.completeFetch(res)
	case OpCreate:
		return e.completeCreate(res)
	case OpUpdate:
		return e.completeUpdate(res)
	case OpDelete:
		return e.completeDelete(res)
	}
	return nil, nil
}

// Do runs call and every follow-up call to completion on the current goroutine.
func (e *Engine) Do(ctx context.Context, call *Call) error {
	for call != nil {
		next, err := e.Complete(call.Execute(ctx))
		if err != nil {
			return err
		}
		call = next
	}
	return nil
}

func (e *Engine) completeFetch(res Result) error {
	if e.fetching > 0 {
		e.fetching--
	}

	seq := res.Call.seq
	if seq <= e.completedSeq {
		e.log.Debug().Uint64("seq", seq).Uint64("latest", e.completedSeq).Msg("discarding stale fetch")
		return nil
	}
	e.completedSeq = seq

	if res.Err != nil {
		e.log.Warn().Err(res.Err).Uint64("seq", seq).Msg("fetch addresses failed")
		return res.Err
	}

	e.apply(seq, res.Profile)
	return nil
}

func (e *Engine) apply(seq uint64, profile *models.Profile) {
	e.records = models.MapAddresses(profile.Addresses, profile.Email, seq)
	e.owner = profile.Email
	e.loaded = true

	if n := models.CountFallbacks(e.records); n > 0 {
		e.log.Warn().Int("count", n).Msg("store returned addresses without identities")
	}

	if e.selection.Reconcile(e.records) {
		e.log.Debug().Msg("selected address vanished, selection cleared")
	}

	e.log.Debug().Uint64("seq", seq).Int("addresses", len(e.records)).Msg("address book refreshed")
}

func (e *Engine) ToggleSelect(record models.AddressRecord) bool {
	return e.selection.Toggle(record, e.records)
}

func (e *Engine) SetSearchTerm(term string) {
	e.filter.SearchTerm = term
}

func (e *Engine) ToggleExpanded() {
	e.filter.Expanded = !e.filter.Expanded
}

// RequestDelete opens the delete confirmation for id, replacing any pending one.
func (e *Engine) RequestDelete(id models.Identity) error {
	if !id.Assigned() {
		return ErrUnassignedIdentity
	}
	e.gate.Request(id)
	return nil
}

func (e *Engine) CancelDelete() {
	e.gate.Cancel()
}

// ConfirmDelete starts deleting the pending target. With nothing pending it does
// nothing and returns a nil call.
func (e *Engine) ConfirmDelete() (*Call, error) {
	target, session, ok := e.gate.Confirm()
	if !ok {
		return nil, nil
	}
	return e.coord.BeginDelete(e.records, target, session)
}

// OpenEdit starts an edit session for record, replacing any open one.
func (e *Engine) OpenEdit(record models.AddressRecord) error {
	current := models.FindByID(e.records, record.ID)
	if current == nil {
		return NewNotFoundError(record.ID.String())
	}

	target := *current
	e.editSession++
	e.editTarget = &target
	e.editOpen = true
	return nil
}

func (e *Engine) CloseEdit() {
	e.closeEdit()
}

func (e *Engine) closeEdit() {
	e.editOpen = false
	e.editTarget = nil
}

func (e *Engine) SubmitEdit(fields models.AddressFields) (*Call, error) {
	if !e.editOpen || e.editTarget == nil {
		return nil, ErrNoEditSession
	}
	return e.coord.BeginUpdate(e.records, e.editTarget.ID, fields, e.editSession)
}

func (e *Engine) SubmitCreate(draft models.AddressDraft) (*Call, error) {
	return e.coord.BeginCreate(draft.Normalize())
}

func (e *Engine) Busy(kind OpKind) bool {
	if kind == OpFetch {
		return e.fetching > 0
	}
	return e.coord.Busy(kind)
}

// Records returns a copy of the canonical collection.
func (e *Engine) Records() []models.AddressRecord {
	out := make([]models.AddressRecord, len(e.records))
	copy(out, e.records)
	return out
}

// SelectedRecord returns the selected record, or nil.
func (e *Engine) SelectedRecord() *models.AddressRecord {
	found := models.FindByID(e.records, e.selection.Selected())
	if found == nil {
		return nil
	}
	record := *found
	return &record
}

func (e *Engine) Snapshot() Snapshot {
	filtered := Filter(e.records, e.filter.SearchTerm)
	page := Paginate(filtered, e.filter.Expanded)
	displayed := make([]models.AddressRecord, len(page))
	copy(displayed, page)

	var edit PendingEdit
	if e.editOpen && e.editTarget != nil {
		target := *e.editTarget
		edit = PendingEdit{Target: &target, Open: true}
	}

	return Snapshot{
		Displayed:     displayed,
		FilteredCount: len(filtered),
		TotalCount:    len(e.records),
		HasMore:       HasMore(filtered),
		Selected:      e.selection.Selected(),
		Filter:        e.filter,
		Deletion:      e.gate.Pending(),
		Edit:          edit,
		Busy: BusyFlags{
			Creating: e.coord.Busy(OpCreate),
			Updating: e.coord.Busy(OpUpdate),
			Deleting: e.coord.Busy(OpDelete),
		},
		Loading:    e.fetching > 0,
		Loaded:     e.loaded,
		OwnerEmail: e.owner,
	}
}
