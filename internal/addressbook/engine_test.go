package addressbook

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipdesk/senderterm/internal/audit"
	"shipdesk/senderterm/internal/models"
)

func newLoadedEngine(t *testing.T, store *fakeStore) (*Engine, *recordingForm) {
	t.Helper()
	form := newRecordingForm()
	e := NewEngine(store, form)
	require.NoError(t, e.Do(context.Background(), e.Refresh()))
	return e, form
}

func recordByKey(t *testing.T, e *Engine, key string) models.AddressRecord {
	t.Helper()
	r := models.FindByID(e.Records(), models.StoreIdentity(key))
	require.NotNil(t, r, "record %s", key)
	return *r
}

func TestEngine_SearchAndSelectScenario(t *testing.T) {
	store := newFakeStore("a@x.com", models.RawAddress{ID: "1", Alias: "Ali", Phone: "0500", City: "Riyadh", Location: "St1"})
	e, form := newLoadedEngine(t, store)

	e.SetSearchTerm("ali")
	snap := e.Snapshot()
	require.Len(t, snap.Displayed, 1)
	assert.Equal(t, "1", snap.Displayed[0].ID.Key())

	assert.True(t, e.ToggleSelect(snap.Displayed[0]))
	assert.Equal(t, [4]string{"Ali", "0500", "Riyadh", "St1"}, [4]string{
		form.values[models.FieldShipperFullName],
		form.values[models.FieldShipperMobile],
		form.values[models.FieldShipperCity],
		form.values[models.FieldShipperAddress],
	})
	assert.Equal(t, "Ali", e.SelectedRecord().DisplayName)

	e.ToggleSelect(snap.Displayed[0])
	assert.True(t, e.Snapshot().Selected.IsZero())
	assert.Nil(t, e.SelectedRecord())
	for _, name := range models.ShipperFields {
		assert.Equal(t, "", form.values[name])
	}
}

func TestEngine_DisclosureScenario(t *testing.T) {
	store := newFakeStore("", rawAddresses(7)...)
	e, _ := newLoadedEngine(t, store)

	snap := e.Snapshot()
	require.Len(t, snap.Displayed, 6)
	assert.True(t, snap.HasMore)
	for i, r := range snap.Displayed {
		assert.Equal(t, e.Records()[i].ID, r.ID)
	}

	e.ToggleExpanded()
	assert.Len(t, e.Snapshot().Displayed, 7)
	assert.Equal(t, "", e.Snapshot().Filter.SearchTerm)

	e.ToggleExpanded()
	assert.Equal(t, snap.Displayed, e.Snapshot().Displayed)
}

func TestEngine_SearchDoesNotTouchDisclosure(t *testing.T) {
	store := newFakeStore("", rawAddresses(8)...)
	e, _ := newLoadedEngine(t, store)

	e.ToggleExpanded()
	e.SetSearchTerm("Sender 1")
	snap := e.Snapshot()
	assert.True(t, snap.Filter.Expanded)
	assert.Equal(t, 1, snap.FilteredCount)
	assert.False(t, snap.HasMore)
}

func TestEngine_DeleteSelectedClearsSelection(t *testing.T) {
	store := newFakeStore("", rawAddresses(3)...)
	e, form := newLoadedEngine(t, store)

	target := recordByKey(t, e, "id2")
	e.ToggleSelect(target)
	require.Equal(t, target.ID, e.Snapshot().Selected)

	require.NoError(t, e.RequestDelete(target.ID))
	call, err := e.ConfirmDelete()
	require.NoError(t, err)
	require.NotNil(t, call)
	assert.True(t, e.Snapshot().Busy.Deleting)

	require.NoError(t, e.Do(context.Background(), call))

	snap := e.Snapshot()
	assert.True(t, snap.Selected.IsZero())
	assert.False(t, snap.Deletion.ConfirmationOpen)
	assert.True(t, snap.Deletion.Target.IsZero())
	assert.False(t, snap.Busy.Deleting)
	assert.Equal(t, 2, snap.TotalCount)
	assert.Equal(t, "", form.values[models.FieldShipperFullName])
	assert.Equal(t, []string{"id2"}, store.deletes)
}

func TestEngine_ConfirmFromIdleIsNoop(t *testing.T) {
	store := newFakeStore("", rawAddresses(2)...)
	e, _ := newLoadedEngine(t, store)

	call, err := e.ConfirmDelete()
	assert.NoError(t, err)
	assert.Nil(t, call)
	assert.Empty(t, store.deletes)
}

func TestEngine_LastRequestedDeleteWins(t *testing.T) {
	store := newFakeStore("", rawAddresses(3)...)
	e, _ := newLoadedEngine(t, store)

	require.NoError(t, e.RequestDelete(models.StoreIdentity("id1")))
	require.NoError(t, e.RequestDelete(models.StoreIdentity("id2")))

	call, err := e.ConfirmDelete()
	require.NoError(t, err)
	require.NoError(t, e.Do(context.Background(), call))

	assert.Equal(t, []string{"id2"}, store.deletes)
}

func TestEngine_DeleteTransportFailureKeepsConfirmation(t *testing.T) {
	store := newFakeStore("", rawAddresses(6)...)
	e, _ := newLoadedEngine(t, store)
	before := e.Records()

	transport := NewTransportError("request failed", errors.New("connection reset"))
	store.deleteErr = transport

	require.NoError(t, e.RequestDelete(models.StoreIdentity("id5")))
	call, err := e.ConfirmDelete()
	require.NoError(t, err)

	next, err := e.Complete(call.Execute(context.Background()))
	assert.Nil(t, next)
	assert.Same(t, transport, err)

	snap := e.Snapshot()
	assert.Equal(t, "id5", snap.Deletion.Target.Key())
	assert.True(t, snap.Deletion.ConfirmationOpen)
	assert.False(t, snap.Busy.Deleting)
	assert.Equal(t, before, e.Records())
}

func TestEngine_DeleteRejectsDuplicateWhileInFlight(t *testing.T) {
	store := newFakeStore("", rawAddresses(2)...)
	e, _ := newLoadedEngine(t, store)

	require.NoError(t, e.RequestDelete(models.StoreIdentity("id1")))
	first, err := e.ConfirmDelete()
	require.NoError(t, err)

	_, err = e.ConfirmDelete()
	assert.ErrorIs(t, err, ErrBusy)

	require.NoError(t, e.Do(context.Background(), first))
	assert.Equal(t, []string{"id1"}, store.deletes)
}

func TestEngine_DeleteMissingTargetFailsBeforeRemoteCall(t *testing.T) {
	store := newFakeStore("", rawAddresses(2)...)
	e, _ := newLoadedEngine(t, store)

	require.NoError(t, e.RequestDelete(models.StoreIdentity("ghost")))
	call, err := e.ConfirmDelete()
	assert.Nil(t, call)
	assert.True(t, IsNotFound(err))
	assert.False(t, e.Busy(OpDelete))
	assert.True(t, e.Snapshot().Deletion.ConfirmationOpen)
	assert.Empty(t, store.deletes)
}

func TestEngine_CancelledDeleteResultLeavesNewConfirmation(t *testing.T) {
	store := newFakeStore("", rawAddresses(3)...)
	e, _ := newLoadedEngine(t, store)

	require.NoError(t, e.RequestDelete(models.StoreIdentity("id1")))
	call, err := e.ConfirmDelete()
	require.NoError(t, err)
	res := call.Execute(context.Background())

	e.CancelDelete()
	require.NoError(t, e.RequestDelete(models.StoreIdentity("id3")))

	next, err := e.Complete(res)
	require.NoError(t, err)
	require.NotNil(t, next, "a successful delete still refreshes")
	require.NoError(t, e.Do(context.Background(), next))

	snap := e.Snapshot()
	assert.True(t, snap.Deletion.ConfirmationOpen)
	assert.Equal(t, "id3", snap.Deletion.Target.Key())
	assert.Equal(t, 2, snap.TotalCount)
}

func TestEngine_UnassignedIdentityCannotBeDeleted(t *testing.T) {
	store := newFakeStore("", models.RawAddress{Alias: "Pending"})
	e, _ := newLoadedEngine(t, store)

	rec := e.Records()[0]
	assert.False(t, rec.ID.Assigned())
	assert.ErrorIs(t, e.RequestDelete(rec.ID), ErrUnassignedIdentity)
	assert.False(t, e.Snapshot().Deletion.ConfirmationOpen)
}

func TestEngine_FallbackSelectionClearedOnRefresh(t *testing.T) {
	store := newFakeStore("", models.RawAddress{Alias: "Pending"})
	e, form := newLoadedEngine(t, store)

	e.ToggleSelect(e.Records()[0])
	require.False(t, e.Snapshot().Selected.IsZero())

	require.NoError(t, e.Do(context.Background(), e.Refresh()))
	assert.True(t, e.Snapshot().Selected.IsZero())
	assert.Equal(t, "", form.values[models.FieldShipperFullName])
}

func TestEngine_StaleFetchIsDiscarded(t *testing.T) {
	store := newFakeStore("", rawAddresses(3)...)
	form := newRecordingForm()
	e := NewEngine(store, form)
	ctx := context.Background()

	older := e.Refresh()
	olderRes := older.Execute(ctx)

	store.setAddresses(rawAddresses(1)...)
	newer := e.Refresh()
	newerRes := newer.Execute(ctx)

	assert.True(t, e.Snapshot().Loading)

	_, err := e.Complete(newerRes)
	require.NoError(t, err)
	_, err = e.Complete(olderRes)
	require.NoError(t, err)

	assert.Len(t, e.Records(), 1, "the older response must not resurrect records")
	assert.False(t, e.Snapshot().Loading)
}

func TestEngine_FetchFailureKeepsCollection(t *testing.T) {
	store := newFakeStore("", rawAddresses(2)...)
	e, _ := newLoadedEngine(t, store)

	store.fetchErr = NewTransportError("request failed", nil)
	err := e.Do(context.Background(), e.Refresh())
	assert.True(t, IsTransport(err))
	assert.Len(t, e.Records(), 2)
}

func TestEngine_CreateLeavesRefreshToCaller(t *testing.T) {
	store := newFakeStore("owner@x.com")
	e, _ := newLoadedEngine(t, store)
	ctx := context.Background()

	call, err := e.SubmitCreate(models.AddressDraft{Alias: " Home ", Location: "St9", Phone: "0599", City: "Abha"})
	require.NoError(t, err)
	assert.True(t, e.Snapshot().Busy.Creating)

	_, err = e.SubmitCreate(models.AddressDraft{Alias: "Twice"})
	assert.ErrorIs(t, err, ErrBusy)

	next, err := e.Complete(call.Execute(ctx))
	require.NoError(t, err)
	assert.Nil(t, next)
	assert.Empty(t, e.Records(), "create does not touch the local mirror")
	assert.False(t, e.Snapshot().Busy.Creating)

	require.Len(t, store.creates, 1)
	assert.Equal(t, "Home", store.creates[0].Alias)
	assert.Equal(t, models.DefaultCountry, store.creates[0].Country)

	require.NoError(t, e.Do(ctx, e.Refresh()))
	require.Len(t, e.Records(), 1)
	assert.Equal(t, "owner@x.com", e.Records()[0].Email)
}

func TestEngine_CreateFailureIsReturnedUnchanged(t *testing.T) {
	store := newFakeStore("", rawAddresses(1)...)
	e, _ := newLoadedEngine(t, store)

	failure := errors.New("validation failed")
	store.createErr = failure

	call, err := e.SubmitCreate(models.AddressDraft{Alias: "X", Location: "Y", Phone: "1", City: "Z"})
	require.NoError(t, err)

	_, err = e.Complete(call.Execute(context.Background()))
	assert.Same(t, failure, err)
	assert.Len(t, e.Records(), 1)
	assert.False(t, e.Busy(OpCreate))
}

func TestEngine_UpdateClosesEditAndRefreshes(t *testing.T) {
	store := newFakeStore("", rawAddresses(2)...)
	e, _ := newLoadedEngine(t, store)

	require.NoError(t, e.OpenEdit(recordByKey(t, e, "id1")))
	snap := e.Snapshot()
	require.True(t, snap.Edit.Open)
	assert.Equal(t, "id1", snap.Edit.Target.ID.Key())

	draft := snap.Edit.Target.Draft()
	draft.City = "Mecca"
	call, err := e.SubmitEdit(draft.Fields())
	require.NoError(t, err)
	assert.True(t, e.Snapshot().Busy.Updating)

	require.NoError(t, e.Do(context.Background(), call))

	snap = e.Snapshot()
	assert.False(t, snap.Edit.Open)
	assert.Nil(t, snap.Edit.Target)
	assert.Equal(t, "Mecca", recordByKey(t, e, "id1").City)
}

func TestEngine_UpdateFailureKeepsEditOpen(t *testing.T) {
	store := newFakeStore("", rawAddresses(2)...)
	e, _ := newLoadedEngine(t, store)
	store.updateErr = NewTransportError("request failed", nil)

	require.NoError(t, e.OpenEdit(recordByKey(t, e, "id2")))
	city := "Taif"
	call, err := e.SubmitEdit(models.AddressFields{City: &city})
	require.NoError(t, err)

	err = e.Do(context.Background(), call)
	assert.True(t, IsTransport(err))

	snap := e.Snapshot()
	assert.True(t, snap.Edit.Open)
	assert.Equal(t, "id2", snap.Edit.Target.ID.Key())
	assert.False(t, snap.Busy.Updating)
	assert.Equal(t, "Riyadh", recordByKey(t, e, "id2").City)
}

func TestEngine_UpdateResultIgnoredForReopenedEdit(t *testing.T) {
	store := newFakeStore("", rawAddresses(2)...)
	e, _ := newLoadedEngine(t, store)
	ctx := context.Background()

	require.NoError(t, e.OpenEdit(recordByKey(t, e, "id1")))
	city := "Tabuk"
	call, err := e.SubmitEdit(models.AddressFields{City: &city})
	require.NoError(t, err)
	res := call.Execute(ctx)

	e.CloseEdit()
	require.NoError(t, e.OpenEdit(recordByKey(t, e, "id2")))

	next, err := e.Complete(res)
	require.NoError(t, err)
	require.NoError(t, e.Do(ctx, next))

	snap := e.Snapshot()
	assert.True(t, snap.Edit.Open, "edit for another record must stay open")
	assert.Equal(t, "id2", snap.Edit.Target.ID.Key())
	assert.Equal(t, "Tabuk", recordByKey(t, e, "id1").City)
}

func TestEngine_SubmitEditWithoutSession(t *testing.T) {
	store := newFakeStore("", rawAddresses(1)...)
	e, _ := newLoadedEngine(t, store)

	_, err := e.SubmitEdit(models.AddressFields{})
	assert.ErrorIs(t, err, ErrNoEditSession)
}

func TestEngine_UpdateVanishedTarget(t *testing.T) {
	store := newFakeStore("", rawAddresses(2)...)
	e, _ := newLoadedEngine(t, store)
	ctx := context.Background()

	require.NoError(t, e.OpenEdit(recordByKey(t, e, "id1")))

	store.setAddresses(rawAddresses(2)[1])
	require.NoError(t, e.Do(ctx, e.Refresh()))

	_, err := e.SubmitEdit(models.AddressFields{})
	assert.True(t, IsNotFound(err))
	assert.False(t, e.Busy(OpUpdate))
	assert.Empty(t, store.updates)
}

func TestEngine_AuditsSuccessfulMutationsOnly(t *testing.T) {
	store := newFakeStore("", rawAddresses(2)...)
	e, _ := newLoadedEngine(t, store)
	auditor := &recordingAuditor{}
	e.SetAuditor(auditor)
	ctx := context.Background()

	store.deleteErr = errors.New("boom")
	require.NoError(t, e.RequestDelete(models.StoreIdentity("id1")))
	call, err := e.ConfirmDelete()
	require.NoError(t, err)
	require.Error(t, e.Do(ctx, call))
	assert.Empty(t, auditor.actions)

	store.deleteErr = nil
	call, err = e.ConfirmDelete()
	require.NoError(t, err)
	require.NoError(t, e.Do(ctx, call))

	assert.Equal(t, []audit.AuditAction{audit.AuditActionDelete}, auditor.actions)
	assert.Equal(t, []string{"id1"}, auditor.ids)
}

func TestEngine_ToggleUnknownRecordIsNoop(t *testing.T) {
	store := newFakeStore("", rawAddresses(1)...)
	e, form := newLoadedEngine(t, store)

	assert.False(t, e.ToggleSelect(models.AddressRecord{ID: models.StoreIdentity("nope")}))
	assert.Empty(t, form.writes)
}
