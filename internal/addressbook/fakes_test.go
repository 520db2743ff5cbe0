package addressbook

import (
	"context"
	"fmt"
	"sync"

	"shipdesk/senderterm/internal/audit"
	"shipdesk/senderterm/internal/models"
)

type fakeStore struct {
	mu      sync.Mutex
	profile models.Profile

	fetchErr  error
	createErr error
	updateErr error
	deleteErr error

	fetches int
	creates []models.AddressDraft
	updates map[string]models.AddressFields
	deletes []string
	nextID  int
}

func newFakeStore(email string, addresses ...models.RawAddress) *fakeStore {
	return &fakeStore{
		profile: models.Profile{Email: email, Addresses: addresses},
		updates: make(map[string]models.AddressFields),
	}
}

func (s *fakeStore) FetchOwnAddresses(ctx context.Context) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.fetches++
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}

	profile := models.Profile{Email: s.profile.Email}
	profile.Addresses = append([]models.RawAddress(nil), s.profile.Addresses...)
	return &profile, nil
}

func (s *fakeStore) CreateAddress(ctx context.Context, draft models.AddressDraft) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.createErr != nil {
		return s.createErr
	}
	s.nextID++
	s.creates = append(s.creates, draft)
	s.profile.Addresses = append(s.profile.Addresses, models.RawAddress{
		ID:       fmt.Sprintf("new-%d", s.nextID),
		Alias:    draft.Alias,
		Location: draft.Location,
		Phone:    draft.Phone,
		City:     draft.City,
		Country:  draft.Country,
	})
	return nil
}

func (s *fakeStore) UpdateAddress(ctx context.Context, id string, fields models.AddressFields) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.updateErr != nil {
		return s.updateErr
	}
	for i := range s.profile.Addresses {
		if s.profile.Addresses[i].ID == id {
			fields.Apply(&s.profile.Addresses[i])
			s.updates[id] = fields
			return nil
		}
	}
	return NewNotFoundError(id)
}

func (s *fakeStore) DeleteAddress(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.deleteErr != nil {
		return s.deleteErr
	}
	for i := range s.profile.Addresses {
		if s.profile.Addresses[i].ID == id {
			s.profile.Addresses = append(s.profile.Addresses[:i], s.profile.Addresses[i+1:]...)
			s.deletes = append(s.deletes, id)
			return nil
		}
	}
	return NewNotFoundError(id)
}

func (s *fakeStore) setAddresses(addresses ...models.RawAddress) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile.Addresses = addresses
}

// recordingForm remembers every field write in order.
type recordingForm struct {
	values map[string]string
	writes []string
}

func newRecordingForm() *recordingForm {
	return &recordingForm{values: make(map[string]string)}
}

func (f *recordingForm) SetField(name, value string) {
	f.values[name] = value
	f.writes = append(f.writes, name)
}

type recordingAuditor struct {
	actions []audit.AuditAction
	ids     []string
}

func (a *recordingAuditor) LogAddressAction(action audit.AuditAction, addressID string, details map[string]interface{}) error {
	a.actions = append(a.actions, action)
	a.ids = append(a.ids, addressID)
	return nil
}

func rawAddresses(n int) []models.RawAddress {
	out := make([]models.RawAddress, n)
	for i := range out {
		out[i] = models.RawAddress{
			ID:       fmt.Sprintf("id%d", i+1),
			Alias:    fmt.Sprintf("Sender %d", i+1),
			Location: fmt.Sprintf("Street %d", i+1),
			Phone:    fmt.Sprintf("05000000%02d", i+1),
			City:     "Riyadh",
		}
	}
	return out
}
