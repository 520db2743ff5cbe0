package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"shipdesk/senderterm/internal/addressbook"
	"shipdesk/senderterm/internal/models"
)

const (
	appDir        = ".senderterm"
	addressesFile = "addresses.json"
)

// FileStore keeps the address book in a JSON file under the data directory.
// With a passphrase the file is sealed with AES-GCM. It implements
// addressbook.Store for offline and demo use.
type FileStore struct {
	dataDir    string
	passphrase string
	owner      string
	log        zerolog.Logger
	mu         sync.Mutex
}

var _ addressbook.Store = (*FileStore)(nil)

// DefaultDataDir returns ~/.senderterm.
func DefaultDataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, appDir), nil
}

func NewFileStore(dataDir, passphrase, ownerEmail string) (*FileStore, error) {
	if dataDir == "" {
		dir, err := DefaultDataDir()
		if err != nil {
			return nil, err
		}
		dataDir = dir
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return &FileStore{
		dataDir:    dataDir,
		passphrase: passphrase,
		owner:      ownerEmail,
		log:        zerolog.Nop(),
	}, nil
}

func (s *FileStore) SetLogger(logger zerolog.Logger) {
	s.log = logger.With().Str("component", "storage").Logger()
}

func (s *FileStore) Path() string {
	return filepath.Join(s.dataDir, addressesFile)
}

func (s *FileStore) FetchOwnAddresses(ctx context.Context) (*models.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, addressbook.ClassifyError(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load()
}

func (s *FileStore) CreateAddress(ctx context.Context, draft models.AddressDraft) error {
	return s.mutate(ctx, func(p *models.Profile) error {
		p.Addresses = append(p.Addresses, models.RawAddress{
			ID:       uuid.NewString(),
			Alias:    draft.Alias,
			Location: draft.Location,
			Phone:    draft.Phone,
			City:     draft.City,
			Country:  draft.Country,
		})
		return nil
	})
}

func (s *FileStore) UpdateAddress(ctx context.Context, id string, fields models.AddressFields) error {
	return s.mutate(ctx, func(p *models.Profile) error {
		i := indexOf(p.Addresses, id)
		if i < 0 {
			return addressbook.NewNotFoundError(id)
		}
		fields.Apply(&p.Addresses[i])
		return nil
	})
}

func (s *FileStore) DeleteAddress(ctx context.Context, id string) error {
	return s.mutate(ctx, func(p *models.Profile) error {
		i := indexOf(p.Addresses, id)
		if i < 0 {
			return addressbook.NewNotFoundError(id)
		}
		p.Addresses = append(p.Addresses[:i], p.Addresses[i+1:]...)
		return nil
	})
}

func indexOf(addresses []models.RawAddress, id string) int {
	if id == "" {
		return -1
	}
	for i := range addresses {
		if addresses[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *FileStore) mutate(ctx context.Context, fn func(*models.Profile) error) error {
	if err := ctx.Err(); err != nil {
		return addressbook.ClassifyError(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	profile, err := s.load()
	if err != nil {
		return err
	}
	if err := fn(profile); err != nil {
		return err
	}
	return s.save(profile)
}

func (s *FileStore) load() (*models.Profile, error) {
	filePath := s.Path()

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return &models.Profile{Email: s.owner, Addresses: []models.RawAddress{}}, nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, addressbook.NewTransportError("failed to read address file", err)
	}

	if env, sealed := sniffEnvelope(data); sealed {
		if s.passphrase == "" {
			return nil, addressbook.NewStoreError(addressbook.ErrUnauthorized, "address file is encrypted, a passphrase is required", nil)
		}
		data, err = Decrypt(env, s.passphrase)
		if err != nil {
			return nil, addressbook.NewStoreError(addressbook.ErrUnauthorized, "failed to decrypt address file", err)
		}
	}

	var profile models.Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, addressbook.NewStoreError(addressbook.ErrValidation, "failed to unmarshal address file", err)
	}
	if s.owner != "" {
		profile.Email = s.owner
	}
	if profile.Addresses == nil {
		profile.Addresses = []models.RawAddress{}
	}

	return &profile, nil
}

func (s *FileStore) save(profile *models.Profile) error {
	data, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal addresses: %w", err)
	}

	if s.passphrase != "" {
		env, err := Encrypt(data, s.passphrase)
		if err != nil {
			return fmt.Errorf("failed to encrypt addresses: %w", err)
		}
		if data, err = json.MarshalIndent(env, "", "  "); err != nil {
			return fmt.Errorf("failed to marshal envelope: %w", err)
		}
	}

	// write-then-rename so a crash never leaves a half-written book
	tmp := s.Path() + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return addressbook.NewTransportError("failed to write address file", err)
	}
	if err := os.Rename(tmp, s.Path()); err != nil {
		return addressbook.NewTransportError("failed to replace address file", err)
	}

	s.log.Debug().Int("addresses", len(profile.Addresses)).Bool("encrypted", s.passphrase != "").Msg("address file saved")
	return nil
}
