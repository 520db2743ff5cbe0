package cli

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/rs/zerolog"

	"shipdesk/senderterm/internal/addressbook"
	"shipdesk/senderterm/internal/audit"
	"shipdesk/senderterm/internal/config"
	"shipdesk/senderterm/internal/logging"
	"shipdesk/senderterm/internal/models"
	"shipdesk/senderterm/internal/remote"
	"shipdesk/senderterm/internal/storage"
)

// session is everything a command needs to talk to the address book.
type session struct {
	config   *config.Config
	log      zerolog.Logger
	store    addressbook.Store
	engine   *addressbook.Engine
	shipment *models.ShipmentForm
	auditor  *audit.AddressAuditor

	closers []io.Closer
}

// loadConfig applies command-line overrides on top of config.Load.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	if opts.Backend != "" {
		cfg.Backend = opts.Backend
	}
	if opts.StoreURL != "" {
		cfg.StoreURL = opts.StoreURL
		if opts.Backend == "" {
			cfg.Backend = config.BackendRemote
		}
	}
	if opts.DataDir != "" {
		cfg.DataDir = opts.DataDir
	}
	if opts.Verbose {
		cfg.Log.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openSession builds the store, engine and audit log. logOutput overrides the
// configured log destination when non-empty.
func openSession(opts *RootOptions, logOutput string) (*session, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	s := &session{config: cfg, shipment: models.NewShipmentForm()}

	logCfg := cfg.ToLoggingConfig()
	if logOutput != "" {
		logCfg.Output = logOutput
	}
	logger, logCloser, err := logging.New(logCfg)
	if err != nil {
		return nil, err
	}
	s.log = logger
	s.closers = append(s.closers, logCloser)

	switch cfg.Backend {
	case config.BackendRemote:
		client, err := remote.NewClient(cfg.ToRemoteConfig())
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to initialize address client: %w", err)
		}
		client.SetLogger(logger)
		s.store = client
		s.closers = append(s.closers, client)
	default:
		fileStore, err := storage.NewFileStore(cfg.DataDir, cfg.Passphrase, cfg.OwnerEmail)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		fileStore.SetLogger(logger)
		s.store = fileStore
	}

	auditor, err := audit.NewAddressAuditor(filepath.Join(cfg.DataDir, "audit"))
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to initialize audit log: %w", err)
	}
	auditor.SetOwner(cfg.OwnerEmail)
	s.auditor = auditor

	s.engine = addressbook.NewEngine(s.store, s.shipment)
	s.engine.SetLogger(logger)
	s.engine.SetAuditor(auditor)

	logger.Debug().Str("backend", cfg.Backend).Str("data_dir", cfg.DataDir).Msg("session opened")
	return s, nil
}

func (s *session) Close() {
	if s.auditor != nil {
		if err := s.auditor.Close(); err != nil {
			s.log.Warn().Err(err).Msg("failed to flush audit log")
		}
	}
	for i := len(s.closers) - 1; i >= 0; i-- {
		_ = s.closers[i].Close()
	}
}
