package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// AddressAuditor appends address book changes to a JSON-lines file
type AddressAuditor struct {
	logFile    string
	owner      string
	batchSize  int
	batchMu    sync.Mutex
	batchLogs  []AuditLog
	flushTimer *time.Timer
}

// NewAddressAuditor creates an auditor writing into logDir
func NewAddressAuditor(logDir string) (*AddressAuditor, error) {
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create audit log directory: %w", err)
	}

	logFile := filepath.Join(logDir, fmt.Sprintf("address_audit_%s.log", time.Now().Format("2006-01-02")))

	auditor := &AddressAuditor{
		logFile:   logFile,
		batchSize: 10,
		batchLogs: make([]AuditLog, 0, 10),
	}

	// Flush every minute if the batch never fills
	auditor.flushTimer = time.AfterFunc(time.Minute, func() {
		_ = auditor.Flush()
	})

	return auditor, nil
}

// SetOwner tags subsequent entries with the account they belong to
func (a *AddressAuditor) SetOwner(owner string) {
	a.batchMu.Lock()
	defer a.batchMu.Unlock()
	a.owner = owner
}

// LogAddressAction records a change to an address
func (a *AddressAuditor) LogAddressAction(action AuditAction, addressID string, details map[string]interface{}) error {
	a.batchMu.Lock()
	a.batchLogs = append(a.batchLogs, AuditLog{
		ID:        uuid.NewString(),
		AddressID: addressID,
		Action:    action,
		Timestamp: time.Now(),
		Owner:     a.owner,
		Details:   details,
	})

	if len(a.batchLogs) >= a.batchSize {
		a.batchMu.Unlock()
		return a.Flush()
	}
	a.batchMu.Unlock()

	return nil
}

// Flush writes all pending audit logs to the file
func (a *AddressAuditor) Flush() error {
	a.batchMu.Lock()
	if len(a.batchLogs) == 0 {
		a.batchMu.Unlock()
		return nil
	}

	if a.flushTimer != nil {
		a.flushTimer.Reset(time.Minute)
	}

	logsToFlush := make([]AuditLog, len(a.batchLogs))
	copy(logsToFlush, a.batchLogs)
	a.batchLogs = a.batchLogs[:0]
	a.batchMu.Unlock()

	file, err := os.OpenFile(a.logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open audit log file: %w", err)
	}
	defer file.Close()

	for _, log := range logsToFlush {
		logJSON, err := json.Marshal(log)
		if err != nil {
			return fmt.Errorf("failed to marshal audit log: %w", err)
		}

		if _, err := file.Write(append(logJSON, '\n')); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
	}

	return nil
}

// History returns every entry for addressID, or every entry when addressID is empty.
func (a *AddressAuditor) History(addressID string) ([]AuditLog, error) {
	var logs []AuditLog

	if err := a.Flush(); err != nil {
		return nil, err
	}

	file, err := os.Open(a.logFile)
	if err != nil {
		if os.IsNotExist(err) {
			return logs, nil
		}
		return nil, fmt.Errorf("failed to open audit log file: %w", err)
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	for {
		var log AuditLog
		if err := decoder.Decode(&log); err != nil {
			break
		}

		if addressID == "" || log.AddressID == addressID {
			logs = append(logs, log)
		}
	}

	return logs, nil
}

// Close stops the flush timer and writes anything pending
func (a *AddressAuditor) Close() error {
	if a.flushTimer != nil {
		a.flushTimer.Stop()
	}
	return a.Flush()
}
