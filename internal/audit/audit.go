// Package audit persists admission events, sweep runs and bucket snapshots
// to a relational database for later inspection and export.
package audit

import (
	"fmt"
	"os"
	"sync"

	"github.com/marketloom/graphgate/internal/contract"
	"github.com/marketloom/graphgate/schema"
)

// AuditStoreManager holds the process-wide audit store.
type AuditStoreManager struct {
	mu    sync.RWMutex
	store contract.AuditStore
}

var _ contract.AuditManager = &AuditStoreManager{} // Compile-time check

// Manager is the global audit store manager instance.
var Manager = &AuditStoreManager{}

var (
	initOnce  sync.Once
	closeOnce sync.Once
)

// GetAuditStore returns the audit store, or nil when tracking is disabled.
func (m *AuditStoreManager) GetAuditStore() contract.AuditStore {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.store
}

// SetAuditStore replaces the audit store. Meant for tests.
func (m *AuditStoreManager) SetAuditStore(store contract.AuditStore) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store = store
}

// InitAudit initializes the global audit store once per process.
func InitAudit(cfg *contract.Config) error {
	var initErr error
	initOnce.Do(func() {
		store, err := NewAuditStore(cfg.AuditBackend, cfg.AuditDBConnect)
		if err != nil {
			initErr = fmt.Errorf("failed to initialize audit store: %w", err)
			return
		}
		Manager.SetAuditStore(store)
	})
	return initErr
}

// CloseAudit closes the global audit store once per process.
func CloseAudit() error {
	var closeErr error
	closeOnce.Do(func() {
		store := Manager.GetAuditStore()
		if store == nil {
			return
		}
		if err := store.Close(); err != nil {
			closeErr = fmt.Errorf("failed to close audit store: %w", err)
		}
		Manager.SetAuditStore(nil)
	})
	return closeErr
}

// ClearAudit removes all recorded audit data. For SQLite the database file is
// deleted outright; other backends drop each table.
func ClearAudit(cfg *contract.Config) error {
	switch cfg.AuditBackend {
	case schema.SQLiteBackend:
		dbPath := cfg.AuditDBConnect
		if dbPath == "" {
			dbPath = contract.GetAuditDBFilePath()
		}
		if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove audit database file %q: %w", dbPath, err)
		}
		return nil

	case schema.MySQLBackend, schema.PostgreSQLBackend:
		store, err := NewAuditStore(cfg.AuditBackend, cfg.AuditDBConnect)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		impl, ok := store.(*AuditStoreImpl)
		if !ok {
			return fmt.Errorf("unexpected audit store type %T", store)
		}
		for _, table := range []string{eventsTable, sweepRunsTable, snapshotsTable} {
			if err := impl.dropTable(table); err != nil {
				return err
			}
		}
		return nil

	case schema.NoneBackend:
		return nil

	default:
		return fmt.Errorf("unsupported audit backend: %s", cfg.AuditBackend)
	}
}

// dropTable drops one audit table.
func (as *AuditStoreImpl) dropTable(name string) error {
	if err := validateTableName(name); err != nil {
		return err
	}
	query := fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteTableName(name, as.backend))
	if _, err := as.db.Exec(query); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", name, err)
	}
	return nil
}
