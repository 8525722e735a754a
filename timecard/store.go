/*
store.go - Persistence interface for headers, daily entries and audit entries

PURPOSE:
  Defines the interface between the engine and the database. The engine
  never talks SQL; implementations can use SQLite or in-memory storage.

KEY INTERFACES:
  Store:          Header, daily entry and audit log persistence
  TxStore:        Transactional all-or-nothing batches
  ConfigProvider: Project pay configuration

APPEND-ONLY AUDIT LOG:
  AppendAudit is the only audit write. There is no Update or Delete for
  audit entries, ever.

ATOMIC BATCHES:
  Every mutating engine operation runs inside WithTx. Entries, header
  totals and audit rows are written through the transactional view and are
  committed together or rolled back together.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite
  - timecard/store/memory.go: In-memory for testing
*/
package timecard

import (
	"context"
	"time"
)

// =============================================================================
// STORE
// =============================================================================

// Store handles persistence of timecards.
type Store interface {
	// CreateHeader inserts a new header.
	CreateHeader(ctx context.Context, h Header) error

	// GetHeader returns the header or ErrNotFound.
	GetHeader(ctx context.Context, id HeaderID) (*Header, error)

	// SaveHeader overwrites an existing header.
	SaveHeader(ctx context.Context, h Header) error

	// ListEntries returns every daily entry of a header ordered by work date.
	ListEntries(ctx context.Context, id HeaderID) ([]DailyEntry, error)

	// SaveEntries upserts entries keyed by (header, work date).
	// Inserting a second entry for the same key under a new ID is ErrDuplicateDay.
	SaveEntries(ctx context.Context, entries []DailyEntry) error

	// AppendAudit persists audit entries. Append-only.
	AppendAudit(ctx context.Context, entries []AuditLogEntry) error

	// ListAudit returns audit entries matching the filter in commit order.
	ListAudit(ctx context.Context, filter AuditFilter) ([]AuditLogEntry, error)
}

// TxStore wraps Store with transaction support.
type TxStore interface {
	Store

	// WithTx executes fn within a transaction.
	// If fn returns error, transaction is rolled back.
	// If fn returns nil, transaction is committed.
	WithTx(ctx context.Context, fn func(Store) error) error
}

// AuditFilter narrows ListAudit. Zero fields match everything.
type AuditFilter struct {
	HeaderID  *HeaderID
	ChangeID  *ChangeID
	ChangedBy *ActorID
	Actions   []ActionType
	From      *time.Time
	To        *time.Time
}

// Matches reports whether e passes the filter.
func (f AuditFilter) Matches(e AuditLogEntry) bool {
	if f.HeaderID != nil && e.HeaderID != *f.HeaderID {
		return false
	}
	if f.ChangeID != nil && e.ChangeID != *f.ChangeID {
		return false
	}
	if f.ChangedBy != nil && e.ChangedBy != *f.ChangedBy {
		return false
	}
	if len(f.Actions) > 0 {
		found := false
		for _, a := range f.Actions {
			if a == e.ActionType {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.From != nil && e.ChangedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && e.ChangedAt.After(*f.To) {
		return false
	}
	return true
}

// =============================================================================
// CONFIGURATION COLLABORATOR
// =============================================================================

// ConfigProvider supplies the pay configuration of a project.
type ConfigProvider interface {
	PayConfig(ctx context.Context, project ProjectID) (PayConfig, error)
}
