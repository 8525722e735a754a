// Package store provides Store implementations.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/warp/timecard-engine/timecard"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu      sync.RWMutex
	headers map[timecard.HeaderID]timecard.Header
	entries map[timecard.HeaderID][]timecard.DailyEntry
	audit   []timecard.AuditLogEntry
}

func NewMemory() *Memory {
	return &Memory{
		headers: make(map[timecard.HeaderID]timecard.Header),
		entries: make(map[timecard.HeaderID][]timecard.DailyEntry),
	}
}

func (m *Memory) CreateHeader(_ context.Context, h timecard.Header) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createHeaderLocked(h)
}

func (m *Memory) GetHeader(_ context.Context, id timecard.HeaderID) (*timecard.Header, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getHeaderLocked(id)
}

func (m *Memory) SaveHeader(_ context.Context, h timecard.Header) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveHeaderLocked(h)
}

func (m *Memory) ListEntries(_ context.Context, id timecard.HeaderID) ([]timecard.DailyEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listEntriesLocked(id), nil
}

// SaveEntries upserts all entries or none.
func (m *Memory) SaveEntries(_ context.Context, entries []timecard.DailyEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := m.snapshot()
	if err := m.saveEntriesLocked(entries); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

// AppendAudit adds entries to the log. Append-only.
func (m *Memory) AppendAudit(_ context.Context, entries []timecard.AuditLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audit = append(m.audit, entries...)
	return nil
}

func (m *Memory) ListAudit(_ context.Context, filter timecard.AuditFilter) ([]timecard.AuditLogEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listAuditLocked(filter), nil
}

func (m *Memory) createHeaderLocked(h timecard.Header) error {
	if _, exists := m.headers[h.ID]; exists {
		return fmt.Errorf("header %s already exists", h.ID)
	}
	m.headers[h.ID] = h
	return nil
}

func (m *Memory) getHeaderLocked(id timecard.HeaderID) (*timecard.Header, error) {
	h, ok := m.headers[id]
	if !ok {
		return nil, timecard.ErrNotFound
	}
	return &h, nil
}

func (m *Memory) saveHeaderLocked(h timecard.Header) error {
	if _, ok := m.headers[h.ID]; !ok {
		return timecard.ErrNotFound
	}
	m.headers[h.ID] = h
	return nil
}

func (m *Memory) listEntriesLocked(id timecard.HeaderID) []timecard.DailyEntry {
	result := make([]timecard.DailyEntry, len(m.entries[id]))
	copy(result, m.entries[id])
	return result
}

func (m *Memory) saveEntriesLocked(entries []timecard.DailyEntry) error {
	for _, e := range entries {
		if _, ok := m.headers[e.HeaderID]; !ok {
			return timecard.ErrNotFound
		}
		list := m.entries[e.HeaderID]

		// Binary search on work date; entries stay sorted.
		i := sort.Search(len(list), func(i int) bool {
			return !list[i].WorkDate.Before(e.WorkDate)
		})
		if i < len(list) && list[i].WorkDate.Equal(e.WorkDate) {
			if list[i].ID != e.ID {
				return timecard.DuplicateDayError(e.WorkDate)
			}
			list[i] = e
			continue
		}
		list = append(list, timecard.DailyEntry{})
		copy(list[i+1:], list[i:])
		list[i] = e
		m.entries[e.HeaderID] = list
	}
	return nil
}

func (m *Memory) listAuditLocked(filter timecard.AuditFilter) []timecard.AuditLogEntry {
	var result []timecard.AuditLogEntry
	for _, e := range m.audit {
		if filter.Matches(e) {
			result = append(result, e)
		}
	}
	return result
}

// =============================================================================
// TRANSACTIONAL MEMORY STORE
// =============================================================================

// TxMemory wraps Memory with transaction support.
type TxMemory struct {
	*Memory
}

func NewTxMemory() *TxMemory {
	return &TxMemory{Memory: NewMemory()}
}

// WithTx executes fn within a transaction.
// For memory store, this is simulated with a snapshot + rollback on error.
func (tm *TxMemory) WithTx(ctx context.Context, fn func(timecard.Store) error) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	snapshot := tm.snapshot()
	if err := fn(&txMemoryView{parent: tm.Memory}); err != nil {
		tm.restore(snapshot)
		return err
	}
	return nil
}

type memorySnapshot struct {
	headers map[timecard.HeaderID]timecard.Header
	entries map[timecard.HeaderID][]timecard.DailyEntry
	audit   []timecard.AuditLogEntry
}

func (m *Memory) snapshot() memorySnapshot {
	headers := make(map[timecard.HeaderID]timecard.Header, len(m.headers))
	for k, v := range m.headers {
		headers[k] = v
	}
	entries := make(map[timecard.HeaderID][]timecard.DailyEntry, len(m.entries))
	for k, v := range m.entries {
		entries[k] = append([]timecard.DailyEntry{}, v...)
	}
	return memorySnapshot{
		headers: headers,
		entries: entries,
		audit:   append([]timecard.AuditLogEntry{}, m.audit...),
	}
}

func (m *Memory) restore(s memorySnapshot) {
	m.headers = s.headers
	m.entries = s.entries
	m.audit = s.audit
}

// txMemoryView is the Store handed to WithTx callbacks. The parent lock is
// already held.
type txMemoryView struct {
	parent *Memory
}

func (tv *txMemoryView) CreateHeader(_ context.Context, h timecard.Header) error {
	return tv.parent.createHeaderLocked(h)
}

func (tv *txMemoryView) GetHeader(_ context.Context, id timecard.HeaderID) (*timecard.Header, error) {
	return tv.parent.getHeaderLocked(id)
}

func (tv *txMemoryView) SaveHeader(_ context.Context, h timecard.Header) error {
	return tv.parent.saveHeaderLocked(h)
}

func (tv *txMemoryView) ListEntries(_ context.Context, id timecard.HeaderID) ([]timecard.DailyEntry, error) {
	return tv.parent.listEntriesLocked(id), nil
}

func (tv *txMemoryView) SaveEntries(_ context.Context, entries []timecard.DailyEntry) error {
	return tv.parent.saveEntriesLocked(entries)
}

func (tv *txMemoryView) AppendAudit(_ context.Context, entries []timecard.AuditLogEntry) error {
	tv.parent.audit = append(tv.parent.audit, entries...)
	return nil
}

func (tv *txMemoryView) ListAudit(_ context.Context, filter timecard.AuditFilter) ([]timecard.AuditLogEntry, error) {
	return tv.parent.listAuditLocked(filter), nil
}

// Seed inserts entries as-is, bypassing the one-entry-per-day check.
// Tests use it to reproduce corrupted data.
func (m *Memory) Seed(entries ...timecard.DailyEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entries {
		m.entries[e.HeaderID] = append(m.entries[e.HeaderID], e)
	}
}
