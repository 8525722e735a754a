/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements timecard.Store and timecard.TxStore using SQLite, plus the
  project configuration table read by factory.ProjectConfigProvider. In
  production, the same patterns apply to PostgreSQL - only minor SQL
  dialect differences.

INTERFACES IMPLEMENTED:
  timecard.Store:   Header, daily entry and audit log persistence
  timecard.TxStore: All-or-nothing edit batches

APPEND-ONLY ENFORCEMENT:
  The audit_log table is append-only:
  - No UPDATE or DELETE statements are issued against it
  - Triggers abort any UPDATE or DELETE that reaches it anyway

KEY TABLES:
  timecard_headers: One row per worker pay period (totals are a projection)
  daily_entries:    One row per (header, work date), source of truth
  audit_log:        Immutable field-level change history
  projects:         Project pay configuration as JSON

INDEXES:
  - UNIQUE(header_id, work_date): Enforces one entry per day
  - idx_audit_header: Audit trail reads (hot path)
  - idx_audit_change: Grouping by change_id

NUMERICS:
  Decimals (hours, pay, rates) are stored as TEXT and parsed back with
  shopspring/decimal so no value ever passes through float64.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. WithTx holds the write lock for the
  whole callback; the transactional view reads and writes through the
  *sql.Tx only.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/timecards.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  engine := timecard.NewEngine(store)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - timecard/store.go: Interface definitions
  - timecard/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/timecard-engine/timecard"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// An in-memory database lives and dies with its connection.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Headers (one pay period for one worker on one project)
	CREATE TABLE IF NOT EXISTS timecard_headers (
		id TEXT PRIMARY KEY,
		worker_id TEXT NOT NULL,
		project_id TEXT NOT NULL,
		period_start TEXT NOT NULL,
		period_end TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'draft',
		pay_rate TEXT NOT NULL,
		time_type TEXT NOT NULL,
		total_hours TEXT NOT NULL DEFAULT '0',
		total_break_duration TEXT NOT NULL DEFAULT '0',
		total_pay TEXT NOT NULL DEFAULT '0',
		admin_notes TEXT,
		submitted_at TEXT,
		approved_at TEXT,
		approved_by TEXT,
		rejection_reason TEXT,
		admin_edited BOOLEAN DEFAULT FALSE,
		last_edited_by TEXT,
		edit_type TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_headers_worker
		ON timecard_headers(worker_id, period_start);
	CREATE INDEX IF NOT EXISTS idx_headers_status
		ON timecard_headers(status);

	-- Daily entries (source of truth for totals)
	CREATE TABLE IF NOT EXISTS daily_entries (
		id TEXT PRIMARY KEY,
		header_id TEXT NOT NULL REFERENCES timecard_headers(id),
		work_date TEXT NOT NULL,
		check_in TEXT,
		break_start TEXT,
		break_end TEXT,
		check_out TEXT,
		hours_worked TEXT NOT NULL DEFAULT '0',
		break_duration TEXT NOT NULL DEFAULT '0',
		daily_pay TEXT NOT NULL DEFAULT '0',
		notes TEXT,
		location TEXT,
		updated_at TEXT NOT NULL,
		UNIQUE(header_id, work_date)
	);

	-- Audit log (append-only)
	CREATE TABLE IF NOT EXISTS audit_log (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		header_id TEXT NOT NULL REFERENCES timecard_headers(id),
		change_id TEXT NOT NULL,
		field TEXT NOT NULL,
		old_value TEXT,
		new_value TEXT,
		changed_by TEXT NOT NULL,
		changed_at TEXT NOT NULL,
		action_type TEXT NOT NULL,
		work_date TEXT,
		reason TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_audit_header
		ON audit_log(header_id, seq);
	CREATE INDEX IF NOT EXISTS idx_audit_change
		ON audit_log(change_id);

	CREATE TRIGGER IF NOT EXISTS audit_log_no_update
		BEFORE UPDATE ON audit_log
		BEGIN SELECT RAISE(ABORT, 'audit_log is append-only'); END;
	CREATE TRIGGER IF NOT EXISTS audit_log_no_delete
		BEFORE DELETE ON audit_log
		BEGIN SELECT RAISE(ABORT, 'audit_log is append-only'); END;

	-- Projects (pay configuration)
	CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		config_json TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// HEADERS
// =============================================================================

const headerColumns = `id, worker_id, project_id, period_start, period_end, status,
	pay_rate, time_type, total_hours, total_break_duration, total_pay, admin_notes,
	submitted_at, approved_at, approved_by, rejection_reason, admin_edited,
	last_edited_by, edit_type, created_at, updated_at`

func (s *Store) CreateHeader(ctx context.Context, h timecard.Header) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return createHeader(ctx, s.db, h)
}

func (s *Store) GetHeader(ctx context.Context, id timecard.HeaderID) (*timecard.Header, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getHeader(ctx, s.db, id)
}

func (s *Store) SaveHeader(ctx context.Context, h timecard.Header) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveHeader(ctx, s.db, h)
}

// ListHeaderIDs returns the IDs of every header in one of the given
// statuses, oldest period first. No statuses means all headers.
func (s *Store) ListHeaderIDs(ctx context.Context, statuses ...timecard.Status) ([]timecard.HeaderID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id FROM timecard_headers`
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		marks := make([]string, len(statuses))
		for i, st := range statuses {
			marks[i] = "?"
			args = append(args, st)
		}
		query += ` WHERE status IN (` + strings.Join(marks, ", ") + `)`
	}
	query += ` ORDER BY period_start ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list headers: %w", err)
	}
	defer rows.Close()

	var ids []timecard.HeaderID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, timecard.HeaderID(id))
	}
	return ids, rows.Err()
}

func createHeader(ctx context.Context, db dbtx, h timecard.Header) error {
	query := `INSERT INTO timecard_headers (` + headerColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, query,
		h.ID, h.WorkerID, h.ProjectID,
		h.Period.Start.String(), h.Period.End.String(),
		h.Status, h.PayRate.String(), h.TimeType,
		h.Totals.TotalHours.String(), h.Totals.TotalBreakDuration.String(), h.Totals.TotalPay.String(),
		nullString(h.AdminNotes),
		nullTime(h.SubmittedAt), nullTime(h.ApprovedAt), nullActor(h.ApprovedBy),
		nullStringPtr(h.RejectionReason), h.AdminEdited,
		nullActor(h.LastEditedBy), nullString(h.EditType),
		formatTime(h.CreatedAt), formatTime(h.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert header: %w", err)
	}
	return nil
}

func getHeader(ctx context.Context, db dbtx, id timecard.HeaderID) (*timecard.Header, error) {
	row := db.QueryRowContext(ctx, `SELECT `+headerColumns+` FROM timecard_headers WHERE id = ?`, id)
	h, err := scanHeader(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, timecard.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return h, nil
}

func saveHeader(ctx context.Context, db dbtx, h timecard.Header) error {
	query := `
		UPDATE timecard_headers SET
			status = ?, pay_rate = ?, time_type = ?,
			total_hours = ?, total_break_duration = ?, total_pay = ?,
			admin_notes = ?, submitted_at = ?, approved_at = ?, approved_by = ?,
			rejection_reason = ?, admin_edited = ?, last_edited_by = ?, edit_type = ?,
			updated_at = ?
		WHERE id = ?
	`
	res, err := db.ExecContext(ctx, query,
		h.Status, h.PayRate.String(), h.TimeType,
		h.Totals.TotalHours.String(), h.Totals.TotalBreakDuration.String(), h.Totals.TotalPay.String(),
		nullString(h.AdminNotes), nullTime(h.SubmittedAt), nullTime(h.ApprovedAt), nullActor(h.ApprovedBy),
		nullStringPtr(h.RejectionReason), h.AdminEdited, nullActor(h.LastEditedBy), nullString(h.EditType),
		formatTime(h.UpdatedAt),
		h.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update header: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return timecard.ErrNotFound
	}
	return nil
}

func scanHeader(row *sql.Row) (*timecard.Header, error) {
	var (
		h                                         timecard.Header
		periodStart, periodEnd                    string
		payRate, totalHours, totalBreak, totalPay string
		adminNotes, approvedBy, rejectionReason   sql.NullString
		submittedAt, approvedAt                   sql.NullString
		lastEditedBy, editType                    sql.NullString
		createdAt, updatedAt                      string
	)
	err := row.Scan(
		&h.ID, &h.WorkerID, &h.ProjectID, &periodStart, &periodEnd, &h.Status,
		&payRate, &h.TimeType, &totalHours, &totalBreak, &totalPay, &adminNotes,
		&submittedAt, &approvedAt, &approvedBy, &rejectionReason, &h.AdminEdited,
		&lastEditedBy, &editType, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	start, err := timecard.ParseDate(periodStart)
	if err != nil {
		return nil, err
	}
	end, err := timecard.ParseDate(periodEnd)
	if err != nil {
		return nil, err
	}
	h.Period = timecard.Period{Start: start, End: end}

	if h.PayRate, err = decimal.NewFromString(payRate); err != nil {
		return nil, fmt.Errorf("failed to parse pay rate: %w", err)
	}
	if h.Totals, err = parseTotals(totalHours, totalBreak, totalPay); err != nil {
		return nil, err
	}

	h.AdminNotes = adminNotes.String
	if h.SubmittedAt, err = parseNullTime("submitted_at", submittedAt); err != nil {
		return nil, err
	}
	if h.ApprovedAt, err = parseNullTime("approved_at", approvedAt); err != nil {
		return nil, err
	}
	h.ApprovedBy = parseNullActor(approvedBy)
	if rejectionReason.Valid {
		r := rejectionReason.String
		h.RejectionReason = &r
	}
	h.LastEditedBy = parseNullActor(lastEditedBy)
	h.EditType = editType.String
	if h.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return nil, err
	}
	if h.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return nil, err
	}
	return &h, nil
}

func parseTotals(hours, breaks, pay string) (timecard.AggregateTotals, error) {
	var (
		t   timecard.AggregateTotals
		err error
	)
	if t.TotalHours, err = decimal.NewFromString(hours); err != nil {
		return t, fmt.Errorf("failed to parse total hours: %w", err)
	}
	if t.TotalBreakDuration, err = decimal.NewFromString(breaks); err != nil {
		return t, fmt.Errorf("failed to parse total break: %w", err)
	}
	if t.TotalPay, err = decimal.NewFromString(pay); err != nil {
		return t, fmt.Errorf("failed to parse total pay: %w", err)
	}
	return t, nil
}

// =============================================================================
// DAILY ENTRIES
// =============================================================================

const entryColumns = `id, header_id, work_date, check_in, break_start, break_end, check_out,
	hours_worked, break_duration, daily_pay, notes, location, updated_at`

func (s *Store) ListEntries(ctx context.Context, id timecard.HeaderID) ([]timecard.DailyEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listEntries(ctx, s.db, id)
}

// SaveEntries upserts entries atomically.
func (s *Store) SaveEntries(ctx context.Context, entries []timecard.DailyEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := saveEntries(ctx, sqlTx, entries); err != nil {
		return err
	}
	return sqlTx.Commit()
}

func listEntries(ctx context.Context, db dbtx, id timecard.HeaderID) ([]timecard.DailyEntry, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM daily_entries WHERE header_id = ? ORDER BY work_date ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []timecard.DailyEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func saveEntries(ctx context.Context, db dbtx, entries []timecard.DailyEntry) error {
	query := `
		INSERT INTO daily_entries (` + entryColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			check_in = excluded.check_in,
			break_start = excluded.break_start,
			break_end = excluded.break_end,
			check_out = excluded.check_out,
			hours_worked = excluded.hours_worked,
			break_duration = excluded.break_duration,
			daily_pay = excluded.daily_pay,
			notes = excluded.notes,
			location = excluded.location,
			updated_at = excluded.updated_at
	`
	for _, e := range entries {
		_, err := db.ExecContext(ctx, query,
			e.ID, e.HeaderID, e.WorkDate.String(),
			nullClock(e.CheckIn), nullClock(e.BreakStart), nullClock(e.BreakEnd), nullClock(e.CheckOut),
			e.HoursWorked.String(), e.BreakDuration.String(), e.DailyPay.String(),
			nullString(e.Notes), nullString(e.Location),
			formatTime(e.UpdatedAt),
		)
		if err != nil {
			if isUniqueConstraintError(err) {
				return timecard.DuplicateDayError(e.WorkDate)
			}
			if isForeignKeyError(err) {
				return timecard.ErrNotFound
			}
			return fmt.Errorf("failed to save entry: %w", err)
		}
	}
	return nil
}

func scanEntry(rows *sql.Rows) (timecard.DailyEntry, error) {
	var (
		e                                       timecard.DailyEntry
		workDate                                string
		checkIn, breakStart, breakEnd, checkOut sql.NullString
		hours, breaks, pay                      string
		notes, location                         sql.NullString
		updatedAt                               string
	)
	err := rows.Scan(
		&e.ID, &e.HeaderID, &workDate,
		&checkIn, &breakStart, &breakEnd, &checkOut,
		&hours, &breaks, &pay, &notes, &location, &updatedAt,
	)
	if err != nil {
		return e, fmt.Errorf("failed to scan entry: %w", err)
	}

	if e.WorkDate, err = timecard.ParseDate(workDate); err != nil {
		return e, err
	}
	for _, p := range []struct {
		dst **timecard.ClockTime
		src sql.NullString
	}{
		{&e.CheckIn, checkIn}, {&e.BreakStart, breakStart}, {&e.BreakEnd, breakEnd}, {&e.CheckOut, checkOut},
	} {
		if *p.dst, err = parseNullClock(p.src); err != nil {
			return e, err
		}
	}
	if e.HoursWorked, err = decimal.NewFromString(hours); err != nil {
		return e, fmt.Errorf("failed to parse hours worked: %w", err)
	}
	if e.BreakDuration, err = decimal.NewFromString(breaks); err != nil {
		return e, fmt.Errorf("failed to parse break duration: %w", err)
	}
	if e.DailyPay, err = decimal.NewFromString(pay); err != nil {
		return e, fmt.Errorf("failed to parse daily pay: %w", err)
	}
	e.Notes = notes.String
	e.Location = location.String
	if e.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return e, err
	}
	return e, nil
}

// =============================================================================
// AUDIT LOG (append-only)
// =============================================================================

const auditColumns = `id, header_id, change_id, field, old_value, new_value,
	changed_by, changed_at, action_type, work_date, reason`

// AppendAudit adds audit entries atomically.
func (s *Store) AppendAudit(ctx context.Context, entries []timecard.AuditLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := appendAudit(ctx, sqlTx, entries); err != nil {
		return err
	}
	return sqlTx.Commit()
}

func (s *Store) ListAudit(ctx context.Context, filter timecard.AuditFilter) ([]timecard.AuditLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listAudit(ctx, s.db, filter)
}

func appendAudit(ctx context.Context, db dbtx, entries []timecard.AuditLogEntry) error {
	query := `INSERT INTO audit_log (` + auditColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for _, e := range entries {
		var workDate sql.NullString
		if e.WorkDate != nil {
			workDate = sql.NullString{String: e.WorkDate.String(), Valid: true}
		}
		_, err := db.ExecContext(ctx, query,
			e.ID, e.HeaderID, e.ChangeID, e.Field,
			nullStringPtr(e.OldValue), nullStringPtr(e.NewValue),
			e.ChangedBy, formatTime(e.ChangedAt), e.ActionType,
			workDate, nullString(e.Reason),
		)
		if err != nil {
			return fmt.Errorf("failed to append audit entry: %w", err)
		}
	}
	return nil
}

func listAudit(ctx context.Context, db dbtx, filter timecard.AuditFilter) ([]timecard.AuditLogEntry, error) {
	var (
		where []string
		args  []any
	)
	if filter.HeaderID != nil {
		where = append(where, "header_id = ?")
		args = append(args, *filter.HeaderID)
	}
	if filter.ChangeID != nil {
		where = append(where, "change_id = ?")
		args = append(args, *filter.ChangeID)
	}
	if filter.ChangedBy != nil {
		where = append(where, "changed_by = ?")
		args = append(args, *filter.ChangedBy)
	}
	if len(filter.Actions) > 0 {
		marks := make([]string, len(filter.Actions))
		for i, a := range filter.Actions {
			marks[i] = "?"
			args = append(args, a)
		}
		where = append(where, "action_type IN ("+strings.Join(marks, ", ")+")")
	}

	query := `SELECT ` + auditColumns + ` FROM audit_log`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY seq ASC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer rows.Close()

	var entries []timecard.AuditLogEntry
	for rows.Next() {
		e, err := scanAudit(rows)
		if err != nil {
			return nil, err
		}
		// Time bounds are compared on parsed instants, not on stored text.
		if filter.Matches(e) {
			entries = append(entries, e)
		}
	}
	return entries, rows.Err()
}

func scanAudit(rows *sql.Rows) (timecard.AuditLogEntry, error) {
	var (
		e                  timecard.AuditLogEntry
		oldValue, newValue sql.NullString
		changedAt          string
		workDate, reason   sql.NullString
	)
	err := rows.Scan(
		&e.ID, &e.HeaderID, &e.ChangeID, &e.Field, &oldValue, &newValue,
		&e.ChangedBy, &changedAt, &e.ActionType, &workDate, &reason,
	)
	if err != nil {
		return e, fmt.Errorf("failed to scan audit entry: %w", err)
	}
	if oldValue.Valid {
		v := oldValue.String
		e.OldValue = &v
	}
	if newValue.Valid {
		v := newValue.String
		e.NewValue = &v
	}
	if e.ChangedAt, err = parseTime("changed_at", changedAt); err != nil {
		return e, err
	}
	if workDate.Valid {
		d, err := timecard.ParseDate(workDate.String)
		if err != nil {
			return e, err
		}
		e.WorkDate = &d
	}
	e.Reason = reason.String
	return e, nil
}

// =============================================================================
// TRANSACTIONAL STORE (timecard.TxStore interface)
// =============================================================================

// WithTx executes a function within a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(store timecard.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{tx: sqlTx}); err != nil {
		return err
	}

	return sqlTx.Commit()
}

// txStore routes every call through the open transaction. It never touches
// the parent's mutex, which WithTx already holds.
type txStore struct {
	tx *sql.Tx
}

func (ts *txStore) CreateHeader(ctx context.Context, h timecard.Header) error {
	return createHeader(ctx, ts.tx, h)
}

func (ts *txStore) GetHeader(ctx context.Context, id timecard.HeaderID) (*timecard.Header, error) {
	return getHeader(ctx, ts.tx, id)
}

func (ts *txStore) SaveHeader(ctx context.Context, h timecard.Header) error {
	return saveHeader(ctx, ts.tx, h)
}

func (ts *txStore) ListEntries(ctx context.Context, id timecard.HeaderID) ([]timecard.DailyEntry, error) {
	return listEntries(ctx, ts.tx, id)
}

func (ts *txStore) SaveEntries(ctx context.Context, entries []timecard.DailyEntry) error {
	return saveEntries(ctx, ts.tx, entries)
}

func (ts *txStore) AppendAudit(ctx context.Context, entries []timecard.AuditLogEntry) error {
	return appendAudit(ctx, ts.tx, entries)
}

func (ts *txStore) ListAudit(ctx context.Context, filter timecard.AuditFilter) ([]timecard.AuditLogEntry, error) {
	return listAudit(ctx, ts.tx, filter)
}

// =============================================================================
// PROJECT CONFIGURATION
// =============================================================================

// SaveProjectConfig stores the raw JSON pay configuration of a project.
func (s *Store) SaveProjectConfig(ctx context.Context, id timecard.ProjectID, configJSON string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := formatTime(time.Now().UTC())
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (id, config_json, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET config_json = excluded.config_json, updated_at = excluded.updated_at
	`, id, configJSON, now, now)
	if err != nil {
		return fmt.Errorf("failed to save project config: %w", err)
	}
	return nil
}

// ProjectConfigJSON returns the stored configuration of a project.
// found is false when the project has none.
func (s *Store) ProjectConfigJSON(ctx context.Context, id timecard.ProjectID) (configJSON string, found bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	err = s.db.QueryRowContext(ctx, "SELECT config_json FROM projects WHERE id = ?", id).Scan(&configJSON)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return configJSON, true, nil
}

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullStringPtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullActor(a *timecard.ActorID) sql.NullString {
	if a == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*a), Valid: true}
}

func parseNullActor(ns sql.NullString) *timecard.ActorID {
	if !ns.Valid {
		return nil
	}
	a := timecard.ActorID(ns.String)
	return &a
}

func nullClock(c *timecard.ClockTime) sql.NullString {
	if c == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: c.String(), Valid: true}
}

func parseNullClock(ns sql.NullString) (*timecard.ClockTime, error) {
	if !ns.Valid {
		return nil, nil
	}
	c, err := timecard.ParseClockTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseTime(column, s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s: %w", column, err)
	}
	return t, nil
}

func parseNullTime(column string, ns sql.NullString) (*time.Time, error) {
	if !ns.Valid {
		return nil, nil
	}
	t, err := parseTime(column, ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func isUniqueConstraintError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key"))
}

func isForeignKeyError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
