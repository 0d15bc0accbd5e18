// audit_backend.go: Storage backends for the audit trail
//
// Two backends are provided: an SQLite database, which supports queries and
// retention cleanup, and an append-only JSON lines file for shipping to log
// collectors. The backend is chosen from the output file extension.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package cmdline

import (
	"bufio"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/agilira/go-errors"
	_ "github.com/mattn/go-sqlite3" // SQLite driver registration
)

// auditBackend is the storage contract of AuditLogger.
type auditBackend interface {
	// Write persists a batch of events.
	Write(events []AuditEvent) error

	// Query returns events matching q, oldest first.
	Query(q AuditQuery) ([]AuditEvent, error)

	// Cleanup deletes events older than before and returns how many went.
	Cleanup(before time.Time) (int64, error)

	// Stats summarizes the stored events.
	Stats() (AuditStats, error)

	Close() error
}

// AuditQuery filters stored events. Zero fields match everything.
type AuditQuery struct {
	Tool    string
	Event   string
	Verdict string
	Since   time.Time
	Limit   int
}

func (q AuditQuery) matches(e AuditEvent) bool {
	if q.Tool != "" && e.Tool != q.Tool {
		return false
	}
	if q.Event != "" && e.Event != q.Event {
		return false
	}
	if q.Verdict != "" && e.Verdict != q.Verdict {
		return false
	}
	if !q.Since.IsZero() && e.Timestamp.Before(q.Since) {
		return false
	}
	return true
}

// AuditStats summarizes an audit store.
type AuditStats struct {
	Backend       string           `json:"backend" yaml:"backend"`
	Path          string           `json:"path" yaml:"path"`
	TotalEvents     int64            `json:"total_events" yaml:"total_events"`
	EventsByType    map[string]int64 `json:"events_by_type" yaml:"events_by_type"`
	EventsByVerdict map[string]int64 `json:"events_by_verdict" yaml:"events_by_verdict"`
	EventsByTool    map[string]int64 `json:"events_by_tool" yaml:"events_by_tool"`
	EventsByLevel   map[string]int64 `json:"events_by_level" yaml:"events_by_level"`
	SizeBytes       int64            `json:"size_bytes" yaml:"size_bytes"`
}

// createAuditBackend picks JSONL for a ".jsonl" OutputFile and SQLite
// otherwise.
func createAuditBackend(config AuditConfig) (auditBackend, error) {
	path := config.OutputFile
	if path == "" {
		path = DefaultAuditPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, errors.Wrap(err, ErrCodeIOError, "failed to create audit directory").
			WithContext("path", path)
	}

	if filepath.Ext(path) == ".jsonl" {
		return newJSONLBackend(path)
	}
	return newSQLiteBackend(path)
}

// QueryAudit opens the audit store at path and returns the events matching q.
func QueryAudit(path string, q AuditQuery) ([]AuditEvent, error) {
	backend, err := createAuditBackend(AuditConfig{OutputFile: path})
	if err != nil {
		return nil, err
	}
	defer func() { _ = backend.Close() }()
	return backend.Query(q)
}

// CleanupAudit removes events older than maxAge from the store at path.
func CleanupAudit(path string, maxAge time.Duration) (int64, error) {
	backend, err := createAuditBackend(AuditConfig{OutputFile: path})
	if err != nil {
		return 0, err
	}
	defer func() { _ = backend.Close() }()
	return backend.Cleanup(time.Now().Add(-maxAge))
}

// AuditStoreStats returns statistics for the store at path.
func AuditStoreStats(path string) (AuditStats, error) {
	backend, err := createAuditBackend(AuditConfig{OutputFile: path})
	if err != nil {
		return AuditStats{}, err
	}
	defer func() { _ = backend.Close() }()
	return backend.Stats()
}

// sqliteAuditBackend stores events in an SQLite table.
type sqliteAuditBackend struct {
	db         *sql.DB
	path       string
	insertStmt *sql.Stmt
	mu         sync.RWMutex
	closed     bool
}

const auditSchema = `
CREATE TABLE IF NOT EXISTS audit_events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	ts_nano INTEGER NOT NULL,
	timestamp TEXT NOT NULL,
	level TEXT NOT NULL,
	event TEXT NOT NULL,
	tool TEXT NOT NULL,
	invocation_id TEXT NOT NULL,
	verdict TEXT,
	flag TEXT,
	code TEXT,
	process_id INTEGER NOT NULL,
	context TEXT,
	checksum TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_audit_ts ON audit_events(ts_nano);
CREATE INDEX IF NOT EXISTS idx_audit_tool_ts ON audit_events(tool, ts_nano);
CREATE INDEX IF NOT EXISTS idx_audit_invocation ON audit_events(invocation_id);`

func newSQLiteBackend(path string) (*sqliteAuditBackend, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL")
	if err != nil {
		return nil, errors.Wrap(err, ErrCodeIOError, "failed to open audit database").
			WithContext("path", path)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, ErrCodeIOError, "failed to ping audit database").
			WithContext("path", path)
	}

	if _, err := db.Exec(auditSchema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, ErrCodeIOError, "failed to initialize audit schema").
			WithContext("path", path)
	}

	stmt, err := db.Prepare(`
	INSERT INTO audit_events (
		ts_nano, timestamp, level, event, tool, invocation_id,
		verdict, flag, code, process_id, context, checksum
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, ErrCodeIOError, "failed to prepare audit insert")
	}

	return &sqliteAuditBackend{db: db, path: path, insertStmt: stmt}, nil
}

func (s *sqliteAuditBackend) Write(events []AuditEvent) (err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return errors.New(ErrCodeIOError, "cannot write to closed SQLite audit backend")
	}
	if len(events) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, ErrCodeIOError, "failed to begin audit transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt := tx.Stmt(s.insertStmt)
	defer func() { _ = stmt.Close() }()

	for _, event := range events {
		contextJSON := ""
		if event.Context != nil {
			data, marshalErr := json.Marshal(event.Context)
			if marshalErr != nil {
				err = errors.Wrap(marshalErr, ErrCodeIOError, "failed to serialize audit context")
				return err
			}
			contextJSON = string(data)
		}

		if _, err = stmt.Exec(
			event.Timestamp.UnixNano(),
			event.Timestamp.Format(time.RFC3339Nano),
			event.Level.String(),
			event.Event,
			event.Tool,
			event.InvocationID,
			event.Verdict,
			event.Flag,
			event.Code,
			event.ProcessID,
			contextJSON,
			event.Checksum,
		); err != nil {
			return errors.Wrap(err, ErrCodeIOError, "failed to insert audit event")
		}
	}

	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, ErrCodeIOError, "failed to commit audit transaction")
	}
	return nil
}

func (s *sqliteAuditBackend) Query(q AuditQuery) ([]AuditEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT timestamp, level, event, tool, invocation_id, verdict, flag, code,
		process_id, context, checksum FROM audit_events WHERE 1=1`
	var args []interface{}
	if q.Tool != "" {
		query += " AND tool = ?"
		args = append(args, q.Tool)
	}
	if q.Event != "" {
		query += " AND event = ?"
		args = append(args, q.Event)
	}
	if q.Verdict != "" {
		query += " AND verdict = ?"
		args = append(args, q.Verdict)
	}
	if !q.Since.IsZero() {
		query += " AND ts_nano >= ?"
		args = append(args, q.Since.UnixNano())
	}
	query += " ORDER BY ts_nano DESC, id DESC"
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(err, ErrCodeIOError, "failed to query audit events")
	}
	defer func() { _ = rows.Close() }()

	var events []AuditEvent
	for rows.Next() {
		var (
			event               AuditEvent
			ts, level           string
			verdict, flag, code sql.NullString
			contextJSON         sql.NullString
		)
		if err := rows.Scan(&ts, &level, &event.Event, &event.Tool, &event.InvocationID,
			&verdict, &flag, &code, &event.ProcessID, &contextJSON, &event.Checksum); err != nil {
			return nil, errors.Wrap(err, ErrCodeIOError, "failed to scan audit event")
		}
		event.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
		event.Level, _ = ParseAuditLevel(level)
		event.Verdict = verdict.String
		event.Flag = flag.String
		event.Code = code.String
		if contextJSON.String != "" {
			_ = json.Unmarshal([]byte(contextJSON.String), &event.Context)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, ErrCodeIOError, "failed to read audit events")
	}
	return events, nil
}

func (s *sqliteAuditBackend) Cleanup(before time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result, err := s.db.Exec("DELETE FROM audit_events WHERE ts_nano < ?", before.UnixNano())
	if err != nil {
		return 0, errors.Wrap(err, ErrCodeIOError, "failed to clean up audit events")
	}
	n, _ := result.RowsAffected()
	_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	return n, nil
}

func (s *sqliteAuditBackend) Stats() (AuditStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := AuditStats{
		Backend:         "sqlite",
		Path:            s.path,
		EventsByType:    make(map[string]int64),
		EventsByVerdict: make(map[string]int64),
		EventsByTool:    make(map[string]int64),
		EventsByLevel:   make(map[string]int64),
	}

	if err := s.db.QueryRow("SELECT COUNT(*) FROM audit_events").Scan(&stats.TotalEvents); err != nil {
		return stats, errors.Wrap(err, ErrCodeIOError, "failed to count audit events")
	}
	if err := s.groupCount("event", stats.EventsByType); err != nil {
		return stats, err
	}
	if err := s.groupCount("verdict", stats.EventsByVerdict); err != nil {
		return stats, err
	}
	if err := s.groupCount("tool", stats.EventsByTool); err != nil {
		return stats, err
	}
	if err := s.groupCount("level", stats.EventsByLevel); err != nil {
		return stats, err
	}
	if info, err := os.Stat(s.path); err == nil {
		stats.SizeBytes = info.Size()
	}
	return stats, nil
}

// groupCount fills dst with per-value counts of column, which must be a
// trusted column name. Empty values are not counted.
func (s *sqliteAuditBackend) groupCount(column string, dst map[string]int64) error {
	rows, err := s.db.Query("SELECT " + column + ", COUNT(*) FROM audit_events WHERE COALESCE(" +
		column + ", '') != '' GROUP BY " + column)
	if err != nil {
		return errors.Wrap(err, ErrCodeIOError, "failed to group audit events").WithContext("column", column)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var key string
		var count int64
		if err := rows.Scan(&key, &count); err != nil {
			return errors.Wrap(err, ErrCodeIOError, "failed to scan audit group")
		}
		dst[key] = count
	}
	return rows.Err()
}

func (s *sqliteAuditBackend) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.insertStmt != nil {
		_ = s.insertStmt.Close()
	}
	return s.db.Close()
}

// jsonlAuditBackend appends one JSON object per line.
type jsonlAuditBackend struct {
	file   *os.File
	path   string
	mu     sync.Mutex
	closed bool
}

func newJSONLBackend(path string) (*jsonlAuditBackend, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, errors.Wrap(err, ErrCodeIOError, "failed to open JSONL audit log").
			WithContext("path", path)
	}
	return &jsonlAuditBackend{file: file, path: path}, nil
}

func (j *jsonlAuditBackend) Write(events []AuditEvent) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return errors.New(ErrCodeIOError, "cannot write to closed JSONL audit backend")
	}

	for _, event := range events {
		data, err := json.Marshal(event)
		if err != nil {
			return errors.Wrap(err, ErrCodeIOError, "failed to serialize audit event")
		}
		data = append(data, '\n')
		if _, err := j.file.Write(data); err != nil {
			return errors.Wrap(err, ErrCodeIOError, "failed to write audit event")
		}
	}
	return j.file.Sync()
}

// readAll decodes every line of the file. Lines that do not decode are
// skipped.
func (j *jsonlAuditBackend) readAll() ([]AuditEvent, error) {
	f, err := os.Open(j.path)
	if err != nil {
		return nil, errors.Wrap(err, ErrCodeIOError, "failed to open JSONL audit log").
			WithContext("path", j.path)
	}
	defer func() { _ = f.Close() }()

	var events []AuditEvent
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var event AuditEvent
		if err := json.Unmarshal(scanner.Bytes(), &event); err != nil {
			continue
		}
		events = append(events, event)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, ErrCodeIOError, "failed to read JSONL audit log")
	}
	return events, nil
}

func (j *jsonlAuditBackend) Query(q AuditQuery) ([]AuditEvent, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	all, err := j.readAll()
	if err != nil {
		return nil, err
	}
	var events []AuditEvent
	for _, e := range all {
		if q.matches(e) {
			events = append(events, e)
		}
	}
	// Newest first; equal timestamps keep the later write first.
	for a, b := 0, len(events)-1; a < b; a, b = a+1, b-1 {
		events[a], events[b] = events[b], events[a]
	}
	sort.SliceStable(events, func(a, b int) bool {
		return events[a].Timestamp.After(events[b].Timestamp)
	})
	if q.Limit > 0 && len(events) > q.Limit {
		events = events[:q.Limit]
	}
	return events, nil
}

// Cleanup rewrites the file without the expired events.
func (j *jsonlAuditBackend) Cleanup(before time.Time) (int64, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	all, err := j.readAll()
	if err != nil {
		return 0, err
	}

	tmp := j.path + ".tmp"
	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return 0, errors.Wrap(err, ErrCodeIOError, "failed to create temporary audit log")
	}

	var removed int64
	enc := json.NewEncoder(out)
	for _, e := range all {
		if e.Timestamp.Before(before) {
			removed++
			continue
		}
		if err := enc.Encode(e); err != nil {
			_ = out.Close()
			_ = os.Remove(tmp)
			return 0, errors.Wrap(err, ErrCodeIOError, "failed to rewrite audit log")
		}
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return 0, errors.Wrap(err, ErrCodeIOError, "failed to rewrite audit log")
	}

	// Swap the append handle onto the rewritten file.
	_ = j.file.Close()
	if err := os.Rename(tmp, j.path); err != nil {
		return 0, errors.Wrap(err, ErrCodeIOError, "failed to replace audit log")
	}
	j.file, err = os.OpenFile(j.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		j.closed = true
		return removed, errors.Wrap(err, ErrCodeIOError, "failed to reopen audit log")
	}
	return removed, nil
}

func (j *jsonlAuditBackend) Stats() (AuditStats, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	stats := AuditStats{
		Backend:         "jsonl",
		Path:            j.path,
		EventsByType:    make(map[string]int64),
		EventsByVerdict: make(map[string]int64),
		EventsByTool:    make(map[string]int64),
		EventsByLevel:   make(map[string]int64),
	}
	all, err := j.readAll()
	if err != nil {
		return stats, err
	}
	for _, e := range all {
		stats.TotalEvents++
		stats.EventsByType[e.Event]++
		if e.Verdict != "" {
			stats.EventsByVerdict[e.Verdict]++
		}
		stats.EventsByTool[e.Tool]++
		stats.EventsByLevel[e.Level.String()]++
	}
	if info, err := os.Stat(j.path); err == nil {
		stats.SizeBytes = info.Size()
	}
	return stats, nil
}

func (j *jsonlAuditBackend) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return nil
	}
	j.closed = true
	return j.file.Close()
}
