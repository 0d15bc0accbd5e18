// audit.go: Audit trail for tool invocations
//
// Every validated invocation and every failed value extraction can be
// recorded, so that scripted pipelines leave a queryable history of which
// tool ran with which arguments and why it was rejected.
//
// Events are buffered in memory, stamped with a cached timestamp and a
// SHA-256 checksum, and written in batches to a pluggable backend.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package cmdline

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/agilira/go-errors"
	"github.com/agilira/go-timecache"
	"github.com/google/uuid"
)

// AuditLevel represents the severity of audit events
type AuditLevel int

const (
	AuditInfo AuditLevel = iota
	AuditWarn
	AuditCritical
)

func (al AuditLevel) String() string {
	switch al {
	case AuditInfo:
		return "INFO"
	case AuditWarn:
		return "WARN"
	case AuditCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// ParseAuditLevel maps a level name (any case) to an AuditLevel.
func ParseAuditLevel(s string) (AuditLevel, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "INFO":
		return AuditInfo, nil
	case "WARN", "WARNING":
		return AuditWarn, nil
	case "CRITICAL":
		return AuditCritical, nil
	default:
		return AuditInfo, errors.New(ErrCodeInvalidAuditConfig, "unknown audit level: "+s)
	}
}

// Audit event names.
const (
	EventValidationVerdict = "validation_verdict"
	EventExtractionFailed  = "extraction_failed"
)

// AuditEvent is one recorded event.
type AuditEvent struct {
	Timestamp    time.Time              `json:"timestamp"`
	Level        AuditLevel             `json:"level"`
	Event        string                 `json:"event"`
	Tool         string                 `json:"tool"`
	InvocationID string                 `json:"invocation_id"`
	Verdict      string                 `json:"verdict,omitempty"`
	Flag         string                 `json:"flag,omitempty"`
	Code         string                 `json:"code,omitempty"`
	ProcessID    int                    `json:"process_id"`
	Context      map[string]interface{} `json:"context,omitempty"`
	Checksum     string                 `json:"checksum"`
}

// AuditConfig configures the audit trail.
type AuditConfig struct {
	Enabled bool `json:"enabled"`

	// OutputFile selects the backend: a ".jsonl" path writes JSON lines,
	// anything else is an SQLite database. Empty means DefaultAuditPath.
	OutputFile string `json:"output_file"`

	MinLevel      AuditLevel    `json:"min_level"`
	BufferSize    int           `json:"buffer_size"`
	FlushInterval time.Duration `json:"flush_interval"`
}

// DefaultAuditPath is the SQLite database used when no OutputFile is set.
func DefaultAuditPath() string {
	return filepath.Join(os.TempDir(), "itktools", "audit.db")
}

// DefaultAuditConfig returns an enabled configuration writing to
// DefaultAuditPath.
func DefaultAuditConfig() AuditConfig {
	return AuditConfig{
		Enabled:       true,
		MinLevel:      AuditInfo,
		BufferSize:    100,
		FlushInterval: 0,
	}
}

// Auditor receives parser events. AuditLogger is the stock implementation.
type Auditor interface {
	LogValidation(program string, report RequirementReport)
	LogExtractionFailure(program, key string, err error)
}

// AuditLogger buffers audit events and writes them to a backend.
// All events logged through one AuditLogger share an invocation id.
type AuditLogger struct {
	config       AuditConfig
	backend      auditBackend
	buffer       []AuditEvent
	bufferMu     sync.Mutex
	flushTicker  *time.Ticker
	stopCh       chan struct{}
	closeOnce    sync.Once
	processID    int
	invocationID string
}

// NewAuditLogger opens the backend selected by config.OutputFile.
func NewAuditLogger(config AuditConfig) (*AuditLogger, error) {
	if config.BufferSize <= 0 {
		config.BufferSize = 100
	}

	backend, err := createAuditBackend(config)
	if err != nil {
		return nil, err
	}

	logger := &AuditLogger{
		config:       config,
		backend:      backend,
		buffer:       make([]AuditEvent, 0, config.BufferSize),
		stopCh:       make(chan struct{}),
		processID:    os.Getpid(),
		invocationID: uuid.NewString(),
	}

	if config.FlushInterval > 0 {
		logger.flushTicker = time.NewTicker(config.FlushInterval)
		go logger.flushLoop()
	}

	return logger, nil
}

// InvocationID returns the id attached to every event of this logger.
func (al *AuditLogger) InvocationID() string { return al.invocationID }

// Log records an event.
func (al *AuditLogger) Log(event AuditEvent) {
	if al == nil || al.backend == nil || !al.config.Enabled || event.Level < al.config.MinLevel {
		return
	}

	event.Timestamp = timecache.CachedTime()
	event.InvocationID = al.invocationID
	event.ProcessID = al.processID
	event.Checksum = generateChecksum(event)

	al.bufferMu.Lock()
	al.buffer = append(al.buffer, event)
	if len(al.buffer) >= al.config.BufferSize {
		_ = al.flushBufferUnsafe() // retried on the next flush
	}
	al.bufferMu.Unlock()
}

// LogValidation records the verdict of CheckForRequiredArguments. Failed
// verdicts are logged at WARN with one entry per violated flag set.
func (al *AuditLogger) LogValidation(program string, report RequirementReport) {
	level := AuditInfo
	if report.Verdict == VerdictFailed {
		level = AuditWarn
	}

	var context map[string]interface{}
	if len(report.Violations) > 0 {
		violations := make([]string, 0, len(report.Violations))
		for _, v := range report.Violations {
			violations = append(violations, v.Code+":"+strings.Join(v.Flags, ","))
		}
		context = map[string]interface{}{"violations": violations}
	}

	al.Log(AuditEvent{
		Level:   level,
		Event:   EventValidationVerdict,
		Tool:    toolName(program),
		Verdict: report.Verdict.String(),
		Context: context,
	})
}

// LogExtractionFailure records a flag whose values could not be read.
func (al *AuditLogger) LogExtractionFailure(program, key string, err error) {
	var context map[string]interface{}
	if err != nil {
		context = map[string]interface{}{"error": err.Error()}
	}
	al.Log(AuditEvent{
		Level:   AuditWarn,
		Event:   EventExtractionFailed,
		Tool:    toolName(program),
		Flag:    key,
		Code:    ErrorCode(err),
		Context: context,
	})
}

// Flush immediately writes all buffered events
func (al *AuditLogger) Flush() error {
	al.bufferMu.Lock()
	defer al.bufferMu.Unlock()
	return al.flushBufferUnsafe()
}

// Close flushes pending events and releases the backend. It is safe to call
// more than once.
func (al *AuditLogger) Close() error {
	var err error
	al.closeOnce.Do(func() {
		close(al.stopCh)
		if al.flushTicker != nil {
			al.flushTicker.Stop()
		}
		if flushErr := al.Flush(); flushErr != nil {
			err = flushErr
		}
		if closeErr := al.backend.Close(); closeErr != nil && err == nil {
			err = errors.Wrap(closeErr, ErrCodeIOError, "failed to close audit backend")
		}
	})
	return err
}

func (al *AuditLogger) flushLoop() {
	for {
		select {
		case <-al.flushTicker.C:
			_ = al.Flush()
		case <-al.stopCh:
			return
		}
	}
}

// flushBufferUnsafe writes the buffer to the backend (caller must hold bufferMu).
func (al *AuditLogger) flushBufferUnsafe() error {
	if len(al.buffer) == 0 {
		return nil
	}
	if err := al.backend.Write(al.buffer); err != nil {
		return errors.Wrap(err, ErrCodeIOError, "failed to write audit events")
	}
	al.buffer = al.buffer[:0]
	return nil
}

// generateChecksum creates a tamper-detection checksum using SHA-256
func generateChecksum(event AuditEvent) string {
	data := fmt.Sprintf("%s:%s:%s:%s:%s:%s:%s",
		event.Timestamp.Format(time.RFC3339Nano),
		event.InvocationID, event.Event, event.Tool,
		event.Verdict, event.Flag, event.Code)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// VerifyChecksum reports whether event still matches its checksum.
func VerifyChecksum(event AuditEvent) bool {
	return event.Checksum == generateChecksum(event)
}

func toolName(program string) string {
	if program == "" {
		return "unknown"
	}
	return filepath.Base(program)
}
