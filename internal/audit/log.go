// ABOUTME: Bounded in-memory interaction log with phone/limit filtered reads
// ABOUTME: Trims to the newest half when the cap is exceeded; optional durable archiver

package audit

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind labels an interaction record. Values are the legacy export names.
type Kind string

const (
	KindInbound    Kind = "recibido"
	KindOutbound   Kind = "enviado"
	KindEscalation Kind = "transferencia"
	KindMedia      Kind = "imagen"
)

const (
	// maxRecords is the in-memory cap; when exceeded the log keeps only the
	// newest keepRecords entries.
	maxRecords  = 500
	keepRecords = 250

	// maxDetail bounds the stored detail text.
	maxDetail = 120
)

// Record is one logged interaction.
type Record struct {
	ID          string
	Phone       string
	Destination string
	Kind        Kind
	Detail      string
	Timestamp   time.Time
}

// Archiver receives every appended record for durable storage. Archive
// failures are logged and otherwise ignored; the in-memory log is the
// operational source.
type Archiver interface {
	Archive(rec Record) error
}

// Log is the bounded interaction log.
type Log struct {
	mu       sync.Mutex
	records  []Record
	archiver Archiver
	logger   *slog.Logger
	now      func() time.Time
}

// NewLog returns an empty log. archiver may be nil.
func NewLog(archiver Archiver, logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{
		archiver: archiver,
		logger:   logger.With("component", "audit"),
		now:      time.Now,
	}
}

// Append records one interaction, truncating the detail text.
func (l *Log) Append(phone string, kind Kind, detail string) {
	l.AppendTo(phone, "", kind, detail)
}

// AppendTo records an interaction with an explicit destination, used for
// escalation notifications sent to a collector rather than the debtor.
func (l *Log) AppendTo(phone, destination string, kind Kind, detail string) {
	rec := Record{
		ID:          uuid.New().String(),
		Phone:       phone,
		Destination: destination,
		Kind:        kind,
		Detail:      truncate(detail, maxDetail),
		Timestamp:   l.now(),
	}

	l.mu.Lock()
	l.records = append(l.records, rec)
	if len(l.records) > maxRecords {
		trimmed := make([]Record, keepRecords)
		copy(trimmed, l.records[len(l.records)-keepRecords:])
		l.records = trimmed
	}
	l.mu.Unlock()

	if l.archiver != nil {
		if err := l.archiver.Archive(rec); err != nil {
			l.logger.Warn("archiving interaction failed", "error", err, "phone", phone)
		}
	}
}

// Recent returns up to limit newest records, oldest first, optionally
// filtered by phone substring. limit <= 0 means 50.
func (l *Log) Recent(phone string, limit int) []Record {
	if limit <= 0 {
		limit = 50
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	matched := l.records
	if phone != "" {
		matched = nil
		for _, r := range l.records {
			if strings.Contains(r.Phone, phone) {
				matched = append(matched, r)
			}
		}
	}
	if len(matched) > limit {
		matched = matched[len(matched)-limit:]
	}
	out := make([]Record, len(matched))
	copy(out, matched)
	return out
}

// Len returns the number of retained records.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// CountSince counts retained records at or after the given time.
func (l *Log) CountSince(since time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, r := range l.records {
		if !r.Timestamp.Before(since) {
			n++
		}
	}
	return n
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
