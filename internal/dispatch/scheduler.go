// ABOUTME: One-at-a-time bulk send loop with anti-ban pacing and live stats
// ABOUTME: Single job in flight; per-contact failures never halt the loop

package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lmv-credia/cobranza-gateway/internal/audit"
	"github.com/lmv-credia/cobranza-gateway/internal/roster"
	"github.com/lmv-credia/cobranza-gateway/internal/transport"
)

// ErrJobInProgress rejects a bulk send while another is running.
var ErrJobInProgress = errors.New("a bulk send is already in progress")

// ErrNoContacts rejects an empty job.
var ErrNoContacts = errors.New("no contacts to send to")

// Sender is what the scheduler needs from the transport.
type Sender interface {
	Send(ctx context.Context, to, text string) error
}

// Registrar receives the job's contacts before any message goes out, so
// inbound replies resolve against a populated roster.
type Registrar interface {
	Register(contacts []roster.Contact) int
}

// Config holds the anti-ban pacing knobs.
type Config struct {
	// MessageDelay runs after every send except batch boundaries.
	MessageDelay time.Duration
	// BatchSize is the number of consecutive sends before the long pause.
	BatchSize int
	// BatchPause replaces (not adds to) MessageDelay at batch boundaries.
	BatchPause time.Duration
	// StartHour/EndHour bound the allowed window as [start, end) wall-clock hours.
	StartHour int
	EndHour   int
	// WindowPoll is how often an out-of-window job re-checks the clock.
	WindowPoll time.Duration
}

// DefaultConfig mirrors the pacing the channel has tolerated in production.
func DefaultConfig() Config {
	return Config{
		MessageDelay: 10 * time.Second,
		BatchSize:    15,
		BatchPause:   120 * time.Second,
		StartHour:    9,
		EndHour:      20,
		WindowPoll:   60 * time.Second,
	}
}

// Result is the outcome of the most recently attempted contact.
type Result struct {
	Phone string
	OK    bool
	Err   string
}

// Stats is the live accounting of the current (or last) job.
type Stats struct {
	Total      int
	Succeeded  int
	Failed     int
	Queued     int
	InProgress bool
	LastResult *Result
}

// Scheduler runs at most one bulk job at a time.
type Scheduler struct {
	sender    Sender
	registrar Registrar
	log       *audit.Log
	logger    *slog.Logger
	cfg       Config

	mu    sync.Mutex
	stats Stats

	// injected for tests
	sleep func(time.Duration)
	now   func() time.Time
}

// New returns an idle scheduler.
func New(sender Sender, registrar Registrar, log *audit.Log, logger *slog.Logger, cfg Config) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MessageDelay <= 0 {
		cfg.MessageDelay = DefaultConfig().MessageDelay
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultConfig().BatchSize
	}
	if cfg.BatchPause <= 0 {
		cfg.BatchPause = DefaultConfig().BatchPause
	}
	if cfg.WindowPoll <= 0 {
		cfg.WindowPoll = DefaultConfig().WindowPoll
	}
	if cfg.EndHour <= 0 {
		cfg.StartHour = DefaultConfig().StartHour
		cfg.EndHour = DefaultConfig().EndHour
	}
	return &Scheduler{
		sender:    sender,
		registrar: registrar,
		log:       log,
		logger:    logger.With("component", "dispatch"),
		cfg:       cfg,
		sleep:     time.Sleep,
		now:       time.Now,
	}
}

// Start begins a bulk send and returns immediately. It rejects the job when
// another is in flight, without touching the running job's statistics.
func (s *Scheduler) Start(ctx context.Context, contacts []map[string]any, template, phoneField string) error {
	if len(contacts) == 0 {
		return ErrNoContacts
	}
	if phoneField == "" {
		phoneField = "telefono"
	}

	s.mu.Lock()
	if s.stats.InProgress {
		s.mu.Unlock()
		return ErrJobInProgress
	}
	s.stats = Stats{Total: len(contacts), Queued: len(contacts), InProgress: true}
	s.mu.Unlock()

	// Roster pre-registration: the bulk job doubles as a roster load so the
	// engine can answer replies from these contacts.
	rosterContacts := make([]roster.Contact, 0, len(contacts))
	for _, rec := range contacts {
		rosterContacts = append(rosterContacts, contactFromRecord(rec, phoneField))
	}
	registered := s.registrar.Register(rosterContacts)

	s.logger.Info("bulk send started",
		"contacts", len(contacts), "registered", registered,
		"delay", s.cfg.MessageDelay, "batch", s.cfg.BatchSize)

	go s.run(ctx, contacts, template, phoneField)
	return nil
}

// Stats returns a copy of the current accounting.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.stats
	if st.LastResult != nil {
		r := *st.LastResult
		st.LastResult = &r
	}
	return st
}

// ResetStats clears the terminal statistics record. Rejected while a job
// is running.
func (s *Scheduler) ResetStats() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stats.InProgress {
		return ErrJobInProgress
	}
	s.stats = Stats{}
	return nil
}

func (s *Scheduler) inWindow(t time.Time) bool {
	h := t.Hour()
	return h >= s.cfg.StartHour && h < s.cfg.EndHour
}

func (s *Scheduler) run(ctx context.Context, contacts []map[string]any, template, phoneField string) {
	sent := 0

	for _, rec := range contacts {
		if ctx.Err() != nil {
			s.logger.Warn("bulk send aborted by shutdown", "remaining", s.Stats().Queued)
			break
		}

		for !s.inWindow(s.now()) {
			s.logger.Info("outside send window, waiting",
				"start_hour", s.cfg.StartHour, "end_hour", s.cfg.EndHour)
			s.sleep(s.cfg.WindowPoll)
			if ctx.Err() != nil {
				break
			}
		}

		phone := roster.NormalizePhone(phoneFieldValue(rec, phoneField))
		if phone == "" {
			// Counted as failed immediately, no delay consumed.
			s.recordResult(Result{Phone: "", OK: false, Err: "missing phone field"})
			continue
		}

		text := Expand(template, rec)
		err := s.sender.Send(ctx, transport.AddressForPhone(phone), text)
		if err != nil {
			s.recordResult(Result{Phone: phone, OK: false, Err: err.Error()})
			s.log.Append(phone, audit.KindOutbound, fmt.Sprintf("envío masivo falló: %v", err))
			s.logger.Warn("bulk message failed", "phone", phone, "error", err)
		} else {
			s.recordResult(Result{Phone: phone, OK: true})
			s.log.Append(phone, audit.KindOutbound, text)
		}
		sent++

		if sent%s.cfg.BatchSize == 0 && sent < len(contacts) {
			s.logger.Info("batch pause", "sent", sent, "pause", s.cfg.BatchPause)
			s.sleep(s.cfg.BatchPause)
		} else {
			s.sleep(s.cfg.MessageDelay)
		}
	}

	s.mu.Lock()
	s.stats.InProgress = false
	final := s.stats
	s.mu.Unlock()
	s.logger.Info("bulk send finished",
		"succeeded", final.Succeeded, "failed", final.Failed, "total", final.Total)
}

func (s *Scheduler) recordResult(r Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.OK {
		s.stats.Succeeded++
	} else {
		s.stats.Failed++
	}
	s.stats.Queued--
	s.stats.LastResult = &r
}
