// ABOUTME: Composition root wiring stores, engine and scheduler behind one facade
// ABOUTME: Exposes the administrative operations consumed by the CLI and tests

package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lmv-credia/cobranza-gateway/internal/agents"
	"github.com/lmv-credia/cobranza-gateway/internal/audit"
	"github.com/lmv-credia/cobranza-gateway/internal/config"
	"github.com/lmv-credia/cobranza-gateway/internal/dispatch"
	"github.com/lmv-credia/cobranza-gateway/internal/engine"
	"github.com/lmv-credia/cobranza-gateway/internal/roster"
	"github.com/lmv-credia/cobranza-gateway/internal/session"
	"github.com/lmv-credia/cobranza-gateway/internal/transport"
)

// Service owns every process-wide store and the two subsystems.
type Service struct {
	port       transport.Port
	contacts   *roster.Directory
	sessions   *session.Store
	log        *audit.Log
	collectors *agents.Directory
	engine     *engine.Engine
	scheduler  *dispatch.Scheduler
	snapshot   roster.Snapshot
	logger     *slog.Logger

	running bool
}

// BotStats is the aggregate the admin surface shows.
type BotStats struct {
	ClientsRegistered   int            `json:"clientesRegistrados"`
	ActiveConversations int            `json:"conversacionesActivas"`
	InteractionsToday   int            `json:"interaccionesHoy"`
	Agents              []agents.Agent `json:"gestores"`
	Running             bool           `json:"activo"`
}

// New builds the service over a transport port. archiver may be nil when
// no durable interaction archive is configured.
func New(cfg *config.Config, port transport.Port, archiver audit.Archiver, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Service{
		port:       port,
		contacts:   roster.NewDirectory(),
		sessions:   session.NewStore(),
		log:        audit.NewLog(archiver, logger),
		collectors: agents.NewDirectory(cfg.Agents),
		snapshot:   roster.NewFileSnapshot(cfg.Roster.SnapshotPath),
		logger:     logger.With("component", "service"),
	}

	s.engine = engine.New(port, s.contacts, s.sessions, s.log, s.collectors, logger, engine.Options{
		Company:   cfg.Company.Name,
		BankName:  cfg.Company.BankName,
		BankCLABE: cfg.Company.BankCLABE,
	})

	s.scheduler = dispatch.New(port, s, s.log, logger, dispatch.Config{
		MessageDelay: cfg.Dispatch.MessageDelay,
		BatchSize:    cfg.Dispatch.BatchSize,
		BatchPause:   cfg.Dispatch.BatchPause,
		StartHour:    cfg.Dispatch.StartHour,
		EndHour:      cfg.Dispatch.EndHour,
		WindowPoll:   cfg.Dispatch.WindowPoll,
	})

	return s
}

// Start loads the roster snapshot and attaches the engine to the inbound
// feed. Call once, before the transport starts delivering messages.
func (s *Service) Start(ctx context.Context) error {
	if !s.port.IsConnected() {
		if err := s.port.Initialize(ctx); err != nil {
			return fmt.Errorf("initializing transport: %w", err)
		}
	}

	contacts, err := s.snapshot.Load()
	if err != nil {
		return fmt.Errorf("loading roster snapshot: %w", err)
	}
	if n := s.contacts.Load(contacts); n > 0 {
		s.logger.Info("roster snapshot loaded", "contacts", n)
	}

	s.port.OnMessage(func(msg transport.Message) {
		s.engine.HandleInbound(ctx, msg)
	})
	s.running = true
	s.logger.Info("collection bot listening",
		"agents", len(s.collectors.All()), "clients", s.contacts.Len())
	return nil
}

// LoadRoster merges contacts into the directory and persists the whole
// roster snapshot, returning how many entries were stored.
func (s *Service) LoadRoster(contacts []roster.Contact) (int, error) {
	n := s.contacts.Load(contacts)
	if err := s.snapshot.Save(s.contacts.All()); err != nil {
		return n, fmt.Errorf("persisting roster snapshot: %w", err)
	}
	s.logger.Info("roster loaded", "received", len(contacts), "stored", n)
	return n, nil
}

// Register implements dispatch.Registrar: bulk jobs pre-load their contacts
// so the engine can answer replies. Snapshot failures are logged, not
// propagated; the job must still run.
func (s *Service) Register(contacts []roster.Contact) int {
	n, err := s.LoadRoster(contacts)
	if err != nil {
		s.logger.Warn("bulk job roster persistence failed", "error", err)
	}
	return n
}

// StartBulkSend submits a bulk job. Returns dispatch.ErrJobInProgress when
// one is already running.
func (s *Service) StartBulkSend(ctx context.Context, contacts []map[string]any, template, phoneField string) error {
	return s.scheduler.Start(ctx, contacts, template, phoneField)
}

// DispatchStats returns the live bulk-send accounting.
func (s *Service) DispatchStats() dispatch.Stats {
	return s.scheduler.Stats()
}

// ResetDispatchStats clears a finished job's statistics.
func (s *Service) ResetDispatchStats() error {
	return s.scheduler.ResetStats()
}

// Stats returns the conversational aggregates.
func (s *Service) Stats() BotStats {
	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return BotStats{
		ClientsRegistered:   s.contacts.Len(),
		ActiveConversations: s.sessions.Len(),
		InteractionsToday:   s.log.CountSince(midnight),
		Agents:              s.collectors.All(),
		Running:             s.running,
	}
}

// Agents returns the collector list.
func (s *Service) Agents() []agents.Agent {
	return s.collectors.All()
}

// ReplaceAgents swaps the collector list wholesale.
func (s *Service) ReplaceAgents(list []agents.Agent) {
	s.collectors.Replace(list)
	s.logger.Info("collector list replaced", "agents", len(list))
}

// Interactions returns recent interaction records, optionally filtered by
// phone substring.
func (s *Service) Interactions(phone string, limit int) []audit.Record {
	return s.log.Recent(phone, limit)
}

// Conversations returns every active session.
func (s *Service) Conversations() []session.Session {
	return s.sessions.All()
}

// Connected reports the transport's connectivity.
func (s *Service) Connected() bool {
	return s.port.IsConnected()
}
