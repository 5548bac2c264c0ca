// ABOUTME: Conversational engine: inbound classification, state machine, escalation
// ABOUTME: Owns every session mutation; send failures are logged, never propagated

package engine

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/lmv-credia/cobranza-gateway/internal/agents"
	"github.com/lmv-credia/cobranza-gateway/internal/audit"
	"github.com/lmv-credia/cobranza-gateway/internal/roster"
	"github.com/lmv-credia/cobranza-gateway/internal/session"
	"github.com/lmv-credia/cobranza-gateway/internal/transport"
)

// Sender is what the engine needs from the transport.
type Sender interface {
	Send(ctx context.Context, to, text string) error
}

// Options carries the business identity rendered into messages.
type Options struct {
	Company   string
	BankName  string
	BankCLABE string
}

// Engine answers debtor messages and escalates to human collectors.
type Engine struct {
	sender     Sender
	contacts   *roster.Directory
	sessions   *session.Store
	log        *audit.Log
	collectors *agents.Directory
	logger     *slog.Logger

	company   string
	bankName  string
	bankCLABE string

	now func() time.Time
}

// New wires an engine over its collaborators.
func New(sender Sender, contacts *roster.Directory, sessions *session.Store,
	log *audit.Log, collectors *agents.Directory, logger *slog.Logger, opts Options) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Company == "" {
		opts.Company = "LMV CREDIA SA DE CV"
	}
	if opts.BankName == "" {
		opts.BankName = "BBVA"
	}
	if opts.BankCLABE == "" {
		opts.BankCLABE = "012345678901234567"
	}
	return &Engine{
		sender:     sender,
		contacts:   contacts,
		sessions:   sessions,
		log:        log,
		collectors: collectors,
		logger:     logger.With("component", "engine"),
		company:    opts.Company,
		bankName:   opts.BankName,
		bankCLABE:  opts.BankCLABE,
		now:        time.Now,
	}
}

// HandleInbound processes one inbound chat event. It never returns an error:
// per-event failures are logged and the event dropped, so the next message
// from the same phone can still make progress.
func (e *Engine) HandleInbound(ctx context.Context, msg transport.Message) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("panic handling inbound message", "panic", r, "from", msg.From)
		}
	}()

	if msg.Group || msg.FromSelf {
		return
	}
	phone := roster.PhoneFromAddress(msg.From)
	if phone == "" {
		return
	}

	switch msg.Kind {
	case transport.KindImage:
		e.handleImage(ctx, msg.From, phone)
		return
	case transport.KindText:
		// handled below
	default:
		return
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}

	e.log.Append(phone, audit.KindInbound, text)
	e.logger.Info("inbound message", "phone", phone, "preview", preview(text, 50))

	reply := e.respond(ctx, phone, text)
	if reply == "" {
		return
	}
	e.reply(ctx, msg.From, phone, reply)
}

// reply sends debtor-facing text and logs the outcome.
func (e *Engine) reply(ctx context.Context, to, phone, text string) {
	if err := e.sender.Send(ctx, to, text); err != nil {
		e.logger.Error("sending reply failed", "error", err, "phone", phone)
		return
	}
	e.log.Append(phone, audit.KindOutbound, text)
}

// respond classifies the text and produces the reply. Classifier order is
// the contract: excuse, refusal, hostility, greeting, then state dispatch.
func (e *Engine) respond(ctx context.Context, phone, raw string) string {
	text := strings.ToLower(strings.TrimSpace(raw))
	contact := e.contacts.Get(phone)
	conv := e.sessions.Get(phone)
	tier := TierFor(contact.DaysOverdue)

	if kind, ok := classifyExcuse(text); ok {
		return e.handleExcuse(phone, contact, tier, kind)
	}
	if isRefusal(text) {
		agent, err := e.escalate(ctx, phone, contact, tier, "Se niega a pagar")
		if err != nil {
			return e.msgAlreadyWaiting(nil)
		}
		return e.msgLegalNotice(agent)
	}
	if isHostility(text) {
		// The warning stays neutral and reveals no payment options.
		if _, err := e.escalate(ctx, phone, contact, tier, "Lenguaje agresivo"); err != nil {
			e.logger.Warn("hostility escalation without active agents", "phone", phone)
		}
		return e.msgHostilityWarning()
	}
	if isGreeting(text) {
		e.sessions.Set(phone, session.StateMenu)
		return e.msgWelcome(contact, tier)
	}

	switch conv.State {
	case session.StateMenu:
		return e.stateMenu(ctx, phone, text, contact, tier)
	case session.StatePayOptions:
		return e.statePayOptions(ctx, phone, text, contact, tier)
	case session.StateArrangement:
		return e.stateArrangement(ctx, phone, text, contact, tier)
	case session.StateExcuses:
		return e.stateExcuses(ctx, phone, text, contact, tier)
	case session.StateWaitingAgent:
		return e.msgAlreadyWaiting(conv.Agent)
	default:
		e.sessions.Set(phone, session.StateMenu)
		return e.msgWelcome(contact, tier)
	}
}

func (e *Engine) handleExcuse(phone string, contact roster.Contact, tier Tier, kind excuseKind) string {
	e.sessions.Set(phone, session.StateExcuses)
	switch kind {
	case excusePaid:
		return e.msgExcusePaid()
	case excuseNotMine:
		return e.msgExcuseNotMine(contact)
	case excuseLater:
		return e.msgExcuseLater(contact, tier)
	case excuseHardship:
		return e.msgExcuseHardship()
	default:
		return e.msgExcuseGeneric()
	}
}

func (e *Engine) stateMenu(ctx context.Context, phone, text string, contact roster.Contact, tier Tier) string {
	switch {
	case text == "1" || strings.Contains(text, "pagar"):
		e.sessions.Set(phone, session.StatePayOptions)
		return e.msgPayOptions(contact)
	case text == "2" || strings.Contains(text, "convenio"):
		e.sessions.Set(phone, session.StateArrangement)
		return e.msgArrangement()
	case text == "3" || strings.Contains(text, "saldo"):
		return e.msgBalance(contact)
	case text == "4" || strings.Contains(text, "asesor"):
		return e.connectCollector(ctx, phone, contact, tier, "Solicita hablar con asesor")
	default:
		return e.msgNotUnderstood(tier)
	}
}

func (e *Engine) statePayOptions(ctx context.Context, phone, text string, contact roster.Contact, tier Tier) string {
	switch {
	case text == "1":
		return e.msgPayTotal(contact, tier)
	case text == "2":
		return e.msgPayPartial(contact, tier)
	case text == "3" || strings.Contains(text, "convenio"):
		e.sessions.Set(phone, session.StateArrangement)
		return e.msgArrangement()
	case text == "4" || strings.Contains(text, "asesor"):
		return e.connectCollector(ctx, phone, contact, tier, "Quiere negociar pago")
	default:
		return e.msgNotUnderstood(tier)
	}
}

func (e *Engine) stateArrangement(ctx context.Context, phone, text string, contact roster.Contact, tier Tier) string {
	switch {
	case text == "1" || strings.Contains(text, "llame"):
		return e.connectCollector(ctx, phone, contact, tier, "Solicita llamada para convenio")
	case text == "2" || strings.Contains(text, "whatsapp"):
		return e.connectCollector(ctx, phone, contact, tier, "Solicita WhatsApp para convenio")
	case text == "3":
		e.sessions.Set(phone, session.StateMenu)
		return e.msgLaterReady()
	default:
		return e.msgNotUnderstood(tier)
	}
}

func (e *Engine) stateExcuses(ctx context.Context, phone, text string, contact roster.Contact, tier Tier) string {
	switch {
	case text == "1":
		e.sessions.Set(phone, session.StatePayOptions)
		return e.msgPayOptions(contact)
	case text == "2":
		e.sessions.Set(phone, session.StateArrangement)
		return e.msgArrangement()
	case text == "3" || strings.Contains(text, "asesor"):
		return e.connectCollector(ctx, phone, contact, tier, "Solicita asesor tras excusa")
	default:
		// Unrecognized replies stay in excusas.
		return e.msgExcuseReprompt()
	}
}

// connectCollector escalates and returns the debtor-facing confirmation.
func (e *Engine) connectCollector(ctx context.Context, phone string, contact roster.Contact, tier Tier, reason string) string {
	agent, err := e.escalate(ctx, phone, contact, tier, reason)
	if err != nil {
		return e.msgAlreadyWaiting(nil)
	}
	return e.msgEscalationConfirm(agent, tier)
}

// escalate assigns the next active collector, parks the session and fires
// the collector notification in the background. The notification must not
// delay or fail the debtor-facing reply.
func (e *Engine) escalate(ctx context.Context, phone string, contact roster.Contact, tier Tier, reason string) (agents.Agent, error) {
	agent, err := e.collectors.Next()
	if err != nil {
		if errors.Is(err, agents.ErrNoActiveAgents) {
			e.logger.Error("escalation with no active collectors", "phone", phone, "reason", reason)
			e.sessions.Set(phone, session.StateWaitingAgent)
			e.log.Append(phone, audit.KindEscalation, "sin gestor disponible: "+reason)
		}
		return agents.Agent{}, err
	}

	e.sessions.SetWithAgent(phone, session.StateWaitingAgent, agent)
	e.log.AppendTo(phone, agent.Phone, audit.KindEscalation, agent.Name+": "+reason)
	e.logger.Info("escalated to collector", "phone", phone, "agent", agent.Name, "reason", reason)

	notification := e.msgAgentNotification(contact, phone, tier, reason, e.now())
	go func() {
		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		if err := e.sender.Send(nctx, transport.AddressForPhone(agent.Phone), notification); err != nil {
			e.logger.Error("notifying collector failed", "error", err, "agent", agent.Name)
		}
	}()

	return agent, nil
}

// handleImage treats any inbound image as a presumed payment proof.
func (e *Engine) handleImage(ctx context.Context, from, phone string) {
	contact := e.contacts.Get(phone)
	tier := TierFor(contact.DaysOverdue)

	e.log.Append(phone, audit.KindMedia, "Posible comprobante")
	if _, err := e.escalate(ctx, phone, contact, tier, "📷 Envió imagen (posible comprobante de pago)"); err != nil {
		e.logger.Warn("image escalation without active agents", "phone", phone)
	}
	e.reply(ctx, from, phone, e.msgImageReceived())
}

func preview(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
