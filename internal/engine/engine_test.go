// ABOUTME: Tests for classification priority, state transitions and escalation
// ABOUTME: Drives the engine through the in-memory transport port

package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmv-credia/cobranza-gateway/internal/agents"
	"github.com/lmv-credia/cobranza-gateway/internal/audit"
	"github.com/lmv-credia/cobranza-gateway/internal/roster"
	"github.com/lmv-credia/cobranza-gateway/internal/session"
	"github.com/lmv-credia/cobranza-gateway/internal/transport"
)

const (
	debtorPhone = "5512345678"
	debtorAddr  = "52" + debtorPhone + "@s.whatsapp.net"
)

type fixture struct {
	engine     *Engine
	port       *transport.Memory
	contacts   *roster.Directory
	sessions   *session.Store
	log        *audit.Log
	collectors *agents.Directory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	port := transport.NewMemory()
	contacts := roster.NewDirectory()
	sessions := session.NewStore()
	log := audit.NewLog(nil, nil)
	collectors := agents.NewDirectory([]agents.Agent{
		{Name: "Lic. Alfonso", Phone: "5564304984", Active: true},
		{Name: "Lic. Gisella", Phone: "5526889735", Active: true},
	})
	eng := New(port, contacts, sessions, log, collectors, nil, Options{})
	return &fixture{engine: eng, port: port, contacts: contacts, sessions: sessions, log: log, collectors: collectors}
}

func (f *fixture) deliverText(text string) {
	f.engine.HandleInbound(context.Background(), transport.Message{
		From: debtorAddr, Text: text, Kind: transport.KindText, Timestamp: time.Now(),
	})
}

func (f *fixture) lastReply(t *testing.T) string {
	t.Helper()
	sent := f.port.SentTo(debtorAddr)
	require.NotEmpty(t, sent)
	return sent[len(sent)-1].Text
}

func TestTierBoundaries(t *testing.T) {
	tests := []struct {
		days int
		want Tier
	}{
		{0, TierLeve}, {15, TierLeve},
		{16, TierModerado}, {30, TierModerado},
		{31, TierGrave}, {60, TierGrave},
		{61, TierCritico}, {400, TierCritico},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TierFor(tt.days), "days=%d", tt.days)
	}
}

func TestMinFractions(t *testing.T) {
	assert.Equal(t, 0.10, TierLeve.MinFraction())
	assert.Equal(t, 0.10, TierModerado.MinFraction())
	assert.Equal(t, 0.25, TierGrave.MinFraction())
	assert.Equal(t, 0.30, TierCritico.MinFraction())
}

func TestGreetingResetsToMenuFromAnyState(t *testing.T) {
	for _, state := range []session.State{
		session.StateInitial, session.StateMenu, session.StatePayOptions,
		session.StateArrangement, session.StateExcuses, session.StateWaitingAgent,
	} {
		t.Run(string(state), func(t *testing.T) {
			f := newFixture(t)
			f.sessions.Set(debtorPhone, state)

			f.deliverText("hola")

			assert.Equal(t, session.StateMenu, f.sessions.Get(debtorPhone).State)
			assert.Contains(t, f.lastReply(t), "¿En qué podemos ayudarle?")
		})
	}
}

func TestWelcomeUsesContactNameAndTierUrgency(t *testing.T) {
	f := newFixture(t)
	f.contacts.Put(roster.Contact{Phone: debtorPhone, Name: "Ana Maria Lopez", Balance: 8000, DaysOverdue: 75})

	f.deliverText("buenos dias")

	reply := f.lastReply(t)
	assert.Contains(t, reply, "Hola *Ana*")
	assert.Contains(t, reply, "ATENCIÓN")
	assert.Contains(t, reply, "75 días")
}

func TestUnknownPhoneGetsDefaultContact(t *testing.T) {
	f := newFixture(t)

	f.deliverText("hola")

	assert.Contains(t, f.lastReply(t), "Hola *Cliente*")
}

func TestMenuFlowToPayOptions(t *testing.T) {
	f := newFixture(t)
	f.contacts.Put(roster.Contact{Phone: debtorPhone, Name: "Ana", Balance: 5000, DaysOverdue: 10})

	f.deliverText("hola")
	f.deliverText("1")

	assert.Equal(t, session.StatePayOptions, f.sessions.Get(debtorPhone).State)
	assert.Contains(t, f.lastReply(t), "OPCIONES DE PAGO")
	assert.Contains(t, f.lastReply(t), "$5,000")
}

func TestBalanceQueryKeepsState(t *testing.T) {
	f := newFixture(t)
	f.contacts.Put(roster.Contact{Phone: debtorPhone, Name: "Ana", Balance: 1234.5, DaysOverdue: 20})

	f.deliverText("hola")
	f.deliverText("3")

	assert.Equal(t, session.StateMenu, f.sessions.Get(debtorPhone).State)
	reply := f.lastReply(t)
	assert.Contains(t, reply, "SU SALDO")
	assert.Contains(t, reply, "$1,234.50")
	assert.Contains(t, reply, "20 días")
}

func TestPayPartialShowsTierFloor(t *testing.T) {
	f := newFixture(t)
	f.contacts.Put(roster.Contact{Phone: debtorPhone, Name: "Ana", Balance: 10000, DaysOverdue: 90})

	f.deliverText("hola")
	f.deliverText("1")
	f.deliverText("2")

	// CRITICO floor is 30% of the balance.
	assert.Contains(t, f.lastReply(t), "$3,000")
}

func TestNotUnderstoodKeepsStateAndHardensWithTier(t *testing.T) {
	f := newFixture(t)
	f.contacts.Put(roster.Contact{Phone: debtorPhone, Name: "Ana", Balance: 100, DaysOverdue: 45})

	f.deliverText("hola")
	f.deliverText("xyzzy")

	assert.Equal(t, session.StateMenu, f.sessions.Get(debtorPhone).State)
	assert.Contains(t, f.lastReply(t), "urgente")
}

func TestRefusalEscalatesFromMenu(t *testing.T) {
	f := newFixture(t)
	f.contacts.Put(roster.Contact{Phone: debtorPhone, Name: "Ana", Balance: 100, DaysOverdue: 5})
	f.deliverText("hola")

	f.deliverText("no voy a pagar nada")

	sess := f.sessions.Get(debtorPhone)
	assert.Equal(t, session.StateWaitingAgent, sess.State)
	require.NotNil(t, sess.Agent)

	reply := f.lastReply(t)
	assert.Contains(t, reply, "buró de crédito")
	assert.Contains(t, reply, "Cobranza judicial")

	var escalations int
	for _, rec := range f.log.Recent("", 50) {
		if rec.Kind == audit.KindEscalation {
			escalations++
		}
	}
	assert.Equal(t, 1, escalations)
}

func TestHostilityWarnsWithoutPaymentOptions(t *testing.T) {
	f := newFixture(t)

	f.deliverText("pinche robot dejame en paz")

	assert.Equal(t, session.StateWaitingAgent, f.sessions.Get(debtorPhone).State)
	reply := f.lastReply(t)
	assert.Contains(t, reply, "evidencia")
	assert.NotContains(t, reply, "CLABE")
	assert.NotContains(t, reply, "Pagar")
}

func TestWaitingAgentIsTerminalUntilGreeting(t *testing.T) {
	f := newFixture(t)
	f.deliverText("hola")
	f.deliverText("4")
	require.Equal(t, session.StateWaitingAgent, f.sessions.Get(debtorPhone).State)
	before := len(f.log.Recent("", 500))

	f.deliverText("2")

	assert.Equal(t, session.StateWaitingAgent, f.sessions.Get(debtorPhone).State)
	assert.Contains(t, f.lastReply(t), "ya fue registrada")

	// No second escalation was recorded (just the inbound/outbound pair).
	var escalations int
	for _, rec := range f.log.Recent("", 500)[before:] {
		if rec.Kind == audit.KindEscalation {
			escalations++
		}
	}
	assert.Zero(t, escalations)

	f.deliverText("hola")
	assert.Equal(t, session.StateMenu, f.sessions.Get(debtorPhone).State)
}

func TestEscalationRoundRobinAlternates(t *testing.T) {
	f := newFixture(t)

	phones := []string{"5511111111", "5522222222", "5533333333", "5544444444"}
	for _, p := range phones {
		f.engine.HandleInbound(context.Background(), transport.Message{
			From: "52" + p + "@s.whatsapp.net", Text: "hola", Kind: transport.KindText,
		})
		f.engine.HandleInbound(context.Background(), transport.Message{
			From: "52" + p + "@s.whatsapp.net", Text: "4", Kind: transport.KindText,
		})
	}

	var names []string
	for _, p := range phones {
		sess := f.sessions.Get(p)
		require.NotNil(t, sess.Agent)
		names = append(names, sess.Agent.Name)
	}
	assert.Equal(t, []string{"Lic. Alfonso", "Lic. Gisella", "Lic. Alfonso", "Lic. Gisella"}, names)
}

func TestEscalationNotifiesCollector(t *testing.T) {
	f := newFixture(t)
	f.contacts.Put(roster.Contact{Phone: debtorPhone, Name: "Ana", Balance: 7500, DaysOverdue: 40})

	f.deliverText("hola")
	f.deliverText("4")

	agentAddr := transport.AddressForPhone("5564304984")
	assert.Eventually(t, func() bool {
		return len(f.port.SentTo(agentAddr)) == 1
	}, time.Second, 10*time.Millisecond)

	notif := f.port.SentTo(agentAddr)[0].Text
	assert.Contains(t, notif, "NUEVA SOLICITUD")
	assert.Contains(t, notif, "Ana")
	assert.Contains(t, notif, debtorPhone)
	assert.Contains(t, notif, "$7,500")
	assert.Contains(t, notif, "GRAVE")
}

func TestCollectorNotifyFailureDoesNotReachDebtor(t *testing.T) {
	f := newFixture(t)
	f.port.FailSendsTo(transport.AddressForPhone("5564304984"), errors.New("unreachable"))

	f.deliverText("hola")
	f.deliverText("4")

	// The debtor still gets the confirmation.
	assert.Contains(t, f.lastReply(t), "CONECTANDO CON ASESOR")
}

func TestExcuseSubclasses(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"already paid", "ya pagué la semana pasada", "comprobante"},
		{"not mine", "esa deuda no es mía", "un error"},
		{"hardship", "no tengo dinero ahorita", "convenios"},
		{"generic", "es que he tenido problemas", "opciones"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.deliverText(tt.text)

			assert.Equal(t, session.StateExcuses, f.sessions.Get(debtorPhone).State)
			assert.Contains(t, f.lastReply(t), tt.want)
		})
	}
}

func TestTimeDeferralBranchesOnTier(t *testing.T) {
	t.Run("mild tier gets commit-to-a-date prompt", func(t *testing.T) {
		f := newFixture(t)
		f.contacts.Put(roster.Contact{Phone: debtorPhone, Name: "Ana", Balance: 1000, DaysOverdue: 10})

		f.deliverText("le pago mañana")

		assert.Contains(t, f.lastReply(t), "fecha concreta")
	})

	t.Run("critical tier demands immediate minimum", func(t *testing.T) {
		f := newFixture(t)
		f.contacts.Put(roster.Contact{Phone: debtorPhone, Name: "Ana", Balance: 1000, DaysOverdue: 90})

		f.deliverText("le pago mañana")

		reply := f.lastReply(t)
		assert.Contains(t, reply, "no admite más prórrogas")
		assert.Contains(t, reply, "$300")
	})
}

func TestExcusesStateRoutesOptions(t *testing.T) {
	f := newFixture(t)
	f.deliverText("no tengo dinero")
	require.Equal(t, session.StateExcuses, f.sessions.Get(debtorPhone).State)

	f.deliverText("2")
	assert.Equal(t, session.StateArrangement, f.sessions.Get(debtorPhone).State)
}

func TestExcusesStateStaysOnUnrecognized(t *testing.T) {
	f := newFixture(t)
	f.deliverText("no tengo dinero")

	f.deliverText("bla bla")

	assert.Equal(t, session.StateExcuses, f.sessions.Get(debtorPhone).State)
	assert.Contains(t, f.lastReply(t), "número")
}

func TestImageTreatedAsPaymentProof(t *testing.T) {
	f := newFixture(t)

	f.engine.HandleInbound(context.Background(), transport.Message{
		From: debtorAddr, Kind: transport.KindImage,
	})

	assert.Equal(t, session.StateWaitingAgent, f.sessions.Get(debtorPhone).State)
	assert.Contains(t, f.lastReply(t), "Imagen recibida")

	var kinds []audit.Kind
	for _, rec := range f.log.Recent(debtorPhone, 10) {
		kinds = append(kinds, rec.Kind)
	}
	assert.Contains(t, kinds, audit.KindMedia)
	assert.Contains(t, kinds, audit.KindEscalation)
}

func TestGroupAndSelfMessagesIgnored(t *testing.T) {
	f := newFixture(t)

	f.engine.HandleInbound(context.Background(), transport.Message{
		From: "12036302-group@g.us", Text: "hola", Kind: transport.KindText, Group: true,
	})
	f.engine.HandleInbound(context.Background(), transport.Message{
		From: debtorAddr, Text: "hola", Kind: transport.KindText, FromSelf: true,
	})
	f.engine.HandleInbound(context.Background(), transport.Message{
		From: debtorAddr, Kind: transport.KindOther,
	})

	assert.Empty(t, f.port.SentMessages())
	assert.Equal(t, 0, f.log.Len())
}

func TestSendFailureIsSwallowed(t *testing.T) {
	f := newFixture(t)
	f.port.FailSendsTo(debtorAddr, errors.New("channel closed"))

	f.deliverText("hola")

	// The inbound record exists but no outbound record was written.
	recs := f.log.Recent(debtorPhone, 10)
	require.Len(t, recs, 1)
	assert.Equal(t, audit.KindInbound, recs[0].Kind)
	// State still advanced; the next message can make progress.
	assert.Equal(t, session.StateMenu, f.sessions.Get(debtorPhone).State)
}
