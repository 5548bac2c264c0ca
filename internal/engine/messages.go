// ABOUTME: Spanish message rendering for every branch of the conversation
// ABOUTME: Amounts use es-MX thousands grouping; wording hardens with the tier

package engine

import (
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/lmv-credia/cobranza-gateway/internal/agents"
	"github.com/lmv-credia/cobranza-gateway/internal/roster"
)

var esMX = message.NewPrinter(language.MustParse("es-MX"))

// money renders an amount with es-MX grouping, dropping cents when whole.
func money(v float64) string {
	if v == math.Trunc(v) {
		return esMX.Sprintf("$%d", int64(v))
	}
	return esMX.Sprintf("$%.2f", v)
}

func firstName(c roster.Contact) string {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return roster.DefaultName
	}
	if i := strings.IndexByte(name, ' '); i > 0 {
		return name[:i]
	}
	return name
}

// urgencyBlock is the tier-dependent opener of the welcome message.
func (e *Engine) urgencyBlock(c roster.Contact, tier Tier) string {
	switch tier {
	case TierLeve:
		return "Le recordamos que su cuenta presenta un saldo pendiente."
	case TierModerado:
		return fmt.Sprintf("Su cuenta presenta *%d días de atraso*. Evite recargos regularizándose hoy.", c.DaysOverdue)
	case TierGrave:
		return fmt.Sprintf("⚠️ Su cuenta presenta *%d días de atraso*. Es importante regularizarla de inmediato.", c.DaysOverdue)
	default:
		return fmt.Sprintf("🚨 *ATENCIÓN:* su cuenta tiene *%d días de atraso* y está por turnarse a cobranza especializada.", c.DaysOverdue)
	}
}

func (e *Engine) msgWelcome(c roster.Contact, tier Tier) string {
	return fmt.Sprintf(`Hola *%s*, gracias por comunicarse con *%s* 📞

%s

¿En qué podemos ayudarle?

1️⃣ Quiero pagar mi adeudo
2️⃣ Necesito un convenio de pago
3️⃣ Consultar mi saldo
4️⃣ Hablar con un asesor

_Responda con el número_`, firstName(c), e.company, e.urgencyBlock(c, tier))
}

func (e *Engine) msgPayOptions(c roster.Contact) string {
	return fmt.Sprintf(`💰 *OPCIONES DE PAGO*

Saldo actual: *%s*

1️⃣ *Pago total* - 10%% descuento
2️⃣ *Pago parcial* - Abone lo que pueda
3️⃣ *Plan de pagos* - Parcialidades
4️⃣ *Hablar con asesor*

_Responda con el número_`, money(c.Balance))
}

func (e *Engine) msgPayTotal(c roster.Contact, tier Tier) string {
	balance := c.Balance
	if balance <= 0 {
		balance = 5000
	}
	discounted := math.Round(balance * 0.9)
	msg := fmt.Sprintf(`🎉 *¡EXCELENTE DECISIÓN!*

Saldo: %s
*Con 10%% desc: %s*

📱 *DATOS PARA PAGO:*

Banco: %s
CLABE: %s
A nombre de: %s

📸 Envíe foto de su comprobante por aquí.`, money(balance), money(discounted), e.bankName, e.bankCLABE, e.company)
	if tier.Severe() {
		msg += fmt.Sprintf("\n\n⚠️ Pago mínimo aceptado hoy: *%s*", money(balance*tier.MinFraction()))
	}
	return msg
}

func (e *Engine) msgPayPartial(c roster.Contact, tier Tier) string {
	floor := c.Balance * tier.MinFraction()
	var line string
	if floor > 0 {
		line = fmt.Sprintf("Abono mínimo para su cuenta: *%s*", money(floor))
	} else {
		line = "Puede abonar cualquier cantidad."
	}
	return fmt.Sprintf(`💵 *PAGO PARCIAL*

%s

📱 *DATOS:*
Banco: %s
CLABE: %s
%s

📸 Envíe su comprobante por aquí.`, line, e.bankName, e.bankCLABE, e.company)
}

func (e *Engine) msgArrangement() string {
	return `📋 *OPCIONES DE CONVENIO*

✅ Plan 4 semanas
✅ Plan 8 semanas
✅ Plan personalizado

¿Desea que lo contacten?

1️⃣ Sí, que me llamen
2️⃣ Prefiero WhatsApp
3️⃣ Yo me comunico después`
}

func (e *Engine) msgBalance(c roster.Contact) string {
	return fmt.Sprintf(`📊 *SU SALDO*

*Cliente:* %s
*Saldo:* %s
*Atraso:* %d días

Escriba *1* para pagar o *4* para hablar con asesor.`, c.Name, money(c.Balance), c.DaysOverdue)
}

func (e *Engine) msgNotUnderstood(tier Tier) string {
	if tier.Severe() {
		return `🤔 No entendí su respuesta y su cuenta requiere atención *urgente*.

Responda con el *número*:

1️⃣ Pagar
2️⃣ Convenio
3️⃣ Saldo
4️⃣ Asesor

No deje pasar más tiempo. O escriba *HOLA*`
	}
	return `🤔 No entendí su respuesta.

Responda con el *número*:

1️⃣ Pagar
2️⃣ Convenio
3️⃣ Saldo
4️⃣ Asesor

O escriba *HOLA*`
}

func (e *Engine) msgLaterReady() string {
	return fmt.Sprintf("Perfecto, cuando esté listo escríbanos *HOLA*.\n\n_%s_", e.company)
}

func (e *Engine) msgAlreadyWaiting(agent *agents.Agent) string {
	phone := ""
	if agent != nil {
		phone = agent.Phone
	} else if a, ok := e.collectors.First(); ok {
		phone = a.Phone
	}
	return fmt.Sprintf("Su solicitud ya fue registrada.\n\nUn asesor lo contactará pronto.\n\n📞 Urgente: %s", phone)
}

func (e *Engine) msgEscalationConfirm(agent agents.Agent, tier Tier) string {
	urgency := "lo contactará en minutos"
	if tier.Severe() {
		urgency = "lo contactará de inmediato; su cuenta requiere atención urgente"
	}
	return fmt.Sprintf(`👤 *CONECTANDO CON ASESOR*

Su solicitud ha sido registrada.

*%s* %s.

📞 Si es urgente: %s

⏰ Horario: Lunes a Viernes 9:00-18:00`, agent.Name, urgency, agent.Phone)
}

func (e *Engine) msgAgentNotification(c roster.Contact, phone string, tier Tier, reason string, at time.Time) string {
	return fmt.Sprintf(`🔔 *NUEVA SOLICITUD*

👤 *Cliente:* %s
📱 *Tel:* %s
💰 *Saldo:* %s
📅 *Atraso:* %d días (%s)

📋 *Motivo:* %s

⏰ %s`, c.Name, phone, money(c.Balance), c.DaysOverdue, tier, reason, at.Format("02/01/2006 15:04"))
}

func (e *Engine) msgLegalNotice(agent agents.Agent) string {
	return fmt.Sprintf(`⚖️ *AVISO IMPORTANTE*

Su negativa de pago queda registrada. De no regularizar su adeudo, su cuenta puede ser turnada a:

• Reporte ante buró de crédito
• Cobranza judicial
• Visitas domiciliarias

*%s* se pondrá en contacto con usted para buscar una solución antes de llegar a esas instancias.

📞 %s`, agent.Name, agent.Phone)
}

func (e *Engine) msgHostilityWarning() string {
	return `Le pedimos mantener un trato respetuoso.

Esta conversación queda registrada como evidencia.

Un asesor dará seguimiento a su cuenta.`
}

func (e *Engine) msgImageReceived() string {
	return "📷 *Imagen recibida*\n\nUn asesor verificará su comprobante en las próximas horas hábiles.\n\nGracias."
}

// Excuse rebuttals. Every one funnels back into the same three options so
// the EXCUSAS state can interpret the reply.

const excuseOptions = `1️⃣ Realizar un pago
2️⃣ Convenio de pago
3️⃣ Hablar con asesor`

func (e *Engine) msgExcusePaid() string {
	return fmt.Sprintf(`Gracias por avisarnos. 🧾

Para aplicar su pago necesitamos el *comprobante*: envíe la foto por este medio y un asesor lo validará.

Si aún no realiza el pago:

%s`, excuseOptions)
}

func (e *Engine) msgExcuseNotMine(c roster.Contact) string {
	return fmt.Sprintf(`Entendemos. El adeudo está registrado a nombre de *%s* con este número de contacto.

Si considera que es un error, un asesor puede revisarlo:

%s`, c.Name, excuseOptions)
}

func (e *Engine) msgExcuseLater(c roster.Contact, tier Tier) string {
	if tier.Severe() {
		floor := c.Balance * tier.MinFraction()
		return fmt.Sprintf(`⚠️ Su cuenta ya no admite más prórrogas.

Para detener el proceso de cobranza necesitamos *hoy* un pago mínimo de *%s*.

%s`, money(floor), excuseOptions)
	}
	return fmt.Sprintf(`De acuerdo. Para registrar su compromiso indíquenos una *fecha concreta* de pago.

También puede adelantar desde ahora:

%s`, excuseOptions)
}

func (e *Engine) msgExcuseHardship() string {
	return fmt.Sprintf(`Entendemos su situación. 🤝

Justo para esos casos existen los *convenios*: pagos pequeños, a su ritmo, sin recargos adicionales.

%s`, excuseOptions)
}

func (e *Engine) msgExcuseGeneric() string {
	return fmt.Sprintf(`Entendemos, y queremos ayudarle a resolverlo cuanto antes.

Estas son sus opciones:

%s`, excuseOptions)
}

func (e *Engine) msgExcuseReprompt() string {
	return fmt.Sprintf(`Responda con el *número* de la opción:

%s

O escriba *HOLA* para ver el menú.`, excuseOptions)
}
