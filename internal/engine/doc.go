// Package engine implements the conversational side of the collection bot.
//
// # Overview
//
// The engine consumes inbound chat messages, classifies them and answers in
// Spanish with wording scaled to how delinquent the debtor is. It owns every
// mutation of the session store and is the only writer of outbound text on
// the debtor side.
//
// # Classification
//
// Inbound text runs through an ordered classifier list, first match wins:
//
//  1. Excuses ("ya pagué", "no tengo", "mañana") with sub-classes, each
//     answered by a scripted rebuttal
//  2. Refusal to pay: immediate escalation plus a legal-consequences notice
//  3. Hostility: escalation plus a recorded-as-evidence warning
//  4. Greetings: reset to the menu from any state
//  5. Whatever the current state of the session dictates
//
// The ordering is semantic, not cosmetic: a hostile refusal must escalate as
// a refusal, and an excuse containing "no" must not read as a refusal.
//
// # Tiers
//
// Days overdue map to LEVE (≤15), MODERADO (≤30), GRAVE (≤60) or CRITICO.
// Tiers gate wording severity and the minimum-payment floors; they never add
// states.
//
// # Escalation
//
// Escalations pick the next active collector round-robin, park the session
// in esperando_gestor and notify the collector asynchronously over the same
// chat transport. Notification failures are logged and never shown to the
// debtor.
package engine
