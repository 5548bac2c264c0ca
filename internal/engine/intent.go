// ABOUTME: Ordered keyword classifiers for inbound text
// ABOUTME: Substring matching only; priority is excuse > refusal > hostility > greeting

package engine

import "strings"

// excuseKind sub-classifies an excuse into one of the scripted rebuttals.
type excuseKind int

const (
	excuseGeneric excuseKind = iota
	excusePaid
	excuseNotMine
	excuseLater
	excuseHardship
)

// Phrase sets carry accented and unaccented spellings; debtors type both.
var (
	paidPhrases = []string{
		"ya pagué", "ya pague", "ya realicé el pago", "ya realice el pago",
		"ya deposité", "ya deposite", "ya liquidé", "ya liquide", "ya transferí",
		"ya transferi",
	}
	notMinePhrases = []string{
		"no es mío", "no es mio", "no es mía", "no es mia", "no debo nada",
		"no conozco esa deuda",
		"número equivocado", "numero equivocado", "no soy esa persona",
		"se equivocaron de persona",
	}
	laterPhrases = []string{
		"mañana", "manana", "quincena", "la próxima semana", "la proxima semana",
		"la otra semana", "después le pago", "despues le pago", "luego le pago",
		"en unos días", "en unos dias", "cuando cobre",
	}
	hardshipPhrases = []string{
		"no tengo", "sin trabajo", "me quedé sin", "me quede sin",
		"no me alcanza", "estoy desempleado", "no cuento con dinero",
	}
	genericExcusePhrases = []string{
		"es que", "deme chance", "dame chance", "ahorita no puedo",
		"entiendo pero",
	}

	refusalPhrases = []string{
		"no voy a pagar", "no pienso pagar", "no pagaré", "no pagare",
		"no les voy a pagar", "no te voy a pagar", "demándame", "demandame",
		"demándenme", "demandenme", "haga lo que quiera", "hagan lo que quieran",
		"no me interesa",
	}

	hostilityPhrases = []string{
		"pendejo", "pendeja", "chinga", "chingue", "vete a la", "váyanse a la",
		"vayanse a la", "idiota", "estúpido", "estupido", "imbécil", "imbecil",
		"pinche", "mierda", "jódete", "jodete",
	}

	greetingPhrases = []string{
		"hola", "hi", "menu", "menú", "inicio", "buenos dias", "buenos días",
		"buenas tardes", "buenas noches",
	}
)

func matchesAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

// classifyExcuse reports whether text is an excuse and which rebuttal it
// gets. Sub-classes are checked in a fixed order so that, say, "ya pagué
// pero no tengo el comprobante" reads as claims-already-paid.
func classifyExcuse(text string) (excuseKind, bool) {
	switch {
	case matchesAny(text, paidPhrases):
		return excusePaid, true
	case matchesAny(text, notMinePhrases):
		return excuseNotMine, true
	case matchesAny(text, laterPhrases):
		return excuseLater, true
	case matchesAny(text, hardshipPhrases):
		return excuseHardship, true
	case matchesAny(text, genericExcusePhrases):
		return excuseGeneric, true
	default:
		return excuseGeneric, false
	}
}

func isRefusal(text string) bool   { return matchesAny(text, refusalPhrases) }
func isHostility(text string) bool { return matchesAny(text, hostilityPhrases) }
func isGreeting(text string) bool  { return matchesAny(text, greetingPhrases) }
