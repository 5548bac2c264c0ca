// ABOUTME: Delinquency tiers derived from days overdue
// ABOUTME: Tiers scale wording severity and minimum-payment floors, nothing else

package engine

// Tier buckets a debtor by days overdue.
type Tier string

const (
	TierLeve     Tier = "LEVE"
	TierModerado Tier = "MODERADO"
	TierGrave    Tier = "GRAVE"
	TierCritico  Tier = "CRITICO"
)

// TierFor maps days overdue to a tier. Boundaries are inclusive on the
// lower tier: 15 is still LEVE, 30 MODERADO, 60 GRAVE.
func TierFor(daysOverdue int) Tier {
	switch {
	case daysOverdue <= 15:
		return TierLeve
	case daysOverdue <= 30:
		return TierModerado
	case daysOverdue <= 60:
		return TierGrave
	default:
		return TierCritico
	}
}

// MinFraction is the partial-payment floor for a tier, as a fraction of the
// outstanding balance.
func (t Tier) MinFraction() float64 {
	switch t {
	case TierGrave:
		return 0.25
	case TierCritico:
		return 0.30
	default:
		return 0.10
	}
}

// Severe reports whether the tier gets the harsher wording variants.
func (t Tier) Severe() bool {
	return t == TierGrave || t == TierCritico
}
