package entity

type Urgency string

const (
	UrgencyHigh   Urgency = "high"
	UrgencyMedium Urgency = "medium"
	UrgencyLow    Urgency = "low"
)

// ClassifyUrgency is total and has no side effects. A nil lead is low.
func ClassifyUrgency(l *Lead) Urgency {
	if l == nil {
		return UrgencyLow
	}
	if l.HasNOD() || l.MissedPayments >= 3 || l.IsOverwhelmed() {
		return UrgencyHigh
	}
	if l.MissedPayments >= 1 {
		return UrgencyMedium
	}
	return UrgencyLow
}
