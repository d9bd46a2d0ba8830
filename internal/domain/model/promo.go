package model

type PromoKind string

const (
	PromoKindPercent PromoKind = "percent" // discount on order amount
	PromoKindDays    PromoKind = "days"    // direct activation flow, not payable here
)

// PromoCode is shared with the admin console: the console creates and
// deletes codes, the engine only reads and decrements UsesLeft.
type PromoCode struct {
	ID       string // UUID
	Code     string // unique, user-entered
	Kind     PromoKind
	Value    int // percent (1..100) or days
	UsesLeft int
	// Optional squad override applied when the tariff grants none.
	SquadID *string
}

// Discount applies a percent promo to an amount in minor units,
// flooring at zero. Non-percent promos leave the amount unchanged.
func (p *PromoCode) Discount(amount int64) int64 {
	if p.Kind != PromoKindPercent {
		return amount
	}
	out := amount - amount*int64(p.Value)/100
	if out < 0 {
		out = 0
	}
	return out
}
