package model

type Currency string

const (
	CurrencyRUB Currency = "RUB"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyUAH Currency = "UAH"
)

// Tariff is read-only from the engine's perspective: the admin console
// owns creation and editing.
type Tariff struct {
	ID           string // UUID
	Name         string
	DurationDays int
	// Price per currency, minor units. A user whose preferred currency
	// is absent from the map cannot buy this tariff.
	PriceByCurrency map[Currency]int64
	// Squads granted on purchase. Empty means "keep the user's current squads".
	SquadIDs []string
	// 0 = unlimited.
	TrafficLimitBytes int64
}

func (t *Tariff) Price(c Currency) (int64, bool) {
	p, ok := t.PriceByCurrency[c]
	return p, ok
}
