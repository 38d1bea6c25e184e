package entity

import "github.com/shopspring/decimal"

type RoyaltyEntry struct {
	Recipient Address         `json:"recipient"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  Currency        `json:"currency"`
}

type RoyaltySchedule []RoyaltyEntry

func (s RoyaltySchedule) Total(currency Currency) decimal.Decimal {
	total := decimal.Zero
	for _, entry := range s {
		if entry.Currency.Equal(currency) {
			total = total.Add(entry.Amount)
		}
	}
	return total
}

// Currencies returns the distinct currencies in order of first appearance.
func (s RoyaltySchedule) Currencies() []Currency {
	seen := make(map[Address]bool)
	currencies := make([]Currency, 0)
	for _, entry := range s {
		key := entry.Currency.Address()
		if seen[key] {
			continue
		}
		seen[key] = true
		currencies = append(currencies, TokenCurrency(key))
	}
	return currencies
}
