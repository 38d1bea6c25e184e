package entity

import "github.com/shopspring/decimal"

// Obligation is the exact amount a buyer owes in one currency for a sale.
type Obligation struct {
	Currency Currency        `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
}

type Settlement struct {
	ListingId    string          `json:"listingId"`
	Buyer        Address         `json:"buyer"`
	Seller       Address         `json:"seller"`
	Currency     Currency        `json:"currency"`
	Price        decimal.Decimal `json:"price"`
	Fee          decimal.Decimal `json:"fee"`
	FeeBps       uint            `json:"feeBps"`
	FeeRecipient Address         `json:"feeRecipient"`
	Royalties    RoyaltySchedule `json:"royalties"`
	Obligations  []Obligation    `json:"obligations"`
}

func (s Settlement) Owed(currency Currency) decimal.Decimal {
	for _, o := range s.Obligations {
		if o.Currency.Equal(currency) {
			return o.Amount
		}
	}
	return decimal.Zero
}
