package entity

import "time"

type MarketplaceFee struct {
	Owner       Address   `json:"owner"`
	BasisPoints uint      `json:"basisPoints"`
	Recipient   Address   `json:"recipient"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (f MarketplaceFee) Slug() string {
	return "marketplace-fee"
}
