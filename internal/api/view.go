package api

import (
	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-marketplace/pkg/market"
)

func ListingView(l entity.Listing) market.Listing {
	return market.Listing{
		Id:             l.Id,
		Slug:           l.DisplaySlug(),
		AssetStandard:  string(l.AssetStandard),
		Contract:       l.AssetContract.String(),
		ContractBech32: l.AssetContract.Bech32(),
		AssetId:        l.AssetId,
		Quantity:       l.Quantity,
		Escrowed:       l.Escrowed,
		Price:          l.Price.String(),
		Currency:       l.Currency.String(),
		Status:         l.Status.String(),
		Seller:         l.Seller.String(),
		SellerBech32:   l.Seller.Bech32(),
		Buyer:          l.Buyer.String(),
		BuyerBech32:    l.Buyer.Bech32(),
	}
}

func SettlementView(s entity.Settlement) market.Settlement {
	view := market.Settlement{
		ListingId:    s.ListingId,
		Buyer:        s.Buyer.String(),
		Seller:       s.Seller.String(),
		Currency:     s.Currency.String(),
		Price:        s.Price.String(),
		Fee:          s.Fee.String(),
		FeeBps:       s.FeeBps,
		FeeRecipient: s.FeeRecipient.String(),
		Royalties:    make([]market.Royalty, 0, len(s.Royalties)),
		Obligations:  make([]market.Obligation, 0, len(s.Obligations)),
	}
	for _, r := range s.Royalties {
		view.Royalties = append(view.Royalties, market.Royalty{
			Recipient: r.Recipient.String(),
			Amount:    r.Amount.String(),
			Currency:  r.Currency.String(),
		})
	}
	for _, o := range s.Obligations {
		view.Obligations = append(view.Obligations, market.Obligation{
			Currency: o.Currency.String(),
			Amount:   o.Amount.String(),
		})
	}

	return view
}

func FeeView(f entity.MarketplaceFee) market.Fee {
	return market.Fee{
		Owner:       f.Owner.String(),
		BasisPoints: f.BasisPoints,
		Recipient:   f.Recipient.String(),
	}
}
