package marketplace

import (
	"context"
	"fmt"
	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// obligationsFor sums what the buyer owes per currency, price currency first.
func obligationsFor(listing entity.Listing, fee decimal.Decimal, royalties entity.RoyaltySchedule) []entity.Obligation {
	obligations := []entity.Obligation{{
		Currency: listing.Currency,
		Amount:   listing.Price.Add(fee).Add(royalties.Total(listing.Currency)),
	}}

	for _, currency := range royalties.Currencies() {
		if currency.Equal(listing.Currency) {
			continue
		}
		obligations = append(obligations, entity.Obligation{Currency: currency, Amount: royalties.Total(currency)})
	}

	return obligations
}

func checkNativeValue(settlement entity.Settlement, nativeValue decimal.Decimal) error {
	owed := settlement.Owed(entity.NativeCurrency())
	switch {
	case nativeValue.IsNegative():
		return fmt.Errorf("%w: negative value %s", ErrIncorrectValue, nativeValue)
	case nativeValue.LessThan(owed):
		return fmt.Errorf("%w: sent %s native, owes %s", ErrInsufficientFunds, nativeValue, owed)
	case nativeValue.GreaterThan(owed):
		return fmt.Errorf("%w: sent %s native, owes %s", ErrIncorrectValue, nativeValue, owed)
	}
	return nil
}

// settle runs the sale of listing id to buyer inside the host transaction. All
// checks happen before the first transfer; the listing is flipped last.
func (m *Marketplace) settle(ctx context.Context, buyer entity.Address, id string, payCurrency entity.Currency, nativeValue decimal.Decimal) (entity.Listing, *entity.Settlement, error) {
	listing, err := m.listings.active(id)
	if err != nil {
		return listing, nil, err
	}
	if !listing.Currency.Equal(payCurrency) {
		return listing, nil, fmt.Errorf("%w: listing %s is priced in %s, paid in %s", ErrCurrencyMismatch, id, listing.Currency, payCurrency)
	}

	fee, err := m.fees.current()
	if err != nil {
		return listing, nil, err
	}
	royalties, err := m.royalties.resolve(listing.AssetContract, listing.AssetId, listing.Price)
	if err != nil {
		return listing, nil, err
	}

	settlement := &entity.Settlement{
		ListingId:    listing.Id,
		Buyer:        buyer,
		Seller:       listing.Seller,
		Currency:     listing.Currency,
		Price:        listing.Price,
		Fee:          feeFor(listing.Price, fee),
		FeeBps:       fee.BasisPoints,
		FeeRecipient: fee.Recipient,
		Royalties:    royalties,
	}
	settlement.Obligations = obligationsFor(listing, settlement.Fee, royalties)

	assetCustody, err := custodyFor(m.host, m.address, listing.AssetStandard, listing.AssetContract)
	if err != nil {
		return listing, nil, err
	}
	if err := assetCustody.checkDeliverable(listing); err != nil {
		return listing, nil, err
	}

	rails := make(map[entity.Address]rail, len(settlement.Obligations))
	for idx, obligation := range settlement.Obligations {
		r, err := railFor(m.host, m.address, obligation.Currency)
		if err != nil {
			if idx == 0 {
				return listing, nil, fmt.Errorf("%w: %s", ErrCurrencyMismatch, err)
			}
			return listing, nil, fmt.Errorf("%w: royalty currency: %s", ErrPolicy, err)
		}
		rails[obligation.Currency.Address()] = r
	}

	if err := checkNativeValue(*settlement, nativeValue); err != nil {
		return listing, nil, err
	}
	for _, obligation := range settlement.Obligations {
		if obligation.Amount.IsZero() {
			continue
		}
		if err := rails[obligation.Currency.Address()].verify(buyer, obligation.Amount); err != nil {
			return listing, nil, err
		}
	}

	if listing, err = m.listings.active(id); err != nil {
		return listing, nil, err
	}

	for _, obligation := range settlement.Obligations {
		if obligation.Amount.IsZero() {
			continue
		}
		if err := rails[obligation.Currency.Address()].collect(ctx, buyer, obligation.Amount); err != nil {
			return listing, nil, fmt.Errorf("%w: collecting %s: %w", ErrInsufficientFunds, obligation.Currency, err)
		}
	}

	priceRail := rails[listing.Currency.Address()]
	if err := pay(ctx, priceRail, listing.Seller, listing.Price); err != nil {
		return listing, nil, err
	}
	if err := pay(ctx, priceRail, fee.Recipient, settlement.Fee); err != nil {
		return listing, nil, err
	}
	for _, royalty := range royalties {
		if err := pay(ctx, rails[royalty.Currency.Address()], royalty.Recipient, royalty.Amount); err != nil {
			return listing, nil, err
		}
	}

	if err := assetCustody.release(ctx, listing, buyer); err != nil {
		return listing, nil, err
	}

	sold, err := m.listings.markSold(listing, buyer)
	if err != nil {
		return listing, nil, err
	}

	zap.L().With(
		zap.String("listingId", sold.Id),
		zap.String("buyer", buyer.String()),
		zap.String("currency", sold.Currency.String()),
		zap.String("price", sold.Price.String()),
		zap.String("fee", settlement.Fee.String()),
		zap.Int("royalties", len(royalties)),
	).Debug("Settlement: Complete")

	return sold, settlement, nil
}

func pay(ctx context.Context, r rail, to entity.Address, amount decimal.Decimal) error {
	if amount.IsZero() {
		return nil
	}
	if err := r.pay(ctx, to, amount); err != nil {
		return fmt.Errorf("paying %s to %s: %w", amount, to, err)
	}
	return nil
}
