package marketplace

import (
	"context"
	"fmt"
	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-marketplace/internal/event"
	"github.com/ZilDuck/zilliqa-marketplace/internal/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Options struct {
	Address        entity.Address
	Owner          entity.Address
	FeeBasisPoints uint
	FeeRecipient   entity.Address
	AllowZeroPrice bool
}

// Marketplace settles listings of single and multi unit assets against native
// or token payment. Each mutating operation runs as one host transaction and
// only one runs at a time: a second call made while one is executing fails
// with ErrReentrantCall. Reads never block.
type Marketplace struct {
	guard     guard
	host      Host
	address   entity.Address
	listings  listingRegistry
	fees      feePolicy
	royalties royaltyResolver
	events    EventEmitter
}

func New(host Host, listings repository.ListingRepository, fees repository.FeePolicyRepository, events EventEmitter, opts Options) (*Marketplace, error) {
	if opts.Address.IsZero() {
		return nil, fmt.Errorf("%w: marketplace address is required", ErrPolicy)
	}

	m := &Marketplace{
		host:      host,
		address:   opts.Address,
		listings:  listingRegistry{repo: listings, allowZeroPrice: opts.AllowZeroPrice},
		fees:      feePolicy{repo: fees},
		royalties: royaltyResolver{host: host},
		events:    events,
	}

	fee, err := m.fees.initialise(opts.Owner, opts.FeeBasisPoints, opts.FeeRecipient)
	if err != nil {
		return nil, err
	}

	zap.L().With(
		zap.String("address", m.address.String()),
		zap.String("owner", fee.Owner.String()),
		zap.Uint("feeBps", fee.BasisPoints),
		zap.Bool("allowZeroPrice", opts.AllowZeroPrice),
	).Info("Marketplace: Started")

	return m, nil
}

func (m *Marketplace) Address() entity.Address {
	return m.address
}

func (m *Marketplace) CreateListing(ctx context.Context, caller entity.Address, req CreateListing) (entity.Listing, error) {
	exit, err := m.guard.enter("createListing")
	if err != nil {
		return entity.Listing{}, err
	}

	var listing entity.Listing
	err = m.host.Execute(ctx, func(ctx context.Context) error {
		if listing, err = m.listings.validate(req); err != nil {
			return err
		}

		fee, err := m.fees.current()
		if err != nil {
			return err
		}
		if caller != listing.Seller && caller != fee.Owner {
			return fmt.Errorf("%w: %s cannot list on behalf of %s", ErrUnauthorized, caller, listing.Seller)
		}

		if err := m.listings.checkAvailable(listing.Id); err != nil {
			return err
		}
		if err := m.checkAsset(listing); err != nil {
			return err
		}
		if err := m.checkCurrency(listing.Currency); err != nil {
			return err
		}

		return m.listings.save(listing)
	})
	exit()
	if err != nil {
		zap.L().With(zap.Error(err), zap.String("listingId", req.Id), zap.String("caller", caller.String())).Warn("Marketplace: Create listing failed")
		return entity.Listing{}, err
	}

	zap.L().With(
		zap.String("listingId", listing.Id),
		zap.String("standard", string(listing.AssetStandard)),
		zap.String("contract", listing.AssetContract.String()),
		zap.Uint64("assetId", listing.AssetId),
		zap.Uint64("quantity", listing.Quantity),
		zap.String("price", listing.Price.String()),
		zap.String("currency", listing.Currency.String()),
		zap.String("seller", listing.Seller.String()),
	).Info("Marketplace: Listing created")

	m.emit(entity.NewListingEvent(entity.ListingCreatedEvent, caller, listing))

	return listing, nil
}

func (m *Marketplace) checkAsset(listing entity.Listing) error {
	contract, err := m.host.Contract(listing.AssetContract)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidListing, err)
	}

	switch listing.AssetStandard {
	case entity.SingleUnit:
		asset, ok := contract.(SingleUnitAsset)
		if !ok {
			return fmt.Errorf("%w: %s is not a single unit asset contract", ErrInvalidListing, listing.AssetContract)
		}
		owner, err := asset.OwnerOf(listing.AssetId)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidListing, err)
		}
		if owner != listing.Seller {
			return fmt.Errorf("%w: %s does not own %s #%d", ErrInvalidListing, listing.Seller, listing.AssetContract, listing.AssetId)
		}
	case entity.MultiUnit:
		asset, ok := contract.(MultiUnitAsset)
		if !ok {
			return fmt.Errorf("%w: %s is not a multi unit asset contract", ErrInvalidListing, listing.AssetContract)
		}
		if held := asset.BalanceOf(listing.Seller, listing.AssetId); held < listing.Quantity {
			return fmt.Errorf("%w: %s holds %d of %s #%d, lists %d", ErrInvalidListing, listing.Seller, held, listing.AssetContract, listing.AssetId, listing.Quantity)
		}
	}

	return nil
}

func (m *Marketplace) checkCurrency(currency entity.Currency) error {
	if currency.IsNative() {
		return nil
	}

	contract, err := m.host.Contract(currency.Token)
	if err != nil {
		return fmt.Errorf("%w: currency %s", ErrInvalidListing, err)
	}
	if _, ok := contract.(FungibleToken); !ok {
		return fmt.Errorf("%w: currency %s is not a fungible token", ErrInvalidListing, currency.Token)
	}
	return nil
}

// BuyAssetFromListing sells listing id to caller. nativeValue is the amount of
// native currency attached to the purchase and must match what is owed in it.
func (m *Marketplace) BuyAssetFromListing(ctx context.Context, caller entity.Address, id string, payCurrency entity.Currency, nativeValue decimal.Decimal) (*entity.Settlement, error) {
	exit, err := m.guard.enter("buyAssetFromListing")
	if err != nil {
		return nil, err
	}

	var (
		sold       entity.Listing
		settlement *entity.Settlement
	)
	err = m.host.Execute(ctx, func(ctx context.Context) error {
		sold, settlement, err = m.settle(ctx, caller, id, payCurrency, nativeValue)
		return err
	})
	exit()
	if err != nil {
		zap.L().With(zap.Error(err), zap.String("listingId", id), zap.String("buyer", caller.String())).Warn("Marketplace: Purchase failed")
		return nil, err
	}

	zap.L().With(
		zap.String("listingId", sold.Id),
		zap.String("buyer", caller.String()),
		zap.String("seller", sold.Seller.String()),
		zap.String("price", sold.Price.String()),
		zap.String("fee", settlement.Fee.String()),
		zap.String("currency", sold.Currency.String()),
	).Info("Marketplace: Listing sold")

	e := entity.NewListingEvent(entity.ListingSoldEvent, caller, sold)
	e.Settlement = settlement
	m.emit(e)

	return settlement, nil
}

func (m *Marketplace) CancelListing(ctx context.Context, caller entity.Address, id string) (entity.Listing, error) {
	exit, err := m.guard.enter("cancelListing")
	if err != nil {
		return entity.Listing{}, err
	}

	var cancelled entity.Listing
	err = m.host.Execute(ctx, func(ctx context.Context) error {
		listing, err := m.listings.active(id)
		if err != nil {
			return err
		}

		fee, err := m.fees.current()
		if err != nil {
			return err
		}
		if caller != listing.Seller && caller != fee.Owner {
			return fmt.Errorf("%w: %s cannot cancel listing %s", ErrUnauthorized, caller, id)
		}

		assetCustody, err := custodyFor(m.host, m.address, listing.AssetStandard, listing.AssetContract)
		if err != nil {
			return err
		}
		if err := assetCustody.reclaim(ctx, listing); err != nil {
			return err
		}

		cancelled, err = m.listings.markCancelled(listing)
		return err
	})
	exit()
	if err != nil {
		zap.L().With(zap.Error(err), zap.String("listingId", id), zap.String("caller", caller.String())).Warn("Marketplace: Cancel failed")
		return entity.Listing{}, err
	}

	zap.L().With(zap.String("listingId", id), zap.String("caller", caller.String())).Info("Marketplace: Listing cancelled")

	m.emit(entity.NewListingEvent(entity.ListingCancelledEvent, caller, cancelled))

	return cancelled, nil
}

func (m *Marketplace) GetListing(id string) (entity.Listing, error) {
	return m.listings.get(id)
}

func (m *Marketplace) GetListings(status entity.ListingStatus, size int) ([]entity.Listing, error) {
	return m.listings.repo.GetListingsByStatus(status, size)
}

func (m *Marketplace) SetMarketplaceFee(ctx context.Context, caller entity.Address, basisPoints uint) (entity.MarketplaceFee, error) {
	exit, err := m.guard.enter("setMarketplaceFee")
	if err != nil {
		return entity.MarketplaceFee{}, err
	}
	defer exit()

	fee, err := m.fees.setBasisPoints(caller, basisPoints)
	if err != nil {
		zap.L().With(zap.Error(err), zap.String("caller", caller.String()), zap.Uint("feeBps", basisPoints)).Warn("Marketplace: Set fee failed")
		return entity.MarketplaceFee{}, err
	}

	zap.L().With(zap.Uint("feeBps", fee.BasisPoints)).Info("Marketplace: Fee updated")

	return fee, nil
}

func (m *Marketplace) SetFeeRecipient(ctx context.Context, caller entity.Address, recipient entity.Address) (entity.MarketplaceFee, error) {
	exit, err := m.guard.enter("setFeeRecipient")
	if err != nil {
		return entity.MarketplaceFee{}, err
	}
	defer exit()

	fee, err := m.fees.setRecipient(caller, recipient)
	if err != nil {
		zap.L().With(zap.Error(err), zap.String("caller", caller.String()), zap.String("recipient", recipient.String())).Warn("Marketplace: Set fee recipient failed")
		return entity.MarketplaceFee{}, err
	}

	zap.L().With(zap.String("recipient", fee.Recipient.String())).Info("Marketplace: Fee recipient updated")

	return fee, nil
}

func (m *Marketplace) GetMarketplaceFee() (entity.MarketplaceFee, error) {
	return m.fees.current()
}

// OnNativeReceived accepts every native payment; buyers pay through BuyAssetFromListing.
func (m *Marketplace) OnNativeReceived(ctx context.Context, from entity.Address, amount decimal.Decimal) error {
	return nil
}

// OnMultiUnitReceived books a deposit against the depositor's active listings
// of the asset, oldest first, each up to its quantity. Deposits that cannot be
// booked in full are refused, which reverts the transfer.
func (m *Marketplace) OnMultiUnitReceived(ctx context.Context, contract, operator, from entity.Address, assetId, quantity uint64, data []byte) error {
	exit, err := m.guard.enter("deposit")
	if err != nil {
		return err
	}
	defer exit()

	listings, err := m.listings.repo.GetActiveListingsForAsset(from, contract, assetId)
	if err != nil {
		return err
	}

	remaining := quantity
	booked := make([]entity.Listing, 0)
	originals := make([]entity.Listing, 0)
	for _, listing := range listings {
		if remaining == 0 {
			break
		}
		if listing.AssetStandard != entity.MultiUnit || listing.Escrowed >= listing.Quantity {
			continue
		}
		originals = append(originals, listing)
		take := listing.Quantity - listing.Escrowed
		if take > remaining {
			take = remaining
		}
		listing.Escrowed += take
		remaining -= take
		booked = append(booked, listing)
	}

	if remaining != 0 {
		zap.L().With(
			zap.String("contract", contract.String()),
			zap.Uint64("assetId", assetId),
			zap.String("from", from.String()),
			zap.Uint64("quantity", quantity),
			zap.Uint64("unmatched", remaining),
		).Warn("Marketplace: Deposit refused")
		return fmt.Errorf("%w: %d of %d units of %s #%d from %s match no active listing", ErrInvalidState, remaining, quantity, contract, assetId, from)
	}

	for i, listing := range booked {
		if err := m.listings.save(listing); err != nil {
			m.restore(originals[:i])
			zap.L().With(zap.Error(err), zap.String("listingId", listing.Id)).Error("Marketplace: Deposit booking failed")
			return err
		}
		zap.L().With(
			zap.String("listingId", listing.Id),
			zap.Uint64("escrowed", listing.Escrowed),
			zap.Uint64("quantity", listing.Quantity),
		).Info("Marketplace: Deposit booked")
	}

	return nil
}

// restore writes back listings whose escrow was booked by a deposit that is
// being refused.
func (m *Marketplace) restore(listings []entity.Listing) {
	for _, listing := range listings {
		if err := m.listings.repo.SaveListing(listing); err != nil {
			zap.L().With(zap.Error(err), zap.String("listingId", listing.Id)).Error("Marketplace: Failed to restore listing")
		}
	}
}

func (m *Marketplace) emit(e entity.ListingEvent) {
	if m.events == nil {
		return
	}
	m.events.EmitEvent(event.Type(e.Type), e)
}
