package marketplace

import (
	"context"
	"fmt"
	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
)

// custody moves a listed asset. Every listing is bound to one strategy for its
// lifetime, picked by its asset standard.
type custody interface {
	checkDeliverable(listing entity.Listing) error
	release(ctx context.Context, listing entity.Listing, buyer entity.Address) error
	reclaim(ctx context.Context, listing entity.Listing) error
}

func custodyFor(host Host, service entity.Address, standard entity.AssetStandard, assetContract entity.Address) (custody, error) {
	contract, err := host.Contract(assetContract)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrDeliveryFailure, err)
	}

	switch standard {
	case entity.SingleUnit:
		if asset, ok := contract.(SingleUnitAsset); ok {
			return pullCustody{asset: asset, service: service}, nil
		}
	case entity.MultiUnit:
		if asset, ok := contract.(MultiUnitAsset); ok {
			return escrowCustody{asset: asset, service: service}, nil
		}
	}

	return nil, fmt.Errorf("%w: %s is not a %s asset contract", ErrDeliveryFailure, assetContract, standard)
}

// pullCustody leaves the asset with the seller and pulls it at sale time using
// the approval the seller granted the service.
type pullCustody struct {
	asset   SingleUnitAsset
	service entity.Address
}

func (c pullCustody) checkDeliverable(listing entity.Listing) error {
	owner, err := c.asset.OwnerOf(listing.AssetId)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrDeliveryFailure, err)
	}
	if owner != listing.Seller {
		return fmt.Errorf("%w: seller %s no longer owns %s #%d", ErrDeliveryFailure, listing.Seller, listing.AssetContract, listing.AssetId)
	}
	if !c.asset.IsApprovedOrOwner(c.service, listing.AssetId) {
		return fmt.Errorf("%w: marketplace is not approved for %s #%d", ErrDeliveryFailure, listing.AssetContract, listing.AssetId)
	}
	return nil
}

func (c pullCustody) release(ctx context.Context, listing entity.Listing, buyer entity.Address) error {
	if err := c.asset.TransferFrom(ctx, c.service, listing.Seller, buyer, listing.AssetId); err != nil {
		return fmt.Errorf("%w: %s", ErrDeliveryFailure, err)
	}
	return nil
}

func (c pullCustody) reclaim(ctx context.Context, listing entity.Listing) error {
	return nil
}

// escrowCustody holds deposited units at the service address until sale or cancellation.
type escrowCustody struct {
	asset   MultiUnitAsset
	service entity.Address
}

func (c escrowCustody) checkDeliverable(listing entity.Listing) error {
	if listing.Escrowed < listing.Quantity {
		return fmt.Errorf("%w: %d of %d units escrowed for listing %s", ErrDeliveryFailure, listing.Escrowed, listing.Quantity, listing.Id)
	}
	if held := c.asset.BalanceOf(c.service, listing.AssetId); held < listing.Quantity {
		return fmt.Errorf("%w: marketplace holds %d of %s #%d, needs %d", ErrDeliveryFailure, held, listing.AssetContract, listing.AssetId, listing.Quantity)
	}
	return nil
}

func (c escrowCustody) release(ctx context.Context, listing entity.Listing, buyer entity.Address) error {
	if err := c.asset.SafeTransferFrom(ctx, c.service, c.service, buyer, listing.AssetId, listing.Quantity, nil); err != nil {
		return fmt.Errorf("%w: %s", ErrDeliveryFailure, err)
	}
	return nil
}

func (c escrowCustody) reclaim(ctx context.Context, listing entity.Listing) error {
	quantity := listing.Escrowed
	if quantity > listing.Quantity {
		quantity = listing.Quantity
	}
	if quantity == 0 {
		return nil
	}

	if err := c.asset.SafeTransferFrom(ctx, c.service, c.service, listing.Seller, listing.AssetId, quantity, nil); err != nil {
		return fmt.Errorf("%w: returning escrow to %s: %s", ErrDeliveryFailure, listing.Seller, err)
	}
	return nil
}
