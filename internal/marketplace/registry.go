package marketplace

import (
	"errors"
	"fmt"
	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-marketplace/internal/repository"
	"github.com/shopspring/decimal"
	"strings"
	"time"
)

type CreateListing struct {
	Id            string               `json:"id"`
	AssetStandard entity.AssetStandard `json:"assetStandard"`
	AssetContract entity.Address       `json:"assetContract"`
	AssetId       uint64               `json:"assetId"`
	Quantity      uint64               `json:"quantity"`
	Price         decimal.Decimal      `json:"price"`
	Seller        entity.Address       `json:"seller"`
	Currency      entity.Currency      `json:"currency"`
}

type listingRegistry struct {
	repo           repository.ListingRepository
	allowZeroPrice bool
}

func (r listingRegistry) get(id string) (entity.Listing, error) {
	listing, err := r.repo.GetListing(id)
	if err != nil {
		if errors.Is(err, repository.ErrListingNotFound) {
			return listing, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return listing, err
	}
	return listing, nil
}

func (r listingRegistry) active(id string) (entity.Listing, error) {
	listing, err := r.get(id)
	if err != nil {
		return listing, err
	}
	if !listing.IsActive() {
		return listing, fmt.Errorf("%w: listing %s is %s", ErrInvalidState, id, listing.Status)
	}
	return listing, nil
}

// validate checks the request in isolation and returns the listing it describes.
func (r listingRegistry) validate(req CreateListing) (entity.Listing, error) {
	if strings.TrimSpace(req.Id) == "" {
		return entity.Listing{}, fmt.Errorf("%w: id is required", ErrInvalidListing)
	}
	if !req.AssetStandard.Valid() {
		return entity.Listing{}, fmt.Errorf("%w: unknown asset standard %q", ErrInvalidListing, req.AssetStandard)
	}
	if req.Quantity < 1 {
		return entity.Listing{}, fmt.Errorf("%w: quantity must be at least 1", ErrInvalidListing)
	}
	if req.AssetStandard == entity.SingleUnit && req.Quantity != 1 {
		return entity.Listing{}, fmt.Errorf("%w: single unit listings have a quantity of 1, got %d", ErrInvalidListing, req.Quantity)
	}
	if !entity.IsWholeAmount(req.Price) {
		return entity.Listing{}, fmt.Errorf("%w: price %s is not a whole non-negative amount", ErrInvalidListing, req.Price)
	}
	if req.Price.IsZero() && !r.allowZeroPrice {
		return entity.Listing{}, fmt.Errorf("%w: zero price listings are disabled", ErrInvalidListing)
	}
	if req.Seller.IsZero() {
		return entity.Listing{}, fmt.Errorf("%w: seller is required", ErrInvalidListing)
	}
	if req.AssetContract.IsZero() {
		return entity.Listing{}, fmt.Errorf("%w: asset contract is required", ErrInvalidListing)
	}

	now := time.Now()
	return entity.Listing{
		Id:            req.Id,
		AssetStandard: req.AssetStandard,
		AssetContract: req.AssetContract,
		AssetId:       req.AssetId,
		Quantity:      req.Quantity,
		Price:         req.Price,
		Seller:        req.Seller,
		Currency:      entity.TokenCurrency(req.Currency.Address()),
		Status:        entity.ListingActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// checkAvailable fails when id denotes a listing that is Active or Sold.
func (r listingRegistry) checkAvailable(id string) error {
	existing, err := r.get(id)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.Status != entity.ListingCancelled {
		return fmt.Errorf("%w: listing %s already exists and is %s", ErrInvalidState, id, existing.Status)
	}
	return nil
}

func (r listingRegistry) save(listing entity.Listing) error {
	listing.UpdatedAt = time.Now()
	return r.repo.SaveListing(listing)
}

func (r listingRegistry) markSold(listing entity.Listing, buyer entity.Address) (entity.Listing, error) {
	listing.Status = entity.ListingSold
	listing.Buyer = buyer
	listing.Escrowed = 0
	listing.UpdatedAt = time.Now()

	return listing, r.repo.SaveListing(listing)
}

func (r listingRegistry) markCancelled(listing entity.Listing) (entity.Listing, error) {
	listing.Status = entity.ListingCancelled
	listing.Escrowed = 0
	listing.UpdatedAt = time.Now()

	return listing, r.repo.SaveListing(listing)
}
