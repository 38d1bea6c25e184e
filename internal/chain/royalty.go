package chain

import (
	"fmt"
	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/shopspring/decimal"
	"sync"
)

// RoyaltyExtension stores a fixed royalty schedule per token id.
type RoyaltyExtension struct {
	mu        sync.RWMutex
	schedules map[uint64]entity.RoyaltySchedule
}

func newRoyaltyExtension() *RoyaltyExtension {
	return &RoyaltyExtension{schedules: make(map[uint64]entity.RoyaltySchedule)}
}

func (r *RoyaltyExtension) SetRoyalties(tokenId uint64, schedule entity.RoyaltySchedule) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.schedules[tokenId] = append(entity.RoyaltySchedule{}, schedule...)
}

// RoyaltyInfo returns an empty schedule for tokens without royalties.
func (r *RoyaltyExtension) RoyaltyInfo(tokenId uint64) (entity.RoyaltySchedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append(entity.RoyaltySchedule{}, r.schedules[tokenId]...), nil
}

// RoyaltyShare is a price dependent royalty: max(price*BasisPoints/10000, Minimum).
type RoyaltyShare struct {
	Recipient   entity.Address
	BasisPoints uint
	Minimum     decimal.Decimal
}

// ProvenanceExtension resolves royalties against the sale price.
type ProvenanceExtension struct {
	mu         sync.RWMutex
	shares     map[uint64][]RoyaltyShare
	currencies map[uint64]entity.Currency
}

func newProvenanceExtension() *ProvenanceExtension {
	return &ProvenanceExtension{
		shares:     make(map[uint64][]RoyaltyShare),
		currencies: make(map[uint64]entity.Currency),
	}
}

func (p *ProvenanceExtension) SetRoyaltyShares(tokenId uint64, currency entity.Currency, shares []RoyaltyShare) error {
	for _, share := range shares {
		if share.BasisPoints > entity.BasisPointsDenominator {
			return fmt.Errorf("%w: royalty share of %d bps", ErrInvalidAmount, share.BasisPoints)
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.shares[tokenId] = append([]RoyaltyShare{}, shares...)
	p.currencies[tokenId] = currency

	return nil
}

func (p *ProvenanceExtension) RoyaltyInfoForPrice(tokenId uint64, price decimal.Decimal) (entity.RoyaltySchedule, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	schedule := make(entity.RoyaltySchedule, 0, len(p.shares[tokenId]))
	for _, share := range p.shares[tokenId] {
		amount := entity.BasisPointsOf(price, share.BasisPoints)
		if amount.LessThan(share.Minimum) {
			amount = share.Minimum
		}
		schedule = append(schedule, entity.RoyaltyEntry{
			Recipient: share.Recipient,
			Amount:    amount,
			Currency:  p.currencies[tokenId],
		})
	}

	return schedule, nil
}

// RoyaltyNonFungibleToken is a single-unit asset carrying the royalty extension.
type RoyaltyNonFungibleToken struct {
	*NonFungibleToken
	*RoyaltyExtension
}

func (d *Devnet) DeployNonFungibleWithRoyalties(address entity.Address, name string) (*RoyaltyNonFungibleToken, error) {
	token := &RoyaltyNonFungibleToken{newNonFungibleToken(address, name), newRoyaltyExtension()}
	if err := d.deploy(address, token); err != nil {
		return nil, err
	}
	return token, nil
}

// ProvenanceNonFungibleToken is a single-unit asset with price dependent royalties.
type ProvenanceNonFungibleToken struct {
	*NonFungibleToken
	*ProvenanceExtension
}

func (d *Devnet) DeployProvenanceNonFungible(address entity.Address, name string) (*ProvenanceNonFungibleToken, error) {
	token := &ProvenanceNonFungibleToken{newNonFungibleToken(address, name), newProvenanceExtension()}
	if err := d.deploy(address, token); err != nil {
		return nil, err
	}
	return token, nil
}

// RoyaltyMultiToken is a multi-unit asset carrying the royalty extension.
type RoyaltyMultiToken struct {
	*MultiToken
	*RoyaltyExtension
}

func (d *Devnet) DeployMultiTokenWithRoyalties(address entity.Address) (*RoyaltyMultiToken, error) {
	token := &RoyaltyMultiToken{newMultiToken(d, address), newRoyaltyExtension()}
	if err := d.deploy(address, token); err != nil {
		return nil, err
	}
	return token, nil
}
