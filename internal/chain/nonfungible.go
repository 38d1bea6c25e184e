package chain

import (
	"context"
	"fmt"
	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"go.uber.org/zap"
	"sync"
)

// NonFungibleToken is a single-unit-per-id asset contract (ZRC6 / ERC721 shape).
type NonFungibleToken struct {
	mu        sync.RWMutex
	address   entity.Address
	name      string
	owners    map[uint64]entity.Address
	approved  map[uint64]entity.Address
	operators map[entity.Address]map[entity.Address]bool
}

func newNonFungibleToken(address entity.Address, name string) *NonFungibleToken {
	return &NonFungibleToken{
		address:   address,
		name:      name,
		owners:    make(map[uint64]entity.Address),
		approved:  make(map[uint64]entity.Address),
		operators: make(map[entity.Address]map[entity.Address]bool),
	}
}

func (d *Devnet) DeployNonFungible(address entity.Address, name string) (*NonFungibleToken, error) {
	token := newNonFungibleToken(address, name)
	if err := d.deploy(address, token); err != nil {
		return nil, err
	}
	return token, nil
}

func (t *NonFungibleToken) Address() entity.Address {
	return t.address
}

func (t *NonFungibleToken) Mint(to entity.Address, tokenId uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.owners[tokenId]; exists {
		return fmt.Errorf("%w: %s #%d", ErrTokenExists, t.address, tokenId)
	}
	t.owners[tokenId] = to

	return nil
}

func (t *NonFungibleToken) OwnerOf(tokenId uint64) (entity.Address, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	owner, ok := t.owners[tokenId]
	if !ok {
		return "", fmt.Errorf("%w: %s #%d", ErrTokenNotFound, t.address, tokenId)
	}
	return owner, nil
}

func (t *NonFungibleToken) Approve(caller, spender entity.Address, tokenId uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	owner, ok := t.owners[tokenId]
	if !ok {
		return fmt.Errorf("%w: %s #%d", ErrTokenNotFound, t.address, tokenId)
	}
	if caller != owner && !t.operators[owner][caller] {
		return fmt.Errorf("%w: %s cannot approve %s #%d", ErrNotAuthorized, caller, t.address, tokenId)
	}
	t.approved[tokenId] = spender

	return nil
}

// Revoke clears the single-token approval.
func (t *NonFungibleToken) Revoke(caller entity.Address, tokenId uint64) error {
	return t.Approve(caller, "", tokenId)
}

func (t *NonFungibleToken) SetApprovalForAll(owner, operator entity.Address, approved bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.operators[owner]; !ok {
		t.operators[owner] = make(map[entity.Address]bool)
	}
	t.operators[owner][operator] = approved
}

func (t *NonFungibleToken) IsApprovedOrOwner(spender entity.Address, tokenId uint64) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.isApprovedOrOwner(spender, tokenId)
}

func (t *NonFungibleToken) isApprovedOrOwner(spender entity.Address, tokenId uint64) bool {
	owner, ok := t.owners[tokenId]
	if !ok || spender == "" {
		return false
	}
	return spender == owner || t.approved[tokenId] == spender || t.operators[owner][spender]
}

func (t *NonFungibleToken) TransferFrom(ctx context.Context, caller, from, to entity.Address, tokenId uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	owner, ok := t.owners[tokenId]
	if !ok {
		return fmt.Errorf("%w: %s #%d", ErrTokenNotFound, t.address, tokenId)
	}
	if owner != from {
		return fmt.Errorf("%w: %s does not own %s #%d", ErrNotAuthorized, from, t.address, tokenId)
	}
	if !t.isApprovedOrOwner(caller, tokenId) {
		return fmt.Errorf("%w: %s is not approved for %s #%d", ErrNotAuthorized, caller, t.address, tokenId)
	}

	approved, wasApproved := t.approved[tokenId]
	t.owners[tokenId] = to
	delete(t.approved, tokenId)

	record(ctx, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if t.owners[tokenId] != to {
			return
		}
		t.owners[tokenId] = from
		if wasApproved {
			t.approved[tokenId] = approved
		}
	})

	zap.L().With(
		zap.String("contract", t.address.String()),
		zap.Uint64("tokenId", tokenId),
		zap.String("from", from.String()),
		zap.String("to", to.String()),
	).Debug("Devnet: Single unit transfer")

	return nil
}
