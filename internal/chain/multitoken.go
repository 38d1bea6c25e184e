package chain

import (
	"context"
	"fmt"
	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"go.uber.org/zap"
	"sync"
)

type balanceKey struct {
	holder  entity.Address
	tokenId uint64
}

// MultiToken is a quantity-bearing asset contract (ERC1155 shape).
type MultiToken struct {
	mu        sync.RWMutex
	devnet    *Devnet
	address   entity.Address
	balances  map[balanceKey]uint64
	operators map[entity.Address]map[entity.Address]bool
}

func (d *Devnet) DeployMultiToken(address entity.Address) (*MultiToken, error) {
	token := newMultiToken(d, address)
	if err := d.deploy(address, token); err != nil {
		return nil, err
	}
	return token, nil
}

func newMultiToken(d *Devnet, address entity.Address) *MultiToken {
	return &MultiToken{
		devnet:    d,
		address:   address,
		balances:  make(map[balanceKey]uint64),
		operators: make(map[entity.Address]map[entity.Address]bool),
	}
}

func (t *MultiToken) Address() entity.Address {
	return t.address
}

func (t *MultiToken) Mint(to entity.Address, tokenId, quantity uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.balances[balanceKey{to, tokenId}] += quantity
}

func (t *MultiToken) BalanceOf(holder entity.Address, tokenId uint64) uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.balances[balanceKey{holder, tokenId}]
}

func (t *MultiToken) SetApprovalForAll(owner, operator entity.Address, approved bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.operators[owner]; !ok {
		t.operators[owner] = make(map[entity.Address]bool)
	}
	t.operators[owner][operator] = approved
}

// SafeTransferFrom moves quantity units and notifies a registered receiver at
// the destination. A receiver error reverts the move.
func (t *MultiToken) SafeTransferFrom(ctx context.Context, caller, from, to entity.Address, tokenId, quantity uint64, data []byte) error {
	if quantity == 0 {
		return fmt.Errorf("%w: zero quantity", ErrInvalidAmount)
	}

	t.mu.Lock()
	if caller != from && !t.operators[from][caller] {
		t.mu.Unlock()
		return fmt.Errorf("%w: %s is not an operator for %s", ErrNotAuthorized, caller, from)
	}
	fromKey, toKey := balanceKey{from, tokenId}, balanceKey{to, tokenId}
	if t.balances[fromKey] < quantity {
		held := t.balances[fromKey]
		t.mu.Unlock()
		return fmt.Errorf("%w: %s holds %d of %s #%d, needs %d", ErrInsufficientBalance, from, held, t.address, tokenId, quantity)
	}
	t.balances[fromKey] -= quantity
	t.balances[toKey] += quantity
	t.mu.Unlock()

	undo := func() {
		t.mu.Lock()
		t.balances[toKey] -= quantity
		t.balances[fromKey] += quantity
		t.mu.Unlock()
	}

	if receiver := t.devnet.receiver(to); receiver != nil {
		if err := receiver.OnMultiUnitReceived(ctx, t.address, caller, from, tokenId, quantity, data); err != nil {
			undo()
			return fmt.Errorf("multi unit transfer rejected by %s: %w", to, err)
		}
	}
	record(ctx, undo)

	zap.L().With(
		zap.String("contract", t.address.String()),
		zap.Uint64("tokenId", tokenId),
		zap.Uint64("quantity", quantity),
		zap.String("from", from.String()),
		zap.String("to", to.String()),
	).Debug("Devnet: Multi unit transfer")

	return nil
}
