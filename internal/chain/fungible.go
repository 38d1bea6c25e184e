package chain

import (
	"context"
	"fmt"
	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/shopspring/decimal"
	"sync"
)

type allowanceKey struct {
	owner   entity.Address
	spender entity.Address
}

// FungibleToken is a ZRC2 / ERC20 shaped currency contract.
type FungibleToken struct {
	mu         sync.RWMutex
	address    entity.Address
	symbol     string
	balances   map[entity.Address]decimal.Decimal
	allowances map[allowanceKey]decimal.Decimal
}

func (d *Devnet) DeployFungible(address entity.Address, symbol string) (*FungibleToken, error) {
	token := &FungibleToken{
		address:    address,
		symbol:     symbol,
		balances:   make(map[entity.Address]decimal.Decimal),
		allowances: make(map[allowanceKey]decimal.Decimal),
	}
	if err := d.deploy(address, token); err != nil {
		return nil, err
	}
	return token, nil
}

func (t *FungibleToken) Address() entity.Address {
	return t.address
}

func (t *FungibleToken) Symbol() string {
	return t.symbol
}

func (t *FungibleToken) Mint(to entity.Address, amount decimal.Decimal) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.balances[to] = t.balances[to].Add(amount)
}

func (t *FungibleToken) BalanceOf(holder entity.Address) decimal.Decimal {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.balances[holder]
}

func (t *FungibleToken) Approve(owner, spender entity.Address, amount decimal.Decimal) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.allowances[allowanceKey{owner, spender}] = amount
}

func (t *FungibleToken) Allowance(owner, spender entity.Address) decimal.Decimal {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.allowances[allowanceKey{owner, spender}]
}

func (t *FungibleToken) Transfer(ctx context.Context, from, to entity.Address, amount decimal.Decimal) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.move(from, to, amount); err != nil {
		return err
	}
	record(ctx, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		t.unmove(from, to, amount)
	})

	return nil
}

func (t *FungibleToken) TransferFrom(ctx context.Context, spender, from, to entity.Address, amount decimal.Decimal) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := allowanceKey{from, spender}
	if t.allowances[key].LessThan(amount) {
		return fmt.Errorf("%w: %s allows %s %s of %s, needs %s", ErrInsufficientAllowance, from, spender, t.allowances[key], t.symbol, amount)
	}
	if err := t.move(from, to, amount); err != nil {
		return err
	}
	t.allowances[key] = t.allowances[key].Sub(amount)

	record(ctx, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		t.unmove(from, to, amount)
		t.allowances[key] = t.allowances[key].Add(amount)
	})

	return nil
}

func (t *FungibleToken) move(from, to entity.Address, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrInvalidAmount
	}
	if t.balances[from].LessThan(amount) {
		return fmt.Errorf("%w: %s holds %s %s, needs %s", ErrInsufficientBalance, from, t.balances[from], t.symbol, amount)
	}
	t.balances[from] = t.balances[from].Sub(amount)
	t.balances[to] = t.balances[to].Add(amount)

	return nil
}

func (t *FungibleToken) unmove(from, to entity.Address, amount decimal.Decimal) {
	t.balances[to] = t.balances[to].Sub(amount)
	t.balances[from] = t.balances[from].Add(amount)
}
