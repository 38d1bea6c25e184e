package chain

import (
	"context"
	"errors"
	"fmt"
	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"sync"
)

var (
	ErrContractNotFound      = errors.New("contract not found")
	ErrContractExists        = errors.New("contract already deployed")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrNotAuthorized         = errors.New("not authorized")
	ErrTokenNotFound         = errors.New("token not found")
	ErrTokenExists           = errors.New("token already minted")
	ErrInvalidAmount         = errors.New("invalid amount")
)

// Devnet is an in-process ledger that hosts native balances and the asset and
// currency contracts the marketplace settles against. Execute gives callers the
// all-or-nothing transaction semantics of a real chain.
type Devnet struct {
	mu        sync.RWMutex
	native    map[entity.Address]decimal.Decimal
	contracts map[entity.Address]interface{}
	receivers map[entity.Address]Receiver
}

func NewDevnet() *Devnet {
	return &Devnet{
		native:    make(map[entity.Address]decimal.Decimal),
		contracts: make(map[entity.Address]interface{}),
		receivers: make(map[entity.Address]Receiver),
	}
}

// Credit mints native currency to an account.
func (d *Devnet) Credit(addr entity.Address, amount decimal.Decimal) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.native[addr] = d.native[addr].Add(amount)
}

func (d *Devnet) NativeBalance(addr entity.Address) decimal.Decimal {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.native[addr]
}

func (d *Devnet) TransferNative(ctx context.Context, from, to entity.Address, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrInvalidAmount
	}
	if amount.IsZero() {
		return nil
	}

	d.mu.Lock()
	if d.native[from].LessThan(amount) {
		d.mu.Unlock()
		return fmt.Errorf("%w: %s holds %s, needs %s", ErrInsufficientBalance, from, d.native[from], amount)
	}
	d.native[from] = d.native[from].Sub(amount)
	d.native[to] = d.native[to].Add(amount)
	d.mu.Unlock()

	undo := func() {
		d.mu.Lock()
		d.native[to] = d.native[to].Sub(amount)
		d.native[from] = d.native[from].Add(amount)
		d.mu.Unlock()
	}

	if receiver := d.receiver(to); receiver != nil {
		if err := receiver.OnNativeReceived(ctx, from, amount); err != nil {
			undo()
			return fmt.Errorf("native transfer rejected by %s: %w", to, err)
		}
	}
	record(ctx, undo)

	return nil
}

func (d *Devnet) RegisterReceiver(addr entity.Address, receiver Receiver) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.receivers[addr] = receiver
}

func (d *Devnet) receiver(addr entity.Address) Receiver {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.receivers[addr]
}

// Contract returns the contract deployed at addr. Callers discover the
// capabilities of a contract through type assertions.
func (d *Devnet) Contract(addr entity.Address) (interface{}, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	c, ok := d.contracts[addr]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrContractNotFound, addr)
	}
	return c, nil
}

func (d *Devnet) deploy(addr entity.Address, c interface{}) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.contracts[addr]; exists {
		return fmt.Errorf("%w: %s", ErrContractExists, addr)
	}
	d.contracts[addr] = c

	zap.L().With(zap.String("address", addr.String()), zap.String("type", fmt.Sprintf("%T", c))).Debug("Devnet: Contract deployed")
	return nil
}

type journalKey struct{}

// journal holds the compensations for the writes of one transaction. Undoing a
// write reverses its delta rather than restoring a copy of the state, so writes
// made outside the transaction survive a revert.
type journal struct {
	mu   sync.Mutex
	undo []func()
}

func (j *journal) add(undo ...func()) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.undo = append(j.undo, undo...)
}

func (j *journal) revert() {
	j.mu.Lock()
	undo := j.undo
	j.undo = nil
	j.mu.Unlock()

	for i := len(undo) - 1; i >= 0; i-- {
		undo[i]()
	}
}

// record registers the compensation of a committed write with the transaction
// carried by ctx. Writes made without a transaction are final.
func record(ctx context.Context, undo func()) {
	if j, ok := ctx.Value(journalKey{}).(*journal); ok {
		j.add(undo)
	}
}

// Execute runs fn as a single transaction. Every transfer made with the ctx
// passed to fn is reversed if fn returns an error. Writes made concurrently
// by other callers are left untouched. A nested Execute reverts only its own
// writes on error and hands them to the enclosing transaction on success.
func (d *Devnet) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	parent, nested := ctx.Value(journalKey{}).(*journal)

	tx := &journal{}
	if err := fn(context.WithValue(ctx, journalKey{}, tx)); err != nil {
		tx.revert()
		zap.L().With(zap.Error(err), zap.Bool("nested", nested)).Debug("Devnet: Transaction reverted")
		return err
	}

	if nested {
		tx.mu.Lock()
		parent.add(tx.undo...)
		tx.mu.Unlock()
	}

	return nil
}
