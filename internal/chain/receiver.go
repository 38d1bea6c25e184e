package chain

import (
	"context"
	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/shopspring/decimal"
)

// Receiver is notified when an account receives native currency or multi-unit
// assets. Returning an error reverts the transfer. Implementations that call
// back into other contracts must pass the ctx they were given.
type Receiver interface {
	OnNativeReceived(ctx context.Context, from entity.Address, amount decimal.Decimal) error
	OnMultiUnitReceived(ctx context.Context, contract, operator, from entity.Address, assetId, quantity uint64, data []byte) error
}

// Hooks adapts plain functions to Receiver. Nil hooks accept every transfer.
type Hooks struct {
	Native    func(ctx context.Context, from entity.Address, amount decimal.Decimal) error
	MultiUnit func(ctx context.Context, contract, operator, from entity.Address, assetId, quantity uint64, data []byte) error
}

func (h Hooks) OnNativeReceived(ctx context.Context, from entity.Address, amount decimal.Decimal) error {
	if h.Native == nil {
		return nil
	}
	return h.Native(ctx, from, amount)
}

func (h Hooks) OnMultiUnitReceived(ctx context.Context, contract, operator, from entity.Address, assetId, quantity uint64, data []byte) error {
	if h.MultiUnit == nil {
		return nil
	}
	return h.MultiUnit(ctx, contract, operator, from, assetId, quantity, data)
}
