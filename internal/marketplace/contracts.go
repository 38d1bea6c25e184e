package marketplace

import (
	"context"
	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-marketplace/internal/event"
	"github.com/shopspring/decimal"
)

// Host is the ledger the marketplace runs on. Execute must apply every effect
// of fn or none of them.
type Host interface {
	Execute(ctx context.Context, fn func(ctx context.Context) error) error
	Contract(addr entity.Address) (interface{}, error)
	NativeBalance(addr entity.Address) decimal.Decimal
	TransferNative(ctx context.Context, from, to entity.Address, amount decimal.Decimal) error
}

type SingleUnitAsset interface {
	OwnerOf(assetId uint64) (entity.Address, error)
	IsApprovedOrOwner(spender entity.Address, assetId uint64) bool
	TransferFrom(ctx context.Context, caller, from, to entity.Address, assetId uint64) error
}

type MultiUnitAsset interface {
	BalanceOf(holder entity.Address, assetId uint64) uint64
	SafeTransferFrom(ctx context.Context, caller, from, to entity.Address, assetId, quantity uint64, data []byte) error
}

// RoyaltySource is the optional royalty extension of an asset contract.
type RoyaltySource interface {
	RoyaltyInfo(assetId uint64) (entity.RoyaltySchedule, error)
}

// PricedRoyaltySource computes royalties against the sale price.
type PricedRoyaltySource interface {
	RoyaltyInfoForPrice(assetId uint64, price decimal.Decimal) (entity.RoyaltySchedule, error)
}

type FungibleToken interface {
	BalanceOf(holder entity.Address) decimal.Decimal
	Allowance(owner, spender entity.Address) decimal.Decimal
	Transfer(ctx context.Context, from, to entity.Address, amount decimal.Decimal) error
	TransferFrom(ctx context.Context, spender, from, to entity.Address, amount decimal.Decimal) error
}

type EventEmitter interface {
	EmitEvent(eventType event.Type, msg interface{})
}
