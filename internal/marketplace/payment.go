package marketplace

import (
	"context"
	"fmt"
	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/shopspring/decimal"
)

// rail moves one currency between the buyer, the service and the payees.
type rail interface {
	verify(payer entity.Address, amount decimal.Decimal) error
	collect(ctx context.Context, payer entity.Address, amount decimal.Decimal) error
	pay(ctx context.Context, to entity.Address, amount decimal.Decimal) error
}

func railFor(host Host, service entity.Address, currency entity.Currency) (rail, error) {
	if currency.IsNative() {
		return nativeRail{host: host, service: service}, nil
	}

	contract, err := host.Contract(currency.Token)
	if err != nil {
		return nil, err
	}
	token, ok := contract.(FungibleToken)
	if !ok {
		return nil, fmt.Errorf("%s is not a fungible token", currency.Token)
	}

	return tokenRail{token: token, currency: currency, service: service}, nil
}

type nativeRail struct {
	host    Host
	service entity.Address
}

func (r nativeRail) verify(payer entity.Address, amount decimal.Decimal) error {
	if balance := r.host.NativeBalance(payer); balance.LessThan(amount) {
		return fmt.Errorf("%w: %s holds %s native, needs %s", ErrInsufficientFunds, payer, balance, amount)
	}
	return nil
}

func (r nativeRail) collect(ctx context.Context, payer entity.Address, amount decimal.Decimal) error {
	return r.host.TransferNative(ctx, payer, r.service, amount)
}

func (r nativeRail) pay(ctx context.Context, to entity.Address, amount decimal.Decimal) error {
	return r.host.TransferNative(ctx, r.service, to, amount)
}

type tokenRail struct {
	token    FungibleToken
	currency entity.Currency
	service  entity.Address
}

func (r tokenRail) verify(payer entity.Address, amount decimal.Decimal) error {
	if allowance := r.token.Allowance(payer, r.service); allowance.LessThan(amount) {
		return fmt.Errorf("%w: %s allows %s of %s, needs %s", ErrInsufficientFunds, payer, allowance, r.currency, amount)
	}
	if balance := r.token.BalanceOf(payer); balance.LessThan(amount) {
		return fmt.Errorf("%w: %s holds %s of %s, needs %s", ErrInsufficientFunds, payer, balance, r.currency, amount)
	}
	return nil
}

func (r tokenRail) collect(ctx context.Context, payer entity.Address, amount decimal.Decimal) error {
	return r.token.TransferFrom(ctx, r.service, payer, r.service, amount)
}

func (r tokenRail) pay(ctx context.Context, to entity.Address, amount decimal.Decimal) error {
	return r.token.Transfer(ctx, r.service, to, amount)
}
