package entity

import (
	"fmt"
	"strings"
)

type CurrencyKind string

const (
	NativeCurrencyKind CurrencyKind = "native"
	TokenCurrencyKind  CurrencyKind = "token"
)

// Currency designates a payment rail: the network native coin, or a fungible
// token identified by its contract address. The zero value is the native coin.
type Currency struct {
	Kind  CurrencyKind `json:"kind"`
	Token Address      `json:"token,omitempty"`
}

func NativeCurrency() Currency {
	return Currency{Kind: NativeCurrencyKind}
}

// TokenCurrency maps the zero address sentinel to the native currency.
func TokenCurrency(token Address) Currency {
	if token.IsZero() {
		return NativeCurrency()
	}
	return Currency{Kind: TokenCurrencyKind, Token: token}
}

// ParseCurrency reads "native", "zil", the zero address or a token address.
func ParseCurrency(value string) (Currency, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "native", "zil":
		return NativeCurrency(), nil
	}

	addr, err := NewAddress(value)
	if err != nil {
		return Currency{}, fmt.Errorf("invalid currency %q: %w", value, err)
	}

	return TokenCurrency(addr), nil
}

func (c Currency) IsNative() bool {
	return c.Kind == "" || c.Kind == NativeCurrencyKind
}

// Address returns the sentinel zero address for the native currency.
func (c Currency) Address() Address {
	if c.IsNative() {
		return ZeroAddress
	}
	return c.Token
}

func (c Currency) Equal(other Currency) bool {
	return c.Address() == other.Address()
}

func (c Currency) String() string {
	if c.IsNative() {
		return string(NativeCurrencyKind)
	}
	return c.Token.String()
}
