package entity

import (
	"encoding/hex"
	"errors"
	"fmt"
	"github.com/Zilliqa/gozilliqa-sdk/bech32"
	"strings"
)

// Address is a lower-case, 0x prefixed, 20 byte hex account or contract address.
type Address string

const ZeroAddress Address = "0x0000000000000000000000000000000000000000"

var (
	ErrInvalidAddress = errors.New("invalid address")
)

// NewAddress accepts a hex address (with or without 0x) or a bech32 zil1 address.
func NewAddress(value string) (Address, error) {
	value = strings.TrimSpace(value)
	if strings.HasPrefix(strings.ToLower(value), "zil1") {
		decoded, err := bech32.FromBech32Addr(value)
		if err != nil {
			return "", fmt.Errorf("%w: %s", ErrInvalidAddress, err.Error())
		}
		value = decoded
	}

	value = strings.ToLower(strings.TrimPrefix(strings.TrimPrefix(value, "0x"), "0X"))
	if len(value) != 40 {
		return "", fmt.Errorf("%w: %q", ErrInvalidAddress, value)
	}
	if _, err := hex.DecodeString(value); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidAddress, value)
	}

	return Address("0x" + value), nil
}

func MustAddress(value string) Address {
	addr, err := NewAddress(value)
	if err != nil {
		panic(err)
	}
	return addr
}

func (a Address) String() string {
	return string(a)
}

func (a Address) IsZero() bool {
	return a == "" || a == ZeroAddress
}

func (a Address) Bech32() string {
	if a == "" {
		return ""
	}
	bech32Address, err := bech32.ToBech32Address(string(a))
	if err != nil {
		return ""
	}
	return bech32Address
}
