package marketplace

import "errors"

var (
	ErrNotFound          = errors.New("listing not found")
	ErrInvalidState      = errors.New("invalid listing state")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrCurrencyMismatch  = errors.New("currency mismatch")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrIncorrectValue    = errors.New("incorrect native value")
	ErrDeliveryFailure   = errors.New("asset cannot be delivered")
	ErrPolicy            = errors.New("policy violation")
	ErrInvalidListing    = errors.New("invalid listing")
	ErrReentrantCall     = errors.New("reentrant call")
)
