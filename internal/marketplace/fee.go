package marketplace

import (
	"errors"
	"fmt"
	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-marketplace/internal/repository"
	"github.com/shopspring/decimal"
	"time"
)

type feePolicy struct {
	repo repository.FeePolicyRepository
}

// initialise stores the configured policy unless one has already been persisted.
func (p feePolicy) initialise(owner entity.Address, basisPoints uint, recipient entity.Address) (entity.MarketplaceFee, error) {
	existing, err := p.repo.GetFeePolicy()
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrFeePolicyNotFound) {
		return entity.MarketplaceFee{}, err
	}

	if basisPoints > entity.BasisPointsDenominator {
		return entity.MarketplaceFee{}, fmt.Errorf("%w: fee of %d basis points exceeds %d", ErrPolicy, basisPoints, entity.BasisPointsDenominator)
	}
	if owner.IsZero() {
		return entity.MarketplaceFee{}, fmt.Errorf("%w: marketplace owner is required", ErrPolicy)
	}
	if recipient.IsZero() {
		recipient = owner
	}

	fee := entity.MarketplaceFee{Owner: owner, BasisPoints: basisPoints, Recipient: recipient, UpdatedAt: time.Now()}

	return fee, p.repo.SaveFeePolicy(fee)
}

func (p feePolicy) current() (entity.MarketplaceFee, error) {
	return p.repo.GetFeePolicy()
}

func (p feePolicy) setBasisPoints(caller entity.Address, basisPoints uint) (entity.MarketplaceFee, error) {
	fee, err := p.authorise(caller)
	if err != nil {
		return fee, err
	}
	if basisPoints > entity.BasisPointsDenominator {
		return fee, fmt.Errorf("%w: fee of %d basis points exceeds %d", ErrPolicy, basisPoints, entity.BasisPointsDenominator)
	}

	fee.BasisPoints = basisPoints
	fee.UpdatedAt = time.Now()

	return fee, p.repo.SaveFeePolicy(fee)
}

func (p feePolicy) setRecipient(caller entity.Address, recipient entity.Address) (entity.MarketplaceFee, error) {
	fee, err := p.authorise(caller)
	if err != nil {
		return fee, err
	}
	if recipient.IsZero() {
		return fee, fmt.Errorf("%w: fee recipient cannot be the zero address", ErrPolicy)
	}

	fee.Recipient = recipient
	fee.UpdatedAt = time.Now()

	return fee, p.repo.SaveFeePolicy(fee)
}

func (p feePolicy) authorise(caller entity.Address) (entity.MarketplaceFee, error) {
	fee, err := p.current()
	if err != nil {
		return fee, err
	}
	if caller != fee.Owner {
		return fee, fmt.Errorf("%w: %s is not the marketplace owner", ErrUnauthorized, caller)
	}
	return fee, nil
}

func feeFor(price decimal.Decimal, fee entity.MarketplaceFee) decimal.Decimal {
	return entity.BasisPointsOf(price, fee.BasisPoints)
}
