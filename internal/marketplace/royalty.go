package marketplace

import (
	"fmt"
	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/shopspring/decimal"
)

type royaltyResolver struct {
	host Host
}

// resolve returns the royalty schedule of an asset at the given price. Assets
// without a royalty extension have an empty schedule.
func (r royaltyResolver) resolve(assetContract entity.Address, assetId uint64, price decimal.Decimal) (entity.RoyaltySchedule, error) {
	contract, err := r.host.Contract(assetContract)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrDeliveryFailure, err)
	}

	var schedule entity.RoyaltySchedule
	switch source := contract.(type) {
	case PricedRoyaltySource:
		schedule, err = source.RoyaltyInfoForPrice(assetId, price)
	case RoyaltySource:
		schedule, err = source.RoyaltyInfo(assetId)
	default:
		return entity.RoyaltySchedule{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: royalty lookup for %s #%d: %s", ErrPolicy, assetContract, assetId, err)
	}

	resolved := make(entity.RoyaltySchedule, 0, len(schedule))
	for _, entry := range schedule {
		if !entity.IsWholeAmount(entry.Amount) {
			return nil, fmt.Errorf("%w: royalty of %s to %s is not a whole amount", ErrPolicy, entry.Amount, entry.Recipient)
		}
		if entry.Amount.IsZero() {
			continue
		}
		entry.Currency = entity.TokenCurrency(entry.Currency.Address())
		resolved = append(resolved, entry)
	}

	return resolved, nil
}
