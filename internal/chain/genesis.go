package chain

import (
	"errors"
	"fmt"
	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var ErrInvalidGenesis = errors.New("invalid genesis")

type ContractType string

const (
	NonFungibleContract              ContractType = "nonFungible"
	NonFungibleWithRoyaltiesContract ContractType = "nonFungibleWithRoyalties"
	ProvenanceNonFungibleContract    ContractType = "provenanceNonFungible"
	MultiTokenContract               ContractType = "multiToken"
	MultiTokenWithRoyaltiesContract  ContractType = "multiTokenWithRoyalties"
	FungibleContract                 ContractType = "fungible"
)

// Genesis is the state a devnet starts from: funded accounts and deployed
// contracts with their holdings and approvals.
type Genesis struct {
	Accounts  []GenesisAccount
	Contracts []GenesisContract
}

type GenesisAccount struct {
	Address string
	Native  string
}

type GenesisContract struct {
	Address string
	Type    ContractType
	// Name is the collection name, or the symbol of a fungible token.
	Name       string
	Tokens     []GenesisToken
	Balances   []GenesisBalance
	Operators  []GenesisOperator
	Allowances []GenesisAllowance
}

// GenesisToken mints an asset. Quantity applies to multi tokens only.
type GenesisToken struct {
	Holder    string
	TokenId   uint64
	Quantity  uint64
	Royalties []GenesisRoyalty
}

type GenesisRoyalty struct {
	Recipient string
	Amount    string
	Currency  string
}

type GenesisBalance struct {
	Holder string
	Amount string
}

type GenesisOperator struct {
	Owner    string
	Operator string
}

type GenesisAllowance struct {
	Owner   string
	Spender string
	Amount  string
}

// LoadGenesis reads a genesis file in any format viper understands.
func LoadGenesis(path string) (Genesis, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Genesis{}, fmt.Errorf("%w: %s", ErrInvalidGenesis, err.Error())
	}

	var genesis Genesis
	if err := v.Unmarshal(&genesis); err != nil {
		return Genesis{}, fmt.Errorf("%w: %s", ErrInvalidGenesis, err.Error())
	}

	return genesis, nil
}

// Seed funds the genesis accounts and deploys the genesis contracts.
func (d *Devnet) Seed(genesis Genesis) error {
	for _, account := range genesis.Accounts {
		addr, err := genesisAddress(account.Address)
		if err != nil {
			return err
		}
		amount, err := genesisAmount(account.Native)
		if err != nil {
			return err
		}
		d.Credit(addr, amount)
	}

	for _, c := range genesis.Contracts {
		if err := d.seedContract(c); err != nil {
			return fmt.Errorf("contract %s: %w", c.Address, err)
		}
	}

	zap.L().With(zap.Int("accounts", len(genesis.Accounts)), zap.Int("contracts", len(genesis.Contracts))).Info("Devnet: Seeded")

	return nil
}

type royaltySetter interface {
	SetRoyalties(tokenId uint64, schedule entity.RoyaltySchedule)
}

func (d *Devnet) seedContract(c GenesisContract) error {
	addr, err := genesisAddress(c.Address)
	if err != nil {
		return err
	}

	switch c.Type {
	case NonFungibleContract, NonFungibleWithRoyaltiesContract, ProvenanceNonFungibleContract:
		var token *NonFungibleToken
		var royalties royaltySetter
		switch c.Type {
		case NonFungibleContract:
			token, err = d.DeployNonFungible(addr, c.Name)
		case NonFungibleWithRoyaltiesContract:
			var deployed *RoyaltyNonFungibleToken
			if deployed, err = d.DeployNonFungibleWithRoyalties(addr, c.Name); err == nil {
				token, royalties = deployed.NonFungibleToken, deployed.RoyaltyExtension
			}
		case ProvenanceNonFungibleContract:
			var deployed *ProvenanceNonFungibleToken
			if deployed, err = d.DeployProvenanceNonFungible(addr, c.Name); err == nil {
				token = deployed.NonFungibleToken
			}
		}
		if err != nil {
			return err
		}
		return seedNonFungible(token, royalties, c)

	case MultiTokenContract, MultiTokenWithRoyaltiesContract:
		var token *MultiToken
		var royalties royaltySetter
		if c.Type == MultiTokenContract {
			token, err = d.DeployMultiToken(addr)
		} else {
			var deployed *RoyaltyMultiToken
			if deployed, err = d.DeployMultiTokenWithRoyalties(addr); err == nil {
				token, royalties = deployed.MultiToken, deployed.RoyaltyExtension
			}
		}
		if err != nil {
			return err
		}
		return seedMultiToken(token, royalties, c)

	case FungibleContract:
		token, err := d.DeployFungible(addr, c.Name)
		if err != nil {
			return err
		}
		return seedFungible(token, c)
	}

	return fmt.Errorf("%w: unknown contract type %q", ErrInvalidGenesis, c.Type)
}

func seedNonFungible(token *NonFungibleToken, royalties royaltySetter, c GenesisContract) error {
	for _, t := range c.Tokens {
		holder, err := genesisAddress(t.Holder)
		if err != nil {
			return err
		}
		if err := token.Mint(holder, t.TokenId); err != nil {
			return err
		}
		if err := seedRoyalties(royalties, t); err != nil {
			return err
		}
	}

	return seedOperators(c.Operators, token.SetApprovalForAll)
}

func seedMultiToken(token *MultiToken, royalties royaltySetter, c GenesisContract) error {
	for _, t := range c.Tokens {
		holder, err := genesisAddress(t.Holder)
		if err != nil {
			return err
		}
		if t.Quantity == 0 {
			return fmt.Errorf("%w: token #%d has no quantity", ErrInvalidGenesis, t.TokenId)
		}
		token.Mint(holder, t.TokenId, t.Quantity)
		if err := seedRoyalties(royalties, t); err != nil {
			return err
		}
	}

	return seedOperators(c.Operators, token.SetApprovalForAll)
}

func seedFungible(token *FungibleToken, c GenesisContract) error {
	for _, b := range c.Balances {
		holder, err := genesisAddress(b.Holder)
		if err != nil {
			return err
		}
		amount, err := genesisAmount(b.Amount)
		if err != nil {
			return err
		}
		token.Mint(holder, amount)
	}

	for _, a := range c.Allowances {
		owner, err := genesisAddress(a.Owner)
		if err != nil {
			return err
		}
		spender, err := genesisAddress(a.Spender)
		if err != nil {
			return err
		}
		amount, err := genesisAmount(a.Amount)
		if err != nil {
			return err
		}
		token.Approve(owner, spender, amount)
	}

	return nil
}

func seedRoyalties(royalties royaltySetter, t GenesisToken) error {
	if len(t.Royalties) == 0 {
		return nil
	}
	if royalties == nil {
		return fmt.Errorf("%w: token #%d has royalties on a contract without a royalty extension", ErrInvalidGenesis, t.TokenId)
	}

	schedule := make(entity.RoyaltySchedule, 0, len(t.Royalties))
	for _, r := range t.Royalties {
		recipient, err := genesisAddress(r.Recipient)
		if err != nil {
			return err
		}
		amount, err := genesisAmount(r.Amount)
		if err != nil {
			return err
		}
		currency := entity.NativeCurrency()
		if r.Currency != "" {
			if currency, err = entity.ParseCurrency(r.Currency); err != nil {
				return fmt.Errorf("%w: %s", ErrInvalidGenesis, err.Error())
			}
		}
		schedule = append(schedule, entity.RoyaltyEntry{Recipient: recipient, Amount: amount, Currency: currency})
	}
	royalties.SetRoyalties(t.TokenId, schedule)

	return nil
}

func seedOperators(operators []GenesisOperator, approve func(owner, operator entity.Address, approved bool)) error {
	for _, o := range operators {
		owner, err := genesisAddress(o.Owner)
		if err != nil {
			return err
		}
		operator, err := genesisAddress(o.Operator)
		if err != nil {
			return err
		}
		approve(owner, operator, true)
	}
	return nil
}

func genesisAddress(value string) (entity.Address, error) {
	addr, err := entity.NewAddress(value)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidGenesis, err.Error())
	}
	return addr, nil
}

func genesisAmount(value string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(value)
	if err != nil || !entity.IsWholeAmount(amount) {
		return decimal.Zero, fmt.Errorf("%w: %q is not a whole non-negative amount", ErrInvalidGenesis, value)
	}
	return amount, nil
}
