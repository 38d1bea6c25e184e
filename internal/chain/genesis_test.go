package chain

import (
	"errors"
	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadGenesisFile(t *testing.T) {
	genesis, err := LoadGenesis("../../data/devnet/genesis.json")
	require.NoError(t, err)
	require.Len(t, genesis.Contracts, 3)
	assert.Equal(t, NonFungibleWithRoyaltiesContract, genesis.Contracts[0].Type)
	assert.Equal(t, uint64(1), genesis.Contracts[0].Tokens[0].TokenId)
	assert.Equal(t, uint64(50), genesis.Contracts[1].Tokens[0].Quantity)

	d := NewDevnet()
	require.NoError(t, d.Seed(genesis))

	seller := entity.MustAddress("0x0202020202020202020202020202020202020202")
	market := entity.MustAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	assert.Equal(t, "1000000000000000", d.NativeBalance(seller).String())

	c, err := d.Contract(entity.MustAddress("0xc1c1c1c1c1c1c1c1c1c1c1c1c1c1c1c1c1c1c1c1"))
	require.NoError(t, err)
	nft := c.(*RoyaltyNonFungibleToken)
	owner, err := nft.OwnerOf(2)
	require.NoError(t, err)
	assert.Equal(t, seller, owner)
	assert.True(t, nft.IsApprovedOrOwner(market, 3))
	schedule, err := nft.RoyaltyInfo(1)
	require.NoError(t, err)
	require.Len(t, schedule, 1)
	assert.Equal(t, "500000000000", schedule[0].Amount.String())

	c, err = d.Contract(entity.MustAddress("0xd1d1d1d1d1d1d1d1d1d1d1d1d1d1d1d1d1d1d1d1"))
	require.NoError(t, err)
	token := c.(*FungibleToken)
	assert.Equal(t, "WZIL", token.Symbol())
	assert.Equal(t, "1000000000000000", token.Allowance(entity.MustAddress("0x0303030303030303030303030303030303030303"), market).String())
}

func TestSeedRejectsInvalidGenesis(t *testing.T) {
	cases := map[string]Genesis{
		"unknown type": {Contracts: []GenesisContract{{Address: addr("11").String(), Type: "vault"}}},
		"bad address":  {Accounts: []GenesisAccount{{Address: "zil1nope", Native: "1"}}},
		"fractional":   {Accounts: []GenesisAccount{{Address: alice.String(), Native: "1.5"}}},
		"royalties without extension": {Contracts: []GenesisContract{{
			Address: addr("11").String(),
			Type:    NonFungibleContract,
			Tokens:  []GenesisToken{{Holder: alice.String(), TokenId: 1, Royalties: []GenesisRoyalty{{Recipient: bob.String(), Amount: "1"}}}},
		}}},
		"multi token without quantity": {Contracts: []GenesisContract{{
			Address: addr("13").String(),
			Type:    MultiTokenContract,
			Tokens:  []GenesisToken{{Holder: alice.String(), TokenId: 1}},
		}}},
	}

	for name, genesis := range cases {
		t.Run(name, func(t *testing.T) {
			err := NewDevnet().Seed(genesis)
			assert.True(t, errors.Is(err, ErrInvalidGenesis), err)
		})
	}
}

func TestLoadGenesisMissingFile(t *testing.T) {
	_, err := LoadGenesis(filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, errors.Is(err, ErrInvalidGenesis))
}

func TestLoadGenesisYaml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genesis.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
accounts:
  - address: "`+alice.String()+`"
    native: "25"
`), 0644))

	genesis, err := LoadGenesis(path)
	require.NoError(t, err)

	d := NewDevnet()
	require.NoError(t, d.Seed(genesis))
	assert.Equal(t, "25", d.NativeBalance(alice).String())
}
