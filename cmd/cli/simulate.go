package main

import (
	"context"
	"fmt"
	"github.com/ZilDuck/zilliqa-marketplace/internal/api"
	"github.com/ZilDuck/zilliqa-marketplace/internal/chain"
	"github.com/ZilDuck/zilliqa-marketplace/internal/config"
	"github.com/ZilDuck/zilliqa-marketplace/internal/config/di"
	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-marketplace/internal/marketplace"
	"github.com/ZilDuck/zilliqa-marketplace/pkg/market"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"strconv"
	"strings"
)

var (
	simOwner   = simAddress("01")
	simService = simAddress("aa")
	simSeller  = simAddress("02")
	simBuyer   = simAddress("03")
	simArtist  = simAddress("05")
	simNft     = simAddress("c1")
	simMulti   = simAddress("c3")
	simToken   = simAddress("d1")
)

type Report struct {
	Sales     []market.Settlement `json:"sales"`
	Cancelled []market.Listing    `json:"cancelled"`
	Balances  map[string]string   `json:"balances"`
}

func simAddress(b string) entity.Address {
	return entity.MustAddress("0x" + strings.Repeat(b, 20))
}

func simulate(c *cli.Context) error {
	report, err := runSimulation(c.Context, c.Int64("price"), c.Uint("fee"))
	if err != nil {
		return err
	}
	return output(c.App.Writer, report)
}

// simulationGenesis deploys the assets and currency the simulation trades.
func simulationGenesis(royalty decimal.Decimal) chain.Genesis {
	return chain.Genesis{
		Contracts: []chain.GenesisContract{
			{
				Address: simNft.String(),
				Type:    chain.NonFungibleWithRoyaltiesContract,
				Name:    "Ducks",
				Tokens: []chain.GenesisToken{
					{Holder: simSeller.String(), TokenId: 1, Royalties: []chain.GenesisRoyalty{{Recipient: simArtist.String(), Amount: royalty.String()}}},
					{Holder: simSeller.String(), TokenId: 2, Royalties: []chain.GenesisRoyalty{{Recipient: simArtist.String(), Amount: royalty.String()}}},
				},
			},
			{
				Address: simMulti.String(),
				Type:    chain.MultiTokenContract,
				Tokens:  []chain.GenesisToken{{Holder: simSeller.String(), TokenId: 9, Quantity: 5}},
			},
			{
				Address: simToken.String(),
				Type:    chain.FungibleContract,
				Name:    "WZIL",
			},
		},
	}
}

func contract[T any](devnet *chain.Devnet, addr entity.Address) (T, error) {
	var zero T
	c, err := devnet.Contract(addr)
	if err != nil {
		return zero, err
	}
	typed, ok := c.(T)
	if !ok {
		return zero, fmt.Errorf("contract %s is a %T", addr, c)
	}
	return typed, nil
}

// runSimulation lists and sells a royalty bearing single unit asset for the native
// coin, sells escrowed multi unit assets for a token and cancels a listing.
func runSimulation(ctx context.Context, price int64, feeBps uint) (Report, error) {
	container, err := di.NewContainer(&config.Config{
		ListingStore: di.MemoryStore,
		Marketplace: config.MarketplaceConfig{
			Owner:          simOwner.String(),
			Address:        simService.String(),
			FeeBasisPoints: feeBps,
		},
	})
	if err != nil {
		return Report{}, err
	}
	defer container.Delete()

	m, err := container.GetMarketplace()
	if err != nil {
		return Report{}, err
	}
	devnet, err := container.GetDevnet()
	if err != nil {
		return Report{}, err
	}
	report := Report{Balances: map[string]string{}}

	amount := decimal.NewFromInt(price)
	royalty := entity.BasisPointsOf(amount, 500)
	if err := devnet.Seed(simulationGenesis(royalty)); err != nil {
		return report, err
	}

	nft, err := contract[*chain.RoyaltyNonFungibleToken](devnet, simNft)
	if err != nil {
		return report, err
	}
	multi, err := contract[*chain.MultiToken](devnet, simMulti)
	if err != nil {
		return report, err
	}
	token, err := contract[*chain.FungibleToken](devnet, simToken)
	if err != nil {
		return report, err
	}

	for _, tokenId := range []uint64{1, 2} {
		if err := nft.Approve(simSeller, simService, tokenId); err != nil {
			return report, err
		}

		if _, err := m.CreateListing(ctx, simSeller, marketplace.CreateListing{
			Id:            "duck-" + strconv.FormatUint(tokenId, 10),
			AssetStandard: entity.SingleUnit,
			AssetContract: simNft,
			AssetId:       tokenId,
			Quantity:      1,
			Price:         amount,
			Seller:        simSeller,
			Currency:      entity.NativeCurrency(),
		}); err != nil {
			return report, err
		}
	}

	value := amount.Add(entity.BasisPointsOf(amount, feeBps)).Add(royalty)
	devnet.Credit(simBuyer, value)
	settlement, err := m.BuyAssetFromListing(ctx, simBuyer, "duck-1", entity.NativeCurrency(), value)
	if err != nil {
		return report, err
	}
	report.Sales = append(report.Sales, api.SettlementView(*settlement))

	cancelled, err := m.CancelListing(ctx, simSeller, "duck-2")
	if err != nil {
		return report, err
	}
	report.Cancelled = append(report.Cancelled, api.ListingView(cancelled))

	if _, err := m.CreateListing(ctx, simSeller, marketplace.CreateListing{
		Id:            "eggs",
		AssetStandard: entity.MultiUnit,
		AssetContract: simMulti,
		AssetId:       9,
		Quantity:      5,
		Price:         amount,
		Seller:        simSeller,
		Currency:      entity.TokenCurrency(simToken),
	}); err != nil {
		return report, err
	}
	if err := multi.SafeTransferFrom(ctx, simSeller, simSeller, simService, 9, 5, nil); err != nil {
		return report, err
	}

	owed := amount.Add(entity.BasisPointsOf(amount, feeBps))
	token.Mint(simBuyer, owed)
	token.Approve(simBuyer, simService, owed)
	settlement, err = m.BuyAssetFromListing(ctx, simBuyer, "eggs", entity.TokenCurrency(simToken), decimal.Zero)
	if err != nil {
		return report, err
	}
	report.Sales = append(report.Sales, api.SettlementView(*settlement))

	for name, addr := range map[string]entity.Address{"seller": simSeller, "buyer": simBuyer, "owner": simOwner, "artist": simArtist} {
		report.Balances[name+".native"] = devnet.NativeBalance(addr).String()
		report.Balances[name+".WZIL"] = token.BalanceOf(addr).String()
	}
	report.Balances["buyer.eggs"] = strconv.FormatUint(multi.BalanceOf(simBuyer, 9), 10)

	zap.L().With(zap.Int("sales", len(report.Sales))).Info("Simulation complete")

	return report, nil
}
