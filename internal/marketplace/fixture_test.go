package marketplace

import (
	"context"
	"github.com/ZilDuck/zilliqa-marketplace/internal/chain"
	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-marketplace/internal/event"
	"github.com/ZilDuck/zilliqa-marketplace/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"strings"
	"sync"
	"testing"
)

func addr(b string) entity.Address {
	return entity.MustAddress("0x" + strings.Repeat(b, 20))
}

var (
	owner        = addr("01")
	service      = addr("aa")
	seller       = addr("02")
	buyer        = addr("03")
	feeRecipient = addr("04")
	artist       = addr("05")
	collector    = addr("06")
	stranger     = addr("07")

	nftAddress          = addr("c1")
	royaltyNftAddress   = addr("c2")
	multiAddress        = addr("c3")
	royaltyMultiAddress = addr("c4")
	provenanceAddress   = addr("c5")
	tokenAddress        = addr("d1")
	otherTokenAddress   = addr("d2")

	native = entity.NativeCurrency()
	token  = entity.TokenCurrency(tokenAddress)
	other  = entity.TokenCurrency(otherTokenAddress)
)

type recorder struct {
	mu     sync.Mutex
	events []entity.ListingEvent
}

func (r *recorder) EmitEvent(eventType event.Type, msg interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, msg.(entity.ListingEvent))
}

func (r *recorder) types() []entity.ListingEventType {
	r.mu.Lock()
	defer r.mu.Unlock()

	types := make([]entity.ListingEventType, 0, len(r.events))
	for _, e := range r.events {
		types = append(types, e.Type)
	}
	return types
}

func (r *recorder) last() entity.ListingEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.events[len(r.events)-1]
}

type fixture struct {
	t            *testing.T
	ctx          context.Context
	devnet       *chain.Devnet
	market       *Marketplace
	listings     repository.ListingRepository
	events       *recorder
	nft          *chain.NonFungibleToken
	royaltyNft   *chain.RoyaltyNonFungibleToken
	multi        *chain.MultiToken
	royaltyMulti *chain.RoyaltyMultiToken
	provenance   *chain.ProvenanceNonFungibleToken
	token        *chain.FungibleToken
	otherToken   *chain.FungibleToken
}

func newFixture(t *testing.T, configure ...func(*Options)) *fixture {
	opts := Options{
		Address:        service,
		Owner:          owner,
		FeeBasisPoints: 100,
		FeeRecipient:   feeRecipient,
	}
	for _, c := range configure {
		c(&opts)
	}

	f := &fixture{
		t:        t,
		ctx:      context.Background(),
		devnet:   chain.NewDevnet(),
		listings: repository.NewMemoryListingRepository(),
		events:   &recorder{},
	}

	market, err := New(f.devnet, f.listings, repository.NewMemoryFeePolicyRepository(), f.events, opts)
	require.NoError(t, err)
	f.market = market
	f.devnet.RegisterReceiver(service, market)

	f.nft, err = f.devnet.DeployNonFungible(nftAddress, "Ducks")
	require.NoError(t, err)
	f.royaltyNft, err = f.devnet.DeployNonFungibleWithRoyalties(royaltyNftAddress, "Royal Ducks")
	require.NoError(t, err)
	f.multi, err = f.devnet.DeployMultiToken(multiAddress)
	require.NoError(t, err)
	f.royaltyMulti, err = f.devnet.DeployMultiTokenWithRoyalties(royaltyMultiAddress)
	require.NoError(t, err)
	f.provenance, err = f.devnet.DeployProvenanceNonFungible(provenanceAddress, "Provenance")
	require.NoError(t, err)
	f.token, err = f.devnet.DeployFungible(tokenAddress, "WZIL")
	require.NoError(t, err)
	f.otherToken, err = f.devnet.DeployFungible(otherTokenAddress, "XSGD")
	require.NoError(t, err)

	return f
}

func amount(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func assertAmount(t *testing.T, expected int64, actual decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.Equal(t, amount(expected).String(), actual.String(), msgAndArgs...)
}

// listNft mints tokenId to the seller, approves the marketplace and lists it.
func (f *fixture) listNft(id string, tokenId uint64, price int64, currency entity.Currency) entity.Listing {
	require.NoError(f.t, f.nft.Mint(seller, tokenId))
	require.NoError(f.t, f.nft.Approve(seller, service, tokenId))

	listing, err := f.market.CreateListing(f.ctx, seller, CreateListing{
		Id:            id,
		AssetStandard: entity.SingleUnit,
		AssetContract: nftAddress,
		AssetId:       tokenId,
		Quantity:      1,
		Price:         amount(price),
		Seller:        seller,
		Currency:      currency,
	})
	require.NoError(f.t, err)

	return listing
}

func (f *fixture) listMulti(id string, tokenId, quantity uint64, price int64) entity.Listing {
	listing, err := f.market.CreateListing(f.ctx, seller, CreateListing{
		Id:            id,
		AssetStandard: entity.MultiUnit,
		AssetContract: multiAddress,
		AssetId:       tokenId,
		Quantity:      quantity,
		Price:         amount(price),
		Seller:        seller,
		Currency:      native,
	})
	require.NoError(f.t, err)

	return listing
}

func (f *fixture) deposit(tokenId, quantity uint64) error {
	return f.multi.SafeTransferFrom(f.ctx, seller, seller, service, tokenId, quantity, nil)
}

func (f *fixture) fundTokens(holder entity.Address, v int64) {
	f.token.Mint(holder, amount(v))
	f.token.Approve(holder, service, amount(v))
}

func (f *fixture) status(id string) entity.ListingStatus {
	listing, err := f.market.GetListing(id)
	require.NoError(f.t, err)
	return listing.Status
}

func (f *fixture) listingFor(id string) entity.Listing {
	listing, err := f.market.GetListing(id)
	require.NoError(f.t, err)
	return listing
}
