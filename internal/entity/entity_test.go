package entity

import (
	"encoding/json"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestNewAddress(t *testing.T) {
	addr, err := NewAddress("0xABCDEFabcdef0123456789abcdef0123456789AB")
	require.NoError(t, err)
	assert.Equal(t, Address("0xabcdefabcdef0123456789abcdef0123456789ab"), addr)

	bare, err := NewAddress("abcdefabcdef0123456789abcdef0123456789ab")
	require.NoError(t, err)
	assert.Equal(t, addr, bare)

	roundTrip, err := NewAddress(addr.Bech32())
	require.NoError(t, err)
	assert.Equal(t, addr, roundTrip)

	for _, invalid := range []string{"", "0x1234", "0xzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz", "zil1notanaddress"} {
		_, err := NewAddress(invalid)
		assert.ErrorIs(t, err, ErrInvalidAddress, invalid)
	}
}

func TestCurrency(t *testing.T) {
	token := MustAddress("0x1111111111111111111111111111111111111111")

	assert.True(t, TokenCurrency(ZeroAddress).IsNative())
	assert.True(t, Currency{}.IsNative())
	assert.True(t, NativeCurrency().Equal(TokenCurrency(ZeroAddress)))
	assert.False(t, NativeCurrency().Equal(TokenCurrency(token)))
	assert.Equal(t, ZeroAddress, NativeCurrency().Address())

	for _, value := range []string{"", "native", "ZIL", ZeroAddress.String()} {
		c, err := ParseCurrency(value)
		require.NoError(t, err)
		assert.True(t, c.IsNative(), value)
	}

	c, err := ParseCurrency(token.String())
	require.NoError(t, err)
	assert.Equal(t, TokenCurrency(token), c)

	_, err = ParseCurrency("dollars")
	assert.Error(t, err)
}

func TestBasisPointsOf(t *testing.T) {
	assert.Equal(t, "100", BasisPointsOf(decimal.NewFromInt(10000), 100).String())
	assert.Equal(t, "1", BasisPointsOf(decimal.NewFromInt(199), 100).String())
	assert.Equal(t, "0", BasisPointsOf(decimal.NewFromInt(99), 100).String())
	assert.Equal(t, "10000", BasisPointsOf(decimal.NewFromInt(10000), BasisPointsDenominator).String())

	assert.True(t, IsWholeAmount(decimal.NewFromInt(0)))
	assert.False(t, IsWholeAmount(decimal.RequireFromString("1.5")))
	assert.False(t, IsWholeAmount(decimal.NewFromInt(-1)))
}

func TestListingStatusJSON(t *testing.T) {
	listing := Listing{Id: "a", Status: ListingCancelled, Price: decimal.NewFromInt(5)}

	b, err := json.Marshal(listing)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"status":"Cancelled"`)

	var decoded Listing
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, ListingCancelled, decoded.Status)

	assert.Error(t, json.Unmarshal([]byte(`{"status":"Pending"}`), &decoded))
	assert.Equal(t, "listing-YQ", listing.Slug())
	assert.Equal(t, "listing-a", listing.DisplaySlug())
}

func TestListingSlugKeepsIdsApart(t *testing.T) {
	ids := []string{"Lot-A", "lot a", "lot-a", "LOT_A", "lot/a", "lot.a"}

	slugs := make(map[string]string)
	for _, id := range ids {
		s := Listing{Id: id}.Slug()
		if other, exists := slugs[s]; exists {
			t.Errorf("listings %q and %q share document id %q", id, other, s)
		}
		slugs[s] = id
		assert.Regexp(t, `^listing-[A-Za-z0-9_-]+$`, s)
	}

	assert.Equal(t, Listing{Id: "Lot-A"}.DisplaySlug(), Listing{Id: "lot a"}.DisplaySlug())
}

func TestRoyaltySchedule(t *testing.T) {
	token := TokenCurrency(MustAddress("0x1111111111111111111111111111111111111111"))
	schedule := RoyaltySchedule{
		{Amount: decimal.NewFromInt(5), Currency: token},
		{Amount: decimal.NewFromInt(7), Currency: NativeCurrency()},
		{Amount: decimal.NewFromInt(3), Currency: token},
	}

	assert.Equal(t, "8", schedule.Total(token).String())
	assert.Equal(t, "7", schedule.Total(NativeCurrency()).String())
	assert.Equal(t, []Currency{token, NativeCurrency()}, schedule.Currencies())
}

func TestParseAssetStandard(t *testing.T) {
	s, err := ParseAssetStandard("ZRC6")
	require.NoError(t, err)
	assert.Equal(t, SingleUnit, s)

	s, err = ParseAssetStandard("multi")
	require.NoError(t, err)
	assert.Equal(t, MultiUnit, s)

	_, err = ParseAssetStandard("bundle")
	assert.Error(t, err)
}
