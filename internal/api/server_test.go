package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/ZilDuck/zilliqa-marketplace/internal/chain"
	"github.com/ZilDuck/zilliqa-marketplace/internal/dev"
	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-marketplace/internal/event"
	"github.com/ZilDuck/zilliqa-marketplace/internal/marketplace"
	"github.com/ZilDuck/zilliqa-marketplace/internal/repository"
	"github.com/ZilDuck/zilliqa-marketplace/pkg/market"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

func addr(b string) entity.Address {
	return entity.MustAddress("0x" + strings.Repeat(b, 20))
}

var (
	owner   = addr("01")
	service = addr("aa")
	seller  = addr("02")
	buyer   = addr("03")
	nftAddr = addr("c1")
)

type discard struct{}

func (discard) EmitEvent(event.Type, interface{}) {}

type gateway struct {
	t      *testing.T
	devnet *chain.Devnet
	nft    *chain.NonFungibleToken
	server *httptest.Server
}

func newGateway(t *testing.T) *gateway {
	devnet := chain.NewDevnet()
	m, err := marketplace.New(devnet, repository.NewMemoryListingRepository(), repository.NewMemoryFeePolicyRepository(), discard{}, marketplace.Options{
		Address:        service,
		Owner:          owner,
		FeeBasisPoints: 100,
	})
	require.NoError(t, err)
	devnet.RegisterReceiver(service, m)

	nft, err := devnet.DeployNonFungible(nftAddr, "Ducks")
	require.NoError(t, err)

	server := httptest.NewServer(NewServer(m).Router())
	t.Cleanup(server.Close)

	return &gateway{t: t, devnet: devnet, nft: nft, server: server}
}

func (g *gateway) do(method, path string, caller entity.Address, body interface{}) *http.Response {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(g.t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, g.server.URL+path, &buf)
	require.NoError(g.t, err)
	if caller != "" {
		req.Header.Set(market.CallerHeader, caller.Bech32())
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(g.t, err)
	g.t.Cleanup(func() { _ = resp.Body.Close() })

	return resp
}

func (g *gateway) list(id string, tokenId uint64, price string) *http.Response {
	require.NoError(g.t, g.nft.Mint(seller, tokenId))
	require.NoError(g.t, g.nft.Approve(seller, service, tokenId))

	return g.do("POST", "/listings", seller, market.CreateListingRequest{
		Id:            id,
		AssetStandard: "SingleUnit",
		Contract:      nftAddr.Bech32(),
		AssetId:       tokenId,
		Quantity:      1,
		Price:         price,
		Seller:        seller.String(),
		Currency:      "native",
	})
}

func decodeBody(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestCreateAndBuyListing(t *testing.T) {
	g := newGateway(t)

	resp := g.list("duck-1", 1, "10000")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created market.Listing
	decodeBody(t, resp, &created)
	assert.Equal(t, "duck-1", created.Id)
	assert.Equal(t, "listing-duck-1", created.Slug)
	assert.Equal(t, "Active", created.Status)
	assert.Equal(t, seller.Bech32(), created.SellerBech32)
	assert.Equal(t, nftAddr.String(), created.Contract)

	g.devnet.Credit(buyer, decimal.NewFromInt(10100))
	resp = g.do("POST", "/listings/duck-1/buy", buyer, market.BuyRequest{Currency: "native", Value: "10100"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var settlement market.Settlement
	decodeBody(t, resp, &settlement)
	assert.Equal(t, "10000", settlement.Price)
	assert.Equal(t, "100", settlement.Fee)
	assert.Equal(t, owner.String(), settlement.FeeRecipient)
	require.Len(t, settlement.Obligations, 1)
	assert.Equal(t, "10100", settlement.Obligations[0].Amount)

	resp = g.do("GET", "/listings/duck-1", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var sold market.Listing
	decodeBody(t, resp, &sold)
	assert.Equal(t, "Sold", sold.Status)
	assert.Equal(t, buyer.String(), sold.Buyer)

	resp = g.do("POST", "/listings/duck-1/buy", buyer, market.BuyRequest{Currency: "native", Value: "10100"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestConcurrentBuysAreQueued(t *testing.T) {
	g := newGateway(t)
	require.Equal(t, http.StatusCreated, g.list("duck-1", 1, "100").StatusCode)

	buyers := make([]entity.Address, 0)
	for _, b := range []string{"10", "11", "12", "13", "14", "15"} {
		buyers = append(buyers, addr(b))
		g.devnet.Credit(addr(b), decimal.NewFromInt(101))
	}

	body, err := json.Marshal(market.BuyRequest{Currency: "native", Value: "101"})
	require.NoError(t, err)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		statuses = make(map[int]int)
		failures = make([]string, 0)
	)
	for _, b := range buyers {
		wg.Add(1)
		go func(b entity.Address) {
			defer wg.Done()
			req, _ := http.NewRequest("POST", g.server.URL+"/listings/duck-1/buy", bytes.NewReader(body))
			req.Header.Set(market.CallerHeader, b.Bech32())
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return
			}
			defer resp.Body.Close()

			var e dev.Error
			_ = json.NewDecoder(resp.Body).Decode(&e)

			mu.Lock()
			defer mu.Unlock()
			statuses[resp.StatusCode]++
			if e.Error != "" {
				failures = append(failures, e.Error)
			}
		}(b)
	}
	wg.Wait()

	assert.Equal(t, 1, statuses[http.StatusOK])
	assert.Equal(t, len(buyers)-1, statuses[http.StatusConflict])
	for _, failure := range failures {
		assert.NotContains(t, failure, marketplace.ErrReentrantCall.Error())
	}
}

func TestGetListings(t *testing.T) {
	g := newGateway(t)
	require.Equal(t, http.StatusCreated, g.list("a", 1, "10").StatusCode)
	require.Equal(t, http.StatusCreated, g.list("b", 2, "20").StatusCode)
	require.Equal(t, http.StatusOK, g.do("POST", "/listings/a/cancel", seller, nil).StatusCode)

	var active []market.Listing
	resp := g.do("GET", "/listings", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &active)
	require.Len(t, active, 1)
	assert.Equal(t, "b", active[0].Id)

	var cancelled []market.Listing
	resp = g.do("GET", "/listings?status=cancelled&size=5", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &cancelled)
	require.Len(t, cancelled, 1)
	assert.Equal(t, "a", cancelled[0].Id)

	assert.Equal(t, http.StatusBadRequest, g.do("GET", "/listings?status=pending", "", nil).StatusCode)
	assert.Equal(t, http.StatusBadRequest, g.do("GET", "/listings?size=many", "", nil).StatusCode)
}

func TestErrorResponses(t *testing.T) {
	g := newGateway(t)
	require.Equal(t, http.StatusCreated, g.list("duck", 1, "100").StatusCode)

	testCases := []struct {
		name   string
		method string
		path   string
		caller entity.Address
		body   interface{}
		status int
	}{
		{"missing caller", "POST", "/listings/duck/cancel", "", nil, http.StatusUnauthorized},
		{"unknown listing", "GET", "/listings/nope", "", nil, http.StatusNotFound},
		{"stranger cancels", "POST", "/listings/duck/cancel", buyer, nil, http.StatusForbidden},
		{"insufficient funds", "POST", "/listings/duck/buy", buyer, market.BuyRequest{Currency: "native", Value: "101"}, http.StatusPaymentRequired},
		{"wrong currency", "POST", "/listings/duck/buy", buyer, market.BuyRequest{Currency: addr("d1").String()}, http.StatusUnprocessableEntity},
		{"bad value", "POST", "/listings/duck/buy", buyer, market.BuyRequest{Currency: "native", Value: "lots"}, http.StatusBadRequest},
		{"unknown field", "PUT", "/fee", owner, map[string]interface{}{"bps": 10}, http.StatusBadRequest},
		{"fee by stranger", "PUT", "/fee", buyer, market.FeeRequest{BasisPoints: 10}, http.StatusForbidden},
		{"fee too high", "PUT", "/fee", owner, market.FeeRequest{BasisPoints: 10001}, http.StatusUnprocessableEntity},
		{"unknown route", "GET", "/nowhere", "", nil, http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp := g.do(tc.method, tc.path, tc.caller, tc.body)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestErrorBodyCarriesReference(t *testing.T) {
	g := newGateway(t)

	resp := g.do("GET", "/listings/missing", "", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body dev.Error
	decodeBody(t, resp, &body)
	assert.NotEmpty(t, body.Reference)
	assert.Equal(t, "GetListing", body.Name)
	assert.Contains(t, body.Error, "missing")
}

func TestFeeEndpoints(t *testing.T) {
	g := newGateway(t)

	var fee market.Fee
	resp := g.do("GET", "/fee", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &fee)
	assert.Equal(t, uint(100), fee.BasisPoints)
	assert.Equal(t, owner.String(), fee.Recipient)

	resp = g.do("PUT", "/fee", owner, market.FeeRequest{BasisPoints: 250})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &fee)
	assert.Equal(t, uint(250), fee.BasisPoints)

	resp = g.do("PUT", "/fee/recipient", owner, market.FeeRecipientRequest{Recipient: buyer.Bech32()})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &fee)
	assert.Equal(t, buyer.String(), fee.Recipient)
}

func TestHealth(t *testing.T) {
	g := newGateway(t)
	assert.Equal(t, http.StatusOK, g.do("GET", "/health", "", nil).StatusCode)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusConflict, StatusFor(fmt.Errorf("wrapped: %w", marketplace.ErrReentrantCall)))
	assert.Equal(t, http.StatusConflict, StatusFor(marketplace.ErrDeliveryFailure))
	assert.Equal(t, http.StatusUnprocessableEntity, StatusFor(marketplace.ErrIncorrectValue))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(errors.New("boom")))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(context.Canceled))
}
