package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/ZilDuck/zilliqa-marketplace/internal/dev"
	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-marketplace/pkg/market"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var (
	ErrTimeout = errors.New("timeout reading data from server")
)

// ApiError is returned for any non 2xx response from the gateway.
type ApiError struct {
	Status int
	Body   dev.Error
}

func (e ApiError) Error() string {
	if e.Body.Error == "" {
		return fmt.Sprintf("gateway returned %d", e.Status)
	}
	return fmt.Sprintf("gateway returned %d: %s (ref %s)", e.Status, e.Body.Error, e.Body.Reference)
}

func IsStatus(err error, status int) bool {
	var apiErr ApiError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// Client talks to the marketplace gateway over HTTP.
type Client struct {
	url        string
	httpClient *retryablehttp.Client
	timeout    int
	debug      bool
}

func NewClient(baseUrl string, retries int, timeout int, debug bool) (*Client, error) {
	if len(baseUrl) == 0 {
		return nil, errors.New("bad call missing argument host")
	}

	retryClient := retryablehttp.NewClient()
	retryClient.Logger = nil
	retryClient.RetryMax = retries
	retryClient.RetryWaitMin = 50 * time.Millisecond
	retryClient.RetryWaitMax = time.Second
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &Client{
		strings.TrimSuffix(baseUrl, "/"),
		retryClient,
		timeout,
		debug,
	}, nil
}

func (c *Client) GetListing(ctx context.Context, id string) (market.Listing, error) {
	var listing market.Listing
	err := c.call(ctx, "GET", "/listings/"+url.PathEscape(id), "", nil, &listing)
	return listing, err
}

func (c *Client) GetListings(ctx context.Context, status string, size int) ([]market.Listing, error) {
	query := url.Values{}
	if status != "" {
		query.Set("status", status)
	}
	if size > 0 {
		query.Set("size", strconv.Itoa(size))
	}

	path := "/listings"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	listings := make([]market.Listing, 0)
	err := c.call(ctx, "GET", path, "", nil, &listings)
	return listings, err
}

func (c *Client) CreateListing(ctx context.Context, caller entity.Address, req market.CreateListingRequest) (market.Listing, error) {
	var listing market.Listing
	err := c.call(ctx, "POST", "/listings", caller, req, &listing)
	return listing, err
}

func (c *Client) BuyAssetFromListing(ctx context.Context, caller entity.Address, id string, req market.BuyRequest) (market.Settlement, error) {
	var settlement market.Settlement
	err := c.call(ctx, "POST", "/listings/"+url.PathEscape(id)+"/buy", caller, req, &settlement)
	return settlement, err
}

func (c *Client) CancelListing(ctx context.Context, caller entity.Address, id string) (market.Listing, error) {
	var listing market.Listing
	err := c.call(ctx, "POST", "/listings/"+url.PathEscape(id)+"/cancel", caller, nil, &listing)
	return listing, err
}

func (c *Client) GetMarketplaceFee(ctx context.Context) (market.Fee, error) {
	var fee market.Fee
	err := c.call(ctx, "GET", "/fee", "", nil, &fee)
	return fee, err
}

func (c *Client) SetMarketplaceFee(ctx context.Context, caller entity.Address, basisPoints uint) (market.Fee, error) {
	var fee market.Fee
	err := c.call(ctx, "PUT", "/fee", caller, market.FeeRequest{BasisPoints: basisPoints}, &fee)
	return fee, err
}

func (c *Client) SetFeeRecipient(ctx context.Context, caller entity.Address, recipient entity.Address) (market.Fee, error) {
	var fee market.Fee
	err := c.call(ctx, "PUT", "/fee/recipient", caller, market.FeeRecipientRequest{Recipient: recipient.String()}, &fee)
	return fee, err
}

// doTimeoutRequest process a HTTP request with timeout
func (c *Client) doTimeoutRequest(timer *time.Timer, req *retryablehttp.Request) (*http.Response, error) {
	type result struct {
		resp *http.Response
		err  error
	}
	done := make(chan result, 1)
	go func() {
		resp, err := c.httpClient.Do(req)
		done <- result{resp, err}
	}()

	select {
	case r := <-done:
		return r.resp, r.err
	case <-timer.C:
		return nil, ErrTimeout
	}
}

func (c *Client) call(ctx context.Context, method, path string, caller entity.Address, body interface{}, out interface{}) error {
	payloadBuffer := &bytes.Buffer{}
	if body != nil {
		if err := json.NewEncoder(payloadBuffer).Encode(body); err != nil {
			return err
		}
	}

	zap.L().With(zap.String("method", method), zap.String("path", path)).Debug("Client: Request")
	if c.debug && payloadBuffer.Len() > 0 {
		zap.L().With(zap.String("request", payloadBuffer.String())).Debug("Client: Request body")
	}

	req, err := retryablehttp.NewRequest(method, c.url+path, payloadBuffer.Bytes())
	if err != nil {
		return err
	}
	req = req.WithContext(ctx)

	req.Header.Add("Content-Type", "application/json;charset=utf-8")
	req.Header.Add("Accept", "application/json")
	if caller != "" {
		req.Header.Add(market.CallerHeader, caller.String())
	}

	resp, err := c.doTimeoutRequest(time.NewTimer(time.Duration(c.timeout)*time.Second), req)
	if err != nil {
		zap.L().With(zap.Error(err), zap.String("path", path)).Warn("Client: Request failure")
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if c.debug {
		zap.L().With(zap.Int("status", resp.StatusCode), zap.String("response", string(data))).Debug("Client: Response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := ApiError{Status: resp.StatusCode}
		_ = json.Unmarshal(data, &apiErr.Body)
		return apiErr
	}

	return json.Unmarshal(data, out)
}
