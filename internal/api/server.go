package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/ZilDuck/zilliqa-marketplace/internal/dev"
	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-marketplace/internal/marketplace"
	"github.com/ZilDuck/zilliqa-marketplace/pkg/market"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"net/http"
	"strconv"
	"sync"
)

var (
	ErrMissingCaller = errors.New("missing caller")
	ErrBadRequest    = errors.New("bad request")
)

type Market interface {
	CreateListing(ctx context.Context, caller entity.Address, req marketplace.CreateListing) (entity.Listing, error)
	BuyAssetFromListing(ctx context.Context, caller entity.Address, id string, payCurrency entity.Currency, nativeValue decimal.Decimal) (*entity.Settlement, error)
	CancelListing(ctx context.Context, caller entity.Address, id string) (entity.Listing, error)
	GetListing(id string) (entity.Listing, error)
	GetListings(status entity.ListingStatus, size int) ([]entity.Listing, error)
	SetMarketplaceFee(ctx context.Context, caller entity.Address, basisPoints uint) (entity.MarketplaceFee, error)
	SetFeeRecipient(ctx context.Context, caller entity.Address, recipient entity.Address) (entity.MarketplaceFee, error)
	GetMarketplaceFee() (entity.MarketplaceFee, error)
}

// Server exposes a Market over HTTP. The market refuses a mutation while
// another is executing, so mutating requests are queued here one at a time.
type Server struct {
	market Market
	writes *sync.Mutex
}

func NewServer(m Market) Server {
	return Server{market: m, writes: &sync.Mutex{}}
}

func (s Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.handleHealth).Methods("GET")
	r.HandleFunc("/listings", s.handleGetListings).Methods("GET")
	r.HandleFunc("/listings", s.serialized(s.handleCreateListing)).Methods("POST")
	r.HandleFunc("/listings/{id}", s.handleGetListing).Methods("GET")
	r.HandleFunc("/listings/{id}/buy", s.serialized(s.handleBuy)).Methods("POST")
	r.HandleFunc("/listings/{id}/cancel", s.serialized(s.handleCancel)).Methods("POST")
	r.HandleFunc("/fee", s.handleGetFee).Methods("GET")
	r.HandleFunc("/fee", s.serialized(s.handleSetFee)).Methods("PUT")
	r.HandleFunc("/fee/recipient", s.serialized(s.handleSetFeeRecipient)).Methods("PUT")
	r.NotFoundHandler = notFoundHandler()

	return r
}

func (s Server) serialized(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.writes.Lock()
		defer s.writes.Unlock()

		h(w, r)
	}
}

func (s Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	_, _ = fmt.Fprintf(w, "ok")
}

func (s Server) handleGetListings(w http.ResponseWriter, r *http.Request) {
	status := entity.ListingActive
	if value := r.URL.Query().Get("status"); value != "" {
		parsed, err := entity.ParseListingStatus(value)
		if err != nil {
			writeError(w, "GetListings", fmt.Errorf("%w: %s", ErrBadRequest, err.Error()))
			return
		}
		status = parsed
	}

	size := 0
	if value := r.URL.Query().Get("size"); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			writeError(w, "GetListings", fmt.Errorf("%w: invalid size %q", ErrBadRequest, value))
			return
		}
		size = parsed
	}

	listings, err := s.market.GetListings(status, size)
	if err != nil {
		writeError(w, "GetListings", err)
		return
	}

	views := make([]market.Listing, 0, len(listings))
	for _, listing := range listings {
		views = append(views, ListingView(listing))
	}
	writeJson(w, http.StatusOK, views)
}

func (s Server) handleGetListing(w http.ResponseWriter, r *http.Request) {
	listing, err := s.market.GetListing(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, "GetListing", err)
		return
	}
	writeJson(w, http.StatusOK, ListingView(listing))
}

func (s Server) handleCreateListing(w http.ResponseWriter, r *http.Request) {
	caller, err := getCaller(r)
	if err != nil {
		writeError(w, "CreateListing", err)
		return
	}

	var body market.CreateListingRequest
	if err := decode(r, &body); err != nil {
		writeError(w, "CreateListing", err)
		return
	}

	req, err := createListingFromRequest(body)
	if err != nil {
		writeError(w, "CreateListing", err)
		return
	}

	listing, err := s.market.CreateListing(r.Context(), caller, req)
	if err != nil {
		writeError(w, "CreateListing", err)
		return
	}
	writeJson(w, http.StatusCreated, ListingView(listing))
}

func (s Server) handleBuy(w http.ResponseWriter, r *http.Request) {
	caller, err := getCaller(r)
	if err != nil {
		writeError(w, "BuyAssetFromListing", err)
		return
	}

	var body market.BuyRequest
	if err := decode(r, &body); err != nil {
		writeError(w, "BuyAssetFromListing", err)
		return
	}

	currency, err := entity.ParseCurrency(body.Currency)
	if err != nil {
		writeError(w, "BuyAssetFromListing", fmt.Errorf("%w: %s", ErrBadRequest, err.Error()))
		return
	}

	value := decimal.Zero
	if body.Value != "" {
		value, err = decimal.NewFromString(body.Value)
		if err != nil {
			writeError(w, "BuyAssetFromListing", fmt.Errorf("%w: invalid value %q", ErrBadRequest, body.Value))
			return
		}
	}

	settlement, err := s.market.BuyAssetFromListing(r.Context(), caller, mux.Vars(r)["id"], currency, value)
	if err != nil {
		writeError(w, "BuyAssetFromListing", err)
		return
	}
	writeJson(w, http.StatusOK, SettlementView(*settlement))
}

func (s Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	caller, err := getCaller(r)
	if err != nil {
		writeError(w, "CancelListing", err)
		return
	}

	listing, err := s.market.CancelListing(r.Context(), caller, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, "CancelListing", err)
		return
	}
	writeJson(w, http.StatusOK, ListingView(listing))
}

func (s Server) handleGetFee(w http.ResponseWriter, r *http.Request) {
	fee, err := s.market.GetMarketplaceFee()
	if err != nil {
		writeError(w, "GetMarketplaceFee", err)
		return
	}
	writeJson(w, http.StatusOK, FeeView(fee))
}

func (s Server) handleSetFee(w http.ResponseWriter, r *http.Request) {
	caller, err := getCaller(r)
	if err != nil {
		writeError(w, "SetMarketplaceFee", err)
		return
	}

	var body market.FeeRequest
	if err := decode(r, &body); err != nil {
		writeError(w, "SetMarketplaceFee", err)
		return
	}

	fee, err := s.market.SetMarketplaceFee(r.Context(), caller, body.BasisPoints)
	if err != nil {
		writeError(w, "SetMarketplaceFee", err)
		return
	}
	writeJson(w, http.StatusOK, FeeView(fee))
}

func (s Server) handleSetFeeRecipient(w http.ResponseWriter, r *http.Request) {
	caller, err := getCaller(r)
	if err != nil {
		writeError(w, "SetFeeRecipient", err)
		return
	}

	var body market.FeeRecipientRequest
	if err := decode(r, &body); err != nil {
		writeError(w, "SetFeeRecipient", err)
		return
	}

	recipient, err := entity.NewAddress(body.Recipient)
	if err != nil {
		writeError(w, "SetFeeRecipient", fmt.Errorf("%w: %s", ErrBadRequest, err.Error()))
		return
	}

	fee, err := s.market.SetFeeRecipient(r.Context(), caller, recipient)
	if err != nil {
		writeError(w, "SetFeeRecipient", err)
		return
	}
	writeJson(w, http.StatusOK, FeeView(fee))
}

func getCaller(r *http.Request) (entity.Address, error) {
	value := r.Header.Get(market.CallerHeader)
	if value == "" {
		return "", ErrMissingCaller
	}

	caller, err := entity.NewAddress(value)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrMissingCaller, err.Error())
	}
	return caller, nil
}

func decode(r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("%w: %s", ErrBadRequest, err.Error())
	}
	return nil
}

func createListingFromRequest(body market.CreateListingRequest) (marketplace.CreateListing, error) {
	req := marketplace.CreateListing{
		Id:       body.Id,
		AssetId:  body.AssetId,
		Quantity: body.Quantity,
	}

	var err error
	if req.AssetStandard, err = entity.ParseAssetStandard(body.AssetStandard); err != nil {
		return req, fmt.Errorf("%w: %s", ErrBadRequest, err.Error())
	}
	if req.AssetContract, err = entity.NewAddress(body.Contract); err != nil {
		return req, fmt.Errorf("%w: contract: %s", ErrBadRequest, err.Error())
	}
	if req.Seller, err = entity.NewAddress(body.Seller); err != nil {
		return req, fmt.Errorf("%w: seller: %s", ErrBadRequest, err.Error())
	}
	if req.Price, err = decimal.NewFromString(body.Price); err != nil {
		return req, fmt.Errorf("%w: invalid price %q", ErrBadRequest, body.Price)
	}
	if req.Currency, err = entity.ParseCurrency(body.Currency); err != nil {
		return req, fmt.Errorf("%w: %s", ErrBadRequest, err.Error())
	}

	return req, nil
}

func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrMissingCaller):
		return http.StatusUnauthorized
	case errors.Is(err, marketplace.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, marketplace.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, marketplace.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, marketplace.ErrInvalidState),
		errors.Is(err, marketplace.ErrDeliveryFailure),
		errors.Is(err, marketplace.ErrReentrantCall):
		return http.StatusConflict
	case errors.Is(err, marketplace.ErrCurrencyMismatch),
		errors.Is(err, marketplace.ErrInvalidListing),
		errors.Is(err, marketplace.ErrIncorrectValue),
		errors.Is(err, marketplace.ErrPolicy):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, name string, err error) {
	status := StatusFor(err)
	body := dev.NewError("api", name, err, map[string]interface{}{"status": status})

	logger := zap.L().With(zap.String("reference", body.Reference), zap.String("operation", name), zap.Error(err))
	if status >= http.StatusInternalServerError {
		logger.Error("API: Request failed")
	} else {
		logger.Info("API: Request rejected")
	}

	writeJson(w, status, body)
}

func writeJson(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().With(zap.Error(err)).Warn("API: Failed to write response")
	}
}

func notFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(404)
		_, _ = fmt.Fprintf(w, "Page not found")
	})
}
