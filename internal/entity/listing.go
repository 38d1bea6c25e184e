package entity

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"strings"
	"time"
)

type AssetStandard string

const (
	SingleUnit AssetStandard = "SingleUnit"
	MultiUnit  AssetStandard = "MultiUnit"
)

func ParseAssetStandard(value string) (AssetStandard, error) {
	switch strings.ToLower(value) {
	case "singleunit", "single", "erc721", "zrc6", "zrc1":
		return SingleUnit, nil
	case "multiunit", "multi", "erc1155":
		return MultiUnit, nil
	}
	return "", fmt.Errorf("unknown asset standard %q", value)
}

func (s AssetStandard) Valid() bool {
	return s == SingleUnit || s == MultiUnit
}

type ListingStatus uint8

const (
	ListingActive ListingStatus = iota
	ListingSold
	ListingCancelled
)

func (s ListingStatus) String() string {
	switch s {
	case ListingActive:
		return "Active"
	case ListingSold:
		return "Sold"
	case ListingCancelled:
		return "Cancelled"
	}
	return fmt.Sprintf("ListingStatus(%d)", uint8(s))
}

func (s ListingStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *ListingStatus) UnmarshalJSON(data []byte) error {
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}

	status, err := ParseListingStatus(value)
	if err != nil {
		return err
	}
	*s = status

	return nil
}

func ParseListingStatus(value string) (ListingStatus, error) {
	switch strings.ToLower(value) {
	case "active":
		return ListingActive, nil
	case "sold":
		return ListingSold, nil
	case "cancelled", "canceled":
		return ListingCancelled, nil
	}
	return 0, fmt.Errorf("unknown listing status %q", value)
}

type Listing struct {
	Id            string          `json:"id"`
	AssetStandard AssetStandard   `json:"assetStandard"`
	AssetContract Address         `json:"assetContract"`
	AssetId       uint64          `json:"assetId"`
	Quantity      uint64          `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	Seller        Address         `json:"seller"`
	Currency      Currency        `json:"currency"`
	Status        ListingStatus   `json:"status"`
	Buyer         Address         `json:"buyer,omitempty"`

	// Escrowed is the quantity of a MultiUnit asset deposited with the service for this listing.
	Escrowed uint64 `json:"escrowed"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Slug is the document id of the listing. It encodes the id without loss, so
// ids that differ only in case or punctuation never share a document.
func (l Listing) Slug() string {
	return CreateListingSlug(l.Id)
}

func CreateListingSlug(id string) string {
	return "listing-" + base64.RawURLEncoding.EncodeToString([]byte(id))
}

// DisplaySlug is a readable, lossy rendering of the id for presentation only.
func (l Listing) DisplaySlug() string {
	return slug.Make(fmt.Sprintf("listing-%s", l.Id))
}

func (l Listing) IsActive() bool {
	return l.Status == ListingActive
}

func (l Listing) IsFullyEscrowed() bool {
	return l.AssetStandard == MultiUnit && l.Escrowed >= l.Quantity
}
