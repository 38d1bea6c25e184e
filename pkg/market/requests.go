package market

const CallerHeader = "X-Caller"

type CreateListingRequest struct {
	Id            string `json:"id"`
	AssetStandard string `json:"assetStandard"`
	Contract      string `json:"contract"`
	AssetId       uint64 `json:"assetId"`
	Quantity      uint64 `json:"quantity"`
	Price         string `json:"price"`
	Seller        string `json:"seller"`
	Currency      string `json:"currency"`
}

// BuyRequest pays for a listing. Value is the native amount attached to the purchase.
type BuyRequest struct {
	Currency string `json:"currency"`
	Value    string `json:"value"`
}

type FeeRequest struct {
	BasisPoints uint `json:"basisPoints"`
}

type FeeRecipientRequest struct {
	Recipient string `json:"recipient"`
}
