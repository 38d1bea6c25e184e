package market

// Listing is the public representation of a listing served by the gateway.
type Listing struct {
	Id             string `json:"id"`
	Slug           string `json:"slug"`
	AssetStandard  string `json:"assetStandard"`
	Contract       string `json:"contract"`
	ContractBech32 string `json:"contractBech32"`
	AssetId        uint64 `json:"assetId"`
	Quantity       uint64 `json:"quantity"`
	Escrowed       uint64 `json:"escrowed"`
	Price          string `json:"price"`
	Currency       string `json:"currency"`
	Status         string `json:"status"`

	Seller       string `json:"seller"`
	SellerBech32 string `json:"sellerBech32"`
	Buyer        string `json:"buyer,omitempty"`
	BuyerBech32  string `json:"buyerBech32,omitempty"`
}

type Royalty struct {
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"`
	Currency  string `json:"currency"`
}

type Obligation struct {
	Currency string `json:"currency"`
	Amount   string `json:"amount"`
}

type Settlement struct {
	ListingId    string       `json:"listingId"`
	Buyer        string       `json:"buyer"`
	Seller       string       `json:"seller"`
	Currency     string       `json:"currency"`
	Price        string       `json:"price"`
	Fee          string       `json:"fee"`
	FeeBps       uint         `json:"feeBps"`
	FeeRecipient string       `json:"feeRecipient"`
	Royalties    []Royalty    `json:"royalties"`
	Obligations  []Obligation `json:"obligations"`
}

type Fee struct {
	Owner       string `json:"owner"`
	BasisPoints uint   `json:"basisPoints"`
	Recipient   string `json:"recipient"`
}
