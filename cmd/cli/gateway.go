package main

import (
	"encoding/json"
	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-marketplace/pkg/market"
	"github.com/urfave/cli/v2"
	"io"
)

func getListing(c *cli.Context) error {
	listing, err := gateway.GetListing(c.Context, c.String("id"))
	if err != nil {
		return err
	}
	return output(c.App.Writer, listing)
}

func getListings(c *cli.Context) error {
	listings, err := gateway.GetListings(c.Context, c.String("status"), c.Int("size"))
	if err != nil {
		return err
	}
	return output(c.App.Writer, listings)
}

func buy(c *cli.Context) error {
	caller, err := entity.NewAddress(c.String("caller"))
	if err != nil {
		return err
	}

	settlement, err := gateway.BuyAssetFromListing(c.Context, caller, c.String("id"), market.BuyRequest{
		Currency: c.String("currency"),
		Value:    c.String("value"),
	})
	if err != nil {
		return err
	}
	return output(c.App.Writer, settlement)
}

func cancel(c *cli.Context) error {
	caller, err := entity.NewAddress(c.String("caller"))
	if err != nil {
		return err
	}

	listing, err := gateway.CancelListing(c.Context, caller, c.String("id"))
	if err != nil {
		return err
	}
	return output(c.App.Writer, listing)
}

func getFee(c *cli.Context) error {
	fee, err := gateway.GetMarketplaceFee(c.Context)
	if err != nil {
		return err
	}
	return output(c.App.Writer, fee)
}

func setFee(c *cli.Context) error {
	caller, err := entity.NewAddress(c.String("caller"))
	if err != nil {
		return err
	}

	fee, err := gateway.SetMarketplaceFee(c.Context, caller, c.Uint("bps"))
	if err != nil {
		return err
	}
	return output(c.App.Writer, fee)
}

func setFeeRecipient(c *cli.Context) error {
	caller, err := entity.NewAddress(c.String("caller"))
	if err != nil {
		return err
	}
	recipient, err := entity.NewAddress(c.String("recipient"))
	if err != nil {
		return err
	}

	fee, err := gateway.SetFeeRecipient(c.Context, caller, recipient)
	if err != nil {
		return err
	}
	return output(c.App.Writer, fee)
}

func output(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
