package main

import (
	"github.com/ZilDuck/zilliqa-marketplace/internal/client"
	"github.com/ZilDuck/zilliqa-marketplace/internal/config"
	"github.com/getsentry/sentry-go"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"os"
	"time"
)

var gateway *client.Client

func main() {
	config.Init("cli")
	defer sentry.Flush(2 * time.Second)

	var err error
	gateway, err = client.NewClient(config.Get().Api.Url, config.Get().Api.Retries, config.Get().Api.Timeout, config.Get().Debug)
	if err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to create gateway client")
	}

	callerFlag := &cli.StringFlag{Name: "caller", Required: true, Usage: "address making the call (hex or bech32)"}
	idFlag := &cli.StringFlag{Name: "id", Required: true, Usage: "listing id"}

	app := &cli.App{
		Name:  "marketplace",
		Usage: "escrow marketplace tools",
		Commands: []*cli.Command{
			{
				Name:   "simulate",
				Usage:  "Run a list, buy and cancel journey against an in-process devnet",
				Action: simulate,
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "price", Value: 10000, Usage: "listing price in base units"},
					&cli.UintFlag{Name: "fee", Value: 200, Usage: "marketplace fee in basis points"},
				},
			},
			{
				Name:   "listing",
				Usage:  "Show a listing",
				Action: getListing,
				Flags:  []cli.Flag{idFlag},
			},
			{
				Name:   "listings",
				Usage:  "List listings by status (active, sold or cancelled)",
				Action: getListings,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "status", Value: "active"},
					&cli.IntFlag{Name: "size", Value: 100},
				},
			},
			{
				Name:   "buy",
				Usage:  "Buy the asset of a listing",
				Action: buy,
				Flags: []cli.Flag{
					callerFlag,
					idFlag,
					&cli.StringFlag{Name: "currency", Value: "native", Usage: "native or a token address"},
					&cli.StringFlag{Name: "value", Value: "0", Usage: "native value attached to the purchase"},
				},
			},
			{
				Name:   "cancel",
				Usage:  "Cancel a listing",
				Action: cancel,
				Flags:  []cli.Flag{callerFlag, idFlag},
			},
			{
				Name:   "fee",
				Usage:  "Show the marketplace fee",
				Action: getFee,
			},
			{
				Name:   "set-fee",
				Usage:  "Set the marketplace fee in basis points",
				Action: setFee,
				Flags:  []cli.Flag{callerFlag, &cli.UintFlag{Name: "bps", Required: true}},
			},
			{
				Name:   "set-fee-recipient",
				Usage:  "Set the address receiving marketplace fees",
				Action: setFeeRecipient,
				Flags:  []cli.Flag{callerFlag, &cli.StringFlag{Name: "recipient", Required: true}},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		zap.L().With(zap.Error(err)).Fatal("Command failed")
	}
}
