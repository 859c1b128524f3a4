// Package price fetches spot token prices from the CoinGecko public API.
package price

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/fleshka4/eth-mcp-server/internal/apperrors"
)

const (
	defaultBaseURL = "https://api.coingecko.com"
	clientTimeout  = 10 * time.Second
)

// coingeckoIDs maps common ERC20 symbols to CoinGecko coin identifiers.
var coingeckoIDs = map[string]string{
	"eth":      "ethereum",
	"ethereum": "ethereum",
	"weth":     "weth",
	"usdc":     "usd-coin",
	"usdt":     "tether",
	"dai":      "dai",
	"wbtc":     "wrapped-bitcoin",
	"link":     "chainlink",
	"uni":      "uniswap",
	"aave":     "aave",
	"mkr":      "maker",
	"comp":     "compound-governance-token",
}

// Output is a spot price report. Prices are decimal strings.
type Output struct {
	Token    string `json:"token"`
	PriceUSD string `json:"price_usd"`
	PriceETH string `json:"price_eth"`
}

type pricePoint struct {
	USD float64 `json:"usd"`
	ETH float64 `json:"eth"`
}

// Client queries CoinGecko. It accepts either a known symbol or an ERC20
// contract address.
type Client struct {
	http *resty.Client
	log  *zap.Logger
}

// NewClient creates a Client. An empty baseURL selects the public API.
func NewClient(baseURL string, log *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(clientTimeout).
			SetHeader("Accept", "application/json"),
		log: log,
	}
}

// TokenPrice returns the token's USD and ETH spot prices. The native asset
// short-circuits the ETH leg to exactly one.
func (c *Client) TokenPrice(ctx context.Context, token string) (*Output, error) {
	lower := strings.ToLower(token)

	if lower == "eth" || lower == "ethereum" {
		out, err := c.priceByID(ctx, "ethereum")
		if err != nil {
			return nil, err
		}
		return &Output{
			Token:    token,
			PriceUSD: formatUSD(out.USD),
			PriceETH: "1.0",
		}, nil
	}

	var (
		point pricePoint
		err   error
	)
	if strings.HasPrefix(lower, "0x") {
		if !common.IsHexAddress(token) {
			return nil, errors.Wrapf(apperrors.ErrInvalidAddress, "%q", token)
		}
		point, err = c.priceByContract(ctx, strings.ToLower(common.HexToAddress(token).Hex()))
	} else {
		id, ok := coingeckoIDs[lower]
		if !ok {
			return nil, errors.Wrapf(apperrors.ErrUnknownToken, "symbol %q", token)
		}
		point, err = c.priceByID(ctx, id)
	}
	if err != nil {
		return nil, err
	}

	return &Output{
		Token:    token,
		PriceUSD: formatUSD(point.USD),
		PriceETH: formatETH(point.ETH),
	}, nil
}

func (c *Client) priceByID(ctx context.Context, id string) (pricePoint, error) {
	var body map[string]pricePoint
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"ids":           id,
			"vs_currencies": "usd,eth",
		}).
		SetResult(&body).
		Get("/api/v3/simple/price")
	if err != nil {
		return pricePoint{}, errors.Wrapf(apperrors.ErrNodeUnavailable, "coingecko request: %v", err)
	}
	if res.IsError() {
		return pricePoint{}, errors.Wrapf(apperrors.ErrNodeUnavailable, "coingecko status %s", res.Status())
	}

	point, ok := body[id]
	if !ok {
		return pricePoint{}, errors.Wrapf(apperrors.ErrUnknownToken, "no price for %q", id)
	}
	return point, nil
}

func (c *Client) priceByContract(ctx context.Context, contract string) (pricePoint, error) {
	var body map[string]pricePoint
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"contract_addresses": contract,
			"vs_currencies":      "usd,eth",
		}).
		SetResult(&body).
		Get("/api/v3/simple/token_price/ethereum")
	if err != nil {
		return pricePoint{}, errors.Wrapf(apperrors.ErrNodeUnavailable, "coingecko request: %v", err)
	}
	if res.IsError() {
		return pricePoint{}, errors.Wrapf(apperrors.ErrNodeUnavailable, "coingecko status %s", res.Status())
	}

	point, ok := body[contract]
	if !ok {
		return pricePoint{}, errors.Wrapf(apperrors.ErrUnknownToken, "no price for contract %q", contract)
	}
	return point, nil
}

func formatUSD(v float64) string { return fmt.Sprintf("%.6f", v) }
func formatETH(v float64) string { return fmt.Sprintf("%.18f", v) }
