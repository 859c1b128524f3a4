package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/fleshka4/eth-mcp-server/internal/apperrors"
	"github.com/fleshka4/eth-mcp-server/internal/swap"
)

func (s *Server) registerTools() {
	s.mcp.AddTool(mcp.NewTool("get_balance",
		mcp.WithDescription("Get the ETH or ERC20 token balance of a wallet on Ethereum mainnet."),
		mcp.WithString("wallet_address",
			mcp.Required(),
			mcp.Description("Wallet address to query (0x-prefixed hex)."),
		),
		mcp.WithString("token_address",
			mcp.Description("Optional ERC20 contract address. Omit for the native ETH balance."),
		),
	), s.handleGetBalance)

	s.mcp.AddTool(mcp.NewTool("get_token_price",
		mcp.WithDescription("Get the current USD and ETH price of a token from CoinGecko."),
		mcp.WithString("token",
			mcp.Required(),
			mcp.Description("Token symbol (e.g. USDC) or ERC20 contract address."),
		),
	), s.handleGetTokenPrice)

	s.mcp.AddTool(mcp.NewTool("simulate_swap",
		mcp.WithDescription("Simulate a Uniswap V2 or V3 swap read-only and return estimated output, slippage-bounded minimum output, and gas cost. Nothing is signed or broadcast."),
		mcp.WithString("from_token",
			mcp.Required(),
			mcp.Description("Input token: ETH, a known symbol, or a contract address."),
		),
		mcp.WithString("to_token",
			mcp.Required(),
			mcp.Description("Output token: ETH, a known symbol, or a contract address."),
		),
		mcp.WithString("amount",
			mcp.Required(),
			mcp.Description("Input amount in human units, e.g. \"1.5\"."),
		),
		mcp.WithString("slippage_tolerance",
			mcp.Description("Slippage tolerance in percent, 0 to 100. Defaults to 0.5."),
		),
		mcp.WithString("version",
			mcp.Description("Uniswap version, \"v2\" or \"v3\". Defaults to v2."),
		),
		mcp.WithNumber("pool_fee",
			mcp.Description("V3 pool fee tier: 500, 3000, or 10000. Defaults to 3000."),
		),
	), s.handleSimulateSwap)
}

const defaultSlippage = "0.5"

func (s *Server) handleGetBalance(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	wallet := stringArg(req, "wallet_address")
	token := stringArg(req, "token_address")

	var (
		out interface{}
		err error
	)
	if token == "" {
		out, err = s.balance.ETHBalance(ctx, wallet)
	} else {
		out, err = s.balance.TokenBalance(ctx, wallet, token)
	}
	if err != nil {
		s.log.Error("get_balance failed", zap.Error(err))
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(out)
}

func (s *Server) handleGetTokenPrice(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	out, err := s.price.TokenPrice(ctx, stringArg(req, "token"))
	if err != nil {
		s.log.Error("get_token_price failed", zap.Error(err))
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(out)
}

func (s *Server) handleSimulateSwap(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	slippage := stringArg(req, "slippage_tolerance")
	if slippage == "" {
		slippage = defaultSlippage
	}

	poolFee, err := numberArg(req, "pool_fee")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	quote, err := s.swap.SimulateSwap(ctx, swap.Request{
		FromToken:         stringArg(req, "from_token"),
		ToToken:           stringArg(req, "to_token"),
		Amount:            stringArg(req, "amount"),
		SlippageTolerance: slippage,
		Version:           swap.Version(stringArg(req, "version")),
		PoolFee:           uint32(poolFee),
	})
	if err != nil {
		s.log.Error("simulate_swap failed", zap.Error(err))
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(quote)
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	body, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(body)), nil
}

func stringArg(req mcp.CallToolRequest, key string) string {
	v, _ := req.GetArguments()[key].(string)
	return v
}

// numberArg reads an optional numeric argument. A present but non-numeric
// value is an input error, not a silent zero.
func numberArg(req mcp.CallToolRequest, key string) (float64, error) {
	v, ok := req.GetArguments()[key]
	if !ok || v == nil {
		return 0, nil
	}
	f, ok := v.(float64)
	if !ok {
		return 0, errors.Wrapf(apperrors.ErrInvalidAmount, "%s must be a number, got %T", key, v)
	}
	return f, nil
}
