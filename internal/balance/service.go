// Package balance reads native and ERC20 balances for a wallet.
package balance

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fleshka4/eth-mcp-server/internal/amounts"
	"github.com/fleshka4/eth-mcp-server/internal/apperrors"
	"github.com/fleshka4/eth-mcp-server/internal/ethnode"
)

const erc20ABIJSON = `[
	{"inputs":[{"internalType":"address","name":"account","type":"address"}],"name":"balanceOf","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"decimals","outputs":[{"internalType":"uint8","name":"","type":"uint8"}],"stateMutability":"view","type":"function"}
]`

const nativeDecimals = 18

// Output is a balance report. TokenAddress is nil for the native asset.
type Output struct {
	WalletAddress string  `json:"wallet_address"`
	TokenAddress  *string `json:"token_address,omitempty"`
	Balance       string  `json:"balance"`
	Decimals      uint8   `json:"decimals"`
	RawBalance    string  `json:"raw_balance"`
}

// Service reads balances from the node.
type Service struct {
	node  ethnode.Node
	erc20 abi.ABI
	log   *zap.Logger
}

// NewService creates a Service.
func NewService(node ethnode.Node, log *zap.Logger) (*Service, error) {
	erc20, err := abi.JSON(strings.NewReader(erc20ABIJSON))
	if err != nil {
		return nil, errors.Wrap(err, "abi.JSON")
	}
	return &Service{
		node:  node,
		erc20: erc20,
		log:   log,
	}, nil
}

// ETHBalance reads the wallet's native balance at the latest block.
func (s *Service) ETHBalance(ctx context.Context, wallet string) (*Output, error) {
	addr, err := parseAddress(wallet)
	if err != nil {
		return nil, err
	}

	raw, err := s.node.BalanceAt(ctx, addr, nil)
	if err != nil {
		return nil, errors.Wrapf(apperrors.ErrNodeUnavailable, "eth_getBalance for %s: %v", addr, err)
	}

	return &Output{
		WalletAddress: addr.Hex(),
		Balance:       amounts.FormatRaw(raw, nativeDecimals),
		Decimals:      nativeDecimals,
		RawBalance:    raw.String(),
	}, nil
}

// TokenBalance reads the wallet's ERC20 balance of the given token contract.
// The balance and the token's decimals are fetched concurrently.
func (s *Service) TokenBalance(ctx context.Context, wallet, token string) (*Output, error) {
	walletAddr, err := parseAddress(wallet)
	if err != nil {
		return nil, err
	}
	tokenAddr, err := parseAddress(token)
	if err != nil {
		return nil, err
	}

	var (
		raw      *big.Int
		decimals uint8
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var gerr error
		raw, gerr = s.balanceOf(gctx, tokenAddr, walletAddr)
		return gerr
	})
	g.Go(func() error {
		var gerr error
		decimals, gerr = s.tokenDecimals(gctx, tokenAddr)
		return gerr
	})
	if err = g.Wait(); err != nil {
		return nil, err
	}

	tokenHex := tokenAddr.Hex()
	return &Output{
		WalletAddress: walletAddr.Hex(),
		TokenAddress:  &tokenHex,
		Balance:       amounts.FormatRaw(raw, decimals),
		Decimals:      decimals,
		RawBalance:    raw.String(),
	}, nil
}

func (s *Service) balanceOf(ctx context.Context, token, wallet common.Address) (*big.Int, error) {
	data, err := s.erc20.Pack("balanceOf", wallet)
	if err != nil {
		return nil, errors.Wrap(err, "s.erc20.Pack")
	}

	res, err := s.node.CallContract(ctx, ethereum.CallMsg{To: &token, Data: data}, nil)
	if err != nil {
		return nil, errors.Wrapf(apperrors.ErrNodeUnavailable, "balanceOf call for %s: %v", token, err)
	}

	out, err := s.erc20.Unpack("balanceOf", res)
	if err != nil {
		return nil, errors.Wrapf(apperrors.ErrNodeUnavailable, "decode balanceOf for %s: %v", token, err)
	}
	raw, ok := out[0].(*big.Int)
	if !ok {
		return nil, errors.Wrapf(apperrors.ErrNodeUnavailable, "unexpected balanceOf type %T for %s", out[0], token)
	}
	return raw, nil
}

func (s *Service) tokenDecimals(ctx context.Context, token common.Address) (uint8, error) {
	data, err := s.erc20.Pack("decimals")
	if err != nil {
		return 0, errors.Wrap(err, "s.erc20.Pack")
	}

	res, err := s.node.CallContract(ctx, ethereum.CallMsg{To: &token, Data: data}, nil)
	if err != nil {
		return 0, errors.Wrapf(apperrors.ErrNodeUnavailable, "decimals call for %s: %v", token, err)
	}

	out, err := s.erc20.Unpack("decimals", res)
	if err != nil {
		return 0, errors.Wrapf(apperrors.ErrNodeUnavailable, "decode decimals for %s: %v", token, err)
	}
	decimals, ok := out[0].(uint8)
	if !ok {
		return 0, errors.Wrapf(apperrors.ErrNodeUnavailable, "unexpected decimals type %T for %s", out[0], token)
	}
	return decimals, nil
}

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, errors.Wrapf(apperrors.ErrInvalidAddress, "%q", s)
	}
	return common.HexToAddress(s), nil
}
