// Package tokens normalizes user-supplied token references (the "ETH"
// sentinel, symbols, or contract addresses) into canonical contract
// addresses with known decimals.
package tokens

import (
	"context"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/fleshka4/eth-mcp-server/internal/apperrors"
	"github.com/fleshka4/eth-mcp-server/internal/ethnode"
)

const erc20DecimalsABIJSON = `[
	{"inputs":[],"name":"decimals","outputs":[{"internalType":"uint8","name":"","type":"uint8"}],"stateMutability":"view","type":"function"}
]`

const nativeDecimals = 18

// Resolved is a token reference normalized for router calls. When the native
// asset was requested, Address holds the wrapped-ether contract so the value
// can be used uniformly in swap paths.
type Resolved struct {
	Address  common.Address
	Decimals uint8
	IsNative bool
}

// Resolver maps token references to Resolved values, querying the node for
// ERC20 decimals when the reference is a contract address.
type Resolver struct {
	node     ethnode.Node
	registry Registry
	erc20    abi.ABI
}

// NewResolver creates a Resolver backed by the given node and symbol table.
func NewResolver(node ethnode.Node, registry Registry) (*Resolver, error) {
	erc20, err := abi.JSON(strings.NewReader(erc20DecimalsABIJSON))
	if err != nil {
		return nil, errors.Wrap(err, "abi.JSON")
	}
	return &Resolver{
		node:     node,
		registry: registry,
		erc20:    erc20,
	}, nil
}

// IsNativeRef reports whether the reference names the chain's native asset.
func IsNativeRef(ref string) bool {
	lower := strings.ToLower(ref)
	return lower == "eth" || lower == "ethereum"
}

// Resolve normalizes a token reference. The native sentinel and table
// symbols resolve without a node call; a hex address is validated and its
// decimals read from the chain.
func (r *Resolver) Resolve(ctx context.Context, ref string) (Resolved, error) {
	if IsNativeRef(ref) {
		return Resolved{
			Address:  WETHAddress,
			Decimals: nativeDecimals,
			IsNative: true,
		}, nil
	}

	if strings.HasPrefix(ref, "0x") || strings.HasPrefix(ref, "0X") {
		if !common.IsHexAddress(ref) {
			return Resolved{}, errors.Wrapf(apperrors.ErrInvalidAddress, "%q", ref)
		}
		return r.resolveAddress(ctx, common.HexToAddress(ref))
	}

	entry, ok := r.registry[strings.ToUpper(ref)]
	if !ok {
		return Resolved{}, errors.Wrapf(apperrors.ErrUnknownToken, "symbol %q", ref)
	}
	return Resolved{
		Address:  entry.Address,
		Decimals: entry.Decimals,
	}, nil
}

func (r *Resolver) resolveAddress(ctx context.Context, addr common.Address) (Resolved, error) {
	decimals, err := r.TokenDecimals(ctx, addr)
	if err != nil {
		return Resolved{}, err
	}
	return Resolved{
		Address:  addr,
		Decimals: decimals,
	}, nil
}

// TokenDecimals reads the ERC20 decimals() value of a token contract.
func (r *Resolver) TokenDecimals(ctx context.Context, token common.Address) (uint8, error) {
	data, err := r.erc20.Pack("decimals")
	if err != nil {
		return 0, errors.Wrap(err, "r.erc20.Pack")
	}

	res, err := r.node.CallContract(ctx, ethereum.CallMsg{To: &token, Data: data}, nil)
	if err != nil {
		return 0, errors.Wrapf(apperrors.ErrNodeUnavailable, "decimals call for %s: %v", token, err)
	}

	out, err := r.erc20.Unpack("decimals", res)
	if err != nil {
		return 0, errors.Wrapf(apperrors.ErrNodeUnavailable, "decode decimals for %s: %v", token, err)
	}

	decimals, ok := out[0].(uint8)
	if !ok {
		return 0, errors.Wrapf(apperrors.ErrNodeUnavailable, "unexpected decimals type %T for %s", out[0], token)
	}
	return decimals, nil
}
