package swap

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/fleshka4/eth-mcp-server/internal/apperrors"
	"github.com/fleshka4/eth-mcp-server/internal/tokens"
)

// DefaultFeeTier is the V3 fee tier used when the request does not name one.
// Single fixed tier, no search: a missing pool at this tier reverts the
// quote rather than silently rerouting the trade.
const DefaultFeeTier = 3000

// EncodePath packs a single-hop V3 path: tokenIn, the fee tier as three
// big-endian bytes, tokenOut.
func EncodePath(tokenIn, tokenOut common.Address, fee uint32) []byte {
	path := make([]byte, 0, 2*common.AddressLength+3)
	path = append(path, tokenIn.Bytes()...)
	path = append(path, byte(fee>>16), byte(fee>>8), byte(fee))
	path = append(path, tokenOut.Bytes()...)
	return path
}

// EncodeV3 builds the quoter call for a single-hop V3 trade. Native sides
// are already substituted with wrapped ether by the resolver, so the path
// always carries token addresses. fee 0 selects DefaultFeeTier.
func EncodeV3(from, to tokens.Resolved, amountIn *big.Int, fee uint32) (CallPlan, error) {
	if fee == 0 {
		fee = DefaultFeeTier
	}
	switch fee {
	case 500, 3000, 10000:
	default:
		return CallPlan{}, errors.Wrapf(apperrors.ErrInvalidAmount, "pool fee must be 500, 3000, or 10000, got %d", fee)
	}

	data, err := v3QuoterABI.Pack("quoteExactInput", EncodePath(from.Address, to.Address, fee), amountIn)
	if err != nil {
		return CallPlan{}, errors.Wrap(err, "v3QuoterABI.Pack")
	}

	return CallPlan{
		Version: V3,
		To:      v3QuoterAddress,
		Data:    data,
	}, nil
}
