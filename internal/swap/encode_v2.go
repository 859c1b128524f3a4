package swap

import (
	"math"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/fleshka4/eth-mcp-server/internal/tokens"
)

// maxDeadline disables the router's deadline check. The call is simulated at
// the current block, never broadcast, so a real deadline adds nothing.
var maxDeadline = new(big.Int).SetUint64(math.MaxUint64)

// EncodeV2 builds the read-only V2 router call for a two-hop path
// [from, to]. The router distinguishes native-input and native-output trades
// from the generic token-to-token entry point, so the encoder selects the
// function by which side is native. amountOutMin is encoded as zero: the
// simulation supplies the true estimate, and slippage is applied only when
// the quote is assembled.
func EncodeV2(from, to tokens.Resolved, amountIn *big.Int) (CallPlan, error) {
	path := []common.Address{from.Address, to.Address}

	var (
		data  []byte
		value *big.Int
		err   error
	)
	zero := big.NewInt(0)

	switch {
	case from.IsNative:
		data, err = v2RouterABI.Pack("swapExactETHForTokens", zero, path, recipientSentinel, maxDeadline)
		value = amountIn
	case to.IsNative:
		data, err = v2RouterABI.Pack("swapExactTokensForETH", amountIn, zero, path, recipientSentinel, maxDeadline)
	default:
		data, err = v2RouterABI.Pack("swapExactTokensForTokens", amountIn, zero, path, recipientSentinel, maxDeadline)
	}
	if err != nil {
		return CallPlan{}, errors.Wrap(err, "v2RouterABI.Pack")
	}

	return CallPlan{
		Version: V2,
		To:      v2RouterAddress,
		Data:    data,
		Value:   value,
	}, nil
}
