// Package swap simulates Uniswap V2 and V3 trades against an Ethereum node
// using read-only calls, and derives slippage-bounded quotes with exact
// decimal arithmetic.
package swap

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/fleshka4/eth-mcp-server/internal/apperrors"
)

// Version selects the Uniswap protocol a trade is routed through. The set is
// closed: every switch over it handles both members and rejects the rest.
type Version string

const (
	V2 Version = "v2"
	V3 Version = "v3"
)

// ParseVersion parses a user-supplied version string. An empty string
// defaults to V2.
func ParseVersion(s string) (Version, error) {
	switch Version(s) {
	case "":
		return V2, nil
	case V2, "V2":
		return V2, nil
	case V3, "V3":
		return V3, nil
	default:
		return "", errors.Wrapf(apperrors.ErrUnsupportedVersion, "%q", s)
	}
}

// Request describes a swap to simulate. Token references are passed through
// as supplied; the resolver normalizes them.
type Request struct {
	FromToken         string
	ToToken           string
	Amount            string
	SlippageTolerance string
	Version           Version

	// PoolFee selects the V3 fee tier (500, 3000, or 10000). Zero means the
	// default tier. Ignored for V2.
	PoolFee uint32
}

// Quote is the fully assembled simulation result.
type Quote struct {
	FromToken         string  `json:"from_token"`
	ToToken           string  `json:"to_token"`
	InputAmount       string  `json:"input_amount"`
	EstimatedOutput   string  `json:"estimated_output"`
	MinimumOutput     string  `json:"minimum_output"`
	SlippageTolerance string  `json:"slippage_tolerance"`
	EstimatedGas      uint64  `json:"estimated_gas"`
	EstimatedGasETH   string  `json:"estimated_gas_eth"`
	PriceImpact       *string `json:"price_impact"`
	InvolvesETH       bool    `json:"involves_eth"`
	Version           string  `json:"version"`
}

// CallPlan is a fully encoded read-only router call: the target contract,
// the ABI payload, and the ether value to attach when the input side is
// native. Encoders produce it; the executor runs it.
type CallPlan struct {
	Version Version
	To      common.Address
	Data    []byte

	// Value is non-nil only for native-input V2 trades.
	Value *big.Int
}
