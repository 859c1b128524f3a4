package swap

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/fleshka4/eth-mcp-server/internal/apperrors"
	"github.com/fleshka4/eth-mcp-server/internal/ethnode"
)

// Executor runs encoded router calls against the node. It performs exactly
// one eth_call and one gas estimation per plan, never retries, and never
// broadcasts anything.
type Executor struct {
	node ethnode.Node
	log  *zap.Logger
}

// NewExecutor creates an Executor.
func NewExecutor(node ethnode.Node, log *zap.Logger) *Executor {
	return &Executor{
		node: node,
		log:  log,
	}
}

// Simulate executes the plan read-only and returns the decoded raw output
// amount and the gas estimate. A revert in either call fails the whole
// simulation: the revert is a property of current pool state, so retrying
// or substituting defaults would misstate the trade.
func (e *Executor) Simulate(ctx context.Context, plan CallPlan) (*big.Int, uint64, error) {
	msg := ethereum.CallMsg{
		From:  simulationSender,
		To:    &plan.To,
		Data:  plan.Data,
		Value: plan.Value,
	}

	e.log.Debug("simulating swap call",
		zap.String("to", plan.To.Hex()),
		zap.String("version", string(plan.Version)),
		zap.Int("data_len", len(plan.Data)),
		zap.Bool("has_value", plan.Value != nil),
	)

	res, err := e.node.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, 0, classifyCallError(err, "eth_call")
	}

	out, err := decodeOutput(plan.Version, res)
	if err != nil {
		return nil, 0, err
	}

	gas, err := e.node.EstimateGas(ctx, msg)
	if err != nil {
		return nil, 0, classifyCallError(err, "estimate_gas")
	}

	return out, gas, nil
}

// decodeOutput extracts the output amount from the router's return data.
// V2 entry points return the amounts array for every hop; the last element
// is the output. The V3 quoter returns the amount directly.
func decodeOutput(version Version, res []byte) (*big.Int, error) {
	switch version {
	case V2:
		out, err := v2RouterABI.Unpack("swapExactTokensForTokens", res)
		if err != nil {
			return nil, errors.Wrapf(apperrors.ErrNodeUnavailable, "decode v2 output: %v", err)
		}
		amounts, ok := out[0].([]*big.Int)
		if !ok || len(amounts) == 0 {
			return nil, errors.Wrap(apperrors.ErrNodeUnavailable, "unexpected v2 output shape")
		}
		return amounts[len(amounts)-1], nil
	case V3:
		out, err := v3QuoterABI.Unpack("quoteExactInput", res)
		if err != nil {
			return nil, errors.Wrapf(apperrors.ErrNodeUnavailable, "decode v3 output: %v", err)
		}
		amount, ok := out[0].(*big.Int)
		if !ok {
			return nil, errors.Wrap(apperrors.ErrNodeUnavailable, "unexpected v3 output shape")
		}
		return amount, nil
	default:
		return nil, errors.Wrapf(apperrors.ErrUnsupportedVersion, "%q", version)
	}
}

// classifyCallError maps a node error to the taxonomy: reverts become
// SimulationReverted with the decoded reason, everything else is a
// transport-level NodeUnavailable.
func classifyCallError(err error, op string) error {
	if reason, ok := revertReason(err); ok {
		if reason != "" {
			return errors.Wrapf(apperrors.ErrSimulationReverted, "%s: %s", op, reason)
		}
		return errors.Wrap(apperrors.ErrSimulationReverted, op)
	}
	return errors.Wrapf(apperrors.ErrNodeUnavailable, "%s: %v", op, err)
}
