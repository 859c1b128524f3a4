package swap

import (
	"context"
	"math/big"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fleshka4/eth-mcp-server/internal/amounts"
	"github.com/fleshka4/eth-mcp-server/internal/apperrors"
	"github.com/fleshka4/eth-mcp-server/internal/ethnode"
	"github.com/fleshka4/eth-mcp-server/internal/tokens"
)

var hundred = decimal.NewFromInt(100)

// Service produces swap quotes by simulating router calls against current
// chain state.
type Service struct {
	resolver        *tokens.Resolver
	exec            *Executor
	node            ethnode.Node
	log             *zap.Logger
	defaultGasPrice *big.Int
}

// NewService creates a Service. defaultGasPriceWei is used only when the
// node declines to suggest a gas price.
func NewService(node ethnode.Node, registry tokens.Registry, defaultGasPriceWei int64, log *zap.Logger) (*Service, error) {
	resolver, err := tokens.NewResolver(node, registry)
	if err != nil {
		return nil, errors.Wrap(err, "tokens.NewResolver")
	}
	return &Service{
		resolver:        resolver,
		exec:            NewExecutor(node, log),
		node:            node,
		log:             log,
		defaultGasPrice: big.NewInt(defaultGasPriceWei),
	}, nil
}

// SimulateSwap validates the request, resolves both token references,
// simulates the trade read-only, and assembles the quote. Nothing is signed
// or broadcast at any point.
func (s *Service) SimulateSwap(ctx context.Context, req Request) (*Quote, error) {
	version, err := ParseVersion(string(req.Version))
	if err != nil {
		return nil, err
	}

	amount, err := amounts.Parse(req.Amount)
	if err != nil {
		return nil, err
	}
	if !amount.IsPositive() {
		return nil, errors.Wrapf(apperrors.ErrInvalidAmount, "amount must be positive, got %s", req.Amount)
	}

	slippage, err := amounts.Parse(req.SlippageTolerance)
	if err != nil {
		return nil, err
	}
	if slippage.IsNegative() || slippage.GreaterThan(hundred) {
		return nil, errors.Wrapf(apperrors.ErrInvalidAmount, "slippage tolerance must be within [0, 100], got %s", req.SlippageTolerance)
	}

	var from, to tokens.Resolved
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var rerr error
		from, rerr = s.resolver.Resolve(gctx, req.FromToken)
		return rerr
	})
	g.Go(func() error {
		var rerr error
		to, rerr = s.resolver.Resolve(gctx, req.ToToken)
		return rerr
	})
	if err = g.Wait(); err != nil {
		return nil, err
	}

	// Identical resolved addresses cover both duplicate references and the
	// ETH/WETH pair, which resolves to the same contract on both sides.
	if from.Address == to.Address {
		return nil, errors.Wrapf(apperrors.ErrInvalidAddress,
			"from and to resolve to the same token %s", from.Address.Hex())
	}

	rawIn, err := amounts.ToRaw(amount, from.Decimals)
	if err != nil {
		return nil, err
	}

	var plan CallPlan
	switch version {
	case V2:
		plan, err = EncodeV2(from, to, rawIn)
	case V3:
		plan, err = EncodeV3(from, to, rawIn, req.PoolFee)
	default:
		err = errors.Wrapf(apperrors.ErrUnsupportedVersion, "%q", version)
	}
	if err != nil {
		return nil, err
	}

	rawOut, gas, err := s.exec.Simulate(ctx, plan)
	if err != nil {
		return nil, err
	}

	gasPrice, err := s.node.SuggestGasPrice(ctx)
	if err != nil {
		s.log.Warn("gas price suggestion failed, using configured default",
			zap.Error(err),
			zap.String("default_wei", s.defaultGasPrice.String()),
		)
		gasPrice = s.defaultGasPrice
	}

	return s.assemble(req, version, from, to, amount, slippage, rawOut, gas, gasPrice), nil
}

func (s *Service) assemble(
	req Request,
	version Version,
	from, to tokens.Resolved,
	amount, slippage decimal.Decimal,
	rawOut *big.Int,
	gas uint64,
	gasPrice *big.Int,
) *Quote {
	outDec := amounts.FromRaw(rawOut, to.Decimals)
	// Shift keeps the division by 100 exact; Div would round the quotient
	// at DivisionPrecision and could push the minimum above the true floor.
	minOut := outDec.Mul(hundred.Sub(slippage)).Shift(-2).Truncate(int32(to.Decimals))

	gasCostWei := new(big.Int).Mul(new(big.Int).SetUint64(gas), gasPrice)

	q := &Quote{
		FromToken:         req.FromToken,
		ToToken:           req.ToToken,
		InputAmount:       amount.String(),
		EstimatedOutput:   outDec.StringFixed(int32(to.Decimals)),
		MinimumOutput:     minOut.StringFixed(int32(to.Decimals)),
		SlippageTolerance: slippage.String(),
		EstimatedGas:      gas,
		EstimatedGasETH:   amounts.FormatRaw(gasCostWei, 18),
		PriceImpact:       nil,
		InvolvesETH:       from.IsNative || to.IsNative,
		Version:           string(version),
	}

	s.log.Info("swap simulated",
		zap.String("from", req.FromToken),
		zap.String("to", req.ToToken),
		zap.String("version", q.Version),
		zap.String("estimated_output", q.EstimatedOutput),
		zap.Uint64("estimated_gas", gas),
	)
	return q
}
