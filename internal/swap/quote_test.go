package swap

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/fleshka4/eth-mcp-server/internal/apperrors"
	"github.com/fleshka4/eth-mcp-server/internal/ethnode/mock"
	"github.com/fleshka4/eth-mcp-server/internal/tokens"
)

const testDefaultGasPriceWei = 20_000_000_000

func newTestService(t *testing.T, node *mock.MockNode) *Service {
	t.Helper()
	svc, err := NewService(node, tokens.DefaultRegistry(), testDefaultGasPriceWei, zap.NewNop())
	require.NoError(t, err)
	return svc
}

// expectContractCalls answers decimals() for known tokens and returns the
// given router response for calls hitting the V2 router.
func expectContractCalls(t *testing.T, node *mock.MockNode, routerRes []byte, routerErr error) {
	t.Helper()
	node.EXPECT().
		CallContract(gomock.Any(), gomock.Any(), gomock.Nil()).
		DoAndReturn(func(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
			switch *msg.To {
			case testUSDC.Address:
				return packUint8(t, 6), nil
			case testDAI.Address, tokens.WETHAddress:
				return packUint8(t, 18), nil
			case v2RouterAddress:
				return routerRes, routerErr
			default:
				return nil, errors.Errorf("unexpected call target %s", msg.To)
			}
		}).
		AnyTimes()
}

func TestServiceSimulateSwap(t *testing.T) {
	t.Parallel()

	t.Run("eth to usdc quote", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		node := mock.NewMockNode(ctrl)

		expectContractCalls(t, node,
			packUint256Slice(t, big.NewInt(1_000_000_000_000_000_000), big.NewInt(3_200_123_456)), nil)
		node.EXPECT().
			EstimateGas(gomock.Any(), gomock.Any()).
			Return(uint64(150_000), nil)
		node.EXPECT().
			SuggestGasPrice(gomock.Any()).
			Return(big.NewInt(20_000_000_000), nil)

		quote, err := newTestService(t, node).SimulateSwap(context.Background(), Request{
			FromToken:         "ETH",
			ToToken:           "USDC",
			Amount:            "1.0",
			SlippageTolerance: "0.5",
		})
		require.NoError(t, err)

		assert.Equal(t, "ETH", quote.FromToken)
		assert.Equal(t, "USDC", quote.ToToken)
		assert.Equal(t, "1", quote.InputAmount)
		assert.Equal(t, "3200.123456", quote.EstimatedOutput)
		assert.Equal(t, "3184.122838", quote.MinimumOutput)
		assert.Equal(t, "0.5", quote.SlippageTolerance)
		assert.Equal(t, uint64(150_000), quote.EstimatedGas)
		assert.Equal(t, "0.003000000000000000", quote.EstimatedGasETH)
		assert.Nil(t, quote.PriceImpact)
		assert.True(t, quote.InvolvesETH)
		assert.Equal(t, "v2", quote.Version)
	})

	t.Run("zero slippage keeps estimate as minimum", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		node := mock.NewMockNode(ctrl)

		expectContractCalls(t, node,
			packUint256Slice(t, big.NewInt(1_000_000_000_000_000_000), big.NewInt(3_200_123_456)), nil)
		node.EXPECT().
			EstimateGas(gomock.Any(), gomock.Any()).
			Return(uint64(150_000), nil)
		node.EXPECT().
			SuggestGasPrice(gomock.Any()).
			Return(big.NewInt(20_000_000_000), nil)

		quote, err := newTestService(t, node).SimulateSwap(context.Background(), Request{
			FromToken:         "ETH",
			ToToken:           "USDC",
			Amount:            "1.0",
			SlippageTolerance: "0",
		})
		require.NoError(t, err)
		assert.Equal(t, quote.EstimatedOutput, quote.MinimumOutput)
	})

	t.Run("tiny slippage still floors below the estimate", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		node := mock.NewMockNode(ctrl)

		// The exact product carries far more fractional digits than
		// decimal division keeps by default; the minimum must still be
		// the floor, never a rounded-up value equal to the estimate.
		expectContractCalls(t, node,
			packUint256Slice(t, big.NewInt(1_000_000_000_000_000_000), big.NewInt(1_000_000_000_000)), nil)
		node.EXPECT().
			EstimateGas(gomock.Any(), gomock.Any()).
			Return(uint64(150_000), nil)
		node.EXPECT().
			SuggestGasPrice(gomock.Any()).
			Return(big.NewInt(20_000_000_000), nil)

		quote, err := newTestService(t, node).SimulateSwap(context.Background(), Request{
			FromToken:         "ETH",
			ToToken:           "USDC",
			Amount:            "1.0",
			SlippageTolerance: "0.000000000000000000001",
		})
		require.NoError(t, err)
		assert.Equal(t, "1000000.000000", quote.EstimatedOutput)
		assert.Equal(t, "999999.999999", quote.MinimumOutput)
		assert.NotEqual(t, quote.EstimatedOutput, quote.MinimumOutput)
	})

	t.Run("gas price fallback uses configured default", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		node := mock.NewMockNode(ctrl)

		expectContractCalls(t, node,
			packUint256Slice(t, big.NewInt(1_000_000_000_000_000_000), big.NewInt(3_200_123_456)), nil)
		node.EXPECT().
			EstimateGas(gomock.Any(), gomock.Any()).
			Return(uint64(150_000), nil)
		node.EXPECT().
			SuggestGasPrice(gomock.Any()).
			Return(nil, errors.New("method not supported"))

		quote, err := newTestService(t, node).SimulateSwap(context.Background(), Request{
			FromToken:         "ETH",
			ToToken:           "USDC",
			Amount:            "1.0",
			SlippageTolerance: "0.5",
		})
		require.NoError(t, err)
		assert.Equal(t, "0.003000000000000000", quote.EstimatedGasETH)
	})

	t.Run("router revert fails the quote", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		node := mock.NewMockNode(ctrl)

		expectContractCalls(t, node, nil,
			errors.New("execution reverted: UniswapV2: INSUFFICIENT_LIQUIDITY"))

		quote, err := newTestService(t, node).SimulateSwap(context.Background(), Request{
			FromToken:         "ETH",
			ToToken:           "USDC",
			Amount:            "1.0",
			SlippageTolerance: "0.5",
		})
		assert.Nil(t, quote)
		assert.ErrorIs(t, err, apperrors.ErrSimulationReverted)
		assert.Contains(t, err.Error(), "INSUFFICIENT_LIQUIDITY")
	})

	t.Run("identical resolved tokens are rejected", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		node := mock.NewMockNode(ctrl)
		expectContractCalls(t, node, nil, nil)

		_, err := newTestService(t, node).SimulateSwap(context.Background(), Request{
			FromToken:         "ETH",
			ToToken:           "WETH",
			Amount:            "1.0",
			SlippageTolerance: "0.5",
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidAddress)
	})

	t.Run("validation failures never touch the node", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name    string
			req     Request
			wantErr error
		}{
			{
				name: "unknown symbol",
				req: Request{
					FromToken: "FAKE", ToToken: "USDC",
					Amount: "1.0", SlippageTolerance: "0.5",
				},
				wantErr: apperrors.ErrUnknownToken,
			},
			{
				name: "non-numeric amount",
				req: Request{
					FromToken: "ETH", ToToken: "USDC",
					Amount: "abc", SlippageTolerance: "0.5",
				},
				wantErr: apperrors.ErrInvalidAmount,
			},
			{
				name: "negative amount",
				req: Request{
					FromToken: "ETH", ToToken: "USDC",
					Amount: "-1", SlippageTolerance: "0.5",
				},
				wantErr: apperrors.ErrInvalidAmount,
			},
			{
				name: "zero amount",
				req: Request{
					FromToken: "ETH", ToToken: "USDC",
					Amount: "0", SlippageTolerance: "0.5",
				},
				wantErr: apperrors.ErrInvalidAmount,
			},
			{
				name: "slippage above hundred",
				req: Request{
					FromToken: "ETH", ToToken: "USDC",
					Amount: "1.0", SlippageTolerance: "150",
				},
				wantErr: apperrors.ErrInvalidAmount,
			},
			{
				name: "unsupported version",
				req: Request{
					FromToken: "ETH", ToToken: "USDC",
					Amount: "1.0", SlippageTolerance: "0.5",
					Version: "v9",
				},
				wantErr: apperrors.ErrUnsupportedVersion,
			},
			{
				name: "malformed address",
				req: Request{
					FromToken: "0xnotanaddress", ToToken: "USDC",
					Amount: "1.0", SlippageTolerance: "0.5",
				},
				wantErr: apperrors.ErrInvalidAddress,
			},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()

				ctrl := gomock.NewController(t)
				node := mock.NewMockNode(ctrl)
				// Router calls must never happen for invalid input.
				expectContractCalls(t, node, nil, errors.New("router must not be called"))

				_, err := newTestService(t, node).SimulateSwap(context.Background(), tt.req)
				assert.ErrorIs(t, err, tt.wantErr)
			})
		}
	})

	t.Run("v3 pool fee validation", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		node := mock.NewMockNode(ctrl)
		expectContractCalls(t, node, nil, nil)

		_, err := newTestService(t, node).SimulateSwap(context.Background(), Request{
			FromToken: "ETH", ToToken: "USDC",
			Amount: "1.0", SlippageTolerance: "0.5",
			Version: V3, PoolFee: 1234,
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)
	})

	t.Run("v3 quote uses the quoter", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		node := mock.NewMockNode(ctrl)

		node.EXPECT().
			CallContract(gomock.Any(), gomock.Any(), gomock.Nil()).
			DoAndReturn(func(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
				switch *msg.To {
				case testUSDC.Address:
					return packUint8(t, 6), nil
				case v3QuoterAddress:
					return packUint256(t, big.NewInt(3_199_500_000)), nil
				default:
					return nil, errors.Errorf("unexpected call target %s", msg.To)
				}
			}).
			AnyTimes()
		node.EXPECT().
			EstimateGas(gomock.Any(), gomock.Any()).
			Return(uint64(180_000), nil)
		node.EXPECT().
			SuggestGasPrice(gomock.Any()).
			Return(big.NewInt(20_000_000_000), nil)

		quote, err := newTestService(t, node).SimulateSwap(context.Background(), Request{
			FromToken: "ETH", ToToken: "USDC",
			Amount: "1.0", SlippageTolerance: "1",
			Version: V3,
		})
		require.NoError(t, err)
		assert.Equal(t, "v3", quote.Version)
		assert.Equal(t, "3199.500000", quote.EstimatedOutput)
		assert.Equal(t, "3167.505000", quote.MinimumOutput)
	})
}
