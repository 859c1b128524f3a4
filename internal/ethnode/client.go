package ethnode

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
)

// Node is the minimal RPC capability the services depend on. It is the only
// seam between this repository and a live Ethereum node; tests substitute a
// generated mock.
type Node interface {
	// CallContract executes a read-only call against the given block
	// (nil means latest).
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)

	// EstimateGas estimates the gas needed to execute the call.
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)

	// SuggestGasPrice returns the node's suggested gas price in wei.
	SuggestGasPrice(ctx context.Context) (*big.Int, error)

	// BalanceAt returns the wei balance of an account at the given block
	// (nil means latest).
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
}

// Dial connects to an Ethereum JSON-RPC endpoint.
func Dial(rpcURL string) (Node, error) {
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, errors.Wrap(err, "ethclient.Dial")
	}
	return client, nil
}
