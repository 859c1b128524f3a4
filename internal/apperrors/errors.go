package apperrors

import "github.com/pkg/errors"

var (
	// ErrInvalidAmount is returned when an amount or slippage value is
	// malformed, non-positive, or carries more precision than the token
	// supports.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidAddress is returned when a token or wallet address is not a
	// well-formed 20-byte hex address.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrUnknownToken is returned when a token symbol is not present in the
	// symbol table.
	ErrUnknownToken = errors.New("unknown token")

	// ErrNodeUnavailable is returned when an RPC call to the Ethereum node
	// fails at the transport level or times out.
	ErrNodeUnavailable = errors.New("node unavailable")

	// ErrSimulationReverted is returned when the constructed swap call would
	// revert on-chain. The wrapped message carries the decoded revert reason
	// when one is present.
	ErrSimulationReverted = errors.New("simulation reverted")

	// ErrUnsupportedVersion is returned when the requested router version is
	// neither V2 nor V3.
	ErrUnsupportedVersion = errors.New("unsupported router version")
)
