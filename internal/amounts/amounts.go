// Package amounts converts between raw integer token amounts and
// human-readable decimal amounts without ever touching binary floating
// point. All financial quantities in this repository pass through here.
package amounts

import (
	"math/big"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/fleshka4/eth-mcp-server/internal/apperrors"
)

// Parse parses a user-supplied decimal string.
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, errors.Wrapf(apperrors.ErrInvalidAmount, "%q is not a decimal number", s)
	}
	return d, nil
}

// ToRaw converts a human-readable amount into the token's smallest unit.
// It fails if the amount is negative or carries more fractional digits than
// the token supports: silently truncating meaningful precision would
// misrepresent the trade.
func ToRaw(amount decimal.Decimal, decimals uint8) (*big.Int, error) {
	if amount.IsNegative() {
		return nil, errors.Wrap(apperrors.ErrInvalidAmount, "amount is negative")
	}

	shifted := amount.Shift(int32(decimals))
	if !shifted.IsInteger() {
		return nil, errors.Wrapf(apperrors.ErrInvalidAmount,
			"amount %s has more than %d decimal places", amount, decimals)
	}

	return shifted.BigInt(), nil
}

// FromRaw converts a raw integer amount into its decimal representation.
func FromRaw(raw *big.Int, decimals uint8) decimal.Decimal {
	return decimal.NewFromBigInt(raw, -int32(decimals))
}

// FormatRaw renders a raw amount with exactly `decimals` fractional digits,
// so that output formatting is stable across amounts.
func FormatRaw(raw *big.Int, decimals uint8) string {
	return FromRaw(raw, decimals).StringFixed(int32(decimals))
}
