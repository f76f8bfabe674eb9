package stake_protocol

import (
	"errors"
	"fmt"
	"math"
	"math/big"

	"github.com/shopspring/decimal"
)

// lamportDecimals is log10 of lamports per SOL.
const lamportDecimals = 9

var ErrInvalidAmount = errors.New("invalid stake amount")

// SolToLamports converts a SOL amount to lamports. Amounts finer than one
// lamport are rejected rather than rounded.
func SolToLamports(sol decimal.Decimal) (uint64, error) {
	if sol.IsNegative() {
		return 0, fmt.Errorf("%w: %s SOL is negative", ErrInvalidAmount, sol)
	}
	lamports := sol.Shift(lamportDecimals)
	if !lamports.IsInteger() {
		return 0, fmt.Errorf("%w: %s SOL is not a whole number of lamports", ErrInvalidAmount, sol)
	}
	n := lamports.BigInt()
	if !n.IsUint64() {
		return 0, fmt.Errorf("%w: %s SOL overflows lamports", ErrInvalidAmount, sol)
	}
	return n.Uint64(), nil
}

// LamportsToSol is used for display only.
func LamportsToSol(lamports uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(lamports), -lamportDecimals)
}

// fundedLamports is the balance a new stake account is created with: the
// requested amount plus the flat rent-exempt minimum.
func fundedLamports(sol decimal.Decimal, rentExempt uint64) (uint64, error) {
	lamports, err := SolToLamports(sol)
	if err != nil {
		return 0, err
	}
	if lamports > math.MaxUint64-rentExempt {
		return 0, fmt.Errorf("%w: %d lamports plus rent %d overflows", ErrInvalidAmount, lamports, rentExempt)
	}
	return lamports + rentExempt, nil
}
