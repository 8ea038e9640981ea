// =============================
// File: internal/dex/curve/errors.go
// =============================
package curve

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
)

// Validation errors.
var (
	ErrZeroAddress         = errors.New("zero address")
	ErrZeroAmount          = errors.New("zero amount")
	ErrInvalidRatio        = errors.New("invalid initial ratio")
	ErrInvalidFeeRate      = errors.New("fee rate must be below the fee denominator")
	ErrInvalidMigrationFee = errors.New("migration fee must be below 1.0")
	ErrInvalidDenominator  = errors.New("fee denominator must be positive")
	ErrInvalidDecimals     = errors.New("invalid decimals")
	ErrInvalidSupply       = errors.New("total supply must be positive")
)

// Feasibility errors.
var (
	ErrIncompatibleGeometry               = errors.New("incompatible curve geometry")
	ErrInvalidTR                          = errors.New("invalid token split between curve and AMM")
	ErrNetRaiseZero                       = errors.New("net raise is zero")
	ErrBaseRaiseZero                      = errors.New("base raise is zero")
	ErrInvalidVirtuals                    = errors.New("invalid virtual reserves")
	ErrInvalidTokenDelta                  = errors.New("invalid token delta")
	ErrInsufficientOutputAmount           = errors.New("insufficient output amount")
	ErrInvalidVirtualReservesForMigration = errors.New("invalid virtual reserves for migration")
	ErrOverflow                           = errors.New("arithmetic overflow")
	ErrDivisionByZero                     = errors.New("division by zero")
)

// Funds errors.
var (
	ErrInsufficientFundsInProtocol   = errors.New("insufficient funds in protocol")
	ErrInsufficientEthForPartialFill = errors.New("insufficient ETH for partial fill")
	ErrNotEnoughFunds                = errors.New("not enough funds")
	ErrInsufficientTokenBalanceForLP = errors.New("insufficient token balance for LP")
	ErrInsufficientTokenBalance      = errors.New("insufficient token balance")
)

// Authorization and transfer errors.
var (
	ErrUnauthorized   = errors.New("caller is not the operator")
	ErrTransferFailed = errors.New("transfer failed")
)

// AmountError reports a funds shortfall with the amounts involved.
type AmountError struct {
	Err       error
	Required  *uint256.Int
	Available *uint256.Int
}

func (e *AmountError) Error() string {
	return fmt.Sprintf("%v: required %s, available %s", e.Err, e.Required.Dec(), e.Available.Dec())
}

func (e *AmountError) Unwrap() error {
	return e.Err
}

// NewAmountError builds an AmountError; the amounts are copied.
func NewAmountError(err error, required, available *uint256.Int) *AmountError {
	return &AmountError{
		Err:       err,
		Required:  new(uint256.Int).Set(required),
		Available: new(uint256.Int).Set(available),
	}
}

// InsufficientEthForPartialFillError is returned when a buy would exhaust the
// curve inventory but the attached value does not cover the exact gross cost.
type InsufficientEthForPartialFillError struct {
	Required *uint256.Int
	Provided *uint256.Int
}

func (e *InsufficientEthForPartialFillError) Error() string {
	return fmt.Sprintf("%v: required %s, provided %s",
		ErrInsufficientEthForPartialFill, e.Required.Dec(), e.Provided.Dec())
}

func (e *InsufficientEthForPartialFillError) Unwrap() error {
	return ErrInsufficientEthForPartialFill
}
