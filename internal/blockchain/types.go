// internal/blockchain/types.go
package blockchain

import "errors"

var (
	// ErrInsufficientBalance is returned when the sender cannot cover a transfer.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrTransferRejected is returned when the receiver's hook refuses the value.
	ErrTransferRejected = errors.New("transfer rejected by receiver")

	// ErrZeroAddress is returned for transfers to or from the zero address.
	ErrZeroAddress = errors.New("zero address")
)
