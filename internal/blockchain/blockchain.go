// internal/blockchain/blockchain.go
package blockchain

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// ValueLedger moves native ETH between accounts.
type ValueLedger interface {
	BalanceOf(addr common.Address) *uint256.Int
	// Transfer moves amount from one account to another. A zero amount is a no-op.
	Transfer(ctx context.Context, from, to common.Address, amount *uint256.Int) error
}

// ReceiveHook runs after an account is credited. Returning an error rejects the
// transfer, the way a contract without a payable fallback reverts. Calls the
// hook makes into other components must pass ctx along: it carries the revert
// journal and marks the call as nested.
type ReceiveHook func(ctx context.Context, from common.Address, amount *uint256.Int) error
