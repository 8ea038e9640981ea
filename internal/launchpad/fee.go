// internal/launchpad/fee.go
package launchpad

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/rovshanmuradov/launchpad/internal/blockchain"
	"github.com/rovshanmuradov/launchpad/internal/dex/curve"
	"github.com/rovshanmuradov/launchpad/internal/events"
	"github.com/rovshanmuradov/launchpad/internal/utils/logger"
	"go.uber.org/zap"
)

// feeVault is the running total of protocol fee owed to the operator.
type feeVault struct {
	mu    sync.Mutex
	total *uint256.Int
}

func newFeeVault() *feeVault {
	return &feeVault{total: new(uint256.Int)}
}

func (v *feeVault) Total() *uint256.Int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return new(uint256.Int).Set(v.total)
}

func (v *feeVault) accrue(ctx context.Context, amount *uint256.Int) {
	if amount.IsZero() {
		return
	}
	delta := new(uint256.Int).Set(amount)

	v.mu.Lock()
	v.total = new(uint256.Int).Add(v.total, delta)
	v.mu.Unlock()

	blockchain.Record(ctx, func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		v.total = new(uint256.Int).Sub(v.total, delta)
	})
}

// drain zeroes the total and returns what it held.
func (v *feeVault) drain(ctx context.Context) *uint256.Int {
	v.mu.Lock()
	amount := v.total
	v.total = new(uint256.Int)
	v.mu.Unlock()

	blockchain.Record(ctx, func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		v.total = new(uint256.Int).Add(v.total, amount)
	})
	return new(uint256.Int).Set(amount)
}

// ClaimFee pays the accrued protocol fee to destination and resets it. The
// reset is undone if the payout fails.
func (f *Factory) ClaimFee(ctx context.Context, caller, destination common.Address) (*uint256.Int, error) {
	var claimed *uint256.Int
	err := f.execute(ctx, "claim_fee", func(ctx context.Context, tx *txn) error {
		if err := f.onlyOwner(caller); err != nil {
			return err
		}
		if destination == (common.Address{}) {
			return curve.ErrZeroAddress
		}

		claimed = f.fees.drain(ctx)
		if err := f.opts.State.Transfer(ctx, f.opts.Address, destination, claimed); err != nil {
			return fmt.Errorf("%w: fee payout: %w", curve.ErrTransferFailed, err)
		}

		tx.emit(events.NewFeeClaimed(destination, claimed))
		tx.logger.Info("Fee claimed",
			zap.String("destination", destination.Hex()),
			logger.Amount("amount", claimed, curve.DefaultDecimals))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}
