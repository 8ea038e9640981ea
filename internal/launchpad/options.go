// =============================
// File: internal/launchpad/options.go
// =============================
package launchpad

import (
	"context"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rovshanmuradov/launchpad/internal/blockchain"
	"github.com/rovshanmuradov/launchpad/internal/dex/amm"
	"github.com/rovshanmuradov/launchpad/internal/dex/curve"
	"github.com/rovshanmuradov/launchpad/internal/events"
	"github.com/rovshanmuradov/launchpad/internal/token"
	"go.uber.org/zap"
)

// DefaultDeadline bounds how stale the AMM pool may be when a migration lands.
const DefaultDeadline = 5 * time.Minute

// TokenRegistry deploys and resolves launched tokens.
type TokenRegistry interface {
	Register(ctx context.Context, tok *token.Token) error
	Lookup(addr common.Address) (*token.Token, bool)
}

// OperationObserver receives the outcome of every mutating operation.
type OperationObserver interface {
	ObserveOperation(op string, d time.Duration, err error)
}

// Options wires a Factory to its collaborators.
type Options struct {
	// Address is the factory account holding curve ETH, fees and unsold tokens.
	Address common.Address
	// Owner is the operator allowed to configure, migrate and claim fees.
	Owner  common.Address
	State  blockchain.ValueLedger
	Tokens TokenRegistry
	Router amm.Router
	// Bus receives every committed notification. Optional.
	Bus *events.Bus
	// Clock defaults to time.Now.
	Clock func() time.Time
	// Deadline defaults to DefaultDeadline.
	Deadline time.Duration
	// SlippageBps defaults to curve.LiquiditySlippageBps.
	SlippageBps uint64
	// LPRecipient receives the pool shares minted by migrations; defaults to Address.
	LPRecipient common.Address
	// Observer is told about every committed or reverted operation. Optional.
	Observer OperationObserver
	Logger   *zap.Logger
}

func (o *Options) validate() error {
	if o.Address == (common.Address{}) || o.Owner == (common.Address{}) {
		return curve.ErrZeroAddress
	}
	if o.State == nil {
		return errors.New("launchpad: value ledger is required")
	}
	if o.Tokens == nil {
		return errors.New("launchpad: token registry is required")
	}
	if o.Router == nil {
		return errors.New("launchpad: AMM router is required")
	}
	if o.SlippageBps >= curve.BpsDenominator {
		return errors.New("launchpad: slippage must be below 10000 bps")
	}
	return nil
}

func (o *Options) setDefaults() {
	if o.Clock == nil {
		o.Clock = time.Now
	}
	if o.Deadline <= 0 {
		o.Deadline = DefaultDeadline
	}
	if o.SlippageBps == 0 {
		o.SlippageBps = curve.LiquiditySlippageBps
	}
	if o.LPRecipient == (common.Address{}) {
		o.LPRecipient = o.Address
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
}
