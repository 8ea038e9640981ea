// =============================
// File: internal/launchpad/launch.go
// =============================
package launchpad

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/rovshanmuradov/launchpad/internal/dex/curve"
	"github.com/rovshanmuradov/launchpad/internal/events"
	"github.com/rovshanmuradov/launchpad/internal/ledger"
	"github.com/rovshanmuradov/launchpad/internal/token"
	"github.com/rovshanmuradov/launchpad/internal/utils/logger"
	"go.uber.org/zap"
)

// LaunchParams describes a new token.
type LaunchParams struct {
	Name   string
	Symbol string
	URI    string
	// InitialAmmEth is the gross ETH the curve raises before it is sold out.
	InitialAmmEth *uint256.Int
	// InitialRatioBps is the share of supply reserved for the AMM pool, in
	// parts of the fee denominator.
	InitialRatioBps uint64
}

// LaunchResult carries the new token and, when value was attached, the
// creator's initial buy.
type LaunchResult struct {
	Token common.Address
	Buy   *BuyResult
}

// Initialize sets the first config. Only the owner may call it, once.
func (f *Factory) Initialize(ctx context.Context, caller common.Address, cfg *curve.Config) error {
	return f.execute(ctx, "initialize", func(ctx context.Context, tx *txn) error {
		if err := f.onlyOwner(caller); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		f.cfgMu.Lock()
		defer f.cfgMu.Unlock()
		if f.initialized {
			return ErrAlreadyInitialized
		}
		f.cfg = cfg.Clone()
		f.initialized = true

		tx.logger.Info("Launchpad initialized",
			zap.String("total_supply", cfg.TotalSupply.Dec()),
			zap.Uint64("fee_rate", cfg.FeeRate),
			zap.Uint64("fee_denominator", cfg.FeeDenominator),
			zap.Stringer("migration_fee", cfg.MigrationFee))
		return nil
	})
}

// UpdateConfig replaces the config for subsequent launches and trades.
func (f *Factory) UpdateConfig(ctx context.Context, caller common.Address, cfg *curve.Config) error {
	return f.execute(ctx, "update_config", func(ctx context.Context, tx *txn) error {
		if err := f.onlyOwner(caller); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		f.cfgMu.Lock()
		defer f.cfgMu.Unlock()
		if !f.initialized {
			return ErrNotInitialized
		}
		f.cfg = cfg.Clone()

		tx.logger.Info("Config updated",
			zap.Uint64("fee_rate", cfg.FeeRate),
			zap.Stringer("migration_fee", cfg.MigrationFee))
		return nil
	})
}

// Launch deploys a token, mints its supply to the factory and derives the
// curve reserves. Attached value is spent on an immediate buy by the creator
// within the same operation.
func (f *Factory) Launch(ctx context.Context, creator common.Address, p LaunchParams, value *uint256.Int) (*LaunchResult, error) {
	var res LaunchResult
	err := f.execute(ctx, "launch", func(ctx context.Context, tx *txn) error {
		if creator == (common.Address{}) {
			return curve.ErrZeroAddress
		}
		if p.InitialAmmEth == nil || p.InitialAmmEth.IsZero() {
			return fmt.Errorf("%w: initial AMM ETH", curve.ErrZeroAmount)
		}
		cfg, err := f.config()
		if err != nil {
			return err
		}

		reserves, err := curve.DeriveLaunchReserves(cfg.TotalSupply, p.InitialRatioBps, p.InitialAmmEth, cfg)
		if err != nil {
			return err
		}

		addr := f.nextTokenAddress(ctx)
		tok := token.New(addr, p.Name, p.Symbol, cfg.Decimals, cfg.TotalSupply, f.opts.Address)
		if err := f.opts.Tokens.Register(ctx, tok); err != nil {
			return err
		}

		st := &ledger.TokenState{
			Token:            addr,
			Creator:          creator,
			Name:             p.Name,
			Symbol:           p.Symbol,
			URI:              p.URI,
			TotalSupply:      cfg.TotalSupply,
			Decimals:         cfg.Decimals,
			VirtualEth:       reserves.VirtualEth,
			VirtualToken:     reserves.VirtualToken,
			RealEth:          new(uint256.Int),
			RealToken:        reserves.RealToken,
			AmmTokenReserves: reserves.AmmTokenReserves,
			MigrationFee:     new(uint256.Int),
		}
		if err := f.ledger.Create(ctx, st); err != nil {
			return err
		}

		tx.emit(events.NewTokenLaunched(addr, creator, p.Name, p.Symbol, p.URI, reservesOf(st)))
		tx.logger.Info("Token launched",
			zap.String("token", addr.Hex()),
			zap.String("creator", creator.Hex()),
			zap.String("symbol", p.Symbol),
			logger.Amount("virtual_eth", reserves.VirtualEth, curve.DefaultDecimals),
			logger.Amount("virtual_token", reserves.VirtualToken, cfg.Decimals),
			logger.Amount("real_token", reserves.RealToken, cfg.Decimals),
			logger.Amount("amm_token_reserves", reserves.AmmTokenReserves, cfg.Decimals))

		res.Token = addr
		if value == nil || value.IsZero() {
			return nil
		}

		buy, err := f.buy(ctx, tx, creator, addr, value)
		if err != nil {
			return fmt.Errorf("initial buy: %w", err)
		}
		res.Buy = buy
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}
