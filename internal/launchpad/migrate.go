// =============================
// File: internal/launchpad/migrate.go
// =============================
package launchpad

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/rovshanmuradov/launchpad/internal/dex/amm"
	"github.com/rovshanmuradov/launchpad/internal/dex/curve"
	"github.com/rovshanmuradov/launchpad/internal/events"
	"github.com/rovshanmuradov/launchpad/internal/ledger"
	"github.com/rovshanmuradov/launchpad/internal/utils/logger"
	"go.uber.org/zap"
)

// MigrationResult carries the amounts the AMM actually took.
type MigrationResult struct {
	Pair        common.Address
	TokenAmount *uint256.Int
	EthAmount   *uint256.Int
	Fee         *uint256.Int
	Liquidity   *uint256.Int
	// Scaled is set when available ETH forced a smaller deposit than requested.
	Scaled bool
	// Complete is set once the whole AMM bucket has been deposited.
	Complete bool
}

// Migrate deposits up to amount of the remaining AMM bucket of a sold-out
// curve. Owner only.
func (f *Factory) Migrate(ctx context.Context, caller, tok common.Address, amount *uint256.Int) (*MigrationResult, error) {
	var res *MigrationResult
	err := f.execute(ctx, "migrate", func(ctx context.Context, tx *txn) error {
		if err := f.onlyOwner(caller); err != nil {
			return err
		}
		st, err := f.ledger.Get(tok)
		if err != nil {
			return err
		}
		if !st.IsCompleted {
			return ErrNotCompleted
		}
		if st.LiquidityMigrated {
			return ErrAlreadyMigrated
		}
		if amount == nil {
			amount = st.AmmTokenReserves
		}

		res, err = f.migrate(ctx, tx, tok, amount)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (f *Factory) migrate(ctx context.Context, tx *txn, tokAddr common.Address, requested *uint256.Int) (*MigrationResult, error) {
	cfg, err := f.config()
	if err != nil {
		return nil, err
	}
	st, err := f.ledger.Get(tokAddr)
	if err != nil {
		return nil, err
	}
	tok, err := f.lookupToken(tokAddr)
	if err != nil {
		return nil, err
	}

	tokenToLP := new(uint256.Int).Set(requested)
	if tokenToLP.Gt(st.AmmTokenReserves) {
		tokenToLP.Set(st.AmmTokenReserves)
	}
	if tokenToLP.IsZero() {
		return nil, fmt.Errorf("%w: nothing to migrate", curve.ErrZeroAmount)
	}

	plan, err := curve.SizeMigration(tokenToLP, st.VirtualEth, st.VirtualToken, st.RealEth, cfg.MigrationFee)
	if err != nil {
		return nil, err
	}
	if err := f.requireTokens(tok, plan.TokenAmount, curve.ErrInsufficientTokenBalanceForLP); err != nil {
		return nil, err
	}

	minToken, err := curve.MinWithSlippage(plan.TokenAmount, f.opts.SlippageBps)
	if err != nil {
		return nil, err
	}
	minETH, err := curve.MinWithSlippage(plan.EthAmount, f.opts.SlippageBps)
	if err != nil {
		return nil, err
	}

	router := f.opts.Router
	if err := tok.Approve(ctx, f.opts.Address, router.Address(), plan.TokenAmount); err != nil {
		return nil, err
	}

	out, err := router.AddLiquidityETH(ctx, &amm.AddLiquidityRequest{
		Token:              tokAddr,
		From:               f.opts.Address,
		AmountTokenDesired: plan.TokenAmount,
		AmountTokenMin:     minToken,
		AmountETHMin:       minETH,
		Value:              plan.EthAmount,
		To:                 f.opts.LPRecipient,
		Deadline:           f.opts.Clock().Add(f.opts.Deadline),
	})
	if err != nil {
		return nil, fmt.Errorf("add liquidity: %w", err)
	}
	if out.AmountToken.Gt(plan.TokenAmount) || out.AmountETH.Gt(plan.EthAmount) {
		return nil, fmt.Errorf("%w: router took %s tokens and %s wei, offered %s and %s",
			curve.ErrTransferFailed, out.AmountToken.Dec(), out.AmountETH.Dec(), plan.TokenAmount.Dec(), plan.EthAmount.Dec())
	}

	next, err := f.ledger.Apply(ctx, tokAddr, ledger.Mutation{
		RealEthOut:   new(uint256.Int).Add(out.AmountETH, plan.Fee),
		AmmTokenOut:  out.AmountToken,
		MigrationFee: plan.Fee,
	})
	if err != nil {
		return nil, err
	}
	f.fees.accrue(ctx, plan.Fee)

	// Allowance left over when the router took less than offered.
	if err := tok.Approve(ctx, f.opts.Address, router.Address(), new(uint256.Int)); err != nil {
		return nil, err
	}

	tx.emit(events.NewLiquiditySwapped(tokAddr, out.AmountToken, out.AmountETH))
	tx.logger.Info("Liquidity migrated",
		zap.String("token", tokAddr.Hex()),
		zap.String("pair", out.Pair.Hex()),
		logger.Amount("token_amount", out.AmountToken, st.Decimals),
		logger.Amount("eth_amount", out.AmountETH, curve.DefaultDecimals),
		logger.Amount("fee", plan.Fee, curve.DefaultDecimals),
		zap.Bool("scaled", plan.Scaled),
		zap.Bool("liquidity_migrated", next.LiquidityMigrated))

	return &MigrationResult{
		Pair:        out.Pair,
		TokenAmount: out.AmountToken,
		EthAmount:   out.AmountETH,
		Fee:         plan.Fee,
		Liquidity:   out.Liquidity,
		Scaled:      plan.Scaled,
		Complete:    next.LiquidityMigrated,
	}, nil
}
