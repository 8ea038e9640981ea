// =============================
// File: internal/launchpad/trade.go
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
	"github.com/rovshanmuradov/launchpad/internal/utils/logger"
	"go.uber.org/zap"
)

// BuyResult is the outcome of a buy.
type BuyResult struct {
	TokensOut *uint256.Int
	// GrossPaid is the value kept by the factory, fee included.
	GrossPaid *uint256.Int
	Refund    *uint256.Int
	Fee       *uint256.Int
	// Completed is set when the buy sold out the curve inventory.
	Completed bool
	Migration *MigrationResult
}

// SellResult is the outcome of a sell.
type SellResult struct {
	GrossEthOut *uint256.Int
	Fee         *uint256.Int
	NetEthOut   *uint256.Int
}

// Buy spends value from buyer on token. A buy that would take the remaining
// curve inventory is filled for exactly that inventory, the surplus refunded,
// and the AMM migration runs before Buy returns.
func (f *Factory) Buy(ctx context.Context, buyer, tok common.Address, value *uint256.Int) (*BuyResult, error) {
	var res *BuyResult
	err := f.execute(ctx, "buy", func(ctx context.Context, tx *txn) error {
		var err error
		res, err = f.buy(ctx, tx, buyer, tok, value)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (f *Factory) buy(ctx context.Context, tx *txn, buyer, tokAddr common.Address, value *uint256.Int) (*BuyResult, error) {
	if value == nil || value.IsZero() {
		return nil, curve.ErrZeroAmount
	}
	if buyer == (common.Address{}) {
		return nil, curve.ErrZeroAddress
	}
	cfg, err := f.config()
	if err != nil {
		return nil, err
	}
	st, err := f.ledger.Get(tokAddr)
	if err != nil {
		return nil, err
	}
	if st.IsCompleted {
		return nil, ErrCurveCompleted
	}
	tok, err := f.lookupToken(tokAddr)
	if err != nil {
		return nil, err
	}

	if err := f.opts.State.Transfer(ctx, buyer, f.opts.Address, value); err != nil {
		return nil, fmt.Errorf("%w: pay in: %w", curve.ErrTransferFailed, err)
	}

	ethNet, err := curve.NetFromGross(value, cfg.FeeRate, cfg.FeeDenominator)
	if err != nil {
		return nil, err
	}
	fill, err := curve.FullFill(st.VirtualEth, st.VirtualToken, ethNet)
	if err != nil {
		return nil, err
	}

	var (
		res  *BuyResult
		next *ledger.TokenState
	)
	if fill.TokensOut.Lt(st.RealToken) {
		if err := f.requireTokens(tok, fill.TokensOut, curve.ErrInsufficientTokenBalance); err != nil {
			return nil, err
		}
		next, err = f.ledger.Apply(ctx, tokAddr, ledger.Mutation{
			VirtualEth:   fill.NewVirtualEth,
			VirtualToken: fill.NewVirtualToken,
			RealEthIn:    ethNet,
			RealTokenOut: fill.TokensOut,
		})
		if err != nil {
			return nil, err
		}
		fee := new(uint256.Int).Sub(value, ethNet)
		f.fees.accrue(ctx, fee)

		res = &BuyResult{
			TokensOut: fill.TokensOut,
			GrossPaid: new(uint256.Int).Set(value),
			Refund:    new(uint256.Int),
			Fee:       fee,
		}
	} else {
		pf, err := curve.ExactAmountNeeded(st.VirtualEth, st.VirtualToken, st.RealToken, cfg.FeeRate, cfg.FeeDenominator)
		if err != nil {
			return nil, err
		}
		if pf.EthGross.Gt(value) {
			return nil, &curve.InsufficientEthForPartialFillError{
				Required: pf.EthGross,
				Provided: new(uint256.Int).Set(value),
			}
		}
		if err := f.requireTokens(tok, pf.TokensOut, curve.ErrInsufficientTokenBalance); err != nil {
			return nil, err
		}
		next, err = f.ledger.Apply(ctx, tokAddr, ledger.Mutation{
			VirtualEth:   pf.NewVirtualEth,
			VirtualToken: pf.NewVirtualToken,
			RealEthIn:    pf.EthNet,
			RealTokenOut: pf.TokensOut,
			Complete:     true,
		})
		if err != nil {
			return nil, err
		}
		fee := new(uint256.Int).Sub(pf.EthGross, pf.EthNet)
		f.fees.accrue(ctx, fee)

		res = &BuyResult{
			TokensOut: pf.TokensOut,
			GrossPaid: pf.EthGross,
			Refund:    new(uint256.Int).Sub(value, pf.EthGross),
			Fee:       fee,
			Completed: true,
		}
	}

	// State is final for this trade; only transfers remain.
	if err := tok.Transfer(ctx, f.opts.Address, buyer, res.TokensOut); err != nil {
		return nil, fmt.Errorf("%w: token payout: %w", curve.ErrTransferFailed, err)
	}
	if err := f.opts.State.Transfer(ctx, f.opts.Address, buyer, res.Refund); err != nil {
		return nil, fmt.Errorf("%w: refund: %w", curve.ErrTransferFailed, err)
	}

	tx.emit(events.NewTokensPurchased(tokAddr, buyer, res.TokensOut, res.GrossPaid, reservesOf(next)))
	tx.logger.Info("Tokens purchased",
		zap.String("token", tokAddr.Hex()),
		zap.String("buyer", buyer.Hex()),
		logger.Amount("tokens_out", res.TokensOut, st.Decimals),
		logger.Amount("gross_paid", res.GrossPaid, curve.DefaultDecimals),
		logger.Amount("refund", res.Refund, curve.DefaultDecimals),
		zap.Bool("completed", res.Completed))

	if res.Completed {
		mig, err := f.migrate(ctx, tx, tokAddr, next.AmmTokenReserves)
		if err != nil {
			return nil, fmt.Errorf("migration: %w", err)
		}
		res.Migration = mig
	}
	return res, nil
}

// Sell returns amount of token from seller to the curve. The seller must have
// approved the factory for amount.
func (f *Factory) Sell(ctx context.Context, seller, tokAddr common.Address, amount *uint256.Int) (*SellResult, error) {
	var res *SellResult
	err := f.execute(ctx, "sell", func(ctx context.Context, tx *txn) error {
		if amount == nil || amount.IsZero() {
			return curve.ErrZeroAmount
		}
		if seller == (common.Address{}) {
			return curve.ErrZeroAddress
		}
		cfg, err := f.config()
		if err != nil {
			return err
		}
		st, err := f.ledger.Get(tokAddr)
		if err != nil {
			return err
		}
		if st.IsCompleted {
			return ErrCurveCompleted
		}
		tok, err := f.lookupToken(tokAddr)
		if err != nil {
			return err
		}

		sale, err := curve.SellOutcome(st.VirtualEth, st.VirtualToken, amount, cfg.FeeRate, cfg.FeeDenominator)
		if err != nil {
			return err
		}
		if sale.GrossEthOut.Gt(st.RealEth) {
			return curve.NewAmountError(curve.ErrInsufficientFundsInProtocol, sale.GrossEthOut, st.RealEth)
		}
		if bal := f.opts.State.BalanceOf(f.opts.Address); bal.Lt(sale.NetEthOut) {
			return curve.NewAmountError(curve.ErrNotEnoughFunds, sale.NetEthOut, bal)
		}

		next, err := f.ledger.Apply(ctx, tokAddr, ledger.Mutation{
			VirtualEth:   sale.NewVirtualEth,
			VirtualToken: sale.NewVirtualToken,
			RealEthOut:   sale.GrossEthOut,
			RealTokenIn:  amount,
		})
		if err != nil {
			return err
		}
		f.fees.accrue(ctx, sale.Fee)

		// State is final for this trade; only transfers remain.
		if err := tok.TransferFrom(ctx, f.opts.Address, seller, f.opts.Address, amount); err != nil {
			return fmt.Errorf("%w: token pull: %w", curve.ErrTransferFailed, err)
		}
		if err := f.opts.State.Transfer(ctx, f.opts.Address, seller, sale.NetEthOut); err != nil {
			return fmt.Errorf("%w: payout: %w", curve.ErrTransferFailed, err)
		}

		tx.emit(events.NewTokensSold(tokAddr, seller, new(uint256.Int).Set(amount), sale.NetEthOut, reservesOf(next)))
		tx.logger.Info("Tokens sold",
			zap.String("token", tokAddr.Hex()),
			zap.String("seller", seller.Hex()),
			logger.Amount("tokens_in", amount, st.Decimals),
			logger.Amount("net_eth_out", sale.NetEthOut, curve.DefaultDecimals),
			logger.Amount("fee", sale.Fee, curve.DefaultDecimals))

		res = &SellResult{
			GrossEthOut: sale.GrossEthOut,
			Fee:         sale.Fee,
			NetEthOut:   sale.NetEthOut,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
