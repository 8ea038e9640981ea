// internal/launchpad/quote.go
package launchpad

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/rovshanmuradov/launchpad/internal/dex/curve"
)

// BuyQuote is what a buy of the given value would do right now.
type BuyQuote struct {
	TokensOut *uint256.Int
	GrossPaid *uint256.Int
	Refund    *uint256.Int
	Fee       *uint256.Int
	// CompletesCurve is set when the buy would sell out the curve and
	// trigger migration.
	CompletesCurve bool
}

// QuoteBuy prices a buy without changing state. It fails the same way Buy
// would on pricing grounds.
func (f *Factory) QuoteBuy(tok common.Address, value *uint256.Int) (*BuyQuote, error) {
	if value == nil || value.IsZero() {
		return nil, curve.ErrZeroAmount
	}
	cfg, err := f.config()
	if err != nil {
		return nil, err
	}
	st, err := f.ledger.Get(tok)
	if err != nil {
		return nil, err
	}
	if st.IsCompleted {
		return nil, ErrCurveCompleted
	}

	ethNet, err := curve.NetFromGross(value, cfg.FeeRate, cfg.FeeDenominator)
	if err != nil {
		return nil, err
	}
	fill, err := curve.FullFill(st.VirtualEth, st.VirtualToken, ethNet)
	if err != nil {
		return nil, err
	}
	if fill.TokensOut.Lt(st.RealToken) {
		return &BuyQuote{
			TokensOut: fill.TokensOut,
			GrossPaid: new(uint256.Int).Set(value),
			Refund:    new(uint256.Int),
			Fee:       new(uint256.Int).Sub(value, ethNet),
		}, nil
	}

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
	return &BuyQuote{
		TokensOut:      pf.TokensOut,
		GrossPaid:      pf.EthGross,
		Refund:         new(uint256.Int).Sub(value, pf.EthGross),
		Fee:            new(uint256.Int).Sub(pf.EthGross, pf.EthNet),
		CompletesCurve: true,
	}, nil
}

// QuoteSell prices a sell without changing state.
func (f *Factory) QuoteSell(tok common.Address, amount *uint256.Int) (*SellResult, error) {
	if amount == nil || amount.IsZero() {
		return nil, curve.ErrZeroAmount
	}
	cfg, err := f.config()
	if err != nil {
		return nil, err
	}
	st, err := f.ledger.Get(tok)
	if err != nil {
		return nil, err
	}
	if st.IsCompleted {
		return nil, ErrCurveCompleted
	}

	sale, err := curve.SellOutcome(st.VirtualEth, st.VirtualToken, amount, cfg.FeeRate, cfg.FeeDenominator)
	if err != nil {
		return nil, err
	}
	if sale.GrossEthOut.Gt(st.RealEth) {
		return nil, curve.NewAmountError(curve.ErrInsufficientFundsInProtocol, sale.GrossEthOut, st.RealEth)
	}
	return &SellResult{
		GrossEthOut: sale.GrossEthOut,
		Fee:         sale.Fee,
		NetEthOut:   sale.NetEthOut,
	}, nil
}

// RemainingGross is the gross ETH that buys out the rest of the curve inventory.
func (f *Factory) RemainingGross(tok common.Address) (*uint256.Int, error) {
	cfg, err := f.config()
	if err != nil {
		return nil, err
	}
	st, err := f.ledger.Get(tok)
	if err != nil {
		return nil, err
	}
	if st.IsCompleted {
		return nil, ErrCurveCompleted
	}
	pf, err := curve.ExactAmountNeeded(st.VirtualEth, st.VirtualToken, st.RealToken, cfg.FeeRate, cfg.FeeDenominator)
	if err != nil {
		return nil, err
	}
	return pf.EthGross, nil
}

// SpotPrice returns the current curve price vS/vT in ETH per token unit.
func (f *Factory) SpotPrice(tok common.Address) (curve.Wad, error) {
	st, err := f.ledger.Get(tok)
	if err != nil {
		return curve.Wad{}, err
	}
	return curve.SpotPrice(st.VirtualEth, st.VirtualToken)
}
