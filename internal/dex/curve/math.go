// =============================
// File: internal/dex/curve/math.go
// =============================
package curve

import (
	"fmt"

	"github.com/holiman/uint256"
)

// Fill is the curve position after a buy.
type Fill struct {
	NewVirtualEth   *uint256.Int
	NewVirtualToken *uint256.Int
	TokensOut       *uint256.Int
}

// PartialFill is a buy of exactly the remaining real inventory.
type PartialFill struct {
	Fill
	EthNet   *uint256.Int
	EthGross *uint256.Int
}

// Sale is the curve position and payout after a sell.
type Sale struct {
	NewVirtualEth   *uint256.Int
	NewVirtualToken *uint256.Int
	GrossEthOut     *uint256.Int
	Fee             *uint256.Int
	NetEthOut       *uint256.Int
}

// LaunchReserves is the initial state derived for a new token.
type LaunchReserves struct {
	VirtualEth       *uint256.Int
	VirtualToken     *uint256.Int
	RealToken        *uint256.Int
	AmmTokenReserves *uint256.Int
	// NetRaise is the net ETH that exhausts RealToken.
	NetRaise *uint256.Int
	// BaseRaise is the ETH the AMM pool is funded with after the migration fee.
	BaseRaise *uint256.Int
}

// MigrationPlan is the deposit sized for the AMM pool.
type MigrationPlan struct {
	TokenAmount *uint256.Int
	EthAmount   *uint256.Int
	Fee         *uint256.Int
	// Scaled is set when the available ETH forced a smaller deposit.
	Scaled bool
}

func checkFee(feeRate, denom uint64) error {
	if denom == 0 {
		return ErrInvalidDenominator
	}
	if feeRate >= denom {
		return ErrInvalidFeeRate
	}
	return nil
}

// NetFromGross returns floor(gross*(denom-feeRate)/denom).
func NetFromGross(gross *uint256.Int, feeRate, denom uint64) (*uint256.Int, error) {
	if err := checkFee(feeRate, denom); err != nil {
		return nil, err
	}
	return MulDiv(gross, uint256.NewInt(denom-feeRate), uint256.NewInt(denom), Floor)
}

// GrossFromNetCeil returns ceil(net*denom/(denom-feeRate)), the smallest gross
// whose NetFromGross is at least net.
func GrossFromNetCeil(net *uint256.Int, feeRate, denom uint64) (*uint256.Int, error) {
	if err := checkFee(feeRate, denom); err != nil {
		return nil, err
	}
	return MulDiv(net, uint256.NewInt(denom), uint256.NewInt(denom-feeRate), Ceil)
}

// FullFill moves the curve by ethNet and returns the tokens bought.
func FullFill(vS, vT, ethNet *uint256.Int) (*Fill, error) {
	newS, overflow := new(uint256.Int).AddOverflow(vS, ethNet)
	if overflow {
		return nil, ErrOverflow
	}
	newT, err := MulDiv(vS, vT, newS, Floor)
	if err != nil {
		return nil, err
	}
	if newT.Gt(vT) {
		return nil, ErrInvalidVirtuals
	}

	tokensOut := new(uint256.Int).Sub(vT, newT)
	if tokensOut.IsZero() {
		return nil, ErrInsufficientOutputAmount
	}

	return &Fill{NewVirtualEth: newS, NewVirtualToken: newT, TokensOut: tokensOut}, nil
}

// ExactAmountNeeded returns the ETH required to buy exactly remaining tokens.
func ExactAmountNeeded(vS, vT, remaining *uint256.Int, feeRate, denom uint64) (*PartialFill, error) {
	if remaining.IsZero() || !remaining.Lt(vT) {
		return nil, fmt.Errorf("%w: remaining %s, virtual token %s", ErrInvalidTokenDelta, remaining.Dec(), vT.Dec())
	}

	newT := new(uint256.Int).Sub(vT, remaining)
	newS, err := MulDiv(vS, vT, newT, Ceil)
	if err != nil {
		return nil, err
	}

	ethNet := new(uint256.Int).Sub(newS, vS)
	ethGross, err := GrossFromNetCeil(ethNet, feeRate, denom)
	if err != nil {
		return nil, err
	}

	return &PartialFill{
		Fill: Fill{
			NewVirtualEth:   newS,
			NewVirtualToken: newT,
			TokensOut:       new(uint256.Int).Set(remaining),
		},
		EthNet:   ethNet,
		EthGross: ethGross,
	}, nil
}

// SellOutcome moves the curve back by tokenDelta and returns the ETH paid out.
func SellOutcome(vS, vT, tokenDelta *uint256.Int, feeRate, denom uint64) (*Sale, error) {
	if tokenDelta.IsZero() {
		return nil, ErrZeroAmount
	}
	if err := checkFee(feeRate, denom); err != nil {
		return nil, err
	}

	newT, overflow := new(uint256.Int).AddOverflow(vT, tokenDelta)
	if overflow {
		return nil, ErrOverflow
	}
	newS, err := MulDiv(vS, vT, newT, Ceil)
	if err != nil {
		return nil, err
	}

	gross := new(uint256.Int).Sub(vS, newS)
	if gross.IsZero() {
		return nil, ErrInsufficientOutputAmount
	}

	fee, err := MulDiv(gross, uint256.NewInt(feeRate), uint256.NewInt(denom), Floor)
	if err != nil {
		return nil, err
	}

	return &Sale{
		NewVirtualEth:   newS,
		NewVirtualToken: newT,
		GrossEthOut:     gross,
		Fee:             fee,
		NetEthOut:       new(uint256.Int).Sub(gross, fee),
	}, nil
}

// DeriveLaunchReserves splits supply into an AMM bucket T and a curve bucket R
// and solves for the virtual reserves such that buying the net of gross
// exhausts R and leaves the curve price equal to the AMM start price S/T.
func DeriveLaunchReserves(supply *uint256.Int, ratioBps uint64, gross *uint256.Int, cfg *Config) (*LaunchReserves, error) {
	if ratioBps == 0 || ratioBps >= cfg.FeeDenominator {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRatio, ratioBps)
	}

	t, err := MulDiv(supply, uint256.NewInt(ratioBps), uint256.NewInt(cfg.FeeDenominator), Floor)
	if err != nil {
		return nil, err
	}
	r := new(uint256.Int).Sub(supply, t)
	if t.IsZero() || r.IsZero() {
		return nil, ErrInvalidTR
	}

	ss, err := NetFromGross(gross, cfg.FeeRate, cfg.FeeDenominator)
	if err != nil {
		return nil, err
	}
	if ss.IsZero() {
		return nil, ErrNetRaiseZero
	}

	s, err := cfg.MigrationFee.DivOnePlusFloor(ss)
	if err != nil {
		return nil, err
	}
	if s.IsZero() {
		return nil, ErrBaseRaiseZero
	}

	sr, overflow := new(uint256.Int).MulOverflow(s, r)
	if overflow {
		return nil, ErrOverflow
	}
	sst, overflow := new(uint256.Int).MulOverflow(ss, t)
	if overflow {
		return nil, ErrOverflow
	}
	if !sr.Gt(sst) {
		return nil, fmt.Errorf("%w: S*R %s <= SS*T %s", ErrIncompatibleGeometry, sr.Dec(), sst.Dec())
	}
	den := new(uint256.Int).Sub(sr, sst)

	vT, err := MulDiv(r, sr, den, Floor)
	if err != nil {
		return nil, err
	}
	if !vT.Gt(r) {
		return nil, fmt.Errorf("%w: virtual token %s <= real token %s", ErrInvalidVirtuals, vT.Dec(), r.Dec())
	}

	vS, err := MulDiv(ss, new(uint256.Int).Sub(vT, r), r, Floor)
	if err != nil {
		return nil, err
	}
	if vS.IsZero() {
		return nil, fmt.Errorf("%w: virtual eth is zero", ErrInvalidVirtuals)
	}

	return &LaunchReserves{
		VirtualEth:       vS,
		VirtualToken:     vT,
		RealToken:        r,
		AmmTokenReserves: t,
		NetRaise:         ss,
		BaseRaise:        s,
	}, nil
}

// SizeMigration prices tokenToLP at the curve price vS/vT and adds the
// migration fee. When available ETH cannot cover both, the deposit is scaled
// down so that deposit plus fee fits.
func SizeMigration(tokenToLP, vS, vT, available *uint256.Int, migrationFee Wad) (*MigrationPlan, error) {
	if vS.IsZero() || vT.IsZero() {
		return nil, ErrInvalidVirtualReservesForMigration
	}

	ethNeeded, err := MulDiv(tokenToLP, vS, vT, Floor)
	if err != nil {
		return nil, err
	}
	fee, err := migrationFee.MulFloor(ethNeeded)
	if err != nil {
		return nil, err
	}

	plan := &MigrationPlan{
		TokenAmount: new(uint256.Int).Set(tokenToLP),
		EthAmount:   ethNeeded,
		Fee:         fee,
	}

	total, overflow := new(uint256.Int).AddOverflow(ethNeeded, fee)
	if overflow {
		return nil, ErrOverflow
	}
	if available.Lt(total) {
		maxEthForPool := new(uint256.Int)
		if available.Gt(fee) {
			maxEthForPool.Sub(available, fee)
		}
		if maxEthForPool.IsZero() {
			return nil, NewAmountError(ErrNotEnoughFunds, total, available)
		}

		scaled, err := MulDiv(tokenToLP, maxEthForPool, ethNeeded, Floor)
		if err != nil {
			return nil, err
		}
		scaledFee, err := migrationFee.MulFloor(maxEthForPool)
		if err != nil {
			return nil, err
		}

		plan.TokenAmount = scaled
		plan.EthAmount = maxEthForPool
		plan.Fee = scaledFee
		plan.Scaled = true
	}

	if plan.TokenAmount.IsZero() || plan.EthAmount.IsZero() {
		return nil, NewAmountError(ErrNotEnoughFunds, total, available)
	}
	return plan, nil
}

// SpotPrice returns vS/vT as a Wad.
func SpotPrice(vS, vT *uint256.Int) (Wad, error) {
	p, err := MulDiv(vS, wadUnit, vT, Floor)
	if err != nil {
		return Wad{}, err
	}
	return NewWad(p), nil
}

// MinWithSlippage returns floor(amount * (BpsDenominator - bps) / BpsDenominator).
func MinWithSlippage(amount *uint256.Int, bps uint64) (*uint256.Int, error) {
	if bps >= BpsDenominator {
		return nil, fmt.Errorf("slippage %d bps out of range", bps)
	}
	return MulDiv(amount, uint256.NewInt(BpsDenominator-bps), uint256.NewInt(BpsDenominator), Floor)
}
