package curve

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func u(v uint64) *uint256.Int { return uint256.NewInt(v) }

func ether(v uint64) *uint256.Int {
	return new(uint256.Int).Mul(u(v), wadUnit)
}

func TestNetFromGross(t *testing.T) {
	tests := []struct {
		name    string
		gross   uint64
		feeRate uint64
		denom   uint64
		want    uint64
		wantErr error
	}{
		{name: "one percent", gross: 1000, feeRate: 100, denom: 10_000, want: 990},
		{name: "floors", gross: 2, feeRate: 100, denom: 10_000, want: 1},
		{name: "zero fee", gross: 777, feeRate: 0, denom: 10_000, want: 777},
		{name: "fee equals denominator", gross: 1, feeRate: 10_000, denom: 10_000, wantErr: ErrInvalidFeeRate},
		{name: "zero denominator", gross: 1, feeRate: 0, denom: 0, wantErr: ErrInvalidDenominator},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NetFromGross(u(tt.gross), tt.feeRate, tt.denom)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Uint64())
		})
	}
}

func TestGrossFromNetCeil(t *testing.T) {
	got, err := GrossFromNetCeil(u(990), 100, 10_000)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), got.Uint64())

	got, err = GrossFromNetCeil(u(1), 100, 10_000)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), got.Uint64(), "ceil(10000/9900) must round up")
}

func TestFullFill(t *testing.T) {
	fill, err := FullFill(u(1000), u(1000), u(1000))
	require.NoError(t, err)
	assert.Equal(t, uint64(2000), fill.NewVirtualEth.Uint64())
	assert.Equal(t, uint64(500), fill.NewVirtualToken.Uint64())
	assert.Equal(t, uint64(500), fill.TokensOut.Uint64())

	fill, err = FullFill(u(1000), u(1000), u(1))
	require.NoError(t, err)
	assert.Equal(t, uint64(999), fill.NewVirtualToken.Uint64(), "new token reserve floors")
	assert.Equal(t, uint64(1), fill.TokensOut.Uint64())

	_, err = FullFill(u(1000), u(1000), u(0))
	assert.ErrorIs(t, err, ErrInsufficientOutputAmount)
}

func TestExactAmountNeeded(t *testing.T) {
	tests := []struct {
		name      string
		remaining uint64
		wantS     uint64
		wantNet   uint64
		wantGross uint64
		wantErr   error
	}{
		{name: "half the curve", remaining: 500, wantS: 2000, wantNet: 1000, wantGross: 1011},
		{name: "ceil on new eth", remaining: 300, wantS: 1429, wantNet: 429, wantGross: 434},
		{name: "zero remaining", remaining: 0, wantErr: ErrInvalidTokenDelta},
		{name: "remaining equals virtual", remaining: 1000, wantErr: ErrInvalidTokenDelta},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ExactAmountNeeded(u(1000), u(1000), u(tt.remaining), 100, 10_000)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantS, p.NewVirtualEth.Uint64())
			assert.Equal(t, 1000-tt.remaining, p.NewVirtualToken.Uint64())
			assert.Equal(t, tt.remaining, p.TokensOut.Uint64())
			assert.Equal(t, tt.wantNet, p.EthNet.Uint64())
			assert.Equal(t, tt.wantGross, p.EthGross.Uint64())
		})
	}
}

func TestSellOutcome(t *testing.T) {
	sale, err := SellOutcome(u(2000), u(500), u(500), 100, 10_000)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), sale.NewVirtualEth.Uint64())
	assert.Equal(t, uint64(1000), sale.NewVirtualToken.Uint64())
	assert.Equal(t, uint64(1000), sale.GrossEthOut.Uint64())
	assert.Equal(t, uint64(10), sale.Fee.Uint64())
	assert.Equal(t, uint64(990), sale.NetEthOut.Uint64())

	sale, err = SellOutcome(u(2000), u(500), u(1), 100, 10_000)
	require.NoError(t, err)
	assert.Equal(t, uint64(1997), sale.NewVirtualEth.Uint64(), "new eth reserve rounds up")
	assert.Equal(t, uint64(3), sale.GrossEthOut.Uint64())
	assert.Equal(t, uint64(0), sale.Fee.Uint64())

	_, err = SellOutcome(u(1), u(1000), u(1), 100, 10_000)
	assert.ErrorIs(t, err, ErrInsufficientOutputAmount)

	_, err = SellOutcome(u(2000), u(500), u(0), 100, 10_000)
	assert.ErrorIs(t, err, ErrZeroAmount)
}

func TestDeriveLaunchReserves(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("ten percent AMM bucket", func(t *testing.T) {
		res, err := DeriveLaunchReserves(cfg.TotalSupply, 1000, ether(5), cfg)
		require.NoError(t, err)

		wantT := new(uint256.Int).Div(new(uint256.Int).Mul(cfg.TotalSupply, u(1000)), u(10_000))
		wantR := new(uint256.Int).Sub(cfg.TotalSupply, wantT)
		assert.True(t, res.AmmTokenReserves.Eq(wantT), "amm bucket %s", res.AmmTokenReserves.Dec())
		assert.True(t, res.RealToken.Eq(wantR), "curve bucket %s", res.RealToken.Dec())
		assert.True(t, res.VirtualToken.Gt(res.RealToken))
		assert.False(t, res.VirtualEth.IsZero())

		p, err := ExactAmountNeeded(res.VirtualEth, res.VirtualToken, res.RealToken, cfg.FeeRate, cfg.FeeDenominator)
		require.NoError(t, err)
		diff := new(uint256.Int)
		if p.EthNet.Gt(res.NetRaise) {
			diff.Sub(p.EthNet, res.NetRaise)
		} else {
			diff.Sub(res.NetRaise, p.EthNet)
		}
		assert.True(t, diff.LtUint64(11), "net needed %s vs net raise %s", p.EthNet.Dec(), res.NetRaise.Dec())
	})

	t.Run("errors", func(t *testing.T) {
		_, err := DeriveLaunchReserves(cfg.TotalSupply, 0, ether(5), cfg)
		assert.ErrorIs(t, err, ErrInvalidRatio)

		_, err = DeriveLaunchReserves(cfg.TotalSupply, 10_000, ether(5), cfg)
		assert.ErrorIs(t, err, ErrInvalidRatio)

		_, err = DeriveLaunchReserves(u(5), 1000, ether(5), cfg)
		assert.ErrorIs(t, err, ErrInvalidTR)

		_, err = DeriveLaunchReserves(cfg.TotalSupply, 1000, u(1), cfg)
		assert.ErrorIs(t, err, ErrNetRaiseZero)

		_, err = DeriveLaunchReserves(cfg.TotalSupply, 1000, u(2), cfg)
		assert.ErrorIs(t, err, ErrBaseRaiseZero)

		// An AMM bucket worth more than the curve bucket cannot be priced.
		_, err = DeriveLaunchReserves(cfg.TotalSupply, 9000, ether(5), cfg)
		assert.ErrorIs(t, err, ErrIncompatibleGeometry)
	})
}

func TestSizeMigration(t *testing.T) {
	fee := WadFromBps(500)

	tests := []struct {
		name       string
		available  uint64
		wantTokens uint64
		wantEth    uint64
		wantFee    uint64
		wantScaled bool
		wantErr    error
	}{
		{name: "fully funded", available: 1000, wantTokens: 100, wantEth: 200, wantFee: 10},
		{name: "exactly funded", available: 210, wantTokens: 100, wantEth: 200, wantFee: 10},
		{name: "scaled down", available: 105, wantTokens: 47, wantEth: 95, wantFee: 4, wantScaled: true},
		{name: "fee eats everything", available: 10, wantErr: ErrNotEnoughFunds},
		{name: "scaled to zero tokens", available: 11, wantErr: ErrNotEnoughFunds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := SizeMigration(u(100), u(2000), u(1000), u(tt.available), fee)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				var amountErr *AmountError
				assert.True(t, errors.As(err, &amountErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantTokens, plan.TokenAmount.Uint64())
			assert.Equal(t, tt.wantEth, plan.EthAmount.Uint64())
			assert.Equal(t, tt.wantFee, plan.Fee.Uint64())
			assert.Equal(t, tt.wantScaled, plan.Scaled)
		})
	}

	_, err := SizeMigration(u(100), u(0), u(1000), u(1000), fee)
	assert.ErrorIs(t, err, ErrInvalidVirtualReservesForMigration)
}

func TestMulDivRounding(t *testing.T) {
	got, err := MulDiv(u(7), u(3), u(2), Floor)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), got.Uint64())

	got, err = MulDiv(u(7), u(3), u(2), Ceil)
	require.NoError(t, err)
	assert.Equal(t, uint64(11), got.Uint64())

	got, err = MulDiv(u(8), u(3), u(2), Ceil)
	require.NoError(t, err)
	assert.Equal(t, uint64(12), got.Uint64(), "exact quotient must not round up")

	_, err = MulDiv(u(1), u(1), u(0), Floor)
	assert.ErrorIs(t, err, ErrDivisionByZero)

	max := new(uint256.Int).SetAllOne()
	_, err = MulDiv(max, u(2), u(1), Floor)
	assert.ErrorIs(t, err, ErrOverflow)

	// The product needs 512 bits; the quotient fits.
	got, err = MulDiv(max, max, max, Floor)
	require.NoError(t, err)
	assert.Equal(t, max, got)

	want := new(uint256.Int).Lsh(u(3), 254)
	got, err = MulDiv(max, u(3), u(4), Ceil)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	got, err = MulDiv(max, u(3), u(4), Floor)
	require.NoError(t, err)
	assert.Equal(t, new(uint256.Int).SubUint64(want, 1), got)
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.FeeRate = cfg.FeeDenominator
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidFeeRate)

	cfg = DefaultConfig()
	cfg.FeeDenominator = 0
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidDenominator)

	cfg = DefaultConfig()
	cfg.MigrationFee = WadOne()
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidMigrationFee)

	cfg = DefaultConfig()
	cfg.TotalSupply = u(0)
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidSupply)

	cfg = DefaultConfig()
	cfg.Decimals = MaxDecimals + 1
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidDecimals)
}

func TestUnits(t *testing.T) {
	v, err := ParseUnits("1.5", 18)
	require.NoError(t, err)
	assert.Equal(t, "1500000000000000000", v.Dec())
	assert.Equal(t, "1.5", FormatUnits(v, 18))

	_, err = ParseUnits("0.0000001", 6)
	assert.Error(t, err)

	_, err = ParseUnits("-1", 18)
	assert.Error(t, err)

	assert.Equal(t, "0.05", WadFromBps(500).String())
}
