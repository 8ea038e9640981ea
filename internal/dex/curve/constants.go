// =============================
// File: internal/dex/curve/constants.go
// =============================
package curve

import "github.com/holiman/uint256"

const (
	// BpsDenominator is the basis-point base used by the default config.
	BpsDenominator = 10_000

	// DefaultDecimals matches native ETH precision.
	DefaultDecimals = 18

	// MaxDecimals bounds display decimals so 10^decimals fits comfortably in 256 bits.
	MaxDecimals = 36

	// DefaultFeeRate is 1% of BpsDenominator.
	DefaultFeeRate = 100

	// LiquiditySlippageBps is the tolerance applied to AMM deposit minimums (1%).
	LiquiditySlippageBps = 100
)

var (
	// wadUnit is 1.0 in Wad fixed point.
	wadUnit = uint256.NewInt(1_000_000_000_000_000_000)

	// defaultTotalSupply is one billion tokens with 18 decimals.
	defaultTotalSupply = new(uint256.Int).Mul(uint256.NewInt(1_000_000_000), wadUnit)

	// defaultMigrationFee is 5% in Wad.
	defaultMigrationFee = uint256.NewInt(50_000_000_000_000_000)
)
