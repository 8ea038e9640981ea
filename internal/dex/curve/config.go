// =============================
// File: internal/dex/curve/config.go
// =============================
package curve

import (
	"fmt"

	"github.com/holiman/uint256"
)

// Config holds the global curve parameters. A launch snapshots TotalSupply and
// Decimals into its token state; fee parameters are read at trade time.
type Config struct {
	// TotalSupply is minted once per launch, in token base units.
	TotalSupply *uint256.Int
	// FeeRate is the trade fee in parts of FeeDenominator.
	FeeRate uint64
	// FeeDenominator is also the base of the launch ratio.
	FeeDenominator uint64
	// MigrationFee is charged on top of the ETH deposited into the AMM, range [0, 1).
	MigrationFee Wad
	Decimals     uint8
}

// DefaultConfig returns a 1B-token supply, 1% trade fee and 5% migration fee.
func DefaultConfig() *Config {
	return &Config{
		TotalSupply:    new(uint256.Int).Set(defaultTotalSupply),
		FeeRate:        DefaultFeeRate,
		FeeDenominator: BpsDenominator,
		MigrationFee:   NewWad(defaultMigrationFee),
		Decimals:       DefaultDecimals,
	}
}

// Validate checks the config invariants.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("curve config is nil")
	}
	if c.FeeDenominator == 0 {
		return ErrInvalidDenominator
	}
	if c.FeeRate >= c.FeeDenominator {
		return fmt.Errorf("%w: %d >= %d", ErrInvalidFeeRate, c.FeeRate, c.FeeDenominator)
	}
	if !c.MigrationFee.LessThanOne() {
		return fmt.Errorf("%w: %s", ErrInvalidMigrationFee, c.MigrationFee)
	}
	if c.TotalSupply == nil || c.TotalSupply.IsZero() {
		return ErrInvalidSupply
	}
	if c.Decimals > MaxDecimals {
		return fmt.Errorf("%w: %d > %d", ErrInvalidDecimals, c.Decimals, MaxDecimals)
	}
	return nil
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	if c.TotalSupply != nil {
		out.TotalSupply = new(uint256.Int).Set(c.TotalSupply)
	}
	return &out
}
