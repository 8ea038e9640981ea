// =============================
// File: internal/ledger/state.go
// =============================
package ledger

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// TokenState is the reserve record of one launched token.
type TokenState struct {
	Token       common.Address
	Creator     common.Address
	Name        string
	Symbol      string
	URI         string
	TotalSupply *uint256.Int
	Decimals    uint8

	// VirtualEth and VirtualToken define the constant-product curve.
	VirtualEth   *uint256.Int
	VirtualToken *uint256.Int
	// RealEth is the ETH held for payouts, RealToken the inventory still
	// sellable on the curve.
	RealEth   *uint256.Int
	RealToken *uint256.Int
	// AmmTokenReserves is the token amount set aside for the AMM pool.
	AmmTokenReserves *uint256.Int
	// MigrationFee is the cumulative fee charged by migrations of this token.
	MigrationFee *uint256.Int

	IsCompleted       bool
	LiquidityMigrated bool
}

// Clone returns a deep copy.
func (s *TokenState) Clone() *TokenState {
	out := *s
	out.TotalSupply = clone(s.TotalSupply)
	out.VirtualEth = clone(s.VirtualEth)
	out.VirtualToken = clone(s.VirtualToken)
	out.RealEth = clone(s.RealEth)
	out.RealToken = clone(s.RealToken)
	out.AmmTokenReserves = clone(s.AmmTokenReserves)
	out.MigrationFee = clone(s.MigrationFee)
	return &out
}

// Mutation describes one reserve update. VirtualEth and VirtualToken carry new
// values and are set together; the remaining amounts are deltas. Nil fields
// are left unchanged.
type Mutation struct {
	VirtualEth   *uint256.Int
	VirtualToken *uint256.Int

	RealEthIn    *uint256.Int
	RealEthOut   *uint256.Int
	RealTokenIn  *uint256.Int
	RealTokenOut *uint256.Int
	AmmTokenOut  *uint256.Int
	MigrationFee *uint256.Int

	// Complete marks the curve inventory as exhausted.
	Complete bool
}

func clone(v *uint256.Int) *uint256.Int {
	if v == nil {
		return new(uint256.Int)
	}
	return new(uint256.Int).Set(v)
}

func nonZero(v *uint256.Int) bool {
	return v != nil && !v.IsZero()
}
