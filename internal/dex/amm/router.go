// =============================
// File: internal/dex/amm/router.go
// =============================
package amm

//go:generate go run go.uber.org/mock/mockgen -source=router.go -destination=mock_router.go -package=amm

import (
	"context"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// MinimumLiquidity is locked forever when a pair is first funded.
const MinimumLiquidity = 1000

var (
	ErrExpired                     = errors.New("amm: expired")
	ErrInsufficientTokenAmount     = errors.New("amm: insufficient token amount")
	ErrInsufficientETHAmount       = errors.New("amm: insufficient ETH amount")
	ErrInsufficientLiquidityMinted = errors.New("amm: insufficient liquidity minted")
	ErrPairNotFound                = errors.New("amm: pair not found")
	ErrUnknownToken                = errors.New("amm: unknown token")
)

// AddLiquidityRequest mirrors addLiquidityETH: desired amounts, the minimums
// the caller accepts and a deadline bounding how stale the pool may be.
type AddLiquidityRequest struct {
	Token              common.Address
	From               common.Address
	AmountTokenDesired *uint256.Int
	AmountTokenMin     *uint256.Int
	AmountETHMin       *uint256.Int
	// Value is the ETH attached by From.
	Value    *uint256.Int
	To       common.Address
	Deadline time.Time
}

// AddLiquidityResult carries the amounts the pool actually took.
type AddLiquidityResult struct {
	AmountToken *uint256.Int
	AmountETH   *uint256.Int
	Liquidity   *uint256.Int
	Pair        common.Address
}

// Router is the AMM surface used for migrations.
type Router interface {
	Address() common.Address
	WETH() common.Address
	Factory() common.Address
	GetPair(token common.Address) (common.Address, bool)
	GetReserves(token common.Address) (reserveToken, reserveETH *uint256.Int, err error)
	AddLiquidityETH(ctx context.Context, req *AddLiquidityRequest) (*AddLiquidityResult, error)
}
