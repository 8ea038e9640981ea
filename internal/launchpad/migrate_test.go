package launchpad

import (
	"context"
	"testing"

	"github.com/holiman/uint256"
	"github.com/rovshanmuradov/launchpad/internal/dex/amm"
	"github.com/rovshanmuradov/launchpad/internal/dex/curve"
	"github.com/rovshanmuradov/launchpad/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func mockRouter(t *testing.T) *amm.MockRouter {
	ctrl := gomock.NewController(t)
	router := amm.NewMockRouter(ctrl)
	router.EXPECT().Address().Return(routerAddr).AnyTimes()
	return router
}

func TestMigrationFailureRevertsBuy(t *testing.T) {
	router := mockRouter(t)
	e := newEnv(t, router)
	ctx := context.Background()
	addr := e.launch(t, nil)

	// Move the curve first so there is committed state to compare against.
	_, err := e.f.Buy(ctx, alice, addr, ether(1))
	require.NoError(t, err)

	before, err := e.f.TokenState(addr)
	require.NoError(t, err)
	fee := e.f.TotalFee()
	notes := len(e.f.Notifications(0))
	tok := e.token(t, addr)
	factoryTokens := tok.BalanceOf(factoryAddr)

	router.EXPECT().
		AddLiquidityETH(gomock.Any(), gomock.Any()).
		Return(nil, amm.ErrExpired)

	gross, err := e.f.RemainingGross(addr)
	require.NoError(t, err)
	_, err = e.f.Buy(ctx, bob, addr, new(uint256.Int).AddUint64(gross, 1000))
	assert.ErrorIs(t, err, amm.ErrExpired)

	after, err := e.f.TokenState(addr)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.False(t, after.IsCompleted)
	assert.Equal(t, fee.Dec(), e.f.TotalFee().Dec())
	assert.Len(t, e.f.Notifications(0), notes)
	assert.Equal(t, ether(1000).Dec(), e.state.BalanceOf(bob).Dec())
	assert.True(t, tok.BalanceOf(bob).IsZero())
	assert.Equal(t, factoryTokens.Dec(), tok.BalanceOf(factoryAddr).Dec())
	assert.True(t, tok.Allowance(factoryAddr, routerAddr).IsZero())
	e.requireSolvent(t)
}

func TestMigrationRequest(t *testing.T) {
	router := mockRouter(t)
	e := newEnv(t, router)
	ctx := context.Background()
	addr := e.launch(t, nil)
	launched, err := e.f.TokenState(addr)
	require.NoError(t, err)

	var got *amm.AddLiquidityRequest
	router.EXPECT().
		AddLiquidityETH(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req *amm.AddLiquidityRequest) (*amm.AddLiquidityResult, error) {
			got = req
			return &amm.AddLiquidityResult{
				AmountToken: req.AmountTokenDesired,
				AmountETH:   req.Value,
				Liquidity:   uint256.NewInt(1),
			}, nil
		})

	gross, err := e.f.RemainingGross(addr)
	require.NoError(t, err)
	res, err := e.f.Buy(ctx, bob, addr, gross)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, addr, got.Token)
	assert.Equal(t, factoryAddr, got.From)
	assert.Equal(t, factoryAddr, got.To)
	assert.Equal(t, e.now.Add(DefaultDeadline), got.Deadline)
	assert.False(t, got.AmountTokenDesired.Gt(launched.AmmTokenReserves))

	minToken, err := curve.MinWithSlippage(got.AmountTokenDesired, curve.LiquiditySlippageBps)
	require.NoError(t, err)
	assert.Equal(t, minToken.Dec(), got.AmountTokenMin.Dec())
	minETH, err := curve.MinWithSlippage(got.Value, curve.LiquiditySlippageBps)
	require.NoError(t, err)
	assert.Equal(t, minETH.Dec(), got.AmountETHMin.Dec())

	// The router approval covers exactly the offered tokens.
	assert.True(t, e.token(t, addr).Allowance(factoryAddr, routerAddr).IsZero())

	st, err := e.f.TokenState(addr)
	require.NoError(t, err)
	assert.Equal(t, new(uint256.Int).Sub(launched.AmmTokenReserves, got.AmountTokenDesired).Dec(), st.AmmTokenReserves.Dec())
	assert.Equal(t, res.Migration.Fee.Dec(), st.MigrationFee.Dec())

	ev := e.f.Notifications(0)
	swapped := ev[len(ev)-1].(*events.LiquiditySwappedEvent)
	assert.Equal(t, got.AmountTokenDesired.Dec(), swapped.TokenAmount.Dec())
	assert.Equal(t, got.Value.Dec(), swapped.EthAmount.Dec())
}

func TestMigrateRemainder(t *testing.T) {
	router := mockRouter(t)
	e := newEnv(t, router)
	ctx := context.Background()
	addr := e.launch(t, nil)

	// The AMM takes half of what it is offered on the first deposit.
	gomock.InOrder(
		router.EXPECT().
			AddLiquidityETH(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req *amm.AddLiquidityRequest) (*amm.AddLiquidityResult, error) {
				return &amm.AddLiquidityResult{
					AmountToken: new(uint256.Int).Rsh(req.AmountTokenDesired, 1),
					AmountETH:   new(uint256.Int).Rsh(req.Value, 1),
					Liquidity:   uint256.NewInt(1),
				}, nil
			}),
		router.EXPECT().
			AddLiquidityETH(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req *amm.AddLiquidityRequest) (*amm.AddLiquidityResult, error) {
				return &amm.AddLiquidityResult{
					AmountToken: req.AmountTokenDesired,
					AmountETH:   req.Value,
					Liquidity:   uint256.NewInt(1),
				}, nil
			}),
	)

	_, err := e.f.Migrate(ctx, ownerAddr, addr, nil)
	assert.ErrorIs(t, err, ErrNotCompleted)

	gross, err := e.f.RemainingGross(addr)
	require.NoError(t, err)
	bought, err := e.f.Buy(ctx, bob, addr, gross)
	require.NoError(t, err)
	require.NotNil(t, bought.Migration)
	assert.False(t, bought.Migration.Complete)

	st, err := e.f.TokenState(addr)
	require.NoError(t, err)
	assert.False(t, st.LiquidityMigrated)
	assert.False(t, st.AmmTokenReserves.IsZero())

	_, err = e.f.Migrate(ctx, alice, addr, nil)
	assert.ErrorIs(t, err, curve.ErrUnauthorized)

	res, err := e.f.Migrate(ctx, ownerAddr, addr, nil)
	require.NoError(t, err)

	after, err := e.f.TokenState(addr)
	require.NoError(t, err)
	spent := new(uint256.Int).Add(res.EthAmount, res.Fee)
	assert.Equal(t, new(uint256.Int).Sub(st.RealEth, spent).Dec(), after.RealEth.Dec())
	assert.Equal(t, new(uint256.Int).Sub(st.AmmTokenReserves, res.TokenAmount).Dec(), after.AmmTokenReserves.Dec())
	assert.Equal(t, new(uint256.Int).Add(st.MigrationFee, res.Fee).Dec(), after.MigrationFee.Dec())
	assert.Equal(t, after.AmmTokenReserves.IsZero(), after.LiquidityMigrated)
}

func TestMigrateNotEnoughFunds(t *testing.T) {
	router := mockRouter(t)
	e := newEnv(t, router)
	ctx := context.Background()
	addr := e.launch(t, nil)

	// The first deposit takes all the ETH but only a tenth of the tokens.
	router.EXPECT().
		AddLiquidityETH(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req *amm.AddLiquidityRequest) (*amm.AddLiquidityResult, error) {
			return &amm.AddLiquidityResult{
				AmountToken: new(uint256.Int).Div(req.AmountTokenDesired, uint256.NewInt(10)),
				AmountETH:   req.Value,
				Liquidity:   uint256.NewInt(1),
			}, nil
		})

	gross, err := e.f.RemainingGross(addr)
	require.NoError(t, err)
	_, err = e.f.Buy(ctx, bob, addr, gross)
	require.NoError(t, err)

	st, err := e.f.TokenState(addr)
	require.NoError(t, err)

	assert.False(t, st.LiquidityMigrated)

	_, err = e.f.Migrate(ctx, ownerAddr, addr, nil)
	if st.RealEth.IsZero() {
		assert.ErrorIs(t, err, curve.ErrNotEnoughFunds)
	} else if err != nil {
		// Rounding dust may still fund a scaled deposit.
		assert.ErrorIs(t, err, curve.ErrNotEnoughFunds)
	}
}

func TestMigrateAfterFullMigration(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	addr := e.launch(t, nil)

	gross, err := e.f.RemainingGross(addr)
	require.NoError(t, err)
	res, err := e.f.Buy(ctx, bob, addr, gross)
	require.NoError(t, err)
	if !res.Migration.Complete {
		t.Fatalf("expected full migration, deposit was scaled: %+v", res.Migration)
	}

	_, err = e.f.Migrate(ctx, ownerAddr, addr, nil)
	assert.ErrorIs(t, err, ErrAlreadyMigrated)
}
