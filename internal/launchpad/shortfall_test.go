package launchpad

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/rovshanmuradov/launchpad/internal/dex/curve"
	"github.com/rovshanmuradov/launchpad/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// engineView captures what a reverted operation must leave untouched.
type engineView struct {
	state *ledger.TokenState
	fee   string
	notes int
}

func (e *env) view(t *testing.T, addr common.Address) engineView {
	t.Helper()
	st, err := e.f.TokenState(addr)
	require.NoError(t, err)
	return engineView{
		state: st,
		fee:   e.f.TotalFee().Dec(),
		notes: len(e.f.Notifications(0)),
	}
}

func requireAmountError(t *testing.T, err, sentinel error) {
	t.Helper()
	require.ErrorIs(t, err, sentinel)
	var amountErr *curve.AmountError
	require.True(t, errors.As(err, &amountErr))
	assert.True(t, amountErr.Available.Lt(amountErr.Required))
}

func TestSellFailsWhenFactoryEthIsShort(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	addr := e.launch(t, nil)

	bought, err := e.f.Buy(ctx, alice, addr, ether(1))
	require.NoError(t, err)
	tok := e.token(t, addr)
	require.NoError(t, tok.Approve(ctx, alice, factoryAddr, bought.TokensOut))

	require.NoError(t, e.state.Transfer(ctx, factoryAddr, treasury, e.state.BalanceOf(factoryAddr)))
	before := e.view(t, addr)

	_, err = e.f.Sell(ctx, alice, addr, bought.TokensOut)
	requireAmountError(t, err, curve.ErrNotEnoughFunds)

	assert.Equal(t, before, e.view(t, addr))
	assert.Equal(t, bought.TokensOut.Dec(), tok.BalanceOf(alice).Dec())
	assert.Equal(t, bought.TokensOut.Dec(), tok.Allowance(alice, factoryAddr).Dec())
	assert.True(t, e.state.BalanceOf(factoryAddr).IsZero())
}

func TestBuyFailsWhenFactoryTokensAreShort(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	addr := e.launch(t, nil)
	tok := e.token(t, addr)

	require.NoError(t, tok.Transfer(ctx, factoryAddr, treasury, tok.BalanceOf(factoryAddr)))
	before := e.view(t, addr)
	gross, err := e.f.RemainingGross(addr)
	require.NoError(t, err)

	tests := []struct {
		name  string
		value *uint256.Int
	}{
		{"full fill", ether(1)},
		{"partial fill", new(uint256.Int).Add(gross, ether(1))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.f.Buy(ctx, bob, addr, tt.value)
			requireAmountError(t, err, curve.ErrInsufficientTokenBalance)

			assert.Equal(t, before, e.view(t, addr))
			assert.Equal(t, ether(1000).Dec(), e.state.BalanceOf(bob).Dec())
			assert.True(t, tok.BalanceOf(bob).IsZero())
			e.requireSolvent(t)
		})
	}
}

func TestMigrationFailsWhenLPTokensAreShort(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	addr := e.launch(t, nil)
	tok := e.token(t, addr)

	st, err := e.f.TokenState(addr)
	require.NoError(t, err)
	require.NoError(t, tok.Transfer(ctx, factoryAddr, treasury, st.AmmTokenReserves))
	before := e.view(t, addr)
	held := tok.BalanceOf(factoryAddr)

	gross, err := e.f.RemainingGross(addr)
	require.NoError(t, err)
	_, err = e.f.Buy(ctx, bob, addr, new(uint256.Int).Add(gross, ether(1)))
	requireAmountError(t, err, curve.ErrInsufficientTokenBalanceForLP)

	assert.Equal(t, before, e.view(t, addr))
	assert.Equal(t, held.Dec(), tok.BalanceOf(factoryAddr).Dec())
	assert.Equal(t, ether(1000).Dec(), e.state.BalanceOf(bob).Dec())
	_, ok := e.pool.GetPair(addr)
	assert.False(t, ok)
	e.requireSolvent(t)
}
