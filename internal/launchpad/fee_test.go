package launchpad

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/rovshanmuradov/launchpad/internal/blockchain"
	"github.com/rovshanmuradov/launchpad/internal/dex/curve"
	"github.com/rovshanmuradov/launchpad/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaimFeeScenarioD(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	addr := e.launch(t, nil)

	_, err := e.f.Buy(ctx, bob, addr, ether(1))
	require.NoError(t, err)
	_, err = e.f.Buy(ctx, alice, addr, milliEther(250))
	require.NoError(t, err)

	fee := e.f.TotalFee()
	require.False(t, fee.IsZero())

	_, err = e.f.ClaimFee(ctx, alice, treasury)
	assert.ErrorIs(t, err, curve.ErrUnauthorized)

	_, err = e.f.ClaimFee(ctx, ownerAddr, common.Address{})
	assert.ErrorIs(t, err, curve.ErrZeroAddress)
	assert.Equal(t, fee.Dec(), e.f.TotalFee().Dec())

	claimed, err := e.f.ClaimFee(ctx, ownerAddr, treasury)
	require.NoError(t, err)
	assert.Equal(t, fee.Dec(), claimed.Dec())
	assert.True(t, e.f.TotalFee().IsZero())
	assert.Equal(t, fee.Dec(), e.state.BalanceOf(treasury).Dec())
	e.requireSolvent(t)

	notes := e.f.Notifications(0)
	last, ok := notes[len(notes)-1].(*events.FeeClaimedEvent)
	require.True(t, ok)
	assert.Equal(t, treasury, last.Destination)
	assert.Equal(t, fee.Dec(), last.Amount.Dec())

	// Nothing accrued since the claim.
	again, err := e.f.ClaimFee(ctx, ownerAddr, treasury)
	require.NoError(t, err)
	assert.True(t, again.IsZero())
	assert.Equal(t, fee.Dec(), e.state.BalanceOf(treasury).Dec())
}

func TestClaimFeeRejectedPayout(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	addr := e.launch(t, nil)

	_, err := e.f.Buy(ctx, bob, addr, ether(2))
	require.NoError(t, err)
	fee := e.f.TotalFee()
	notes := len(e.f.Notifications(0))

	rejected := errors.New("treasury closed")
	e.state.SetReceiveHook(treasury, func(context.Context, common.Address, *uint256.Int) error {
		return rejected
	})

	_, err = e.f.ClaimFee(ctx, ownerAddr, treasury)
	assert.ErrorIs(t, err, curve.ErrTransferFailed)
	assert.ErrorIs(t, err, blockchain.ErrTransferRejected)
	assert.ErrorIs(t, err, rejected)

	assert.Equal(t, fee.Dec(), e.f.TotalFee().Dec())
	assert.True(t, e.state.BalanceOf(treasury).IsZero())
	assert.Len(t, e.f.Notifications(0), notes)
	e.requireSolvent(t)

	e.state.SetReceiveHook(treasury, nil)
	claimed, err := e.f.ClaimFee(ctx, ownerAddr, treasury)
	require.NoError(t, err)
	assert.Equal(t, fee.Dec(), claimed.Dec())
}
