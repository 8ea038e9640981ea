package token

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/rovshanmuradov/launchpad/internal/blockchain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	owner   = common.HexToAddress("0x01")
	spender = common.HexToAddress("0x02")
	holder  = common.HexToAddress("0x03")
	tokAddr = common.HexToAddress("0x7070")
)

func TestTokenTransfers(t *testing.T) {
	ctx := context.Background()
	tok := New(tokAddr, "Test", "TST", 18, uint256.NewInt(1000), owner)

	assert.Equal(t, uint64(1000), tok.BalanceOf(owner).Uint64())
	assert.Equal(t, uint64(1000), tok.TotalSupply().Uint64())

	require.NoError(t, tok.Transfer(ctx, owner, holder, uint256.NewInt(100)))
	assert.Equal(t, uint64(900), tok.BalanceOf(owner).Uint64())
	assert.Equal(t, uint64(100), tok.BalanceOf(holder).Uint64())

	err := tok.Transfer(ctx, holder, owner, uint256.NewInt(101))
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	err = tok.TransferFrom(ctx, spender, holder, spender, uint256.NewInt(10))
	assert.ErrorIs(t, err, ErrInsufficientAllowance)

	require.NoError(t, tok.Approve(ctx, holder, spender, uint256.NewInt(50)))
	require.NoError(t, tok.TransferFrom(ctx, spender, holder, spender, uint256.NewInt(30)))
	assert.Equal(t, uint64(20), tok.Allowance(holder, spender).Uint64())
	assert.Equal(t, uint64(30), tok.BalanceOf(spender).Uint64())
	assert.Equal(t, uint64(70), tok.BalanceOf(holder).Uint64())

	assert.ErrorIs(t, tok.Transfer(ctx, holder, common.Address{}, uint256.NewInt(1)), ErrZeroAddress)
}

func TestTokenRevert(t *testing.T) {
	j := blockchain.NewJournal()
	ctx := blockchain.WithJournal(context.Background(), j)
	tok := New(tokAddr, "Test", "TST", 18, uint256.NewInt(1000), owner)
	reg := NewRegistry()

	require.NoError(t, reg.Register(ctx, tok))
	require.NoError(t, tok.Approve(ctx, owner, spender, uint256.NewInt(500)))
	require.NoError(t, tok.TransferFrom(ctx, spender, owner, holder, uint256.NewInt(200)))

	j.Revert()

	assert.Equal(t, uint64(1000), tok.BalanceOf(owner).Uint64())
	assert.Equal(t, uint64(0), tok.BalanceOf(holder).Uint64())
	assert.Equal(t, uint64(0), tok.Allowance(owner, spender).Uint64())
	_, ok := reg.Lookup(tokAddr)
	assert.False(t, ok)
}

func TestTokenRevertAfterUnjournaledTransfer(t *testing.T) {
	j := blockchain.NewJournal()
	ctx := blockchain.WithJournal(context.Background(), j)
	tok := New(tokAddr, "Test", "TST", 18, uint256.NewInt(1000), owner)

	require.NoError(t, tok.Transfer(ctx, owner, holder, uint256.NewInt(300)))
	require.NoError(t, tok.Transfer(context.Background(), holder, spender, uint256.NewInt(300)))

	assert.PanicsWithValue(t,
		"journal revert underflow for "+holder.Hex()+" in TST: balance 0, undo 300",
		j.Revert)

	total := new(uint256.Int).Add(tok.BalanceOf(owner), tok.BalanceOf(holder))
	total.Add(total, tok.BalanceOf(spender))
	assert.Equal(t, uint64(1000), total.Uint64())
	assert.Equal(t, uint64(300), tok.BalanceOf(spender).Uint64())
}
