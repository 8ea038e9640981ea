// =============================
// File: internal/token/token.go
// =============================
package token

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/rovshanmuradov/launchpad/internal/blockchain"
)

var (
	ErrInsufficientBalance   = errors.New("erc20: transfer amount exceeds balance")
	ErrInsufficientAllowance = errors.New("erc20: insufficient allowance")
	ErrZeroAddress           = errors.New("erc20: zero address")
)

// ERC20 is the fungible-token surface the launchpad relies on.
type ERC20 interface {
	Address() common.Address
	BalanceOf(owner common.Address) *uint256.Int
	Allowance(owner, spender common.Address) *uint256.Int
	Transfer(ctx context.Context, from, to common.Address, amount *uint256.Int) error
	TransferFrom(ctx context.Context, spender, from, to common.Address, amount *uint256.Int) error
	Approve(ctx context.Context, owner, spender common.Address, amount *uint256.Int) error
}

var _ ERC20 = (*Token)(nil)

// Token is a fixed-supply token: the whole supply is minted to the owner at
// creation and nothing is ever minted or burned afterwards.
type Token struct {
	address     common.Address
	name        string
	symbol      string
	decimals    uint8
	totalSupply *uint256.Int

	mu         sync.RWMutex
	balances   map[common.Address]*uint256.Int
	allowances map[common.Address]map[common.Address]*uint256.Int
}

// New mints supply to owner.
func New(address common.Address, name, symbol string, decimals uint8, supply *uint256.Int, owner common.Address) *Token {
	return &Token{
		address:     address,
		name:        name,
		symbol:      symbol,
		decimals:    decimals,
		totalSupply: new(uint256.Int).Set(supply),
		balances: map[common.Address]*uint256.Int{
			owner: new(uint256.Int).Set(supply),
		},
		allowances: make(map[common.Address]map[common.Address]*uint256.Int),
	}
}

func (t *Token) Address() common.Address { return t.address }
func (t *Token) Name() string            { return t.name }
func (t *Token) Symbol() string          { return t.symbol }
func (t *Token) Decimals() uint8         { return t.decimals }

func (t *Token) TotalSupply() *uint256.Int {
	return new(uint256.Int).Set(t.totalSupply)
}

func (t *Token) BalanceOf(owner common.Address) *uint256.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return new(uint256.Int).Set(t.balanceLocked(owner))
}

func (t *Token) Allowance(owner, spender common.Address) *uint256.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return new(uint256.Int).Set(t.allowanceLocked(owner, spender))
}

// Transfer moves amount from from to to.
func (t *Token) Transfer(ctx context.Context, from, to common.Address, amount *uint256.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.transferLocked(ctx, from, to, amount)
}

// TransferFrom moves amount on behalf of spender, consuming its allowance.
func (t *Token) TransferFrom(ctx context.Context, spender, from, to common.Address, amount *uint256.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	allowed := t.allowanceLocked(from, spender)
	if allowed.Lt(amount) {
		return fmt.Errorf("%w: %s allowed %s, needs %s", ErrInsufficientAllowance, spender.Hex(), allowed.Dec(), amount.Dec())
	}
	if err := t.transferLocked(ctx, from, to, amount); err != nil {
		return err
	}

	prev := new(uint256.Int).Set(allowed)
	t.setAllowanceLocked(from, spender, new(uint256.Int).Sub(allowed, amount))
	blockchain.Record(ctx, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		t.setAllowanceLocked(from, spender, prev)
	})
	return nil
}

// Approve sets the allowance of spender over owner's tokens.
func (t *Token) Approve(ctx context.Context, owner, spender common.Address, amount *uint256.Int) error {
	if owner == (common.Address{}) || spender == (common.Address{}) {
		return ErrZeroAddress
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	prev := new(uint256.Int).Set(t.allowanceLocked(owner, spender))
	t.setAllowanceLocked(owner, spender, new(uint256.Int).Set(amount))
	blockchain.Record(ctx, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		t.setAllowanceLocked(owner, spender, prev)
	})
	return nil
}

func (t *Token) transferLocked(ctx context.Context, from, to common.Address, amount *uint256.Int) error {
	if from == (common.Address{}) || to == (common.Address{}) {
		return ErrZeroAddress
	}
	bal := t.balanceLocked(from)
	if bal.Lt(amount) {
		return fmt.Errorf("%w: %s has %s, needs %s", ErrInsufficientBalance, from.Hex(), bal.Dec(), amount.Dec())
	}
	if amount.IsZero() {
		return nil
	}

	t.move(from, to, amount)
	delta := new(uint256.Int).Set(amount)
	blockchain.Record(ctx, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		t.undoMove(to, from, delta)
	})
	return nil
}

// move never overflows: balances sum to the fixed total supply.
func (t *Token) move(from, to common.Address, amount *uint256.Int) {
	t.balances[from] = new(uint256.Int).Sub(t.balanceLocked(from), amount)
	t.balances[to] = new(uint256.Int).Add(t.balanceLocked(to), amount)
}

// undoMove reverses an earlier move. The recipient must still hold the
// tokens; anything else means they left through an unjournaled transfer.
func (t *Token) undoMove(from, to common.Address, amount *uint256.Int) {
	if bal := t.balanceLocked(from); bal.Lt(amount) {
		panic(fmt.Sprintf("journal revert underflow for %s in %s: balance %s, undo %s",
			from.Hex(), t.symbol, bal.Dec(), amount.Dec()))
	}
	t.move(from, to, amount)
}

func (t *Token) balanceLocked(owner common.Address) *uint256.Int {
	if bal, ok := t.balances[owner]; ok {
		return bal
	}
	return new(uint256.Int)
}

func (t *Token) allowanceLocked(owner, spender common.Address) *uint256.Int {
	if m, ok := t.allowances[owner]; ok {
		if a, ok := m[spender]; ok {
			return a
		}
	}
	return new(uint256.Int)
}

func (t *Token) setAllowanceLocked(owner, spender common.Address, amount *uint256.Int) {
	m, ok := t.allowances[owner]
	if !ok {
		m = make(map[common.Address]*uint256.Int)
		t.allowances[owner] = m
	}
	m[spender] = amount
}
