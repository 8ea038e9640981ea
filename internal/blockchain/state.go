// =============================
// File: internal/blockchain/state.go
// =============================
package blockchain

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"
)

var _ ValueLedger = (*State)(nil)

// State keeps native ETH balances for every account in the process.
type State struct {
	mu       sync.RWMutex
	balances map[common.Address]*uint256.Int
	hooks    map[common.Address]ReceiveHook
	logger   *zap.Logger
}

// NewState creates an empty balance state.
func NewState(logger *zap.Logger) *State {
	return &State{
		balances: make(map[common.Address]*uint256.Int),
		hooks:    make(map[common.Address]ReceiveHook),
		logger:   logger.Named("state"),
	}
}

// BalanceOf returns a copy of the account balance.
func (s *State) BalanceOf(addr common.Address) *uint256.Int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if bal, ok := s.balances[addr]; ok {
		return new(uint256.Int).Set(bal)
	}
	return new(uint256.Int)
}

// Credit adds newly created value to an account.
func (s *State) Credit(ctx context.Context, addr common.Address, amount *uint256.Int) error {
	if addr == (common.Address{}) {
		return ErrZeroAddress
	}
	if amount.IsZero() {
		return nil
	}

	s.mu.Lock()
	if err := s.add(addr, amount); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	delta := new(uint256.Int).Set(amount)
	Record(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.mustSub(addr, delta)
	})
	return nil
}

// SetReceiveHook installs a hook that runs whenever addr receives value.
// A nil hook removes it.
func (s *State) SetReceiveHook(addr common.Address, hook ReceiveHook) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if hook == nil {
		delete(s.hooks, addr)
		return
	}
	s.hooks[addr] = hook
}

// Transfer moves amount from one account to another and then runs the
// receiver's hook. If the hook fails, the transfer and everything the hook did
// under ctx are undone.
func (s *State) Transfer(ctx context.Context, from, to common.Address, amount *uint256.Int) error {
	if amount.IsZero() {
		return nil
	}
	if to == (common.Address{}) {
		return ErrZeroAddress
	}

	j := JournalFrom(ctx)
	if j == nil {
		j = NewJournal()
		ctx = WithJournal(ctx, j)
	}
	mark := j.Len()

	s.mu.Lock()
	bal := s.balances[from]
	if bal == nil || bal.Lt(amount) {
		have := new(uint256.Int)
		if bal != nil {
			have.Set(bal)
		}
		s.mu.Unlock()
		return fmt.Errorf("%w: %s has %s, needs %s", ErrInsufficientBalance, from.Hex(), have.Dec(), amount.Dec())
	}
	s.balances[from] = new(uint256.Int).Sub(bal, amount)
	if err := s.add(to, amount); err != nil {
		s.balances[from] = bal
		s.mu.Unlock()
		return err
	}
	hook := s.hooks[to]
	s.mu.Unlock()

	delta := new(uint256.Int).Set(amount)
	j.Append(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.mustSub(to, delta)
		s.balances[from] = new(uint256.Int).Add(s.balanceLocked(from), delta)
	})

	if hook != nil {
		if err := hook(ctx, from, new(uint256.Int).Set(amount)); err != nil {
			j.RevertTo(mark)
			s.logger.Debug("Receiver rejected transfer",
				zap.String("from", from.Hex()),
				zap.String("to", to.Hex()),
				zap.String("amount", amount.Dec()),
				zap.Error(err))
			return fmt.Errorf("%w: %w", ErrTransferRejected, err)
		}
	}

	return nil
}

func (s *State) balanceLocked(addr common.Address) *uint256.Int {
	if bal, ok := s.balances[addr]; ok {
		return bal
	}
	return new(uint256.Int)
}

func (s *State) add(addr common.Address, amount *uint256.Int) error {
	sum, overflow := new(uint256.Int).AddOverflow(s.balanceLocked(addr), amount)
	if overflow {
		return fmt.Errorf("balance overflow for %s", addr.Hex())
	}
	s.balances[addr] = sum
	return nil
}

// mustSub is only called by undo entries, which reverse an earlier credit.
func (s *State) mustSub(addr common.Address, amount *uint256.Int) {
	bal := s.balanceLocked(addr)
	if bal.Lt(amount) {
		panic(fmt.Sprintf("journal revert underflow for %s: balance %s, undo %s", addr.Hex(), bal.Dec(), amount.Dec()))
	}
	s.balances[addr] = new(uint256.Int).Sub(bal, amount)
}
