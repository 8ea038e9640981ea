// =============================
// File: internal/ledger/ledger.go
// =============================
package ledger

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/rovshanmuradov/launchpad/internal/blockchain"
	"github.com/rovshanmuradov/launchpad/internal/dex/curve"
	"go.uber.org/zap"
)

// Ledger owns the reserve state of every launched token. Entries are created
// once and never removed; Tokens lists them in creation order.
type Ledger struct {
	mu     sync.RWMutex
	states map[common.Address]*TokenState
	order  []common.Address
	logger *zap.Logger
}

// New creates an empty ledger.
func New(logger *zap.Logger) *Ledger {
	return &Ledger{
		states: make(map[common.Address]*TokenState),
		logger: logger.Named("ledger"),
	}
}

// Create registers the initial state of a new token.
func (l *Ledger) Create(ctx context.Context, st *TokenState) error {
	if st.Token == (common.Address{}) {
		return curve.ErrZeroAddress
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.states[st.Token]; ok {
		return fmt.Errorf("%w: %s", ErrTokenExists, st.Token.Hex())
	}

	entry := st.Clone()
	checkCreate(entry)
	l.states[entry.Token] = entry
	l.order = append(l.order, entry.Token)

	token := entry.Token
	blockchain.Record(ctx, func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.states, token)
		l.order = l.order[:len(l.order)-1]
	})

	l.logger.Debug("Token state created",
		zap.String("token", token.Hex()),
		zap.String("virtual_eth", entry.VirtualEth.Dec()),
		zap.String("virtual_token", entry.VirtualToken.Dec()),
		zap.String("real_token", entry.RealToken.Dec()),
		zap.String("amm_token_reserves", entry.AmmTokenReserves.Dec()))
	return nil
}

// Get returns a copy of the token state.
func (l *Ledger) Get(token common.Address) (*TokenState, error) {
	if token == (common.Address{}) {
		return nil, curve.ErrZeroAddress
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	st, ok := l.states[token]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTokenNotFound, token.Hex())
	}
	return st.Clone(), nil
}

// Apply updates the reserves of token and returns the new state. A mutation
// that breaks a reserve invariant panics with *InvariantViolation and leaves
// the entry untouched.
func (l *Ledger) Apply(ctx context.Context, token common.Address, m Mutation) (*TokenState, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cur, ok := l.states[token]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTokenNotFound, token.Hex())
	}

	next := cur.Clone()
	apply(next, m)
	checkTransition(cur, next)

	l.states[token] = next
	blockchain.Record(ctx, func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.states[token] = cur
	})

	return next.Clone(), nil
}

// Tokens returns the launched tokens in creation order.
func (l *Ledger) Tokens() []common.Address {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]common.Address(nil), l.order...)
}

// Len returns the number of launched tokens.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.order)
}

func apply(st *TokenState, m Mutation) {
	if (m.VirtualEth == nil) != (m.VirtualToken == nil) {
		violate(st.Token, "virtual-pair", "virtual reserves must be updated together")
	}
	if m.VirtualEth != nil {
		st.VirtualEth = new(uint256.Int).Set(m.VirtualEth)
		st.VirtualToken = new(uint256.Int).Set(m.VirtualToken)
	}

	if nonZero(m.RealEthIn) {
		sum, overflow := new(uint256.Int).AddOverflow(st.RealEth, m.RealEthIn)
		if overflow {
			violate(st.Token, "real-eth", "overflow adding %s", m.RealEthIn.Dec())
		}
		st.RealEth = sum
	}
	if nonZero(m.RealEthOut) {
		if st.RealEth.Lt(m.RealEthOut) {
			violate(st.Token, "real-eth", "debit %s exceeds balance %s", m.RealEthOut.Dec(), st.RealEth.Dec())
		}
		st.RealEth = new(uint256.Int).Sub(st.RealEth, m.RealEthOut)
	}

	if nonZero(m.RealTokenIn) {
		sum, overflow := new(uint256.Int).AddOverflow(st.RealToken, m.RealTokenIn)
		if overflow {
			violate(st.Token, "real-token", "overflow adding %s", m.RealTokenIn.Dec())
		}
		st.RealToken = sum
	}
	if nonZero(m.RealTokenOut) {
		if st.RealToken.Lt(m.RealTokenOut) {
			violate(st.Token, "real-token", "debit %s exceeds inventory %s", m.RealTokenOut.Dec(), st.RealToken.Dec())
		}
		st.RealToken = new(uint256.Int).Sub(st.RealToken, m.RealTokenOut)
	}

	if nonZero(m.AmmTokenOut) {
		if st.AmmTokenReserves.Lt(m.AmmTokenOut) {
			violate(st.Token, "amm-reserves", "debit %s exceeds reserves %s", m.AmmTokenOut.Dec(), st.AmmTokenReserves.Dec())
		}
		st.AmmTokenReserves = new(uint256.Int).Sub(st.AmmTokenReserves, m.AmmTokenOut)
	}

	if nonZero(m.MigrationFee) {
		st.MigrationFee = new(uint256.Int).Add(st.MigrationFee, m.MigrationFee)
	}

	if m.Complete {
		st.IsCompleted = true
	}
	if st.AmmTokenReserves.IsZero() {
		st.LiquidityMigrated = true
	}
}

func checkCreate(st *TokenState) {
	if st.VirtualEth.IsZero() || !st.VirtualToken.Gt(st.RealToken) {
		violate(st.Token, "virtual-reserves", "virtual eth %s, virtual token %s, real token %s",
			st.VirtualEth.Dec(), st.VirtualToken.Dec(), st.RealToken.Dec())
	}
	sum := new(uint256.Int).Add(st.RealToken, st.AmmTokenReserves)
	if !sum.Eq(st.TotalSupply) {
		violate(st.Token, "supply-split", "real %s + amm %s != supply %s",
			st.RealToken.Dec(), st.AmmTokenReserves.Dec(), st.TotalSupply.Dec())
	}
	if st.IsCompleted != st.RealToken.IsZero() {
		violate(st.Token, "completion", "completed=%v with real token %s", st.IsCompleted, st.RealToken.Dec())
	}
	if st.LiquidityMigrated {
		violate(st.Token, "migration", "new token cannot be migrated")
	}
}

func checkTransition(prev, next *TokenState) {
	token := next.Token

	if prev.IsCompleted && !next.IsCompleted {
		violate(token, "completion", "completed curve reopened")
	}
	if next.IsCompleted != next.RealToken.IsZero() {
		violate(token, "completion", "completed=%v with real token %s", next.IsCompleted, next.RealToken.Dec())
	}
	if next.AmmTokenReserves.Gt(prev.AmmTokenReserves) {
		violate(token, "amm-reserves", "reserves grew from %s to %s", prev.AmmTokenReserves.Dec(), next.AmmTokenReserves.Dec())
	}
	if prev.LiquidityMigrated && !next.LiquidityMigrated {
		violate(token, "migration", "migrated flag cleared")
	}

	if prev.VirtualEth.Eq(next.VirtualEth) && prev.VirtualToken.Eq(next.VirtualToken) {
		return
	}
	if next.VirtualEth.IsZero() || next.VirtualToken.IsZero() {
		violate(token, "virtual-reserves", "virtual reserves drained")
	}

	// A floor step lands in (P-newS, P], a ceil step in [P, P+newT).
	before := new(big.Int).Mul(prev.VirtualEth.ToBig(), prev.VirtualToken.ToBig())
	newS, newT := next.VirtualEth.ToBig(), next.VirtualToken.ToBig()
	after := new(big.Int).Mul(newS, newT)
	lower := new(big.Int).Sub(before, newS)
	upper := new(big.Int).Add(before, newT)
	if after.Cmp(lower) <= 0 || after.Cmp(upper) >= 0 {
		violate(token, "constant-product", "product moved from %s to %s", before, after)
	}
}
