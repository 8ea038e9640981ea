// internal/token/registry.go
package token

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rovshanmuradov/launchpad/internal/blockchain"
)

// Registry resolves token addresses to deployed tokens.
type Registry struct {
	mu     sync.RWMutex
	tokens map[common.Address]*Token
}

func NewRegistry() *Registry {
	return &Registry{tokens: make(map[common.Address]*Token)}
}

// Register deploys tok at its address. The deployment is undone if the
// operation recorded in ctx reverts.
func (r *Registry) Register(ctx context.Context, tok *Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tokens[tok.Address()]; exists {
		return fmt.Errorf("token already deployed at %s", tok.Address().Hex())
	}
	r.tokens[tok.Address()] = tok

	addr := tok.Address()
	blockchain.Record(ctx, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.tokens, addr)
	})
	return nil
}

// Lookup returns the token deployed at addr.
func (r *Registry) Lookup(addr common.Address) (*Token, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tok, ok := r.tokens[addr]
	return tok, ok
}

// ERC20 returns the token at addr as an ERC20.
func (r *Registry) ERC20(addr common.Address) (ERC20, bool) {
	tok, ok := r.Lookup(addr)
	if !ok {
		return nil, false
	}
	return tok, true
}
