// =============================
// File: internal/dex/amm/pool.go
// =============================
package amm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/rovshanmuradov/launchpad/internal/blockchain"
	"github.com/rovshanmuradov/launchpad/internal/token"
	"go.uber.org/zap"
)

var _ Router = (*Pool)(nil)

// pairInitCodeHash stands in for the pair bytecode hash in CREATE2 addressing.
var pairInitCodeHash = crypto.Keccak256([]byte("launchpad/amm/pair"))

// TokenResolver finds deployed tokens by address.
type TokenResolver interface {
	ERC20(addr common.Address) (token.ERC20, bool)
}

// PoolConfig wires an in-process constant-product AMM.
type PoolConfig struct {
	Router  common.Address
	Factory common.Address
	WETH    common.Address
	State   blockchain.ValueLedger
	Tokens  TokenResolver
	Clock   func() time.Time
	Logger  *zap.Logger
}

type pair struct {
	address      common.Address
	reserveToken *uint256.Int
	reserveETH   *uint256.Int
	totalSupply  *uint256.Int
	liquidity    map[common.Address]*uint256.Int
}

// Pool is an in-process UniswapV2-style router and factory pairing every token
// with WETH. ETH reserves are held by the pair account in the value ledger.
type Pool struct {
	cfg    PoolConfig
	mu     sync.Mutex
	pairs  map[common.Address]*pair
	logger *zap.Logger
}

// NewPool creates an AMM with no pairs.
func NewPool(cfg PoolConfig) *Pool {
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Pool{
		cfg:    cfg,
		pairs:  make(map[common.Address]*pair),
		logger: cfg.Logger.Named("amm"),
	}
}

func (p *Pool) Address() common.Address { return p.cfg.Router }
func (p *Pool) WETH() common.Address    { return p.cfg.WETH }
func (p *Pool) Factory() common.Address { return p.cfg.Factory }

// PairAddress returns the deterministic address of the token/WETH pair.
func (p *Pool) PairAddress(tok common.Address) common.Address {
	t0, t1 := tok, p.cfg.WETH
	if t1.Cmp(t0) < 0 {
		t0, t1 = t1, t0
	}
	salt := crypto.Keccak256Hash(t0.Bytes(), t1.Bytes())
	return crypto.CreateAddress2(p.cfg.Factory, salt, pairInitCodeHash)
}

// GetPair returns the pair address if the pair exists.
func (p *Pool) GetPair(tok common.Address) (common.Address, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	pr, ok := p.pairs[tok]
	if !ok {
		return common.Address{}, false
	}
	return pr.address, true
}

// GetReserves returns the token and ETH reserves of the pair.
func (p *Pool) GetReserves(tok common.Address) (*uint256.Int, *uint256.Int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	pr, ok := p.pairs[tok]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrPairNotFound, tok.Hex())
	}
	return new(uint256.Int).Set(pr.reserveToken), new(uint256.Int).Set(pr.reserveETH), nil
}

// LiquidityOf returns the LP balance of holder in the pair of tok.
func (p *Pool) LiquidityOf(tok, holder common.Address) *uint256.Int {
	p.mu.Lock()
	defer p.mu.Unlock()
	pr, ok := p.pairs[tok]
	if !ok {
		return new(uint256.Int)
	}
	if l, ok := pr.liquidity[holder]; ok {
		return new(uint256.Int).Set(l)
	}
	return new(uint256.Int)
}

// AddLiquidityETH deposits tokens and ETH at the pair's current ratio, creating
// the pair on first use. Only the deposited amounts leave req.From; tokens are
// pulled through the allowance granted to the router.
func (p *Pool) AddLiquidityETH(ctx context.Context, req *AddLiquidityRequest) (*AddLiquidityResult, error) {
	if p.cfg.Clock().After(req.Deadline) {
		return nil, ErrExpired
	}
	erc20, ok := p.cfg.Tokens.ERC20(req.Token)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownToken, req.Token.Hex())
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	pr, created := p.pairFor(ctx, req.Token)

	amountToken, amountETH, err := optimalAmounts(pr, req)
	if err != nil {
		return nil, err
	}

	liquidity, err := mintable(pr, amountToken, amountETH)
	if err != nil {
		return nil, err
	}

	if err := erc20.TransferFrom(ctx, p.cfg.Router, req.From, pr.address, amountToken); err != nil {
		return nil, fmt.Errorf("pull tokens: %w", err)
	}
	if err := p.cfg.State.Transfer(ctx, req.From, pr.address, amountETH); err != nil {
		return nil, fmt.Errorf("pull ETH: %w", err)
	}

	p.credit(ctx, pr, req.To, liquidity, amountToken, amountETH)

	p.logger.Info("Liquidity added",
		zap.String("token", req.Token.Hex()),
		zap.String("pair", pr.address.Hex()),
		zap.Bool("pair_created", created),
		zap.String("amount_token", amountToken.Dec()),
		zap.String("amount_eth", amountETH.Dec()),
		zap.String("liquidity", liquidity.Dec()))

	return &AddLiquidityResult{
		AmountToken: amountToken,
		AmountETH:   amountETH,
		Liquidity:   liquidity,
		Pair:        pr.address,
	}, nil
}

func (p *Pool) pairFor(ctx context.Context, tok common.Address) (*pair, bool) {
	if pr, ok := p.pairs[tok]; ok {
		return pr, false
	}
	pr := &pair{
		address:      p.PairAddress(tok),
		reserveToken: new(uint256.Int),
		reserveETH:   new(uint256.Int),
		totalSupply:  new(uint256.Int),
		liquidity:    make(map[common.Address]*uint256.Int),
	}
	p.pairs[tok] = pr
	blockchain.Record(ctx, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.pairs, tok)
	})
	return pr, true
}

func (p *Pool) credit(ctx context.Context, pr *pair, to common.Address, liquidity, amountToken, amountETH *uint256.Int) {
	var locked *uint256.Int
	if pr.totalSupply.IsZero() {
		locked = uint256.NewInt(MinimumLiquidity)
		addTo(pr.liquidity, common.Address{}, locked)
		pr.totalSupply.Add(pr.totalSupply, locked)
	}
	addTo(pr.liquidity, to, liquidity)
	pr.totalSupply.Add(pr.totalSupply, liquidity)
	pr.reserveToken.Add(pr.reserveToken, amountToken)
	pr.reserveETH.Add(pr.reserveETH, amountETH)

	blockchain.Record(ctx, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		pr.reserveToken.Sub(pr.reserveToken, amountToken)
		pr.reserveETH.Sub(pr.reserveETH, amountETH)
		pr.totalSupply.Sub(pr.totalSupply, liquidity)
		pr.liquidity[to] = new(uint256.Int).Sub(pr.liquidity[to], liquidity)
		if locked != nil {
			pr.totalSupply.Sub(pr.totalSupply, locked)
			pr.liquidity[common.Address{}] = new(uint256.Int).Sub(pr.liquidity[common.Address{}], locked)
		}
	})
}

func optimalAmounts(pr *pair, req *AddLiquidityRequest) (*uint256.Int, *uint256.Int, error) {
	tokenDesired := req.AmountTokenDesired
	ethDesired := req.Value
	if pr.reserveToken.IsZero() && pr.reserveETH.IsZero() {
		return new(uint256.Int).Set(tokenDesired), new(uint256.Int).Set(ethDesired), nil
	}

	ethOptimal := quote(tokenDesired, pr.reserveToken, pr.reserveETH)
	if !ethOptimal.Gt(ethDesired) {
		if ethOptimal.Lt(req.AmountETHMin) {
			return nil, nil, ErrInsufficientETHAmount
		}
		return new(uint256.Int).Set(tokenDesired), ethOptimal, nil
	}

	tokenOptimal := quote(ethDesired, pr.reserveETH, pr.reserveToken)
	if tokenOptimal.Lt(req.AmountTokenMin) {
		return nil, nil, ErrInsufficientTokenAmount
	}
	return tokenOptimal, new(uint256.Int).Set(ethDesired), nil
}

func mintable(pr *pair, amountToken, amountETH *uint256.Int) (*uint256.Int, error) {
	var liquidity *uint256.Int
	if pr.totalSupply.IsZero() {
		product, overflow := new(uint256.Int).MulOverflow(amountToken, amountETH)
		if overflow {
			return nil, fmt.Errorf("%w: reserve product overflows", ErrInsufficientLiquidityMinted)
		}
		root := new(uint256.Int).Sqrt(product)
		minimum := uint256.NewInt(MinimumLiquidity)
		if !root.Gt(minimum) {
			return nil, ErrInsufficientLiquidityMinted
		}
		liquidity = root.Sub(root, minimum)
	} else {
		byToken := quote(amountToken, pr.reserveToken, pr.totalSupply)
		byETH := quote(amountETH, pr.reserveETH, pr.totalSupply)
		liquidity = byToken
		if byETH.Lt(byToken) {
			liquidity = byETH
		}
	}
	if liquidity.IsZero() {
		return nil, ErrInsufficientLiquidityMinted
	}
	return liquidity, nil
}

// quote returns amount*reserveOut/reserveIn, floored.
func quote(amount, reserveIn, reserveOut *uint256.Int) *uint256.Int {
	if reserveIn.IsZero() {
		return new(uint256.Int)
	}
	out, _ := new(uint256.Int).MulDivOverflow(amount, reserveOut, reserveIn)
	return out
}

func addTo(m map[common.Address]*uint256.Int, who common.Address, v *uint256.Int) {
	cur, ok := m[who]
	if !ok {
		cur = new(uint256.Int)
	}
	m[who] = new(uint256.Int).Add(cur, v)
}
