// =============================
// File: internal/launchpad/factory.go
// =============================
package launchpad

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"github.com/rovshanmuradov/launchpad/internal/blockchain"
	"github.com/rovshanmuradov/launchpad/internal/dex/curve"
	"github.com/rovshanmuradov/launchpad/internal/events"
	"github.com/rovshanmuradov/launchpad/internal/ledger"
	"github.com/rovshanmuradov/launchpad/internal/token"
	"go.uber.org/zap"
)

// Factory is the launchpad engine. Mutating operations are serialized; queries
// never take the operation lock and see state as soon as it is applied.
type Factory struct {
	opts   Options
	ledger *ledger.Ledger
	fees   *feeVault
	logger *zap.Logger

	// lock serializes mutating operations. Waiting for it honors the
	// caller's context.
	lock chan struct{}

	cfgMu       sync.RWMutex
	cfg         *curve.Config
	initialized bool

	nonceMu sync.Mutex
	nonce   uint64

	notesMu sync.RWMutex
	notes   []events.Event
}

// New creates an uninitialized factory.
func New(opts Options) (*Factory, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	opts.setDefaults()

	logger := opts.Logger.Named("launchpad")
	return &Factory{
		opts:   opts,
		ledger: ledger.New(logger),
		fees:   newFeeVault(),
		logger: logger,
		lock:   make(chan struct{}, 1),
	}, nil
}

// txn collects the notifications of one operation until it commits.
type txn struct {
	op     string
	logger *zap.Logger
	events []events.Event
}

func (t *txn) emit(e events.Event) {
	t.events = append(t.events, e)
}

type guardKey struct{}

func (f *Factory) guarded(ctx context.Context) bool {
	owner, _ := ctx.Value(guardKey{}).(*Factory)
	return owner == f
}

// execute runs fn as one all-or-nothing operation. Collaborators receive a
// context tagged with this factory, so any call they make back into a
// mutating operation fails with ErrReentrantCall. A call that re-enters with
// an untagged context waits for the operation lock until its own context is
// done.
func (f *Factory) execute(ctx context.Context, op string, fn func(ctx context.Context, tx *txn) error) error {
	if f.guarded(ctx) {
		f.logger.Warn("Reentrant call rejected", zap.String("operation", op))
		return ErrReentrantCall
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	select {
	case f.lock <- struct{}{}:
	case <-ctx.Done():
		f.logger.Warn("Gave up waiting for the operation lock",
			zap.String("operation", op), zap.Error(ctx.Err()))
		return ctx.Err()
	}
	defer func() { <-f.lock }()

	start := time.Now()
	tx := &txn{
		op: op,
		logger: f.logger.With(
			zap.String("operation", op),
			zap.String("correlation_id", uuid.New().String()),
		),
	}

	journal := blockchain.NewJournal()
	txCtx := blockchain.WithJournal(context.WithValue(ctx, guardKey{}, f), journal)

	if err := fn(txCtx, tx); err != nil {
		undone := journal.Len()
		journal.Revert()
		f.observe(op, start, err)
		tx.logger.Info("Operation reverted",
			zap.Int("undone", undone),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
		return err
	}

	f.commit(tx)
	f.observe(op, start, nil)
	tx.logger.Debug("Operation committed",
		zap.Int("notifications", len(tx.events)),
		zap.Duration("duration", time.Since(start)))
	return nil
}

func (f *Factory) observe(op string, start time.Time, err error) {
	if f.opts.Observer != nil {
		f.opts.Observer.ObserveOperation(op, time.Since(start), err)
	}
}

type stamper interface {
	Stamp(seq uint64, at time.Time)
}

func (f *Factory) commit(tx *txn) {
	if len(tx.events) == 0 {
		return
	}

	now := f.opts.Clock()
	f.notesMu.Lock()
	for _, e := range tx.events {
		e.(stamper).Stamp(uint64(len(f.notes))+1, now)
		f.notes = append(f.notes, e)
	}
	f.notesMu.Unlock()

	if f.opts.Bus == nil {
		return
	}
	for _, e := range tx.events {
		if err := f.opts.Bus.Publish(e); err != nil {
			tx.logger.Warn("Notification not published",
				zap.String("type", string(e.Type())),
				zap.Uint64("seq", e.Sequence()),
				zap.Error(err))
		}
	}
}

// Notifications returns committed notifications with sequence >= from, in order.
func (f *Factory) Notifications(from uint64) []events.Event {
	f.notesMu.RLock()
	defer f.notesMu.RUnlock()

	if from == 0 {
		from = 1
	}
	if from > uint64(len(f.notes)) {
		return nil
	}
	return append([]events.Event(nil), f.notes[from-1:]...)
}

func (f *Factory) onlyOwner(caller common.Address) error {
	if caller != f.opts.Owner {
		return fmt.Errorf("%w: %s", curve.ErrUnauthorized, caller.Hex())
	}
	return nil
}

// config returns the active config or ErrNotInitialized.
func (f *Factory) config() (*curve.Config, error) {
	f.cfgMu.RLock()
	defer f.cfgMu.RUnlock()
	if !f.initialized {
		return nil, ErrNotInitialized
	}
	return f.cfg, nil
}

func (f *Factory) nextTokenAddress(ctx context.Context) common.Address {
	f.nonceMu.Lock()
	defer f.nonceMu.Unlock()

	addr := crypto.CreateAddress(f.opts.Address, f.nonce)
	f.nonce++
	blockchain.Record(ctx, func() {
		f.nonceMu.Lock()
		defer f.nonceMu.Unlock()
		f.nonce--
	})
	return addr
}

func (f *Factory) lookupToken(addr common.Address) (*token.Token, error) {
	tok, ok := f.opts.Tokens.Lookup(addr)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownToken, addr.Hex())
	}
	return tok, nil
}

// requireTokens checks the factory holds at least amount of tok.
func (f *Factory) requireTokens(tok *token.Token, amount *uint256.Int, sentinel error) error {
	if bal := tok.BalanceOf(f.opts.Address); bal.Lt(amount) {
		return curve.NewAmountError(sentinel, amount, bal)
	}
	return nil
}

func reservesOf(st *ledger.TokenState) events.Reserves {
	return events.Reserves{
		VirtualEth:   st.VirtualEth,
		VirtualToken: st.VirtualToken,
		RealEth:      st.RealEth,
		RealToken:    st.RealToken,
	}
}

// Address is the factory account.
func (f *Factory) Address() common.Address { return f.opts.Address }

// Owner is the configured operator.
func (f *Factory) Owner() common.Address { return f.opts.Owner }

// Router returns the AMM router address.
func (f *Factory) Router() common.Address { return f.opts.Router.Address() }

// WETH returns the AMM base asset.
func (f *Factory) WETH() common.Address { return f.opts.Router.WETH() }

// AMMFactory returns the AMM pair factory.
func (f *Factory) AMMFactory() common.Address { return f.opts.Router.Factory() }

// Config returns a copy of the active config.
func (f *Factory) Config() (*curve.Config, error) {
	cfg, err := f.config()
	if err != nil {
		return nil, err
	}
	return cfg.Clone(), nil
}

// TokenState returns the reserve record of a launched token.
func (f *Factory) TokenState(tok common.Address) (*ledger.TokenState, error) {
	return f.ledger.Get(tok)
}

// Tokens lists launched tokens in launch order.
func (f *Factory) Tokens() []common.Address {
	return f.ledger.Tokens()
}

// TotalFee returns the protocol fee accrued since the last claim.
func (f *Factory) TotalFee() *uint256.Int {
	return f.fees.Total()
}
