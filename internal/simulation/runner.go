// =============================
// File: internal/simulation/runner.go
// =============================
package simulation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/rovshanmuradov/launchpad/internal/blockchain"
	"github.com/rovshanmuradov/launchpad/internal/config"
	"github.com/rovshanmuradov/launchpad/internal/dex/amm"
	"github.com/rovshanmuradov/launchpad/internal/events"
	"github.com/rovshanmuradov/launchpad/internal/launchpad"
	"github.com/rovshanmuradov/launchpad/internal/ledger"
	"github.com/rovshanmuradov/launchpad/internal/storage"
	"github.com/rovshanmuradov/launchpad/internal/storage/leveldb"
	"github.com/rovshanmuradov/launchpad/internal/storage/memory"
	"github.com/rovshanmuradov/launchpad/internal/storage/models"
	"github.com/rovshanmuradov/launchpad/internal/token"
	"github.com/rovshanmuradov/launchpad/internal/utils/metrics"
	"go.uber.org/zap"
)

var (
	ErrJournalNotEmpty = errors.New("notification journal already has entries")
	ErrAlreadyRan      = errors.New("runner already executed a plan")
)

// Plan describes one launch followed by a wave of concurrent buyers.
type Plan struct {
	Name            string
	Symbol          string
	InitialAmmEth   *uint256.Int
	InitialRatioBps uint64
	// CreatorBuy is attached to the launch. Optional.
	CreatorBuy *uint256.Int
	Buyers     int
	Workers    int
	BuyAmount  *uint256.Int
	// SellBps of each purchase is sold back right away.
	SellBps uint64
	// ClaimTo receives the accrued fee at the end. Optional.
	ClaimTo common.Address
	// Trades replaces the uniform Buyers wave when set.
	Trades []TradeSpec
}

// TradeSpec is one scripted trader turn.
type TradeSpec struct {
	Trader  string
	Amount  *uint256.Int
	SellBps uint64
}

// tasks expands the plan into worker tasks, one per trader turn.
func (p *Plan) tasks() []*Task {
	if len(p.Trades) == 0 {
		out := make([]*Task, p.Buyers)
		for i := range out {
			out[i] = &Task{
				ID:      i + 1,
				Trader:  Participant(fmt.Sprintf("buyer/%d", i+1)),
				Amount:  p.BuyAmount,
				SellBps: p.SellBps,
			}
		}
		return out
	}
	out := make([]*Task, len(p.Trades))
	for i, trade := range p.Trades {
		out[i] = &Task{
			ID:      i + 1,
			Trader:  Participant(trade.Trader),
			Amount:  trade.Amount,
			SellBps: trade.SellBps,
		}
	}
	return out
}

func (p *Plan) validate() error {
	for i, trade := range p.Trades {
		switch {
		case trade.Trader == "":
			return fmt.Errorf("trade %d: missing trader", i+1)
		case trade.Amount == nil || trade.Amount.IsZero():
			return fmt.Errorf("trade %d: buy amount must be positive", i+1)
		case trade.SellBps > 10_000:
			return fmt.Errorf("trade %d: sell share above 100%%", i+1)
		}
	}
	if len(p.Trades) > 0 {
		p.Buyers = len(p.Trades)
		p.BuyAmount = p.Trades[0].Amount
		p.SellBps = p.Trades[0].SellBps
	}
	switch {
	case p.Buyers <= 0:
		return errors.New("buyers must be positive")
	case p.BuyAmount == nil || p.BuyAmount.IsZero():
		return errors.New("buy amount must be positive")
	case p.InitialAmmEth == nil || p.InitialAmmEth.IsZero():
		return errors.New("initial AMM ETH must be positive")
	case p.SellBps > 10_000:
		return errors.New("sell share above 100%")
	}
	return nil
}

// Report is the state left behind by a plan.
type Report struct {
	Token          common.Address
	State          *ledger.TokenState
	Trades         []*Outcome
	TotalFee       *uint256.Int
	Claimed        *uint256.Int
	FactoryBalance *uint256.Int
	Pair           common.Address
	PairToken      *uint256.Int
	PairETH        *uint256.Int
	Notifications  []*models.Notification
	Bus            events.Stats
	Duration       time.Duration
}

// Runner wires a factory to an in-process chain and a notification journal.
type Runner struct {
	cfg      *config.Config
	logger   *zap.Logger
	state    *blockchain.State
	tokens   *token.Registry
	pool     *amm.Pool
	bus      *events.Bus
	store    storage.Storage
	recorder *storage.Recorder
	factory  *launchpad.Factory
	metrics  *metrics.Collector
	shutdown *ShutdownHandler
	ran      bool
}

// NewRunner builds and initializes a factory from cfg. Notifications are kept
// in cfg.JournalPath when set, in memory otherwise.
func NewRunner(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Runner, error) {
	curveCfg, err := cfg.ToCurveConfig()
	if err != nil {
		return nil, err
	}

	store, err := openStore(ctx, cfg.JournalPath, logger)
	if err != nil {
		return nil, err
	}

	r := &Runner{
		cfg:      cfg,
		logger:   logger.Named("simulation"),
		state:    blockchain.NewState(logger),
		tokens:   token.NewRegistry(),
		store:    store,
		metrics:  metrics.NewCollector(),
		shutdown: NewShutdownHandler(logger, 10*time.Second),
	}
	r.shutdown.Add("storage", store)

	r.pool = amm.NewPool(amm.PoolConfig{
		Router:  common.HexToAddress(cfg.AMM.Router),
		Factory: common.HexToAddress(cfg.AMM.Factory),
		WETH:    common.HexToAddress(cfg.AMM.WETH),
		State:   r.state,
		Tokens:  r.tokens,
		Logger:  logger,
	})

	r.bus = events.NewBus(logger, cfg.EventBuffer)
	r.shutdown.AddFunc("event_bus", func() error {
		return r.bus.Shutdown(context.Background())
	})

	r.factory, err = launchpad.New(launchpad.Options{
		Address:     cfg.FactoryAddress(),
		Owner:       cfg.OwnerAddress(),
		State:       r.state,
		Tokens:      r.tokens,
		Router:      r.pool,
		Bus:         r.bus,
		Deadline:    cfg.AMM.Deadline,
		SlippageBps: cfg.AMM.SlippageBps,
		Observer:    r.metrics,
		Logger:      logger,
	})
	if err != nil {
		_ = r.Close(ctx)
		return nil, err
	}

	r.recorder = storage.NewRecorder(store, r.factory, logger, 5)
	r.bus.Subscribe(events.AllEvents, r.recorder)
	r.bus.Subscribe(events.AllEvents, r.metrics)

	if err := r.factory.Initialize(ctx, cfg.OwnerAddress(), curveCfg); err != nil {
		_ = r.Close(ctx)
		return nil, fmt.Errorf("initialize factory: %w", err)
	}
	return r, nil
}

func openStore(ctx context.Context, path string, logger *zap.Logger) (storage.Storage, error) {
	if path == "" {
		return memory.New(), nil
	}
	store, err := leveldb.Open(path, logger)
	if err != nil {
		return nil, err
	}
	last, err := store.LastSeq(ctx)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	if last > 0 {
		_ = store.Close()
		return nil, fmt.Errorf("%w: %s holds %d notifications", ErrJournalNotEmpty, path, last)
	}
	return store, nil
}

// Factory exposes the engine under simulation.
func (r *Runner) Factory() *launchpad.Factory { return r.factory }

// Metrics returns the collector fed by the factory and the bus.
func (r *Runner) Metrics() *metrics.Collector { return r.metrics }

// Participant derives a stable account for a label.
func Participant(label string) common.Address {
	return common.BytesToAddress(crypto.Keccak256([]byte("launchpad/simulation/" + label)))
}

// Run launches a token, lets plan.Buyers traders buy it concurrently and
// returns the resulting state. A runner executes one plan.
func (r *Runner) Run(ctx context.Context, plan Plan) (*Report, error) {
	if r.ran {
		return nil, ErrAlreadyRan
	}
	r.ran = true
	if err := plan.validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	creator := Participant("creator")
	if plan.CreatorBuy != nil && !plan.CreatorBuy.IsZero() {
		if err := r.state.Credit(ctx, creator, plan.CreatorBuy); err != nil {
			return nil, err
		}
	}
	launched, err := r.factory.Launch(ctx, creator, launchpad.LaunchParams{
		Name:            plan.Name,
		Symbol:          plan.Symbol,
		InitialAmmEth:   plan.InitialAmmEth,
		InitialRatioBps: plan.InitialRatioBps,
	}, plan.CreatorBuy)
	if err != nil {
		return nil, fmt.Errorf("launch: %w", err)
	}
	tok, ok := r.tokens.Lookup(launched.Token)
	if !ok {
		return nil, fmt.Errorf("%w: %s", launchpad.ErrUnknownToken, launched.Token.Hex())
	}
	r.logger.Info("Token launched", zap.String("token", launched.Token.Hex()), zap.Int("buyers", plan.Buyers))

	planned := plan.tasks()
	tasks := make(chan *Task, len(planned))
	for _, task := range planned {
		if err := r.state.Credit(ctx, task.Trader, task.Amount); err != nil {
			return nil, err
		}
		tasks <- task
	}
	close(tasks)

	workers := plan.Workers
	if workers <= 0 || workers > plan.Buyers {
		workers = plan.Buyers
	}
	outcomes, err := NewWorkerPool(r.factory, tok, r.logger, tasks).Run(ctx, workers)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Token:  launched.Token,
		Trades: outcomes,
	}
	if plan.ClaimTo != (common.Address{}) {
		report.Claimed, err = r.factory.ClaimFee(ctx, r.cfg.OwnerAddress(), plan.ClaimTo)
		if err != nil {
			return nil, fmt.Errorf("claim fee: %w", err)
		}
	}

	if err := r.flush(ctx); err != nil {
		return nil, err
	}

	report.State, err = r.factory.TokenState(launched.Token)
	if err != nil {
		return nil, err
	}
	report.TotalFee = r.factory.TotalFee()
	report.FactoryBalance = r.state.BalanceOf(r.factory.Address())
	if pair, ok := r.pool.GetPair(launched.Token); ok {
		report.Pair = pair
		report.PairToken, report.PairETH, err = r.pool.GetReserves(launched.Token)
		if err != nil {
			return nil, err
		}
	}
	report.Notifications, err = r.store.List(ctx, 1, 0)
	if err != nil {
		return nil, err
	}
	report.Bus = r.bus.Stats()
	report.Duration = time.Since(start)
	return report, nil
}

// flush stops the bus and records anything it dropped.
func (r *Runner) flush(ctx context.Context) error {
	if err := r.bus.Shutdown(ctx); err != nil {
		return err
	}
	notes := r.factory.Notifications(0)
	if len(notes) == 0 {
		return nil
	}
	return r.recorder.Record(ctx, notes[len(notes)-1])
}

// Close releases the bus and the journal.
func (r *Runner) Close(ctx context.Context) error {
	return r.shutdown.Shutdown(ctx)
}
