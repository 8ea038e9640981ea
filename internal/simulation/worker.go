// internal/simulation/worker.go
package simulation

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/rovshanmuradov/launchpad/internal/dex/curve"
	"github.com/rovshanmuradov/launchpad/internal/launchpad"
	"github.com/rovshanmuradov/launchpad/internal/token"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Task is one trader's turn: a buy of Amount wei, then an optional sell of
// SellBps of the tokens received.
type Task struct {
	ID      int
	Trader  common.Address
	Amount  *uint256.Int
	SellBps uint64
}

// Outcome records what a task did. Trade failures are outcomes, not worker
// errors.
type Outcome struct {
	Task      *Task
	Bought    *launchpad.BuyResult
	Sold      *launchpad.SellResult
	SoldAmt   *uint256.Int
	Err       error
	Duration  time.Duration
	WorkerID  int
	Completed bool
}

type WorkerPool struct {
	factory *launchpad.Factory
	token   *token.Token
	logger  *zap.Logger
	tasks   <-chan *Task

	mu       sync.Mutex
	outcomes []*Outcome
}

func NewWorkerPool(factory *launchpad.Factory, tok *token.Token, logger *zap.Logger, tasks <-chan *Task) *WorkerPool {
	return &WorkerPool{
		factory: factory,
		token:   tok,
		logger:  logger,
		tasks:   tasks,
	}
}

// Run starts n workers and waits until the task channel is drained or ctx is
// done. Outcomes are returned in task order.
func (wp *WorkerPool) Run(ctx context.Context, n int) ([]*Outcome, error) {
	if n <= 0 {
		n = 1
	}
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		id := i + 1
		g.Go(func() error {
			return wp.worker(ctx, id)
		})
	}
	err := g.Wait()

	wp.mu.Lock()
	defer wp.mu.Unlock()
	sort.Slice(wp.outcomes, func(i, j int) bool {
		return wp.outcomes[i].Task.ID < wp.outcomes[j].Task.ID
	})
	return wp.outcomes, err
}

func (wp *WorkerPool) worker(ctx context.Context, id int) error {
	logger := wp.logger.With(zap.Int("worker_id", id))
	logger.Debug("Worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Worker shutting down due to context cancellation")
			return ctx.Err()
		case t, ok := <-wp.tasks:
			if !ok {
				logger.Debug("Task channel closed")
				return nil
			}
			out := wp.handleTask(ctx, t, logger)
			out.WorkerID = id

			wp.mu.Lock()
			wp.outcomes = append(wp.outcomes, out)
			wp.mu.Unlock()

			if errors.Is(out.Err, context.Canceled) || errors.Is(out.Err, context.DeadlineExceeded) {
				return out.Err
			}
		}
	}
}

func (wp *WorkerPool) handleTask(ctx context.Context, t *Task, logger *zap.Logger) *Outcome {
	start := time.Now()
	out := &Outcome{Task: t}
	defer func() {
		out.Duration = time.Since(start)
	}()

	logger = logger.With(zap.Int("task_id", t.ID), zap.String("trader", t.Trader.Hex()))
	tokAddr := wp.token.Address()

	bought, err := wp.factory.Buy(ctx, t.Trader, tokAddr, t.Amount)
	if err != nil {
		logger.Info("Buy failed", zap.Error(err))
		out.Err = err
		return out
	}
	out.Bought = bought
	out.Completed = bought.Completed

	if t.SellBps == 0 || bought.Completed {
		return out
	}

	amount := new(uint256.Int).Mul(bought.TokensOut, uint256.NewInt(t.SellBps))
	amount.Div(amount, uint256.NewInt(curve.BpsDenominator))
	if amount.IsZero() {
		return out
	}
	if err := wp.token.Approve(ctx, t.Trader, wp.factory.Address(), amount); err != nil {
		out.Err = err
		return out
	}
	sold, err := wp.factory.Sell(ctx, t.Trader, tokAddr, amount)
	if err != nil {
		logger.Info("Sell failed", zap.Error(err))
		out.Err = err
		return out
	}
	out.Sold = sold
	out.SoldAmt = amount
	return out
}
