// internal/storage/recorder.go
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rovshanmuradov/launchpad/internal/events"
	"github.com/rovshanmuradov/launchpad/internal/storage/models"
	"go.uber.org/zap"
)

// Source replays committed events from a sequence number on.
type Source interface {
	Notifications(from uint64) []events.Event
}

// Recorder persists bus events into a Storage. Events skipped by the bus are
// replayed from Source before the current one is written.
type Recorder struct {
	store    Storage
	source   Source
	logger   *zap.Logger
	maxTries uint
	interval time.Duration
}

// NewRecorder creates a recorder retrying each write up to maxTries times.
func NewRecorder(store Storage, source Source, logger *zap.Logger, maxTries uint) *Recorder {
	if maxTries == 0 {
		maxTries = 1
	}
	return &Recorder{
		store:    store,
		source:   source,
		logger:   logger.Named("recorder"),
		maxTries: maxTries,
		interval: 50 * time.Millisecond,
	}
}

// Handle implements events.Handler.
func (r *Recorder) Handle(ctx context.Context, e events.Event) error {
	return r.Record(ctx, e)
}

// Record writes e, filling any gap before it first. Events already stored are
// ignored.
func (r *Recorder) Record(ctx context.Context, e events.Event) error {
	last, err := r.store.LastSeq(ctx)
	if err != nil {
		return fmt.Errorf("read last sequence: %w", err)
	}
	if e.Sequence() <= last {
		return nil
	}

	if e.Sequence() > last+1 {
		if r.source == nil {
			return fmt.Errorf("%w: gap before %d with no replay source", ErrOutOfOrder, e.Sequence())
		}
		for _, missed := range r.source.Notifications(last + 1) {
			if missed.Sequence() >= e.Sequence() {
				break
			}
			if err := r.write(ctx, missed); err != nil {
				return err
			}
		}
	}
	return r.write(ctx, e)
}

func (r *Recorder) write(ctx context.Context, e events.Event) error {
	n := ToNotification(e)

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = r.interval
	policy.MaxInterval = r.interval * 10

	notify := func(err error, d time.Duration) {
		r.logger.Warn("Retrying notification write",
			zap.Uint64("seq", n.Seq),
			zap.Duration("backoff", d),
			zap.Error(err))
	}

	op := func() (struct{}, error) {
		err := r.store.Append(ctx, n)
		switch {
		case err == nil:
			return struct{}{}, nil
		case errors.Is(err, ErrOutOfOrder), errors.Is(err, ErrClosed):
			return struct{}{}, backoff.Permanent(err)
		default:
			return struct{}{}, err
		}
	}

	if _, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(r.maxTries),
		backoff.WithNotify(notify)); err != nil {
		r.logger.Error("Failed to record notification",
			zap.Uint64("seq", n.Seq),
			zap.String("type", n.Type),
			zap.Error(err))
		return err
	}
	return nil
}

// ToNotification flattens an event into its stored form.
func ToNotification(e events.Event) *models.Notification {
	n := &models.Notification{
		Seq:        e.Sequence(),
		Type:       string(e.Type()),
		Time:       e.Timestamp().UTC(),
		Attributes: e.Attributes(),
	}
	if tok, ok := events.TokenOf(e); ok {
		n.Token = tok.Hex()
	}
	return n
}
