// internal/storage/storage.go
package storage

import (
	"context"
	"errors"

	"github.com/rovshanmuradov/launchpad/internal/storage/models"
)

var (
	// ErrOutOfOrder is returned when an appended sequence does not follow the last one.
	ErrOutOfOrder = errors.New("notification out of order")
	ErrClosed     = errors.New("storage closed")
)

// Storage is an append-only notification log ordered by sequence number.
type Storage interface {
	// Append stores n. n.Seq must be exactly one past LastSeq.
	Append(ctx context.Context, n *models.Notification) error
	// List returns up to limit notifications with Seq >= from. A non-positive
	// limit returns everything.
	List(ctx context.Context, from uint64, limit int) ([]*models.Notification, error)
	LastSeq(ctx context.Context) (uint64, error)
	Close() error
}
