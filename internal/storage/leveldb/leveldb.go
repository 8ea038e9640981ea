// =============================
// File: internal/storage/leveldb/leveldb.go
// =============================
package leveldb

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rovshanmuradov/launchpad/internal/storage"
	"github.com/rovshanmuradov/launchpad/internal/storage/models"
	ldb "github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	ldbstorage "github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
	"go.uber.org/zap"
)

var _ storage.Storage = (*Store)(nil)

var notificationPrefix = []byte("n/")

// Store persists notifications in LevelDB under "n/" + big-endian Seq, so
// key order is log order.
type Store struct {
	db     *ldb.DB
	mu     sync.Mutex
	last   uint64
	logger *zap.Logger
}

// Open opens or creates the database at path.
func Open(path string, logger *zap.Logger) (*Store, error) {
	db, err := ldb.OpenFile(path, &opt.Options{
		Filter: filter.NewBloomFilter(10),
	})
	if err != nil {
		return nil, fmt.Errorf("could not open notification journal at %s: %w", path, err)
	}
	return newStore(db, logger)
}

// OpenInMemory opens a database backed by memory, used by tests and dry runs.
func OpenInMemory(logger *zap.Logger) (*Store, error) {
	db, err := ldb.Open(ldbstorage.NewMemStorage(), nil)
	if err != nil {
		return nil, fmt.Errorf("could not open in-memory journal: %w", err)
	}
	return newStore(db, logger)
}

func newStore(db *ldb.DB, logger *zap.Logger) (*Store, error) {
	s := &Store{db: db, logger: logger.Named("leveldb")}

	iter := db.NewIterator(util.BytesPrefix(notificationPrefix), nil)
	if iter.Last() {
		s.last = binary.BigEndian.Uint64(iter.Key()[len(notificationPrefix):])
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("could not read last sequence: %w", err)
	}

	s.logger.Debug("Notification journal opened", zap.Uint64("last_seq", s.last))
	return s, nil
}

func key(seq uint64) []byte {
	k := make([]byte, len(notificationPrefix)+8)
	copy(k, notificationPrefix)
	binary.BigEndian.PutUint64(k[len(notificationPrefix):], seq)
	return k
}

func (s *Store) Append(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n.Seq != s.last+1 {
		return fmt.Errorf("%w: got %d, want %d", storage.ErrOutOfOrder, n.Seq, s.last+1)
	}

	value, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notification %d: %w", n.Seq, err)
	}
	if err := s.db.Put(key(n.Seq), value, &opt.WriteOptions{Sync: true}); err != nil {
		if err == ldb.ErrClosed {
			return storage.ErrClosed
		}
		return fmt.Errorf("write notification %d: %w", n.Seq, err)
	}
	s.last = n.Seq
	return nil
}

func (s *Store) List(_ context.Context, from uint64, limit int) ([]*models.Notification, error) {
	if from == 0 {
		from = 1
	}

	iter := s.db.NewIterator(&util.Range{
		Start: key(from),
		Limit: util.BytesPrefix(notificationPrefix).Limit,
	}, nil)
	defer iter.Release()

	var out []*models.Notification
	for iter.Next() {
		var n models.Notification
		if err := json.Unmarshal(iter.Value(), &n); err != nil {
			return nil, fmt.Errorf("decode notification at %x: %w", iter.Key(), err)
		}
		out = append(out, &n)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	if err := iter.Error(); err != nil {
		if err == ldb.ErrClosed {
			return nil, storage.ErrClosed
		}
		return nil, err
	}
	return out, nil
}

func (s *Store) LastSeq(_ context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
