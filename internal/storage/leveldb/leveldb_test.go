package leveldb

import (
	"context"
	"testing"
	"time"

	"github.com/rovshanmuradov/launchpad/internal/storage"
	"github.com/rovshanmuradov/launchpad/internal/storage/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := OpenInMemory(zap.NewNop())
	require.NoError(t, err)
	defer s.Close()

	at := time.Unix(1_700_000_000, 0).UTC()
	for seq := uint64(1); seq <= 300; seq++ {
		require.NoError(t, s.Append(ctx, &models.Notification{
			Seq:        seq,
			Type:       "tokens.purchased",
			Token:      "0xabc",
			Time:       at,
			Attributes: map[string]string{"gross_paid": "1"},
		}))
	}
	assert.ErrorIs(t, s.Append(ctx, &models.Notification{Seq: 300}), storage.ErrOutOfOrder)

	last, err := s.LastSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(300), last)

	// Big-endian keys keep 256 after 255.
	got, err := s.List(ctx, 255, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []uint64{255, 256, 257}, []uint64{got[0].Seq, got[1].Seq, got[2].Seq})
	assert.True(t, at.Equal(got[0].Time))
	assert.Equal(t, "1", got[0].Attributes["gross_paid"])
}

func TestStoreReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := Open(dir, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, s.Append(ctx, &models.Notification{Seq: 1, Type: "token.launched"}))
	require.NoError(t, s.Append(ctx, &models.Notification{Seq: 2, Type: "tokens.purchased"}))
	require.NoError(t, s.Close())

	s, err = Open(dir, zap.NewNop())
	require.NoError(t, err)
	defer s.Close()

	last, err := s.LastSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), last)
	require.NoError(t, s.Append(ctx, &models.Notification{Seq: 3, Type: "tokens.sold"}))

	got, err := s.List(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}
