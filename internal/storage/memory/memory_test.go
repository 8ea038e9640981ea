package memory

import (
	"context"
	"testing"

	"github.com/rovshanmuradov/launchpad/internal/storage"
	"github.com/rovshanmuradov/launchpad/internal/storage/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	s := New()

	for seq := uint64(1); seq <= 4; seq++ {
		require.NoError(t, s.Append(ctx, &models.Notification{Seq: seq, Type: "t"}))
	}
	assert.ErrorIs(t, s.Append(ctx, &models.Notification{Seq: 6}), storage.ErrOutOfOrder)

	got, err := s.List(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, uint64(2), got[0].Seq)
	assert.Equal(t, uint64(3), got[1].Seq)

	got, err = s.List(ctx, 9, 0)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.Append(ctx, &models.Notification{Seq: 5}), storage.ErrClosed)
}
