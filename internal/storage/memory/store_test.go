package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gracechapel/scripture-assistant/internal/storage"
)

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.Load(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, s.Save(ctx, "slot", "value"))
	v, err := s.Load(ctx, "slot")
	require.NoError(t, err)
	assert.Equal(t, "value", v)

	require.NoError(t, s.Remove(ctx, "slot"))
	_, err = s.Load(ctx, "slot")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// Removing an absent key is a no-op.
	assert.NoError(t, s.Remove(ctx, "slot"))
}
