package usecase

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMarkTransient(t *testing.T) {
	t.Parallel()

	require.Nil(t, MarkTransient(nil))

	err := MarkTransient(fmt.Errorf("connection reset"))
	require.True(t, IsTransient(err))

	// The mark survives wrapping on the way up the pipeline.
	wrapped := fmt.Errorf("list matches: %w", err)
	require.True(t, IsTransient(wrapped))
}

func TestIsTransient_PermanentErrors(t *testing.T) {
	t.Parallel()

	require.False(t, IsTransient(ErrConsistencyBlocked))
	require.False(t, IsTransient(fmt.Errorf("blocked: %w", ErrConsistencyBlocked)))
	require.False(t, IsTransient(ErrInvalidInput))
	require.False(t, IsTransient(nil))
}
