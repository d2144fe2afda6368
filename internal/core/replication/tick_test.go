package replication

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTickOrdering(t *testing.T) {
	require.True(t, Tick(5).After(3))
	require.False(t, Tick(3).After(5))
	require.False(t, Tick(5).After(5))
	require.True(t, Tick(5).AtLeast(5))

	// Wrap-around: a tick just past the wrap point is newer than one just
	// before it.
	require.True(t, Tick(2).After(math.MaxUint32-1))
	require.False(t, Tick(math.MaxUint32-1).After(2))
}
