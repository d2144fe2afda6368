package sequence

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQueueDrainOrder(t *testing.T) {
	q := NewQueue[int]()
	q.Push(1)
	q.PushAll(2, 3)
	require.Equal(t, 3, q.Len())

	require.Equal(t, []int{1, 2, 3}, q.Drain())
	require.Equal(t, 0, q.Len())
	require.Nil(t, q.Drain())
}

func TestQueueClear(t *testing.T) {
	q := NewQueue[string]()
	q.PushAll("a", "b")
	require.Equal(t, 2, q.Clear())
	require.Equal(t, 0, q.Clear())
	require.Nil(t, q.Drain())
}
