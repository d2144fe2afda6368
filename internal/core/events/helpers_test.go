package events

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/driftsync/driftsync/pkg/encoding"
)

func mustEncode[T any](t *testing.T, value T) []byte {
	t.Helper()
	data, err := encoding.Gob[T]().Encode(value)
	require.NoError(t, err)
	return data
}

func mustDecode[T any](t *testing.T, data []byte) T {
	t.Helper()
	value, err := encoding.Gob[T]().Decode(data)
	require.NoError(t, err)
	return value
}
