package seqwriter

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushInOrder(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf)

	require.NoError(t, w.Push(0, []byte("a")))
	require.NoError(t, w.Push(1, []byte("b")))
	require.NoError(t, w.Push(2, []byte("c")))

	assert.Equal(t, "abc", buf.String())
}

func TestPushOutOfOrderBuffersUntilContiguous(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf)

	require.NoError(t, w.Push(2, []byte("c")))
	assert.Empty(t, buf.String(), "record 2 must wait for 0 and 1")

	require.NoError(t, w.Push(0, []byte("a")))
	assert.Equal(t, "a", buf.String())

	require.NoError(t, w.Push(1, []byte("b")))
	assert.Equal(t, "abc", buf.String())
}

func TestCloseFlushesGaps(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf)

	require.NoError(t, w.Push(0, []byte("a")))
	require.NoError(t, w.Push(3, []byte("d")))
	assert.Equal(t, "a", buf.String())

	require.NoError(t, w.Close())
	assert.Equal(t, "ad", buf.String())
}

func TestPushIsIdempotentOrderRegardlessOfArrival(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf)

	require.NoError(t, w.Push(1, []byte("b")))
	require.NoError(t, w.Push(3, []byte("d")))
	require.NoError(t, w.Push(2, []byte("c")))
	require.NoError(t, w.Push(0, []byte("a")))

	assert.Equal(t, "abcd", buf.String())
}
