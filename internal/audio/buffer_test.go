package audio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRingBufferWriteRead(t *testing.T) {
	rb := NewRingBuffer(8)
	require.True(t, rb.IsEmpty())
	require.Equal(t, 8, rb.Size())
	require.Equal(t, 8, rb.Free())

	n, err := rb.Write([]byte{1, 2, 3, 4})
	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.Equal(t, 4, rb.Available())
	require.Equal(t, 4, rb.Free())

	out := make([]byte, 4)
	require.Equal(t, 4, rb.Read(out))
	require.Equal(t, []byte{1, 2, 3, 4}, out)
	require.True(t, rb.IsEmpty())
}

func TestRingBufferWrapAround(t *testing.T) {
	rb := NewRingBuffer(8)

	_, err := rb.Write([]byte{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)

	out := make([]byte, 4)
	require.Equal(t, 4, rb.Read(out))

	// This write crosses the end of the backing array
	_, err = rb.Write([]byte{7, 8, 9, 10})
	require.NoError(t, err)
	require.Equal(t, 6, rb.Available())

	out = make([]byte, 6)
	require.Equal(t, 6, rb.Read(out))
	require.Equal(t, []byte{5, 6, 7, 8, 9, 10}, out)
}

func TestRingBufferFull(t *testing.T) {
	rb := NewRingBuffer(4)

	n, err := rb.Write([]byte{1, 2, 3, 4, 5})
	require.NoError(t, err)
	require.Equal(t, 4, n, "a write past capacity is truncated")
	require.True(t, rb.IsFull())
	require.Zero(t, rb.Free())

	_, err = rb.Write([]byte{6})
	require.Error(t, err)

	// Draining one byte makes room again
	out := make([]byte, 1)
	require.Equal(t, 1, rb.Read(out))
	require.Equal(t, byte(1), out[0])
	require.False(t, rb.IsFull())

	n, err = rb.Write([]byte{6})
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestRingBufferReadWhenEmpty(t *testing.T) {
	rb := NewRingBuffer(4)
	out := make([]byte, 4)
	require.Zero(t, rb.Read(out))
}

func TestRingBufferShortRead(t *testing.T) {
	rb := NewRingBuffer(8)
	_, err := rb.Write([]byte{1, 2})
	require.NoError(t, err)

	out := make([]byte, 8)
	require.Equal(t, 2, rb.Read(out))
	require.Equal(t, []byte{1, 2}, out[:2])
}

func TestRingBufferReset(t *testing.T) {
	rb := NewRingBuffer(4)
	_, err := rb.Write([]byte{1, 2, 3, 4})
	require.NoError(t, err)
	require.True(t, rb.IsFull())

	rb.Reset()
	require.True(t, rb.IsEmpty())
	require.Equal(t, 4, rb.Free())
}
