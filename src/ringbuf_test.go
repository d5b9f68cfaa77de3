package piltc

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestRingbufOrder(t *testing.T) {
	var rb = ringbuf_new(RING_CAPACITY)

	var first = bytes.Repeat([]byte{0x00, 0xFF}, 80)
	var second = bytes.Repeat([]byte{0xFF, 0x00}, 80)

	require.NoError(t, rb.write_bulk(first))
	require.NoError(t, rb.write_bulk(second))
	assert.Equal(t, 320, rb.bytes_used())

	var out = make([]byte, 160)

	require.NoError(t, rb.read_bulk(out))
	assert.Equal(t, first, out)

	require.NoError(t, rb.read_bulk(out))
	assert.Equal(t, second, out)

	assert.Equal(t, 0, rb.bytes_used())
}

func TestRingbufOverrun(t *testing.T) {
	var rb = ringbuf_new(320)

	require.NoError(t, rb.write_bulk(make([]byte, 320)))

	var writeErr = rb.write_bulk([]byte{1})
	assert.ErrorContains(t, writeErr, "overrun")

	// A rejected write must not corrupt the used count.
	assert.Equal(t, 320, rb.bytes_used())
}

func TestRingbufUnderrun(t *testing.T) {
	var rb = ringbuf_new(320)

	require.NoError(t, rb.write_bulk(make([]byte, 100)))

	var readErr = rb.read_bulk(make([]byte, 160))
	assert.ErrorContains(t, readErr, "underrun")
	assert.Equal(t, 100, rb.bytes_used())
}

// Repeated frame-sized transfers march head and tail through the wrap
// point, which is where an off-by-one would hide.
func TestRingbufWraparound(t *testing.T) {
	var rb = ringbuf_new(RING_CAPACITY)
	var out = make([]byte, LTC_SAMPLES_PER_FRAME)

	for i := 0; i < 50; i++ {
		var frame = bytes.Repeat([]byte{byte(i)}, LTC_SAMPLES_PER_FRAME)

		require.NoError(t, rb.write_bulk(frame))
		require.NoError(t, rb.write_bulk(frame))
		require.NoError(t, rb.read_bulk(out))
		assert.Equal(t, frame, out)
		require.NoError(t, rb.read_bulk(out))
		assert.Equal(t, frame, out)
	}
}

func TestRingbufModel(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var rb = ringbuf_new(64)
		var model []byte

		t.Repeat(map[string]func(*rapid.T){
			"write": func(t *rapid.T) {
				var n = rapid.IntRange(0, 64-len(model)).Draw(t, "n")
				var chunk = rapid.SliceOfN(rapid.Byte(), n, n).Draw(t, "chunk")

				if writeErr := rb.write_bulk(chunk); writeErr != nil {
					t.Fatalf("write of %d with %d used failed: %s", n, len(model), writeErr)
				}
				model = append(model, chunk...)
			},
			"read": func(t *rapid.T) {
				var n = rapid.IntRange(0, len(model)).Draw(t, "n")
				var out = make([]byte, n)

				if readErr := rb.read_bulk(out); readErr != nil {
					t.Fatalf("read of %d with %d used failed: %s", n, len(model), readErr)
				}
				if !bytes.Equal(out, model[:n]) {
					t.Fatalf("read %v, model holds %v", out, model[:n])
				}
				model = model[n:]
			},
			"": func(t *rapid.T) {
				if rb.bytes_used() != len(model) {
					t.Fatalf("bytes_used %d, model %d", rb.bytes_used(), len(model))
				}
			},
		})
	})
}
