package decodecache

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohualzy/VoiceIce/internal/codec"
)

func newDisk(t *testing.T) *DiskTier {
	t.Helper()

	d, err := NewDiskTier(t.TempDir(), 3)
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	return d
}

func TestDiskTierRoundTrip(t *testing.T) {
	d := newDisk(t)
	key := KeyOf([]byte("x"))
	in := codec.Buffer{Samples: []float64{0, 0.25, -1, 1e-300}, SampleRate: 48000}

	require.NoError(t, d.Put(key, in))

	out, ok := d.Get(key)
	require.True(t, ok)
	assert.Equal(t, in, out)

	_, ok = d.Get(KeyOf([]byte("other")))
	assert.False(t, ok)
}

func TestDiskTierCorruptFileIsRemoved(t *testing.T) {
	d := newDisk(t)
	key := KeyOf([]byte("y"))

	require.NoError(t, os.WriteFile(d.path(key), []byte("garbage"), 0o600))

	_, ok := d.Get(key)
	assert.False(t, ok)
	assert.NoFileExists(t, d.path(key))
}

func TestDiskTierServesNewCache(t *testing.T) {
	disk := newDisk(t)
	data := toneWAV(t, 440, 500)
	ctx := context.Background()

	first := New(Options{ScratchDir: t.TempDir(), Disk: disk})
	want, err := first.Decode(ctx, data)
	require.NoError(t, err)
	assert.FileExists(t, disk.path(KeyOf(data)))

	dec := &countingDecoder{}
	second := New(Options{ScratchDir: t.TempDir(), Disk: disk, Decoder: dec.decode})

	got, err := second.Decode(ctx, data)
	require.NoError(t, err)

	assert.Equal(t, want, got)
	assert.Zero(t, dec.calls.Load())
	assert.EqualValues(t, 1, second.Stats().DiskHits)
}
