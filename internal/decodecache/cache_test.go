package decodecache

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohualzy/VoiceIce/internal/codec"
	"github.com/mohualzy/VoiceIce/internal/testutil"
)

func toneWAV(t *testing.T, freq float64, n int) []byte {
	t.Helper()

	data, err := codec.WAVBytes(codec.Buffer{
		Samples:    testutil.DeterministicSine(freq, 8000, 0.5, n),
		SampleRate: 8000,
	})
	require.NoError(t, err)

	return data
}

type countingDecoder struct {
	calls atomic.Int64
	err   error
}

func (d *countingDecoder) decode(r io.ReadSeeker) (codec.Buffer, error) {
	d.calls.Add(1)

	if d.err != nil {
		return codec.Buffer{}, d.err
	}

	return codec.Decode(r)
}

func scratchEntries(t *testing.T, dir string) int {
	t.Helper()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	return len(entries)
}

func TestDecodeMemoizesByContent(t *testing.T) {
	dec := &countingDecoder{}
	c := New(Options{ScratchDir: t.TempDir(), Decoder: dec.decode})
	data := toneWAV(t, 440, 800)

	first, err := c.Decode(context.Background(), data)
	require.NoError(t, err)

	// Same content through a different slice.
	second, err := c.Decode(context.Background(), append([]byte(nil), data...))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, dec.calls.Load())

	stats := c.Stats()
	assert.EqualValues(t, 1, stats.Hits)
	assert.EqualValues(t, 1, stats.Misses)
	assert.EqualValues(t, 1, stats.Decodes)
	assert.Equal(t, 1, stats.Entries)
	assert.EqualValues(t, 8*800, stats.ResidentBytes)
	assert.InDelta(t, 0.5, stats.HitRate(), 1e-12)
}

func TestDecodeReturnsPrivateCopy(t *testing.T) {
	c := New(Options{ScratchDir: t.TempDir()})
	data := toneWAV(t, 440, 100)

	a, err := c.Decode(context.Background(), data)
	require.NoError(t, err)

	orig := a.Samples[10]
	a.Samples[10] = 99

	b, err := c.Decode(context.Background(), data)
	require.NoError(t, err)
	assert.Equal(t, orig, b.Samples[10])
}

func TestDecodeConcurrentCallersShareOneDecode(t *testing.T) {
	dec := &countingDecoder{}
	c := New(Options{ScratchDir: t.TempDir(), Decoder: dec.decode})
	data := toneWAV(t, 300, 4000)

	const workers = 16

	var wg sync.WaitGroup

	results := make([]codec.Buffer, workers)
	errs := make([]error, workers)

	for i := range workers {
		wg.Add(1)

		go func() {
			defer wg.Done()
			results[i], errs[i] = c.Decode(context.Background(), data)
		}()
	}

	wg.Wait()

	for i := range workers {
		require.NoError(t, errs[i])
		assert.Equal(t, results[0], results[i])
	}

	assert.EqualValues(t, 1, dec.calls.Load())
}

func TestDecodeCorruptBytes(t *testing.T) {
	dir := t.TempDir()
	c := New(Options{ScratchDir: dir})

	_, err := c.Decode(context.Background(), []byte("this is not a sound file"))
	require.Error(t, err)
	assert.ErrorIs(t, err, codec.ErrDecode)

	assert.Zero(t, c.Stats().Entries)
	assert.EqualValues(t, 1, c.Stats().Failures)
	assert.Zero(t, scratchEntries(t, dir))
}

func TestDecodeFailureIsNotMemoized(t *testing.T) {
	dec := &countingDecoder{err: errors.New("boom")}
	c := New(Options{ScratchDir: t.TempDir(), Decoder: dec.decode})
	data := toneWAV(t, 440, 100)

	_, err := c.Decode(context.Background(), data)
	require.Error(t, err)
	assert.ErrorIs(t, err, codec.ErrDecode)

	dec.err = nil

	buf, err := c.Decode(context.Background(), data)
	require.NoError(t, err)
	assert.Len(t, buf.Samples, 100)
	assert.EqualValues(t, 2, dec.calls.Load())
}

func TestDecodeRemovesScratchFile(t *testing.T) {
	dir := t.TempDir()

	var seen string

	c := New(Options{ScratchDir: dir, Decoder: func(r io.ReadSeeker) (codec.Buffer, error) {
		f, ok := r.(*os.File)
		require.True(t, ok)
		seen = f.Name()

		return codec.Decode(r)
	}})

	_, err := c.Decode(context.Background(), toneWAV(t, 440, 100))
	require.NoError(t, err)

	assert.NotEmpty(t, seen)
	assert.NoFileExists(t, seen)
	assert.Zero(t, scratchEntries(t, dir))
}

func TestDecodeMissingScratchDir(t *testing.T) {
	c := New(Options{ScratchDir: t.TempDir() + "/missing"})

	_, err := c.Decode(context.Background(), toneWAV(t, 440, 100))
	require.Error(t, err)
	assert.NotErrorIs(t, err, codec.ErrDecode)
}

func TestDecodeInMemorySkipsScratch(t *testing.T) {
	c := New(Options{ScratchDir: t.TempDir() + "/missing", InMemory: true})

	buf, err := c.Decode(context.Background(), toneWAV(t, 440, 100))
	require.NoError(t, err)
	assert.Len(t, buf.Samples, 100)

	_, err = c.Decode(context.Background(), []byte("noise"))
	assert.ErrorIs(t, err, codec.ErrDecode)
}

func TestDecodeCancelledContext(t *testing.T) {
	dec := &countingDecoder{}
	c := New(Options{ScratchDir: t.TempDir(), Decoder: dec.decode})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Decode(ctx, toneWAV(t, 440, 100))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, dec.calls.Load())
}

func TestBudgetEvictsLeastRecentlyUsed(t *testing.T) {
	dec := &countingDecoder{}
	// Room for two 100-sample buffers.
	c := New(Options{ScratchDir: t.TempDir(), Decoder: dec.decode, BudgetBytes: 1600})
	ctx := context.Background()

	a, b, d := toneWAV(t, 100, 100), toneWAV(t, 200, 100), toneWAV(t, 300, 100)

	_, err := c.Decode(ctx, a)
	require.NoError(t, err)
	_, err = c.Decode(ctx, b)
	require.NoError(t, err)

	// Touch a so b becomes the eviction candidate.
	_, err = c.Decode(ctx, a)
	require.NoError(t, err)

	_, err = c.Decode(ctx, d)
	require.NoError(t, err)

	assert.True(t, c.Contains(a))
	assert.False(t, c.Contains(b))
	assert.True(t, c.Contains(d))

	stats := c.Stats()
	assert.EqualValues(t, 1, stats.Evictions)
	assert.EqualValues(t, 1600, stats.ResidentBytes)

	// An evicted entry is recomputed to the same value.
	before := dec.calls.Load()
	_, err = c.Decode(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, before+1, dec.calls.Load())
}

func TestBudgetSkipsOversizedBuffer(t *testing.T) {
	c := New(Options{ScratchDir: t.TempDir(), BudgetBytes: 100})

	buf, err := c.Decode(context.Background(), toneWAV(t, 440, 1000))
	require.NoError(t, err)
	assert.Len(t, buf.Samples, 1000)
	assert.Zero(t, c.Stats().Entries)
}
