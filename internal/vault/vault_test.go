package vault

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = context.Background()

func fixedClock() func() time.Time {
	at := time.Date(2024, 3, 9, 14, 5, 7, 123456000, time.UTC)
	return func() time.Time { return at }
}

func TestSubmitUpload(t *testing.T) {
	v := New()

	name, created, err := v.Submit(ctx, Upload("a.wav", []byte("0123456789")))
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "a.wav", name)

	cur, ok := v.Current()
	require.True(t, ok)
	assert.Equal(t, "a.wav", cur.Name)
	assert.Equal(t, KindUpload, cur.Kind)
	assert.Equal(t, 10, cur.Size())
}

func TestSubmitCopiesData(t *testing.T) {
	v := New()
	data := []byte("abc")

	_, _, err := v.Submit(ctx, Upload("a.wav", data))
	require.NoError(t, err)

	data[0] = 'X'

	b, ok := v.Get("a.wav")
	require.True(t, ok)
	assert.Equal(t, "abc", string(b.Data))
}

func TestUploadDedupAgainstLastSeen(t *testing.T) {
	v := New()

	_, _, err := v.Submit(ctx, Upload("a.wav", make([]byte, 10)))
	require.NoError(t, err)
	_, _, err = v.Submit(ctx, Upload("b.wav", make([]byte, 20)))
	require.NoError(t, err)

	require.NoError(t, v.Select("a.wav"))

	// Same name and size as the last upload: nothing changes, not even the cursor.
	name, created, err := v.Submit(ctx, Upload("b.wav", make([]byte, 20)))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "b.wav", name)
	assert.Equal(t, "a.wav", v.CurrentName())
	assert.Equal(t, 2, v.Len())

	// a.wav is not the last-seen upload, so it is inserted again and moves
	// to the most recent position.
	_, created, err = v.Submit(ctx, Upload("a.wav", make([]byte, 10)))
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, []string{"a.wav", "b.wav"}, v.Names())
}

func TestDedupAfterDeleteReturnsNoName(t *testing.T) {
	v := New(WithClock(fixedClock()))

	_, _, err := v.Submit(ctx, Upload("a.wav", []byte("0123456789")))
	require.NoError(t, err)
	rec, _, err := v.Submit(ctx, Recording([]byte("take")))
	require.NoError(t, err)
	require.NoError(t, v.Delete(ctx, "a.wav", rec))

	name, created, err := v.Submit(ctx, Upload("a.wav", []byte("0123456789")))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Empty(t, name)

	name, created, err = v.Submit(ctx, Recording([]byte("take")))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Empty(t, name)

	assert.Equal(t, 0, v.Len())
	assert.Empty(t, v.CurrentName())
}

func TestUploadCollisionOverwrites(t *testing.T) {
	v := New()

	_, _, err := v.Submit(ctx, Upload("a.wav", []byte("short")))
	require.NoError(t, err)
	_, _, err = v.Submit(ctx, Upload("b.wav", []byte("other")))
	require.NoError(t, err)

	_, created, err := v.Submit(ctx, Upload("a.wav", []byte("much longer")))
	require.NoError(t, err)
	assert.True(t, created)

	b, ok := v.Get("a.wav")
	require.True(t, ok)
	assert.Equal(t, "much longer", string(b.Data))
	assert.Equal(t, 2, v.Len())
	assert.Equal(t, []string{"a.wav", "b.wav"}, v.Names())
	assert.Equal(t, "a.wav", v.CurrentName())
}

func TestSubmitRecording(t *testing.T) {
	v := New(WithClock(fixedClock()))

	name, created, err := v.Submit(ctx, Recording([]byte("take one")))
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "rec-20240309-140507.123456.wav", name)

	again, created, err := v.Submit(ctx, Recording([]byte("take one")))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, name, again)
	assert.Equal(t, 1, v.Len())

	second, created, err := v.Submit(ctx, Recording([]byte("take two")))
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "rec-20240309-140507.123456-2.wav", second)

	third, _, err := v.Submit(ctx, Recording([]byte("take three")))
	require.NoError(t, err)
	assert.Equal(t, "rec-20240309-140507.123456-3.wav", third)

	b, _ := v.Get(second)
	assert.Equal(t, KindRecording, b.Kind)
}

func TestRecordingNameIgnoresSourceName(t *testing.T) {
	v := New(WithClock(fixedClock()))

	name, _, err := v.Submit(ctx, Source{Name: "../evil", Data: []byte("x"), Kind: KindRecording})
	require.NoError(t, err)
	assert.Equal(t, "rec-20240309-140507.123456.wav", name)
}

func TestSubmitInvalidName(t *testing.T) {
	v := New()

	for _, name := range []string{"", ".", "..", "a/b.wav", `a\b.wav`, "nul\x00.wav"} {
		_, _, err := v.Submit(ctx, Upload(name, []byte("x")))
		assert.ErrorIs(t, err, ErrInvalidName, "name %q", name)
	}

	assert.Zero(t, v.Len())
}

func TestSelect(t *testing.T) {
	v := New()

	_, _, err := v.Submit(ctx, Upload("a.wav", []byte("a")))
	require.NoError(t, err)
	_, _, err = v.Submit(ctx, Upload("b.wav", []byte("b")))
	require.NoError(t, err)

	require.NoError(t, v.Select("a.wav"))
	assert.Equal(t, "a.wav", v.CurrentName())

	err = v.Select("missing.wav")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "a.wav", v.CurrentName())
}

func TestDelete(t *testing.T) {
	v := New()

	for _, n := range []string{"a.wav", "b.wav", "c.wav"} {
		_, _, err := v.Submit(ctx, Upload(n, []byte(n)))
		require.NoError(t, err)
	}

	require.NoError(t, v.Select("b.wav"))

	// Deleting other blobs keeps the cursor.
	require.NoError(t, v.Delete(ctx, "a.wav", "missing.wav"))
	assert.Equal(t, "b.wav", v.CurrentName())
	assert.Equal(t, []string{"c.wav", "b.wav"}, v.Names())

	// Deleting the current target clears it.
	require.NoError(t, v.Delete(ctx, "b.wav"))
	_, ok := v.Current()
	assert.False(t, ok)
	assert.Equal(t, []string{"c.wav"}, v.Names())

	// Repeated and absent deletes are no-ops.
	require.NoError(t, v.Delete(ctx, "b.wav", "b.wav"))
	require.NoError(t, v.Delete(ctx))
	assert.Equal(t, 1, v.Len())
}

type failingStore struct {
	*memStore
	failPut    bool
	failDelete map[string]bool
}

func (f *failingStore) Put(ctx context.Context, name string, data []byte) error {
	if f.failPut {
		return errors.New("disk full")
	}

	return f.memStore.Put(ctx, name, data)
}

func (f *failingStore) Delete(ctx context.Context, name string) error {
	if f.failDelete[name] {
		return errors.New("permission denied")
	}

	return f.memStore.Delete(ctx, name)
}

// memStore is an in-memory Store for tests.
type memStore struct {
	mu    sync.Mutex
	data  map[string][]byte
	order []string
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (m *memStore) Put(_ context.Context, name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.remove(name)
	m.data[name] = data
	m.order = append(m.order, name)

	return nil
}

func (m *memStore) Get(_ context.Context, name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.data[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	return d, nil
}

func (m *memStore) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.remove(name)

	return nil
}

func (m *memStore) List(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]string(nil), m.order...), nil
}

func (m *memStore) remove(name string) {
	delete(m.data, name)

	for i, n := range m.order {
		if n == name {
			m.order = append(m.order[:i], m.order[i+1:]...)
			return
		}
	}
}

func TestSubmitStoreFailureLeavesStateUnchanged(t *testing.T) {
	store := &failingStore{memStore: newMemStore()}
	v := New(WithStore(store))

	_, _, err := v.Submit(ctx, Upload("a.wav", []byte("a")))
	require.NoError(t, err)

	store.failPut = true

	_, created, err := v.Submit(ctx, Upload("b.wav", []byte("b")))
	require.Error(t, err)
	assert.False(t, created)
	assert.Equal(t, 1, v.Len())
	assert.Equal(t, "a.wav", v.CurrentName())

	// The failed upload was not remembered, so a retry goes through.
	store.failPut = false

	_, created, err = v.Submit(ctx, Upload("b.wav", []byte("b")))
	require.NoError(t, err)
	assert.True(t, created)
}

func TestDeleteStoreFailureKeepsBlob(t *testing.T) {
	store := &failingStore{memStore: newMemStore(), failDelete: map[string]bool{"a.wav": true}}
	v := New(WithStore(store))

	for _, n := range []string{"a.wav", "b.wav"} {
		_, _, err := v.Submit(ctx, Upload(n, []byte(n)))
		require.NoError(t, err)
	}

	require.NoError(t, v.Select("a.wav"))

	err := v.Delete(ctx, "a.wav", "b.wav")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a.wav")

	_, ok := v.Get("a.wav")
	assert.True(t, ok)
	_, ok = v.Get("b.wav")
	assert.False(t, ok)
	assert.Equal(t, "a.wav", v.CurrentName())

	names, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.wav"}, names)
}

func TestRehydrate(t *testing.T) {
	store := newMemStore()
	first := New(WithStore(store), WithClock(fixedClock()))

	_, _, err := first.Submit(ctx, Upload("a.wav", []byte("a")))
	require.NoError(t, err)
	rec, _, err := first.Submit(ctx, Recording([]byte("r")))
	require.NoError(t, err)
	_, _, err = first.Submit(ctx, Upload("b.wav", []byte("b")))
	require.NoError(t, err)

	second := New(WithStore(store))
	require.NoError(t, second.Rehydrate(ctx))

	assert.Equal(t, first.Names(), second.Names())
	_, ok := second.Current()
	assert.False(t, ok)

	b, ok := second.Get(rec)
	require.True(t, ok)
	assert.Equal(t, KindRecording, b.Kind)
	assert.Equal(t, "r", string(b.Data))

	// Rehydrating twice adds nothing.
	require.NoError(t, second.Rehydrate(ctx))
	assert.Equal(t, 3, second.Len())
}

func TestRehydrateWithoutStore(t *testing.T) {
	assert.NoError(t, New().Rehydrate(ctx))
}

func TestConcurrentAccess(t *testing.T) {
	v := New()

	var wg sync.WaitGroup

	for w := range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for i := range 50 {
				name := fmt.Sprintf("w%d-%d.wav", w, i%5)
				_, _, _ = v.Submit(ctx, Upload(name, []byte(name)))
				_ = v.Select(name)
				_, _ = v.Current()
				_ = v.Names()

				if i%3 == 0 {
					_ = v.Delete(ctx, name)
				}
			}
		}()
	}

	wg.Wait()

	if cur, ok := v.Current(); ok {
		_, found := v.Get(cur.Name)
		assert.True(t, found)
	}

	assert.Len(t, v.Names(), v.Len())
}
