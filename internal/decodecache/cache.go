package decodecache

import (
	"bytes"
	"container/list"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/mohualzy/VoiceIce/dsp/core"
	"github.com/mohualzy/VoiceIce/internal/codec"
)

// bytesPerSample is the resident cost of one decoded sample.
const bytesPerSample = 8

// DecodeFunc turns a seekable file into a buffer.
type DecodeFunc func(io.ReadSeeker) (codec.Buffer, error)

// Options configures a Cache. The zero value is an unbounded cache that
// decodes with codec.Decode through os.TempDir.
type Options struct {
	// BudgetBytes caps resident decoded samples (8 bytes each). Zero means
	// unbounded; otherwise least recently used entries are evicted.
	BudgetBytes int64
	// ScratchDir holds the short-lived files handed to the decoder.
	ScratchDir string
	// InMemory decodes straight from the submitted bytes, for hosts
	// without a writable filesystem such as the browser.
	InMemory bool
	// Disk is an optional second tier consulted before decoding.
	Disk *DiskTier
	Logger *log.Logger
	// Decoder replaces codec.Decode.
	Decoder DecodeFunc
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Hits          int64
	Misses        int64
	DiskHits      int64
	Decodes       int64
	Failures      int64
	Evictions     int64
	ResidentBytes int64
	Entries       int
	BudgetBytes   int64
}

// HitRate returns the fraction of lookups served from memory.
func (s Stats) HitRate() float64 {
	if s.Hits+s.Misses == 0 {
		return 0
	}

	return float64(s.Hits) / float64(s.Hits+s.Misses)
}

type entry struct {
	key  Key
	buf  codec.Buffer
	size int64
}

// Cache is a content-addressed decode memo. It is safe for concurrent use.
type Cache struct {
	budget  int64
	scratch string
	inMem   bool
	disk    *DiskTier
	logger  *log.Logger
	decode  DecodeFunc

	mu       sync.Mutex
	items    map[Key]*list.Element
	eviction *list.List
	size     int64
	stats    Stats

	group singleflight.Group
}

// New returns a cache configured by opts.
func New(opts Options) *Cache {
	c := &Cache{
		budget:   max(0, opts.BudgetBytes),
		scratch:  opts.ScratchDir,
		inMem:    opts.InMemory,
		disk:     opts.Disk,
		logger:   opts.Logger,
		decode:   opts.Decoder,
		items:    make(map[Key]*list.Element),
		eviction: list.New(),
	}

	if c.scratch == "" {
		c.scratch = os.TempDir()
	}

	if c.logger == nil {
		c.logger = log.New(io.Discard)
	}

	if c.decode == nil {
		c.decode = codec.Decode
	}

	return c
}

// Decode returns the decoded form of data. The returned buffer is a private
// copy; identical data always yields identical samples.
func (c *Cache) Decode(ctx context.Context, data []byte) (codec.Buffer, error) {
	if err := ctx.Err(); err != nil {
		return codec.Buffer{}, err
	}

	key := KeyOf(data)

	if buf, ok := c.lookup(key); ok {
		return clone(buf), nil
	}

	v, err, _ := c.group.Do(key.String(), func() (any, error) {
		// A flight that finished between lookup and Do already stored it.
		if buf, ok := c.peek(key); ok {
			return buf, nil
		}

		if buf, ok := c.fromDisk(key); ok {
			c.store(key, buf)
			return buf, nil
		}

		buf, err := c.decodeScratch(data)
		if err != nil {
			c.count(func(s *Stats) { s.Failures++ })
			return nil, err
		}

		c.store(key, buf)
		c.toDisk(key, buf)

		return buf, nil
	})
	if err != nil {
		return codec.Buffer{}, err
	}

	return clone(v.(codec.Buffer)), nil
}

// Contains reports whether data is resident in memory without touching
// recency or counters.
func (c *Cache) Contains(data []byte) bool {
	_, ok := c.peek(KeyOf(data))
	return ok
}

// Stats returns a snapshot of the counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.stats
	s.ResidentBytes = c.size
	s.Entries = len(c.items)
	s.BudgetBytes = c.budget

	return s
}

func (c *Cache) lookup(key Key) (codec.Buffer, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		c.stats.Misses++
		return codec.Buffer{}, false
	}

	c.eviction.MoveToFront(elem)
	c.stats.Hits++

	return elem.Value.(*entry).buf, true
}

func (c *Cache) peek(key Key) (codec.Buffer, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return codec.Buffer{}, false
	}

	return elem.Value.(*entry).buf, true
}

func (c *Cache) count(fn func(*Stats)) {
	c.mu.Lock()
	fn(&c.stats)
	c.mu.Unlock()
}

// store inserts buf and evicts down to the budget. A buffer larger than the
// whole budget is returned to the caller but not kept.
func (c *Cache) store(key Key, buf codec.Buffer) {
	size := int64(len(buf.Samples)) * bytesPerSample

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.eviction.MoveToFront(elem)
		return
	}

	if c.budget > 0 && size > c.budget {
		c.logger.Debug("decoded buffer exceeds cache budget", "key", key.String()[:12], "bytes", size, "budget", c.budget)
		return
	}

	for c.budget > 0 && c.size+size > c.budget && c.eviction.Len() > 0 {
		c.evictOldest()
	}

	c.items[key] = c.eviction.PushFront(&entry{key: key, buf: buf, size: size})
	c.size += size
}

// evictOldest must be called with the lock held.
func (c *Cache) evictOldest() {
	elem := c.eviction.Back()
	if elem == nil {
		return
	}

	e := elem.Value.(*entry)
	c.eviction.Remove(elem)
	delete(c.items, e.key)
	c.size -= e.size
	c.stats.Evictions++
}

func (c *Cache) fromDisk(key Key) (codec.Buffer, bool) {
	if c.disk == nil {
		return codec.Buffer{}, false
	}

	buf, ok := c.disk.Get(key)
	if ok {
		c.count(func(s *Stats) { s.DiskHits++ })
	}

	return buf, ok
}

func (c *Cache) toDisk(key Key, buf codec.Buffer) {
	if c.disk == nil {
		return
	}

	if err := c.disk.Put(key, buf); err != nil {
		c.logger.Warn("disk tier write failed", "key", key.String()[:12], "err", err)
	}
}

// decodeScratch hands data to the decoder through a private temp file that
// is closed and removed on every path.
func (c *Cache) decodeScratch(data []byte) (codec.Buffer, error) {
	if c.inMem {
		return c.run(bytes.NewReader(data), len(data))
	}

	path := filepath.Join(c.scratch, "voiceice-"+uuid.NewString()+".audio")

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return codec.Buffer{}, fmt.Errorf("decodecache: scratch file: %w", err)
	}

	defer func() {
		if err := f.Close(); err != nil {
			c.logger.Debug("scratch close failed", "path", path, "err", err)
		}

		if err := os.Remove(path); err != nil {
			c.logger.Warn("scratch cleanup failed", "path", path, "err", err)
		}
	}()

	if _, err := f.Write(data); err != nil {
		return codec.Buffer{}, fmt.Errorf("decodecache: scratch write: %w", err)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return codec.Buffer{}, fmt.Errorf("decodecache: scratch rewind: %w", err)
	}

	return c.run(f, len(data))
}

func (c *Cache) run(r io.ReadSeeker, n int) (codec.Buffer, error) {
	c.count(func(s *Stats) { s.Decodes++ })

	buf, err := c.decode(r)
	if err != nil {
		if !errors.Is(err, codec.ErrDecode) {
			err = fmt.Errorf("%w: %w", codec.ErrDecode, err)
		}

		return codec.Buffer{}, err
	}

	c.logger.Debug("decoded", "bytes", n, "samples", len(buf.Samples), "rate", buf.SampleRate)

	return buf, nil
}

func clone(buf codec.Buffer) codec.Buffer {
	return codec.Buffer{Samples: core.Clone(buf.Samples), SampleRate: buf.SampleRate}
}
