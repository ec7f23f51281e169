package vault

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

const recordingLayout = "rec-20060102-150405.000000"

// Option configures a Vault.
type Option func(*Vault)

// WithStore mirrors every insert and delete to s.
func WithStore(s Store) Option {
	return func(v *Vault) { v.store = s }
}

// WithClock replaces time.Now for recording names and Added stamps.
func WithClock(now func() time.Time) Option {
	return func(v *Vault) {
		if now != nil {
			v.now = now
		}
	}
}

// WithLogger sets the vault's logger.
func WithLogger(l *log.Logger) Option {
	return func(v *Vault) {
		if l != nil {
			v.logger = l
		}
	}
}

type uploadIdentity struct {
	name string
	size int
}

// Vault holds one session's blobs. It is safe for concurrent use.
type Vault struct {
	store  Store
	now    func() time.Time
	logger *log.Logger

	mu      sync.RWMutex
	blobs   map[string]Blob
	order   []string
	current string

	lastUpload        *uploadIdentity
	lastRecording     []byte
	lastRecordingName string
}

// New returns an empty vault.
func New(opts ...Option) *Vault {
	v := &Vault{
		now:    time.Now,
		logger: log.New(io.Discard),
		blobs:  make(map[string]Blob),
	}

	for _, opt := range opts {
		opt(v)
	}

	return v
}

// Submit inserts src and makes it the current target. It reports the
// stored name and whether anything was added. An upload whose name and
// size match the previous upload, or a recording whose bytes match the
// previous recording, changes nothing; the returned name is then the
// earlier one, or "" when that blob has since been deleted. When a store is
// configured and rejects the write, the vault is left untouched.
func (v *Vault) Submit(ctx context.Context, src Source) (string, bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	var name string

	switch src.Kind {
	case KindUpload:
		if err := ValidateName(src.Name); err != nil {
			return "", false, err
		}

		id := uploadIdentity{name: src.Name, size: len(src.Data)}
		if v.lastUpload != nil && *v.lastUpload == id {
			return v.stored(src.Name), false, nil
		}

		name = src.Name
	case KindRecording:
		if v.lastRecording != nil && bytes.Equal(v.lastRecording, src.Data) {
			return v.stored(v.lastRecordingName), false, nil
		}

		name = v.recordingName()
	default:
		return "", false, fmt.Errorf("vault: unknown source kind %v", src.Kind)
	}

	data := bytes.Clone(src.Data)
	if data == nil {
		data = []byte{}
	}

	if v.store != nil {
		if err := v.store.Put(ctx, name, data); err != nil {
			return "", false, fmt.Errorf("vault: persist %q: %w", name, err)
		}
	}

	v.insert(Blob{Name: name, Data: data, Kind: src.Kind, Added: v.now()})
	v.current = name

	if src.Kind == KindUpload {
		v.lastUpload = &uploadIdentity{name: name, size: len(data)}
	} else {
		v.lastRecording = data
		v.lastRecordingName = name
	}

	v.checkInvariant()
	v.logger.Debug("vault submit", "name", name, "kind", src.Kind, "bytes", len(data))

	return name, true, nil
}

// Select makes name the current target.
func (v *Vault) Select(name string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.blobs[name]; !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	v.current = name

	return nil
}

// Delete removes names from the vault and the store. Absent names are
// ignored. Deleting the current target clears it. A blob whose store
// delete fails stays in the vault and the failure is returned.
func (v *Vault) Delete(ctx context.Context, names ...string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	var errs []error

	for _, name := range names {
		if _, ok := v.blobs[name]; !ok {
			continue
		}

		if v.store != nil {
			if err := v.store.Delete(ctx, name); err != nil {
				errs = append(errs, fmt.Errorf("vault: delete %q: %w", name, err))
				continue
			}
		}

		delete(v.blobs, name)
		v.order = slices.DeleteFunc(v.order, func(n string) bool { return n == name })

		if v.current == name {
			v.current = ""
		}

		v.logger.Debug("vault delete", "name", name)
	}

	v.checkInvariant()

	return errors.Join(errs...)
}

// Rehydrate loads every blob the store lists, in store order, without
// touching the current target. Names already present are kept as they are.
func (v *Vault) Rehydrate(ctx context.Context) error {
	if v.store == nil {
		return nil
	}

	names, err := v.store.List(ctx)
	if err != nil {
		return fmt.Errorf("vault: list store: %w", err)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	var errs []error

	for _, name := range names {
		if _, ok := v.blobs[name]; ok {
			continue
		}

		if err := ValidateName(name); err != nil {
			v.logger.Warn("skipping stored blob", "name", name, "err", err)
			continue
		}

		data, err := v.store.Get(ctx, name)
		if err != nil {
			errs = append(errs, fmt.Errorf("vault: load %q: %w", name, err))
			continue
		}

		kind := KindUpload
		if strings.HasPrefix(name, "rec-") {
			kind = KindRecording
		}

		v.insert(Blob{Name: name, Data: data, Kind: kind, Added: v.now()})
	}

	return errors.Join(errs...)
}

// Current returns the current target.
func (v *Vault) Current() (Blob, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.current == "" {
		return Blob{}, false
	}

	return v.blobs[v.current], true
}

// CurrentName returns the current target's name, or "".
func (v *Vault) CurrentName() string {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return v.current
}

// Get returns the blob stored under name.
func (v *Vault) Get(name string) (Blob, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	b, ok := v.blobs[name]

	return b, ok
}

// Names lists blob names, most recent first.
func (v *Vault) Names() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()

	out := slices.Clone(v.order)
	slices.Reverse(out)

	return out
}

// Len returns the number of blobs.
func (v *Vault) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return len(v.blobs)
}

// insert adds or replaces b and moves it to the most recent position.
// Callers hold the write lock.
func (v *Vault) insert(b Blob) {
	if _, ok := v.blobs[b.Name]; ok {
		v.order = slices.DeleteFunc(v.order, func(n string) bool { return n == b.Name })
	}

	v.blobs[b.Name] = b
	v.order = append(v.order, b.Name)
}

// recordingName derives a free name from the clock. Callers hold the lock.
func (v *Vault) recordingName() string {
	base := v.now().Format(recordingLayout)
	ext := ".wav"

	name := base + ext
	for i := 2; v.taken(name); i++ {
		name = base + "-" + strconv.Itoa(i) + ext
	}

	return name
}

// stored returns name when it is still in the vault, "" otherwise.
func (v *Vault) stored(name string) string {
	if _, ok := v.blobs[name]; ok {
		return name
	}

	return ""
}

func (v *Vault) taken(name string) bool {
	_, ok := v.blobs[name]
	return ok
}

// checkInvariant panics when the cursor or the order no longer agree with
// the blob map.
func (v *Vault) checkInvariant() {
	if v.current != "" {
		if _, ok := v.blobs[v.current]; !ok {
			panic(fmt.Sprintf("vault: current target %q is not stored", v.current))
		}
	}

	if len(v.order) != len(v.blobs) {
		panic(fmt.Sprintf("vault: order holds %d names for %d blobs", len(v.order), len(v.blobs)))
	}
}
