package studio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/mohualzy/VoiceIce/dsp/temperature"
	"github.com/mohualzy/VoiceIce/internal/codec"
	"github.com/mohualzy/VoiceIce/internal/decodecache"
	"github.com/mohualzy/VoiceIce/internal/vault"
)

var (
	// ErrNoTarget is returned when no recording or upload is selected.
	ErrNoTarget = errors.New("studio: no target selected")
	// ErrTemperatureRange is returned for temperatures outside [0.5, 2] or NaN.
	ErrTemperatureRange = errors.New("studio: temperature out of range")
)

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTemperature sets the starting temperature; out-of-range values are
// clamped.
func WithTemperature(t float64) Option {
	return func(s *Session) { s.temp = temperature.Temperature(t).Clamp() }
}

// Result is a transformed target. Its slices are shared with the session
// memo and must not be modified.
type Result struct {
	Name        string
	Kind        vault.Kind
	Digest      decodecache.Key
	Temperature temperature.Temperature
	Effect      string
	Original    codec.Buffer
	Transformed codec.Buffer
}

// WAV encodes the transformed audio.
func (r Result) WAV() ([]byte, error) {
	return codec.WAVBytes(r.Transformed)
}

type memoKey struct {
	digest decodecache.Key
	temp   temperature.Temperature
}

// Session is one user's workspace. All methods are safe for concurrent use.
type Session struct {
	id       uuid.UUID
	vault    *vault.Vault
	cache    *decodecache.Cache
	pipeline *temperature.Pipeline
	logger   *log.Logger

	mu      sync.Mutex
	temp    temperature.Temperature
	memoKey memoKey
	memo    *Result
}

// NewSession wires a session from its collaborators. The vault belongs to
// this session; cache and pipeline may be shared.
func NewSession(v *vault.Vault, c *decodecache.Cache, p *temperature.Pipeline, opts ...Option) *Session {
	s := &Session{
		id:       uuid.New(),
		vault:    v,
		cache:    c,
		pipeline: p,
		logger:   log.New(io.Discard),
		temp:     temperature.NeutralTemperature,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.logger = s.logger.With("session", s.id.String()[:8])

	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id.String() }

// Submit stores an upload or recording and makes it current.
func (s *Session) Submit(ctx context.Context, src vault.Source) (string, bool, error) {
	name, created, err := s.vault.Submit(ctx, src)
	if err != nil {
		return "", false, err
	}

	if created {
		s.logger.Info("stored", "name", name, "kind", src.Kind, "bytes", len(src.Data))
	}

	return name, created, nil
}

// Select makes name the current target.
func (s *Session) Select(name string) error {
	return s.vault.Select(name)
}

// Delete removes names from the vault.
func (s *Session) Delete(ctx context.Context, names ...string) error {
	return s.vault.Delete(ctx, names...)
}

// Names lists the vault, most recent first.
func (s *Session) Names() []string {
	return s.vault.Names()
}

// Current returns the current target's name, or "".
func (s *Session) Current() string {
	return s.vault.CurrentName()
}

// SetTemperature sets the control value for later transforms.
func (s *Session) SetTemperature(t float64) error {
	if math.IsNaN(t) || !temperature.Temperature(t).Valid() {
		return fmt.Errorf("%w: %v not in [%v, %v]", ErrTemperatureRange, t,
			float64(temperature.MinTemperature), float64(temperature.MaxTemperature))
	}

	s.mu.Lock()
	s.temp = temperature.Temperature(t)
	s.mu.Unlock()

	return nil
}

// Temperature returns the current control value.
func (s *Session) Temperature() temperature.Temperature {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.temp
}

// Report describes the current temperature.
func (s *Session) Report() temperature.Report {
	return temperature.Describe(s.Temperature())
}

// Transformed decodes the current target through the shared cache and runs
// the pipeline at the session temperature. The last result is reused while
// neither the target content nor the temperature changes. A decode failure
// is returned and leaves the vault as it was.
func (s *Session) Transformed(ctx context.Context) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	blob, ok := s.vault.Current()
	if !ok {
		return Result{}, ErrNoTarget
	}

	key := memoKey{digest: decodecache.KeyOf(blob.Data), temp: s.Temperature()}

	if r, ok := s.memoized(key); ok {
		r.Name, r.Kind = blob.Name, blob.Kind
		return r, nil
	}

	orig, err := s.cache.Decode(ctx, blob.Data)
	if err != nil {
		s.logger.Warn("decode failed", "name", blob.Name, "err", err)
		return Result{}, fmt.Errorf("studio: %q: %w", blob.Name, err)
	}

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	out := s.pipeline.Transform(orig.Samples, orig.SampleRate, key.temp)

	r := Result{
		Name:        blob.Name,
		Kind:        blob.Kind,
		Digest:      key.digest,
		Temperature: key.temp,
		Effect:      temperature.Plan(key.temp).String(),
		Original:    orig,
		Transformed: codec.Buffer{Samples: out, SampleRate: orig.SampleRate},
	}

	s.mu.Lock()
	s.memoKey, s.memo = key, &r
	s.mu.Unlock()

	s.logger.Debug("transformed", "name", blob.Name, "temperature", key.temp,
		"in", len(orig.Samples), "out", len(out), "effect", r.Effect)

	return r, nil
}

func (s *Session) memoized(key memoKey) (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.memo == nil || s.memoKey != key {
		return Result{}, false
	}

	return *s.memo, true
}
