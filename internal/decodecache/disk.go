package decodecache

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/mohualzy/VoiceIce/internal/codec"
)

const (
	diskMagic      = "VICEBUF1"
	diskHeaderLen  = len(diskMagic) + 4 + 8
	diskFileSuffix = ".pcm.zst"
)

var errCorrupt = errors.New("decodecache: corrupt disk entry")

// DiskTier persists decoded buffers as zstd-compressed float64 frames, one
// file per digest.
type DiskTier struct {
	dir     string
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewDiskTier creates dir if needed. level follows zstd's 1..22 scale.
func NewDiskTier(dir string, level int) (*DiskTier, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	return &DiskTier{dir: dir, encoder: enc, decoder: dec}, nil
}

// Dir returns the tier's directory.
func (d *DiskTier) Dir() string { return d.dir }

func (d *DiskTier) path(key Key) string {
	return filepath.Join(d.dir, key.String()+diskFileSuffix)
}

// Get loads key. Unreadable or corrupt files are removed and reported as a
// miss.
func (d *DiskTier) Get(key Key) (codec.Buffer, bool) {
	path := d.path(key)

	data, err := os.ReadFile(path)
	if err != nil {
		return codec.Buffer{}, false
	}

	buf, err := d.unmarshal(data)
	if err != nil {
		_ = os.Remove(path)
		return codec.Buffer{}, false
	}

	return buf, true
}

// Put writes buf under key, replacing any previous file atomically.
func (d *DiskTier) Put(key Key, buf codec.Buffer) error {
	tmp, err := os.CreateTemp(d.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	tmpName := tmp.Name()

	if _, err := tmp.Write(d.marshal(buf)); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)

		return fmt.Errorf("failed to write cache file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	if err := os.Rename(tmpName, d.path(key)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	return nil
}

// Close releases the codec resources.
func (d *DiskTier) Close() error {
	d.decoder.Close()
	return d.encoder.Close()
}

func (d *DiskTier) marshal(buf codec.Buffer) []byte {
	raw := make([]byte, diskHeaderLen+8*len(buf.Samples))
	copy(raw, diskMagic)
	binary.LittleEndian.PutUint32(raw[len(diskMagic):], uint32(buf.SampleRate))
	binary.LittleEndian.PutUint64(raw[len(diskMagic)+4:], uint64(len(buf.Samples)))

	for i, v := range buf.Samples {
		binary.LittleEndian.PutUint64(raw[diskHeaderLen+8*i:], math.Float64bits(v))
	}

	return d.encoder.EncodeAll(raw, nil)
}

func (d *DiskTier) unmarshal(data []byte) (codec.Buffer, error) {
	raw, err := d.decoder.DecodeAll(data, nil)
	if err != nil {
		return codec.Buffer{}, fmt.Errorf("%w: %w", errCorrupt, err)
	}

	if len(raw) < diskHeaderLen || string(raw[:len(diskMagic)]) != diskMagic {
		return codec.Buffer{}, errCorrupt
	}

	rate := int(binary.LittleEndian.Uint32(raw[len(diskMagic):]))
	n := binary.LittleEndian.Uint64(raw[len(diskMagic)+4:])

	if rate <= 0 || uint64(len(raw)-diskHeaderLen) != 8*n {
		return codec.Buffer{}, errCorrupt
	}

	samples := make([]float64, n)
	for i := range samples {
		samples[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[diskHeaderLen+8*i:]))
	}

	return codec.Buffer{Samples: samples, SampleRate: rate}, nil
}
