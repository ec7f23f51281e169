// Package codec decodes uploaded audio into mono float buffers and encodes
// buffers back to 16-bit PCM WAV.
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

var (
	// ErrDecode wraps every decode failure.
	ErrDecode = errors.New("codec: decode failed")
	// ErrUnsupportedFormat is returned for containers that are neither WAV
	// nor MP3. It matches ErrDecode under errors.Is.
	ErrUnsupportedFormat = fmt.Errorf("%w: unsupported format", ErrDecode)
)

// Buffer is a decoded mono signal at its native sample rate.
type Buffer struct {
	Samples    []float64
	SampleRate int
}

// Duration returns the buffer length in seconds.
func (b Buffer) Duration() float64 {
	if b.SampleRate <= 0 {
		return 0
	}

	return float64(len(b.Samples)) / float64(b.SampleRate)
}

// Format identifies a container.
type Format int

const (
	FormatUnknown Format = iota
	FormatWAV
	FormatMP3
)

func (f Format) String() string {
	switch f {
	case FormatWAV:
		return "wav"
	case FormatMP3:
		return "mp3"
	default:
		return "unknown"
	}
}

const sniffLen = 12

// Sniff inspects the leading bytes of a file.
func Sniff(head []byte) Format {
	switch {
	case len(head) >= 12 && bytes.Equal(head[0:4], []byte("RIFF")) && bytes.Equal(head[8:12], []byte("WAVE")):
		return FormatWAV
	case len(head) >= 3 && bytes.Equal(head[0:3], []byte("ID3")):
		return FormatMP3
	case len(head) >= 2 && head[0] == 0xFF && head[1]&0xE0 == 0xE0:
		return FormatMP3
	default:
		return FormatUnknown
	}
}

// Decode reads a WAV or MP3 stream from r, downmixing to mono.
func Decode(r io.ReadSeeker) (buf Buffer, err error) {
	// Malformed containers can panic deep inside the third-party parsers.
	defer func() {
		if p := recover(); p != nil {
			buf, err = Buffer{}, fmt.Errorf("%w: %v", ErrDecode, p)
		}
	}()

	head := make([]byte, sniffLen)

	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		if errors.Is(err, io.EOF) {
			return Buffer{}, fmt.Errorf("%w: empty input", ErrDecode)
		}

		return Buffer{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return Buffer{}, fmt.Errorf("%w: rewind: %w", ErrDecode, err)
	}

	switch format := Sniff(head[:n]); format {
	case FormatWAV:
		buf, err = decodeWAV(r)
	case FormatMP3:
		buf, err = decodeMP3(r)
	default:
		return Buffer{}, ErrUnsupportedFormat
	}

	if err != nil {
		return Buffer{}, err
	}

	if len(buf.Samples) == 0 {
		return Buffer{}, fmt.Errorf("%w: no audio frames", ErrDecode)
	}

	if buf.SampleRate <= 0 {
		return Buffer{}, fmt.Errorf("%w: invalid sample rate %d", ErrDecode, buf.SampleRate)
	}

	return buf, nil
}

// DecodeBytes decodes an in-memory file.
func DecodeBytes(data []byte) (Buffer, error) {
	return Decode(bytes.NewReader(data))
}

// downmix averages interleaved frames into one channel.
func downmix(interleaved []float64, channels int) []float64 {
	if channels <= 1 {
		return interleaved
	}

	frames := len(interleaved) / channels
	out := make([]float64, frames)

	for i := range out {
		var sum float64
		for c := range channels {
			sum += interleaved[i*channels+c]
		}

		out[i] = sum / float64(channels)
	}

	return out
}
