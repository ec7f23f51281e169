package codec

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"
)

// go-mp3 always emits interleaved stereo signed 16-bit little endian.
const (
	mp3Channels       = 2
	mp3BytesPerSample = 2
)

func decodeMP3(r io.Reader) (Buffer, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return Buffer{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	raw, err := io.ReadAll(dec)
	if err != nil {
		return Buffer{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	samples := len(raw) / mp3BytesPerSample
	frames := samples / mp3Channels
	interleaved := make([]float64, frames*mp3Channels)

	for i := range interleaved {
		s := int16(binary.LittleEndian.Uint16(raw[i*mp3BytesPerSample:]))
		interleaved[i] = float64(s) / 32768
	}

	return Buffer{
		Samples:    downmix(interleaved, mp3Channels),
		SampleRate: dec.SampleRate(),
	}, nil
}
