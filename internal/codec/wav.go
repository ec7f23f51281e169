package codec

import (
	"fmt"
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/orcaman/writerseeker"

	"github.com/mohualzy/VoiceIce/dsp/core"
)

const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE
)

func decodeWAV(r io.ReadSeeker) (Buffer, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return Buffer{}, fmt.Errorf("%w: invalid WAV file", ErrDecode)
	}

	if dec.WavAudioFormat != wavFormatPCM && dec.WavAudioFormat != wavFormatExtensible {
		return Buffer{}, fmt.Errorf("%w: WAV audio format %d", ErrUnsupportedFormat, dec.WavAudioFormat)
	}

	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return Buffer{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	bitDepth := int(dec.BitDepth)
	if bitDepth == 0 || bitDepth > 32 {
		return Buffer{}, fmt.Errorf("%w: unsupported bit depth %d", ErrDecode, bitDepth)
	}

	channels := int(dec.NumChans)
	if channels == 0 {
		return Buffer{}, fmt.Errorf("%w: zero channels", ErrDecode)
	}

	// 8-bit PCM is unsigned, wider depths are two's complement.
	scale := math.Pow(2, float64(bitDepth-1))
	offset := 0.0
	if bitDepth == 8 {
		offset = 128
	}

	frames := len(pcm.Data) / channels
	interleaved := make([]float64, frames*channels)

	for i := range interleaved {
		interleaved[i] = (float64(pcm.Data[i]) - offset) / scale
	}

	return Buffer{
		Samples:    downmix(interleaved, channels),
		SampleRate: int(dec.SampleRate),
	}, nil
}

// EncodeWAV writes buf as 16-bit PCM mono. Samples are clipped to [-1, 1].
func EncodeWAV(w io.WriteSeeker, buf Buffer) error {
	if buf.SampleRate <= 0 {
		return fmt.Errorf("codec: sample rate must be positive: %d", buf.SampleRate)
	}

	enc := wav.NewEncoder(w, buf.SampleRate, 16, 1, wavFormatPCM)

	ib := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  buf.SampleRate,
		},
		Data:           make([]int, len(buf.Samples)),
		SourceBitDepth: 16,
	}

	for i, v := range buf.Samples {
		ib.Data[i] = toInt16(v)
	}

	if err := enc.Write(ib); err != nil {
		return fmt.Errorf("codec: write WAV: %w", err)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("codec: finalize WAV: %w", err)
	}

	return nil
}

// WAVBytes encodes buf into an in-memory WAV file.
func WAVBytes(buf Buffer) ([]byte, error) {
	ws := &writerseeker.WriterSeeker{}
	if err := EncodeWAV(ws, buf); err != nil {
		return nil, err
	}

	return io.ReadAll(ws.BytesReader())
}

func toInt16(v float64) int {
	if math.IsNaN(v) {
		return 0
	}

	return int(math.Round(core.Clamp(v, -1, 1) * math.MaxInt16))
}
