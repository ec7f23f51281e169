package player

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohualzy/VoiceIce/internal/codec"
)

func TestPrepareSameRate(t *testing.T) {
	pcm := Prepare(codec.Buffer{Samples: []float64{0, 1, -1, 0.5}, SampleRate: DeviceRate}, DeviceRate)
	require.Len(t, pcm, 8)
	assert.Equal(t, int16(32767), int16(binary.LittleEndian.Uint16(pcm[2:])))
	assert.Equal(t, int16(-32767), int16(binary.LittleEndian.Uint16(pcm[4:])))
}

func TestPrepareResamples(t *testing.T) {
	in := make([]float64, 22050)
	for i := range in {
		in[i] = 0.25
	}

	pcm := Prepare(codec.Buffer{Samples: in, SampleRate: 22050}, DeviceRate)
	require.Len(t, pcm, 2*44100)
	assert.Equal(t, time.Second, Duration(len(pcm)))

	mid := int16(binary.LittleEndian.Uint16(pcm[44100:]))
	assert.InDelta(t, 0.25*32767, float64(mid), 2)
}

func TestPrepareEmpty(t *testing.T) {
	assert.Empty(t, Prepare(codec.Buffer{SampleRate: 8000}, DeviceRate))
}
