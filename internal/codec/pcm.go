package codec

import "encoding/binary"

// PCM16 renders buf as little-endian signed 16-bit mono frames, the layout
// the player consumes.
func PCM16(buf Buffer) []byte {
	out := make([]byte, 2*len(buf.Samples))
	for i, v := range buf.Samples {
		binary.LittleEndian.PutUint16(out[2*i:], uint16(int16(toInt16(v))))
	}

	return out
}
