package decodecache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Key is the SHA-256 digest of a file's raw bytes.
type Key [sha256.Size]byte

// KeyOf digests data.
func KeyOf(data []byte) Key {
	return sha256.Sum256(data)
}

func (k Key) String() string {
	return hex.EncodeToString(k[:])
}
