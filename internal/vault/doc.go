// Package vault keeps the recordings and uploads of one session.
//
// A Vault maps names to immutable blobs, remembers insertion order and
// tracks the current target. Re-submitting the last upload or repeating
// the last recording is a no-op. Blobs can be mirrored to a Store so a
// later session can rehydrate them.
package vault
