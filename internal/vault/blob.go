package vault

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a name is not in the vault or store.
	ErrNotFound = errors.New("vault: not found")
	// ErrInvalidName is returned for names that are not a single path element.
	ErrInvalidName = errors.New("vault: invalid name")
)

// Kind tells how a blob entered the vault.
type Kind int

const (
	KindUpload Kind = iota
	KindRecording
)

func (k Kind) String() string {
	switch k {
	case KindUpload:
		return "upload"
	case KindRecording:
		return "recording"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Blob is a stored file. Data must not be modified.
type Blob struct {
	Name  string
	Data  []byte
	Kind  Kind
	Added time.Time
}

// Size returns len(Data).
func (b Blob) Size() int { return len(b.Data) }

// Source is a submission. Recordings are named by the vault, so their
// Name is ignored.
type Source struct {
	Name string
	Data []byte
	Kind Kind
}

// Upload builds an upload source.
func Upload(name string, data []byte) Source {
	return Source{Name: name, Data: data, Kind: KindUpload}
}

// Recording builds a recording source.
func Recording(data []byte) Source {
	return Source{Data: data, Kind: KindRecording}
}

// ValidateName checks that name is usable as a single file name.
func ValidateName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	case strings.ContainsAny(name, `/\`), strings.ContainsRune(name, 0):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidName, name)
	}

	return nil
}
