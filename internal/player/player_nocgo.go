//go:build nocgo

package player

import (
	"context"

	"github.com/mohualzy/VoiceIce/internal/codec"
)

// Play is unavailable in nocgo builds.
func Play(context.Context, codec.Buffer) error {
	return ErrUnavailable
}
