//go:build !nocgo

package player

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/mohualzy/VoiceIce/internal/codec"
)

var (
	otoOnce sync.Once
	otoCtx  *oto.Context
	otoErr  error
)

func audioContext() (*oto.Context, error) {
	otoOnce.Do(func() {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   DeviceRate,
			ChannelCount: 1,
			Format:       oto.FormatSignedInt16LE,
			BufferSize:   50 * time.Millisecond,
		})
		if err != nil {
			otoErr = fmt.Errorf("%w: %w", ErrUnavailable, err)
			return
		}

		<-ready
		otoCtx = ctx
	})

	return otoCtx, otoErr
}

// Play blocks until buf has played or ctx is done.
func Play(ctx context.Context, buf codec.Buffer) error {
	if len(buf.Samples) == 0 {
		return nil
	}

	audio, err := audioContext()
	if err != nil {
		return err
	}

	p := audio.NewPlayer(bytes.NewReader(Prepare(buf, DeviceRate)))
	defer p.Close()

	p.Play()

	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()

	for p.IsPlaying() {
		select {
		case <-ctx.Done():
			p.Pause()
			return ctx.Err()
		case <-ticker.C:
		}
	}

	return p.Err()
}
