package audio

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

var (
	otoCtx     *oto.Context
	otoOnce    sync.Once
	otoInitErr error
)

func getContext() (*oto.Context, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   SampleRate,
			ChannelCount: 2,
			Format:       oto.FormatSignedInt16LE,
		}
		var readyChan chan struct{}
		otoCtx, readyChan, otoInitErr = oto.NewContext(op)
		if otoInitErr == nil {
			<-readyChan
		}
	})
	return otoCtx, otoInitErr
}

// Play plays a built-in sound, blocking until playback completes.
// volume is a multiplier from 0.0 (silent) to 1.0 (full volume).
func Play(name string, volume float64) error {
	pcm, err := Render(name, volume)
	if err != nil {
		return err
	}
	return playStereo16(pcm)
}

// Render returns the PCM data of a built-in sound at the given volume.
func Render(name string, volume float64) ([]byte, error) {
	def, ok := Sounds[name]
	if !ok {
		return nil, fmt.Errorf("unknown sound %q", name)
	}
	pcm := GeneratePCM(def)
	applyVolume16(pcm, volume)
	return pcm, nil
}

// applyVolume16 scales 16-bit signed little-endian PCM samples by the given volume.
func applyVolume16(data []byte, volume float64) {
	if volume >= 1.0 {
		return
	}
	if volume < 0 {
		volume = 0
	}
	for i := 0; i+1 < len(data); i += 2 {
		sample := int16(data[i]) | int16(data[i+1])<<8
		sample = int16(float64(sample) * volume)
		data[i] = byte(sample)
		data[i+1] = byte(sample >> 8)
	}
}

// playStereo16 plays 44100 Hz stereo 16-bit signed LE PCM through the shared context.
func playStereo16(pcm []byte) error {
	ctx, err := getContext()
	if err != nil {
		return fmt.Errorf("failed to initialize audio: %w", err)
	}

	player := ctx.NewPlayer(bytes.NewReader(pcm))
	player.Play()

	for player.IsPlaying() {
		time.Sleep(5 * time.Millisecond)
	}

	return player.Close()
}
