// Package audio plays procedural sound effects for game events.
package audio

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/hajimehoshi/oto/v2"

	"github.com/brensch/retrosnake/engine"
)

// Sound identifies an effect.
type Sound int

const (
	SoundEat Sound = iota
	SoundGameOver
	SoundClick
)

// Device plays a buffer of stereo float32 samples without blocking.
type Device interface {
	Play(samples []byte)
}

// Player maps loop events to sounds. It implements engine.Observer.
type Player struct {
	dev    Device
	sounds map[Sound][]byte
}

// NewPlayer renders every effect once and plays them on dev.
func NewPlayer(dev Device) *Player {
	return &Player{
		dev: dev,
		sounds: map[Sound][]byte{
			SoundEat:      genEat(),
			SoundGameOver: genGameOver(),
			SoundClick:    genClick(),
		},
	}
}

// Play starts s on the device.
func (p *Player) Play(s Sound) {
	if buf := p.sounds[s]; len(buf) > 0 {
		p.dev.Play(buf)
	}
}

func (p *Player) Observe(e engine.Event) {
	switch e.Kind {
	case engine.EventFoodEaten:
		p.Play(SoundEat)
	case engine.EventGameOver:
		p.Play(SoundGameOver)
	case engine.EventDirection:
		p.Play(SoundClick)
	}
}

// OtoDevice plays samples through the system audio output.
type OtoDevice struct {
	ctx    *oto.Context
	ready  chan struct{}
	volume float64
	log    *slog.Logger
}

// OpenOto opens the default output device.
func OpenOto(volume float64, log *slog.Logger) (*OtoDevice, error) {
	ctx, ready, err := oto.NewContext(SampleRate, ChannelCount, oto.FormatFloat32LE)
	if err != nil {
		return nil, fmt.Errorf("open audio device: %w", err)
	}
	return &OtoDevice{ctx: ctx, ready: ready, volume: volume, log: log}, nil
}

func (d *OtoDevice) Play(samples []byte) {
	select {
	case <-d.ready:
	default:
		// Device still starting; drop the effect.
		return
	}
	go func() {
		player := d.ctx.NewPlayer(&soundReader{data: samples})
		player.SetVolume(d.volume)
		player.Play()
		for player.IsPlaying() {
			time.Sleep(10 * time.Millisecond)
		}
		if err := player.Close(); err != nil && d.log != nil {
			d.log.Debug("close audio player", "error", err)
		}
	}()
}

type soundReader struct {
	data []byte
	pos  int
}

func (r *soundReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	n := copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}
