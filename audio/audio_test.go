package audio

import (
	"io"
	"math"
	"testing"

	"github.com/brensch/retrosnake/engine"
)

type fakeDevice struct {
	played [][]byte
}

func (f *fakeDevice) Play(b []byte) { f.played = append(f.played, b) }

func TestPlayer_ObserveMapsEvents(t *testing.T) {
	dev := &fakeDevice{}
	p := NewPlayer(dev)

	p.Observe(engine.Event{Kind: engine.EventFrame})
	p.Observe(engine.Event{Kind: engine.EventStarted})
	if len(dev.played) != 0 {
		t.Fatalf("frame/started events should be silent, played %d", len(dev.played))
	}

	p.Observe(engine.Event{Kind: engine.EventFoodEaten})
	p.Observe(engine.Event{Kind: engine.EventDirection})
	p.Observe(engine.Event{Kind: engine.EventGameOver})
	if len(dev.played) != 3 {
		t.Fatalf("played=%d want=3", len(dev.played))
	}
	want := []Sound{SoundEat, SoundClick, SoundGameOver}
	for i, s := range want {
		if &dev.played[i][0] != &p.sounds[s][0] {
			t.Fatalf("played[%d] is not sound %d", i, s)
		}
	}
}

func TestSynth_BuffersAreStereoFloatInRange(t *testing.T) {
	for name, buf := range map[string][]byte{"eat": genEat(), "gameover": genGameOver(), "click": genClick()} {
		if len(buf) == 0 || len(buf)%bytesPerFrame != 0 {
			t.Fatalf("%s: len=%d not a whole number of frames", name, len(buf))
		}
		for i := 0; i < len(buf); i += 4 {
			bits := uint32(buf[i]) | uint32(buf[i+1])<<8 | uint32(buf[i+2])<<16 | uint32(buf[i+3])<<24
			v := math.Float32frombits(bits)
			if math.IsNaN(float64(v)) || v > 1 || v < -1 {
				t.Fatalf("%s: sample %d=%v out of range", name, i/4, v)
			}
		}
	}
}

func TestSoundReader(t *testing.T) {
	r := &soundReader{data: []byte{1, 2, 3, 4, 5}}
	got, err := io.ReadAll(r)
	if err != nil || len(got) != 5 {
		t.Fatalf("read %v, %v", got, err)
	}
}
