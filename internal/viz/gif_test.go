package viz

import (
	"bytes"
	"errors"
	"image/gif"
	"path/filepath"
	"testing"

	"github.com/san-kum/nucleon/internal/particles"
)

func twoParticles() particles.View {
	return particles.View{
		X:        []float32{10, 90},
		Y:        []float32{10, 90},
		VX:       make([]float32, 2),
		VY:       make([]float32, 2),
		Type:     []uint8{0, 2},
		NumTypes: 3,
		Width:    100, Height: 100,
	}
}

func TestRenderFrame(t *testing.T) {
	img := RenderFrame(twoParticles(), 100, 100)

	if got := img.ColorIndexAt(10, 10); got != 1 {
		t.Errorf("type 0 pixel index %d, want 1", got)
	}
	if got := img.ColorIndexAt(91, 91); got != 3 {
		t.Errorf("type 2 pixel index %d, want 3", got)
	}
	if got := img.ColorIndexAt(50, 50); got != bgIndex {
		t.Errorf("background index %d", got)
	}
}

func TestRenderFrame_EmptyWorld(t *testing.T) {
	img := RenderFrame(particles.View{}, 8, 8)
	if img.Bounds().Dx() != 8 {
		t.Error("expected blank frame")
	}
}

func TestDrawRing(t *testing.T) {
	img := RenderFrame(particles.View{}, 40, 40)
	DrawRing(img, 20, 20, 5)
	if img.ColorIndexAt(25, 20) != cursorIndex {
		t.Error("ring missing at radius")
	}
	if img.ColorIndexAt(20, 20) != bgIndex {
		t.Error("ring should be hollow")
	}
	DrawRing(img, 0, 0, 5)
}

func TestGIFRecorder(t *testing.T) {
	r := NewGIFRecorder(64, 64, 2)
	r.MaxFrames = 3
	for tick := 1; tick <= 10; tick++ {
		r.OnTick(twoParticles(), tick, float64(tick))
	}
	if r.Frames() != 3 {
		t.Fatalf("Frames() = %d, want 3", r.Frames())
	}

	var buf bytes.Buffer
	if err := r.WriteGIF(&buf); err != nil {
		t.Fatal(err)
	}
	anim, err := gif.DecodeAll(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(anim.Image) != 3 {
		t.Errorf("decoded %d frames", len(anim.Image))
	}

	path := filepath.Join(t.TempDir(), "out.gif")
	if err := r.Save(path); err != nil {
		t.Fatal(err)
	}
}

func TestGIFRecorder_Empty(t *testing.T) {
	r := NewGIFRecorder(8, 8, 0)
	if err := r.WriteGIF(&bytes.Buffer{}); !errors.Is(err, ErrNoFrames) {
		t.Errorf("got %v, want ErrNoFrames", err)
	}
}
