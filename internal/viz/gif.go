package viz

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"io"
	"os"

	"github.com/san-kum/nucleon/internal/particles"
)

// ErrNoFrames is returned when writing a recording that captured nothing.
var ErrNoFrames = errors.New("no frames recorded")

const (
	bgIndex     = 0
	cursorIndex = particles.MaxTypes + 1
)

var framePalette = func() color.Palette {
	p := color.Palette{color.RGBA{0, 0, 0, 255}}
	for _, c := range Palette {
		p = append(p, c.RGBA())
	}
	return append(p, color.RGBA{255, 255, 255, 255})
}()

// RenderFrame rasterises v into a w x h paletted image, one 2x2 dot per
// particle coloured by type.
func RenderFrame(v particles.View, w, h int) *image.Paletted {
	img := image.NewPaletted(image.Rect(0, 0, w, h), framePalette)
	if v.Width <= 0 || v.Height <= 0 {
		return img
	}
	sx := float32(w) / v.Width
	sy := float32(h) / v.Height
	for i := 0; i < v.Len(); i++ {
		px := int(v.X[i] * sx)
		py := int(v.Y[i] * sy)
		idx := uint8(1 + int(v.Type[i])%particles.MaxTypes)
		for dy := 0; dy < 2; dy++ {
			for dx := 0; dx < 2; dx++ {
				x, y := px+dx, py+dy
				if x < w && y < h && x >= 0 && y >= 0 {
					img.Pix[y*img.Stride+x] = idx
				}
			}
		}
	}
	return img
}

// DrawRing marks a circle outline on a frame, used for the live cursor.
func DrawRing(img *image.Paletted, cx, cy, r int) {
	b := img.Bounds()
	for x := -r; x <= r; x++ {
		for y := -r; y <= r; y++ {
			d := x*x + y*y
			if d > r*r || d < (r-1)*(r-1) {
				continue
			}
			p := image.Pt(cx+x, cy+y)
			if p.In(b) {
				img.SetColorIndex(p.X, p.Y, cursorIndex)
			}
		}
	}
}

// GIFRecorder collects frames from a running experiment. It satisfies
// experiment.Observer.
type GIFRecorder struct {
	Width, Height int
	// Every captures one frame per this many ticks.
	Every int
	// MaxFrames caps memory use; zero means unlimited.
	MaxFrames int
	// Delay between frames in hundredths of a second.
	Delay int

	frames []*image.Paletted
}

func NewGIFRecorder(w, h, every int) *GIFRecorder {
	if every < 1 {
		every = 1
	}
	return &GIFRecorder{Width: w, Height: h, Every: every, MaxFrames: 600, Delay: 2}
}

func (r *GIFRecorder) OnTick(v particles.View, tick int, t float64) {
	if tick%r.Every != 0 {
		return
	}
	r.Capture(v)
}

// Capture appends a frame unless the recorder is full.
func (r *GIFRecorder) Capture(v particles.View) *image.Paletted {
	if r.MaxFrames > 0 && len(r.frames) >= r.MaxFrames {
		return nil
	}
	img := RenderFrame(v, r.Width, r.Height)
	r.frames = append(r.frames, img)
	return img
}

func (r *GIFRecorder) Frames() int { return len(r.frames) }

func (r *GIFRecorder) Reset() { r.frames = r.frames[:0] }

func (r *GIFRecorder) WriteGIF(w io.Writer) error {
	if len(r.frames) == 0 {
		return ErrNoFrames
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range r.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, r.Delay)
	}
	return gif.EncodeAll(w, &anim)
}

func (r *GIFRecorder) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create gif: %w", err)
	}
	if err := r.WriteGIF(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
