package particles

// View is a read-only window onto engine storage. All slices have the same
// length. A View is invalidated by the next mutating call on its System.
type View struct {
	X, Y     []float32
	VX, VY   []float32
	Type     []uint8
	NumTypes int
	Width    float32
	Height   float32
}

func (v View) Len() int { return len(v.X) }

// Clone deep-copies the view so it survives later engine mutation.
func (v View) Clone() View {
	return View{
		X:        append([]float32(nil), v.X...),
		Y:        append([]float32(nil), v.Y...),
		VX:       append([]float32(nil), v.VX...),
		VY:       append([]float32(nil), v.VY...),
		Type:     append([]uint8(nil), v.Type...),
		NumTypes: v.NumTypes,
		Width:    v.Width,
		Height:   v.Height,
	}
}

// Snapshot is an owned copy of the particle state at a given tick.
type Snapshot struct {
	View
	Tick   uint64
	Matrix Matrix
}
