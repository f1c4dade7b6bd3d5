// Package grid implements a uniform spatial hash grid over a rectangular
// (optionally toroidal) world. Buckets hold particle indices and are rebuilt
// from scratch every tick.
package grid

import (
	"math"
	"sync/atomic"

	"github.com/san-kum/nucleon/internal/dynamo"
)

// minRebuildChunk keeps tiny populations from paying goroutine overhead.
const minRebuildChunk = 512

// Grid buckets particle indices by cell. Cells are stored flat, index = row*cols + col.
type Grid struct {
	width, height float32
	cellW, cellH  float32
	cols, rows    int
	toroidal      bool
	cells         [][]int

	// rebuild scratch, reused across ticks
	counts []int32
	cellOf []int32
}

// New creates a bounded grid with ceil(dim/cellSize) cells per axis.
// Queries near the border skip cells outside the grid.
func New(width, height, cellSize float32) *Grid {
	cols := int(math.Ceil(float64(width / cellSize)))
	rows := int(math.Ceil(float64(height / cellSize)))
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return newGrid(width, height, cellSize, cellSize, cols, rows, false)
}

// NewToroidal creates a grid whose cells tile a wrap-around world exactly.
// Every cell is at least minCellSize wide and tall, so a 3x3 query covers any
// radius up to minCellSize, including across the seam.
func NewToroidal(width, height, minCellSize float32) *Grid {
	cols := int(width / minCellSize)
	rows := int(height / minCellSize)
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return newGrid(width, height, width/float32(cols), height/float32(rows), cols, rows, true)
}

func newGrid(width, height, cellW, cellH float32, cols, rows int, toroidal bool) *Grid {
	return &Grid{
		width:    width,
		height:   height,
		cellW:    cellW,
		cellH:    cellH,
		cols:     cols,
		rows:     rows,
		toroidal: toroidal,
		cells:    make([][]int, cols*rows),
		counts:   make([]int32, cols*rows),
	}
}

func (g *Grid) Cols() int      { return g.cols }
func (g *Grid) Rows() int      { return g.rows }
func (g *Grid) Cells() int     { return len(g.cells) }
func (g *Grid) Toroidal() bool { return g.toroidal }

// CellSize returns the extent of one cell on each axis.
func (g *Grid) CellSize() (w, h float32) { return g.cellW, g.cellH }

// CellOf returns the cell containing (x, y). ok is false outside the grid.
func (g *Grid) CellOf(x, y float32) (col, row int, ok bool) {
	if !(x >= 0 && y >= 0) {
		return -1, -1, false
	}
	col = int(x / g.cellW)
	row = int(y / g.cellH)
	if g.toroidal {
		// x == width after float rounding belongs to the last column
		if col == g.cols && x <= g.width {
			col--
		}
		if row == g.rows && y <= g.height {
			row--
		}
	}
	if col >= g.cols || row >= g.rows {
		return -1, -1, false
	}
	return col, row, true
}

// Clear empties every bucket without releasing its storage.
func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert adds one index. Positions outside the grid are dropped.
func (g *Grid) Insert(index int, x, y float32) bool {
	col, row, ok := g.CellOf(x, y)
	if !ok {
		return false
	}
	idx := row*g.cols + col
	g.cells[idx] = append(g.cells[idx], index)
	return true
}

// Rebuild re-buckets the first count positions.
//
// Pass one runs on the pool: each worker computes cells for its own particle
// range and bumps the shared per-cell counters atomically. Buckets are then
// grown to their final size, and pass two fills them in index order. The
// fill never reallocates, which is what makes the counting pass necessary.
func (g *Grid) Rebuild(xs, ys []float32, count int, pool *dynamo.Pool) {
	g.Clear()

	for i := range g.counts {
		g.counts[i] = 0
	}
	if cap(g.cellOf) < count {
		g.cellOf = make([]int32, count)
	}
	g.cellOf = g.cellOf[:count]

	countRange := func(_, start, end int) {
		for i := start; i < end; i++ {
			col, row, ok := g.CellOf(xs[i], ys[i])
			if !ok {
				g.cellOf[i] = -1
				continue
			}
			idx := int32(row*g.cols + col)
			g.cellOf[i] = idx
			atomic.AddInt32(&g.counts[idx], 1)
		}
	}
	if pool == nil {
		countRange(0, 0, count)
	} else {
		pool.For(count, minRebuildChunk, countRange)
	}

	for i, n := range g.counts {
		if cap(g.cells[i]) < int(n) {
			g.cells[i] = make([]int, 0, n)
		}
	}

	for i, idx := range g.cellOf {
		if idx < 0 {
			continue
		}
		g.cells[idx] = append(g.cells[idx], i)
	}
}

// Query returns the indices in the 3x3 block of cells around (x, y).
func (g *Grid) Query(x, y float32) []int {
	return g.QueryInto(x, y, nil)
}

// QueryInto appends the 3x3 neighbourhood of (x, y) to dst[:0] and returns it.
// The querying particle itself is included when it is bucketed there.
func (g *Grid) QueryInto(x, y float32, dst []int) []int {
	dst = dst[:0]
	col, row, ok := g.CellOf(x, y)
	if !ok {
		return dst
	}

	var colBuf, rowBuf [3]int
	cols := g.span(col, g.cols, colBuf[:0])
	rows := g.span(row, g.rows, rowBuf[:0])

	for _, r := range rows {
		base := r * g.cols
		for _, c := range cols {
			dst = append(dst, g.cells[base+c]...)
		}
	}
	return dst
}

// span lists the distinct neighbour indices of c along one axis.
func (g *Grid) span(c, n int, out []int) []int {
	for d := -1; d <= 1; d++ {
		v := c + d
		if g.toroidal {
			v = (v + n) % n
		} else if v < 0 || v >= n {
			continue
		}
		dup := false
		for _, seen := range out {
			if seen == v {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, v)
		}
	}
	return out
}

// Bucket returns a read-only view of one cell's indices.
func (g *Grid) Bucket(col, row int) []int {
	if col < 0 || col >= g.cols || row < 0 || row >= g.rows {
		return nil
	}
	return g.cells[row*g.cols+col]
}
