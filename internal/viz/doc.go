// Package viz renders particle systems in the terminal.
//
//   - [Model]: Bubble Tea program that steps a [particles.System] and draws it
//   - [Canvas]: Braille canvas with per-cell type colouring
//   - [Palette]: per-type colours shared with the window and SVG renderers
//   - [GIFRecorder]: captures frames headless or from the live view
//
// # Key Bindings
//
//	Space  - Pause/Resume
//	R      - Randomize rules
//	P      - Reset particles
//	Arrows - Move cursor
//	A / D  - Attract / repel at cursor (mouse buttons work too)
//	+ / -  - Simulation speed
//	T / t  - More / fewer types
//	C      - Cycle colour themes
//	G      - Toggle GIF recording
//	?      - Help
//	Q      - Quit
package viz
