// Package analysis inspects recorded metric series and measures how
// sensitive a world is to its rules.
//
//   - [PowerSpectrum], [DominantPeriod]: oscillations in a metric series
//   - [NewPhasePortrait]: one metric against another, rendered as ASCII
//   - [RuleSensitivity]: divergence of two worlds whose rules differ in one cell
//
// # Sensitivity
//
// A positive exponent means a tiny rule change grows into a visibly
// different world:
//
//	d, err := analysis.RuleSensitivity(ctx, cfg, 0, 1, 1e-3, 600, 10)
//	if d.Exponent > 0 {
//	    // chaotic
//	}
package analysis
