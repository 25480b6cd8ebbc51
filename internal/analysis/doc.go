// Package analysis computes regional statistics over the player-earnings dataset.
//
// An Engine is built once from a record slice and answers read-only questions about it:
// per-region earnings totals, the Pearson correlation between tournament placements and
// earnings, and the earnings-per-win distribution of each region. Summary bundles every
// result into a single value that report sinks render.
//
// Players with zero placements are excluded from the correlation and efficiency
// computations so the zero earnings-per-win sentinel never skews them. A correlation
// over fewer than two qualifying records, or over a constant variable, is reported as
// undefined instead of NaN.
package analysis
