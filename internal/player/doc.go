// Package player provides the player-earnings types shared by the pipeline.
//
// An Entry is a raw tuple as extracted from the source page. A Record is the normalized
// row persisted to the dataset: it carries the player's region and the derived total_wins
// and earnings_per_win fields. Records are built once and treated as immutable afterwards.
package player
