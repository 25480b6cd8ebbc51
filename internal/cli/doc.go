// Package cli implements the command-line interface for rl-earnings.
//
// The cli package provides the Cobra-based CLI with two subcommands. scrape fetches the
// Liquipedia earnings page, builds the dataset and persists it; analyze loads the dataset,
// applies optional filters and renders the regional statistics as text or JSON. Both
// share configuration loading, structured logging tagged with a run ID, and optional
// Prometheus textfile metrics.
package cli
