// Package scraper fetches the Liquipedia player-earnings page and extracts player rows.
//
// A Source provides the raw page (over HTTP or from a saved file) and an Extractor turns the
// markup into raw player entries. TableExtractor is the goquery-based extractor for the
// wiki earnings table. It tolerates malformed cells by substituting zero and counting the
// substitution, and fails with a SourceFormatError only when the table itself is missing.
//
// CachedSource keeps the last fetched page in the data directory so repeated runs within
// the TTL do not hit the wiki again.
package scraper
