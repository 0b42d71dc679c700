// Package model defines the data structures shared by the scanner, the
// pipeline, the report writers and the history database.
//
// This package contains the following main types:
//   - Match: One recognized URL occurrence (domain and path)
//   - Tally: The aggregate counters of a scan (total, per domain, per path)
//   - Entry: One ranked key with its count
//   - ScanReport: The result of scanning one or more sources
//   - Summary: The top-N view of a ScanReport used by the report writers
//   - Comparison: The domain differences between two stored runs
//
// Every type serializes to JSON for report output and database storage.
package model
