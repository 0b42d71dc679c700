// Package pipeline runs the per-source scan steps and fans out over many
// sources.
//
// A Pipeline executes Steps in order against one model.ScanReport. The
// default pipeline reads a source through the stream scanner and, when
// requested, groups the resulting domains by site. A BatchProcessor gives
// each source its own pipeline and report and runs them concurrently with
// an errgroup limit; the caller merges the reports with model.MergeReports.
//
// Scanners are never shared between goroutines. Each source is scanned by
// exactly one Scanner counting into that source's own Tally.
package pipeline
