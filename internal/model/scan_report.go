package model

import (
	"time"

	"github.com/google/uuid"
)

// ScanReport is the result of scanning one or more sources.
//
// The same struct describes a single source and a merged batch. The batch
// processor produces one ScanReport per source and folds them with
// MergeReports, so writers and the database only ever see this type.
type ScanReport struct {
	// ID uniquely identifies the run. It is stored with the run history.
	ID string `json:"id"`

	// Sources lists the scanned inputs in command line order.
	// "-" denotes standard input.
	Sources []string `json:"sources"`

	// DateScanned is when the scan started.
	DateScanned time.Time `json:"date_scanned"`

	// Duration is the wall time spent scanning.
	Duration time.Duration `json:"duration"`

	// BytesScanned is the number of input bytes fed to the scanner.
	BytesScanned int64 `json:"bytes_scanned"`

	// PeakLive is the largest number of simultaneously live candidate
	// matches observed. It bounds the memory used by the scanner.
	PeakLive int `json:"peak_live"`

	// Tally holds the URL counters.
	Tally *Tally `json:"tally"`

	// Sites maps a registrable domain (eTLD+1) to its number of occurrences.
	// It is nil unless site grouping was requested.
	Sites map[string]uint64 `json:"sites,omitempty"`

	// PerformedSteps records which pipeline steps ran, in order.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// Error is the last error encountered while processing this report.
	Error error `json:"-"`

	// ErrorMessage is Error as text so that it survives serialization.
	ErrorMessage string `json:"error,omitempty"`

	// FailedSources lists sources that could not be scanned.
	FailedSources []string `json:"failed_sources,omitempty"`
}

// NewScanReport creates an empty report for the given sources.
func NewScanReport(sources ...string) *ScanReport {
	return &ScanReport{
		ID:          uuid.NewString(),
		Sources:     sources,
		DateScanned: time.Now(),
		Tally:       NewTally(),
	}
}

// Failed reports whether processing recorded an error.
func (r *ScanReport) Failed() bool {
	return r.Error != nil || r.ErrorMessage != ""
}

// MergeReports folds per-source reports into one report covering all of
// them. Reports are merged in slice order; nil entries are skipped. Counters
// are summed, PeakLive is the maximum, and DateScanned is the earliest start.
func MergeReports(reports []*ScanReport) *ScanReport {
	merged := NewScanReport()
	merged.Sources = make([]string, 0, len(reports))

	for _, r := range reports {
		if r == nil {
			continue
		}

		merged.Sources = append(merged.Sources, r.Sources...)
		if r.DateScanned.Before(merged.DateScanned) {
			merged.DateScanned = r.DateScanned
		}
		merged.Duration += r.Duration
		merged.BytesScanned += r.BytesScanned
		merged.PeakLive = max(merged.PeakLive, r.PeakLive)
		merged.Tally.Merge(r.Tally)

		if r.Sites != nil {
			if merged.Sites == nil {
				merged.Sites = make(map[string]uint64)
			}
			for k, v := range r.Sites {
				merged.Sites[k] += v
			}
		}

		for _, step := range r.PerformedSteps {
			if !contains(merged.PerformedSteps, step) {
				merged.PerformedSteps = append(merged.PerformedSteps, step)
			}
		}

		if r.Failed() {
			merged.FailedSources = append(merged.FailedSources, r.Sources...)
			merged.Error = r.Error
			merged.ErrorMessage = r.ErrorMessage
		}
	}

	return merged
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
