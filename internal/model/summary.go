package model

import "time"

// Summary is the top-N view of a ScanReport.
//
// Every report writer renders a Summary, never the raw Tally.
type Summary struct {
	// ID is the run identifier of the summarized report.
	ID string `json:"id"`

	// Sources lists the scanned inputs.
	Sources []string `json:"sources"`

	// DateScanned is when the scan started.
	DateScanned time.Time `json:"date_scanned"`

	// Total is the number of URL occurrences.
	Total uint64 `json:"total"`

	// DistinctDomains is the number of different domains.
	DistinctDomains int `json:"distinct_domains"`

	// DistinctPaths is the number of different paths.
	DistinctPaths int `json:"distinct_paths"`

	// Limit is the requested number of entries per section, 0 for all.
	Limit int `json:"limit"`

	// TopDomains is the ranked domain section.
	TopDomains []Entry `json:"top_domains"`

	// TopPaths is the ranked path section.
	TopPaths []Entry `json:"top_paths"`

	// TopSites is the ranked registrable domain section, nil when site
	// grouping was not requested.
	TopSites []Entry `json:"top_sites,omitempty"`

	// FailedSources lists sources that could not be scanned.
	FailedSources []string `json:"failed_sources,omitempty"`
}

// NewSummary ranks the counters of report, keeping limit entries per section.
func NewSummary(report *ScanReport, limit int) *Summary {
	tally := report.Tally
	if tally == nil {
		tally = NewTally()
	}

	s := &Summary{
		ID:              report.ID,
		Sources:         report.Sources,
		DateScanned:     report.DateScanned,
		Total:           tally.Total,
		DistinctDomains: tally.DistinctDomains(),
		DistinctPaths:   tally.DistinctPaths(),
		Limit:           limit,
		TopDomains:      Rank(tally.Domains, limit),
		TopPaths:        Rank(tally.Paths, limit),
		FailedSources:   report.FailedSources,
	}
	if report.Sites != nil {
		s.TopSites = Rank(report.Sites, limit)
	}
	return s
}

// HasMatches reports whether any URL was found.
func (s *Summary) HasMatches() bool {
	return s.Total > 0
}
