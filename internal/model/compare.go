package model

import (
	"cmp"
	"slices"
	"time"
)

// RunInfo identifies one side of a Comparison.
type RunInfo struct {
	ID          string    `json:"id"`
	Sources     []string  `json:"sources"`
	DateScanned time.Time `json:"date_scanned"`
	Total       uint64    `json:"total"`
}

// Delta is a domain present in both runs with a different count.
type Delta struct {
	Key    string `json:"key"`
	Before uint64 `json:"before"`
	After  uint64 `json:"after"`
}

// Change returns After - Before.
func (d Delta) Change() int64 {
	return int64(d.After) - int64(d.Before) //nolint:gosec // counts never approach 2^63
}

// Comparison describes how the domains of a target run differ from a base run.
type Comparison struct {
	// Base is the older run.
	Base RunInfo `json:"base"`

	// Target is the newer run.
	Target RunInfo `json:"target"`

	// Limit is the number of entries kept per section, 0 for all.
	Limit int `json:"limit"`

	// NewDomains appear only in the target, ranked by target count.
	NewDomains []Entry `json:"new_domains"`

	// VanishedDomains appear only in the base, ranked by base count.
	VanishedDomains []Entry `json:"vanished_domains"`

	// ChangedDomains appear in both runs with different counts, ordered by
	// the size of the change, largest first, then by key.
	ChangedDomains []Delta `json:"changed_domains"`
}

// Compare computes the domain differences from base to target, keeping
// limit entries per section (0 or less keeps all).
func Compare(base, target *ScanReport, limit int) *Comparison {
	before := domainsOf(base)
	after := domainsOf(target)

	added := make(map[string]uint64)
	vanished := make(map[string]uint64)
	changed := make([]Delta, 0)

	for k, v := range after {
		old, ok := before[k]
		switch {
		case !ok:
			added[k] = v
		case old != v:
			changed = append(changed, Delta{Key: k, Before: old, After: v})
		}
	}
	for k, v := range before {
		if _, ok := after[k]; !ok {
			vanished[k] = v
		}
	}

	slices.SortFunc(changed, func(a, b Delta) int {
		if c := cmp.Compare(absInt64(b.Change()), absInt64(a.Change())); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
	if limit > 0 && limit < len(changed) {
		changed = changed[:limit]
	}

	return &Comparison{
		Base:            runInfo(base),
		Target:          runInfo(target),
		Limit:           limit,
		NewDomains:      Rank(added, limit),
		VanishedDomains: Rank(vanished, limit),
		ChangedDomains:  changed,
	}
}

// HasChanges reports whether the two runs differ in any domain.
func (c *Comparison) HasChanges() bool {
	return len(c.NewDomains) > 0 || len(c.VanishedDomains) > 0 || len(c.ChangedDomains) > 0
}

func runInfo(r *ScanReport) RunInfo {
	info := RunInfo{
		ID:          r.ID,
		Sources:     r.Sources,
		DateScanned: r.DateScanned,
	}
	if r.Tally != nil {
		info.Total = r.Tally.Total
	}
	return info
}

func domainsOf(r *ScanReport) map[string]uint64 {
	if r.Tally == nil {
		return nil
	}
	return r.Tally.Domains
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
