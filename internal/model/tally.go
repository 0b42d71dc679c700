package model

// Match is one URL occurrence recognized in a stream.
type Match struct {
	// Domain is the ASCII-lowercased domain.
	Domain string `json:"domain"`

	// Path is the path verbatim, "/" when the URL had no explicit path.
	Path string `json:"path"`
}

// Tally holds the aggregate counters of a scan.
//
// Invariant: Total equals the sum of the Domains values and the sum of the
// Paths values. Add and Merge are the only mutators and both preserve it.
type Tally struct {
	// Total is the number of URL occurrences, duplicates included.
	Total uint64 `json:"total"`

	// Domains maps a lowercased domain to its number of occurrences.
	Domains map[string]uint64 `json:"domains"`

	// Paths maps a path to its number of occurrences.
	Paths map[string]uint64 `json:"paths"`
}

// NewTally returns an empty Tally.
func NewTally() *Tally {
	return &Tally{
		Domains: make(map[string]uint64),
		Paths:   make(map[string]uint64),
	}
}

// Add records one occurrence of m.
func (t *Tally) Add(m Match) {
	t.ensure()
	t.Total++
	t.Domains[m.Domain]++
	t.Paths[m.Path]++
}

// Merge adds every counter of other into t. other is not modified.
func (t *Tally) Merge(other *Tally) {
	if other == nil {
		return
	}
	t.ensure()
	t.Total += other.Total
	for k, v := range other.Domains {
		t.Domains[k] += v
	}
	for k, v := range other.Paths {
		t.Paths[k] += v
	}
}

// DistinctDomains returns the number of different domains seen.
func (t *Tally) DistinctDomains() int {
	return len(t.Domains)
}

// DistinctPaths returns the number of different paths seen.
func (t *Tally) DistinctPaths() int {
	return len(t.Paths)
}

// Equal reports whether t and other hold identical counters.
func (t *Tally) Equal(other *Tally) bool {
	if t == nil || other == nil {
		return t == other
	}
	return t.Total == other.Total &&
		equalCounts(t.Domains, other.Domains) &&
		equalCounts(t.Paths, other.Paths)
}

// ensure initializes maps of a zero-value Tally, e.g. one decoded from JSON.
func (t *Tally) ensure() {
	if t.Domains == nil {
		t.Domains = make(map[string]uint64)
	}
	if t.Paths == nil {
		t.Paths = make(map[string]uint64)
	}
}

func equalCounts(a, b map[string]uint64) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if w, ok := b[k]; !ok || w != v {
			return false
		}
	}
	return true
}
