package model

import (
	"cmp"
	"slices"
)

// Entry is a key with its occurrence count.
type Entry struct {
	Key   string `json:"key"`
	Count uint64 `json:"count"`
}

// Rank orders counts by descending count, breaking ties by ascending key,
// and returns the first limit entries. A limit of zero or less returns all
// entries.
func Rank(counts map[string]uint64, limit int) []Entry {
	entries := make([]Entry, 0, len(counts))
	for k, v := range counts {
		entries = append(entries, Entry{Key: k, Count: v})
	}

	slices.SortFunc(entries, func(a, b Entry) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})

	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	return entries
}
