// Package sites groups recognized domains by registrable domain.
//
// A registrable domain (eTLD+1) is the public suffix of a host plus one
// label, e.g. "www.example.co.uk" and "cdn.example.co.uk" both belong to
// the site "example.co.uk". Suffixes come from the public suffix list
// compiled into golang.org/x/net/publicsuffix, so grouping works offline.
package sites
