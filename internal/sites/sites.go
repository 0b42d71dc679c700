package sites

import (
	"net/netip"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// Site returns the registrable domain of domain.
//
// Hosts that have no registrable domain are returned unchanged: IP
// addresses, bare public suffixes such as "com", single labels such as
// "localhost", and malformed names with empty labels.
func Site(domain string) string {
	if domain == "" {
		return domain
	}
	if _, err := netip.ParseAddr(domain); err == nil {
		return domain
	}

	site, err := publicsuffix.EffectiveTLDPlusOne(strings.TrimSuffix(domain, "."))
	if err != nil {
		return domain
	}
	return site
}

// Group folds per-domain counts into per-site counts.
// The input map is not modified. A nil or empty input yields an empty map.
func Group(domains map[string]uint64) map[string]uint64 {
	sites := make(map[string]uint64, len(domains))
	for domain, count := range domains {
		sites[Site(domain)] += count
	}
	return sites
}
