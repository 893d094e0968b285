package cdxindex

import (
	"strings"

	"github.com/iamBelugaa/cdxindex/internal/canon"
	"github.com/iamBelugaa/cdxindex/internal/capture"
	"github.com/iamBelugaa/cdxindex/internal/index"
)

// MatchType selects which stored urlkeys a query URL matches.
type MatchType string

const (
	MatchExact  MatchType = "exact"  // the canonical URL itself
	MatchPrefix MatchType = "prefix" // every urlkey starting with the canonical URL
	MatchHost   MatchType = "host"   // every URL on the same host and port
	MatchDomain MatchType = "domain" // every URL on the host or any of its subdomains
)

// Query describes a lookup.
type Query struct {
	URL       string
	MatchType MatchType // MatchType defaults to MatchExact.
	Limit     int       // Limit caps the result count; zero means unlimited.
}

// URLKey returns the canonical form of the query URL.
func (q Query) URLKey() string {
	return canon.Canonicalize(q.URL)
}

// Range translates the query into a bounded key scan.
func (q Query) Range() index.Range {
	urlkey := q.URLKey()

	var r index.Range
	switch q.MatchType {
	case MatchPrefix:
		r = prefixRange([]byte(urlkey))

	case MatchHost:
		r = prefixRange([]byte(hostTerm(urlkey)))

	case MatchDomain:
		domain := []byte(reversedHost(urlkey))
		r = prefixRange(domain)
		r.Match = func(key []byte) bool {
			if len(key) <= len(domain) {
				return false
			}
			next := key[len(domain)]
			return next == ')' || next == ',' || next == ':'
		}

	default:
		r = prefixRange(capture.KeyPrefix(urlkey))
	}

	r.Limit = q.Limit
	return r
}

func prefixRange(prefix []byte) index.Range {
	return index.Range{Lower: prefix, Upper: index.PrefixUpperBound(prefix)}
}

// hostTerm returns the urlkey up to and including the ')' closing the host.
func hostTerm(urlkey string) string {
	if i := strings.IndexByte(urlkey, ')'); i >= 0 {
		return urlkey[:i+1]
	}
	return urlkey
}

// reversedHost returns the host labels of urlkey without port or ')'.
func reversedHost(urlkey string) string {
	host := strings.TrimSuffix(hostTerm(urlkey), ")")
	if i := strings.LastIndexByte(host, ':'); i >= 0 && !strings.HasPrefix(host, "[") {
		host = host[:i]
	}
	return host
}
