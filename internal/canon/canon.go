// Package canon turns crawled URLs into SURT-style sort keys.
//
// A key is the host with its labels reversed and comma separated, an optional
// non-default port, a closing parenthesis, then the normalized path and query:
//
//	http://www.Example.com:80/a/../b?z=1&a=2  ->  com,example)/b?a=2&z=1
//
// Keys never contain bytes at or below 0x20, so callers may use a space as a
// separator that sorts before any key byte.
package canon

import (
	"net"
	"net/url"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/idna"
)

var (
	schemePattern = regexp.MustCompile(`^([a-zA-Z][a-zA-Z0-9+.\-]*):`)
	wwwPattern    = regexp.MustCompile(`^www\d*\.`)
)

var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
	"ftp":   "21",
}

// Canonicalize returns the sort key for raw. It never fails: input that does not
// look like a URL still produces a deterministic, escape-normalized key.
func Canonicalize(raw string) string {
	s := strings.TrimSpace(raw)
	if i := strings.IndexByte(s, '#'); i >= 0 {
		s = s[:i]
	}

	scheme, rest, opaque := splitScheme(s)
	if opaque {
		return normalizeEscapes(s, isPathLiteral, "")
	}

	authority, tail := rest, ""
	if i := strings.IndexAny(rest, "/?"); i >= 0 {
		authority, tail = rest[:i], rest[i:]
	}

	path, query := tail, ""
	if i := strings.IndexByte(tail, '?'); i >= 0 {
		path, query = tail[:i], tail[i+1:]
	}

	host, port := splitAuthority(authority)

	var b strings.Builder
	b.WriteString(canonicalHost(host))
	if port != "" && port != defaultPorts[scheme] {
		b.WriteByte(':')
		b.WriteString(port)
	}
	b.WriteByte(')')
	b.WriteString(canonicalPath(path))

	if q := canonicalQuery(query); q != "" {
		b.WriteByte('?')
		b.WriteString(q)
	}
	return b.String()
}

// splitScheme strips "scheme://". Inputs without a scheme are treated as http.
// "example.com:8080/x" is a host and port, not a scheme named "example.com".
func splitScheme(s string) (scheme, rest string, opaque bool) {
	m := schemePattern.FindStringSubmatch(s)
	if m == nil {
		return "http", strings.TrimPrefix(s, "//"), false
	}

	after := s[len(m[0]):]
	switch {
	case strings.HasPrefix(after, "//"):
		return strings.ToLower(m[1]), after[2:], false
	case after == "" || isDigit(after[0]):
		return "http", s, false
	default:
		return "", "", true
	}
}

// splitAuthority drops userinfo and separates the port, normalized to plain decimal.
func splitAuthority(authority string) (host, port string) {
	if i := strings.LastIndexByte(authority, '@'); i >= 0 {
		authority = authority[i+1:]
	}

	if strings.HasPrefix(authority, "[") {
		end := strings.IndexByte(authority, ']')
		if end < 0 {
			return authority, ""
		}
		host, rest := authority[:end+1], authority[end+1:]
		if strings.HasPrefix(rest, ":") {
			return host, normalizePort(rest[1:])
		}
		return host, ""
	}

	i := strings.LastIndexByte(authority, ':')
	if i < 0 {
		return authority, ""
	}

	candidate := authority[i+1:]
	if candidate == "" {
		return authority[:i], ""
	}
	for j := 0; j < len(candidate); j++ {
		if !isDigit(candidate[j]) {
			return authority, ""
		}
	}
	return authority[:i], normalizePort(candidate)
}

func normalizePort(port string) string {
	trimmed := strings.TrimLeft(port, "0")
	if trimmed == "" && port != "" {
		return "0"
	}
	return trimmed
}

// canonicalHost decodes escapes, lowercases, converts to ASCII, strips a leading
// www label and reverses the remaining labels. IP literals keep their natural order.
func canonicalHost(host string) string {
	h := strings.TrimRight(strings.ToLower(unescapeHost(host)), ".")
	if h == "" {
		return ""
	}

	if strings.HasPrefix(h, "[") || net.ParseIP(h) != nil {
		return normalizeEscapes(h, isIPLiteral, "")
	}

	if ascii, err := idna.Lookup.ToASCII(h); err == nil && ascii != "" {
		h = ascii
	}
	h = normalizeEscapes(h, isHostLiteral, "")

	if strings.Count(h, ".") >= 2 {
		if loc := wwwPattern.FindStringIndex(h); loc != nil {
			h = h[loc[1]:]
		}
	}

	labels := strings.Split(h, ".")
	slices.Reverse(labels)
	return strings.Join(labels, ",")
}

// canonicalPath normalizes escapes, collapses repeated slashes and resolves
// dot segments. An empty path becomes "/".
func canonicalPath(path string) string {
	if path == "" {
		return "/"
	}

	escaped := normalizeEscapes(path, isPathLiteral, "/")
	segments := strings.Split(escaped, "/")

	resolved := make([]string, 0, len(segments))
	trailingSlash := false
	for _, seg := range segments {
		trailingSlash = false
		switch seg {
		case "":
			trailingSlash = true
		case ".":
			trailingSlash = true
		case "..":
			if len(resolved) > 0 {
				resolved = resolved[:len(resolved)-1]
			}
			trailingSlash = true
		default:
			resolved = append(resolved, seg)
		}
	}

	if len(resolved) == 0 {
		return "/"
	}

	out := "/" + strings.Join(resolved, "/")
	if trailingSlash {
		out += "/"
	}
	return out
}

// canonicalQuery drops empty parameters and sorts the rest by name, then value.
func canonicalQuery(query string) string {
	if query == "" {
		return ""
	}

	params := make([]string, 0, strings.Count(query, "&")+1)
	for _, param := range strings.Split(query, "&") {
		if param == "" {
			continue
		}
		params = append(params, normalizeEscapes(param, isQueryLiteral, "&=+"))
	}

	slices.SortStableFunc(params, func(a, b string) int {
		if c := strings.Compare(paramName(a), paramName(b)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	return strings.Join(params, "&")
}

func paramName(param string) string {
	if i := strings.IndexByte(param, '='); i >= 0 {
		return param[:i]
	}
	return param
}

// unescapeHost decodes percent escapes in a registered name. Hosts that do not
// decode to valid UTF-8 are returned unchanged and escaped again later.
func unescapeHost(host string) string {
	if !strings.Contains(host, "%") || strings.HasPrefix(host, "[") {
		return host
	}

	decoded, err := url.PathUnescape(host)
	if err != nil || !utf8.ValidString(decoded) {
		return host
	}
	return decoded
}
