package trustwatch

import (
	"net/url"
	"regexp"
	"strings"
	"sync"
)

// Matches reports whether a watchlist pattern applies to a candidate
// URL or hostname.
//
// If pattern contains a wildcard ("*"), it is compiled into a
// case-insensitive regular expression where each wildcard matches zero
// or more characters, and tested unanchored against the full candidate
// string. Literal segments of the pattern are quoted, so "." and other
// metacharacters in an address are taken literally.
//
// Otherwise two case-insensitive substring checks are performed: the
// pattern against the candidate's hostname, and the pattern against the
// full candidate string. Matches returns true if either holds. The
// hostname is extracted when the candidate looks like a full URL (has a
// scheme); a candidate without a scheme is treated as already being a
// hostname. Hostname extraction failures degrade gracefully to the raw
// candidate string.
//
// The dual hostname/full-string check deliberately favours recall over
// precision: a missed true warning is worse than an extra one.
func Matches(candidate, pattern string) bool {
	if pattern == "" {
		return false
	}

	if strings.Contains(pattern, "*") {
		if re := compileWildcard(pattern); re != nil {
			return re.MatchString(candidate)
		}
		// unreachable with quoted segments, but keep the substring
		// path as the degraded behavior
	}

	p := strings.ToLower(pattern)
	if strings.Contains(strings.ToLower(hostnameOf(candidate)), p) {
		return true
	}
	return strings.Contains(strings.ToLower(candidate), p)
}

// hostnameOf extracts the hostname from a candidate string.
//
// Candidates with a scheme are parsed as URLs; anything else is assumed
// to already be a hostname. Parse failures return the raw candidate so
// matching can continue on a best-effort basis.
func hostnameOf(candidate string) string {
	if !strings.Contains(candidate, "://") {
		return candidate
	}
	u, err := url.Parse(candidate)
	if err != nil || u.Hostname() == "" {
		return candidate
	}
	return u.Hostname()
}

// wildcardCache holds compiled wildcard patterns. Matching runs on
// every navigation event, so recompiling per call would be wasteful.
var wildcardCache sync.Map // pattern string -> *regexp.Regexp

// compileWildcard converts a wildcard pattern into an unanchored,
// case-insensitive regular expression. Each "*" matches zero or more
// characters; everything else is matched literally.
func compileWildcard(pattern string) *regexp.Regexp {
	if cached, ok := wildcardCache.Load(pattern); ok {
		return cached.(*regexp.Regexp)
	}

	var b strings.Builder
	b.WriteString("(?i)")
	for i, segment := range strings.Split(pattern, "*") {
		if i > 0 {
			b.WriteString(".*")
		}
		b.WriteString(regexp.QuoteMeta(segment))
	}

	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil
	}
	wildcardCache.Store(pattern, re)
	return re
}
