// Package api is the network boundary between csvwizard and the backend.
//
// It resolves configured endpoints to URLs, sends the two request shapes the
// backend understands (a multipart file upload and a plain GET), and decides
// once what a response body is. Callers never sniff bodies themselves: they
// switch on [Response.Kind].
//
// Key types:
//   - [Client] - sends requests relative to a base URL
//   - [Response] - tagged view of a response body (empty, list, payload, text)
package api

import (
	"regexp"
	"strings"
)

// DefaultPrefix is prepended to endpoints that are neither absolute URLs nor
// rooted paths.
const DefaultPrefix = "/api/"

var absoluteURL = regexp.MustCompile(`(?i)^https?://`)

// IsAbsoluteURL reports whether endpoint starts with http:// or https://
// (case-insensitive).
func IsAbsoluteURL(endpoint string) bool {
	return absoluteURL.MatchString(endpoint)
}

// ResolveEndpoint maps a configured endpoint to a URL or rooted path.
//
//   - absolute http(s) URLs are returned verbatim
//   - paths starting with "/" are already rooted and returned verbatim
//   - anything else gets prefix prepended ([DefaultPrefix] when prefix is empty)
func ResolveEndpoint(endpoint, prefix string) string {
	if IsAbsoluteURL(endpoint) {
		return endpoint
	}
	if strings.HasPrefix(endpoint, "/") {
		return endpoint
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix + endpoint
}

// JoinURL joins a resolved endpoint onto baseURL. Absolute endpoints ignore
// the base.
func JoinURL(baseURL, resolved string) string {
	if IsAbsoluteURL(resolved) {
		return resolved
	}
	return strings.TrimRight(baseURL, "/") + resolved
}
