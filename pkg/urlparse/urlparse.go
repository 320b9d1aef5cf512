// Package urlparse splits a router URL into its path, raw query string and
// decoded query mapping.
//
// The split is deliberately simpler than net/url: everything before the
// first "?" is the path, everything after it is the query string, and each
// "&"-separated segment is cut on its first "=" so values may contain "=".
// Keys and values are decoded with component semantics ("+" stays "+").
//
//	p := urlparse.Parse("/taco?meat=chor=izo")
//	// p.Path == "/taco"
//	// p.QueryString == "meat=chor=izo"
//	// p.Query["meat"] == "chor=izo"
package urlparse

import (
	"net/url"
	"sort"
	"strings"
)

// Parsed is the result of splitting a URL.
type Parsed struct {
	// Path is everything before the first "?".
	Path string

	// QueryString is everything after the first "?" ("" when absent).
	QueryString string

	// Query maps decoded keys to decoded values. Never nil.
	Query map[string]string
}

// Parse splits rawURL into path, query string and decoded query.
// It never fails: malformed escapes are kept verbatim and segments
// without "=" map to an empty value.
func Parse(rawURL string) Parsed {
	path, queryString, _ := strings.Cut(rawURL, "?")
	return Parsed{
		Path:        path,
		QueryString: queryString,
		Query:       ParseQuery(queryString),
	}
}

// ParseQuery decodes a raw query string into a key/value mapping.
// The last occurrence of a duplicate key wins.
func ParseQuery(queryString string) map[string]string {
	query := make(map[string]string)
	if queryString == "" {
		return query
	}
	for _, part := range strings.Split(queryString, "&") {
		if part == "" {
			continue
		}
		key, value, _ := strings.Cut(part, "=")
		query[Decode(key)] = Decode(value)
	}
	return query
}

// Decode percent-decodes a single query component. "+" is not treated
// as a space. Input with an invalid escape is returned unchanged.
func Decode(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}
	decoded, err := url.PathUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}

// Encode percent-encodes a single query component so that Decode
// restores it.
func Encode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// Values returns the query in multi-valued form. Unlike Query, every
// occurrence of a duplicate key is kept, in order.
func (p Parsed) Values() url.Values {
	values := make(url.Values)
	if p.QueryString == "" {
		return values
	}
	for _, part := range strings.Split(p.QueryString, "&") {
		if part == "" {
			continue
		}
		key, value, _ := strings.Cut(part, "=")
		k := Decode(key)
		values[k] = append(values[k], Decode(value))
	}
	return values
}

// Join builds a URL from a path and a query mapping. Keys are emitted in
// sorted order so the result is stable. An empty query yields the bare
// path.
func Join(path string, query map[string]string) string {
	if len(query) == 0 {
		return path
	}
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(path)
	b.WriteByte('?')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(Encode(k))
		b.WriteByte('=')
		b.WriteString(Encode(query[k]))
	}
	return b.String()
}
