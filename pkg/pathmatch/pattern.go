package pathmatch

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Pattern compilation errors.
var (
	ErrEmptyParamName     = errors.New("empty parameter name")
	ErrCatchAllNotLast    = errors.New("catch-all must be the last segment")
	ErrUnknownParamType   = errors.New("unknown parameter type")
	ErrDuplicateParamName = errors.New("duplicate parameter name")
)

type segmentKind uint8

const (
	kindStatic segmentKind = iota
	kindParam
	kindCatchAll
)

type segment struct {
	kind      segmentKind
	value     string // static text, or parameter name
	paramType string
}

// Pattern is a compiled route pattern. It is immutable and safe for
// concurrent use.
type Pattern struct {
	raw      string
	segments []segment
	names    []string
}

// Compile parses pattern into a matcher.
func Compile(pattern string) (*Pattern, error) {
	p := &Pattern{raw: pattern}
	seen := make(map[string]bool)

	parts := SplitPath(pattern)
	for i, part := range parts {
		var seg segment
		switch {
		case strings.HasPrefix(part, "*"):
			if i != len(parts)-1 {
				return nil, compileError(pattern, ErrCatchAllNotLast)
			}
			seg = segment{kind: kindCatchAll, value: part[1:], paramType: "[]string"}
		case strings.HasPrefix(part, ":"):
			name, paramType := parseParamSegment(part)
			if !knownType(paramType) {
				return nil, compileError(pattern, fmt.Errorf("%w %q", ErrUnknownParamType, paramType))
			}
			seg = segment{kind: kindParam, value: name, paramType: paramType}
		default:
			seg = segment{kind: kindStatic, value: part}
		}

		if seg.kind != kindStatic {
			if seg.value == "" {
				return nil, compileError(pattern, ErrEmptyParamName)
			}
			if seen[seg.value] {
				return nil, compileError(pattern, fmt.Errorf("%w %q", ErrDuplicateParamName, seg.value))
			}
			seen[seg.value] = true
			p.names = append(p.names, seg.value)
		}
		p.segments = append(p.segments, seg)
	}

	return p, nil
}

// MustCompile is like Compile but panics on an invalid pattern.
func MustCompile(pattern string) *Pattern {
	p, err := Compile(pattern)
	if err != nil {
		panic(err)
	}
	return p
}

func compileError(pattern string, err error) error {
	return fmt.Errorf("pathmatch: pattern %q: %w", pattern, err)
}

// String returns the pattern as written.
func (p *Pattern) String() string {
	return p.raw
}

// ParamNames returns the parameter names in declaration order.
func (p *Pattern) ParamNames() []string {
	return append([]string(nil), p.names...)
}

// Match tests path against the pattern. On success the returned map holds
// every declared parameter; it is non-nil even for static patterns.
func (p *Pattern) Match(path string) (map[string]string, bool) {
	parts := SplitPath(path)
	params := make(map[string]string, len(p.names))

	for i, seg := range p.segments {
		if seg.kind == kindCatchAll {
			if i >= len(parts) {
				return nil, false
			}
			value, err := decodeSegment(strings.Join(parts[i:], "/"), true)
			if err != nil {
				return nil, false
			}
			params[seg.value] = value
			return params, true
		}

		if i >= len(parts) {
			return nil, false
		}
		value, err := decodeSegment(parts[i], false)
		if err != nil {
			return nil, false
		}

		switch seg.kind {
		case kindStatic:
			if value != seg.value {
				return nil, false
			}
		case kindParam:
			if validateParam(value, seg.paramType) != nil {
				return nil, false
			}
			params[seg.value] = value
		}
	}

	if len(parts) != len(p.segments) {
		return nil, false
	}
	return params, true
}

// SplitPath splits a path into its non-empty segments.
func SplitPath(path string) []string {
	var segments []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

// parseParamSegment extracts name and type from a parameter segment.
// Input: ":id" or ":id:int" -> name="id", type="string" or "int"
func parseParamSegment(seg string) (name, paramType string) {
	seg = seg[1:]
	if idx := strings.Index(seg, ":"); idx != -1 {
		return seg[:idx], seg[idx+1:]
	}
	return seg, "string"
}

// decodeSegment percent-decodes a path segment. A decoded "/" is only
// allowed when the segment belongs to a catch-all.
func decodeSegment(s string, isCatchAll bool) (string, error) {
	if !strings.Contains(s, "%") {
		return s, nil
	}
	decoded, err := url.PathUnescape(s)
	if err != nil {
		return "", err
	}
	if !isCatchAll && strings.Contains(decoded, "/") {
		return "", errEncodedSlash
	}
	return decoded, nil
}

var errEncodedSlash = errors.New("encoded slash in segment")
