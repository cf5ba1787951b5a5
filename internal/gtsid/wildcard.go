package gtsid

import "strings"

// Wildcard is a pattern for matching GTS identifiers.
//
// Two forms are supported:
//   - a full identifier, e.g. "gts.x.core.events.event.v1~", which matches
//     that identifier with minor-version flexibility: a pattern segment
//     without a minor version matches any minor version of the same major;
//   - a dotted prefix ending in ".*", e.g. "gts.x.core.events.*", which
//     matches any identifier whose canonical text starts with that prefix.
type Wildcard struct {
	raw    string
	prefix []string // dot components before the '*', nil for exact patterns
	exact  ID
}

// ParseWildcard parses a wildcard pattern.
func ParseWildcard(pattern string) (Wildcard, error) {
	if !strings.HasPrefix(pattern, Prefix) {
		return Wildcard{}, &ParseError{Token: pattern, Reason: "missing 'gts.' prefix"}
	}

	if strings.HasSuffix(pattern, ".*") {
		comps := strings.Split(strings.TrimSuffix(pattern, ".*"), ".")
		for _, c := range comps {
			if c == "" {
				return Wildcard{}, &ParseError{Token: pattern, Reason: "empty component in pattern"}
			}
		}

		return Wildcard{raw: pattern, prefix: comps}, nil
	}

	id, err := Parse(pattern)
	if err != nil {
		return Wildcard{}, err
	}

	return Wildcard{raw: pattern, exact: id}, nil
}

// String returns the original pattern text.
func (w Wildcard) String() string {
	return w.raw
}

// Match reports whether the identifier matches the pattern.
func (w Wildcard) Match(id ID) bool {
	if w.prefix != nil {
		comps := strings.Split(id.String(), ".")
		if len(comps) < len(w.prefix) {
			return false
		}

		for i, p := range w.prefix {
			if comps[i] != p {
				return false
			}
		}

		return true
	}

	if len(w.exact.Segments) != len(id.Segments) {
		return false
	}

	for i, ps := range w.exact.Segments {
		if !segmentMatch(ps, id.Segments[i]) {
			return false
		}
	}

	return true
}

// segmentMatch compares a pattern segment against an id segment. A pattern
// segment without a minor version matches any minor version.
func segmentMatch(pattern, seg Segment) bool {
	if pattern.Vendor != seg.Vendor ||
		pattern.Package != seg.Package ||
		pattern.Namespace != seg.Namespace ||
		pattern.TypeName != seg.TypeName ||
		pattern.VerMajor != seg.VerMajor {
		return false
	}

	if pattern.VerMinor == nil {
		return true
	}

	return seg.VerMinor != nil && *seg.VerMinor == *pattern.VerMinor
}
