package gtsid

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Prefix is the literal that starts every GTS identifier.
const Prefix = "gts."

// ParseError describes why an identifier failed to parse. Token carries
// the offending piece of input, Reason the grammar rule it broke.
type ParseError struct {
	Token  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed gts id: token %q: %s", e.Token, e.Reason)
}

// Segment is one versioned type component of a GTS identifier.
// VerMinor is nil when the segment carries no minor version; a present
// minor version is part of the canonical text and survives round-trips.
type Segment struct {
	Vendor    string
	Package   string
	Namespace string
	TypeName  string
	VerMajor  uint
	VerMinor  *uint
}

// String renders the segment in canonical form, including the trailing '~'.
func (s Segment) String() string {
	var b strings.Builder

	b.WriteString(s.Vendor)
	b.WriteByte('.')
	b.WriteString(s.Package)
	b.WriteByte('.')
	b.WriteString(s.Namespace)
	b.WriteByte('.')
	b.WriteString(s.TypeName)
	b.WriteString(".v")
	b.WriteString(strconv.FormatUint(uint64(s.VerMajor), 10))

	if s.VerMinor != nil {
		b.WriteByte('.')
		b.WriteString(strconv.FormatUint(uint64(*s.VerMinor), 10))
	}

	b.WriteByte('~')

	return b.String()
}

// Equal reports whether two segments are identical, minor version included.
func (s Segment) Equal(other Segment) bool {
	if s.Vendor != other.Vendor ||
		s.Package != other.Package ||
		s.Namespace != other.Namespace ||
		s.TypeName != other.TypeName ||
		s.VerMajor != other.VerMajor {
		return false
	}

	if (s.VerMinor == nil) != (other.VerMinor == nil) {
		return false
	}

	return s.VerMinor == nil || *s.VerMinor == *other.VerMinor
}

// ID is a parsed GTS schema identifier: a non-empty ordered segment chain.
type ID struct {
	Segments []Segment
}

// Parse parses canonical GTS identifier text into an ID.
func Parse(text string) (ID, error) {
	if text == "" {
		return ID{}, &ParseError{Token: text, Reason: "empty identifier"}
	}

	if !strings.HasPrefix(text, Prefix) {
		return ID{}, &ParseError{Token: text, Reason: "missing 'gts.' prefix"}
	}

	if !strings.HasSuffix(text, "~") {
		return ID{}, &ParseError{Token: text, Reason: "identifier must end with '~'"}
	}

	tokens := strings.Split(strings.TrimSuffix(text, "~"), "~")

	segments := make([]Segment, 0, len(tokens))

	for i, token := range tokens {
		if i == 0 {
			token = strings.TrimPrefix(token, Prefix)
		}

		seg, err := parseSegment(token)
		if err != nil {
			return ID{}, err
		}

		segments = append(segments, seg)
	}

	return ID{Segments: segments}, nil
}

// MustParse is Parse that panics on error. Intended for test fixtures and
// compile-time-constant identifiers.
func MustParse(text string) ID {
	id, err := Parse(text)
	if err != nil {
		panic(err)
	}

	return id
}

// IsValid reports whether text parses as a GTS schema identifier.
func IsValid(text string) bool {
	_, err := Parse(text)
	return err == nil
}

// parseSegment parses a single 'vendor.package.namespace.type.v<major>[.<minor>]'
// token, without the trailing '~'.
func parseSegment(token string) (Segment, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 5 && len(parts) != 6 {
		return Segment{}, &ParseError{Token: token, Reason: "wrong segment component count"}
	}

	for _, p := range parts[:4] {
		if p == "" {
			return Segment{}, &ParseError{Token: token, Reason: "empty component"}
		}

		if !isComponent(p) {
			return Segment{}, &ParseError{Token: token, Reason: fmt.Sprintf("invalid component %q", p)}
		}
	}

	ver := parts[4]
	if len(ver) < 2 || ver[0] != 'v' {
		return Segment{}, &ParseError{Token: token, Reason: fmt.Sprintf("invalid version %q", ver)}
	}

	major, err := parseVersionNumber(ver[1:])
	if err != nil {
		return Segment{}, &ParseError{Token: token, Reason: fmt.Sprintf("invalid major version %q", ver)}
	}

	seg := Segment{
		Vendor:    parts[0],
		Package:   parts[1],
		Namespace: parts[2],
		TypeName:  parts[3],
		VerMajor:  major,
	}

	if len(parts) == 6 {
		minor, err := parseVersionNumber(parts[5])
		if err != nil {
			return Segment{}, &ParseError{Token: token, Reason: fmt.Sprintf("invalid minor version %q", parts[5])}
		}

		seg.VerMinor = &minor
	}

	return seg, nil
}

func parseVersionNumber(s string) (uint, error) {
	if s == "" {
		return 0, fmt.Errorf("empty version number")
	}

	// strconv.ParseUint accepts "+1" and hex forms; the grammar wants
	// plain decimal digits only.
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("non-digit in version number")
		}
	}

	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}

	return uint(n), nil
}

// isComponent checks the lowercase-alnum-with-underscore token charset.
func isComponent(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '_' {
			return false
		}
	}

	return s != ""
}

// String renders the identifier in canonical form. For any id produced by
// Parse, Parse(id.String()) yields an equal id, and for any valid text,
// Parse(text).String() == text.
func (id ID) String() string {
	var b strings.Builder

	b.WriteString(Prefix)

	for _, seg := range id.Segments {
		b.WriteString(seg.String())
	}

	return b.String()
}

// IsRoot reports whether the identifier has a single segment.
func (id ID) IsRoot() bool {
	return len(id.Segments) == 1
}

// Parent returns the identifier with the final segment removed.
// ok is false for root identifiers.
func (id ID) Parent() (parent ID, ok bool) {
	if len(id.Segments) <= 1 {
		return ID{}, false
	}

	return ID{Segments: id.Segments[:len(id.Segments)-1]}, true
}

// Equal reports segment-by-segment equality.
func (id ID) Equal(other ID) bool {
	if len(id.Segments) != len(other.Segments) {
		return false
	}

	for i := range id.Segments {
		if !id.Segments[i].Equal(other.Segments[i]) {
			return false
		}
	}

	return true
}

// HasPrefix reports whether the first len(prefix.Segments) segments of id
// equal prefix exactly.
func (id ID) HasPrefix(prefix ID) bool {
	if len(prefix.Segments) > len(id.Segments) {
		return false
	}

	for i := range prefix.Segments {
		if !id.Segments[i].Equal(prefix.Segments[i]) {
			return false
		}
	}

	return true
}

// uuidNamespace scopes GTS-derived UUIDs. The namespace itself is derived
// from the URL namespace so it is stable across builds.
var uuidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("gts://"))

// UUID derives a deterministic UUIDv5 from the canonical identifier text.
// Equal identifiers always map to the same UUID.
func (id ID) UUID() uuid.UUID {
	return uuid.NewSHA1(uuidNamespace, []byte(id.String()))
}
