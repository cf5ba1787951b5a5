package gtsid

import (
	"fmt"
	"strings"
)

// InstanceID identifies a concrete data instance of a schema: the schema
// identifier followed directly by an opaque instance segment.
type InstanceID struct {
	Schema  ID
	Segment string
}

// String renders the canonical text: schema id (ending in '~') concatenated
// with the instance segment, no separator.
func (iid InstanceID) String() string {
	return iid.Schema.String() + iid.Segment
}

// ComposeInstanceID builds an InstanceID from a schema id and an instance
// segment. The segment is opaque but must be non-empty and must not contain
// '~' or '/', which would make round-trip parsing ambiguous.
func ComposeInstanceID(schemaID ID, segment string) (InstanceID, error) {
	if len(schemaID.Segments) == 0 {
		return InstanceID{}, &ParseError{Token: "", Reason: "empty schema id"}
	}

	if err := checkInstanceSegment(segment); err != nil {
		return InstanceID{}, err
	}

	return InstanceID{Schema: schemaID, Segment: segment}, nil
}

// ParseInstanceID splits instance identifier text into its schema id and
// instance segment. The schema id is the longest prefix ending in '~' that
// parses as a valid GTS identifier; everything after that final '~' is the
// instance segment, taken verbatim.
func ParseInstanceID(text string) (InstanceID, error) {
	cut := strings.LastIndexByte(text, '~')
	if cut < 0 {
		return InstanceID{}, &ParseError{Token: text, Reason: "no schema id prefix ending in '~'"}
	}

	schema, err := Parse(text[:cut+1])
	if err != nil {
		return InstanceID{}, err
	}

	segment := text[cut+1:]
	if err := checkInstanceSegment(segment); err != nil {
		return InstanceID{}, err
	}

	return InstanceID{Schema: schema, Segment: segment}, nil
}

func checkInstanceSegment(segment string) error {
	if segment == "" {
		return &ParseError{Token: segment, Reason: "empty instance segment"}
	}

	if i := strings.IndexAny(segment, "~/"); i >= 0 {
		return &ParseError{
			Token:  segment,
			Reason: fmt.Sprintf("instance segment contains forbidden character %q", segment[i]),
		}
	}

	return nil
}
