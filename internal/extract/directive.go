package extract

import (
	"fmt"
	"go/ast"
	"strings"

	"gts-generator/internal/diagnostic"
)

// Directive line markers recognized in struct doc comments.
const (
	markerSchema      = "gts:schema"
	markerDescription = "gts:description"
	markerProperties  = "gts:properties"
	markerGeneric     = "gts:generic"
	markerIgnore      = "gts:ignore"
)

// Directive is the parsed gts:schema attribute block of one struct.
type Directive struct {
	ID          string // raw identifier text, parsed later
	Dir         string // output directory relative to the source file
	Root        bool   // base=true
	Parent      string // base=<ParentTypeName>
	Description string
	Properties  []string // explicit property list, empty means all fields
	Generic     string   // property name carrying the generic slot
}

// DirectiveError reports a malformed or incomplete directive block. Code
// distinguishes the two failure classes: a required attribute that is
// absent versus a directive that is present but malformed.
type DirectiveError struct {
	Struct string
	Attr   string
	Reason string
	Code   string
}

func (e *DirectiveError) Error() string {
	return fmt.Sprintf("struct %s: attribute %q: %s", e.Struct, e.Attr, e.Reason)
}

// parseDirective extracts the directive block from a doc comment, or
// returns (nil, nil) when the comment carries no gts:schema line.
func parseDirective(structName string, doc *ast.CommentGroup) (*Directive, error) {
	if doc == nil {
		return nil, nil
	}

	var d *Directive

	for _, line := range commentLines(doc) {
		switch {
		case strings.HasPrefix(line, markerSchema):
			if d != nil {
				return nil, &DirectiveError{
					Struct: structName,
					Attr:   markerSchema,
					Reason: "repeated directive",
					Code:   diagnostic.CodeInvalidDirective,
				}
			}

			parsed, err := parseSchemaLine(structName, strings.TrimSpace(line[len(markerSchema):]))
			if err != nil {
				return nil, err
			}

			d = parsed

		case strings.HasPrefix(line, markerDescription):
			if d == nil {
				continue
			}

			d.Description = strings.TrimSpace(line[len(markerDescription):])

		case strings.HasPrefix(line, markerProperties):
			if d == nil {
				continue
			}

			for _, p := range strings.Split(line[len(markerProperties):], ",") {
				if p = strings.TrimSpace(p); p != "" {
					d.Properties = append(d.Properties, p)
				}
			}

		case strings.HasPrefix(line, markerGeneric):
			if d == nil {
				continue
			}

			d.Generic = strings.TrimSpace(line[len(markerGeneric):])
		}
	}

	if d == nil {
		return nil, nil
	}

	if d.ID == "" {
		return nil, missingAttributeError(structName, "id")
	}

	if d.Dir == "" {
		return nil, missingAttributeError(structName, "dir")
	}

	if !d.Root && d.Parent == "" {
		return nil, missingAttributeError(structName, "base")
	}

	return d, nil
}

func missingAttributeError(structName, attr string) *DirectiveError {
	return &DirectiveError{
		Struct: structName,
		Attr:   attr,
		Reason: "required attribute is missing",
		Code:   diagnostic.CodeMissingAttribute,
	}
}

// parseSchemaLine parses the key=value pairs of a gts:schema line.
func parseSchemaLine(structName, rest string) (*Directive, error) {
	d := &Directive{}

	for _, tok := range strings.Fields(rest) {
		key, value, ok := strings.Cut(tok, "=")
		if !ok {
			return nil, &DirectiveError{
				Struct: structName,
				Attr:   tok,
				Reason: "expected key=value",
				Code:   diagnostic.CodeInvalidDirective,
			}
		}

		switch key {
		case "id":
			d.ID = value
		case "dir":
			d.Dir = value
		case "base":
			if value == "true" {
				d.Root = true
			} else {
				d.Parent = value
			}
		default:
			return nil, &DirectiveError{
				Struct: structName,
				Attr:   key,
				Reason: "unknown attribute",
				Code:   diagnostic.CodeInvalidDirective,
			}
		}
	}

	return d, nil
}

// commentLines yields the comment text line by line with comment markers
// and surrounding whitespace stripped.
func commentLines(doc *ast.CommentGroup) []string {
	var lines []string

	for _, c := range doc.List {
		text := c.Text

		switch {
		case strings.HasPrefix(text, "//"):
			lines = append(lines, strings.TrimSpace(text[2:]))
		case strings.HasPrefix(text, "/*"):
			text = strings.TrimSuffix(strings.TrimPrefix(text, "/*"), "*/")
			for _, l := range strings.Split(text, "\n") {
				lines = append(lines, strings.TrimSpace(l))
			}
		}
	}

	return lines
}

// hasIgnoreDirective reports whether a comment group opts the file out.
func hasIgnoreDirective(doc *ast.CommentGroup) bool {
	if doc == nil {
		return false
	}

	for _, line := range commentLines(doc) {
		if line == markerIgnore {
			return true
		}
	}

	return false
}
