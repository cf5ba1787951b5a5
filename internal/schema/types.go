package schema

import (
	"gts-generator/internal/gtsid"
)

//go:generate go tool stringer -type=FieldKind -output=fieldkind_string.go

// FieldKind discriminates the FieldType variants.
type FieldKind int

const (
	_ FieldKind = iota // skip zero value, use it as a default (invalid) value for FieldKind

	KindString
	KindInt
	KindFloat
	KindBool
	KindUUID
	KindDateTime
	KindDate
	KindOptional
	KindCollection
	KindMap
	KindGenericSlot
	KindTerminal

	// KindTotal is a constant that represents the total number of kinds defined
	KindTotal = int(iota)
)

// FieldType is a tagged variant describing one declaration field.
// Elem is set for Optional and Collection (the wrapped type) and for Map
// (the value type); Key is set for Map only. Name carries the source type
// name for unrecognized types so mapping failures can report it.
type FieldType struct {
	Kind FieldKind
	Name string
	Elem *FieldType
	Key  *FieldType
}

// IsZero reports whether the FieldType carries no kind at all.
func (ft FieldType) IsZero() bool {
	return ft.Kind == 0
}

// String constructs a string field type.
func String() FieldType { return FieldType{Kind: KindString} }

// Int constructs an integer field type. All integer widths map here.
func Int() FieldType { return FieldType{Kind: KindInt} }

// Float constructs a floating-point field type.
func Float() FieldType { return FieldType{Kind: KindFloat} }

// Bool constructs a boolean field type.
func Bool() FieldType { return FieldType{Kind: KindBool} }

// UUID constructs a UUID-valued string field type.
func UUID() FieldType { return FieldType{Kind: KindUUID} }

// DateTime constructs a date-time string field type.
func DateTime() FieldType { return FieldType{Kind: KindDateTime} }

// Date constructs a date-only string field type.
func Date() FieldType { return FieldType{Kind: KindDate} }

// Optional wraps a field type; optional fields are never required.
func Optional(t FieldType) FieldType { return FieldType{Kind: KindOptional, Elem: &t} }

// Collection wraps an element type into an array type.
func Collection(t FieldType) FieldType { return FieldType{Kind: KindCollection, Elem: &t} }

// MapOf builds a map type from a key and a value type.
func MapOf(k, v FieldType) FieldType { return FieldType{Kind: KindMap, Key: &k, Elem: &v} }

// GenericSlot marks the field filled by a nested child type.
func GenericSlot() FieldType { return FieldType{Kind: KindGenericSlot} }

// Terminal is the empty closing type that ends a nesting chain.
func Terminal() FieldType { return FieldType{Kind: KindTerminal} }

// Unknown records a source type the extractor could not translate. Mapping
// an unknown type fails with UnsupportedTypeError naming it.
func Unknown(name string) FieldType { return FieldType{Name: name} }

// Base describes a declaration's position in an inheritance chain:
// either a chain root, or a child inheriting from a named parent.
type Base struct {
	Root   bool
	Parent string
}

// RootBase returns the chain-root base marker.
func RootBase() Base { return Base{Root: true} }

// InheritsFrom returns a base naming the parent declaration.
func InheritsFrom(parent string) Base { return Base{Parent: parent} }

// Declaration is one typed entity extracted from source, fully populated:
// the composer and validator never re-parse source text.
type Declaration struct {
	// Name is the declared type name, used as the artifact title and as
	// the registry key for parent lookups.
	Name string

	// GenericParam is the declaration's type-parameter name, when the
	// declaration carries a generic slot. Empty otherwise.
	GenericParam string

	// Base marks this declaration as a chain root or names its parent.
	Base Base

	// ID is the declaration's GTS identifier. Child ids extend the
	// parent's id by exactly one segment.
	ID gtsid.ID

	// Description is the human-readable schema description.
	Description string

	// Properties is the ordered list of field names exposed in the schema.
	Properties []string

	// Fields maps every declared field name to its type. Properties must
	// be a subset of the field names.
	Fields map[string]FieldType

	// OutputLocation is the artifact path relative to the output root.
	OutputLocation string

	// SourceFile is the absolute path of the declaring source file.
	// When no output override is given, artifacts resolve relative to
	// this file's directory.
	SourceFile string
}

// GenericSlotField returns the name of the field carrying the generic
// slot, scanning properties first and then remaining fields.
func (d *Declaration) GenericSlotField() (string, bool) {
	for _, name := range d.Properties {
		if ft, ok := d.Fields[name]; ok && ft.Kind == KindGenericSlot {
			return name, true
		}
	}

	for name, ft := range d.Fields {
		if ft.Kind == KindGenericSlot {
			return name, true
		}
	}

	return "", false
}

// genericSlotCount counts fields carrying the generic slot.
func (d *Declaration) genericSlotCount() int {
	n := 0

	for _, ft := range d.Fields {
		if ft.Kind == KindGenericSlot {
			n++
		}
	}

	return n
}
