package schema

import (
	"fmt"
	"sort"

	"gts-generator/internal/gtsid"
)

// SchemaDraft is the fixed JSON Schema dialect for emitted artifacts.
const SchemaDraft = "http://json-schema.org/draft-07/schema#"

// IDScheme prefixes canonical ids in emitted $id and $ref values.
const IDScheme = "gts://"

// nestingField is the reserved wrapper property used when an inherited
// declaration's parent exposes no generic slot.
const nestingField = "payload"

// Artifact is the composed JSON Schema for one declaration (or one chain).
// It is produced fresh on each compose call and never mutated afterwards.
type Artifact struct {
	ID          gtsid.ID
	Title       string
	Description string

	// Properties maps property names to JSON Schema fragments. For an
	// inherited declaration it holds exactly one entry: the nesting
	// wrapper carrying the declaration's own properties.
	Properties map[string]any

	// Required lists the non-optional top-level properties, sorted.
	Required []string

	// ParentRef is the parent schema id for inherited declarations,
	// nil for chain roots.
	ParentRef *gtsid.ID
}

// ComposeOne builds the artifact for a single declaration. The registry is
// only consulted to locate the parent's generic-slot field name; composition
// itself is a pure function of the declaration chain.
func ComposeOne(decl *Declaration, reg *Registry) (*Artifact, error) {
	props, required, err := mapProperties(decl)
	if err != nil {
		return nil, err
	}

	art := &Artifact{
		ID:          decl.ID,
		Title:       decl.Name,
		Description: decl.Description,
	}

	if decl.Base.Root {
		art.Properties = props
		art.Required = required

		return art, nil
	}

	parentID, ok := decl.ID.Parent()
	if !ok {
		return nil, fmt.Errorf("compose %s: inherited declaration has a single-segment id %q", decl.Name, decl.ID)
	}

	own := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
	}
	if len(required) > 0 {
		own["required"] = required
	}

	art.ParentRef = &parentID
	art.Properties = map[string]any{slotFieldFor(decl, reg): own}

	return art, nil
}

// slotFieldFor picks the wrapper property for an inherited declaration:
// the parent's generic-slot field when the parent declares one, otherwise
// the reserved nesting field.
func slotFieldFor(decl *Declaration, reg *Registry) string {
	if reg == nil || decl.Base.Root {
		return nestingField
	}

	parent, ok := reg.Resolve(decl.Base.Parent)
	if !ok {
		return nestingField
	}

	if slot, ok := parent.GenericSlotField(); ok {
		return slot
	}

	return nestingField
}

// mapProperties maps the declaration's listed properties in order and
// collects the sorted required set.
func mapProperties(decl *Declaration) (map[string]any, []string, error) {
	props := make(map[string]any, len(decl.Properties))

	var required []string

	for _, name := range decl.Properties {
		ft, ok := decl.Fields[name]
		if !ok {
			return nil, nil, fmt.Errorf("compose %s: property %q is not a declared field", decl.Name, name)
		}

		fragment, req, err := MapType(ft)
		if err != nil {
			return nil, nil, fmt.Errorf("compose %s: field %q: %w", decl.Name, name, err)
		}

		props[name] = fragment

		if req {
			required = append(required, name)
		}
	}

	sort.Strings(required)

	return props, required, nil
}

// ComposeChain composes a nested generic hierarchy, declarations ordered
// outermost to innermost. The innermost declaration's generic slot resolves
// to the empty schema; every enclosing level embeds the next level's full
// object into its generic-slot field with additionalProperties:false at
// each nesting boundary.
//
// The result is a pure, deterministic function of the chain: composing
// level by level and composing the whole chain at once produce identical
// artifacts.
func ComposeChain(decls []Declaration) (*Artifact, error) {
	if len(decls) == 0 {
		return nil, fmt.Errorf("compose chain: empty chain")
	}

	root := &decls[0]
	if !root.Base.Root {
		return nil, fmt.Errorf("compose chain: outermost declaration %q is not a chain root", root.Name)
	}

	leaf := &decls[len(decls)-1]

	art := &Artifact{
		ID:          leaf.ID,
		Title:       leaf.Name,
		Description: leaf.Description,
	}

	if len(decls) == 1 {
		props, required, err := mapProperties(root)
		if err != nil {
			return nil, err
		}

		// Single-level chain: nothing fills the slot, so it stays the
		// terminal empty schema.
		if slot, ok := root.GenericSlotField(); ok {
			if _, listed := props[slot]; listed {
				props[slot] = map[string]any{}
			}
		}

		art.Properties = props
		art.Required = required

		return art, nil
	}

	nested, err := composeLevel(decls[1:])
	if err != nil {
		return nil, err
	}

	slot, ok := root.GenericSlotField()
	if !ok {
		slot = nestingField
	}

	art.ParentRef = &root.ID
	art.Properties = map[string]any{slot: nested}

	return art, nil
}

// composeLevel builds the embedded object for decls[0], nesting the rest of
// the chain into its generic slot. The innermost level's slot resolves to
// the empty schema.
func composeLevel(decls []Declaration) (map[string]any, error) {
	decl := &decls[0]

	props, required, err := mapProperties(decl)
	if err != nil {
		return nil, err
	}

	slot, hasSlot := decl.GenericSlotField()

	if len(decls) > 1 {
		if !hasSlot {
			return nil, fmt.Errorf("compose chain: declaration %q has no generic slot to nest %q into",
				decl.Name, decls[1].Name)
		}

		if _, listed := props[slot]; !listed {
			return nil, fmt.Errorf("compose chain: declaration %q does not list its generic slot %q, cannot nest %q",
				decl.Name, slot, decls[1].Name)
		}

		inner, err := composeLevel(decls[1:])
		if err != nil {
			return nil, err
		}

		props[slot] = inner
	} else if hasSlot {
		// Innermost level: a listed slot closes the chain as the empty
		// schema, an unlisted slot stays out of the artifact.
		if _, listed := props[slot]; listed {
			props[slot] = map[string]any{}
		}
	}

	level := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
	}
	if len(required) > 0 {
		level["required"] = required
	}

	return level, nil
}

// RenderWithRefs serializes the artifact into its on-disk document form,
// keeping the parent reference as a $ref inside an allOf.
func RenderWithRefs(art *Artifact) map[string]any {
	doc := map[string]any{
		"$id":     IDScheme + art.ID.String(),
		"$schema": SchemaDraft,
		"title":   art.Title,
		"type":    "object",
	}

	if art.Description != "" {
		doc["description"] = art.Description
	}

	if art.ParentRef == nil {
		doc["properties"] = art.Properties
		if len(art.Required) > 0 {
			doc["required"] = art.Required
		}

		return doc
	}

	overlay := map[string]any{"properties": art.Properties}
	if len(art.Required) > 0 {
		overlay["required"] = art.Required
	}

	doc["allOf"] = []any{
		map[string]any{"$ref": IDScheme + art.ParentRef.String()},
		overlay,
	}

	return doc
}

// RenderInline renders the artifact for consumers that cannot resolve
// gts:// references. True substitution of the parent body is not
// implemented yet; the inline form is currently identical to the
// with-refs form and callers rely on that equivalence.
func RenderInline(art *Artifact) map[string]any {
	return RenderWithRefs(art)
}
