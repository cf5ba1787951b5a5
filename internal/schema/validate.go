package schema

import (
	"fmt"

	"gts-generator/internal/diagnostic"
)

// Validate checks one declaration's internal consistency and its consistency
// with its declared parent. Checks run in a fixed order and stop at the first
// failure for this declaration; the batch driver aggregates failures across
// declarations instead of stopping the run.
func Validate(decl *Declaration, reg *Registry) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}

	if decl == nil {
		res.AddError(diagnostic.CodeMissingAttribute, "declaration is nil", "", "")
		return res
	}

	if field, ok := missingAttribute(decl); ok {
		res.AddError(diagnostic.CodeMissingAttribute,
			fmt.Sprintf("required attribute %q is missing or empty", field),
			decl.Name, field)

		return res
	}

	for _, prop := range decl.Properties {
		if _, ok := decl.Fields[prop]; !ok {
			res.AddError(diagnostic.CodeUnknownProperty,
				fmt.Sprintf("property %q is not a declared field", prop),
				decl.Name, prop)

			return res
		}
	}

	// Non-empty properties plus the property-to-field check above already
	// guarantee at least one field. The remaining shape rule is that every
	// field carries a name.
	for name := range decl.Fields {
		if name == "" {
			res.AddError(diagnostic.CodeInvalidStructShape,
				"declaration has an unnamed field", decl.Name, "")

			return res
		}
	}

	if n := decl.genericSlotCount(); n > 1 {
		res.AddError(diagnostic.CodeMultipleGenericSlots,
			fmt.Sprintf("declaration has %d generic slots, at most one is allowed", n),
			decl.Name, "")

		return res
	}

	validateBase(res, decl, reg)

	return res
}

// missingAttribute returns the first required attribute that is absent.
func missingAttribute(decl *Declaration) (string, bool) {
	switch {
	case decl.Description == "":
		return "description", true
	case len(decl.Properties) == 0:
		return "properties", true
	case decl.OutputLocation == "":
		return "output location", true
	case len(decl.ID.Segments) == 0:
		return "id", true
	}

	return "", false
}

// validateBase enforces the chain rules: roots have single-segment ids;
// children extend their resolvable parent's id by exactly one segment.
func validateBase(res *diagnostic.Diagnostics, decl *Declaration, reg *Registry) {
	if decl.Base.Root {
		if !decl.ID.IsRoot() {
			res.AddError(diagnostic.CodeBaseMismatch,
				fmt.Sprintf("root declaration id %q must have exactly one segment", decl.ID),
				decl.Name, "")
		}

		return
	}

	var parent *Declaration

	if reg != nil {
		parent, _ = reg.Resolve(decl.Base.Parent)
	}

	if parent == nil {
		res.AddError(diagnostic.CodeUnresolvedParent,
			fmt.Sprintf("parent declaration %q cannot be resolved", decl.Base.Parent),
			decl.Name, "")

		return
	}

	wantSegments := len(parent.ID.Segments) + 1
	if len(decl.ID.Segments) != wantSegments || !decl.ID.HasPrefix(parent.ID) {
		res.AddError(diagnostic.CodeBaseMismatch,
			fmt.Sprintf("id %q must extend parent id %q by exactly one segment", decl.ID, parent.ID),
			decl.Name, "")
	}
}

// ValidateAll validates every declaration in discovery order and merges the
// results. Individual failures never stop sibling declarations.
func ValidateAll(reg *Registry) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}

	for _, name := range reg.Names() {
		d, _ := reg.Resolve(name)
		res.Merge(*Validate(d, reg))
	}

	return res
}
