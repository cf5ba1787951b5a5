package extract

import (
	"go/ast"
	"strings"
	"unicode"

	"gts-generator/internal/schema"
)

// mapExpr translates a field's AST type expression into the core field-type
// model. genericParam is the struct's type-parameter name; a field of that
// type is the generic slot. Types outside the supported set come back as
// schema.Unknown and fail later at mapping time with their source name.
func mapExpr(expr ast.Expr, genericParam string) schema.FieldType {
	switch t := expr.(type) {
	case *ast.Ident:
		return mapIdent(t.Name, genericParam)

	case *ast.SelectorExpr:
		return mapSelector(t)

	case *ast.StarExpr:
		return schema.Optional(mapExpr(t.X, genericParam))

	case *ast.ArrayType:
		if t.Len != nil {
			return schema.Unknown(exprString(expr))
		}

		return schema.Collection(mapExpr(t.Elt, genericParam))

	case *ast.MapType:
		return schema.MapOf(mapExpr(t.Key, genericParam), mapExpr(t.Value, genericParam))

	case *ast.StructType:
		if t.Fields == nil || len(t.Fields.List) == 0 {
			return schema.Terminal()
		}

		return schema.Unknown(exprString(expr))

	case *ast.IndexExpr:
		// Instantiated generic like Envelope[Terminal]; opaque here.
		return schema.Unknown(exprString(expr))

	default:
		return schema.Unknown(exprString(expr))
	}
}

func mapIdent(name, genericParam string) schema.FieldType {
	if genericParam != "" && name == genericParam {
		return schema.GenericSlot()
	}

	switch name {
	case "string":
		return schema.String()
	case "int", "int8", "int16", "int32", "int64",
		"uint", "uint8", "uint16", "uint32", "uint64",
		"byte", "rune":
		return schema.Int()
	case "float32", "float64":
		return schema.Float()
	case "bool":
		return schema.Bool()
	}

	switch {
	case strings.HasSuffix(name, "UUID"):
		return schema.UUID()
	case strings.HasSuffix(name, "Date"):
		return schema.Date()
	}

	return schema.Unknown(name)
}

func mapSelector(sel *ast.SelectorExpr) schema.FieldType {
	pkg, ok := sel.X.(*ast.Ident)
	if !ok {
		return schema.Unknown(exprString(sel))
	}

	switch {
	case pkg.Name == "time" && sel.Sel.Name == "Time":
		return schema.DateTime()
	case strings.HasSuffix(sel.Sel.Name, "UUID"):
		return schema.UUID()
	case strings.HasSuffix(sel.Sel.Name, "Date"):
		return schema.Date()
	}

	return schema.Unknown(exprString(sel))
}

// exprString renders a type expression for error messages. It covers the
// shapes mapExpr can reject; anything else falls back to a kind marker.
func exprString(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.SelectorExpr:
		return exprString(t.X) + "." + t.Sel.Name
	case *ast.StarExpr:
		return "*" + exprString(t.X)
	case *ast.ArrayType:
		return "[]" + exprString(t.Elt)
	case *ast.MapType:
		return "map[" + exprString(t.Key) + "]" + exprString(t.Value)
	case *ast.StructType:
		return "struct{...}"
	case *ast.IndexExpr:
		return exprString(t.X) + "[" + exprString(t.Index) + "]"
	default:
		return "<unsupported>"
	}
}

// propertyName converts a Go field name to its schema property name:
// lower snake case with initialisms collapsed (TenantID becomes tenant_id).
func propertyName(field string) string {
	var b strings.Builder

	runes := []rune(field)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			boundary := i > 0 &&
				(!unicode.IsUpper(runes[i-1]) ||
					(i+1 < len(runes) && unicode.IsLower(runes[i+1])))
			if boundary {
				b.WriteByte('_')
			}

			b.WriteRune(unicode.ToLower(r))

			continue
		}

		b.WriteRune(r)
	}

	return b.String()
}
