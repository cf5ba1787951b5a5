package schema

import "fmt"

// UnsupportedTypeError reports a field type the mapper cannot translate
// into a JSON Schema fragment.
type UnsupportedTypeError struct {
	Name string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported field type %q", e.Name)
}

// MapType translates a field type into a JSON Schema fragment and reports
// whether a field of that type is required.
//
// Optional(T) inherits T's fragment but is never required. GenericSlot maps
// to a closed object with no further constraints until the composer resolves
// it; Terminal maps to the empty schema that closes a nesting chain.
func MapType(ft FieldType) (fragment map[string]any, required bool, err error) {
	switch ft.Kind {
	case KindString:
		return map[string]any{"type": "string"}, true, nil
	case KindInt:
		return map[string]any{"type": "integer"}, true, nil
	case KindFloat:
		return map[string]any{"type": "number"}, true, nil
	case KindBool:
		return map[string]any{"type": "boolean"}, true, nil
	case KindUUID:
		return map[string]any{"type": "string", "format": "uuid"}, true, nil
	case KindDateTime:
		return map[string]any{"type": "string", "format": "date-time"}, true, nil
	case KindDate:
		return map[string]any{"type": "string", "format": "date"}, true, nil
	case KindOptional:
		if ft.Elem == nil {
			return nil, false, &UnsupportedTypeError{Name: "Optional(<nil>)"}
		}

		inner, _, err := MapType(*ft.Elem)
		if err != nil {
			return nil, false, err
		}

		return inner, false, nil
	case KindCollection:
		if ft.Elem == nil {
			return nil, false, &UnsupportedTypeError{Name: "Collection(<nil>)"}
		}

		items, _, err := MapType(*ft.Elem)
		if err != nil {
			return nil, false, err
		}

		return map[string]any{"type": "array", "items": items}, true, nil
	case KindMap:
		return map[string]any{"type": "object"}, true, nil
	case KindGenericSlot:
		return map[string]any{"type": "object", "additionalProperties": false}, true, nil
	case KindTerminal:
		return map[string]any{}, true, nil
	default:
		name := ft.Name
		if name == "" {
			name = ft.Kind.String()
		}

		return nil, false, &UnsupportedTypeError{Name: name}
	}
}
