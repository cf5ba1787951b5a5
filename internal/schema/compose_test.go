package schema

import (
	"encoding/json"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gts-generator/internal/gtsid"
)

func userDecl() Declaration {
	return Declaration{
		Name:        "User",
		Base:        RootBase(),
		ID:          gtsid.MustParse("gts.x.test.entities.user.v1~"),
		Description: "User entity",
		Properties:  []string{"id", "email", "name", "age"},
		Fields: map[string]FieldType{
			"id":            String(),
			"email":         String(),
			"name":          String(),
			"age":           Int(),
			"internal_data": Optional(String()),
		},
		OutputLocation: "schemas/gts.x.test.entities.user.v1~.schema.json",
	}
}

func baseEventDecl() Declaration {
	return Declaration{
		Name:         "BaseEvent",
		GenericParam: "P",
		Base:         RootBase(),
		ID:           gtsid.MustParse("gts.x.core.events.type.v1~"),
		Description:  "Base event envelope",
		Properties:   []string{"id", "tenant_id", "payload"},
		Fields: map[string]FieldType{
			"id":        String(),
			"tenant_id": String(),
			"payload":   GenericSlot(),
		},
		OutputLocation: "schemas/gts.x.core.events.type.v1~.schema.json",
	}
}

func auditEventDecl() Declaration {
	return Declaration{
		Name:        "AuditEvent",
		Base:        InheritsFrom("BaseEvent"),
		ID:          gtsid.MustParse("gts.x.core.events.type.v1~x.core.audit.event.v1~"),
		Description: "Audit event payload",
		Properties:  []string{"user_id", "action"},
		Fields: map[string]FieldType{
			"user_id": String(),
			"action":  String(),
		},
		OutputLocation: "schemas/gts.x.core.events.type.v1~x.core.audit.event.v1~.schema.json",
	}
}

func TestComposeOne_Root(t *testing.T) {
	user := userDecl()
	reg := mustRegistry(t, user)

	art, err := ComposeOne(&user, reg)
	require.NoError(t, err)

	assert.Equal(t, "User", art.Title)
	assert.Nil(t, art.ParentRef)
	assert.ElementsMatch(t, []string{"id", "email", "name", "age"}, art.Required)
	assert.Len(t, art.Properties, 4)
	assert.NotContains(t, art.Properties, "internal_data", "unlisted fields stay out of the schema")
}

func TestComposeOne_RootWithOptionalProperty(t *testing.T) {
	user := userDecl()
	user.Properties = append(user.Properties, "internal_data")

	art, err := ComposeOne(&user, mustRegistry(t, user))
	require.NoError(t, err)

	assert.NotContains(t, art.Required, "internal_data", "optional fields are never required")
	assert.Contains(t, art.Properties, "internal_data")
	assert.ElementsMatch(t, []string{"age", "email", "id", "name"}, art.Required)
}

func TestComposeOne_Inherited(t *testing.T) {
	base := baseEventDecl()
	audit := auditEventDecl()
	reg := mustRegistry(t, base, audit)

	art, err := ComposeOne(&audit, reg)
	require.NoError(t, err)

	require.NotNil(t, art.ParentRef)
	assert.Equal(t, base.ID.String(), art.ParentRef.String())
	assert.Len(t, audit.ID.Segments, len(base.ID.Segments)+1)

	// The wrapper is the parent's generic-slot field.
	require.Len(t, art.Properties, 1)
	wrapper, ok := art.Properties["payload"].(map[string]any)
	require.True(t, ok, "own properties nest under the parent's slot: %s", spew.Sdump(art.Properties))

	assert.Equal(t, "object", wrapper["type"])
	assert.Equal(t, false, wrapper["additionalProperties"])
	assert.ElementsMatch(t, []string{"action", "user_id"}, wrapper["required"])

	props, ok := wrapper["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "user_id")
	assert.Contains(t, props, "action")
}

func TestComposeOne_InheritedWithoutParentSlot(t *testing.T) {
	base := userDecl()

	child := Declaration{
		Name:        "Child",
		Base:        InheritsFrom("User"),
		ID:          gtsid.MustParse("gts.x.test.entities.user.v1~x.test.sub.extra.v1~"),
		Description: "extra",
		Properties:  []string{"note"},
		Fields:      map[string]FieldType{"note": String()},
		OutputLocation: "schemas/child.schema.json",
	}

	art, err := ComposeOne(&child, mustRegistry(t, base, child))
	require.NoError(t, err)

	// No generic slot on the parent: the reserved nesting field is used.
	require.Len(t, art.Properties, 1)
	assert.Contains(t, art.Properties, "payload")
}

func TestComposeOne_IsPureAndFresh(t *testing.T) {
	base := baseEventDecl()
	audit := auditEventDecl()
	reg := mustRegistry(t, base, audit)

	a1, err := ComposeOne(&audit, reg)
	require.NoError(t, err)

	a2, err := ComposeOne(&audit, reg)
	require.NoError(t, err)

	assert.Equal(t, a1, a2, "composition is deterministic")

	// Mutating one artifact must not leak into a later compose call.
	a1.Properties["payload"] = "clobbered"

	a3, err := ComposeOne(&audit, reg)
	require.NoError(t, err)
	assert.NotEqual(t, a1.Properties["payload"], a3.Properties["payload"])
}

func TestRenderWithRefs_RootDocument(t *testing.T) {
	user := userDecl()

	art, err := ComposeOne(&user, mustRegistry(t, user))
	require.NoError(t, err)

	doc := RenderWithRefs(art)
	assert.Equal(t, "gts://gts.x.test.entities.user.v1~", doc["$id"])
	assert.Equal(t, SchemaDraft, doc["$schema"])
	assert.Equal(t, "User", doc["title"])
	assert.Equal(t, "object", doc["type"])
	assert.Equal(t, "User entity", doc["description"])
	assert.NotContains(t, doc, "allOf")
	assert.ElementsMatch(t, []string{"age", "email", "id", "name"}, doc["required"])
}

func TestRenderWithRefs_InheritedDocument(t *testing.T) {
	base := baseEventDecl()
	audit := auditEventDecl()
	reg := mustRegistry(t, base, audit)

	art, err := ComposeOne(&audit, reg)
	require.NoError(t, err)

	doc := RenderWithRefs(art)
	assert.Equal(t, "gts://gts.x.core.events.type.v1~x.core.audit.event.v1~", doc["$id"])
	assert.NotContains(t, doc, "properties", "inherited documents express properties via allOf")

	allOf, ok := doc["allOf"].([]any)
	require.True(t, ok)
	require.Len(t, allOf, 2)

	ref, ok := allOf[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "gts://gts.x.core.events.type.v1~", ref["$ref"])

	overlay, ok := allOf[1].(map[string]any)
	require.True(t, ok)

	props, ok := overlay["properties"].(map[string]any)
	require.True(t, ok)

	payload, ok := props["payload"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, false, payload["additionalProperties"])
}

func TestRenderInline_MatchesWithRefs(t *testing.T) {
	base := baseEventDecl()
	audit := auditEventDecl()
	reg := mustRegistry(t, base, audit)

	art, err := ComposeOne(&audit, reg)
	require.NoError(t, err)

	withRefs, err := json.Marshal(RenderWithRefs(art))
	require.NoError(t, err)

	inline, err := json.Marshal(RenderInline(art))
	require.NoError(t, err)

	assert.JSONEq(t, string(withRefs), string(inline),
		"inline rendering is documented to match the with-refs form")
}

// threeLevelChain builds A (root, slot "payload") ⊃ B (slot "data") ⊃ C.
func threeLevelChain() []Declaration {
	a := baseEventDecl()

	b := Declaration{
		Name:         "AuditPayload",
		GenericParam: "D",
		Base:         InheritsFrom("BaseEvent"),
		ID:           gtsid.MustParse("gts.x.core.events.type.v1~x.core.audit.event.v1~"),
		Description:  "Audit payload",
		Properties:   []string{"user_id", "data"},
		Fields: map[string]FieldType{
			"user_id": String(),
			"data":    GenericSlot(),
		},
		OutputLocation: "schemas/b.schema.json",
	}

	c := Declaration{
		Name:         "PlaceOrderData",
		GenericParam: "T",
		Base:         InheritsFrom("AuditPayload"),
		ID:           gtsid.MustParse("gts.x.core.events.type.v1~x.core.audit.event.v1~x.marketplace.orders.purchase.v1~"),
		Description:  "Order data",
		Properties:   []string{"order_id", "last"},
		Fields: map[string]FieldType{
			"order_id": String(),
			"last":     GenericSlot(),
		},
		OutputLocation: "schemas/c.schema.json",
	}

	return []Declaration{a, b, c}
}

func TestComposeChain_ThreeLevels(t *testing.T) {
	chain := threeLevelChain()

	art, err := ComposeChain(chain)
	require.NoError(t, err)

	assert.Equal(t, chain[2].ID.String(), art.ID.String())
	require.NotNil(t, art.ParentRef)
	assert.Equal(t, chain[0].ID.String(), art.ParentRef.String())

	// Boundary 1: A's slot holds B with additionalProperties:false.
	levelB, ok := art.Properties["payload"].(map[string]any)
	require.True(t, ok, spew.Sdump(art.Properties))
	assert.Equal(t, false, levelB["additionalProperties"])

	bProps, ok := levelB["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, bProps, "user_id")

	// Boundary 2: B's slot holds C with additionalProperties:false.
	levelC, ok := bProps["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, false, levelC["additionalProperties"])

	cProps, ok := levelC["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, cProps, "order_id")

	// C's own slot is the terminal empty schema.
	terminal, ok := cProps["last"].(map[string]any)
	require.True(t, ok)
	assert.Empty(t, terminal)
}

func TestComposeChain_SingleLevel(t *testing.T) {
	a := baseEventDecl()

	art, err := ComposeChain([]Declaration{a})
	require.NoError(t, err)

	assert.Nil(t, art.ParentRef)

	// With nothing nested, the slot stays the terminal empty schema.
	terminal, ok := art.Properties["payload"].(map[string]any)
	require.True(t, ok)
	assert.Empty(t, terminal)
}

func TestComposeChain_Deterministic(t *testing.T) {
	chain := threeLevelChain()

	one, err := ComposeChain(chain)
	require.NoError(t, err)

	two, err := ComposeChain(chain)
	require.NoError(t, err)

	oneJSON, err := json.Marshal(RenderWithRefs(one))
	require.NoError(t, err)

	twoJSON, err := json.Marshal(RenderWithRefs(two))
	require.NoError(t, err)

	assert.Equal(t, string(oneJSON), string(twoJSON))
}

func TestComposeChain_Errors(t *testing.T) {
	_, err := ComposeChain(nil)
	require.Error(t, err)

	chain := threeLevelChain()
	_, err = ComposeChain(chain[1:])
	require.Error(t, err, "outermost declaration must be a chain root")

	// A middle level without a generic slot cannot nest anything.
	chain[1].Fields["data"] = String()
	_, err = ComposeChain(chain)
	require.Error(t, err)
}

func TestComposeChain_UnlistedSlotFails(t *testing.T) {
	chain := threeLevelChain()

	// B still declares its slot field but leaves it out of the property
	// selection. Nesting C would be impossible, so the chain must fail
	// loudly instead of dropping C.
	chain[1].Properties = []string{"user_id"}

	_, err := ComposeChain(chain)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"data"`)
	assert.Contains(t, err.Error(), chain[2].Name)
}
