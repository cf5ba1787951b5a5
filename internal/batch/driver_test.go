package batch

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gts-generator/internal/diagnostic"
	"gts-generator/internal/emit"
	"gts-generator/internal/schema"
)

func writeSource(t *testing.T, root, rel, content string) {
	t.Helper()

	p := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func runDriver(t *testing.T, opts Options) *Summary {
	t.Helper()

	summary, err := NewDriver(opts, zerolog.Nop()).Run(context.Background())
	require.NoError(t, err)

	return summary
}

func readDoc(t *testing.T, path string) map[string]any {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))

	return doc
}

const chainSource = `package events

// gts:schema id=gts.acme.core.events.base.v1~ dir=schemas base=true
// gts:description Base event envelope
type BaseEvent[T any] struct {
	ID      string
	Payload T
}

// gts:schema id=gts.acme.core.events.base.v1~acme.core.events.audit.v1~ dir=schemas base=BaseEvent
// gts:description Audit extension
type AuditEvent struct {
	Actor string
}
`

func TestRunEmitsChain(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "events/events.go", chainSource)

	summary := runDriver(t, Options{SourceRoot: root})

	require.True(t, summary.OK(), "failures: %+v", summary.Results)
	require.Len(t, summary.Results, 2)
	assert.Equal(t, 2, summary.EmittedCount())
	assert.Equal(t, 1, summary.Stats.FilesScanned)

	base := summary.Results[0]
	assert.Equal(t, "BaseEvent", base.Declaration)
	assert.Equal(t,
		filepath.Join(root, "events", "schemas", "gts.acme.core.events.base.v1~.schema.json"),
		base.Path)

	baseDoc := readDoc(t, base.Path)
	assert.Equal(t, "gts://gts.acme.core.events.base.v1~", baseDoc["$id"])
	assert.Equal(t, schema.SchemaDraft, baseDoc["$schema"])
	assert.Equal(t, "BaseEvent", baseDoc["title"])
	assert.Contains(t, baseDoc, "properties")

	audit := summary.Results[1]
	auditDoc := readDoc(t, audit.Path)

	allOf, ok := auditDoc["allOf"].([]any)
	require.True(t, ok, "inherited schema must render as allOf")
	require.Len(t, allOf, 2)

	ref, ok := allOf[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "gts://gts.acme.core.events.base.v1~", ref["$ref"])

	overlay, ok := allOf[1].(map[string]any)
	require.True(t, ok)

	props, ok := overlay["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "payload", "own properties nest under the parent slot")
}

func TestRunContinuesPastFailures(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "bad.go", `package events

// gts:schema id=gts.acme.core.events.bad.v1~ dir=schemas base=true
type Bad struct {
	ID string
}
`)
	writeSource(t, root, "good.go", `package events

// gts:schema id=gts.acme.core.events.good.v1~ dir=schemas base=true
// gts:description Good
type Good struct {
	ID string
}
`)

	summary := runDriver(t, Options{SourceRoot: root})

	require.Len(t, summary.Results, 2)
	assert.Equal(t, 1, summary.FailedCount())
	assert.Equal(t, 1, summary.EmittedCount())
	assert.False(t, summary.OK())

	for _, r := range summary.Results {
		switch r.Declaration {
		case "Bad":
			require.Error(t, r.Err)
			assert.Contains(t, r.Err.Error(), "missing_attribute")
		case "Good":
			require.NoError(t, r.Err)
			assert.FileExists(t, r.Path)
		default:
			t.Fatalf("unexpected declaration %q", r.Declaration)
		}
	}
}

func TestRunAbortsOnUnresolvedParent(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "orphan.go", `package events

// gts:schema id=gts.acme.core.events.a.v1~acme.core.events.b.v1~ dir=schemas base=Missing
// gts:description Orphan
type Orphan struct {
	ID string
}
`)

	_, err := NewDriver(Options{SourceRoot: root}, zerolog.Nop()).Run(context.Background())
	require.Error(t, err)

	var fatal *schema.FatalError
	require.ErrorAs(t, err, &fatal)
}

func TestRunAbortsOnCycle(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "cycle.go", `package events

// gts:schema id=gts.acme.core.events.a.v1~acme.core.events.b.v1~ dir=schemas base=B
// gts:description A
type A struct {
	ID string
}

// gts:schema id=gts.acme.core.events.b.v1~acme.core.events.a.v1~ dir=schemas base=A
// gts:description B
type B struct {
	ID string
}
`)

	_, err := NewDriver(Options{SourceRoot: root}, zerolog.Nop()).Run(context.Background())
	require.Error(t, err)

	var fatal *schema.FatalError
	require.ErrorAs(t, err, &fatal)
}

func TestRunOutputConflict(t *testing.T) {
	root := t.TempDir()

	// Two structs mapping to the same id and directory resolve to the
	// same artifact path.
	writeSource(t, root, "a.go", `package events

// gts:schema id=gts.acme.core.events.dup.v1~ dir=schemas base=true
// gts:description First
type First struct {
	ID string
}
`)
	writeSource(t, root, "b.go", `package events

// gts:schema id=gts.acme.core.events.dup.v1~ dir=schemas base=true
// gts:description Second
type Second struct {
	ID string
}
`)

	summary := runDriver(t, Options{SourceRoot: root})

	require.Len(t, summary.Results, 2)
	assert.Equal(t, 1, summary.EmittedCount())

	first, second := summary.Results[0], summary.Results[1]
	require.NoError(t, first.Err)

	var conflict *emit.ConflictError
	require.ErrorAs(t, second.Err, &conflict)
	assert.Equal(t, first.Declaration, conflict.FirstDeclaration)
	assert.Equal(t, diagnostic.CodeOutputConflict, second.Code)

	doc := readDoc(t, first.Path)
	assert.Equal(t, "First", doc["title"], "first artifact survives the conflict")
}

func TestRunOutputRootOverride(t *testing.T) {
	srcRoot := t.TempDir()
	outRoot := t.TempDir()
	writeSource(t, srcRoot, "deep/nested/events.go", `package events

// gts:schema id=gts.acme.core.events.ev.v1~ dir=schemas base=true
// gts:description Event
type Event struct {
	ID string
}
`)

	summary := runDriver(t, Options{SourceRoot: srcRoot, OutputRoot: outRoot})

	require.True(t, summary.OK())
	assert.Equal(t,
		filepath.Join(outRoot, "schemas", "gts.acme.core.events.ev.v1~.schema.json"),
		summary.Results[0].Path)
}

func TestRunDryRun(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "events.go", `package events

// gts:schema id=gts.acme.core.events.ev.v1~ dir=schemas base=true
// gts:description Event
type Event struct {
	ID string
}
`)

	summary := runDriver(t, Options{SourceRoot: root, DryRun: true})

	require.True(t, summary.OK())
	assert.Empty(t, summary.Results[0].Path)
	assert.NoDirExists(t, filepath.Join(root, "schemas"))
}

func TestRunDirectiveErrorSurfaces(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "broken.go", `package events

// gts:schema dir=schemas base=true
// gts:description Broken
type Broken struct {
	ID string
}
`)

	summary := runDriver(t, Options{SourceRoot: root})

	require.Len(t, summary.Results, 1)
	assert.Equal(t, "Broken", summary.Results[0].Declaration)
	require.Error(t, summary.Results[0].Err)
	assert.Equal(t, diagnostic.CodeMissingAttribute, summary.Results[0].Code)
	assert.False(t, summary.OK())
}
