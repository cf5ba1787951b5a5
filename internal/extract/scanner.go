package extract

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"path"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"

	"gts-generator/internal/diagnostic"
	"gts-generator/internal/gtsid"
	"gts-generator/internal/schema"
)

// Directories never scanned regardless of exclude patterns.
var autoIgnoredDirs = map[string]bool{
	"testdata": true,
	"vendor":   true,
}

// Skip records one file left out of the scan and why.
type Skip struct {
	Path   string
	Reason string
}

// Stats summarizes one scan pass.
type Stats struct {
	FilesScanned int
	FilesSkipped int
}

// Result carries everything a scan produced: declarations in discovery
// order, directive-level diagnostics, and counters for the run summary.
type Result struct {
	Declarations []*schema.Declaration
	Diagnostics  *diagnostic.Diagnostics
	Skipped      []Skip
	Stats        Stats
}

// Scanner walks a source root and extracts annotated struct declarations.
type Scanner struct {
	root     string
	excludes []string
	log      zerolog.Logger
}

// NewScanner builds a scanner over root. Exclude patterns are doublestar
// globs matched against slash-separated paths relative to root.
func NewScanner(root string, excludes []string, log zerolog.Logger) (*Scanner, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving scan root %q: %w", root, err)
	}

	for _, pattern := range excludes {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern %q", pattern)
		}
	}

	return &Scanner{root: abs, excludes: excludes, log: log}, nil
}

// Scan walks the root and returns all extracted declarations. Only directive
// errors are collected as diagnostics; unreadable files or directories fail
// the walk.
func (s *Scanner) Scan() (*Result, error) {
	res := &Result{Diagnostics: &diagnostic.Diagnostics{}}
	fset := token.NewFileSet()

	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		name := d.Name()

		if d.IsDir() {
			if p == s.root {
				return nil
			}

			if autoIgnoredDirs[name] || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
				return filepath.SkipDir
			}

			return nil
		}

		if !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			return nil
		}

		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}

		if reason, skip := s.excluded(filepath.ToSlash(rel)); skip {
			res.Skipped = append(res.Skipped, Skip{Path: rel, Reason: reason})
			res.Stats.FilesSkipped++

			return nil
		}

		return s.scanFile(fset, p, rel, res)
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", s.root, err)
	}

	return res, nil
}

// excluded checks the relative slash path against the exclude patterns.
func (s *Scanner) excluded(rel string) (string, bool) {
	for _, pattern := range s.excludes {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return fmt.Sprintf("matches exclude pattern %q", pattern), true
		}
	}

	return "", false
}

func (s *Scanner) scanFile(fset *token.FileSet, abs, rel string, res *Result) error {
	file, err := parser.ParseFile(fset, abs, nil, parser.ParseComments)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", rel, err)
	}

	if s.fileIgnored(file) {
		s.log.Debug().Str("file", rel).Msg("file opted out")
		res.Skipped = append(res.Skipped, Skip{Path: rel, Reason: "gts:ignore directive"})
		res.Stats.FilesSkipped++

		return nil
	}

	res.Stats.FilesScanned++

	for _, decl := range file.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}

		for _, spec := range gen.Specs {
			ts, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}

			st, ok := ts.Type.(*ast.StructType)
			if !ok {
				continue
			}

			doc := ts.Doc
			if doc == nil {
				doc = gen.Doc
			}

			s.extractStruct(ts, st, doc, abs, res)
		}
	}

	return nil
}

// fileIgnored checks the first comment block of the file for gts:ignore.
func (s *Scanner) fileIgnored(file *ast.File) bool {
	if hasIgnoreDirective(file.Doc) {
		return true
	}

	if len(file.Comments) > 0 && hasIgnoreDirective(file.Comments[0]) {
		return true
	}

	return false
}

func (s *Scanner) extractStruct(ts *ast.TypeSpec, st *ast.StructType, doc *ast.CommentGroup, sourceFile string, res *Result) {
	name := ts.Name.Name

	directive, err := parseDirective(name, doc)
	if err != nil {
		field := ""
		code := diagnostic.CodeInvalidDirective

		var dirErr *DirectiveError
		if errors.As(err, &dirErr) {
			field = dirErr.Attr
			code = dirErr.Code
		}

		res.Diagnostics.AddError(code, err.Error(), name, field)

		return
	}

	if directive == nil {
		return
	}

	decl := &schema.Declaration{
		Name:        name,
		Description: directive.Description,
		SourceFile:  sourceFile,
	}

	if directive.Root {
		decl.Base = schema.RootBase()
	} else {
		decl.Base = schema.InheritsFrom(directive.Parent)
	}

	id, err := gtsid.Parse(directive.ID)
	if err != nil {
		res.Diagnostics.AddError(diagnostic.CodeInvalidDirective,
			fmt.Sprintf("struct %s: attribute \"id\": %v", name, err), name, "id")

		return
	}

	decl.ID = id
	decl.OutputLocation = path.Join(directive.Dir, id.String()+".schema.json")

	decl.GenericParam = typeParamName(ts)
	decl.Fields = structFields(st, decl.GenericParam)

	if directive.Generic != "" {
		decl.Fields[directive.Generic] = schema.GenericSlot()
	}

	if len(directive.Properties) > 0 {
		decl.Properties = directive.Properties
	} else {
		decl.Properties = fieldOrder(st)
	}

	s.log.Debug().
		Str("struct", name).
		Stringer("id", decl.ID).
		Msg("declaration extracted")

	res.Declarations = append(res.Declarations, decl)
}

// typeParamName returns the struct's first type-parameter name, if any.
func typeParamName(ts *ast.TypeSpec) string {
	if ts.TypeParams == nil || len(ts.TypeParams.List) == 0 {
		return ""
	}

	names := ts.TypeParams.List[0].Names
	if len(names) == 0 {
		return ""
	}

	return names[0].Name
}

// structFields maps every exported named field to its translated type.
func structFields(st *ast.StructType, genericParam string) map[string]schema.FieldType {
	fields := make(map[string]schema.FieldType)

	for _, f := range st.Fields.List {
		for _, ident := range f.Names {
			if !ident.IsExported() {
				continue
			}

			fields[fieldPropertyName(ident.Name, f)] = mapExpr(f.Type, genericParam)
		}
	}

	return fields
}

// fieldOrder returns the property names of exported fields in source order.
func fieldOrder(st *ast.StructType) []string {
	var order []string

	for _, f := range st.Fields.List {
		for _, ident := range f.Names {
			if ident.IsExported() {
				order = append(order, fieldPropertyName(ident.Name, f))
			}
		}
	}

	return order
}

// fieldPropertyName prefers the json tag name, falling back to the snake
// cased Go field name.
func fieldPropertyName(goName string, f *ast.Field) string {
	if f.Tag != nil {
		raw := strings.Trim(f.Tag.Value, "`")

		if tag := reflect.StructTag(raw).Get("json"); tag != "" && tag != "-" {
			if name, _, _ := strings.Cut(tag, ","); name != "" {
				return name
			}
		}
	}

	return propertyName(goName)
}
