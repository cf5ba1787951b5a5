package emit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gts-generator/internal/diagnostic"
	"gts-generator/internal/schema"
)

// File permission constants.
const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// SecurityError reports an output location that failed a safety check.
// Code is one of the diagnostic path codes (path_traversal,
// invalid_extension).
type SecurityError struct {
	Code string
	Path string
	Root string
}

func (e *SecurityError) Error() string {
	if e.Root != "" {
		return fmt.Sprintf("%s: %q escapes root %q", e.Code, e.Path, e.Root)
	}

	return fmt.Sprintf("%s: %q", e.Code, e.Path)
}

// ConflictError reports two declarations resolving to the same output path.
type ConflictError struct {
	Path             string
	FirstDeclaration string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("output path %q already written for declaration %q", e.Path, e.FirstDeclaration)
}

// Emitter writes schema artifacts under a guarded root. It remembers every
// path it has resolved during the run so duplicate targets surface as
// conflicts instead of overwrites. Emitter methods are not safe for
// concurrent use; the batch driver serializes emission.
type Emitter struct {
	sourceRoot   string
	overrideRoot string
	written      map[string]string // resolved path -> declaration name
}

// NewEmitter builds an emitter over the canonicalized source root and the
// optional output override root.
func NewEmitter(sourceRoot, overrideRoot string) (*Emitter, error) {
	canonSource, err := canonicalize(sourceRoot)
	if err != nil {
		return nil, fmt.Errorf("resolving source root %q: %w", sourceRoot, err)
	}

	e := &Emitter{
		sourceRoot: canonSource,
		written:    make(map[string]string),
	}

	if overrideRoot != "" {
		canonOverride, err := canonicalize(overrideRoot)
		if err != nil {
			return nil, fmt.Errorf("resolving output root %q: %w", overrideRoot, err)
		}

		e.overrideRoot = canonOverride
	}

	return e, nil
}

// ResolveOutputPath computes and checks the declaration's target path.
// Without an override root the location is taken relative to the declaring
// source file's directory and must stay inside the source repository root;
// with an override root it is taken relative to, and must stay inside,
// that root. The final component must end in ".json".
func (e *Emitter) ResolveOutputPath(decl *schema.Declaration) (string, error) {
	root := e.overrideRoot
	base := e.overrideRoot

	if root == "" {
		root = e.sourceRoot
		base = filepath.Dir(decl.SourceFile)
	}

	target, err := canonicalize(filepath.Join(base, decl.OutputLocation))
	if err != nil {
		return "", fmt.Errorf("resolving output path for %s: %w", decl.Name, err)
	}

	if !isDescendant(root, target) {
		return "", &SecurityError{Code: diagnostic.CodePathTraversal, Path: target, Root: root}
	}

	if !strings.HasSuffix(filepath.Base(target), ".json") {
		return "", &SecurityError{Code: diagnostic.CodeInvalidExtension, Path: target}
	}

	return target, nil
}

// Emit resolves the path, rejects conflicts with earlier emissions, and
// writes the document atomically. No partial file is left behind on failure.
func (e *Emitter) Emit(decl *schema.Declaration, doc map[string]any) (string, error) {
	target, err := e.ResolveOutputPath(decl)
	if err != nil {
		return "", err
	}

	if first, ok := e.written[target]; ok {
		return "", &ConflictError{Path: target, FirstDeclaration: first}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serializing artifact for %s: %w", decl.Name, err)
	}

	if err := writeFileAtomic(target, append(data, '\n')); err != nil {
		return "", fmt.Errorf("writing %s: %w", target, err)
	}

	e.written[target] = decl.Name

	return target, nil
}

// writeFileAtomic writes via a temp file in the target directory plus
// rename, creating missing parent directories first.
func writeFileAtomic(target string, data []byte) error {
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".gts-*.tmp")
	if err != nil {
		return err
	}

	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)

		return err
	}

	if err := tmp.Chmod(filePerm); err != nil {
		tmp.Close()
		os.Remove(tmpName)

		return err
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return err
	}

	return nil
}

// canonicalize resolves p to an absolute, symlink-free path. Missing path
// components are allowed: the nearest existing ancestor is resolved and the
// remainder re-joined, so not-yet-created output files still canonicalize.
func canonicalize(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}

	cur := abs
	rest := ""

	for {
		resolved, err := filepath.EvalSymlinks(cur)
		if err == nil {
			return filepath.Join(resolved, rest), nil
		}

		if !os.IsNotExist(err) {
			return "", err
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return "", err
		}

		rest = filepath.Join(filepath.Base(cur), rest)
		cur = parent
	}
}

// isDescendant reports whether p is root itself or sits below it.
func isDescendant(root, p string) bool {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return false
	}

	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
