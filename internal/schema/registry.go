package schema

import (
	"fmt"
)

// FatalError aborts the whole batch: the registry itself cannot be built,
// so no declaration in the run can be trusted to compose.
type FatalError struct {
	Reason string
}

func (e *FatalError) Error() string {
	return "registry: " + e.Reason
}

// Registry indexes a batch of declarations by name. It is built once per
// run and read-only afterwards, which keeps parallel composition safe.
// Parent/child references stay name-based lookups into the flat index,
// never embedded pointers.
type Registry struct {
	decls map[string]*Declaration
	order []string
}

// BuildRegistry indexes the declarations and verifies the reference graph
// is usable: names are unique, every declared parent resolves somewhere in
// the batch, and the InheritsFrom links are acyclic. Any violation is fatal
// for the run.
func BuildRegistry(decls []Declaration) (*Registry, error) {
	reg := &Registry{decls: make(map[string]*Declaration, len(decls))}

	for i := range decls {
		d := &decls[i]
		if d.Name == "" {
			return nil, &FatalError{Reason: "declaration without a name"}
		}

		if _, ok := reg.decls[d.Name]; ok {
			return nil, &FatalError{Reason: fmt.Sprintf("duplicate declaration name %q", d.Name)}
		}

		reg.decls[d.Name] = d
		reg.order = append(reg.order, d.Name)
	}

	for _, name := range reg.order {
		d := reg.decls[name]
		if d.Base.Root {
			continue
		}

		if _, ok := reg.decls[d.Base.Parent]; !ok {
			return nil, &FatalError{
				Reason: fmt.Sprintf("declaration %q inherits from %q, which is not in the batch", name, d.Base.Parent),
			}
		}
	}

	if err := reg.checkCycles(); err != nil {
		return nil, err
	}

	return reg, nil
}

// checkCycles walks the parent links with the two-color method.
func (r *Registry) checkCycles() error {
	const (
		inProgress = 1
		done       = 2
	)

	state := make(map[string]int, len(r.decls))

	var walk func(name string) error

	walk = func(name string) error {
		switch state[name] {
		case done:
			return nil
		case inProgress:
			return &FatalError{Reason: fmt.Sprintf("inheritance cycle through %q", name)}
		}

		state[name] = inProgress

		d := r.decls[name]
		if !d.Base.Root {
			if err := walk(d.Base.Parent); err != nil {
				return err
			}
		}

		state[name] = done

		return nil
	}

	for _, name := range r.order {
		if err := walk(name); err != nil {
			return err
		}
	}

	return nil
}

// Resolve looks up a declaration by name.
func (r *Registry) Resolve(name string) (*Declaration, bool) {
	d, ok := r.decls[name]
	return d, ok
}

// Names returns declaration names in discovery order.
func (r *Registry) Names() []string {
	return r.order
}

// Len returns the number of registered declarations.
func (r *Registry) Len() int {
	return len(r.order)
}
