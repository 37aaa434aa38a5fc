package contend

import (
	"fmt"
	"regexp"
)

// Registry is an insertion-ordered collection of tests. It is populated
// explicitly during suite startup and must not be mutated once dispatch
// begins; registration order is the declaration order used for reports.
type Registry struct {
	tests []Test
	names map[string]struct{}
}

// NewRegistry returns an empty test registry.
func NewRegistry() *Registry {
	return &Registry{names: make(map[string]struct{})}
}

// Register adds a test. The declaration site is captured from the caller and
// the declaration index is the number of previously registered tests.
func (r *Registry) Register(name string, fn TestFunc) error {
	source, line := callerSite(1)
	return r.register(source, line, name, fn)
}

// MustRegister is Register, panicking on error. Intended for suite startup
// where a registration failure is a programming error.
func (r *Registry) MustRegister(name string, fn TestFunc) {
	source, line := callerSite(1)
	if err := r.register(source, line, name, fn); err != nil {
		panic(err)
	}
}

// register records a test under the declaration site its exported entry
// point resolved. Each entry point captures its own caller, so the site is
// the user's registration call regardless of the path taken.
func (r *Registry) register(source string, line int, name string, fn TestFunc) error {
	if name == "" {
		return fmt.Errorf("test name must not be empty")
	}
	if fn == nil {
		return fmt.Errorf("test %q has no function", name)
	}
	if _, ok := r.names[name]; ok {
		return fmt.Errorf("test %q already registered", name)
	}
	r.tests = append(r.tests, Test{
		Identity: Identity{
			Name:   name,
			Source: source,
			Line:   line,
			Index:  len(r.tests),
		},
		Func: fn,
	})
	r.names[name] = struct{}{}
	return nil
}

// Tests returns the registered tests in registration order.
func (r *Registry) Tests() []Test {
	return append([]Test(nil), r.tests...)
}

// Len returns the number of registered tests.
func (r *Registry) Len() int {
	return len(r.tests)
}

// Lookup returns the test registered under name.
func (r *Registry) Lookup(name string) (Test, bool) {
	for _, t := range r.tests {
		if t.Identity.Name == name {
			return t, true
		}
	}
	return Test{}, false
}

// Match returns the tests whose names match the anchored pattern, preserving
// registration order. An empty pattern matches everything.
func (r *Registry) Match(pattern string) ([]Test, error) {
	if pattern == "" {
		return r.Tests(), nil
	}
	re, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		return nil, fmt.Errorf("invalid test pattern %q: %w", pattern, err)
	}
	var matched []Test
	for _, t := range r.tests {
		if re.MatchString(t.Identity.Name) {
			matched = append(matched, t)
		}
	}
	return matched, nil
}
