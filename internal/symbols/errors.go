package symbols

import (
	"errors"
	"fmt"
	"strings"

	"rial/internal/ast"
)

var (
	// ErrNotFound is returned (wrapped) when no tier of a lookup matches.
	ErrNotFound = errors.New("not found")
	// ErrFrozen is returned when the registry is written after Freeze.
	ErrFrozen = errors.New("registry is frozen")
)

// DuplicateError reports a second declaration under an existing key.
type DuplicateError struct {
	Kind DefKind
	Key  string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate %s %q", e.Kind, e.Key)
}

// AmbiguousError lists every candidate found through different usings.
type AmbiguousError struct {
	Kind       DefKind
	Name       string
	Candidates []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("ambiguous %s %q: candidates %s", e.Kind, e.Name, strings.Join(e.Candidates, ", "))
}

// AccessError reports a match the current module may not see.
type AccessError struct {
	Kind   DefKind
	Key    string
	Access ast.Access
	From   string
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("%s %s %q is not accessible from %s", e.Access, e.Kind, e.Key, e.From)
}
