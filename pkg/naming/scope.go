/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: scope.go
Description: Declaration scopes. A Scope holds the reserved words and the identifiers already
handed out in one namespace (the fields of one type, or the type names of one file).
*/

package naming

import (
	"github.com/hashicorp/go-set/v3"
)

// Scope hands out unique identifiers in one convention
type Scope struct {
	convention Convention
	reserved   *set.Set[string]
	used       *set.Set[string]
}

// NewScope creates an empty scope
func NewScope(c Convention, reserved []string) *Scope {
	return &Scope{
		convention: c,
		reserved:   set.From(reserved),
		used:       set.New[string](8),
	}
}

// Name normalizes raw in the scope's convention and records the result
func (s *Scope) Name(raw string) string {
	return Normalize(raw, s.convention, s.reserved, s.used)
}

// TypeName normalizes raw as a PascalCase type name and records the result
func (s *Scope) TypeName(raw string) string {
	return NormalizeTypeName(raw, s.reserved, s.used)
}

// Reserve records name as taken without normalizing it
func (s *Scope) Reserve(name string) {
	s.used.Insert(name)
}

// Used reports whether name has been handed out or reserved
func (s *Scope) Used(name string) bool {
	return s.used.Contains(name)
}

// Convention returns the scope's casing
func (s *Scope) Convention() Convention { return s.convention }

// Child returns a fresh scope with the same reserved words, e.g. for the fields of one type
func (s *Scope) Child(c Convention) *Scope {
	return &Scope{convention: c, reserved: s.reserved, used: set.New[string](8)}
}
