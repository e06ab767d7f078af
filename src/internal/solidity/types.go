package solidity

import (
	"errors"
	"strings"
)

// ErrNoContractFound is returned when the source has no contract declaration.
var ErrNoContractFound = errors.New("could not find contract declaration")

type Visibility string

const (
	VisibilityExternal Visibility = "external"
	VisibilityPublic   Visibility = "public"
)

// Parameter is a declared function parameter. Type is kept exactly as written
// after storage locations are removed (e.g. "uint256[]", "uint").
type Parameter struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// IsArray reports whether the declared type is a dynamic array.
func (p Parameter) IsArray() bool {
	return strings.HasSuffix(p.Type, "[]")
}

// Function is a public or external, state-changing function.
type Function struct {
	Name       string      `json:"name"`
	Params     []Parameter `json:"params"`
	Visibility Visibility  `json:"visibility"`
	Doc        string      `json:"doc,omitempty"`
	Line       int         `json:"line"`
}

// Signature returns the canonical display key name(type1,type2,...).
func (f Function) Signature() string {
	types := make([]string, len(f.Params))
	for i, p := range f.Params {
		types[i] = p.Type
	}
	return f.Name + "(" + strings.Join(types, ",") + ")"
}

// Contract is the first contract of a source file and its retained functions.
type Contract struct {
	Name      string     `json:"name"`
	Pragma    string     `json:"pragma,omitempty"`
	Functions []Function `json:"functions"`
}
