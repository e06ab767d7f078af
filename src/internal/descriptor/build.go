// Package descriptor assembles ERC-7730 calldata descriptors from scanned
// contracts.
package descriptor

import (
	"strings"

	"github.com/VectorBits/clearsign/src/internal/display"
	"github.com/VectorBits/clearsign/src/internal/solidity"
)

const DefaultChainID int64 = 1

// Options carries the deployment and ownership data that cannot be read
// from source.
type Options struct {
	ChainID    int64
	Address    string
	Owner      string
	ContractID string
	URL        string
}

func (o Options) withDefaults(contractName string) Options {
	if o.ChainID == 0 {
		o.ChainID = DefaultChainID
	}
	if o.Owner == "" {
		o.Owner = contractName
	}
	if o.ContractID == "" {
		o.ContractID = contractName
	}
	return o
}

// Collision records a signature emitted by more than one function. The later
// function's format replaced the earlier one.
type Collision struct {
	Signature  string
	FirstLine  int
	SecondLine int
}

// Summary is the per-function outcome of a build, in source order.
type Summary struct {
	Signature string
	Selector  string
	Intent    string
}

type Result struct {
	Descriptor *Descriptor
	Functions  []Summary
	Collisions []Collision
}

// Build assembles the descriptor for contract.
func Build(contract *solidity.Contract, opts Options) *Result {
	opts = opts.withDefaults(contract.Name)

	doc := &Descriptor{
		Schema: SchemaURL,
		Context: Context{
			ID:       opts.ContractID,
			Contract: ContractContext{Deployments: []Deployment{}},
		},
		Metadata: Metadata{
			Owner:        opts.Owner,
			ContractName: contract.Name,
			Info:         Info{URL: opts.URL, LegalName: opts.Owner},
		},
	}
	if opts.Address != "" {
		doc.Context.Contract.Deployments = append(doc.Context.Contract.Deployments, Deployment{
			ChainID: opts.ChainID,
			Address: opts.Address,
		})
	}
	if usesBool(contract.Functions) {
		doc.Metadata.Enums = map[string]map[string]string{
			booleanEnumName: {"0": "False", "1": "True"},
		}
	}

	res := &Result{Descriptor: doc}
	firstLine := make(map[string]int)
	for _, fn := range contract.Functions {
		sig := fn.Signature()
		spec := buildFormat(fn)
		if doc.Display.Formats.Set(sig, spec) {
			res.Collisions = append(res.Collisions, Collision{
				Signature:  sig,
				FirstLine:  firstLine[sig],
				SecondLine: fn.Line,
			})
		} else {
			firstLine[sig] = fn.Line
		}
		res.Functions = append(res.Functions, Summary{
			Signature: sig,
			Selector:  Selector(sig),
			Intent:    spec.Intent,
		})
	}
	return res
}

func buildFormat(fn solidity.Function) FormatSpec {
	spec := FormatSpec{
		Intent: display.Intent(fn.Name, fn.Doc),
		Fields: make([]FieldSpec, 0, len(fn.Params)),
	}
	if interpolated, ok := display.InterpolatedIntent(spec.Intent, fn.Params); ok {
		spec.InterpolatedIntent = interpolated
	}
	for _, p := range fn.Params {
		spec.Fields = append(spec.Fields, buildField(p, fn.Params))
	}
	return spec
}

func buildField(p solidity.Parameter, siblings []solidity.Parameter) FieldSpec {
	field := FieldSpec{Path: p.Name, Label: display.Label(p.Name)}
	if p.IsArray() {
		field.Fields = []FieldSpec{}
		return field
	}

	field.Format = display.Classify(p.Type, p.Name)
	switch {
	case field.Format.NeedsTokenPath():
		if token, ok := tokenParam(siblings); ok {
			field.Params = &FieldParams{TokenPath: token.Name}
		}
	case field.Format == display.FormatAddressName:
		field.Params = &FieldParams{
			Types:   []string{"eoa", "contract"},
			Sources: []string{"trust"},
		}
	case field.Format == display.FormatEnum && p.Type == "bool":
		field.Params = &FieldParams{EnumPath: BooleanEnumPath}
	}
	return field
}

// tokenParam finds the first address parameter whose name mentions "token".
func tokenParam(params []solidity.Parameter) (solidity.Parameter, bool) {
	for _, p := range params {
		if p.Type == "address" && strings.Contains(strings.ToLower(p.Name), "token") {
			return p, true
		}
	}
	return solidity.Parameter{}, false
}

func usesBool(fns []solidity.Function) bool {
	for _, fn := range fns {
		for _, p := range fn.Params {
			if p.Type == "bool" {
				return true
			}
		}
	}
	return false
}
