package descriptor

import (
	"bytes"
	"encoding/json"

	"github.com/VectorBits/clearsign/src/internal/display"
)

const (
	SchemaURL = "https://eips.ethereum.org/assets/eip-7730/erc7730-v1.schema.json"

	// BooleanEnumPath is the enumPath of every bool field.
	BooleanEnumPath = "$.metadata.enums.boolean"
	booleanEnumName = "boolean"
)

// Descriptor is an ERC-7730 calldata descriptor.
type Descriptor struct {
	Schema   string   `json:"$schema"`
	Context  Context  `json:"context"`
	Metadata Metadata `json:"metadata"`
	Display  Display  `json:"display"`
}

type Context struct {
	ID       string          `json:"$id"`
	Contract ContractContext `json:"contract"`
}

type ContractContext struct {
	Deployments []Deployment `json:"deployments"`
}

type Deployment struct {
	ChainID int64  `json:"chainId"`
	Address string `json:"address"`
}

type Metadata struct {
	Owner        string                       `json:"owner"`
	ContractName string                       `json:"contractName"`
	Info         Info                         `json:"info"`
	Enums        map[string]map[string]string `json:"enums,omitempty"`
}

type Info struct {
	URL       string `json:"url"`
	LegalName string `json:"legalName"`
}

type Display struct {
	Formats Formats `json:"formats"`
}

// FormatSpec describes how one function call is displayed.
type FormatSpec struct {
	Intent             string      `json:"intent"`
	Fields             []FieldSpec `json:"fields"`
	InterpolatedIntent string      `json:"interpolatedIntent,omitempty"`
}

// FieldSpec describes one parameter. A field with non-nil Fields is a
// container (array parameters) and carries no format.
type FieldSpec struct {
	Path   string         `json:"path"`
	Label  string         `json:"label"`
	Format display.Format `json:"format,omitempty"`
	Params *FieldParams   `json:"params,omitempty"`
	Fields []FieldSpec    `json:"fields,omitempty"`
}

// IsContainer reports whether the field groups nested fields.
func (f FieldSpec) IsContainer() bool {
	return f.Fields != nil
}

func (f FieldSpec) MarshalJSON() ([]byte, error) {
	if f.IsContainer() {
		return marshal(struct {
			Path   string      `json:"path"`
			Label  string      `json:"label"`
			Fields []FieldSpec `json:"fields"`
		}{f.Path, f.Label, f.Fields})
	}
	type plain FieldSpec
	return marshal(plain(f))
}

type FieldParams struct {
	TokenPath string   `json:"tokenPath,omitempty"`
	Types     []string `json:"types,omitempty"`
	Sources   []string `json:"sources,omitempty"`
	EnumPath  string   `json:"enumPath,omitempty"`
}

// Formats maps signatures to their FormatSpec and serializes them in
// insertion order.
type Formats struct {
	keys   []string
	values map[string]FormatSpec
}

// Set stores spec under sig. Re-setting an existing key replaces its value
// but keeps its original position; replaced reports whether that happened.
func (f *Formats) Set(sig string, spec FormatSpec) (replaced bool) {
	if f.values == nil {
		f.values = make(map[string]FormatSpec)
	}
	if _, ok := f.values[sig]; ok {
		replaced = true
	} else {
		f.keys = append(f.keys, sig)
	}
	f.values[sig] = spec
	return replaced
}

func (f *Formats) get(sig string) (FormatSpec, bool) {
	spec, ok := f.values[sig]
	return spec, ok
}

// Keys returns the signatures in insertion order.
func (f *Formats) Keys() []string {
	out := make([]string, len(f.keys))
	copy(out, f.keys)
	return out
}

func (f *Formats) Len() int {
	return len(f.keys)
}

func (f Formats) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range f.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := marshal(f.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// marshal encodes v without HTML escaping so intents keep '&', '<' and '>'.
func marshal(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
