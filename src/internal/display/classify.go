// Package display derives how a parameter is rendered on a signer screen:
// its format tag, its label and the intent of the enclosing function.
package display

import (
	"strings"
)

// Format is an ERC-7730 field format tag.
type Format string

const (
	FormatAddressName Format = "addressName"
	FormatTokenAmount Format = "tokenAmount"
	FormatDate        Format = "date"
	FormatDuration    Format = "duration"
	FormatRaw         Format = "raw"
	FormatCalldata    Format = "calldata"
	FormatEnum        Format = "enum"
)

// NeedsTokenPath reports whether fields of this format should reference the
// token address parameter of the same function.
func (f Format) NeedsTokenPath() bool {
	return f == FormatTokenAmount
}

// Rule is one entry of the classification table. Rules are evaluated in
// order and the first match wins.
type Rule struct {
	Name   string
	Match  func(typ, lowerName string) bool
	Format Format
}

var rules = []Rule{
	{Name: "address", Match: typeIs("address"), Format: FormatAddressName},
	{Name: "integer-amount", Match: integerNamed("amount", "value", "balance"), Format: FormatTokenAmount},
	{Name: "integer-date", Match: integerNamed("timestamp", "time", "deadline"), Format: FormatDate},
	{Name: "integer-duration", Match: integerNamed("duration", "period"), Format: FormatDuration},
	// Basis points and percentages have no dedicated format yet.
	{Name: "integer-basis-points", Match: integerNamed("bps", "basis", "percent"), Format: FormatRaw},
	{Name: "integer", Match: isInteger, Format: FormatRaw},
	{Name: "bytes", Match: typeIs("bytes"), Format: FormatCalldata},
	{Name: "bytes-fixed", Match: hasPrefix("bytes"), Format: FormatRaw},
	{Name: "string", Match: typeIs("string"), Format: FormatRaw},
	{Name: "bool", Match: typeIs("bool"), Format: FormatEnum},
	{Name: "array", Match: isArray, Format: FormatRaw},
}

var defaultRule = Rule{Name: "default", Match: func(string, string) bool { return true }, Format: FormatRaw}

// Classify maps a declared type and parameter name to a format tag.
func Classify(typ, name string) Format {
	return Explain(typ, name).Format
}

// Explain returns the rule that decides the format of (typ, name).
func Explain(typ, name string) Rule {
	lower := strings.ToLower(name)
	for _, r := range rules {
		if r.Match(typ, lower) {
			return r
		}
	}
	return defaultRule
}

func typeIs(want string) func(string, string) bool {
	return func(typ, _ string) bool { return typ == want }
}

func hasPrefix(prefix string) func(string, string) bool {
	return func(typ, _ string) bool { return strings.HasPrefix(typ, prefix) }
}

func isInteger(typ, _ string) bool {
	return strings.HasPrefix(typ, "uint") || strings.HasPrefix(typ, "int")
}

func isArray(typ, _ string) bool {
	return strings.HasSuffix(typ, "[]")
}

func integerNamed(patterns ...string) func(string, string) bool {
	return func(typ, lowerName string) bool {
		return isInteger(typ, lowerName) && containsAny(lowerName, patterns)
	}
}

func containsAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
