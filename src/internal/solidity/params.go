package solidity

import (
	"regexp"
	"strings"
)

var (
	storageLocationRe = regexp.MustCompile(`\b(memory|calldata|storage)\b`)
	addressPayableRe  = regexp.MustCompile(`\baddress\s+payable\b`)
	paramRe           = regexp.MustCompile(`^\s*(\w+(?:\[\])?)\s+(\w+)`)
)

// SplitParams splits a parameter list on commas outside () and [] nesting.
func SplitParams(list string) []string {
	var (
		parts   []string
		current strings.Builder
		depth   int
	)
	for _, r := range list {
		switch {
		case r == '(' || r == '[':
			depth++
			current.WriteRune(r)
		case r == ')' || r == ']':
			depth--
			current.WriteRune(r)
		case r == ',' && depth == 0:
			parts = append(parts, current.String())
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	if current.Len() > 0 {
		parts = append(parts, current.String())
	}
	return parts
}

// ParseParams parses a raw parameter list. Segments that do not look like
// "type name" (unnamed parameters, tuples, fixed-size arrays) are dropped.
func ParseParams(list string) []Parameter {
	if strings.TrimSpace(list) == "" {
		return nil
	}

	var params []Parameter
	for _, part := range SplitParams(list) {
		if p, ok := parseParam(part); ok {
			params = append(params, p)
		}
	}
	return params
}

func parseParam(segment string) (Parameter, bool) {
	segment = strings.TrimSpace(segment)
	if segment == "" {
		return Parameter{}, false
	}
	segment = storageLocationRe.ReplaceAllString(segment, "")
	segment = addressPayableRe.ReplaceAllString(segment, "address")

	m := paramRe.FindStringSubmatch(segment)
	if m == nil {
		return Parameter{}, false
	}
	return Parameter{Name: m[2], Type: m[1]}, true
}
