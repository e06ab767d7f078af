package display

import (
	"regexp"
	"strings"
	"unicode"
)

var abbreviations = map[string]string{
	"bps":  "Basis Points",
	"addr": "Address",
	"amt":  "Amount",
	"num":  "Number",
}

var upperRe = regexp.MustCompile(`([A-Z])`)

// Label turns a parameter identifier into a display label. camelCase is split
// on every upper-case letter, so acronyms come out spaced ("URL" -> "U R L").
func Label(name string) string {
	if full, ok := abbreviations[strings.ToLower(name)]; ok {
		return full
	}
	spaced := strings.TrimSpace(upperRe.ReplaceAllString(name, " $1"))
	return titleCase(spaced)
}

// titleCase upper-cases every letter that follows a non-letter and
// lower-cases the others.
func titleCase(s string) string {
	var (
		sb         strings.Builder
		prevLetter bool
	)
	sb.Grow(len(s))
	for _, r := range s {
		isLetter := unicode.IsLetter(r)
		switch {
		case isLetter && !prevLetter:
			sb.WriteRune(unicode.ToUpper(r))
		case isLetter:
			sb.WriteRune(unicode.ToLower(r))
		default:
			sb.WriteRune(r)
		}
		prevLetter = isLetter
	}
	return sb.String()
}
