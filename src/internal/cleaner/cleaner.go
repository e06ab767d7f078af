// Package cleaner hides bundled third-party sources in flattened contract
// files so that scanning starts at the project's own code.
package cleaner

import (
	"path"
	"regexp"
	"strings"
)

var LibraryPatterns = []string{
	"@openzeppelin",
	"node_modules",
	"lib/openzeppelin",
	"lib/solmate",
	"lib/forge-std",
	"test/",
	"mock/",
}

var TokenPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^ERC\d{2,}.*\.sol$`),
	regexp.MustCompile(`(?i)^BEP\d{2,}.*\.sol$`),
	regexp.MustCompile(`(?i)^I?ERC20\.sol$`),
}

var fileHeaderRe = regexp.MustCompile(`(?m)^//\s*File:?\s+(.*)$`)

// CleanCode comments out every "// File: <path>" section of a flattened
// source whose path is a known library. The header line is kept. It returns
// the cleaned code and the number of sections commented out.
func CleanCode(code string) (string, int) {
	indexes := fileHeaderRe.FindAllStringSubmatchIndex(code, -1)
	if len(indexes) == 0 {
		return code, 0
	}

	var (
		sb       strings.Builder
		stripped int
	)
	sb.Grow(len(code) + len(indexes)*64)
	sb.WriteString(code[:indexes[0][0]])

	for i, idx := range indexes {
		start, headerEnd := idx[0], idx[1]
		end := len(code)
		if i < len(indexes)-1 {
			end = indexes[i+1][0]
		}

		filePath := strings.TrimSpace(code[idx[2]:idx[3]])
		if !isLibrary(filePath) {
			sb.WriteString(code[start:end])
			continue
		}

		stripped++
		sb.WriteString(code[start:headerEnd])
		sb.WriteString("\n/* --- external library code commented out ---\n")
		// block comments do not nest
		sb.WriteString(strings.ReplaceAll(code[headerEnd:end], "*/", "* /"))
		sb.WriteString("\n*/\n\n")
	}

	return sb.String(), stripped
}

func isLibrary(filePath string) bool {
	lower := strings.ToLower(filePath)
	for _, pattern := range LibraryPatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}

	fileName := path.Base(filePath)
	for _, pattern := range TokenPatterns {
		if pattern.MatchString(fileName) {
			return true
		}
	}
	return false
}
