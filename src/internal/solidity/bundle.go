package solidity

import (
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"
)

// StandardInput is the solc standard-JSON input format, as served by block
// explorers for multi-file verified contracts.
type StandardInput struct {
	Language string                 `json:"language"`
	Sources  map[string]SourceFile  `json:"sources"`
	Settings map[string]interface{} `json:"settings,omitempty"`
}

type SourceFile struct {
	Content string `json:"content"`
}

// IsBundle reports whether source looks like a multi-file JSON bundle rather
// than plain Solidity.
func IsBundle(source string) bool {
	trimmed := strings.TrimSpace(source)
	return strings.HasPrefix(trimmed, "{") && strings.Contains(trimmed, "\"content\"")
}

// ExtractBundle picks the main source file out of a JSON bundle and returns
// its path and content. contractHint, when set, favours a file named after
// the contract.
func ExtractBundle(source, contractHint string) (string, string, error) {
	normalized := normalizeBundle(source)

	var input StandardInput
	if err := json.Unmarshal([]byte(normalized), &input); err != nil || len(input.Sources) == 0 {
		var direct map[string]SourceFile
		if err := json.Unmarshal([]byte(normalized), &direct); err != nil || len(direct) == 0 {
			return "", "", fmt.Errorf("invalid multi-file JSON bundle")
		}
		input.Sources = direct
	}

	main := selectMainFile(input.Sources, contractHint)
	if main == "" {
		return "", "", fmt.Errorf("bundle has no source files")
	}
	content := strings.ReplaceAll(input.Sources[main].Content, "\r\n", "\n")
	return main, content, nil
}

// normalizeBundle strips the extra braces explorers wrap around standard
// JSON ("{{ ... }}").
func normalizeBundle(source string) string {
	trimmed := strings.TrimSpace(source)
	if strings.HasPrefix(trimmed, "{{") && strings.HasSuffix(trimmed, "}}") {
		return trimmed[1 : len(trimmed)-1]
	}
	return trimmed
}

func selectMainFile(sources map[string]SourceFile, contractHint string) string {
	var candidates []string
	for p := range sources {
		clean := strings.TrimPrefix(strings.TrimPrefix(p, "./"), "/")
		if strings.HasPrefix(clean, "@") || strings.Contains(clean, "node_modules") {
			continue
		}
		candidates = append(candidates, p)
	}
	// deterministic tie-breaking
	sort.Strings(candidates)

	var (
		best     string
		maxScore int
	)
	for _, cand := range candidates {
		score := 100

		if contractHint != "" {
			base := strings.TrimSuffix(path.Base(cand), ".sol")
			if strings.EqualFold(base, contractHint) {
				score += 10000
			} else if strings.Contains(strings.ToLower(base), strings.ToLower(contractHint)) {
				score += 5000
			}
		}

		lower := strings.ToLower(cand)
		if strings.Contains(lower, "interface") {
			score -= 50
		}
		if strings.Contains(lower, "abstract") {
			score -= 30
		}
		if strings.Contains(lower, "test") {
			score -= 80
		}
		if strings.Contains(lower, "mock") {
			score -= 80
		}

		sizeBonus := len(sources[cand].Content) / 100
		if sizeBonus > 50 {
			sizeBonus = 50
		}
		score += sizeBonus

		if score > maxScore {
			maxScore = score
			best = cand
		}
	}
	if best != "" {
		return best
	}
	if len(candidates) > 0 {
		return candidates[0]
	}

	all := make([]string, 0, len(sources))
	for p := range sources {
		all = append(all, p)
	}
	sort.Strings(all)
	if len(all) > 0 {
		return all[0]
	}
	return ""
}
