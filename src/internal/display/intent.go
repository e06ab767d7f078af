package display

import (
	"regexp"
	"strings"

	"github.com/VectorBits/clearsign/src/internal/solidity"
)

type intentPrefix struct {
	prefix string
	intent string
}

// Checked in order; "stake" comes before "unstake" but never shadows it.
var intentPrefixes = []intentPrefix{
	{"transfer", "Transfer tokens"},
	{"approve", "Approve token spending"},
	{"execute", "Execute operation"},
	{"deposit", "Deposit funds"},
	{"withdraw", "Withdraw funds"},
	{"swap", "Swap tokens"},
	{"mint", "Mint tokens"},
	{"burn", "Burn tokens"},
	{"grant", "Grant permissions"},
	{"revoke", "Revoke permissions"},
	{"set", "Update settings"},
	{"update", "Update data"},
	{"claim", "Claim rewards"},
	{"stake", "Stake tokens"},
	{"unstake", "Unstake tokens"},
}

var (
	noticeRe = regexp.MustCompile(`@notice\s+([^@]+)`)

	importantNames = []string{"amount", "value", "to", "recipient", "token"}
)

const maxInterpolated = 2

// Intent describes what calling the function does. A @notice in doc wins;
// otherwise the name prefix table is consulted.
func Intent(name, doc string) string {
	if notice := Notice(doc); notice != "" {
		return notice
	}
	for _, p := range intentPrefixes {
		if strings.HasPrefix(name, p.prefix) {
			return p.intent
		}
	}
	if name == "" {
		return ""
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

// Notice returns the first sentence of the @notice tag in a doc comment with
// comment decoration removed, or "".
func Notice(doc string) string {
	m := noticeRe.FindStringSubmatch(doc)
	if m == nil {
		return ""
	}
	text := strings.TrimSpace(m[1])
	text = strings.ReplaceAll(text, "*/", "")
	text = strings.ReplaceAll(text, "*", "")
	if i := strings.Index(text, "."); i >= 0 {
		text = text[:i]
	}
	return strings.Join(strings.Fields(text), " ")
}

// ImportantParams returns up to two parameter names worth showing in the
// interpolated intent, in declaration order.
func ImportantParams(params []solidity.Parameter) []string {
	var names []string
	for _, p := range params {
		if containsAny(strings.ToLower(p.Name), importantNames) {
			names = append(names, p.Name)
			if len(names) == maxInterpolated {
				break
			}
		}
	}
	return names
}

// InterpolatedIntent appends {name} placeholders for the important
// parameters to intent. ok is false for functions without parameters.
func InterpolatedIntent(intent string, params []solidity.Parameter) (string, bool) {
	if len(params) == 0 {
		return "", false
	}
	names := ImportantParams(params)
	if len(names) == 0 {
		return intent, true
	}
	placeholders := make([]string, len(names))
	for i, n := range names {
		placeholders[i] = "{" + n + "}"
	}
	return intent + " " + strings.Join(placeholders, " "), true
}
