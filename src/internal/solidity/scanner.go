package solidity

import (
	"strings"
)

// Scanner walks the token stream of a single source file. It is not safe for
// concurrent use; create one per source.
type Scanner struct {
	src    string
	tokens []Token

	// Dropped counts function candidates that could not be parsed or were
	// filtered out (non-public visibility, view/pure, missing name).
	Dropped int
}

func NewScanner(src string) *Scanner {
	return &Scanner{src: src, tokens: Tokenize(src)}
}

// Scan extracts the first contract of src together with its public and
// external state-changing functions.
func Scan(src string) (*Contract, error) {
	return NewScanner(src).Scan()
}

func (s *Scanner) Scan() (*Contract, error) {
	name, ok := s.contractName()
	if !ok {
		return nil, ErrNoContractFound
	}
	return &Contract{
		Name:      name,
		Pragma:    PragmaVersion(s.src),
		Functions: s.functions(),
	}, nil
}

// contractName finds "contract <Name>" followed by "is" or "{".
func (s *Scanner) contractName() (string, bool) {
	for i, tok := range s.tokens {
		if !tok.is(TokenIdent, "contract") {
			continue
		}
		n := s.nextCode(i)
		if n < 0 || s.tokens[n].Kind != TokenIdent {
			continue
		}
		after := s.nextCode(n)
		if after < 0 {
			continue
		}
		if s.tokens[after].is(TokenPunct, "{") || s.tokens[after].is(TokenIdent, "is") {
			return s.tokens[n].Text, true
		}
	}
	return "", false
}

func (s *Scanner) functions() []Function {
	var out []Function
	for i := 0; i < len(s.tokens); i++ {
		if !s.tokens[i].is(TokenIdent, "function") {
			continue
		}
		header, end, ok := s.header(i)
		if !ok {
			break
		}
		fn, ok := parseHeader(header)
		if ok {
			fn.Doc = s.docBefore(i)
			fn.Line = s.tokens[i].Line
			out = append(out, fn)
		} else {
			s.Dropped++
		}
		// nested function types inside the header are part of this candidate
		i = end
	}
	return out
}

// header collects the code tokens of a function header starting at the
// "function" keyword. The header ends at the first "{" or ";" once the
// parameter list has opened and closed again. end is the index of that
// terminator.
func (s *Scanner) header(from int) (header []Token, end int, ok bool) {
	depth := 0
	started := false
	for i := from; i < len(s.tokens); i++ {
		tok := s.tokens[i]
		if tok.IsComment() {
			continue
		}
		if tok.Kind == TokenPunct {
			switch tok.Text {
			case "(":
				depth++
				started = true
			case ")":
				depth--
			case "{", ";":
				if started && depth == 0 {
					return header, i, true
				}
			}
		}
		header = append(header, tok)
	}
	return nil, 0, false
}

// docBefore returns the block comment immediately preceding the token at
// idx. Line comments in between are skipped; any code aborts the lookup.
func (s *Scanner) docBefore(idx int) string {
	for j := idx - 1; j >= 0; j-- {
		switch s.tokens[j].Kind {
		case TokenLineComment:
			continue
		case TokenBlockComment:
			return s.tokens[j].Text
		default:
			return ""
		}
	}
	return ""
}

func (s *Scanner) nextCode(i int) int {
	for j := i + 1; j < len(s.tokens); j++ {
		if !s.tokens[j].IsComment() {
			return j
		}
	}
	return -1
}

func parseHeader(header []Token) (Function, bool) {
	if len(header) < 3 || header[1].Kind != TokenIdent || !header[2].is(TokenPunct, "(") {
		return Function{}, false
	}

	closeIdx := matchParen(header, 2)
	if closeIdx < 0 {
		return Function{}, false
	}

	var (
		visibility Visibility
		mutable    = true
		depth      int
	)
	for _, tok := range header[closeIdx+1:] {
		if tok.Kind == TokenPunct {
			switch tok.Text {
			case "(":
				depth++
			case ")":
				depth--
			}
			continue
		}
		if depth != 0 || tok.Kind != TokenIdent {
			continue
		}
		switch tok.Text {
		case "external", "public":
			if visibility == "" {
				visibility = Visibility(tok.Text)
			}
		case "view", "pure":
			mutable = false
		}
	}
	if visibility == "" || !mutable {
		return Function{}, false
	}

	return Function{
		Name:       header[1].Text,
		Params:     ParseParams(joinTokens(header[3:closeIdx])),
		Visibility: visibility,
	}, true
}

func matchParen(tokens []Token, open int) int {
	depth := 0
	for i := open; i < len(tokens); i++ {
		if tokens[i].Kind != TokenPunct {
			continue
		}
		switch tokens[i].Text {
		case "(":
			depth++
		case ")":
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// joinTokens rebuilds source text from code tokens, collapsing any gap
// (whitespace or a comment) into one space.
func joinTokens(tokens []Token) string {
	var sb strings.Builder
	for i, tok := range tokens {
		if i > 0 && tok.Start > tokens[i-1].End {
			sb.WriteByte(' ')
		}
		sb.WriteString(tok.Text)
	}
	return sb.String()
}
