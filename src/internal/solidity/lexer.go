package solidity

// TokenKind classifies a lexical token.
type TokenKind int

const (
	TokenIdent TokenKind = iota
	TokenNumber
	TokenString
	TokenPunct
	TokenLineComment
	TokenBlockComment
)

func (k TokenKind) String() string {
	switch k {
	case TokenIdent:
		return "ident"
	case TokenNumber:
		return "number"
	case TokenString:
		return "string"
	case TokenPunct:
		return "punct"
	case TokenLineComment:
		return "line-comment"
	case TokenBlockComment:
		return "block-comment"
	default:
		return "unknown"
	}
}

// Token is a slice of the source with its byte range and starting line.
type Token struct {
	Kind  TokenKind
	Text  string
	Start int
	End   int
	Line  int
}

// IsComment reports whether the token is a line or block comment.
func (t Token) IsComment() bool {
	return t.Kind == TokenLineComment || t.Kind == TokenBlockComment
}

func (t Token) is(kind TokenKind, text string) bool {
	return t.Kind == kind && t.Text == text
}

type lexState int

const (
	stateCode lexState = iota
	stateLineComment
	stateBlockComment
	stateString
)

// Tokenize splits Solidity source into tokens with a four-state machine
// (code, line comment, block comment, string). Keywords that appear inside
// comments or string literals never surface as identifiers.
// Unterminated comments and strings are closed at end of input; a string
// is also closed at a raw newline.
func Tokenize(src string) []Token {
	var (
		tokens    []Token
		state     = stateCode
		start     int
		startLine int
		quote     byte
		line      = 1
	)

	emit := func(kind TokenKind, from, to, ln int) {
		tokens = append(tokens, Token{Kind: kind, Text: src[from:to], Start: from, End: to, Line: ln})
	}

	for i := 0; i < len(src); i++ {
		c := src[i]
		switch state {
		case stateCode:
			switch {
			case c == '\n':
				line++
			case c == ' ' || c == '\t' || c == '\r' || c == '\f' || c == '\v':
			case c == '/' && i+1 < len(src) && src[i+1] == '/':
				state, start, startLine = stateLineComment, i, line
				i++
			case c == '/' && i+1 < len(src) && src[i+1] == '*':
				state, start, startLine = stateBlockComment, i, line
				i++
			case c == '"' || c == '\'':
				state, start, startLine, quote = stateString, i, line, c
			case isIdentStart(c):
				j := i + 1
				for j < len(src) && isIdentPart(src[j]) {
					j++
				}
				emit(TokenIdent, i, j, line)
				i = j - 1
			case isDigit(c):
				j := i + 1
				for j < len(src) && (isIdentPart(src[j]) || src[j] == '.') {
					j++
				}
				emit(TokenNumber, i, j, line)
				i = j - 1
			default:
				emit(TokenPunct, i, i+1, line)
			}

		case stateLineComment:
			if c == '\n' {
				end := i
				if end > start && src[end-1] == '\r' {
					end--
				}
				emit(TokenLineComment, start, end, startLine)
				state = stateCode
				line++
			}

		case stateBlockComment:
			if c == '\n' {
				line++
			}
			if c == '*' && i+1 < len(src) && src[i+1] == '/' {
				emit(TokenBlockComment, start, i+2, startLine)
				state = stateCode
				i++
			}

		case stateString:
			switch c {
			case '\\':
				if i+1 < len(src) && src[i+1] == '\n' {
					line++
				}
				i++
			case '\n':
				emit(TokenString, start, i, startLine)
				state = stateCode
				line++
			case quote:
				emit(TokenString, start, i+1, startLine)
				state = stateCode
			}
		}
	}

	switch state {
	case stateLineComment:
		emit(TokenLineComment, start, len(src), startLine)
	case stateBlockComment:
		emit(TokenBlockComment, start, len(src), startLine)
	case stateString:
		emit(TokenString, start, len(src), startLine)
	}

	return tokens
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
