package lang

import "strings"

// Token is a lexical unit: an open paren, a close paren, or an opaque run of
// other non-whitespace characters.
type Token string

const (
	TokenOpen  Token = "("
	TokenClose Token = ")"
)

var parenSpacer = strings.NewReplacer("(", " ( ", ")", " ) ")

// Tokenize splits text into tokens. Parentheses always stand alone regardless
// of surrounding whitespace; everything else is split on whitespace runs.
func Tokenize(text string) []Token {
	fields := strings.Fields(parenSpacer.Replace(text))
	tokens := make([]Token, len(fields))

	for i, f := range fields {
		tokens[i] = Token(f)
	}

	return tokens
}
