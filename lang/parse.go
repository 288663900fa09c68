package lang

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
)

// parser is a recursive descent parser over a token slice with one token of
// lookahead.
type parser struct {
	tokens []Token
	pos    int
	depth  int // open lists at the current position
}

func (p *parser) eof() bool { return p.pos >= len(p.tokens) }

func (p *parser) peek() Token { return p.tokens[p.pos] }

func (p *parser) advance() Token {
	tok := p.tokens[p.pos]
	p.pos++

	return tok
}

// term reads one complete term starting at the current token.
func (p *parser) term() (Expr, error) {
	if p.eof() {
		return nil, ErrUnexpectedEOF.With(
			slog.Int("token", p.pos),
			slog.Int("depth", p.depth),
		)
	}

	switch tok := p.advance(); tok {
	case TokenOpen:
		return p.list(p.pos - 1)

	case TokenClose:
		return nil, ErrUnexpectedClose.With(slog.Int("token", p.pos-1))

	default:
		return Atom(string(tok)), nil
	}
}

// list collects terms up to the close paren matching the open paren at start.
func (p *parser) list(start int) (Expr, error) {
	p.depth++
	defer func() { p.depth-- }()

	list := List{}

	for {
		if p.eof() {
			return nil, ErrUnexpectedEOF.With(
				slog.Int("open", start),
				slog.Int("depth", p.depth),
			)
		}

		if p.peek() == TokenClose {
			p.advance()

			return list, nil
		}

		x, err := p.term()
		if err != nil {
			return nil, err
		}

		list = append(list, x)
	}
}

// Atom converts token text to an [Integer] if it reads as a base-10 integer,
// else to a [Real] if it reads as a decimal floating-point number, else to a
// [Symbol]. Underscores may separate digits, as in 1_000.
//
// Integer text too large for int64 becomes a Real, and real text beyond the
// float64 range becomes an infinity.
func Atom(text string) Expr {
	digits, ok := numeral(text)
	if !ok {
		return Symbol(text)
	}

	if n, err := strconv.ParseInt(digits, 10, 64); err == nil {
		return Integer(n)
	}

	f, err := strconv.ParseFloat(digits, 64)
	if err == nil || errors.Is(err, strconv.ErrRange) {
		return Real(f)
	}

	return Symbol(text)
}

// numeral returns text without digit separators. It reports false for text
// that cannot be a decimal number: a hexadecimal prefix, or an underscore
// not between two digits.
func numeral(text string) (string, bool) {
	body := text
	if body != "" && (body[0] == '+' || body[0] == '-') {
		body = body[1:]
	}

	if len(body) >= 2 && body[0] == '0' && (body[1] == 'x' || body[1] == 'X') {
		return "", false
	}

	if !strings.Contains(text, "_") {
		return text, true
	}

	for i := range len(text) {
		if text[i] != '_' {
			continue
		}

		if i == 0 || i == len(text)-1 || !isDigit(text[i-1]) || !isDigit(text[i+1]) {
			return "", false
		}
	}

	return strings.ReplaceAll(text, "_", ""), true
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

// ParseTokens reads one term from the front of tokens and returns it with the
// tokens that follow it.
func ParseTokens(tokens []Token) (Expr, []Token, error) {
	p := parser{tokens: tokens}

	x, err := p.term()
	if err != nil {
		return nil, tokens, err
	}

	return x, tokens[p.pos:], nil
}

// Parse reads exactly one complete term from text.
func Parse(text string) (Expr, error) {
	tokens := Tokenize(text)

	x, rest, err := ParseTokens(tokens)
	if err != nil {
		return nil, err
	}

	if len(rest) > 0 {
		if rest[0] == TokenClose {
			return nil, ErrUnexpectedClose.With(
				slog.Int("token", len(tokens)-len(rest)),
			)
		}

		return nil, ErrTrailingInput.
			Detail("%s", rest[0]).
			With(slog.Int("remaining", len(rest)))
	}

	return x, nil
}

// ParseAll reads every top-level term in text, in order. Empty input yields
// no terms and no error.
func ParseAll(text string) ([]Expr, error) {
	p := parser{tokens: Tokenize(text)}

	var forms []Expr

	for !p.eof() {
		x, err := p.term()
		if err != nil {
			return nil, err
		}

		forms = append(forms, x)
	}

	return forms, nil
}
