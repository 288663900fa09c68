package repl

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/lispy/lang"
)

var (
	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
)

// call describes the innermost list enclosing the cursor.
type call struct {
	name     string // head symbol of the list
	argIndex int    // operand under the cursor (0-based); -1 on the head
	inCall   bool   // whether the cursor is inside a list with a symbol head
}

// detectCall finds the innermost unclosed list before cursor and reports its
// head symbol and which operand the cursor is on. Nested lists count as one
// operand each.
func detectCall(input string, cursor int) call {
	cursor = min(max(cursor, 0), len(input))

	open, depth := -1, 0

	for i := cursor; i > 0 && open < 0; {
		r, size := utf8.DecodeLastRuneInString(input[:i])
		i -= size

		switch r {
		case ')':
			depth++
		case '(':
			if depth == 0 {
				open = i
			}

			depth--
		}
	}

	if open < 0 {
		return call{}
	}

	// Top-level items between the paren and the cursor. A nested list is one
	// item; only a symbol item at the front names the call.
	body := input[open+1 : cursor]

	var (
		items     int
		headStart = -1
		inWord    bool
		level     int
	)

	for i, r := range body {
		switch {
		case r == '(':
			if level == 0 {
				items++
			}

			level++
			inWord = false

		case r == ')':
			level--
			inWord = false

		case isWordBoundary(r):
			inWord = false

		case level == 0 && !inWord:
			if items == 0 {
				headStart = i
			}

			items++
			inWord = true
		}
	}

	if headStart < 0 {
		return call{}
	}

	head, _, _ := wordBounds(body, headStart)
	if _, ok := lang.Atom(head).(lang.Symbol); !ok {
		return call{}
	}

	current := items
	if inWord {
		current--
	}

	return call{name: head, argIndex: current - 1, inCall: true}
}

// renderSignatureHint renders "(name param...)" with the parameter at
// argIndex highlighted. A variadic parameter, marked by a trailing "...",
// stays highlighted for every later operand.
func renderSignatureHint(name string, params []string, argIndex int) string {
	var b strings.Builder

	b.WriteString(signatureStyle.Render("("))
	b.WriteString(signatureNameStyle.Render(name))

	for i, param := range params {
		b.WriteString(signatureStyle.Render(" "))

		variadic := strings.HasSuffix(param, "...")
		if argIndex >= 0 && (argIndex == i || (variadic && argIndex > i)) {
			b.WriteString(currentParamStyle.Render(param))
		} else {
			b.WriteString(signatureStyle.Render(param))
		}
	}

	b.WriteString(signatureStyle.Render(")"))

	return b.String()
}
