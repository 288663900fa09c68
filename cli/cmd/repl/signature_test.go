package repl

import (
	"strings"
	"testing"
)

func TestDetectCall(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		cursor     int
		wantName   string
		wantIndex  int
		wantInCall bool
	}{
		{
			name:   "no list",
			input:  "greeting",
			cursor: 8,
		},
		{
			name:   "empty list",
			input:  "(",
			cursor: 1,
		},
		{
			name:       "on head",
			input:      "(+",
			cursor:     2,
			wantName:   "+",
			wantIndex:  -1,
			wantInCall: true,
		},
		{
			name:       "typing first operand",
			input:      "(+ 1",
			cursor:     4,
			wantName:   "+",
			wantIndex:  0,
			wantInCall: true,
		},
		{
			name:       "after first operand",
			input:      "(+ 1 ",
			cursor:     5,
			wantName:   "+",
			wantIndex:  1,
			wantInCall: true,
		},
		{
			name:       "after head",
			input:      "(define ",
			cursor:     8,
			wantName:   "define",
			wantIndex:  0,
			wantInCall: true,
		},
		{
			name:   "closed list",
			input:  "(+ 1 2)",
			cursor: 7,
		},
		{
			name:       "nested list is one operand",
			input:      "(f (g 1) ",
			cursor:     9,
			wantName:   "f",
			wantIndex:  1,
			wantInCall: true,
		},
		{
			name:       "inside nested list",
			input:      "(f (g 1",
			cursor:     7,
			wantName:   "g",
			wantIndex:  0,
			wantInCall: true,
		},
		{
			name:       "open nested list operand",
			input:      "(if (null? xs) ",
			cursor:     15,
			wantName:   "if",
			wantIndex:  1,
			wantInCall: true,
		},
		{
			name:       "cursor before end",
			input:      "(car xs) (cdr ys)",
			cursor:     5,
			wantName:   "car",
			wantIndex:  0,
			wantInCall: true,
		},
		{
			name:   "list head",
			input:  "((lambda (x) x) 1",
			cursor: 17,
		},
		{
			name:   "number head",
			input:  "(1 2 ",
			cursor: 5,
		},
		{
			name:       "multiline",
			input:      "(define (sq x)\n  (* x ",
			cursor:     22,
			wantName:   "*",
			wantIndex:  1,
			wantInCall: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detectCall(tt.input, tt.cursor)

			if got.name != tt.wantName || got.inCall != tt.wantInCall ||
				(tt.wantInCall && got.argIndex != tt.wantIndex) {
				t.Errorf("detectCall(%q, %d) = %+v, want {name:%s argIndex:%d inCall:%v}",
					tt.input, tt.cursor, got, tt.wantName, tt.wantIndex, tt.wantInCall)
			}
		})
	}
}

func TestRenderSignatureHint(t *testing.T) {
	tests := []struct {
		name     string
		params   []string
		argIndex int
		want     string // highlighted parameter, or "" for none
	}{
		{"head", []string{"x", "y"}, -1, ""},
		{"first", []string{"x", "y"}, 0, "x"},
		{"second", []string{"x", "y"}, 1, "y"},
		{"past end", []string{"x", "y"}, 2, ""},
		{"variadic", []string{"x", "rest..."}, 4, "rest..."},
		{"no params", nil, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := stripStyles(renderSignatureHint("f", tt.params, tt.argIndex))

			want := "(" + strings.Join(append([]string{"f"}, tt.params...), " ") + ")"
			if got != want {
				t.Errorf("renderSignatureHint() = %q, want %q", got, want)
			}

			if tt.want == "" {
				return
			}

			idx := -1
			for i, p := range tt.params {
				if p == tt.want {
					idx = i
				}
			}

			if rendered := currentParamStyle.Render(tt.want); !strings.Contains(
				renderSignatureHint("f", tt.params, tt.argIndex), rendered) {
				t.Errorf("parameter %d (%s) not highlighted", idx, tt.want)
			}
		})
	}
}
