package lsystem

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Draw is the terminal symbol that moves the turtle and emits geometry.
const Draw = 'F'

// terminals is the fixed command alphabet understood by the interpreter.
const terminals = "+-><()[]!|F"

// ErrNoRules is returned when the grammar source contains no usable rule.
var ErrNoRules = errors.New("grammar has no rules")

// ErrMalformedRule is returned when a rule line cannot be split into a
// symbol and a replacement.
var ErrMalformedRule = errors.New("malformed rule")

// IsTerminal reports whether r belongs to the command alphabet.
func IsTerminal(r rune) bool {
	return strings.ContainsRune(terminals, r)
}

// Rule is a single production: a one-symbol head and its replacement string.
type Rule struct {
	Symbol      rune
	Replacement string
}

// Grammar is a parsed rule set. The first rule of the source text is the
// axiom; later rules for the same symbol overwrite earlier ones, but the
// axiom designation never moves.
type Grammar struct {
	axiom Rule
	rules map[rune]string
}

// Parse builds a Grammar from newline-separated "symbol:replacement" lines.
//
// All whitespace (spaces, tabs, carriage returns) is stripped before
// splitting, so rules may be indented or aligned freely. Blank lines are
// skipped. A line without a colon, or with nothing before the first colon,
// is malformed. Only the first rune before the colon names the rule; the
// replacement is everything after the first colon, colons included.
func Parse(source string) (*Grammar, error) {
	g := &Grammar{rules: make(map[rune]string)}
	seen := false

	for i, line := range strings.Split(source, "\n") {
		line = stripSpace(line)
		if line == "" {
			continue
		}
		head, rest, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("line %d %q: %w: missing colon", i+1, line, ErrMalformedRule)
		}
		if head == "" {
			return nil, fmt.Errorf("line %d %q: %w: empty symbol", i+1, line, ErrMalformedRule)
		}
		sym := []rune(head)[0]
		if !seen {
			g.axiom = Rule{Symbol: sym, Replacement: rest}
			seen = true
		}
		g.rules[sym] = rest
	}

	if !seen {
		return nil, ErrNoRules
	}
	// Later lines may have redefined the axiom symbol; the axiom follows.
	g.axiom.Replacement = g.rules[g.axiom.Symbol]
	return g, nil
}

// stripSpace removes every whitespace rune so that "A : F + A" and "A:F+A"
// parse identically.
func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\r', '\v', '\f':
			return -1
		}
		return r
	}, s)
}

// Axiom returns the entry rule of the grammar.
func (g *Grammar) Axiom() Rule {
	return g.axiom
}

// Rule returns the replacement registered for sym.
func (g *Grammar) Rule(sym rune) (string, bool) {
	r, ok := g.rules[sym]
	return r, ok
}

// Len returns the number of distinct rule symbols.
func (g *Grammar) Len() int {
	return len(g.rules)
}

// Symbols returns the rule heads in sorted order, axiom included.
func (g *Grammar) Symbols() []rune {
	out := make([]rune, 0, len(g.rules))
	for sym := range g.rules {
		out = append(out, sym)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// String reassembles the grammar as canonical rule lines, axiom first and
// the remaining rules sorted by symbol.
func (g *Grammar) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%c:%s", g.axiom.Symbol, g.axiom.Replacement)
	for _, sym := range g.Symbols() {
		if sym == g.axiom.Symbol {
			continue
		}
		fmt.Fprintf(&b, "\n%c:%s", sym, g.rules[sym])
	}
	return b.String()
}
