package lsystem

import "strings"

// Expansion is the result of expanding a grammar: the flat command string
// plus counters describing how the expansion went.
type Expansion struct {
	// Commands is the emitted terminal string, ready for interpretation.
	Commands string `json:"commands" msgpack:"commands"`
	// DrawCount is the number of F commands in Commands. It never exceeds
	// the budget passed to Expand.
	DrawCount int `json:"draw_count" msgpack:"draw_count"`
	// Truncated is true when the expansion stopped early because the draw
	// budget ran out while input remained.
	Truncated bool `json:"truncated" msgpack:"truncated"`
	// Dropped counts symbols that were neither terminal nor bound to a
	// rule and were silently discarded.
	Dropped int `json:"dropped" msgpack:"dropped"`
}

// Expand rewrites the grammar into a terminal command string.
//
// Depth bounds the recursion: the axiom replacement is walked at depth 0,
// and a rule symbol found at depth d is only expanded when d+1 < depth.
// Budget bounds the number of F commands in the output; once the budget is
// spent the expansion stops wherever it stands, which makes the output
// length proportional to the budget rather than to the grammar's growth
// rate. Negative depth or budget are treated as zero, so both always yield
// an empty command string.
func (g *Grammar) Expand(depth, budget int) *Expansion {
	if depth < 0 {
		depth = 0
	}
	if budget < 0 {
		budget = 0
	}
	e := &expander{g: g, depth: depth, budget: budget}
	e.walk(g.axiom.Replacement, 0)
	return &Expansion{
		Commands:  e.out.String(),
		DrawCount: e.draws,
		Truncated: e.truncated,
		Dropped:   e.dropped,
	}
}

type expander struct {
	g      *Grammar
	depth  int
	budget int

	out       strings.Builder
	draws     int
	dropped   int
	truncated bool
}

// walk emits the replacement string at depth d, descending into rule
// symbols. Terminal symbols win over rules: a production keyed by a
// terminal is never applied.
func (e *expander) walk(replacement string, d int) {
	for _, c := range replacement {
		if e.draws >= e.budget {
			e.truncated = true
			return
		}
		switch {
		case IsTerminal(c):
			e.out.WriteRune(c)
			if c == Draw {
				e.draws++
			}
		default:
			rule, ok := e.g.Rule(c)
			if !ok {
				e.dropped++
				continue
			}
			if d+1 < e.depth {
				e.walk(rule, d+1)
			}
		}
	}
}
