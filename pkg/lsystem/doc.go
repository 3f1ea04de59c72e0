/*
Package lsystem implements parsing and expansion of Lindenmayer system grammars.

A grammar is written as newline-separated production rules of the form
"symbol:replacement". The first rule is the axiom, the entry point of the
expansion. Expansion rewrites non-terminal symbols recursively up to a depth
bound, while terminal symbols are emitted verbatim into a flat command string
that the turtle package knows how to walk.

The terminal alphabet is fixed: + - > < ( ) [ ] ! | F. The draw command F is
always terminal, so recursion must go through symbols outside that alphabet
(conventionally upper-case letters). A rule keyed by a terminal is accepted by
the parser but never applied.

Expansion is budgeted: the caller supplies the maximum number of F commands
the output may contain, and the expander stops the moment the budget is
exhausted. This keeps pathological grammars (whose output grows exponentially
with depth) from producing unbounded strings.
*/
package lsystem
