/*
Package turtle interprets expanded L-system command strings as 2D turtle
graphics, producing line segments instead of drawing to a surface.

The turtle starts at the origin heading 90 degrees (straight up) and walks
the command string one rune at a time: F advances and may emit a segment,
+ and - turn, > and < scale the step length, ) and ( scale the turn angle,
[ and ] save and restore the full pose, ! mirrors the turn direction and |
turns around. Runes outside the command alphabet are ignored.

Emission is decoupled from movement by the roughness stride: with
Roughness R only every R-th advance emits a segment, spanning from the
previously emitted point, which thins dense paths without changing the walk.
Output coordinates are mirrored across the vertical axis (x is negated) to
match screen-space conventions of the hosts this geometry feeds.
*/
package turtle
