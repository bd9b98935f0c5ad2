// Package wiring enumerates the wires implied by a cabinetised board
// layout, assigns each a physical cable length, orders them into an
// installation sequence, and diffs a planned layout against one observed
// by a probe.
package wiring

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/sarchlab/boardwire/board"
	"github.com/sarchlab/boardwire/hexcoord"
)

// LevelPlan is a slog level one notch below Info used for plan-generation
// tracing: per-group wire counts and cable assignments. Enable it with a
// handler whose level is set at or below LevelPlan.
const LevelPlan slog.Level = slog.LevelInfo - 1

// PlanError is returned when a wire cannot be assigned a cable: its
// endpoint-to-endpoint distance exceeds every cable in the inventory, or
// every cable long enough forms an arc lower than the minimum arc height.
type PlanError struct {
	Msg string
}

func (e *PlanError) Error() string {
	return "wiring: " + e.Msg
}

// Endpoint identifies one end of a wire: a board and the direction its
// socket faces.
type Endpoint struct {
	Board     *board.Board
	Direction hexcoord.Direction
}

// Wire is an unordered pair of endpoints. For a well-formed wire,
// Dst.Direction == Src.Direction.Opposite().
type Wire struct {
	Src, Dst Endpoint
}

// PlannedWire is a Wire with an assigned cable length, or a nil Length
// marking "disconnect this wire" (repair mode).
type PlannedWire struct {
	Wire
	Length *float64
}

// EnumerateWires emits every wire in boards exactly once, by following the
// North, East and SouthWest direction from each board: these three are the
// canonical "source" sides; the opposite three are always destinations.
func EnumerateWires(boards []board.BoardCoord) []Wire {
	var wires []Wire

	for _, bc := range boards {
		for _, d := range hexcoord.SourceDirections {
			dst := bc.Board.FollowWire(d)
			wires = append(wires, Wire{
				Src: Endpoint{Board: bc.Board, Direction: d},
				Dst: Endpoint{Board: dst, Direction: d.Opposite()},
			})
		}
	}

	return wires
}
