// Package placement transforms a torus of boards in hexagonal coordinates
// into physical (cabinet, frame, board) positions, one pure stage at a
// time.
package placement

import (
	"sort"

	"github.com/sarchlab/boardwire/cabinet"
	"github.com/sarchlab/boardwire/hexcoord"
)

// BoardCoord2D pairs an arbitrary board identity of type B with a
// coordinate of type T. Every stage in this package is a pure, total
// function over []BoardCoord2D[B, T] that preserves board identity and the
// number of entries: boards are never duplicated or dropped, only
// relabelled.
type BoardCoord2D[B any, T any] struct {
	Board B
	Coord T
}

func floorDiv(v, d int) int {
	q := v / d
	if (v%d != 0) && ((v < 0) != (d < 0)) {
		q--
	}
	return q
}

func floorMod(v, m int) int {
	r := v % m
	if r != 0 && (r < 0) != (m < 0) {
		r += m
	}
	return r
}

// HexToCartesian converts hexagonal coordinates into 2D Cartesian
// coordinates preserving the shape of the input: a rhombus of hex
// coordinates maps to a rhombus of Cartesian ones.
func HexToCartesian[B any](in []BoardCoord2D[B, hexcoord.Hexagonal]) []BoardCoord2D[B, hexcoord.Cartesian2D] {
	out := make([]BoardCoord2D[B, hexcoord.Cartesian2D], len(in))
	for i, bc := range in {
		out[i] = BoardCoord2D[B, hexcoord.Cartesian2D]{Board: bc.Board, Coord: hexcoord.HexToCartesian(bc.Coord)}
	}
	return out
}

// HexToSkewedCartesian converts hexagonal coordinates into 2D Cartesian
// coordinates, shearing the rhombus into a ragged rectangle.
func HexToSkewedCartesian[B any](in []BoardCoord2D[B, hexcoord.Hexagonal]) []BoardCoord2D[B, hexcoord.Cartesian2D] {
	out := make([]BoardCoord2D[B, hexcoord.Cartesian2D], len(in))
	for i, bc := range in {
		out[i] = BoardCoord2D[B, hexcoord.Cartesian2D]{Board: bc.Board, Coord: hexcoord.HexToSkewedCartesian(bc.Coord)}
	}
	return out
}

// RhombusToRect takes each coordinate modulo (max+1) along each axis,
// wrapping a rhombus of Cartesian coordinates into a rectangle.
func RhombusToRect[B any](in []BoardCoord2D[B, hexcoord.Cartesian2D]) []BoardCoord2D[B, hexcoord.Cartesian2D] {
	if len(in) == 0 {
		return nil
	}

	maxX, maxY := in[0].Coord.X, in[0].Coord.Y
	for _, bc := range in[1:] {
		if bc.Coord.X > maxX {
			maxX = bc.Coord.X
		}
		if bc.Coord.Y > maxY {
			maxY = bc.Coord.Y
		}
	}

	out := make([]BoardCoord2D[B, hexcoord.Cartesian2D], len(in))
	for i, bc := range in {
		out[i] = BoardCoord2D[B, hexcoord.Cartesian2D]{
			Board: bc.Board,
			Coord: hexcoord.Cartesian2D{
				X: floorMod(bc.Coord.X, maxX+1),
				Y: floorMod(bc.Coord.Y, maxY+1),
			},
		}
	}
	return out
}

// Compress integer-divides each axis by the given divisor, collapsing the
// hexagonal-packing gaps into a dense grid.
func Compress[B any](in []BoardCoord2D[B, hexcoord.Cartesian2D], xDiv, yDiv int) []BoardCoord2D[B, hexcoord.Cartesian2D] {
	out := make([]BoardCoord2D[B, hexcoord.Cartesian2D], len(in))
	for i, bc := range in {
		out[i] = BoardCoord2D[B, hexcoord.Cartesian2D]{
			Board: bc.Board,
			Coord: hexcoord.Cartesian2D{
				X: floorDiv(bc.Coord.X, xDiv),
				Y: floorDiv(bc.Coord.Y, yDiv),
			},
		}
	}
	return out
}

// FlipAxes swaps x and y globally. Cabinetise does not call it:
// hexcoord.Cabinetise performs its own axis flip when a grid's dimensions
// don't divide evenly.
func FlipAxes[B any](in []BoardCoord2D[B, hexcoord.Cartesian2D]) []BoardCoord2D[B, hexcoord.Cartesian2D] {
	out := make([]BoardCoord2D[B, hexcoord.Cartesian2D], len(in))
	for i, bc := range in {
		out[i] = BoardCoord2D[B, hexcoord.Cartesian2D]{Board: bc.Board, Coord: hexcoord.Cartesian2D{X: bc.Coord.Y, Y: bc.Coord.X}}
	}
	return out
}

// Fold folds a set of Cartesian coordinates into the number of segments
// given for each axis, interleaving the folded segments.
func Fold[B any](in []BoardCoord2D[B, hexcoord.Cartesian2D], foldsX, foldsY int) []BoardCoord2D[B, hexcoord.Cartesian2D] {
	if len(in) == 0 {
		return nil
	}

	maxX, maxY := in[0].Coord.X, in[0].Coord.Y
	for _, bc := range in[1:] {
		if bc.Coord.X > maxX {
			maxX = bc.Coord.X
		}
		if bc.Coord.Y > maxY {
			maxY = bc.Coord.Y
		}
	}

	out := make([]BoardCoord2D[B, hexcoord.Cartesian2D], len(in))
	for i, bc := range in {
		out[i] = BoardCoord2D[B, hexcoord.Cartesian2D]{
			Board: bc.Board,
			Coord: hexcoord.Cartesian2D{
				X: hexcoord.FoldInterleaveDimension(bc.Coord.X, maxX+1, foldsX),
				Y: hexcoord.FoldInterleaveDimension(bc.Coord.Y, maxY+1, foldsY),
			},
		}
	}
	return out
}

// Cabinetise maps a set of Cartesian coordinates into (cabinet, frame,
// board) triples, splitting the grid into numCabinets columns and
// framesPerCabinet rows per column. If boardsPerFrame is positive, every
// resulting board index is checked against it.
func Cabinetise[B any](in []BoardCoord2D[B, hexcoord.Cartesian2D], numCabinets, framesPerCabinet, boardsPerFrame int) ([]BoardCoord2D[B, hexcoord.Cabinet], error) {
	if len(in) == 0 {
		return nil, nil
	}

	maxX, maxY := in[0].Coord.X, in[0].Coord.Y
	for _, bc := range in[1:] {
		if bc.Coord.X > maxX {
			maxX = bc.Coord.X
		}
		if bc.Coord.Y > maxY {
			maxY = bc.Coord.Y
		}
	}

	out := make([]BoardCoord2D[B, hexcoord.Cabinet], len(in))
	for i, bc := range in {
		c, err := hexcoord.Cabinetise(bc.Coord.X, bc.Coord.Y, maxX+1, maxY+1, numCabinets, framesPerCabinet, boardsPerFrame)
		if err != nil {
			return nil, err
		}
		out[i] = BoardCoord2D[B, hexcoord.Cabinet]{Board: bc.Board, Coord: c}
	}
	return out, nil
}

// RemoveGaps takes a cabinetised system and shifts boards within their
// frames to remove empty gaps between board indices, preserving the
// relative order of boards that share a (cabinet, frame).
func RemoveGaps[B any](in []BoardCoord2D[B, hexcoord.Cabinet]) []BoardCoord2D[B, hexcoord.Cabinet] {
	type key struct{ cabinet, frame int }
	type entry struct {
		idx int
		bc  BoardCoord2D[B, hexcoord.Cabinet]
	}

	frames := map[key][]entry{}
	var order []key
	for _, bc := range in {
		k := key{bc.Coord.Cabinet, bc.Coord.Frame}
		if _, ok := frames[k]; !ok {
			order = append(order, k)
		}
		frames[k] = append(frames[k], entry{idx: bc.Coord.Board, bc: bc})
	}

	out := make([]BoardCoord2D[B, hexcoord.Cabinet], 0, len(in))
	for _, k := range order {
		entries := frames[k]
		sort.Slice(entries, func(i, j int) bool { return entries[i].idx < entries[j].idx })
		for b, e := range entries {
			out = append(out, BoardCoord2D[B, hexcoord.Cabinet]{
				Board: e.bc.Board,
				Coord: hexcoord.Cabinet{Cabinet: k.cabinet, Frame: k.frame, Board: b},
			})
		}
	}
	return out
}

// CabinetToPhysical maps cabinet coordinates to their physical Cartesian3
// position given a cabinet specification.
func CabinetToPhysical[B any](in []BoardCoord2D[B, hexcoord.Cabinet], spec *cabinet.Spec) []BoardCoord2D[B, hexcoord.Cartesian3D] {
	out := make([]BoardCoord2D[B, hexcoord.Cartesian3D], len(in))
	for i, bc := range in {
		out[i] = BoardCoord2D[B, hexcoord.Cartesian3D]{
			Board: bc.Board,
			Coord: spec.BoardPosition(bc.Coord.Cabinet, bc.Coord.Frame, bc.Coord.Board),
		}
	}
	return out
}
