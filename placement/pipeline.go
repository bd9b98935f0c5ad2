package placement

import (
	"github.com/sarchlab/boardwire/cabinet"
	"github.com/sarchlab/boardwire/hexcoord"
)

// Transformation selects between the two ways of flattening a hexagonal
// torus into a Cartesian grid.
type Transformation int

const (
	// Slice projects the torus with hex_to_cartesian and then wraps the
	// resulting rhombus into a rectangle with RhombusToRect. It produces a
	// natural square layout when the system is twice as tall as it is
	// wide.
	Slice Transformation = iota
	// Shear projects the torus with hex_to_skewed_cartesian, which already
	// yields a ragged rectangle without needing RhombusToRect.
	Shear
)

// Uncrinkle selects which Cartesian axis absorbs the larger compression
// divisor, swapping the role of the compressed axis.
type Uncrinkle int

const (
	Rows Uncrinkle = iota
	Columns
)

// Options configures Pipeline. Zero-value folds default to (2, 2).
type Options struct {
	Width, Height int

	Transformation Transformation
	Uncrinkle      Uncrinkle

	FoldX, FoldY int

	NumCabinets      int
	FramesPerCabinet int
	BoardsPerFrame   int

	Cabinet *cabinet.Spec
}

// DefaultTransformation returns Slice when height == 2*width (producing a
// natural square), and Shear otherwise.
func DefaultTransformation(width, height int) Transformation {
	if height == 2*width {
		return Slice
	}
	return Shear
}

// compressDivisors returns the (x, y) divisors used by Compress for the
// given transformation and uncrinkle direction. Slice uses a base divisor
// pair of (1, 2), shear uses (1, 3); Columns swaps the pair.
func compressDivisors(t Transformation, u Uncrinkle) (xDiv, yDiv int) {
	switch t {
	case Slice:
		xDiv, yDiv = 1, 2
	default:
		xDiv, yDiv = 1, 3
	}
	if u == Columns {
		xDiv, yDiv = yDiv, xDiv
	}
	return xDiv, yDiv
}

// Placements is the output of Place: each board's cabinet slot and the
// physical position that slot corresponds to, in matching order.
type Placements[B any] struct {
	Cabinets []BoardCoord2D[B, hexcoord.Cabinet]
	Physical []BoardCoord2D[B, hexcoord.Cartesian3D]
}

// Pipeline runs the canonical eight-stage placement pipeline over a torus
// of boards in hexagonal coordinates, returning their physical positions.
func Pipeline[B any](hexBoards []BoardCoord2D[B, hexcoord.Hexagonal], opts Options) ([]BoardCoord2D[B, hexcoord.Cartesian3D], error) {
	p, err := Place(hexBoards, opts)
	if err != nil {
		return nil, err
	}
	return p.Physical, nil
}

// Place runs the same pipeline as Pipeline but returns the cabinetised
// coordinates alongside the physical ones, for callers (the wiring
// planner, the plan CSV writer) that need both.
func Place[B any](hexBoards []BoardCoord2D[B, hexcoord.Hexagonal], opts Options) (Placements[B], error) {
	foldX, foldY := opts.FoldX, opts.FoldY
	if foldX == 0 {
		foldX = 2
	}
	if foldY == 0 {
		foldY = 2
	}

	var cart []BoardCoord2D[B, hexcoord.Cartesian2D]
	switch opts.Transformation {
	case Slice:
		cart = RhombusToRect(HexToCartesian(hexBoards))
	default:
		cart = HexToSkewedCartesian(hexBoards)
	}

	xDiv, yDiv := compressDivisors(opts.Transformation, opts.Uncrinkle)
	comp := Compress(cart, xDiv, yDiv)

	folded := Fold(comp, foldX, foldY)

	// Cabinetise falls back to a flipped axis ordering internally
	// (hexcoord.Cabinetise) when the natural ordering doesn't divide
	// evenly; FlipAxes itself is exposed separately for callers building
	// a non-canonical pipeline.
	cab, err := Cabinetise(folded, opts.NumCabinets, opts.FramesPerCabinet, opts.BoardsPerFrame)
	if err != nil {
		return Placements[B]{}, err
	}

	dense := RemoveGaps(cab)

	return Placements[B]{
		Cabinets: dense,
		Physical: CabinetToPhysical(dense, opts.Cabinet),
	}, nil
}
