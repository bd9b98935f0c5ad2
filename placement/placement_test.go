package placement_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/boardwire/cabinet"
	"github.com/sarchlab/boardwire/hexcoord"
	"github.com/sarchlab/boardwire/placement"
)

func hexTorus(w, h int) []placement.BoardCoord2D[int, hexcoord.Hexagonal] {
	coords := hexcoord.Threeboards(w, h)
	out := make([]placement.BoardCoord2D[int, hexcoord.Hexagonal], len(coords))
	for i, c := range coords {
		out[i] = placement.BoardCoord2D[int, hexcoord.Hexagonal]{Board: i, Coord: c}
	}
	return out
}

func smallCabinetSpec(boardsPerFrame int) *cabinet.Spec {
	offsets := map[hexcoord.Direction]hexcoord.Cartesian3D{
		hexcoord.SouthWest: {X: 0.0, Y: 0.06, Z: 0.01},
		hexcoord.NorthEast: {X: 0.23, Y: 0.06, Z: 0.01},
		hexcoord.East:      {X: 0.23, Y: 0.1, Z: 0.01},
		hexcoord.West:      {X: 0.0, Y: 0.1, Z: 0.01},
		hexcoord.North:     {X: 0.1, Y: 0.15, Z: 0.01},
		hexcoord.South:     {X: 0.1, Y: 0.0, Z: 0.01},
	}
	s, err := cabinet.NewSpec(cabinet.Params{
		BoardDimensions:     hexcoord.Cartesian3D{X: 0.23, Y: 0.15, Z: 0.025},
		BoardWireOffset:     offsets,
		InterBoardSpacing:   0.01,
		BoardsPerFrame:      boardsPerFrame,
		FrameDimensions:     hexcoord.Cartesian3D{X: 6.0, Y: 0.2, Z: 0.25},
		FrameBoardOffset:    hexcoord.Cartesian3D{X: 0.05, Y: 0.0, Z: 0.0},
		InterFrameSpacing:   0.02,
		FramesPerCabinet:    1,
		CabinetDimensions:   hexcoord.Cartesian3D{X: 0.6, Y: 2.0, Z: 0.9},
		CabinetFrameOffset:  hexcoord.Cartesian3D{X: 0.0, Y: 0.1, Z: 0.0},
		InterCabinetSpacing: 0.1,
	})
	Expect(err).NotTo(HaveOccurred())
	return s
}

var _ = Describe("placement stages", func() {
	It("never duplicates or drops boards through hex/cartesian conversion", func() {
		hexBoards := hexTorus(2, 2)
		cart := placement.HexToCartesian(hexBoards)
		Expect(cart).To(HaveLen(len(hexBoards)))

		seen := map[int]bool{}
		for _, bc := range cart {
			Expect(seen[bc.Board]).To(BeFalse())
			seen[bc.Board] = true
		}
	})

	It("wraps a rhombus into a rectangle with RhombusToRect", func() {
		hexBoards := hexTorus(2, 2)
		rect := placement.RhombusToRect(placement.HexToCartesian(hexBoards))
		Expect(rect).To(HaveLen(len(hexBoards)))
		for _, bc := range rect {
			Expect(bc.Coord.X).To(BeNumerically(">=", 0))
			Expect(bc.Coord.Y).To(BeNumerically(">=", 0))
		}
	})

	It("compress collapses hexagonal packing gaps without dropping boards", func() {
		hexBoards := hexTorus(2, 2)
		rect := placement.RhombusToRect(placement.HexToCartesian(hexBoards))
		comp := placement.Compress(rect, 1, 2)
		Expect(comp).To(HaveLen(len(hexBoards)))
	})

	It("fold preserves count and keeps coordinates non-negative", func() {
		hexBoards := hexTorus(2, 2)
		rect := placement.RhombusToRect(placement.HexToCartesian(hexBoards))
		comp := placement.Compress(rect, 1, 2)
		folded := placement.Fold(comp, 2, 2)
		Expect(folded).To(HaveLen(len(hexBoards)))
		for _, bc := range folded {
			Expect(bc.Coord.X).To(BeNumerically(">=", 0))
			Expect(bc.Coord.Y).To(BeNumerically(">=", 0))
		}
	})

	It("remove_gaps renumbers boards to consecutive indices per frame", func() {
		cabs := []placement.BoardCoord2D[int, hexcoord.Cabinet]{
			{Board: 0, Coord: hexcoord.Cabinet{Cabinet: 0, Frame: 0, Board: 5}},
			{Board: 1, Coord: hexcoord.Cabinet{Cabinet: 0, Frame: 0, Board: 2}},
			{Board: 2, Coord: hexcoord.Cabinet{Cabinet: 0, Frame: 0, Board: 9}},
		}
		dense := placement.RemoveGaps(cabs)
		Expect(dense).To(HaveLen(3))

		byBoard := map[int]int{}
		for _, bc := range dense {
			byBoard[bc.Board] = bc.Coord.Board
		}
		// original order by old index (1 -> idx 2, 0 -> idx5, 2 -> idx9) becomes 0,1,2
		Expect(byBoard[1]).To(Equal(0))
		Expect(byBoard[0]).To(Equal(1))
		Expect(byBoard[2]).To(Equal(2))
	})
})

var _ = Describe("Pipeline", func() {
	It("places a single triad (W=1,H=1) into one cabinet, one frame of 3 boards", func() {
		hexBoards := hexTorus(1, 1)
		spec := smallCabinetSpec(3)

		phys, err := placement.Pipeline(hexBoards, placement.Options{
			Width: 1, Height: 1,
			Transformation:   placement.DefaultTransformation(1, 1),
			FoldX:            1,
			FoldY:            1,
			NumCabinets:      1,
			FramesPerCabinet: 1,
			BoardsPerFrame:   3,
			Cabinet:          spec,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(phys).To(HaveLen(3))
	})

	It("places a 2x2 triad torus with the shear transform into 12 boards", func() {
		hexBoards := hexTorus(2, 2)
		spec := smallCabinetSpec(24)

		phys, err := placement.Pipeline(hexBoards, placement.Options{
			Width: 2, Height: 2,
			Transformation:   placement.Shear,
			FoldX:            2,
			FoldY:            2,
			NumCabinets:      1,
			FramesPerCabinet: 1,
			BoardsPerFrame:   24,
			Cabinet:          spec,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(phys).To(HaveLen(12))
	})

	It("defaults to slice when H == 2W and shear otherwise", func() {
		Expect(placement.DefaultTransformation(2, 4)).To(Equal(placement.Slice))
		Expect(placement.DefaultTransformation(2, 2)).To(Equal(placement.Shear))
	})

	It("returns an error instead of panicking when a grid cannot be cabinetised", func() {
		hexBoards := hexTorus(1, 1)
		spec := smallCabinetSpec(1)

		_, err := placement.Pipeline(hexBoards, placement.Options{
			Width: 1, Height: 1,
			Transformation:   placement.DefaultTransformation(1, 1),
			FoldX:            1,
			FoldY:            1,
			NumCabinets:      1,
			FramesPerCabinet: 1,
			BoardsPerFrame:   1,
			Cabinet:          spec,
		})
		Expect(err).To(HaveOccurred())
	})
})
