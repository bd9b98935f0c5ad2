package wiring_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/boardwire/board"
	"github.com/sarchlab/boardwire/hexcoord"
	"github.com/sarchlab/boardwire/wiring"
)

func zeroOffsets() map[hexcoord.Direction]hexcoord.Cartesian3D {
	offsets := map[hexcoord.Direction]hexcoord.Cartesian3D{}
	for _, d := range hexcoord.Directions {
		offsets[d] = hexcoord.Cartesian3D{}
	}
	return offsets
}

var _ = Describe("EnumerateWires", func() {
	It("emits exactly 3*W*H*3 wires for a W,H triad torus", func() {
		boards := board.CreateTorus(1, 1)
		Expect(boards).To(HaveLen(3))

		wires := wiring.EnumerateWires(boards)
		Expect(wires).To(HaveLen(9))
	})
})

var _ = Describe("AssignWires", func() {
	It("chooses the shortest cable spanning the distance", func() {
		boards := board.CreateTorus(1, 1)
		wires := wiring.EnumerateWires(boards)

		positions := map[*board.Board]hexcoord.Cartesian3D{}
		for i, bc := range boards {
			positions[bc.Board] = hexcoord.Cartesian3D{X: float64(i) * 0.01}
		}

		inventory := wiring.NewInventory([]float64{0.5, 0.15, 0.3})
		Expect(inventory).To(Equal(wiring.Inventory{0.15, 0.3, 0.5}))

		planned, err := wiring.AssignWires(wires, positions, zeroOffsets(), inventory, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(planned).To(HaveLen(9))
		for _, w := range planned {
			Expect(*w.Length).To(Equal(0.15))
		}
	})

	It("fails with a *PlanError when no cable spans the distance", func() {
		boards := board.CreateTorus(1, 1)
		wires := wiring.EnumerateWires(boards)

		positions := map[*board.Board]hexcoord.Cartesian3D{}
		for i, bc := range boards {
			positions[bc.Board] = hexcoord.Cartesian3D{X: float64(i) * 100}
		}

		_, err := wiring.AssignWires(wires, positions, zeroOffsets(), wiring.Inventory{0.15}, 0)
		Expect(err).To(HaveOccurred())
		Expect(err).To(BeAssignableToTypeOf(&wiring.PlanError{}))
	})

	It("orders the tightest (least-slack) wires first, then left-to-right, top-to-bottom", func() {
		board1 := board.NewBoard()
		board2 := board.NewBoard()
		board3 := board.NewBoard()
		board4 := board.NewBoard()

		wires := []wiring.Wire{
			{Src: wiring.Endpoint{Board: board1, Direction: hexcoord.East}, Dst: wiring.Endpoint{Board: board2, Direction: hexcoord.West}},
			{Src: wiring.Endpoint{Board: board3, Direction: hexcoord.East}, Dst: wiring.Endpoint{Board: board4, Direction: hexcoord.West}},
		}

		positions := map[*board.Board]hexcoord.Cartesian3D{
			board1: {X: 0},
			board2: {X: 0.1}, // distance 0.1, slack with a 0.5 cable = 0.4
			board3: {X: 1},
			board4: {X: 1.45}, // distance 0.45, slack with a 0.5 cable = 0.05
		}

		planned, err := wiring.AssignWires(wires, positions, zeroOffsets(), wiring.Inventory{0.5}, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(planned[0].Src.Board).To(Equal(board3)) // least slack first
		Expect(planned[1].Src.Board).To(Equal(board1))
	})

	It("binds cable choice to the minimum-arc-height constraint", func() {
		src := board.NewBoard()
		dst := board.NewBoard()

		wires := []wiring.Wire{
			{Src: wiring.Endpoint{Board: src, Direction: hexcoord.East}, Dst: wiring.Endpoint{Board: dst, Direction: hexcoord.West}},
		}
		positions := map[*board.Board]hexcoord.Cartesian3D{
			src: {X: 0},
			dst: {X: 0.5},
		}

		// Arc height for a 1.0m cable over a 0.5m gap is ~0.393m.
		planned, err := wiring.AssignWires(wires, positions, zeroOffsets(), wiring.Inventory{1.0}, 0.38)
		Expect(err).NotTo(HaveOccurred())
		Expect(*planned[0].Length).To(Equal(1.0))

		_, err = wiring.AssignWires(wires, positions, zeroOffsets(), wiring.Inventory{1.0}, 0.4)
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("PartitionWires", func() {
	It("classifies wires as intra-frame when both endpoints share a (cabinet, frame)", func() {
		boards := board.CreateTorus(1, 1)
		wires := wiring.EnumerateWires(boards)

		positions := map[*board.Board]hexcoord.Cabinet{}
		for _, bc := range boards {
			positions[bc.Board] = hexcoord.Cabinet{Cabinet: 0, Frame: 0, Board: 0}
		}

		partition := wiring.PartitionWires(wires, positions)
		Expect(partition.IntraFrame).To(HaveLen(1))
		Expect(partition.IntraFrame[wiring.FrameKey{Cabinet: 0, Frame: 0}]).To(HaveLen(9))
		Expect(partition.IntraCabinet).To(BeEmpty())
		Expect(partition.InterCabinet).To(BeEmpty())
	})
})

var _ = Describe("FlattenPlan", func() {
	It("preserves every wire of a single-frame plan", func() {
		boards := board.CreateTorus(1, 1)
		cabPositions := map[*board.Board]hexcoord.Cabinet{}
		physPositions := map[*board.Board]hexcoord.Cartesian3D{}
		for i, bc := range boards {
			cabPositions[bc.Board] = hexcoord.Cabinet{Cabinet: 0, Frame: 0, Board: i}
			physPositions[bc.Board] = hexcoord.Cartesian3D{X: float64(i) * 0.1}
		}

		plan, err := wiring.GeneratePlan(boards, cabPositions, physPositions, zeroOffsets(), wiring.Inventory{0.15, 0.3, 0.5}, 0)
		Expect(err).NotTo(HaveOccurred())

		flat := wiring.FlattenPlan(plan, zeroOffsets())
		Expect(flat).To(HaveLen(9))
	})
})

var _ = Describe("Diff", func() {
	It("reports wires present in actual but not expected as removals, and vice versa", func() {
		b1 := board.NewBoard()
		b2 := board.NewBoard()
		b3 := board.NewBoard()

		shared := wiring.Wire{Src: wiring.Endpoint{Board: b1, Direction: hexcoord.East}, Dst: wiring.Endpoint{Board: b2, Direction: hexcoord.West}}
		onlyActual := wiring.Wire{Src: wiring.Endpoint{Board: b2, Direction: hexcoord.East}, Dst: wiring.Endpoint{Board: b3, Direction: hexcoord.West}}
		onlyExpected := wiring.Wire{Src: wiring.Endpoint{Board: b1, Direction: hexcoord.North}, Dst: wiring.Endpoint{Board: b3, Direction: hexcoord.South}}

		toRemove, toAdd := wiring.Diff([]wiring.Wire{shared, onlyActual}, []wiring.Wire{shared, onlyExpected})
		Expect(toRemove).To(ConsistOf(onlyActual))
		Expect(toAdd).To(ConsistOf(onlyExpected))
	})

	It("treats a wire as equal regardless of which endpoint is reported as source", func() {
		b1 := board.NewBoard()
		b2 := board.NewBoard()

		actual := wiring.Wire{Src: wiring.Endpoint{Board: b2, Direction: hexcoord.West}, Dst: wiring.Endpoint{Board: b1, Direction: hexcoord.East}}
		expected := wiring.Wire{Src: wiring.Endpoint{Board: b1, Direction: hexcoord.East}, Dst: wiring.Endpoint{Board: b2, Direction: hexcoord.West}}

		toRemove, toAdd := wiring.Diff([]wiring.Wire{actual}, []wiring.Wire{expected})
		Expect(toRemove).To(BeEmpty())
		Expect(toAdd).To(BeEmpty())
	})
})

var _ = Describe("RepairPlan", func() {
	It("puts every removal before every addition", func() {
		b1 := board.NewBoard()
		b2 := board.NewBoard()
		w := wiring.Wire{Src: wiring.Endpoint{Board: b1, Direction: hexcoord.East}, Dst: wiring.Endpoint{Board: b2, Direction: hexcoord.West}}
		length := 0.3

		plan := wiring.RepairPlan([]wiring.Wire{w}, []wiring.PlannedWire{{Wire: w, Length: &length}})
		Expect(plan).To(HaveLen(2))
		Expect(plan[0].Length).To(BeNil())
		Expect(plan[1].Length).To(HaveValue(Equal(0.3)))
	})
})
