package wiring

import (
	"context"
	"log/slog"
	"sort"

	"github.com/sarchlab/boardwire/board"
	"github.com/sarchlab/boardwire/hexcoord"
)

// Plan is the three-tier output of GeneratePlan: wires grouped by how
// local their endpoints are, each group independently ordered by
// AssignWires.
type Plan struct {
	IntraFrame   map[FrameKey][]PlannedWire
	IntraCabinet map[int][]PlannedWire
	InterCabinet []PlannedWire
}

// GeneratePlan enumerates every wire among boards, partitions it by
// locality using positions, and assigns each group a cable length from
// inventory, honouring minArcHeight.
func GeneratePlan(
	boards []board.BoardCoord,
	cabinetPositions map[*board.Board]hexcoord.Cabinet,
	physicalPositions map[*board.Board]hexcoord.Cartesian3D,
	offsets map[hexcoord.Direction]hexcoord.Cartesian3D,
	inventory Inventory,
	minArcHeight float64,
) (Plan, error) {
	wires := EnumerateWires(boards)
	partition := PartitionWires(wires, cabinetPositions)

	slog.Log(context.Background(), LevelPlan, "partitioned wires",
		"total", len(wires),
		"intra_frame_groups", len(partition.IntraFrame),
		"intra_cabinet_groups", len(partition.IntraCabinet),
		"inter_cabinet", len(partition.InterCabinet))

	plan := Plan{
		IntraFrame:   map[FrameKey][]PlannedWire{},
		IntraCabinet: map[int][]PlannedWire{},
	}

	for k, ws := range partition.IntraFrame {
		assigned, err := AssignWires(ws, physicalPositions, offsets, inventory, minArcHeight)
		if err != nil {
			return Plan{}, err
		}
		plan.IntraFrame[k] = assigned
	}

	for c, ws := range partition.IntraCabinet {
		assigned, err := AssignWires(ws, physicalPositions, offsets, inventory, minArcHeight)
		if err != nil {
			return Plan{}, err
		}
		plan.IntraCabinet[c] = assigned
	}

	assigned, err := AssignWires(partition.InterCabinet, physicalPositions, offsets, inventory, minArcHeight)
	if err != nil {
		return Plan{}, err
	}
	plan.InterCabinet = assigned

	return plan, nil
}

// FlattenPlan collapses a three-tier Plan into a single installation
// sequence: intra-frame wires first (cabinets ascending, then frames
// ascending within each cabinet), then intra-cabinet wires (cabinets
// ascending), then inter-cabinet wires last. Within each group, wires are
// kept in the order AssignWires produced (slack-ascending, left-to-right,
// top-to-bottom), grouped by the y-offset of their source socket so an
// installer finishes one wiring axis before starting the next.
func FlattenPlan(plan Plan, offsets map[hexcoord.Direction]hexcoord.Cartesian3D) []PlannedWire {
	var out []PlannedWire

	byDirection := func(ws []PlannedWire) map[hexcoord.Direction][]PlannedWire {
		m := map[hexcoord.Direction][]PlannedWire{}
		for _, w := range ws {
			m[w.Src.Direction] = append(m[w.Src.Direction], w)
		}
		return m
	}
	sortedDirections := func(m map[hexcoord.Direction][]PlannedWire) []hexcoord.Direction {
		ds := make([]hexcoord.Direction, 0, len(m))
		for d := range m {
			ds = append(ds, d)
		}
		sort.Slice(ds, func(i, j int) bool { return offsets[ds[i]].Y < offsets[ds[j]].Y })
		return ds
	}

	frameKeys := make([]FrameKey, 0, len(plan.IntraFrame))
	for k := range plan.IntraFrame {
		frameKeys = append(frameKeys, k)
	}
	sort.Slice(frameKeys, func(i, j int) bool {
		if frameKeys[i].Cabinet != frameKeys[j].Cabinet {
			return frameKeys[i].Cabinet < frameKeys[j].Cabinet
		}
		return frameKeys[i].Frame < frameKeys[j].Frame
	})
	for _, k := range frameKeys {
		byDir := byDirection(plan.IntraFrame[k])
		for _, d := range sortedDirections(byDir) {
			out = append(out, byDir[d]...)
		}
	}

	cabinets := make([]int, 0, len(plan.IntraCabinet))
	for c := range plan.IntraCabinet {
		cabinets = append(cabinets, c)
	}
	sort.Ints(cabinets)
	for _, c := range cabinets {
		byDir := byDirection(plan.IntraCabinet[c])
		for _, d := range sortedDirections(byDir) {
			out = append(out, byDir[d]...)
		}
	}

	byDir := byDirection(plan.InterCabinet)
	for _, d := range sortedDirections(byDir) {
		out = append(out, byDir[d]...)
	}

	return out
}
