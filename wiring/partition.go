package wiring

import (
	"github.com/sarchlab/boardwire/board"
	"github.com/sarchlab/boardwire/hexcoord"
)

// FrameKey identifies a single frame within a cabinet.
type FrameKey struct {
	Cabinet, Frame int
}

// Partition is the result of classifying a set of wires by how far apart
// their endpoints are in the cabinet hierarchy.
type Partition struct {
	// IntraFrame holds wires whose endpoints share both cabinet and frame,
	// keyed by that (cabinet, frame).
	IntraFrame map[FrameKey][]Wire
	// IntraCabinet holds wires whose endpoints share a cabinet but not a
	// frame, keyed by cabinet.
	IntraCabinet map[int][]Wire
	// InterCabinet holds wires whose endpoints are in different cabinets.
	InterCabinet []Wire
}

// PartitionWires classifies each wire in wires as intra-frame, intra-cabinet
// or inter-cabinet, using positions to look up each endpoint board's
// cabinet location.
func PartitionWires(wires []Wire, positions map[*board.Board]hexcoord.Cabinet) Partition {
	p := Partition{
		IntraFrame:   map[FrameKey][]Wire{},
		IntraCabinet: map[int][]Wire{},
	}

	for _, w := range wires {
		srcPos := positions[w.Src.Board]
		dstPos := positions[w.Dst.Board]

		switch {
		case srcPos.Cabinet == dstPos.Cabinet && srcPos.Frame == dstPos.Frame:
			k := FrameKey{Cabinet: srcPos.Cabinet, Frame: srcPos.Frame}
			p.IntraFrame[k] = append(p.IntraFrame[k], w)
		case srcPos.Cabinet == dstPos.Cabinet:
			p.IntraCabinet[srcPos.Cabinet] = append(p.IntraCabinet[srcPos.Cabinet], w)
		default:
			p.InterCabinet = append(p.InterCabinet, w)
		}
	}

	return p
}
