package wiring

import (
	"sort"

	"github.com/sarchlab/boardwire/board"
	"github.com/sarchlab/boardwire/hexcoord"
)

// Inventory is a sorted, positive, duplicate-free set of available cable
// lengths in metres.
type Inventory []float64

// NewInventory sorts a slice of cable lengths into an Inventory.
func NewInventory(lengths []float64) Inventory {
	out := append(Inventory(nil), lengths...)
	sort.Float64s(out)
	return out
}

// socketPosition returns the physical position of a wire endpoint's
// connector: the board's position plus the offset of its direction's
// socket.
func socketPosition(positions map[*board.Board]hexcoord.Cartesian3D, offsets map[hexcoord.Direction]hexcoord.Cartesian3D, e Endpoint) hexcoord.Cartesian3D {
	return positions[e.Board].Add(offsets[e.Direction])
}

// AssignWires computes, for each wire, the Euclidean distance between its
// two socket centres and chooses the shortest cable in inventory that
// spans it while meeting minArcHeight (0 disables the arc-height
// constraint). Wires are returned ordered by ascending slack (most
// stretched first), then ascending x, then ascending y of the source
// socket's physical position.
func AssignWires(
	wires []Wire,
	positions map[*board.Board]hexcoord.Cartesian3D,
	offsets map[hexcoord.Direction]hexcoord.Cartesian3D,
	inventory Inventory,
	minArcHeight float64,
) ([]PlannedWire, error) {
	type scored struct {
		wire  Wire
		pw    PlannedWire
		slack float64
		pos   hexcoord.Cartesian3D
	}

	out := make([]scored, len(wires))
	for i, w := range wires {
		srcPos := socketPosition(positions, offsets, w.Src)
		dstPos := socketPosition(positions, offsets, w.Dst)
		distance := srcPos.Sub(dstPos).Magnitude()

		length, slack, err := assignCable(distance, inventory, minArcHeight)
		if err != nil {
			return nil, err
		}

		l := length
		out[i] = scored{
			wire:  w,
			pw:    PlannedWire{Wire: w, Length: &l},
			slack: slack,
			pos:   srcPos,
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].slack != out[j].slack {
			return out[i].slack < out[j].slack
		}
		if out[i].pos.X != out[j].pos.X {
			return out[i].pos.X < out[j].pos.X
		}
		return out[i].pos.Y < out[j].pos.Y
	})

	planned := make([]PlannedWire, len(out))
	for i, s := range out {
		planned[i] = s.pw
	}
	return planned, nil
}
