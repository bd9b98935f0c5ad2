// Package board models SpiNNaker boards linked by wires and the packet
// routing that occurs as a packet crosses a board's six links.
package board

import (
	"fmt"
	"sync/atomic"

	"github.com/sarchlab/boardwire/hexcoord"
)

var nextBoardID uint64

// Board is a single SpiNNaker board with up to six wired neighbours, one
// per hexcoord.Direction.
type Board struct {
	ID uint64

	links [6]*Board
}

// NewBoard returns a board with a process-unique, monotonically increasing
// ID and no wires connected.
func NewBoard() *Board {
	id := atomic.AddUint64(&nextBoardID, 1) - 1
	return &Board{ID: id}
}

func (b *Board) String() string {
	return fmt.Sprintf("<Board id=%d>", b.ID)
}

// Connect wires this board to other in the given direction. It panics if
// either end of the link is already occupied, since a double-connect
// indicates a bug in the caller's topology construction rather than a
// condition callers should recover from.
func (b *Board) Connect(other *Board, d hexcoord.Direction) {
	if b.FollowWire(d) != nil {
		panic(fmt.Sprintf("board: %v already has a wire on %s", b, d.Name()))
	}
	if other.FollowWire(d.Opposite()) != nil {
		panic(fmt.Sprintf("board: %v already has a wire on %s", other, d.Opposite().Name()))
	}

	b.links[d] = other
	other.links[d.Opposite()] = b
}

// FollowWire returns the board at the far end of the wire connected to the
// given direction, or nil if no wire is connected there.
func (b *Board) FollowWire(d hexcoord.Direction) *Board {
	return b.links[d]
}

// outSides maps (inSide, direction) to the out side a packet takes when it
// enters a board on inSide travelling in direction. Only half the cases are
// listed explicitly; the rest follow by doubling every entry with both
// sides and the direction reversed.
var outSides = buildOutSides()

func buildOutSides() map[[2]hexcoord.Direction]hexcoord.Direction {
	half := map[[2]hexcoord.Direction]hexcoord.Direction{
		{hexcoord.SouthWest, hexcoord.East}: hexcoord.East,
		{hexcoord.West, hexcoord.East}:      hexcoord.NorthEast,

		{hexcoord.SouthWest, hexcoord.NorthEast}: hexcoord.North,
		{hexcoord.South, hexcoord.NorthEast}:     hexcoord.NorthEast,

		{hexcoord.South, hexcoord.North}: hexcoord.West,
		{hexcoord.East, hexcoord.North}:  hexcoord.North,
	}

	out := make(map[[2]hexcoord.Direction]hexcoord.Direction, 12)
	for k, v := range half {
		out[k] = v
		out[[2]hexcoord.Direction{k[0].Opposite(), k[1].Opposite()}] = v.Opposite()
	}
	return out
}

// FollowPacket follows the path of a packet which entered this board via
// the wire on inSide, travelling in the given direction through the board's
// chips. It returns the side on which the packet leaves via its outgoing
// wire (from the perspective of the board it arrives at) and the
// neighbouring board that wire leads to.
//
// Only the side the incoming link is on matters, not the exact chip: for
// any incoming side there is a fixed outgoing side when travelling in a
// fixed direction.
func (b *Board) FollowPacket(inSide, direction hexcoord.Direction) (hexcoord.Direction, *Board) {
	outSide, ok := outSides[[2]hexcoord.Direction{inSide, direction}]
	if !ok {
		panic(fmt.Sprintf("board: no route for in-side %s travelling %s", inSide.Name(), direction.Name()))
	}

	return outSide.Opposite(), b.FollowWire(outSide)
}

// BoardCoord pairs a board with its hexagonal coordinate in a torus.
type BoardCoord struct {
	Board *Board
	Coord hexcoord.Hexagonal
}

// torusLinkDirections are the directions walked when wiring a freshly
// created torus together: every other direction is reached as the opposite
// side of one of these.
var torusLinkDirections = [3]hexcoord.Direction{hexcoord.East, hexcoord.NorthEast, hexcoord.North}

// CreateTorus returns width*height*3 boards connected in a torus, each
// paired with its hexagonal coordinate.
func CreateTorus(width, height int) []BoardCoord {
	coords := hexcoord.Threeboards(width, height)

	boards := make(map[hexcoord.Hexagonal]*Board, len(coords))
	for _, c := range coords {
		boards[c] = NewBoard()
	}

	for c, b := range boards {
		for _, d := range torusLinkDirections {
			n := hexcoord.WrapAround(hexcoord.AddDirection(c, d), width, height)
			b.Connect(boards[n], d)
		}
	}

	out := make([]BoardCoord, 0, len(boards))
	for c, b := range boards {
		out = append(out, BoardCoord{Board: b, Coord: c})
	}
	return out
}
