package board

import "github.com/sarchlab/boardwire/hexcoord"

// FollowWiringLoop returns a restartable iterator following the wire in the
// given direction from start until it returns to start, yielding start
// itself first. It is used to measure topology statistics such as the
// number of boards visited going around a torus in a fixed direction.
func FollowWiringLoop(start *Board, direction hexcoord.Direction) func(func(*Board) bool) {
	return func(yield func(*Board) bool) {
		if !yield(start) {
			return
		}

		cur := start.FollowWire(direction)
		for cur != start {
			if !yield(cur) {
				return
			}
			cur = cur.FollowWire(direction)
		}
	}
}

// PacketStep is one step of a packet-traversal loop: the side a packet
// arrives on and the board it arrives at.
type PacketStep struct {
	InSide hexcoord.Direction
	Board  *Board
}

// FollowPacketLoop returns a restartable iterator following the path of a
// packet entering start on inSide and travelling in direction, yielding the
// starting step first and continuing until the path returns to start.
func FollowPacketLoop(start *Board, inSide, direction hexcoord.Direction) func(func(PacketStep) bool) {
	return func(yield func(PacketStep) bool) {
		if !yield(PacketStep{InSide: inSide, Board: start}) {
			return
		}

		side, cur := start.FollowPacket(inSide, direction)
		for cur != start {
			if !yield(PacketStep{InSide: side, Board: cur}) {
				return
			}
			side, cur = cur.FollowPacket(side, direction)
		}
	}
}
