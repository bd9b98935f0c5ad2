// Package cabinet converts logical (cabinet, frame, board, wire) locations
// into physical positions, given the dimensions of a set of cabinets.
package cabinet

import (
	"fmt"

	"github.com/sarchlab/boardwire/hexcoord"
)

// CabinetError is returned when a Spec's measurements are inconsistent,
// e.g. negative dimensions or boards that do not fit within their frame.
type CabinetError struct {
	Msg string
}

func (e *CabinetError) Error() string {
	return "cabinet: " + e.Msg
}

// wireDirections are the six directions a board-to-board wire can leave
// from; every Spec must define an offset for each.
var wireDirections = [6]hexcoord.Direction{
	hexcoord.SouthWest, hexcoord.NorthEast,
	hexcoord.East, hexcoord.West,
	hexcoord.North, hexcoord.South,
}

// Params groups the physical measurements (all in metres) needed to build
// a Spec. It mirrors the layout of a real SpiNNaker cabinet: boards sit in
// frames, frames sit in cabinets, and cabinets sit side by side.
type Params struct {
	BoardDimensions hexcoord.Cartesian3D

	// BoardWireOffset gives, for each of the six link directions, the
	// physical offset of that connector from the board's right-top-front
	// corner. All six directions must have an entry.
	BoardWireOffset map[hexcoord.Direction]hexcoord.Cartesian3D

	InterBoardSpacing float64

	BoardsPerFrame   int
	FrameDimensions  hexcoord.Cartesian3D
	FrameBoardOffset hexcoord.Cartesian3D
	InterFrameSpacing float64

	FramesPerCabinet    int
	CabinetDimensions   hexcoord.Cartesian3D
	CabinetFrameOffset  hexcoord.Cartesian3D
	InterCabinetSpacing float64
}

// Spec is a validated set of physical cabinet measurements.
type Spec struct {
	boardDimensions  hexcoord.Cartesian3D
	boardWireOffset  map[hexcoord.Direction]hexcoord.Cartesian3D
	interBoardSpacing float64

	boardsPerFrame    int
	frameDimensions   hexcoord.Cartesian3D
	frameBoardOffset  hexcoord.Cartesian3D
	interFrameSpacing float64

	framesPerCabinet    int
	cabinetDimensions   hexcoord.Cartesian3D
	cabinetFrameOffset  hexcoord.Cartesian3D
	interCabinetSpacing float64
}

func nonNegative3(v hexcoord.Cartesian3D) bool {
	return v.X >= 0.0 && v.Y >= 0.0 && v.Z >= 0.0
}

// NewSpec validates p and returns the corresponding Spec, or a
// *CabinetError describing the first inconsistency found.
func NewSpec(p Params) (*Spec, error) {
	if !nonNegative3(p.BoardDimensions) {
		return nil, &CabinetError{Msg: "board_dimensions must be positive"}
	}
	if p.InterBoardSpacing < 0.0 {
		return nil, &CabinetError{Msg: "inter_board_spacing must be positive"}
	}
	if p.BoardsPerFrame < 0 {
		return nil, &CabinetError{Msg: "boards_per_frame must be positive"}
	}
	if !nonNegative3(p.FrameDimensions) {
		return nil, &CabinetError{Msg: "frame_dimensions must be positive"}
	}
	if !nonNegative3(p.FrameBoardOffset) {
		return nil, &CabinetError{Msg: "frame_board_offset must be positive"}
	}
	if p.InterFrameSpacing < 0.0 {
		return nil, &CabinetError{Msg: "inter_frame_spacing must be positive"}
	}
	if p.FramesPerCabinet < 0 {
		return nil, &CabinetError{Msg: "frames_per_cabinet must be positive"}
	}
	if !nonNegative3(p.CabinetDimensions) {
		return nil, &CabinetError{Msg: "cabinet_dimensions must be positive"}
	}
	if !nonNegative3(p.CabinetFrameOffset) {
		return nil, &CabinetError{Msg: "cabinet_frame_offset must be positive"}
	}
	if p.InterCabinetSpacing < 0.0 {
		return nil, &CabinetError{Msg: "inter_cabinet_spacing must be positive"}
	}

	for _, d := range wireDirections {
		if _, ok := p.BoardWireOffset[d]; !ok {
			return nil, &CabinetError{Msg: fmt.Sprintf("missing board wire offset for %s", d.Name())}
		}
	}

	for _, d := range wireDirections {
		off := p.BoardWireOffset[d]
		if off.X < 0.0 || off.X > p.BoardDimensions.X ||
			off.Y < 0.0 || off.Y > p.BoardDimensions.Y ||
			off.Z < 0.0 || off.Z > p.BoardDimensions.Z {
			return nil, &CabinetError{Msg: fmt.Sprintf("%s wire must be within bounds of board", d.Name())}
		}
	}

	s := &Spec{
		boardDimensions:     p.BoardDimensions,
		boardWireOffset:     copyOffsets(p.BoardWireOffset),
		interBoardSpacing:   p.InterBoardSpacing,
		boardsPerFrame:      p.BoardsPerFrame,
		frameDimensions:     p.FrameDimensions,
		frameBoardOffset:    p.FrameBoardOffset,
		interFrameSpacing:   p.InterFrameSpacing,
		framesPerCabinet:    p.FramesPerCabinet,
		cabinetDimensions:   p.CabinetDimensions,
		cabinetFrameOffset:  p.CabinetFrameOffset,
		interCabinetSpacing: p.InterCabinetSpacing,
	}

	opp := s.frameBoardOffsetOpposite()
	if opp.X > s.frameDimensions.X || opp.Y > s.frameDimensions.Y || opp.Z > s.frameDimensions.Z {
		return nil, &CabinetError{Msg: "boards must be within bounds of a frame"}
	}

	copp := s.cabinetFrameOffsetOpposite()
	if copp.X > s.cabinetDimensions.X || copp.Y > s.cabinetDimensions.Y || copp.Z > s.cabinetDimensions.Z {
		return nil, &CabinetError{Msg: "frames must be within bounds of a cabinet"}
	}

	return s, nil
}

func copyOffsets(in map[hexcoord.Direction]hexcoord.Cartesian3D) map[hexcoord.Direction]hexcoord.Cartesian3D {
	out := make(map[hexcoord.Direction]hexcoord.Cartesian3D, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// frameBoardOffsetOpposite returns the distance of the left-bottom-back
// corner of the boards from the right-top-front corner of the frame.
func (s *Spec) frameBoardOffsetOpposite() hexcoord.Cartesian3D {
	return hexcoord.Cartesian3D{
		X: ((s.boardDimensions.X+s.interBoardSpacing)*float64(s.boardsPerFrame) - s.interBoardSpacing) + s.frameBoardOffset.X,
		Y: s.boardDimensions.Y + s.frameBoardOffset.Y,
		Z: s.boardDimensions.Z + s.frameBoardOffset.Z,
	}
}

// cabinetFrameOffsetOpposite returns the distance of the left-bottom-back
// corner of the frames from the right-top-front corner of the cabinet.
func (s *Spec) cabinetFrameOffsetOpposite() hexcoord.Cartesian3D {
	return hexcoord.Cartesian3D{
		X: s.frameDimensions.X + s.cabinetFrameOffset.X,
		Y: (s.frameDimensions.Y+s.interFrameSpacing)*float64(s.framesPerCabinet) - s.interFrameSpacing + s.cabinetFrameOffset.Y,
		Z: s.frameDimensions.Z + s.cabinetFrameOffset.Z,
	}
}

// CabinetPosition returns the physical position of the given cabinet.
func (s *Spec) CabinetPosition(cabinet int) hexcoord.Cartesian3D {
	return hexcoord.Cartesian3D{
		X: (s.cabinetDimensions.X + s.interCabinetSpacing) * float64(cabinet),
	}
}

// FramePosition returns the physical position of the given frame within
// the given cabinet.
func (s *Spec) FramePosition(cabinet, frame int) hexcoord.Cartesian3D {
	pos := s.CabinetPosition(cabinet)
	pos = pos.Add(s.cabinetFrameOffset)
	pos = pos.Add(hexcoord.Cartesian3D{Y: (s.frameDimensions.Y + s.interFrameSpacing) * float64(frame)})
	return pos
}

// BoardPosition returns the physical position of the given board within
// the given frame and cabinet.
func (s *Spec) BoardPosition(cabinet, frame, board int) hexcoord.Cartesian3D {
	pos := s.FramePosition(cabinet, frame)
	pos = pos.Add(s.frameBoardOffset)
	pos = pos.Add(hexcoord.Cartesian3D{X: (s.boardDimensions.X + s.interBoardSpacing) * float64(board)})
	return pos
}

// WirePosition returns the physical position of the given wire's connector
// on the given board.
func (s *Spec) WirePosition(cabinet, frame, board int, wire hexcoord.Direction) hexcoord.Cartesian3D {
	pos := s.BoardPosition(cabinet, frame, board)
	return pos.Add(s.boardWireOffset[wire])
}

// Dimensions returns the (cabinet, frame, board) physical dimensions this
// Spec was built with.
func (s *Spec) Dimensions() (cabinetDims, frameDims, boardDims hexcoord.Cartesian3D) {
	return s.cabinetDimensions, s.frameDimensions, s.boardDimensions
}

// BoundingBox returns the outer bounding box of the given number of
// cabinets, or of frames within one cabinet when cabinets is zero, or of
// boards within one frame when frames is also zero. Diagram renderers use
// it to focus their viewport; the wiring logic itself never does.
func (s *Spec) BoundingBox(cabinets, frames, boards int) hexcoord.Cartesian3D {
	switch {
	case cabinets > 0:
		return hexcoord.Cartesian3D{
			X: (s.cabinetDimensions.X+s.interCabinetSpacing)*float64(cabinets) - s.interCabinetSpacing,
			Y: s.cabinetDimensions.Y,
			Z: s.cabinetDimensions.Z,
		}
	case frames > 0:
		return hexcoord.Cartesian3D{
			X: s.frameDimensions.X,
			Y: (s.frameDimensions.Y+s.interFrameSpacing)*float64(frames) - s.interFrameSpacing,
			Z: s.frameDimensions.Z,
		}
	case boards > 0:
		return hexcoord.Cartesian3D{
			X: (s.boardDimensions.X+s.interBoardSpacing)*float64(boards) - s.interBoardSpacing,
			Y: s.boardDimensions.Y,
			Z: s.boardDimensions.Z,
		}
	default:
		return hexcoord.Cartesian3D{}
	}
}

// BoardsPerFrame returns the number of boards each frame holds.
func (s *Spec) BoardsPerFrame() int { return s.boardsPerFrame }

// FramesPerCabinet returns the number of frames each cabinet holds.
func (s *Spec) FramesPerCabinet() int { return s.framesPerCabinet }
