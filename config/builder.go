package config

import (
	"github.com/sarchlab/boardwire/hexcoord"
)

// InventoryBuilder assembles an Inventory programmatically, for tests and
// for callers that do not load a YAML file.
type InventoryBuilder struct {
	inv Inventory
}

// NewInventoryBuilder returns a builder preloaded with the measurements
// of a standard SpiNNaker-style cabinet: 24 boards per frame, 5 frames
// per cabinet, one cabinet.
func NewInventoryBuilder() InventoryBuilder {
	return InventoryBuilder{inv: Inventory{
		BoardDimensions:   Vec3{X: 0.014, Y: 0.233, Z: 0.240},
		InterBoardSpacing: 0.00124,
		BoardsPerFrame:    24,
		FrameDimensions:   Vec3{X: 0.430, Y: 0.266, Z: 0.250},
		FrameBoardOffset:  Vec3{X: 0.06, Y: 0.017, Z: 0.0},
		InterFrameSpacing: 0.133,
		FramesPerCabinet:  5,
		CabinetDimensions: Vec3{X: 0.600, Y: 2.000, Z: 0.250},
		CabinetFrameOffset: Vec3{
			X: 0.085, Y: 0.047, Z: 0.0,
		},
		InterCabinetSpacing: 0.0,
		NumCabinets:         1,
		BoardWireOffsets: map[string]Vec3{
			hexcoord.SouthWest.Hyphenated(): {X: 0.008, Y: 0.013, Z: 0.0},
			hexcoord.NorthEast.Hyphenated(): {X: 0.008, Y: 0.031, Z: 0.0},
			hexcoord.East.Hyphenated():      {X: 0.008, Y: 0.049, Z: 0.0},
			hexcoord.West.Hyphenated():      {X: 0.008, Y: 0.067, Z: 0.0},
			hexcoord.North.Hyphenated():     {X: 0.008, Y: 0.085, Z: 0.0},
			hexcoord.South.Hyphenated():     {X: 0.008, Y: 0.103, Z: 0.0},
		},
	}}
}

// WithNumCabinets sets the number of cabinets in the machine.
func (b InventoryBuilder) WithNumCabinets(n int) InventoryBuilder {
	b.inv.NumCabinets = n
	return b
}

// WithNumFrames sets the number of frames actually populated.
func (b InventoryBuilder) WithNumFrames(n int) InventoryBuilder {
	b.inv.NumFrames = n
	return b
}

// WithBoardsPerFrame sets how many board slots each frame has.
func (b InventoryBuilder) WithBoardsPerFrame(n int) InventoryBuilder {
	b.inv.BoardsPerFrame = n
	return b
}

// WithFramesPerCabinet sets how many frames each cabinet holds.
func (b InventoryBuilder) WithFramesPerCabinet(n int) InventoryBuilder {
	b.inv.FramesPerCabinet = n
	return b
}

// WithWireLengths sets the cable inventory in metres.
func (b InventoryBuilder) WithWireLengths(lengths ...float64) InventoryBuilder {
	b.inv.WireLengths = lengths
	return b
}

// WithMinimumArcHeight sets the minimum cable arc height in metres.
func (b InventoryBuilder) WithMinimumArcHeight(h float64) InventoryBuilder {
	b.inv.MinimumArcHeight = h
	return b
}

// Build validates the assembled Inventory.
func (b InventoryBuilder) Build() (*Inventory, error) {
	inv := b.inv
	if err := inv.validate(); err != nil {
		return nil, err
	}
	return &inv, nil
}
