// Package config loads the machine description a wiring run needs: the
// physical cabinet inventory (board, frame and cabinet measurements plus
// the available cable lengths) and the logical topology selection. It
// also provides a SQL-backed store for resuming long installation
// sessions across process restarts.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sarchlab/boardwire/cabinet"
	"github.com/sarchlab/boardwire/hexcoord"
	"github.com/sarchlab/boardwire/wiring"
)

// Vec3 is a YAML-friendly (x, y, z) triple of metres.
type Vec3 struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

func (v Vec3) cartesian() hexcoord.Cartesian3D {
	return hexcoord.Cartesian3D{X: v.X, Y: v.Y, Z: v.Z}
}

// Inventory is the cabinet-inventory file: every physical measurement of
// the machine being wired, the number of cabinets and populated frames,
// and the sorted set of cable lengths the installer has on hand.
type Inventory struct {
	BoardDimensions Vec3 `yaml:"board_dimensions"`

	// BoardWireOffsets maps hyphenated direction names (east,
	// north-east, ...) to each connector's offset from the board's
	// right-top-front corner.
	BoardWireOffsets map[string]Vec3 `yaml:"board_wire_offsets"`

	InterBoardSpacing float64 `yaml:"inter_board_spacing"`

	BoardsPerFrame    int     `yaml:"boards_per_frame"`
	FrameDimensions   Vec3    `yaml:"frame_dimensions"`
	FrameBoardOffset  Vec3    `yaml:"frame_board_offset"`
	InterFrameSpacing float64 `yaml:"inter_frame_spacing"`

	FramesPerCabinet    int     `yaml:"frames_per_cabinet"`
	CabinetDimensions   Vec3    `yaml:"cabinet_dimensions"`
	CabinetFrameOffset  Vec3    `yaml:"cabinet_frame_offset"`
	InterCabinetSpacing float64 `yaml:"inter_cabinet_spacing"`

	NumCabinets int `yaml:"num_cabinets"`
	// NumFrames is the number of frames actually populated with boards;
	// zero means every frame of every cabinet.
	NumFrames int `yaml:"num_frames"`

	// WireLengths is the cable inventory in metres: positive, unique.
	WireLengths []float64 `yaml:"wire_lengths"`

	MinimumArcHeight float64 `yaml:"minimum_arc_height"`
}

// LoadInventoryFile reads and validates a YAML cabinet-inventory file.
func LoadInventoryFile(path string) (*Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading inventory file: %w", err)
	}
	return ParseInventory(data)
}

// ParseInventory unmarshals and validates a YAML inventory document.
func ParseInventory(data []byte) (*Inventory, error) {
	var inv Inventory
	if err := yaml.Unmarshal(data, &inv); err != nil {
		return nil, fmt.Errorf("config: parsing inventory file: %w", err)
	}
	if err := inv.validate(); err != nil {
		return nil, err
	}
	return &inv, nil
}

func (inv *Inventory) validate() error {
	if inv.NumCabinets <= 0 {
		return fmt.Errorf("config: num_cabinets must be positive, got %d", inv.NumCabinets)
	}
	if inv.NumFrames < 0 || inv.NumFrames > inv.NumCabinets*inv.FramesPerCabinet {
		return fmt.Errorf("config: num_frames %d exceeds the %d frames of %d cabinets",
			inv.NumFrames, inv.NumCabinets*inv.FramesPerCabinet, inv.NumCabinets)
	}

	seen := map[float64]bool{}
	for _, l := range inv.WireLengths {
		if l <= 0.0 {
			return fmt.Errorf("config: wire length %g is not positive", l)
		}
		if seen[l] {
			return fmt.Errorf("config: wire length %g listed twice", l)
		}
		seen[l] = true
	}

	for name := range inv.BoardWireOffsets {
		if _, err := hexcoord.ParseHyphenated(name); err != nil {
			return fmt.Errorf("config: unknown wire offset direction %q", name)
		}
	}

	return nil
}

// CabinetSpec builds the validated cabinet.Spec this inventory describes.
// Bound violations surface as the *cabinet.CabinetError NewSpec returns.
func (inv *Inventory) CabinetSpec() (*cabinet.Spec, error) {
	offsets := make(map[hexcoord.Direction]hexcoord.Cartesian3D, len(inv.BoardWireOffsets))
	for name, v := range inv.BoardWireOffsets {
		d, err := hexcoord.ParseHyphenated(name)
		if err != nil {
			return nil, err
		}
		offsets[d] = v.cartesian()
	}

	return cabinet.NewSpec(cabinet.Params{
		BoardDimensions:     inv.BoardDimensions.cartesian(),
		BoardWireOffset:     offsets,
		InterBoardSpacing:   inv.InterBoardSpacing,
		BoardsPerFrame:      inv.BoardsPerFrame,
		FrameDimensions:     inv.FrameDimensions.cartesian(),
		FrameBoardOffset:    inv.FrameBoardOffset.cartesian(),
		InterFrameSpacing:   inv.InterFrameSpacing,
		FramesPerCabinet:    inv.FramesPerCabinet,
		CabinetDimensions:   inv.CabinetDimensions.cartesian(),
		CabinetFrameOffset:  inv.CabinetFrameOffset.cartesian(),
		InterCabinetSpacing: inv.InterCabinetSpacing,
	})
}

// SocketOffsets returns the per-direction connector offsets as the
// Direction-keyed map the wiring planner consumes.
func (inv *Inventory) SocketOffsets() map[hexcoord.Direction]hexcoord.Cartesian3D {
	out := make(map[hexcoord.Direction]hexcoord.Cartesian3D, len(inv.BoardWireOffsets))
	for name, v := range inv.BoardWireOffsets {
		d, _ := hexcoord.ParseHyphenated(name)
		out[d] = v.cartesian()
	}
	return out
}

// CableInventory returns the sorted cable-length inventory.
func (inv *Inventory) CableInventory() wiring.Inventory {
	return wiring.NewInventory(inv.WireLengths)
}
