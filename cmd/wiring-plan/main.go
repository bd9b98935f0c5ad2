// Command wiring-plan builds a torus, folds it onto a rack layout, plans
// every cable, and writes the installation-plan and ethernet-chip-map
// CSVs.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/tebeka/atexit"

	"github.com/sarchlab/boardwire/board"
	"github.com/sarchlab/boardwire/config"
	"github.com/sarchlab/boardwire/hexcoord"
	"github.com/sarchlab/boardwire/placement"
	"github.com/sarchlab/boardwire/wiring"
)

var (
	inventoryPath = flag.String("inventory", "", "cabinet inventory YAML file (required)")

	numBoards = flag.Int("num-boards", 0, "total board count; picks the most-square triad dimensions")
	width     = flag.Int("width", 0, "torus width in triads (with -height, overrides -num-boards)")
	height    = flag.Int("height", 0, "torus height in triads")

	transformation = flag.String("transformation", "auto", "slice, shear, or auto")
	uncrinkle      = flag.String("uncrinkle-direction", "rows", "rows or columns")
	foldX          = flag.Int("fold-x", 2, "folds along the x axis")
	foldY          = flag.Int("fold-y", 2, "folds along the y axis")

	planOut     = flag.String("plan-out", "wiring_plan.csv", "installation plan CSV output path")
	ethernetOut = flag.String("ethernet-out", "", "ethernet chip map CSV output path (optional)")

	verbose = flag.Bool("verbose", false, "enable plan-generation tracing")
)

func main() {
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = wiring.LevelPlan
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := run(); err != nil {
		slog.Error("wiring-plan failed", "err", err)
		atexit.Exit(1)
	}
	atexit.Exit(0)
}

func run() error {
	if *inventoryPath == "" {
		return fmt.Errorf("-inventory is required")
	}
	inv, err := config.LoadInventoryFile(*inventoryPath)
	if err != nil {
		return err
	}

	w, h := *width, *height
	if w == 0 || h == 0 {
		if *numBoards == 0 {
			return fmt.Errorf("either -num-boards or both -width and -height are required")
		}
		w, h, err = config.IdealSystemSize(*numBoards)
		if err != nil {
			return err
		}
	}
	slog.Info("planning system", "width", w, "height", h, "boards", 3*w*h)

	spec, err := inv.CabinetSpec()
	if err != nil {
		return err
	}

	boards := board.CreateTorus(w, h)
	hexBoards := make([]placement.BoardCoord2D[*board.Board, hexcoord.Hexagonal], len(boards))
	for i, bc := range boards {
		hexBoards[i] = placement.BoardCoord2D[*board.Board, hexcoord.Hexagonal]{Board: bc.Board, Coord: bc.Coord}
	}

	opts := placement.Options{
		Width: w, Height: h,
		Transformation:   parseTransformation(*transformation, w, h),
		Uncrinkle:        parseUncrinkle(*uncrinkle),
		FoldX:            *foldX,
		FoldY:            *foldY,
		NumCabinets:      inv.NumCabinets,
		FramesPerCabinet: inv.FramesPerCabinet,
		BoardsPerFrame:   inv.BoardsPerFrame,
		Cabinet:          spec,
	}

	placed, err := placement.Place(hexBoards, opts)
	if err != nil {
		return err
	}

	cabinetPositions := make(map[*board.Board]hexcoord.Cabinet, len(placed.Cabinets))
	for _, bc := range placed.Cabinets {
		cabinetPositions[bc.Board] = bc.Coord
	}
	physicalPositions := make(map[*board.Board]hexcoord.Cartesian3D, len(placed.Physical))
	for _, bc := range placed.Physical {
		physicalPositions[bc.Board] = bc.Coord
	}

	plan, err := wiring.GeneratePlan(
		boards, cabinetPositions, physicalPositions,
		inv.SocketOffsets(), inv.CableInventory(), inv.MinimumArcHeight)
	if err != nil {
		return err
	}
	flat := wiring.FlattenPlan(plan, inv.SocketOffsets())
	slog.Info("plan generated", "wires", len(flat))

	if err := writePlan(*planOut, flat, cabinetPositions); err != nil {
		return err
	}
	slog.Info("wrote installation plan", "path", *planOut)

	if *ethernetOut != "" {
		if err := writeEthernetMap(*ethernetOut, boards, cabinetPositions); err != nil {
			return err
		}
		slog.Info("wrote ethernet chip map", "path", *ethernetOut)
	}

	return nil
}

func parseTransformation(s string, w, h int) placement.Transformation {
	switch s {
	case "slice":
		return placement.Slice
	case "shear":
		return placement.Shear
	default:
		return placement.DefaultTransformation(w, h)
	}
}

func parseUncrinkle(s string) placement.Uncrinkle {
	if s == "columns" {
		return placement.Columns
	}
	return placement.Rows
}

func writePlan(path string, flat []wiring.PlannedWire, positions map[*board.Board]hexcoord.Cabinet) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return wiring.WritePlanCSV(f, wiring.ToCSVWires(flat, positions))
}

func writeEthernetMap(path string, boards []board.BoardCoord, positions map[*board.Board]hexcoord.Cabinet) error {
	hexCoords := make(map[*board.Board]hexcoord.Hexagonal, len(boards))
	for _, bc := range boards {
		hexCoords[bc.Board] = bc.Coord
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return wiring.WriteEthernetChipMapCSV(f, wiring.EthernetChipMap(hexCoords, positions, 4))
}
