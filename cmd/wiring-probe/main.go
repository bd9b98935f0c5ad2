// Command wiring-probe reads the live wiring of a machine through a
// proxy server, optionally diffs it against an installation plan, and
// prints a summary of what it found.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/boardwire/config"
	"github.com/sarchlab/boardwire/hexcoord"
	"github.com/sarchlab/boardwire/probe"
	"github.com/sarchlab/boardwire/proxy"
	"github.com/sarchlab/boardwire/wiring"
)

var (
	proxyAddr     = flag.String("proxy", fmt.Sprintf("localhost:%d", proxy.DefaultPort), "proxy server address")
	inventoryPath = flag.String("inventory", "", "cabinet inventory YAML file (required)")
	planPath      = flag.String("plan", "", "plan CSV to diff the live wiring against (optional)")
	repairOut     = flag.String("repair-out", "", "write a repair plan CSV here when -plan is given")
)

func main() {
	flag.Parse()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if err := run(); err != nil {
		slog.Error("wiring-probe failed", "err", err)
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

	client, err := proxy.Dial(*proxyAddr)
	if err != nil {
		return err
	}
	defer client.Close()

	actual, err := discoverWires(client, inv)
	if err != nil {
		return err
	}
	slog.Info("discovery complete", "wires", len(actual))

	if *planPath == "" {
		printWires("Discovered wires", actual)
		return nil
	}

	planned, err := loadPlan(*planPath)
	if err != nil {
		return err
	}

	missing, extra := diffCSVWires(actual, planned)
	printSummary(len(actual), len(planned), missing, extra)

	if *repairOut != "" {
		if err := writeRepairPlan(*repairOut, missing, extra); err != nil {
			return err
		}
		slog.Info("wrote repair plan", "path", *repairOut)
	}

	return nil
}

// discoverWires walks every socket the inventory describes and keeps the
// wires confirmed from both ends, each reported once from its north, east
// or south-west end. Unlike the probe's own DiscoverWires, it does not
// check which direction the far end faces.
func discoverWires(client *proxy.Client, inv *config.Inventory) ([]wiring.CSVWire, error) {
	numFrames := inv.NumFrames
	if numFrames == 0 {
		numFrames = inv.NumCabinets * inv.FramesPerCabinet
	}

	targets := map[probe.Socket]probe.Socket{}
	frame := 0
	for c := 0; c < inv.NumCabinets && frame < numFrames; c++ {
		for f := 0; f < inv.FramesPerCabinet && frame < numFrames; f++ {
			frame++
			for b := 0; b < inv.BoardsPerFrame; b++ {
				for _, d := range hexcoord.Directions {
					src := probe.Socket{Cabinet: c, Frame: f, Board: b, Direction: d}
					target, ok, err := client.LinkTarget(src)
					if err != nil {
						return nil, err
					}
					if ok {
						targets[src] = target
					}
				}
			}
		}
	}

	var out []wiring.CSVWire
	for src, dst := range targets {
		if back, ok := targets[dst]; !ok || back != src {
			continue
		}
		// Keep each confirmed pair once, with a source-side direction.
		if !isSourceDirection(src.Direction) {
			continue
		}
		out = append(out, wiring.CSVWire{
			Src: endpointOf(src),
			Dst: endpointOf(dst),
		})
	}
	sortWires(out)
	return out, nil
}

func isSourceDirection(d hexcoord.Direction) bool {
	return d == hexcoord.North || d == hexcoord.East || d == hexcoord.SouthWest
}

func endpointOf(s probe.Socket) wiring.CSVEndpoint {
	return wiring.CSVEndpoint{Cabinet: s.Cabinet, Frame: s.Frame, Board: s.Board, Direction: s.Direction}
}

func loadPlan(path string) ([]wiring.CSVWire, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return wiring.ReadPlanCSV(f)
}

type csvWireKey struct {
	src, dst wiring.CSVEndpoint
}

func keyOf(w wiring.CSVWire) csvWireKey {
	a, b := w.Src, w.Dst
	if !isSourceDirection(a.Direction) {
		a, b = b, a
	}
	return csvWireKey{src: a, dst: b}
}

// diffCSVWires returns the planned wires absent from the machine and the
// observed wires absent from the plan.
func diffCSVWires(actual, planned []wiring.CSVWire) (missing, extra []wiring.CSVWire) {
	actualSet := map[csvWireKey]bool{}
	for _, w := range actual {
		actualSet[keyOf(w)] = true
	}
	plannedSet := map[csvWireKey]bool{}
	for _, w := range planned {
		if w.Length == nil {
			continue
		}
		plannedSet[keyOf(w)] = true
	}

	for _, w := range planned {
		if w.Length != nil && !actualSet[keyOf(w)] {
			missing = append(missing, w)
		}
	}
	for _, w := range actual {
		if !plannedSet[keyOf(w)] {
			extra = append(extra, w)
		}
	}
	sortWires(missing)
	sortWires(extra)
	return missing, extra
}

// writeRepairPlan emits removals for every extra wire followed by
// insertions for every missing one, the order the guide consumes.
func writeRepairPlan(path string, missing, extra []wiring.CSVWire) error {
	repair := make([]wiring.CSVWire, 0, len(extra)+len(missing))
	for _, w := range extra {
		repair = append(repair, wiring.CSVWire{Src: w.Src, Dst: w.Dst})
	}
	repair = append(repair, missing...)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return wiring.WritePlanCSV(f, repair)
}

func sortWires(ws []wiring.CSVWire) {
	sort.Slice(ws, func(i, j int) bool {
		a, b := ws[i].Src, ws[j].Src
		if a.Cabinet != b.Cabinet {
			return a.Cabinet < b.Cabinet
		}
		if a.Frame != b.Frame {
			return a.Frame < b.Frame
		}
		if a.Board != b.Board {
			return a.Board < b.Board
		}
		return a.Direction < b.Direction
	})
}

func printSummary(numActual, numPlanned int, missing, extra []wiring.CSVWire) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("Wiring check")
	t.AppendHeader(table.Row{"", "Count"})
	t.AppendRow(table.Row{"Planned", numPlanned})
	t.AppendRow(table.Row{"Discovered", numActual})
	t.AppendRow(table.Row{"Missing", len(missing)})
	t.AppendRow(table.Row{"Unplanned", len(extra)})
	t.Render()

	if len(missing) > 0 {
		printWires("Missing wires", missing)
	}
	if len(extra) > 0 {
		printWires("Unplanned wires", extra)
	}
}

func printWires(title string, ws []wiring.CSVWire) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle(title)
	t.AppendHeader(table.Row{"C", "F", "B", "Socket", "C", "F", "B", "Socket"})
	for _, w := range ws {
		t.AppendRow(table.Row{
			w.Src.Cabinet, w.Src.Frame, w.Src.Board, w.Src.Direction.Hyphenated(),
			w.Dst.Cabinet, w.Dst.Frame, w.Dst.Board, w.Dst.Direction.Hyphenated(),
		})
	}
	t.Render()
}
