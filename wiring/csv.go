package wiring

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/sarchlab/boardwire/board"
	"github.com/sarchlab/boardwire/hexcoord"
)

// CSVEndpoint is a (cabinet, frame, board, direction) socket location, the
// unit the installation-plan and ethernet-chip-map CSV formats address
// endpoints by (as opposed to the in-process board.Board pointers Wire
// uses).
type CSVEndpoint struct {
	Cabinet, Frame, Board int
	Direction             hexcoord.Direction
}

// CSVWire is a planned wire expressed in terms of CSVEndpoint locations
// rather than live board.Board pointers, ready to serialise.
type CSVWire struct {
	Src, Dst CSVEndpoint
	// Length is nil for a disconnect instruction.
	Length *float64
}

// WritePlanCSV writes an installation plan as CSV rows of source
// cabinet/frame/board/direction, destination cabinet/frame/board/
// direction, and cable length in metres (blank for a disconnect).
func WritePlanCSV(w io.Writer, wires []CSVWire) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	for _, wire := range wires {
		length := ""
		if wire.Length != nil {
			length = strconv.FormatFloat(*wire.Length, 'f', -1, 64)
		}

		row := []string{
			strconv.Itoa(wire.Src.Cabinet),
			strconv.Itoa(wire.Src.Frame),
			strconv.Itoa(wire.Src.Board),
			wire.Src.Direction.Hyphenated(),
			strconv.Itoa(wire.Dst.Cabinet),
			strconv.Itoa(wire.Dst.Frame),
			strconv.Itoa(wire.Dst.Board),
			wire.Dst.Direction.Hyphenated(),
			length,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	return cw.Error()
}

// ReadPlanCSV parses an installation-plan CSV as written by WritePlanCSV.
func ReadPlanCSV(r io.Reader) ([]CSVWire, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 9

	var out []CSVWire
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		wire, err := parsePlanRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, wire)
	}

	return out, nil
}

func parsePlanRow(row []string) (CSVWire, error) {
	src, err := parseCSVEndpoint(row[0], row[1], row[2], row[3])
	if err != nil {
		return CSVWire{}, err
	}
	dst, err := parseCSVEndpoint(row[4], row[5], row[6], row[7])
	if err != nil {
		return CSVWire{}, err
	}

	var length *float64
	if row[8] != "" {
		v, err := strconv.ParseFloat(row[8], 64)
		if err != nil {
			return CSVWire{}, fmt.Errorf("wiring: invalid cable length %q: %w", row[8], err)
		}
		length = &v
	}

	return CSVWire{Src: src, Dst: dst, Length: length}, nil
}

func parseCSVEndpoint(cabinetStr, frameStr, boardStr, dirStr string) (CSVEndpoint, error) {
	c, err := strconv.Atoi(cabinetStr)
	if err != nil {
		return CSVEndpoint{}, fmt.Errorf("wiring: invalid cabinet %q: %w", cabinetStr, err)
	}
	f, err := strconv.Atoi(frameStr)
	if err != nil {
		return CSVEndpoint{}, fmt.Errorf("wiring: invalid frame %q: %w", frameStr, err)
	}
	b, err := strconv.Atoi(boardStr)
	if err != nil {
		return CSVEndpoint{}, fmt.Errorf("wiring: invalid board %q: %w", boardStr, err)
	}
	d, err := hexcoord.ParseHyphenated(dirStr)
	if err != nil {
		return CSVEndpoint{}, err
	}

	return CSVEndpoint{Cabinet: c, Frame: f, Board: b, Direction: d}, nil
}

// ToCSVWires resolves PlannedWires expressed over live board.Board
// pointers into CSVWires addressed by (cabinet, frame, board), using
// positions to locate each endpoint's board.
func ToCSVWires(wires []PlannedWire, positions map[*board.Board]hexcoord.Cabinet) []CSVWire {
	out := make([]CSVWire, len(wires))
	for i, w := range wires {
		srcPos := positions[w.Src.Board]
		dstPos := positions[w.Dst.Board]
		out[i] = CSVWire{
			Src:    CSVEndpoint{Cabinet: srcPos.Cabinet, Frame: srcPos.Frame, Board: srcPos.Board, Direction: w.Src.Direction},
			Dst:    CSVEndpoint{Cabinet: dstPos.Cabinet, Frame: dstPos.Frame, Board: dstPos.Board, Direction: w.Dst.Direction},
			Length: w.Length,
		}
	}
	return out
}

// EthernetChipRow is one row of the ethernet-chip-map CSV: the
// chip-coordinate of the bottom-left chip of a board in the network
// topology.
type EthernetChipRow struct {
	Cabinet, Frame, Board int
	X, Y                  int
}

// WriteEthernetChipMapCSV writes a "cabinet,frame,board,x,y" CSV giving
// the chip-coordinate of the bottom-left chip of every board.
func WriteEthernetChipMapCSV(w io.Writer, rows []EthernetChipRow) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"cabinet", "frame", "board", "x", "y"}); err != nil {
		return err
	}

	for _, r := range rows {
		row := []string{
			strconv.Itoa(r.Cabinet),
			strconv.Itoa(r.Frame),
			strconv.Itoa(r.Board),
			strconv.Itoa(r.X),
			strconv.Itoa(r.Y),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	return cw.Error()
}

// EthernetChipMap builds the rows of WriteEthernetChipMapCSV from a
// placement result: for each board's hexagonal triad coordinate, its
// cabinet location and the bottom-left chip of its BoardToChip projection
// (using the standard 4x4-chip board layout).
func EthernetChipMap(hexCoords map[*board.Board]hexcoord.Hexagonal, positions map[*board.Board]hexcoord.Cabinet, layers int) []EthernetChipRow {
	out := make([]EthernetChipRow, 0, len(hexCoords))
	for b, hc := range hexCoords {
		pos := positions[b]
		chip := hexcoord.BoardToChip(hc, layers)
		out = append(out, EthernetChipRow{
			Cabinet: pos.Cabinet, Frame: pos.Frame, Board: pos.Board,
			X: chip.X, Y: chip.Y,
		})
	}
	return out
}
