package wiring_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/boardwire/hexcoord"
	"github.com/sarchlab/boardwire/wiring"
)

var _ = Describe("Plan CSV", func() {
	It("round-trips through WritePlanCSV/ReadPlanCSV", func() {
		length := 0.3
		wires := []wiring.CSVWire{
			{
				Src:    wiring.CSVEndpoint{Cabinet: 0, Frame: 1, Board: 2, Direction: hexcoord.North},
				Dst:    wiring.CSVEndpoint{Cabinet: 0, Frame: 1, Board: 3, Direction: hexcoord.South},
				Length: &length,
			},
			{
				Src:    wiring.CSVEndpoint{Cabinet: 1, Frame: 0, Board: 0, Direction: hexcoord.SouthWest},
				Dst:    wiring.CSVEndpoint{Cabinet: 0, Frame: 4, Board: 23, Direction: hexcoord.NorthEast},
				Length: nil,
			},
		}

		var buf bytes.Buffer
		Expect(wiring.WritePlanCSV(&buf, wires)).To(Succeed())

		got, err := wiring.ReadPlanCSV(&buf)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal(wires))
	})

	It("uses the hyphenated lower-case direction names", func() {
		length := 1.0
		wires := []wiring.CSVWire{{
			Src:    wiring.CSVEndpoint{Direction: hexcoord.NorthEast},
			Dst:    wiring.CSVEndpoint{Direction: hexcoord.SouthWest},
			Length: &length,
		}}

		var buf bytes.Buffer
		Expect(wiring.WritePlanCSV(&buf, wires)).To(Succeed())
		Expect(buf.String()).To(ContainSubstring("north-east"))
		Expect(buf.String()).To(ContainSubstring("south-west"))
	})
})

var _ = Describe("Ethernet chip map CSV", func() {
	It("writes a header and one row per board", func() {
		rows := []wiring.EthernetChipRow{
			{Cabinet: 0, Frame: 0, Board: 0, X: 0, Y: 0},
			{Cabinet: 0, Frame: 0, Board: 1, X: 4, Y: 0},
		}

		var buf bytes.Buffer
		Expect(wiring.WriteEthernetChipMapCSV(&buf, rows)).To(Succeed())
		Expect(buf.String()).To(ContainSubstring("cabinet,frame,board,x,y"))
		Expect(buf.String()).To(ContainSubstring("0,0,1,4,0"))
	})
})
