package probe_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/boardwire/hexcoord"
	"github.com/sarchlab/boardwire/probe"
)

func maskPtr(v uint16) *uint16 { return &v }

var _ = Describe("NewProbe", func() {
	It("assigns every socket a unique ID", func() {
		transport := newFakeTransport()

		p, err := probe.NewProbe(transport, probe.Options{
			NumCabinets: 2, FramesPerCabinet: 5, BoardsPerFrame: 24, Mask: maskPtr(0xABCD),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(p).NotTo(BeNil())
	})

	It("produces a different ID table across two runs with distinct masks", func() {
		transportA := newFakeTransport()
		transportB := newFakeTransport()

		_, err := probe.NewProbe(transportA, probe.Options{NumCabinets: 1, FramesPerCabinet: 1, BoardsPerFrame: 1, Mask: maskPtr(0x1111)})
		Expect(err).NotTo(HaveOccurred())
		_, err = probe.NewProbe(transportB, probe.Options{NumCabinets: 1, FramesPerCabinet: 1, BoardsPerFrame: 1, Mask: maskPtr(0x2222)})
		Expect(err).NotTo(HaveOccurred())

		socket := probe.Socket{Cabinet: 0, Frame: 0, Board: 0, Direction: hexcoord.East}
		Expect(transportA.idso[socket]).NotTo(Equal(transportB.idso[socket]))
	})

	It("returns a *ProbeError when an FPGA fails to read back its assigned ID", func() {
		transport := newFakeTransport()
		transport.dead[probe.Socket{Cabinet: 0, Frame: 0, Board: 0, Direction: hexcoord.East}] = true

		_, err := probe.NewProbe(transport, probe.Options{NumCabinets: 1, FramesPerCabinet: 1, BoardsPerFrame: 1, Mask: maskPtr(0)})
		Expect(err).To(HaveOccurred())
		Expect(err).To(BeAssignableToTypeOf(&probe.ProbeError{}))
	})
})

var _ = Describe("LinkTarget", func() {
	It("returns ok=false when the handshake bit is clear", func() {
		transport := newFakeTransport()
		p, err := probe.NewProbe(transport, probe.Options{NumCabinets: 1, FramesPerCabinet: 1, BoardsPerFrame: 1, Mask: maskPtr(0)})
		Expect(err).NotTo(HaveOccurred())

		_, ok, err := p.LinkTarget(probe.Socket{Cabinet: 0, Frame: 0, Board: 0, Direction: hexcoord.East})
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
	})

	It("returns the remote socket when the link is wired", func() {
		transport := newFakeTransport()
		a := probe.Socket{Cabinet: 0, Frame: 0, Board: 0, Direction: hexcoord.East}
		b := probe.Socket{Cabinet: 0, Frame: 0, Board: 1, Direction: hexcoord.West}
		transport.wire(a, b)

		p, err := probe.NewProbe(transport, probe.Options{NumCabinets: 1, FramesPerCabinet: 1, BoardsPerFrame: 2, Mask: maskPtr(0)})
		Expect(err).NotTo(HaveOccurred())

		target, ok, err := p.LinkTarget(a)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(target).To(Equal(b))
	})
})

var _ = Describe("DiscoverWires", func() {
	It("reports a wire only when both endpoints confirm each other", func() {
		transport := newFakeTransport()
		a := probe.Socket{Cabinet: 0, Frame: 0, Board: 0, Direction: hexcoord.East}
		b := probe.Socket{Cabinet: 0, Frame: 0, Board: 1, Direction: hexcoord.West}
		transport.wire(a, b)

		p, err := probe.NewProbe(transport, probe.Options{NumCabinets: 1, FramesPerCabinet: 1, BoardsPerFrame: 2, Mask: maskPtr(0)})
		Expect(err).NotTo(HaveOccurred())

		wires, err := p.DiscoverWires()
		Expect(err).NotTo(HaveOccurred())
		Expect(wires).To(ConsistOf(probe.DiscoveredWire{Src: a, Dst: b}))
	})

	It("places north, east and south-west canonically as the source side", func() {
		transport := newFakeTransport()
		a := probe.Socket{Cabinet: 0, Frame: 0, Board: 0, Direction: hexcoord.North}
		b := probe.Socket{Cabinet: 0, Frame: 0, Board: 1, Direction: hexcoord.South}
		transport.wire(a, b)

		p, err := probe.NewProbe(transport, probe.Options{NumCabinets: 1, FramesPerCabinet: 1, BoardsPerFrame: 2, Mask: maskPtr(0)})
		Expect(err).NotTo(HaveOccurred())

		wires, err := p.DiscoverWires()
		Expect(err).NotTo(HaveOccurred())
		Expect(wires).To(HaveLen(1))
		Expect(wires[0].Src.Direction).To(Equal(hexcoord.North))
		Expect(wires[0].Dst.Direction).To(Equal(hexcoord.South))
	})

	It("does not report a wire whose link is not wired at all", func() {
		transport := newFakeTransport()
		p, err := probe.NewProbe(transport, probe.Options{NumCabinets: 1, FramesPerCabinet: 1, BoardsPerFrame: 2, Mask: maskPtr(0)})
		Expect(err).NotTo(HaveOccurred())

		wires, err := p.DiscoverWires()
		Expect(err).NotTo(HaveOccurred())
		Expect(wires).To(BeEmpty())
	})
})
