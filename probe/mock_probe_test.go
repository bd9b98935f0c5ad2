package probe_test

import (
	"github.com/golang/mock/gomock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/boardwire/hexcoord"
	"github.com/sarchlab/boardwire/probe"
)

var _ = Describe("Probe register traffic", func() {
	var (
		ctrl      *gomock.Controller
		transport *MockRegisterTransport
	)

	BeforeEach(func() {
		ctrl = gomock.NewController(GinkgoT())
		transport = NewMockRegisterTransport(ctrl)
	})

	It("reads only the handshake register when the link is down", func() {
		p, err := probe.NewProbe(transport, probe.Options{})
		Expect(err).ToNot(HaveOccurred())

		// HAND for North lives on FPGA 2, bank base 0: (21 << 2) | 0.
		transport.EXPECT().
			ReadFPGAReg(2, uint32(21<<2), 0, 0, 0).
			Return(uint32(0), nil)

		_, ok, err := p.LinkTarget(probe.Socket{Direction: hexcoord.North})
		Expect(err).ToNot(HaveOccurred())
		Expect(ok).To(BeFalse())
	})

	It("raises a probe error when the IDSO readback mismatches", func() {
		mask := uint16(0)
		transport.EXPECT().
			WriteFPGAReg(gomock.Any(), gomock.Any(), gomock.Any(), 0, 0, 0).
			Return(nil)
		transport.EXPECT().
			ReadFPGAReg(gomock.Any(), gomock.Any(), 0, 0, 0).
			Return(uint32(0xFFFF), nil)

		_, err := probe.NewProbe(transport, probe.Options{
			NumCabinets: 1, FramesPerCabinet: 1, BoardsPerFrame: 1,
			Mask: &mask,
		})

		Expect(err).To(BeAssignableToTypeOf(&probe.ProbeError{}))
	})
})
