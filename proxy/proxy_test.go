package proxy_test

import (
	"bufio"
	"net"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/boardwire/hexcoord"
	"github.com/sarchlab/boardwire/probe"
	"github.com/sarchlab/boardwire/proxy"
)

func startServer(hw proxy.Hardware) (*proxy.Server, func()) {
	server, err := proxy.NewServer(hw, "127.0.0.1:0", nil)
	Expect(err).NotTo(HaveOccurred())

	done := make(chan struct{})
	go func() {
		_ = server.Serve()
		close(done)
	}()

	return server, func() {
		server.Close()
		<-done
	}
}

var _ = Describe("Server and Client", func() {
	var (
		hw     *fakeHardware
		server *proxy.Server
		stop   func()
	)

	BeforeEach(func() {
		hw = newFakeHardware()
		server, stop = startServer(hw)
	})

	AfterEach(func() {
		stop()
	})

	It("completes the VERSION handshake", func() {
		client, err := proxy.Dial(server.Addr().String())
		Expect(err).NotTo(HaveOccurred())
		defer client.Close()
	})

	It("proxies TARGET to the underlying hardware", func() {
		a := probe.Socket{Cabinet: 0, Frame: 0, Board: 0, Direction: hexcoord.East}
		b := probe.Socket{Cabinet: 0, Frame: 0, Board: 1, Direction: hexcoord.West}
		hw.links[a] = b

		client, err := proxy.Dial(server.Addr().String())
		Expect(err).NotTo(HaveOccurred())
		defer client.Close()

		target, ok, err := client.LinkTarget(a)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(target).To(Equal(b))
	})

	It("reports no link for an unwired socket", func() {
		client, err := proxy.Dial(server.Addr().String())
		Expect(err).NotTo(HaveOccurred())
		defer client.Close()

		_, ok, err := client.LinkTarget(probe.Socket{Cabinet: 0, Frame: 0, Board: 0, Direction: hexcoord.North})
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
	})

	It("turns the LED on for the first setter and off only once every setter retracts", func() {
		clientA, err := proxy.Dial(server.Addr().String())
		Expect(err).NotTo(HaveOccurred())
		defer clientA.Close()

		clientB, err := proxy.Dial(server.Addr().String())
		Expect(err).NotTo(HaveOccurred())
		defer clientB.Close()

		key := proxy.LEDKey{Cabinet: 0, Frame: 0, Board: 0, LED: 3}

		Expect(clientA.SetLED(3, true, 0, 0, 0)).To(Succeed())
		Eventually(func() bool { return hw.ledIsOn(key) }).Should(BeTrue())
		Expect(hw.callCount()).To(Equal(1))

		Expect(clientB.SetLED(3, true, 0, 0, 0)).To(Succeed())
		Expect(hw.callCount()).To(Equal(1), "second setter must not re-trigger the hardware call")

		Expect(clientA.SetLED(3, false, 0, 0, 0)).To(Succeed())
		Expect(hw.ledIsOn(key)).To(BeTrue(), "LED stays on while client B still wants it on")

		clientB.Close()
		Eventually(func() bool { return !hw.ledIsOn(key) }).Should(BeTrue())
	})

	It("rejects a VERSION mismatch and disconnects the client", func() {
		conn, err := net.Dial("tcp", server.Addr().String())
		Expect(err).NotTo(HaveOccurred())
		defer conn.Close()

		_, err = conn.Write([]byte("VERSION,0.0.0\n"))
		Expect(err).NotTo(HaveOccurred())

		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		reader := bufio.NewReader(conn)
		_, err = reader.ReadString('\n')
		Expect(err).To(HaveOccurred(), "server closes the connection instead of replying OK")
	})

	It("disconnects a client whose command line exceeds the size limit", func() {
		conn, err := net.Dial("tcp", server.Addr().String())
		Expect(err).NotTo(HaveOccurred())
		defer conn.Close()

		oversized := make([]byte, 2048)
		for i := range oversized {
			oversized[i] = 'A'
		}
		oversized[len(oversized)-1] = '\n'
		_, err = conn.Write(oversized)
		Expect(err).NotTo(HaveOccurred())

		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		reader := bufio.NewReader(conn)
		_, err = reader.ReadString('\n')
		Expect(err).To(HaveOccurred())
	})
})
