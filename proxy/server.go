package proxy

import (
	"bufio"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/xid"

	"github.com/sarchlab/boardwire/hexcoord"
	"github.com/sarchlab/boardwire/probe"
)

// Hardware is the abstract boundary the proxy server multiplexes onto:
// direct LED control plus a link-target query. *probe.Probe satisfies
// LinkTarget directly; the transport it was built with satisfies SetLED.
type Hardware interface {
	SetLED(led int, state bool, cabinet, frame, board int) error
	LinkTarget(s probe.Socket) (target probe.Socket, ok bool, err error)
}

// request is one parsed command handed from a connection's reader
// goroutine to the server's single dispatch goroutine. reply carries
// the response line back (without its trailing newline).
type request struct {
	client *clientConn
	cmd    string
	args   string
	reply  chan string
	err    chan error
}

type clientConn struct {
	conn net.Conn
	addr string
	// id correlates every log line about this connection; the wire
	// protocol itself has no client identifier.
	id xid.ID
}

// Server multiplexes LED and link-target requests from many TCP clients
// onto one Hardware. All shared state (the set of connected clients and
// the per-LED setter sets) is owned exclusively by the goroutine running
// Serve; connection goroutines never touch it directly, they only send
// requests and wait for replies. This keeps the command handling
// single-threaded and lock-free without an OS-level select loop, which
// Go's net package does not expose over arbitrary sockets.
type Server struct {
	hw       Hardware
	listener net.Listener
	logger   *slog.Logger

	requests chan request

	clients    map[*clientConn]bool
	ledSetters map[LEDKey]map[*clientConn]bool

	mu      sync.Mutex // guards stats read by the HTTP status sidecar only
	clientN int
	ledOn   map[LEDKey]int
}

// NewServer opens a TCP listener on addr (host:port, e.g. ":6512") and
// returns a Server ready to Serve.
func NewServer(hw Hardware, addr string, logger *slog.Logger) (*Server, error) {
	if addr == "" {
		addr = fmt.Sprintf(":%d", DefaultPort)
	}
	if logger == nil {
		logger = slog.Default()
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	return &Server{
		hw:         hw,
		listener:   listener,
		logger:     logger,
		requests:   make(chan request),
		clients:    map[*clientConn]bool{},
		ledSetters: map[LEDKey]map[*clientConn]bool{},
		ledOn:      map[LEDKey]int{},
	}, nil
}

// Addr returns the address the server is listening on.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Serve accepts connections and runs the dispatch loop until the
// listener is closed (by Close). It returns nil on a clean shutdown.
func (s *Server) Serve() error {
	accepted := make(chan net.Conn)
	acceptErr := make(chan error, 1)

	go func() {
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				acceptErr <- err
				return
			}
			accepted <- conn
		}
	}()

	for {
		select {
		case conn := <-accepted:
			client := &clientConn{conn: conn, addr: conn.RemoteAddr().String(), id: xid.New()}
			s.clients[client] = true
			s.setStat(func() { s.clientN++ })
			s.logger.Info("proxy: client connected", "client", client.id, "addr", client.addr)
			go s.readClient(client)

		case req := <-s.requests:
			reply, err := s.dispatch(req.client, req.cmd, req.args)
			if err != nil {
				req.err <- err
				continue
			}
			req.reply <- reply

		case err := <-acceptErr:
			for client := range s.clients {
				client.conn.Close()
			}
			if isClosedListenerErr(err) {
				return nil
			}
			return err
		}
	}
}

// Close stops accepting new connections. Serve then closes every
// connection still open as it returns.
func (s *Server) Close() error {
	return s.listener.Close()
}

func isClosedListenerErr(err error) bool {
	return strings.Contains(err.Error(), "use of closed network connection")
}

// readClient owns one connection's socket: it reads lines, forwards each
// as a request to the dispatch loop, and writes back whatever response
// (or protocol error) comes back. It never touches server state itself.
func (s *Server) readClient(client *clientConn) {
	reader := bufio.NewReaderSize(client.conn, maxLineBytes+1)

	defer s.disconnect(client)

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimRight(line, "\r\n")
		if len(line) > maxLineBytes {
			s.logger.Error("proxy: client sent an oversized command", "client", client.id, "addr", client.addr)
			return
		}

		cmd, args, _ := strings.Cut(line, ",")

		reply := make(chan string, 1)
		errc := make(chan error, 1)
		s.requests <- request{client: client, cmd: cmd, args: args, reply: reply, err: errc}

		select {
		case resp := <-reply:
			if _, err := client.conn.Write([]byte(resp + "\n")); err != nil {
				return
			}
		case err := <-errc:
			s.logger.Error("proxy: disconnecting client", "client", client.id, "addr", client.addr, "reason", err)
			return
		}
	}
}

// disconnect tells the dispatch loop to drop a client: it is a request
// like any other, so LED-setter cleanup happens from the owning
// goroutine with no locking.
func (s *Server) disconnect(client *clientConn) {
	reply := make(chan string, 1)
	errc := make(chan error, 1)
	s.requests <- request{client: client, cmd: "__disconnect", reply: reply, err: errc}
	<-reply // block until the dispatch loop has processed the teardown
	client.conn.Close()
}

func (s *Server) dispatch(client *clientConn, cmd, args string) (string, error) {
	switch cmd {
	case "VERSION":
		return s.handleVersion(args)
	case "LED":
		return s.handleLED(client, args)
	case "TARGET":
		return s.handleTarget(args)
	case "__disconnect":
		s.removeClient(client)
		return "", nil
	default:
		return "", protocolErrorf("unrecognised command %q", cmd)
	}
}

func (s *Server) handleVersion(args string) (string, error) {
	if args != ProtocolVersion {
		return "", protocolErrorf("client protocol version %q != server %q", args, ProtocolVersion)
	}
	return "OK", nil
}

func (s *Server) handleLED(client *clientConn, args string) (string, error) {
	fields := strings.Split(args, ",")
	if len(fields) != 5 {
		return "", protocolErrorf("malformed LED command %q", args)
	}
	nums, err := parseInts(fields)
	if err != nil {
		return "", err
	}

	key := LEDKey{Cabinet: nums[0], Frame: nums[1], Board: nums[2], LED: nums[3]}
	s.setLED(client, key, nums[4] != 0)

	return "OK", nil
}

// setLED applies the reference-counting rule: the hardware LED is only
// touched when the non-empty status of its setter set actually changes.
func (s *Server) setLED(client *clientConn, key LEDKey, state bool) {
	setters, ok := s.ledSetters[key]
	if !ok {
		setters = map[*clientConn]bool{}
		s.ledSetters[key] = setters
	}

	before := len(setters) > 0
	if state {
		setters[client] = true
	} else {
		delete(setters, client)
	}
	after := len(setters) > 0

	if before != after {
		_ = s.hw.SetLED(key.LED, after, key.Cabinet, key.Frame, key.Board)
		s.setStat(func() {
			if after {
				s.ledOn[key]++
			}
		})
	}
}

func (s *Server) handleTarget(args string) (string, error) {
	fields := strings.Split(args, ",")
	if len(fields) != 4 {
		return "", protocolErrorf("malformed TARGET command %q", args)
	}
	nums, err := parseInts(fields)
	if err != nil {
		return "", err
	}

	socket := probe.Socket{Cabinet: nums[0], Frame: nums[1], Board: nums[2], Direction: hexcoord.Direction(nums[3])}
	target, ok, err := s.hw.LinkTarget(socket)
	if err != nil {
		return "", err
	}
	if !ok {
		return "None", nil
	}
	return fmt.Sprintf("%d,%d,%d,%d", target.Cabinet, target.Frame, target.Board, int(target.Direction)), nil
}

// removeClient turns off every LED the departing client was holding on
// and forgets it, preserving the invariant that an LED is lit exactly
// when some live client still wants it lit.
func (s *Server) removeClient(client *clientConn) {
	for key, setters := range s.ledSetters {
		if setters[client] {
			s.setLED(client, key, false)
		}
	}
	delete(s.clients, client)
	s.setStat(func() { s.clientN-- })
}

func parseInts(fields []string) ([]int, error) {
	out := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, protocolErrorf("expected integer, got %q", f)
		}
		out[i] = n
	}
	return out, nil
}

func (s *Server) setStat(f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f()
}

// Stats is a point-in-time snapshot of server activity, reported over
// the HTTP status sidecar.
type Stats struct {
	ConnectedClients int `json:"connected_clients"`
	LEDActivations   int `json:"led_activations"`
}

// Stats returns a snapshot safe to call concurrently with Serve.
func (s *Server) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, n := range s.ledOn {
		total += n
	}
	return Stats{ConnectedClients: s.clientN, LEDActivations: total}
}
