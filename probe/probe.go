// Package probe implements the live wiring-verification protocol: it
// stamps every socket in a system with a unique ID via idle-channel
// sentinels, then reads back the ID observed at the far end of each link
// to discover the machine's actual physical wiring.
package probe

import (
	"fmt"
	"math/rand"

	"github.com/sarchlab/boardwire/hexcoord"
)

// ProbeError indicates a hardware fault: an FPGA register readback did
// not match the value just written, meaning that FPGA is powered down.
type ProbeError struct {
	Msg string
}

func (e *ProbeError) Error() string {
	return "probe: " + e.Msg
}

// Socket identifies one of a system's (cabinet, frame, board, direction)
// link endpoints.
type Socket struct {
	Cabinet, Frame, Board int
	Direction             hexcoord.Direction
}

//go:generate mockgen -destination mock_transport_test.go -package probe_test -mock_names RegisterTransport=MockRegisterTransport github.com/sarchlab/boardwire/probe RegisterTransport

// RegisterTransport is the abstract boundary over the low-level BMP
// register transport: 32-bit FPGA register access plus diagnostic LED
// control. Implementations talk to real hardware; probe never assumes
// more than this narrow interface.
type RegisterTransport interface {
	WriteFPGAReg(fpgaNum int, addr uint32, value uint32, cabinet, frame, board int) error
	ReadFPGAReg(fpgaNum int, addr uint32, cabinet, frame, board int) (uint32, error)
	SetLED(led int, state bool, cabinet, frame, board int) error
}

// fpgaBank gives, for each link direction, the index of the FPGA
// responsible for it and the base address of its register bank.
type fpgaBank struct {
	fpgaNum int
	base    uint32
}

var directionFPGA = map[hexcoord.Direction]fpgaBank{
	hexcoord.South:     {fpgaNum: 0, base: 0x00010000},
	hexcoord.East:      {fpgaNum: 0, base: 0x00000000},
	hexcoord.West:      {fpgaNum: 1, base: 0x00010000},
	hexcoord.SouthWest: {fpgaNum: 1, base: 0x00000000},
	hexcoord.NorthEast: {fpgaNum: 2, base: 0x00010000},
	hexcoord.North:     {fpgaNum: 2, base: 0x00000000},
}

const (
	idsoReg = 19 // idle-sentinel output: value embedded in idle packets sent from this endpoint
	idsiReg = 20 // idle-sentinel input: value received in the most recent idle packet
	handReg = 21 // bit 0: handshake-alive flag

	scrmReg = 0x00040010 // idle-packet scrambling enable, global per FPGA

	numIDBits = 16
)

func registerAddr(reg uint32, base uint32) uint32 {
	return (reg << 2) | base
}

// Probe assigns every socket in a (numCabinets, framesPerCabinet,
// boardsPerFrame) system a unique 16-bit ID and can then query which
// socket, if any, is connected to the far end of any other.
type Probe struct {
	transport RegisterTransport

	numCabinets      int
	framesPerCabinet int
	boardsPerFrame   int

	idToSocket map[uint16]Socket
	socketToID map[Socket]uint16
}

// Options configures NewProbe. Mask overrides the random per-run XOR mask
// applied to assigned IDs; nil (the default) causes NewProbe to draw a
// fresh random mask, so stale IDs from a previous run cannot alias.
type Options struct {
	NumCabinets      int
	FramesPerCabinet int
	BoardsPerFrame   int
	Mask             *uint16
}

// NewProbe assigns a unique ID to every socket in the system described by
// opts, writes it to the corresponding IDSO register, reads it back to
// confirm the FPGA is powered on, and disables idle-packet scrambling on
// every FPGA so the assigned IDs are actually transmitted unscrambled.
func NewProbe(transport RegisterTransport, opts Options) (*Probe, error) {
	p := &Probe{
		transport:        transport,
		numCabinets:      opts.NumCabinets,
		framesPerCabinet: opts.FramesPerCabinet,
		boardsPerFrame:   opts.BoardsPerFrame,
		idToSocket:       map[uint16]Socket{},
		socketToID:       map[Socket]uint16{},
	}

	mask := opts.Mask
	if mask == nil {
		m := uint16(rand.Intn(1 << numIDBits))
		mask = &m
	}

	if err := p.assignLinkIDs(*mask); err != nil {
		return nil, err
	}

	return p, nil
}

func (p *Probe) assignLinkIDs(mask uint16) error {
	var linkIndex uint32

	for c := 0; c < p.numCabinets; c++ {
		for f := 0; f < p.framesPerCabinet; f++ {
			for b := 0; b < p.boardsPerFrame; b++ {
				for _, d := range hexcoord.Directions {
					id := uint16(linkIndex) ^ mask
					linkIndex++

					socket := Socket{Cabinet: c, Frame: f, Board: b, Direction: d}
					p.idToSocket[id] = socket
					p.socketToID[socket] = id

					if err := p.writeRegister(socket, idsoReg, uint32(id)); err != nil {
						return err
					}

					readBack, err := p.readRegister(socket, idsoReg)
					if err != nil {
						return err
					}
					if readBack != uint32(id) {
						return &ProbeError{Msg: fmt.Sprintf(
							"FPGA not powered on (cabinet:%d frame:%d board:%d link:%s)",
							c, f, b, d.Name())}
					}
				}

				for fpgaNum := 0; fpgaNum < 3; fpgaNum++ {
					if err := p.transport.WriteFPGAReg(fpgaNum, scrmReg, 0, c, f, b); err != nil {
						return err
					}
				}
			}
		}
	}

	return nil
}

func (p *Probe) writeRegister(s Socket, reg uint32, value uint32) error {
	bank := directionFPGA[s.Direction]
	return p.transport.WriteFPGAReg(bank.fpgaNum, registerAddr(reg, bank.base), value, s.Cabinet, s.Frame, s.Board)
}

func (p *Probe) readRegister(s Socket, reg uint32) (uint32, error) {
	bank := directionFPGA[s.Direction]
	return p.transport.ReadFPGAReg(bank.fpgaNum, registerAddr(reg, bank.base), s.Cabinet, s.Frame, s.Board)
}

// LinkTarget determines which socket, if any, is at the other end of the
// link at the given socket. It returns ok == false if the link's
// handshake is down or the observed remote ID is unknown.
func (p *Probe) LinkTarget(s Socket) (target Socket, ok bool, err error) {
	handshake, err := p.readRegister(s, handReg)
	if err != nil {
		return Socket{}, false, err
	}
	if handshake&1 == 0 {
		return Socket{}, false, nil
	}

	id, err := p.readRegister(s, idsiReg)
	if err != nil {
		return Socket{}, false, err
	}

	target, ok = p.idToSocket[uint16(id)]
	return target, ok, nil
}

// DiscoveredWire is a wire found to be alive by DiscoverWires. Src is the
// endpoint facing north, east or south-west and Dst the one facing south,
// west or north-east (the connectors are electrically polarised so this
// always picks a consistent side); a pair whose two endpoints both face
// directions of the same group is not reported.
type DiscoveredWire struct {
	Src, Dst Socket
}

// DiscoverWires queries every socket's link target and returns every wire
// that was discovered in both directions: a is reported connected to b
// only if a reports b as its target AND b reports a as its target.
func (p *Probe) DiscoverWires() ([]DiscoveredWire, error) {
	fromWires := map[[2]Socket]bool{}
	toWires := map[[2]Socket]bool{}

	for c := 0; c < p.numCabinets; c++ {
		for f := 0; f < p.framesPerCabinet; f++ {
			for b := 0; b < p.boardsPerFrame; b++ {
				for _, d := range hexcoord.Directions {
					source := Socket{Cabinet: c, Frame: f, Board: b, Direction: d}
					target, ok, err := p.LinkTarget(source)
					if err != nil {
						return nil, err
					}
					if !ok {
						continue
					}

					if d == hexcoord.South || d == hexcoord.West || d == hexcoord.NorthEast {
						toWires[[2]Socket{target, source}] = true
					} else {
						fromWires[[2]Socket{source, target}] = true
					}
				}
			}
		}
	}

	var out []DiscoveredWire
	for pair := range fromWires {
		if toWires[pair] {
			out = append(out, DiscoveredWire{Src: pair[0], Dst: pair[1]})
		}
	}
	return out, nil
}
