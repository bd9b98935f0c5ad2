// Package guide drives an operator through an installation plan one
// wire at a time: it lights the LEDs at the current wire's endpoints,
// optionally polls hardware to auto-advance once a cable is seen
// correctly installed, and logs every state change for later analysis.
package guide

import (
	"github.com/sarchlab/boardwire/probe"
	"github.com/sarchlab/boardwire/wiring"
)

// Instruction is one step of an installation plan, expressed in terms
// of the sockets to connect (or, when Length is nil, disconnect).
type Instruction = wiring.CSVWire

// HardwareClient is the narrow surface Controller needs: setting a
// diagnostic LED and querying what is on the other end of a link. Both
// *proxy.Client and *proxy.Server's underlying Hardware (and so, a bare
// probe.Probe paired with a RegisterTransport) satisfy it.
type HardwareClient interface {
	SetLED(led int, state bool, cabinet, frame, board int) error
	LinkTarget(s probe.Socket) (target probe.Socket, ok bool, err error)
}

func socketOf(e wiring.CSVEndpoint) probe.Socket {
	return probe.Socket{Cabinet: e.Cabinet, Frame: e.Frame, Board: e.Board, Direction: e.Direction}
}

// Announcer reads guide events aloud (or otherwise surfaces them to an
// operator). NopAnnouncer is the silent default.
type Announcer interface {
	Speak(text string)
}

// NopAnnouncer discards every announcement.
type NopAnnouncer struct{}

// Speak implements Announcer.
func (NopAnnouncer) Speak(string) {}
