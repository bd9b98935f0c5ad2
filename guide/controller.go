package guide

import (
	"fmt"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/boardwire/hexcoord"
)

// defaultPollFreq is the default 500ms auto-advance poll interval.
const defaultPollFreq = 2 * sim.Hz

// Controller drives an operator through an Instruction list one wire at
// a time. It is a sim.TickingComponent: each Tick, if auto-advance is
// enabled and a HardwareClient was supplied, it polls both endpoints of
// the current wire and advances the cursor once the wire is confirmed
// installed (or confirmed removed, for a disconnect instruction).
type Controller struct {
	*sim.TickingComponent

	hw        HardwareClient
	announcer Announcer
	logger    *TimingLogger

	wires []Instruction
	cur   int

	autoAdvance          bool
	connectedIncorrectly bool
}

// Builder constructs a Controller the way the teacher's component
// builders do: a value-receiver chain of With* calls terminating in
// Build.
type Builder struct {
	engine      sim.Engine
	freq        sim.Freq
	hw          HardwareClient
	announcer   Announcer
	logger      *TimingLogger
	wires       []Instruction
	autoAdvance bool
}

// NewBuilder returns a Builder with auto-advance enabled, a silent
// announcer, and the 500ms poll interval.
func NewBuilder() Builder {
	return Builder{
		freq:        defaultPollFreq,
		announcer:   NopAnnouncer{},
		autoAdvance: true,
	}
}

// WithEngine sets the simulation engine driving the poll loop.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq overrides the poll frequency.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithHardware sets the client used to set LEDs and query link targets.
// A nil HardwareClient disables auto-advance (there is nothing to poll).
func (b Builder) WithHardware(hw HardwareClient) Builder {
	b.hw = hw
	return b
}

// WithAnnouncer sets the text-to-speech-style announcer used for
// operator-facing messages. Defaults to NopAnnouncer.
func (b Builder) WithAnnouncer(a Announcer) Builder {
	b.announcer = a
	return b
}

// WithTimingLogger attaches a TimingLogger to record every cursor move
// and connection event.
func (b Builder) WithTimingLogger(logger *TimingLogger) Builder {
	b.logger = logger
	return b
}

// WithWires sets the installation plan to guide the operator through.
func (b Builder) WithWires(wires []Instruction) Builder {
	b.wires = wires
	return b
}

// WithAutoAdvance sets the initial auto-advance state.
func (b Builder) WithAutoAdvance(enabled bool) Builder {
	b.autoAdvance = enabled
	return b
}

// Build constructs the Controller, positions its cursor at the first
// wire, and lights that wire's LEDs.
func (b Builder) Build(name string) *Controller {
	if len(b.wires) == 0 {
		panic("guide: a Controller needs at least one wire")
	}

	c := &Controller{
		hw:          b.hw,
		announcer:   b.announcer,
		logger:      b.logger,
		wires:       b.wires,
		autoAdvance: b.autoAdvance && b.hw != nil,
	}
	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, c)

	if c.logger != nil {
		c.logger.Start()
	}
	c.setLEDs(0, true)
	c.announceConnection(-1, 0)
	if c.logger != nil {
		c.logger.ConnectionStarted(socketOf(c.wires[0].Src), socketOf(c.wires[0].Dst))
	}

	return c
}

// Cursor returns the index of the wire currently being installed.
func (c *Controller) Cursor() int { return c.cur }

// Len returns the number of wires in the plan.
func (c *Controller) Len() int { return len(c.wires) }

// AutoAdvance reports whether auto-advance is currently enabled.
func (c *Controller) AutoAdvance() bool { return c.autoAdvance }

// SetAutoAdvance toggles auto-advance. It is a no-op if no HardwareClient
// was supplied: there is nothing for the poll loop to query.
func (c *Controller) SetAutoAdvance(enabled bool) {
	if c.hw == nil {
		return
	}
	c.autoAdvance = enabled
}

// GoToWire moves the cursor to the given index: it turns off the
// current wire's LEDs, moves the cursor, turns on the new wire's LEDs,
// and starts a fresh connection in the timing logger.
func (c *Controller) GoToWire(wire int) {
	if wire < 0 || wire >= len(c.wires) {
		return
	}

	last := c.cur
	c.setLEDs(last, false)
	c.cur = wire
	c.connectedIncorrectly = false
	c.setLEDs(c.cur, true)

	if c.logger != nil {
		c.logger.Unpause()
		c.logger.ConnectionStarted(socketOf(c.wires[c.cur].Src), socketOf(c.wires[c.cur].Dst))
	}
	c.announceConnection(last, c.cur)
}

// Next moves to the next wire, wrapping around at the end of the plan.
func (c *Controller) Next() { c.GoToWire((c.cur + 1) % len(c.wires)) }

// Prev moves to the previous wire, wrapping around at the start.
func (c *Controller) Prev() { c.GoToWire((c.cur - 1 + len(c.wires)) % len(c.wires)) }

func (c *Controller) setLEDs(wire int, state bool) {
	if c.hw == nil {
		return
	}
	src := c.wires[wire].Src
	dst := c.wires[wire].Dst
	_ = c.hw.SetLED(ledForDirection(src.Direction), state, src.Cabinet, src.Frame, src.Board)
	_ = c.hw.SetLED(ledForDirection(dst.Direction), state, dst.Cabinet, dst.Frame, dst.Board)
}

// ledForDirection maps a socket direction to the diagnostic LED index
// next to its connector; boards have one LED per link socket.
func ledForDirection(d hexcoord.Direction) int {
	return int(d)
}

func (c *Controller) announceConnection(from, to int) {
	if to < 0 || to >= len(c.wires) {
		return
	}
	w := c.wires[to]
	if w.Length == nil {
		c.announcer.Speak(fmt.Sprintf("Disconnect the wire at board %d, %s", w.Src.Board, w.Src.Direction.Hyphenated()))
		return
	}
	c.announcer.Speak(fmt.Sprintf("Connect board %d %s to board %d %s",
		w.Src.Board, w.Src.Direction.Hyphenated(), w.Dst.Board, w.Dst.Direction.Hyphenated()))
}

// Tick polls both ends of the current wire (when auto-advance and a
// HardwareClient are available) and advances the cursor once the wire
// is confirmed in its target state.
func (c *Controller) Tick(now sim.VTimeInSec) (madeProgress bool) {
	if !c.autoAdvance || c.hw == nil {
		return false
	}

	wire := c.wires[c.cur]
	src := socketOf(wire.Src)
	dst := socketOf(wire.Dst)

	actualDst, dstOK, err := c.hw.LinkTarget(src)
	if err != nil {
		return false
	}
	actualSrc, srcOK, err := c.hw.LinkTarget(dst)
	if err != nil {
		return false
	}

	advance := false

	switch {
	case wire.Length == nil:
		if !dstOK && !srcOK {
			advance = true
		}
	case dstOK && actualDst == dst && srcOK && actualSrc == src:
		advance = true
		if c.logger != nil {
			c.logger.Unpause()
			c.logger.ConnectionComplete()
		}
	case dstOK || srcOK:
		if !c.connectedIncorrectly {
			c.announcer.Speak("Wire inserted incorrectly.")
			if c.logger != nil {
				c.logger.Unpause()
				c.logger.ConnectionError()
			}
		}
		c.connectedIncorrectly = true
	default:
		c.connectedIncorrectly = false
	}

	if advance && c.cur != len(c.wires)-1 {
		c.GoToWire(c.cur + 1)
		return true
	}

	return false
}
