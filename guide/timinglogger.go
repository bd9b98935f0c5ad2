package guide

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/sarchlab/boardwire/probe"
)

// timingColumns is the fixed, in-order column list of the timing log CSV:
// a shared "type" column plus every field any event type might populate,
// "NA" where a particular event leaves a column unset.
var timingColumns = []string{
	"event_type", "realtime", "time",
	"sc", "sf", "sb", "sd",
	"dc", "df", "db", "dd",
	"duration", "attempt_duration", "num_attempts",
	"c", "f", "b", "temp_top", "temp_btm", "temp_ext_0", "temp_ext_1",
	"fan_0", "fan_1",
}

// AdcInfo is a per-board temperature/fan telemetry reading, as obtained
// from RegisterTransport reads against real hardware.
type AdcInfo struct {
	TempTop, TempBtm, TempExt0, TempExt1 float64
	Fan0, Fan1                           float64
}

type connectionState struct {
	src, dst         probe.Socket
	startElapsed     time.Duration
	lastErrorElapsed time.Duration
	attempts         int
}

// TimingLogger records cable-installation events (and ADC temperature
// readings) to a CSV, compensating its elapsed-time column for any time
// spent paused so the duration columns reflect active installation time
// only.
type TimingLogger struct {
	w   *csv.Writer
	now func() time.Time

	startTime  time.Time
	logging    bool
	pauseStart time.Time
	paused     bool

	cur *connectionState
}

// NewTimingLogger writes the CSV header (unless addHeader is false, for
// appending to an existing log) and returns a logger not yet started.
func NewTimingLogger(w io.Writer, addHeader bool) *TimingLogger {
	cw := csv.NewWriter(w)
	if addHeader {
		_ = cw.Write(timingColumns)
		cw.Flush()
	}
	return &TimingLogger{w: cw, now: time.Now}
}

// Start begins logging: it resets the elapsed-time clock and writes a
// logging_started row.
func (t *TimingLogger) Start() {
	t.startTime = t.now()
	t.logging = true
	t.writeRow(map[string]string{
		"event_type": "logging_started",
		"realtime":   t.realtime(),
		"time":       "0",
	})
}

// Stop writes a logging_stopped row and ends the session.
func (t *TimingLogger) Stop() {
	t.writeRow(map[string]string{
		"event_type": "logging_stopped",
		"time":       formatSeconds(t.elapsed()),
	})
	t.logging = false
}

// Paused reports whether the logger's clock is currently paused.
func (t *TimingLogger) Paused() bool {
	return t.paused
}

// Pause stops the elapsed-time clock, e.g. while an operator takes a
// break mid-installation.
func (t *TimingLogger) Pause() {
	if t.paused {
		return
	}
	t.pauseStart = t.now()
	t.paused = true
}

// Unpause resumes the elapsed-time clock, shifting startTime forward by
// the pause duration so time spent paused is excluded from every
// subsequent duration column.
func (t *TimingLogger) Unpause() {
	if !t.paused {
		return
	}
	pauseDuration := t.now().Sub(t.pauseStart)
	elapsedBeforeResume := t.now().Sub(t.startTime) - pauseDuration

	t.writeRow(map[string]string{
		"event_type": "pause",
		"time":       formatSeconds(elapsedBeforeResume),
		"duration":   formatSeconds(pauseDuration),
	})

	t.startTime = t.startTime.Add(pauseDuration)
	t.paused = false
}

// ConnectionStarted records that a new wire has been presented for
// installation.
func (t *TimingLogger) ConnectionStarted(src, dst probe.Socket) {
	now := t.elapsed()
	t.cur = &connectionState{src: src, dst: dst, startElapsed: now, lastErrorElapsed: now}

	fields := socketFields(src, dst)
	fields["event_type"] = "connection_started"
	fields["time"] = formatSeconds(now)
	fields["realtime"] = t.realtime()
	t.writeRow(fields)
}

// ConnectionError records that the cable currently being installed was
// found connected incorrectly.
func (t *TimingLogger) ConnectionError() {
	if t.cur == nil {
		return
	}
	now := t.elapsed()
	attemptDuration := now - t.cur.lastErrorElapsed
	t.cur.lastErrorElapsed = now
	t.cur.attempts++

	fields := socketFields(t.cur.src, t.cur.dst)
	fields["event_type"] = "connection_error"
	fields["time"] = formatSeconds(now)
	fields["realtime"] = t.realtime()
	fields["attempt_duration"] = formatSeconds(attemptDuration)
	fields["num_attempts"] = fmt.Sprintf("%d", t.cur.attempts)
	t.writeRow(fields)
}

// ConnectionComplete records that the cable currently being installed
// was found connected correctly, ending this connection's tracking.
func (t *TimingLogger) ConnectionComplete() {
	if t.cur == nil {
		return
	}
	now := t.elapsed()
	duration := now - t.cur.startElapsed
	attemptDuration := now - t.cur.lastErrorElapsed

	fields := socketFields(t.cur.src, t.cur.dst)
	fields["event_type"] = "connection_complete"
	fields["time"] = formatSeconds(now)
	fields["realtime"] = t.realtime()
	fields["duration"] = formatSeconds(duration)
	fields["attempt_duration"] = formatSeconds(attemptDuration)
	fields["num_attempts"] = fmt.Sprintf("%d", t.cur.attempts+1)
	t.writeRow(fields)

	t.cur = nil
}

// Temperature records an ADC temperature/fan reading for one board.
func (t *TimingLogger) Temperature(cabinet, frame, board int, adc AdcInfo) {
	t.writeRow(map[string]string{
		"event_type": "temperature",
		"realtime":   t.realtime(),
		"time":       formatSeconds(t.elapsed()),
		"c":          fmt.Sprintf("%d", cabinet),
		"f":          fmt.Sprintf("%d", frame),
		"b":          fmt.Sprintf("%d", board),
		"temp_top":   fmt.Sprintf("%g", adc.TempTop),
		"temp_btm":   fmt.Sprintf("%g", adc.TempBtm),
		"temp_ext_0": fmt.Sprintf("%g", adc.TempExt0),
		"temp_ext_1": fmt.Sprintf("%g", adc.TempExt1),
		"fan_0":      fmt.Sprintf("%g", adc.Fan0),
		"fan_1":      fmt.Sprintf("%g", adc.Fan1),
	})
}

func (t *TimingLogger) elapsed() time.Duration {
	if !t.logging {
		return 0
	}
	return t.now().Sub(t.startTime)
}

func (t *TimingLogger) realtime() string {
	return t.now().Format(time.RFC3339Nano)
}

func (t *TimingLogger) writeRow(fields map[string]string) {
	row := make([]string, len(timingColumns))
	for i, col := range timingColumns {
		if v, ok := fields[col]; ok {
			row[i] = v
		} else {
			row[i] = "NA"
		}
	}
	_ = t.w.Write(row)
	t.w.Flush()
}

func socketFields(src, dst probe.Socket) map[string]string {
	return map[string]string{
		"sc": fmt.Sprintf("%d", src.Cabinet), "sf": fmt.Sprintf("%d", src.Frame),
		"sb": fmt.Sprintf("%d", src.Board), "sd": src.Direction.Hyphenated(),
		"dc": fmt.Sprintf("%d", dst.Cabinet), "df": fmt.Sprintf("%d", dst.Frame),
		"db": fmt.Sprintf("%d", dst.Board), "dd": dst.Direction.Hyphenated(),
	}
}

func formatSeconds(d time.Duration) string {
	return fmt.Sprintf("%g", d.Seconds())
}
