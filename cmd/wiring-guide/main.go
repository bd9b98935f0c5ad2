// Command wiring-guide steps an operator through an installation plan:
// it lights the current wire's endpoint LEDs through the proxy, polls
// the live wiring to auto-advance, logs timings, and checkpoints its
// cursor to a session store so a killed process resumes where it left
// off.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/boardwire/config"
	"github.com/sarchlab/boardwire/guide"
	"github.com/sarchlab/boardwire/proxy"
	"github.com/sarchlab/boardwire/wiring"
)

var (
	planPath  = flag.String("plan", "", "installation plan CSV (required)")
	proxyAddr = flag.String("proxy", fmt.Sprintf("localhost:%d", proxy.DefaultPort), "proxy server address")

	timingLog   = flag.String("timing-log", "", "timing log CSV path (optional)")
	sessionDB   = flag.String("session-db", "wiring_sessions.db", "SQLite session store path")
	sessionName = flag.String("session", "default", "session name to resume or create")

	pollInterval  = flag.Duration("poll-interval", 500*time.Millisecond, "auto-advance poll interval")
	noAutoAdvance = flag.Bool("no-auto-advance", false, "disable wiring-probe polling")
)

func main() {
	flag.Parse()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if err := run(); err != nil {
		slog.Error("wiring-guide failed", "err", err)
		atexit.Exit(1)
	}
	atexit.Exit(0)
}

func run() error {
	if *planPath == "" {
		return fmt.Errorf("-plan is required")
	}

	f, err := os.Open(*planPath)
	if err != nil {
		return err
	}
	wires, err := wiring.ReadPlanCSV(f)
	f.Close()
	if err != nil {
		return err
	}
	if len(wires) == 0 {
		return fmt.Errorf("plan %s holds no wires", *planPath)
	}

	client, err := proxy.Dial(*proxyAddr)
	if err != nil {
		return err
	}
	atexit.Register(func() { client.Close() })

	store, err := config.OpenSQLiteStore(*sessionDB)
	if err != nil {
		return err
	}
	atexit.Register(func() { store.Close() })

	session, resumed, err := store.Load(*sessionName)
	if err != nil {
		return err
	}
	if !resumed {
		session = config.Session{Name: *sessionName, Attempts: map[int]int{}}
	}

	var logger *guide.TimingLogger
	if *timingLog != "" {
		logFile, addHeader, err := openTimingLog(*timingLog)
		if err != nil {
			return err
		}
		atexit.Register(func() { logFile.Close() })
		logger = guide.NewTimingLogger(logFile, addHeader)
	}

	controller := guide.NewBuilder().
		WithEngine(sim.NewSerialEngine()).
		WithHardware(client).
		WithTimingLogger(logger).
		WithWires(wires).
		WithAutoAdvance(!*noAutoAdvance).
		Build("Guide")

	if resumed && session.Cursor > 0 && session.Cursor < len(wires) {
		slog.Info("resuming session", "session", session.Name, "wire", session.Cursor)
		controller.GoToWire(session.Cursor)
	}

	commands := make(chan string)
	go readCommands(commands)

	ticker := time.NewTicker(*pollInterval)
	defer ticker.Stop()

	fmt.Println("commands: n(ext), p(rev), pause, resume, q(uit)")
	printWire(controller, wires)

	for {
		last := controller.Cursor()

		select {
		case <-ticker.C:
			controller.Tick(0)

		case cmd, ok := <-commands:
			if !ok {
				return finish(store, session, controller, logger)
			}
			switch cmd {
			case "n", "next":
				controller.Next()
			case "p", "prev":
				controller.Prev()
			case "pause":
				if logger != nil {
					logger.Pause()
				}
			case "resume":
				if logger != nil {
					logger.Unpause()
				}
			case "q", "quit":
				return finish(store, session, controller, logger)
			default:
				fmt.Printf("unknown command %q\n", cmd)
			}
		}

		if controller.Cursor() != last {
			printWire(controller, wires)
			session.Cursor = controller.Cursor()
			if err := store.Save(session); err != nil {
				slog.Warn("session checkpoint failed", "err", err)
			}
		}
	}
}

func finish(store *config.Store, session config.Session, controller *guide.Controller, logger *guide.TimingLogger) error {
	if logger != nil {
		logger.Stop()
	}
	session.Cursor = controller.Cursor()
	return store.Save(session)
}

// openTimingLog appends to an existing log rather than truncating it, so
// a resumed session keeps one continuous CSV; the header is only written
// for a fresh file.
func openTimingLog(path string) (*os.File, bool, error) {
	info, err := os.Stat(path)
	addHeader := err != nil || info.Size() == 0

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, false, err
	}
	return f, addHeader, nil
}

func readCommands(out chan<- string) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		out <- strings.TrimSpace(strings.ToLower(scanner.Text()))
	}
	close(out)
}

func printWire(c *guide.Controller, wires []wiring.CSVWire) {
	w := wires[c.Cursor()]
	action := "connect"
	length := ""
	if w.Length == nil {
		action = "disconnect"
	} else {
		length = fmt.Sprintf(" (%.2f m)", *w.Length)
	}
	fmt.Printf("[%d/%d] %s C%d F%d B%d %s -> C%d F%d B%d %s%s\n",
		c.Cursor()+1, c.Len(), action,
		w.Src.Cabinet, w.Src.Frame, w.Src.Board, w.Src.Direction.Hyphenated(),
		w.Dst.Cabinet, w.Dst.Frame, w.Dst.Board, w.Dst.Direction.Hyphenated(),
		length)
}
