// Command proxy-server shares one machine connection between several
// wiring-guide sessions over the line-oriented TCP protocol, with an
// HTTP status sidecar for dashboards.
//
// The server has no hardware path: -plan is required, and the server
// simulates a machine wired exactly as that plan CSV describes, which is
// how guide sessions are rehearsed without hardware. It does not connect
// to a register transport.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/tebeka/atexit"

	"github.com/sarchlab/boardwire/probe"
	"github.com/sarchlab/boardwire/proxy"
	"github.com/sarchlab/boardwire/telemetry"
	"github.com/sarchlab/boardwire/wiring"
)

var (
	addr       = flag.String("addr", fmt.Sprintf(":%d", proxy.DefaultPort), "TCP listen address")
	statusAddr = flag.String("status-addr", "", "HTTP status sidecar listen address (empty: disabled)")
	planPath   = flag.String("plan", "", "plan CSV describing the simulated machine's wiring")

	housekeeping = flag.Duration("housekeeping-interval", time.Minute, "host telemetry log interval")
)

func main() {
	flag.Parse()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("proxy-server failed", "err", err)
		atexit.Exit(1)
	}
	atexit.Exit(0)
}

func run(logger *slog.Logger) error {
	if *planPath == "" {
		return fmt.Errorf("-plan is required: point it at the machine's installation plan CSV")
	}

	hw, err := loadPlanHardware(*planPath, logger)
	if err != nil {
		return err
	}

	server, err := proxy.NewServer(hw, *addr, logger)
	if err != nil {
		return err
	}
	atexit.Register(func() { server.Close() })
	logger.Info("proxy server listening", "addr", server.Addr().String())

	if *statusAddr != "" {
		go func() {
			if err := http.ListenAndServe(*statusAddr, server.StatusHandler()); err != nil {
				logger.Error("status sidecar stopped", "err", err)
			}
		}()
		logger.Info("status sidecar listening", "addr", *statusAddr)
	}

	go housekeepingLoop(logger)

	sigint := make(chan os.Signal, 1)
	signal.Notify(sigint, os.Interrupt)
	go func() {
		<-sigint
		logger.Info("interrupted, shutting down")
		server.Close()
	}()

	return server.Serve()
}

func housekeepingLoop(logger *slog.Logger) {
	for range time.Tick(*housekeeping) {
		snap, err := telemetry.HostSnapshot()
		if err != nil {
			logger.Warn("host telemetry unavailable", "err", err)
			continue
		}
		snap.Log(logger, "housekeeping")
	}
}

// planHardware simulates a machine wired exactly as a plan CSV says:
// LinkTarget answers from the plan's wire list and SetLED just logs.
type planHardware struct {
	targets map[probe.Socket]probe.Socket
	logger  *slog.Logger
}

func loadPlanHardware(path string, logger *slog.Logger) (*planHardware, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	plan, err := wiring.ReadPlanCSV(f)
	if err != nil {
		return nil, err
	}

	hw := &planHardware{targets: map[probe.Socket]probe.Socket{}, logger: logger}
	for _, w := range plan {
		if w.Length == nil {
			continue
		}
		src := probe.Socket{Cabinet: w.Src.Cabinet, Frame: w.Src.Frame, Board: w.Src.Board, Direction: w.Src.Direction}
		dst := probe.Socket{Cabinet: w.Dst.Cabinet, Frame: w.Dst.Frame, Board: w.Dst.Board, Direction: w.Dst.Direction}
		hw.targets[src] = dst
		hw.targets[dst] = src
	}
	logger.Info("simulating machine from plan", "path", path, "links", len(hw.targets))

	return hw, nil
}

func (h *planHardware) SetLED(led int, state bool, cabinet, frame, board int) error {
	h.logger.Info("led", "led", led, "state", state,
		"cabinet", cabinet, "frame", frame, "board", board)
	return nil
}

func (h *planHardware) LinkTarget(s probe.Socket) (probe.Socket, bool, error) {
	t, ok := h.targets[s]
	return t, ok, nil
}
