// Command femtobook wires a book.Engine to its collaborators: the TCP/
// WebSocket server, an optional synthetic-load simulator, and a
// terminal depth ticker, all serialized through a single
// goroutine that owns the engine (SPEC_FULL.md §4.11, §5.1), grounded on
// chycee-CryptoGo's cmd/app/main.go for the bootstrap/signal-context
// shape and the teacher's StartInputDistributor for the single-consumer
// loop.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dsouth/femtobook/book"
	"github.com/dsouth/femtobook/internal/bus"
	"github.com/dsouth/femtobook/internal/depthview"
	"github.com/dsouth/femtobook/internal/ring"
	"github.com/dsouth/femtobook/internal/server"
	"github.com/dsouth/femtobook/internal/sim"
)

func main() {
	tcpAddr := flag.String("tcp-addr", ":9090", "address for the order-entry TCP listener")
	wsAddr := flag.String("ws-addr", ":9091", "address for the depth/event WebSocket endpoint")
	centerPrice := flag.Int64("center-price", 10000, "center price the simulator seeds liquidity around")
	spreadHalf := flag.Int64("spread-half", 50, "half-width of the spread the simulator leaves around center-price")
	runSim := flag.Bool("sim", false, "enable the synthetic order-flow simulator")
	renderInterval := flag.Duration("render-interval", 2*time.Second, "how often to redraw the terminal depth view")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	engine := book.NewEngine()
	input := ring.New[bus.InputCommand](4096)
	events := bus.New(256)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(*tcpAddr, input, logger)
	if err := srv.Start(); err != nil {
		logger.Error("tcp listener failed to start", "err", err)
		os.Exit(1)
	}
	defer srv.Close()
	logger.Info("tcp order-entry listening", "addr", *tcpAddr)

	hub := server.NewHub(events, engine, 10, time.Second, logger)
	httpSrv := &http.Server{Addr: *wsAddr, Handler: mux(hub)}
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("websocket listener failed", "err", err)
		}
	}()
	defer httpSrv.Close()
	logger.Info("websocket depth stream listening", "addr", *wsAddr)

	var simulator *sim.Simulator
	if *runSim {
		cfg := sim.DefaultConfig()
		cfg.CenterPrice = book.Price(*centerPrice)
		cfg.SpreadHalf = book.Price(*spreadHalf)
		simulator = sim.New(engine, cfg)
		logger.Info("simulator enabled", "center", *centerPrice, "spread-half", *spreadHalf)
	}

	go runEngineLoop(ctx, engine, input, events, simulator)

	ticker := time.NewTicker(*renderInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down gracefully")
			return
		case <-ticker.C:
			fmt.Print(depthview.Render(engine, 10))
		}
	}
}

func mux(hub *server.Hub) http.Handler {
	m := http.NewServeMux()
	m.Handle("/ws", hub)
	return m
}

// runEngineLoop is the single goroutine permitted to call a mutating
// book.Engine operation (SPEC_FULL.md §5.1): it drains InputCommands
// pushed by the server and, if enabled, ticks the simulator once per
// pass so synthetic load interleaves with real order entry rather than
// starving it. TryRead (non-blocking) is used throughout, unlike the
// teacher's unconditionally-blocking InputDistributor, so the loop stays
// responsive to ctx cancellation on shutdown.
func runEngineLoop(ctx context.Context, engine *book.Engine, input *ring.Buffer[bus.InputCommand], events *bus.Bus, simulator *sim.Simulator) {
	buf := make([]bus.InputCommand, 64)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		n := input.TryRead(buf)
		for i := 0; i < n; i++ {
			dispatch(engine, events, buf[i])
		}

		if simulator != nil {
			simulator.Tick()
		} else if n == 0 {
			time.Sleep(time.Millisecond)
		}
	}
}

func dispatch(engine *book.Engine, events *bus.Bus, cmd bus.InputCommand) {
	switch cmd.Kind {
	case bus.SubmitOrder:
		cmd.Order.ID = engine.NextOrderID()
		events.Publish(bus.OutputEvent{Kind: bus.OrderAccepted, OrderID: cmd.Order.ID, Side: cmd.Order.Side, Price: cmd.Order.Price, Qty: cmd.Order.Original, Trader: cmd.Trader})
		trades := engine.AddOrder(cmd.Order)
		for _, ev := range bus.TradesToEvents(cmd.Trader, cmd.Order.Side, trades) {
			events.Publish(ev)
		}
	case bus.CancelOrder:
		if engine.CancelOrder(cmd.CancelID) {
			events.Publish(bus.OutputEvent{Kind: bus.Canceled, OrderID: cmd.CancelID, Trader: cmd.Trader})
		}
	case bus.ModifyOrder:
		trades, err := engine.ModifyOrder(cmd.Modify)
		if err != nil {
			events.Publish(bus.OutputEvent{Kind: bus.OrderRejected, OrderID: cmd.Modify.ID, Trader: cmd.Trader})
			return
		}
		for _, ev := range bus.TradesToEventsForOrder(cmd.Trader, cmd.Modify.ID, trades) {
			events.Publish(ev)
		}
	}
}
