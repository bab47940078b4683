// Command gateway bootstraps one building's Gateway process: loads
// configuration, arms the elevator group, sets up the secure session
// manager (the session to the Dispatcher opens on the first outbound
// request), and runs the cooperative event loop until shutdown.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/liftmesh/liftmesh/internal/elevator"
	"github.com/liftmesh/liftmesh/internal/fieldbus"
	"github.com/liftmesh/liftmesh/internal/gateway"
	"github.com/liftmesh/liftmesh/internal/gateway/escalation"
	"github.com/liftmesh/liftmesh/internal/gateway/gwapi"
	"github.com/liftmesh/liftmesh/internal/gateway/session"
	"github.com/liftmesh/liftmesh/internal/gwconfig"
	"github.com/liftmesh/liftmesh/internal/protocol"
)

// dashboardInterval is how often the ops websocket hub broadcasts a fresh
// group snapshot to connected dashboard clients.
const dashboardInterval = 1 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	configPath := flag.String("config", "gateway.yaml", "path to the gateway configuration file")
	flag.Parse()

	cfg, err := gwconfig.Load(*configPath)
	if err != nil {
		slog.Error("gateway: startup failed", "err", err)
		os.Exit(1)
	}

	listenPort := cfg.ListenPort
	if args := flag.Args(); len(args) > 0 {
		p, err := strconv.Atoi(args[0])
		if err != nil || p < 1024 || p > 65535 {
			slog.Error("gateway: invalid listen port argument", "arg", args[0])
			os.Exit(1)
		}
		listenPort = p
	}

	keys, err := protocol.LoadKeyFile(cfg.KeyFilePath)
	if err != nil {
		slog.Error("gateway: startup failed", "err", err)
		os.Exit(1)
	}

	group := elevator.Init(cfg.BuildingID, cfg.CarCount, cfg.FloorCount)

	dispatcherAddr := cfg.DispatcherIP + ":" + strconv.Itoa(cfg.DispatcherPort)
	sessions := session.New(dispatcherAddr, keys)

	var hooks []escalation.Hook
	for _, h := range cfg.EscalationHooks {
		hooks = append(hooks, escalation.Hook{Kind: h.Kind, URL: h.URL})
	}
	esc := escalation.New(hooks)

	bus := fieldbus.NewChanBus(64)

	gw := gateway.New(bus, group, sessions, esc)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	watcher, err := gwconfig.Watch(*configPath, func(next *gwconfig.Config) {
		var nextHooks []escalation.Hook
		for _, h := range next.EscalationHooks {
			nextHooks = append(nextHooks, escalation.Hook{Kind: h.Kind, URL: h.URL})
		}
		esc.Hooks = nextHooks
		slog.Info("gateway: config reloaded", "escalation_hooks", len(nextHooks))
	})
	if err != nil {
		slog.Warn("gateway: config hot-reload disabled", "err", err)
	} else {
		defer watcher.Close()
	}

	var hub *gwapi.Hub
	if cfg.OpsAPIAddr != "" {
		hub = gwapi.NewHub(group, dashboardInterval)
		stopHub := make(chan struct{})
		go hub.Run(stopHub)
		go func() {
			<-ctx.Done()
			close(stopHub)
		}()

		handler := gwapi.NewHandler(group, gw.Table, hub)
		go func() {
			slog.Info("gateway: ops API listening", "addr", cfg.OpsAPIAddr)
			if err := http.ListenAndServe(cfg.OpsAPIAddr, handler); err != nil {
				slog.Warn("gateway: ops API stopped", "err", err)
			}
		}()
	}

	go func() {
		slog.Info("gateway: metrics listening", "addr", cfg.MetricsAddr)
		if err := http.ListenAndServe(cfg.MetricsAddr, promhttp.Handler()); err != nil {
			slog.Warn("gateway: metrics server stopped", "err", err)
		}
	}()

	slog.Info("gateway: starting",
		"building", cfg.BuildingID, "car_count", cfg.CarCount, "listen_port", listenPort,
		"dispatcher", dispatcherAddr)

	gw.Run(ctx)

	slog.Info("gateway: exited cleanly")
}
