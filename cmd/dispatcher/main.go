// Command dispatcher bootstraps the single, stateless Central Dispatcher
// process: loads its key pool, opens the PSK-keyed DTLS/CoAP listener, and
// serves until shutdown. Takes no positional arguments (spec §6); the
// -config flag names the configuration file.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/liftmesh/liftmesh/internal/dispatcher"
	"github.com/liftmesh/liftmesh/internal/dspconfig"
	"github.com/liftmesh/liftmesh/internal/protocol"
	"github.com/liftmesh/liftmesh/internal/transport/coap"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	configPath := flag.String("config", "dispatcher.yaml", "path to the dispatcher configuration file")
	flag.Parse()

	cfg, err := dspconfig.Load(*configPath)
	if err != nil {
		slog.Error("dispatcher: startup failed", "err", err)
		os.Exit(1)
	}

	keys, err := protocol.LoadKeyFile(cfg.KeyFilePath)
	if err != nil {
		slog.Error("dispatcher: startup failed", "err", err)
		os.Exit(1)
	}

	d := dispatcher.New()
	srv := coap.NewServer(keys, d.Routes())

	go func() {
		slog.Info("dispatcher: metrics listening", "addr", cfg.MetricsAddr)
		if err := http.ListenAndServe(cfg.MetricsAddr, promhttp.Handler()); err != nil {
			slog.Warn("dispatcher: metrics server stopped", "err", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("dispatcher: starting", "listen_addr", cfg.ListenAddr)
	if err := srv.Serve(ctx, cfg.ListenAddr); err != nil {
		slog.Error("dispatcher: serve failed", "err", err)
		os.Exit(1)
	}

	slog.Info("dispatcher: exited cleanly")
}
