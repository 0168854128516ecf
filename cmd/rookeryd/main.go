// Command rookeryd runs the rookery daemon: catalog store, job dispatcher,
// HTTP API, and the unix-socket control surface for the rookery CLI.
package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"rookery/internal/analysis"
	"rookery/internal/catalog"
	"rookery/internal/config"
	"rookery/internal/daemon"
	"rookery/internal/games"
	"rookery/internal/ipc"
	"rookery/internal/logging"
)

func main() {
	configPath := flag.String("config", "", "configuration file path")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	store, err := games.Open(cfg)
	if err != nil {
		logger.Error("open catalog store", logging.Error(err))
		return
	}

	catalogService := catalog.NewService(store, cfg, nil, logger)
	analysisService := analysis.NewService(store, logger)
	runner := analysis.NewRunner(store, engineFromConfig(cfg, logger), logger, cfg.EngineTimeout())

	d, err := daemon.New(cfg, store, catalogService, analysisService, runner, logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		_ = store.Close()
		return
	}
	defer d.Close()

	ipcServer, err := ipc.NewServer(d, cfg.SocketPath(), logger, cancel)
	if err != nil {
		logger.Error("create ipc server", logging.Error(err))
		return
	}

	if err := d.Start(ctx); err != nil {
		logger.Error("start daemon", logging.Error(err))
		return
	}
	if err := ipcServer.Start(ctx); err != nil {
		logger.Error("start ipc server", logging.Error(err))
		d.Stop()
		return
	}
	defer ipcServer.Stop()

	<-ctx.Done()
	logger.Info("rookeryd shutting down")
}
