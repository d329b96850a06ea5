package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"glicks/internal/config"
	"glicks/internal/dashboard"
	"glicks/internal/domain"
	"glicks/internal/httpapi"
	"glicks/internal/rpc"
	"glicks/internal/source"
	"glicks/internal/util"
)

func main() {
	// Load config.
	cfgPath := "config/glicks.yaml"
	if p := os.Getenv("GLICKS_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if errors.Is(err, os.ErrNotExist) {
		cfg, err = config.Default(), nil
	}
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	util.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	provider, closeProvider, err := source.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("opening source: %v", err)
	}
	defer closeProvider()

	base := domain.NewViewContext(cfg.Seasons.Current, cfg.Seasons.Current, util.LoadLocation(cfg.Seasons.TimeZone))
	srv := httpapi.NewDashboardServer(provider, base, httpapi.Options{
		Seasons:     cfg.AllSeasons(),
		SourceKind:  cfg.Source.Kind,
		Group:       dashboard.GroupOptions{SplitDoubleheaders: cfg.Display.SplitDoubleheaders},
		CORSOrigins: cfg.Server.CORSOrigins,
	}, logger)

	// Start HTTP server.
	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("HTTP server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			cancel()
		}
	}()

	// Start gRPC server. A server reading from an rpc source does not
	// re-export it.
	var gs *grpc.Server
	if cfg.Source.Kind != "rpc" {
		grpcAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.GRPCPort)
		lis, err := net.Listen("tcp", grpcAddr)
		if err != nil {
			log.Fatalf("listening on %s: %v", grpcAddr, err)
		}
		gs = grpc.NewServer()
		rpc.NewServer(provider, base, logger).RegisterGRPC(gs)
		go func() {
			logger.Info("gRPC server listening", "addr", grpcAddr)
			if err := gs.Serve(lis); err != nil {
				logger.Error("gRPC server error", "error", err)
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down glicks server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if gs != nil {
		gs.GracefulStop()
	}
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
