// Command qinter-registry runs the pack registry service: a SQLite-backed
// package store behind the JSON API the qinter CLI talks to.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"qinter/internal/registrysrv"
)

func main() {
	var (
		addr        = flag.String("addr", "127.0.0.1:8000", "listen address")
		dbPath      = flag.String("db", "qinter-registry.db", "path to the registry database")
		uploadToken = flag.String("upload-token", os.Getenv("QINTER_UPLOAD_TOKEN"), "shared token required for uploads (empty disables uploads)")
		verbose     = flag.Bool("verbose", false, "enable debug logging")
	)
	flag.Parse()

	cfg := zap.NewProductionConfig()
	if *verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		fmt.Fprintln(os.Stderr, "initialize logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	store, err := registrysrv.OpenStore(*dbPath)
	if err != nil {
		logger.Fatal("open store", zap.Error(err))
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := registrysrv.NewServer(store, *uploadToken, logger)
	if err := server.ListenAndServe(ctx, *addr); err != nil {
		logger.Fatal("registry server", zap.Error(err))
	}
}
