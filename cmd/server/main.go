package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/jeongseonghan/nr-downlink/internal/config"
	"github.com/jeongseonghan/nr-downlink/internal/server"
)

func main() {
	addr := pflag.String("addr", "", "Server address (default from config)")
	configFile := pflag.StringP("config", "c", config.DefaultPath, "Configuration file")
	verbose := pflag.BoolP("verbose", "v", false, "Debug logging")
	pflag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *verbose {
		cfg.Logging.Level = "DEBUG"
	}

	closer, err := config.SetupLogging(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	var metrics *server.Metrics
	if cfg.Metrics.Enabled {
		metrics = server.NewMetrics()
	}
	handlers := server.NewHandlers(cfg.Decoder.Workers, cfg.Server.MaxUploadMB, metrics)
	srv := server.NewServer(cfg.Server.Addr, handlers, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		fmt.Println("\nShutting down...")
	}()

	fmt.Printf("\n  Downlink decode service running at http://%s\n\n", cfg.Server.Addr)
	if err := srv.Run(ctx, 5*time.Second); err != nil {
		log.Printf("[ERROR] Server error: %v", err)
		closer.Close()
		os.Exit(1)
	}
}
