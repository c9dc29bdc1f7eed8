package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"churnscope/internal/api"
	"churnscope/internal/config"
	"churnscope/internal/container"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("[Main] No .env file loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[Main] Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := container.New(ctx, cfg)
	if err != nil {
		log.Fatalf("[Main] Failed to build container: %v", err)
	}
	defer c.Close()

	server := api.NewServer(c)
	if err := server.Start(ctx, ":"+cfg.Server.Port); err != nil {
		log.Fatalf("[Main] Server error: %v", err)
	}
}
