package main

import (
	"context"
	"log"
	"os"

	"otis/config"
	dbpkg "otis/db"
	"otis/ingest"
	"otis/queue"
	"otis/router"
	"otis/workers"

	"github.com/gin-gonic/gin"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.json"
	}
	cfg := config.Get(configPath)

	dbpkg.SetConfigurations(cfg)
	gdb, err := dbpkg.Connect()
	if err != nil {
		log.Fatalf("database connect failed: %v", err)
	}
	defer gdb.Close()

	nc, err := queue.Connect(cfg.Nats.URL)
	if err != nil {
		log.Fatalf("nats connect failed: %v", err)
	}
	defer nc.Close()

	publisher, err := queue.NewPublisher(nc, cfg.Nats.Stream)
	if err != nil {
		log.Fatalf("queue publisher failed: %v", err)
	}

	coordinator := ingest.NewCoordinator(
		dbpkg.NewTenantStore(gdb),
		dbpkg.NewEventStore(gdb),
		publisher,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consumer, err := queue.NewConsumer(nc, cfg.Nats.Stream, cfg.Nats.Durable)
	if err != nil {
		log.Fatalf("queue consumer failed: %v", err)
	}
	if err := workers.StartIssueWorker(ctx, gdb, consumer); err != nil {
		log.Fatalf("issue worker failed: %v", err)
	}

	r := gin.New()
	r.Use(dbpkg.SetDBtoContext(gdb))
	router.Initialize(r, cfg, coordinator)

	log.Printf("otis listening on :%s", cfg.ApiPort)
	log.Fatal(r.Run(":" + cfg.ApiPort))
}
