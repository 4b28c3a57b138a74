package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/rohanhumai/mini-project-backend/internal/attendance"
	"github.com/rohanhumai/mini-project-backend/internal/config"
	"github.com/rohanhumai/mini-project-backend/internal/queue"
	"github.com/rohanhumai/mini-project-backend/internal/store"
)

// Worker consumes scan messages and writes audit rows so the API path
// stays a single-document write.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)
	defer redisClient.Close()

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, queue.DefaultKey)
	}

	attRepo := attendance.NewPostgresRepository(db.Client)

	events, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("worker started, waiting for scan events...")
	for ev := range events {
		// The event is the trigger; the record row is the source of truth
		// for fields the event does not carry.
		rec, err := attRepo.ByID(ctx, ev.RecordID)
		if err != nil {
			log.Printf("fetch record %s failed: %v", ev.RecordID, err)
			continue
		}

		_, err = db.Client.ExecContext(ctx, `
			INSERT INTO scan_audit (record_id, observed_at, device_info)
			VALUES ($1, $2, $3)
		`, rec.ID, ev.ObservedAt, rec.DeviceInfo)
		if err != nil {
			log.Printf("audit insert for %s failed: %v", ev.RecordID, err)
			continue
		}
		log.Printf("audited scan %s (%s)", rec.ID, rec.Status)
	}

	log.Println("worker stopped")
}
