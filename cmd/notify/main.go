package main

import (
	"context"
	"fmt"
	"log"

	"openknesset/internal/app/bootstrap"
)

// Notification digest entrypoint.
// Data flow:
// 1) Load config.
// 2) Build app wiring.
// 3) Run one digest pass and exit; cron drives the schedule.
func main() {
	log.Println("openknesset notify starting")
	app, err := bootstrap.BuildNotifier()
	if err != nil {
		log.Fatalf("bootstrap notifier failed: %v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("notify shutdown close failed: %v", err)
		}
	}()

	queued, err := app.Run(context.Background())
	if err != nil {
		log.Fatalf("openknesset notify stopped with error: %v", err)
	}
	fmt.Printf("%d email notifications queued for sending\n", queued)
}
