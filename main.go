package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"elaina/cmd"

	log "github.com/sirupsen/logrus"
)

func main() {
	// Cancel on SIGINT/SIGTERM for a graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Execute(ctx); err != nil {
		log.WithError(err).Fatal("Application error")
	}
}
