// Package main starts the stable-time daemon.
//
// This process owns the cached stable-time reading and serves it over HTTP
// so cooperating processes share one confirmed value.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	platformcmd "github.com/louisbranch/stabletime/internal/platform/cmd"
	"github.com/louisbranch/stabletime/internal/timed"
)

func main() {
	cfg, err := timed.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[STABLETIMED] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = platformcmd.RunWithTelemetry(ctx, platformcmd.ServiceDaemon, func(ctx context.Context) error {
		return timed.Run(ctx, cfg)
	})
	if err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
