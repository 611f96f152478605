// Package main is the entry point for the course registration server.
//
// The binary is a cobra command tree:
//
//	server [serve]            run the HTTP API (default)
//	server migrate up|down|status
//	server seed [--file catalog.yaml]
//
// All actual logic lives in internal/; this package only loads
// configuration and wires dependencies.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
