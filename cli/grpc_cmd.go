package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/medsum/medsum/rpc"
)

// runGRPC serves the medsum.v1.Relay gRPC service until interrupted.
func runGRPC(g globals, args []string) int {
	fs := flag.NewFlagSet("grpc", flag.ContinueOnError)

	var listen string
	fs.StringVar(&listen, "listen", "", "listen address (default from config, :50053)")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, logger, err := g.setup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}
	if listen == "" {
		listen = cfg.GRPC
	}

	r, err := cfg.NewRelay(logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), shutdownSignals()...)
	defer stop()

	if err := rpc.NewServer(r, logger).Serve(ctx, listen, rpc.WithAddrWriter(os.Stdout)); err != nil {
		fmt.Fprintf(os.Stderr, "error: gRPC server failed: %v\n", err)
		return 2
	}
	return 0
}
