// Package main provides the standalone pipetriage agent binary. It consumes
// triage requests from Redpanda, analyzes builds and stores verdicts.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"pipetriage/src/agent"
	"pipetriage/src/analyze"
	_ "pipetriage/src/azdevops" // register the azdevops provider
	"pipetriage/src/broker"
	"pipetriage/src/config"
	"pipetriage/src/logger"
	"pipetriage/src/provider"
	"pipetriage/src/store"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	if len(cfg.RedpandaBrokers) == 0 {
		fmt.Fprintln(os.Stderr, "ERROR: REDPANDA_BROKERS environment variable is required for the agent")
		fmt.Fprintln(os.Stderr, "Example: export REDPANDA_BROKERS=localhost:19092")
		os.Exit(1)
	}

	log := logger.NewConsoleLogger()

	log.Info("Starting pipetriage agent")
	log.Info("Redpanda brokers: %v", cfg.RedpandaBrokers)

	brk, err := broker.NewRedpandaBroker(cfg.RedpandaBrokers)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create broker: %v\n", err)
		os.Exit(1)
	}
	defer brk.Close()

	var st store.Store
	if cfg.PostgresDSN != "" {
		st, err = store.NewPostgresStore(cfg.PostgresDSN)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to connect to postgres: %v\n", err)
			os.Exit(1)
		}
		log.Info("Using postgres request store")
	} else {
		st = store.NewInMemoryStore()
		log.Info("POSTGRES_DSN not set, using in-memory request store")
	}
	defer st.Close()

	buildProvider, err := provider.New("azdevops", cfg.OrganizationURL, cfg.Project, cfg.Token)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create provider: %v\n", err)
		os.Exit(1)
	}

	analyzer := analyze.New(buildProvider, log)
	triageAgent := agent.New(brk, st, analyzer, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info("Shutdown signal received, stopping agent...")
		cancel()
	}()

	log.Info("Agent started, processing triage requests...")
	if err := triageAgent.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Agent error: %v\n", err)
		os.Exit(1)
	}

	log.Info("Agent stopped")
}
