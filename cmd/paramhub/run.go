package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tamzrod/modbus-paramhub/internal/appdata"
	"github.com/tamzrod/modbus-paramhub/internal/config"
	"github.com/tamzrod/modbus-paramhub/internal/eventlog"
	"github.com/tamzrod/modbus-paramhub/internal/pipeline"
	"github.com/tamzrod/modbus-paramhub/internal/poller"
	"github.com/tamzrod/modbus-paramhub/internal/publisher"
)

var runCmd = &cobra.Command{
	Use:   "run <config.yaml>",
	Short: "Run all configured units until interrupted",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cfg, err := loadConfig(args[0])
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return run(ctx, cfg)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// run builds one pipeline per unit and blocks until ctx ends.
func run(ctx context.Context, cfg *config.Config) error {
	var (
		wg      sync.WaitGroup
		closers []func() error
	)
	defer func() {
		for _, fn := range closers {
			if err := fn(); err != nil {
				log.Printf("close failed: %v", err)
			}
		}
	}()

	// Units already started must stop before their clients close.
	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		wg.Wait()
	}()

	// ---- event sinks (shared by all units) ----
	var events publisher.EventSink = publisher.LogSink{Log: log.Default()}
	if path := cfg.Paramhub.Events.File; path != "" {
		fs, err := eventlog.OpenFile(path)
		if err != nil {
			return err
		}
		closers = append(closers, fs.Close)
		events = eventlog.MultiSink{events, fs}
	}

	for _, unit := range cfg.Paramhub.Units {
		// ---- poller ----
		p, closePoller, err := poller.Build(unit)
		if err != nil {
			return fmt.Errorf("poller build failed (unit=%s): %w", unit.ID, err)
		}
		closers = append(closers, closePoller)

		// ---- data hub ----
		hub, err := appdata.Build(unit)
		if err != nil {
			return fmt.Errorf("hub build failed (unit=%s): %w", unit.ID, err)
		}

		// ---- publish plan ----
		plan, err := publisher.BuildPlan(unit, cfg.Paramhub.StatusMemory)
		if err != nil {
			return fmt.Errorf("publish plan failed (unit=%s): %w", unit.ID, err)
		}

		// ---- publisher clients (DATA + STATUS) ----
		timeout := time.Duration(unit.Source.TimeoutMs) * time.Millisecond
		clients, closeClients, err := publisher.BuildEndpointClients(plan, timeout)
		if err != nil {
			return fmt.Errorf("publisher clients failed (unit=%s): %w", unit.ID, err)
		}
		closers = append(closers, closeClients)

		pub := publisher.New(plan, clients, publisher.WithLogger(log.Default()))

		pc := pipeline.Config{
			Hub:       hub,
			Publisher: pub,
			Events:    events,
			Log:       log.Default(),
		}
		// Status writer (optional per unit)
		if sw, ok := publisher.NewDeviceStatusWriter(plan, clients); ok {
			pc.Status = sw
		}

		u, err := pipeline.New(pc)
		if err != nil {
			return fmt.Errorf("pipeline failed (unit=%s): %w", unit.ID, err)
		}

		// ---- channel between poller and pipeline ----
		out := make(chan poller.PollResult)

		wg.Add(2)
		go func() {
			defer wg.Done()
			u.Run(ctx, out)
		}()
		go func() {
			defer wg.Done()
			p.Run(ctx, out)
		}()

		log.Printf("unit started (unit=%s params=%d targets=%d status=%t)",
			unit.ID, hub.Table().Len(), len(plan.Targets), pc.Status != nil)
	}

	<-ctx.Done()
	log.Printf("shutting down")
	return nil
}
