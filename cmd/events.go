package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	pkglog "github.com/Gorstka/Yatube/pkg/log"
	"github.com/Gorstka/Yatube/pkg/pubsub"
)

var eventTypes []string

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect the site event bus",
}

var eventsTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Print site events as JSON lines until interrupted",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		pkglog.Init(cfg.Log)
		logger := pkglog.L()

		bus, err := pubsub.NewPubSub(cfg.PubSub)
		if err != nil {
			return fmt.Errorf("init pubsub: %w", err)
		}
		defer bus.Close()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		ctx = pkglog.WithLogger(ctx, logger)

		events, err := bus.Subscribe(ctx, pubsub.ChannelEvents)
		if err != nil {
			return fmt.Errorf("subscribe: %w", err)
		}
		logger.Info().Str("driver", cfg.PubSub.Driver).Strs("types", eventTypes).Msg("tailing events")

		wanted := make(map[string]bool, len(eventTypes))
		for _, t := range eventTypes {
			wanted[t] = true
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		for {
			select {
			case <-ctx.Done():
				return nil
			case ev, ok := <-events:
				if !ok {
					return nil
				}
				if len(wanted) > 0 && !wanted[ev.Type] {
					continue
				}
				if err := enc.Encode(ev); err != nil {
					return err
				}
			}
		}
	},
}

func init() {
	eventsTailCmd.Flags().StringSliceVar(&eventTypes, "type", nil, "only print these event types (repeatable)")
	eventsCmd.AddCommand(eventsTailCmd)
}
