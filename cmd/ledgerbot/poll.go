package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ledgerbot/internal/service"
	"ledgerbot/internal/telegram"
)

var pollCmd = &cobra.Command{
	Use:   "poll",
	Short: "Long-poll the Bot API instead of receiving webhooks",
	RunE:  runPoll,
}

func runPoll(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	events, err := telegram.Poll(ctx, a.api, cfg.Telegram.PollTimeout, log)
	if err != nil {
		return err
	}
	poller := service.NewUpdatePoller(a.controller, service.PollerConfig{
		Concurrency:   cfg.Telegram.Concurrency,
		HandleTimeout: handleTimeout(cfg),
	}, log)
	log.Info("Polling for updates")
	poller.Run(ctx, events)
	return nil
}
