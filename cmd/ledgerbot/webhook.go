package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ledgerbot/internal/auth"
	"ledgerbot/internal/domain"
	"ledgerbot/internal/telegram"
)

var (
	webhookURL  string
	dropPending bool
)

var webhookCmd = &cobra.Command{
	Use:   "webhook",
	Short: "Manage the Bot API webhook",
}

var webhookSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Point the bot at the webhook URL with the configured secret",
	RunE:  runWebhookSet,
}

func init() {
	webhookSetCmd.Flags().StringVar(&webhookURL, "url", "", "public webhook URL (defaults to telegram.webhook_url)")
	webhookSetCmd.Flags().BoolVar(&dropPending, "drop-pending", false, "drop updates queued while the bot was offline")
	webhookCmd.AddCommand(webhookSetCmd)
}

func runWebhookSet(_ *cobra.Command, _ []string) error {
	url := webhookURL
	if url == "" {
		url = cfg.Telegram.WebhookURL
	}
	if url == "" {
		return fmt.Errorf("%w: --url or telegram.webhook_url is required", domain.ErrConfiguration)
	}

	api, err := telegram.NewBotAPI(&cfg.Telegram, log)
	if err != nil {
		return err
	}
	if err := telegram.SetWebhook(api, url, cfg.Telegram.WebhookSecret, dropPending); err != nil {
		return err
	}
	if cfg.Telegram.WebhookSecret == "" {
		log.Warn("webhook set without a secret token; any caller can post updates")
	}
	log.Info("webhook set", zap.String("url", url))
	return nil
}

var hashPasswordCmd = &cobra.Command{
	Use:         "hash-password [password]",
	Short:       "Print a bcrypt hash for auth.password_hash",
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{"config": "none"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if args[0] == "" {
			return errors.New("password must not be empty")
		}
		hash, err := auth.HashPassword(args[0])
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
		return err
	},
}
