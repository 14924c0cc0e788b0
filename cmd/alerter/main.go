// foodrescue - Food donation rescue dashboard
// Copyright (C) 2026  foodrescue contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.


// alerter is a long-running Kafka consumer that reads the donation-events
// topic and raises an alert for every new donation that is already HIGH
// urgency.
//
//	KAFKA_BROKERS      comma-separated broker list, e.g. "kafka:9092"
//	ALERT_WEBHOOK_URL  Slack-compatible webhook; unset logs alerts instead
package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/jredh-dev/foodrescue/config"
	"github.com/jredh-dev/foodrescue/internal/alerts"
	"github.com/jredh-dev/foodrescue/internal/logging"
)

func main() {
	cfg := config.Load()

	flush, err := logging.Setup(logging.Options{
		Level:       cfg.Log.Level,
		Dev:         cfg.IsDev(),
		SentryDSN:   cfg.Log.SentryDSN,
		Environment: cfg.Server.Env,
	})
	if err != nil {
		slog.Warn("sentry disabled", "error", err)
	}
	defer flush()

	if len(cfg.Kafka.Brokers) == 0 {
		logging.Fatal("KAFKA_BROKERS is not set")
	}

	var notifier alerts.Notifier = alerts.LogNotifier{}
	if cfg.Alerts.WebhookURL != "" {
		notifier = alerts.NewWebhookNotifier(cfg.Alerts.WebhookURL)
	}

	consumer := alerts.NewConsumer(cfg.Kafka.Brokers, notifier)
	defer func() {
		if err := consumer.Close(); err != nil {
			slog.Error("close consumer", "error", err)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	slog.Info("alerter starting", "brokers", cfg.Kafka.Brokers, "webhook", cfg.Alerts.WebhookURL != "")
	if err := consumer.Run(ctx); err != nil {
		logging.Fatal("consumer stopped", "error", err)
	}
	slog.Info("alerter shutdown complete")
}
