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

// Package alerts turns urgent donation events into outbound notifications.
package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafka "github.com/segmentio/kafka-go"

	"github.com/jredh-dev/foodrescue/internal/events"
	"github.com/jredh-dev/foodrescue/internal/expiry"
)

const (
	// DLQTopic receives events that could not be delivered after maxRetries.
	DLQTopic = "donation-events-dlq"

	// GroupID is the consumer group on the donation-events topic.
	GroupID = "foodrescue-alerts"

	maxRetries = 3
)

// Notifier delivers one alert.
type Notifier interface {
	Notify(ctx context.Context, e events.Event) error
}

// ShouldAlert reports whether e needs a notification: a newly posted
// donation that is already HIGH urgency.
func ShouldAlert(e events.Event) bool {
	return e.Type == events.TypeCreated && e.Urgency == string(expiry.High)
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer reads the donation-events topic and notifies for urgent
// donations. Offsets are committed after each message is handled, so
// delivery is at-least-once; undeliverable events go to DLQTopic.
type Consumer struct {
	reader   *kafka.Reader
	dlq      messageWriter
	notifier Notifier
	backoff  func(attempt int) time.Duration
}

// NewConsumer creates a Consumer connected to brokers.
func NewConsumer(brokers []string, notifier Notifier) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          events.Topic,
		GroupID:        GroupID,
		MinBytes:       1,
		MaxBytes:       1 << 20, // 1 MiB
		CommitInterval: 0,       // explicit commits only
		StartOffset:    kafka.LastOffset,
	})

	dlq := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        DLQTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
	}

	return &Consumer{
		reader:   reader,
		dlq:      dlq,
		notifier: notifier,
		backoff:  linearBackoff,
	}
}

// Run blocks, consuming events until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	slog.Info("consuming donation events", "topic", events.Topic, "group", GroupID)

	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("fetch: %w", err)
		}

		if err := c.handle(ctx, m); err != nil {
			slog.Error("routed donation event to DLQ", "key", string(m.Key), "error", err)
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil {
			slog.Warn("commit failed, message may be redelivered", "error", err)
		}
	}
}

// Close releases all Kafka resources.
func (c *Consumer) Close() error {
	var rerr error
	if c.reader != nil {
		rerr = c.reader.Close()
	}
	werr := c.dlq.Close()
	if rerr != nil {
		return rerr
	}
	return werr
}

// handle decodes m and notifies if the event needs it, retrying with backoff.
// After maxRetries the raw message goes to the DLQ.
func (c *Consumer) handle(ctx context.Context, m kafka.Message) error {
	var e events.Event
	if err := json.Unmarshal(m.Value, &e); err != nil {
		return c.sendToDLQ(ctx, m, fmt.Errorf("unmarshal: %w", err))
	}
	if !ShouldAlert(e) {
		slog.Debug("skipping donation event", "type", e.Type, "urgency", e.Urgency)
		return nil
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		lastErr = c.notifier.Notify(ctx, e)
		if lastErr == nil {
			slog.Info("sent urgent donation alert", "donation_id", e.DonationID, "attempt", attempt)
			return nil
		}
		slog.Warn("alert attempt failed", "donation_id", e.DonationID, "attempt", attempt, "max", maxRetries, "error", lastErr)

		if attempt < maxRetries {
			select {
			case <-time.After(c.backoff(attempt)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	return c.sendToDLQ(ctx, m, lastErr)
}

func (c *Consumer) sendToDLQ(ctx context.Context, original kafka.Message, reason error) error {
	headers := make([]kafka.Header, 0, len(original.Headers)+1)
	headers = append(headers, original.Headers...)
	headers = append(headers, kafka.Header{Key: "error", Value: []byte(reason.Error())})

	err := c.dlq.WriteMessages(ctx, kafka.Message{
		Key:     original.Key,
		Value:   original.Value,
		Headers: headers,
	})
	if err != nil {
		slog.Error("could not write to DLQ", "error", err)
	}
	return reason
}

func linearBackoff(attempt int) time.Duration {
	return time.Duration(attempt) * 2 * time.Second
}
