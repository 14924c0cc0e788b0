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

// Package events publishes donation lifecycle events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	kafka "github.com/segmentio/kafka-go"

	"github.com/jredh-dev/foodrescue/internal/models"
)

// Topic is where donation lifecycle events are written.
const Topic = "donation-events"

// Type names an event.
type Type string

const (
	TypeCreated  Type = "donation.created"
	TypeAccepted Type = "donation.accepted"
)

// Event is the JSON payload on the donation-events topic.
//
//	{
//	  "id":          "550e8400-e29b-41d4-a716-446655440000",
//	  "type":        "donation.accepted",
//	  "donation_id": "0b7c...",
//	  "actor":       "City Food Bank",
//	  "urgency":     "HIGH",
//	  "quantity":    12.5,
//	  "occurred_at": "2026-03-14T18:00:00Z"
//	}
type Event struct {
	// ID is unique per event so consumers can drop redeliveries.
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	DonationID string    `json:"donation_id"`
	Actor      string    `json:"actor"`
	Urgency    string    `json:"urgency"`
	Quantity   float64   `json:"quantity"`
	OccurredAt time.Time `json:"occurred_at"`
}

// New builds an event for d.
func New(t Type, d *models.Donation, actor string, at time.Time) Event {
	return Event{
		ID:         uuid.New().String(),
		Type:       t,
		DonationID: d.ID,
		Actor:      actor,
		Urgency:    string(d.Urgency),
		Quantity:   d.Quantity,
		OccurredAt: at.UTC(),
	}
}

// Message encodes e as a Kafka message keyed by donation ID, so every event
// for one donation lands on the same partition in order.
func Message(e Event) (kafka.Message, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal event: %w", err)
	}
	return kafka.Message{
		Key:   []byte(e.DonationID),
		Value: body,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(e.Type)},
		},
	}, nil
}

// Nop discards events. It is used when no brokers are configured.
type Nop struct{}

// Publish does nothing.
func (Nop) Publish(context.Context, Event) error { return nil }

// KafkaPublisher writes events to the donation-events topic.
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher creates a publisher connected to brokers ("kafka:9092").
func NewKafkaPublisher(brokers []string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        Topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			MaxAttempts:  3,
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

// Publish writes e and blocks until the broker acknowledges it.
func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	m, err := Message(e)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, m); err != nil {
		return fmt.Errorf("write %s: %w", e.Type, err)
	}
	slog.Debug("published donation event", "type", e.Type, "donation_id", e.DonationID)
	return nil
}

// Close flushes pending writes and releases the connection.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
