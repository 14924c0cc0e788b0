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

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/jredh-dev/foodrescue/config"
	"github.com/jredh-dev/foodrescue/internal/dashboard"
	"github.com/jredh-dev/foodrescue/internal/database"
	"github.com/jredh-dev/foodrescue/internal/docstore"
	"github.com/jredh-dev/foodrescue/internal/donation"
	"github.com/jredh-dev/foodrescue/internal/events"
	"github.com/jredh-dev/foodrescue/internal/expiry"
	"github.com/jredh-dev/foodrescue/internal/handlers"
	"github.com/jredh-dev/foodrescue/internal/logging"
	"github.com/jredh-dev/foodrescue/internal/rules"
	"github.com/jredh-dev/foodrescue/internal/server"
	"github.com/jredh-dev/foodrescue/internal/token"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("foodrescue %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", buildDate)
		os.Exit(0)
	}

	cfg := config.Load()

	flush, err := logging.Setup(logging.Options{
		Level:       cfg.Log.Level,
		Dev:         cfg.IsDev(),
		SentryDSN:   cfg.Log.SentryDSN,
		Environment: cfg.Server.Env,
		Release:     version,
	})
	if err != nil {
		slog.Warn("sentry disabled", "error", err)
	}
	defer flush()

	if err := cfg.Validate(); err != nil {
		logging.Fatal("invalid configuration", "error", err)
	}

	rs, err := rules.Load(cfg.RulesPath)
	if err != nil {
		logging.Fatal("failed to load rules", "path", cfg.RulesPath, "error", err)
	}
	scorer, err := rs.Scorer()
	if err != nil {
		logging.Fatal("failed to build scorer", "error", err)
	}

	ctx := context.Background()
	srv := server.New()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logging.Fatal("failed to open store", "backend", cfg.Store.Backend, "error", err)
	}
	srv.OnStop(closeStore)

	var publisher donation.Publisher = events.Nop{}
	if len(cfg.Kafka.Brokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.Kafka.Brokers)
		srv.OnStop(func() {
			if err := kp.Close(); err != nil {
				slog.Error("close kafka writer", "error", err)
			}
		})
		publisher = kp
		slog.Info("publishing donation events", "brokers", cfg.Kafka.Brokers, "topic", events.Topic)
	}

	signingKey := cfg.JWT.SigningKey
	if signingKey == "" {
		signingKey, err = token.GenerateSigningKey()
		if err != nil {
			logging.Fatal("failed to generate signing key", "error", err)
		}
		slog.Warn("JWT_SIGNING_KEY not set, using an ephemeral key")
	}

	svc := donation.NewService(store, expiry.NewPredictor(rs.Expiry, nil), publisher, nil)
	h := handlers.New(
		svc,
		dashboard.NewBuilder(rs.Points, scorer),
		scorer,
		token.New(signingKey, cfg.JWT.Issuer, nil),
		cfg.JWT.TTL,
	)
	h.Routes(srv.Router)

	slog.Info("foodrescue starting",
		"version", version,
		"store", cfg.Store.Backend,
		"rules", cfg.RulesPath,
		"badge_cost", scorer.BadgeCost(),
	)
	if err := srv.ListenAndServe(ctx, ":"+cfg.Server.Port); err != nil {
		logging.Fatal("server error", "error", err)
	}
}

func openStore(ctx context.Context, cfg *config.Config) (donation.Store, func(), error) {
	switch cfg.Store.Backend {
	case config.StoreFirestore:
		if cfg.Firebase.UseEmulator {
			os.Setenv("FIRESTORE_EMULATOR_HOST", cfg.Firebase.EmulatorFirestoreHost)
			slog.Info("using firestore emulator", "host", cfg.Firebase.EmulatorFirestoreHost)
		}
		st, err := docstore.Open(ctx, docstore.Options{
			ProjectID:       cfg.Firebase.ProjectID,
			CredentialsPath: cfg.Firebase.CredentialsPath,
			DatabaseID:      cfg.Firebase.FirestoreDatabase,
		})
		if err != nil {
			return nil, nil, err
		}
		return st, func() { st.Close() }, nil
	default:
		db, err := database.Open(cfg.Store.DBPath)
		if err != nil {
			return nil, nil, err
		}
		return db, func() { db.Close() }, nil
	}
}
