// Copyright (C) 2025 Quorumworks (jmcallister@quorumworks.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/quorumworks/boardroom/services/board/datatypes"
	"github.com/quorumworks/boardroom/services/board/members"
	"github.com/quorumworks/boardroom/services/board/observability"
	"github.com/quorumworks/boardroom/services/board/override"
	"github.com/quorumworks/boardroom/services/board/routes"
	boardservices "github.com/quorumworks/boardroom/services/board/services"
	"github.com/quorumworks/boardroom/services/board/storage/badgerstore"
	"github.com/quorumworks/boardroom/services/risk_engine"
	"google.golang.org/grpc/credentials/insecure"

	// --- OpenTelemetry imports ---
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"google.golang.org/grpc"
)

func initTracer() (func(context.Context), error) {
	ctx := context.Background()

	otelEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otelEndpoint == "" {
		otelEndpoint = "boardroom-otel-collector:4317"
	}
	conn, err := grpc.NewClient(otelEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("board-service")))
	if err != nil {
		return nil, err
	}
	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))
	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.
		TraceContext{}, propagation.Baggage{}))

	return func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}, nil
}

func loadBoardConfig() *datatypes.BoardConfig {
	path := os.Getenv("BOARDROOM_BOARD_CONFIG")
	if path == "" {
		slog.Info("BOARDROOM_BOARD_CONFIG not set, seating the default board")
		return datatypes.DefaultBoardConfig()
	}
	cfg, err := datatypes.LoadBoardConfig(path)
	if err != nil {
		log.Fatalf("FATAL: Could not load the board config from %s: %v", path, err)
	}
	return cfg
}

func main() {
	port := os.Getenv("BOARDROOM_PORT")
	if port == "" {
		port = "12220"
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// --- Init the tracer ---
	cleanup, err := initTracer()
	if err != nil {
		log.Fatalf("failed to setup the OTLP tracer: %v", err)
	}
	defer cleanup(context.Background())

	cfg := loadBoardConfig()

	riskEngine, err := risk_engine.NewEngine()
	if err != nil {
		log.Fatalf("FATAL: Could not initialize the Risk Engine: %v", err)
	}

	log.Println("Seating the board")
	panel, err := members.NewPanel(cfg, riskEngine)
	if err != nil {
		log.Fatalf("Failed to seat the board: %v", err)
	}

	dataDir := os.Getenv("BOARDROOM_DATA_DIR")
	if dataDir == "" {
		dataDir = "/data/boardroom"
	}
	store, err := badgerstore.Open(badgerstore.DefaultConfig(dataDir))
	if err != nil {
		log.Fatalf("Failed to open the decision store at %s: %v", dataDir, err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Error("Failed to close the decision store", "error", err)
		}
	}()

	control := override.NewController()
	metrics := observability.InitMetrics()

	svc := boardservices.NewBoardService(
		panel.Evaluators(),
		cfg.QuorumThreshold,
		cfg.MemberTimeout,
		store,
		control,
		metrics,
	)

	router := gin.Default()
	router.Use(otelgin.Middleware("board-service"))

	routes.SetupRoutes(router, routes.Dependencies{
		Service:       svc,
		Panel:         panel,
		Config:        cfg,
		Store:         store,
		Control:       control,
		OperatorToken: os.Getenv("BOARDROOM_API_TOKEN"),
	})

	log.Println("Starting the board server on port ", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
