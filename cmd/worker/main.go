// worker consumes activity events from Kafka and pushes them to Loki.
// Set KAFKA_BROKERS, ACTIVITY_KAFKA_TOPIC, KAFKA_GROUP_ID, and LOKI_URL.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/OmarHalima/workforce-console/internal/activity/loki"
	"github.com/OmarHalima/workforce-console/internal/config"
	"github.com/OmarHalima/workforce-console/internal/logger"
)

const pushTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	brokers := cfg.ActivityKafkaBrokersList()
	if len(brokers) == 0 {
		zlog.Fatal("KAFKA_BROKERS is required")
	}
	if cfg.LokiURL == "" {
		zlog.Fatal("LOKI_URL is required")
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   cfg.ActivityKafkaTopic,
		GroupID: cfg.KafkaGroupID,
	})
	defer reader.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	zlog.Info("activity worker started",
		zap.String("topic", cfg.ActivityKafkaTopic),
		zap.String("group", cfg.KafkaGroupID),
	)

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				zlog.Info("activity worker stopping")
				return
			}
			zlog.Error("read message", zap.Error(err))
			continue
		}

		pushCtx, cancel := context.WithTimeout(context.Background(), pushTimeout)
		err = loki.PushEventJSON(pushCtx, cfg.LokiURL, msg.Value)
		cancel()
		if err != nil {
			// Drop the event rather than stall the partition; activity is
			// best-effort.
			zlog.Warn("push to loki failed", zap.Error(err), zap.Int64("offset", msg.Offset))
		}
	}
}
