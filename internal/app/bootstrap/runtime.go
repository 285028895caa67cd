package bootstrap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agenticfraud/fraud-pipeline/internal/adapters/events"
	httpadapter "github.com/agenticfraud/fraud-pipeline/internal/adapters/http"
	"github.com/agenticfraud/fraud-pipeline/internal/adapters/state"
	"github.com/agenticfraud/fraud-pipeline/internal/analyzer"
	"github.com/agenticfraud/fraud-pipeline/internal/coordinator"
	"github.com/agenticfraud/fraud-pipeline/internal/decision"
	"github.com/agenticfraud/fraud-pipeline/internal/enrichment"
	"github.com/agenticfraud/fraud-pipeline/internal/feedback"
	"github.com/agenticfraud/fraud-pipeline/internal/ports"
	"github.com/agenticfraud/fraud-pipeline/internal/router"
	"github.com/agenticfraud/fraud-pipeline/internal/scorer"
)

// Runtime wires every module SPEC_FULL.md names into the two processes this
// service runs as: an HTTP control plane (cmd/api) and a stream processor
// (cmd/pipeline). Grounded on the teacher's single-Runtime-two-RunX-methods
// shape (RunAPI/RunWorker).
type Runtime struct {
	cfg    Config
	logger *slog.Logger

	httpServer *http.Server
	stage      *decision.Stage

	topology  *enrichment.Topology
	consumer  *events.ConsumerWorker
	publisher ports.EventPublisher
	routerCfg router.Config

	cleanupFn func(context.Context)
}

func NewRuntime(ctx context.Context, configPath string) (*Runtime, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})).With("service", cfg.ServiceID)
	slog.SetDefault(logger)

	redisClient, err := state.Connect(ctx, cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	velocityStore := state.NewRedisVelocityStore(redisClient)
	profileTable := state.NewRedisProfileTable(redisClient)
	feedbackRepo := state.NewRedisFeedbackRepository(redisClient)

	var scorerClient ports.Scorer
	if cfg.ScorerProfile == "cloud" {
		scorerClient = scorer.NewCloudClient(cfg.ScorerBaseURL, cfg.ScorerCredentials, cfg.ScorerTimeout)
	} else {
		scorerClient = scorer.NewLocalClient(cfg.ScorerBaseURL, cfg.ScorerTimeout)
	}

	coord := coordinator.New(scorerClient, coordinator.Config{
		PoolSize:              cfg.CoordinatorPoolSize,
		HighVelocityThreshold: cfg.VelocityHighThreshold,
		FraudThreshold:        cfg.RiskFraudThreshold,
		DisagreementThreshold: cfg.DisagreementThreshold,
	})
	stage := decision.New(coord)

	feedbackSink := feedback.New(analyzer.NewFeedbackSink(feedbackRepo))

	topology := enrichment.New(logger, velocityStore, profileTable, enrichment.Config{
		Workers:               cfg.EnrichmentWorkers,
		WindowSize:            cfg.VelocityWindow,
		HighVelocityThreshold: cfg.VelocityHighThreshold,
	})

	var publisher ports.EventPublisher = events.NewLoggingPublisher(logger)
	var consumerAdapter events.Consumer = events.NewNoopConsumer()
	var closers []interface{ Close() error }
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher, pubErr := events.NewKafkaPublisher(cfg.KafkaBrokers)
		if pubErr != nil {
			logger.WarnContext(ctx, "kafka publisher disabled, using logging publisher", "error", pubErr)
		} else {
			publisher = kafkaPublisher
			closers = append(closers, kafkaPublisher)
		}

		kafkaConsumer, conErr := events.NewKafkaConsumer(
			cfg.KafkaBrokers,
			cfg.KafkaConsumerGroup,
			[]string{cfg.TopicTransactions, cfg.TopicCustomerProfiles, cfg.TopicAnalystFeedback},
		)
		if conErr != nil {
			logger.WarnContext(ctx, "kafka consumer disabled, using noop consumer", "error", conErr)
		} else {
			consumerAdapter = kafkaConsumer
			closers = append(closers, kafkaConsumer)
		}
	}
	consumerWorker := events.NewConsumerWorker(logger, consumerAdapter, topology, feedbackSink, cfg.ConsumerPollInterval)

	handler := httpadapter.NewHandler(stage)
	httpRouter := httpadapter.NewRouter(logger, handler)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           httpRouter,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &Runtime{
		cfg:    cfg,
		logger: logger,

		httpServer: httpServer,
		stage:      stage,

		topology:  topology,
		consumer:  consumerWorker,
		publisher: publisher,
		routerCfg: router.Config{
			FraudAlertThreshold: cfg.ConfidenceFraudAlertThreshold,
			NeedsHumanLower:     cfg.ConfidenceNeedsHumanLower,
			NeedsHumanUpper:     cfg.ConfidenceNeedsHumanUpper,
		},

		cleanupFn: func(context.Context) {
			for _, closer := range closers {
				_ = closer.Close()
			}
			_ = redisClient.Close()
		},
	}, nil
}

func Build(ctx context.Context, configPath string) (*Runtime, error) {
	return NewRuntime(ctx, configPath)
}

// RunAPI serves the three HTTP boundary endpoints against the coordinator
// directly, with no streaming context (spec.md §6's "accept one Event, run
// Coordinator with an empty StreamingContext").
func (r *Runtime) RunAPI(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	errCh := make(chan error, 1)

	go func() {
		if err := r.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		r.logger.ErrorContext(ctx, "runtime failure", "error", err)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = r.httpServer.Shutdown(shutdownCtx)
	r.cleanupFn(shutdownCtx)
	return nil
}

// RunPipeline starts the enrichment topology, the bus consumer feeding it,
// and the pump that hands each enriched event to the decision stage and
// routes the resulting Decision to its output topic. Matches the teacher's
// RunWorker shape: one goroutine per long-running loop, first error wins.
func (r *Runtime) RunPipeline(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	errCh := make(chan error, 2)

	go r.topology.Run(ctx)
	go r.runPump(ctx)
	go func() {
		if err := r.consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		r.cleanupFn(context.Background())
		return err
	}
}

// runPump drains the topology's enriched-event stream, decides, routes, and
// publishes, until the topology closes its output channel (ctx cancelled).
// A non-nil error from Handle marks the synthetic technical-error Decision;
// unlike the HTTP analyze endpoint, the pump has no status code to report it
// with, so it routes that Decision exactly like any other one (its fraud=true
// already sends it to human-review). A failed Publish is logged and retried
// every second until it succeeds or ctx is cancelled, stalling the pump
// rather than dropping the Decision.
func (r *Runtime) runPump(ctx context.Context) {
	for enriched := range r.topology.Out() {
		result, _ := r.stage.Handle(ctx, enriched)
		topic, envelope := router.Route(r.routerCfg, result)
		payload, err := json.Marshal(envelope)
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to marshal decision envelope",
				"module", "app.bootstrap",
				"layer", "runtime",
				"operation", "pump",
				"outcome", "failure",
				"event_id", result.EventID,
				"error", err,
			)
			continue
		}
		for {
			err := r.publisher.Publish(ctx, topic, enriched.Event.PayerID, payload)
			if err == nil || ctx.Err() != nil {
				break
			}
			r.logger.ErrorContext(ctx, "failed to publish decision, retrying",
				"module", "app.bootstrap",
				"layer", "runtime",
				"operation", "pump",
				"outcome", "failure",
				"event_id", result.EventID,
				"topic", topic,
				"error", err,
			)
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
			}
		}
	}
}
