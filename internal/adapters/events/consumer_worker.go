package events

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/agenticfraud/fraud-pipeline/internal/domain"
	"github.com/agenticfraud/fraud-pipeline/internal/enrichment"
	"github.com/agenticfraud/fraud-pipeline/internal/feedback"
)

type Message struct {
	Topic   string
	Payload []byte
}

type Consumer interface {
	Poll(ctx context.Context, max int) ([]Message, error)
}

// ConsumerWorker polls the bus and dispatches each message to the
// enrichment topology or the feedback sink by topic, grounded on the
// teacher's same-named polling-loop worker. Decode failures are logged and
// skipped per spec.md §7 ("malformed records are logged and skipped at the
// bus adapter") rather than stalling the loop the way a bus-level failure
// does.
type ConsumerWorker struct {
	logger   *slog.Logger
	consumer Consumer
	topology *enrichment.Topology
	feedback *feedback.Sink
	interval time.Duration
}

func NewConsumerWorker(logger *slog.Logger, consumer Consumer, topology *enrichment.Topology, feedbackSink *feedback.Sink, interval time.Duration) *ConsumerWorker {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &ConsumerWorker{
		logger: logger, consumer: consumer, topology: topology, feedback: feedbackSink, interval: interval,
	}
}

func (w *ConsumerWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if err := w.processOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
			w.logger.ErrorContext(ctx, "consumer iteration failed",
				"module", "events.consumer_worker",
				"layer", "adapter",
				"operation", "process_once",
				"outcome", "failure",
				"error", err,
			)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// processOnce returns a non-nil error only for bus-level failures (the
// consumer's Poll error, passed through unwrapped); malformed individual
// messages are logged and
// skipped so one bad record never stalls the whole poll loop.
func (w *ConsumerWorker) processOnce(ctx context.Context) error {
	msgs, err := w.consumer.Poll(ctx, 50)
	if err != nil {
		return err
	}
	for _, msg := range msgs {
		w.dispatch(ctx, msg)
	}
	return nil
}

func (w *ConsumerWorker) dispatch(ctx context.Context, msg Message) {
	switch msg.Topic {
	case TopicTransactions:
		var e domain.Event
		if err := json.Unmarshal(msg.Payload, &e); err != nil {
			w.logMalformed(ctx, msg.Topic, err)
			return
		}
		if err := e.Validate(); err != nil {
			w.logMalformed(ctx, msg.Topic, err)
			return
		}
		w.topology.Submit(ctx, e)
	case TopicCustomerProfiles:
		var p domain.Profile
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			w.logMalformed(ctx, msg.Topic, err)
			return
		}
		w.topology.SubmitProfile(ctx, p)
	case TopicAnalystFeedback:
		if err := w.feedback.Handle(ctx, msg.Payload); err != nil {
			w.logMalformed(ctx, msg.Topic, err)
		}
	default:
		w.logger.WarnContext(ctx, "message on unrecognized topic",
			"module", "events.consumer_worker",
			"layer", "adapter",
			"operation", "dispatch",
			"outcome", "skipped",
			"topic", msg.Topic,
		)
	}
}

func (w *ConsumerWorker) logMalformed(ctx context.Context, topic string, err error) {
	w.logger.WarnContext(ctx, "malformed message skipped",
		"module", "events.consumer_worker",
		"layer", "adapter",
		"operation", "dispatch",
		"outcome", "skipped",
		"topic", topic,
		"error", err,
	)
}
