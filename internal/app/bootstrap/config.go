package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/agenticfraud/fraud-pipeline/internal/adapters/events"
	"github.com/agenticfraud/fraud-pipeline/internal/router"
)

// Config is the fully-resolved set of knobs spec.md §6 enumerates, plus the
// ambient ones the teacher always carries (service id, bus bootstrap,
// consumer group, HTTP port). Two layers, same as the teacher:
// configs/default.yaml first, then environment variables overlay it.
type Config struct {
	ServiceID string
	HTTPPort  int

	RedisURL           string
	KafkaBrokers       []string
	KafkaConsumerGroup string

	TopicTransactions     string
	TopicCustomerProfiles string
	TopicAnalystFeedback  string
	TopicFraudAlerts      string
	TopicHumanReview      string
	TopicApproved         string

	CoordinatorPoolSize int

	ScorerProfile     string
	ScorerBaseURL     string
	ScorerCredentials string
	ScorerTimeout     time.Duration

	VelocityWindow        time.Duration
	VelocityHighThreshold int64

	RiskFraudThreshold            float64
	ConfidenceFraudAlertThreshold float64
	ConfidenceNeedsHumanLower     float64
	ConfidenceNeedsHumanUpper     float64
	DisagreementThreshold         float64

	ConsumerPollInterval time.Duration
	EnrichmentWorkers    int
}

type configFile struct {
	Service struct {
		ID       string `yaml:"id"`
		HTTPPort int    `yaml:"http_port"`
	} `yaml:"service"`
	Bus struct {
		Bootstrap         string `yaml:"bootstrap"`
		ConsumerGroup     string `yaml:"consumer_group"`
		TopicTransactions string `yaml:"topic_transactions"`
		TopicProfiles     string `yaml:"topic_customer_profiles"`
		TopicFeedback     string `yaml:"topic_analyst_feedback"`
		TopicFraudAlerts  string `yaml:"topic_fraud_alerts"`
		TopicHumanReview  string `yaml:"topic_human_review"`
		TopicApproved     string `yaml:"topic_approved_transactions"`
	} `yaml:"bus"`
	Redis struct {
		URL string `yaml:"url"`
	} `yaml:"redis"`
	Scorer struct {
		Profile     string        `yaml:"profile"`
		BaseURL     string        `yaml:"base_url"`
		Credentials string        `yaml:"credentials"`
		Timeout     time.Duration `yaml:"timeout"`
	} `yaml:"scorer"`
	Coordinator struct {
		PoolSize              int     `yaml:"pool_size"`
		DisagreementThreshold float64 `yaml:"disagreement_threshold"`
	} `yaml:"coordinator"`
	Velocity struct {
		Window        time.Duration `yaml:"window"`
		HighThreshold int64         `yaml:"high_threshold"`
	} `yaml:"velocity"`
	Risk struct {
		FraudThreshold float64 `yaml:"fraud_threshold"`
	} `yaml:"risk"`
	Confidence struct {
		FraudAlertThreshold float64 `yaml:"fraud_alert_threshold"`
		NeedsHumanLower     float64 `yaml:"needs_human_lower"`
		NeedsHumanUpper     float64 `yaml:"needs_human_upper"`
	} `yaml:"confidence"`
	Enrichment struct {
		Workers int `yaml:"workers"`
	} `yaml:"enrichment"`
}

func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID: "fraud-screening-pipeline",
		HTTPPort:  8080,

		KafkaConsumerGroup: "fraud-screening-pipeline",

		TopicTransactions:     events.TopicTransactions,
		TopicCustomerProfiles: events.TopicCustomerProfiles,
		TopicAnalystFeedback:  events.TopicAnalystFeedback,
		TopicFraudAlerts:      router.TopicFraudAlerts,
		TopicHumanReview:      router.TopicHumanReview,
		TopicApproved:         router.TopicApproved,

		CoordinatorPoolSize: 5,

		ScorerProfile: "local",
		ScorerTimeout: 8 * time.Second,

		VelocityWindow:        5 * time.Minute,
		VelocityHighThreshold: 3,

		RiskFraudThreshold:            0.6,
		ConfidenceFraudAlertThreshold: 0.8,
		ConfidenceNeedsHumanLower:     0.3,
		ConfidenceNeedsHumanUpper:     0.7,
		DisagreementThreshold:         0.4,

		ConsumerPollInterval: 2 * time.Second,
	}

	raw, err := os.ReadFile(path)
	if err == nil {
		var f configFile
		if unmarshalErr := yaml.Unmarshal(raw, &f); unmarshalErr != nil {
			return Config{}, fmt.Errorf("parse config file: %w", unmarshalErr)
		}
		if f.Service.ID != "" {
			cfg.ServiceID = f.Service.ID
		}
		if f.Service.HTTPPort > 0 {
			cfg.HTTPPort = f.Service.HTTPPort
		}
		if f.Bus.Bootstrap != "" {
			cfg.KafkaBrokers = trimNonEmpty(strings.Split(f.Bus.Bootstrap, ","))
		}
		if f.Bus.ConsumerGroup != "" {
			cfg.KafkaConsumerGroup = f.Bus.ConsumerGroup
		}
		overlayString(&cfg.TopicTransactions, f.Bus.TopicTransactions)
		overlayString(&cfg.TopicCustomerProfiles, f.Bus.TopicProfiles)
		overlayString(&cfg.TopicAnalystFeedback, f.Bus.TopicFeedback)
		overlayString(&cfg.TopicFraudAlerts, f.Bus.TopicFraudAlerts)
		overlayString(&cfg.TopicHumanReview, f.Bus.TopicHumanReview)
		overlayString(&cfg.TopicApproved, f.Bus.TopicApproved)
		overlayString(&cfg.RedisURL, f.Redis.URL)
		overlayString(&cfg.ScorerProfile, f.Scorer.Profile)
		overlayString(&cfg.ScorerBaseURL, f.Scorer.BaseURL)
		overlayString(&cfg.ScorerCredentials, f.Scorer.Credentials)
		if f.Scorer.Timeout > 0 {
			cfg.ScorerTimeout = f.Scorer.Timeout
		}
		if f.Coordinator.PoolSize > 0 {
			cfg.CoordinatorPoolSize = f.Coordinator.PoolSize
		}
		if f.Coordinator.DisagreementThreshold > 0 {
			cfg.DisagreementThreshold = f.Coordinator.DisagreementThreshold
		}
		if f.Velocity.Window > 0 {
			cfg.VelocityWindow = f.Velocity.Window
		}
		if f.Velocity.HighThreshold > 0 {
			cfg.VelocityHighThreshold = f.Velocity.HighThreshold
		}
		if f.Risk.FraudThreshold > 0 {
			cfg.RiskFraudThreshold = f.Risk.FraudThreshold
		}
		if f.Confidence.FraudAlertThreshold > 0 {
			cfg.ConfidenceFraudAlertThreshold = f.Confidence.FraudAlertThreshold
		}
		if f.Confidence.NeedsHumanLower > 0 {
			cfg.ConfidenceNeedsHumanLower = f.Confidence.NeedsHumanLower
		}
		if f.Confidence.NeedsHumanUpper > 0 {
			cfg.ConfidenceNeedsHumanUpper = f.Confidence.NeedsHumanUpper
		}
		if f.Enrichment.Workers > 0 {
			cfg.EnrichmentWorkers = f.Enrichment.Workers
		}
	}

	cfg.ServiceID = envOrDefault("SERVICE_ID", cfg.ServiceID)
	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.KafkaBrokers = envCSV("KAFKA_BROKERS", cfg.KafkaBrokers)
	cfg.KafkaConsumerGroup = envOrDefault("KAFKA_CONSUMER_GROUP", cfg.KafkaConsumerGroup)
	cfg.TopicTransactions = envOrDefault("KAFKA_TOPIC_TRANSACTIONS", cfg.TopicTransactions)
	cfg.TopicCustomerProfiles = envOrDefault("KAFKA_TOPIC_CUSTOMER_PROFILES", cfg.TopicCustomerProfiles)
	cfg.TopicAnalystFeedback = envOrDefault("KAFKA_TOPIC_ANALYST_FEEDBACK", cfg.TopicAnalystFeedback)
	cfg.TopicFraudAlerts = envOrDefault("KAFKA_TOPIC_FRAUD_ALERTS", cfg.TopicFraudAlerts)
	cfg.TopicHumanReview = envOrDefault("KAFKA_TOPIC_HUMAN_REVIEW", cfg.TopicHumanReview)
	cfg.TopicApproved = envOrDefault("KAFKA_TOPIC_APPROVED_TRANSACTIONS", cfg.TopicApproved)
	cfg.ScorerProfile = envOrDefault("SCORER_PROFILE", cfg.ScorerProfile)
	cfg.ScorerBaseURL = envOrDefault("SCORER_BASE_URL", cfg.ScorerBaseURL)
	cfg.ScorerCredentials = envOrDefault("SCORER_CREDENTIALS", cfg.ScorerCredentials)
	cfg.ScorerTimeout = time.Duration(envInt("SCORER_TIMEOUT_SECONDS", int(cfg.ScorerTimeout.Seconds()))) * time.Second
	cfg.CoordinatorPoolSize = envInt("COORDINATOR_POOL_SIZE", cfg.CoordinatorPoolSize)
	cfg.DisagreementThreshold = envFloat("COORDINATOR_DISAGREEMENT_THRESHOLD", cfg.DisagreementThreshold)
	cfg.VelocityWindow = time.Duration(envInt("VELOCITY_WINDOW_SECONDS", int(cfg.VelocityWindow.Seconds()))) * time.Second
	cfg.VelocityHighThreshold = int64(envInt("VELOCITY_HIGH_THRESHOLD", int(cfg.VelocityHighThreshold)))
	cfg.RiskFraudThreshold = envFloat("RISK_FRAUD_THRESHOLD", cfg.RiskFraudThreshold)
	cfg.ConfidenceFraudAlertThreshold = envFloat("CONFIDENCE_FRAUD_ALERT_THRESHOLD", cfg.ConfidenceFraudAlertThreshold)
	cfg.ConfidenceNeedsHumanLower = envFloat("CONFIDENCE_NEEDS_HUMAN_LOWER", cfg.ConfidenceNeedsHumanLower)
	cfg.ConfidenceNeedsHumanUpper = envFloat("CONFIDENCE_NEEDS_HUMAN_UPPER", cfg.ConfidenceNeedsHumanUpper)
	cfg.ConsumerPollInterval = time.Duration(envInt("CONSUMER_POLL_SECONDS", int(cfg.ConsumerPollInterval.Seconds()))) * time.Second
	cfg.EnrichmentWorkers = envInt("ENRICHMENT_WORKERS", cfg.EnrichmentWorkers)

	if cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("missing REDIS_URL")
	}
	if cfg.ScorerBaseURL == "" {
		return Config{}, fmt.Errorf("missing SCORER_BASE_URL")
	}
	return cfg, nil
}

func overlayString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func envFloat(name string, fallback float64) float64 {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}

func envCSV(name string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	items := strings.Split(raw, ",")
	return trimNonEmpty(items)
}

func trimNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
