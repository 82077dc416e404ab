package config

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port               string `envconfig:"PORT" default:"8080"`
	Environment        string `envconfig:"ENV" default:"development"`
	DBConnectionString string `envconfig:"DB_CONNECTION_STRING" required:"true"`
	JWTSecret          string `envconfig:"JWT_SECRET" required:"true"`

	// Raw upload archival (S3-compatible storage)
	S3URL       string `envconfig:"S3_URL"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"churn-uploads"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey string `envconfig:"S3_SECRET_KEY"`

	// CSV ingestion limits
	MaxUploadRows   int   `envconfig:"MAX_UPLOAD_ROWS" default:"10000"`
	MaxUploadBytes  int64 `envconfig:"MAX_UPLOAD_BYTES" default:"10485760"`
	UploadQuotaDays int   `envconfig:"UPLOAD_QUOTA_DAYS" default:"30"`

	// Pub/Sub event publishing (disabled when the project ID is empty)
	GCPProjectID       string `envconfig:"GCP_PROJECT_ID"`
	PubSubScoringTopic string `envconfig:"PUBSUB_SCORING_TOPIC" default:"churn-scoring-events"`

	// Scoring orchestrator settings
	ScoringQueueName           string `envconfig:"SCORING_QUEUE_NAME" default:"scoring_queue"`
	ScoringPollTimeoutSec      int    `envconfig:"SCORING_POLL_TIMEOUT_SEC" default:"30"`
	ScoringPollMaxMsg          int    `envconfig:"SCORING_POLL_MAX_MSG" default:"1"`
	ScoringMaxRetries          int    `envconfig:"SCORING_MAX_RETRIES" default:"5"`
	ScoringBackoffInitialSec   int    `envconfig:"SCORING_BACKOFF_INITIAL_SEC" default:"1"`
	ScoringBackoffMaxSec       int    `envconfig:"SCORING_BACKOFF_MAX_SEC" default:"60"`
	ScoringDeadLetterQueueName string `envconfig:"SCORING_DEAD_LETTER_QUEUE_NAME" default:"scoring_queue_dlq"`

	// Stripe reconciliation settings
	StripeSecretKey     string `envconfig:"STRIPE_SECRET_KEY"`
	StripeSecretName    string `envconfig:"STRIPE_SECRET_NAME" default:"stripe-secret-key"`
	StripeSyncPageLimit int64  `envconfig:"STRIPE_SYNC_PAGE_LIMIT" default:"100"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
