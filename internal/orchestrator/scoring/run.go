package scoring

import (
	"context"
	"encoding/json"
	"time"

	"app/internal/config"
	"app/internal/pgmq"
	"app/internal/service"

	"github.com/rs/zerolog"
)

// job is the payload of one queued scoring request.
type job struct {
	TenantID int64 `json:"tenant_id"`
}

// jobQueue is the slice of the pgmq client the worker needs.
type jobQueue interface {
	Queue() string
	DeadLetterQueue() string
	Poll(ctx context.Context, timeoutSec, maxMessages int) ([]*pgmq.Message, error)
	Ack(ctx context.Context, msgID int64) error
	DeadLetter(ctx context.Context, payload []byte) error
}

// Run starts the scoring orchestrator: it polls the scoring queue for
// per-tenant jobs and re-scores each tenant out-of-band. The HTTP rescore
// path stays synchronous; this worker exists for tenants too large to score
// inside one request.
func Run(ctx context.Context, cfg *config.Config, logger zerolog.Logger, queue jobQueue, scoringSvc service.ScoringService) error {
	logger.Info().Str("queue", queue.Queue()).Msg("Starting scoring orchestrator")
	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Shutting down scoring orchestrator")
			return nil
		default:
		}
		msgs, err := queue.Poll(ctx, cfg.ScoringPollTimeoutSec, cfg.ScoringPollMaxMsg)
		if err != nil {
			logger.Error().Err(err).Msg("Error reading scoring queue")
			time.Sleep(time.Second)
			continue
		}
		if len(msgs) == 0 {
			continue
		}

		msg := msgs[0]
		logger.Info().Int64("msg_id", msg.ID).Msgf("Received scoring job: %s", string(msg.Data))

		var payload job
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			logger.Error().Err(err).Msg("Failed to unmarshal scoring payload; deleting message")
			queue.Ack(ctx, msg.ID)
			continue
		}

		// Rescore with exponential backoff; exhausted jobs go to the DLQ.
		backoff := time.Duration(cfg.ScoringBackoffInitialSec) * time.Second
		var runErr error
		for attempt := 1; attempt <= cfg.ScoringMaxRetries; attempt++ {
			start := time.Now()
			summary, err := scoringSvc.Rescore(ctx, payload.TenantID)
			if err == nil {
				logger.Info().
					Int64("tenant_id", payload.TenantID).
					Int("scored", summary.Scored).
					Int("failed", summary.Failed).
					Str("duration", time.Since(start).String()).
					Msg("Scoring run succeeded")
				runErr = nil
				break
			}
			runErr = err
			logger.Error().Err(err).Int("attempt", attempt).Int64("tenant_id", payload.TenantID).Msg("Scoring run failed, retrying")
			time.Sleep(backoff)
			backoff *= 2
			if backoff > time.Duration(cfg.ScoringBackoffMaxSec)*time.Second {
				backoff = time.Duration(cfg.ScoringBackoffMaxSec) * time.Second
			}
		}
		if runErr != nil {
			if msgBytes, err := json.Marshal(payload); err == nil {
				if err := queue.DeadLetter(ctx, msgBytes); err != nil {
					logger.Error().Err(err).Str("queue", queue.DeadLetterQueue()).Msg("Failed to send scoring job to dead-letter queue")
				} else {
					logger.Warn().Int64("tenant_id", payload.TenantID).Str("queue", queue.DeadLetterQueue()).Msg("Scoring job sent to dead-letter queue")
				}
			}
		}

		if err := queue.Ack(ctx, msg.ID); err != nil {
			logger.Error().Err(err).Int64("msg_id", msg.ID).Msg("Failed to delete scoring message")
		}
	}
}
