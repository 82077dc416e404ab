package pgmq

import (
	"context"
	"database/sql"
	"fmt"
)

// Client drives the two pgmq-backed scoring queues: the main queue the
// orchestrator polls for per-tenant rescore jobs, and the dead-letter queue
// jobs are parked on after their retries are exhausted.
type Client struct {
	db         *sql.DB
	queue      string
	deadLetter string
}

// New returns a scoring queue client over the given DB connection.
func New(db *sql.DB, queue, deadLetter string) *Client {
	return &Client{db: db, queue: queue, deadLetter: deadLetter}
}

// Message is one queued scoring job as stored by pgmq: the message id used
// to ack it and the raw JSON payload.
type Message struct {
	ID   int64
	Data []byte
}

// Queue returns the name of the main scoring queue.
func (c *Client) Queue() string {
	return c.queue
}

// DeadLetterQueue returns the name of the dead-letter queue.
func (c *Client) DeadLetterQueue() string {
	return c.deadLetter
}

// Poll reads up to maxMessages jobs from the scoring queue, blocking up to
// timeoutSec seconds when the queue is empty. Read messages stay invisible
// to other consumers until acked.
func (c *Client) Poll(ctx context.Context, timeoutSec, maxMessages int) ([]*Message, error) {
	query := "SELECT msg_id, message FROM pgmq.read_with_poll($1, $2, $3)"
	rows, err := c.db.QueryContext(ctx, query, c.queue, timeoutSec, maxMessages)
	if err != nil {
		return nil, fmt.Errorf("pgmq read_with_poll failed: %w", err)
	}
	defer rows.Close()

	var msgs []*Message
	for rows.Next() {
		var id int64
		var data []byte
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("pgmq read scan failed: %w", err)
		}
		msgs = append(msgs, &Message{ID: id, Data: data})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgmq read rows error: %w", err)
	}
	return msgs, nil
}

// Ack removes a handled job from the scoring queue.
func (c *Client) Ack(ctx context.Context, msgID int64) error {
	query := "SELECT pgmq.delete($1, $2)"
	if _, err := c.db.ExecContext(ctx, query, c.queue, msgID); err != nil {
		return fmt.Errorf("pgmq delete failed: %w", err)
	}
	return nil
}

// DeadLetter parks a job payload on the dead-letter queue for inspection.
func (c *Client) DeadLetter(ctx context.Context, payload []byte) error {
	query := "SELECT pgmq.send($1, $2::jsonb, 0)"
	if _, err := c.db.ExecContext(ctx, query, c.deadLetter, string(payload)); err != nil {
		return fmt.Errorf("pgmq send to dead-letter queue failed: %w", err)
	}
	return nil
}
