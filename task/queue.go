package task

import (
	"context"
	"encoding/json"
	"time"

	action "github.com/goliatone/go-action"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// Publisher is the broker surface the queue handler needs. *nats.Conn
// satisfies it.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Envelope is the wire shape of a queued request. Params round-trip as JSON;
// consumers decode them against the action they resolve.
type Envelope struct {
	ID        string    `json:"id"`
	ActionKey string    `json:"action_key"`
	Params    any       `json:"params"`
	CreatedAt time.Time `json:"created_at"`
}

// QueueHandler serializes requests onto a durable subject for out-of-process
// workers. Construction fails loudly when the destination is missing;
// a silently misconfigured queue would drop side effects.
type QueueHandler struct {
	conn    Publisher
	subject string
	retries int
	backoff RetryStrategy
	logger  action.Logger
}

// QueueOption configures a QueueHandler.
type QueueOption func(*QueueHandler)

// WithPublishRetries retries failed publishes up to max attempts using the
// given backoff strategy.
func WithPublishRetries(max int, strategy RetryStrategy) QueueOption {
	return func(q *QueueHandler) {
		if max > 0 {
			q.retries = max
		}
		if strategy != nil {
			q.backoff = strategy
		}
	}
}

// WithQueueLogger sets the handler logger.
func WithQueueLogger(l action.Logger) QueueOption {
	return func(q *QueueHandler) {
		if l != nil {
			q.logger = l
		}
	}
}

// NewQueueHandler builds a queue handler over an established connection.
func NewQueueHandler(conn Publisher, subject string, opts ...QueueOption) (*QueueHandler, error) {
	if conn == nil {
		return nil, errors.New("queue handler requires a connection", errors.CategoryBadInput).
			WithTextCode("QUEUE_NO_CONNECTION")
	}
	if subject == "" {
		return nil, errors.New("queue handler requires a destination subject", errors.CategoryBadInput).
			WithTextCode("QUEUE_NO_DESTINATION")
	}

	q := &QueueHandler{
		conn:    conn,
		subject: subject,
		backoff: NoDelayStrategy{},
		logger:  action.NewFmtLogger(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(q)
		}
	}
	return q, nil
}

// Connect dials the broker named by cfg and wraps it in a queue handler.
func Connect(cfg action.QueueConfig, opts ...QueueOption) (*QueueHandler, error) {
	if cfg.URL == "" || cfg.Subject == "" {
		return nil, errors.New("queue configuration requires url and subject", errors.CategoryBadInput).
			WithTextCode("QUEUE_NO_DESTINATION")
	}

	conn, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryExternal, "queue connection failed").
			WithTextCode("QUEUE_CONNECT_FAILED").
			WithMetadata(map[string]any{
				"url": cfg.URL,
			})
	}
	return NewQueueHandler(conn, cfg.Subject, opts...)
}

func (q *QueueHandler) HandleTask(ctx context.Context, req action.UserActionRequest) error {
	env := Envelope{
		ID:        uuid.NewString(),
		ActionKey: req.ActionKey,
		Params:    req.Params,
		CreatedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(env)
	if err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "request params are not serializable").
			WithTextCode("QUEUE_MARSHAL_FAILED").
			WithMetadata(map[string]any{
				"action_key": req.ActionKey,
			})
	}

	var publishErr error
	for attempt := 0; attempt <= q.retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		publishErr = q.conn.Publish(q.subject, data)
		if publishErr == nil {
			return nil
		}

		if attempt < q.retries {
			q.logger.Warn("queue publish failed for %s, attempt %d of %d: %v",
				req.ActionKey, attempt+1, q.retries+1, publishErr)
			if delay := q.backoff.SleepDuration(attempt, publishErr); delay > 0 {
				time.Sleep(delay)
			}
		}
	}

	return errors.Wrap(publishErr, errors.CategoryExternal, "queue publish failed").
		WithTextCode("QUEUE_PUBLISH_FAILED").
		WithMetadata(map[string]any{
			"action_key": req.ActionKey,
			"subject":    q.subject,
			"message_id": env.ID,
		})
}
