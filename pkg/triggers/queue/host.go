// Package queue fires trigger_queue nodes for every message pushed to a Redis list.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/forgeflow/forgeflow/pkg/models"
	"github.com/forgeflow/forgeflow/pkg/nodes/nodeconfig"
	"github.com/forgeflow/forgeflow/pkg/protocol"
)

const popTimeout = time.Second

var ErrQueueRequired = errors.New("queue trigger queue name is required")

// Host consumes one Redis list per registered trigger node with BLPOP.
type Host struct {
	client    redis.UniversalClient
	logger    *slog.Logger
	mu        sync.Mutex
	consumers map[string][]*consumer
}

type consumer struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Options returns redis client options for addr ("host:port" or a redis:// URL).
func Options(addr string) (*redis.Options, error) {
	if addr == "" {
		addr = "localhost:6379"
	}

	if !strings.Contains(addr, "://") {
		return &redis.Options{Addr: addr}, nil
	}

	options, err := redis.ParseURL(addr)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %w", err)
	}

	return options, nil
}

// Connect builds a client and checks the server answers.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	options, err := Options(addr)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(options)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = client.Ping(pingCtx).Err()
	if err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

func NewHost(logger *slog.Logger, client redis.UniversalClient) *Host {
	return &Host{
		client:    client,
		logger:    logger.With("module", "queue_trigger"),
		consumers: make(map[string][]*consumer),
	}
}

func (h *Host) Type() models.NodeType {
	return models.NodeTypeTriggerQueue
}

func (h *Host) Register(ctx context.Context, flowID string, node models.Node, callback protocol.TriggerCallback) error {
	queue := nodeconfig.String(node.Config, "queue", "")
	if queue == "" {
		return ErrQueueRequired
	}

	consumeCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c := &consumer{cancel: cancel, done: make(chan struct{})}
	logger := h.logger.With("flow_id", flowID, "node_id", node.ID, "queue", queue)

	// The consumer is tracked before its goroutine starts so a concurrent Unregister always stops it.
	h.mu.Lock()
	h.consumers[flowID] = append(h.consumers[flowID], c)
	h.mu.Unlock()

	go func() {
		defer close(c.done)

		h.consume(consumeCtx, logger, queue, func(payload map[string]any) {
			err := callback(consumeCtx, flowID, payload)
			if err != nil {
				logger.ErrorContext(consumeCtx, "Error starting flow for trigger", "error", err)
			}
		})
	}()

	logger.InfoContext(ctx, "Queue consumer started")

	return nil
}

func (h *Host) Unregister(_ context.Context, flowID string) error {
	h.mu.Lock()
	consumers := h.consumers[flowID]
	delete(h.consumers, flowID)
	h.mu.Unlock()

	stopAll(consumers)

	return nil
}

// Stop stops every consumer. The client is owned by the caller.
func (h *Host) Stop(_ context.Context) error {
	h.mu.Lock()
	var consumers []*consumer
	for flowID, list := range h.consumers {
		consumers = append(consumers, list...)
		delete(h.consumers, flowID)
	}
	h.mu.Unlock()

	stopAll(consumers)

	return nil
}

func stopAll(consumers []*consumer) {
	for _, c := range consumers {
		c.cancel()
		<-c.done
	}
}

func (h *Host) consume(ctx context.Context, logger *slog.Logger, queue string, fire func(map[string]any)) {
	for ctx.Err() == nil {
		result, err := h.client.BLPop(ctx, popTimeout, queue).Result()

		switch {
		case errors.Is(err, redis.Nil):
			continue
		case err != nil:
			if ctx.Err() != nil {
				return
			}

			logger.ErrorContext(ctx, "Failed to pop message from queue", "error", err)

			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}

			continue
		case len(result) < 2:
			continue
		}

		logger.DebugContext(ctx, "Received message from queue")
		fire(Payload(queue, result[1]))
	}
}

// Payload decodes a JSON object message into the payload; any other message is passed as text
// under "message".
func Payload(queue, message string) map[string]any {
	payload := map[string]any{}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(message), &decoded); err == nil && decoded != nil {
		payload = decoded
	} else {
		payload["message"] = message
	}

	payload["queue"] = queue
	if payload["timestamp"] == nil {
		payload["timestamp"] = time.Now().UTC().Format(time.RFC3339)
	}

	return payload
}
