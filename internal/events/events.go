package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// SubjectChunksStored announces that a full ingest run landed a chunk
// collection, so indexing stages can pick it up.
const SubjectChunksStored = "convomap.chunks.stored"

// ChunksStored is the payload published after a successful ingest run.
type ChunksStored struct {
	ChunksFile string `json:"chunks_file"`
	Files      int    `json:"files"`
	Chunks     int    `json:"chunks"`
	StoredAt   string `json:"stored_at"`
}

type Client struct {
	conn   *nats.Conn
	subs   []*nats.Subscription
	logger *slog.Logger
}

func NewClient(url, token string, logger *slog.Logger) (*Client, error) {
	opts := []nats.Option{
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	return &Client{conn: nc, logger: logger}, nil
}

// PublishChunksStored emits the ingest completion event.
func (c *Client) PublishChunksStored(ev ChunksStored) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := c.conn.Publish(SubjectChunksStored, data); err != nil {
		return fmt.Errorf("publish %s: %w", SubjectChunksStored, err)
	}
	return nil
}

// SubscribeChunksStored registers a handler for ingest completion events.
func (c *Client) SubscribeChunksStored(handler func(ChunksStored)) error {
	sub, err := c.conn.Subscribe(SubjectChunksStored, func(msg *nats.Msg) {
		var ev ChunksStored
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			c.logger.Warn("malformed chunks.stored event", "error", err)
			return
		}
		handler(ev)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", SubjectChunksStored, err)
	}
	c.subs = append(c.subs, sub)
	return nil
}

func (c *Client) Close() {
	for _, sub := range c.subs {
		_ = sub.Unsubscribe()
	}
	c.conn.Close()
}
