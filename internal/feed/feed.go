package feed

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"clubboard/internal/logger"
	"clubboard/internal/metrics"
)

// Channel carrying "reservations changed" notifications. Events carry no
// payload guarantee beyond the kind of change; subscribers are expected to
// re-fetch the whole window.
const channelName = "reservations:changed"

const (
	KindInsert = "insert"
	KindDelete = "delete"
)

type Event struct {
	ID   string    `json:"id"`
	Kind string    `json:"kind"`
	At   time.Time `json:"at"`
}

// Publisher is the write side of the change feed.
type Publisher interface {
	Publish(ctx context.Context, kind string) error
}

type Feed struct {
	redis *redis.Client
}

func New(redisAddr string) *Feed {
	return NewWithClient(redis.NewClient(&redis.Options{
		Addr: redisAddr,
	}))
}

func NewWithClient(client *redis.Client) *Feed {
	return &Feed{redis: client}
}

func (f *Feed) Publish(ctx context.Context, kind string) error {
	event := Event{
		ID:   uuid.NewString(),
		Kind: kind,
		At:   time.Now(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if err := f.redis.Publish(ctx, channelName, string(data)).Err(); err != nil {
		logger.Errorf("Failed to publish %s feed event: %v", kind, err)
		return err
	}

	metrics.RecordFeedEvent(kind)
	return nil
}

// Subscribe delivers decoded change events until ctx is cancelled. The
// returned cancel function closes the underlying subscription; the event
// channel is closed afterwards.
func (f *Feed) Subscribe(ctx context.Context) (<-chan Event, func()) {
	pubsub := f.redis.Subscribe(ctx, channelName)
	events := make(chan Event, 16)

	metrics.FeedSubscribers.Inc()

	go func() {
		defer close(events)
		defer metrics.FeedSubscribers.Dec()

		for msg := range pubsub.Channel() {
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				logger.Errorf("Bad feed event payload: %v", err)
				continue
			}

			select {
			case events <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	cancel := func() {
		_ = pubsub.Close()
	}

	return events, cancel
}

func (f *Feed) Close() error {
	return f.redis.Close()
}
