package debate

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	streamMaxLen         = 10000
	defaultPublishBuffer = 1024
	publishTimeout       = 5 * time.Second
)

// InitRedis connects to Redis and verifies the connection
func InitRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return rdb, nil
}

// StreamKey is the Redis stream holding a room's lifecycle events.
func StreamKey(roomID string) string {
	return fmt.Sprintf("debate:%s:events", roomID)
}

type streamItem struct {
	roomID string
	event  *Event
}

// StreamPublisher mirrors room events into Redis streams.
// Publish never blocks; a single worker preserves per-process order.
type StreamPublisher struct {
	rdb   *redis.Client
	queue chan streamItem
}

// NewStreamPublisher creates a publisher with a bounded queue
func NewStreamPublisher(rdb *redis.Client, buffer int) *StreamPublisher {
	if buffer <= 0 {
		buffer = defaultPublishBuffer
	}
	return &StreamPublisher{
		rdb:   rdb,
		queue: make(chan streamItem, buffer),
	}
}

// Publish queues an event for the room's stream. Events are dropped when the queue is full.
func (p *StreamPublisher) Publish(roomID string, event *Event) {
	if p == nil || event == nil {
		return
	}
	select {
	case p.queue <- streamItem{roomID: roomID, event: event}:
	default:
		log.Warn().Str("room", roomID).Str("type", event.Type).Msg("[stream] publish queue full, dropping event")
	}
}

// Run drains the queue until ctx is cancelled.
func (p *StreamPublisher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case item := <-p.queue:
			if err := p.write(ctx, item); err != nil {
				log.Error().Err(err).Str("room", item.roomID).Msg("[stream] publish failed")
			}
		}
	}
}

func (p *StreamPublisher) write(ctx context.Context, item streamItem) error {
	eventData, err := MarshalEvent(item.event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	// Add to stream with MAXLEN to bound history
	err = p.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamKey(item.roomID),
		Values: map[string]interface{}{
			"data": eventData,
		},
		MaxLen: streamMaxLen,
		Approx: true,
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}
