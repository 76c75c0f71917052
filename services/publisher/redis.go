package publisher

import (
	"context"
	"encoding/base64"
	"hash/fnv"
	"strconv"

	"github.com/redis/go-redis/v9"

	"sjsage522/carsearch/logger"
	"sjsage522/carsearch/pkg/errors"
)

// RedisPublisher implements Publisher using Redis streams
type RedisPublisher struct {
	client          *redis.Client
	ctx             context.Context
	streamPrefix    string
	streamCount     int
	streamMaxLength int
}

// NewRedisPublisher creates a new Redis publisher
func NewRedisPublisher(ctx context.Context, addr string, db int, streamPrefix string, streamCount int, streamMaxLength int) *RedisPublisher {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	if streamCount <= 0 {
		streamCount = 1
	}

	return &RedisPublisher{
		client:          client,
		ctx:             ctx,
		streamPrefix:    streamPrefix,
		streamCount:     streamCount,
		streamMaxLength: streamMaxLength,
	}
}

// Stream returns the stream a key publishes to. Every job for one retailer
// lands on the same stream, stream:0 ~ stream:(streamCount-1).
func (p *RedisPublisher) Stream(key string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return p.streamPrefix + ":" + strconv.Itoa(int(h.Sum32()%uint32(p.streamCount)))
}

// Publish publishes a message to a Redis stream
// The message is base64 encoded before publishing
func (p *RedisPublisher) Publish(key string, message []byte) error {
	encodedMessage := base64.StdEncoding.EncodeToString(message)
	stream := p.Stream(key)

	err := p.client.XAdd(p.ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			key: encodedMessage,
		},
	}).Err()
	if err != nil {
		return errors.NewPublisher(key, "failed to add to "+stream, err)
	}

	logger.ForPublisher().Debug().Str("stream", stream).Str("retailer", key).Msg("Published search job")
	return nil
}

// TrimStreams trims all streams to the configured maximum length
func (p *RedisPublisher) TrimStreams() error {
	if p.streamMaxLength <= 0 {
		return nil
	}

	pattern := p.streamPrefix + ":*"
	streams, err := p.client.Keys(p.ctx, pattern).Result()
	if err != nil {
		return errors.NewPublisher("", "failed to list streams", err)
	}

	for _, stream := range streams {
		err := p.client.XTrimMaxLen(p.ctx, stream, int64(p.streamMaxLength)).Err()
		if err != nil {
			return errors.NewPublisher("", "failed to trim "+stream, err)
		}
	}

	return nil
}

// Close closes the Redis connection
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
