package notifications

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisBroker keeps ready tasks in a list and delayed tasks in a sorted set
// scored by their due time in unix milliseconds.
type RedisBroker struct {
	client      *redis.Client
	queueKey    string
	delayedKey  string
	pollTimeout time.Duration
	closed      int32
}

func NewRedisBroker(client *redis.Client, queue string) *RedisBroker {
	if queue == "" {
		queue = "email_tasks"
	}
	return &RedisBroker{
		client:      client,
		queueKey:    "jobboard:queue:" + queue,
		delayedKey:  "jobboard:queue:" + queue + ":delayed",
		pollTimeout: time.Second,
	}
}

func (b *RedisBroker) Publish(ctx context.Context, task Task) error {
	if atomic.LoadInt32(&b.closed) == 1 {
		return ErrBrokerClosed
	}
	data, err := task.Encode()
	if err != nil {
		return fmt.Errorf("encode task: %w", err)
	}
	return b.client.LPush(ctx, b.queueKey, data).Err()
}

func (b *RedisBroker) PublishAfter(ctx context.Context, task Task, delay time.Duration) error {
	if delay <= 0 {
		return b.Publish(ctx, task)
	}
	if atomic.LoadInt32(&b.closed) == 1 {
		return ErrBrokerClosed
	}
	data, err := task.Encode()
	if err != nil {
		return fmt.Errorf("encode task: %w", err)
	}
	due := time.Now().Add(delay).UnixMilli()
	return b.client.ZAdd(ctx, b.delayedKey, &redis.Z{Score: float64(due), Member: data}).Err()
}

// promoteScript moves due members from the delayed set (KEYS[1]) to the
// ready list (KEYS[2]) in one step. ARGV: now in unix ms, batch size.
var promoteScript = redis.NewScript(`
local due = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', ARGV[1], 'LIMIT', 0, ARGV[2])
for _, member in ipairs(due) do
	redis.call('ZREM', KEYS[1], member)
	redis.call('LPUSH', KEYS[2], member)
end
return #due
`)

// promoteDue moves delayed tasks whose time has come onto the ready list.
func (b *RedisBroker) promoteDue(ctx context.Context) (int64, error) {
	now := strconv.FormatInt(time.Now().UnixMilli(), 10)
	return promoteScript.Run(ctx, b.client, []string{b.delayedKey, b.queueKey}, now, 100).Int64()
}

func (b *RedisBroker) Consume(ctx context.Context) (Task, error) {
	for {
		if atomic.LoadInt32(&b.closed) == 1 {
			return Task{}, ErrBrokerClosed
		}
		if err := ctx.Err(); err != nil {
			return Task{}, err
		}

		if _, err := b.promoteDue(ctx); err != nil && ctx.Err() == nil {
			return Task{}, fmt.Errorf("promote delayed tasks: %w", err)
		}

		res, err := b.client.BRPop(ctx, b.pollTimeout, b.queueKey).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Task{}, ctxErr
			}
			return Task{}, err
		}

		// res is [key, value]
		task, err := DecodeTask([]byte(res[1]))
		if err != nil {
			return Task{}, fmt.Errorf("decode task: %w", err)
		}
		return task, nil
	}
}

// Close stops consuming. The shared client is owned by the caller.
func (b *RedisBroker) Close() error {
	atomic.StoreInt32(&b.closed, 1)
	return nil
}
