// Package queue is a delayed task queue on a Redis sorted set. A task's score
// is its due time in unix milliseconds; workers claim due tasks with ZREM so
// each task is handed out once.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const DefaultKey = "events:tasks:scheduled"

// Task is a named unit of deferred work.
type Task struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Payload json.RawMessage `json:"payload"`
	DueAt   time.Time       `json:"due_at"`
}

// Decode unmarshals the payload into v.
func (t Task) Decode(v any) error {
	return json.Unmarshal(t.Payload, v)
}

// Scheduler is the enqueue side consumed by services.
type Scheduler interface {
	ScheduleAfter(ctx context.Context, delay time.Duration, name string, payload any) (*Task, error)
}

type RedisQueue struct {
	client *redis.Client
	key    string
	now    func() time.Time
}

func NewRedisQueue(client *redis.Client, key string) *RedisQueue {
	if key == "" {
		key = DefaultKey
	}
	return &RedisQueue{client: client, key: key, now: time.Now}
}

// ScheduleAfter stores a task that becomes due after delay.
func (q *RedisQueue) ScheduleAfter(ctx context.Context, delay time.Duration, name string, payload any) (*Task, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", name, err)
	}

	task := &Task{
		ID:      uuid.NewString(),
		Name:    name,
		Payload: raw,
		DueAt:   q.now().Add(delay).UTC(),
	}

	member, err := json.Marshal(task)
	if err != nil {
		return nil, fmt.Errorf("encode task %s: %w", name, err)
	}

	if err := q.client.ZAdd(ctx, q.key, redis.Z{
		Score:  float64(task.DueAt.UnixMilli()),
		Member: string(member),
	}).Err(); err != nil {
		return nil, fmt.Errorf("schedule task %s: %w", name, err)
	}

	return task, nil
}

// Due claims up to limit tasks whose due time is <= now.
func (q *RedisQueue) Due(ctx context.Context, now time.Time, limit int64) ([]Task, error) {
	members, err := q.client.ZRangeByScore(ctx, q.key, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now.UnixMilli(), 10),
		Count: limit,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("read due tasks: %w", err)
	}

	tasks := make([]Task, 0, len(members))
	for _, member := range members {
		removed, err := q.client.ZRem(ctx, q.key, member).Result()
		if err != nil {
			return tasks, fmt.Errorf("claim task: %w", err)
		}
		if removed == 0 {
			// claimed by another worker
			continue
		}

		var task Task
		if err := json.Unmarshal([]byte(member), &task); err != nil {
			continue
		}
		tasks = append(tasks, task)
	}

	return tasks, nil
}

// Len returns the number of pending tasks.
func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	return q.client.ZCard(ctx, q.key).Result()
}
