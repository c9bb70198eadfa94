package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/theirongolddev/mobius/internal/budget"
	"github.com/theirongolddev/mobius/internal/model"
)

// Redis stores the snapshot as a JSON string and the archive as a hash
// keyed by "2006-01", so HSET gives overwrite-by-month for free.
type Redis struct {
	client *redis.Client
	prefix string
}

// RedisOptions configures the Redis repository.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// OpenRedis connects and pings the server.
func OpenRedis(ctx context.Context, opts RedisOptions) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis at %s: %w", opts.Addr, err)
	}
	prefix := opts.Prefix
	if prefix == "" {
		prefix = "mobius"
	}
	return &Redis{client: client, prefix: prefix}, nil
}

func (r *Redis) budgetKey() string  { return r.prefix + ":budget" }
func (r *Redis) historyKey() string { return r.prefix + ":history" }

// Close closes the client.
func (r *Redis) Close() error {
	return r.client.Close()
}

// Load reads the active snapshot.
func (r *Redis) Load(ctx context.Context) (model.BudgetData, error) {
	raw, err := r.client.Get(ctx, r.budgetKey()).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.BudgetData{}, budget.ErrNoBudget
	}
	if err != nil {
		return model.BudgetData{}, fmt.Errorf("reading budget: %w", err)
	}
	var b model.BudgetData
	if err := json.Unmarshal(raw, &b); err != nil {
		return model.BudgetData{}, fmt.Errorf("decoding budget: %w", err)
	}
	return b, nil
}

// Save replaces the active snapshot.
func (r *Redis) Save(ctx context.Context, b model.BudgetData) error {
	raw, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("encoding budget: %w", err)
	}
	if err := r.client.Set(ctx, r.budgetKey(), raw, 0).Err(); err != nil {
		return fmt.Errorf("writing budget: %w", err)
	}
	return nil
}

// LoadHistory reads every archived month, oldest first.
func (r *Redis) LoadHistory(ctx context.Context) ([]model.MonthlyRecord, error) {
	all, err := r.client.HGetAll(ctx, r.historyKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	records := make([]model.MonthlyRecord, 0, len(all))
	for period, raw := range all {
		var rec model.MonthlyRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("decoding record %s: %w", period, err)
		}
		records = append(records, rec)
	}
	budget.SortRecords(records)
	return records, nil
}

// AppendOrReplaceRecord stores rec under its month key.
func (r *Redis) AppendOrReplaceRecord(ctx context.Context, rec model.MonthlyRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}
	if err := r.client.HSet(ctx, r.historyKey(), rec.Key(), raw).Err(); err != nil {
		return fmt.Errorf("writing record %s: %w", rec.Key(), err)
	}
	return nil
}
