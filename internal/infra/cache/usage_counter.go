package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	dailyTTL   = 48 * time.Hour
	monthlyTTL = 32 * 24 * time.Hour
)

// UsageCounter guarda caracteres de voz consumidos por usuário em chaves
// diárias e mensais (UTC) que expiram sozinhas.
type UsageCounter struct {
	c *redis.Client
}

func NewUsageCounter(c *redis.Client) *UsageCounter { return &UsageCounter{c: c} }

func dailyKey(userID string, at time.Time) string {
	return fmt.Sprintf("voice_usage:%s:d:%s", userID, at.UTC().Format("2006-01-02"))
}

func monthlyKey(userID string, at time.Time) string {
	return fmt.Sprintf("voice_usage:%s:m:%s", userID, at.UTC().Format("2006-01"))
}

func (u *UsageCounter) Add(ctx context.Context, userID string, chars int, at time.Time) error {
	d, m := dailyKey(userID, at), monthlyKey(userID, at)
	_, err := u.c.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.IncrBy(ctx, d, int64(chars))
		p.Expire(ctx, d, dailyTTL)
		p.IncrBy(ctx, m, int64(chars))
		p.Expire(ctx, m, monthlyTTL)
		return nil
	})
	return err
}

func (u *UsageCounter) Usage(ctx context.Context, userID string, at time.Time) (int, int, error) {
	vals, err := u.c.MGet(ctx, dailyKey(userID, at), monthlyKey(userID, at)).Result()
	if err != nil {
		return 0, 0, err
	}

	daily, err := toInt(vals[0])
	if err != nil {
		return 0, 0, err
	}
	monthly, err := toInt(vals[1])
	if err != nil {
		return 0, 0, err
	}
	return daily, monthly, nil
}

// chave ausente vem como nil
func toInt(v any) (int, error) {
	s, ok := v.(string)
	if !ok {
		return 0, nil
	}
	return strconv.Atoi(s)
}
