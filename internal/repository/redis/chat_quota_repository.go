package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"nurseNav/business/entitlement"
	"nurseNav/domain"

	"github.com/redis/go-redis/v9"
)

// ChatQuotaRepository keeps the daily chat counters in Redis. Keys embed the
// UTC date, so the quota resets at midnight UTC by construction; the TTL only
// garbage-collects spent keys.
type ChatQuotaRepository struct {
	client *redis.Client
	now    func() time.Time
}

var _ entitlement.ChatQuotaRepository = (*ChatQuotaRepository)(nil)

func NewChatQuotaRepository(client *redis.Client) *ChatQuotaRepository {
	return &ChatQuotaRepository{
		client: client,
		now:    time.Now,
	}
}

func (r *ChatQuotaRepository) key(userID uint, now time.Time) string {
	return fmt.Sprintf("chatquota:%d:%s", userID, now.UTC().Format("2006-01-02"))
}

// ConsumeIfUnder increments today's counter and admits the call when the new
// value is within the limit. INCR is atomic, so two racing callers can never
// both take the last question.
func (r *ChatQuotaRepository) ConsumeIfUnder(ctx context.Context, userID uint, limit int) (bool, int, error) {
	now := r.now()
	key := r.key(userID, now)

	used, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, fmt.Errorf("failed to increment chat counter: %w", err)
	}

	if used == 1 {
		nextMidnight := now.UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
		if err := r.client.ExpireAt(ctx, key, nextMidnight).Err(); err != nil {
			return false, 0, fmt.Errorf("failed to set chat counter expiry: %w", err)
		}
	}

	if limit != domain.Unlimited && int(used) > limit {
		// undo the optimistic increment: denied attempts must not inflate
		// the usage summary past the limit
		if err := r.client.Decr(ctx, key).Err(); err != nil {
			return false, limit, fmt.Errorf("failed to revert chat counter: %w", err)
		}
		return false, limit, nil
	}

	return true, int(used), nil
}

func (r *ChatQuotaRepository) UsedToday(ctx context.Context, userID uint) (int, error) {
	val, err := r.client.Get(ctx, r.key(userID, r.now())).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read chat counter: %w", err)
	}

	used, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("corrupt chat counter value %q: %w", val, err)
	}

	return used, nil
}
