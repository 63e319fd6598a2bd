// internal/admission/lock/lock.go

// Package lock serializes recomputation runs per campaign through Redis.
// A second trigger for the same campaign while one is running is rejected,
// never queued; concurrent interleaved writes would corrupt dense ranking.
package lock

import (
	"context"
	"fmt"
	"time"

	stderrors "admission-workers/internal/common/errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "admission:meritlist:lock:"

// CampaignLock is a per-campaign mutex backed by SET NX with a TTL, so a
// crashed holder frees the campaign once the TTL lapses.
type CampaignLock struct {
	client *redis.Client
	ttl    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *CampaignLock {
	return &CampaignLock{client: client, ttl: ttl}
}

// Acquire takes the campaign's lock and returns the release token. A held
// lock yields a RECOMPUTATION_IN_PROGRESS error.
func (l *CampaignLock) Acquire(ctx context.Context, campaignID string) (string, error) {
	token := uuid.New().String()

	ok, err := l.client.SetNX(ctx, keyPrefix+campaignID, token, l.ttl).Result()
	if err != nil {
		return "", stderrors.NewExternalServiceError("redis", fmt.Errorf("acquire campaign lock: %w", err))
	}
	if !ok {
		return "", stderrors.NewRecomputationInProgressError(campaignID)
	}
	return token, nil
}

// Release frees the lock if the token still owns it. A mismatched token means
// the TTL expired and another run took over; releasing then would be stealing
// that run's lock, so the release is skipped.
func (l *CampaignLock) Release(ctx context.Context, campaignID, token string) error {
	key := keyPrefix + campaignID

	current, err := l.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return stderrors.NewExternalServiceError("redis", fmt.Errorf("release campaign lock: %w", err))
	}
	if current != token {
		return nil
	}

	if err := l.client.Del(ctx, key).Err(); err != nil {
		return stderrors.NewExternalServiceError("redis", fmt.Errorf("release campaign lock: %w", err))
	}
	return nil
}
