package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Roster reads are cached under a per-drive version counter. Any roster or
// round mutation bumps the counter, which orphans every cached entry for that
// drive without needing key scans.

func rosterVersion(ctx context.Context, client *redis.Client, driveID uint) int64 {
	if client == nil {
		return 0
	}

	version, err := client.Get(ctx, rosterVersionKey(driveID)).Int64()
	if err != nil {
		return 0
	}
	return version
}

func bumpRosterVersion(ctx context.Context, client *redis.Client, logger zerolog.Logger, driveID uint) {
	if client == nil {
		return
	}

	if err := client.Incr(ctx, rosterVersionKey(driveID)).Err(); err != nil {
		logger.Warn().Err(err).Uint("drive_id", driveID).Msg("failed to bump roster cache version")
	}
}

func rosterVersionKey(driveID uint) string {
	return fmt.Sprintf("placement:drive:%d:roster_version", driveID)
}

func rosterCacheKey(driveID uint, version int64, roundID uint, set string) string {
	return fmt.Sprintf("placement:drive:%d:v%d:round:%d:%s", driveID, version, roundID, set)
}

func driveDetailCacheKey(driveID uint, version int64) string {
	return fmt.Sprintf("placement:drive:%d:v%d:detail", driveID, version)
}

func readCachedRoster(ctx context.Context, client *redis.Client, logger zerolog.Logger, key string, target interface{}) bool {
	if client == nil {
		return false
	}

	cached, err := client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			logger.Warn().Err(err).Msg("failed to read roster cache")
		}
		return false
	}

	if err := json.Unmarshal([]byte(cached), target); err != nil {
		logger.Warn().Err(err).Msg("failed to decode cached roster")
		return false
	}
	return true
}

func writeCachedRoster(ctx context.Context, client *redis.Client, logger zerolog.Logger, key string, value interface{}, ttl time.Duration) {
	if client == nil {
		return
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return
	}

	if err := client.Set(ctx, key, payload, ttl).Err(); err != nil {
		logger.Warn().Err(err).Msg("failed to store roster cache")
	}
}
