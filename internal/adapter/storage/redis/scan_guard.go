package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// ScanGuard implements ports.ScanGuard using Redis SET NX. Each gateway
// stamps its scans with a nonce; re-delivery of the same nonce for the same
// pass and gateway is refused before any database work happens.
type ScanGuard struct {
	client *goredis.Client
	prefix string
}

// NewScanGuard creates a new Redis-backed scan deduplicator.
func NewScanGuard(client *goredis.Client) *ScanGuard {
	return &ScanGuard{
		client: client,
		prefix: "scan:",
	}
}

// FirstSeen atomically records a scan nonce. Returns true if this is the
// first delivery, false if the same scan was already processed.
func (g *ScanGuard) FirstSeen(ctx context.Context, passID uuid.UUID, gatewayID, nonce string, ttl time.Duration) (bool, error) {
	key := g.prefix + passID.String() + ":" + gatewayID + ":" + nonce
	result, err := g.client.SetArgs(ctx, key, 1, goredis.SetArgs{
		Mode: "NX",
		TTL:  ttl,
	}).Result()
	if err != nil {
		if err == goredis.Nil {
			// Key already exists, scan was already delivered
			return false, nil
		}
		return false, fmt.Errorf("redis scan guard: %w", err)
	}
	return result == "OK", nil
}
