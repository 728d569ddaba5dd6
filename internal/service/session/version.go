package session

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const keyFormat = "employee:%s:token_version"

// Versioner invalidates outstanding JWTs per employee without a token
// blacklist: every issued token embeds the employee's current version, and
// bumping the version makes all earlier tokens stale at once (password
// change, forced logout, deactivation).
type Versioner struct {
	client *redis.Client
}

func NewVersioner(client *redis.Client) *Versioner {
	return &Versioner{client: client}
}

// Current returns the employee's token version; an employee with no stored
// version is at version 0.
func (v *Versioner) Current(ctx context.Context, employeeID string) (int64, error) {
	val, err := v.client.Get(ctx, fmt.Sprintf(keyFormat, employeeID)).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read token version: %w", err)
	}

	version, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt token version %q: %w", val, err)
	}
	return version, nil
}

// Bump increments the version, invalidating every token issued before.
func (v *Versioner) Bump(ctx context.Context, employeeID string) (int64, error) {
	version, err := v.client.Incr(ctx, fmt.Sprintf(keyFormat, employeeID)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to bump token version: %w", err)
	}
	return version, nil
}
