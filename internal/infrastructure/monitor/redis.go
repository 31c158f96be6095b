package monitor

import (
	"context"

	redislib "github.com/redis/go-redis/v9"
)

// RedisPinger adapts a go-redis client to Pinger.
type RedisPinger struct {
	Client redislib.UniversalClient
}

func (p RedisPinger) Ping(ctx context.Context) error {
	if p.Client == nil {
		return redislib.ErrClosed
	}
	return p.Client.Ping(ctx).Err()
}
