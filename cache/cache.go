package cache

import (
	"context"

	"github.com/wallyhq/wally/models"
)

// WallyCache is the Redis boundary: per-wall pub/sub channels used for
// broadcast fan-out, a TTL cache of wall entity snapshots, and a TTL
// cache of durable user records. Cache reads report a found flag
// instead of an error on miss.
type WallyCache interface {
	Publish(ctx context.Context, channel string, message []byte) error
	Subscribe(ctx context.Context, channel string, handler func(message []byte)) error

	GetWallEntities(ctx context.Context, wallName string) ([]byte, bool, error)
	SetWallEntities(ctx context.Context, wallName string, snapshot []byte) error
	InvalidateWall(ctx context.Context, wallName string) error

	GetUser(ctx context.Context, clientId string) (models.User, bool, error)
	SetUser(ctx context.Context, clientId string, user models.User) error
	InvalidateUser(ctx context.Context, clientId string) error
}
