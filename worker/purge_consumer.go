package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/wallyhq/wally/cache"
	"github.com/wallyhq/wally/mq"
	"github.com/wallyhq/wally/store"
)

// PurgeWallMessage is the cascade work left behind by a DeleteWall: the
// wall record itself is gone by the time this is enqueued, and the
// owned entities are deleted here, off the hot path.
type PurgeWallMessage struct {
	WallName string   `json:"wallName"`
	NoteIds  []string `json:"noteIds"`
	LineIds  []string `json:"lineIds"`
	ImageIds []string `json:"imageIds"`
}

type PurgeConsumer struct {
	purgeQueue mq.MessageQueue
	wallyStore store.WallyStore
	wallyCache cache.WallyCache
}

func NewPurgeConsumer(purgeQueue mq.MessageQueue, wallyStore store.WallyStore, wallyCache cache.WallyCache) *PurgeConsumer {
	return &PurgeConsumer{
		purgeQueue: purgeQueue,
		wallyStore: wallyStore,
		wallyCache: wallyCache,
	}
}

// Allow a minute per wall purge; one delete call per owned entity.
const visibilityTimeout = 60

func (purgeConsumer *PurgeConsumer) Run(shutdownCtx context.Context) {
	for {
		msg, err := purgeConsumer.purgeQueue.Receive(shutdownCtx, visibilityTimeout)

		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			log.Printf("purgeConsumer receive error: %v", err)
			continue
		}

		if msg == nil {
			continue
		}

		var purgeMsg PurgeWallMessage
		if err := json.Unmarshal([]byte(msg.Body), &purgeMsg); err != nil {
			continue
		}

		// timeout should be a little less than queue visibility timeout
		ctx, cancel := context.WithTimeout(context.Background(), (visibilityTimeout-1)*time.Second)
		purgeConsumer.purge(ctx, purgeMsg)
		cancel()

		if err := purgeConsumer.purgeQueue.Delete(context.Background(), msg); err != nil {
			log.Printf("purgeConsumer delete error: %v", err)
		}
	}
}

// purge deletes every owned entity. Individual failures are logged and
// skipped; the queue redelivers the message and deletes are idempotent,
// so a partial purge heals on retry.
func (purgeConsumer *PurgeConsumer) purge(ctx context.Context, purgeMsg PurgeWallMessage) {
	for _, id := range purgeMsg.NoteIds {
		if err := purgeConsumer.wallyStore.DeleteNote(ctx, id); err != nil {
			log.Printf("Failed to purge note %s from wall %s: %v", id, purgeMsg.WallName, err)
		}
	}
	for _, id := range purgeMsg.LineIds {
		if err := purgeConsumer.wallyStore.DeleteLine(ctx, id); err != nil {
			log.Printf("Failed to purge line %s from wall %s: %v", id, purgeMsg.WallName, err)
		}
	}
	for _, id := range purgeMsg.ImageIds {
		if err := purgeConsumer.wallyStore.DeleteImage(ctx, id); err != nil {
			log.Printf("Failed to purge image %s from wall %s: %v", id, purgeMsg.WallName, err)
		}
		if err := purgeConsumer.wallyStore.DeleteBinaryData(ctx, id); err != nil {
			log.Printf("Failed to purge binary data %s from wall %s: %v", id, purgeMsg.WallName, err)
		}
	}

	if err := purgeConsumer.wallyCache.InvalidateWall(ctx, purgeMsg.WallName); err != nil {
		log.Printf("Failed to invalidate cache for purged wall %s: %v", purgeMsg.WallName, err)
	}
}
