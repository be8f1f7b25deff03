package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/wallyhq/wally/cache"
	"github.com/wallyhq/wally/directory"
	"github.com/wallyhq/wally/registry"
	"github.com/wallyhq/wally/service"
)

// Hub owns one pub/sub subscription per wall with local sessions. The
// subscription callback resolves the wall's roster through the
// directory and delivers the payload to each session's socket, honouring
// the envelope's origin exclusion.
type Hub struct {
	wallyCache      cache.WallyCache
	wallDirectory   *directory.Directory
	sessionRegistry *registry.Registry
	shutdownCtx     context.Context

	mu          sync.Mutex
	wallCancels map[string]context.CancelFunc
}

func NewHub(wallyCache cache.WallyCache, wallDirectory *directory.Directory, sessionRegistry *registry.Registry, shutdownCtx context.Context) *Hub {
	return &Hub{
		wallyCache:      wallyCache,
		wallDirectory:   wallDirectory,
		sessionRegistry: sessionRegistry,
		shutdownCtx:     shutdownCtx,
		wallCancels:     make(map[string]context.CancelFunc),
	}
}

// EnsureWall opens the wall's channel subscription if this instance
// does not hold one yet.
func (h *Hub) EnsureWall(wallName string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.wallCancels[wallName]; ok {
		return
	}

	ctx, cancel := context.WithCancel(h.shutdownCtx)
	channel := service.WallChannel(wallName)
	err := h.wallyCache.Subscribe(ctx, channel, h.deliver)
	if err != nil {
		log.Printf("Failed to subscribe to %s: %v", channel, err)
		cancel()
		return
	}
	h.wallCancels[wallName] = cancel
}

// ReleaseWall tears down the wall's subscription once the last local
// session has left it.
func (h *Hub) ReleaseWall(wallName string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if cancel, ok := h.wallCancels[wallName]; ok {
		cancel()
		delete(h.wallCancels, wallName)
	}
}

func (h *Hub) deliver(messageBytes []byte) {
	var broadcast service.WallBroadcast
	if err := json.Unmarshal(messageBytes, &broadcast); err != nil {
		log.Printf("Failed to unmarshal wall broadcast: %v", err)
		return
	}

	for _, identity := range h.wallDirectory.SessionsForWall(broadcast.WallName) {
		if !broadcast.IncludeOrigin && identity.SessionId == broadcast.Origin {
			continue
		}
		if socket, ok := h.sessionRegistry.Socket(identity.SessionId); ok {
			socket.Send(broadcast.Payload)
		}
	}
}
