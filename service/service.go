// Package service implements the synchronization engine: every inbound
// wall message mutates the stores and directory and fans the resulting
// event out to the right subset of sessions.
package service

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/wallyhq/wally/cache"
	"github.com/wallyhq/wally/directory"
	"github.com/wallyhq/wally/models"
	"github.com/wallyhq/wally/mq"
	"github.com/wallyhq/wally/protocol"
	"github.com/wallyhq/wally/registry"
	"github.com/wallyhq/wally/store"
	"github.com/wallyhq/wally/worker"
)

// Fanout owns the per-wall broadcast subscriptions. The engine tells it
// when a wall gains its first local session and when it loses its last.
type Fanout interface {
	EnsureWall(wallName string)
	ReleaseWall(wallName string)
}

// WallBroadcast is the internal envelope published on a wall's channel.
// The hub delivers Payload to the wall's roster, skipping the origin
// session unless IncludeOrigin is set; that flag encodes the per-type
// optimistic-echo contract.
type WallBroadcast struct {
	WallName      string          `json:"wallName"`
	Origin        string          `json:"origin"`
	IncludeOrigin bool            `json:"includeOrigin"`
	Payload       json.RawMessage `json:"payload"`
}

// WallChannel names the pub/sub channel for a wall.
func WallChannel(wallName string) string {
	return "wall:" + wallName
}

// Session is the engine's view of one connection: its identity, the
// durable user behind it, and its undo state. Handlers for a session
// run one at a time (the read pump is a single goroutine), so Session
// needs no locking of its own.
type Session struct {
	Identity registry.Identity
	User     models.User
	Undo     *UndoController
}

type Service struct {
	Store       store.WallyStore
	Cache       cache.WallyCache
	PurgeQueue  mq.MessageQueue
	Directory   *directory.Directory
	Registry    *registry.Registry
	MoveBatcher *worker.MoveBatcher
	Fanout      Fanout

	// Wall-scoped selection state: wall -> user id -> note id. This map
	// is the authoritative record of who holds which note; the note
	// store carries none of it.
	selMu      sync.RWMutex
	selections map[string]map[string]string
}

func NewService(
	wallyStore store.WallyStore,
	wallyCache cache.WallyCache,
	purgeQueue mq.MessageQueue,
	wallDirectory *directory.Directory,
	sessionRegistry *registry.Registry,
	moveBatcher *worker.MoveBatcher,
	fanout Fanout,
) *Service {
	return &Service{
		Store:       wallyStore,
		Cache:       wallyCache,
		PurgeQueue:  purgeQueue,
		Directory:   wallDirectory,
		Registry:    sessionRegistry,
		MoveBatcher: moveBatcher,
		Fanout:      fanout,
		selections:  make(map[string]map[string]string),
	}
}

// sendTo delivers a message to a single session, dropping it silently
// when the session has already gone away.
func (s *Service) sendTo(sessionId string, msg protocol.Message) {
	socket, ok := s.Registry.Socket(sessionId)
	if !ok {
		return
	}
	data, err := protocol.Encode(msg)
	if err != nil {
		log.Printf("Failed to encode %s: %v", msg.MessageType(), err)
		return
	}
	socket.Send(data)
}

func (s *Service) sendError(sessionId string, message string) {
	s.sendTo(sessionId, protocol.NewWallyError(message))
}

// broadcast publishes a message on the wall's channel. Delivery to the
// roster happens in the hub's subscription callback, on this instance
// and any other holding sessions for the wall.
func (s *Service) broadcast(ctx context.Context, wallName string, origin string, includeOrigin bool, msg protocol.Message) {
	payload, err := protocol.Encode(msg)
	if err != nil {
		log.Printf("Failed to encode %s broadcast: %v", msg.MessageType(), err)
		return
	}
	envelope, err := json.Marshal(WallBroadcast{
		WallName:      wallName,
		Origin:        origin,
		IncludeOrigin: includeOrigin,
		Payload:       payload,
	})
	if err != nil {
		log.Printf("Failed to marshal wall broadcast: %v", err)
		return
	}
	if err := s.Cache.Publish(ctx, WallChannel(wallName), envelope); err != nil {
		log.Printf("Failed to publish to %s: %v", WallChannel(wallName), err)
	}
}

// Selection bookkeeping.

func (s *Service) setSelection(wallName, userId, noteId string) {
	s.selMu.Lock()
	defer s.selMu.Unlock()

	if _, ok := s.selections[wallName]; !ok {
		s.selections[wallName] = make(map[string]string)
	}
	s.selections[wallName][userId] = noteId
}

func (s *Service) selectionsFor(wallName string) map[string]string {
	s.selMu.RLock()
	defer s.selMu.RUnlock()

	selected := make(map[string]string, len(s.selections[wallName]))
	for userId, noteId := range s.selections[wallName] {
		selected[userId] = noteId
	}
	return selected
}

func (s *Service) clearSelection(wallName, userId string) {
	s.selMu.Lock()
	defer s.selMu.Unlock()

	delete(s.selections[wallName], userId)
}

func (s *Service) dropNoteSelections(wallName, noteId string) {
	s.selMu.Lock()
	defer s.selMu.Unlock()

	for userId, selected := range s.selections[wallName] {
		if selected == noteId {
			delete(s.selections[wallName], userId)
		}
	}
}

func (s *Service) dropWallSelections(wallName string) {
	s.selMu.Lock()
	defer s.selMu.Unlock()

	delete(s.selections, wallName)
}
