package service_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	cachemocks "github.com/wallyhq/wally/cache/mocks"
	"github.com/wallyhq/wally/directory"
	"github.com/wallyhq/wally/models"
	mqmocks "github.com/wallyhq/wally/mq/mocks"
	"github.com/wallyhq/wally/protocol"
	"github.com/wallyhq/wally/registry"
	"github.com/wallyhq/wally/service"
	storemocks "github.com/wallyhq/wally/store/mocks"
	"github.com/wallyhq/wally/worker"
)

// fakeSocket records everything the engine sends to one session.
type fakeSocket struct {
	mu       sync.Mutex
	messages [][]byte
}

func (s *fakeSocket) Send(message []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, message)
}

func (s *fakeSocket) received(t *testing.T) []protocol.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	decoded := make([]protocol.Message, 0, len(s.messages))
	for _, raw := range s.messages {
		msg, err := protocol.Decode(raw)
		require.NoError(t, err)
		decoded = append(decoded, msg)
	}
	return decoded
}

// fakeFanout records the subscription lifecycle calls.
type fakeFanout struct {
	mu       sync.Mutex
	ensured  []string
	released []string
}

func (f *fakeFanout) EnsureWall(wallName string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensured = append(f.ensured, wallName)
}

func (f *fakeFanout) ReleaseWall(wallName string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.released = append(f.released, wallName)
}

type harness struct {
	svc       *service.Service
	store     *storemocks.MockStore
	cache     *cachemocks.MockCache
	mq        *mqmocks.MockMQ
	directory *directory.Directory
	registry  *registry.Registry
	batcher   *worker.MoveBatcher
	fanout    *fakeFanout

	pubMu     sync.Mutex
	published []service.WallBroadcast
}

// Helper to setup the engine with mocks. The move batcher is real and
// running so snapshot flushes complete.
func setupService(t *testing.T) *harness {
	h := &harness{
		store:    new(storemocks.MockStore),
		cache:    new(cachemocks.MockCache),
		mq:       new(mqmocks.MockMQ),
		registry: registry.New(),
		fanout:   &fakeFanout{},
	}
	h.directory = directory.New(h.store)
	h.batcher = worker.NewMoveBatcher(h.store, 1000)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go h.batcher.Run(ctx)

	h.svc = service.NewService(h.store, h.cache, h.mq, h.directory, h.registry, h.batcher, h.fanout)
	return h
}

// capturePublishes accepts every broadcast and records the decoded
// envelopes for assertion.
func (h *harness) capturePublishes(t *testing.T) {
	h.cache.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		var envelope service.WallBroadcast
		require.NoError(t, json.Unmarshal(args.Get(2).([]byte), &envelope))
		h.pubMu.Lock()
		h.published = append(h.published, envelope)
		h.pubMu.Unlock()
	})
}

func (h *harness) broadcasts() []service.WallBroadcast {
	h.pubMu.Lock()
	defer h.pubMu.Unlock()
	return append([]service.WallBroadcast{}, h.published...)
}

// connectSession registers a ready-made session, bypassing the user
// bootstrap that Connect performs.
func (h *harness) connectSession(sessionId, clientId string, user models.User) (*service.Session, *fakeSocket) {
	identity := registry.Identity{SessionId: sessionId, ClientId: clientId}
	socket := &fakeSocket{}
	h.registry.Register(identity, socket)
	return &service.Session{Identity: identity, User: user, Undo: service.NewUndoController()}, socket
}

func decodeBroadcast(t *testing.T, envelope service.WallBroadcast) protocol.Message {
	msg, err := protocol.Decode(envelope.Payload)
	require.NoError(t, err)
	return msg
}
