package registry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wallyhq/wally/registry"
)

type nopSocket struct{}

func (nopSocket) Send(message []byte) {}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	r := registry.New()
	socket := nopSocket{}

	r.Register(registry.Identity{SessionId: "s1", ClientId: "c1"}, socket)

	got, ok := r.Socket("s1")
	assert.True(t, ok)
	assert.Equal(t, socket, got)

	_, ok = r.Socket("s2")
	assert.False(t, ok)
}

func TestRegistry_Unregister(t *testing.T) {
	r := registry.New()
	identity := registry.Identity{SessionId: "s1", ClientId: "c1"}
	r.Register(identity, nopSocket{})

	r.Unregister(identity)

	_, ok := r.Socket("s1")
	assert.False(t, ok)
	assert.Empty(t, r.SessionsForClient("c1"))
}

func TestRegistry_SessionsForClient(t *testing.T) {
	r := registry.New()
	r.Register(registry.Identity{SessionId: "s1", ClientId: "c1"}, nopSocket{})
	r.Register(registry.Identity{SessionId: "s2", ClientId: "c1"}, nopSocket{})
	r.Register(registry.Identity{SessionId: "s3", ClientId: "c2"}, nopSocket{})

	sessions := r.SessionsForClient("c1")
	assert.ElementsMatch(t, []string{"s1", "s2"}, sessions)
}

func TestRegistry_SocketsDropsMissing(t *testing.T) {
	r := registry.New()
	r.Register(registry.Identity{SessionId: "s1", ClientId: "c1"}, nopSocket{})

	sockets := r.Sockets([]string{"s1", "gone"})
	assert.Len(t, sockets, 1)
}
