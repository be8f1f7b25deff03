// Package registry tracks live socket handles by ephemeral session id,
// with a secondary index from the durable browser client id to that
// client's open sessions (several tabs can share one client id).
package registry

import "sync"

// Identity is the pair naming one connection: a random per-connection
// session id and the durable per-browser client id it arrived with.
type Identity struct {
	SessionId string
	ClientId  string
}

// Socket is the write side of a connection. Implementations must not
// block; a slow consumer is the transport's problem, not the engine's.
type Socket interface {
	Send(message []byte)
}

type Registry struct {
	mu       sync.RWMutex
	sessions map[string]Socket
	byClient map[string]map[string]struct{}
}

func New() *Registry {
	return &Registry{
		sessions: make(map[string]Socket),
		byClient: make(map[string]map[string]struct{}),
	}
}

func (r *Registry) Register(identity Identity, socket Socket) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[identity.SessionId] = socket
	if _, ok := r.byClient[identity.ClientId]; !ok {
		r.byClient[identity.ClientId] = make(map[string]struct{})
	}
	r.byClient[identity.ClientId][identity.SessionId] = struct{}{}
}

func (r *Registry) Unregister(identity Identity) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, identity.SessionId)
	if sessions, ok := r.byClient[identity.ClientId]; ok {
		delete(sessions, identity.SessionId)
		if len(sessions) == 0 {
			delete(r.byClient, identity.ClientId)
		}
	}
}

func (r *Registry) Socket(sessionId string) (Socket, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	socket, ok := r.sessions[sessionId]
	return socket, ok
}

// Sockets returns the live sockets for the given session ids, silently
// dropping sessions that have already gone away. A broadcast never
// fails because one recipient vanished mid-flight.
func (r *Registry) Sockets(sessionIds []string) []Socket {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sockets := make([]Socket, 0, len(sessionIds))
	for _, sessionId := range sessionIds {
		if socket, ok := r.sessions[sessionId]; ok {
			sockets = append(sockets, socket)
		}
	}
	return sockets
}

// SessionsForClient returns the open session ids sharing a durable
// client id.
func (r *Registry) SessionsForClient(clientId string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sessions := make([]string, 0, len(r.byClient[clientId]))
	for sessionId := range r.byClient[clientId] {
		sessions = append(sessions, sessionId)
	}
	return sessions
}
