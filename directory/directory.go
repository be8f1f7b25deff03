// Package directory is the authoritative map from wall name to what the
// wall owns. Ownership sets are durable and delegate to the store; the
// roster of sessions currently viewing each wall is in-memory only and
// rebuilt empty on restart.
package directory

import (
	"context"
	"errors"
	"sync"

	"github.com/wallyhq/wally/models"
	"github.com/wallyhq/wally/registry"
	"github.com/wallyhq/wally/store"
)

type Directory struct {
	store store.WallyStore

	mu      sync.RWMutex
	rosters map[string]map[string]registry.Identity
}

func New(wallyStore store.WallyStore) *Directory {
	return &Directory{
		store:   wallyStore,
		rosters: make(map[string]map[string]registry.Identity),
	}
}

// Durable ownership, backed by the store.

func (d *Directory) Exists(ctx context.Context, name string) (bool, error) {
	_, err := d.store.GetWall(ctx, name)
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (d *Directory) Create(ctx context.Context, name string) (models.Wall, error) {
	return d.store.CreateWall(ctx, name)
}

// Delete removes the wall record. A missing wall is not an error.
func (d *Directory) Delete(ctx context.Context, name string) error {
	return d.store.DeleteWall(ctx, name)
}

// Get returns the wall record, or store.ErrItemNotFound. Callers must
// branch on the sentinel rather than assume presence.
func (d *Directory) Get(ctx context.Context, name string) (models.Wall, error) {
	return d.store.GetWall(ctx, name)
}

func (d *Directory) ListWalls(ctx context.Context) ([]string, error) {
	return d.store.ListWalls(ctx)
}

func (d *Directory) AddOwnedEntity(ctx context.Context, name string, kind models.EntityKind, id string) error {
	return d.store.AddWallEntity(ctx, name, kind, id)
}

func (d *Directory) RemoveOwnedEntity(ctx context.Context, name string, kind models.EntityKind, id string) error {
	return d.store.RemoveWallEntity(ctx, name, kind, id)
}

// In-memory rosters.

// AddSessionToRoster registers a session on a wall. It is idempotent;
// the return values report whether this call actually added the session
// and whether it was the first session on the wall (the caller uses
// that to set up the wall's broadcast subscription).
func (d *Directory) AddSessionToRoster(name string, identity registry.Identity) (added bool, first bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	roster, ok := d.rosters[name]
	if !ok {
		roster = make(map[string]registry.Identity)
		d.rosters[name] = roster
	}
	if _, ok := roster[identity.SessionId]; ok {
		return false, false
	}
	roster[identity.SessionId] = identity
	return true, len(roster) == 1
}

// RemoveSessionFromRoster takes the session out of every roster that
// contains it and reports which walls it was removed from. A session
// should only ever be on one wall, but the removal is deliberately
// wall-agnostic so cleanup never depends on that holding.
func (d *Directory) RemoveSessionFromRoster(identity registry.Identity) []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	var walls []string
	for name, roster := range d.rosters {
		if _, ok := roster[identity.SessionId]; ok {
			delete(roster, identity.SessionId)
			walls = append(walls, name)
			if len(roster) == 0 {
				delete(d.rosters, name)
			}
		}
	}
	return walls
}

// DropRoster empties a wall's roster entirely, returning the evicted
// identities. Used when the wall itself is deleted.
func (d *Directory) DropRoster(name string) []registry.Identity {
	d.mu.Lock()
	defer d.mu.Unlock()

	roster := d.rosters[name]
	delete(d.rosters, name)

	evicted := make([]registry.Identity, 0, len(roster))
	for _, identity := range roster {
		evicted = append(evicted, identity)
	}
	return evicted
}

func (d *Directory) SessionsForWall(name string) []registry.Identity {
	d.mu.RLock()
	defer d.mu.RUnlock()

	roster := d.rosters[name]
	sessions := make([]registry.Identity, 0, len(roster))
	for _, identity := range roster {
		sessions = append(sessions, identity)
	}
	return sessions
}

// RosterEmpty reports whether no session is left on a wall's roster.
func (d *Directory) RosterEmpty(name string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return len(d.rosters[name]) == 0
}

// RosterClientIds returns the distinct durable client ids present on a
// wall. The order is unspecified.
func (d *Directory) RosterClientIds(name string) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	seen := make(map[string]struct{})
	var clientIds []string
	for _, identity := range d.rosters[name] {
		if _, ok := seen[identity.ClientId]; !ok {
			seen[identity.ClientId] = struct{}{}
			clientIds = append(clientIds, identity.ClientId)
		}
	}
	return clientIds
}

// WallsForClient scans the rosters for walls where any session carries
// the given durable client id. A user can be live on several walls at
// once through separate tabs.
func (d *Directory) WallsForClient(clientId string) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var walls []string
	for name, roster := range d.rosters {
		for _, identity := range roster {
			if identity.ClientId == clientId {
				walls = append(walls, name)
				break
			}
		}
	}
	return walls
}

// ClientStillOnWall reports whether any remaining session on the wall
// carries the given client id. Used after a disconnect to decide
// whether the user has really left the wall or just closed one tab.
func (d *Directory) ClientStillOnWall(name string, clientId string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, identity := range d.rosters[name] {
		if identity.ClientId == clientId {
			return true
		}
	}
	return false
}
