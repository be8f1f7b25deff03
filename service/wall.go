package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/wallyhq/wally/models"
	"github.com/wallyhq/wally/protocol"
	"github.com/wallyhq/wally/store"
	"github.com/wallyhq/wally/worker"
)

// wallEntities is the cached snapshot of a wall's content.
type wallEntities struct {
	Notes  []models.Note  `json:"notes"`
	Lines  []models.Line  `json:"lines"`
	Images []models.Image `json:"images"`
}

// CreateWall creates a new empty wall and puts the requester on its
// roster. A name collision is reported back to the requester only.
func (s *Service) CreateWall(ctx context.Context, sess *Session, msg *protocol.CreateWall) {
	_, err := s.Directory.Create(ctx, msg.Name)
	if errors.Is(err, store.ErrAlreadyExists) {
		s.sendError(sess.Identity.SessionId, fmt.Sprintf("Wall %q already exists", msg.Name))
		return
	}
	if err != nil {
		log.Printf("Failed to create wall %s: %v", msg.Name, err)
		s.sendError(sess.Identity.SessionId, fmt.Sprintf("Failed to create wall %q", msg.Name))
		return
	}

	s.joinRoster(sess, msg.Name)
	s.sendTo(sess.Identity.SessionId, protocol.NewWallState(
		msg.Name,
		[]models.Line{},
		[]models.Note{},
		[]models.Image{},
		s.loadUsers(ctx, msg.Name),
		map[string]string{},
	))
}

// JoinWall puts the requester on an existing wall's roster, replies with
// the full wall state and announces the arrival to everyone else. A
// session already on the roster gets nothing, not even an error.
func (s *Service) JoinWall(ctx context.Context, sess *Session, msg *protocol.JoinWall) {
	wall, err := s.Directory.Get(ctx, msg.Name)
	if errors.Is(err, store.ErrItemNotFound) {
		s.sendError(sess.Identity.SessionId, fmt.Sprintf("Wall %q does not exist", msg.Name))
		return
	}
	if err != nil {
		log.Printf("Failed to load wall %s: %v", msg.Name, err)
		s.sendError(sess.Identity.SessionId, fmt.Sprintf("Failed to join wall %q", msg.Name))
		return
	}

	entities, err := s.loadWallEntities(ctx, wall)
	if err != nil {
		log.Printf("Failed to load entities for wall %s: %v", msg.Name, err)
		s.sendError(sess.Identity.SessionId, fmt.Sprintf("Failed to join wall %q", msg.Name))
		return
	}

	if added := s.joinRoster(sess, msg.Name); !added {
		return
	}

	s.sendTo(sess.Identity.SessionId, protocol.NewWallState(
		msg.Name,
		entities.Lines,
		entities.Notes,
		entities.Images,
		s.loadUsers(ctx, msg.Name),
		s.selectionsFor(msg.Name),
	))
	s.broadcast(ctx, msg.Name, sess.Identity.SessionId, false, protocol.NewUserJoinedWall(msg.Name, sess.User))
}

// DeleteWall removes the wall from the directory, evicts every session
// on its roster with a deletion notice, and offloads the entity purge
// to the background queue.
func (s *Service) DeleteWall(ctx context.Context, sess *Session, msg *protocol.DeleteWall) {
	wall, err := s.Directory.Get(ctx, msg.Name)
	if errors.Is(err, store.ErrItemNotFound) {
		return
	}
	if err != nil {
		log.Printf("Failed to load wall %s for deletion: %v", msg.Name, err)
		return
	}

	if err := s.Directory.Delete(ctx, msg.Name); err != nil {
		log.Printf("Failed to delete wall %s: %v", msg.Name, err)
		return
	}

	purge, err := json.Marshal(worker.PurgeWallMessage{
		WallName: wall.Name,
		NoteIds:  wall.Notes,
		LineIds:  wall.Lines,
		ImageIds: wall.Images,
	})
	if err != nil {
		log.Printf("Failed to marshal purge message for wall %s: %v", msg.Name, err)
	} else if err := s.PurgeQueue.Send(ctx, string(purge)); err != nil {
		log.Printf("Failed to enqueue purge for wall %s: %v", msg.Name, err)
	}

	if err := s.Cache.InvalidateWall(ctx, msg.Name); err != nil {
		log.Printf("Failed to invalidate cache for wall %s: %v", msg.Name, err)
	}
	s.dropWallSelections(msg.Name)

	// The roster is dropped before notifying, so the notice goes out
	// directly over the evicted sockets rather than the wall channel.
	evicted := s.Directory.DropRoster(msg.Name)
	notice, err := protocol.Encode(msg)
	if err != nil {
		log.Printf("Failed to encode wall deletion notice: %v", err)
	} else {
		sessionIds := make([]string, 0, len(evicted))
		for _, identity := range evicted {
			sessionIds = append(sessionIds, identity.SessionId)
		}
		for _, socket := range s.Registry.Sockets(sessionIds) {
			socket.Send(notice)
		}
	}
	if len(evicted) > 0 {
		s.Fanout.ReleaseWall(msg.Name)
	}
}

// joinRoster adds the session to a wall's roster, wiring up the fanout
// subscription when it is the first local session there. It also points
// the session's undo stack at the wall.
func (s *Service) joinRoster(sess *Session, wallName string) bool {
	added, first := s.Directory.AddSessionToRoster(wallName, sess.Identity)
	if !added {
		return false
	}
	if first {
		s.Fanout.EnsureWall(wallName)
	}
	sess.Undo.TrackWall(wallName)
	return true
}

// loadWallEntities returns the wall's content, preferring the cached
// snapshot. On a cache miss it reads the stores, heals any lines that
// are broken beyond rendering, and refreshes the cache.
func (s *Service) loadWallEntities(ctx context.Context, wall models.Wall) (wallEntities, error) {
	// Pending coalesced note moves must land before a snapshot is taken.
	s.MoveBatcher.Flush()

	cached, found, err := s.Cache.GetWallEntities(ctx, wall.Name)
	if err != nil {
		log.Printf("Failed to read cached entities for wall %s: %v", wall.Name, err)
	} else if found {
		var entities wallEntities
		if err := json.Unmarshal(cached, &entities); err == nil {
			return entities, nil
		}
		log.Printf("Discarding corrupt cached entities for wall %s: %v", wall.Name, err)
	}

	notes, err := s.Store.GetNotes(ctx, wall.Notes)
	if err != nil {
		return wallEntities{}, err
	}
	lines, err := s.Store.GetLines(ctx, wall.Lines)
	if err != nil {
		return wallEntities{}, err
	}
	images, err := s.Store.GetImages(ctx, wall.Images)
	if err != nil {
		return wallEntities{}, err
	}

	entities := wallEntities{Notes: notes, Images: images, Lines: make([]models.Line, 0, len(lines))}
	for _, line := range lines {
		if line.Valid() {
			entities.Lines = append(entities.Lines, line)
			continue
		}
		// A line without two points or a colour can never render; drop
		// it from the wall for good rather than ship it to clients.
		log.Printf("Healing broken line %s on wall %s", line.Id, wall.Name)
		if err := s.Directory.RemoveOwnedEntity(ctx, wall.Name, models.KindLine, line.Id); err != nil {
			log.Printf("Failed to detach broken line %s: %v", line.Id, err)
		}
		if err := s.Store.DeleteLine(ctx, line.Id); err != nil {
			log.Printf("Failed to delete broken line %s: %v", line.Id, err)
		}
	}

	snapshot, err := json.Marshal(entities)
	if err != nil {
		log.Printf("Failed to marshal entity snapshot for wall %s: %v", wall.Name, err)
	} else if err := s.Cache.SetWallEntities(ctx, wall.Name, snapshot); err != nil {
		log.Printf("Failed to cache entities for wall %s: %v", wall.Name, err)
	}
	return entities, nil
}

func (s *Service) invalidateWall(ctx context.Context, wallName string) {
	if err := s.Cache.InvalidateWall(ctx, wallName); err != nil {
		log.Printf("Failed to invalidate cache for wall %s: %v", wallName, err)
	}
}
