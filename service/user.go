package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"

	"github.com/gofrs/uuid/v5"

	"github.com/wallyhq/wally/models"
	"github.com/wallyhq/wally/protocol"
	"github.com/wallyhq/wally/registry"
	"github.com/wallyhq/wally/store"
)

func randomRgbColour() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", rand.Intn(256), rand.Intn(256), rand.Intn(256))
}

// Connect resolves the durable user behind a client id, creating one on
// first contact, and returns the session the engine will track for this
// connection.
func (s *Service) Connect(ctx context.Context, identity registry.Identity) (*Session, error) {
	user, err := s.getUser(ctx, identity.ClientId)
	if errors.Is(err, store.ErrItemNotFound) {
		userId, err := uuid.NewV4()
		if err != nil {
			return nil, fmt.Errorf("failed to generate user id: %w", err)
		}
		user = models.User{
			Id:           userId.String(),
			Colour:       randomRgbColour(),
			UseNightMode: true,
		}
		if err := s.Store.PutUser(ctx, identity.ClientId, user); err != nil {
			return nil, fmt.Errorf("failed to create user for client %s: %w", identity.ClientId, err)
		}
	} else if err != nil {
		return nil, err
	}

	if err := s.Cache.SetUser(ctx, identity.ClientId, user); err != nil {
		log.Printf("Failed to cache user for client %s: %v", identity.ClientId, err)
	}

	return &Session{
		Identity: identity,
		User:     user,
		Undo:     NewUndoController(),
	}, nil
}

// Disconnect tears down a session: it leaves every roster it was on and
// notifies the remaining members, unless another session of the same
// client is still present there.
func (s *Service) Disconnect(ctx context.Context, sess *Session) {
	walls := s.Directory.RemoveSessionFromRoster(sess.Identity)
	s.Registry.Unregister(sess.Identity)

	for _, wallName := range walls {
		if s.Directory.ClientStillOnWall(wallName, sess.Identity.ClientId) {
			continue
		}
		s.clearSelection(wallName, sess.User.Id)
		s.broadcast(ctx, wallName, sess.Identity.SessionId, true, protocol.NewUserLeftWall(wallName, sess.User))
		if s.Directory.RosterEmpty(wallName) {
			s.Fanout.ReleaseWall(wallName)
		}
	}
}

// UpdateUser applies a partial profile update, acknowledges it to the
// requester and announces it on every wall the user is present on.
func (s *Service) UpdateUser(ctx context.Context, sess *Session, msg *protocol.UpdateUser) {
	if msg.UserId != sess.User.Id {
		log.Printf("Session %s attempted to update user %s, ignoring", sess.Identity.SessionId, msg.UserId)
		return
	}

	updated := sess.User
	if msg.User.Colour != nil {
		updated.Colour = *msg.User.Colour
	}
	if msg.User.Name != nil {
		updated.Name = *msg.User.Name
	}
	if msg.User.UseNightMode != nil {
		updated.UseNightMode = *msg.User.UseNightMode
	}

	if err := s.Store.UpdateUser(ctx, sess.Identity.ClientId, updated); err != nil {
		log.Printf("Failed to update user %s: %v", msg.UserId, err)
		return
	}
	sess.User = updated
	if err := s.Cache.SetUser(ctx, sess.Identity.ClientId, updated); err != nil {
		log.Printf("Failed to cache user for client %s: %v", sess.Identity.ClientId, err)
		// Better no cached profile than the stale one.
		if err := s.Cache.InvalidateUser(ctx, sess.Identity.ClientId); err != nil {
			log.Printf("Failed to drop cached user for client %s: %v", sess.Identity.ClientId, err)
		}
	}

	s.sendTo(sess.Identity.SessionId, msg)
	for _, wallName := range s.Directory.WallsForClient(sess.Identity.ClientId) {
		s.broadcast(ctx, wallName, sess.Identity.SessionId, false, msg)
	}
}

func (s *Service) getUser(ctx context.Context, clientId string) (models.User, error) {
	user, found, err := s.Cache.GetUser(ctx, clientId)
	if err != nil {
		log.Printf("Failed to read cached user for client %s: %v", clientId, err)
	} else if found {
		return user, nil
	}
	return s.Store.GetUserByClient(ctx, clientId)
}

// loadUsers resolves the distinct users currently on a wall's roster,
// cache first, with a single batched store read for the rest.
func (s *Service) loadUsers(ctx context.Context, wallName string) []models.User {
	clientIds := s.Directory.RosterClientIds(wallName)
	users := make([]models.User, 0, len(clientIds))
	var uncached []string
	for _, clientId := range clientIds {
		user, found, err := s.Cache.GetUser(ctx, clientId)
		if err != nil {
			log.Printf("Failed to read cached user for client %s: %v", clientId, err)
		} else if found {
			users = append(users, user)
			continue
		}
		uncached = append(uncached, clientId)
	}
	if len(uncached) == 0 {
		return users
	}

	fetched, err := s.Store.GetUsersByClients(ctx, uncached)
	if err != nil {
		log.Printf("Failed to load users for wall %s: %v", wallName, err)
		return users
	}
	return append(users, fetched...)
}
