package service

import (
	"context"
	"log"

	"github.com/wallyhq/wally/models"
	"github.com/wallyhq/wally/protocol"
)

// NewImage stores the image metadata and its pixel payload. The
// broadcast carries metadata only; other clients fetch the payload over
// the data endpoint, keeping megabyte blobs off the wall channel.
func (s *Service) NewImage(ctx context.Context, sess *Session, msg *protocol.NewImage) {
	if err := s.Store.PutImage(ctx, msg.Image); err != nil {
		log.Printf("Failed to store image %s: %v", msg.Image.Id, err)
		return
	}
	if msg.Data != "" {
		if err := s.Store.PutBinaryData(ctx, models.BinaryData{Id: msg.Image.Id, Data: msg.Data}); err != nil {
			log.Printf("Failed to store data for image %s: %v", msg.Image.Id, err)
		}
	}
	if err := s.Directory.AddOwnedEntity(ctx, msg.WallName, models.KindImage, msg.Image.Id); err != nil {
		log.Printf("Failed to attach image %s to wall %s: %v", msg.Image.Id, msg.WallName, err)
	}
	s.invalidateWall(ctx, msg.WallName)
	s.broadcast(ctx, msg.WallName, sess.Identity.SessionId, false, protocol.NewNewImage(msg.WallName, msg.Image, ""))
}

func (s *Service) UpdateImage(ctx context.Context, sess *Session, msg *protocol.UpdateImage) {
	if err := s.Store.UpdateImage(ctx, msg.ImageId, msg.X, msg.Y, msg.Width, msg.Height, msg.ZIndex); err != nil {
		log.Printf("Failed to update image %s: %v", msg.ImageId, err)
		return
	}
	s.invalidateWall(ctx, msg.WallName)
	s.broadcast(ctx, msg.WallName, sess.Identity.SessionId, false, msg)
}

func (s *Service) DeleteImage(ctx context.Context, sess *Session, msg *protocol.DeleteImage) {
	if err := s.Directory.RemoveOwnedEntity(ctx, msg.WallName, models.KindImage, msg.ImageId); err != nil {
		log.Printf("Failed to detach image %s from wall %s: %v", msg.ImageId, msg.WallName, err)
	}
	if err := s.Store.DeleteImage(ctx, msg.ImageId); err != nil {
		log.Printf("Failed to delete image %s: %v", msg.ImageId, err)
		return
	}
	if err := s.Store.DeleteBinaryData(ctx, msg.ImageId); err != nil {
		log.Printf("Failed to delete data for image %s: %v", msg.ImageId, err)
	}
	s.invalidateWall(ctx, msg.WallName)
	s.broadcast(ctx, msg.WallName, sess.Identity.SessionId, true, msg)
}
