package service

import (
	"context"
	"log"

	"github.com/wallyhq/wally/models"
	"github.com/wallyhq/wally/protocol"
)

func (s *Service) NewLine(ctx context.Context, sess *Session, msg *protocol.NewLine) {
	if err := s.Store.PutLine(ctx, msg.Line); err != nil {
		log.Printf("Failed to store line %s: %v", msg.Line.Id, err)
		return
	}
	if err := s.Directory.AddOwnedEntity(ctx, msg.WallName, models.KindLine, msg.Line.Id); err != nil {
		log.Printf("Failed to attach line %s to wall %s: %v", msg.Line.Id, msg.WallName, err)
	}
	s.invalidateWall(ctx, msg.WallName)
	s.broadcast(ctx, msg.WallName, sess.Identity.SessionId, false, msg)
}

// UpdateLine extends a line mid-draw. In append mode the incoming
// points are tacked onto the stored ones atomically. In replace mode
// the stored first point is kept as the anchor and everything after it
// is swapped for the incoming points.
func (s *Service) UpdateLine(ctx context.Context, sess *Session, msg *protocol.UpdateLine) {
	if msg.Replace {
		lines, err := s.Store.GetLines(ctx, []string{msg.LineId})
		if err != nil || len(lines) == 0 {
			log.Printf("Failed to read line %s before replace: %v", msg.LineId, err)
			return
		}
		points := msg.Points
		if len(lines[0].Points) > 0 {
			points = append([]models.Point{lines[0].Points[0]}, msg.Points...)
		}
		if err := s.Store.SetLinePoints(ctx, msg.LineId, points); err != nil {
			log.Printf("Failed to replace points of line %s: %v", msg.LineId, err)
			return
		}
	} else {
		if err := s.Store.AppendLinePoints(ctx, msg.LineId, msg.Points); err != nil {
			log.Printf("Failed to append points to line %s: %v", msg.LineId, err)
			return
		}
	}
	s.invalidateWall(ctx, msg.WallName)
	s.broadcast(ctx, msg.WallName, sess.Identity.SessionId, false, msg)
}

func (s *Service) DeleteLine(ctx context.Context, sess *Session, msg *protocol.DeleteLine) {
	if err := s.Directory.RemoveOwnedEntity(ctx, msg.WallName, models.KindLine, msg.LineId); err != nil {
		log.Printf("Failed to detach line %s from wall %s: %v", msg.LineId, msg.WallName, err)
	}
	if err := s.Store.DeleteLine(ctx, msg.LineId); err != nil {
		log.Printf("Failed to delete line %s: %v", msg.LineId, err)
		return
	}
	s.invalidateWall(ctx, msg.WallName)
	s.broadcast(ctx, msg.WallName, sess.Identity.SessionId, true, msg)
}
