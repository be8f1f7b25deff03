package service

import (
	"context"
	"log"

	"github.com/wallyhq/wally/protocol"
)

// HandleMessage routes one decoded client message to its handler.
// Server-to-client types arriving from a client are ignored.
func (s *Service) HandleMessage(ctx context.Context, sess *Session, msg protocol.Message) {
	switch m := msg.(type) {
	case *protocol.CreateWall:
		s.CreateWall(ctx, sess, m)
	case *protocol.JoinWall:
		s.JoinWall(ctx, sess, m)
	case *protocol.DeleteWall:
		s.DeleteWall(ctx, sess, m)
	case *protocol.UpdateUser:
		s.UpdateUser(ctx, sess, m)
	case *protocol.NewNote:
		s.NewNote(ctx, sess, m)
	case *protocol.MoveNote:
		s.MoveNote(ctx, sess, m)
	case *protocol.UpdateNoteText:
		s.UpdateNoteText(ctx, sess, m)
	case *protocol.SelectNote:
		s.SelectNote(ctx, sess, m)
	case *protocol.DeleteNote:
		s.DeleteNote(ctx, sess, m)
	case *protocol.NewLine:
		s.NewLine(ctx, sess, m)
	case *protocol.UpdateLine:
		s.UpdateLine(ctx, sess, m)
	case *protocol.DeleteLine:
		s.DeleteLine(ctx, sess, m)
	case *protocol.NewImage:
		s.NewImage(ctx, sess, m)
	case *protocol.UpdateImage:
		s.UpdateImage(ctx, sess, m)
	case *protocol.DeleteImage:
		s.DeleteImage(ctx, sess, m)
	case *protocol.Undo:
		s.HandleUndo(ctx, sess, m)
	default:
		log.Printf("Ignoring unexpected %s message from session %s", msg.MessageType(), sess.Identity.SessionId)
	}
}
