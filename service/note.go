package service

import (
	"context"
	"log"

	"github.com/wallyhq/wally/models"
	"github.com/wallyhq/wally/protocol"
	"github.com/wallyhq/wally/worker"
)

// NewNote persists a freshly created note and shows it to everyone but
// its author, who already renders it optimistically.
func (s *Service) NewNote(ctx context.Context, sess *Session, msg *protocol.NewNote) {
	s.createNote(ctx, sess, msg, false)
	sess.Undo.ObserveNewNote(msg.Note.Id)
}

func (s *Service) createNote(ctx context.Context, sess *Session, msg *protocol.NewNote, includeOrigin bool) {
	if err := s.Store.PutNote(ctx, msg.Note); err != nil {
		log.Printf("Failed to store note %s: %v", msg.Note.Id, err)
		return
	}
	if err := s.Directory.AddOwnedEntity(ctx, msg.WallName, models.KindNote, msg.Note.Id); err != nil {
		log.Printf("Failed to attach note %s to wall %s: %v", msg.Note.Id, msg.WallName, err)
	}
	s.invalidateWall(ctx, msg.WallName)
	s.broadcast(ctx, msg.WallName, sess.Identity.SessionId, includeOrigin, msg)
}

// MoveNote records the new position and relays it to the rest of the
// wall. The write is handed to the batcher so a drag gesture does not
// become hundreds of store updates.
func (s *Service) MoveNote(ctx context.Context, sess *Session, msg *protocol.MoveNote) {
	s.MoveBatcher.WriteCh <- worker.NoteMove{NoteId: msg.NoteId, X: msg.X, Y: msg.Y}
	s.invalidateWall(ctx, msg.WallName)
	s.broadcast(ctx, msg.WallName, sess.Identity.SessionId, false, msg)
}

func (s *Service) UpdateNoteText(ctx context.Context, sess *Session, msg *protocol.UpdateNoteText) {
	if err := s.Store.SetNoteText(ctx, msg.NoteId, msg.Text); err != nil {
		log.Printf("Failed to update text of note %s: %v", msg.NoteId, err)
		return
	}
	s.invalidateWall(ctx, msg.WallName)
	s.broadcast(ctx, msg.WallName, sess.Identity.SessionId, false, msg)
}

// SelectNote records who is holding which note. Selections are shared
// UI state, so the echo goes back to the origin as well.
func (s *Service) SelectNote(ctx context.Context, sess *Session, msg *protocol.SelectNote) {
	byUser := msg.ByUser
	if byUser == "" {
		byUser = sess.User.Id
	}
	s.setSelection(msg.WallName, byUser, msg.NoteId)
	s.broadcast(ctx, msg.WallName, sess.Identity.SessionId, true, msg)
}

// DeleteNote removes the note from the wall and the store, remembers it
// for undo, and confirms the deletion to every session including the
// origin.
func (s *Service) DeleteNote(ctx context.Context, sess *Session, msg *protocol.DeleteNote) {
	// Any coalesced move must land first so the undo snapshot carries
	// the note's latest position, and so a late flush cannot recreate
	// the row after it is deleted.
	s.MoveBatcher.Flush()

	notes, err := s.Store.GetNotes(ctx, []string{msg.NoteId})
	if err != nil {
		log.Printf("Failed to read note %s before deletion: %v", msg.NoteId, err)
	} else if len(notes) == 1 {
		sess.Undo.ObserveDelete(msg.WallName, notes[0])
	}

	if err := s.Directory.RemoveOwnedEntity(ctx, msg.WallName, models.KindNote, msg.NoteId); err != nil {
		log.Printf("Failed to detach note %s from wall %s: %v", msg.NoteId, msg.WallName, err)
	}
	if err := s.Store.DeleteNote(ctx, msg.NoteId); err != nil {
		log.Printf("Failed to delete note %s: %v", msg.NoteId, err)
		return
	}
	s.dropNoteSelections(msg.WallName, msg.NoteId)
	s.invalidateWall(ctx, msg.WallName)
	s.broadcast(ctx, msg.WallName, sess.Identity.SessionId, true, msg)
}
