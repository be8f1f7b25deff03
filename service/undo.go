package service

import (
	"context"
	"log"

	"github.com/wallyhq/wally/models"
	"github.com/wallyhq/wally/protocol"
)

const maxUndoDepth = 64

// UndoController holds one session's bounded stack of undoable actions.
// Today the only undoable action is a note deletion, which undo turns
// back into a note creation. The stack is scoped to the wall the
// session last joined and is discarded when that changes. Handlers for
// a session run serially, so the controller is not locked.
type UndoController struct {
	wallName string
	stack    []*protocol.NewNote
}

func NewUndoController() *UndoController {
	return &UndoController{}
}

// TrackWall points the controller at a wall, clearing history carried
// over from any previous wall.
func (u *UndoController) TrackWall(wallName string) {
	if wallName == u.wallName {
		return
	}
	u.wallName = wallName
	u.stack = nil
}

// ObserveDelete pushes the resurrection of a deleted note. The oldest
// entry falls off once the stack is full.
func (u *UndoController) ObserveDelete(wallName string, note models.Note) {
	if wallName != u.wallName {
		return
	}
	u.stack = append(u.stack, protocol.NewNewNote(wallName, note))
	if len(u.stack) > maxUndoDepth {
		u.stack = u.stack[len(u.stack)-maxUndoDepth:]
	}
}

// ObserveNewNote drops any pending resurrection of a note the session
// just recreated itself. Recreations by other sessions are caught at
// replay time instead, when HandleUndo checks the store.
func (u *UndoController) ObserveNewNote(noteId string) {
	kept := u.stack[:0]
	for _, entry := range u.stack {
		if entry.Note.Id != noteId {
			kept = append(kept, entry)
		}
	}
	u.stack = kept
}

// Pop returns the most recent undoable action, or nil when there is
// nothing to undo.
func (u *UndoController) Pop() *protocol.NewNote {
	if len(u.stack) == 0 {
		return nil
	}
	entry := u.stack[len(u.stack)-1]
	u.stack = u.stack[:len(u.stack)-1]
	return entry
}

// HandleUndo replays the session's most recent undoable action. A
// resurrected note is broadcast to everyone including the requester,
// who no longer has it locally. An empty stack is a silent no-op.
func (s *Service) HandleUndo(ctx context.Context, sess *Session, _ *protocol.Undo) {
	for {
		entry := sess.Undo.Pop()
		if entry == nil {
			return
		}
		// A note recreated since its deletion, possibly by another
		// session, must not be duplicated by the replay.
		existing, err := s.Store.GetNotes(ctx, []string{entry.Note.Id})
		if err != nil {
			log.Printf("Failed to check note %s before undo: %v", entry.Note.Id, err)
			return
		}
		if len(existing) > 0 {
			continue
		}
		s.createNote(ctx, sess, entry, true)
		return
	}
}
