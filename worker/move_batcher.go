package worker

import (
	"context"
	"log"
	"time"

	"github.com/wallyhq/wally/store"
)

type NoteMove struct {
	NoteId string
	X      float64
	Y      float64
}

// MoveBatcher coalesces the bursty position writes produced by note
// drags. Broadcast of each MoveNote is immediate; only the store write
// is deferred, and repeated moves of the same note collapse to the last
// position. Wall loads call Flush first so snapshots never trail a drag
// still in the buffer.
type MoveBatcher struct {
	WriteCh chan NoteMove
	FlushCh chan chan struct{}

	wallyStore         store.WallyStore
	tickerMilliseconds int
}

func NewMoveBatcher(wallyStore store.WallyStore, tickerMilliseconds int) *MoveBatcher {
	return &MoveBatcher{
		WriteCh:            make(chan NoteMove, 1024), // buffer to absorb bursts
		FlushCh:            make(chan chan struct{}, 16),
		wallyStore:         wallyStore,
		tickerMilliseconds: tickerMilliseconds,
	}
}

const maxPendingMoves = 64

func (b *MoveBatcher) Run(shutdownCtx context.Context) {
	ticker := time.NewTicker(time.Duration(b.tickerMilliseconds) * time.Millisecond)
	defer ticker.Stop()

	pending := make(map[string]NoteMove)

	flush := func() {
		if len(pending) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		for _, move := range pending {
			if err := b.wallyStore.SetNotePosition(ctx, move.NoteId, move.X, move.Y); err != nil {
				log.Printf("Failed to persist position for note %s: %v", move.NoteId, err)
			}
		}
		cancel()
		clear(pending)
	}

	for {
		select {
		case move := <-b.WriteCh:
			pending[move.NoteId] = move
			if len(pending) >= maxPendingMoves {
				flush()
			}

		case done := <-b.FlushCh:
			// Drain anything already queued ahead of the flush request
			for {
				select {
				case move := <-b.WriteCh:
					pending[move.NoteId] = move
					continue
				default:
				}
				break
			}
			flush()
			close(done)

		case <-ticker.C:
			flush()

		case <-shutdownCtx.Done():
			flush()
			return
		}
	}
}

// Flush blocks until every move queued so far has been written.
func (b *MoveBatcher) Flush() {
	done := make(chan struct{})
	b.FlushCh <- done
	<-done
}
