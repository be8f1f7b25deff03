package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wallyhq/wally/models"
	"github.com/wallyhq/wally/protocol"
)

func TestNewLine(t *testing.T) {
	h := setupService(t)
	h.capturePublishes(t)
	ctx := context.Background()

	sess, _ := h.connectSession("s1", "c1", models.User{Id: "user1"})
	line := models.Line{Id: "l1", Points: []models.Point{{0, 0}, {1, 1}}, Colour: "red", Width: "3"}

	h.store.On("PutLine", mock.Anything, line).Return(nil)
	h.store.On("AddWallEntity", mock.Anything, "board", models.KindLine, "l1").Return(nil)
	h.cache.On("InvalidateWall", mock.Anything, "board").Return(nil)

	h.svc.NewLine(ctx, sess, protocol.NewNewLine("board", line))

	broadcasts := h.broadcasts()
	require.Len(t, broadcasts, 1)
	assert.False(t, broadcasts[0].IncludeOrigin)
}

func TestUpdateLine_AppendExtendsStoredPoints(t *testing.T) {
	h := setupService(t)
	h.capturePublishes(t)
	ctx := context.Background()

	sess, _ := h.connectSession("s1", "c1", models.User{Id: "user1"})
	incoming := []models.Point{{5, 5}}

	h.store.On("AppendLinePoints", mock.Anything, "l1", incoming).Return(nil)
	h.cache.On("InvalidateWall", mock.Anything, "board").Return(nil)

	h.svc.UpdateLine(ctx, sess, protocol.NewUpdateLine("board", "l1", incoming, false))

	h.store.AssertCalled(t, "AppendLinePoints", mock.Anything, "l1", incoming)
	h.store.AssertNotCalled(t, "SetLinePoints", mock.Anything, mock.Anything, mock.Anything)

	broadcasts := h.broadcasts()
	require.Len(t, broadcasts, 1)
	assert.False(t, broadcasts[0].IncludeOrigin)
}

func TestUpdateLine_ReplaceKeepsAnchorPoint(t *testing.T) {
	h := setupService(t)
	h.capturePublishes(t)
	ctx := context.Background()

	sess, _ := h.connectSession("s1", "c1", models.User{Id: "user1"})
	stored := models.Line{Id: "l1", Points: []models.Point{{0, 0}, {1, 1}, {2, 2}}, Colour: "red", Width: "3"}

	h.store.On("GetLines", mock.Anything, []string{"l1"}).Return([]models.Line{stored}, nil)
	h.store.On("SetLinePoints", mock.Anything, "l1", []models.Point{{0, 0}, {5, 5}}).Return(nil)
	h.cache.On("InvalidateWall", mock.Anything, "board").Return(nil)

	h.svc.UpdateLine(ctx, sess, protocol.NewUpdateLine("board", "l1", []models.Point{{5, 5}}, true))

	h.store.AssertCalled(t, "SetLinePoints", mock.Anything, "l1", []models.Point{{0, 0}, {5, 5}})
	h.store.AssertNotCalled(t, "AppendLinePoints", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateLine_ReplaceOnMissingLine(t *testing.T) {
	h := setupService(t)
	ctx := context.Background()

	sess, _ := h.connectSession("s1", "c1", models.User{Id: "user1"})

	h.store.On("GetLines", mock.Anything, []string{"ghost"}).Return([]models.Line{}, nil)

	h.svc.UpdateLine(ctx, sess, protocol.NewUpdateLine("board", "ghost", []models.Point{{5, 5}}, true))

	h.store.AssertNotCalled(t, "SetLinePoints", mock.Anything, mock.Anything, mock.Anything)
	h.cache.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteLine_BroadcastIncludesOrigin(t *testing.T) {
	h := setupService(t)
	h.capturePublishes(t)
	ctx := context.Background()

	sess, _ := h.connectSession("s1", "c1", models.User{Id: "user1"})

	h.store.On("RemoveWallEntity", mock.Anything, "board", models.KindLine, "l1").Return(nil)
	h.store.On("DeleteLine", mock.Anything, "l1").Return(nil)
	h.cache.On("InvalidateWall", mock.Anything, "board").Return(nil)

	h.svc.DeleteLine(ctx, sess, protocol.NewDeleteLine("board", "l1"))

	broadcasts := h.broadcasts()
	require.Len(t, broadcasts, 1)
	assert.True(t, broadcasts[0].IncludeOrigin)
}
