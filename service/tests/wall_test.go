package service_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wallyhq/wally/models"
	"github.com/wallyhq/wally/protocol"
	"github.com/wallyhq/wally/registry"
	"github.com/wallyhq/wally/store"
	"github.com/wallyhq/wally/worker"
)

func TestCreateWall_Success(t *testing.T) {
	h := setupService(t)
	h.capturePublishes(t)
	ctx := context.Background()

	user := models.User{Id: "user1", Colour: "rgb(1, 2, 3)"}
	sess, socket := h.connectSession("s1", "c1", user)

	h.store.On("CreateWall", mock.Anything, "team-board").Return(models.Wall{Name: "team-board"}, nil)
	h.cache.On("GetUser", mock.Anything, "c1").Return(user, true, nil)

	h.svc.CreateWall(ctx, sess, protocol.NewCreateWall("team-board"))

	msgs := socket.received(t)
	require.Len(t, msgs, 1)
	state, ok := msgs[0].(*protocol.WallState)
	require.True(t, ok)
	assert.Equal(t, "team-board", state.Name)
	assert.Empty(t, state.Notes)
	assert.Empty(t, state.Lines)
	assert.Empty(t, state.Images)
	assert.Equal(t, []models.User{user}, state.Users)

	assert.Equal(t, []string{"team-board"}, h.fanout.ensured)
	assert.Len(t, h.directory.SessionsForWall("team-board"), 1)
}

func TestCreateWall_DuplicateName(t *testing.T) {
	h := setupService(t)
	ctx := context.Background()

	sess, socket := h.connectSession("s1", "c1", models.User{Id: "user1"})

	h.store.On("CreateWall", mock.Anything, "team-board").Return(models.Wall{}, store.ErrAlreadyExists)

	h.svc.CreateWall(ctx, sess, protocol.NewCreateWall("team-board"))

	msgs := socket.received(t)
	require.Len(t, msgs, 1)
	wallyErr, ok := msgs[0].(*protocol.WallyError)
	require.True(t, ok)
	assert.Contains(t, wallyErr.Message, "already exists")

	assert.Empty(t, h.fanout.ensured)
	assert.Empty(t, h.directory.SessionsForWall("team-board"))
}

func TestJoinWall_Success(t *testing.T) {
	h := setupService(t)
	h.capturePublishes(t)
	ctx := context.Background()

	resident := models.User{Id: "user1"}
	h.directory.AddSessionToRoster("board", registry.Identity{SessionId: "s1", ClientId: "c1"})

	joiner := models.User{Id: "user2", Name: "Sam"}
	sess, socket := h.connectSession("s2", "c2", joiner)

	note := models.Note{Id: "n1", X: 10, Y: 20, Colour: "yellow", Text: "hello"}
	line := models.Line{Id: "l1", Points: []models.Point{{0, 0}, {3, 4}}, Colour: "red", Width: "2"}

	h.store.On("GetWall", mock.Anything, "board").Return(models.Wall{Name: "board", Notes: []string{"n1"}, Lines: []string{"l1"}}, nil)
	h.cache.On("GetWallEntities", mock.Anything, "board").Return([]byte(nil), false, nil)
	h.store.On("GetNotes", mock.Anything, []string{"n1"}).Return([]models.Note{note}, nil)
	h.store.On("GetLines", mock.Anything, []string{"l1"}).Return([]models.Line{line}, nil)
	h.store.On("GetImages", mock.Anything, mock.Anything).Return([]models.Image{}, nil)
	h.cache.On("SetWallEntities", mock.Anything, "board", mock.Anything).Return(nil)
	h.cache.On("GetUser", mock.Anything, "c1").Return(resident, true, nil)
	h.cache.On("GetUser", mock.Anything, "c2").Return(joiner, true, nil)

	h.svc.JoinWall(ctx, sess, protocol.NewJoinWall("board"))

	msgs := socket.received(t)
	require.Len(t, msgs, 1)
	state, ok := msgs[0].(*protocol.WallState)
	require.True(t, ok)
	assert.Equal(t, []models.Note{note}, state.Notes)
	assert.Equal(t, []models.Line{line}, state.Lines)
	assert.Len(t, state.Users, 2)

	broadcasts := h.broadcasts()
	require.Len(t, broadcasts, 1)
	assert.Equal(t, "board", broadcasts[0].WallName)
	assert.Equal(t, "s2", broadcasts[0].Origin)
	assert.False(t, broadcasts[0].IncludeOrigin)
	joined, ok := decodeBroadcast(t, broadcasts[0]).(*protocol.UserJoinedWall)
	require.True(t, ok)
	assert.Equal(t, joiner, joined.User)
}

func TestJoinWall_SecondJoinIsNoOp(t *testing.T) {
	h := setupService(t)
	h.capturePublishes(t)
	ctx := context.Background()

	user := models.User{Id: "user1"}
	sess, socket := h.connectSession("s1", "c1", user)

	h.store.On("GetWall", mock.Anything, "board").Return(models.Wall{Name: "board"}, nil)
	h.cache.On("GetWallEntities", mock.Anything, "board").Return([]byte(nil), false, nil)
	h.store.On("GetNotes", mock.Anything, mock.Anything).Return([]models.Note{}, nil)
	h.store.On("GetLines", mock.Anything, mock.Anything).Return([]models.Line{}, nil)
	h.store.On("GetImages", mock.Anything, mock.Anything).Return([]models.Image{}, nil)
	h.cache.On("SetWallEntities", mock.Anything, "board", mock.Anything).Return(nil)
	h.cache.On("GetUser", mock.Anything, "c1").Return(user, true, nil)

	h.svc.JoinWall(ctx, sess, protocol.NewJoinWall("board"))
	h.svc.JoinWall(ctx, sess, protocol.NewJoinWall("board"))

	assert.Len(t, socket.received(t), 1)
	assert.Len(t, h.broadcasts(), 1)
	assert.Len(t, h.directory.SessionsForWall("board"), 1)
	assert.Equal(t, []string{"board"}, h.fanout.ensured)
}

func TestJoinWall_MissingWall(t *testing.T) {
	h := setupService(t)
	ctx := context.Background()

	sess, socket := h.connectSession("s1", "c1", models.User{Id: "user1"})

	h.store.On("GetWall", mock.Anything, "ghost").Return(models.Wall{}, store.ErrItemNotFound)

	h.svc.JoinWall(ctx, sess, protocol.NewJoinWall("ghost"))

	msgs := socket.received(t)
	require.Len(t, msgs, 1)
	wallyErr, ok := msgs[0].(*protocol.WallyError)
	require.True(t, ok)
	assert.Contains(t, wallyErr.Message, "does not exist")
	assert.Empty(t, h.directory.SessionsForWall("ghost"))
}

func TestJoinWall_HealsBrokenLines(t *testing.T) {
	h := setupService(t)
	h.capturePublishes(t)
	ctx := context.Background()

	user := models.User{Id: "user1"}
	sess, socket := h.connectSession("s1", "c1", user)

	// One point and no colour: unrenderable, must be purged on load.
	broken := models.Line{Id: "l1", Points: []models.Point{{1, 1}}}
	good := models.Line{Id: "l2", Points: []models.Point{{0, 0}, {1, 1}}, Colour: "blue", Width: "1"}

	h.store.On("GetWall", mock.Anything, "board").Return(models.Wall{Name: "board", Lines: []string{"l1", "l2"}}, nil)
	h.cache.On("GetWallEntities", mock.Anything, "board").Return([]byte(nil), false, nil)
	h.store.On("GetNotes", mock.Anything, mock.Anything).Return([]models.Note{}, nil)
	h.store.On("GetLines", mock.Anything, []string{"l1", "l2"}).Return([]models.Line{broken, good}, nil)
	h.store.On("GetImages", mock.Anything, mock.Anything).Return([]models.Image{}, nil)
	h.store.On("RemoveWallEntity", mock.Anything, "board", models.KindLine, "l1").Return(nil)
	h.store.On("DeleteLine", mock.Anything, "l1").Return(nil)
	h.cache.On("SetWallEntities", mock.Anything, "board", mock.Anything).Return(nil)
	h.cache.On("GetUser", mock.Anything, "c1").Return(user, true, nil)

	h.svc.JoinWall(ctx, sess, protocol.NewJoinWall("board"))

	msgs := socket.received(t)
	require.Len(t, msgs, 1)
	state, ok := msgs[0].(*protocol.WallState)
	require.True(t, ok)
	assert.Equal(t, []models.Line{good}, state.Lines)

	h.store.AssertCalled(t, "RemoveWallEntity", mock.Anything, "board", models.KindLine, "l1")
	h.store.AssertCalled(t, "DeleteLine", mock.Anything, "l1")
}

func TestDeleteWall_EvictsRoster(t *testing.T) {
	h := setupService(t)
	h.capturePublishes(t)
	ctx := context.Background()

	sess, socketA := h.connectSession("s1", "c1", models.User{Id: "user1"})
	_, socketB := h.connectSession("s2", "c2", models.User{Id: "user2"})
	h.directory.AddSessionToRoster("board", registry.Identity{SessionId: "s1", ClientId: "c1"})
	h.directory.AddSessionToRoster("board", registry.Identity{SessionId: "s2", ClientId: "c2"})

	wall := models.Wall{Name: "board", Notes: []string{"n1"}, Lines: []string{"l1"}, Images: []string{"i1"}}
	h.store.On("GetWall", mock.Anything, "board").Return(wall, nil)
	h.store.On("DeleteWall", mock.Anything, "board").Return(nil)
	h.cache.On("InvalidateWall", mock.Anything, "board").Return(nil)

	var purgeBody string
	h.mq.On("Send", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		purgeBody = args.String(1)
	})

	h.svc.DeleteWall(ctx, sess, protocol.NewDeleteWall("board"))

	var purge worker.PurgeWallMessage
	require.NoError(t, json.Unmarshal([]byte(purgeBody), &purge))
	assert.Equal(t, "board", purge.WallName)
	assert.Equal(t, []string{"n1"}, purge.NoteIds)
	assert.Equal(t, []string{"l1"}, purge.LineIds)
	assert.Equal(t, []string{"i1"}, purge.ImageIds)

	for _, socket := range []*fakeSocket{socketA, socketB} {
		msgs := socket.received(t)
		require.Len(t, msgs, 1)
		_, ok := msgs[0].(*protocol.DeleteWall)
		assert.True(t, ok)
	}

	assert.Empty(t, h.directory.SessionsForWall("board"))
	assert.Equal(t, []string{"board"}, h.fanout.released)
}

func TestDeleteWall_MissingWallIsNoOp(t *testing.T) {
	h := setupService(t)
	ctx := context.Background()

	sess, socket := h.connectSession("s1", "c1", models.User{Id: "user1"})
	h.store.On("GetWall", mock.Anything, "ghost").Return(models.Wall{}, store.ErrItemNotFound)

	h.svc.DeleteWall(ctx, sess, protocol.NewDeleteWall("ghost"))

	assert.Empty(t, socket.received(t))
	h.store.AssertNotCalled(t, "DeleteWall", mock.Anything, mock.Anything)
	h.mq.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestJoinWall_BatchLoadsUncachedUsers(t *testing.T) {
	h := setupService(t)
	h.capturePublishes(t)
	ctx := context.Background()

	resident := models.User{Id: "user1"}
	h.directory.AddSessionToRoster("board", registry.Identity{SessionId: "s1", ClientId: "c1"})

	joiner := models.User{Id: "user2"}
	sess, socket := h.connectSession("s2", "c2", joiner)

	h.store.On("GetWall", mock.Anything, "board").Return(models.Wall{Name: "board"}, nil)
	h.cache.On("GetWallEntities", mock.Anything, "board").Return([]byte(nil), false, nil)
	h.store.On("GetNotes", mock.Anything, mock.Anything).Return([]models.Note{}, nil)
	h.store.On("GetLines", mock.Anything, mock.Anything).Return([]models.Line{}, nil)
	h.store.On("GetImages", mock.Anything, mock.Anything).Return([]models.Image{}, nil)
	h.cache.On("SetWallEntities", mock.Anything, "board", mock.Anything).Return(nil)

	// Only the resident's record is cached; the joiner's comes from a
	// single batched store read.
	h.cache.On("GetUser", mock.Anything, "c1").Return(resident, true, nil)
	h.cache.On("GetUser", mock.Anything, "c2").Return(models.User{}, false, nil)
	h.store.On("GetUsersByClients", mock.Anything, []string{"c2"}).Return([]models.User{joiner}, nil)

	h.svc.JoinWall(ctx, sess, protocol.NewJoinWall("board"))

	msgs := socket.received(t)
	require.Len(t, msgs, 1)
	state, ok := msgs[0].(*protocol.WallState)
	require.True(t, ok)
	assert.ElementsMatch(t, []models.User{resident, joiner}, state.Users)
	h.store.AssertCalled(t, "GetUsersByClients", mock.Anything, []string{"c2"})
}
