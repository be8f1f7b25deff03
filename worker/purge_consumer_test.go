package worker_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	cachemocks "github.com/wallyhq/wally/cache/mocks"
	"github.com/wallyhq/wally/mq"
	mqmocks "github.com/wallyhq/wally/mq/mocks"
	storemocks "github.com/wallyhq/wally/store/mocks"
	"github.com/wallyhq/wally/worker"
)

func TestPurgeConsumer_PurgesWallEntities(t *testing.T) {
	mockMQ := new(mqmocks.MockMQ)
	mockStore := new(storemocks.MockStore)
	mockCache := new(cachemocks.MockCache)

	body, err := json.Marshal(worker.PurgeWallMessage{
		WallName: "board",
		NoteIds:  []string{"n1", "n2"},
		LineIds:  []string{"l1"},
		ImageIds: []string{"i1"},
	})
	require.NoError(t, err)
	queued := &mq.Message{Id: "m1", Body: string(body)}

	mockMQ.On("Receive", mock.Anything, mock.Anything).Return(queued, nil).Once()
	mockMQ.On("Receive", mock.Anything, mock.Anything).Return(nil, context.Canceled)

	mockStore.On("DeleteNote", mock.Anything, "n1").Return(nil)
	mockStore.On("DeleteNote", mock.Anything, "n2").Return(nil)
	mockStore.On("DeleteLine", mock.Anything, "l1").Return(nil)
	mockStore.On("DeleteImage", mock.Anything, "i1").Return(nil)
	mockStore.On("DeleteBinaryData", mock.Anything, "i1").Return(nil)
	mockCache.On("InvalidateWall", mock.Anything, "board").Return(nil)

	deleted := make(chan struct{})
	mockMQ.On("Delete", mock.Anything, queued).Return(nil).Run(func(args mock.Arguments) {
		close(deleted)
	})

	consumer := worker.NewPurgeConsumer(mockMQ, mockStore, mockCache)
	finished := make(chan struct{})
	go func() {
		consumer.Run(context.Background())
		close(finished)
	}()

	select {
	case <-deleted:
	case <-time.After(time.Second):
		assert.Fail(t, "timed out waiting for queue delete")
	}
	select {
	case <-finished:
	case <-time.After(time.Second):
		assert.Fail(t, "timed out waiting for consumer to stop")
	}

	mockStore.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestPurgeConsumer_SkipsMalformedMessage(t *testing.T) {
	mockMQ := new(mqmocks.MockMQ)
	mockStore := new(storemocks.MockStore)
	mockCache := new(cachemocks.MockCache)

	mockMQ.On("Receive", mock.Anything, mock.Anything).Return(&mq.Message{Id: "m1", Body: "{nope"}, nil).Once()
	mockMQ.On("Receive", mock.Anything, mock.Anything).Return(nil, context.Canceled)

	consumer := worker.NewPurgeConsumer(mockMQ, mockStore, mockCache)
	finished := make(chan struct{})
	go func() {
		consumer.Run(context.Background())
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		assert.Fail(t, "timed out waiting for consumer to stop")
	}

	mockStore.AssertNotCalled(t, "DeleteNote", mock.Anything, mock.Anything)
	mockMQ.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
