package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wallyhq/wally/models"
	"github.com/wallyhq/wally/store"
)

func TestGetWallState(t *testing.T) {
	h := setupService(t)
	ctx := context.Background()

	h.store.On("GetWall", mock.Anything, "board").Return(models.Wall{
		Name:  "board",
		Notes: []string{"n1"},
		Lines: []string{"l1"},
	}, nil)
	h.cache.On("GetWallEntities", mock.Anything, "board").Return([]byte(nil), false, nil)
	h.store.On("GetNotes", mock.Anything, []string{"n1"}).Return([]models.Note{{Id: "n1", Text: "hi"}}, nil)
	h.store.On("GetLines", mock.Anything, []string{"l1"}).Return([]models.Line{{Id: "l1", Points: []models.Point{{0, 0}, {1, 1}}, Colour: "red", Width: "2"}}, nil)
	h.store.On("GetImages", mock.Anything, []string(nil)).Return([]models.Image(nil), nil)
	h.cache.On("SetWallEntities", mock.Anything, "board", mock.Anything).Return(nil)

	state, err := h.svc.GetWallState(ctx, "board")
	require.NoError(t, err)
	assert.Equal(t, "board", state.Name)
	require.Len(t, state.Notes, 1)
	assert.Equal(t, "hi", state.Notes[0].Text)
	require.Len(t, state.Lines, 1)
	assert.Equal(t, "l1", state.Lines[0].Id)
	assert.Empty(t, state.Images)
	assert.Empty(t, state.Users)
	assert.Empty(t, state.Selected)
}

func TestGetImageData(t *testing.T) {
	tests := []struct {
		name        string
		stored      string
		contentType string
		payload     string
	}{
		{
			"Base64 Data URL",
			"data:image/png;base64,aGVsbG8=",
			"image/png",
			"hello",
		},
		{
			"Plain Data URL",
			"data:text/plain,hello",
			"text/plain",
			"hello",
		},
		{
			"Not A Data URL",
			"just bytes",
			"text/plain",
			"just bytes",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := setupService(t)
			h.store.On("GetBinaryData", mock.Anything, "i1").Return(models.BinaryData{Id: "i1", Data: tc.stored}, nil)

			contentType, payload, err := h.svc.GetImageData(context.Background(), "i1")
			require.NoError(t, err)
			assert.Equal(t, tc.contentType, contentType)
			assert.Equal(t, tc.payload, string(payload))
		})
	}
}

func TestGetImageData_Missing(t *testing.T) {
	h := setupService(t)
	h.store.On("GetBinaryData", mock.Anything, "ghost").Return(models.BinaryData{}, store.ErrItemNotFound)

	_, _, err := h.svc.GetImageData(context.Background(), "ghost")
	assert.ErrorIs(t, err, store.ErrItemNotFound)
}
