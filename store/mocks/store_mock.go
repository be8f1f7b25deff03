package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/wallyhq/wally/models"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) CreateWall(ctx context.Context, name string) (models.Wall, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(models.Wall), args.Error(1)
}

func (m *MockStore) GetWall(ctx context.Context, name string) (models.Wall, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(models.Wall), args.Error(1)
}

func (m *MockStore) DeleteWall(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockStore) ListWalls(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockStore) AddWallEntity(ctx context.Context, name string, kind models.EntityKind, id string) error {
	args := m.Called(ctx, name, kind, id)
	return args.Error(0)
}

func (m *MockStore) RemoveWallEntity(ctx context.Context, name string, kind models.EntityKind, id string) error {
	args := m.Called(ctx, name, kind, id)
	return args.Error(0)
}

func (m *MockStore) PutNote(ctx context.Context, note models.Note) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}

func (m *MockStore) GetNotes(ctx context.Context, ids []string) ([]models.Note, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]models.Note), args.Error(1)
}

func (m *MockStore) SetNotePosition(ctx context.Context, id string, x, y float64) error {
	args := m.Called(ctx, id, x, y)
	return args.Error(0)
}

func (m *MockStore) SetNoteText(ctx context.Context, id string, text string) error {
	args := m.Called(ctx, id, text)
	return args.Error(0)
}

func (m *MockStore) DeleteNote(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStore) PutLine(ctx context.Context, line models.Line) error {
	args := m.Called(ctx, line)
	return args.Error(0)
}

func (m *MockStore) GetLines(ctx context.Context, ids []string) ([]models.Line, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]models.Line), args.Error(1)
}

func (m *MockStore) AppendLinePoints(ctx context.Context, id string, points []models.Point) error {
	args := m.Called(ctx, id, points)
	return args.Error(0)
}

func (m *MockStore) SetLinePoints(ctx context.Context, id string, points []models.Point) error {
	args := m.Called(ctx, id, points)
	return args.Error(0)
}

func (m *MockStore) DeleteLine(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStore) PutImage(ctx context.Context, image models.Image) error {
	args := m.Called(ctx, image)
	return args.Error(0)
}

func (m *MockStore) GetImages(ctx context.Context, ids []string) ([]models.Image, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]models.Image), args.Error(1)
}

func (m *MockStore) UpdateImage(ctx context.Context, id string, x, y, width, height float64, zIndex int) error {
	args := m.Called(ctx, id, x, y, width, height, zIndex)
	return args.Error(0)
}

func (m *MockStore) DeleteImage(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStore) GetUserByClient(ctx context.Context, clientId string) (models.User, error) {
	args := m.Called(ctx, clientId)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *MockStore) PutUser(ctx context.Context, clientId string, user models.User) error {
	args := m.Called(ctx, clientId, user)
	return args.Error(0)
}

func (m *MockStore) GetUsersByClients(ctx context.Context, clientIds []string) ([]models.User, error) {
	args := m.Called(ctx, clientIds)
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockStore) UpdateUser(ctx context.Context, clientId string, user models.User) error {
	args := m.Called(ctx, clientId, user)
	return args.Error(0)
}

func (m *MockStore) PutBinaryData(ctx context.Context, data models.BinaryData) error {
	args := m.Called(ctx, data)
	return args.Error(0)
}

func (m *MockStore) GetBinaryData(ctx context.Context, id string) (models.BinaryData, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.BinaryData), args.Error(1)
}

func (m *MockStore) DeleteBinaryData(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
