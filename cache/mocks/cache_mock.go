package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/wallyhq/wally/models"
)

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Publish(ctx context.Context, channel string, message []byte) error {
	args := m.Called(ctx, channel, message)
	return args.Error(0)
}

func (m *MockCache) Subscribe(ctx context.Context, channel string, handler func(message []byte)) error {
	args := m.Called(ctx, channel, handler)
	return args.Error(0)
}

func (m *MockCache) GetWallEntities(ctx context.Context, wallName string) ([]byte, bool, error) {
	args := m.Called(ctx, wallName)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]byte), args.Bool(1), args.Error(2)
}

func (m *MockCache) SetWallEntities(ctx context.Context, wallName string, snapshot []byte) error {
	args := m.Called(ctx, wallName, snapshot)
	return args.Error(0)
}

func (m *MockCache) InvalidateWall(ctx context.Context, wallName string) error {
	args := m.Called(ctx, wallName)
	return args.Error(0)
}

func (m *MockCache) GetUser(ctx context.Context, clientId string) (models.User, bool, error) {
	args := m.Called(ctx, clientId)
	return args.Get(0).(models.User), args.Bool(1), args.Error(2)
}

func (m *MockCache) SetUser(ctx context.Context, clientId string, user models.User) error {
	args := m.Called(ctx, clientId, user)
	return args.Error(0)
}

func (m *MockCache) InvalidateUser(ctx context.Context, clientId string) error {
	args := m.Called(ctx, clientId)
	return args.Error(0)
}
