package store

import (
	"context"
	"errors"

	"github.com/wallyhq/wally/models"
)

// WallyStore is the persistence boundary: one logical table per entity
// kind, rows addressed by string id, no cross-entity transactions.
// Batch gets silently skip missing ids; callers treat the ownership
// sets on a wall as advisory and filter what actually came back.
type WallyStore interface {
	// Walls
	CreateWall(ctx context.Context, name string) (models.Wall, error)
	GetWall(ctx context.Context, name string) (models.Wall, error)
	DeleteWall(ctx context.Context, name string) error
	ListWalls(ctx context.Context) ([]string, error)
	AddWallEntity(ctx context.Context, name string, kind models.EntityKind, id string) error
	RemoveWallEntity(ctx context.Context, name string, kind models.EntityKind, id string) error

	// Notes
	PutNote(ctx context.Context, note models.Note) error
	GetNotes(ctx context.Context, ids []string) ([]models.Note, error)
	SetNotePosition(ctx context.Context, id string, x, y float64) error
	SetNoteText(ctx context.Context, id string, text string) error
	DeleteNote(ctx context.Context, id string) error

	// Lines
	PutLine(ctx context.Context, line models.Line) error
	GetLines(ctx context.Context, ids []string) ([]models.Line, error)
	AppendLinePoints(ctx context.Context, id string, points []models.Point) error
	SetLinePoints(ctx context.Context, id string, points []models.Point) error
	DeleteLine(ctx context.Context, id string) error

	// Images
	PutImage(ctx context.Context, image models.Image) error
	GetImages(ctx context.Context, ids []string) ([]models.Image, error)
	UpdateImage(ctx context.Context, id string, x, y, width, height float64, zIndex int) error
	DeleteImage(ctx context.Context, id string) error

	// Users, keyed by the durable browser client id
	GetUserByClient(ctx context.Context, clientId string) (models.User, error)
	PutUser(ctx context.Context, clientId string, user models.User) error
	GetUsersByClients(ctx context.Context, clientIds []string) ([]models.User, error)
	UpdateUser(ctx context.Context, clientId string, user models.User) error

	// Binary payloads, keyed by the owning image id
	PutBinaryData(ctx context.Context, data models.BinaryData) error
	GetBinaryData(ctx context.Context, id string) (models.BinaryData, error)
	DeleteBinaryData(ctx context.Context, id string) error
}

var (
	ErrItemNotFound  = errors.New("item does not exist")
	ErrAlreadyExists = errors.New("item already exists")
)
