package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/wallyhq/wally/models"
	"github.com/wallyhq/wally/store"
)

// Idle users are evicted by the table's TTL after this long.
const userTTL = 90 * 24 * time.Hour

type DynamoWallyStore struct {
	client    *dynamodb.Client
	tableName string
}

func NewDynamoWallyStore(ctx context.Context, devMode bool, dynamodbEndpoint string, tableName string) (*DynamoWallyStore, error) {
	client, err := newDynamoDBClient(ctx, devMode, dynamodbEndpoint)
	if err != nil {
		return nil, err
	}

	tables, err := getTables(client, ctx)
	if err != nil {
		return nil, err
	}

	foundTable := false
	for _, table := range tables {
		if table == tableName {
			foundTable = true
			break
		}
	}
	if !foundTable {
		return nil, fmt.Errorf("given table name '%s' not found in dynamodb", tableName)
	}

	return &DynamoWallyStore{client: client, tableName: tableName}, nil
}

// Walls

func (dynamoStore *DynamoWallyStore) CreateWall(ctx context.Context, name string) (models.Wall, error) {
	wall := models.Wall{Name: name}
	if err := createItem(dynamoStore, ctx, wallToDynamo(wall)); err != nil {
		return models.Wall{}, err
	}
	return wall, nil
}

func (dynamoStore *DynamoWallyStore) GetWall(ctx context.Context, name string) (models.Wall, error) {
	dw, err := getItem[dynamoWall](dynamoStore, ctx, "WALL#"+name, "META")
	if err != nil {
		return models.Wall{}, err
	}
	return wallFromDynamo(dw), nil
}

func (dynamoStore *DynamoWallyStore) DeleteWall(ctx context.Context, name string) error {
	return deleteItem(dynamoStore, ctx, "WALL#"+name, "META")
}

func (dynamoStore *DynamoWallyStore) ListWalls(ctx context.Context) ([]string, error) {
	return queryGSIByType(dynamoStore, ctx, "WALL")
}

func wallSetAttr(kind models.EntityKind) string {
	switch kind {
	case models.KindNote:
		return "Notes"
	case models.KindLine:
		return "Lines"
	default:
		return "Images"
	}
}

func (dynamoStore *DynamoWallyStore) AddWallEntity(ctx context.Context, name string, kind models.EntityKind, id string) error {
	return modifyStringSet(dynamoStore, ctx, "WALL#"+name, "META", wallSetAttr(kind), id, true)
}

func (dynamoStore *DynamoWallyStore) RemoveWallEntity(ctx context.Context, name string, kind models.EntityKind, id string) error {
	return modifyStringSet(dynamoStore, ctx, "WALL#"+name, "META", wallSetAttr(kind), id, false)
}

// Notes

func (dynamoStore *DynamoWallyStore) PutNote(ctx context.Context, note models.Note) error {
	return putItem(dynamoStore, ctx, noteToDynamo(note))
}

func (dynamoStore *DynamoWallyStore) GetNotes(ctx context.Context, ids []string) ([]models.Note, error) {
	pks := make([]string, len(ids))
	for i, id := range ids {
		pks[i] = "NOTE#" + id
	}
	rows, err := batchGetItems[dynamoNote](dynamoStore, ctx, pks, "META")
	if err != nil {
		return nil, err
	}
	notes := make([]models.Note, len(rows))
	for i, row := range rows {
		notes[i] = noteFromDynamo(row)
	}
	return notes, nil
}

func (dynamoStore *DynamoWallyStore) SetNotePosition(ctx context.Context, id string, x, y float64) error {
	return updateFields(dynamoStore, ctx, "NOTE#"+id, "META", map[string]types.AttributeValue{
		"X": numberAttr(x),
		"Y": numberAttr(y),
	})
}

func (dynamoStore *DynamoWallyStore) SetNoteText(ctx context.Context, id string, text string) error {
	return updateFields(dynamoStore, ctx, "NOTE#"+id, "META", map[string]types.AttributeValue{
		"Text": &types.AttributeValueMemberS{Value: text},
	})
}

func (dynamoStore *DynamoWallyStore) DeleteNote(ctx context.Context, id string) error {
	return deleteItem(dynamoStore, ctx, "NOTE#"+id, "META")
}

// Lines

func (dynamoStore *DynamoWallyStore) PutLine(ctx context.Context, line models.Line) error {
	return putItem(dynamoStore, ctx, lineToDynamo(line))
}

func (dynamoStore *DynamoWallyStore) GetLines(ctx context.Context, ids []string) ([]models.Line, error) {
	pks := make([]string, len(ids))
	for i, id := range ids {
		pks[i] = "LINE#" + id
	}
	rows, err := batchGetItems[dynamoLine](dynamoStore, ctx, pks, "META")
	if err != nil {
		return nil, err
	}
	lines := make([]models.Line, len(rows))
	for i, row := range rows {
		lines[i] = lineFromDynamo(row)
	}
	return lines, nil
}

func (dynamoStore *DynamoWallyStore) AppendLinePoints(ctx context.Context, id string, points []models.Point) error {
	value, err := attributevalue.Marshal(points)
	if err != nil {
		return fmt.Errorf("marshal points: %w", err)
	}
	return appendToList(dynamoStore, ctx, "LINE#"+id, "META", "Points", value)
}

func (dynamoStore *DynamoWallyStore) SetLinePoints(ctx context.Context, id string, points []models.Point) error {
	value, err := attributevalue.Marshal(points)
	if err != nil {
		return fmt.Errorf("marshal points: %w", err)
	}
	return updateFields(dynamoStore, ctx, "LINE#"+id, "META", map[string]types.AttributeValue{
		"Points": value,
	})
}

func (dynamoStore *DynamoWallyStore) DeleteLine(ctx context.Context, id string) error {
	return deleteItem(dynamoStore, ctx, "LINE#"+id, "META")
}

// Images

func (dynamoStore *DynamoWallyStore) PutImage(ctx context.Context, image models.Image) error {
	return putItem(dynamoStore, ctx, imageToDynamo(image))
}

func (dynamoStore *DynamoWallyStore) GetImages(ctx context.Context, ids []string) ([]models.Image, error) {
	pks := make([]string, len(ids))
	for i, id := range ids {
		pks[i] = "IMAGE#" + id
	}
	rows, err := batchGetItems[dynamoImage](dynamoStore, ctx, pks, "META")
	if err != nil {
		return nil, err
	}
	images := make([]models.Image, len(rows))
	for i, row := range rows {
		images[i] = imageFromDynamo(row)
	}
	return images, nil
}

func (dynamoStore *DynamoWallyStore) UpdateImage(ctx context.Context, id string, x, y, width, height float64, zIndex int) error {
	return updateFields(dynamoStore, ctx, "IMAGE#"+id, "META", map[string]types.AttributeValue{
		"X":      numberAttr(x),
		"Y":      numberAttr(y),
		"Width":  numberAttr(width),
		"Height": numberAttr(height),
		"ZIndex": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", zIndex)},
	})
}

func (dynamoStore *DynamoWallyStore) DeleteImage(ctx context.Context, id string) error {
	return deleteItem(dynamoStore, ctx, "IMAGE#"+id, "META")
}

// Users

func (dynamoStore *DynamoWallyStore) GetUserByClient(ctx context.Context, clientId string) (models.User, error) {
	du, err := getItem[dynamoUser](dynamoStore, ctx, "USER#"+clientId, "PROFILE")
	if err != nil {
		return models.User{}, err
	}
	return userFromDynamo(du), nil
}

func (dynamoStore *DynamoWallyStore) PutUser(ctx context.Context, clientId string, user models.User) error {
	du := userToDynamo(clientId, user)
	now := time.Now()
	du.Created = now.Unix()
	du.ExpiresAt = now.Add(userTTL).Unix()
	return putItem(dynamoStore, ctx, du)
}

func (dynamoStore *DynamoWallyStore) GetUsersByClients(ctx context.Context, clientIds []string) ([]models.User, error) {
	pks := make([]string, len(clientIds))
	for i, clientId := range clientIds {
		pks[i] = "USER#" + clientId
	}
	rows, err := batchGetItems[dynamoUser](dynamoStore, ctx, pks, "PROFILE")
	if err != nil {
		return nil, err
	}
	users := make([]models.User, len(rows))
	for i, row := range rows {
		users[i] = userFromDynamo(row)
	}
	return users, nil
}

func (dynamoStore *DynamoWallyStore) UpdateUser(ctx context.Context, clientId string, user models.User) error {
	expiresAt := time.Now().Add(userTTL).Unix()
	return updateFields(dynamoStore, ctx, "USER#"+clientId, "PROFILE", map[string]types.AttributeValue{
		"Colour":       &types.AttributeValueMemberS{Value: user.Colour},
		"Name":         &types.AttributeValueMemberS{Value: user.Name},
		"UseNightMode": &types.AttributeValueMemberBOOL{Value: user.UseNightMode},
		"ExpiresAt":    &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", expiresAt)},
	})
}

// Binary data

func (dynamoStore *DynamoWallyStore) PutBinaryData(ctx context.Context, data models.BinaryData) error {
	return putItem(dynamoStore, ctx, binaryDataToDynamo(data))
}

func (dynamoStore *DynamoWallyStore) GetBinaryData(ctx context.Context, id string) (models.BinaryData, error) {
	db, err := getItem[dynamoBinaryData](dynamoStore, ctx, "DATA#"+id, "META")
	if err != nil {
		return models.BinaryData{}, err
	}
	return binaryDataFromDynamo(db), nil
}

func (dynamoStore *DynamoWallyStore) DeleteBinaryData(ctx context.Context, id string) error {
	return deleteItem(dynamoStore, ctx, "DATA#"+id, "META")
}

func numberAttr(f float64) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: fmt.Sprintf("%g", f)}
}

var _ store.WallyStore = (*DynamoWallyStore)(nil)
