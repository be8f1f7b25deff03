package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/wallyhq/wally/store"
)

func newDynamoDBClient(ctx context.Context, devMode bool, dynamodbEndpoint string) (*dynamodb.Client, error) {
	var cfg aws.Config
	var err error

	if devMode {
		// Dummy credentials and a local endpoint for dev
		cfg, err = config.LoadDefaultConfig(ctx,
			config.WithRegion("us-east-1"),
			config.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider("dummy", "dummy", ""),
			),
		)
		if err != nil {
			return nil, err
		}

		return dynamodb.New(dynamodb.Options{
			Credentials:      cfg.Credentials,
			Region:           cfg.Region,
			EndpointResolver: dynamodb.EndpointResolverFromURL(dynamodbEndpoint),
		}), nil
	}

	// Production: default config (task role and AWS endpoints)
	cfg, err = config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}

	return dynamodb.NewFromConfig(cfg), nil
}

func getTables(client *dynamodb.Client, ctx context.Context) ([]string, error) {
	output, err := client.ListTables(ctx, &dynamodb.ListTablesInput{})
	if err != nil {
		return nil, err
	}
	return output.TableNames, nil
}

func rowKey(pk string, sk string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: pk},
		"SK": &types.AttributeValueMemberS{Value: sk},
	}
}

// getItem retrieves a row of type T by PK and SK.
func getItem[T any](dynamoStore *DynamoWallyStore, ctx context.Context, pk string, sk string) (T, error) {
	var zero T

	resp, err := dynamoStore.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(dynamoStore.tableName),
		Key:       rowKey(pk, sk),
	})
	if err != nil {
		return zero, fmt.Errorf("GetItem failed: %w", err)
	}
	if resp.Item == nil {
		return zero, store.ErrItemNotFound
	}

	var item T
	if err := attributevalue.UnmarshalMap(resp.Item, &item); err != nil {
		return zero, fmt.Errorf("failed to unmarshal item: %w", err)
	}
	return item, nil
}

// putItem writes a row unconditionally, replacing any existing one.
func putItem[T any](dynamoStore *DynamoWallyStore, ctx context.Context, item T) error {
	avMap, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}

	_, err = dynamoStore.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(dynamoStore.tableName),
		Item:      avMap,
	})
	if err != nil {
		return fmt.Errorf("PutItem failed: %w", err)
	}
	return nil
}

// createItem writes a row only if its PK does not exist yet. Returns
// store.ErrAlreadyExists when the conditional check fails; this is the
// backstop behind every racy check-then-create.
func createItem[T any](dynamoStore *DynamoWallyStore, ctx context.Context, item T) error {
	avMap, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}

	_, err = dynamoStore.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(dynamoStore.tableName),
		Item:                avMap,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		var cce *types.ConditionalCheckFailedException
		if errors.As(err, &cce) {
			return store.ErrAlreadyExists
		}
		return fmt.Errorf("conditional PutItem failed: %w", err)
	}
	return nil
}

func deleteItem(dynamoStore *DynamoWallyStore, ctx context.Context, pk string, sk string) error {
	_, err := dynamoStore.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(dynamoStore.tableName),
		Key:       rowKey(pk, sk),
	})
	if err != nil {
		return fmt.Errorf("DeleteItem failed: %w", err)
	}
	return nil
}

// updateFields applies a SET of the given attribute values to an
// existing row. Missing rows upsert a bare row; the engine only calls
// this for ids it just read, so that race is tolerated.
func updateFields(dynamoStore *DynamoWallyStore, ctx context.Context, pk string, sk string, fields map[string]types.AttributeValue) error {
	expr := "SET "
	names := make(map[string]string, len(fields))
	values := make(map[string]types.AttributeValue, len(fields))
	i := 0
	for name, value := range fields {
		if i > 0 {
			expr += ", "
		}
		nameKey := fmt.Sprintf("#f%d", i)
		valueKey := fmt.Sprintf(":v%d", i)
		expr += nameKey + " = " + valueKey
		names[nameKey] = name
		values[valueKey] = value
		i++
	}

	_, err := dynamoStore.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(dynamoStore.tableName),
		Key:                       rowKey(pk, sk),
		UpdateExpression:          aws.String(expr),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	if err != nil {
		return fmt.Errorf("UpdateItem failed: %w", err)
	}
	return nil
}

// modifyStringSet adds or removes a single member of a string-set
// attribute. ADD creates the set when absent; DELETE of the final
// member drops the attribute, which unmarshals back to an empty slice.
func modifyStringSet(dynamoStore *DynamoWallyStore, ctx context.Context, pk string, sk string, attr string, member string, add bool) error {
	op := "DELETE"
	if add {
		op = "ADD"
	}

	_, err := dynamoStore.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(dynamoStore.tableName),
		Key:              rowKey(pk, sk),
		UpdateExpression: aws.String(op + " #attr :member"),
		ExpressionAttributeNames: map[string]string{
			"#attr": attr,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":member": &types.AttributeValueMemberSS{Value: []string{member}},
		},
		// Never resurrect a deleted wall row via set modification
		ConditionExpression: aws.String("attribute_exists(PK)"),
	})
	if err != nil {
		var cce *types.ConditionalCheckFailedException
		if errors.As(err, &cce) {
			return store.ErrItemNotFound
		}
		return fmt.Errorf("UpdateItem (%s %s) failed: %w", op, attr, err)
	}
	return nil
}

// appendToList appends values to a list attribute, creating it first if
// the row never had one.
func appendToList(dynamoStore *DynamoWallyStore, ctx context.Context, pk string, sk string, attr string, value types.AttributeValue) error {
	_, err := dynamoStore.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(dynamoStore.tableName),
		Key:              rowKey(pk, sk),
		UpdateExpression: aws.String("SET #attr = list_append(if_not_exists(#attr, :empty), :points)"),
		ExpressionAttributeNames: map[string]string{
			"#attr": attr,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":points": value,
			":empty":  &types.AttributeValueMemberL{Value: []types.AttributeValue{}},
		},
		ConditionExpression: aws.String("attribute_exists(PK)"),
	})
	if err != nil {
		var cce *types.ConditionalCheckFailedException
		if errors.As(err, &cce) {
			return store.ErrItemNotFound
		}
		return fmt.Errorf("UpdateItem (append %s) failed: %w", attr, err)
	}
	return nil
}

const batchGetChunk = 100

// batchGetItems fetches rows of type T for the given PKs, skipping
// missing ones. Unprocessed keys are re-requested until the response
// drains; DynamoDB guarantees forward progress per round trip.
func batchGetItems[T any](dynamoStore *DynamoWallyStore, ctx context.Context, pks []string, sk string) ([]T, error) {
	results := make([]T, 0, len(pks))

	for start := 0; start < len(pks); start += batchGetChunk {
		end := start + batchGetChunk
		if end > len(pks) {
			end = len(pks)
		}

		keys := make([]map[string]types.AttributeValue, 0, end-start)
		for _, pk := range pks[start:end] {
			keys = append(keys, rowKey(pk, sk))
		}

		for len(keys) > 0 {
			resp, err := dynamoStore.client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{
				RequestItems: map[string]types.KeysAndAttributes{
					dynamoStore.tableName: {Keys: keys},
				},
			})
			if err != nil {
				return nil, fmt.Errorf("BatchGetItem failed: %w", err)
			}

			var chunk []T
			if err := attributevalue.UnmarshalListOfMaps(resp.Responses[dynamoStore.tableName], &chunk); err != nil {
				return nil, fmt.Errorf("failed to unmarshal batch items: %w", err)
			}
			results = append(results, chunk...)

			keys = nil
			if unprocessed, ok := resp.UnprocessedKeys[dynamoStore.tableName]; ok {
				keys = unprocessed.Keys
			}
		}
	}

	return results, nil
}

// queryGSIByType lists the Name attribute of every row with the given
// EntityType, via the GSI_EntityType index.
func queryGSIByType(dynamoStore *DynamoWallyStore, ctx context.Context, entityType string) ([]string, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(dynamoStore.tableName),
		IndexName:              aws.String("GSI_EntityType"),
		KeyConditionExpression: aws.String("EntityType = :t"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t": &types.AttributeValueMemberS{Value: entityType},
		},
		ProjectionExpression: aws.String("#n"),
		ExpressionAttributeNames: map[string]string{
			"#n": "Name",
		},
	}

	var names []string
	paginator := dynamodb.NewQueryPaginator(dynamoStore.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("query failed: %w", err)
		}

		var rows []struct {
			Name string `dynamodbav:"Name"`
		}
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &rows); err != nil {
			return nil, fmt.Errorf("failed to unmarshal page items: %w", err)
		}
		for _, row := range rows {
			names = append(names, row.Name)
		}
	}

	return names, nil
}
