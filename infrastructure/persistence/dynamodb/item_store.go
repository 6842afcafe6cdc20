// Package dynamodb implements the ItemStore port on a single DynamoDB
// table keyed by the string attribute "id".
package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"

	"products-api/application/ports"
)

// DynamoDBAPI is the subset of the DynamoDB client used by the store.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// ItemStore is a DynamoDB-backed ports.ItemStore.
type ItemStore struct {
	client    DynamoDBAPI
	tableName string
	pageSize  int32
	logger    *zap.Logger
}

// NewItemStore creates a store over tableName. pageSize <= 0 leaves the scan
// page size to DynamoDB (1 MB per page).
func NewItemStore(client DynamoDBAPI, tableName string, pageSize int, logger *zap.Logger) *ItemStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ItemStore{
		client:    client,
		tableName: tableName,
		pageSize:  int32(pageSize),
		logger:    logger,
	}
}

func keyOf(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		ports.KeyAttribute: &types.AttributeValueMemberS{Value: id},
	}
}

// Get retrieves an item by id with a strongly consistent read, so a get
// right after a write observes it.
func (s *ItemStore) Get(ctx context.Context, id string) (ports.Item, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.tableName),
		Key:            keyOf(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, s.classify("GetItem", id, err)
	}
	if len(out.Item) == 0 {
		return nil, ports.ErrItemNotFound
	}

	var item ports.Item
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal item %s: %w", id, err)
	}
	return item, nil
}

// Put writes an item unconditionally
func (s *ItemStore) Put(ctx context.Context, item ports.Item) error {
	av, err := attributevalue.MarshalMap(map[string]interface{}(item))
	if err != nil {
		return fmt.Errorf("%w: %v", ports.ErrInvalidItem, err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	})
	if err != nil {
		return s.classify("PutItem", item.ID(), err)
	}
	return nil
}

// Update sets attributes on an existing item and returns their new values
func (s *ItemStore) Update(ctx context.Context, id string, fields map[string]interface{}) (map[string]interface{}, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no attributes to update", ports.ErrInvalidItem)
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var updateExpr expression.UpdateBuilder
	for _, name := range names {
		updateExpr = updateExpr.Set(expression.Name(name), expression.Value(fields[name]))
	}

	expr, err := expression.NewBuilder().
		WithUpdate(updateExpr).
		WithCondition(expression.Name(ports.KeyAttribute).AttributeExists()).
		Build()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ports.ErrInvalidItem, err)
	}

	out, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.tableName),
		Key:                       keyOf(id),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueUpdatedNew,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return nil, ports.ErrItemNotFound
		}
		return nil, s.classify("UpdateItem", id, err)
	}

	updated := make(map[string]interface{}, len(out.Attributes))
	if err := attributevalue.UnmarshalMap(out.Attributes, &updated); err != nil {
		return nil, fmt.Errorf("failed to unmarshal updated attributes of %s: %w", id, err)
	}
	return updated, nil
}

// Delete removes an item and returns its prior state, nil when absent
func (s *ItemStore) Delete(ctx context.Context, id string) (ports.Item, error) {
	out, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:    aws.String(s.tableName),
		Key:          keyOf(id),
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return nil, s.classify("DeleteItem", id, err)
	}
	if len(out.Attributes) == 0 {
		return nil, nil
	}

	var prior ports.Item
	if err := attributevalue.UnmarshalMap(out.Attributes, &prior); err != nil {
		return nil, fmt.Errorf("failed to unmarshal deleted item %s: %w", id, err)
	}
	return prior, nil
}

// ScanPage reads one page of the table starting after cursor
func (s *ItemStore) ScanPage(ctx context.Context, cursor string) (ports.Page, error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(s.tableName),
	}
	if s.pageSize > 0 {
		input.Limit = aws.Int32(s.pageSize)
	}
	if cursor != "" {
		startKey, err := DecodeCursor(cursor)
		if err != nil {
			return ports.Page{}, err
		}
		input.ExclusiveStartKey = startKey
	}

	out, err := s.client.Scan(ctx, input)
	if err != nil {
		return ports.Page{}, s.classify("Scan", "", err)
	}

	page := ports.Page{Items: make([]ports.Item, 0, len(out.Items))}
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &page.Items); err != nil {
		return ports.Page{}, fmt.Errorf("failed to unmarshal scanned items: %w", err)
	}

	next, err := EncodeCursor(out.LastEvaluatedKey)
	if err != nil {
		return ports.Page{}, err
	}
	page.Next = next
	return page, nil
}

// classify maps DynamoDB API errors onto port errors and logs the code.
func (s *ItemStore) classify(operation, id string, err error) error {
	var ae smithy.APIError
	if !errors.As(err, &ae) {
		return fmt.Errorf("dynamodb %s failed: %w", operation, err)
	}

	s.logger.Warn("DynamoDB request failed",
		zap.String("operation", operation),
		zap.String("table", s.tableName),
		zap.String("id", id),
		zap.String("code", ae.ErrorCode()),
		zap.String("message", ae.ErrorMessage()))

	switch ae.ErrorCode() {
	case "ValidationException":
		return fmt.Errorf("%w: %s", ports.ErrInvalidItem, ae.ErrorMessage())
	default:
		return fmt.Errorf("dynamodb %s failed (%s): %w", operation, ae.ErrorCode(), err)
	}
}
