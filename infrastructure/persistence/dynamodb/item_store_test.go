package dynamodb

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"products-api/application/ports"
)

type mockDynamoDB struct {
	mock.Mock
}

func (m *mockDynamoDB) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.GetItemOutput), args.Error(1)
}

func (m *mockDynamoDB) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.PutItemOutput), args.Error(1)
}

func (m *mockDynamoDB) UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.UpdateItemOutput), args.Error(1)
}

func (m *mockDynamoDB) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.DeleteItemOutput), args.Error(1)
}

func (m *mockDynamoDB) Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.ScanOutput), args.Error(1)
}

func keyID(key map[string]types.AttributeValue) string {
	if s, ok := key["id"].(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func newStore(client DynamoDBAPI, pageSize int) *ItemStore {
	return NewItemStore(client, "products", pageSize, zap.NewNop())
}

func TestItemStore_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("Should unmarshal stored item", func(t *testing.T) {
		client := new(mockDynamoDB)
		client.On("GetItem", ctx, mock.MatchedBy(func(in *dynamodb.GetItemInput) bool {
			return aws.ToString(in.TableName) == "products" && keyID(in.Key) == "1" &&
				aws.ToBool(in.ConsistentRead)
		})).Return(&dynamodb.GetItemOutput{Item: map[string]types.AttributeValue{
			"id":    &types.AttributeValueMemberS{Value: "1"},
			"name":  &types.AttributeValueMemberS{Value: "pen"},
			"price": &types.AttributeValueMemberN{Value: "1.5"},
		}}, nil)

		item, err := newStore(client, 0).Get(ctx, "1")

		require.NoError(t, err)
		assert.Equal(t, ports.Item{"id": "1", "name": "pen", "price": 1.5}, item)
		client.AssertExpectations(t)
	})

	t.Run("Should report missing item", func(t *testing.T) {
		client := new(mockDynamoDB)
		client.On("GetItem", ctx, mock.Anything).Return(&dynamodb.GetItemOutput{}, nil)

		_, err := newStore(client, 0).Get(ctx, "missing")

		assert.ErrorIs(t, err, ports.ErrItemNotFound)
	})

	t.Run("Should wrap API errors with their code", func(t *testing.T) {
		client := new(mockDynamoDB)
		apiErr := &smithy.GenericAPIError{Code: "ProvisionedThroughputExceededException", Message: "slow down"}
		client.On("GetItem", ctx, mock.Anything).Return(nil, apiErr)

		_, err := newStore(client, 0).Get(ctx, "1")

		require.Error(t, err)
		assert.ErrorIs(t, err, apiErr)
		assert.Contains(t, err.Error(), "ProvisionedThroughputExceededException")
		assert.NotErrorIs(t, err, ports.ErrItemNotFound)
	})
}

func TestItemStore_Put(t *testing.T) {
	ctx := context.Background()

	t.Run("Should write the whole item", func(t *testing.T) {
		client := new(mockDynamoDB)
		client.On("PutItem", ctx, mock.MatchedBy(func(in *dynamodb.PutItemInput) bool {
			name, ok := in.Item["name"].(*types.AttributeValueMemberS)
			return keyID(in.Item) == "7" && ok && name.Value == "pen" && in.ConditionExpression == nil
		})).Return(&dynamodb.PutItemOutput{}, nil)

		err := newStore(client, 0).Put(ctx, ports.Item{"id": "7", "name": "pen"})

		require.NoError(t, err)
		client.AssertExpectations(t)
	})

	t.Run("Should map validation exceptions to invalid item", func(t *testing.T) {
		client := new(mockDynamoDB)
		client.On("PutItem", ctx, mock.Anything).
			Return(nil, &smithy.GenericAPIError{Code: "ValidationException", Message: "Item size has exceeded the maximum allowed size"})

		err := newStore(client, 0).Put(ctx, ports.Item{"id": "7"})

		assert.ErrorIs(t, err, ports.ErrInvalidItem)
		assert.Contains(t, err.Error(), "maximum allowed size")
	})
}

func TestItemStore_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("Should issue a conditional update and return new values", func(t *testing.T) {
		client := new(mockDynamoDB)
		client.On("UpdateItem", ctx, mock.MatchedBy(func(in *dynamodb.UpdateItemInput) bool {
			return keyID(in.Key) == "1" &&
				in.ReturnValues == types.ReturnValueUpdatedNew &&
				in.ConditionExpression != nil &&
				in.UpdateExpression != nil &&
				len(in.ExpressionAttributeValues) == 2
		})).Return(&dynamodb.UpdateItemOutput{Attributes: map[string]types.AttributeValue{
			"name":  &types.AttributeValueMemberS{Value: "marker"},
			"price": &types.AttributeValueMemberN{Value: "3"},
		}}, nil)

		updated, err := newStore(client, 0).Update(ctx, "1", map[string]interface{}{"name": "marker", "price": 3})

		require.NoError(t, err)
		assert.Equal(t, map[string]interface{}{"name": "marker", "price": float64(3)}, updated)
		client.AssertExpectations(t)
	})

	t.Run("Should report missing item on failed condition", func(t *testing.T) {
		client := new(mockDynamoDB)
		client.On("UpdateItem", ctx, mock.Anything).
			Return(nil, &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")})

		_, err := newStore(client, 0).Update(ctx, "404", map[string]interface{}{"name": "x"})

		assert.ErrorIs(t, err, ports.ErrItemNotFound)
	})

	t.Run("Should reject empty updates without calling DynamoDB", func(t *testing.T) {
		client := new(mockDynamoDB)

		_, err := newStore(client, 0).Update(ctx, "1", map[string]interface{}{})

		assert.ErrorIs(t, err, ports.ErrInvalidItem)
		client.AssertNotCalled(t, "UpdateItem", mock.Anything, mock.Anything)
	})
}

func TestItemStore_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("Should return prior item", func(t *testing.T) {
		client := new(mockDynamoDB)
		client.On("DeleteItem", ctx, mock.MatchedBy(func(in *dynamodb.DeleteItemInput) bool {
			return keyID(in.Key) == "1" && in.ReturnValues == types.ReturnValueAllOld
		})).Return(&dynamodb.DeleteItemOutput{Attributes: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: "1"},
		}}, nil)

		prior, err := newStore(client, 0).Delete(ctx, "1")

		require.NoError(t, err)
		assert.Equal(t, ports.Item{"id": "1"}, prior)
	})

	t.Run("Should return nil for absent item", func(t *testing.T) {
		client := new(mockDynamoDB)
		client.On("DeleteItem", ctx, mock.Anything).Return(&dynamodb.DeleteItemOutput{}, nil)

		prior, err := newStore(client, 0).Delete(ctx, "1")

		require.NoError(t, err)
		assert.Nil(t, prior)
	})

	t.Run("Should propagate transport errors", func(t *testing.T) {
		client := new(mockDynamoDB)
		client.On("DeleteItem", ctx, mock.Anything).Return(nil, errors.New("connection reset"))

		_, err := newStore(client, 0).Delete(ctx, "1")

		assert.ErrorContains(t, err, "dynamodb DeleteItem failed")
	})
}

func TestItemStore_ScanPage(t *testing.T) {
	ctx := context.Background()
	lastKey := map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: "b"}}

	client := new(mockDynamoDB)
	client.On("Scan", ctx, mock.MatchedBy(func(in *dynamodb.ScanInput) bool {
		return in.ExclusiveStartKey == nil && aws.ToInt32(in.Limit) == 2
	})).Return(&dynamodb.ScanOutput{
		Items: []map[string]types.AttributeValue{
			{"id": &types.AttributeValueMemberS{Value: "a"}},
			{"id": &types.AttributeValueMemberS{Value: "b"}},
		},
		LastEvaluatedKey: lastKey,
	}, nil).Once()
	client.On("Scan", ctx, mock.MatchedBy(func(in *dynamodb.ScanInput) bool {
		return keyID(in.ExclusiveStartKey) == "b"
	})).Return(&dynamodb.ScanOutput{
		Items: []map[string]types.AttributeValue{
			{"id": &types.AttributeValueMemberS{Value: "c"}},
		},
	}, nil).Once()

	store := newStore(client, 2)

	first, err := store.ScanPage(ctx, "")
	require.NoError(t, err)
	require.NotEmpty(t, first.Next)
	assert.Equal(t, []ports.Item{{"id": "a"}, {"id": "b"}}, first.Items)

	second, err := store.ScanPage(ctx, first.Next)
	require.NoError(t, err)
	assert.Empty(t, second.Next)
	assert.Equal(t, []ports.Item{{"id": "c"}}, second.Items)

	client.AssertExpectations(t)
}

func TestItemStore_ScanPageRejectsForeignCursor(t *testing.T) {
	client := new(mockDynamoDB)

	_, err := newStore(client, 0).ScanPage(context.Background(), "%%%not-base64")

	assert.ErrorIs(t, err, ErrInvalidCursor)
	client.AssertNotCalled(t, "Scan", mock.Anything, mock.Anything)
}

func TestCursorRoundTrip(t *testing.T) {
	key := map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: "p-9"}}

	cursor, err := EncodeCursor(key)
	require.NoError(t, err)
	decoded, err := DecodeCursor(cursor)
	require.NoError(t, err)

	assert.Equal(t, "p-9", keyID(decoded))

	empty, err := EncodeCursor(nil)
	require.NoError(t, err)
	assert.Equal(t, "", empty)
}
