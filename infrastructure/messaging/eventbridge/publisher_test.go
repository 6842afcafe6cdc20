package eventbridge

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"products-api/application/ports"
)

type mockPutEvents struct {
	mock.Mock
}

func (m *mockPutEvents) PutEvents(ctx context.Context, params *eventbridge.PutEventsInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*eventbridge.PutEventsOutput), args.Error(1)
}

func sampleEvent() ports.ChangeEvent {
	return ports.ChangeEvent{
		Type:       ports.EventProductCreated,
		ItemID:     "1",
		Data:       map[string]interface{}{"id": "1", "name": "pen"},
		OccurredAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestPublisher_Publish(t *testing.T) {
	ctx := context.Background()
	client := new(mockPutEvents)
	var captured *eventbridge.PutEventsInput
	client.On("PutEvents", ctx, mock.Anything).
		Run(func(args mock.Arguments) { captured = args.Get(1).(*eventbridge.PutEventsInput) }).
		Return(&eventbridge.PutEventsOutput{}, nil)

	err := NewPublisher(client, "products-bus", zap.NewNop()).Publish(ctx, sampleEvent())

	require.NoError(t, err)
	require.Len(t, captured.Entries, 1)
	entry := captured.Entries[0]
	assert.Equal(t, "products-bus", aws.ToString(entry.EventBusName))
	assert.Equal(t, DefaultSource, aws.ToString(entry.Source))
	assert.Equal(t, ports.EventProductCreated, aws.ToString(entry.DetailType))
	assert.Equal(t, []string{"product/1"}, entry.Resources)

	var detail ports.ChangeEvent
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(entry.Detail)), &detail))
	assert.Equal(t, "1", detail.ItemID)
	assert.Equal(t, "pen", detail.Data["name"])
}

func TestPublisher_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("Should return client errors", func(t *testing.T) {
		client := new(mockPutEvents)
		client.On("PutEvents", ctx, mock.Anything).Return(nil, errors.New("access denied"))

		err := NewPublisher(client, "bus", zap.NewNop()).Publish(ctx, sampleEvent())

		assert.ErrorContains(t, err, "access denied")
	})

	t.Run("Should report failed entries", func(t *testing.T) {
		client := new(mockPutEvents)
		client.On("PutEvents", ctx, mock.Anything).Return(&eventbridge.PutEventsOutput{
			FailedEntryCount: 1,
			Entries: []types.PutEventsResultEntry{
				{ErrorCode: aws.String("InternalFailure"), ErrorMessage: aws.String("try again")},
			},
		}, nil)

		err := NewPublisher(client, "bus", zap.NewNop()).Publish(ctx, sampleEvent())

		assert.EqualError(t, err, "1 events failed to publish")
	})
}
