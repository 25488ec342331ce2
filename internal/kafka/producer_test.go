package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"employee-service/internal/employee"
	"employee-service/internal/metrics"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ employee.Producer = (*Producer)(nil)

func TestProducer_SendMessage(t *testing.T) {
	mock := mocks.NewSyncProducer(t, NewConfig())
	producer := NewProducerWithClient(mock, "employees.events", slog.Default(), metrics.NewMock())
	defer producer.Close()

	event := employee.EmployeeEvent{
		Type:       employee.EventCreated,
		EmployeeID: 42,
		Email:      "ada@example.com",
		OccurredAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	mock.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		assert.Equal(t, "employees.events", msg.Topic)

		key, err := msg.Key.Encode()
		require.NoError(t, err)
		assert.Equal(t, "42", string(key))

		value, err := msg.Value.Encode()
		require.NoError(t, err)

		var got employee.EmployeeEvent
		require.NoError(t, json.Unmarshal(value, &got))
		assert.Equal(t, event, got)
		return nil
	})

	err := producer.SendMessage(context.Background(), "42", event)
	assert.NoError(t, err)
}

func TestProducer_SendMessageFailure(t *testing.T) {
	mock := mocks.NewSyncProducer(t, NewConfig())
	producer := NewProducerWithClient(mock, "employees.events", slog.Default(), metrics.NewMock())
	defer producer.Close()

	brokerErr := errors.New("broker unavailable")
	mock.ExpectSendMessageAndFail(brokerErr)

	err := producer.SendMessage(context.Background(), "1", employee.EmployeeEvent{Type: employee.EventDeleted})
	assert.ErrorIs(t, err, brokerErr)
}

func TestProducer_SendMessageCancelledContext(t *testing.T) {
	mock := mocks.NewSyncProducer(t, NewConfig())
	producer := NewProducerWithClient(mock, "employees.events", slog.Default(), metrics.NewMock())
	defer producer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := producer.SendMessage(ctx, "1", employee.EmployeeEvent{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProducer_SendMessageUnmarshalable(t *testing.T) {
	mock := mocks.NewSyncProducer(t, NewConfig())
	producer := NewProducerWithClient(mock, "employees.events", slog.Default(), metrics.NewMock())
	defer producer.Close()

	err := producer.SendMessage(context.Background(), "1", make(chan int))
	assert.Error(t, err)
}
