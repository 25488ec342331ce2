package messaging

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"employee-service/internal/employee"
	"employee-service/internal/metrics"
	"employee-service/testing/testnats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ employee.Producer = (*Producer)(nil)

func TestProducer_Shared(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	natsContainer := testnats.SetupSharedNATS(t)
	defer natsContainer.Cleanup(t)

	const subject = "employees.events"

	t.Run("publishes event with key header", func(t *testing.T) {
		sub := natsContainer.Subscribe(t, subject)

		producer, err := NewProducer(natsContainer.URL, subject, slog.Default(), metrics.NewMock())
		require.NoError(t, err)
		defer producer.Close()

		event := employee.EmployeeEvent{
			Type:       employee.EventUpdated,
			EmployeeID: 7,
			Email:      "grace@example.com",
			OccurredAt: time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC),
		}
		require.NoError(t, producer.SendMessage(context.Background(), "7", event))

		msg, err := sub.NextMsg(5 * time.Second)
		require.NoError(t, err)
		assert.Equal(t, "7", msg.Header.Get(KeyHeader))

		var got employee.EmployeeEvent
		require.NoError(t, json.Unmarshal(msg.Data, &got))
		assert.Equal(t, event, got)
	})

	t.Run("cancelled context is not published", func(t *testing.T) {
		producer, err := NewProducer(natsContainer.URL, subject, slog.Default(), metrics.NewMock())
		require.NoError(t, err)
		defer producer.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		assert.ErrorIs(t, producer.SendMessage(ctx, "1", employee.EmployeeEvent{}), context.Canceled)
	})

	t.Run("unreachable server", func(t *testing.T) {
		_, err := NewProducer("nats://127.0.0.1:1", subject, slog.Default(), metrics.NewMock())
		assert.Error(t, err)
	})
}
