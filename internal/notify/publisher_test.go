package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/pennywise/internal/planned"
	"github.com/MrJamesThe3rd/pennywise/internal/transaction"
)

type fakeChannel struct {
	exchange string
	key      string
	msg      amqp091.Publishing
	err      error
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp091.Publishing) error {
	f.exchange = exchange
	f.key = key
	f.msg = msg

	return f.err
}

func (f *fakeChannel) Close() error { return nil }

func execution() planned.Execution {
	next := time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC)
	user := uuid.New()

	return planned.Execution{
		Payment: &planned.PlannedPayment{
			ID:                uuid.New(),
			UserID:            user,
			Amount:            decimal.RequireFromString("21000.00"),
			NextExecutionDate: &next,
		},
		Transaction: &transaction.Transaction{ID: uuid.New(), UserID: user},
		ExecutedOn:  time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
	}
}

func TestPublisher_PaymentExecuted(t *testing.T) {
	ch := &fakeChannel{}
	p := &Publisher{ch: ch, exchange: "pennywise.planned", queue: "planned.executed", now: time.Now}

	e := execution()
	require.NoError(t, p.PaymentExecuted(context.Background(), e))

	assert.Equal(t, "pennywise.planned", ch.exchange)
	assert.Equal(t, "planned.executed", ch.key)
	assert.Equal(t, amqp091.Persistent, ch.msg.DeliveryMode)
	assert.Equal(t, "application/json", ch.msg.ContentType)

	msg, err := ExecutedMessageFromJSON(ch.msg.Body)
	require.NoError(t, err)
	assert.Equal(t, e.Payment.ID, msg.PlannedPaymentID)
	assert.Equal(t, e.Transaction.ID, msg.TransactionID)
	assert.Equal(t, "2024-01-05", msg.ExecutedOn)
	require.NotNil(t, msg.NextExecutionDate)
	assert.Equal(t, "2024-02-05", *msg.NextExecutionDate)
	assert.True(t, e.Payment.Amount.Equal(msg.Amount))
}

func TestPublisher_PublishError(t *testing.T) {
	ch := &fakeChannel{err: errors.New("channel closed")}
	p := &Publisher{ch: ch, now: time.Now}

	err := p.PaymentExecuted(context.Background(), execution())
	assert.ErrorContains(t, err, "channel closed")
}

func TestNewExecutedMessage_Finished(t *testing.T) {
	e := execution()
	e.Payment.NextExecutionDate = nil

	body, err := NewExecutedMessage(e).ToJSON()
	require.NoError(t, err)
	assert.Contains(t, string(body), `"next_execution_date":null`)
	assert.Contains(t, string(body), `"amount":"21000"`)
}
