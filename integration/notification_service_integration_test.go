package integration

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/iyhunko/inventory-dashboard/internal/model"
	reposql "github.com/iyhunko/inventory-dashboard/internal/repository/sql"
	"github.com/iyhunko/inventory-dashboard/internal/service"
	sqspkg "github.com/iyhunko/inventory-dashboard/internal/sqs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryQueue is an in-process stand-in for one SQS queue. It serves both the publisher and
// the consumer side.
type memoryQueue struct {
	mu       sync.Mutex
	seq      int
	messages map[string]types.Message
	deleted  []string
}

func newMemoryQueue() *memoryQueue {
	return &memoryQueue{messages: map[string]types.Message{}}
}

func (q *memoryQueue) SendMessage(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.seq++
	handle := "receipt-" + strconv.Itoa(q.seq)
	q.messages[handle] = types.Message{
		Body:              params.MessageBody,
		MessageAttributes: params.MessageAttributes,
		ReceiptHandle:     aws.String(handle),
	}
	return &sqs.SendMessageOutput{MessageId: aws.String(handle)}, nil
}

func (q *memoryQueue) ReceiveMessage(ctx context.Context, _ *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	q.mu.Lock()
	out := make([]types.Message, 0, len(q.messages))
	for _, m := range q.messages {
		out = append(out, m)
	}
	q.mu.Unlock()

	if len(out) == 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(20 * time.Millisecond):
		}
	}
	return &sqs.ReceiveMessageOutput{Messages: out}, nil
}

func (q *memoryQueue) DeleteMessage(_ context.Context, params *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.messages, *params.ReceiptHandle)
	q.deleted = append(q.deleted, *params.ReceiptHandle)
	return &sqs.DeleteMessageOutput{}, nil
}

func (q *memoryQueue) snapshot() (pending, deleted int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.messages), len(q.deleted)
}

func TestNotificationService_Integration(t *testing.T) {
	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)
	testDB.TruncateTables(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app := NewApp(testDB.DB, 5)
	queue := newMemoryQueue()
	const queueURL = "https://sqs.us-east-1.amazonaws.com/123456789/inventory-events"

	// given a product and a sale, both leaving events in the outbox
	owner := "alice@example.com"
	app.Login(t, owner)
	product, err := app.Products.CreateProduct(ctx, owner, service.ProductInput{Description: "Mouse", Quantity: 3, PriceBRL: 80})
	require.NoError(t, err)
	_, err = app.Purchase.Purchase(ctx, owner, product.ID, 1)
	require.NoError(t, err)

	// when the outbox worker publishes them and the notification consumer drains the queue
	worker := service.NewOutboxWorker(reposql.NewEventRepository(testDB.DB), sqspkg.NewPublisher(queue, queueURL), 20*time.Millisecond)
	go worker.Start(ctx)
	defer worker.Stop()

	consumer := sqspkg.NewConsumer(queue, queueURL)
	consumerDone := make(chan error, 1)
	go func() { consumerDone <- consumer.Start(ctx) }()

	// then every event is delivered and acknowledged
	require.Eventually(t, func() bool {
		pending, deleted := queue.snapshot()
		return pending == 0 && deleted == 2
	}, 5*time.Second, 20*time.Millisecond)

	var processed int
	require.NoError(t, testDB.DB.QueryRow(`SELECT COUNT(*) FROM events WHERE status = $1`, model.EventStatusProcessed).Scan(&processed))
	assert.Equal(t, 2, processed)

	cancel()
	select {
	case err := <-consumerDone:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(3 * time.Second):
		t.Fatal("consumer did not stop")
	}
}

func TestNotificationService_SaleMessageShape_Integration(t *testing.T) {
	queue := newMemoryQueue()
	publisher := sqspkg.NewPublisher(queue, "queue")

	event, err := model.NewEvent(model.EventTypeSaleCompleted, model.SaleNotification{
		Owner:       "alice@example.com",
		SaleID:      "s-1",
		ProductID:   "p-1",
		Description: "Mouse",
		Quantity:    1,
		TotalValue:  80,
		Action:      model.PurchaseActionUpdated,
	})
	require.NoError(t, err)
	require.NoError(t, publisher.Publish(context.Background(), event))

	out, err := queue.ReceiveMessage(context.Background(), &sqs.ReceiveMessageInput{})
	require.NoError(t, err)
	require.Len(t, out.Messages, 1)

	msg := out.Messages[0]
	assert.Equal(t, model.EventTypeSaleCompleted, aws.ToString(msg.MessageAttributes[sqspkg.EventTypeAttribute].StringValue))

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(msg.Body)), &body))
	assert.Equal(t, "s-1", body["sale_id"])
	assert.Equal(t, "updated", body["action"])
}
