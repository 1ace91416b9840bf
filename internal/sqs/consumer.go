package sqs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/iyhunko/inventory-dashboard/internal/model"
)

// ConsumerAPI defines the interface for SQS operations used by Consumer.
type ConsumerAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// Consumer reads inventory notifications from an SQS queue and logs them.
type Consumer struct {
	client   ConsumerAPI
	queueURL string
}

// NewConsumer creates a new SQS Consumer with the given client and queue URL.
func NewConsumer(client ConsumerAPI, queueURL string) *Consumer {
	return &Consumer{
		client:   client,
		queueURL: queueURL,
	}
}

// Start begins consuming messages from the SQS queue until the context is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	slog.Info("Starting SQS consumer", slog.String("queueURL", c.queueURL))

	for {
		select {
		case <-ctx.Done():
			slog.Info("Stopping SQS consumer")
			return ctx.Err()
		default:
			if err := c.receiveMessages(ctx); err != nil {
				slog.Error("Error receiving messages", slog.Any("err", err))
			}
		}
	}
}

func (c *Consumer) receiveMessages(ctx context.Context) error {
	result, err := c.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:              aws.String(c.queueURL),
		MaxNumberOfMessages:   10,
		WaitTimeSeconds:       20, // Long polling
		MessageAttributeNames: []string{EventTypeAttribute},
	})
	if err != nil {
		return fmt.Errorf("failed to receive messages: %w", err)
	}

	for _, message := range result.Messages {
		if err := c.processMessage(ctx, message); err != nil {
			slog.Error("Error processing message", slog.Any("err", err))
			continue
		}

		if err := c.deleteMessage(ctx, message); err != nil {
			slog.Error("Error deleting message", slog.Any("err", err))
		}
	}

	return nil
}

func (c *Consumer) processMessage(_ context.Context, message types.Message) error {
	if message.Body == nil {
		return fmt.Errorf("message body is nil")
	}

	eventType := eventTypeOf(message)
	switch {
	case eventType == model.EventTypeSaleCompleted:
		var sale model.SaleNotification
		if err := json.Unmarshal([]byte(*message.Body), &sale); err != nil {
			return fmt.Errorf("failed to unmarshal message: %w", err)
		}
		slog.Info("Received sale notification",
			slog.String("owner", sale.Owner),
			slog.String("product_id", sale.ProductID),
			slog.String("description", sale.Description),
			slog.Int("quantity", sale.Quantity),
			slog.Float64("total_value", sale.TotalValue),
			slog.String("action", string(sale.Action)),
		)
	case strings.HasPrefix(eventType, "product."):
		var product model.ProductNotification
		if err := json.Unmarshal([]byte(*message.Body), &product); err != nil {
			return fmt.Errorf("failed to unmarshal message: %w", err)
		}
		slog.Info("Received product notification",
			slog.String("action", product.Action),
			slog.String("owner", product.Owner),
			slog.String("product_id", product.ProductID),
			slog.String("description", product.Description),
			slog.Float64("price_brl", product.PriceBRL),
		)
	default:
		if !json.Valid([]byte(*message.Body)) {
			return fmt.Errorf("failed to unmarshal message: invalid JSON body")
		}
		slog.Warn("Received notification of unknown type", slog.String("event_type", eventType))
	}

	return nil
}

func (c *Consumer) deleteMessage(ctx context.Context, message types.Message) error {
	_, err := c.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.queueURL),
		ReceiptHandle: message.ReceiptHandle,
	})
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}

func eventTypeOf(message types.Message) string {
	attr, ok := message.MessageAttributes[EventTypeAttribute]
	if !ok || attr.StringValue == nil {
		return ""
	}
	return *attr.StringValue
}
