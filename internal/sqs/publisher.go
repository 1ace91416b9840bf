package sqs

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/iyhunko/inventory-dashboard/internal/model"
)

// EventTypeAttribute is the message attribute carrying the outbox event type.
const EventTypeAttribute = "event_type"

// PublisherAPI defines the SQS operation used by Publisher.
type PublisherAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// Publisher sends outbox events to an SQS queue.
type Publisher struct {
	client   PublisherAPI
	queueURL string
}

// NewPublisher creates a new SQS Publisher with the given client and queue URL.
func NewPublisher(client PublisherAPI, queueURL string) *Publisher {
	return &Publisher{
		client:   client,
		queueURL: queueURL,
	}
}

// Publish sends the event payload as the message body and the event type as a message attribute.
func (p *Publisher) Publish(ctx context.Context, event *model.Event) error {
	if len(event.EventData) == 0 {
		return fmt.Errorf("event %s has no data", event.ID)
	}

	_, err := p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(event.EventData)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			EventTypeAttribute: {
				DataType:    aws.String("String"),
				StringValue: aws.String(event.EventType),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send message to SQS: %w", err)
	}

	return nil
}

// Close is a no-op; the SQS client holds no per-publisher resources.
func (p *Publisher) Close() error {
	return nil
}
