package service

import (
	"context"
	"encoding/json"
	"log"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"support-desk-be/internal/dto"
	"support-desk-be/pkg/events"
	pktNats "support-desk-be/pkg/nats"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the in-process close topic and relays each event
// to NATS. Keeps the external publish off the close hot path.
type consumerService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	eventPublisher *pktNats.Publisher
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	eventPublisher *pktNats.Publisher,
) IConsumerService {
	return &consumerService{
		pubSub:         pubSub,
		topicName:      topicName,
		eventPublisher: eventPublisher,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.ConversationClosedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal close message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	if cs.eventPublisher == nil {
		// No external bus configured; nothing left to do.
		msg.Ack()
		return
	}

	evt := events.ConversationClosed{
		ConversationId: payload.ConversationId,
		ClosedBy:       payload.ClosedBy,
		ClosedByRole:   payload.ClosedByRole,
		MessageCount:   payload.MessageCount,
		OccurredAt:     payload.OccurredAt,
	}

	if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
		log.Printf("[ERROR] Failed to relay close event for conversation %s: %v", payload.ConversationId, err)
		msg.Nack() // Nack for retriable errors
		return
	}

	log.Printf("[INFO] Relayed close event for conversation %s (%d messages)", payload.ConversationId, payload.MessageCount)
	msg.Ack()
}
