package servicebus

import (
	"context"
	"encoding/json"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"

	"content-studio/infrastructure/logger"
	"content-studio/infrastructure/pubsub"
)

// ServiceBus forwards publish completion events to an Azure Service Bus
// queue. It satisfies the same interface as the Pub/Sub emitter so the
// orchestrator does not care which broker is configured.
type ServiceBus struct {
	client *azservicebus.Client
	queue  string
}

func NewServiceBus(namespace, queue string) (*ServiceBus, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, err
	}
	client, err := azservicebus.NewClient(namespace, cred, nil)
	if err != nil {
		return nil, err
	}
	return &ServiceBus{client: client, queue: queue}, nil
}

func (s *ServiceBus) PublishCompleted(ctx context.Context, event pubsub.PublishEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	sender, err := s.client.NewSender(s.queue, nil)
	if err != nil {
		return err
	}
	defer sender.Close(ctx)

	contentType := "application/json"
	msg := &azservicebus.Message{
		Body:        data,
		ContentType: &contentType,
	}
	if err := sender.SendMessage(ctx, msg, nil); err != nil {
		logger.GetLogger().WithField("error", err).Warn("Failed to send publish event to service bus")
		return err
	}
	logger.GetLogger().WithField("request_id", event.RequestID).Info("Publish event sent to service bus")
	return nil
}

func (s *ServiceBus) Close(ctx context.Context) error {
	return s.client.Close(ctx)
}
