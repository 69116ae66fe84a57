// Package messaging moves thumbnail lifecycle events between the API
// binary and the stats consumer over redis streams. Events are JSON
// payloads on per-event-type topics; both ends agree on the topic
// constants in the stats package.
package messaging

import (
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// Publish sends one typed event. Callers decide whether a delivery
// failure matters; for stats events it is logged and dropped.
type Publish[T any] func(event *T) error

// NewPublishFunc binds an event type to its topic. Each message carries
// a fresh UUID so redelivery is detectable downstream.
func NewPublishFunc[T any](publisher message.Publisher, topic string) Publish[T] {
	return func(event *T) error {
		payload, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("encoding %s event: %w", topic, err)
		}

		return publisher.Publish(topic, message.NewMessage(watermill.NewUUID(), payload))
	}
}

// PublisherGroup owns the broker connection shared by every typed
// publish function, so the container can shut it down in one place.
type PublisherGroup struct {
	publisher message.Publisher
}

// NewPublisherGroup wraps a broker publisher.
func NewPublisherGroup(publisher message.Publisher) *PublisherGroup {
	return &PublisherGroup{publisher: publisher}
}

// Publisher exposes the broker connection for NewPublishFunc bindings.
func (g *PublisherGroup) Publisher() message.Publisher {
	return g.publisher
}

// Shutdown closes the broker connection. Registered with the injector
// so it runs during container shutdown.
func (g *PublisherGroup) Shutdown() error {
	return g.publisher.Close()
}
