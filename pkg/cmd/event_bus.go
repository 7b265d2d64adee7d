package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/forgeflow/forgeflow/pkg/channels/gochannel"
	"github.com/forgeflow/forgeflow/pkg/channels/kafka"
	"github.com/forgeflow/forgeflow/pkg/eventbus"
)

var ErrUnsupportedEventBus = errors.New("unsupported event bus provider")

// NewEventBus builds the execution event bus. "memory" keeps events in process; "kafka" needs brokers.
func NewEventBus(provider, brokers string, logger *slog.Logger) (eventbus.Bus, error) {
	adapter := watermill.NewSlogLogger(logger)

	switch provider {
	case "", "memory", "gochannel":
		channel := gochannel.CreateChannel(adapter)

		return eventbus.NewWatermillEventBus(logger, channel, channel), nil
	case "kafka":
		pub, sub, err := kafka.CreateChannel(adapter, kafka.ParseBrokers(brokers), "forgeflow")
		if err != nil {
			return nil, fmt.Errorf("failed to create Kafka pub/sub: %w", err)
		}

		return eventbus.NewWatermillEventBus(logger, pub, sub), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedEventBus, provider)
	}
}
