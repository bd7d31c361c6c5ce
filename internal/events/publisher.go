package events

import (
	"encoding/json"

	"smart-locker/internal/logger"
	"smart-locker/internal/usecase/session"
	"smart-locker/pkg/mqtt"

	"go.uber.org/zap"
)

// MQTTSink publishes occupancy events to a broker topic. Publishing is
// fire-and-forget from the session's point of view; a broker outage
// never blocks a locker interaction.
type MQTTSink struct {
	client *mqtt.Client
	topic  string
}

func NewMQTTSink(client *mqtt.Client, topic string) *MQTTSink {
	return &MQTTSink{client: client, topic: topic}
}

func (s *MQTTSink) Publish(evt session.Event) {
	payload, err := json.Marshal(evt)
	if err != nil {
		logger.Error("Failed to marshal locker event", zap.Error(err))
		return
	}

	go func() {
		if err := s.client.Publish(s.topic, payload); err != nil {
			logger.Warn("Failed to publish locker event",
				zap.String("type", evt.Type),
				zap.Int("locker_id", evt.LockerID),
				zap.Error(err),
			)
		}
	}()
}
