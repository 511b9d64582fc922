package events

import (
	"encoding/json"

	"github.com/adjust/rmq/v5"
	"github.com/rs/zerolog/log"
	"github.com/trafikinfo-se/trafikinfo/pkg/notify"
	"github.com/trafikinfo-se/trafikinfo/pkg/traffic"
)

type IncidentBatchConsumer struct {
	pushManager *notify.PushManager
}

func NewIncidentBatchConsumer(pushManager *notify.PushManager) *IncidentBatchConsumer {
	return &IncidentBatchConsumer{pushManager: pushManager}
}

func (consumer *IncidentBatchConsumer) Consume(batch rmq.Deliveries) {
	for _, delivery := range batch {
		var event traffic.IncidentEvent
		if err := json.Unmarshal([]byte(delivery.Payload()), &event); err != nil {
			log.Error().Err(err).Msg("Failed to decode incident event")
			continue
		}

		log.Info().
			Str("key", event.IncidentKey).
			Str("changetype", string(event.ChangeType)).
			Str("messagetype", string(event.MessageType)).
			Msg("Incident event")

		if consumer.pushManager != nil {
			notification := GetNotificationData(&event)

			if err := consumer.pushManager.SendPush(notification); err != nil {
				log.Error().Err(err).Str("key", event.IncidentKey).Msg("Failed to send push notification")
			}
		}
	}

	if ackErrors := batch.Ack(); len(ackErrors) > 0 {
		for _, err := range ackErrors {
			log.Error().Err(err).Msg("Failed to ack incident event")
		}
	}
}
