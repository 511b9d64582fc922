package events

import (
	"encoding/json"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/trafikinfo-se/trafikinfo/pkg/redis_client"
	"github.com/trafikinfo-se/trafikinfo/pkg/tracker"
	"github.com/trafikinfo-se/trafikinfo/pkg/traffic"
)

// Publisher matches the publish side of an rmq queue.
type Publisher interface {
	PublishBytes(payload ...[]byte) error
}

const defaultMaxEventsPerDiff = 200

// Emitter publishes one IncidentEvent per added or updated incident onto the
// category's queue. Emission is fire and forget: a failed publish for one
// event is logged and never aborts the remaining events of the diff.
type Emitter struct {
	Instance string

	// MaxEventsPerDiff caps how many events a single diff may publish, so a
	// pathological poll cannot flood the queue.
	MaxEventsPerDiff int

	queues map[traffic.MessageType]Publisher
}

func NewEmitter(instance string) *Emitter {
	maxEvents := defaultMaxEventsPerDiff
	if val := os.Getenv("TRAFIKINFO_MAX_EVENTS_PER_POLL"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			maxEvents = parsed
		}
	}

	return &Emitter{
		Instance:         instance,
		MaxEventsPerDiff: maxEvents,
		queues:           map[traffic.MessageType]Publisher{},
	}
}

// SetupQueues opens the per-category rmq queues for every event publishing
// category. Requires redis_client.Connect to have run.
func (emitter *Emitter) SetupQueues() error {
	for _, messageType := range traffic.EventPublishTypes {
		queue, err := redis_client.QueueConnection.OpenQueue(traffic.IncidentQueueName(messageType))
		if err != nil {
			return err
		}

		emitter.queues[messageType] = queue
	}

	return nil
}

// RegisterQueue overrides the publisher for one category.
func (emitter *Emitter) RegisterQueue(messageType traffic.MessageType, publisher Publisher) {
	emitter.queues[messageType] = publisher
}

// Emit publishes events for the diff: every added incident first, then every
// updated one, both preserving input order. Returns how many events were
// published.
func (emitter *Emitter) Emit(diff tracker.Diff, messageType traffic.MessageType) int {
	queue := emitter.queues[messageType]
	if queue == nil {
		return 0
	}

	receivedAt := time.Now().UTC()
	published := 0

	publish := func(incident traffic.Incident, changeType traffic.IncidentChangeType) {
		if published >= emitter.MaxEventsPerDiff {
			return
		}

		event := traffic.IncidentEvent{
			IncidentKey: incident.IncidentKey,
			ChangeType:  changeType,
			MessageType: messageType,
			Instance:    emitter.Instance,
			Incident:    incident,
			ReceivedAt:  receivedAt,
		}

		eventBytes, err := json.Marshal(event)
		if err != nil {
			log.Error().Err(err).Str("key", incident.IncidentKey).Msg("Failed to marshal incident event")
			return
		}

		if err := queue.PublishBytes(eventBytes); err != nil {
			log.Error().
				Err(err).
				Str("key", incident.IncidentKey).
				Str("messagetype", string(messageType)).
				Msg("Failed to publish incident event")
			return
		}

		published += 1
	}

	for _, incident := range diff.Added {
		publish(incident, traffic.IncidentChangeTypeAdded)
	}

	for _, update := range diff.Updated {
		publish(update.New, traffic.IncidentChangeTypeUpdated)
	}

	return published
}
