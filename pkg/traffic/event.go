package traffic

import (
	"fmt"
	"time"
)

type IncidentChangeType string

const (
	IncidentChangeTypeAdded   IncidentChangeType = "added"
	IncidentChangeTypeUpdated IncidentChangeType = "updated"

	// Removals are tracked for sensor bookkeeping but deliberately have no
	// change type here, so they can never be published.
)

// IncidentEvent is the payload published once per new or materially changed
// incident, on a per-category queue.
type IncidentEvent struct {
	IncidentKey string
	ChangeType  IncidentChangeType
	MessageType MessageType

	// Instance identifies which configured trafikinfo instance observed the
	// change, for consumers handling more than one.
	Instance string

	Incident Incident

	ReceivedAt time.Time
}

// IncidentQueueName returns the rmq queue the category publishes to,
// e.g. "hinder-incidents".
func IncidentQueueName(messageType MessageType) string {
	return fmt.Sprintf("%s-incidents", messageType.Slug())
}
