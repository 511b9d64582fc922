package events

import (
	"fmt"

	"github.com/trafikinfo-se/trafikinfo/pkg/traffic"
)

// GetNotificationData turns an incident event into a human readable
// notification.
func GetNotificationData(event *traffic.IncidentEvent) traffic.Notification {
	notification := traffic.Notification{}

	incident := event.Incident

	notification.Title = string(event.MessageType)
	if incident.Header != "" {
		notification.Title = incident.Header
	}

	if event.ChangeType == traffic.IncidentChangeTypeUpdated {
		notification.Title = fmt.Sprintf("Uppdaterad: %s", notification.Title)
	}

	notification.Message = incident.Message
	if notification.Message == "" && incident.LocationDescriptor != "" {
		notification.Message = incident.LocationDescriptor
	}

	road := incident.RoadName
	if road == "" {
		road = incident.RoadNumber
	}
	if road != "" {
		notification.Message = fmt.Sprintf("%s (%s)", notification.Message, road)
	}

	return notification
}
