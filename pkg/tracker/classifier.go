package tracker

import (
	"strings"
	"time"

	"github.com/trafikinfo-se/trafikinfo/pkg/traffic"
)

// IsMaterialChange reports whether an incident present in two successive
// polls differs in a semantically meaningful field.
//
// Only an allow-list of content fields is compared. Volatile values that the
// upstream recomputes or bumps on every response regardless of real-world
// state (distance to the reference point, response-level modified/version
// stamps, icon and weblink churn) never count as a change, so they cannot
// spam notifications.
func IsMaterialChange(previous traffic.Incident, current traffic.Incident) bool {
	if textChanged(previous.Message, current.Message) {
		return true
	}
	if textChanged(previous.Header, current.Header) {
		return true
	}

	if previous.SeverityCode != current.SeverityCode {
		return true
	}
	if textChanged(previous.SeverityText, current.SeverityText) {
		return true
	}

	if textChanged(previous.AffectedDirection, current.AffectedDirection) {
		return true
	}
	if textChanged(previous.TrafficRestrictionType, current.TrafficRestrictionType) {
		return true
	}
	if textChanged(previous.LocationDescriptor, current.LocationDescriptor) {
		return true
	}

	// Only the content time window carried by the event itself, never the
	// response-level stamps.
	if timeChanged(previous.StartTime, current.StartTime) {
		return true
	}
	if timeChanged(previous.EndTime, current.EndTime) {
		return true
	}

	return false
}

// The upstream source does not distinguish null from empty string, so both
// normalise to the same absent sentinel before comparing.
func textChanged(previous string, current string) bool {
	return strings.TrimSpace(previous) != strings.TrimSpace(current)
}

func timeChanged(previous time.Time, current time.Time) bool {
	return !previous.Equal(current)
}
