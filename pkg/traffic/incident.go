package traffic

import (
	"crypto/sha1"
	"fmt"
	"strings"
	"time"
)

// MessageType is one of the six stable Trafikverket message categories.
// The upstream MessageType field is Swedish category text, so the values
// here match it directly.
type MessageType string

const (
	MessageTypeImportantTrafficInformation MessageType = "Viktig trafikinformation"
	MessageTypeObstacle                    MessageType = "Hinder"
	MessageTypeAccident                    MessageType = "Olycka"
	MessageTypeRestriction                 MessageType = "Restriktion"
	MessageTypeTrafficMessage              MessageType = "Trafikmeddelande"
	MessageTypeRoadworks                   MessageType = "Vägarbete"
)

var AllMessageTypes = []MessageType{
	MessageTypeImportantTrafficInformation,
	MessageTypeObstacle,
	MessageTypeAccident,
	MessageTypeRestriction,
	MessageTypeTrafficMessage,
	MessageTypeRoadworks,
}

// EventPublishTypes are the categories that publish per-incident events.
var EventPublishTypes = []MessageType{
	MessageTypeObstacle,
	MessageTypeAccident,
}

// MessageTypeValue is a more fine-grained English code (e.g. "Accident")
// than the Swedish MessageType text. Map the known codes onto the six
// stable categories.
var messageTypeValueCategory = map[string]MessageType{
	"Accident": MessageTypeAccident,

	"GeneralObstruction": MessageTypeObstacle,

	"MaintenanceWorks": MessageTypeRoadworks,

	"VehicleObstruction":               MessageTypeTrafficMessage,
	"AnimalPresenceObstruction":        MessageTypeTrafficMessage,
	"RoadsideAssistance":               MessageTypeTrafficMessage,
	"SpeedManagement":                  MessageTypeTrafficMessage,
	"ReroutingManagement":              MessageTypeTrafficMessage,
	"EnvironmentalObstruction":         MessageTypeTrafficMessage,
	"RoadOrCarriagewayOrLaneManagement": MessageTypeTrafficMessage,
}

// ResolveCategory maps upstream MessageType / MessageTypeValue onto one of
// the stable categories. Prefer the Swedish category text when it matches,
// otherwise map the code value. An unresolvable record returns "".
func ResolveCategory(messageType string, messageTypeValue string) MessageType {
	for _, knownType := range AllMessageTypes {
		if MessageType(messageType) == knownType {
			return knownType
		}
	}

	if mapped, found := messageTypeValueCategory[messageTypeValue]; found {
		return mapped
	}

	trimmed := strings.TrimSpace(messageType)
	if trimmed != "" {
		return MessageType(trimmed)
	}

	return ""
}

// Slug returns a queue/url safe identifier for the category.
func (m MessageType) Slug() string {
	replacer := strings.NewReplacer(" ", "_", "ä", "a", "å", "a", "ö", "o")
	return replacer.Replace(strings.ToLower(string(m)))
}

// Incident is one flattened traffic disruption (one Deviation of one
// Situation) as of a single poll.
type Incident struct {
	IncidentKey string

	SituationID string
	DeviationID string

	MessageType      MessageType
	MessageTypeValue string

	IconID string

	Header  string
	Message string

	SeverityCode int
	SeverityText string

	RoadNumber    string
	RoadName      string
	CountyNumbers []int

	AffectedDirection       string
	TrafficRestrictionType  string
	TemporaryLimit          string
	NumberOfLanesRestricted int
	SafetyRelatedMessage    bool

	LocationDescriptor    string
	PositionalDescription string

	// WGS84 WKT, e.g. "POINT (12.5 57.9)"
	Geometry string

	StartTime               time.Time
	EndTime                 time.Time
	ValidUntilFurtherNotice bool

	VersionTime     time.Time
	PublicationTime time.Time
	ModifiedTime    time.Time

	WebLink string

	// DistanceKm is recomputed every poll relative to the configured
	// reference point. Never part of change detection.
	DistanceKm *float64
}

// ResolveKey returns the stable identity for the incident: the deviation
// identifier if present, else the situation identifier, else a digest of the
// message text. Returns "" for a malformed record.
func (incident *Incident) ResolveKey() string {
	if incident.DeviationID != "" {
		return incident.DeviationID
	}

	if incident.SituationID != "" {
		return incident.SituationID
	}

	if incident.Message != "" {
		return fmt.Sprintf("%x", sha1.Sum([]byte(incident.Header+"|"+incident.Message)))
	}

	return ""
}

// IsImportant reports whether the incident should bypass geographic and road
// filtering (safety messages are often national and carry no geometry).
func (incident *Incident) IsImportant() bool {
	if incident.SafetyRelatedMessage {
		return true
	}

	return incident.MessageType == MessageTypeImportantTrafficInformation
}
