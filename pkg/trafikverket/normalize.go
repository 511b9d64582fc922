package trafikverket

import (
	"strconv"
	"strings"
	"time"

	"github.com/trafikinfo-se/trafikinfo/pkg/traffic"
)

// Normalize flattens the fetched situations into incident records, one per
// active deviation. Deleted situations, suspended deviations and deviations
// that already ended are skipped. The returned records carry resolved
// incident keys; records with no usable identity keep an empty key and are
// dropped later by the tracker.
func Normalize(result *FetchResult, now time.Time) []traffic.Incident {
	var incidents []traffic.Incident

	for _, situation := range result.Situations {
		if parseBool(situation.Deleted) {
			continue
		}

		publicationTime := parseTime(situation.PublicationTime)
		versionTime := parseTime(situation.VersionTime)
		modifiedTime := parseTime(situation.ModifiedTime)

		for _, deviation := range situation.Deviation {
			if parseBool(deviation.Suspended) {
				continue
			}

			endTime := parseTime(deviation.EndTime)
			if !endTime.IsZero() && endTime.Before(now) {
				continue
			}

			var countyNumbers []int
			for _, county := range deviation.CountyNo {
				if n, err := strconv.Atoi(strings.TrimSpace(county)); err == nil {
					countyNumbers = append(countyNumbers, n)
				}
			}

			incident := traffic.Incident{
				SituationID: strings.TrimSpace(situation.ID),
				DeviationID: strings.TrimSpace(deviation.ID),

				MessageType:      traffic.ResolveCategory(strings.TrimSpace(deviation.MessageType), strings.TrimSpace(deviation.MessageTypeValue)),
				MessageTypeValue: strings.TrimSpace(deviation.MessageTypeValue),

				IconID: strings.TrimSpace(deviation.IconID),

				Header:  strings.TrimSpace(deviation.Header),
				Message: strings.TrimSpace(deviation.Message),

				SeverityCode: parseInt(deviation.SeverityCode),
				SeverityText: strings.TrimSpace(deviation.SeverityText),

				RoadNumber:    strings.TrimSpace(deviation.RoadNumber),
				RoadName:      strings.TrimSpace(deviation.RoadName),
				CountyNumbers: countyNumbers,

				AffectedDirection:       strings.TrimSpace(deviation.AffectedDirection),
				TrafficRestrictionType:  strings.TrimSpace(deviation.TrafficRestrictionType),
				TemporaryLimit:          strings.TrimSpace(deviation.TemporaryLimit),
				NumberOfLanesRestricted: parseInt(deviation.NumberOfLanesRestricted),
				SafetyRelatedMessage:    parseBool(deviation.SafetyRelatedMessage),

				LocationDescriptor:    strings.TrimSpace(deviation.LocationDescriptor),
				PositionalDescription: strings.TrimSpace(deviation.PositionalDescription),

				Geometry: strings.TrimSpace(deviation.GeometryWGS84),

				StartTime:               parseTime(deviation.StartTime),
				EndTime:                 endTime,
				ValidUntilFurtherNotice: parseBool(deviation.ValidUntilFurtherNotice),

				VersionTime:     versionTime,
				PublicationTime: publicationTime,
				ModifiedTime:    modifiedTime,

				WebLink: strings.TrimSpace(deviation.WebLink),
			}

			incident.IncidentKey = incident.ResolveKey()

			incidents = append(incidents, incident)
		}
	}

	return incidents
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes":
		return true
	}

	return false
}

func parseInt(value string) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}

	return n
}

func parseTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}

	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}

	return parsed
}
