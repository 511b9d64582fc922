package poller

import (
	"sort"

	"github.com/trafikinfo-se/trafikinfo/pkg/traffic"
)

// SortIncidents orders the sensor view of a category's incidents according
// to the configured sort mode. Incidents carry their per-poll DistanceKm
// already, so sorting never recomputes geometry.
func SortIncidents(incidents []traffic.Incident, sortMode string) []traffic.Incident {
	sorted := make([]traffic.Incident, len(incidents))
	copy(sorted, incidents)

	switch sortMode {
	case SortModeNewest:
		sort.SliceStable(sorted, func(a, b int) bool {
			if !sorted[a].PublicationTime.Equal(sorted[b].PublicationTime) {
				return sorted[a].PublicationTime.After(sorted[b].PublicationTime)
			}
			return sorted[a].IncidentKey < sorted[b].IncidentKey
		})
	case SortModeNearest:
		sort.SliceStable(sorted, func(a, b int) bool {
			return lessByDistance(&sorted[a], &sorted[b])
		})
	default: // relevance: important first, then nearest, then newest
		sort.SliceStable(sorted, func(a, b int) bool {
			aImportant := sorted[a].IsImportant()
			bImportant := sorted[b].IsImportant()
			if aImportant != bImportant {
				return aImportant
			}
			return lessByDistance(&sorted[a], &sorted[b])
		})
	}

	return sorted
}

// Known distances sort before unknown, then nearest first, newest breaking
// ties.
func lessByDistance(a *traffic.Incident, b *traffic.Incident) bool {
	if (a.DistanceKm != nil) != (b.DistanceKm != nil) {
		return a.DistanceKm != nil
	}

	if a.DistanceKm != nil && b.DistanceKm != nil && *a.DistanceKm != *b.DistanceKm {
		return *a.DistanceKm < *b.DistanceKm
	}

	if !a.PublicationTime.Equal(b.PublicationTime) {
		return a.PublicationTime.After(b.PublicationTime)
	}

	return a.IncidentKey < b.IncidentKey
}
