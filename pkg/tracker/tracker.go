package tracker

import (
	"github.com/rs/zerolog/log"
	"github.com/trafikinfo-se/trafikinfo/pkg/traffic"
)

// CategoryTracker holds the previous poll's incident snapshot for one
// message category and diffs each new poll against it. Each tracker is
// exclusively owned by its poll loop; trackers for different categories
// share no state.
type CategoryTracker struct {
	MessageType traffic.MessageType

	snapshot    map[string]traffic.Incident
	orderedKeys []string

	ready bool
}

// IncidentUpdate pairs the previous and current record for a materially
// changed incident.
type IncidentUpdate struct {
	Old traffic.Incident
	New traffic.Incident
}

// Diff is the outcome of one ingest. Added and Updated preserve the order in
// which keys first appear in the ingested records. A key appears in at most
// one of Added, Updated and Removed.
type Diff struct {
	Added   []traffic.Incident
	Updated []IncidentUpdate
	Removed []string

	// Dropped counts records discarded because they carried no usable
	// identity. Not fatal, surfaced for diagnostics only.
	Dropped int
}

func (d *Diff) Empty() bool {
	return len(d.Added) == 0 && len(d.Updated) == 0 && len(d.Removed) == 0
}

func NewCategoryTracker(messageType traffic.MessageType) *CategoryTracker {
	return &CategoryTracker{
		MessageType: messageType,
		snapshot:    map[string]traffic.Incident{},
	}
}

// Ready reports whether at least one ingest has completed. The first ingest
// establishes the baseline snapshot; callers use Ready to decide whether a
// diff should publish events or only seed state.
func (tracker *CategoryTracker) Ready() bool {
	return tracker.ready
}

// Size returns the number of incidents in the current snapshot.
func (tracker *CategoryTracker) Size() int {
	return len(tracker.orderedKeys)
}

// Current returns the incidents of the current snapshot in the order they
// appeared in the last ingested poll.
func (tracker *CategoryTracker) Current() []traffic.Incident {
	incidents := make([]traffic.Incident, 0, len(tracker.orderedKeys))
	for _, key := range tracker.orderedKeys {
		incidents = append(incidents, tracker.snapshot[key])
	}

	return incidents
}

// Ingest diffs the freshly polled records against the previous snapshot and
// replaces the snapshot wholesale. Records without identity are dropped.
// Duplicate keys within one poll resolve last-write-wins. Re-ingesting an
// identical list immediately afterwards yields an empty diff.
func (tracker *CategoryTracker) Ingest(records []traffic.Incident) Diff {
	diff := Diff{}

	next := map[string]traffic.Incident{}
	var nextKeys []string

	for _, record := range records {
		key := record.ResolveKey()
		if key == "" {
			diff.Dropped += 1
			continue
		}

		record.IncidentKey = key

		if _, seen := next[key]; !seen {
			nextKeys = append(nextKeys, key)
		}
		// Last record for a key wins; duplicate keys are upstream data
		// quality, not a tracker fault.
		next[key] = record
	}

	for _, key := range nextKeys {
		record := next[key]

		previous, existed := tracker.snapshot[key]
		if !existed {
			diff.Added = append(diff.Added, record)
			continue
		}

		if tracker.isMaterialChange(previous, record) {
			diff.Updated = append(diff.Updated, IncidentUpdate{Old: previous, New: record})
		}
	}

	for _, key := range tracker.orderedKeys {
		if _, stillPresent := next[key]; !stillPresent {
			diff.Removed = append(diff.Removed, key)
		}
	}

	// The new mapping is the new truth even when the diff is empty.
	tracker.snapshot = next
	tracker.orderedKeys = nextKeys
	tracker.ready = true

	return diff
}

// isMaterialChange wraps the classifier so a panic on one pair cannot abort
// the rest of the ingest. Failing safe means fewer spurious notifications.
func (tracker *CategoryTracker) isMaterialChange(previous traffic.Incident, current traffic.Incident) (material bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("panic", r).
				Str("key", current.IncidentKey).
				Str("messagetype", string(tracker.MessageType)).
				Msg("Change classification failed, treating as unchanged")
			material = false
		}
	}()

	return IsMaterialChange(previous, current)
}
