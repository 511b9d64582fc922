package poller

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
	"github.com/trafikinfo-se/trafikinfo/pkg/tracker"
	"github.com/trafikinfo-se/trafikinfo/pkg/traffic"
	"github.com/trafikinfo-se/trafikinfo/pkg/trafikverket"
	"go.mongodb.org/mongo-driver/mongo"
)

// IncidentEmitter is the publish side of the notification pipeline.
type IncidentEmitter interface {
	Emit(diff tracker.Diff, messageType traffic.MessageType) int
}

// StateWriter persists the per-category sensor state after each poll.
type StateWriter interface {
	Set(ctx context.Context, state *SensorState) error
}

// Poller fetches the Trafikverket situation feed on a fixed interval and
// drives one CategoryTracker per configured category. Categories share no
// state, so their pipelines run concurrently within a poll; each category's
// ingest runs to completion (including emission) before its next poll.
type Poller struct {
	Config  Config
	Client  *trafikverket.Client
	Emitter IncidentEmitter
	States  StateWriter

	filter       *Filter
	messageTypes []traffic.MessageType
	trackers     map[traffic.MessageType]*tracker.CategoryTracker
}

func NewPoller(config Config, client *trafikverket.Client, emitter IncidentEmitter, states StateWriter) *Poller {
	messageTypes := config.EnabledMessageTypes()

	trackers := map[traffic.MessageType]*tracker.CategoryTracker{}
	for _, messageType := range messageTypes {
		trackers[messageType] = tracker.NewCategoryTracker(messageType)
	}

	return &Poller{
		Config:  config,
		Client:  client,
		Emitter: emitter,
		States:  states,

		filter:       NewFilter(config),
		messageTypes: messageTypes,
		trackers:     trackers,
	}
}

func (p *Poller) Run(ctx context.Context) {
	log.Info().
		Str("instance", p.Config.Instance).
		Str("interval", p.Config.ScanInterval.String()).
		Str("filtermode", p.Config.FilterMode).
		Int("categories", len(p.messageTypes)).
		Msg("Starting trafikinfo poller")

	for {
		startTime := time.Now()

		if err := p.Poll(ctx); err != nil {
			// Snapshots stay untouched on a failed fetch, so the next
			// successful poll diffs against the last known-good state.
			log.Error().Err(err).Msg("Poll failed")
		}

		executionDuration := time.Since(startTime)
		waitTime := p.Config.ScanInterval - executionDuration

		if waitTime > 0 {
			time.Sleep(waitTime)
		}
	}
}

// Poll runs one full fetch / filter / diff / emit / state cycle.
func (p *Poller) Poll(ctx context.Context) error {
	result, err := p.Client.FetchSituations(ctx)
	if err != nil {
		return err
	}

	now := time.Now().UTC()

	incidents := trafikverket.Normalize(result, now)
	totalFetched := len(incidents)

	p.filter.Apply(&incidents)

	if p.Config.Latitude != 0 || p.Config.Longitude != 0 {
		for i := range incidents {
			incidents[i].DistanceKm = DistanceKm(&incidents[i], p.Config.Latitude, p.Config.Longitude)
		}
	}

	grouped := map[traffic.MessageType][]traffic.Incident{}
	for _, incident := range incidents {
		grouped[incident.MessageType] = append(grouped[incident.MessageType], incident)
	}

	archivePool := pool.NewWithResults[[]mongo.WriteModel]()
	for _, messageType := range p.messageTypes {
		messageType := messageType
		records := grouped[messageType]

		archivePool.Go(func() []mongo.WriteModel {
			return p.processCategory(ctx, messageType, records, result.LastModified, now)
		})
	}

	var archiveModels []mongo.WriteModel
	for _, models := range archivePool.Wait() {
		archiveModels = append(archiveModels, models...)
	}

	writeArchive(archiveModels)

	log.Info().
		Int("fetched", totalFetched).
		Int("filtered", len(incidents)).
		Str("duration", time.Since(now).String()).
		Msg("Poll complete")

	return nil
}

func (p *Poller) processCategory(ctx context.Context, messageType traffic.MessageType, records []traffic.Incident, lastModified string, now time.Time) []mongo.WriteModel {
	categoryTracker := p.trackers[messageType]

	// The first ingest only establishes the baseline snapshot, otherwise
	// every incident already active at startup would fire a notification.
	wasReady := categoryTracker.Ready()

	diff := categoryTracker.Ingest(records)

	published := 0
	if wasReady && !diff.Empty() {
		published = p.Emitter.Emit(diff, messageType)
	}

	current := categoryTracker.Current()

	visible := SortIncidents(current, p.Config.SortMode)
	if len(visible) > p.Config.MaxItems {
		visible = visible[:p.Config.MaxItems]
	}

	state := &SensorState{
		Instance:    p.Config.Instance,
		MessageType: messageType,

		Count: categoryTracker.Size(),

		Added:   len(diff.Added),
		Updated: len(diff.Updated),
		Removed: len(diff.Removed),
		Dropped: diff.Dropped,

		LastPoll:     now,
		LastModified: lastModified,

		Incidents: visible,
	}

	if err := p.States.Set(ctx, state); err != nil {
		log.Error().Err(err).Str("messagetype", string(messageType)).Msg("Failed to write sensor state")
	}

	log.Info().
		Str("messagetype", string(messageType)).
		Int("count", state.Count).
		Int("added", state.Added).
		Int("updated", state.Updated).
		Int("removed", state.Removed).
		Int("published", published).
		Msg("Processed category")

	return buildArchiveModels(current, p.Config.Instance, now)
}
