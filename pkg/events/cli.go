package events

import (
	"encoding/json"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kr/pretty"
	"github.com/rs/zerolog/log"
	"github.com/trafikinfo-se/trafikinfo/pkg/consumer"
	"github.com/trafikinfo-se/trafikinfo/pkg/database"
	"github.com/trafikinfo-se/trafikinfo/pkg/notify"
	"github.com/trafikinfo-se/trafikinfo/pkg/redis_client"
	"github.com/trafikinfo-se/trafikinfo/pkg/traffic"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "events",
		Usage: "Provides the incident events runner",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "consume the per-category incident queues",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "stats-listen",
						Value: ":3333",
						Usage: "listen target for the queue stats server",
					},
				},
				Action: func(c *cli.Context) error {
					if err := database.Connect(); err != nil {
						return err
					}
					if err := redis_client.Connect(); err != nil {
						return err
					}

					pushManager := &notify.PushManager{}
					if err := pushManager.Setup(); err != nil {
						if errors.Is(err, notify.ErrNotConfigured) {
							log.Info().Msg("Push notifications disabled")
							pushManager = nil
						} else {
							return err
						}
					}

					for _, messageType := range traffic.EventPublishTypes {
						redisConsumer := consumer.RedisConsumer{
							QueueName:       traffic.IncidentQueueName(messageType),
							NumberConsumers: 2,
							BatchSize:       20,
							Timeout:         2 * time.Second,
							Consumer:        NewIncidentBatchConsumer(pushManager),
						}
						redisConsumer.Setup()
					}

					go consumer.StartStatsServer(c.String("stats-listen"))

					signals := make(chan os.Signal, 1)
					signal.Notify(signals, syscall.SIGINT)
					defer signal.Stop(signals)

					<-signals // wait for signal
					go func() {
						<-signals // hard exit on second signal (in case shutdown gets stuck)
						os.Exit(1)
					}()

					<-redis_client.QueueConnection.StopAllConsuming() // wait for all Consume() calls to finish

					return nil
				},
			},
			{
				Name:  "test-event",
				Usage: "generate a test incident event",
				Action: func(c *cli.Context) error {
					if err := redis_client.Connect(); err != nil {
						return err
					}

					incident := traffic.Incident{
						IncidentKey: "SE_STA_TEST_DEVIATION_1",
						DeviationID: "SE_STA_TEST_DEVIATION_1",
						SituationID: "SE_STA_TEST_SITUATION_1",

						MessageType: traffic.MessageTypeAccident,

						Header:  "Olycka på E6",
						Message: "Trafikolycka i höjd med Kungälvsmotet, ett körfält blockerat",

						SeverityCode: 4,
						SeverityText: "Stor påverkan",

						RoadNumber: "E6",
					}

					event := traffic.IncidentEvent{
						IncidentKey: incident.IncidentKey,
						ChangeType:  traffic.IncidentChangeTypeAdded,
						MessageType: traffic.MessageTypeAccident,
						Instance:    "test",
						Incident:    incident,
						ReceivedAt:  time.Now().UTC(),
					}

					pretty.Println(event)

					eventsQueue, err := redis_client.QueueConnection.OpenQueue(traffic.IncidentQueueName(traffic.MessageTypeAccident))
					if err != nil {
						log.Fatal().Err(err).Msg("Failed to open incident queue")
					}

					eventBytes, _ := json.Marshal(event)

					eventsQueue.PublishBytes(eventBytes)

					return nil
				},
			},
		},
	}
}
