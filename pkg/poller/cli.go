package poller

import (
	"context"
	"os"

	"github.com/trafikinfo-se/trafikinfo/pkg/database"
	"github.com/trafikinfo-se/trafikinfo/pkg/events"
	"github.com/trafikinfo-se/trafikinfo/pkg/redis_client"
	"github.com/trafikinfo-se/trafikinfo/pkg/trafikverket"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "poller",
		Usage: "Polls the Trafikverket situation feed",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run the poll loop",
				Action: func(c *cli.Context) error {
					if err := database.Connect(); err != nil {
						return err
					}
					if err := redis_client.Connect(); err != nil {
						return err
					}

					config, err := LoadConfig()
					if err != nil {
						return err
					}

					client := trafikverket.NewClient(os.Getenv("TRAFIKINFO_API_KEY"))

					emitter := events.NewEmitter(config.Instance)
					if err := emitter.SetupQueues(); err != nil {
						return err
					}

					poller := NewPoller(config, client, emitter, NewStateStore())
					poller.Run(context.Background())

					return nil
				},
			},
		},
	}
}
