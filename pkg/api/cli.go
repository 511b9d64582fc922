package api

import (
	"github.com/trafikinfo-se/trafikinfo/pkg/database"
	"github.com/trafikinfo-se/trafikinfo/pkg/poller"
	"github.com/trafikinfo-se/trafikinfo/pkg/redis_client"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "web-api",
		Usage: "Provides the web API",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run web api server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "listen",
						Value: ":8080",
						Usage: "listen target for the web server",
					},
				},
				Action: func(c *cli.Context) error {
					if err := database.Connect(); err != nil {
						return err
					}
					if err := redis_client.Connect(); err != nil {
						return err
					}

					SetupServer(c.String("listen"), poller.NewStateStore())

					return nil
				},
			},
		},
	}
}
