package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/geocrest/gateway/cmd/app/commands"
	"github.com/geocrest/gateway/internal/app"
	"github.com/geocrest/gateway/internal/config"
)

func getCatalogCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "crawl-catalog",
			Usage: "Discover an ArcGIS catalog and build every listed service",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "url",
					Aliases:  []string{"u"},
					Required: true,
					Usage:    "ArcGIS REST services root (e.g., https://host/arcgis/rest/services)",
				},
				&cli.StringFlag{
					Name:    "proxy",
					Aliases: []string{"p"},
					Value:   "",
					Usage:   "Proxy to reach the server through (defaults to ARCGIS_PROXY_URL)",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				cfg.CatalogCrawlServices = true
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				gatewayUseCase, err := container.GatewayUseCase()
				if err != nil {
					return err
				}

				return commands.RunCrawlCatalog(
					ctx,
					gatewayUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("url"),
					cmd.String("proxy"),
					cmd.String("format"),
				)
			},
		},
	}
}
