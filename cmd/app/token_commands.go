package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/geocrest/gateway/cmd/app/commands"
	"github.com/geocrest/gateway/internal/app"
	"github.com/geocrest/gateway/internal/config"
)

func getTokenCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-token-key",
			Usage: "Generate a random TOKEN_KEY, optionally encrypted with a KMS key",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "kms-key-uri",
					Aliases: []string{"k"},
					Value:   "",
					Usage:   "KMS key URI used to encrypt the token key (e.g., base64key://..., awskms:///alias/...)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunCreateTokenKey(
					ctx,
					container.KMSService(),
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("kms-key-uri"),
				)
			},
		},
		{
			Name:  "create-token",
			Usage: "Issue a gateway token for a group",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "group",
					Aliases:  []string{"g"},
					Required: true,
					Usage:    "Group name the token grants access to",
				},
				&cli.StringFlag{
					Name:    "client",
					Aliases: []string{"c"},
					Value:   "",
					Usage:   "Optional client constraint: 'ip.<address>' or 'ref.<referer substring>'",
				},
				&cli.DurationFlag{
					Name:    "ttl",
					Aliases: []string{"t"},
					Value:   0,
					Usage:   "Token lifetime (defaults to TOKEN_TIME)",
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
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				tokens, err := container.TokenService()
				if err != nil {
					return err
				}

				ttl := cmd.Duration("ttl")
				if ttl == 0 {
					ttl = cfg.TokenTime
				}

				return commands.RunCreateToken(
					tokens,
					container.Logger(),
					commands.DefaultIO().Writer,
					commands.CreateTokenInput{
						GroupName: cmd.String("group"),
						ClientID:  cmd.String("client"),
						TTL:       ttl,
					},
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "verify-token",
			Usage: "Decode a gateway token and report whether it would be accepted",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "token",
					Required: true,
					Usage:    "Encoded gateway token",
				},
				&cli.StringFlag{
					Name:  "remote-addr",
					Value: "",
					Usage: "Client address to check an 'ip.' constraint against",
				},
				&cli.StringFlag{
					Name:  "referer",
					Value: "",
					Usage: "Referer to check a 'ref.' constraint against",
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
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				tokens, err := container.TokenService()
				if err != nil {
					return err
				}

				return commands.RunVerifyToken(
					tokens,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("token"),
					cmd.String("remote-addr"),
					cmd.String("referer"),
					cmd.String("format"),
				)
			},
		},
	}
}
