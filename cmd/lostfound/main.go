// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"github.com/poiesic/lostfound/config"
	"github.com/urfave/cli/v2"
)

const configKey = "config"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func userFlag() cli.Flag {
	return &cli.Uint64Flag{
		Name:     "user",
		Aliases:  []string{"u"},
		Usage:    "ID of the acting user",
		Required: true,
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:     "lostfound",
		Usage:    "Lost and found reporting with semantic matching and email alerts",
		Metadata: map[string]interface{}{},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error); overrides the config file",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML config file",
				EnvVars: []string{"LOSTFOUND_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory; overrides the config file",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "port",
						Usage: "HTTP port; overrides the config file",
					},
				},
			},
			{
				Name:  "user",
				Usage: "Manage users",
				Subcommands: []*cli.Command{
					{
						Name:   "add",
						Usage:  "Register a user",
						Action: userAddCommand,
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "name", Usage: "Display name", Required: true},
							&cli.StringFlag{Name: "email", Usage: "Contact address for match alerts"},
						},
					},
				},
			},
			{
				Name:   "report",
				Usage:  "Report a lost or found item and match it",
				Action: reportCommand,
				Flags: []cli.Flag{
					userFlag(),
					&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Usage: "lost or found", Required: true},
					&cli.StringFlag{Name: "title", Usage: "Item title", Required: true},
					&cli.StringFlag{Name: "description", Usage: "Item description"},
					&cli.StringFlag{Name: "category", Usage: "Item category", Required: true},
					&cli.StringFlag{Name: "location", Usage: "Where the item was lost or found"},
					&cli.StringFlag{Name: "image", Usage: "Image reference"},
				},
			},
			{
				Name:   "resolve",
				Usage:  "Delete one of your items once it is resolved",
				Action: resolveCommand,
				Flags: []cli.Flag{
					userFlag(),
					&cli.Uint64Flag{Name: "item", Aliases: []string{"i"}, Usage: "Item ID", Required: true},
				},
			},
			{
				Name:   "dashboard",
				Usage:  "Show a user's items and notifications",
				Action: dashboardCommand,
				Flags: []cli.Flag{
					userFlag(),
					&cli.BoolFlag{Name: "mark-read", Usage: "Mark every notification read after showing it"},
				},
			},
			{
				Name:   "match",
				Usage:  "Match a query against stored items without storing anything",
				Action: matchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Usage: "lost or found", Required: true},
					&cli.StringFlag{Name: "title", Usage: "Query title"},
					&cli.StringFlag{Name: "description", Usage: "Query description"},
					&cli.StringFlag{Name: "category", Usage: "Query category"},
					&cli.BoolFlag{Name: "coarse", Usage: "Score a found query against same-category lost items by text ratio"},
				},
			},
			{
				Name:   "seed",
				Usage:  "Load users and items from a YAML file, or a built-in sample",
				Action: seedCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "src", Usage: "YAML file of seed data"},
					&cli.IntFlag{Name: "report-interval", Usage: "Report progress every N items", Value: 100},
				},
			},
			{
				Name:   "check",
				Usage:  "Print the stored users and items",
				Action: checkCommand,
			},
		},
	}
}

// setup loads the configuration, applies flag overrides and installs the logger.
func setup(c *cli.Context) error {
	cfg, err := config.LoadFile(c.String("config"))
	if err != nil {
		return err
	}
	if c.IsSet("db") {
		cfg.Database.Path = c.String("db")
	}
	if c.IsSet("log-level") {
		level, err := parseLevel(c.String("log-level"))
		if err != nil {
			return err
		}
		cfg.LogLevel = level
	}

	setupLogger(c.App.ErrWriter, cfg.LogLevel)
	c.App.Metadata[configKey] = cfg
	return nil
}

func configFrom(c *cli.Context) *config.Config {
	cfg, ok := c.App.Metadata[configKey].(*config.Config)
	if !ok {
		return config.NewDefaultConfig()
	}
	return cfg
}

func parseLevel(s string) (slog.Level, error) {
	levelStr := strings.ToLower(s)
	switch levelStr {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}
}

func setupLogger(w io.Writer, level slog.Level) {
	if w == nil {
		w = os.Stderr
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}
