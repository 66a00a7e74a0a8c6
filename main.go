package main

import (
	"fmt"
	"os"

	"github.com/dtnitsch/linkmeta/internal/cache"
	"github.com/dtnitsch/linkmeta/internal/classify"
	"github.com/dtnitsch/linkmeta/internal/extract"
	"github.com/dtnitsch/linkmeta/internal/server"
	"github.com/dtnitsch/linkmeta/models"
	"github.com/dtnitsch/linkmeta/pkg/help"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

func newApp() *cli.App {
	formatFlag := &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "output format: json or yaml",
	}

	return &cli.App{
		Name:  "linkmeta",
		Usage: "Detect what a URL points to and extract its metadata",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   models.DefaultConfigPath,
				Usage:   "path to the YAML config file",
				EnvVars: []string{"LINKMETA_CONFIG"},
			},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "only log errors"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "debug logging"},
			&cli.StringFlag{
				Name:  "cache-backend",
				Usage: "memory, file, sqlite or redis",
			},
			&cli.StringFlag{Name: "cache-dir", Usage: "directory for the file cache backend"},
			&cli.DurationFlag{Name: "timeout", Usage: "per request fetch timeout"},
		},
		Commands: []*cli.Command{
			{
				Name:      "extract",
				Usage:     "Extract metadata from one or more URLs",
				ArgsUsage: "[url...]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "urls", Aliases: []string{"u"}, Usage: "comma separated URLs"},
					&cli.BoolFlag{Name: "cache", Usage: "serve and store results through the cache"},
					withDefault(formatFlag, "json"),
					&cli.BoolFlag{Name: "legacy", Usage: "flat storage records instead of the full result"},
					&cli.StringFlag{Name: "fields", Usage: "comma separated keys kept in legacy records"},
					&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Value: extract.DefaultWorkers, Usage: "concurrent extractions"},
				},
				Action: extract.ExtractAction,
			},
			{
				Name:      "classify",
				Usage:     "Classify URLs without fetching them",
				ArgsUsage: "<url...>",
				Flags:     []cli.Flag{withDefault(formatFlag, "yaml")},
				Action:    classify.ClassifyAction,
			},
			{
				Name:      "normalize",
				Usage:     "Print the canonical form of URLs",
				ArgsUsage: "<url...>",
				Action:    classify.NormalizeAction,
			},
			{
				Name:  "cache",
				Usage: "Inspect and maintain the result cache",
				Subcommands: []*cli.Command{
					{
						Name:   "stats",
						Usage:  "Show entry counts",
						Flags:  []cli.Flag{withDefault(formatFlag, "yaml")},
						Action: cache.StatsAction,
					},
					{
						Name:      "clear",
						Usage:     "Remove the given URLs, or every entry",
						ArgsUsage: "[url...]",
						Action:    cache.ClearAction,
					},
					{
						Name:   "clean",
						Usage:  "Remove expired entries",
						Action: cache.CleanAction,
					},
				},
			},
			{
				Name:  "serve",
				Usage: "Run the HTTP API",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "addr", Usage: "listen address (default " + models.DefaultServerAddr + ")"},
				},
				Action: server.ServeAction,
			},
			{
				Name:  "quickstart",
				Usage: "Print a short usage guide",
				Action: func(c *cli.Context) error {
					fmt.Fprint(c.App.Writer, help.ColdstartYAML)
					return nil
				},
			},
		},
	}
}

func withDefault(f *cli.StringFlag, value string) *cli.StringFlag {
	flag := *f
	flag.Value = value
	return &flag
}
