// Package extract implements the extract command.
package extract

import (
	"fmt"
	"os"
	"time"

	"github.com/dtnitsch/linkmeta/internal/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"
)

// ExtractAction extracts every URL given with --urls or as arguments.
// Exit codes: 0 all succeeded, 1 some failed, 2 all failed or bad input.
func ExtractAction(c *cli.Context) error {
	logger := common.NewLogger(c)
	startTime := time.Now()

	urls, invalid := common.SplitURLs(c.String("urls"), c.Args().Slice())
	if len(urls) == 0 {
		fmt.Fprintln(os.Stderr, "Error: No URLs provided")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, `  linkmeta extract --urls "https://example.com,https://example.org"`)
		fmt.Fprintln(os.Stderr, `  linkmeta extract --cache --format yaml https://example.com`)
		return cli.Exit("", 2)
	}
	for _, u := range invalid {
		logger.Warn("not an http(s) URL, result will be minimal", "url", u)
	}

	cfg, err := common.LoadConfig(c)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 2)
	}

	pipeline, err := common.NewPipeline(cfg, logger, prometheus.NewRegistry())
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 2)
	}
	defer pipeline.Close()

	results := Run(c.Context, pipeline.Registry, Job{
		URLs:     urls,
		Workers:  c.Int("workers"),
		UseCache: c.Bool("cache"),
		Timeout:  cfg.Fetch.Timeout,
	})

	records := Records(results, OutputOptions{
		Legacy: c.Bool("legacy"),
		Fields: c.String("fields"),
	})
	if err := Write(c.App.Writer, records, c.String("format")); err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 2)
	}

	failed := Failures(results)
	logger.Info("extraction finished",
		"urls", len(urls),
		"failed", failed,
		"duration_ms", time.Since(startTime).Milliseconds())

	switch {
	case failed == len(results):
		return cli.Exit("", 2)
	case failed > 0:
		return cli.Exit("", 1)
	}
	return nil
}
