// Package cache implements the cache maintenance commands.
package cache

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dtnitsch/linkmeta/internal/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

func open(c *cli.Context) (*common.Pipeline, error) {
	cfg, err := common.LoadConfig(c)
	if err != nil {
		return nil, cli.Exit(fmt.Sprintf("Error: %v", err), 2)
	}
	p, err := common.NewPipeline(cfg, common.NewLogger(c), prometheus.NewRegistry())
	if err != nil {
		return nil, cli.Exit(fmt.Sprintf("Error: %v", err), 2)
	}
	return p, nil
}

// StatsAction prints entry counts for the configured backend.
func StatsAction(c *cli.Context) error {
	p, err := open(c)
	if err != nil {
		return err
	}
	defer p.Close()

	stats := p.Registry.CacheStats(c.Context)
	if err := write(c.App.Writer, c.String("format"), stats); err != nil {
		return cli.Exit(err.Error(), 2)
	}
	return nil
}

// ClearAction removes the entries for the given URLs, or everything when
// no URL is given.
func ClearAction(c *cli.Context) error {
	p, err := open(c)
	if err != nil {
		return err
	}
	defer p.Close()

	urls, _ := common.SplitURLs("", c.Args().Slice())
	if len(urls) == 0 {
		n := p.Registry.ClearAllCache(c.Context)
		fmt.Fprintf(c.App.Writer, "Removed %d cache entries\n", n)
		return nil
	}
	for _, u := range urls {
		p.Registry.ClearCache(c.Context, u)
		fmt.Fprintf(c.App.Writer, "Removed %s\n", u)
	}
	return nil
}

// CleanAction removes expired entries.
func CleanAction(c *cli.Context) error {
	p, err := open(c)
	if err != nil {
		return err
	}
	defer p.Close()

	n := p.Registry.CleanExpiredCache(c.Context)
	fmt.Fprintf(c.App.Writer, "Removed %d expired cache entries\n", n)
	return nil
}

func write(w io.Writer, format string, v any) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "", "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown format %q (use json or yaml)", format)
}
