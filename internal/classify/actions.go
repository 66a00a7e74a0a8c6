// Package classify implements the classify and normalize commands.
package classify

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dtnitsch/linkmeta/internal/common"
	"github.com/dtnitsch/linkmeta/pkg/detector"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

func ClassifyAction(c *cli.Context) error {
	urls, _ := common.SplitURLs("", c.Args().Slice())
	if len(urls) == 0 {
		return cli.Exit("Error: No URLs provided\n\nUsage:\n  linkmeta classify https://example.com", 1)
	}

	results := make([]Classification, 0, len(urls))
	for _, u := range urls {
		results = append(results, Describe(u))
	}
	if err := write(c.App.Writer, c.String("format"), results); err != nil {
		return cli.Exit(err.Error(), 2)
	}
	return nil
}

func NormalizeAction(c *cli.Context) error {
	urls, _ := common.SplitURLs("", c.Args().Slice())
	if len(urls) == 0 {
		return cli.Exit("Error: No URLs provided\n\nUsage:\n  linkmeta normalize https://example.com", 1)
	}
	for _, u := range urls {
		fmt.Fprintln(c.App.Writer, detector.NormalizeURL(u))
	}
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
