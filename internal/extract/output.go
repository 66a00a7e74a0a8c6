package extract

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dtnitsch/linkmeta/internal/common"
	"github.com/dtnitsch/linkmeta/models"
	"github.com/dtnitsch/linkmeta/pkg/transform"
	"gopkg.in/yaml.v3"
)

// Record is one line of extract output.
type Record struct {
	URL    string                  `json:"url" yaml:"url"`
	Result *models.ExtractorResult `json:"result,omitempty" yaml:"result,omitempty"`
	Legacy map[string]any          `json:"legacy,omitempty" yaml:"legacy,omitempty"`
	Error  string                  `json:"error,omitempty" yaml:"error,omitempty"`
}

// OutputOptions select the shape of the records.
type OutputOptions struct {
	Legacy bool   // flat storage record instead of the envelope
	Fields string // comma separated keys kept in legacy records
}

// Records converts batch results for output.
func Records(results []Result, opts OutputOptions) []Record {
	records := make([]Record, 0, len(results))
	for _, r := range results {
		rec := Record{URL: r.URL}
		switch {
		case r.Err != nil:
			rec.Error = r.Err.Error()
		case opts.Legacy:
			rec.Legacy = common.FilterFields(transform.ToLegacyShape(r.Result.Metadata), opts.Fields)
		default:
			rec.Result = r.Result
		}
		records = append(records, rec)
	}
	return records
}

// Write encodes records to w.
func Write(w io.Writer, records []Record, format string) error {
	switch strings.ToLower(format) {
	case "", "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown format %q (use json or yaml)", format)
}

// Failures counts results with an error.
func Failures(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
