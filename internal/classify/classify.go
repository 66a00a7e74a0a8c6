package classify

import (
	"github.com/dtnitsch/linkmeta/models"
	"github.com/dtnitsch/linkmeta/pkg/detector"
)

// Classification is what the classify command and endpoint report.
type Classification struct {
	URL           string             `json:"url" yaml:"url"`
	NormalizedURL string             `json:"normalized_url" yaml:"normalized_url"`
	ContentType   models.ContentType `json:"content_type" yaml:"content_type"`
	Confidence    float64            `json:"confidence" yaml:"confidence"`
	Family        models.Family      `json:"family" yaml:"family"`
	Label         string             `json:"label" yaml:"label"`
	Icon          string             `json:"icon" yaml:"icon"`
	PlatformID    string             `json:"platform_id,omitempty" yaml:"platform_id,omitempty"`
}

// Describe classifies rawURL without fetching it.
func Describe(rawURL string) Classification {
	res := detector.Classify(rawURL)
	c := Classification{
		URL:           rawURL,
		NormalizedURL: detector.NormalizeURL(rawURL),
		ContentType:   res.Type,
		Confidence:    res.Confidence,
		Family:        res.Descriptor.Family,
		Label:         res.Descriptor.Label,
		Icon:          res.Descriptor.Icon,
	}
	if id, ok := detector.ExtractPlatformID(rawURL, res.Type); ok {
		c.PlatformID = id
	}
	return c
}
