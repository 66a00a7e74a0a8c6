package extractors

import (
	"context"
	"log/slog"
	"mime"
	"net/url"
	"path"
	"strings"

	"github.com/dtnitsch/linkmeta/models"
	"github.com/dtnitsch/linkmeta/pkg/detector"
	"github.com/dtnitsch/linkmeta/pkg/extractor"
)

// File describes direct links to images, video, audio and PDF documents
// from the URL alone. Binary bodies are never downloaded.
type File struct {
	extractor.Base
}

func NewFile(log *slog.Logger) *File {
	return &File{Base: extractor.NewBase(models.ContentTypeImage, nil, log)}
}

func isFileType(t models.ContentType) bool {
	switch t {
	case models.ContentTypeImage, models.ContentTypeVideo, models.ContentTypeAudio, models.ContentTypePDF:
		return true
	}
	return false
}

func (e *File) CanHandle(rawURL string) bool {
	res := detector.Classify(rawURL)
	return isFileType(res.Type) && res.Confidence == detector.ConfidenceExtension
}

func (e *File) Extract(ctx context.Context, opts extractor.Options) (*models.ExtractorResult, error) {
	t := detector.Classify(opts.URL).Type
	if !isFileType(t) {
		t = models.ContentTypeUnknown
	}

	meta := models.ContentMetadata{URL: opts.URL}
	var ext string
	if u, err := url.Parse(opts.URL); err == nil {
		name, err := url.PathUnescape(path.Base(u.Path))
		if err != nil {
			name = path.Base(u.Path)
		}
		ext = strings.ToLower(path.Ext(name))
		meta.Title = strings.TrimSuffix(name, path.Ext(name))
		meta.SiteName = strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	}

	item := models.MediaItem{URL: opts.URL, ContentType: mime.TypeByExtension(ext)}
	switch t {
	case models.ContentTypeImage:
		item.Type = "image"
		meta.Thumbnail = opts.URL
		meta.Media = &models.Media{Images: []models.MediaItem{item}}
	case models.ContentTypeVideo:
		item.Type = "video"
		meta.Media = &models.Media{Videos: []models.MediaItem{item}}
	case models.ContentTypeAudio:
		item.Type = "audio"
		meta.Media = &models.Media{Audio: []models.MediaItem{item}}
	}

	e.CleanMetadata(&meta, t)
	return &models.ExtractorResult{Metadata: meta, Confidence: ConfidenceFile, Source: models.SourceScraping}, nil
}
