package extractors

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/dtnitsch/linkmeta/models"
	"github.com/dtnitsch/linkmeta/pkg/extractor"
)

// RankVariants orders video variants for playback: progressive mp4 before
// streaming manifests, then by descending bitrate. Variants without a URL
// are dropped.
func RankVariants(variants []models.VideoVariant) []models.VideoVariant {
	ranked := make([]models.VideoVariant, 0, len(variants))
	for _, v := range variants {
		if strings.TrimSpace(v.URL) != "" {
			ranked = append(ranked, v)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		ri, rj := containerRank(ranked[i]), containerRank(ranked[j])
		if ri != rj {
			return ri < rj
		}
		return ranked[i].Bitrate > ranked[j].Bitrate
	})
	return ranked
}

// containerRank is 0 for directly playable files, 1 for unknown and 2 for
// streaming manifests.
func containerRank(v models.VideoVariant) int {
	ct := strings.ToLower(v.ContentType)
	path := strings.ToLower(v.URL)
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	switch {
	case ct == "video/mp4" || strings.HasSuffix(path, ".mp4"):
		return 0
	case strings.Contains(ct, "mpegurl") || strings.Contains(ct, "dash") ||
		strings.HasSuffix(path, ".m3u8") || strings.HasSuffix(path, ".mpd"):
		return 2
	}
	return 1
}

// ogVideoVariants reads og:video entries with their types.
func ogVideoVariants(og *extractor.TagTree) []models.VideoVariant {
	urls := og.All("video")
	if len(urls) == 0 {
		urls = og.All("video", "url")
	}
	if len(urls) == 0 {
		urls = og.All("video", "secure_url")
	}
	types := og.All("video", "type")

	variants := make([]models.VideoVariant, 0, len(urls))
	for i, u := range urls {
		v := models.VideoVariant{URL: u}
		if i < len(types) {
			v.ContentType = types[i]
		}
		variants = append(variants, v)
	}
	return variants
}

// videoItem picks the best variant as the playable media item.
func videoItem(variants []models.VideoVariant, og *extractor.TagTree) (models.MediaItem, bool) {
	if len(variants) == 0 {
		return models.MediaItem{}, false
	}
	best := variants[0]
	item := models.MediaItem{URL: best.URL, Type: "video", ContentType: best.ContentType, Bitrate: best.Bitrate}
	if og != nil {
		item.Width, _ = strconv.Atoi(og.Get("video", "width"))
		item.Height, _ = strconv.Atoi(og.Get("video", "height"))
	}
	return item, true
}

// ogImages returns every og:image as media items. Dimensions are attached
// when the page lists them in the same order.
func ogImages(og *extractor.TagTree, pageURL string) []models.MediaItem {
	urls := og.All("image")
	if len(urls) == 0 {
		urls = og.All("image", "url")
	}
	widths := og.All("image", "width")
	heights := og.All("image", "height")
	alts := og.All("image", "alt")

	items := make([]models.MediaItem, 0, len(urls))
	for i, u := range urls {
		item := models.MediaItem{URL: extractor.ResolveURL(pageURL, u), Type: "image"}
		if i < len(widths) {
			item.Width, _ = strconv.Atoi(widths[i])
		}
		if i < len(heights) {
			item.Height, _ = strconv.Atoi(heights[i])
		}
		if i < len(alts) {
			item.Alt = alts[i]
		}
		items = append(items, item)
	}
	return items
}

var hashtagRe = regexp.MustCompile(`(?:^|\s)#(\p{L}[\p{L}\p{N}_]*)`)

// hashtags returns the tags used in text, without the leading #.
func hashtags(text string) []string {
	var tags []string
	for _, m := range hashtagRe.FindAllStringSubmatch(text, -1) {
		tags = append(tags, m[1])
	}
	return tags
}

func atoi(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}
