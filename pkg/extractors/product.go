package extractors

import (
	"context"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dtnitsch/linkmeta/models"
	"github.com/dtnitsch/linkmeta/pkg/detector"
	"github.com/dtnitsch/linkmeta/pkg/extractor"
	"github.com/dtnitsch/linkmeta/pkg/fetcher"
	"github.com/dtnitsch/linkmeta/pkg/parser"
)

const (
	productBaseConfidence  = 0.5
	productFieldConfidence = 0.1
)

// Product reads storefront pages, marketplaces included. Open Graph
// product tags win and schema.org Product data fills the gaps.
type Product struct {
	extractor.Base
}

func NewProduct(f fetcher.HTMLFetcher, log *slog.Logger) *Product {
	return &Product{Base: extractor.NewBase(models.ContentTypeProduct, f, log)}
}

func (e *Product) CanHandle(rawURL string) bool {
	t := detector.Classify(rawURL).Type
	return t == models.ContentTypeProduct || t == models.ContentTypeAmazon
}

// LooksLikeProduct reports whether a page announces itself as a product
// through Open Graph.
func LooksLikeProduct(doc *goquery.Document) bool {
	og := extractor.OpenGraph(doc)
	if t := strings.ToLower(og.Get("type")); t == "product" || t == "og:product" || t == "product.item" {
		return true
	}
	product := extractor.MetaTree(doc, "product")
	return product.Len() > 0
}

func (e *Product) Extract(ctx context.Context, opts extractor.Options) (*models.ExtractorResult, error) {
	contentType := e.contentType(opts.URL)
	doc, _, err := e.Document(ctx, opts)
	if err != nil {
		res, err := e.Degrade(opts, e.fromURL(opts.URL), err)
		if res != nil {
			res.Metadata.ContentType = contentType
		}
		return res, err
	}

	fields := extractor.ExtractBasicFields(doc, opts.URL)
	meta := fromBasic(opts.URL, fields)
	meta.Details = e.fromURL(opts.URL).Details
	details := meta.Details.(*models.ProductDetails)

	readProductTags(doc, details)
	if ld := extractor.FindLD(extractor.JSONLD(doc), "Product"); ld != nil {
		readProductLD(ld, &meta, details)
	}
	if contentType == models.ContentTypeAmazon {
		readAmazon(doc, &meta, details)
	}
	details.Availability = normalizeAvailability(details.Availability)
	details.Condition = normalizeAvailability(details.Condition)
	if details.Rating != nil && details.Rating.Count > 0 {
		ensureEngagement(&meta).RatingCount = models.Count(details.Rating.Count)
	}
	meta.Media = nil
	if images := ogImages(extractor.OpenGraph(doc), opts.URL); len(images) > 0 {
		meta.Media = &models.Media{Images: images}
	} else if meta.Thumbnail != "" {
		meta.Media = &models.Media{Images: []models.MediaItem{{URL: meta.Thumbnail, Type: "image"}}}
	}

	res := e.Result(meta, productConfidence(details), models.SourceScraping)
	res.Metadata.ContentType = contentType
	return res, nil
}

func (e *Product) contentType(rawURL string) models.ContentType {
	if detector.Classify(rawURL).Type == models.ContentTypeAmazon {
		return models.ContentTypeAmazon
	}
	return models.ContentTypeProduct
}

// productConfidence grows with each commerce field found.
func productConfidence(d *models.ProductDetails) float64 {
	conf := productBaseConfidence
	for _, found := range []bool{d.Price != "", d.Brand != "", d.Availability != "", d.ProductID != "", d.Rating != nil} {
		if found {
			conf += productFieldConfidence
		}
	}
	return math.Min(math.Round(conf*100)/100, 1)
}

func readProductTags(doc *goquery.Document, d *models.ProductDetails) {
	product := extractor.MetaTree(doc, "product")
	og := extractor.OpenGraph(doc)

	d.Price = extractor.FirstNonEmpty(product.Get("price", "amount"), og.Get("price", "amount"))
	d.Currency = extractor.FirstNonEmpty(product.Get("price", "currency"), og.Get("price", "currency"))
	d.Availability = extractor.FirstNonEmpty(product.Get("availability"), og.Get("availability"))
	d.Brand = extractor.FirstNonEmpty(product.Get("brand"), og.Get("brand"))
	d.Condition = product.Get("condition")
	d.ProductID = extractor.FirstNonEmpty(product.Get("retailer_item_id"), product.Get("sku"), d.ProductID)
}

func readProductLD(ld map[string]any, meta *models.ContentMetadata, d *models.ProductDetails) {
	meta.Title = extractor.FirstNonEmpty(meta.Title, extractor.LDString(ld, "name"))
	meta.Description = extractor.FirstNonEmpty(meta.Description, extractor.LDString(ld, "description"))
	meta.Thumbnail = extractor.FirstNonEmpty(meta.Thumbnail, extractor.LDString(ld, "image"), extractor.LDString(ld, "image", "url"))

	d.ProductID = extractor.FirstNonEmpty(d.ProductID,
		extractor.LDString(ld, "sku"),
		extractor.LDString(ld, "productID"),
		extractor.LDString(ld, "gtin13"),
		extractor.LDString(ld, "mpn"),
	)
	d.Brand = extractor.FirstNonEmpty(d.Brand, extractor.LDString(ld, "brand"))
	d.Price = extractor.FirstNonEmpty(d.Price, extractor.LDString(ld, "offers", "price"), extractor.LDString(ld, "offers", "lowPrice"))
	d.Currency = extractor.FirstNonEmpty(d.Currency, extractor.LDString(ld, "offers", "priceCurrency"))
	d.Availability = extractor.FirstNonEmpty(d.Availability, extractor.LDString(ld, "offers", "availability"))
	d.Condition = extractor.FirstNonEmpty(d.Condition, extractor.LDString(ld, "offers", "itemCondition"))

	if d.Rating == nil {
		value, _ := strconv.ParseFloat(extractor.LDString(ld, "aggregateRating", "ratingValue"), 64)
		if value > 0 {
			count, _ := extractor.ParseCount(extractor.FirstNonEmpty(
				extractor.LDString(ld, "aggregateRating", "reviewCount"),
				extractor.LDString(ld, "aggregateRating", "ratingCount"),
			))
			best, _ := strconv.ParseFloat(extractor.LDString(ld, "aggregateRating", "bestRating"), 64)
			d.Rating = &models.Rating{Value: value, Count: count, Best: best}
		}
	}
}

// readAmazon fills what Amazon only shows in its product DOM.
func readAmazon(doc *goquery.Document, meta *models.ContentMetadata, d *models.ProductDetails) {
	if title := parser.NormalizeText(doc.Find("#productTitle").Text()); title != "" {
		meta.Title = title
	}
	d.Price = extractor.FirstNonEmpty(d.Price,
		doc.Find("#corePrice_feature_div .a-offscreen, .a-price .a-offscreen, #priceblock_ourprice").First().Text(),
	)
	d.Brand = extractor.FirstNonEmpty(d.Brand, strings.TrimPrefix(
		strings.TrimPrefix(parser.NormalizeText(doc.Find("#bylineInfo").Text()), "Visit the "),
		"Brand: ",
	))
	d.Brand = strings.TrimSuffix(d.Brand, " Store")
	d.Availability = extractor.FirstNonEmpty(d.Availability, parser.NormalizeText(doc.Find("#availability").Text()))

	if d.Rating == nil {
		// "4.5 out of 5 stars"
		if value, ok := leadingFloat(doc.Find("#acrPopover").AttrOr("title", "")); ok {
			count, _ := extractor.ParseCount(doc.Find("#acrCustomerReviewText").First().Text())
			d.Rating = &models.Rating{Value: value, Count: count, Best: 5}
		}
	}
}

func leadingFloat(s string) (float64, bool) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	return v, err == nil && v > 0
}

// normalizeAvailability maps schema.org item states and the Open Graph
// variants to lower-case words: InStock and instock both become "in stock".
func normalizeAvailability(s string) string {
	s = strings.TrimSpace(s)
	for _, prefix := range []string{"https://schema.org/", "http://schema.org/"} {
		s = strings.TrimPrefix(s, prefix)
	}
	switch strings.ToLower(strings.ReplaceAll(strings.ReplaceAll(s, " ", ""), "_", "")) {
	case "instock":
		return "in stock"
	case "outofstock", "soldout":
		return "out of stock"
	case "preorder":
		return "preorder"
	case "backorder":
		return "backorder"
	case "discontinued":
		return "discontinued"
	case "limitedavailability":
		return "limited availability"
	case "newcondition", "new":
		return "new"
	case "usedcondition", "used":
		return "used"
	case "refurbishedcondition", "refurbished":
		return "refurbished"
	}
	return s
}

func (e *Product) fromURL(rawURL string) models.ContentMetadata {
	details := &models.ProductDetails{}
	if id, ok := detector.ExtractPlatformID(rawURL, models.ContentTypeAmazon); ok {
		details.ProductID = id
	}
	return models.ContentMetadata{URL: rawURL, Details: details}
}
