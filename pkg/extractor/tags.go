package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// TagTree is a nested view of colon-delimited meta tags: og:image:width is
// stored under image then width. Repeated tags keep every value in order.
type TagTree struct {
	Values   []string
	Children map[string]*TagTree
}

func newTagTree() *TagTree {
	return &TagTree{Children: make(map[string]*TagTree)}
}

func (t *TagTree) insert(path []string, value string) {
	node := t
	for _, key := range path {
		child, ok := node.Children[key]
		if !ok {
			child = newTagTree()
			node.Children[key] = child
		}
		node = child
	}
	node.Values = append(node.Values, value)
}

// Node returns the subtree at path, or nil.
func (t *TagTree) Node(path ...string) *TagTree {
	node := t
	for _, key := range path {
		if node == nil {
			return nil
		}
		node = node.Children[key]
	}
	return node
}

// Get returns the first value at path, or "".
func (t *TagTree) Get(path ...string) string {
	if all := t.All(path...); len(all) > 0 {
		return all[0]
	}
	return ""
}

// All returns every value at path in document order.
func (t *TagTree) All(path ...string) []string {
	node := t.Node(path...)
	if node == nil {
		return nil
	}
	return node.Values
}

// Len is the number of top level keys.
func (t *TagTree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Children)
}

// Map flattens the tree into nested maps for display and debugging. A key
// with one value maps to a string, several values to a []string and a key
// with children to a map, where its own value is kept under "".
func (t *TagTree) Map() map[string]any {
	out := make(map[string]any, len(t.Children))
	for key, child := range t.Children {
		out[key] = child.value()
	}
	return out
}

func (t *TagTree) value() any {
	var own any
	switch len(t.Values) {
	case 0:
	case 1:
		own = t.Values[0]
	default:
		own = append([]string(nil), t.Values...)
	}
	if len(t.Children) == 0 {
		return own
	}
	m := t.Map()
	if own != nil {
		m[""] = own
	}
	return m
}

// MetaTree harvests <meta> tags whose property or name starts with
// prefix followed by a colon.
func MetaTree(doc *goquery.Document, prefix string) *TagTree {
	tree := newTagTree()
	want := prefix + ":"
	doc.Find("meta").Each(func(i int, s *goquery.Selection) {
		key, ok := s.Attr("property")
		if !ok || !strings.HasPrefix(strings.ToLower(key), want) {
			key, ok = s.Attr("name")
		}
		if !ok {
			return
		}
		key = strings.ToLower(strings.TrimSpace(key))
		if !strings.HasPrefix(key, want) {
			return
		}
		content, ok := s.Attr("content")
		if !ok {
			content, _ = s.Attr("value")
		}
		content = strings.TrimSpace(content)
		if content == "" {
			return
		}
		path := strings.Split(strings.TrimPrefix(key, want), ":")
		tree.insert(path, content)
	})
	return tree
}

// OpenGraph harvests og:* tags.
func OpenGraph(doc *goquery.Document) *TagTree {
	return MetaTree(doc, "og")
}

// TwitterCard harvests twitter:* card tags.
func TwitterCard(doc *goquery.Document) *TagTree {
	return MetaTree(doc, "twitter")
}

// Meta returns the content of the first meta tag whose name, property or
// itemprop equals one of keys, trying keys in order.
func Meta(doc *goquery.Document, keys ...string) string {
	for _, key := range keys {
		for _, attr := range []string{"name", "property", "itemprop"} {
			sel := doc.Find("meta[" + attr + "=\"" + key + "\"]").First()
			if sel.Length() == 0 {
				continue
			}
			if v := strings.TrimSpace(sel.AttrOr("content", "")); v != "" {
				return v
			}
		}
	}
	return ""
}

// FirstImage is og:image with its url and secure_url variants.
func FirstImage(og *TagTree) string {
	for _, path := range [][]string{{"image"}, {"image", "url"}, {"image", "secure_url"}} {
		if v := og.Get(path...); v != "" {
			return v
		}
	}
	return ""
}
