// Package importer extracts catalog item details from an external
// product page so the admin can add garments by pasting a URL.
package importer

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// PageItem is what could be extracted from a product page.
type PageItem struct {
	Title       string
	Description string
	ImageURL    string
	SourceURL   string
}

// Importer fetches and parses product pages.
type Importer struct {
	Client *http.Client
}

func New() *Importer {
	return &Importer{
		Client: &http.Client{Timeout: 30 * time.Second},
	}
}

// Fetch resolves the URL (following shortened links), downloads the page
// and extracts title, description and main image from Open Graph tags,
// falling back to document metadata.
func (im *Importer) Fetch(rawURL string) (*PageItem, error) {
	resolved, err := im.resolveURL(rawURL)
	if err != nil {
		resolved = rawURL
	}

	req, err := http.NewRequest(http.MethodGet, resolved, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")

	resp, err := im.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch page, status: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	item := im.extract(doc)
	item.SourceURL = resolved
	if item.Title == "" {
		return nil, fmt.Errorf("page has no usable title")
	}
	if item.ImageURL == "" {
		return nil, fmt.Errorf("page has no usable product image")
	}
	item.ImageURL = absoluteURL(resolved, item.ImageURL)
	return item, nil
}

func (im *Importer) extract(doc *goquery.Document) *PageItem {
	item := &PageItem{}

	metaContent := func(names ...string) string {
		for _, name := range names {
			sel := doc.Find(fmt.Sprintf(`meta[property=%q]`, name))
			if sel.Length() == 0 {
				sel = doc.Find(fmt.Sprintf(`meta[name=%q]`, name))
			}
			if content, ok := sel.First().Attr("content"); ok && strings.TrimSpace(content) != "" {
				return strings.TrimSpace(content)
			}
		}
		return ""
	}

	item.Title = metaContent("og:title", "twitter:title")
	if item.Title == "" {
		item.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	if item.Title == "" {
		item.Title = strings.TrimSpace(doc.Find("h1").First().Text())
	}

	item.Description = metaContent("og:description", "description", "twitter:description")
	item.ImageURL = metaContent("og:image", "og:image:url", "twitter:image")
	if item.ImageURL == "" {
		// Last resort: biggest-looking product image on the page
		doc.Find("img").EachWithBreak(func(i int, s *goquery.Selection) bool {
			if src, ok := s.Attr("src"); ok && strings.HasPrefix(src, "http") {
				item.ImageURL = src
				return false
			}
			return true
		})
	}

	return item
}

// resolveURL follows redirects so shortened share links land on the real page.
func (im *Importer) resolveURL(rawURL string) (string, error) {
	req, err := http.NewRequest(http.MethodHead, rawURL, nil)
	if err != nil {
		return rawURL, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")

	resp, err := im.Client.Do(req)
	if err != nil {
		return rawURL, err
	}
	defer resp.Body.Close()

	return resp.Request.URL.String(), nil
}

func absoluteURL(pageURL, imgURL string) string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return imgURL
	}
	ref, err := url.Parse(imgURL)
	if err != nil {
		return imgURL
	}
	return base.ResolveReference(ref).String()
}
