// Package extract fetches article pages and pulls out the title and body
// text used to build ingest candidates.
package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const defaultTimeout = 20 * time.Second

// maxSummaryRunes bounds the extracted body text passed downstream.
const maxSummaryRunes = 2000

// Extracted holds the content pulled from one article page.
type Extracted struct {
	Title  string
	Text   string
	Source string // host of the fetched URL
}

// Extractor fetches pages over HTTP and parses them with goquery.
type Extractor struct {
	client *http.Client
}

// NewExtractor wires an HTTP client; a nil client gets a default timeout.
func NewExtractor(client *http.Client) *Extractor {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Extractor{client: client}
}

// Extract fetches the page at pageURL and returns its title and body text.
func (e *Extractor) Extract(ctx context.Context, pageURL string) (Extracted, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil || parsed.Host == "" {
		return Extracted{}, fmt.Errorf("invalid article URL %q", pageURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return Extracted{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "graphgate/1.0")

	resp, err := e.client.Do(req)
	if err != nil {
		return Extracted{}, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Extracted{}, fmt.Errorf("page returned %s", resp.Status)
	}

	result, err := FromReader(resp.Body)
	if err != nil {
		return Extracted{}, err
	}
	result.Source = parsed.Host
	return result, nil
}

// FromReader parses HTML from r and extracts the title and body text.
func FromReader(r io.Reader) (Extracted, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Extracted{}, fmt.Errorf("parse document: %w", err)
	}

	return Extracted{
		Title: extractTitle(doc),
		Text:  extractText(doc),
	}, nil
}

// extractTitle prefers the og:title meta tag over the document title.
func extractTitle(doc *goquery.Document) string {
	if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
		if title := strings.TrimSpace(og); title != "" {
			return title
		}
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// extractText collects paragraph text, preferring an article element when the
// page has one.
func extractText(doc *goquery.Document) string {
	root := doc.Selection
	if article := doc.Find("article").First(); article.Length() > 0 {
		root = article
	}

	var parts []string
	total := 0
	root.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		text := strings.Join(strings.Fields(p.Text()), " ")
		if text == "" {
			return true
		}
		parts = append(parts, text)
		total += len([]rune(text))
		return total < maxSummaryRunes
	})

	text := strings.Join(parts, "\n")
	runes := []rune(text)
	if len(runes) > maxSummaryRunes {
		text = string(runes[:maxSummaryRunes])
	}
	return text
}
