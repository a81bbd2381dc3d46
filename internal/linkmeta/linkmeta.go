// Package linkmeta suggests a title for a link by fetching the page and
// reading its <title> element. The dashboard form uses it to prefill the
// title field before saving a bookmark.
package linkmeta

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const (
	maxBodyBytes   = 1 << 20
	fetchTimeout   = 5 * time.Second
	maxTitleLength = 200
)

// ErrInvalidURL is returned for inputs that are not absolute http(s) URLs.
var ErrInvalidURL = errors.New("url must be absolute http or https")

// Fetcher retrieves page titles over HTTP.
type Fetcher struct {
	client *http.Client
}

// NewFetcher builds a Fetcher with a bounded request timeout.
func NewFetcher() *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: fetchTimeout},
	}
}

// Title fetches rawURL and returns the text of its <title> element.
// The body read is capped; an absent title yields an empty string.
func (f *Fetcher) Title(ctx context.Context, rawURL string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || !parsed.IsAbs() || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return "", ErrInvalidURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/html")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch page: unexpected status %d", resp.StatusCode)
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("parse page: %w", err)
	}
	return extractTitle(doc), nil
}

func extractTitle(n *html.Node) string {
	var title string
	var walk func(*html.Node) bool
	walk = func(node *html.Node) bool {
		if node.Type == html.ElementNode && node.Data == "title" {
			var buf strings.Builder
			for child := node.FirstChild; child != nil; child = child.NextSibling {
				if child.Type == html.TextNode {
					buf.WriteString(child.Data)
				}
			}
			title = normalizeTitle(buf.String())
			return true
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			if walk(child) {
				return true
			}
		}
		return false
	}
	walk(n)
	return title
}

func normalizeTitle(raw string) string {
	fields := strings.Fields(raw)
	title := strings.Join(fields, " ")
	if len(title) > maxTitleLength {
		title = title[:maxTitleLength]
	}
	return title
}
