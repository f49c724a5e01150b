// Package meta fetches page metadata for link previews: title, description,
// favicon and og:image. The client calls /api/fetch-meta while the user
// types a URL into the add-bookmark form, so results are best-effort — a
// page with no og tags still yields a usable title and domain.
package meta

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// maxBodyBytes caps how much of a page we download. Metadata lives in
// <head>, so a quarter megabyte is plenty even for tag-heavy pages.
const maxBodyBytes = 256 * 1024

// Metadata is the preview information extracted from a page.
type Metadata struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	FaviconURL  string `json:"faviconUrl"`
	OGImageURL  string `json:"ogImageUrl"`
	DomainName  string `json:"domainName"`
}

// Fetcher downloads and parses pages.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a Fetcher with a bounded timeout; a slow third-party
// site must not hold an API request hostage.
func NewFetcher() *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Fetch downloads the page at rawURL and extracts its metadata.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Metadata, error) {
	base, err := url.Parse(rawURL)
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, fmt.Errorf("meta: invalid URL %q", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("meta: building request: %w", err)
	}
	req.Header.Set("User-Agent", "LinkHub/1.0 (+metadata fetcher)")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("meta: fetching %s: %w", base.Host, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("meta: %s returned status %d", base.Host, resp.StatusCode)
	}

	m, err := Parse(io.LimitReader(resp.Body, maxBodyBytes), base)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Parse extracts metadata from an HTML document. base resolves relative
// favicon and image URLs. Split out from Fetch so tests can feed static
// HTML without a network.
func Parse(r io.Reader, base *url.URL) (*Metadata, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("meta: parsing HTML: %w", err)
	}

	m := &Metadata{DomainName: base.Hostname()}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if m.Title == "" && n.FirstChild != nil {
					m.Title = strings.TrimSpace(n.FirstChild.Data)
				}
			case "meta":
				name, property, content := attrs(n)
				switch {
				case property == "og:image" && m.OGImageURL == "":
					m.OGImageURL = resolve(base, content)
				case property == "og:title" && content != "":
					// og:title wins over <title> — it is what the page
					// wants shared.
					m.Title = content
				case (name == "description" || property == "og:description") && m.Description == "":
					m.Description = content
				}
			case "link":
				if isIconLink(n) && m.FaviconURL == "" {
					if href := attr(n, "href"); href != "" {
						m.FaviconURL = resolve(base, href)
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if m.FaviconURL == "" {
		// The /favicon.ico convention predates <link rel="icon"> and most
		// sites still honor it.
		m.FaviconURL = base.Scheme + "://" + base.Host + "/favicon.ico"
	}

	return m, nil
}

func attrs(n *html.Node) (name, property, content string) {
	for _, a := range n.Attr {
		switch a.Key {
		case "name":
			name = strings.ToLower(a.Val)
		case "property":
			property = strings.ToLower(a.Val)
		case "content":
			content = strings.TrimSpace(a.Val)
		}
	}
	return name, property, content
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

func isIconLink(n *html.Node) bool {
	rel := strings.ToLower(attr(n, "rel"))
	return rel == "icon" || rel == "shortcut icon" || rel == "apple-touch-icon"
}

func resolve(base *url.URL, ref string) string {
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return base.ResolveReference(u).String()
}
