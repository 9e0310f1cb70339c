// ABOUTME: Wikipedia article fetcher over the MediaWiki action API
// ABOUTME: Searches titles and pulls plain-text extracts for ingestion
package wiki

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultAPIURL is the English Wikipedia action API endpoint.
const DefaultAPIURL = "https://en.wikipedia.org/w/api.php"

const userAgent = "studyrag/0.1 (RAG study assistant)"

// ErrPageNotFound is returned when no article exists for the requested title.
var ErrPageNotFound = errors.New("wikipedia page not found")

// Article is a fetched Wikipedia page: canonical title, page URL, and the
// full plain-text body.
type Article struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Text  string `json:"text"`
}

// Fetcher talks to the MediaWiki API.
type Fetcher struct {
	apiURL string
	client *http.Client
}

// NewFetcher creates a Fetcher against apiURL; an empty apiURL selects
// English Wikipedia.
func NewFetcher(apiURL string, timeout time.Duration) *Fetcher {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{
		apiURL: apiURL,
		client: &http.Client{Timeout: timeout},
	}
}

// Search returns up to limit article titles matching query, best match first.
func (f *Fetcher) Search(ctx context.Context, query string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 10
	}
	params := url.Values{
		"action":   {"query"},
		"list":     {"search"},
		"srsearch": {query},
		"srlimit":  {fmt.Sprintf("%d", limit)},
		"format":   {"json"},
	}

	var body struct {
		Query struct {
			Search []struct {
				Title string `json:"title"`
			} `json:"search"`
		} `json:"query"`
	}
	if err := f.get(ctx, params, &body); err != nil {
		return nil, fmt.Errorf("searching wikipedia for %q: %w", query, err)
	}

	titles := make([]string, 0, len(body.Query.Search))
	for _, r := range body.Query.Search {
		titles = append(titles, r.Title)
	}
	return titles, nil
}

// Fetch retrieves the full plain text of the article with the given title,
// following redirects to the canonical page. Returns ErrPageNotFound when no
// such page exists.
func (f *Fetcher) Fetch(ctx context.Context, title string) (*Article, error) {
	params := url.Values{
		"action":      {"query"},
		"prop":        {"extracts"},
		"explaintext": {"1"},
		"redirects":   {"1"},
		"titles":      {title},
		"format":      {"json"},
	}

	var body struct {
		Query struct {
			Pages map[string]struct {
				Title   string  `json:"title"`
				Extract string  `json:"extract"`
				Missing *string `json:"missing"`
			} `json:"pages"`
		} `json:"query"`
	}
	if err := f.get(ctx, params, &body); err != nil {
		return nil, fmt.Errorf("fetching wikipedia page %q: %w", title, err)
	}

	for id, page := range body.Query.Pages {
		if id == "-1" || page.Missing != nil {
			return nil, fmt.Errorf("%w: %q", ErrPageNotFound, title)
		}
		return &Article{
			Title: page.Title,
			URL:   pageURL(page.Title),
			Text:  page.Extract,
		}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrPageNotFound, title)
}

func (f *Fetcher) get(ctx context.Context, params url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.apiURL+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("wikipedia API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// pageURL builds the canonical article URL from a title.
func pageURL(title string) string {
	return "https://en.wikipedia.org/wiki/" + url.PathEscape(strings.ReplaceAll(title, " ", "_"))
}
