package dataflows

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

const defaultNewsLimit = 5

// NewsClient scrapes Google News search results for recent articles.
type NewsClient struct {
	client *resty.Client
	cache  *CacheManager
}

// NewNewsClient creates a new news client
func NewNewsClient(config *Config) *NewsClient {
	cacheDir := filepath.Join(config.DataCacheDir, "news")
	cache := NewCacheManager(cacheDir, 2*time.Hour, config.CacheEnabled)

	client := resty.New()
	client.SetTimeout(30 * time.Second)
	client.SetHeader("User-Agent", "Mozilla/5.0 (compatible; StockSage/1.0)")

	return &NewsClient{
		client: client,
		cache:  cache,
	}
}

// Search fetches articles matching the query, newest first.
func (nc *NewsClient) Search(ctx context.Context, query string, limit int) ([]*NewsItem, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("search query cannot be empty")
	}
	if limit <= 0 {
		limit = defaultNewsLimit
	}

	cacheKey := map[string]interface{}{"query": query, "limit": limit}
	var cached []*NewsItem
	if nc.cache.Get("google_news", "search", cacheKey, &cached) {
		return cached, nil
	}

	searchURL := fmt.Sprintf("https://news.google.com/search?q=%s&hl=en&gl=US&ceid=US:en",
		url.QueryEscape(query))

	var result []*NewsItem
	err := WithRetry(DefaultRetryConfig(), func() error {
		resp, err := nc.client.R().SetContext(ctx).Get(searchURL)
		if err != nil {
			return fmt.Errorf("failed to fetch news: %w", err)
		}
		if resp.StatusCode() != 200 {
			return fmt.Errorf("HTTP error %d when fetching news", resp.StatusCode())
		}

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.String()))
		if err != nil {
			return fmt.Errorf("failed to parse HTML: %w", err)
		}

		result = parseNewsDocument(doc)
		if len(result) > limit {
			result = result[:limit]
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	nc.cache.Set("google_news", "search", cacheKey, result)
	return result, nil
}

func parseNewsDocument(doc *goquery.Document) []*NewsItem {
	var items []*NewsItem

	doc.Find("article").Each(func(i int, s *goquery.Selection) {
		title := strings.TrimSpace(s.Find("h3").Text())
		if title == "" {
			title = strings.TrimSpace(s.Find("h4").Text())
		}
		if title == "" {
			return
		}

		href, ok := s.Find("a").First().Attr("href")
		if !ok {
			return
		}

		publisher := strings.TrimSpace(s.Find("div[data-n-tid]").Text())
		if publisher == "" {
			publisher = "Google News"
		}

		publishedAt := time.Now()
		if dt, ok := s.Find("time").Attr("datetime"); ok {
			if t, err := time.Parse(time.RFC3339, dt); err == nil {
				publishedAt = t
			}
		}

		items = append(items, &NewsItem{
			Title:         title,
			Publisher:     publisher,
			Link:          resolveNewsLink(href),
			PublishedDate: publishedAt,
			Snippet:       strings.TrimSpace(s.Find("span").Last().Text()),
		})
	})

	return items
}

// resolveNewsLink unwraps Google's redirect paths to absolute URLs.
func resolveNewsLink(href string) string {
	if strings.Contains(href, "url=") {
		parts := strings.SplitN(href, "url=", 2)
		if decoded, err := url.QueryUnescape(parts[1]); err == nil {
			return decoded
		}
	}
	if strings.HasPrefix(href, "./") {
		return "https://news.google.com" + href[1:]
	}
	if strings.HasPrefix(href, "/") {
		return "https://news.google.com" + href
	}
	return href
}
