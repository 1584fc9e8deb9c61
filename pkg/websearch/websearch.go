// Package websearch scrapes a search results page for the top organic hit,
// the answer box, and the readable text of the first result.
package websearch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	defaultSearchURL = "https://www.google.com/search"
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/74.0.3729.169 Safari/537.36"

	answerSelector      = "div.BNeawe.iBp4i.AP7Wnd"
	descriptionSelector = ".VwiC3b, .MUxGbd, .yDYNvb, .lyLwlc"
	contentLimit        = 3500
)

var contentSelectors = []string{"article", "main", "section", "p", "h1", "h2", "h3", "ul", "ol"}

type Config struct {
	SearchURL string        `envconfig:"URL" default:"https://www.google.com/search"`
	UserAgent string        `envconfig:"USER_AGENT"`
	Timeout   time.Duration `envconfig:"TIMEOUT" default:"15s"`
}

type Hit struct {
	Link        string `json:"link"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

type Result struct {
	SearchResults    []Hit  `json:"search_results"`
	FirstLinkContent string `json:"first_link_content"`
	DirectAnswer     string `json:"direct_answer"`
}

type Client struct {
	searchURL  string
	userAgent  string
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	searchURL := strings.TrimSpace(cfg.SearchURL)
	if searchURL == "" {
		searchURL = defaultSearchURL
	}
	ua := strings.TrimSpace(cfg.UserAgent)
	if ua == "" {
		ua = defaultUserAgent
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		searchURL:  searchURL,
		userAgent:  ua,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) Search(ctx context.Context, query string) (Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Result{}, errors.New("search query is empty")
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("hl", "en")
	q.Set("ie", "utf-8")
	q.Set("oe", "utf-8")
	q.Set("num", "10")

	doc, err := c.fetch(ctx, c.searchURL+"?"+q.Encode())
	if err != nil {
		return Result{}, fmt.Errorf("fetch search results: %w", err)
	}

	out := Result{
		SearchResults: []Hit{},
		DirectAnswer:  strings.TrimSpace(doc.Find(answerSelector).First().Text()),
	}
	if out.DirectAnswer == "" {
		out.DirectAnswer = "Direct answer not found."
	}

	if hit, ok := firstHit(doc); ok {
		out.SearchResults = append(out.SearchResults, hit)
		content, err := c.MainContent(ctx, hit.Link)
		if err != nil {
			out.FirstLinkContent = err.Error()
		} else {
			out.FirstLinkContent = content
		}
	} else {
		out.FirstLinkContent = "No valid links found."
	}
	return out, nil
}

func firstHit(doc *goquery.Document) (Hit, bool) {
	var hit Hit
	found := false
	doc.Find("div.g").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		link, ok := s.Find("a").First().Attr("href")
		if !ok || !strings.HasPrefix(link, "http") || strings.Contains(link, "aclk") {
			return true
		}
		hit = Hit{
			Link:        link,
			Title:       strings.TrimSpace(s.Find("h3").First().Text()),
			Description: strings.TrimSpace(s.Find(descriptionSelector).First().Text()),
		}
		found = true
		return false
	})
	return hit, found
}

// MainContent returns the readable text of a page, capped at 3500
// characters.
func (c *Client) MainContent(ctx context.Context, link string) (string, error) {
	doc, err := c.fetch(ctx, link)
	if err != nil {
		return "", err
	}

	var parts []string
	if answer := strings.TrimSpace(doc.Find(answerSelector).First().Text()); answer != "" {
		parts = append(parts, "[This is the most accurate and concise response]: "+answer)
	}
	for _, sel := range contentSelectors {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			if text := strings.Join(strings.Fields(s.Text()), " "); text != "" {
				parts = append(parts, text)
			}
		})
	}

	content := strings.Join(parts, " ")
	if content == "" {
		return "Main content not found or could not be extracted.", nil
	}
	return truncate(content, contentLimit), nil
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-3]) + "..."
}

func (c *Client) fetch(ctx context.Context, target string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", target, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request %s: status %d", target, resp.StatusCode)
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", target, err)
	}
	return doc, nil
}
