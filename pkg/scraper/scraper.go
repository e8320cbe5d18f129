package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/xhad/compligen/internal/logger"
	"github.com/xhad/compligen/internal/models"
)

type ScraperConfig struct {
	BaseURL           string
	MaxDepth          int
	RateLimit         float64 // requests per second
	IgnorePatterns    []string
	AllowedExtensions []string
	Timeout           time.Duration
	// Metadata is copied onto every scraped document; Source is set to the
	// page URL.
	Metadata   models.ChunkMetadata
	OnProgress func(url string)
	Logger     *logger.Logger
}

type Scraper struct {
	config   ScraperConfig
	client   *http.Client
	visited  map[string]bool
	limiter  *rate.Limiter
	baseHost string
	log      *logger.Logger
}

func NewWithConfig(config ScraperConfig) (*Scraper, error) {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.MaxDepth < 0 {
		config.MaxDepth = 0
	}
	if config.RateLimit == 0 {
		config.RateLimit = 2 // 2 requests per second by default
	}
	if len(config.AllowedExtensions) == 0 {
		config.AllowedExtensions = []string{".html", ".htm", "/", ""}
	}

	parsedURL, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if parsedURL.Host == "" {
		return nil, fmt.Errorf("base url %q has no host", config.BaseURL)
	}

	log := config.Logger
	if log == nil {
		log = logger.Nop()
	}

	return &Scraper{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
		visited:  make(map[string]bool),
		limiter:  rate.NewLimiter(rate.Limit(config.RateLimit), 1),
		baseHost: parsedURL.Host,
		log:      log,
	}, nil
}

func (s *Scraper) shouldProcessURL(urlStr string) bool {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return false
	}

	if parsedURL.Host != s.baseHost {
		return false
	}

	path := strings.ToLower(parsedURL.Path)
	validExt := false
	for _, allowedExt := range s.config.AllowedExtensions {
		if allowedExt == "" {
			// extensionless paths such as /legal/privacy
			last := path[strings.LastIndex(path, "/")+1:]
			if !strings.Contains(last, ".") {
				validExt = true
				break
			}
			continue
		}
		if strings.HasSuffix(path, allowedExt) {
			validExt = true
			break
		}
	}
	if !validExt {
		return false
	}

	for _, pattern := range s.config.IgnorePatterns {
		if strings.Contains(urlStr, pattern) {
			return false
		}
	}

	return true
}

// bannerPhrases are consent-banner button labels. Headings such as
// "Privacy Policy" are content in this corpus and are kept.
var bannerPhrases = []string{
	"Accept all cookies",
	"Accept Cookies",
	"Reject all cookies",
	"Manage cookie preferences",
}

func cleanContent(content string) string {
	content = strings.Join(strings.Fields(content), " ")
	for _, phrase := range bannerPhrases {
		content = strings.ReplaceAll(content, phrase, "")
	}
	return strings.TrimSpace(strings.Join(strings.Fields(content), " "))
}

func extractMainContent(doc *goquery.Document) string {
	doc.Find("script, style, noscript, nav, header, footer, form").Remove()

	selectors := []string{
		"main",
		"article",
		".content",
		"#content",
		".policy",
		"#policy",
	}

	var content string
	for _, selector := range selectors {
		if selected := doc.Find(selector).First(); selected.Length() > 0 {
			content = selected.Text()
			break
		}
	}

	if strings.TrimSpace(content) == "" {
		content = doc.Find("body").Text()
	}

	return cleanContent(content)
}

// ParseHTML extracts a document from an HTML page read from r. It is used
// for pages saved to disk as well as fetched ones.
func ParseHTML(r io.Reader, source string, meta models.ChunkMetadata) (models.Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return models.Document{}, fmt.Errorf("parse %s: %w", source, err)
	}

	meta.Source = source
	title := strings.TrimSpace(doc.Find("title").First().Text())
	return models.Document{
		ID:       models.ChunkID(source, -1),
		URL:      source,
		Title:    title,
		Content:  extractMainContent(doc),
		Metadata: meta,
	}, nil
}

// Scrape fetches url and follows same-host links up to MaxDepth. Failures
// below the start page are logged and skipped.
func (s *Scraper) Scrape(ctx context.Context, url string) ([]models.Document, error) {
	var documents []models.Document
	if err := s.scrapeRecursive(ctx, url, 0, &documents); err != nil {
		return documents, err
	}
	return documents, nil
}

func (s *Scraper) scrapeRecursive(ctx context.Context, urlStr string, depth int, documents *[]models.Document) error {
	if depth > s.config.MaxDepth || s.visited[urlStr] {
		return nil
	}
	if !s.shouldProcessURL(urlStr) {
		return nil
	}

	s.visited[urlStr] = true
	if s.config.OnProgress != nil {
		s.config.OnProgress(urlStr)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", urlStr, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("received status code %d for URL: %s", resp.StatusCode, urlStr)
	}

	page, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return fmt.Errorf("parse %s: %w", urlStr, err)
	}

	links := collectLinks(page, urlStr)

	meta := s.config.Metadata
	meta.Source = urlStr
	*documents = append(*documents, models.Document{
		ID:       models.ChunkID(urlStr, -1),
		URL:      urlStr,
		Title:    strings.TrimSpace(page.Find("title").First().Text()),
		Content:  extractMainContent(page),
		Metadata: meta,
	})
	s.log.Debug("scraped page", "url", urlStr, "depth", depth)

	if depth == s.config.MaxDepth {
		return nil
	}
	for _, link := range links {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.scrapeRecursive(ctx, link, depth+1, documents); err != nil {
			s.log.Warn("skipping page", "url", link, "error", err)
		}
	}

	return nil
}

// collectLinks resolves every href on the page against base. It runs before
// content extraction strips navigation.
func collectLinks(page *goquery.Document, base string) []string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil
	}

	var links []string
	page.Find("a[href]").Each(func(_ int, selection *goquery.Selection) {
		href, _ := selection.Attr("href")
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		abs := baseURL.ResolveReference(ref)
		abs.Fragment = ""
		links = append(links, abs.String())
	})
	return links
}
