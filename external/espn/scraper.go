package espn

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/sourcegraph/conc/pool"
	"github.com/sportsdesk/cricketwire/internal/domain/rawdata"
	"github.com/sportsdesk/cricketwire/internal/platform/logging"
	"github.com/sportsdesk/cricketwire/internal/usecase"
)

const (
	scraperSourceName    = "espn_scraper"
	defaultResultsPath   = "/live-cricket-match-results"
	defaultScrapeWorkers = 4
)

// innings headers read like "India: 240/10 (50 ov)" or "Australia 241/4 (43 ov)"
var inningsHeaderRegex = regexp.MustCompile(`^(.*?):?\s+(\d+)(?:/(\d+))?\s*\(([\d.]+)\s*(?:ov)?\)`)
var matchIDFromURLRegex = regexp.MustCompile(`-(\d+)/full-scorecard`)

type ScraperConfig struct {
	BaseURL     string
	ResultsPath string
	Workers     int
	Logger      *logging.Logger
}

// Scraper extracts completed-match scorecards from the public results pages.
// It emits the same opaque summary/detail trees the API clients do, so the
// normalizer treats scraped matches like any other provider's.
type Scraper struct {
	http        *resty.Client
	baseURL     string
	resultsPath string
	workers     int
	logger      *logging.Logger

	mu      sync.Mutex
	details map[string]map[string]any
}

func NewScraper(cfg ScraperConfig) *Scraper {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://www.espncricinfo.com"
	}
	resultsPath := cfg.ResultsPath
	if resultsPath == "" {
		resultsPath = defaultResultsPath
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultScrapeWorkers
	}
	return &Scraper{
		http:        resty.New(),
		baseURL:     baseURL,
		resultsPath: resultsPath,
		workers:     workers,
		logger:      logger,
		details:     make(map[string]map[string]any),
	}
}

func (s *Scraper) Name() string { return scraperSourceName }

// ListMatches discovers scorecard links on the results page and parses every
// scorecard concurrently. Parsed trees are kept so FetchDetail never fetches
// the same page twice in a run.
func (s *Scraper) ListMatches(ctx context.Context) ([]map[string]any, []rawdata.Payload, error) {
	doc, raw, err := s.fetchDocument(ctx, s.baseURL+s.resultsPath)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch results page: %w", err)
	}

	links := s.scorecardLinks(doc)
	if len(links) == 0 {
		return nil, nil, nil
	}

	payloads := []rawdata.Payload{{
		Source:     scraperSourceName,
		EntityType: "html_page",
		EntityKey:  "results",
		Body:       string(raw),
		FetchedAt:  time.Now().UTC(),
	}}

	var (
		mu        sync.Mutex
		summaries = make([]map[string]any, 0, len(links))
	)

	workers := pool.New().WithMaxGoroutines(s.workers)
	for _, link := range links {
		link := link
		workers.Go(func() {
			if ctx.Err() != nil {
				return
			}
			summary, detail, err := s.scrapeScorecard(ctx, link)
			if err != nil {
				s.logger.WarnContext(ctx, "scorecard scrape failed", "url", link, "error", err)
				return
			}
			matchID, _ := summary["id"].(string)
			mu.Lock()
			summaries = append(summaries, summary)
			s.details[matchID] = detail
			mu.Unlock()
		})
	}
	workers.Wait()

	if ctx.Err() != nil {
		return nil, nil, ctx.Err()
	}
	return summaries, payloads, nil
}

func (s *Scraper) FetchDetail(ctx context.Context, matchID string, summary map[string]any) (map[string]any, []rawdata.Payload, error) {
	s.mu.Lock()
	detail, ok := s.details[matchID]
	s.mu.Unlock()
	if ok {
		return detail, nil, nil
	}

	link, _ := summary["scorecardUrl"].(string)
	if link == "" {
		return nil, nil, fmt.Errorf("%w: no scorecard url for match %s", usecase.ErrNotFound, matchID)
	}
	_, detail, err := s.scrapeScorecard(ctx, link)
	if err != nil {
		return nil, nil, err
	}
	return detail, nil, nil
}

func (s *Scraper) fetchDocument(ctx context.Context, link string) (*goquery.Document, []byte, error) {
	res, err := s.http.R().SetContext(ctx).Get(link)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch: %w", err)
	}
	if res.StatusCode() != 200 {
		return nil, nil, fmt.Errorf("page status=%d", res.StatusCode())
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(res.Body())))
	if err != nil {
		return nil, nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, res.Body(), nil
}

func (s *Scraper) scorecardLinks(doc *goquery.Document) []string {
	seen := make(map[string]struct{})
	var links []string
	doc.Find(`a[href*="full-scorecard"]`).Each(func(_ int, a *goquery.Selection) {
		href := a.AttrOr("href", "")
		if href == "" {
			return
		}
		if strings.HasPrefix(href, "/") {
			href = s.baseURL + href
		}
		if _, dup := seen[href]; dup {
			return
		}
		seen[href] = struct{}{}
		links = append(links, href)
	})
	return links
}

// scrapeScorecard parses one scorecard page into a summary tree and a detail
// tree shaped like the API payloads: the detail carries an innings list with
// batting rows, and a man_of_match field when the page names one.
func (s *Scraper) scrapeScorecard(ctx context.Context, link string) (map[string]any, map[string]any, error) {
	doc, _, err := s.fetchDocument(ctx, link)
	if err != nil {
		return nil, nil, err
	}

	matchID := matchIDFromURL(link)
	if matchID == "" {
		return nil, nil, fmt.Errorf("no match id in url %s", link)
	}

	title := strings.TrimSpace(doc.Find("h1").First().Text())
	status := strings.TrimSpace(doc.Find("p.ds-text-tight-s").First().Text())
	if status == "" {
		status = strings.TrimSpace(doc.Find(".match-status").First().Text())
	}

	summary := map[string]any{
		"id":           matchID,
		"name":         title,
		"status":       status,
		"scorecardUrl": link,
	}
	if venue, date := parseMatchHeader(doc); venue != "" || date != "" {
		summary["venue"] = venue
		summary["date"] = date
	}

	detail := map[string]any{
		"innings": s.parseInnings(doc),
	}
	if name := parsePlayerOfMatch(doc); name != "" {
		detail["man_of_match"] = name
	}
	return summary, detail, nil
}

func (s *Scraper) parseInnings(doc *goquery.Document) []any {
	var innings []any
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		if !isBattingTable(table) {
			return
		}

		node := map[string]any{}
		header := strings.TrimSpace(table.Parent().Find("span.ds-text-title-xs").First().Text())
		if header == "" {
			header = strings.TrimSpace(table.Find("caption").Text())
		}
		if team, runs, wickets, overs, ok := parseInningsHeader(header); ok {
			node["team"] = team
			node["runs"] = runs
			node["wickets"] = wickets
			node["overs"] = overs
		} else if header != "" {
			node["team"] = header
		}

		var batting []any
		table.Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
			cells := tr.Find("td")
			if cells.Length() < 3 {
				return
			}
			name := strings.TrimSpace(cells.Eq(0).Text())
			if name == "" {
				return
			}
			row := map[string]any{
				"name":      name,
				"dismissal": strings.TrimSpace(cells.Eq(1).Text()),
				"runs":      strings.TrimSpace(cells.Eq(2).Text()),
			}
			if cells.Length() > 3 {
				row["balls"] = strings.TrimSpace(cells.Eq(3).Text())
			}
			if cells.Length() > 5 {
				row["fours"] = strings.TrimSpace(cells.Eq(5).Text())
			}
			if cells.Length() > 6 {
				row["sixes"] = strings.TrimSpace(cells.Eq(6).Text())
			}
			if cells.Length() > 7 {
				row["strikeRate"] = strings.TrimSpace(cells.Eq(7).Text())
			}
			batting = append(batting, any(row))
		})
		node["batting"] = batting
		innings = append(innings, any(node))
	})
	return innings
}

func isBattingTable(table *goquery.Selection) bool {
	headerText := strings.ToLower(table.Find("thead").Text())
	return strings.Contains(headerText, "batting") ||
		(strings.Contains(headerText, "r") && strings.Contains(headerText, "b") && strings.Contains(headerText, "sr"))
}

func parseMatchHeader(doc *goquery.Document) (venue, date string) {
	doc.Find("div.ds-text-tight-m").EachWithBreak(func(_ int, div *goquery.Selection) bool {
		text := strings.TrimSpace(div.Text())
		if text == "" {
			return true
		}
		parts := strings.Split(text, ",")
		if len(parts) >= 2 {
			venue = strings.TrimSpace(parts[0])
			date = strings.TrimSpace(parts[len(parts)-1])
			return false
		}
		return true
	})
	return venue, date
}

func parsePlayerOfMatch(doc *goquery.Document) string {
	var name string
	doc.Find("div, span, p").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.TrimSpace(sel.Text())
		lowered := strings.ToLower(text)
		if strings.HasPrefix(lowered, "player of the match") {
			name = strings.TrimSpace(strings.TrimPrefix(text[len("player of the match"):], ":"))
			if name != "" {
				return false
			}
		}
		return true
	})
	return name
}

func parseInningsHeader(header string) (team string, runs, wickets int, overs float64, ok bool) {
	groups := inningsHeaderRegex.FindStringSubmatch(strings.TrimSpace(header))
	if groups == nil {
		return "", 0, 0, 0, false
	}
	team = strings.TrimSpace(groups[1])
	fmt.Sscanf(groups[2], "%d", &runs)
	if groups[3] != "" {
		fmt.Sscanf(groups[3], "%d", &wickets)
	} else {
		wickets = 10
	}
	fmt.Sscanf(groups[4], "%f", &overs)
	return team, runs, wickets, overs, true
}

func matchIDFromURL(link string) string {
	if groups := matchIDFromURLRegex.FindStringSubmatch(link); groups != nil {
		return groups[1]
	}
	return ""
}
