package scraper

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/regional-events/internal/event"
	"github.com/pfrederiksen/regional-events/internal/logger"
)

const (
	WikiBaseURL = event.WikiBaseURL

	redirectMarker = "search the related logs"
	nextEventText  = "Next Event →"
	wikiDateLayout = "January 2, 2006 15:04 MST"

	// maxRedirects bounds chains of renamed pages
	maxRedirects = 5
)

var (
	redirectTargetPattern = regexp.MustCompile(`to <a href="/wiki/([^"]+)"`)
	startDatePattern      = regexp.MustCompile(`Event Start \(WW\)[^A-Z]+">(\w+ \d\d?, \d{4} \d{2}:\d{2} UTC)`)
	endDatePattern        = regexp.MustCompile(`Event End \(WW\)[^A-Z]+">(\w+ \d\d?, \d{4} \d{2}:\d{2} UTC)`)
)

// WikiEvent is what an event page of the fan wiki tells about the global release
type WikiEvent struct {
	LinkID string // page id after following redirects
	Title  string
	Start  event.Date // zero when the page has no global schedule yet
	End    event.Date
}

// Scheduled reports whether the page lists the global dates
func (e *WikiEvent) Scheduled() bool {
	return !e.Start.IsZero()
}

// WikiScraper fills global windows and link ids from the fan wiki
type WikiScraper struct {
	client  *Client
	baseURL string
}

// NewWikiScraper creates a new WikiScraper. An empty baseURL uses the production wiki.
func NewWikiScraper(client *Client, baseURL string) *WikiScraper {
	if baseURL == "" {
		baseURL = WikiBaseURL
	}
	return &WikiScraper{client: client, baseURL: baseURL}
}

// Name identifies the scraper in logs and commands
func (s *WikiScraper) Name() string {
	return string(event.Global)
}

// Update fills the global window of records that lack one, in dataset order,
// then chains link ids onto trailing records through the "next event" links.
func (s *WikiScraper) Update(ctx context.Context, records []event.Record) ([]event.Record, error) {
	for i := range records {
		rec := &records[i]
		if rec.Regions.Global != nil {
			continue
		}
		if rec.LinkID == "" {
			break
		}

		page, err := s.ExtractEvent(ctx, rec.LinkID)
		if err != nil {
			return nil, err
		}
		rec.LinkID = page.LinkID
		if !page.Scheduled() {
			break
		}
		rec.Regions.Global = &event.Window{
			Title: page.Title,
			Start: page.Start,
			End:   page.End,
		}
		logger.IncrCounter("scraper.records_updated")
		logger.Info("Added global window", logger.Fields{"link_id": page.LinkID, "start": page.Start.String()})
	}

	first := -1
	for i := range records {
		if records[i].LinkID == "" {
			first = i
			break
		}
	}
	if first <= 0 {
		return records, nil
	}

	for i := first; i < len(records); i++ {
		prev := records[i-1].LinkID
		if prev == "" {
			break
		}
		next, err := s.NextLinkID(ctx, prev)
		if err != nil {
			return nil, err
		}
		if next == "" {
			logger.Debug("No next event link", logger.Fields{"link_id": prev})
			continue
		}
		records[i].LinkID = next
	}

	return records, nil
}

// ExtractEvent fetches the page for linkID, following renames, and reads its title and dates
func (s *WikiScraper) ExtractEvent(ctx context.Context, linkID string) (*WikiEvent, error) {
	body, err := s.FetchPage(ctx, linkID)
	if err != nil {
		return nil, err
	}

	for i := 0; i < maxRedirects; i++ {
		target, err := s.redirectTarget(ctx, body)
		if err != nil {
			return nil, err
		}
		if target == "" {
			return parseWikiEvent(linkID, body)
		}
		logger.Debug("Following wiki redirect", logger.Fields{"from": linkID, "to": target})
		linkID = target
		if body, err = s.FetchPage(ctx, linkID); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("too many redirects for %s", linkID)
}

// FetchPage returns the raw HTML of a wiki page. Missing pages that point to their
// move log are returned rather than treated as errors.
func (s *WikiScraper) FetchPage(ctx context.Context, linkID string) ([]byte, error) {
	return s.client.fetch(ctx, s.baseURL+url.PathEscape(linkID), func(body []byte) bool {
		return bytes.Contains(body, []byte(redirectMarker))
	})
}

// NextLinkID returns the id linked as the next event on prevLinkID's page, or ""
func (s *WikiScraper) NextLinkID(ctx context.Context, prevLinkID string) (string, error) {
	body, err := s.FetchPage(ctx, prevLinkID)
	if err != nil {
		return "", err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}

	var next string
	doc.Find("a[href^='/wiki/']").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if strings.TrimSpace(a.Text()) != nextEventText {
			return true
		}
		href, _ := a.Attr("href")
		next = strings.TrimPrefix(href, "/wiki/")
		return false
	})
	if next == "" {
		return "", nil
	}

	id, err := url.PathUnescape(next)
	if err != nil {
		return "", fmt.Errorf("decoding link id %q: %w", next, err)
	}
	return id, nil
}

// redirectTarget returns the page a moved page now lives at, or "" when body is a regular page
func (s *WikiScraper) redirectTarget(ctx context.Context, body []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}

	var logHref string
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if strings.TrimSpace(a.Text()) != redirectMarker {
			return true
		}
		logHref, _ = a.Attr("href")
		return false
	})
	if logHref == "" {
		return "", nil
	}

	logURL, err := resolveURL(s.baseURL, logHref)
	if err != nil {
		return "", err
	}
	logBody, err := s.client.fetch(ctx, logURL, nil)
	if err != nil {
		return "", err
	}

	matches := redirectTargetPattern.FindSubmatch(logBody)
	if matches == nil {
		return "", fmt.Errorf("cannot follow redirection from %s", logURL)
	}
	target, err := url.PathUnescape(string(matches[1]))
	if err != nil {
		return "", fmt.Errorf("decoding redirect target %q: %w", matches[1], err)
	}
	return target, nil
}

func parseWikiEvent(linkID string, body []byte) (*WikiEvent, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	title, _, found := strings.Cut(doc.Find("title").First().Text(), " |")
	if !found || strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("cannot detect the title of %s", linkID)
	}

	page := &WikiEvent{LinkID: linkID, Title: title}
	if !bytes.Contains(body, []byte("Event Start (WW)")) {
		return page, nil
	}

	if page.Start, err = parseWikiDate(body, startDatePattern); err != nil {
		return nil, fmt.Errorf("reading start of %s: %w", linkID, err)
	}
	if page.End, err = parseWikiDate(body, endDatePattern); err != nil {
		return nil, fmt.Errorf("reading end of %s: %w", linkID, err)
	}
	return page, nil
}

// parseWikiDate reads a "January 2, 2006 15:04 UTC" timestamp and keeps its UTC calendar date
func parseWikiDate(body []byte, pattern *regexp.Regexp) (event.Date, error) {
	matches := pattern.FindSubmatch(body)
	if matches == nil {
		return event.Date{}, fmt.Errorf("cannot detect the date")
	}
	t, err := time.Parse(wikiDateLayout, string(matches[1]))
	if err != nil {
		return event.Date{}, fmt.Errorf("parsing date %q: %w", matches[1], err)
	}
	t = t.UTC()
	return event.DateOf(t.Year(), t.Month(), t.Day()), nil
}
