package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/regional-events/internal/event"
	"github.com/pfrederiksen/regional-events/internal/logger"
)

const (
	NoticeAPIURL  = "https://api.star.craftegg.jp/api/information"
	NoticeBaseURL = event.NoticeBaseURL
)

var (
	titlePattern      = regexp.MustCompile(`(?:次回、)?(?:新イベント形式の)?(.+)イベント(?:『.+)?「(.+)」`)
	periodPattern     = regexp.MustCompile(`開催期間】\s*(\d\d?)月(\d\d?)日\d+時\s*[～〜]\s*(?:\d{4}年)?(\d\d?)月(\d\d?)日`)
	attributePattern  = regexp.MustCompile(`(ピュア|クール|ハッピー|パワフル)タイプの全メンバー`)
	noticeDatePattern = regexp.MustCompile(`_(\d{6,})_`)
)

var eventTypes = map[string]event.Type{
	"チャレンジライブ":  event.TypeChallenge,
	"対バンライブ":    event.TypeVersus,
	"ライブトライ！":   event.TypeTry,
	"ミッションライブ":  event.TypeMission,
	"チームライブフェス": event.TypeTeam,
	"メドレーライブ":   event.TypeMedley,
}

var attributes = map[string]string{
	"ピュア":  "pure",
	"クール":  "cool",
	"ハッピー": "happy",
	"パワフル": "powerful",
}

// Information is one entry of the in-app information feed
type Information struct {
	Title           string `json:"title"`
	InformationType string `json:"informationType"`
	LinkURL         string `json:"linkUrl"`
}

type informationFeed struct {
	Notice []Information `json:"NOTICE"`
	Topic  []Information `json:"TOPIC"`
}

// EventAbstract is what the notice title tells about an event
type EventAbstract struct {
	Title     string
	Type      event.Type
	PreNotice bool // announced ahead of time, without the attribute
}

// NoticeDetails is what the notice page tells about an event
type NoticeDetails struct {
	Start     event.Date
	End       event.Date
	Attribute string // empty in pre-notices
}

// NoticeScraper adds japan events from the in-app information feed
type NoticeScraper struct {
	client  *Client
	apiURL  string
	baseURL string
}

// NewNoticeScraper creates a new NoticeScraper. Empty URLs use the production endpoints.
func NewNoticeScraper(client *Client, apiURL, baseURL string) *NoticeScraper {
	if apiURL == "" {
		apiURL = NoticeAPIURL
	}
	if baseURL == "" {
		baseURL = NoticeBaseURL
	}
	return &NoticeScraper{client: client, apiURL: apiURL, baseURL: baseURL}
}

// Name identifies the scraper in logs and commands
func (s *NoticeScraper) Name() string {
	return string(event.Japan)
}

// FetchEventNotices returns the event announcements of the feed, newest first
func (s *NoticeScraper) FetchEventNotices(ctx context.Context) ([]Information, error) {
	body, err := s.client.fetch(ctx, s.apiURL, nil)
	if err != nil {
		return nil, err
	}

	var feed informationFeed
	if err := json.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("parsing information feed: %w", err)
	}

	notices := make([]Information, 0, len(feed.Notice))
	for _, info := range feed.Notice {
		if info.InformationType == "EVENT" {
			notices = append(notices, info)
		}
	}
	for _, info := range feed.Topic {
		if strings.Contains(info.Title, "イベント") {
			notices = append(notices, info)
		}
	}
	return notices, nil
}

// Update adds new events and completes known ones, oldest notice first
func (s *NoticeScraper) Update(ctx context.Context, records []event.Record) ([]event.Record, error) {
	notices, err := s.FetchEventNotices(ctx)
	if err != nil {
		return nil, err
	}

	for i := len(notices) - 1; i >= 0; i-- {
		info := notices[i]
		if strings.Contains(info.Title, "先行公開") {
			continue
		}

		abstract, err := ParseEventTitle(info.Title)
		if err != nil {
			return nil, err
		}

		existing := findByJapanTitle(records, abstract.Title)
		if existing != nil && (attributeKnown(existing) || abstract.PreNotice) {
			logger.Debug("Already exists, skipping", logger.Fields{"title": abstract.Title, "link": info.LinkURL})
			continue
		}

		year, err := NoticeYear(info.LinkURL)
		if err != nil {
			return nil, err
		}

		pageURL, err := resolveURL(s.baseURL, info.LinkURL)
		if err != nil {
			return nil, err
		}
		body, err := s.client.fetch(ctx, pageURL, nil)
		if err != nil {
			return nil, err
		}

		details, err := ParseNoticePage(body, year)
		if err != nil {
			return nil, fmt.Errorf("parsing notice %s: %w", info.LinkURL, err)
		}

		if existing != nil {
			if existing.Meta == nil {
				existing.Meta = &event.Meta{}
			}
			existing.Meta.Attribute = details.Attribute
			existing.Regions.Japan.NoticeID = info.LinkURL
			logger.IncrCounter("scraper.records_updated")
			continue
		}

		rec := event.Record{Index: len(records), Type: abstract.Type}
		if details.Attribute != "" {
			rec.Meta = &event.Meta{Attribute: details.Attribute}
		}
		rec.Regions.Japan = &event.Window{
			Title:    abstract.Title,
			Start:    details.Start,
			End:      details.End,
			NoticeID: info.LinkURL,
		}
		records = append(records, rec)
		logger.IncrCounter("scraper.records_added")
		logger.Info("Added event", logger.Fields{"title": abstract.Title, "start": details.Start.String()})
	}

	return records, nil
}

// ParseEventTitle extracts the event title, type and pre-notice flag from a notice title
func ParseEventTitle(title string) (EventAbstract, error) {
	matches := titlePattern.FindStringSubmatch(title)
	if matches == nil {
		return EventAbstract{}, fmt.Errorf("unrecognized event notice title: %q", title)
	}

	eventType, ok := eventTypes[matches[1]]
	if !ok {
		return EventAbstract{}, fmt.Errorf("couldn't detect the type: %s", matches[1])
	}

	return EventAbstract{
		Title:     matches[2],
		Type:      eventType,
		PreNotice: strings.Contains(title, "次回、"),
	}, nil
}

// NoticeYear derives the announcement year from the _YYMMDD_ segment of a notice link
func NoticeYear(linkURL string) (int, error) {
	matches := noticeDatePattern.FindStringSubmatch(linkURL)
	if matches == nil {
		return 0, fmt.Errorf("unexpected link URL format: %s", linkURL)
	}
	year, err := strconv.Atoi("20" + matches[1][:2])
	if err != nil {
		return 0, fmt.Errorf("unexpected link URL format: %s", linkURL)
	}
	return year, nil
}

// ParseNoticePage extracts the event period and attribute from a notice page.
// The end date rolls over into the next year when its month precedes the start month.
func ParseNoticePage(body []byte, startYear int) (NoticeDetails, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return NoticeDetails{}, fmt.Errorf("parsing HTML: %w", err)
	}
	text := doc.Text()

	matches := periodPattern.FindStringSubmatch(text)
	if matches == nil {
		return NoticeDetails{}, fmt.Errorf("could not detect the event time range")
	}
	startMonth, _ := strconv.Atoi(matches[1])
	startDay, _ := strconv.Atoi(matches[2])
	endMonth, _ := strconv.Atoi(matches[3])
	endDay, _ := strconv.Atoi(matches[4])

	endYear := startYear
	if endMonth < startMonth {
		endYear++
	}

	details := NoticeDetails{
		Start: event.DateOf(startYear, time.Month(startMonth), startDay),
		End:   event.DateOf(endYear, time.Month(endMonth), endDay),
	}

	// pre-event notices lack the attribute
	if strings.Contains(text, "次回、") {
		return details, nil
	}

	attr := attributePattern.FindStringSubmatch(text)
	if attr == nil {
		return NoticeDetails{}, fmt.Errorf("couldn't detect the attribute")
	}
	details.Attribute = attributes[attr[1]]
	return details, nil
}

func findByJapanTitle(records []event.Record, title string) *event.Record {
	for i := range records {
		if w := records[i].Window(event.Japan); w != nil && w.Title == title {
			return &records[i]
		}
	}
	return nil
}

func attributeKnown(rec *event.Record) bool {
	return rec.Meta != nil && rec.Meta.Attribute != ""
}

func resolveURL(base, ref string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parsing base URL: %w", err)
	}
	r, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("parsing link URL: %w", err)
	}
	return b.ResolveReference(r).String(), nil
}
