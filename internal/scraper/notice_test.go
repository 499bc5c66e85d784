package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pfrederiksen/regional-events/internal/event"
)

const testFeed = `{
  "NOTICE": [
    {"title": "チャレンジライブイベント「Alpha」開催！", "informationType": "EVENT", "linkUrl": "event_230115_01"},
    {"title": "メンテナンスのお知らせ", "informationType": "MAINTENANCE", "linkUrl": "maintenance_230110_01"},
    {"title": "【先行公開】イベント「Alpha」", "informationType": "EVENT", "linkUrl": "event_230101_01"}
  ],
  "TOPIC": [
    {"title": "次回、対バンライブイベント「Beta」", "informationType": "TOPIC", "linkUrl": "topic_231220_02"},
    {"title": "ガチャのお知らせ", "informationType": "TOPIC", "linkUrl": "topic_231220_03"}
  ]
}`

const alphaPage = `<html><body>
<p>【開催期間】<br>
  1月20日15時 ～ 1月28日20時59分</p>
<p>イベント期間中、ピュアタイプの全メンバーがボーナス対象です。</p>
</body></html>`

const betaPage = `<html><body>
<p>次回、対バンライブイベント「Beta」を開催予定！</p>
<p>【開催期間】<br>
  12月28日15時 ～ 2024年1月4日20時59分</p>
</body></html>`

func newNoticeServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/information", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(testFeed))
	})
	mux.HandleFunc("/information/event_230115_01", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(alphaPage))
	})
	mux.HandleFunc("/information/topic_231220_02", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(betaPage))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestNoticeScraper(server *httptest.Server) *NoticeScraper {
	return NewNoticeScraper(NewClient(Options{}), server.URL+"/api/information", server.URL+"/information/")
}

func TestNoticeScraper_FetchEventNotices(t *testing.T) {
	server := newNoticeServer(t)
	s := newTestNoticeScraper(server)

	notices, err := s.FetchEventNotices(context.Background())
	if err != nil {
		t.Fatalf("FetchEventNotices() error = %v", err)
	}

	want := []string{"event_230115_01", "event_230101_01", "topic_231220_02"}
	if len(notices) != len(want) {
		t.Fatalf("got %d notices, want %d", len(notices), len(want))
	}
	for i, link := range want {
		if notices[i].LinkURL != link {
			t.Errorf("notices[%d].LinkURL = %q, want %q", i, notices[i].LinkURL, link)
		}
	}
}

func TestNoticeScraper_UpdateAppends(t *testing.T) {
	server := newNoticeServer(t)
	s := newTestNoticeScraper(server)

	records, err := s.Update(context.Background(), nil)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	// the feed is processed oldest first
	beta, alpha := records[0], records[1]

	if beta.Type != event.TypeVersus {
		t.Errorf("beta type = %q, want versus", beta.Type)
	}
	if beta.Meta != nil {
		t.Errorf("pre-notice should have no meta, got %+v", beta.Meta)
	}
	if got := beta.Regions.Japan.End.String(); got != "2024-01-04" {
		t.Errorf("beta end = %s, want 2024-01-04", got)
	}
	if got := beta.Regions.Japan.Start.String(); got != "2023-12-28" {
		t.Errorf("beta start = %s, want 2023-12-28", got)
	}

	if alpha.Type != event.TypeChallenge {
		t.Errorf("alpha type = %q, want challenge", alpha.Type)
	}
	if alpha.Meta == nil || alpha.Meta.Attribute != "pure" {
		t.Errorf("alpha meta = %+v, want attribute pure", alpha.Meta)
	}
	w := alpha.Regions.Japan
	if w.Title != "Alpha" || w.Start.String() != "2023-01-20" || w.End.String() != "2023-01-28" {
		t.Errorf("alpha window = %+v", w)
	}
	if w.NoticeID != "event_230115_01" {
		t.Errorf("alpha noticeId = %q", w.NoticeID)
	}
	if alpha.Index != 1 {
		t.Errorf("alpha index = %d, want 1", alpha.Index)
	}
	if alpha.Regions.Global != nil || alpha.LinkID != "" {
		t.Error("new records should only carry the japan window")
	}
}

func TestNoticeScraper_UpdateExisting(t *testing.T) {
	server := newNoticeServer(t)
	s := newTestNoticeScraper(server)

	records := []event.Record{
		{
			Type: event.TypeChallenge,
			Regions: event.RegionSet{Japan: &event.Window{
				Title: "Alpha",
				Start: event.MustParseDate("2023-01-20"),
				End:   event.MustParseDate("2023-01-28"),
			}},
		},
		{
			Index: 1,
			Type:  event.TypeVersus,
			Regions: event.RegionSet{Japan: &event.Window{
				Title: "Beta",
				Start: event.MustParseDate("2023-12-28"),
				End:   event.MustParseDate("2024-01-04"),
			}},
		},
	}

	updated, err := s.Update(context.Background(), records)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if len(updated) != 2 {
		t.Fatalf("got %d records, want 2", len(updated))
	}
	if updated[0].Meta == nil || updated[0].Meta.Attribute != "pure" {
		t.Errorf("alpha meta = %+v, want attribute pure", updated[0].Meta)
	}
	if updated[0].Regions.Japan.NoticeID != "event_230115_01" {
		t.Errorf("alpha noticeId = %q", updated[0].Regions.Japan.NoticeID)
	}
	// pre-notice for a known title is skipped
	if updated[1].Meta != nil || updated[1].Regions.Japan.NoticeID != "" {
		t.Errorf("beta should be untouched, got %+v", updated[1])
	}
}

func TestNoticeScraper_UpdateSkipsComplete(t *testing.T) {
	var pageHits int
	mux := http.NewServeMux()
	mux.HandleFunc("/api/information", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"NOTICE": [{"title": "ミッションライブイベント「Gamma」開催！", "informationType": "EVENT", "linkUrl": "event_240301_01"}]}`))
	})
	mux.HandleFunc("/information/", func(w http.ResponseWriter, r *http.Request) {
		pageHits++
		http.NotFound(w, r)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	s := newTestNoticeScraper(server)
	records := []event.Record{{
		Type: event.TypeMission,
		Meta: &event.Meta{Attribute: "cool"},
		Regions: event.RegionSet{Japan: &event.Window{
			Title: "Gamma",
			Start: event.MustParseDate("2024-03-05"),
			End:   event.MustParseDate("2024-03-12"),
		}},
	}}

	updated, err := s.Update(context.Background(), records)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if pageHits != 0 {
		t.Errorf("notice page fetched %d times, want 0", pageHits)
	}
	if updated[0].Meta.Attribute != "cool" {
		t.Errorf("attribute = %q, want cool", updated[0].Meta.Attribute)
	}
}

func TestNoticeScraper_UpdateFeedError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	s := newTestNoticeScraper(server)
	if _, err := s.Update(context.Background(), nil); err == nil {
		t.Fatal("expected error for unavailable feed")
	}
}

func TestParseEventTitle(t *testing.T) {
	tests := []struct {
		name      string
		title     string
		wantTitle string
		wantType  event.Type
		wantPre   bool
		wantErr   bool
	}{
		{
			name:      "challenge",
			title:     "チャレンジライブイベント「Alpha」開催！",
			wantTitle: "Alpha",
			wantType:  event.TypeChallenge,
		},
		{
			name:      "pre-notice",
			title:     "次回、チームライブフェスイベント「Team Up」",
			wantTitle: "Team Up",
			wantType:  event.TypeTeam,
			wantPre:   true,
		},
		{
			name:      "new format",
			title:     "新イベント形式のメドレーライブイベント「Medley」開催！",
			wantTitle: "Medley",
			wantType:  event.TypeMedley,
		},
		{
			name:      "with campaign name",
			title:     "ライブトライ！イベント『春の特別編』「Try Again」開催！",
			wantTitle: "Try Again",
			wantType:  event.TypeTry,
		},
		{
			name:    "unknown type",
			title:   "ふしぎなライブイベント「Unknown」開催！",
			wantErr: true,
		},
		{
			name:    "not an event title",
			title:   "メンテナンスのお知らせ",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEventTitle(tt.title)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseEventTitle() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got.Title != tt.wantTitle || got.Type != tt.wantType || got.PreNotice != tt.wantPre {
				t.Errorf("ParseEventTitle() = %+v", got)
			}
		})
	}
}

func TestParseEventTitle_UnknownTypeMessage(t *testing.T) {
	_, err := ParseEventTitle("ふしぎなライブイベント「Unknown」")
	if err == nil || !strings.Contains(err.Error(), "ふしぎなライブ") {
		t.Errorf("error should name the type, got %v", err)
	}
}

func TestNoticeYear(t *testing.T) {
	tests := []struct {
		link    string
		want    int
		wantErr bool
	}{
		{link: "event_230115_01", want: 2023},
		{link: "topic_24010101_02", want: 2024},
		{link: "event_01", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.link, func(t *testing.T) {
			got, err := NoticeYear(tt.link)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NoticeYear() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("NoticeYear() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParseNoticePage(t *testing.T) {
	tests := []struct {
		name      string
		page      string
		year      int
		wantStart string
		wantEnd   string
		wantAttr  string
		wantErr   bool
	}{
		{
			name:      "same year",
			page:      alphaPage,
			year:      2023,
			wantStart: "2023-01-20",
			wantEnd:   "2023-01-28",
			wantAttr:  "pure",
		},
		{
			name:      "year rollover",
			page:      betaPage,
			year:      2023,
			wantStart: "2023-12-28",
			wantEnd:   "2024-01-04",
		},
		{
			name:      "wave dash",
			page:      "<p>【開催期間】 3月5日15時 〜 3月12日20時59分</p><p>パワフルタイプの全メンバー</p>",
			year:      2024,
			wantStart: "2024-03-05",
			wantEnd:   "2024-03-12",
			wantAttr:  "powerful",
		},
		{
			name:    "no period",
			page:    "<p>ハッピータイプの全メンバー</p>",
			year:    2024,
			wantErr: true,
		},
		{
			name:    "no attribute",
			page:    "<p>【開催期間】 3月5日15時 ～ 3月12日20時59分</p>",
			year:    2024,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseNoticePage([]byte(tt.page), tt.year)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseNoticePage() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got.Start.String() != tt.wantStart || got.End.String() != tt.wantEnd {
				t.Errorf("period = %s ~ %s, want %s ~ %s", got.Start, got.End, tt.wantStart, tt.wantEnd)
			}
			if got.Attribute != tt.wantAttr {
				t.Errorf("attribute = %q, want %q", got.Attribute, tt.wantAttr)
			}
		})
	}
}
