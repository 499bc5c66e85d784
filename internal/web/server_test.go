package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfrederiksen/regional-events/internal/event"
	"github.com/pfrederiksen/regional-events/internal/scraper"
	"github.com/pfrederiksen/regional-events/internal/storage"
)

func window(title, start, end string) *event.Window {
	return &event.Window{Title: title, Start: event.MustParseDate(start), End: event.MustParseDate(end)}
}

func sampleRecords() []event.Record {
	records := []event.Record{
		{
			LinkID: "Alpha",
			Type:   event.TypeNormal,
			Regions: event.RegionSet{
				Japan:  window("アルファ", "2023-01-01", "2023-01-08"),
				Korea:  window("알파", "2023-03-01", "2023-03-10"),
				Global: window("Alpha", "2023-02-01", "2023-02-08"),
			},
		},
		{
			Type: event.TypeChallenge,
			Regions: event.RegionSet{
				Japan: window("ベータ", "2023-01-12", "2023-01-19"),
			},
		},
	}
	event.Reindex(records)
	return records
}

func newTestServer(t *testing.T, records []event.Record, opts Options) (*Server, *storage.Storage) {
	t.Helper()
	store, err := storage.New(filepath.Join(t.TempDir(), "data.json"))
	require.NoError(t, err)
	require.NoError(t, store.Save(records))

	s, err := New(store, opts)
	require.NoError(t, err)
	return s, store
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestNew_Validation(t *testing.T) {
	store, err := storage.New(filepath.Join(t.TempDir(), "data.json"))
	require.NoError(t, err)

	_, err = New(store, Options{Base: "mars"})
	var unknown *event.UnknownRegionError
	assert.ErrorAs(t, err, &unknown)

	_, err = New(store, Options{RefreshCron: "not a schedule"})
	assert.Error(t, err)

	s, err := New(store, Options{RefreshCron: "0 */6 * * *"})
	require.NoError(t, err)
	assert.Equal(t, event.Japan, s.opts.Base)
	assert.Equal(t, event.Korea, s.opts.Target)
}

func TestHandleTable(t *testing.T) {
	s, _ := newTestServer(t, sampleRecords(), Options{})

	rec := get(t, s, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	body := rec.Body.String()
	assert.Contains(t, body, `<tr class="prediction">`)
	assert.Contains(t, body, "알파")
	assert.Contains(t, body, `<option value="korea" selected>`)
}

func TestHandleTable_QueryRegions(t *testing.T) {
	s, _ := newTestServer(t, sampleRecords(), Options{})

	rec := get(t, s, "/?base=japan&target=global")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `lang="en"`)
	assert.Contains(t, rec.Body.String(), `<option value="global" selected>`)
}

func TestHandleTable_Errors(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		status int
	}{
		{name: "unknown region", path: "/?base=mars", status: http.StatusBadRequest},
		{name: "missing seed", path: "/?target=china", status: http.StatusInternalServerError},
		{name: "invalid filter", path: "/?type=karaoke", status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t, sampleRecords(), Options{})

			rec := get(t, s, tt.path)
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), `class="error"`)
			assert.NotContains(t, rec.Body.String(), "<table", "no partial table on error")
		})
	}
}

func TestHandleTableJSON(t *testing.T) {
	s, _ := newTestServer(t, sampleRecords(), Options{})

	rec := get(t, s, "/table.json?oldest")
	require.Equal(t, http.StatusOK, rec.Code)

	var table struct {
		Base string `json:"base"`
		Rows []struct {
			Index int    `json:"index"`
			Kind  string `json:"kind"`
		} `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &table))
	assert.Equal(t, "japan", table.Base)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, 0, table.Rows[0].Index)
	assert.Equal(t, "predicted", table.Rows[1].Kind)

	rec = get(t, s, "/table.json?target=nowhere")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown region")
}

func TestHandleTableJSON_Filter(t *testing.T) {
	s, _ := newTestServer(t, sampleRecords(), Options{})

	rec := get(t, s, "/table.json?kind=predicted")
	require.Equal(t, http.StatusOK, rec.Code)

	var table struct {
		Rows []struct {
			Index int `json:"index"`
		} `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &table))
	require.Len(t, table.Rows, 1)
	assert.Equal(t, 1, table.Rows[0].Index)
}

func TestHandleCalendar(t *testing.T) {
	s, _ := newTestServer(t, sampleRecords(), Options{})

	rec := get(t, s, "/calendar.ics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/calendar")
	assert.Contains(t, rec.Body.String(), "BEGIN:VCALENDAR")
	assert.Equal(t, 2, strings.Count(rec.Body.String(), "BEGIN:VEVENT"))
}

func TestHandleData(t *testing.T) {
	records := sampleRecords()
	s, store := newTestServer(t, records, Options{})

	rec := get(t, s, "/data.json")
	require.Equal(t, http.StatusOK, rec.Code)

	want, err := storage.Encode(records)
	require.NoError(t, err)
	assert.Equal(t, string(want), rec.Body.String())

	require.NoError(t, store.Save(nil))
	rec = get(t, s, "/data.json")
	assert.Equal(t, "[]\n", rec.Body.String(), "every request reads a fresh snapshot")
}

func TestHandleHealth(t *testing.T) {
	s, _ := newTestServer(t, nil, Options{})

	rec := get(t, s, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

type fakeUpdater struct {
	name   string
	update func(records []event.Record) ([]event.Record, error)
}

func (f *fakeUpdater) Name() string { return f.name }

func (f *fakeUpdater) Update(_ context.Context, records []event.Record) ([]event.Record, error) {
	return f.update(records)
}

var _ scraper.Updater = (*fakeUpdater)(nil)

// recordingNotifier keeps every reported change by source
type recordingNotifier struct {
	sources []string
	changes []*event.Change
}

func (n *recordingNotifier) Notify(source string, changes []*event.Change) error {
	n.sources = append(n.sources, source)
	n.changes = append(n.changes, changes...)
	return nil
}

func TestRefresh(t *testing.T) {
	addGlobal := &fakeUpdater{name: "global", update: func(records []event.Record) ([]event.Record, error) {
		records[1].Regions.Global = window("Beta", "2023-02-12", "2023-02-19")
		return records, nil
	}}
	notified := &recordingNotifier{}
	s, store := newTestServer(t, sampleRecords(), Options{Updaters: []scraper.Updater{addGlobal}, Notifier: notified})

	changes, err := s.Refresh(context.Background())
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, event.Global, changes[0].Region)
	assert.Equal(t, []string{"global"}, notified.sources)
	assert.Equal(t, changes, notified.changes)

	saved, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, saved[1].Regions.Global)
	assert.Equal(t, "Beta", saved[1].Regions.Global.Title)

	changes, err = s.Refresh(context.Background())
	require.NoError(t, err)
	assert.Empty(t, changes, "second refresh finds nothing new")
	assert.Len(t, notified.sources, 1, "nothing is reported when nothing changed")
}

func TestRefresh_LaterFailureReportsNothing(t *testing.T) {
	addGlobal := &fakeUpdater{name: "global", update: func(records []event.Record) ([]event.Record, error) {
		records[1].Regions.Global = window("Beta", "2023-02-12", "2023-02-19")
		return records, nil
	}}
	failing := &fakeUpdater{name: "japan", update: func([]event.Record) ([]event.Record, error) {
		return nil, errors.New("feed unavailable")
	}}
	notified := &recordingNotifier{}
	s, store := newTestServer(t, sampleRecords(), Options{
		Updaters: []scraper.Updater{addGlobal, failing},
		Notifier: notified,
	})

	_, err := s.Refresh(context.Background())
	require.Error(t, err)
	assert.Empty(t, notified.sources, "unsaved changes must not be reported")

	saved, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, saved[1].Regions.Global)
}

func TestRefresh_FailureKeepsDataset(t *testing.T) {
	failing := &fakeUpdater{name: "japan", update: func([]event.Record) ([]event.Record, error) {
		return nil, errors.New("feed unavailable")
	}}
	records := sampleRecords()
	s, store := newTestServer(t, records, Options{Updaters: []scraper.Updater{failing}})

	_, err := s.Refresh(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "updating japan")

	saved, err := store.Load()
	require.NoError(t, err)
	assert.Len(t, saved, len(records))
}
