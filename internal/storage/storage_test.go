package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pfrederiksen/regional-events/internal/event"
)

const fixture = `[
  {
    "linkId": "First_Event",
    "meta": null,
    "type": "normal",
    "region": {
      "japan": {
        "title": "最初",
        "start": "2017-03-21",
        "end": "2017-03-28"
      },
      "taiwan": null,
      "korea": {
        "title": "처음",
        "start": "2017-06-01",
        "end": "2017-06-08"
      },
      "global": null,
      "china": null
    }
  },
  {
    "linkId": null,
    "meta": {
      "attribute": "cool"
    },
    "type": "challenge",
    "region": {
      "japan": {
        "title": "次",
        "start": "2017-03-30",
        "end": "2017-04-06",
        "noticeId": "event_170330_1.html"
      },
      "taiwan": null,
      "korea": null,
      "global": null,
      "china": null
    }
  }
]
`

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}
	return path
}

func TestStorage_Load(t *testing.T) {
	store, err := New(writeFixture(t, fixture))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	records, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	for i, rec := range records {
		if rec.Index != i {
			t.Errorf("records[%d].Index = %d", i, rec.Index)
		}
	}
	if records[0].LinkID != "First_Event" || records[1].LinkID != "" {
		t.Errorf("unexpected link ids: %q, %q", records[0].LinkID, records[1].LinkID)
	}
	if records[1].Meta == nil || records[1].Meta.Attribute != "cool" {
		t.Errorf("records[1].Meta = %+v, want attribute cool", records[1].Meta)
	}
}

func TestStorage_SaveRoundTrip(t *testing.T) {
	path := writeFixture(t, fixture)
	store, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	records, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := store.Save(records); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != fixture {
		t.Errorf("Save() did not preserve the file format:\n%s", data)
	}
}

func TestStorage_SaveCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data.json")
	store, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	var rec event.Record
	rec.Regions.Set(event.Japan, &event.Window{
		Title: "a",
		Start: event.MustParseDate("2024-01-01"),
		End:   event.MustParseDate("2024-01-02"),
	})
	if err := store.Save([]event.Record{rec}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	back, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(back) != 1 || back[0].Window(event.Japan).Title != "a" {
		t.Errorf("Load() after Save() = %+v", back)
	}
}

func TestStorage_LoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		store, _ := New(filepath.Join(t.TempDir(), "absent.json"))
		_, err := store.Load()
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("Load() error = %v, want os.ErrNotExist", err)
		}
	})

	t.Run("malformed date", func(t *testing.T) {
		bad := `[{"linkId":null,"meta":null,"type":"normal","region":{"japan":{"title":"a","start":"2024-02-30","end":"2024-03-01"}}}]`
		store, _ := New(writeFixture(t, bad))
		_, err := store.Load()
		var malformed *event.MalformedDateError
		if !errors.As(err, &malformed) {
			t.Errorf("Load() error = %v, want *event.MalformedDateError", err)
		}
	})

	t.Run("missing start date", func(t *testing.T) {
		bad := `[{"linkId":null,"meta":null,"type":"normal","region":{"japan":{"title":"a","end":"2024-01-07"}}}]`
		store, _ := New(writeFixture(t, bad))
		_, err := store.Load()
		if !errors.Is(err, event.ErrMissingDate) {
			t.Errorf("Load() error = %v, want event.ErrMissingDate", err)
		}
	})

	t.Run("not an array", func(t *testing.T) {
		store, _ := New(writeFixture(t, `{"events": []}`))
		if _, err := store.Load(); err == nil {
			t.Error("Load() expected error for non-array dataset")
		}
	})
}

func TestNew_ExpandsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	store, err := New("~/events/data.json")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if want := filepath.Join(home, "events", "data.json"); store.Path() != want {
		t.Errorf("Path() = %q, want %q", store.Path(), want)
	}
}
