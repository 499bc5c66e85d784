package event

import (
	"encoding/json"
	"errors"
)

// ErrMissingDate is wrapped by MalformedDateError when a window lacks a start or end
var ErrMissingDate = errors.New("missing date")

const (
	WikiBaseURL   = "https://bandori.fandom.com/wiki/"
	NoticeBaseURL = "https://web.star.craftegg.jp/information/"
)

// Type is the gameplay format of an event
type Type string

const (
	TypeNormal    Type = "normal"
	TypeChallenge Type = "challenge"
	TypeVersus    Type = "versus"
	TypeTry       Type = "try"
	TypeMission   Type = "mission"
	TypeTeam      Type = "team"
	TypeMedley    Type = "medley"
)

var typeLabels = map[Type]string{
	TypeNormal:    "일반",
	TypeChallenge: "챌린지",
	TypeVersus:    "합동",
	TypeTry:       "트라이",
	TypeMission:   "미션",
	TypeTeam:      "팀",
	TypeMedley:    "메들리",
}

// Valid reports whether t is one of the known event types
func (t Type) Valid() bool {
	_, ok := typeLabels[t]
	return ok
}

// Label returns the display name of the event type
func (t Type) Label() string {
	if label, ok := typeLabels[t]; ok {
		return label
	}
	return string(t)
}

// Window is one region's release window for one event
type Window struct {
	Title    string `json:"title"`
	Start    Date   `json:"start"`
	End      Date   `json:"end"`
	NoticeID string `json:"noticeId,omitempty"` // in-app notice path, japan only
}

// UnmarshalJSON decodes a window and rejects one without a start or end date
func (w *Window) UnmarshalJSON(data []byte) error {
	type window Window
	var decoded window
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	if decoded.Start.IsZero() || decoded.End.IsZero() {
		return &MalformedDateError{Value: decoded.Title, Err: ErrMissingDate}
	}
	*w = Window(decoded)
	return nil
}

// Span returns the raw number of days between start and end (no +1)
func (w *Window) Span() int {
	return DiffDays(w.Start, w.End)
}

// Days returns the inclusive length of the window
func (w *Window) Days() int {
	return w.Span() + 1
}

// DreamFestival links the gacha that ran alongside an event
type DreamFestival struct {
	LinkID string `json:"linkId,omitempty"`
}

// Meta holds optional event details
type Meta struct {
	Attribute     string         `json:"attribute,omitempty"` // pure, cool, happy, powerful
	DreamFestival *DreamFestival `json:"dreamFestival,omitempty"`
}

// RegionSet holds the per-region windows of a record. Absent regions encode as null.
type RegionSet struct {
	Japan  *Window `json:"japan"`
	Taiwan *Window `json:"taiwan"`
	Korea  *Window `json:"korea"`
	Global *Window `json:"global"`
	China  *Window `json:"china"`
}

// Get returns the window for r, or nil when r has none
func (s *RegionSet) Get(r Region) *Window {
	switch r {
	case Japan:
		return s.Japan
	case Taiwan:
		return s.Taiwan
	case Korea:
		return s.Korea
	case Global:
		return s.Global
	case China:
		return s.China
	}
	return nil
}

// Set stores w as the window for r
func (s *RegionSet) Set(r Region, w *Window) {
	switch r {
	case Japan:
		s.Japan = w
	case Taiwan:
		s.Taiwan = w
	case Korea:
		s.Korea = w
	case Global:
		s.Global = w
	case China:
		s.China = w
	}
}

// Record is one game event as stored in the dataset
type Record struct {
	Index   int // position in the dataset, assigned on load
	LinkID  string
	Meta    *Meta
	Type    Type
	Regions RegionSet
}

type recordJSON struct {
	LinkID *string   `json:"linkId"`
	Meta   *Meta     `json:"meta"`
	Type   Type      `json:"type"`
	Region RegionSet `json:"region"`
}

// MarshalJSON keeps an empty LinkID as null like the upstream dataset
func (r Record) MarshalJSON() ([]byte, error) {
	out := recordJSON{Meta: r.Meta, Type: r.Type, Region: r.Regions}
	if r.LinkID != "" {
		linkID := r.LinkID
		out.LinkID = &linkID
	}
	return json.Marshal(out)
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var in recordJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	r.Meta = in.Meta
	r.Type = in.Type
	r.Regions = in.Region
	r.LinkID = ""
	if in.LinkID != nil {
		r.LinkID = *in.LinkID
	}
	return nil
}

// Window returns the record's window for region, or nil
func (r *Record) Window(region Region) *Window {
	return r.Regions.Get(region)
}

// NoticeURL returns the in-app notice URL for region, or "" when none is known
func (r *Record) NoticeURL(region Region) string {
	w := r.Window(region)
	if w == nil || w.NoticeID == "" || region != Japan {
		return ""
	}
	return NoticeBaseURL + w.NoticeID
}

// ExternalLink returns the wiki page of the event when its link id is known,
// otherwise the notice of the target region, then of the base region
func (r *Record) ExternalLink(base, target Region) string {
	if r.LinkID != "" {
		return WikiBaseURL + r.LinkID
	}
	if link := r.NoticeURL(target); link != "" {
		return link
	}
	return r.NoticeURL(base)
}

// Reindex assigns each record its position in records
func Reindex(records []Record) {
	for i := range records {
		records[i].Index = i
	}
}
