package event

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Region identifies one regional edition of the game
type Region string

const (
	Japan  Region = "japan"
	Taiwan Region = "taiwan"
	Korea  Region = "korea"
	Global Region = "global"
	China  Region = "china"
)

// Regions lists every known region in dataset order
var Regions = []Region{Japan, Taiwan, Korea, Global, China}

var regionTags = map[Region]language.Tag{
	Japan:  language.Japanese,
	Taiwan: language.MustParse("zh-TW"),
	Korea:  language.Korean,
	Global: language.English,
	China:  language.MustParse("zh-CN"),
}

var regionLabels = map[Region]string{
	Japan:  "일본",
	Taiwan: "대만",
	Korea:  "한국",
	Global: "글로벌",
	China:  "중국",
}

// UnknownRegionError reports a region identifier outside the fixed enumeration
type UnknownRegionError struct {
	Value string
}

func (e *UnknownRegionError) Error() string {
	return fmt.Sprintf("unknown region %q (must be one of %s)", e.Value, strings.Join(regionNames(), ", "))
}

// ParseRegion validates a region identifier such as a query parameter or flag value
func ParseRegion(s string) (Region, error) {
	r := Region(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", &UnknownRegionError{Value: s}
	}
	return r, nil
}

// Valid reports whether r is one of the known regions
func (r Region) Valid() bool {
	_, ok := regionTags[r]
	return ok
}

// Tag returns the language used for titles in this region
func (r Region) Tag() language.Tag {
	if tag, ok := regionTags[r]; ok {
		return tag
	}
	return language.Und
}

// Label returns the display name of the region
func (r Region) Label() string {
	if label, ok := regionLabels[r]; ok {
		return label
	}
	return string(r)
}

func regionNames() []string {
	names := make([]string, len(Regions))
	for i, r := range Regions {
		names[i] = string(r)
	}
	return names
}
