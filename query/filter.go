package query

import (
	"strings"

	"github.com/mwantia/mediarepo/data"
)

// Filter is a predicate evaluated on fetched items. Items without the payload
// a filter inspects never match.
type Filter interface {
	Match(item *data.Item) bool
}

// Filters combines filters by logical AND.
type Filters []Filter

func (fs Filters) Match(item *data.Item) bool {
	for _, f := range fs {
		if !f.Match(item) {
			return false
		}
	}
	return true
}

// Apply keeps the items matching every filter, reusing the backing array.
func (fs Filters) Apply(items []*data.Item) []*data.Item {
	if len(fs) == 0 {
		return items
	}

	filtered := items[:0]
	for _, item := range items {
		if fs.Match(item) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

// SizeFilter bounds the pixel dimensions. Nil bounds are open, set bounds inclusive.
type SizeFilter struct {
	MinWidth  *uint32 `json:"min_w,omitempty"`
	MaxWidth  *uint32 `json:"max_w,omitempty"`
	MinHeight *uint32 `json:"min_h,omitempty"`
	MaxHeight *uint32 `json:"max_h,omitempty"`
}

func (f SizeFilter) Match(item *data.Item) bool {
	img, ok := item.Extend.Image()
	if !ok {
		return false
	}

	switch {
	case f.MinWidth != nil && img.Width < *f.MinWidth:
		return false
	case f.MaxWidth != nil && img.Width > *f.MaxWidth:
		return false
	case f.MinHeight != nil && img.Height < *f.MinHeight:
		return false
	case f.MaxHeight != nil && img.Height > *f.MaxHeight:
		return false
	}
	return true
}

type Rectangle int

const (
	Landscape Rectangle = iota
	Portrait
	NearlySquare
	Square
	P1080
	P1440
	P2160
)

var rectangleNames = map[Rectangle]string{
	Landscape:    "landscape",
	Portrait:     "portrait",
	NearlySquare: "nearly-square",
	Square:       "square",
	P1080:        "1080p",
	P1440:        "1440p",
	P2160:        "2160p",
}

func (r Rectangle) String() string {
	if name, ok := rectangleNames[r]; ok {
		return name
	}
	return "unknown"
}

// ParseRectangle maps a name as returned by String back to its Rectangle.
func ParseRectangle(name string) (Rectangle, bool) {
	for r, n := range rectangleNames {
		if strings.EqualFold(n, name) {
			return r, true
		}
	}
	return 0, false
}

// RectangleFilter classifies the aspect ratio or resolution tier. Resolution
// tiers accept either orientation.
type RectangleFilter struct {
	Rectangle Rectangle `json:"rectangle"`
}

func (f RectangleFilter) Match(item *data.Item) bool {
	img, ok := item.Extend.Image()
	if !ok {
		return false
	}

	w, h := img.Width, img.Height
	switch f.Rectangle {
	case Landscape:
		return w > h
	case Portrait:
		return w < h
	case NearlySquare:
		if w == 0 || h == 0 {
			return false
		}
		return float64(min(w, h))/float64(max(w, h)) > 0.9
	case Square:
		return w == h
	case P1080:
		return atLeast(w, h, 1920, 1080)
	case P1440:
		return atLeast(w, h, 2560, 1440)
	case P2160:
		return atLeast(w, h, 4096, 2160)
	}
	return false
}

func atLeast(w, h, long, short uint32) bool {
	return (w >= long && h >= short) || (w >= short && h >= long)
}

type Compare int

const (
	Exactly Compare = iota
	Prefix
	Suffix
	Includes
	Excludes
)

// URLFilter matches the source url of pictures. Photos and items without a
// url never match, Excludes included.
type URLFilter struct {
	URL     string  `json:"url"`
	Compare Compare `json:"compare"`
}

func (f URLFilter) Match(item *data.Item) bool {
	if item.Extend.Picture == nil || item.Extend.Picture.URL == nil {
		return false
	}

	url := *item.Extend.Picture.URL
	switch f.Compare {
	case Exactly:
		return url == f.URL
	case Prefix:
		return strings.HasPrefix(url, f.URL)
	case Suffix:
		return strings.HasSuffix(url, f.URL)
	case Includes:
		return strings.Contains(url, f.URL)
	case Excludes:
		return !strings.Contains(url, f.URL)
	}
	return false
}
