package query_test

import (
	"testing"

	"github.com/mwantia/mediarepo/data"
	"github.com/mwantia/mediarepo/query"
)

func picture(w, h uint32, url string) *data.Item {
	extend := &data.PictureExtend{ImageExtend: data.ImageExtend{Width: w, Height: h}}
	if url != "" {
		extend.URL = &url
	}
	return &data.Item{Extend: data.Extend{Picture: extend}}
}

func photo(w, h uint32) *data.Item {
	return &data.Item{Extend: data.Extend{Photo: &data.PhotoExtend{ImageExtend: data.ImageExtend{Width: w, Height: h}}}}
}

func u32(v uint32) *uint32 {
	return &v
}

func TestSizeFilter(t *testing.T) {
	filter := query.SizeFilter{MinWidth: u32(100), MaxHeight: u32(200)}

	tests := []struct {
		name string
		item *data.Item
		want bool
	}{
		{"Inside", photo(100, 200), true},
		{"TooNarrow", photo(99, 50), false},
		{"TooTall", picture(500, 201, ""), false},
		{"NoPayload", &data.Item{}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(tst *testing.T) {
			if got := filter.Match(tc.item); got != tc.want {
				tst.Errorf("Expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestRectangleFilter(t *testing.T) {
	tests := []struct {
		rect query.Rectangle
		item *data.Item
		want bool
	}{
		{query.Landscape, photo(300, 200), true},
		{query.Landscape, photo(200, 300), false},
		{query.Portrait, photo(200, 300), true},
		{query.NearlySquare, photo(95, 100), true},
		{query.NearlySquare, photo(90, 100), false},
		{query.Square, photo(64, 64), true},
		{query.Square, photo(64, 65), false},
		{query.P1080, photo(1920, 1080), true},
		{query.P1080, photo(1080, 1920), true},
		{query.P1080, photo(1919, 1080), false},
		{query.P1440, photo(2560, 1440), true},
		{query.P2160, photo(3840, 2160), false},
		{query.P2160, photo(2160, 4096), true},
		{query.Square, &data.Item{}, false},
	}

	for _, tc := range tests {
		t.Run(tc.rect.String(), func(tst *testing.T) {
			filter := query.RectangleFilter{Rectangle: tc.rect}
			if got := filter.Match(tc.item); got != tc.want {
				tst.Errorf("Expected %v for %+v, got %v", tc.want, tc.item.Extend, got)
			}
		})
	}
}

// TestURLFilter verifies the compare modes and that only pictures carry a url.
func TestURLFilter(t *testing.T) {
	item := picture(10, 10, "https://example.org/art/42.png")

	tests := []struct {
		name   string
		filter query.URLFilter
		item   *data.Item
		want   bool
	}{
		{"Exactly", query.URLFilter{URL: "https://example.org/art/42.png", Compare: query.Exactly}, item, true},
		{"Prefix", query.URLFilter{URL: "https://example.org", Compare: query.Prefix}, item, true},
		{"Suffix", query.URLFilter{URL: ".jpg", Compare: query.Suffix}, item, false},
		{"Includes", query.URLFilter{URL: "/art/", Compare: query.Includes}, item, true},
		{"Excludes", query.URLFilter{URL: "/art/", Compare: query.Excludes}, item, false},
		{"ExcludesWithoutURL", query.URLFilter{URL: "/art/", Compare: query.Excludes}, picture(10, 10, ""), false},
		{"Photo", query.URLFilter{URL: "", Compare: query.Includes}, photo(10, 10), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(tst *testing.T) {
			if got := tc.filter.Match(tc.item); got != tc.want {
				tst.Errorf("Expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestFilters_Apply(t *testing.T) {
	items := []*data.Item{photo(300, 200), photo(200, 300), photo(1920, 1080), &data.Item{}}
	filters := query.Filters{
		query.RectangleFilter{Rectangle: query.Landscape},
		query.SizeFilter{MaxWidth: u32(1000)},
	}

	kept := filters.Apply(items)
	if len(kept) != 1 || kept[0].Extend.Photo.Width != 300 {
		t.Errorf("Expected only the 300x200 photo, got %d items", len(kept))
	}

	if got := query.Filters(nil).Apply(items[:2]); len(got) != 2 {
		t.Errorf("Expected no filters to keep every item, got %d", len(got))
	}
}

func TestParseRectangle(t *testing.T) {
	for _, name := range []string{"landscape", "Portrait", "1080p"} {
		if _, ok := query.ParseRectangle(name); !ok {
			t.Errorf("ParseRectangle(%q) failed", name)
		}
	}
	if _, ok := query.ParseRectangle("round"); ok {
		t.Errorf("Expected ParseRectangle to reject unknown names")
	}
}
