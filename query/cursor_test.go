package query_test

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/mwantia/mediarepo/data"
	mediaerrors "github.com/mwantia/mediarepo/data/errors"
	"github.com/mwantia/mediarepo/query"
	"github.com/mwantia/mediarepo/storage/ephemeral"
)

var epoch = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

// newBackend seeds n items with ids 1..n into repo 1, created one hour apart.
func newBackend(t *testing.T, n int) *ephemeral.EphemeralBackend {
	t.Helper()

	backend := ephemeral.NewEphemeralBackend()
	for i := 0; i < n; i++ {
		item := &data.Item{
			Name:        "item",
			ContentType: data.ContentTypePNG,
			CreatedAt:   epoch.Add(time.Duration(i) * time.Hour),
			RepoID:      1,
		}
		if err := backend.CreateItem(t.Context(), item); err != nil {
			t.Fatalf("CreateItem failed: %v", err)
		}
	}
	return backend
}

func itemIDs(items []*data.Item) []int64 {
	out := make([]int64, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}

// drain pulls until an empty page and returns the ids of every page.
func drain(t *testing.T, cursor *query.Cursor, limit int) [][]int64 {
	t.Helper()

	pages := make([][]int64, 0)
	for range 100 {
		items, err := cursor.Pull(t.Context(), limit)
		if err != nil {
			t.Fatalf("Pull failed: %v", err)
		}
		pages = append(pages, itemIDs(items))
		if len(items) == 0 {
			return pages
		}
	}
	t.Fatalf("Cursor did not reach the end")
	return nil
}

func TestCursor_Range(t *testing.T) {
	tests := []struct {
		name  string
		desc  bool
		conds []query.Condition
		limit int
		want  [][]int64
	}{
		{
			name:  "StartEndAscending",
			conds: []query.Condition{query.StartID{ID: 3}, query.EndID{ID: 8}},
			limit: 3,
			want:  [][]int64{{3, 4, 5}, {6, 7}, {}},
		},
		{
			name:  "StartEndDescending",
			desc:  true,
			conds: []query.Condition{query.StartID{ID: 3}, query.EndID{ID: 8}},
			limit: 3,
			want:  [][]int64{{7, 6, 5}, {4, 3}, {}},
		},
		{
			name:  "Unbounded",
			limit: 4,
			want:  [][]int64{{1, 2, 3, 4}, {5, 6, 7, 8}, {9, 10}, {}},
		},
		{
			name:  "TightestBoundWins",
			conds: []query.Condition{query.StartID{ID: 2}, query.StartID{ID: 9}, query.StartID{ID: 4}},
			limit: 5,
			want:  [][]int64{{9, 10}, {}},
		},
		{
			name:  "EmptyRange",
			conds: []query.Condition{query.StartID{ID: 8}, query.EndID{ID: 8}},
			limit: 5,
			want:  [][]int64{{}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(tst *testing.T) {
			cursor := query.NewCursor(newBackend(tst, 10), nil, 1, tc.desc)
			if err := cursor.Init(tst.Context(), tc.conds...); err != nil {
				tst.Fatalf("Init failed: %v", err)
			}

			pages := drain(tst, cursor, tc.limit)
			if !slices.EqualFunc(pages, tc.want, slices.Equal) {
				tst.Errorf("Expected pages %v, got %v", tc.want, pages)
			}
			if cursor.State() != query.Exhausted {
				tst.Errorf("Expected exhausted cursor, got %s", cursor.State())
			}
		})
	}
}

func TestCursor_TimeConditions(t *testing.T) {
	backend := newBackend(t, 10)

	t.Run("Window", func(tst *testing.T) {
		cursor := query.NewCursor(backend, nil, 1, false)
		err := cursor.Init(tst.Context(),
			query.StartTime{Time: epoch.Add(2 * time.Hour)},
			query.EndTime{Time: epoch.Add(5 * time.Hour)},
		)
		if err != nil {
			tst.Fatalf("Init failed: %v", err)
		}

		pages := drain(tst, cursor, 10)
		if !slices.Equal(pages[0], []int64{3, 4}) {
			tst.Errorf("Expected [3 4], got %v", pages[0])
		}
	})

	// Item 5 is the last one created before epoch+5h and bounds the range
	// exclusively, the same way EndID{5} does.
	t.Run("EndTimeMatchesEndID", func(tst *testing.T) {
		byTime := query.NewCursor(backend, nil, 1, false)
		if err := byTime.Init(tst.Context(), query.EndTime{Time: epoch.Add(5 * time.Hour)}); err != nil {
			tst.Fatalf("Init failed: %v", err)
		}
		byID := query.NewCursor(backend, nil, 1, false)
		if err := byID.Init(tst.Context(), query.EndID{ID: 5}); err != nil {
			tst.Fatalf("Init failed: %v", err)
		}

		got, want := drain(tst, byTime, 10), drain(tst, byID, 10)
		if !slices.Equal(got[0], []int64{1, 2, 3, 4}) {
			tst.Errorf("Expected [1 2 3 4], got %v", got[0])
		}
		if !slices.Equal(got[0], want[0]) {
			tst.Errorf("Expected EndTime page %v to equal EndID page %v", got[0], want[0])
		}
	})

	t.Run("NothingAfterStart", func(tst *testing.T) {
		cursor := query.NewCursor(backend, nil, 1, false)
		if err := cursor.Init(tst.Context(), query.StartTime{Time: epoch.AddDate(1, 0, 0)}); err != nil {
			tst.Fatalf("Init failed: %v", err)
		}

		pages := drain(tst, cursor, 10)
		if len(pages) != 1 {
			tst.Errorf("Expected a single empty page, got %v", pages)
		}
	})
}

// TestCursor_TagListIgnoresScalarBounds asserts that once a tag condition
// produced an id list, id bounds applied afterwards do not filter it.
func TestCursor_TagListIgnoresScalarBounds(t *testing.T) {
	backend := newBackend(t, 10)
	for _, id := range []int64{2, 4, 6, 8} {
		if err := backend.AttachTag(t.Context(), id, 7); err != nil {
			t.Fatalf("AttachTag failed: %v", err)
		}
	}

	cursor := query.NewCursor(backend, backend, 1, false)
	if err := cursor.Init(t.Context(), query.Tags{IDs: []int64{7}}, query.StartID{ID: 5}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	pages := drain(t, cursor, 10)
	if !slices.Equal(pages[0], []int64{2, 4, 6, 8}) {
		t.Errorf("Expected [2 4 6 8], got %v", pages[0])
	}
}

func TestCursor_TagIntersection(t *testing.T) {
	backend := newBackend(t, 10)
	attach := map[int64][]int64{
		1: {1, 2, 3, 4, 5, 6},
		2: {4, 5, 6, 7, 8},
	}
	for tag, items := range attach {
		for _, id := range items {
			if err := backend.AttachTag(t.Context(), id, tag); err != nil {
				t.Fatalf("AttachTag failed: %v", err)
			}
		}
	}

	if err := backend.DeleteItem(t.Context(), 5); err != nil {
		t.Fatalf("DeleteItem failed: %v", err)
	}

	cursor := query.NewCursor(backend, backend, 1, true)
	if err := cursor.Init(t.Context(), query.Tags{IDs: []int64{1}}, query.Tags{IDs: []int64{2}}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	pages := drain(t, cursor, 1)
	want := [][]int64{{6}, {4}, {}}
	if !slices.EqualFunc(pages, want, slices.Equal) {
		t.Errorf("Expected pages %v, got %v", want, pages)
	}
}

func TestCursor_Misuse(t *testing.T) {
	backend := newBackend(t, 3)

	t.Run("PullBeforeInit", func(tst *testing.T) {
		cursor := query.NewCursor(backend, nil, 1, false)
		if _, err := cursor.Pull(tst.Context(), 1); !errors.Is(err, mediaerrors.ErrInvalid) {
			tst.Errorf("Expected ErrInvalid, got %v", err)
		}
	})

	t.Run("ZeroLimit", func(tst *testing.T) {
		cursor := query.NewCursor(backend, nil, 1, false)
		if err := cursor.Init(tst.Context()); err != nil {
			tst.Fatalf("Init failed: %v", err)
		}
		if _, err := cursor.Pull(tst.Context(), 0); !errors.Is(err, mediaerrors.ErrInvalid) {
			tst.Errorf("Expected ErrInvalid, got %v", err)
		}
	})

	t.Run("TagsWithoutIndex", func(tst *testing.T) {
		cursor := query.NewCursor(backend, nil, 1, false)
		if err := cursor.Init(tst.Context(), query.Tags{IDs: []int64{1}}); !errors.Is(err, mediaerrors.ErrInvalid) {
			tst.Errorf("Expected ErrInvalid, got %v", err)
		}
	})

	t.Run("EmptyRepo", func(tst *testing.T) {
		cursor := query.NewCursor(backend, nil, 42, false)
		if err := cursor.Init(tst.Context()); err != nil {
			tst.Fatalf("Init failed: %v", err)
		}
		items, err := cursor.Pull(tst.Context(), 10)
		if err != nil || len(items) != 0 {
			tst.Errorf("Expected empty page, got %v (%v)", items, err)
		}
	})
}
