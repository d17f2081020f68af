package storage_test

import (
	"errors"
	"testing"
	"time"

	"github.com/mwantia/mediarepo/data"
	mediaerrors "github.com/mwantia/mediarepo/data/errors"
	"github.com/mwantia/mediarepo/storage"
	"github.com/mwantia/mediarepo/storage/ephemeral"
	"github.com/mwantia/mediarepo/storage/sqlite"
)

// TestStoreFactory creates a new, opened store instance for testing.
type TestStoreFactory func(t *testing.T) (storage.Store, error)

// GetTestStoreFactories returns all store implementations that run without external services.
func GetTestStoreFactories() map[string]TestStoreFactory {
	return map[string]TestStoreFactory{
		"ephemeral": func(t *testing.T) (storage.Store, error) {
			return ephemeral.NewEphemeralBackend(), nil
		},
		"sqlite": func(t *testing.T) (storage.Store, error) {
			return sqlite.NewSQLiteBackend(":memory:")
		},
	}
}

func openStore(tst *testing.T, factory TestStoreFactory) storage.Store {
	tst.Helper()

	store, err := factory(tst)
	if err != nil {
		tst.Fatalf("Store init failed: %v", err)
	}
	if err := store.Open(tst.Context()); err != nil {
		tst.Fatalf("Store open failed: %v", err)
	}
	tst.Cleanup(func() {
		store.Close(tst.Context())
	})

	return store
}

func seedItems(tst *testing.T, store storage.Store, repoID int64, n int, created time.Time) []*data.Item {
	tst.Helper()

	items := make([]*data.Item, 0, n)
	for i := 0; i < n; i++ {
		item := &data.Item{
			Name:        "item",
			ContentType: data.ContentTypePNG,
			Size:        int64(100 + i),
			CreatedAt:   created.Add(time.Duration(i) * time.Hour),
			RepoID:      repoID,
			Extend: data.Extend{Photo: &data.PhotoExtend{
				ImageExtend: data.ImageExtend{Width: uint32(10 + i), Height: 20},
			}},
		}
		if err := store.CreateItem(tst.Context(), item); err != nil {
			tst.Fatalf("CreateItem failed: %v", err)
		}
		items = append(items, item)
	}

	return items
}

func ids(items []*data.Item) []int64 {
	out := make([]int64, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// TestAllStores_Repos verifies repo creation, lookup, and renaming.
func TestAllStores_Repos(t *testing.T) {
	for name, factory := range GetTestStoreFactories() {
		t.Run(name, func(tst *testing.T) {
			ctx := tst.Context()
			store := openStore(tst, factory)

			repo := &data.Repo{Name: "art", Kind: data.RepoKindIllustration, Order: data.FileOrderCreateMonth}
			if err := store.CreateRepo(ctx, repo); err != nil {
				tst.Fatalf("CreateRepo failed: %v", err)
			}
			if repo.ID == 0 {
				tst.Fatal("Expected repo id to be assigned")
			}

			if err := store.CreateRepo(ctx, &data.Repo{Name: "art"}); !errors.Is(err, mediaerrors.ErrUsedRepoName) {
				tst.Errorf("Expected ErrUsedRepoName, got %v", err)
			}

			got, err := store.SelectRepoByName(ctx, "art")
			if err != nil {
				tst.Fatalf("SelectRepoByName failed: %v", err)
			}
			if got.ID != repo.ID || got.Order != data.FileOrderCreateMonth || got.Kind != data.RepoKindIllustration {
				tst.Errorf("Unexpected repo %+v", got)
			}

			if err := store.UpdateRepoName(ctx, repo.ID, "drawings"); err != nil {
				tst.Fatalf("UpdateRepoName failed: %v", err)
			}
			if _, err := store.SelectRepoByName(ctx, "art"); !errors.Is(err, mediaerrors.ErrNoSuchRepo) {
				tst.Errorf("Expected ErrNoSuchRepo for old name, got %v", err)
			}

			renamed, err := store.SelectRepo(ctx, repo.ID)
			if err != nil {
				tst.Fatalf("SelectRepo failed: %v", err)
			}
			if renamed.Name != "drawings" {
				tst.Errorf("Expected 'drawings', got %q", renamed.Name)
			}

			if _, err := store.SelectRepo(ctx, 999); !errors.Is(err, mediaerrors.ErrNoSuchRepo) {
				tst.Errorf("Expected ErrNoSuchRepo, got %v", err)
			}

			repos, err := store.ListRepos(ctx)
			if err != nil {
				tst.Fatalf("ListRepos failed: %v", err)
			}
			if len(repos) != 1 {
				tst.Errorf("Expected 1 repo, got %d", len(repos))
			}
		})
	}
}

// TestAllStores_RangeScans verifies bounds, ordering, limits and soft deletes.
func TestAllStores_RangeScans(t *testing.T) {
	for name, factory := range GetTestStoreFactories() {
		t.Run(name, func(tst *testing.T) {
			ctx := tst.Context()
			store := openStore(tst, factory)

			repo := &data.Repo{Name: "photos", Kind: data.RepoKindPhoto}
			if err := store.CreateRepo(ctx, repo); err != nil {
				tst.Fatalf("CreateRepo failed: %v", err)
			}

			lo, hi, err := store.SelectMinMaxID(ctx, repo.ID)
			if err != nil {
				tst.Fatalf("SelectMinMaxID failed: %v", err)
			}
			if lo != 0 || hi != 0 {
				tst.Errorf("Expected (0, 0) for empty repo, got (%d, %d)", lo, hi)
			}

			items := seedItems(tst, store, repo.ID, 5, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
			all := ids(items)

			lo, hi, err = store.SelectMinMaxID(ctx, repo.ID)
			if err != nil {
				tst.Fatalf("SelectMinMaxID failed: %v", err)
			}
			if lo != all[0] || hi != all[4] {
				tst.Errorf("Expected (%d, %d), got (%d, %d)", all[0], all[4], lo, hi)
			}

			asc, err := store.SelectFrom(ctx, repo.ID, all[1], all[4], 10)
			if err != nil {
				tst.Fatalf("SelectFrom failed: %v", err)
			}
			if !equalIDs(ids(asc), all[1:4]) {
				tst.Errorf("Expected %v, got %v", all[1:4], ids(asc))
			}

			desc, err := store.SelectTo(ctx, repo.ID, all[0], all[4]+1, 2)
			if err != nil {
				tst.Fatalf("SelectTo failed: %v", err)
			}
			if !equalIDs(ids(desc), []int64{all[4], all[3]}) {
				tst.Errorf("Expected [%d %d], got %v", all[4], all[3], ids(desc))
			}

			if err := store.DeleteItem(ctx, all[2]); err != nil {
				tst.Fatalf("DeleteItem failed: %v", err)
			}
			asc, err = store.SelectFrom(ctx, repo.ID, all[0], all[4]+1, 10)
			if err != nil {
				tst.Fatalf("SelectFrom failed: %v", err)
			}
			if len(asc) != 4 {
				tst.Errorf("Expected deleted item to be hidden, got %v", ids(asc))
			}
			if _, err := store.SelectByID(ctx, all[2]); !errors.Is(err, mediaerrors.ErrItemNotFound) {
				tst.Errorf("Expected ErrItemNotFound, got %v", err)
			}

			byIDs, err := store.SelectByIDs(ctx, []int64{all[0], all[2], 12345})
			if err != nil {
				tst.Fatalf("SelectByIDs failed: %v", err)
			}
			if !equalIDs(ids(byIDs), []int64{all[0]}) {
				tst.Errorf("Expected only %d, got %v", all[0], ids(byIDs))
			}
		})
	}
}

// TestAllStores_TimeBoundaries verifies inclusive start and exclusive end lookups.
func TestAllStores_TimeBoundaries(t *testing.T) {
	for name, factory := range GetTestStoreFactories() {
		t.Run(name, func(tst *testing.T) {
			ctx := tst.Context()
			store := openStore(tst, factory)

			repo := &data.Repo{Name: "timeline"}
			if err := store.CreateRepo(ctx, repo); err != nil {
				tst.Fatalf("CreateRepo failed: %v", err)
			}

			base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
			all := ids(seedItems(tst, store, repo.ID, 4, base))

			start, err := store.SelectStartTime(ctx, repo.ID, base.Add(time.Hour))
			if err != nil {
				tst.Fatalf("SelectStartTime failed: %v", err)
			}
			if start != all[1] {
				tst.Errorf("Expected start %d, got %d", all[1], start)
			}

			end, err := store.SelectEndTime(ctx, repo.ID, base.Add(2*time.Hour))
			if err != nil {
				tst.Fatalf("SelectEndTime failed: %v", err)
			}
			if end != all[1] {
				tst.Errorf("Expected end %d, got %d", all[1], end)
			}

			if _, err := store.SelectStartTime(ctx, repo.ID, base.Add(48*time.Hour)); !errors.Is(err, mediaerrors.ErrItemNotFound) {
				tst.Errorf("Expected ErrItemNotFound, got %v", err)
			}
		})
	}
}

func TestAllStores_ItemRoundTrip(t *testing.T) {
	for name, factory := range GetTestStoreFactories() {
		t.Run(name, func(tst *testing.T) {
			ctx := tst.Context()
			store := openStore(tst, factory)

			repo := &data.Repo{Name: "roundtrip"}
			if err := store.CreateRepo(ctx, repo); err != nil {
				tst.Fatalf("CreateRepo failed: %v", err)
			}

			url := "https://example.com/a.png"
			item := &data.Item{
				Name:        "a.png",
				ContentType: data.ContentTypePNG,
				Size:        42,
				RepoID:      repo.ID,
				Extend: data.Extend{Picture: &data.PictureExtend{
					ImageExtend: data.ImageExtend{Width: 640, Height: 480},
					URL:         &url,
				}},
			}
			if err := store.CreateItem(ctx, item); err != nil {
				tst.Fatalf("CreateItem failed: %v", err)
			}
			if err := store.UpdatePath(ctx, item.ID, "2024/1.png"); err != nil {
				tst.Fatalf("UpdatePath failed: %v", err)
			}

			got, err := store.SelectByID(ctx, item.ID)
			if err != nil {
				tst.Fatalf("SelectByID failed: %v", err)
			}
			if got.ContentType != data.ContentTypePNG || got.Path != "2024/1.png" || got.Size != 42 {
				tst.Errorf("Unexpected item %+v", got)
			}
			if got.Extend.Picture == nil || got.Extend.Picture.URL == nil || *got.Extend.Picture.URL != url {
				tst.Errorf("Expected picture extend with url, got %+v", got.Extend)
			}
			if got.CreatedAt.Unix() != item.CreatedAt.Unix() {
				tst.Errorf("Expected created at %v, got %v", item.CreatedAt, got.CreatedAt)
			}

			if err := store.UpdatePath(ctx, 9999, "x"); !errors.Is(err, mediaerrors.ErrItemNotFound) {
				tst.Errorf("Expected ErrItemNotFound, got %v", err)
			}
		})
	}
}

func createTag(tst *testing.T, store storage.Store, repoID, parent int64, name string) *data.Tag {
	tst.Helper()

	tag := &data.Tag{Name: name, RepoID: repoID, Parent: parent}
	if err := store.CreateTag(tst.Context(), tag); err != nil {
		tst.Fatalf("CreateTag failed: %v", err)
	}
	return tag
}

func tagIDs(tags []*data.Tag) []int64 {
	out := make([]int64, len(tags))
	for i, tag := range tags {
		out[i] = tag.ID
	}
	return out
}

func TestAllStores_Tags(t *testing.T) {
	for name, factory := range GetTestStoreFactories() {
		t.Run(name, func(tst *testing.T) {
			ctx := tst.Context()
			store := openStore(tst, factory)

			repo := &data.Repo{Name: "tagged"}
			if err := store.CreateRepo(ctx, repo); err != nil {
				tst.Fatalf("CreateRepo failed: %v", err)
			}
			all := ids(seedItems(tst, store, repo.ID, 3, time.Now().UTC()))

			animals := createTag(tst, store, repo.ID, 0, "animals")
			cats := createTag(tst, store, repo.ID, animals.ID, "cats")

			for _, pair := range [][2]int64{{all[0], animals.ID}, {all[0], cats.ID}, {all[2], cats.ID}, {all[2], cats.ID}} {
				if err := store.AttachTag(ctx, pair[0], pair[1]); err != nil {
					tst.Fatalf("AttachTag failed: %v", err)
				}
			}

			got, err := store.SelectItemsByTags(ctx, []int64{animals.ID, cats.ID})
			if err != nil {
				tst.Fatalf("SelectItemsByTags failed: %v", err)
			}
			storage.SortIDs(got, false)
			if !equalIDs(got, []int64{all[0], all[2]}) {
				tst.Errorf("Expected distinct [%d %d], got %v", all[0], all[2], got)
			}

			onFirst, err := store.SelectItemTags(ctx, all[0])
			if err != nil {
				tst.Fatalf("SelectItemTags failed: %v", err)
			}
			if !equalIDs(tagIDs(onFirst), []int64{animals.ID, cats.ID}) {
				tst.Errorf("Expected tags [%d %d], got %v", animals.ID, cats.ID, tagIDs(onFirst))
			}

			if err := store.AttachTag(ctx, all[1], 999); !errors.Is(err, mediaerrors.ErrTagNotFound) {
				tst.Errorf("Expected ErrTagNotFound for unknown tag, got %v", err)
			}
			if err := store.AttachTag(ctx, 999, cats.ID); !errors.Is(err, mediaerrors.ErrItemNotFound) {
				tst.Errorf("Expected ErrItemNotFound for unknown item, got %v", err)
			}

			if err := store.DetachTag(ctx, all[2], cats.ID); err != nil {
				tst.Fatalf("DetachTag failed: %v", err)
			}
			if err := store.DetachTag(ctx, all[2], cats.ID); !errors.Is(err, mediaerrors.ErrTagNotFound) {
				tst.Errorf("Expected ErrTagNotFound for a missing relation, got %v", err)
			}
			got, err = store.SelectItemsByTags(ctx, []int64{cats.ID})
			if err != nil {
				tst.Fatalf("SelectItemsByTags failed: %v", err)
			}
			if !equalIDs(got, []int64{all[0]}) {
				tst.Errorf("Expected [%d] after detach, got %v", all[0], got)
			}
		})
	}
}

// TestAllStores_TagLifecycle verifies listing, updates, and deletion with
// reparenting of children.
func TestAllStores_TagLifecycle(t *testing.T) {
	for name, factory := range GetTestStoreFactories() {
		t.Run(name, func(tst *testing.T) {
			ctx := tst.Context()
			store := openStore(tst, factory)

			repo := &data.Repo{Name: "tags"}
			other := &data.Repo{Name: "other"}
			for _, r := range []*data.Repo{repo, other} {
				if err := store.CreateRepo(ctx, r); err != nil {
					tst.Fatalf("CreateRepo failed: %v", err)
				}
			}
			item := ids(seedItems(tst, store, repo.ID, 1, time.Now().UTC()))[0]

			root := createTag(tst, store, repo.ID, 0, "places")
			middle := createTag(tst, store, repo.ID, root.ID, "europe")
			leaf := createTag(tst, store, repo.ID, middle.ID, "paris")
			createTag(tst, store, other.ID, 0, "elsewhere")

			listed, err := store.ListTags(ctx, repo.ID)
			if err != nil {
				tst.Fatalf("ListTags failed: %v", err)
			}
			if !equalIDs(tagIDs(listed), []int64{root.ID, middle.ID, leaf.ID}) {
				tst.Errorf("Expected tags of one repo in id order, got %v", tagIDs(listed))
			}

			leaf.Name = "lyon"
			if err := store.UpdateTag(ctx, leaf); err != nil {
				tst.Fatalf("UpdateTag failed: %v", err)
			}
			got, err := store.SelectTag(ctx, leaf.ID)
			if err != nil {
				tst.Fatalf("SelectTag failed: %v", err)
			}
			if got.Name != "lyon" || got.Parent != middle.ID || got.RepoID != repo.ID {
				tst.Errorf("Unexpected tag %+v", got)
			}

			if err := store.AttachTag(ctx, item, middle.ID); err != nil {
				tst.Fatalf("AttachTag failed: %v", err)
			}
			if err := store.DeleteTag(ctx, middle.ID); err != nil {
				tst.Fatalf("DeleteTag failed: %v", err)
			}

			if _, err := store.SelectTag(ctx, middle.ID); !errors.Is(err, mediaerrors.ErrTagNotFound) {
				tst.Errorf("Expected ErrTagNotFound after delete, got %v", err)
			}
			if err := store.DeleteTag(ctx, middle.ID); !errors.Is(err, mediaerrors.ErrTagNotFound) {
				tst.Errorf("Expected ErrTagNotFound on second delete, got %v", err)
			}
			if err := store.UpdateTag(ctx, middle); !errors.Is(err, mediaerrors.ErrTagNotFound) {
				tst.Errorf("Expected ErrTagNotFound updating a deleted tag, got %v", err)
			}

			child, err := store.SelectTag(ctx, leaf.ID)
			if err != nil {
				tst.Fatalf("SelectTag failed: %v", err)
			}
			if child.Parent != root.ID {
				tst.Errorf("Expected child to move up to %d, got parent %d", root.ID, child.Parent)
			}

			tagged, err := store.SelectItemsByTags(ctx, []int64{middle.ID})
			if err != nil {
				tst.Fatalf("SelectItemsByTags failed: %v", err)
			}
			if len(tagged) != 0 {
				tst.Errorf("Expected no items for a deleted tag, got %v", tagged)
			}
			onItem, err := store.SelectItemTags(ctx, item)
			if err != nil {
				tst.Fatalf("SelectItemTags failed: %v", err)
			}
			if len(onItem) != 0 {
				tst.Errorf("Expected the deleted tag to be detached, got %v", tagIDs(onItem))
			}
		})
	}
}

// TestAllStores_ItemUpdates verifies renames, repo moves, and restoring
// soft-deleted items.
func TestAllStores_ItemUpdates(t *testing.T) {
	for name, factory := range GetTestStoreFactories() {
		t.Run(name, func(tst *testing.T) {
			ctx := tst.Context()
			store := openStore(tst, factory)

			from := &data.Repo{Name: "from"}
			to := &data.Repo{Name: "to"}
			for _, r := range []*data.Repo{from, to} {
				if err := store.CreateRepo(ctx, r); err != nil {
					tst.Fatalf("CreateRepo failed: %v", err)
				}
			}
			item := seedItems(tst, store, from.ID, 1, time.Now().UTC())[0]

			if err := store.UpdateName(ctx, item.ID, "renamed.png"); err != nil {
				tst.Fatalf("UpdateName failed: %v", err)
			}
			if err := store.UpdateRepo(ctx, item.ID, to.ID); err != nil {
				tst.Fatalf("UpdateRepo failed: %v", err)
			}

			got, err := store.SelectByID(ctx, item.ID)
			if err != nil {
				tst.Fatalf("SelectByID failed: %v", err)
			}
			if got.Name != "renamed.png" || got.RepoID != to.ID {
				tst.Errorf("Unexpected item %+v", got)
			}

			lo, hi, err := store.SelectMinMaxID(ctx, from.ID)
			if err != nil {
				tst.Fatalf("SelectMinMaxID failed: %v", err)
			}
			if lo != 0 || hi != 0 {
				tst.Errorf("Expected the source repo to be empty, got (%d, %d)", lo, hi)
			}

			if err := store.DeleteItem(ctx, item.ID); err != nil {
				tst.Fatalf("DeleteItem failed: %v", err)
			}
			if err := store.RestoreItem(ctx, item.ID); err != nil {
				tst.Fatalf("RestoreItem failed: %v", err)
			}
			if _, err := store.SelectByID(ctx, item.ID); err != nil {
				tst.Errorf("Expected a restored item, got %v", err)
			}

			for _, err := range []error{
				store.UpdateName(ctx, 999, "x"),
				store.UpdateRepo(ctx, 999, to.ID),
				store.RestoreItem(ctx, 999),
			} {
				if !errors.Is(err, mediaerrors.ErrItemNotFound) {
					tst.Errorf("Expected ErrItemNotFound, got %v", err)
				}
			}
		})
	}
}
