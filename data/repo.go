package data

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/mwantia/mediarepo/data/errors"
)

// RepoKind decides which Extend payload new items receive.
type RepoKind int

const (
	RepoKindIllustration RepoKind = iota
	RepoKindPhoto
)

func (k RepoKind) String() string {
	switch k {
	case RepoKindIllustration:
		return "illustration"
	case RepoKindPhoto:
		return "photo"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

func ParseRepoKind(s string) (RepoKind, error) {
	switch strings.ToLower(s) {
	case "illustration", "picture":
		return RepoKindIllustration, nil
	case "photo":
		return RepoKindPhoto, nil
	}
	return 0, errors.Invalid("repo kind '%s'", s)
}

// FileOrder decides the relative directory layout of stored items.
type FileOrder int

const (
	FileOrderCreateYear FileOrder = iota
	FileOrderCreateMonth
	FileOrderCreateDate
)

func (o FileOrder) String() string {
	switch o {
	case FileOrderCreateYear:
		return "year"
	case FileOrderCreateMonth:
		return "month"
	case FileOrderCreateDate:
		return "date"
	}
	return fmt.Sprintf("order(%d)", int(o))
}

func ParseFileOrder(s string) (FileOrder, error) {
	switch strings.ToLower(s) {
	case "year":
		return FileOrderCreateYear, nil
	case "month":
		return FileOrderCreateMonth, nil
	case "date", "day":
		return FileOrderCreateDate, nil
	}
	return 0, errors.Invalid("file order '%s'", s)
}

// Repo is one named media collection.
type Repo struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Kind      RepoKind  `json:"kind"`
	Order     FileOrder `json:"order"`
	CreatedAt time.Time `json:"created_at"`
}

// NewExtend builds the payload a new item of this repo receives.
func (r *Repo) NewExtend(width, height uint32) Extend {
	img := ImageExtend{Width: width, Height: height}
	if r.Kind == RepoKindIllustration {
		return Extend{Picture: &PictureExtend{ImageExtend: img}}
	}
	return Extend{Photo: &PhotoExtend{ImageExtend: img}}
}

// ItemPath derives the slash-separated path of an item relative to the repo home.
func (r *Repo) ItemPath(item *Item) string {
	t := item.CreatedAt.UTC()
	file := fmt.Sprintf("%d%s", item.ID, item.ContentType.Ext)

	switch r.Order {
	case FileOrderCreateMonth:
		return path.Join(fmt.Sprint(t.Year()), fmt.Sprint(int(t.Month())), file)
	case FileOrderCreateDate:
		return path.Join(fmt.Sprint(t.Year()), fmt.Sprint(int(t.Month())), fmt.Sprint(t.Day()), file)
	default:
		return path.Join(fmt.Sprint(t.Year()), file)
	}
}
