package data

import (
	"encoding/json"
	"time"

	"github.com/mwantia/mediarepo/data/errors"
)

// ImageExtend carries the pixel dimensions of an image item.
type ImageExtend struct {
	Width  uint32 `json:"w"`
	Height uint32 `json:"h"`
}

// PictureExtend is the payload of items stored in illustration repos.
type PictureExtend struct {
	ImageExtend
	Author *int64  `json:"author,omitempty"`
	URL    *string `json:"url,omitempty"`
}

// PhotoExtend is the payload of items stored in photo repos.
type PhotoExtend struct {
	ImageExtend
}

// Extend holds at most one typed payload. A zero Extend means "none".
type Extend struct {
	Picture *PictureExtend `json:"picture,omitempty"`
	Photo   *PhotoExtend   `json:"photo,omitempty"`
}

// Image returns the dimensions of whichever payload is set.
func (e Extend) Image() (ImageExtend, bool) {
	switch {
	case e.Picture != nil:
		return e.Picture.ImageExtend, true
	case e.Photo != nil:
		return e.Photo.ImageExtend, true
	}
	return ImageExtend{}, false
}

func (e Extend) IsNone() bool {
	return e.Picture == nil && e.Photo == nil
}

// Item is one media record.
type Item struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	ContentType *ContentType `json:"content_type"`
	Size        int64        `json:"size"`
	CreatedAt   time.Time    `json:"created_at"`
	IsDeleted   bool         `json:"is_deleted"`
	RepoID      int64        `json:"repo_id"`
	Path        string       `json:"path"`
	Extend      Extend       `json:"extend"`
}

// UnmarshalJSON decodes an item and points its content type back into the
// registry, so decoded items compare equal to the registered entries.
func (i *Item) UnmarshalJSON(raw []byte) error {
	type plain Item

	var decoded plain
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}

	*i = Item(decoded)
	if i.ContentType != nil {
		i.ContentType = FromID(i.ContentType.ID)
	}
	return nil
}

// MarshalExtend encodes the payload column value.
func MarshalExtend(e Extend) ([]byte, error) {
	return json.Marshal(e)
}

// UnmarshalExtend decodes a payload column value. Empty input is a "none" payload.
func UnmarshalExtend(raw []byte) (Extend, error) {
	var e Extend
	if len(raw) == 0 {
		return e, nil
	}
	if err := json.Unmarshal(raw, &e); err != nil {
		return e, errors.Invalid("extend payload: %v", err)
	}
	return e, nil
}

const (
	minTimestamp int64 = 0
	// 9999-12-31T23:59:59Z
	maxTimestamp int64 = 253402300799
)

// TimeFromUnix converts a stored created-at value.
func TimeFromUnix(ts int64) (time.Time, error) {
	if ts < minTimestamp || ts > maxTimestamp {
		return time.Time{}, errors.Timestamp(ts)
	}
	return time.Unix(ts, 0).UTC(), nil
}

// TimeToUnix is the inverse of TimeFromUnix.
func TimeToUnix(t time.Time) (int64, error) {
	ts := t.Unix()
	if ts < minTimestamp || ts > maxTimestamp {
		return 0, errors.Timestamp(ts)
	}
	return ts, nil
}
