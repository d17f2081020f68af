package data

import "time"

// Tag is a named label of one repo. Tags form a forest: Parent is the id of
// another tag of the same repo, or zero for a top-level tag.
type Tag struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	RepoID    int64     `json:"repo_id"`
	Parent    int64     `json:"parent"`
	CreatedAt time.Time `json:"created_at"`
	IsDeleted bool      `json:"is_deleted"`
}
