package node

import (
	"os"

	"github.com/mwantia/mediarepo/data"
	"github.com/mwantia/mediarepo/data/errors"
)

// Dir is a directory node. Copies of a *Dir and values returned by Clone
// share one (name, parent) cell.
type Dir struct {
	c *cell
}

var _ Node = (*Dir)(nil)

// NewDir creates a top-level directory node.
func NewDir(name string) *Dir {
	return &Dir{c: newCell(name, nil)}
}

// ParseDir builds a new directory chain from path. Every call returns an
// independent lineage, even for equal input.
func ParseDir(path string) *Dir {
	return buildChain(splitPath(path))
}

func (d *Dir) Name() string {
	return d.c.getName()
}

func (d *Dir) Parent() *Dir {
	return d.c.getParent()
}

func (d *Dir) AbsolutePath() string {
	return absolutePath(d.Parent(), d.Name())
}

func (d *Dir) Depth() int {
	return depth(d.Parent())
}

func (d *Dir) Exists() bool {
	return exists(d.AbsolutePath())
}

func (d *Dir) Rename(name string) error {
	from := d.AbsolutePath()
	if exists(from) {
		to := absolutePath(d.Parent(), name)
		if err := os.Rename(from, to); err != nil {
			return errors.DirectoryRename(err, from, to)
		}
	}

	d.c.setName(name)
	return nil
}

func (d *Dir) MoveTo(parent *Dir) error {
	from := d.AbsolutePath()
	d.c.setParent(parent)
	to := d.AbsolutePath()

	if err := os.Rename(from, to); err != nil {
		return errors.DirectoryRename(err, from, to)
	}

	return nil
}

func (d *Dir) SetRootParent(parent *Dir) {
	setRootParent(d.c, parent)
}

// Clone returns a node sharing this node's lineage.
func (d *Dir) Clone() *Dir {
	return &Dir{c: d.c}
}

// Same reports whether both nodes belong to one lineage.
func (d *Dir) Same(other *Dir) bool {
	return other != nil && d.c == other.c
}

// Next returns a child directory node. Nothing is created on disk.
func (d *Dir) Next(name string) *Dir {
	return &Dir{c: newCell(name, d)}
}

// To returns a child file node with the given stem and content type.
func (d *Dir) To(stem string, ct *data.ContentType) *File {
	return newFile(stem, d, ct)
}

// Mkdir creates the directory and all missing parents.
func (d *Dir) Mkdir() error {
	path := d.AbsolutePath()
	if err := os.MkdirAll(path, 0o755); err != nil {
		return errors.Directory(err, path)
	}

	return nil
}

// reaches reports whether c is d's own cell or one of its ancestors.
func (d *Dir) reaches(c *cell) bool {
	for cur := d; cur != nil; cur = cur.Parent() {
		if cur.c == c {
			return true
		}
	}

	return false
}
