package node

import (
	"os"
	"strings"
	"sync"
)

// Separator is the host path separator used to split and join node paths.
var Separator = string(os.PathSeparator)

// Node is the behaviour shared by directory and file nodes.
type Node interface {
	// Name returns the local segment of this node.
	Name() string

	// Parent returns the parent directory, or nil for a top-level node.
	Parent() *Dir

	// AbsolutePath joins the ancestor chain from the top-level node to this node.
	AbsolutePath() string

	// Depth returns the number of ancestors.
	Depth() int

	// Exists reports whether AbsolutePath exists on disk.
	Exists() bool

	// Rename changes the local segment. When the current path exists on disk,
	// it is physically renamed first and the name is only updated on success.
	Rename(name string) error

	// MoveTo reparents the node and renames it on disk. Not atomic: the new
	// parent stays attached even when the physical rename fails.
	MoveTo(parent *Dir) error

	// SetRootParent attaches parent above the top-most ancestor of this node.
	SetRootParent(parent *Dir)
}

// cell is the (name, parent) pair shared by every clone of one node.
type cell struct {
	mu     sync.RWMutex
	name   string
	parent *Dir
}

func newCell(name string, parent *Dir) *cell {
	return &cell{name: name, parent: parent}
}

func (c *cell) getName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.name
}

func (c *cell) setName(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.name = name
}

func (c *cell) getParent() *Dir {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.parent
}

func (c *cell) setParent(parent *Dir) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.parent = parent
}

func absolutePath(parent *Dir, name string) string {
	if parent == nil {
		return name
	}

	return parent.AbsolutePath() + Separator + name
}

func depth(parent *Dir) int {
	if parent == nil {
		return 0
	}

	return parent.Depth() + 1
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// setRootParent walks up from parent and attaches root to the top-most ancestor.
// Attaching a node below itself is ignored.
func setRootParent(c *cell, root *Dir) {
	for {
		up := c.getParent()
		if up == nil {
			if root != nil && root.reaches(c) {
				return
			}
			c.setParent(root)
			return
		}
		c = up.c
	}
}

// splitPath splits on the host separator. A leading separator yields an empty
// first segment, which becomes the unnamed root.
func splitPath(path string) []string {
	return strings.Split(path, Separator)
}

// buildChain turns segments into a fresh, unshared chain of directories.
func buildChain(segments []string) *Dir {
	var parent *Dir
	for _, segment := range segments {
		parent = &Dir{c: newCell(segment, parent)}
	}

	return parent
}
