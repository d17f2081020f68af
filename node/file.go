package node

import (
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mwantia/mediarepo/data"
	"github.com/mwantia/mediarepo/data/errors"
)

type handleMode int

const (
	handleClosed handleMode = iota
	handleRead
	handleWrite
)

// handle is the deferred OS file owned by exactly one File value.
type handle struct {
	mu   sync.Mutex
	file *os.File
	mode handleMode
}

// File is a file node: a stem plus a content type whose extension completes
// the on-disk name. Clones share the (stem, parent) cell but never the handle.
type File struct {
	c  *cell
	ct *data.ContentType
	h  *handle
}

var _ Node = (*File)(nil)

func newFile(stem string, parent *Dir, ct *data.ContentType) *File {
	if ct == nil {
		ct = data.ContentTypeUnknown
	}

	return &File{
		c:  newCell(stem, parent),
		ct: ct,
		h:  &handle{},
	}
}

// ParseFile builds a new file node from path. The last segment is split on
// its first dot: the part before is the stem and the part after is looked up
// as an extension, so "a.b.c" has stem "a" and resolves ".b".
func ParseFile(path string) *File {
	segments := splitPath(path)
	last := segments[len(segments)-1]
	parent := buildChain(segments[:len(segments)-1])

	parts := strings.Split(last, ".")
	ct := data.ContentTypeUnknown
	if len(parts) > 1 {
		ct = data.Guess("." + parts[1])
	}

	return newFile(parts[0], parent, ct)
}

// Name returns the stem followed by the content type extension.
func (f *File) Name() string {
	return f.c.getName() + f.ct.Ext
}

func (f *File) Stem() string {
	return f.c.getName()
}

func (f *File) ContentType() *data.ContentType {
	return f.ct
}

// SetContentType changes the extension used by Name and AbsolutePath.
func (f *File) SetContentType(ct *data.ContentType) {
	if ct == nil {
		ct = data.ContentTypeUnknown
	}
	f.ct = ct
}

func (f *File) Parent() *Dir {
	return f.c.getParent()
}

func (f *File) AbsolutePath() string {
	return absolutePath(f.Parent(), f.Name())
}

func (f *File) Depth() int {
	return depth(f.Parent())
}

func (f *File) Exists() bool {
	return exists(f.AbsolutePath())
}

// Rename changes the stem; the extension stays tied to the content type.
func (f *File) Rename(stem string) error {
	from := f.AbsolutePath()
	if exists(from) {
		to := absolutePath(f.Parent(), stem+f.ct.Ext)
		if err := os.Rename(from, to); err != nil {
			return errors.DirectoryRename(err, from, to)
		}
	}

	f.c.setName(stem)
	return nil
}

func (f *File) MoveTo(parent *Dir) error {
	from := f.AbsolutePath()
	f.c.setParent(parent)
	to := f.AbsolutePath()

	if err := os.Rename(from, to); err != nil {
		return errors.DirectoryRename(err, from, to)
	}

	return nil
}

func (f *File) SetRootParent(parent *Dir) {
	setRootParent(f.c, parent)
}

// Clone returns a node sharing this node's lineage with its own closed handle.
func (f *File) Clone() *File {
	return &File{c: f.c, ct: f.ct, h: &handle{}}
}

// acquire takes exclusive ownership of the handle without blocking.
func (f *File) acquire() (*handle, error) {
	if !f.h.mu.TryLock() {
		return nil, errors.Busy(f.AbsolutePath())
	}

	return f.h, nil
}

// open makes sure the handle is readable. With reopen, a fresh descriptor
// positioned at the start replaces whatever was open.
func (f *File) open(h *handle, reopen bool) error {
	if h.mode == handleRead && !reopen {
		return nil
	}

	path := f.AbsolutePath()
	file, err := os.Open(path)
	if err != nil {
		return errors.Directory(err, path)
	}

	h.close()
	h.file = file
	h.mode = handleRead
	return nil
}

func (h *handle) close() error {
	if h.file == nil {
		return nil
	}

	err := h.file.Close()
	h.file = nil
	h.mode = handleClosed
	return err
}

// Touch creates missing parent directories, then creates or truncates the
// file and keeps it open for writing.
func (f *File) Touch() error {
	h, err := f.acquire()
	if err != nil {
		return err
	}
	defer h.mu.Unlock()

	return f.touch(h)
}

func (f *File) touch(h *handle) error {
	if parent := f.Parent(); parent != nil {
		if err := parent.Mkdir(); err != nil {
			return err
		}
	}

	path := f.AbsolutePath()
	file, err := os.Create(path)
	if err != nil {
		return errors.Directory(err, path)
	}

	h.close()
	h.file = file
	h.mode = handleWrite
	return nil
}

// Write touches the file and writes p, replacing any previous content.
func (f *File) Write(p []byte) (int, error) {
	h, err := f.acquire()
	if err != nil {
		return 0, err
	}
	defer h.mu.Unlock()

	if err := f.touch(h); err != nil {
		return 0, err
	}

	n, err := h.file.Write(p)
	if err != nil {
		return n, errors.Directory(err, f.AbsolutePath())
	}

	return n, nil
}

// Read reads into p from the cached read handle, opening it on first use.
// It returns io.EOF at the end of the file.
func (f *File) Read(p []byte) (int, error) {
	h, err := f.acquire()
	if err != nil {
		return 0, err
	}
	defer h.mu.Unlock()

	if err := f.open(h, false); err != nil {
		return 0, err
	}

	n, err := h.file.Read(p)
	if err != nil && err != io.EOF {
		return n, errors.Directory(err, f.AbsolutePath())
	}

	return n, err
}

// ReadAll reopens the file and returns its full content.
func (f *File) ReadAll() ([]byte, error) {
	return f.readToEnd(true)
}

// ReadLeft returns everything after the current read position.
func (f *File) ReadLeft() ([]byte, error) {
	return f.readToEnd(false)
}

func (f *File) readToEnd(reopen bool) ([]byte, error) {
	h, err := f.acquire()
	if err != nil {
		return nil, err
	}
	defer h.mu.Unlock()

	if err := f.open(h, reopen); err != nil {
		return nil, err
	}

	buf, err := io.ReadAll(h.file)
	if err != nil {
		return buf, errors.Directory(err, f.AbsolutePath())
	}

	return buf, nil
}

// ReadJSON reopens f and decodes its full content into a T.
func ReadJSON[T any](f *File) (T, error) {
	var value T

	buf, err := f.ReadAll()
	if err != nil {
		return value, err
	}

	if err := json.Unmarshal(buf, &value); err != nil {
		return value, errors.Directory(err, f.AbsolutePath())
	}

	return value, nil
}

// AsStream reopens the file and hands the descriptor to a Stream.
// Afterwards the node holds no open handle.
func (f *File) AsStream() (*Stream, error) {
	h, err := f.acquire()
	if err != nil {
		return nil, err
	}
	defer h.mu.Unlock()

	path := f.AbsolutePath()
	if err := f.open(h, true); err != nil {
		return nil, errors.NoSuchFile(err, path)
	}

	file := h.file
	h.file = nil
	h.mode = handleClosed

	return newStream(path, file), nil
}

// Close releases the handle if one is open.
func (f *File) Close() error {
	h, err := f.acquire()
	if err != nil {
		return err
	}
	defer h.mu.Unlock()

	if err := h.close(); err != nil {
		return errors.Directory(err, f.AbsolutePath())
	}

	return nil
}

// Remove closes any open handle and deletes the file. A missing file is not an error.
func (f *File) Remove() error {
	h, err := f.acquire()
	if err != nil {
		return err
	}
	defer h.mu.Unlock()

	h.close()

	path := f.AbsolutePath()
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Directory(err, path)
	}

	return nil
}
