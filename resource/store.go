package resource

import (
	"path/filepath"

	"github.com/google/uuid"
	"github.com/mwantia/mediarepo/data"
	"github.com/mwantia/mediarepo/log"
	"github.com/mwantia/mediarepo/node"
)

const (
	CacheDirName = ".cache"
	TempDirName  = ".temp"
)

// Store is the on-disk layout of one repository: its home plus the hidden
// cache and temp directories below it.
type Store struct {
	log   *log.Logger
	home  *node.Dir
	cache *node.Dir
	temp  *node.Dir
}

// NewStore creates all three directories. Existing directories are kept.
func NewStore(home *node.Dir, logger *log.Logger) (*Store, error) {
	if logger == nil {
		logger = log.Discard()
	}

	s := &Store{
		log:   logger,
		home:  home,
		cache: home.Next(CacheDirName),
		temp:  home.Next(TempDirName),
	}

	for _, dir := range []*node.Dir{s.home, s.cache, s.temp} {
		if err := dir.Mkdir(); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func (s *Store) Home() *node.Dir {
	return s.home
}

func (s *Store) Cache() *node.Dir {
	return s.cache
}

func (s *Store) Temp() *node.Dir {
	return s.temp
}

// CreateTempFile writes content to a uniquely named file of unknown type
// below the temp directory.
func (s *Store) CreateTempFile(content []byte) (*node.File, error) {
	file := s.temp.To(uuid.NewString(), data.ContentTypeUnknown)
	if _, err := file.Write(content); err != nil {
		return nil, err
	}

	s.log.Debug("Staged %d bytes at '%s'", len(content), file.AbsolutePath())
	return file, file.Close()
}

// WriteFile grafts file below home, then creates and writes it.
func (s *Store) WriteFile(content []byte, file *node.File) (*node.File, error) {
	file.SetRootParent(s.home)
	if _, err := file.Write(content); err != nil {
		return nil, err
	}

	s.log.Debug("Wrote %d bytes to '%s'", len(content), file.AbsolutePath())
	return file, file.Close()
}

// Promote moves a staged temp file onto the location of target, which is
// grafted below home first.
func (s *Store) Promote(temp *node.File, target *node.File) (*node.File, error) {
	target.SetRootParent(s.home)
	if err := commit(temp, target); err != nil {
		return nil, err
	}

	s.log.Debug("Promoted staged file to '%s'", target.AbsolutePath())
	return target, nil
}

// Adopt moves a stored file of another repository onto relPath below home.
func (s *Store) Adopt(file *node.File, relPath string) (*node.File, error) {
	target := s.BuildFile(relPath, file.ContentType())

	parent := target.Parent()
	if err := parent.Mkdir(); err != nil {
		return nil, err
	}
	if err := file.MoveTo(parent); err != nil {
		return nil, err
	}
	if file.Name() != target.Name() {
		if err := file.Rename(target.Stem()); err != nil {
			return nil, err
		}
	}

	s.log.Debug("Adopted file at '%s'", target.AbsolutePath())
	return target, nil
}

// WriteThumbnail stages content in the temp directory and then moves it onto
// the cache file of relPath, so the cache file only ever appears complete.
func (s *Store) WriteThumbnail(relPath string, content []byte) (*node.File, error) {
	temp, err := s.CreateTempFile(content)
	if err != nil {
		return nil, err
	}

	target := s.BuildThumbnailFile(relPath)
	if err := commit(temp, target); err != nil {
		if rerr := temp.Remove(); rerr != nil {
			s.log.Warn("Failed to remove staged thumbnail '%s': %v", temp.AbsolutePath(), rerr)
		}
		return nil, err
	}

	s.log.Debug("Cached thumbnail at '%s'", target.AbsolutePath())
	return target, nil
}

// commit moves temp next to target under its staging name and then renames it
// onto target in one step.
func commit(temp, target *node.File) error {
	parent := target.Parent()
	if err := parent.Mkdir(); err != nil {
		return err
	}
	if err := temp.MoveTo(parent); err != nil {
		return err
	}
	return temp.Rename(target.Name())
}

// BuildFile rebuilds the node of a stored slash-separated relative path.
// ct is applied only when the path itself carries no known extension.
func (s *Store) BuildFile(relPath string, ct *data.ContentType) *node.File {
	file := node.ParseFile(filepath.FromSlash(relPath))
	if file.ContentType().IsUnknown() && ct != nil {
		file.SetContentType(ct)
	}

	file.SetRootParent(s.home)
	return file
}

// BuildThumbnailFile maps a stored relative path to its thumbnail below the
// cache directory. Equal paths always map to the same cache file.
func (s *Store) BuildThumbnailFile(relPath string) *node.File {
	file := node.ParseFile(filepath.FromSlash(relPath))
	file.SetContentType(data.ContentTypeThumbnail)
	file.SetRootParent(s.cache)
	return file
}
