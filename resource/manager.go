package resource

import (
	"sync"

	"github.com/mwantia/mediarepo/log"
	"github.com/mwantia/mediarepo/node"
)

// Manager hands out one Store per repository name below a shared root.
type Manager struct {
	mu     sync.RWMutex
	log    *log.Logger
	root   *node.Dir
	stores map[string]*Store
}

func NewManager(root *node.Dir, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Discard()
	}

	return &Manager{
		log:    logger,
		root:   root,
		stores: make(map[string]*Store),
	}
}

// GetOrInit returns the cached store of name, creating its directories on first access.
func (m *Manager) GetOrInit(name string) (*Store, error) {
	m.mu.RLock()
	store, ok := m.stores[name]
	m.mu.RUnlock()
	if ok {
		return store, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if store, ok := m.stores[name]; ok {
		return store, nil
	}

	store, err := NewStore(m.root.Next(name), m.log.Named(name))
	if err != nil {
		return nil, err
	}

	m.log.Debug("Initialized resource store '%s'", store.home.AbsolutePath())
	m.stores[name] = store
	return store, nil
}

// RenameRepo renames the repository home on disk and evicts cached stores
// of both names. Stores already handed out keep pointing at the old path.
func (m *Manager) RenameRepo(oldName, newName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.root.Next(oldName).Rename(newName); err != nil {
		return err
	}

	delete(m.stores, oldName)
	delete(m.stores, newName)

	m.log.Info("Renamed repository home '%s' to '%s'", oldName, newName)
	return nil
}
