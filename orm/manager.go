package orm

import (
	"context"
	"sync"

	"github.com/juju/errors"
	"gorm.io/gorm"
)

// Manager owns one engine and one namespace per bind key, and the session
// factory routing between them.
type Manager struct {
	opts *EngineOptions

	mu         sync.RWMutex
	defaultKey string
	keys       []string
	engines    map[string]*gorm.DB
	namespaces map[string]*Namespace
	// binds is what sessions route with: namespace bind key -> engine.
	binds map[string]*gorm.DB

	factory *SessionFactory
}

// NewManager opens an engine for every entry of spec. The first entry is the
// default bind key.
func NewManager(spec URISpec, opts *EngineOptions) (*Manager, error) {
	if len(spec) == 0 {
		return nil, errors.Annotatef(ErrConfiguration, "no database uri")
	}
	m := &Manager{
		opts:       opts,
		defaultKey: spec[0].Key,
		engines:    map[string]*gorm.DB{},
		namespaces: map[string]*Namespace{},
		binds:      map[string]*gorm.DB{},
	}
	for _, b := range spec {
		if _, err := m.addBind(b.Key, b.URI); err != nil {
			_ = m.Close()
			return nil, errors.Annotatef(err, "bind %s", bindName(b.Key))
		}
	}
	m.factory = newSessionFactory(m.binds, m.defaultKey)
	return m, nil
}

// addBind creates the namespace and engine of bindKey. It reports false
// without error when the key is already bound, so that re-running
// initialisation from shared state is harmless. A namespace made earlier by
// SetNamespace is kept and gets the engine.
func (m *Manager) addBind(bindKey, uri string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.engines[bindKey]; ok {
		return false, nil
	}
	engine, err := openEngine(uri, m.opts)
	if err != nil {
		return false, err
	}
	if _, ok := m.namespaces[bindKey]; !ok {
		m.namespaces[bindKey] = newNamespace(bindKey)
	}
	m.engines[bindKey] = engine
	m.binds[bindKey] = engine
	m.keys = append(m.keys, bindKey)
	return true, nil
}

// AddBind is the idempotent form of SetBind: an existing bind key is left
// alone and reported with false.
func (m *Manager) AddBind(bindKey, uri string) (bool, error) {
	added, err := m.addBind(bindKey, uri)
	if err != nil || !added {
		return added, err
	}
	m.reconfigure()
	return true, nil
}

// SetBind binds a new key to uri. Only sessions created afterwards see it.
func (m *Manager) SetBind(bindKey, uri string) error {
	added, err := m.addBind(bindKey, uri)
	if err != nil {
		return errors.Trace(err)
	}
	if !added {
		return errors.Annotatef(ErrDuplicateBind, "%s", bindName(bindKey))
	}
	m.reconfigure()
	return nil
}

func (m *Manager) reconfigure() {
	m.mu.RLock()
	defer m.mu.RUnlock()
	m.factory.Configure(m.binds, m.defaultKey)
}

func (m *Manager) resolve(bindKey string) string {
	if bindKey == DefaultBind {
		return m.defaultKey
	}
	return bindKey
}

// DefaultBindKey is the key used when callers pass DefaultBind.
func (m *Manager) DefaultBindKey() string {
	return m.defaultKey
}

// BindKeys lists the bind keys in registration order.
func (m *Manager) BindKeys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.keys...)
}

// Engine returns the engine of bindKey.
func (m *Manager) Engine(bindKey string) (*gorm.DB, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	key := m.resolve(bindKey)
	engine, ok := m.engines[key]
	if !ok {
		return nil, errors.Annotatef(ErrUnknownBind, "engine %s", bindName(key))
	}
	return engine, nil
}

// Namespace returns the namespace of bindKey.
func (m *Manager) Namespace(bindKey string) (*Namespace, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	key := m.resolve(bindKey)
	ns, ok := m.namespaces[key]
	if !ok {
		return nil, errors.Annotatef(ErrUnknownBind, "namespace %s", bindName(key))
	}
	return ns, nil
}

// SetNamespace creates a namespace for bindKey ahead of its engine, for
// callers that declare tables before the bind is added. It fails when one
// already exists, including the one created with the bind itself.
func (m *Manager) SetNamespace(bindKey string) (*Namespace, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := m.resolve(bindKey)
	if _, ok := m.namespaces[key]; ok {
		return nil, errors.Annotatef(ErrDuplicateKey, "namespace %s", bindName(key))
	}
	ns := newNamespace(key)
	m.namespaces[key] = ns
	return ns, nil
}

// Factory returns the session factory.
func (m *Manager) Factory() *SessionFactory {
	return m.factory
}

// NewSession returns an unscoped session; the caller owns its lifecycle.
func (m *Manager) NewSession(ctx context.Context) *Session {
	return m.factory.New(ctx)
}

// NewScopedSession returns a session registry keyed by scope.
func (m *Manager) NewScopedSession(scope ScopeFunc) *ScopedSession {
	return newScopedSession(m.factory, scope)
}

// Close closes the connection pool of every engine.
func (m *Manager) Close() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var firstErr error
	for _, key := range m.keys {
		sqlDB, err := m.engines[key].DB()
		if err == nil {
			err = sqlDB.Close()
		}
		if err != nil && firstErr == nil {
			firstErr = errors.Annotatef(err, "close bind %s", bindName(key))
		}
	}
	return firstErr
}
