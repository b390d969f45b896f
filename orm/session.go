package orm

import (
	"context"
	"sync"

	"github.com/juju/errors"
	"gorm.io/gorm"
)

// SessionFactory creates sessions bound to a snapshot of the binds map.
// Configure swaps the snapshot; sessions created earlier keep the binds they
// were created with.
type SessionFactory struct {
	mu         sync.RWMutex
	binds      map[string]*gorm.DB
	defaultKey string
}

func newSessionFactory(binds map[string]*gorm.DB, defaultKey string) *SessionFactory {
	f := &SessionFactory{}
	f.Configure(binds, defaultKey)
	return f
}

// Configure replaces the binds handed to new sessions.
func (f *SessionFactory) Configure(binds map[string]*gorm.DB, defaultKey string) {
	snapshot := make(map[string]*gorm.DB, len(binds))
	for k, db := range binds {
		snapshot[k] = db
	}
	f.mu.Lock()
	f.binds = snapshot
	f.defaultKey = defaultKey
	f.mu.Unlock()
}

// New returns an unscoped session. The caller must Close it.
func (f *SessionFactory) New(ctx context.Context) *Session {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if ctx == nil {
		ctx = context.Background()
	}
	return &Session{
		ctx:        ctx,
		binds:      f.binds,
		defaultKey: f.defaultKey,
		txs:        map[string]*gorm.DB{},
	}
}

// Session routes statements to the engine of the bind key each table belongs
// to. By default every statement commits on its own; after Begin a
// transaction is opened lazily per bind key and held until Commit or
// Rollback.
//
// An in-memory SQLite engine has a single connection, so an open
// transaction on it blocks every other user of that engine until it ends.
type Session struct {
	ctx        context.Context
	binds      map[string]*gorm.DB
	defaultKey string

	mu    sync.Mutex
	begun bool
	txs   map[string]*gorm.DB
}

// Context is the context statements of this session run with.
func (s *Session) Context() context.Context { return s.ctx }

// Bind returns a handle on the engine of bindKey. Errors, such as a bind key
// unknown to this session, are carried by the handle.
func (s *Session) Bind(bindKey string) *gorm.DB {
	if bindKey == DefaultBind {
		bindKey = s.defaultKey
	}
	engine, ok := s.binds[bindKey]
	if !ok {
		return s.broken(errors.Annotatef(ErrUnknownBind, "%s", bindName(bindKey)))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.begun {
		return engine.WithContext(s.ctx)
	}
	if tx, ok := s.txs[bindKey]; ok {
		return tx.Session(&gorm.Session{})
	}
	tx := engine.WithContext(s.ctx).Begin()
	if tx.Error != nil {
		return tx
	}
	s.txs[bindKey] = tx
	return tx.Session(&gorm.Session{})
}

// For returns a handle on the table t, routed to t's engine.
func (s *Session) For(t *Table) *gorm.DB {
	return s.Bind(t.BindKey()).Table(t.Name())
}

// Begin starts a unit of work. Transactions are opened on first use of each
// bind key.
func (s *Session) Begin() {
	s.mu.Lock()
	s.begun = true
	s.mu.Unlock()
}

// InTransaction reports whether Begin was called and not yet ended by Close.
func (s *Session) InTransaction() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.begun
}

// Commit commits every open transaction. Bind keys commit independently: a
// failure leaves the transactions already committed in place. The session
// stays in a unit of work and opens new transactions on next use.
func (s *Session) Commit() error {
	return s.finish(func(tx *gorm.DB) *gorm.DB { return tx.Commit() })
}

// Rollback rolls back every open transaction.
func (s *Session) Rollback() error {
	return s.finish(func(tx *gorm.DB) *gorm.DB { return tx.Rollback() })
}

// Close rolls back uncommitted work and returns the session to autocommit.
func (s *Session) Close() error {
	err := s.Rollback()
	s.mu.Lock()
	s.begun = false
	s.mu.Unlock()
	return err
}

func (s *Session) finish(end func(*gorm.DB) *gorm.DB) error {
	s.mu.Lock()
	txs := s.txs
	s.txs = map[string]*gorm.DB{}
	s.mu.Unlock()

	var firstErr error
	for key, tx := range txs {
		if err := end(tx).Error; err != nil && firstErr == nil {
			firstErr = errors.Annotatef(err, "bind %s", bindName(key))
		}
	}
	return firstErr
}

func (s *Session) broken(err error) *gorm.DB {
	engine, ok := s.binds[s.defaultKey]
	if !ok {
		for _, db := range s.binds {
			engine = db
			break
		}
	}
	if engine == nil {
		return &gorm.DB{Config: &gorm.Config{}, Error: err}
	}
	tx := engine.WithContext(s.ctx)
	_ = tx.AddError(err)
	return tx
}

// ScopeFunc maps a context to the key identifying its unit of work.
type ScopeFunc func(ctx context.Context) any

type scopeKey struct{}

type globalScopeKey struct{}

// WithScope tags ctx with a unit-of-work identity, such as a request or task
// id.
func WithScope(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, scopeKey{}, id)
}

// ScopeID returns the identity stored by WithScope.
func ScopeID(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(scopeKey{}).(string)
	return id, ok
}

// ContextScope scopes sessions by the id set with WithScope. Untagged
// contexts share the process wide scope.
func ContextScope(ctx context.Context) any {
	if id, ok := ScopeID(ctx); ok {
		return id
	}
	return globalScopeKey{}
}

// GlobalScope puts every caller in one scope.
func GlobalScope(context.Context) any {
	return globalScopeKey{}
}

// ScopedSession hands out one Session per scope key.
type ScopedSession struct {
	factory *SessionFactory
	scope   ScopeFunc

	mu       sync.Mutex
	sessions map[any]*Session
}

func newScopedSession(factory *SessionFactory, scope ScopeFunc) *ScopedSession {
	if scope == nil {
		scope = ContextScope
	}
	return &ScopedSession{
		factory:  factory,
		scope:    scope,
		sessions: map[any]*Session{},
	}
}

// Get returns the session of ctx's scope, creating it on first use.
func (s *ScopedSession) Get(ctx context.Context) *Session {
	key := s.scope(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[key]; ok {
		return sess
	}
	sess := s.factory.New(ctx)
	s.sessions[key] = sess
	return sess
}

// Remove closes the session of ctx's scope and forgets it. It must be called
// when the unit of work ends.
func (s *ScopedSession) Remove(ctx context.Context) error {
	key := s.scope(ctx)
	s.mu.Lock()
	sess, ok := s.sessions[key]
	delete(s.sessions, key)
	s.mu.Unlock()
	if !ok {
		return nil
	}
	return sess.Close()
}

// Len is the number of live scoped sessions.
func (s *ScopedSession) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
