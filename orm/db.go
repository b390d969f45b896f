package orm

import (
	"context"

	"github.com/juju/errors"
	"gorm.io/gorm"
)

// DB is the schema manager: table DDL across bind keys, sessions, and the
// dynamic table registry, on top of a Manager.
type DB struct {
	dbm      *Manager
	scope    ScopeFunc
	scoped   *ScopedSession
	registry *Registry
}

// Option configures a DB.
type Option func(*DB)

// ScopeBy sets how scoped sessions are keyed. The default is ContextScope.
func ScopeBy(scope ScopeFunc) Option {
	return func(db *DB) { db.scope = scope }
}

// Unscoped makes Session return a new session on every call.
func Unscoped() Option {
	return func(db *DB) { db.scope = nil; db.scoped = nil }
}

// New wraps m. Sessions are scoped by ContextScope unless configured
// otherwise.
func New(m *Manager, opts ...Option) *DB {
	db := &DB{dbm: m, scope: ContextScope}
	for _, opt := range opts {
		opt(db)
	}
	if db.scope != nil {
		db.scoped = m.NewScopedSession(db.scope)
	}
	db.registry = NewRegistry()
	return db
}

// Open builds a Manager from spec and wraps it.
func Open(spec URISpec, engineOpts *EngineOptions, opts ...Option) (*DB, error) {
	m, err := NewManager(spec, engineOpts)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return New(m, opts...), nil
}

func (db *DB) Manager() *Manager { return db.dbm }

// Registry is the dynamic and regional table registry of this DB.
func (db *DB) Registry() *Registry { return db.registry }

// Model returns the namespace tables of bindKey are declared in.
func (db *DB) Model(bindKey string) (*Namespace, error) {
	return db.dbm.Namespace(bindKey)
}

// IsModel reports whether t belongs to the namespace of bindKey.
func (db *DB) IsModel(t *Table, bindKey string) bool {
	ns, err := db.dbm.Namespace(bindKey)
	return err == nil && t != nil && t.Namespace() == ns
}

func (db *DB) Engine(bindKey string) (*gorm.DB, error) {
	return db.dbm.Engine(bindKey)
}

// Session returns the session of ctx's scope, or a new unscoped session.
func (db *DB) Session(ctx context.Context) *Session {
	if db.scoped == nil {
		return db.dbm.NewSession(ctx)
	}
	return db.scoped.Get(ctx)
}

// Scoped exposes the scoped session registry; nil when unscoped.
func (db *DB) Scoped() *ScopedSession { return db.scoped }

// Remove ends the scoped session of ctx.
func (db *DB) Remove(ctx context.Context) error {
	if db.scoped == nil {
		return nil
	}
	return db.scoped.Remove(ctx)
}

// Query is a handle on table t in ctx's session.
func (db *DB) Query(ctx context.Context, t *Table) *gorm.DB {
	return db.Session(ctx).For(t)
}

// GetTable looks up a defined table by name.
func (db *DB) GetTable(name, bindKey string) (*Table, error) {
	ns, err := db.dbm.Namespace(bindKey)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return ns.Table(name)
}

func (db *DB) tables(names []string, bindKey string) ([]*Table, error) {
	ns, err := db.dbm.Namespace(bindKey)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if len(names) == 0 {
		return ns.Tables(), nil
	}
	tables := make([]*Table, 0, len(names))
	for _, name := range names {
		t, err := ns.Table(name)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

// CreateTables creates the named tables of bindKey, or all of its tables
// when names is empty. Existing tables are left untouched.
func (db *DB) CreateTables(ctx context.Context, names []string, bindKey string) error {
	tables, err := db.tables(names, bindKey)
	if err != nil {
		return err
	}
	engine, err := db.dbm.Engine(bindKey)
	if err != nil {
		return errors.Trace(err)
	}
	for _, t := range tables {
		migrator := engine.WithContext(ctx).Table(t.Name()).Migrator()
		if migrator.HasTable(t.Name()) {
			continue
		}
		if err := migrator.CreateTable(t.New()); err != nil {
			return errors.Annotatef(err, "create table %s", t)
		}
	}
	return nil
}

// DropTables drops the named tables of bindKey, or all of them when names is
// empty. Missing tables are ignored.
func (db *DB) DropTables(ctx context.Context, names []string, bindKey string) error {
	tables, err := db.tables(names, bindKey)
	if err != nil {
		return err
	}
	engine, err := db.dbm.Engine(bindKey)
	if err != nil {
		return errors.Trace(err)
	}
	for i := len(tables) - 1; i >= 0; i-- {
		if err := engine.WithContext(ctx).Migrator().DropTable(tables[i].Name()); err != nil {
			return errors.Annotatef(err, "drop table %s", tables[i])
		}
	}
	return nil
}

// RecreateTable drops and creates the named tables.
func (db *DB) RecreateTable(ctx context.Context, bindKey string, names ...string) error {
	if err := db.DropTables(ctx, names, bindKey); err != nil {
		return err
	}
	return db.CreateTables(ctx, names, bindKey)
}

// CreateAll creates every table of every bind key. Bind keys are migrated
// one after another with no shared transaction: on error the bind keys
// before the failing one stay migrated.
func (db *DB) CreateAll(ctx context.Context) error {
	for _, key := range db.dbm.BindKeys() {
		if err := db.CreateTables(ctx, nil, key); err != nil {
			return errors.Annotatef(err, "bind %s", bindName(key))
		}
	}
	return nil
}

// DropAll drops every table of every bind key, with the same partial
// failure behaviour as CreateAll.
func (db *DB) DropAll(ctx context.Context) error {
	for _, key := range db.dbm.BindKeys() {
		if err := db.DropTables(ctx, nil, key); err != nil {
			return errors.Annotatef(err, "bind %s", bindName(key))
		}
	}
	return nil
}

// Close releases every engine.
func (db *DB) Close() error {
	return db.dbm.Close()
}
