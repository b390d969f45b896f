package orm

import (
	"fmt"
	"sync"

	"github.com/im7mortal/kmutex"
	"github.com/juju/errors"
)

// BuildFunc defines a new table called name in the namespace of bindKey and
// returns it. The registry calls it at most once per table.
type BuildFunc func(name, bindKey string) (*Table, error)

type dynamicKey struct {
	bindKey string
	name    string
}

func (k dynamicKey) String() string {
	return fmt.Sprintf("%s_%s", k.bindKey, k.name)
}

type regionalKey struct {
	prefix string
}

// Registry memoizes tables built at runtime. Tables are never removed:
// once defined in a namespace they stay for the life of the process.
//
// The registry is local to the process. Another process builds its own
// copies; that is safe because table creation is create-if-not-exists.
type Registry struct {
	// locks serialises check-then-build per dynamic key and per regional
	// prefix.
	locks *kmutex.Kmutex

	mu       sync.RWMutex
	dynamic  map[dynamicKey]*Table
	regional map[string]map[int]*Table
}

func NewRegistry() *Registry {
	return &Registry{
		locks:    kmutex.New(),
		dynamic:  map[dynamicKey]*Table{},
		regional: map[string]map[int]*Table{},
	}
}

// GetDynamicTable returns the table built for (name, bindKey), or nil. It
// never builds.
func (r *Registry) GetDynamicTable(name, bindKey string) *Table {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.dynamic[dynamicKey{bindKey: bindKey, name: name}]
}

// SetDynamicTable builds and stores the table for (name, bindKey). Building
// the same key twice is a programming error and fails with ErrDuplicateKey;
// the stored table is unchanged.
func (r *Registry) SetDynamicTable(build BuildFunc, name, bindKey string) (*Table, error) {
	key := dynamicKey{bindKey: bindKey, name: name}
	r.locks.Lock(key)
	defer r.locks.Unlock(key)

	if r.GetDynamicTable(name, bindKey) != nil {
		return nil, errors.Annotatef(ErrDuplicateKey, "dynamic table %s", key)
	}
	t, err := build(name, bindKey)
	if err != nil {
		return nil, errors.Annotatef(err, "build dynamic table %s", key)
	}
	if t == nil {
		return nil, errors.NotValidf("nil table built for %s", key)
	}
	r.mu.Lock()
	r.dynamic[key] = t
	r.mu.Unlock()
	TablesBuilt.WithLabelValues("dynamic").Inc()
	return t, nil
}

// RegionalTableName is the table name of prefix for regional id.
func RegionalTableName(prefix string, id int) string {
	return fmt.Sprintf("%s%d", prefix, id)
}

func (r *Registry) regionalTable(prefix string, id int) *Table {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.regional[prefix][id]
}

// BuildRegionalTables builds {prefix}{r} for every regional of rconf in the
// regional's bind_key_db. Regionals built earlier are skipped, so it is safe
// to call whenever new regionals may have appeared. Tables built before an
// error are kept.
func (r *Registry) BuildRegionalTables(prefix string, build BuildFunc, rconf *RegionalConfig) error {
	if rconf == nil {
		return errors.Annotatef(ErrConfiguration, "no regional config for %q", prefix)
	}
	key := regionalKey{prefix: prefix}
	r.locks.Lock(key)
	defer r.locks.Unlock(key)

	for _, reg := range rconf.List() {
		if r.regionalTable(prefix, reg.R) != nil {
			continue
		}
		name := RegionalTableName(prefix, reg.R)
		t, err := build(name, reg.BindKeyDB)
		if err != nil {
			return errors.Annotatef(err, "build regional table %q", name)
		}
		if t == nil {
			return errors.NotValidf("nil table built for %q", name)
		}
		r.mu.Lock()
		tables, ok := r.regional[prefix]
		if !ok {
			tables = map[int]*Table{}
			r.regional[prefix] = tables
		}
		tables[reg.R] = t
		r.mu.Unlock()
		TablesBuilt.WithLabelValues("regional").Inc()
	}
	return nil
}

// GetRegionalTable returns the table of prefix for regional id. A regional
// missing from the built set, typically added after the set was built,
// triggers a full rebuild pass over rconf.
func (r *Registry) GetRegionalTable(prefix string, id int, build BuildFunc, rconf *RegionalConfig) (*Table, error) {
	if rconf == nil || !rconf.Has(id) {
		return nil, errors.Annotatef(ErrUnknownTenant, "%d", id)
	}
	if t := r.regionalTable(prefix, id); t != nil {
		return t, nil
	}
	RegionalRebuilds.WithLabelValues(prefix).Inc()
	if err := r.BuildRegionalTables(prefix, build, rconf); err != nil {
		return nil, err
	}
	if t := r.regionalTable(prefix, id); t != nil {
		return t, nil
	}
	return nil, errors.Annotatef(ErrTableNotFound, "%q", RegionalTableName(prefix, id))
}

// RegionalTables returns a copy of the tables built for prefix, keyed by
// regional id.
func (r *Registry) RegionalTables(prefix string) map[int]*Table {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[int]*Table, len(r.regional[prefix]))
	for id, t := range r.regional[prefix] {
		out[id] = t
	}
	return out
}
