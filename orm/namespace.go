package orm

import (
	"reflect"
	"sort"
	"sync"

	"github.com/juju/errors"
	"gorm.io/gorm/schema"
)

// Namespace holds the table metadata of one bind key. Every table belongs to
// exactly one namespace, so definitions for different databases never
// collide.
type Namespace struct {
	bindKey string

	mu     sync.RWMutex
	tables map[string]*Table
	namer  schema.Namer
}

func newNamespace(bindKey string) *Namespace {
	return &Namespace{
		bindKey: bindKey,
		tables:  map[string]*Table{},
		namer:   schema.NamingStrategy{},
	}
}

// BindKey is the bind key this namespace was created for.
func (ns *Namespace) BindKey() string {
	return ns.bindKey
}

// Define maps model onto the table called name. A name can be defined only
// once per namespace; the same model type may back many names.
func (ns *Namespace) Define(name string, model any) (*Table, error) {
	if name == "" {
		return nil, errors.NotValidf("empty table name")
	}
	typ := reflect.TypeOf(model)
	for typ != nil && typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ == nil || typ.Kind() != reflect.Struct {
		return nil, errors.NotValidf("model %T for table %q", model, name)
	}

	ns.mu.Lock()
	defer ns.mu.Unlock()
	if _, ok := ns.tables[name]; ok {
		return nil, errors.Annotatef(ErrDuplicateKey, "table %q in bind %s", name, bindName(ns.bindKey))
	}
	t := &Table{
		name: name,
		typ:  typ,
		ns:   ns,
	}
	ns.tables[name] = t
	return t, nil
}

// Register defines model under its own table name, taken from TableName()
// when the model has one, or from gorm's naming strategy.
func (ns *Namespace) Register(model any) (*Table, error) {
	if tabler, ok := model.(schema.Tabler); ok {
		return ns.Define(tabler.TableName(), model)
	}
	typ := reflect.TypeOf(model)
	for typ != nil && typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ == nil {
		return nil, errors.NotValidf("nil model")
	}
	return ns.Define(ns.namer.TableName(typ.Name()), model)
}

// Table returns the table called name.
func (ns *Namespace) Table(name string) (*Table, error) {
	ns.mu.RLock()
	defer ns.mu.RUnlock()
	t, ok := ns.tables[name]
	if !ok {
		return nil, errors.Annotatef(ErrTableNotFound, "%q in bind %s", name, bindName(ns.bindKey))
	}
	return t, nil
}

// Tables returns every table of the namespace ordered by name.
func (ns *Namespace) Tables() []*Table {
	ns.mu.RLock()
	defer ns.mu.RUnlock()
	tables := make([]*Table, 0, len(ns.tables))
	for _, t := range ns.tables {
		tables = append(tables, t)
	}
	sort.Slice(tables, func(i, j int) bool { return tables[i].name < tables[j].name })
	return tables
}

// Table is a model type mapped onto a named table of one namespace.
type Table struct {
	name string
	typ  reflect.Type
	ns   *Namespace
}

func (t *Table) Name() string { return t.name }

// BindKey reports which engine the table lives in.
func (t *Table) BindKey() string { return t.ns.bindKey }

func (t *Table) Namespace() *Namespace { return t.ns }

// New returns a pointer to a zero value of the table's model.
func (t *Table) New() any {
	return reflect.New(t.typ).Interface()
}

// NewSlice returns a pointer to an empty slice of model pointers, ready to be
// passed to gorm's Find.
func (t *Table) NewSlice() any {
	return reflect.New(reflect.SliceOf(reflect.PointerTo(t.typ))).Interface()
}

func (t *Table) String() string {
	return bindName(t.ns.bindKey) + "." + t.name
}
