package orm

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type item struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:64;index"`
}

type note struct {
	ID   uint `gorm:"primaryKey"`
	Body string
}

func (note) TableName() string { return "notes" }

func sqliteFile(t *testing.T, name string) string {
	t.Helper()
	return "sqlite:///" + filepath.Join(t.TempDir(), name+".db")
}

func openFiles(t *testing.T, keys ...string) *DB {
	t.Helper()
	spec := make(URISpec, 0, len(keys))
	for _, k := range keys {
		spec = append(spec, BindURI{Key: k, URI: sqliteFile(t, k)})
	}
	db, err := Open(spec, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func itemBuilder(db *DB) BuildFunc {
	return func(name, bindKey string) (*Table, error) {
		ns, err := db.Model(bindKey)
		if err != nil {
			return nil, err
		}
		return ns.Define(name, &item{})
	}
}

func regionals(ids ...int) *RegionalConfig {
	list := make([]Regional, 0, len(ids))
	for _, id := range ids {
		list = append(list, Regional{R: id, Name: fmt.Sprintf("r%d", id)})
	}
	rc, err := NewRegionalConfig(list)
	if err != nil {
		panic(err)
	}
	return rc
}
