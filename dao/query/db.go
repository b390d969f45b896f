package query

import (
	"pyape/config"
	"pyape/logutils"
	"pyape/orm"

	"github.com/juju/errors"
)

var DB *orm.DB

// InitDB opens every configured bind from the global config.
func InitDB() error {
	var err error
	DB, err = Open(config.GetConfig())
	return err
}

// Open connects every bind of cfg with gorm logging through logrus.
func Open(cfg *config.Config) (*orm.DB, error) {
	opts := cfg.Database.EngineOptions
	opts.Logger = logutils.NewGormLogger()
	db, err := orm.Open(cfg.Database.URI.Spec(), &opts)
	if err != nil {
		return nil, errors.Annotate(err, "open database")
	}
	logutils.Log.WithField("binds", db.Manager().BindKeys()).Info("database init success!")
	return db, nil
}

// dynamicTable returns the dynamic table (name, bindKey), building it on
// first use.
func dynamicTable(db *orm.DB, build orm.BuildFunc, name, bindKey string) (*orm.Table, error) {
	if bindKey == orm.DefaultBind {
		bindKey = db.Manager().DefaultBindKey()
	}
	reg := db.Registry()
	if t := reg.GetDynamicTable(name, bindKey); t != nil {
		return t, nil
	}
	t, err := reg.SetDynamicTable(build, name, bindKey)
	if orm.IsDuplicateKey(err) {
		if t := reg.GetDynamicTable(name, bindKey); t != nil {
			return t, nil
		}
	}
	return t, err
}
