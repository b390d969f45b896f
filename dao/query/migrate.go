package query

import (
	"context"

	"pyape/dao/model"
	"pyape/orm"

	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/juju/errors"
	"gorm.io/gorm"
)

// Migrator runs the schema migrations of the regional and value object
// tables in one bind key.
type Migrator struct {
	db        *orm.DB
	bindKey   string
	regionals *RegionalDao
	m         *gormigrate.Gormigrate
}

func NewMigrator(ctx context.Context, db *orm.DB, bindKey string) (*Migrator, error) {
	regionals, err := NewRegionalDao(db, bindKey)
	if err != nil {
		return nil, errors.Trace(err)
	}
	engine, err := db.Engine(bindKey)
	if err != nil {
		return nil, errors.Trace(err)
	}
	mg := &Migrator{db: db, bindKey: bindKey, regionals: regionals}
	tables := []string{model.RegionalTableName, model.ValueObjectTableName}

	// Migrations run without a transaction, so the orm DDL and the
	// gormigrate bookkeeping may use different connections.
	mg.m = gormigrate.New(engine.WithContext(ctx), gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "202410180001",
			Migrate: func(*gorm.DB) error {
				return mg.db.CreateTables(ctx, tables, mg.bindKey)
			},
			Rollback: func(*gorm.DB) error {
				return mg.db.DropTables(ctx, tables, mg.bindKey)
			},
		},
		{
			ID: "202410180002",
			Migrate: func(*gorm.DB) error {
				err := mg.regionals.InitRegional(ctx)
				if IsRegionalExists(err) {
					return nil
				}
				return err
			},
			Rollback: func(*gorm.DB) error {
				_, err := mg.regionals.Delete(ctx, orm.GlobalRegional)
				if IsRegionalNotFound(err) {
					return nil
				}
				return err
			},
		},
	})
	return mg, nil
}

func (mg *Migrator) Migrate() error {
	return errors.Annotatef(mg.m.Migrate(), "migrate bind %q", mg.bindKey)
}

func (mg *Migrator) RollbackLast() error {
	return errors.Annotatef(mg.m.RollbackLast(), "rollback bind %q", mg.bindKey)
}
