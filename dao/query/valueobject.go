package query

import (
	"context"

	"pyape/dao/model"
	"pyape/orm"

	"github.com/juju/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ValueObjectDao reads and writes the value object table of one bind key.
type ValueObjectDao struct {
	db    *orm.DB
	table *orm.Table
}

func NewValueObjectDao(db *orm.DB, bindKey string) (*ValueObjectDao, error) {
	t, err := dynamicTable(db, model.BuildValueObjectTable(db), model.ValueObjectTableName, bindKey)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &ValueObjectDao{db: db, table: t}, nil
}

func (d *ValueObjectDao) Table() *orm.Table { return d.table }

func (d *ValueObjectDao) q(ctx context.Context) *gorm.DB {
	return d.db.Query(ctx, d.table)
}

// ByFullName returns the enabled value object called fullname, or nil.
func (d *ValueObjectDao) ByFullName(ctx context.Context, fullname string) (*model.ValueObject, error) {
	var rows []model.ValueObject
	err := d.q(ctx).Where("name = ? AND status = ?", fullname, model.StatusNormal).Limit(1).Find(&rows).Error
	if err != nil {
		return nil, errors.Trace(err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// ByName is ByFullName for name within regional r.
func (d *ValueObjectDao) ByName(ctx context.Context, r int, name string) (*model.ValueObject, error) {
	return d.ByFullName(ctx, model.FullName(r, name))
}

// Query lists the value objects of r ordered by status, index, then newest
// first. Nil filters match everything.
func (d *ValueObjectDao) Query(ctx context.Context, r int, votype *int16, status *model.Status) *gorm.DB {
	q := d.q(ctx).Where("r = ?", r)
	if votype != nil {
		q = q.Where("votype = ?", *votype)
	}
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	return q.Order("status").
		Order(clause.OrderByColumn{Column: clause.Column{Name: "index"}}).
		Order("createtime DESC")
}

// CountByR counts the value objects of regional r.
func (d *ValueObjectDao) CountByR(ctx context.Context, r int) (int64, error) {
	var n int64
	if err := d.q(ctx).Where("r = ?", r).Count(&n).Error; err != nil {
		return 0, errors.Trace(err)
	}
	return n, nil
}

// Add inserts vo, prefixing its name with its regional.
func (d *ValueObjectDao) Add(ctx context.Context, vo *model.ValueObject) error {
	vo.Name = model.FullName(int(vo.R), vo.Name)
	if vo.Status == 0 {
		vo.Status = model.StatusNormal
	}
	return errors.Trace(d.q(ctx).Create(vo).Error)
}

// Delete removes the value objects matching vid or fullname.
func (d *ValueObjectDao) Delete(ctx context.Context, vid int, fullname string) (int64, error) {
	res := d.q(ctx).Where("vid = ? OR name = ?", vid, fullname).Delete(&model.ValueObject{})
	if res.Error != nil {
		return 0, errors.Trace(res.Error)
	}
	return res.RowsAffected, nil
}
