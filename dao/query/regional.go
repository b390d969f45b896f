package query

import (
	"context"
	"time"

	"pyape/dao/model"
	"pyape/orm"

	"github.com/juju/errors"
	"gorm.io/gorm"
)

var (
	ErrRegionalExists   = errors.New("regional already exists")
	ErrRegionalInUse    = errors.New("regional has value objects")
	ErrRegionalNotFound = errors.New("regional not found")
)

// RegionalFilter narrows RegionalQuery. Nil fields do not filter.
type RegionalFilter struct {
	KindType *int16
	RType    *model.RType
	Status   *model.Status
}

// RegionalDao reads and writes the regional table of one bind key. Deleting
// a regional consults the value object table of the same bind key.
type RegionalDao struct {
	db    *orm.DB
	table *orm.Table
	vos   *ValueObjectDao
}

func NewRegionalDao(db *orm.DB, bindKey string) (*RegionalDao, error) {
	t, err := dynamicTable(db, model.BuildRegionalTable(db), model.RegionalTableName, bindKey)
	if err != nil {
		return nil, errors.Trace(err)
	}
	vos, err := NewValueObjectDao(db, bindKey)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &RegionalDao{db: db, table: t, vos: vos}, nil
}

func (d *RegionalDao) Table() *orm.Table { return d.table }

func (d *RegionalDao) q(ctx context.Context) *gorm.DB {
	return d.db.Query(ctx, d.table)
}

// RegionalQuery lists regionals ordered by status then newest first.
func (d *RegionalDao) RegionalQuery(ctx context.Context, f RegionalFilter) *gorm.DB {
	q := d.q(ctx)
	if f.KindType != nil {
		q = q.Where("kindtype = ?", *f.KindType)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.RType != nil {
		lo, hi := model.RTypeRange(*f.RType)
		q = q.Where("r BETWEEN ? AND ?", lo, hi)
	}
	return q.Order("status").Order("createtime DESC")
}

// All returns every regional in RegionalQuery order.
func (d *RegionalDao) All(ctx context.Context, f RegionalFilter) ([]model.Regional, error) {
	var rows []model.Regional
	if err := d.RegionalQuery(ctx, f).Find(&rows).Error; err != nil {
		return nil, errors.Trace(err)
	}
	return rows, nil
}

// Get returns regional r whatever its status.
func (d *RegionalDao) Get(ctx context.Context, r int) (*model.Regional, error) {
	var row model.Regional
	err := d.q(ctx).Where("r = ?", r).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Annotatef(ErrRegionalNotFound, "%d", r)
	}
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &row, nil
}

// LoadRegionalConfig builds a RegionalConfig from the rows with status, or
// from every row when status is nil.
func (d *RegionalDao) LoadRegionalConfig(ctx context.Context, status *model.Status) (*orm.RegionalConfig, error) {
	q := d.q(ctx)
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	var rows []model.Regional
	if err := q.Order("r").Find(&rows).Error; err != nil {
		return nil, errors.Trace(err)
	}
	list := make([]orm.Regional, 0, len(rows))
	for i := range rows {
		merged, err := rows[i].Merge()
		if err != nil {
			return nil, err
		}
		reg, err := orm.ParseRegional(merged)
		if err != nil {
			return nil, errors.Trace(err)
		}
		list = append(list, reg)
	}
	return orm.NewRegionalConfig(list)
}

// CheckRegional reports whether r is an enabled regional and returns its
// row. With ignoreZero the global regional is valid even without a row.
func (d *RegionalDao) CheckRegional(ctx context.Context, r int, ignoreZero bool) (*model.Regional, bool, error) {
	var rows []model.Regional
	err := d.q(ctx).Where("r = ? AND status = ?", r, model.StatusNormal).Limit(1).Find(&rows).Error
	if err != nil {
		return nil, false, errors.Trace(err)
	}
	if len(rows) > 0 {
		return &rows[0], true, nil
	}
	return nil, ignoreZero && r == orm.GlobalRegional, nil
}

// CheckRegionals reports whether every r of rs is an enabled regional. With
// ignoreZero, rs may be exactly [0].
func (d *RegionalDao) CheckRegionals(ctx context.Context, rs []int, ignoreZero bool) (bool, error) {
	if len(rs) == 0 {
		return false, nil
	}
	if ignoreZero && len(rs) == 1 && rs[0] == orm.GlobalRegional {
		return true, nil
	}
	var n int64
	err := d.q(ctx).Where("status = ? AND r IN ?", model.StatusNormal, rs).Count(&n).Error
	if err != nil {
		return false, errors.Trace(err)
	}
	return n == int64(len(rs)), nil
}

// InitRegional inserts the global regional. It fails when it exists.
func (d *RegionalDao) InitRegional(ctx context.Context) error {
	r0 := &model.Regional{R: orm.GlobalRegional, Name: "0", Status: model.StatusNormal}
	return d.Add(ctx, r0)
}

// Add inserts reg after checking its value is TOML.
func (d *RegionalDao) Add(ctx context.Context, reg *model.Regional) error {
	if reg.Value != nil {
		if err := model.ValidateValue(*reg.Value); err != nil {
			return err
		}
	}
	var n int64
	if err := d.q(ctx).Where("r = ?", reg.R).Count(&n).Error; err != nil {
		return errors.Trace(err)
	}
	if n > 0 {
		return errors.Annotatef(ErrRegionalExists, "%d", reg.R)
	}
	if reg.Status == 0 {
		reg.Status = model.StatusNormal
	}
	return errors.Trace(d.q(ctx).Create(reg).Error)
}

// RegionalEdit holds the fields Edit may change. Nil fields are kept.
type RegionalEdit struct {
	Name     *string
	Value    *string
	KindType *int16
	Status   *model.Status
}

// Edit updates regional r and returns the new row.
func (d *RegionalDao) Edit(ctx context.Context, r int, e RegionalEdit) (*model.Regional, error) {
	if _, err := d.Get(ctx, r); err != nil {
		return nil, err
	}
	updates := map[string]any{"updatetime": time.Now().Unix()}
	if e.Value != nil {
		if err := model.ValidateValue(*e.Value); err != nil {
			return nil, err
		}
		updates["value"] = *e.Value
	}
	if e.Name != nil {
		updates["name"] = *e.Name
	}
	if e.KindType != nil {
		updates["kindtype"] = *e.KindType
	}
	if e.Status != nil {
		updates["status"] = *e.Status
	}
	// r 0 is a valid key, so update by condition rather than by primary key
	if err := d.q(ctx).Where("r = ?", r).Updates(updates).Error; err != nil {
		return nil, errors.Trace(err)
	}
	return d.Get(ctx, r)
}

// Delete removes regional r. It is refused while r still has value objects.
func (d *RegionalDao) Delete(ctx context.Context, r int) (*model.Regional, error) {
	reg, err := d.Get(ctx, r)
	if err != nil {
		return nil, err
	}
	n, err := d.vos.CountByR(ctx, r)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, errors.Annotatef(ErrRegionalInUse, "%d", r)
	}
	if err := d.q(ctx).Where("r = ?", r).Delete(&model.Regional{}).Error; err != nil {
		return nil, errors.Trace(err)
	}
	return reg, nil
}

func IsRegionalExists(err error) bool   { return errors.Cause(err) == ErrRegionalExists }
func IsRegionalInUse(err error) bool    { return errors.Cause(err) == ErrRegionalInUse }
func IsRegionalNotFound(err error) bool { return errors.Cause(err) == ErrRegionalNotFound }
