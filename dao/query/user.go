package query

import (
	"context"
	"sync"

	"pyape/dao/model"
	"pyape/orm"

	"github.com/juju/errors"
	"gorm.io/gorm"
)

var (
	ErrUserExists   = errors.New("user already exists")
	ErrUserNotFound = errors.New("user not found")
)

func IsUserExists(err error) bool   { return errors.Cause(err) == ErrUserExists }
func IsUserNotFound(err error) bool { return errors.Cause(err) == ErrUserNotFound }

// RegionalSource returns the regional config in effect.
type RegionalSource func(ctx context.Context) (*orm.RegionalConfig, error)

// StaticRegionals always returns rconf.
func StaticRegionals(rconf *orm.RegionalConfig) RegionalSource {
	return func(context.Context) (*orm.RegionalConfig, error) { return rconf, nil }
}

// Source reads the enabled regionals from the regional table on every call,
// so regionals added at runtime are seen by the next lookup.
func (d *RegionalDao) Source() RegionalSource {
	status := model.StatusNormal
	return func(ctx context.Context) (*orm.RegionalConfig, error) {
		return d.LoadRegionalConfig(ctx, &status)
	}
}

// UserDao reads and writes the user table of each regional. Tables are
// defined through the regional registry and created on first use.
type UserDao struct {
	db        *orm.DB
	build     orm.BuildFunc
	regionals RegionalSource

	mu      sync.Mutex
	created map[*orm.Table]bool
}

func NewUserDao(db *orm.DB, regionals RegionalSource) *UserDao {
	return &UserDao{
		db:        db,
		build:     model.BuildUserTable(db),
		regionals: regionals,
		created:   map[*orm.Table]bool{},
	}
}

// BuildTables defines and creates the user table of every regional.
func (d *UserDao) BuildTables(ctx context.Context) error {
	rconf, err := d.regionals(ctx)
	if err != nil {
		return errors.Trace(err)
	}
	reg := d.db.Registry()
	if err := reg.BuildRegionalTables(model.UserTablePrefix, d.build, rconf); err != nil {
		return errors.Trace(err)
	}
	for _, t := range reg.RegionalTables(model.UserTablePrefix) {
		if err := d.ensure(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

// Table returns the user table of regional r. A regional added since the
// tables were built gets its table defined and created here.
func (d *UserDao) Table(ctx context.Context, r int) (*orm.Table, error) {
	rconf, err := d.regionals(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}
	t, err := d.db.Registry().GetRegionalTable(model.UserTablePrefix, r, d.build, rconf)
	if err != nil {
		return nil, err
	}
	if err := d.ensure(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (d *UserDao) ensure(ctx context.Context, t *orm.Table) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.created[t] {
		return nil
	}
	if err := d.db.CreateTables(ctx, []string{t.Name()}, t.BindKey()); err != nil {
		return errors.Annotatef(err, "create %s", t.Name())
	}
	d.created[t] = true
	return nil
}

func (d *UserDao) q(ctx context.Context, r int) (*gorm.DB, error) {
	t, err := d.Table(ctx, r)
	if err != nil {
		return nil, err
	}
	return d.db.Query(ctx, t), nil
}

func (d *UserDao) Get(ctx context.Context, r, uid int) (*model.User, error) {
	q, err := d.q(ctx, r)
	if err != nil {
		return nil, err
	}
	var u model.User
	err = q.Where("uid = ?", uid).Take(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Annotatef(ErrUserNotFound, "user%d %d", r, uid)
	}
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &u, nil
}

// Add inserts u into the table of regional r.
func (d *UserDao) Add(ctx context.Context, r int, u *model.User) error {
	q, err := d.q(ctx, r)
	if err != nil {
		return err
	}
	u.R = int16(r)
	if u.Status == 0 {
		u.Status = model.StatusNormal
	}
	return errors.Trace(q.Create(u).Error)
}

// InitRoot builds every user table and adds the root user to the global
// regional's table. It fails when the root user exists.
func (d *UserDao) InitRoot(ctx context.Context) (*model.User, error) {
	if err := d.BuildTables(ctx); err != nil {
		return nil, err
	}
	_, err := d.Get(ctx, orm.GlobalRegional, model.RootUID)
	if err == nil {
		return nil, errors.Annotatef(ErrUserExists, "root user %d", model.RootUID)
	}
	if !IsUserNotFound(err) {
		return nil, err
	}
	nickname := "root"
	root := &model.User{UID: model.RootUID, Nickname: &nickname}
	if err := d.Add(ctx, orm.GlobalRegional, root); err != nil {
		return nil, err
	}
	return root, nil
}
