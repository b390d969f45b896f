package query

import (
	"context"
	"path/filepath"
	"testing"

	"pyape/config"
	"pyape/dao/model"
	"pyape/orm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTest(t *testing.T) (*orm.DB, *RegionalDao) {
	t.Helper()
	cfg := &config.Config{}
	cfg.Database.URI = config.URIs{
		{Key: "main", URI: "sqlite:///" + filepath.Join(t.TempDir(), "main.db")},
	}
	db, err := Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rd, err := NewRegionalDao(db, "main")
	require.NoError(t, err)
	require.NoError(t, db.CreateTables(context.Background(), nil, "main"))
	return db, rd
}

func strPtr(s string) *string { return &s }

func TestDynamicTablesShared(t *testing.T) {
	db, rd := openTest(t)
	again, err := NewRegionalDao(db, "main")
	require.NoError(t, err)
	assert.Same(t, rd.Table(), again.Table())
	assert.Equal(t, "regional", rd.Table().Name())
	assert.Equal(t, "main", rd.Table().BindKey())
}

func TestInitRegional(t *testing.T) {
	_, rd := openTest(t)
	ctx := context.Background()

	require.NoError(t, rd.InitRegional(ctx))
	r0, err := rd.Get(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, "0", r0.Name)
	assert.Equal(t, model.StatusNormal, r0.Status)
	assert.NotZero(t, r0.CreateTime)

	err = rd.InitRegional(ctx)
	assert.True(t, IsRegionalExists(err))
}

func TestRegionalAddEditDelete(t *testing.T) {
	db, rd := openTest(t)
	ctx := context.Background()

	err := rd.Add(ctx, &model.Regional{R: 1000, Name: "bad", Value: strPtr("a = ")})
	assert.Error(t, err)

	require.NoError(t, rd.Add(ctx, &model.Regional{R: 1000, Name: "alpha", Value: strPtr(`bind_key_db = "main"`)}))
	disabled := model.StatusDisabled
	edited, err := rd.Edit(ctx, 1000, RegionalEdit{Name: strPtr("beta"), Status: &disabled})
	require.NoError(t, err)
	assert.Equal(t, "beta", edited.Name)
	assert.Equal(t, model.StatusDisabled, edited.Status)
	assert.Equal(t, `bind_key_db = "main"`, *edited.Value)

	_, err = rd.Edit(ctx, 1000, RegionalEdit{Value: strPtr("= nope")})
	assert.Error(t, err)
	_, err = rd.Edit(ctx, 42, RegionalEdit{Name: strPtr("x")})
	assert.True(t, IsRegionalNotFound(err))

	vd, err := NewValueObjectDao(db, "main")
	require.NoError(t, err)
	vo := &model.ValueObject{R: 1000, Name: "version"}
	require.NoError(t, vo.SetValue(map[string]int{"major": 1}))
	require.NoError(t, vd.Add(ctx, vo))

	_, err = rd.Delete(ctx, 1000)
	assert.True(t, IsRegionalInUse(err))

	n, err := vd.Delete(ctx, 0, "r1000_version")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	deleted, err := rd.Delete(ctx, 1000)
	require.NoError(t, err)
	assert.Equal(t, "beta", deleted.Name)
	_, err = rd.Get(ctx, 1000)
	assert.True(t, IsRegionalNotFound(err))
}

func TestEditGlobalRegional(t *testing.T) {
	_, rd := openTest(t)
	ctx := context.Background()
	require.NoError(t, rd.InitRegional(ctx))

	r0, err := rd.Edit(ctx, 0, RegionalEdit{Name: strPtr("global")})
	require.NoError(t, err)
	assert.Equal(t, "global", r0.Name)

	all, err := rd.All(ctx, RegionalFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRegionalQueryFilters(t *testing.T) {
	_, rd := openTest(t)
	ctx := context.Background()
	for _, reg := range []model.Regional{
		{R: 0, Name: "0"},
		{R: 1001, Name: "t1", KindType: 2},
		{R: 2001, Name: "r1"},
		{R: 5001, Name: "p1", Status: model.StatusDisabled},
	} {
		reg := reg
		require.NoError(t, rd.Add(ctx, &reg))
	}

	rtype := model.RTypeTest
	rows, err := rd.All(ctx, RegionalFilter{RType: &rtype})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.EqualValues(t, 1001, rows[0].R)

	kind := int16(2)
	rows, err = rd.All(ctx, RegionalFilter{KindType: &kind})
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	disabled := model.StatusDisabled
	rows, err = rd.All(ctx, RegionalFilter{Status: &disabled})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.EqualValues(t, 5001, rows[0].R)

	rows, err = rd.All(ctx, RegionalFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 4)
	// enabled first
	assert.Equal(t, model.StatusDisabled, rows[3].Status)

	page, err := orm.Paginate[model.Regional](rd.RegionalQuery(ctx, RegionalFilter{}), 2, 3, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 4, page.Total)
	assert.Len(t, page.Items, 1)
}

func TestLoadRegionalConfig(t *testing.T) {
	_, rd := openTest(t)
	ctx := context.Background()
	require.NoError(t, rd.InitRegional(ctx))
	require.NoError(t, rd.Add(ctx, &model.Regional{R: 1000, Name: "a", Value: strPtr("bind_key_db = \"game\"\nbind_key_redis = \"r1\"\n")}))
	require.NoError(t, rd.Add(ctx, &model.Regional{R: 2000, Name: "b", Status: model.StatusDisabled}))

	all, err := rd.LoadRegionalConfig(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1000, 2000}, all.IDs())
	reg, ok := all.Get(1000)
	require.True(t, ok)
	assert.Equal(t, "game", reg.BindKeyDB)
	assert.Equal(t, "r1", reg.BindKeyRedis)
	assert.Equal(t, "a", reg.Name)
	assert.EqualValues(t, 1000, reg.Extra["rtype"])

	normal := model.StatusNormal
	enabled, err := rd.LoadRegionalConfig(ctx, &normal)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1000}, enabled.IDs())
}

func TestLoadRegionalConfigEmpty(t *testing.T) {
	_, rd := openTest(t)
	_, err := rd.LoadRegionalConfig(context.Background(), nil)
	assert.True(t, orm.IsConfiguration(err))
}

func TestCheckRegionals(t *testing.T) {
	_, rd := openTest(t)
	ctx := context.Background()
	require.NoError(t, rd.Add(ctx, &model.Regional{R: 1000, Name: "a"}))
	require.NoError(t, rd.Add(ctx, &model.Regional{R: 1001, Name: "b"}))
	require.NoError(t, rd.Add(ctx, &model.Regional{R: 1002, Name: "off", Status: model.StatusDisabled}))

	reg, ok, err := rd.CheckRegional(ctx, 1000, false)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "a", reg.Name)

	_, ok, err = rd.CheckRegional(ctx, 1002, false)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, _ = rd.CheckRegional(ctx, 0, false)
	assert.False(t, ok)
	reg, ok, _ = rd.CheckRegional(ctx, 0, true)
	assert.True(t, ok)
	assert.Nil(t, reg)

	ok, err = rd.CheckRegionals(ctx, []int{1000, 1001}, false)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, _ = rd.CheckRegionals(ctx, []int{1000, 1002}, false)
	assert.False(t, ok)
	ok, _ = rd.CheckRegionals(ctx, []int{0}, true)
	assert.True(t, ok)
	ok, _ = rd.CheckRegionals(ctx, []int{0}, false)
	assert.False(t, ok)
	ok, _ = rd.CheckRegionals(ctx, nil, true)
	assert.False(t, ok)
}

func TestValueObjectQueries(t *testing.T) {
	db, _ := openTest(t)
	ctx := context.Background()
	vd, err := NewValueObjectDao(db, "main")
	require.NoError(t, err)

	for i, name := range []string{"a", "b", "c"} {
		vo := &model.ValueObject{R: 1000, Name: name, Index: int16(3 - i)}
		require.NoError(t, vo.SetValue(i))
		require.NoError(t, vd.Add(ctx, vo))
	}
	other := &model.ValueObject{R: 2000, Name: "a", VOType: 1}
	require.NoError(t, other.SetValue("x"))
	require.NoError(t, vd.Add(ctx, other))

	vo, err := vd.ByName(ctx, 1000, "b")
	require.NoError(t, err)
	require.NotNil(t, vo)
	assert.Equal(t, "r1000_b", vo.Name)
	assert.Equal(t, model.VOTypeDefault, vo.VOType)
	var n1 int
	require.NoError(t, vo.GetValue(&n1))
	assert.Equal(t, 1, n1)

	missing, err := vd.ByFullName(ctx, "r9_a")
	require.NoError(t, err)
	assert.Nil(t, missing)

	var rows []model.ValueObject
	require.NoError(t, vd.Query(ctx, 1000, nil, nil).Find(&rows).Error)
	require.Len(t, rows, 3)
	assert.Equal(t, "r1000_c", rows[0].Name)

	votype := int16(1)
	rows = nil
	require.NoError(t, vd.Query(ctx, 2000, &votype, nil).Find(&rows).Error)
	assert.Len(t, rows, 1)

	n, err := vd.CountByR(ctx, 1000)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}

func TestDefaultBindSharesTables(t *testing.T) {
	db, rd := openTest(t)
	viaDefault, err := NewRegionalDao(db, orm.DefaultBind)
	require.NoError(t, err)
	assert.Same(t, rd.Table(), viaDefault.Table())
}
