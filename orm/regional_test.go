package orm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRegional(t *testing.T) {
	reg, err := ParseRegional(map[string]any{
		"r":              int64(1000),
		"name":           "Alpha",
		"bind_key_db":    "game",
		"bind_key_redis": nil,
		"offset":         8,
	})
	require.NoError(t, err)
	assert.Equal(t, 1000, reg.R)
	assert.Equal(t, "Alpha", reg.Name)
	assert.Equal(t, "game", reg.BindKeyDB)
	assert.Equal(t, "", reg.BindKeyRedis)
	assert.Equal(t, map[string]any{"offset": 8}, reg.Extra)

	reg, err = ParseRegional(map[string]any{"r": "2000"})
	require.NoError(t, err)
	assert.Equal(t, 2000, reg.R)

	_, err = ParseRegional(map[string]any{"name": "no id"})
	assert.Error(t, err)
	_, err = ParseRegional(map[string]any{"r": 1.5})
	assert.Error(t, err)
}

func TestNewRegionalConfig(t *testing.T) {
	_, err := NewRegionalConfig(nil)
	assert.True(t, IsConfiguration(err))

	_, err = NewRegionalConfig([]Regional{{R: 1}, {R: 1}})
	assert.True(t, IsDuplicateKey(err))

	rc, err := ParseRegionalConfig([]map[string]any{
		{"r": 2000, "bind_key_db": "b"},
		{"r": 0},
		{"r": 1000},
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1000, 2000}, rc.IDs())
	assert.Equal(t, 2000, rc.List()[0].R)
	assert.True(t, rc.HasGlobal())
	key, ok := rc.BindKeyDB(2000)
	assert.True(t, ok)
	assert.Equal(t, "b", key)
	_, ok = rc.BindKeyDB(3)
	assert.False(t, ok)

	_, err = ParseRegionalConfig([]map[string]any{{"r": 1}, {"name": "x"}})
	assert.Contains(t, err.Error(), "regional #1")
}

func TestRegionalConfigCheck(t *testing.T) {
	rc := regionals(1000)

	reg, ok := rc.Check(1000, false)
	require.True(t, ok)
	assert.Equal(t, 1000, reg.R)

	_, ok = rc.Check(0, false)
	assert.False(t, ok)
	reg, ok = rc.Check(0, true)
	assert.True(t, ok)
	assert.Nil(t, reg)

	_, ok = rc.Check(5, true)
	assert.False(t, ok)
}

func TestRegionalConfigPlatform(t *testing.T) {
	rc, err := ParseRegionalConfig([]map[string]any{
		{"r": 1000, "WECHAT_MINIAPP": map[string]any{"appid": "wx1"}},
		{"r": 2000},
	})
	require.NoError(t, err)

	pf := rc.Platform(1000)
	assert.Equal(t, map[string]any{
		"appid":   "wx1",
		"pfkey":   "WECHAT_MINIAPP",
		"pfvalue": "wechat",
	}, pf)
	assert.Nil(t, rc.Platform(2000))
	assert.Nil(t, rc.Platform(9))
}
