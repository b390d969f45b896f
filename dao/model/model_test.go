package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestR2Type(t *testing.T) {
	cases := map[int]RType{
		0:    RTypeNone,
		999:  RTypeNone,
		1000: RTypeTest,
		1999: RTypeTest,
		2000: RTypeReview,
		3000: RTypeNone,
		5000: RTypeRelease,
		9000: RTypeRelease,
	}
	for r, want := range cases {
		assert.Equal(t, want, R2Type(r), "r=%d", r)
	}

	lo, hi := RTypeRange(RTypeReview)
	assert.Equal(t, [2]int{2000, 2999}, [2]int{lo, hi})
}

func TestRegionalMerge(t *testing.T) {
	value := "bind_key_db = \"game\"\noffset = 8\n\n[WECHAT_MINIAPP]\nappid = \"wx1\"\n"
	reg := &Regional{R: 1001, Name: "alpha", Value: &value, Status: StatusNormal, CreateTime: 10, UpdateTime: 20}

	merged, err := reg.Merge()
	require.NoError(t, err)
	assert.Equal(t, 1001, merged["r"])
	assert.Equal(t, "alpha", merged["name"])
	assert.Equal(t, "game", merged["bind_key_db"])
	assert.EqualValues(t, 8, merged["offset"])
	assert.Equal(t, 1000, merged["rtype"])
	assert.Equal(t, 1, merged["status"])
	assert.Equal(t, map[string]any{"appid": "wx1"}, merged["WECHAT_MINIAPP"])

	global := &Regional{R: 0, Name: "0"}
	merged, err = global.Merge()
	require.NoError(t, err)
	assert.Nil(t, merged["rtype"])

	bad := "not = = toml"
	_, err = (&Regional{R: 1, Value: &bad}).Merge()
	assert.Error(t, err)
}

func TestValidateValue(t *testing.T) {
	assert.NoError(t, ValidateValue("a = 1"))
	assert.NoError(t, ValidateValue(""))
	assert.Error(t, ValidateValue("a = "))
}

func TestValueObject(t *testing.T) {
	assert.Equal(t, "r1000_version", FullName(1000, "version"))

	vo := &ValueObject{VID: 3, Name: "r1000_version", Index: 2, VOType: VOTypeDefault}
	require.NoError(t, vo.SetValue(map[string]any{"major": 1}))
	merged, err := vo.Merge()
	require.NoError(t, err)
	assert.EqualValues(t, 1, merged["major"])
	assert.Equal(t, 3, merged["vid"])
	assert.Equal(t, 2, merged["index"])
	assert.Equal(t, 307, merged["votype"])

	require.NoError(t, vo.SetValue([]int{1, 2}))
	merged, err = vo.Merge()
	require.NoError(t, err)
	assert.Equal(t, []any{float64(1), float64(2)}, merged["value"])

	var out []int
	require.NoError(t, vo.GetValue(&out))
	assert.Equal(t, []int{1, 2}, out)
}
