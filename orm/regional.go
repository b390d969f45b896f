package orm

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/juju/errors"
)

// GlobalRegional is the reserved id of the global regional.
const GlobalRegional = 0

// Platforms maps the config key of a regional's platform section to the
// platform name.
var Platforms = map[string]string{
	"BAIDU_SMARTPROGRAM": "baidu",
	"BYTEDANCE_MICROAPP": "bytedance",
	"WECHAT_MINIAPP":     "wechat",
	"QQ_MINIGAME":        "qq2",
}

// Regional describes one tenant.
type Regional struct {
	R            int            `json:"r"`
	Name         string         `json:"name"`
	BindKeyDB    string         `json:"bind_key_db,omitempty"`
	BindKeyRedis string         `json:"bind_key_redis,omitempty"`
	Extra        map[string]any `json:"-"`
}

// ParseRegional reads a regional from a decoded config or database record.
// The "r" key is required.
func ParseRegional(m map[string]any) (Regional, error) {
	raw, ok := m["r"]
	if !ok {
		return Regional{}, errors.NotValidf("regional without r key")
	}
	r, err := toInt(raw)
	if err != nil {
		return Regional{}, errors.NotValidf("regional r %v", raw)
	}
	reg := Regional{R: r, Extra: map[string]any{}}
	for k, v := range m {
		switch k {
		case "r":
		case "name":
			reg.Name = str(v)
		case "bind_key_db":
			reg.BindKeyDB = str(v)
		case "bind_key_redis":
			reg.BindKeyRedis = str(v)
		default:
			reg.Extra[k] = v
		}
	}
	return reg, nil
}

func str(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int8:
		return int(n), nil
	case int16:
		return int(n), nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case uint:
		return int(n), nil
	case uint8:
		return int(n), nil
	case uint16:
		return int(n), nil
	case uint32:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		if n != float64(int(n)) {
			return 0, errors.NotValidf("fractional %v", n)
		}
		return int(n), nil
	case string:
		return strconv.Atoi(n)
	}
	return 0, errors.NotValidf("%T", v)
}

// RegionalConfig is the authoritative list of regionals, from configuration
// or from the regional table.
type RegionalConfig struct {
	list []Regional
	byID map[int]Regional
}

// NewRegionalConfig indexes list. An empty list or a repeated id is an
// error.
func NewRegionalConfig(list []Regional) (*RegionalConfig, error) {
	if len(list) == 0 {
		return nil, errors.Annotatef(ErrConfiguration, "regional list is empty")
	}
	c := &RegionalConfig{
		list: make([]Regional, 0, len(list)),
		byID: make(map[int]Regional, len(list)),
	}
	for _, reg := range list {
		if _, ok := c.byID[reg.R]; ok {
			return nil, errors.Annotatef(ErrDuplicateKey, "regional %d", reg.R)
		}
		c.byID[reg.R] = reg
		c.list = append(c.list, reg)
	}
	return c, nil
}

// ParseRegionalConfig builds a RegionalConfig from decoded maps.
func ParseRegionalConfig(items []map[string]any) (*RegionalConfig, error) {
	list := make([]Regional, 0, len(items))
	for i, item := range items {
		reg, err := ParseRegional(item)
		if err != nil {
			return nil, errors.Annotatef(err, "regional #%d", i)
		}
		list = append(list, reg)
	}
	return NewRegionalConfig(list)
}

// List returns the regionals in configuration order.
func (c *RegionalConfig) List() []Regional {
	return append([]Regional(nil), c.list...)
}

// IDs returns the regional ids in ascending order.
func (c *RegionalConfig) IDs() []int {
	ids := make([]int, 0, len(c.byID))
	for id := range c.byID {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (c *RegionalConfig) Has(r int) bool {
	_, ok := c.byID[r]
	return ok
}

func (c *RegionalConfig) Get(r int) (Regional, bool) {
	reg, ok := c.byID[r]
	return reg, ok
}

// HasGlobal reports whether the global regional 0 is configured.
func (c *RegionalConfig) HasGlobal() bool {
	return c.Has(GlobalRegional)
}

// Check validates r. With ignoreZero the global regional is accepted even
// when it is not configured, and nil is returned for it.
func (c *RegionalConfig) Check(r int, ignoreZero bool) (*Regional, bool) {
	if ignoreZero && r == GlobalRegional {
		return nil, true
	}
	reg, ok := c.byID[r]
	if !ok {
		return nil, false
	}
	return &reg, true
}

// BindKeyDB is the database bind key of regional r.
func (c *RegionalConfig) BindKeyDB(r int) (string, bool) {
	reg, ok := c.byID[r]
	return reg.BindKeyDB, ok
}

// Platform returns the platform section of regional r with pfkey and
// pfvalue added, or nil when it has none.
func (c *RegionalConfig) Platform(r int) map[string]any {
	reg, ok := c.byID[r]
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(Platforms))
	for k := range Platforms {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		section, ok := reg.Extra[key].(map[string]any)
		if !ok {
			continue
		}
		conf := make(map[string]any, len(section)+2)
		for k, v := range section {
			conf[k] = v
		}
		conf["pfkey"] = key
		conf["pfvalue"] = Platforms[key]
		return conf
	}
	return nil
}
